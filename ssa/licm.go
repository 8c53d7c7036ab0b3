/*
 * Copyright 2025 SyphonArch
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package ssa

import (
    `sort`

    `github.com/SyphonArch/Cornell-CS6120-Advanced-Compilers/bril`
    `github.com/SyphonArch/Cornell-CS6120-Advanced-Compilers/dataflow`
)

// LICM hoists loop-invariant instructions into synthesized preheaders. The
// whole pass re-runs until a round hoists nothing: hoisting can expose new
// invariants whose operands are now defined outside the loop.
type LICM struct {
    Opts Options

    /* hoist counts per header label, for the diagnostics report */
    Hoisted map[string]int
}

// hoistable ops: pure and trap-free. Division may trap and is never moved,
// matching the conservative treatment of memory operations.
func (self *LICM) hoistableOp(p *bril.Instr) bool {
    if p.IsMemOp() && self.Opts.MemOpsAsBarriers {
        return false
    }
    switch p.Op {
        case bril.OP_const , bril.OP_id  : return true
        case bril.OP_add   , bril.OP_sub : return true
        case bril.OP_mul                 : return true
        case bril.OP_eq    , bril.OP_lt  : return true
        case bril.OP_gt    , bril.OP_le  : return true
        case bril.OP_ge    , bril.OP_not : return true
        case bril.OP_and   , bril.OP_or  : return true
        default                          : return false
    }
}

type _Candidate struct {
    block int
    index int
    ins   *bril.Instr
}

func (self *LICM) Apply(cfg *CFG) error {
    if self.Hoisted == nil {
        self.Hoisted = make(map[string]int)
    }
    rounds := self.Opts.MaxFixpointRounds
    if rounds <= 0 {
        rounds = DefaultOptions().MaxFixpointRounds
    }

    for i := 0; ; i++ {
        if i >= rounds {
            return dataflow.NonTerminatingFixpointError {
                Func  : cfg.Fn.Name,
                Phase : "licm re-run loop",
                Steps : rounds,
            }
        }
        n, err := self.round(cfg)
        if err != nil {
            return err
        }
        if n == 0 {
            return nil
        }
    }
}

// round runs one invariance-marking plus hoisting sweep, visiting each loop
// header once, and returns the number of instructions moved. Loops are
// re-detected after every graph mutation: the dense block indices inside a
// Loop are only valid until the next Rebuild.
func (self *LICM) round(cfg *CFG) (int, error) {
    moved := 0
    seen := make(map[string]bool)

    for {
        var target *Loop
        for _, loop := range findLoops(cfg) {
            if !seen[cfg.Blocks[loop.Header].Label] {
                target = loop
                break
            }
        }
        if target == nil {
            return moved, nil
        }
        seen[cfg.Blocks[target.Header].Label] = true

        n, err := self.hoistLoop(cfg, target)
        if err != nil {
            return moved, err
        }
        moved += n
    }
}

func (self *LICM) hoistLoop(cfg *CFG, loop *Loop) (int, error) {
    sol, params, err := cfg.reachingDefs()
    if err != nil {
        return 0, err
    }

    /* definition sites by instruction, for operand classification */
    home := make(map[*bril.Instr]int)
    for b := range loop.Blocks {
        for _, p := range cfg.Blocks[b].body() {
            home[p] = b
        }
    }

    hoist := self.invariants(cfg, loop, sol, params, home)
    if len(hoist) == 0 {
        return 0, nil
    }

    /* a loop entered from nowhere outside cannot take a preheader */
    outside := false
    for _, p := range cfg.preds[loop.Header] {
        outside = outside || !loop.contains(p)
    }
    if !outside {
        return 0, nil
    }

    /* move the eligible instructions in their original relative order */
    sort.Slice(hoist, func(i int, j int) bool {
        if hoist[i].block != hoist[j].block {
            return hoist[i].block < hoist[j].block
        }
        return hoist[i].index < hoist[j].index
    })
    mark := make(map[*bril.Instr]bool, len(hoist))
    for _, c := range hoist {
        mark[c.ins] = true
    }

    /* strip the body first: inserting the preheader shifts the block
     * array, and the loop's dense indices do not survive the shift */
    header := cfg.Blocks[loop.Header].Label
    for b := range loop.Blocks {
        bb := cfg.Blocks[b]
        out := bb.Ins[:0]
        for _, p := range bb.Ins {
            if !mark[p] {
                out = append(out, p)
            }
        }
        bb.Ins = out
    }
    pre := cfg.ensurePreheader(loop)
    for _, c := range hoist {
        pre.Ins = append(pre.Ins, c.ins)
    }
    self.Hoisted[header] += len(hoist)

    /* the preheader changed the graph; all derived facts are stale */
    if err := cfg.Rebuild(); err != nil {
        return len(hoist), err
    }
    return len(hoist), nil
}

// invariants computes the hoist set for one loop to fixpoint: an
// instruction qualifies when every operand is a constant, defined strictly
// outside the loop, or defined by a single instruction already in the set,
// and it passes all of the safety gates.
func (self *LICM) invariants(cfg *CFG, loop *Loop, sol *dataflow.Solver, params map[*bril.Instr]bool, home map[*bril.Instr]int) []_Candidate {
    var order []_Candidate
    chosen := make(map[*bril.Instr]bool)
    exits := loop.exits(cfg)

    /* count each destination's definitions inside the loop */
    defcount := make(map[string]int)
    for b := range loop.Blocks {
        for _, p := range cfg.Blocks[b].body() {
            for _, d := range p.Defs() {
                defcount[d]++
            }
        }
    }

    for changed := true; changed; {
        changed = false
        for b := 0; b < len(cfg.Blocks); b++ {
            if !loop.Blocks[b] {
                continue
            }
            fin, _ := sol.InstrFacts(b)
            for j, p := range cfg.Blocks[b].Ins {
                if chosen[p] || p.Dest == "" || !self.hoistableOp(p) {
                    continue
                }

                /* operand classification against the reaching definitions */
                if !self.ready(loop, fin[j].(_ReachSet), params, home, chosen, p) {
                    continue
                }

                /* single definition of the destination inside the loop */
                if defcount[p.Dest] > 1 {
                    continue
                }

                /* the value must be computed before any path leaves the
                 * loop, and on every iteration: the block has to dominate
                 * every exit and every back-edge source */
                if !self.always(cfg, loop, exits, b) {
                    continue
                }

                chosen[p] = true
                changed = true
                order = append(order, _Candidate { block: b, index: j, ins: p })
            }
        }
    }
    return order
}

func (self *LICM) always(cfg *CFG, loop *Loop, exits []int, b int) bool {
    for _, e := range exits {
        if !cfg.dominates(b, e) {
            return false
        }
    }
    for _, t := range loop.Tails {
        if !cfg.dominates(b, t) {
            return false
        }
    }
    return true
}

func (self *LICM) ready(loop *Loop, fact _ReachSet, params map[*bril.Instr]bool, home map[*bril.Instr]int, chosen map[*bril.Instr]bool, p *bril.Instr) bool {
    for _, a := range p.Uses() {
        var inside []*bril.Instr

        /* partition the reaching definitions of this operand */
        for d := range fact {
            if !defines(d, a) {
                continue
            }
            if !params[d] {
                if h, ok := home[d]; ok && loop.Blocks[h] {
                    inside = append(inside, d)
                }
            }
        }

        /* all definitions outside: invariant operand */
        if len(inside) == 0 {
            continue
        }

        /* exactly one inside definition, itself already invariant */
        if len(inside) == 1 && chosen[inside[0]] {
            continue
        }
        return false
    }
    return true
}

func defines(p *bril.Instr, v string) bool {
    for _, d := range p.Defs() {
        if d == v {
            return true
        }
    }
    return false
}
