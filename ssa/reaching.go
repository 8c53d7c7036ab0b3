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
    `github.com/SyphonArch/Cornell-CS6120-Advanced-Compilers/bril`
    `github.com/SyphonArch/Cornell-CS6120-Advanced-Compilers/dataflow`
)

/** Reaching definitions: a forward may-problem keyed by the defining
 *  instruction itself, so no synthetic definition ids are needed. Function
 *  parameters reach as nil-keyed pseudo definitions.
 */

type _ReachSet map[*bril.Instr]struct{}

func (self _ReachSet) Merge(other dataflow.Fact) dataflow.Fact {
    r := make(_ReachSet, len(self))
    for v := range self {
        r[v] = struct{}{}
    }
    for v := range other.(_ReachSet) {
        r[v] = struct{}{}
    }
    return r
}

func (self _ReachSet) Transfer(p *bril.Instr) dataflow.Fact {
    defs := p.Defs()
    if len(defs) == 0 {
        return self
    }

    /* kill every earlier definition of the same variables, then gen */
    r := make(_ReachSet, len(self) + 1)
    for d := range self {
        killed := false
        for _, v := range d.Defs() {
            for _, w := range defs {
                killed = killed || v == w
            }
        }
        if !killed {
            r[d] = struct{}{}
        }
    }
    r[p] = struct{}{}
    return r
}

func (self _ReachSet) Equal(other dataflow.Fact) bool {
    rhs := other.(_ReachSet)
    if len(self) != len(rhs) {
        return false
    }
    for v := range self {
        if _, ok := rhs[v]; !ok {
            return false
        }
    }
    return true
}

type _ReachLattice struct{}

func (_ReachLattice) Top() dataflow.Fact    { return make(_ReachSet) }
func (_ReachLattice) Bottom() dataflow.Fact { return make(_ReachSet) }

// paramDefs synthesizes one pseudo definition per function parameter; they
// seed the entry block so parameter reads have a visible definition site.
func paramDefs(fn *bril.Function) (_ReachSet, map[*bril.Instr]bool) {
    seed := make(_ReachSet, len(fn.Args))
    mark := make(map[*bril.Instr]bool, len(fn.Args))
    for _, a := range fn.Args {
        p := &bril.Instr { Op: bril.OP_undef, Dest: a.Name, Type: a.Type }
        seed[p] = struct{}{}
        mark[p] = true
    }
    return seed, mark
}

// reachingDefs solves the problem and returns the solver for per-instruction
// fact extraction, plus the marker set identifying parameter pseudo-defs.
func (self *CFG) reachingDefs() (*dataflow.Solver, map[*bril.Instr]bool, error) {
    seed, params := paramDefs(self.Fn)
    sol, err := dataflow.Solve(&dataflow.Problem {
        Func      : self.Fn.Name,
        Graph     : self,
        Lattice   : _ReachLattice{},
        Direction : dataflow.Forward,
        EntrySeed : dataflow.Keep,
        EntryFact : seed,
    })
    if err != nil {
        return nil, nil, err
    }
    return sol, params, nil
}
