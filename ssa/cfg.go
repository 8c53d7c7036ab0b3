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

// Package ssa contains the middle-end proper: CFG construction, dominance
// analysis, bidirectional SSA conversion, loop detection with LICM, and the
// optimization pass pipeline that ties them together.
package ssa

import (
    `fmt`
    `math/big`

    `github.com/oleiade/lane`

    `github.com/SyphonArch/Cornell-CS6120-Advanced-Compilers/bril`
)

// CFG is the control-flow graph of one function together with its derived
// dominance facts. The dominance maps are keyed by block id; they are pure
// views that Rebuild recomputes from scratch after every mutation. There is
// no incremental-update contract, stale facts are a correctness bug.
type CFG struct {
    Fn     *bril.Function
    Root   *BasicBlock
    Blocks []*BasicBlock
    Labels map[string]*BasicBlock

    Depth             map[int]int
    DominatedBy       map[int]*BasicBlock
    DominatorOf       map[int][]*BasicBlock
    DominanceFrontier map[int][]*BasicBlock

    /* CrossCheck re-derives dominance with the naive oracle on every
     * Rebuild and fails loudly on any disagreement. */
    CrossCheck bool

    nextid   int
    index    map[int]int
    succs    [][]int
    preds    [][]int
    domset   []*big.Int
    domtree  _DomTree
}

/** CFG construction **/

type _BlockSplitter struct {
    fn     *bril.Function
    used   map[string]bool
    blocks []*BasicBlock
    cur    *BasicBlock
    nb     int
}

func (self *_BlockSplitter) fresh(base string) string {
    name := base
    for i := 1; self.used[name]; i++ {
        name = fmt.Sprintf("%s.%d", base, i)
    }
    self.used[name] = true
    return name
}

func (self *_BlockSplitter) open(label string) *BasicBlock {
    bb := &BasicBlock { Id: self.nb, Label: label }
    self.nb++
    self.cur = bb
    self.blocks = append(self.blocks, bb)
    return bb
}

func (self *_BlockSplitter) split() error {
    /* record user labels up front, checking for duplicates */
    for _, p := range self.fn.Body {
        if p.IsLabel() {
            if self.used[p.Label] {
                return MalformedProgramError { Func: self.fn.Name, Label: p.Label, Reason: "duplicate label" }
            }
            self.used[p.Label] = true
        }
    }

    /* split at labels and terminators */
    for _, p := range self.fn.Body {
        switch {
            case p.IsLabel(): {
                self.open(p.Label)
            }
            case p.IsTerminator(): {
                if self.cur == nil {
                    self.open(self.fresh("b0"))
                }
                self.cur.Term = p
                self.cur = nil
            }
            default: {
                if self.cur == nil {
                    self.open(self.fresh(fmt.Sprintf("b%d", self.nb)))
                }
                self.cur.addInstr(p)
            }
        }
    }

    /* an empty function still gets an entry block */
    if len(self.blocks) == 0 {
        self.open(self.fresh("b0"))
    }

    /* synthesize the missing terminators: fallthrough jumps between
     * adjacent blocks, return for the last one */
    for i, bb := range self.blocks {
        if bb.Term == nil {
            if i+1 < len(self.blocks) {
                bb.Term = &bril.Instr { Op: bril.OP_jmp, Labels: []string { self.blocks[i+1].Label } }
            } else {
                bb.Term = &bril.Instr { Op: bril.OP_ret }
            }
        }
    }
    return nil
}

// BuildCFG splits a function's flat instruction list into basic blocks,
// derives the edges, and computes the dominance facts. The entry block is
// guaranteed to have no predecessors: if a back edge targets the first
// block, a fresh entry is synthesized in front of it.
func BuildCFG(fn *bril.Function) (*CFG, error) {
    sp := &_BlockSplitter { fn: fn, used: make(map[string]bool) }
    if err := sp.split(); err != nil {
        return nil, err
    }

    /* the first block must not be a branch target; if a back edge aims at
     * it, synthesize a fresh entry in front */
    first := sp.blocks[0]
    split := false
    for _, bb := range sp.blocks {
        for _, to := range bb.targets() {
            split = split || to == first.Label
        }
    }
    if split {
        entry := &BasicBlock {
            Id    : sp.nb,
            Label : sp.fresh("entry"),
            Term  : &bril.Instr { Op: bril.OP_jmp, Labels: []string { first.Label } },
        }
        sp.nb++
        sp.blocks = append([]*BasicBlock { entry }, sp.blocks...)
    }

    cfg := &CFG {
        Fn     : fn,
        Root   : sp.blocks[0],
        Blocks : sp.blocks,
        nextid : sp.nb,
    }
    if err := cfg.Rebuild(); err != nil {
        return nil, err
    }
    return cfg, nil
}

// CreateBlock allocates a fresh block with a unique label derived from base.
// The caller is responsible for inserting it into the block list and
// calling Rebuild afterwards.
func (self *CFG) CreateBlock(base string) *BasicBlock {
    used := make(map[string]bool, len(self.Blocks))
    for _, bb := range self.Blocks {
        used[bb.Label] = true
    }
    name := base
    for i := 1; used[name]; i++ {
        name = fmt.Sprintf("%s.%d", base, i)
    }
    bb := &BasicBlock { Id: self.nextid, Label: name }
    self.nextid++
    return bb
}

func (self *CFG) insertBefore(nb *BasicBlock, at *BasicBlock) {
    for i, bb := range self.Blocks {
        if bb == at {
            self.Blocks = append(self.Blocks, nil)
            copy(self.Blocks[i+1:], self.Blocks[i:])
            self.Blocks[i] = nb
            return
        }
    }
    self.Blocks = append(self.Blocks, nb)
}

// Rebuild recomputes every derived view: successor and predecessor edges,
// reachability (unreachable blocks are pruned), the dominator tree, and the
// dominance frontiers. It must be called after any block or edge mutation.
func (self *CFG) Rebuild() error {
    labels := make(map[string]*BasicBlock, len(self.Blocks))
    for _, bb := range self.Blocks {
        labels[bb.Label] = bb
    }

    /* resolve terminator targets, checking for dangling labels */
    for _, bb := range self.Blocks {
        for _, to := range bb.targets() {
            if labels[to] == nil {
                return MalformedProgramError { Func: self.Fn.Name, Label: bb.Label, Reason: fmt.Sprintf("jump to undefined label %q", to) }
            }
        }
        if bb.Term == nil {
            return MalformedProgramError { Func: self.Fn.Name, Label: bb.Label, Reason: "block without terminator" }
        }
    }

    /* prune everything unreachable from the entry */
    q := lane.NewQueue()
    reach := map[int]bool { self.Root.Id: true }
    for q.Enqueue(self.Root); !q.Empty(); {
        bb := q.Dequeue().(*BasicBlock)
        for _, to := range bb.targets() {
            if nx := labels[to]; !reach[nx.Id] {
                reach[nx.Id] = true
                q.Enqueue(nx)
            }
        }
    }

    live := self.Blocks[:0]
    for _, bb := range self.Blocks {
        if reach[bb.Id] {
            live = append(live, bb)
        }
    }
    self.Blocks = live
    self.Labels = make(map[string]*BasicBlock, len(live))
    self.index = make(map[int]int, len(live))
    for i, bb := range live {
        self.Labels[bb.Label] = bb
        self.index[bb.Id] = i
    }

    /* successor and predecessor edges over the reachable graph */
    n := len(live)
    self.succs = make([][]int, n)
    self.preds = make([][]int, n)
    for _, bb := range live {
        bb.Pred = bb.Pred[:0]
    }
    for i, bb := range live {
        seen := make(map[int]bool)
        for _, to := range bb.targets() {
            nx := self.Labels[to]
            if j := self.index[nx.Id]; !seen[j] {
                seen[j] = true
                self.succs[i] = append(self.succs[i], j)
                self.preds[j] = append(self.preds[j], i)
                nx.Pred = append(nx.Pred, bb)
            }
        }
    }

    /* dominators, tree, frontiers */
    if err := self.buildDominators(); err != nil {
        return err
    }

    /* optional correctness oracle for the fast algorithm */
    if self.CrossCheck {
        if err := self.crossCheckDominance(); err != nil {
            return err
        }
    }
    return nil
}

// Linearize writes the block structure back into the function body as a
// flat list: label marker, body, terminator, in containment order.
func (self *CFG) Linearize() {
    body := make([]*bril.Instr, 0, len(self.Fn.Body))
    for _, bb := range self.Blocks {
        body = append(body, &bril.Instr { Op: bril.OP_label, Label: bb.Label })
        body = append(body, bb.Ins...)
        body = append(body, bb.Term)
    }
    self.Fn.Body = body
}

func (self *CFG) String() string {
    buf := ""
    for _, bb := range self.Blocks {
        buf += bb.String() + "\n"
    }
    return buf
}

/** dataflow.Graph view **/

func (self *CFG) Len() int {
    return len(self.Blocks)
}

func (self *CFG) Entry() int {
    return self.index[self.Root.Id]
}

func (self *CFG) Exits() []int {
    var r []int
    for i, bb := range self.Blocks {
        if bb.Term.Op == bril.OP_ret || len(self.succs[i]) == 0 {
            r = append(r, i)
        }
    }
    return r
}

func (self *CFG) Succ(i int) []int {
    return self.succs[i]
}

func (self *CFG) Pred(i int) []int {
    return self.preds[i]
}

func (self *CFG) Body(i int) []*bril.Instr {
    return self.Blocks[i].body()
}
