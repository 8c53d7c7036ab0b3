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

/** Dominator sets are computed with the classic iterative algorithm, phrased
 *  as a forward must-problem on the generic dataflow solver: the lattice is
 *  "set of blocks", the meet is intersection, top is the universe, and the
 *  entry is seeded to the empty set so its transfer yields exactly itself.
 */

package ssa

import (
    `math/big`
    `math/bits`
    `sort`

    `github.com/SyphonArch/Cornell-CS6120-Advanced-Compilers/bril`
    `github.com/SyphonArch/Cornell-CS6120-Advanced-Compilers/dataflow`
)

// _DomTree is the dominator tree in index-addressed form: parent and
// children hold dense block indices, never pointers, so tree walks need no
// cyclic references even though the CFG itself has cycles.
type _DomTree struct {
    parent   []int
    children [][]int
}

type _DomFact struct {
    n    int
    bits *big.Int
}

func (self *_DomFact) Merge(other dataflow.Fact) dataflow.Fact {
    r := new(big.Int).And(self.bits, other.(*_DomFact).bits)
    return &_DomFact { n: self.n, bits: r }
}

func (self *_DomFact) Transfer(p *bril.Instr) dataflow.Fact {
    return self
}

func (self *_DomFact) Equal(other dataflow.Fact) bool {
    return self.bits.Cmp(other.(*_DomFact).bits) == 0
}

func (self *_DomFact) with(b int) *_DomFact {
    r := new(big.Int).Set(self.bits)
    r.SetBit(r, b, 1)
    return &_DomFact { n: self.n, bits: r }
}

type _DomLattice struct {
    n int
}

func (self _DomLattice) Top() dataflow.Fact {
    u := new(big.Int)
    for i := 0; i < self.n; i++ {
        u.SetBit(u, i, 1)
    }
    return &_DomFact { n: self.n, bits: u }
}

func (self _DomLattice) Bottom() dataflow.Fact {
    return &_DomFact { n: self.n, bits: new(big.Int) }
}

func popcount(v *big.Int) int {
    n := 0
    for _, w := range v.Bits() {
        n += bits.OnesCount(uint(w))
    }
    return n
}

func (self *CFG) buildDominators() error {
    n := len(self.Blocks)
    entry := self.Entry()

    /* solve the dominator sets */
    sol, err := dataflow.Solve(&dataflow.Problem {
        Func      : self.Fn.Name,
        Graph     : self,
        Lattice   : _DomLattice { n: n },
        Direction : dataflow.Forward,
        EntrySeed : dataflow.Keep,
        EntryFact : &_DomFact { n: n, bits: new(big.Int) },
        Block     : func(b int, in dataflow.Fact) dataflow.Fact {
            return in.(*_DomFact).with(b)
        },
    })
    if err != nil {
        return err
    }

    /* extract the per-block dominator sets */
    self.domset = make([]*big.Int, n)
    for i := 0; i < n; i++ {
        self.domset[i] = sol.BlockOut(i).(*_DomFact).bits
    }

    /* derive the immediate dominators: the unique strict dominator closest
     * to the block, i.e. the one with the largest dominator set */
    parent := make([]int, n)
    parent[entry] = entry
    for i := 0; i < n; i++ {
        if i == entry {
            continue
        }
        best := -1
        for j := 0; j < n; j++ {
            if j != i && self.domset[i].Bit(j) == 1 {
                if best == -1 || popcount(self.domset[j]) > popcount(self.domset[best]) {
                    best = j
                }
            }
        }
        if best == -1 {
            panic("ssa: reachable block with no strict dominator: " + self.Blocks[i].Label)
        }
        parent[i] = best
    }

    /* index-addressed children lists, ordered by block position */
    children := make([][]int, n)
    for i := 0; i < n; i++ {
        if i != entry {
            children[parent[i]] = append(children[parent[i]], i)
        }
    }
    for i := 0; i < n; i++ {
        sort.Ints(children[i])
    }
    self.domtree = _DomTree { parent: parent, children: children }

    /* id-keyed views */
    self.DominatedBy = make(map[int]*BasicBlock, n)
    self.DominatorOf = make(map[int][]*BasicBlock, n)
    for i := 0; i < n; i++ {
        if i != entry {
            p := self.Blocks[parent[i]]
            self.DominatedBy[self.Blocks[i].Id] = p
            self.DominatorOf[p.Id] = append(self.DominatorOf[p.Id], self.Blocks[i])
        }
    }

    /* dominator tree depths */
    self.Depth = make(map[int]int, n)
    order := []int { entry }
    for h := 0; h < len(order); h++ {
        b := order[h]
        for _, c := range self.domtree.children[b] {
            self.Depth[self.Blocks[c].Id] = self.Depth[self.Blocks[b].Id] + 1
            order = append(order, c)
        }
    }

    /* dominance frontiers: for every join block, walk each predecessor up
     * the dominator tree until the join's immediate dominator */
    df := make([]map[int]bool, n)
    for b := 0; b < n; b++ {
        if len(self.preds[b]) < 2 {
            continue
        }
        for _, p := range self.preds[b] {
            for r := p; r != parent[b]; r = parent[r] {
                if df[r] == nil {
                    df[r] = make(map[int]bool)
                }
                df[r][b] = true
            }
        }
    }
    self.DominanceFrontier = make(map[int][]*BasicBlock, n)
    for i := 0; i < n; i++ {
        if len(df[i]) == 0 {
            continue
        }
        idx := make([]int, 0, len(df[i]))
        for b := range df[i] {
            idx = append(idx, b)
        }
        sort.Ints(idx)
        for _, b := range idx {
            id := self.Blocks[i].Id
            self.DominanceFrontier[id] = append(self.DominanceFrontier[id], self.Blocks[b])
        }
    }
    return nil
}

// dominates reports whether block index a dominates block index b.
func (self *CFG) dominates(a int, b int) bool {
    return self.domset[b].Bit(a) == 1
}

// Dominates reports whether block a dominates block b. Both blocks must
// belong to this CFG and be reachable.
func (self *CFG) Dominates(a *BasicBlock, b *BasicBlock) bool {
    return self.dominates(self.index[a.Id], self.index[b.Id])
}

// Idom returns b's immediate dominator, or b itself for the entry block.
func (self *CFG) Idom(b *BasicBlock) *BasicBlock {
    return self.Blocks[self.domtree.parent[self.index[b.Id]]]
}
