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

package dataflow

import (
    `testing`

    `github.com/stretchr/testify/require`

    `github.com/SyphonArch/Cornell-CS6120-Advanced-Compilers/bril`
)

type _TestGraph struct {
    entry int
    exits []int
    succ  [][]int
    pred  [][]int
    body  [][]*bril.Instr
}

func (self *_TestGraph) Len() int                  { return len(self.succ) }
func (self *_TestGraph) Entry() int                { return self.entry }
func (self *_TestGraph) Exits() []int              { return self.exits }
func (self *_TestGraph) Succ(i int) []int          { return self.succ[i] }
func (self *_TestGraph) Pred(i int) []int          { return self.pred[i] }
func (self *_TestGraph) Body(i int) []*bril.Instr  { return self.body[i] }

func defInstr(v string) *bril.Instr {
    return &bril.Instr { Op: bril.OP_const, Dest: v, Type: bril.Int }
}

func useInstr(vs ...string) *bril.Instr {
    return &bril.Instr { Op: bril.OP_print, Args: vs }
}

/* may-defined variables: union merge, Transfer adds the destination */

type _DefSet map[string]bool

func (self _DefSet) Merge(other Fact) Fact {
    r := make(_DefSet, len(self))
    for v := range self {
        r[v] = true
    }
    for v := range other.(_DefSet) {
        r[v] = true
    }
    return r
}

func (self _DefSet) Transfer(p *bril.Instr) Fact {
    if p.Dest == "" {
        return self
    }
    r := make(_DefSet, len(self) + 1)
    for v := range self {
        r[v] = true
    }
    r[p.Dest] = true
    return r
}

func (self _DefSet) Equal(other Fact) bool {
    o := other.(_DefSet)
    if len(self) != len(o) {
        return false
    }
    for v := range self {
        if !o[v] {
            return false
        }
    }
    return true
}

type _DefLattice struct{}

func (_DefLattice) Top() Fact    { return make(_DefSet) }
func (_DefLattice) Bottom() Fact { return make(_DefSet) }

/* live variables: union merge, Transfer kills the destination and gens uses */

type _UseSet map[string]bool

func (self _UseSet) Merge(other Fact) Fact {
    r := make(_UseSet, len(self))
    for v := range self {
        r[v] = true
    }
    for v := range other.(_UseSet) {
        r[v] = true
    }
    return r
}

func (self _UseSet) Transfer(p *bril.Instr) Fact {
    r := make(_UseSet, len(self))
    for v := range self {
        r[v] = true
    }
    if p.Dest != "" {
        delete(r, p.Dest)
    }
    for _, v := range p.Uses() {
        r[v] = true
    }
    return r
}

func (self _UseSet) Equal(other Fact) bool {
    o := other.(_UseSet)
    if len(self) != len(o) {
        return false
    }
    for v := range self {
        if !o[v] {
            return false
        }
    }
    return true
}

type _UseLattice struct{}

func (_UseLattice) Top() Fact    { return make(_UseSet) }
func (_UseLattice) Bottom() Fact { return make(_UseSet) }

/* a deliberately broken fact that never stabilizes */

type _Diverge int

func (self _Diverge) Merge(other Fact) Fact         { return self }
func (self _Diverge) Transfer(p *bril.Instr) Fact   { return self + 1 }
func (self _Diverge) Equal(other Fact) bool         { return false }

type _DivergeLattice struct{}

func (_DivergeLattice) Top() Fact    { return _Diverge(0) }
func (_DivergeLattice) Bottom() Fact { return _Diverge(0) }

// diamond: 0 -> {1, 2} -> 3
func diamondGraph() *_TestGraph {
    return &_TestGraph {
        entry : 0,
        exits : []int { 3 },
        succ  : [][]int { {1, 2}, {3}, {3}, {} },
        pred  : [][]int { {}, {0}, {0}, {1, 2} },
        body  : [][]*bril.Instr {
            { defInstr("a") },
            { defInstr("b") },
            { defInstr("c") },
            { useInstr("a", "b") },
        },
    }
}

func TestSolve_Forward(t *testing.T) {
    sol, err := Solve(&Problem {
        Func      : "diamond",
        Graph     : diamondGraph(),
        Lattice   : _DefLattice{},
        Direction : Forward,
    })
    require.NoError(t, err)

    require.Equal(t, _DefSet { "a": true }, sol.BlockOut(0).(_DefSet))
    require.Equal(t, _DefSet { "a": true, "b": true }, sol.BlockOut(1).(_DefSet))

    /* the merge point sees the union of both arms */
    require.Equal(t, _DefSet { "a": true, "b": true, "c": true }, sol.BlockIn(3).(_DefSet))
}

func TestSolve_Backward(t *testing.T) {
    sol, err := Solve(&Problem {
        Func      : "diamond",
        Graph     : diamondGraph(),
        Lattice   : _UseLattice{},
        Direction : Backward,
        ExitSeed  : Top,
    })
    require.NoError(t, err)

    /* the arm that defines "b" kills it; the other one leaks it upward,
     * so "b" is still live into the entry */
    require.Equal(t, _UseSet { "a": true }, sol.BlockIn(1).(_UseSet))
    require.Equal(t, _UseSet { "b": true }, sol.BlockIn(0).(_UseSet))
    require.Equal(t, _UseSet { "a": true, "b": true }, sol.BlockIn(3).(_UseSet))
}

func TestSolve_BlockHook(t *testing.T) {
    sol, err := Solve(&Problem {
        Func      : "diamond",
        Graph     : diamondGraph(),
        Lattice   : _DefLattice{},
        Direction : Forward,
        Block     : func(b int, in Fact) Fact {
            r := in.(_DefSet).Merge(make(_DefSet)).(_DefSet)
            r["seen"] = true
            return r
        },
    })
    require.NoError(t, err)

    /* the hook replaces the per-instruction transfer entirely */
    require.Equal(t, _DefSet { "seen": true }, sol.BlockOut(0).(_DefSet))
}

func TestSolve_InstrFacts(t *testing.T) {
    g := &_TestGraph {
        entry : 0,
        exits : []int { 0 },
        succ  : [][]int { {} },
        pred  : [][]int { {} },
        body  : [][]*bril.Instr { { defInstr("a"), defInstr("b"), useInstr("a") } },
    }
    sol, err := Solve(&Problem { Func: "flat", Graph: g, Lattice: _DefLattice{}, Direction: Forward })
    require.NoError(t, err)

    fin, fout := sol.InstrFacts(0)
    require.Len(t, fin, 3)
    require.Equal(t, _DefSet{}, fin[0].(_DefSet))
    require.Equal(t, _DefSet { "a": true }, fout[0].(_DefSet))
    require.Equal(t, _DefSet { "a": true, "b": true }, fout[1].(_DefSet))
    require.Equal(t, fout[1], fin[2])
}

func TestSolve_StepBound(t *testing.T) {
    g := &_TestGraph {
        entry : 0,
        exits : []int { 1 },
        succ  : [][]int { {1}, {0} },
        pred  : [][]int { {1}, {0} },
        body  : [][]*bril.Instr { { defInstr("a") }, { defInstr("b") } },
    }
    _, err := Solve(&Problem {
        Func      : "spin",
        Graph     : g,
        Lattice   : _DivergeLattice{},
        Direction : Forward,
        MaxSteps  : 16,
    })
    require.Error(t, err)
    require.IsType(t, NonTerminatingFixpointError{}, err)
    require.Contains(t, err.Error(), "spin")
}
