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

// Package dataflow is a generic worklist fixpoint engine over a
// caller-supplied lattice. Termination is guaranteed only when the lattice
// has finite height and Merge/Transfer are monotone; that is the caller's
// obligation, the solver merely enforces a defensive step bound.
package dataflow

import (
    `fmt`

    `github.com/oleiade/lane`

    `github.com/SyphonArch/Cornell-CS6120-Advanced-Compilers/bril`
)

type Direction uint8

const (
    Forward Direction = iota
    Backward
)

type Seed uint8

const (
    Keep Seed = iota    // use the caller-supplied boundary fact
    Top                 // lattice identity for Merge
    Bottom              // absorbing element
)

// Fact is a point in the lattice. Merge must be an associative, commutative,
// idempotent join over incoming facts; Transfer is the per-instruction local
// update. Facts are treated as immutable: both return fresh values.
type Fact interface {
    Merge(other Fact) Fact
    Transfer(p *bril.Instr) Fact
    Equal(other Fact) bool
}

type Lattice interface {
    Top() Fact
    Bottom() Fact
}

// Graph is the solver's view of a control-flow graph: blocks are addressed
// by dense indices, and Body returns a block's instruction sequence with the
// terminator last.
type Graph interface {
    Len() int
    Entry() int
    Exits() []int
    Succ(i int) []int
    Pred(i int) []int
    Body(i int) []*bril.Instr
}

type Problem struct {
    Func      string
    Graph     Graph
    Lattice   Lattice
    Direction Direction
    EntrySeed Seed
    ExitSeed  Seed
    EntryFact Fact
    ExitFact  Fact
    MaxSteps  int

    /* Block, when set, replaces the instruction-by-instruction transfer
     * with a whole-block one. Needed by clients whose facts are about the
     * block itself rather than its instructions (e.g. dominance). */
    Block func(b int, in Fact) Fact
}

type NonTerminatingFixpointError struct {
    Func  string
    Phase string
    Steps int
}

func (self NonTerminatingFixpointError) Error() string {
    return fmt.Sprintf(
        "fixpoint did not terminate in function %q: %s exceeded %d steps (broken monotonicity?)",
        self.Func,
        self.Phase,
        self.Steps,
    )
}

// Solver holds the per-block IN/OUT facts of a solved Problem.
// Per-instruction facts are re-derived on demand by InstrFacts.
type Solver struct {
    p   *Problem
    in  []Fact
    out []Fact
}

func (self *Solver) BlockIn(i int) Fact {
    return self.in[i]
}

func (self *Solver) BlockOut(i int) Fact {
    return self.out[i]
}

// InstrFacts re-runs the transfer function across block i and returns the
// fact before and after every instruction, in instruction order.
func (self *Solver) InstrFacts(i int) ([]Fact, []Fact) {
    body := self.p.Graph.Body(i)
    fin := make([]Fact, len(body))
    fout := make([]Fact, len(body))

    /* forward: walk from the block IN fact */
    if self.p.Direction == Forward {
        cur := self.in[i]
        for j, ins := range body {
            fin[j] = cur
            cur = cur.Transfer(ins)
            fout[j] = cur
        }
        return fin, fout
    }

    /* backward: walk from the block OUT fact in reverse */
    cur := self.out[i]
    for j := len(body) - 1; j >= 0; j-- {
        fout[j] = cur
        cur = cur.Transfer(body[j])
        fin[j] = cur
    }
    return fin, fout
}

func (self *Problem) seed(s Seed, given Fact) Fact {
    switch s {
        case Top    : return self.Lattice.Top()
        case Bottom : return self.Lattice.Bottom()
        default     : return given
    }
}

func (self *Problem) transferBlock(b int, in Fact) Fact {
    if self.Block != nil {
        return self.Block(b, in)
    }
    cur := in
    body := self.Graph.Body(b)
    if self.Direction == Forward {
        for _, ins := range body {
            cur = cur.Transfer(ins)
        }
    } else {
        for i := len(body) - 1; i >= 0; i-- {
            cur = cur.Transfer(body[i])
        }
    }
    return cur
}

// Solve runs the worklist algorithm to fixpoint and returns the solved facts.
func Solve(p *Problem) (*Solver, error) {
    n := p.Graph.Len()
    in := make([]Fact, n)
    out := make([]Fact, n)

    /* everything starts at top */
    for i := 0; i < n; i++ {
        in[i] = p.Lattice.Top()
        out[i] = p.Lattice.Top()
    }

    /* boundary seeding: entry IN for forward problems, exit OUT for
     * backward ones */
    if p.Direction == Forward && p.EntrySeed != Top {
        if v := p.seed(p.EntrySeed, p.EntryFact); v != nil {
            in[p.Graph.Entry()] = v
        }
    }
    if p.Direction == Backward && p.ExitSeed != Top {
        for _, i := range p.Graph.Exits() {
            if v := p.seed(p.ExitSeed, p.ExitFact); v != nil {
                out[i] = v
            }
        }
    }

    /* default defensive bound: finite-height lattices converge way below
     * quadratic-times-width territory */
    steps := 0
    limit := p.MaxSteps
    if limit <= 0 {
        limit = 64 * (n*n + 1)
    }

    /* all blocks start on the worklist */
    q := lane.NewDeque()
    queued := make([]bool, n)
    for i := 0; i < n; i++ {
        q.Append(i)
        queued[i] = true
    }

    for !q.Empty() {
        b := q.Shift().(int)
        queued[b] = false

        /* defensive bound, see NonTerminatingFixpointError */
        if steps++; steps > limit {
            return nil, NonTerminatingFixpointError { Func: p.Func, Phase: "dataflow solver", Steps: limit }
        }

        if p.Direction == Forward {
            if ps := p.Graph.Pred(b); len(ps) != 0 {
                acc := p.Lattice.Top()
                for _, v := range ps {
                    acc = acc.Merge(out[v])
                }
                in[b] = acc
            }
            nv := p.transferBlock(b, in[b])
            if !nv.Equal(out[b]) {
                out[b] = nv
                for _, s := range p.Graph.Succ(b) {
                    if !queued[s] {
                        queued[s] = true
                        q.Append(s)
                    }
                }
            }
        } else {
            if ss := p.Graph.Succ(b); len(ss) != 0 {
                acc := p.Lattice.Top()
                for _, v := range ss {
                    acc = acc.Merge(in[v])
                }
                out[b] = acc
            }
            nv := p.transferBlock(b, out[b])
            if !nv.Equal(in[b]) {
                in[b] = nv
                for _, s := range p.Graph.Pred(b) {
                    if !queued[s] {
                        queued[s] = true
                        q.Append(s)
                    }
                }
            }
        }
    }

    return &Solver { p: p, in: in, out: out }, nil
}
