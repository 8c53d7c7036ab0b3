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

/** Live variables: a backward may-problem, union meet, empty top. Used to
 *  filter phi placement down to variables actually live at the merge.
 */

type _LiveSet map[string]struct{}

func (self _LiveSet) Merge(other dataflow.Fact) dataflow.Fact {
    r := make(_LiveSet, len(self))
    for v := range self {
        r[v] = struct{}{}
    }
    for v := range other.(_LiveSet) {
        r[v] = struct{}{}
    }
    return r
}

func (self _LiveSet) Transfer(p *bril.Instr) dataflow.Fact {
    r := make(_LiveSet, len(self))
    for v := range self {
        r[v] = struct{}{}
    }
    for _, d := range p.Defs() {
        delete(r, d)
    }
    for _, u := range p.Uses() {
        r[u] = struct{}{}
    }
    return r
}

func (self _LiveSet) Equal(other dataflow.Fact) bool {
    rhs := other.(_LiveSet)
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

type _LiveLattice struct{}

func (_LiveLattice) Top() dataflow.Fact    { return make(_LiveSet) }
func (_LiveLattice) Bottom() dataflow.Fact { return make(_LiveSet) }

// liveIn solves liveness and returns the live-in set of every block index.
func (self *CFG) liveIn() ([]_LiveSet, error) {
    sol, err := dataflow.Solve(&dataflow.Problem {
        Func      : self.Fn.Name,
        Graph     : self,
        Lattice   : _LiveLattice{},
        Direction : dataflow.Backward,
        ExitSeed  : dataflow.Top,
    })
    if err != nil {
        return nil, err
    }
    r := make([]_LiveSet, len(self.Blocks))
    for i := range self.Blocks {
        r[i] = sol.BlockIn(i).(_LiveSet)
    }
    return r, nil
}
