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
    `fmt`
    `sort`

    `github.com/SyphonArch/Cornell-CS6120-Advanced-Compilers/bril`
)

// LVN performs local value numbering within each basic block: equal pure
// computations collapse to "id" copies of the first instruction computing
// the value, "id" chains propagate, and commutative operands are keyed in
// canonical order. A destination that gets overwritten later in the same
// block never serves as a value home, which sidesteps clobbering without
// renaming.
type LVN struct{}

// _LvnState is the per-block numbering: every variable maps to a value
// number, every computed key maps to its number, and a number may have a
// home variable that still holds it.
type _LvnState struct {
    next int
    vars map[string]int
    keys map[string]int
    home map[int]string
}

func newLvnState() *_LvnState {
    return &_LvnState {
        vars: make(map[string]int),
        keys: make(map[string]int),
        home: make(map[int]string),
    }
}

// numberOf resolves a variable to its value number, inventing an opaque
// number for values that flow in from outside the block.
func (self *_LvnState) numberOf(v string) int {
    if n, ok := self.vars[v]; ok {
        return n
    } else {
        n = self.fresh()
        self.vars[v] = n
        self.home[n] = v
        return n
    }
}

func (self *_LvnState) fresh() int {
    self.next++
    return self.next
}

// rebind points v at a new number, dropping the old number's home if v
// was it. Homes must never name a clobbered variable.
func (self *_LvnState) rebind(v string, n int) {
    if old, ok := self.vars[v]; ok && self.home[old] == v {
        delete(self.home, old)
    }
    self.vars[v] = n
}

func (LVN) Apply(cfg *CFG) error {
    for _, bb := range cfg.Blocks {
        numberBlock(bb)
    }
    return nil
}

func numberBlock(bb *BasicBlock) {
    st := newLvnState()

    /* a variable is only a safe value home if this write is its last */
    last := make(map[string]int)
    for i, p := range bb.Ins {
        if p.Dest != "" {
            last[p.Dest] = i
        }
        for _, d := range p.Defs() {
            last[d] = i
        }
    }

    for i, p := range bb.Ins {
        numberInstr(p, i, st, last)
    }

    /* terminator operands still benefit from copy propagation */
    if bb.Term != nil {
        propagate(bb.Term, st)
    }
}

func numberInstr(p *bril.Instr, i int, st *_LvnState, last map[string]int) {
    propagate(p, st)

    /* writes with no reusable value get an opaque number */
    if !p.IsPure() || p.Dest == "" {
        if p.Dest != "" {
            n := st.fresh()
            st.rebind(p.Dest, n)
            st.home[n] = p.Dest
        }
        for _, d := range p.Defs() {
            st.rebind(d, st.fresh())
        }
        return
    }

    /* "id" is pure copying: the destination shares the source's number */
    if p.Op == bril.OP_id {
        n := st.numberOf(p.Args[0])
        st.rebind(p.Dest, n)
        if h, ok := st.home[n]; ok && h != p.Args[0] {
            p.Args[0] = h
        }
        return
    }

    key := valueKey(p, st)
    if n, ok := st.keys[key]; ok {
        if h, hom := st.home[n]; hom {
            p.Op   = bril.OP_id
            p.Args = []string{h}
            st.rebind(p.Dest, n)
            return
        }
    }

    n := st.fresh()
    st.rebind(p.Dest, n)
    if last[p.Dest] == i {
        st.keys[key] = n
        st.home[n] = p.Dest
    }
}

// propagate rewrites every read operand to the home variable of its value
// number, skipping the shadow slot a "set" writes.
func propagate(p *bril.Instr, st *_LvnState) {
    lo := 0
    if p.Op == bril.OP_set {
        lo = 1
    }
    for i := lo; i < len(p.Args); i++ {
        if n, ok := st.vars[p.Args[i]]; ok {
            if h, hom := st.home[n]; hom {
                p.Args[i] = h
            }
        }
    }
}

// valueKey builds the canonical lookup key for a pure computation, sorting
// operand numbers for commutative operators.
func valueKey(p *bril.Instr, st *_LvnState) string {
    if p.Op == bril.OP_const {
        return fmt.Sprintf("const:%d:%s", p.Value, p.Type)
    }

    nums := make([]int, 0, len(p.Args))
    for _, a := range p.Args {
        nums = append(nums, st.numberOf(a))
    }

    switch p.Op {
        case bril.OP_add, bril.OP_mul, bril.OP_eq, bril.OP_and, bril.OP_or: {
            sort.Ints(nums)
        }
    }
    return fmt.Sprintf("%s:%v", p.Op, nums)
}
