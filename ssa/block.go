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
    `strings`

    `github.com/SyphonArch/Cornell-CS6120-Advanced-Compilers/bril`
)

// BasicBlock is a labeled instruction sequence ending in exactly one
// terminator. Ins never contains labels or terminators; the label lives in
// Label and the terminator in Term.
type BasicBlock struct {
    Id    int
    Label string
    Ins   []*bril.Instr
    Term  *bril.Instr
    Pred  []*BasicBlock
}

func (self *BasicBlock) addInstr(p *bril.Instr) {
    self.Ins = append(self.Ins, p)
}

// body returns the instructions the dataflow solver sees: the block body
// with the terminator last.
func (self *BasicBlock) body() []*bril.Instr {
    r := make([]*bril.Instr, 0, len(self.Ins) + 1)
    r = append(r, self.Ins...)
    if self.Term != nil {
        r = append(r, self.Term)
    }
    return r
}

// targets returns the labels this block's terminator may jump to.
func (self *BasicBlock) targets() []string {
    if self.Term == nil {
        return nil
    }
    return self.Term.Labels
}

func (self *BasicBlock) String() string {
    buf := []string { fmt.Sprintf(".%s:", self.Label) }
    for _, p := range self.Ins {
        buf = append(buf, "  " + p.String())
    }
    if self.Term != nil {
        buf = append(buf, "  " + self.Term.String())
    }
    return strings.Join(buf, "\n")
}
