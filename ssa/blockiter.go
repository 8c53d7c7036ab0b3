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

/* _IterFrame records how far into a block's dominator-tree children the
 * walk has descended */
type _IterFrame struct {
    bb   *BasicBlock
    next int
}

// BasicBlockIter yields the blocks of a function in post-order over the
// dominator tree: a block comes out only after every block it dominates.
type BasicBlockIter struct {
    g *CFG
    b *BasicBlock
    f []_IterFrame
}

func newBasicBlockIter(cfg *CFG) *BasicBlockIter {
    return &BasicBlockIter {
        g: cfg,
        f: []_IterFrame {{ bb: cfg.Root }},
    }
}

// Next advances the walk, returning false once every block has been seen.
func (self *BasicBlockIter) Next() bool {
    for len(self.f) != 0 {
        fp := &self.f[len(self.f) - 1]
        ch := self.g.DominatorOf[fp.bb.Id]

        /* descend into the next pending child, if any remain */
        if fp.next < len(ch) {
            fp.next++
            self.f = append(self.f, _IterFrame { bb: ch[fp.next - 1] })
            continue
        }

        /* children exhausted, emit the block itself */
        self.b = fp.bb
        self.f = self.f[:len(self.f) - 1]
        return true
    }

    /* clear the block pointer to indicate the end */
    self.b = nil
    return false
}

func (self *BasicBlockIter) Block() *BasicBlock {
    return self.b
}

func (self *BasicBlockIter) ForEach(action func(bb *BasicBlock)) {
    for self.Next() {
        action(self.b)
    }
}

// PostOrder iterates over the dominator tree rooted at the entry block.
func (self *CFG) PostOrder() *BasicBlockIter {
    return newBasicBlockIter(self)
}
