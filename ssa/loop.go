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
)

// Loop is a natural loop: a header that dominates the source of every back
// edge targeting it. Loops sharing a header are merged into one. All block
// references are dense indices into cfg.Blocks, valid until the next
// Rebuild.
type Loop struct {
    Header int
    Tails  []int
    Blocks map[int]bool
}

func (self *Loop) contains(b int) bool {
    return self.Blocks[b]
}

// exits returns the loop blocks with at least one successor outside.
func (self *Loop) exits(cfg *CFG) []int {
    var r []int
    for b := range self.Blocks {
        for _, s := range cfg.succs[b] {
            if !self.Blocks[s] {
                r = append(r, b)
                break
            }
        }
    }
    sort.Ints(r)
    return r
}

// findLoops detects every natural loop: back edges are CFG edges whose
// target dominates their source; the body is collected by walking
// predecessors backwards from the tail, never crossing the header.
func findLoops(cfg *CFG) []*Loop {
    byHeader := make(map[int]*Loop)

    for b := range cfg.Blocks {
        for _, s := range cfg.succs[b] {
            if !cfg.dominates(s, b) {
                continue
            }

            /* back edge b -> s; merge into the header's loop */
            loop := byHeader[s]
            if loop == nil {
                loop = &Loop { Header: s, Blocks: map[int]bool { s: true } }
                byHeader[s] = loop
            }
            loop.Tails = append(loop.Tails, b)

            /* reverse reachability from the tail, bounded by the header
             * and the dominance relation */
            work := []int { b }
            for len(work) != 0 {
                x := work[len(work)-1]
                work = work[:len(work)-1]
                if loop.Blocks[x] || !cfg.dominates(s, x) {
                    continue
                }
                loop.Blocks[x] = true
                for _, p := range cfg.preds[x] {
                    if p != s {
                        work = append(work, p)
                    }
                }
            }
        }
    }

    /* stable order: outermost-first by header position */
    r := make([]*Loop, 0, len(byHeader))
    for _, loop := range byHeader {
        sort.Ints(loop.Tails)
        r = append(r, loop)
    }
    sort.Slice(r, func(i int, j int) bool {
        return r[i].Header < r[j].Header
    })
    return r
}

// ensurePreheader synthesizes the preheader block for a loop and retargets
// every predecessor of the header from outside the loop onto it. The caller
// must Rebuild afterwards.
func (self *CFG) ensurePreheader(loop *Loop) *BasicBlock {
    header := self.Blocks[loop.Header]
    pre := self.CreateBlock(header.Label + ".preheader")
    pre.Term = &bril.Instr { Op: bril.OP_jmp, Labels: []string { header.Label } }

    /* retarget the outside predecessors */
    for _, p := range self.preds[loop.Header] {
        if loop.contains(p) {
            continue
        }
        t := self.Blocks[p].Term
        for i, to := range t.Labels {
            if to == header.Label {
                t.Labels[i] = pre.Label
            }
        }
    }

    self.insertBefore(pre, header)
    return pre
}
