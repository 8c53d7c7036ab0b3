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
    `math/big`
    `sort`

    `github.com/davecgh/go-spew/spew`
)

/** The correctness oracle for the fast dominator computation: A dominates B
 *  iff deleting A from the graph makes B unreachable from the entry. O(n²),
 *  it only runs in cross-check mode.
 */

// naiveDominators recomputes the dominator sets from first principles.
func (self *CFG) naiveDominators() []*big.Int {
    n := len(self.Blocks)
    entry := self.Entry()
    dom := make([]*big.Int, n)
    for i := 0; i < n; i++ {
        dom[i] = new(big.Int)
    }

    for a := 0; a < n; a++ {
        /* reachability with block a removed */
        seen := make([]bool, n)
        if a != entry {
            stack := []int { entry }
            seen[entry] = true
            for len(stack) != 0 {
                b := stack[len(stack)-1]
                stack = stack[:len(stack)-1]
                for _, s := range self.succs[b] {
                    if s != a && !seen[s] {
                        seen[s] = true
                        stack = append(stack, s)
                    }
                }
            }
        }

        /* a dominates itself and every block its removal disconnects */
        for b := 0; b < n; b++ {
            if b == a || !seen[b] {
                dom[b].SetBit(dom[b], a, 1)
            }
        }
    }
    return dom
}

func (self *CFG) dumpDomSet(v *big.Int) []string {
    var r []string
    for i := 0; i < len(self.Blocks); i++ {
        if v.Bit(i) == 1 {
            r = append(r, self.Blocks[i].Label)
        }
    }
    sort.Strings(r)
    return r
}

// crossCheckDominance compares the fast dominator sets against the naive
// oracle and fails loudly on the first disagreement.
func (self *CFG) crossCheckDominance() error {
    oracle := self.naiveDominators()
    for i := 0; i < len(self.Blocks); i++ {
        if self.domset[i].Cmp(oracle[i]) != 0 {
            spew.Config.SortKeys = true
            return DominanceMismatchError {
                Func  : self.Fn.Name,
                Block : self.Blocks[i].Label,
                Dump  : spew.Sdump(map[string][]string {
                    "fast"  : self.dumpDomSet(self.domset[i]),
                    "naive" : self.dumpDomSet(oracle[i]),
                }),
            }
        }
    }
    return nil
}
