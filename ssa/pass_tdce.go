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

// TDCE removes trivial dead code: pure instructions whose destination is
// never read anywhere in the function. Deleting one definition can strand
// another, so it iterates until stable.
type TDCE struct{}

func (TDCE) Apply(cfg *CFG) error {
    for {
        done := true
        used := make(map[string]struct{})

        /* Phase 1: mark every variable that is read */
        cfg.PostOrder().ForEach(func(bb *BasicBlock) {
            for _, p := range bb.body() {
                for _, u := range p.Uses() {
                    used[u] = struct{}{}
                }

                /* a "set" keeps its shadow slot alive as well */
                for _, d := range p.Defs() {
                    if d != p.Dest {
                        used[d] = struct{}{}
                    }
                }
            }
        })

        /* Phase 2: drop pure definitions nobody reads */
        cfg.PostOrder().ForEach(func(bb *BasicBlock) {
            out := bb.Ins[:0]
            for _, p := range bb.Ins {
                if p.IsPure() && p.Dest != "" {
                    if _, ok := used[p.Dest]; !ok {
                        done = false
                        continue
                    }
                }
                out = append(out, p)
            }
            bb.Ins = out
        })

        if done {
            return nil
        }
    }
}
