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
)

// FromSSA lowers the set/get form back to ordinary instructions: every
// "set shadow, src" becomes "shadow = id src" in its predecessor, so each
// control path establishes the merged value before entering the join, and
// the "get" reads become plain uses of the shadow variable. Sets whose
// shadow is never read are dropped along with their merge.
func FromSSA(cfg *CFG) error {
    shadows := make(map[string]bril.Type)

    /* the get sites define the shadow variables and carry their types */
    for _, bb := range cfg.Blocks {
        for _, p := range bb.Ins {
            if p.Op == bril.OP_get {
                shadows[p.Dest] = p.Type
            }
        }
    }

    /* rewrite every block in place */
    for _, bb := range cfg.Blocks {
        out := bb.Ins[:0]
        for _, p := range bb.Ins {
            switch p.Op {
                case bril.OP_get: {
                    /* the copies in the predecessors already established
                     * the value; the marker disappears */
                }
                case bril.OP_set: {
                    if tp, ok := shadows[p.Args[0]]; ok {
                        out = append(out, &bril.Instr {
                            Op   : bril.OP_id,
                            Dest : p.Args[0],
                            Type : tp,
                            Args : []string { p.Args[1] },
                        })
                    }
                }
                default: {
                    out = append(out, p)
                }
            }
        }
        bb.Ins = out
    }
    return nil
}
