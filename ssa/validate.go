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

type _DefSite struct {
    block int
    index int
}

// ValidateSSA checks the two SSA properties: every variable has exactly one
// static definition, and every use is dominated by that definition.
// The "set" markers are edge assignments to their shadow slot, not
// definitions; the shadow's single definition is its "get".
func ValidateSSA(cfg *CFG) error {
    params := make(map[string]bool, len(cfg.Fn.Args))
    for _, a := range cfg.Fn.Args {
        params[a.Name] = true
    }

    /* collect the unique definition sites */
    defs := make(map[string]_DefSite)
    for i, bb := range cfg.Blocks {
        for j, p := range bb.Ins {
            if p.Dest == "" {
                continue
            }
            if _, dup := defs[p.Dest]; dup || params[p.Dest] {
                return NotInSSAFormError {
                    Func   : cfg.Fn.Name,
                    Block  : bb.Label,
                    Var    : p.Dest,
                    Reason : "multiple static definitions",
                }
            }
            defs[p.Dest] = _DefSite { block: i, index: j }
        }
    }

    /* every use must be dominated by its definition */
    check := func(bb *BasicBlock, b int, j int, p *bril.Instr) error {
        for _, u := range p.Uses() {
            if params[u] {
                continue
            }
            d, ok := defs[u]
            if !ok {
                return NotInSSAFormError { Func: cfg.Fn.Name, Block: bb.Label, Var: u, Reason: "use without a definition" }
            }
            if d.block == b {
                if d.index >= j {
                    return NotInSSAFormError { Func: cfg.Fn.Name, Block: bb.Label, Var: u, Reason: "use before definition" }
                }
                continue
            }
            if !cfg.dominates(d.block, b) {
                return NotInSSAFormError { Func: cfg.Fn.Name, Block: bb.Label, Var: u, Reason: "use not dominated by its definition" }
            }
        }
        return nil
    }

    for i, bb := range cfg.Blocks {
        for j, p := range bb.Ins {
            if err := check(bb, i, j, p); err != nil {
                return err
            }
        }
        if err := check(bb, i, len(bb.Ins), bb.Term); err != nil {
            return err
        }
    }
    return nil
}

// IsSSA reports whether the function is in valid SSA form.
func IsSSA(cfg *CFG) bool {
    return ValidateSSA(cfg) == nil
}
