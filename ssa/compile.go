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

type Pass interface {
    Apply(*CFG) error
}

type PassDescriptor struct {
    Pass Pass
    Name string
}

// LocalPasses rewrite within basic blocks and are valid in or out of SSA
// form. They run twice when OptimizeInSSA is set: renaming splits variables
// apart and exposes copies the first run could not see.
var LocalPasses = [...]PassDescriptor {
    { Name: "Constant Folding"           , Pass: new(ConstFold) },
    { Name: "Local Value Numbering"      , Pass: new(LVN) },
    { Name: "Trivial Dead Code Removal"  , Pass: new(TDCE) },
}

func executePasses(cfg *CFG, passes []PassDescriptor) error {
    for _, p := range passes {
        if err := p.Pass.Apply(cfg); err != nil {
            return err
        }
        if err := cfg.Rebuild(); err != nil {
            return err
        }
    }
    return nil
}

// OptimizeFunction builds the CFG for fn, round-trips it through SSA form,
// hoists loop invariants, and returns the final graph. The function body is
// not modified; call Linearize to write the result back.
func OptimizeFunction(fn *bril.Function, opts Options) (*CFG, error) {
    cfg, err := BuildCFG(fn)
    if err != nil {
        return nil, err
    }
    if cfg.CrossCheck = opts.CrossCheckDominance; cfg.CrossCheck {
        if err := cfg.Rebuild(); err != nil {
            return nil, err
        }
    }

    /* into SSA form, with the in-SSA cleanup if requested */
    if err := ToSSA(cfg); err != nil {
        return nil, err
    }
    if opts.OptimizeInSSA {
        if err := executePasses(cfg, LocalPasses[:]); err != nil {
            return nil, err
        }
    }

    /* back out, then the non-SSA pipeline */
    if err := FromSSA(cfg); err != nil {
        return nil, err
    }
    if err := executePasses(cfg, LocalPasses[:]); err != nil {
        return nil, err
    }

    licm := &LICM { Opts: opts }
    if err := licm.Apply(cfg); err != nil {
        return nil, err
    }

    /* hoisting may strand copies the loop no longer reads */
    if err := (&TDCE{}).Apply(cfg); err != nil {
        return nil, err
    }
    return cfg, cfg.Rebuild()
}

// Optimize runs OptimizeFunction over every function in the program and
// writes the transformed bodies back in place.
func Optimize(prog *bril.Program, opts Options) error {
    for _, fn := range prog.Funcs {
        cfg, err := OptimizeFunction(fn, opts)
        if err != nil {
            return err
        }
        cfg.Linearize()
    }
    return nil
}
