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

// ConstFold evaluates arithmetic, comparison and logic instructions whose
// operands are all block-local constants, rewriting them into "const" in
// place. The constant environment is per-block, so it needs no dataflow
// facts and stays sound without SSA form. Booleans are carried as 0 / 1,
// matching their "const" encoding.
type ConstFold struct{}

func (ConstFold) Apply(cfg *CFG) error {
    for _, bb := range cfg.Blocks {
        env := make(map[string]int64)
        for _, p := range bb.Ins {
            foldInstr(p, env)
        }
    }
    return nil
}

func foldInstr(p *bril.Instr, env map[string]int64) {
    switch p.Op {
        case bril.OP_const: {
            env[p.Dest] = p.Value
        }

        /* integer arithmetic */
        case bril.OP_add : foldBinary(p, env, func(a, b int64) int64 { return a + b })
        case bril.OP_sub : foldBinary(p, env, func(a, b int64) int64 { return a - b })
        case bril.OP_mul : foldBinary(p, env, func(a, b int64) int64 { return a * b })

        /* division folds only when the divisor is a known non-zero */
        case bril.OP_div: {
            if a, b, ok := constOperands(p, env); ok && b != 0 {
                rewriteConst(p, env, a/b)
            } else {
                delete(env, p.Dest)
            }
        }

        /* integer comparisons */
        case bril.OP_eq : foldBinary(p, env, func(a, b int64) int64 { return b2i(a == b) })
        case bril.OP_lt : foldBinary(p, env, func(a, b int64) int64 { return b2i(a < b) })
        case bril.OP_gt : foldBinary(p, env, func(a, b int64) int64 { return b2i(a > b) })
        case bril.OP_le : foldBinary(p, env, func(a, b int64) int64 { return b2i(a <= b) })
        case bril.OP_ge : foldBinary(p, env, func(a, b int64) int64 { return b2i(a >= b) })

        /* boolean logic */
        case bril.OP_and : foldBinary(p, env, func(a, b int64) int64 { return b2i(a != 0 && b != 0) })
        case bril.OP_or  : foldBinary(p, env, func(a, b int64) int64 { return b2i(a != 0 || b != 0) })
        case bril.OP_not: {
            if a, ok := constOperand(p, env, 0); ok {
                rewriteConst(p, env, b2i(a == 0))
            } else {
                delete(env, p.Dest)
            }
        }

        /* copies of constants are constants */
        case bril.OP_id: {
            if v, ok := env[p.Args[0]]; ok {
                rewriteConst(p, env, v)
            } else {
                delete(env, p.Dest)
            }
        }

        /* anything else invalidates whatever it writes */
        default: {
            if p.Dest != "" {
                delete(env, p.Dest)
            }
            for _, d := range p.Defs() {
                delete(env, d)
            }
        }
    }
}

func b2i(v bool) int64 {
    if v {
        return 1
    } else {
        return 0
    }
}

func foldBinary(p *bril.Instr, env map[string]int64, fn func(a, b int64) int64) {
    if a, b, ok := constOperands(p, env); ok {
        rewriteConst(p, env, fn(a, b))
    } else {
        delete(env, p.Dest)
    }
}

func constOperands(p *bril.Instr, env map[string]int64) (int64, int64, bool) {
    a, oka := constOperand(p, env, 0)
    b, okb := constOperand(p, env, 1)
    return a, b, oka && okb
}

func constOperand(p *bril.Instr, env map[string]int64, i int) (int64, bool) {
    if i >= len(p.Args) {
        return 0, false
    }
    v, ok := env[p.Args[i]]
    return v, ok
}

// rewriteConst turns p into a "const" in place, keeping its destination and
// type, and records the value for later folds in the same block.
func rewriteConst(p *bril.Instr, env map[string]int64, v int64) {
    p.Op    = bril.OP_const
    p.Args  = nil
    p.Funcs = nil
    p.Value = v
    env[p.Dest] = v
}
