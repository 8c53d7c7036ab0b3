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

package bril

// Builder assembles a Function instruction by instruction. It tracks the
// declared type of every destination so copies and loads can infer theirs.
type Builder struct {
    fn    *Function
    types map[string]Type
}

func CreateBuilder(name string, ret Type, args ...Param) *Builder {
    p := &Builder {
        fn    : &Function { Name: name, Type: ret, Args: args },
        types : make(map[string]Type),
    }
    for _, a := range args {
        p.types[a.Name] = a.Type
    }
    return p
}

func (self *Builder) typeof(v string) Type {
    if t, ok := self.types[v]; ok {
        return t
    }
    return Int
}

func (self *Builder) value(op OpCode, dst string, tp Type, args ...string) *Builder {
    self.types[dst] = tp
    self.fn.Body = append(self.fn.Body, &Instr { Op: op, Dest: dst, Type: tp, Args: args })
    return self
}

func (self *Builder) effect(op OpCode, args ...string) *Builder {
    self.fn.Body = append(self.fn.Body, &Instr { Op: op, Args: args })
    return self
}

func (self *Builder) Label(name string) *Builder {
    self.fn.Body = append(self.fn.Body, &Instr { Op: OP_label, Label: name })
    return self
}

func (self *Builder) Const(dst string, v int64) *Builder {
    self.types[dst] = Int
    self.fn.Body = append(self.fn.Body, &Instr { Op: OP_const, Dest: dst, Type: Int, Value: v })
    return self
}

func (self *Builder) ConstBool(dst string, v bool) *Builder {
    iv := int64(0)
    if v {
        iv = 1
    }
    self.types[dst] = Bool
    self.fn.Body = append(self.fn.Body, &Instr { Op: OP_const, Dest: dst, Type: Bool, Value: iv })
    return self
}

func (self *Builder) Id(dst string, src string) *Builder {
    return self.value(OP_id, dst, self.typeof(src), src)
}

func (self *Builder) Add(dst string, x string, y string) *Builder { return self.value(OP_add, dst, Int, x, y) }
func (self *Builder) Sub(dst string, x string, y string) *Builder { return self.value(OP_sub, dst, Int, x, y) }
func (self *Builder) Mul(dst string, x string, y string) *Builder { return self.value(OP_mul, dst, Int, x, y) }
func (self *Builder) Div(dst string, x string, y string) *Builder { return self.value(OP_div, dst, Int, x, y) }

func (self *Builder) Eq(dst string, x string, y string) *Builder { return self.value(OP_eq, dst, Bool, x, y) }
func (self *Builder) Lt(dst string, x string, y string) *Builder { return self.value(OP_lt, dst, Bool, x, y) }
func (self *Builder) Gt(dst string, x string, y string) *Builder { return self.value(OP_gt, dst, Bool, x, y) }
func (self *Builder) Le(dst string, x string, y string) *Builder { return self.value(OP_le, dst, Bool, x, y) }
func (self *Builder) Ge(dst string, x string, y string) *Builder { return self.value(OP_ge, dst, Bool, x, y) }

func (self *Builder) Not(dst string, x string) *Builder           { return self.value(OP_not, dst, Bool, x) }
func (self *Builder) And(dst string, x string, y string) *Builder { return self.value(OP_and, dst, Bool, x, y) }
func (self *Builder) Or(dst string, x string, y string) *Builder  { return self.value(OP_or, dst, Bool, x, y) }

func (self *Builder) Jmp(to string) *Builder {
    self.fn.Body = append(self.fn.Body, &Instr { Op: OP_jmp, Labels: []string { to } })
    return self
}

func (self *Builder) Br(cond string, then string, els string) *Builder {
    self.fn.Body = append(self.fn.Body, &Instr { Op: OP_br, Args: []string { cond }, Labels: []string { then, els } })
    return self
}

func (self *Builder) Ret(args ...string) *Builder {
    return self.effect(OP_ret, args...)
}

func (self *Builder) Print(args ...string) *Builder {
    return self.effect(OP_print, args...)
}

func (self *Builder) Call(fn string, args ...string) *Builder {
    self.fn.Body = append(self.fn.Body, &Instr { Op: OP_call, Funcs: []string { fn }, Args: args })
    return self
}

func (self *Builder) CallTo(dst string, tp Type, fn string, args ...string) *Builder {
    self.types[dst] = tp
    self.fn.Body = append(self.fn.Body, &Instr { Op: OP_call, Dest: dst, Type: tp, Funcs: []string { fn }, Args: args })
    return self
}

func (self *Builder) Alloc(dst string, n string) *Builder {
    return self.value(OP_alloc, dst, Ptr, n)
}

func (self *Builder) Free(p string) *Builder {
    return self.effect(OP_free, p)
}

func (self *Builder) Store(p string, v string) *Builder {
    return self.effect(OP_store, p, v)
}

func (self *Builder) Load(dst string, p string) *Builder {
    return self.value(OP_load, dst, Int, p)
}

func (self *Builder) PtrAdd(dst string, p string, off string) *Builder {
    return self.value(OP_ptradd, dst, Ptr, p, off)
}

func (self *Builder) Build() *Function {
    return self.fn
}
