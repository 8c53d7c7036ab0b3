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

// Package bril models a register-based, basic-block oriented intermediate
// representation. A Function owns a flat instruction list; the ssa package
// splits it into basic blocks, analyzes it, and writes the rewritten list
// back. Parsing and serialization are deliberately left to external tools.
package bril

import (
    `fmt`
    `strings`
)

type Type string

const (
    Void Type = ""
    Int  Type = "int"
    Bool Type = "bool"
    Ptr  Type = "ptr"
)

type OpCode uint8

const (
    OP_nop    OpCode = iota
    OP_label         // .name:
    OP_const         // dest: type = const Value
    OP_id            // dest: type = id a
    OP_add           // dest: int = add a b
    OP_sub           // dest: int = sub a b
    OP_mul           // dest: int = mul a b
    OP_div           // dest: int = div a b
    OP_eq            // dest: bool = eq a b
    OP_lt            // dest: bool = lt a b
    OP_gt            // dest: bool = gt a b
    OP_le            // dest: bool = le a b
    OP_ge            // dest: bool = ge a b
    OP_not           // dest: bool = not a
    OP_and           // dest: bool = and a b
    OP_or            // dest: bool = or a b
    OP_jmp           // jmp .label
    OP_br            // br cond .then .else
    OP_ret           // ret [a]
    OP_call          // [dest: type =] call @func a...
    OP_print         // print a...
    OP_alloc         // dest: ptr = alloc n
    OP_free          // free p
    OP_store         // store p a
    OP_load          // dest: type = load p
    OP_ptradd        // dest: ptr = ptradd p off
    OP_set           // set shadow a
    OP_get           // dest: type = get
    OP_undef         // dest: type = undef
)

var _OpNames = map[OpCode]string {
    OP_nop    : "nop",
    OP_const  : "const",
    OP_id     : "id",
    OP_add    : "add",
    OP_sub    : "sub",
    OP_mul    : "mul",
    OP_div    : "div",
    OP_eq     : "eq",
    OP_lt     : "lt",
    OP_gt     : "gt",
    OP_le     : "le",
    OP_ge     : "ge",
    OP_not    : "not",
    OP_and    : "and",
    OP_or     : "or",
    OP_jmp    : "jmp",
    OP_br     : "br",
    OP_ret    : "ret",
    OP_call   : "call",
    OP_print  : "print",
    OP_alloc  : "alloc",
    OP_free   : "free",
    OP_store  : "store",
    OP_load   : "load",
    OP_ptradd : "ptradd",
    OP_set    : "set",
    OP_get    : "get",
    OP_undef  : "undef",
}

func (self OpCode) String() string {
    if v, ok := _OpNames[self]; ok {
        return v
    } else {
        return fmt.Sprintf("OpCode(%d)", self)
    }
}

// Instr is a single IR instruction. Exactly one variant applies per opcode:
// label markers use Label, value ops use Dest/Type/Args (plus Value for
// const), terminators use Labels and possibly Args, effect ops use
// Args/Funcs, and the SSA markers set/get/undef use Args or Dest.
type Instr struct {
    Op     OpCode
    Dest   string
    Type   Type
    Args   []string
    Funcs  []string
    Labels []string
    Label  string
    Value  int64
}

func (self *Instr) IsLabel() bool {
    return self.Op == OP_label
}

func (self *Instr) IsTerminator() bool {
    return self.Op == OP_jmp || self.Op == OP_br || self.Op == OP_ret
}

// IsPure reports whether the instruction computes a value without side
// effects. Division counts as pure here; whether it is safe to move is a
// separate question (it may trap).
func (self *Instr) IsPure() bool {
    switch self.Op {
        case OP_const , OP_id  : return true
        case OP_add   , OP_sub : return true
        case OP_mul   , OP_div : return true
        case OP_eq    , OP_lt  : return true
        case OP_gt    , OP_le  : return true
        case OP_ge    , OP_not : return true
        case OP_and   , OP_or  : return true
        default                : return false
    }
}

// HasEffect reports whether executing the instruction is observable beyond
// its destination: I/O, calls, memory operations, and the SSA "set" marker
// (which writes a shadow variable rather than its own destination).
func (self *Instr) HasEffect() bool {
    switch self.Op {
        case OP_print , OP_call  : return true
        case OP_alloc , OP_free  : return true
        case OP_store , OP_load  : return true
        case OP_ptradd           : return true
        case OP_set              : return true
        default                  : return false
    }
}

func (self *Instr) IsMemOp() bool {
    switch self.Op {
        case OP_alloc , OP_free   : return true
        case OP_store , OP_load   : return true
        case OP_ptradd            : return true
        default                   : return false
    }
}

func (self *Instr) IsSSAMarker() bool {
    return self.Op == OP_set || self.Op == OP_get || self.Op == OP_undef
}

// Uses returns the variables the instruction reads. For "set shadow src"
// only src is a read; the shadow slot is the write target.
func (self *Instr) Uses() []string {
    if self.Op == OP_set {
        return self.Args[1:]
    }
    return self.Args
}

// Defs returns the variables the instruction writes. A "set" writes its
// shadow slot; everything else writes Dest when present.
func (self *Instr) Defs() []string {
    if self.Op == OP_set {
        return self.Args[:1]
    }
    if self.Dest != "" {
        return []string { self.Dest }
    }
    return nil
}

func (self *Instr) Copy() *Instr {
    r := new(Instr)
    *r = *self
    r.Args = append([]string(nil), self.Args...)
    r.Funcs = append([]string(nil), self.Funcs...)
    r.Labels = append([]string(nil), self.Labels...)
    return r
}

func (self *Instr) String() string {
    switch self.Op {
        case OP_label : return "." + self.Label + ":"
        case OP_jmp   : return fmt.Sprintf("jmp .%s;", self.Labels[0])
        case OP_br    : return fmt.Sprintf("br %s .%s .%s;", self.Args[0], self.Labels[0], self.Labels[1])
    }

    /* effect position: no destination */
    if self.Dest == "" {
        buf := []string { self.Op.String() }
        for _, f := range self.Funcs {
            buf = append(buf, "@" + f)
        }
        buf = append(buf, self.Args...)
        return strings.Join(buf, " ") + ";"
    }

    /* value position */
    buf := []string { fmt.Sprintf("%s: %s =", self.Dest, self.Type), self.Op.String() }
    if self.Op == OP_const {
        if self.Type == Bool {
            buf = append(buf, fmt.Sprintf("%v", self.Value != 0))
        } else {
            buf = append(buf, fmt.Sprintf("%d", self.Value))
        }
    }
    for _, f := range self.Funcs {
        buf = append(buf, "@" + f)
    }
    buf = append(buf, self.Args...)
    return strings.Join(buf, " ") + ";"
}

type Param struct {
    Name string
    Type Type
}

type Function struct {
    Name string
    Type Type
    Args []Param
    Body []*Instr
}

func (self *Function) Copy() *Function {
    r := &Function {
        Name : self.Name,
        Type : self.Type,
        Args : append([]Param(nil), self.Args...),
    }
    for _, p := range self.Body {
        r.Body = append(r.Body, p.Copy())
    }
    return r
}

func (self *Function) String() string {
    var args []string
    for _, a := range self.Args {
        args = append(args, fmt.Sprintf("%s: %s", a.Name, a.Type))
    }
    buf := []string { fmt.Sprintf("@%s(%s) {", self.Name, strings.Join(args, ", ")) }
    for _, p := range self.Body {
        if p.IsLabel() {
            buf = append(buf, p.String())
        } else {
            buf = append(buf, "  " + p.String())
        }
    }
    buf = append(buf, "}")
    return strings.Join(buf, "\n")
}

// Program is an ordered, name-unique set of functions.
type Program struct {
    Funcs []*Function
}

func (self *Program) Func(name string) *Function {
    for _, fn := range self.Funcs {
        if fn.Name == name {
            return fn
        }
    }
    return nil
}

func (self *Program) Copy() *Program {
    r := new(Program)
    for _, fn := range self.Funcs {
        r.Funcs = append(r.Funcs, fn.Copy())
    }
    return r
}

func (self *Program) String() string {
    buf := make([]string, 0, len(self.Funcs))
    for _, fn := range self.Funcs {
        buf = append(buf, fn.String())
    }
    return strings.Join(buf, "\n\n")
}
