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
    `fmt`

    `github.com/SyphonArch/Cornell-CS6120-Advanced-Compilers/bril`
)

func generation(v string, n int) string {
    return fmt.Sprintf("%s.%d", v, n)
}

// _Renamer carries the transient renaming state of one function: the
// per-variable current-definition stacks and the generation counters. It is
// created per conversion and never escapes it, so renaming one function can
// never leak into another.
type _Renamer struct {
    cfg   *CFG
    vars  map[string]bool
    types map[string]bril.Type
    phis  map[int]map[string]bool
    names map[_PhiKey]string
    count map[string]int
    stack map[string][]string
    undef int
}

type _RenameFrame struct {
    b     int
    next  int
    saved map[string]int
}

func (self *_Renamer) top(v string) (string, bool) {
    if s := self.stack[v]; len(s) != 0 {
        return s[len(s)-1], true
    }
    return "", false
}

func (self *_Renamer) push(v string) string {
    self.count[v]++
    n := generation(v, self.count[v])
    self.stack[v] = append(self.stack[v], n)
    return n
}

func (self *_Renamer) renameUses(p *bril.Instr) {
    lo := 0
    if p.Op == bril.OP_set {
        lo = 1
    }
    for i := lo; i < len(p.Args); i++ {
        if self.vars[p.Args[i]] {
            if cur, ok := self.top(p.Args[i]); ok {
                p.Args[i] = cur
            }
        }
    }
}

func (self *_Renamer) typeOf(v string) bril.Type {
    if t, ok := self.types[v]; ok {
        return t
    }
    return bril.Int
}

// enter rewrites one block and returns its traversal frame: merge reads
// ("get") at the top, renamed body, then the merge writes ("set") for every
// successor, placed just before the terminator.
func (self *_Renamer) enter(b int) *_RenameFrame {
    bb := self.cfg.Blocks[b]
    saved := make(map[string]int)
    save := func(v string) {
        if _, ok := saved[v]; !ok {
            saved[v] = len(self.stack[v])
        }
    }

    /* materialize the merged values */
    out := make([]*bril.Instr, 0, len(bb.Ins) + 2*len(self.phis[b]))
    for _, v := range sortedVars(self.phis[b]) {
        name := self.names[_PhiKey { b, v }]
        out = append(out, &bril.Instr { Op: bril.OP_get, Dest: name, Type: self.typeOf(v) })
        save(v)
        self.stack[v] = append(self.stack[v], name)
    }

    /* rename the body: every use reads the current generation, every
     * definition pushes a fresh one */
    for _, p := range bb.Ins {
        self.renameUses(p)
        if p.Dest != "" && self.vars[p.Dest] {
            save(p.Dest)
            p.Dest = self.push(p.Dest)
        }
        out = append(out, p)
    }

    /* the terminator may read (conditional branch, return value) */
    self.renameUses(bb.Term)

    /* flow the current generation into every successor merge; a path with
     * no definition at all contributes an explicit undef */
    for _, s := range self.cfg.succs[b] {
        for _, v := range sortedVars(self.phis[s]) {
            shadow := self.names[_PhiKey { s, v }]
            if cur, ok := self.top(v); ok {
                out = append(out, &bril.Instr { Op: bril.OP_set, Args: []string { shadow, cur } })
            } else {
                self.undef++
                u := fmt.Sprintf("%s.undef.%d", v, self.undef)
                out = append(out, &bril.Instr { Op: bril.OP_undef, Dest: u, Type: self.typeOf(v) })
                out = append(out, &bril.Instr { Op: bril.OP_set, Args: []string { shadow, u } })
            }
        }
    }

    bb.Ins = out
    return &_RenameFrame { b: b, saved: saved }
}

func (self *_Renamer) restore(f *_RenameFrame) {
    for v, n := range f.saved {
        self.stack[v] = self.stack[v][:n]
    }
}

// rename walks the dominator tree in pre-order with an explicit frame stack,
// popping each block's definitions when its subtree is done.
func (self *_Renamer) rename() {
    stack := []*_RenameFrame { self.enter(self.cfg.Entry()) }
    for len(stack) != 0 {
        f := stack[len(stack)-1]
        kids := self.cfg.domtree.children[f.b]
        if f.next < len(kids) {
            c := kids[f.next]
            f.next++
            stack = append(stack, self.enter(c))
        } else {
            self.restore(f)
            stack = stack[:len(stack)-1]
        }
    }
}

// ToSSA lifts the function into SSA form: definition-site "set", use-site
// "get", and "undef" markers, placed via the dominance frontier and renamed
// along the dominator tree. The block structure is unchanged, so the
// dominance facts stay valid.
func ToSSA(cfg *CFG) error {
    vars, types := ssaVariables(cfg)
    live, err := cfg.liveIn()
    if err != nil {
        return err
    }

    phis, names, count := placePhiNodes(cfg, vars, live)
    rr := &_Renamer {
        cfg   : cfg,
        vars  : vars,
        types : types,
        phis  : phis,
        names : names,
        count : count,
        stack : make(map[string][]string),
    }

    /* parameters enter at generation zero: their original names */
    for _, a := range cfg.Fn.Args {
        rr.stack[a.Name] = []string { a.Name }
    }

    rr.rename()
    return nil
}
