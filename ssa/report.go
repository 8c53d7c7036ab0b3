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
    `sort`
    `strings`

    `github.com/SyphonArch/Cornell-CS6120-Advanced-Compilers/bril`
)

// LoopInfo describes one natural loop found in a function, with the number
// of instructions the invariant hoister moved out of it.
type LoopInfo struct {
    Header  string
    Blocks  []string
    Hoisted int
}

// FunctionReport is the per-function analysis summary: dominance facts keyed
// by block label, the SSA verdict after a to-SSA round trip, and the loops
// with their hoist counts. All label lists are sorted for stable output.
type FunctionReport struct {
    Name        string
    Entry       string
    ImmDom      map[string]string
    DomChildren map[string][]string
    Frontier    map[string][]string
    InSSA       bool
    Loops       []LoopInfo
}

// Analyze computes a FunctionReport for fn without modifying it: the loop
// optimizer runs on a private copy.
func Analyze(fn *bril.Function, opts Options) (*FunctionReport, error) {
    priv := fn.Copy()
    cfg, err := BuildCFG(priv)
    if err != nil {
        return nil, err
    }
    cfg.CrossCheck = opts.CrossCheckDominance

    rp := &FunctionReport {
        Name        : fn.Name,
        Entry       : cfg.Root.Label,
        ImmDom      : make(map[string]string, len(cfg.Blocks)),
        DomChildren : make(map[string][]string, len(cfg.Blocks)),
        Frontier    : make(map[string][]string, len(cfg.Blocks)),
    }

    for _, bb := range cfg.Blocks {
        if dom := cfg.DominatedBy[bb.Id]; dom != nil {
            rp.ImmDom[bb.Label] = dom.Label
        }
        for _, c := range cfg.DominatorOf[bb.Id] {
            rp.DomChildren[bb.Label] = append(rp.DomChildren[bb.Label], c.Label)
        }
        for _, f := range cfg.DominanceFrontier[bb.Id] {
            rp.Frontier[bb.Label] = append(rp.Frontier[bb.Label], f.Label)
        }
        sort.Strings(rp.DomChildren[bb.Label])
        sort.Strings(rp.Frontier[bb.Label])
    }

    /* SSA verdict: convert, validate, convert back */
    if err := ToSSA(cfg); err != nil {
        return nil, err
    }
    rp.InSSA = IsSSA(cfg)
    if err := FromSSA(cfg); err != nil {
        return nil, err
    }

    /* loop structure plus hoist counts from a full LICM run */
    licm := &LICM { Opts: opts }
    if err := licm.Apply(cfg); err != nil {
        return nil, err
    }
    for _, loop := range findLoops(cfg) {
        info := LoopInfo { Header: cfg.Blocks[loop.Header].Label }
        for b := range loop.Blocks {
            info.Blocks = append(info.Blocks, cfg.Blocks[b].Label)
        }
        sort.Strings(info.Blocks)
        info.Hoisted = licm.Hoisted[info.Header]
        rp.Loops = append(rp.Loops, info)
    }
    sort.Slice(rp.Loops, func(i, j int) bool {
        return rp.Loops[i].Header < rp.Loops[j].Header
    })
    return rp, nil
}

// AnalyzeProgram maps Analyze over every function, in declaration order.
func AnalyzeProgram(prog *bril.Program, opts Options) ([]*FunctionReport, error) {
    rps := make([]*FunctionReport, 0, len(prog.Funcs))
    for _, fn := range prog.Funcs {
        rp, err := Analyze(fn, opts)
        if err != nil {
            return nil, err
        }
        rps = append(rps, rp)
    }
    return rps, nil
}

func (self *FunctionReport) String() string {
    buf := []string { fmt.Sprintf("@%s: entry=.%s ssa=%v", self.Name, self.Entry, self.InSSA) }
    labels := make([]string, 0, len(self.DomChildren))
    for l := range self.DomChildren {
        labels = append(labels, l)
    }
    sort.Strings(labels)
    for _, l := range labels {
        buf = append(buf, fmt.Sprintf("  .%s: idom=%s children=%v frontier=%v",
            l, self.ImmDom[l], self.DomChildren[l], self.Frontier[l]))
    }
    for _, loop := range self.Loops {
        buf = append(buf, fmt.Sprintf("  loop .%s: blocks=%v hoisted=%d", loop.Header, loop.Blocks, loop.Hoisted))
    }
    return strings.Join(buf, "\n")
}
