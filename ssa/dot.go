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
    `html`
    `strings`

    `gonum.org/v1/gonum/graph/encoding/dot`
    `gonum.org/v1/gonum/graph/simple`
)

func dumpbb(bb *BasicBlock, cfg *CFG) string {
    var w int
    var ins []string
    for _, v := range bb.body() {
        for _, ss := range strings.Split(v.String(), "\n") {
            vv := strings.ReplaceAll(html.EscapeString(ss), " ", "&nbsp;")
            ins = append(ins, fmt.Sprintf("<tr><td align=\"left\">%s</td></tr>\n", vv))
            if len(ss) > w {
                w = len(ss)
            }
        }
    }
    var pred []string
    for _, d := range bb.Pred {
        pred = append(pred, d.Label)
    }
    idomby := "∅"
    if d := cfg.DominatedBy[bb.Id]; d != nil {
        idomby = d.Label
    }
    var df []string
    for _, d := range cfg.DominanceFrontier[bb.Id] {
        df = append(df, d.Label)
    }
    meta := []string {
        fmt.Sprintf("# pred = {%s}", strings.Join(pred, ", ")),
        fmt.Sprintf("# idom = %s", idomby),
        fmt.Sprintf("# df = {%s}", strings.Join(df, ", ")),
    }
    for i, ss := range meta {
        meta[i] = fmt.Sprintf("<tr><td align=\"left\">%s</td></tr>\n", ss)
        if len(ss) > w {
            w = len(ss)
        }
    }
    buf := []string {
        "<table border=\"1\" cellborder=\"0\" cellspacing=\"0\">\n",
        fmt.Sprintf("<tr><td width=\"%d\">.%s</td></tr>\n", w * 10 + 5, bb.Label),
        "<hr/>\n",
    }
    buf = append(buf, meta...)
    buf = append(buf, "<hr/>\n")
    buf = append(buf, ins...)
    buf = append(buf, "</table>")
    return strings.Join(buf, "")
}

// CFGDot renders the graph in Graphviz DOT form, one HTML-table node per
// basic block with its dominance facts inlined. Self-edges are legal here
// (a one-block loop), which is why this stays hand-rolled.
func (self *CFG) CFGDot() string {
    buf := []string {
        "digraph CFG {",
        `    xdotversion = "15"`,
        `    graph [ fontname = "Fira Code" ]`,
        `    node [ fontname = "Fira Code" fontsize="16" shape = "plaintext" ]`,
        `    edge [ fontname = "Fira Code" ]`,
        `    START [ shape = "circle" ]`,
        fmt.Sprintf(`    START -> bb_%d`, self.Root.Id),
    }
    for i, bb := range self.Blocks {
        buf = append(buf, fmt.Sprintf(`    bb_%d [ label = < %s > ]`, bb.Id, dumpbb(bb, self)))
        for _, j := range self.succs[i] {
            buf = append(buf, fmt.Sprintf(`    bb_%d -> bb_%d`, bb.Id, self.Blocks[j].Id))
        }
    }
    buf = append(buf, "}")
    return strings.Join(buf, "\n")
}

type _DotNode struct {
    id    int64
    label string
}

func (self _DotNode) ID() int64     { return self.id }
func (self _DotNode) DOTID() string { return self.label }

// DomTreeDot renders the dominator tree in DOT form. The tree is acyclic
// and self-edge free, so the stock graph encoder applies.
func (self *CFG) DomTreeDot() (string, error) {
    g := simple.NewDirectedGraph()
    for _, bb := range self.Blocks {
        g.AddNode(_DotNode { id: int64(bb.Id), label: bb.Label })
    }
    for _, bb := range self.Blocks {
        if dom := self.DominatedBy[bb.Id]; dom != nil {
            g.SetEdge(g.NewEdge(_DotNode { id: int64(dom.Id), label: dom.Label },
                                _DotNode { id: int64(bb.Id), label: bb.Label }))
        }
    }
    out, err := dot.Marshal(g, "DomTree", "", "    ")
    if err != nil {
        return "", err
    }
    return string(out), nil
}
