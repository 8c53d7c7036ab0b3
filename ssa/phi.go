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
    `sort`

    `github.com/oleiade/lane`

    `github.com/SyphonArch/Cornell-CS6120-Advanced-Compilers/bril`
)

type _PhiKey struct {
    b int
    v string
}

// ssaVariables returns the set of variables subject to renaming, and the
// declared type of every variable. Function parameters participate only
// when they are reassigned somewhere in the body; a read-only parameter
// keeps its original name throughout.
func ssaVariables(cfg *CFG) (map[string]bool, map[string]bril.Type) {
    all := make(map[string]bool)
    types := make(map[string]bril.Type)
    params := make(map[string]bool, len(cfg.Fn.Args))
    reassigned := make(map[string]bool)

    for _, a := range cfg.Fn.Args {
        params[a.Name] = true
        types[a.Name] = a.Type
    }
    for _, bb := range cfg.Blocks {
        for _, p := range bb.body() {
            for _, u := range p.Uses() {
                all[u] = true
            }
            for _, d := range p.Defs() {
                all[d] = true
                if params[d] {
                    reassigned[d] = true
                }
            }
            if p.Dest != "" && p.Type != bril.Void {
                types[p.Dest] = p.Type
            }
        }
    }

    vars := make(map[string]bool, len(all))
    for v := range all {
        if !params[v] || reassigned[v] {
            vars[v] = true
        }
    }
    return vars, types
}

// placePhiNodes computes, per block, the variables that need a merge there:
// the iterated dominance frontier of the variable's definition sites,
// restricted to blocks where the variable is live on entry. Returns the
// placement, the preassigned merge names, and the generation counters.
func placePhiNodes(cfg *CFG, vars map[string]bool, live []_LiveSet) (map[int]map[string]bool, map[_PhiKey]string, map[string]int) {
    entry := cfg.Entry()
    defs := make(map[string]map[int]bool)

    /* collect the definition sites */
    for i, bb := range cfg.Blocks {
        for _, p := range bb.body() {
            for _, d := range p.Defs() {
                if vars[d] {
                    if defs[d] == nil {
                        defs[d] = make(map[int]bool)
                    }
                    defs[d][i] = true
                }
            }
        }
    }

    /* a reassigned parameter is implicitly defined at the entry */
    for _, a := range cfg.Fn.Args {
        if vars[a.Name] {
            if defs[a.Name] == nil {
                defs[a.Name] = make(map[int]bool)
            }
            defs[a.Name][entry] = true
        }
    }

    /* deterministic variable order */
    order := make([]string, 0, len(defs))
    for v := range defs {
        order = append(order, v)
    }
    sort.Strings(order)

    /* close each variable's definition sites under the dominance frontier;
     * single-site variables are not exempt: a read in their frontier has a
     * path carrying no definition and merges with an undef */
    phis := make(map[int]map[string]bool)
    for _, v := range order {
        db := defs[v]
        q := lane.NewQueue()
        placed := make(map[int]bool)
        for b := range db {
            q.Enqueue(b)
        }
        for !q.Empty() {
            b := q.Dequeue().(int)
            for _, y := range cfg.DominanceFrontier[cfg.Blocks[b].Id] {
                j := cfg.index[y.Id]
                if placed[j] {
                    continue
                }

                /* dead merges are skipped: the variable must be live into
                 * the join for a phi to matter */
                if _, ok := live[j][v]; !ok {
                    continue
                }
                placed[j] = true
                if phis[j] == nil {
                    phis[j] = make(map[string]bool)
                }
                phis[j][v] = true
                if !db[j] {
                    q.Enqueue(j)
                }
            }
        }
    }

    /* preassign one fresh generation per merge site */
    count := make(map[string]int)
    names := make(map[_PhiKey]string)
    idx := make([]int, 0, len(phis))
    for b := range phis {
        idx = append(idx, b)
    }
    sort.Ints(idx)
    for _, b := range idx {
        for _, v := range sortedVars(phis[b]) {
            count[v]++
            names[_PhiKey { b, v }] = generation(v, count[v])
        }
    }
    return phis, names, count
}

func sortedVars(m map[string]bool) []string {
    r := make([]string, 0, len(m))
    for v := range m {
        r = append(r, v)
    }
    sort.Strings(r)
    return r
}
