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
    `testing`

    `github.com/brianvoe/gofakeit/v6`
    `github.com/bytedance/gopkg/lang/fastrand`
    `github.com/stretchr/testify/require`

    `github.com/SyphonArch/Cornell-CS6120-Advanced-Compilers/bril`
)

func TestDominator_Diamond(t *testing.T) {
    cfg, err := BuildCFG(diamondFunc())
    require.NoError(t, err)

    entry := cfg.Root
    then := cfg.Labels["then"]
    els := cfg.Labels["else"]
    join := cfg.Labels["join"]

    require.Equal(t, entry, cfg.DominatedBy[then.Id])
    require.Equal(t, entry, cfg.DominatedBy[els.Id])
    require.Equal(t, entry, cfg.DominatedBy[join.Id])
    require.Nil(t, cfg.DominatedBy[entry.Id])

    require.True(t, cfg.Dominates(entry, join))
    require.False(t, cfg.Dominates(then, join))
    require.False(t, cfg.Dominates(els, join))

    /* both arms stop dominating at the merge point */
    require.Equal(t, []*BasicBlock { join }, cfg.DominanceFrontier[then.Id])
    require.Equal(t, []*BasicBlock { join }, cfg.DominanceFrontier[els.Id])
    require.Empty(t, cfg.DominanceFrontier[join.Id])
}

func TestDominator_Loop(t *testing.T) {
    cfg, err := BuildCFG(countdownFunc())
    require.NoError(t, err)

    loop := cfg.Labels["loop"]
    body := cfg.Labels["body"]
    done := cfg.Labels["done"]

    require.True(t, cfg.Dominates(loop, body))
    require.True(t, cfg.Dominates(loop, done))
    require.False(t, cfg.Dominates(body, done))

    /* the back edge puts the header in its own frontier */
    require.Contains(t, cfg.DominanceFrontier[body.Id], loop)
    require.Contains(t, cfg.DominanceFrontier[loop.Id], loop)
}

func TestDominator_Depth(t *testing.T) {
    cfg, err := BuildCFG(diamondFunc())
    require.NoError(t, err)

    require.Equal(t, 0, cfg.Depth[cfg.Root.Id])
    for _, bb := range cfg.Blocks {
        if dom := cfg.DominatedBy[bb.Id]; dom != nil {
            require.Equal(t, cfg.Depth[dom.Id] + 1, cfg.Depth[bb.Id])
        }
    }
}

func TestDominator_PostOrder(t *testing.T) {
    cfg, err := BuildCFG(diamondFunc())
    require.NoError(t, err)

    /* every block appears exactly once, after all of its tree children */
    seen := make(map[int]bool)
    for it := cfg.PostOrder(); it.Next(); {
        bb := it.Block()
        require.False(t, seen[bb.Id])
        for _, c := range cfg.DominatorOf[bb.Id] {
            require.True(t, seen[c.Id])
        }
        seen[bb.Id] = true
    }
    require.Len(t, seen, len(cfg.Blocks))
}

// randomFunction builds a function with n labeled blocks wired together by
// randomly chosen jumps, branches and returns. Unreachable blocks are fine,
// the builder prunes them.
func randomFunction(fk *gofakeit.Faker, n int) *bril.Function {
    lb := func(i int) string { return fmt.Sprintf("L%d", i) }
    b := bril.CreateBuilder(fk.Word(), bril.Void, bril.Param { Name: "cond", Type: bril.Bool })
    for i := 0; i < n; i++ {
        b.Label(lb(i))
        b.Const(fmt.Sprintf("v%d", i), int64(i))
        switch fastrand.Intn(4) {
            case 0  : b.Ret()
            case 1  : b.Jmp(lb(fastrand.Intn(n)))
            default : b.Br("cond", lb(fastrand.Intn(n)), lb(fastrand.Intn(n)))
        }
    }
    return b.Build()
}

func TestDominator_RandomizedOracle(t *testing.T) {
    fk := gofakeit.New(0x5120)
    for round := 0; round < 200; round++ {
        fn := randomFunction(fk, 2 + fastrand.Intn(14))
        cfg, err := BuildCFG(fn)
        require.NoError(t, err, fn.String())

        /* the removal-reachability oracle must agree with the dataflow
         * dominators block for block */
        require.NoError(t, cfg.crossCheckDominance(), fn.String())

        /* partial-order sanity on the fast sets */
        for i := range cfg.Blocks {
            require.True(t, cfg.dominates(cfg.Entry(), i))
            require.True(t, cfg.dominates(i, i))
            for j := range cfg.Blocks {
                if i != j && cfg.dominates(i, j) {
                    require.False(t, cfg.dominates(j, i))
                }
            }
        }

        /* the frontier against the naive sets: b lies in a's frontier
         * exactly when a dominates some predecessor of b but does not
         * strictly dominate b itself */
        naive := cfg.naiveDominators()
        for a := range cfg.Blocks {
            indf := make(map[int]bool)
            for _, f := range cfg.DominanceFrontier[cfg.Blocks[a].Id] {
                indf[cfg.index[f.Id]] = true
            }
            for b := range cfg.Blocks {
                edge := false
                for _, p := range cfg.preds[b] {
                    edge = edge || naive[p].Bit(a) == 1
                }
                want := edge && !(a != b && naive[b].Bit(a) == 1)
                require.Equal(t, want, indf[b], fn.String())
            }
        }
    }
}

func TestDominator_CrossCheckOnRebuild(t *testing.T) {
    cfg, err := BuildCFG(countdownFunc())
    require.NoError(t, err)

    cfg.CrossCheck = true
    require.NoError(t, cfg.Rebuild())
}
