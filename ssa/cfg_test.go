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
    `strings`
    `testing`

    `github.com/stretchr/testify/require`

    `github.com/SyphonArch/Cornell-CS6120-Advanced-Compilers/bril`
)

// main(cond): diamond with a merge block.
func diamondFunc() *bril.Function {
    return bril.CreateBuilder("main", bril.Void, bril.Param { Name: "cond", Type: bril.Bool }).
        Const("a", 1).
        Br("cond", "then", "else").
        Label("then").
        Const("b", 2).
        Jmp("join").
        Label("else").
        Const("b", 3).
        Jmp("join").
        Label("join").
        Add("c", "a", "b").
        Print("c").
        Ret().
        Build()
}

// main(n): count down from n, printing each value.
func countdownFunc() *bril.Function {
    return bril.CreateBuilder("main", bril.Void, bril.Param { Name: "n", Type: bril.Int }).
        Label("loop").
        Const("zero", 0).
        Gt("c", "n", "zero").
        Br("c", "body", "done").
        Label("body").
        Print("n").
        Const("one", 1).
        Sub("n", "n", "one").
        Jmp("loop").
        Label("done").
        Ret().
        Build()
}

func TestCFG_StraightLine(t *testing.T) {
    fn := bril.CreateBuilder("main", bril.Void).
        Const("a", 1).
        Const("b", 2).
        Add("c", "a", "b").
        Print("c").
        Build()

    cfg, err := BuildCFG(fn)
    require.NoError(t, err)
    require.Len(t, cfg.Blocks, 1)
    require.Equal(t, bril.OP_ret, cfg.Root.Term.Op)
    require.Len(t, cfg.Root.Ins, 4)
}

func TestCFG_Diamond(t *testing.T) {
    cfg, err := BuildCFG(diamondFunc())
    require.NoError(t, err)
    require.Len(t, cfg.Blocks, 4)

    join := cfg.Labels["join"]
    require.NotNil(t, join)
    require.Len(t, join.Pred, 2)
    require.Empty(t, cfg.Root.Pred)

    require.Equal(t, bril.OP_br, cfg.Root.Term.Op)
    require.Equal(t, bril.OP_jmp, cfg.Labels["then"].Term.Op)
}

func TestCFG_EntrySplit(t *testing.T) {
    cfg, err := BuildCFG(countdownFunc())
    require.NoError(t, err)

    /* "loop" is a branch target, so a synthesized entry sits in front */
    require.NotEqual(t, "loop", cfg.Root.Label)
    require.Empty(t, cfg.Root.Pred)
    require.Empty(t, cfg.Root.Ins)
    require.Equal(t, bril.OP_jmp, cfg.Root.Term.Op)
    require.Equal(t, "loop", cfg.Root.Term.Labels[0])
}

func TestCFG_DuplicateLabel(t *testing.T) {
    fn := bril.CreateBuilder("main", bril.Void).
        Label("a").
        Const("x", 1).
        Label("a").
        Ret().
        Build()

    _, err := BuildCFG(fn)
    require.Error(t, err)
    require.IsType(t, MalformedProgramError{}, err)
    require.Contains(t, err.Error(), "duplicate label")
}

func TestCFG_DanglingLabel(t *testing.T) {
    fn := bril.CreateBuilder("main", bril.Void).
        Jmp("nowhere").
        Build()

    _, err := BuildCFG(fn)
    require.Error(t, err)
    require.IsType(t, MalformedProgramError{}, err)
    require.Contains(t, err.Error(), "nowhere")
}

func TestCFG_UnreachablePruned(t *testing.T) {
    fn := bril.CreateBuilder("main", bril.Void).
        Const("a", 1).
        Ret().
        Label("dead").
        Const("b", 2).
        Ret().
        Build()

    cfg, err := BuildCFG(fn)
    require.NoError(t, err)
    require.Len(t, cfg.Blocks, 1)
    require.Nil(t, cfg.Labels["dead"])
}

func TestCFG_LinearizeRoundTrip(t *testing.T) {
    fn := diamondFunc()
    ref := fn.Copy()
    prog := &bril.Program { Funcs: []*bril.Function { fn } }
    refp := &bril.Program { Funcs: []*bril.Function { ref } }

    cfg, err := BuildCFG(fn)
    require.NoError(t, err)
    cfg.Linearize()

    for _, cond := range []int64 { 0, 1 } {
        require.Equal(t, evalMain(t, refp, cond), evalMain(t, prog, cond))
    }

    /* the flat form must split back into the identical block structure */
    re, err := BuildCFG(fn)
    require.NoError(t, err)
    require.Equal(t, cfg.String(), re.String())
}

func TestCFG_Dot(t *testing.T) {
    cfg, err := BuildCFG(countdownFunc())
    require.NoError(t, err)

    dot := cfg.CFGDot()
    require.True(t, strings.HasPrefix(dot, "digraph CFG {"))
    for _, bb := range cfg.Blocks {
        require.Contains(t, dot, bb.Label)
    }

    tree, err := cfg.DomTreeDot()
    require.NoError(t, err)
    require.Contains(t, tree, "DomTree")
    require.Contains(t, tree, "loop")
}
