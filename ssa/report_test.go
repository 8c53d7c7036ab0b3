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
    `testing`

    `github.com/stretchr/testify/require`

    `github.com/SyphonArch/Cornell-CS6120-Advanced-Compilers/bril`
)

func TestReport_Countdown(t *testing.T) {
    fn := countdownFunc()
    before := fn.String()

    rp, err := Analyze(fn, DefaultOptions())
    require.NoError(t, err)

    /* the input function is never touched */
    require.Equal(t, before, fn.String())

    require.Equal(t, "main", rp.Name)
    require.True(t, rp.InSSA)
    require.Equal(t, "loop", rp.ImmDom["body"])
    require.Equal(t, "loop", rp.ImmDom["done"])
    require.ElementsMatch(t, []string { "body", "done" }, rp.DomChildren["loop"])
    require.Contains(t, rp.Frontier["body"], "loop")

    require.Len(t, rp.Loops, 1)
    require.Equal(t, "loop", rp.Loops[0].Header)
    require.ElementsMatch(t, []string { "loop", "body" }, rp.Loops[0].Blocks)
}

func TestReport_HoistCount(t *testing.T) {
    rp, err := Analyze(invariantLoopFunc(), DefaultOptions())
    require.NoError(t, err)
    require.Len(t, rp.Loops, 1)
    require.Equal(t, 1, rp.Loops[0].Hoisted)
}

func TestReport_Program(t *testing.T) {
    prog := &bril.Program { Funcs: []*bril.Function { countdownFunc(), diamondFunc() } }
    prog.Funcs[1].Name = "diamond"

    rps, err := AnalyzeProgram(prog, DefaultOptions())
    require.NoError(t, err)
    require.Len(t, rps, 2)
    require.Equal(t, "main", rps[0].Name)
    require.Equal(t, "diamond", rps[1].Name)

    out := rps[0].String()
    require.Contains(t, out, "@main")
    require.Contains(t, out, "loop")
}
