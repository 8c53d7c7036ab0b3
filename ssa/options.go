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

// Options configures the optimization pipeline.
type Options struct {
    /* MaxFixpointRounds bounds the LICM re-run loop; exceeding it is an
     * internal-invariant violation, not a soft limit. */
    MaxFixpointRounds int

    /* MemOpsAsBarriers keeps memory operations as unconditional hoist
     * barriers. This is always true in the current design; the flag exists
     * so a future points-to model has somewhere to plug in. */
    MemOpsAsBarriers bool

    /* CrossCheckDominance re-derives dominance with the naive O(n²) oracle
     * on every Rebuild and fails on any mismatch. */
    CrossCheckDominance bool

    /* OptimizeInSSA lifts each function into SSA form before the passes
     * and lowers it back afterwards. */
    OptimizeInSSA bool
}

func DefaultOptions() Options {
    return Options {
        MaxFixpointRounds : 32,
        MemOpsAsBarriers  : true,
    }
}
