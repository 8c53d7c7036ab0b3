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
)

// MalformedProgramError occurs when a function body cannot form a valid CFG:
// a dangling branch target, a duplicate label, or a block left without a
// terminator. It aborts processing of that function.
type MalformedProgramError struct {
    Func   string
    Label  string
    Reason string
}

func (self MalformedProgramError) Error() string {
    if self.Label != "" {
        return fmt.Sprintf("malformed program in function %q at label %q: %s", self.Func, self.Label, self.Reason)
    } else {
        return fmt.Sprintf("malformed program in function %q: %s", self.Func, self.Reason)
    }
}

// NotInSSAFormError is raised by the SSA validator; it is fatal for any pass
// that requires SSA input.
type NotInSSAFormError struct {
    Func   string
    Block  string
    Var    string
    Reason string
}

func (self NotInSSAFormError) Error() string {
    return fmt.Sprintf(
        "function %q is not in SSA form: variable %q in block %q: %s",
        self.Func,
        self.Var,
        self.Block,
        self.Reason,
    )
}

// DominanceMismatchError signals a disagreement between the fast dominator
// computation and the naive reachability-removal oracle. It can only occur
// in cross-check mode and always indicates a bug.
type DominanceMismatchError struct {
    Func  string
    Block string
    Dump  string
}

func (self DominanceMismatchError) Error() string {
    return fmt.Sprintf(
        "dominance mismatch in function %q at block %q (fast vs naive):\n%s",
        self.Func,
        self.Block,
        self.Dump,
    )
}
