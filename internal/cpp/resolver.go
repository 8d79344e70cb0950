// Copyright 2025 The xircc Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cpp

// FileResolver resolves the target of a `#include`/`#embed` directive, per
// spec §6. startRelative is true for a `"..."` include, false for `<...>`.
// isNext is true for the `_next` variants. isInclude distinguishes a
// `#include` (recursively preprocessed) from a `#embed` (inserted verbatim).
// Returning ok == false is the documented way to signal a missing-but-
// recoverable header.
type FileResolver func(name string, startRelative, isNext, isInclude bool, currentUnit string) (contents string, unit string, ok bool)
