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

import (
	"regexp"
	"strconv"
	"strings"
)

// Define is a single macro binding: either an object-like body string or a
// function-like expander over positional arguments.
type Define interface {
	// Expand returns the macro's substitution text for the given call
	// arguments. args is ignored by an object-like Define.
	Expand(args []string) string
	// FunctionLike reports whether this Define takes a parameter list.
	FunctionLike() bool
}

// ObjectDefine is an object-like macro: `#define NAME body`.
type ObjectDefine struct {
	Body string
}

func (d ObjectDefine) Expand([]string) string { return d.Body }
func (d ObjectDefine) FunctionLike() bool     { return false }

// FunctionDefine is a function-like macro: `#define NAME(params) body`.
type FunctionDefine struct {
	Params []string
	Body   string
}

func (d FunctionDefine) FunctionLike() bool { return true }

// Expand substitutes each parameter's word-boundary occurrences in Body with
// the corresponding argument, then applies `##` token-paste, per spec §4.F.
func (d FunctionDefine) Expand(args []string) string {
	body := d.Body
	for i, param := range d.Params {
		arg := ""
		if i < len(args) {
			arg = strings.TrimSpace(args[i])
		}
		body = substituteParam(body, param, arg)
	}
	return applyTokenPaste(body)
}

func substituteParam(body, param, arg string) string {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(param) + `\b`)
	// "$" is special to ReplaceAllString's replacement syntax; escape it so
	// an argument containing a literal "$" is substituted verbatim.
	escaped := strings.ReplaceAll(arg, "$", "$$")
	return re.ReplaceAllString(body, escaped)
}

// applyTokenPaste implements `##`: split on it, trim each side, and rejoin
// without a separator.
func applyTokenPaste(body string) string {
	if !strings.Contains(body, "##") {
		return body
	}
	parts := strings.Split(body, "##")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return strings.Join(parts, "")
}

// Environment is the macro table threaded through a preprocess pass and all
// of its recursive #include calls by shared mutable reference (spec §5); it
// is never stored at package scope.
type Environment struct {
	defines map[string]Define
}

// NewEnvironment returns an empty macro table.
func NewEnvironment() *Environment {
	return &Environment{defines: make(map[string]Define)}
}

// Define binds name to d, overwriting any prior binding.
func (e *Environment) Define(name string, d Define) { e.defines[name] = d }

// Undefine removes name, if bound.
func (e *Environment) Undefine(name string) { delete(e.defines, name) }

// Lookup returns the Define bound to name, if any.
func (e *Environment) Lookup(name string) (Define, bool) {
	d, ok := e.defines[name]
	return d, ok
}

// IsDefined reports whether name is currently bound.
func (e *Environment) IsDefined(name string) bool {
	_, ok := e.defines[name]
	return ok
}

// RefreshLocation updates the special __FILE__/__LINE__ entries, refreshed
// before each physical line per spec §3.
func (e *Environment) RefreshLocation(file string, line int) {
	e.defines["__FILE__"] = ObjectDefine{Body: strconv.Quote(file)}
	e.defines["__LINE__"] = ObjectDefine{Body: strconv.Itoa(line)}
}

// Names returns every bound macro name. Order is not guaranteed, matching
// spec §3's "order of definition is not preserved."
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.defines))
	for name := range e.defines {
		names = append(names, name)
	}
	return names
}
