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
	"fmt"
	"regexp"
	"strings"

	"github.com/xircomp/xircc/internal/collections"
	"github.com/xircomp/xircc/internal/issue"
)

var directiveRegexp = regexp.MustCompile(`^\s*#\s*(\w+)(?:\s+(.*))?$`)

var defineHeadRegexp = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)(\(([^)]*)\))?\s*(.*)$`)

var bareDefinedRegexp = regexp.MustCompile(`\bdefined\s+([A-Za-z_][A-Za-z0-9_]*)`)

var quoteIncludeRegexp = regexp.MustCompile(`^"([^"]*)"`)
var angleIncludeRegexp = regexp.MustCompile(`^<([^>]*)>`)

// Preprocessor runs the line-oriented pass described in spec §4.F: scanning,
// conditional-stack bookkeeping, macro definition, and include resolution.
// It spawns no goroutines; recursive #include calls thread the caller's
// Environment and "seen files" set through by shared reference (spec §5).
type Preprocessor struct {
	Resolver         FileResolver
	Sink             issue.Sink
	SuppressErrors   bool
	SuppressWarnings bool
}

// New returns a Preprocessor using resolver to satisfy #include/#embed and
// sink to receive diagnostics. A nil sink discards every diagnostic.
func New(resolver FileResolver, sink issue.Sink) *Preprocessor {
	if sink == nil {
		sink = issue.Discard
	}
	return &Preprocessor{Resolver: resolver, Sink: sink}
}

// Output is the result of a single Process call.
type Output struct {
	Text string
}

// Process splices, strips comments from, and scans source line by line,
// dispatching directives and emitting non-directive lines that are
// currently active. env and files are shared mutable state across any
// recursive #include this call triggers.
func (p *Preprocessor) Process(source, unit string, env *Environment, files collections.Set[string]) (Output, error) {
	// A trailing newline ends the last line; it does not start an empty one.
	lines := strings.Split(strings.TrimSuffix(stripComments(spliceLines(source)), "\n"), "\n")

	var out strings.Builder
	var stack condStack

	for i, line := range lines {
		lineNum := i + 1
		env.RefreshLocation(unit, lineNum)
		active := stack.active()

		if m := directiveRegexp.FindStringSubmatch(line); m != nil {
			if err := p.dispatch(m[1], strings.TrimSpace(m[2]), active, &stack, env, files, unit, lineNum, &out); err != nil {
				return Output{}, err
			}
			continue
		}

		// A non-directive line, including one that starts with "#" but
		// doesn't match directiveRegexp, is emitted verbatim iff active.
		if active {
			out.WriteString(line)
			out.WriteByte('\n')
		}
	}

	return Output{Text: out.String()}, nil
}

// spliceLines removes every backslash-newline pair, joining continuation
// lines per spec §4.F's line model.
func spliceLines(s string) string {
	s = strings.ReplaceAll(s, "\\\r\n", "")
	return strings.ReplaceAll(s, "\\\n", "")
}

// stripComments replaces block and line comments with same-shaped
// whitespace, preserving newline counts so later line numbers stay
// accurate.
func stripComments(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	i, n := 0, len(s)
	for i < n {
		switch {
		case i+1 < n && s[i] == '/' && s[i+1] == '/':
			for i < n && s[i] != '\n' {
				b.WriteByte(' ')
				i++
			}
		case i+1 < n && s[i] == '/' && s[i+1] == '*':
			b.WriteString("  ")
			i += 2
			for i+1 < n && !(s[i] == '*' && s[i+1] == '/') {
				if s[i] == '\n' {
					b.WriteByte('\n')
				} else {
					b.WriteByte(' ')
				}
				i++
			}
			if i+1 < n {
				b.WriteString("  ")
				i += 2
			} else {
				i = n
			}
		default:
			b.WriteByte(s[i])
			i++
		}
	}
	return b.String()
}

func (p *Preprocessor) dispatch(name, args string, active bool, stack *condStack, env *Environment, files collections.Set[string], unit string, lineNum int, out *strings.Builder) error {
	switch name {
	case "if":
		taken := active && EvaluateCondition(args, env, p.Sink).Truthy()
		stack.push(block{parentActive: active, satisfied: taken, currentlyActive: taken})
	case "ifdef":
		taken := active && env.IsDefined(args)
		stack.push(block{parentActive: active, satisfied: taken, currentlyActive: taken})
	case "ifndef":
		taken := active && !env.IsDefined(args)
		stack.push(block{parentActive: active, satisfied: taken, currentlyActive: taken})
	case "elif", "elifdef", "elifndef":
		p.handleElif(name, args, stack, env, unit, lineNum)
	case "else":
		p.handleElse(stack, unit, lineNum)
	case "endif":
		if _, ok := stack.pop(); !ok {
			p.emitConditionalError(unit, lineNum, "#endif without matching #if")
		}
	case "include", "include_next":
		return p.handleInclude(args, name == "include_next", active, env, files, unit, lineNum, out)
	case "embed", "embed_next":
		return p.handleEmbed(args, name == "embed_next", active, files, unit, lineNum, out)
	case "define":
		if active {
			p.handleDefine(args, env)
		}
	case "undef":
		if active {
			env.Undefine(strings.TrimSpace(args))
		}
	case "error":
		if active && !p.SuppressErrors {
			p.Sink.Emit(issue.Issue{Level: issue.Error, Message: args, Location: locAt(unit, lineNum)})
		}
	case "warning":
		if active && !p.SuppressWarnings {
			p.Sink.Emit(issue.Issue{Level: issue.Warning, Message: args, Location: locAt(unit, lineNum)})
		}
	case "line", "pragma":
		if active {
			p.Sink.Emit(issue.Issue{Level: issue.Warning, Message: fmt.Sprintf("#%s is not supported", name), Location: locAt(unit, lineNum)})
		}
	default:
		if active {
			p.Sink.Emit(issue.Issue{Level: issue.Warning, Message: fmt.Sprintf("unknown preprocessor directive #%s", name), Location: locAt(unit, lineNum)})
		}
	}
	return nil
}

func locAt(unit string, line int) *issue.Location {
	return &issue.Location{Line: uint32(line), Column: 1, Unit: unit}
}

func (p *Preprocessor) emitConditionalError(unit string, line int, msg string) {
	p.Sink.Emit(issue.Issue{Level: issue.Error, Message: msg, Location: locAt(unit, line)})
}

func (p *Preprocessor) handleElif(name, args string, stack *condStack, env *Environment, unit string, lineNum int) {
	top, ok := stack.top()
	if !ok {
		p.emitConditionalError(unit, lineNum, fmt.Sprintf("#%s without matching #if", name))
		return
	}
	if !top.parentActive || top.satisfied {
		top.currentlyActive = false
		return
	}
	var taken bool
	switch name {
	case "elif":
		taken = EvaluateCondition(args, env, p.Sink).Truthy()
	case "elifdef":
		taken = env.IsDefined(args)
	case "elifndef":
		taken = !env.IsDefined(args)
	}
	top.currentlyActive = taken
	top.satisfied = taken
}

func (p *Preprocessor) handleElse(stack *condStack, unit string, lineNum int) {
	top, ok := stack.top()
	if !ok {
		p.emitConditionalError(unit, lineNum, "#else without matching #if")
		return
	}
	if !top.parentActive {
		top.currentlyActive = false
		return
	}
	top.currentlyActive = !top.satisfied
	top.satisfied = true
}

func (p *Preprocessor) handleDefine(args string, env *Environment) {
	m := defineHeadRegexp.FindStringSubmatch(args)
	if m == nil {
		p.Sink.Emit(issue.Issue{Level: issue.Warning, Message: fmt.Sprintf("malformed #define %q", args)})
		return
	}
	name, hasParens, paramList, body := m[1], m[2] != "", m[3], strings.TrimSpace(m[4])
	if !hasParens {
		env.Define(name, ObjectDefine{Body: rewriteDefinedKeyword(body)})
		return
	}
	var params []string
	if strings.TrimSpace(paramList) != "" {
		for _, param := range strings.Split(paramList, ",") {
			params = append(params, strings.TrimSpace(param))
		}
	}
	env.Define(name, FunctionDefine{Params: params, Body: body})
}

// rewriteDefinedKeyword rewrites a bare `defined X` inside a stored macro
// body to `defined("X")`, per spec §4.F.
func rewriteDefinedKeyword(body string) string {
	return bareDefinedRegexp.ReplaceAllString(body, `defined("$1")`)
}

func parseIncludeTarget(args string) (name string, startRelative bool, ok bool) {
	args = strings.TrimSpace(args)
	if m := quoteIncludeRegexp.FindStringSubmatch(args); m != nil {
		return m[1], true, true
	}
	if m := angleIncludeRegexp.FindStringSubmatch(args); m != nil {
		return m[1], false, true
	}
	return "", false, false
}

func (p *Preprocessor) handleInclude(args string, isNext, active bool, env *Environment, files collections.Set[string], unit string, lineNum int, out *strings.Builder) error {
	if !active {
		return nil
	}
	name, startRelative, ok := parseIncludeTarget(args)
	if !ok {
		p.Sink.Emit(issue.Issue{Level: issue.Warning, Message: fmt.Sprintf("malformed #include %q", args), Location: locAt(unit, lineNum)})
		return nil
	}
	if !startRelative && files.Contains(name) {
		return nil
	}
	contents, resolvedUnit, found := p.Resolver(name, startRelative, isNext, true, unit)
	if !found {
		p.Sink.Emit(issue.Issue{Level: issue.Warning, Message: fmt.Sprintf("cannot find include %q", name), Location: locAt(unit, lineNum)})
		return nil
	}
	if !startRelative {
		files.Add(name)
	}
	nested, err := p.Process(contents, resolvedUnit, env, files)
	if err != nil {
		return fmt.Errorf("processing include %q: %w", name, err)
	}
	out.WriteString(nested.Text)
	env.RefreshLocation(unit, lineNum)
	return nil
}

func (p *Preprocessor) handleEmbed(args string, isNext, active bool, files collections.Set[string], unit string, lineNum int, out *strings.Builder) error {
	if !active {
		return nil
	}
	name, startRelative, ok := parseIncludeTarget(args)
	if !ok {
		p.Sink.Emit(issue.Issue{Level: issue.Warning, Message: fmt.Sprintf("malformed #embed %q", args), Location: locAt(unit, lineNum)})
		return nil
	}
	contents, _, found := p.Resolver(name, startRelative, isNext, false, unit)
	if !found {
		p.Sink.Emit(issue.Issue{Level: issue.Warning, Message: fmt.Sprintf("cannot find embed %q", name), Location: locAt(unit, lineNum)})
		return nil
	}
	out.WriteString(contents)
	return nil
}
