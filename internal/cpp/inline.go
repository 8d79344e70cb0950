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
	"strings"
)

// maxInlineDepth caps macro re-expansion per spec §4.G, preventing runaway
// expansion from a macro that (directly or through others) references
// itself.
const maxInlineDepth = 25

// Inline expands every object-like and function-like macro occurrence in
// text against env, re-expanding the result until no macro reference
// remains or maxInlineDepth rounds have run.
func Inline(text string, env *Environment) string {
	return inlineRound(text, env, 0)
}

func inlineRound(text string, env *Environment, depth int) string {
	if depth >= maxInlineDepth {
		return text
	}
	changed := false
	for _, name := range env.Names() {
		d, ok := env.Lookup(name)
		if !ok {
			continue
		}
		var newText string
		var did bool
		if d.FunctionLike() {
			newText, did = expandFunctionLike(text, name, d)
		} else {
			newText, did = expandObjectLike(text, name, d)
		}
		if did {
			text = newText
			changed = true
		}
	}
	if changed {
		return inlineRound(text, env, depth+1)
	}
	return text
}

func expandObjectLike(text, name string, d Define) (string, bool) {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
	if !re.MatchString(text) {
		return text, false
	}
	replacement := strings.ReplaceAll(d.Expand(nil), "$", "$$")
	return re.ReplaceAllString(text, replacement), true
}

// expandFunctionLike finds every `NAME(` call left to right, locates each
// one's matching close paren (honoring nested parens), splits the argument
// text on top-level commas, and substitutes the expander's result in
// place — all occurrences in one pass, the same all-at-once semantics
// expandObjectLike gets for free from ReplaceAllString. A single round
// must account for every call site itself: maxInlineDepth bounds re-
// expansion rounds, not how many times a macro is invoked in the text.
func expandFunctionLike(text, name string, d Define) (string, bool) {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\s*\(`)
	var out strings.Builder
	cur := 0
	did := false
	for {
		loc := re.FindStringIndex(text[cur:])
		if loc == nil {
			break
		}
		start := cur + loc[0]
		openParen := cur + loc[1] - 1
		closeParen := matchingParen(text, openParen)
		if closeParen < 0 {
			break
		}
		out.WriteString(text[cur:start])
		args := splitArgs(text[openParen+1 : closeParen])
		out.WriteString(d.Expand(args))
		cur = closeParen + 1
		did = true
	}
	if !did {
		return text, false
	}
	out.WriteString(text[cur:])
	return out.String(), true
}

// matchingParen returns the index of the ')' matching the '(' at open, or
// -1 if unbalanced.
func matchingParen(text string, open int) int {
	depth := 0
	for i := open; i < len(text); i++ {
		switch text[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitArgs splits a macro call's argument text on top-level commas, so a
// nested call like `F(g(a, b), c)` yields two arguments, not three.
func splitArgs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var args []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, s[start:i])
				start = i + 1
			}
		}
	}
	args = append(args, s[start:])
	return args
}
