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

// Package token implements a data-driven, longest-match tokenizer: given a
// source string and an ordered list of named anchored-regex literals, it
// produces a linear sequence of Tokens covering the entire input.
//
// Unlike a hand-written lexer with a fixed set of token kinds, the literal
// list here is arbitrary data supplied by a Grammar — the same engine
// tokenizes a BNF-like meta-grammar and any target grammar lowered from it.
package token

import "github.com/xircomp/xircc/internal/issue"

// Token is one lexical unit: the name of the literal that matched (Kind)
// plus the matched text and its starting Location. Two tokens are
// equivalent iff every field matches.
type Token struct {
	Kind     string
	Text     string
	Location issue.Location
}

// Literal is a named, anchored regular expression the tokenizer tries at
// each position. Patterns must already be compiled (see internal/grammar
// for how a persisted pattern string becomes a *regexp.Regexp); the order
// of literals only matters as a tie-break between equal-length matches.
type Literal struct {
	Name    string
	Pattern Matcher
}

// Matcher abstracts over *regexp.Regexp so that literal patterns can be
// swapped for a test double without dragging regexp into every signature.
type Matcher interface {
	// FindStringIndex returns the location of the leftmost match anchored
	// at the start of s, as a two-element [begin, end) pair, or nil.
	FindStringIndex(s string) []int
}
