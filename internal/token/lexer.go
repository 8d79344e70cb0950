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

package token

import (
	"container/heap"
	"fmt"

	"github.com/xircomp/xircc/internal/issue"
)

// candidate is one literal that matched at the tokenizer's current
// position. Candidates are compared to pick the emitted token: the longest
// match wins; ties are broken by the literal's declaration order, the
// earlier literal winning.
type candidate struct {
	length int
	order  int
	lit    Literal
	text   string
}

// less reports whether c is preferred over other: a strictly longer match
// wins, and on equal length the earlier-declared literal wins.
func (c candidate) less(other candidate) bool {
	if c.length != other.length {
		return c.length > other.length
	}
	return c.order < other.order
}

// candidateQueue adapts a slice of candidates to container/heap.Interface,
// so picking the winning match among everything that matched at a given
// position is a heap pop rather than a hand-rolled max-scan. Specialized
// directly to candidate rather than routed through a generic priority
// queue type, since a tokenizer position is the only place this engine
// ever needs "pick the best of N competing matches."
type candidateQueue []candidate

func (q candidateQueue) Len() int           { return len(q) }
func (q candidateQueue) Less(i, j int) bool { return q[i].less(q[j]) }
func (q candidateQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *candidateQueue) Push(x any)        { *q = append(*q, x.(candidate)) }
func (q *candidateQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// unexpectedTokenError is returned, carrying the offending character and
// its location, when no literal matches at the current position.
type unexpectedTokenError struct {
	char string
	loc  issue.Location
}

func (e unexpectedTokenError) Error() string {
	return fmt.Sprintf("Unexpected token: %s at %s", e.char, e.loc.String())
}

// Tokenize runs the longest-match algorithm from spec §4.B over source,
// trying every literal in order at each position. On success it returns
// every token, including ones whose Kind the caller may later decide to
// treat as "ignored." On failure it emits an Error-level Issue through sink
// and returns the partial result discarded (nil, err).
func Tokenize(source string, literals []Literal, unit string, sink issue.Sink) ([]Token, error) {
	if sink == nil {
		sink = issue.Discard
	}

	var tokens []Token
	loc := issue.Init(unit)
	remaining := source

	for len(remaining) > 0 {
		var queue candidateQueue
		for i, lit := range literals {
			idx := lit.Pattern.FindStringIndex(remaining)
			if idx == nil {
				continue
			}
			// idx is relative to remaining and must start at 0 since
			// patterns are anchored to the beginning of the remaining
			// input (spec §3: "Patterns are anchored to the start of the
			// remaining input").
			length := idx[1] - idx[0]
			if length == 0 {
				// A zero-length match must not be accepted (spec §4.B
				// edge case); treat it as no-match.
				continue
			}
			heap.Push(&queue, candidate{length: length, order: i, lit: lit, text: remaining[:length]})
		}

		if queue.Len() == 0 {
			char := firstCharDisplay(remaining)
			err := unexpectedTokenError{char: char, loc: loc}
			sink.Emit(issue.Issue{Location: &loc, Level: issue.Error, Message: err.Error()})
			return nil, err
		}

		best := heap.Pop(&queue).(candidate)
		tokens = append(tokens, Token{Kind: best.lit.Name, Text: best.text, Location: loc})
		loc = loc.AdvancedBy(best.text)
		remaining = remaining[best.length:]
	}

	return tokens, nil
}

// firstCharDisplay returns a human-readable rendering of the first rune of
// s, for the "Unexpected token: <char>" diagnostic.
func firstCharDisplay(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}
