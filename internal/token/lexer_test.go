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
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xircomp/xircc/internal/issue"
)

func literal(name, pattern string) Literal {
	return Literal{Name: name, Pattern: regexp.MustCompile("^(?:" + pattern + ")")}
}

func TestTokenizeLongestMatchWins(t *testing.T) {
	literals := []Literal{
		literal("FOO", "foo"),
		literal("FOOBAR", "foobar"),
	}
	tokens, err := Tokenize("foobar", literals, "", nil)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "FOOBAR", tokens[0].Kind)
	assert.Equal(t, "foobar", tokens[0].Text)
}

func TestTokenizeOrderBreaksTies(t *testing.T) {
	literals := []Literal{
		literal("FIRST", "abc"),
		literal("SECOND", "abc"),
	}
	tokens, err := Tokenize("abc", literals, "", nil)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "FIRST", tokens[0].Kind)
}

func TestTokenizeConcatenationInvariant(t *testing.T) {
	literals := []Literal{
		literal("WS", `[ \t]+`),
		literal("WORD", `[a-zA-Z]+`),
		literal("NUM", `[0-9]+`),
	}
	input := "foo 123  bar42"
	tokens, err := Tokenize(input, literals, "", nil)
	require.NoError(t, err)

	var rebuilt string
	for i, tok := range tokens {
		rebuilt += tok.Text
		if i > 0 {
			prev := tokens[i-1]
			assert.Equal(t, prev.Location.Position+uint32(len(prev.Text)), tok.Location.Position)
		}
	}
	assert.Equal(t, input, rebuilt)
}

func TestTokenizePositionLineColumn(t *testing.T) {
	literals := []Literal{
		literal("NL", `\n`),
		literal("WORD", `[a-z]+`),
	}
	tokens, err := Tokenize("ab\ncd", literals, "u", nil)
	require.NoError(t, err)
	require.Len(t, tokens, 3)

	assert.Equal(t, issue.Location{Line: 1, Column: 1, Position: 0, Unit: "u"}, tokens[0].Location)
	assert.Equal(t, issue.Location{Line: 1, Column: 3, Position: 2, Unit: "u"}, tokens[1].Location)
	assert.Equal(t, issue.Location{Line: 2, Column: 1, Position: 3, Unit: "u"}, tokens[2].Location)
}

func TestTokenizeZeroLengthMatchIsRejected(t *testing.T) {
	literals := []Literal{
		literal("EMPTY", `a*`), // matches "" at any position
		literal("WORD", `[a-z]+`),
	}
	tokens, err := Tokenize("bcd", literals, "", nil)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "WORD", tokens[0].Kind)
	assert.Equal(t, "bcd", tokens[0].Text)
}

func TestTokenizeUnexpectedTokenFails(t *testing.T) {
	literals := []Literal{
		literal("WORD", `[a-z]+`),
	}
	tokens, err := Tokenize("abc#def", literals, "", nil)
	require.Error(t, err)
	assert.Nil(t, tokens)
	assert.Contains(t, err.Error(), "Unexpected token: #")
}
