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

package cfrag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xircomp/xircc/internal/parser"
	"github.com/xircomp/xircc/internal/token"
)

func TestBootstrapCompiles(t *testing.T) {
	g, err := Bootstrap()
	require.NoError(t, err)
	require.NoError(t, g.Validate())
	assert.Equal(t, []string{"item"}, g.RootNodes)
	assert.Equal(t, []string{"ws"}, g.IgnoredLiterals)
}

func TestTokenizeAndParseCFragment(t *testing.T) {
	g, err := Bootstrap()
	require.NoError(t, err)

	source := `int foo(int x) { return x -> y; }`
	toks, err := token.Tokenize(source, g.Literals, "t.c", nil)
	require.NoError(t, err)

	nodes, err := parser.Parse(&g, toks, nil)
	require.NoError(t, err)

	var texts []string
	for _, n := range nodes {
		texts = append(texts, n.Text)
	}
	assert.Contains(t, texts, "int")
	assert.Contains(t, texts, "->")
	assert.Contains(t, texts, "{")
}

func TestPunctuatorLongestMatch(t *testing.T) {
	g, err := Bootstrap()
	require.NoError(t, err)

	toks, err := token.Tokenize("->-", g.Literals, "", nil)
	require.NoError(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, "->", toks[0].Text)
	assert.Equal(t, "-", toks[1].Text)
}
