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

package bnf

import (
	"os"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xircomp/xircc/internal/cst"
	"github.com/xircomp/xircc/internal/grammar"
	"github.com/xircomp/xircc/internal/issue"
	"github.com/xircomp/xircc/internal/parser"
	"github.com/xircomp/xircc/internal/token"
)

// leaf builds a single-token CST node of the given kind/text, as the
// tokenizer+parser would for a literal match.
func leaf(kind, text string) *cst.Node {
	return &cst.Node{Kind: kind, Text: text}
}

// seqNode wraps children under a named interior node, taking the first
// child's text as its own (mirroring buildSequenceNode).
func seqNode(kind string, children ...*cst.Node) *cst.Node {
	n := &cst.Node{Kind: kind, Children: children}
	if len(children) > 0 {
		n.Text = children[0].Text
	}
	return n
}

// bareRule builds a "rule" node for `name = <term>;` with no attributes,
// where term is already a fully-formed "term" node.
func bareRule(name string, term *cst.Node) *cst.Node {
	attrList := seqNode("attributeList")
	expr := seqNode("expression", seqNode("sequenceRule", term))
	return seqNode("rule",
		leaf("identifier", name),
		attrList,
		leaf("equals", "="),
		expr,
		leaf("semi", ";"),
	)
}

func stringTerm(text string) *cst.Node {
	base := seqNode("termBase", leaf("string", text))
	return seqNode("term", base)
}

func identTerm(name string) *cst.Node {
	base := seqNode("termBase", leaf("identifier", name))
	return seqNode("term", base)
}

func TestLowerSingleUseLiteralInlining(t *testing.T) {
	rule := bareRule("ws", stringTerm(`"[ \t]+"`))

	cfg, err := Lower([]*cst.Node{rule}, nil, nil)
	require.NoError(t, err)

	require.Len(t, cfg.Literals, 1)
	assert.Equal(t, "ws", cfg.Literals[0].Name)
	assert.Equal(t, `[ \t]+`, cfg.Literals[0].Pattern)

	for _, def := range cfg.Definitions {
		assert.NotEqual(t, "ws", def.Name)
	}
}

func TestLowerDirectiveRootAndIgnore(t *testing.T) {
	rootDirective := leaf("directive", "##root a, b")
	ignoreDirective := leaf("directive", "##ignore ws")

	cfg, err := Lower([]*cst.Node{rootDirective, ignoreDirective}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, cfg.RootNodes)
	assert.Equal(t, []string{"ws"}, cfg.IgnoredLiterals)
}

func TestLowerEmptyRootNodesWarns(t *testing.T) {
	sink := &issue.SliceSink{}
	_, err := Lower(nil, sink, nil)
	require.NoError(t, err)
	require.Len(t, sink.Issues, 1)
	assert.Contains(t, sink.Issues[0].Message, "No root nodes are defined")
}

func TestLowerGroupElisionReusesIdentifierPart(t *testing.T) {
	// attribute = at identifier [attrValue];  (the group elides to one part)
	optGroupTerm := func() *cst.Node {
		expr := seqNode("expression", seqNode("sequenceRule", identTerm("attrValue")))
		optGroup := seqNode("optGroup", leaf("lbrack", "["), expr, leaf("rbrack", "]"))
		base := seqNode("termBase", seqNode("group", optGroup))
		return seqNode("term", base)
	}

	rule := seqNode("rule",
		leaf("identifier", "attribute"),
		seqNode("attributeList"),
		leaf("equals", "="),
		seqNode("expression", seqNode("sequenceRule", identTerm("at"), identTerm("identifier"), optGroupTerm())),
		leaf("semi", ";"),
	)

	cfg, err := Lower([]*cst.Node{rule}, nil, nil)
	require.NoError(t, err)

	require.Len(t, cfg.Definitions, 1)
	def := cfg.Definitions[0]
	assert.Equal(t, "attribute", def.Name)
	require.Len(t, def.Pattern, 3)
	assert.Equal(t, grammar.ConfigPart{Kind: "at", Type: "required"}, def.Pattern[0])
	assert.Equal(t, grammar.ConfigPart{Kind: "identifier", Type: "required"}, def.Pattern[1])
	assert.Equal(t, grammar.ConfigPart{Kind: "attrValue", Type: "optional"}, def.Pattern[2])
}

func TestLowerMultiTermAlternativeCreatesSubRule(t *testing.T) {
	// choice = a b | c;
	rule := seqNode("rule",
		leaf("identifier", "choice"),
		seqNode("attributeList"),
		leaf("equals", "="),
		seqNode("expression",
			seqNode("sequenceRule", identTerm("a"), identTerm("b")),
			seqNode("pipeSeq", leaf("pipe", "|"), seqNode("sequenceRule", identTerm("c"))),
		),
		leaf("semi", ";"),
	)

	cfg, err := Lower([]*cst.Node{rule}, nil, nil)
	require.NoError(t, err)

	require.Len(t, cfg.Definitions, 2)
	sub := cfg.Definitions[0]
	assert.Equal(t, "choice#0", sub.Name)
	assert.Equal(t, "sequence", sub.Type)
	assert.Equal(t, []grammar.ConfigPart{{Kind: "a", Type: "required"}, {Kind: "b", Type: "required"}}, sub.Pattern)

	top := cfg.Definitions[1]
	assert.Equal(t, "choice", top.Name)
	assert.Equal(t, "alternation", top.Type)
	assert.Equal(t, []grammar.ConfigPart{{Kind: "choice#0", Type: "required"}, {Kind: "c", Type: "required"}}, top.Pattern)
}

func TestLowerIncludeDirectiveWalksResolvedNodes(t *testing.T) {
	included := []*cst.Node{leaf("directive", "##root imported")}
	resolver := func(path string) ([]*cst.Node, bool) {
		if path == "other.bnf" {
			return included, true
		}
		return nil, false
	}

	cfg, err := Lower([]*cst.Node{leaf("directive", "##include other.bnf")}, nil, resolver)
	require.NoError(t, err)
	assert.Equal(t, []string{"imported"}, cfg.RootNodes)
}

func TestLowerUnresolvedIncludeWarns(t *testing.T) {
	sink := &issue.SliceSink{}
	_, err := Lower([]*cst.Node{leaf("directive", "##include missing.bnf")}, sink, nil)
	require.NoError(t, err)
	// The include warning comes first; the second issue is the end-of-walk
	// "No root nodes are defined" warning.
	require.Len(t, sink.Issues, 2)
	assert.Contains(t, sink.Issues[0].Message, "missing.bnf")
}

func TestLowerRuleWithoutNameIsHardError(t *testing.T) {
	rule := seqNode("rule", seqNode("attributeList"), leaf("equals", "="),
		seqNode("expression", seqNode("sequenceRule", identTerm("x"))), leaf("semi", ";"))
	_, err := Lower([]*cst.Node{rule}, nil, nil)
	require.Error(t, err)
}

// TestBootstrapRoundTrip parses the bootstrap BNF's own source against the
// bootstrap grammar, lowers the resulting CST, and checks the result is
// equivalent to the embedded bootstrap.json modulo literal order and #n
// group numbering, per spec §8's BNF lowering round-trip property.
func TestBootstrapRoundTrip(t *testing.T) {
	g, err := Bootstrap()
	require.NoError(t, err)

	source, err := os.ReadFile("testdata/bootstrap.bnf")
	require.NoError(t, err)

	toks, err := token.Tokenize(string(source), g.Literals, "bootstrap.bnf", nil)
	require.NoError(t, err)

	nodes, err := parser.Parse(&g, toks, nil)
	require.NoError(t, err)

	cfg, err := Lower(nodes, nil, nil)
	require.NoError(t, err)

	want, err := BootstrapConfig()
	require.NoError(t, err)

	assert.ElementsMatch(t, want.RootNodes, cfg.RootNodes)
	assert.ElementsMatch(t, want.IgnoredLiterals, cfg.IgnoredLiterals)
	assert.Equal(t, sortedLiterals(want), sortedLiterals(cfg),
		"literals must match (name, pattern, flags) modulo declaration order")
	assert.Equal(t, sortedDefinitions(want), sortedDefinitions(cfg),
		"definitions must match (name, type, pattern) modulo declaration order and #n numbering")

	gotCompiled, err := cfg.Compile()
	require.NoError(t, err)
	require.NoError(t, gotCompiled.Validate())
}

func sortedLiterals(cfg grammar.Config) []grammar.ConfigLiteral {
	out := append([]grammar.ConfigLiteral(nil), cfg.Literals...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// sortedDefinitions returns cfg.Definitions sorted by name, with every
// group sub-rule name (`<rule>#<n>`) rewritten to `<rule>#`, so the
// comparison is insensitive to the exact group-numbering spec §8 calls out
// ("same definitions modulo #n group numbering") while still catching any
// real structural divergence in a definition's type or pattern.
func sortedDefinitions(cfg grammar.Config) []grammar.ConfigNode {
	out := make([]grammar.ConfigNode, len(cfg.Definitions))
	for i, d := range cfg.Definitions {
		parts := make([]grammar.ConfigPart, len(d.Pattern))
		for j, p := range d.Pattern {
			parts[j] = grammar.ConfigPart{Kind: normalizeGroupName(p.Kind), Type: p.Type}
		}
		out[i] = grammar.ConfigNode{Name: normalizeGroupName(d.Name), Type: d.Type, Pattern: parts}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return len(out[i].Pattern) < len(out[j].Pattern)
	})
	return out
}

// normalizeGroupName strips a group sub-rule's trailing "#<n>" suffix,
// leaving the "#" itself so a real rule named "foo" is never confused with
// a group "foo#0".
func normalizeGroupName(name string) string {
	if i := strings.IndexByte(name, '#'); i >= 0 {
		return name[:i+1]
	}
	return name
}
