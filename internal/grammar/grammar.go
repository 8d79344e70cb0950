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

// Package grammar is the static, data-only description of a tokenizer +
// parser configuration: an ordered list of literals, a list of node
// definitions built out of them, the root node kinds a parse may start
// from, and which literals the parser should skip transparently.
//
// The same package describes both the bundled bootstrap BNF grammar and
// every grammar lowered from a BNF-like source.
package grammar

import (
	"fmt"

	"github.com/xircomp/xircc/internal/collections"
	"github.com/xircomp/xircc/internal/issue"
	"github.com/xircomp/xircc/internal/token"
)

// PartType tags how a Part participates in a sequence.
type PartType int

const (
	Required PartType = iota
	Optional
	Repeated
)

func (t PartType) String() string {
	switch t {
	case Required:
		return "required"
	case Optional:
		return "optional"
	case Repeated:
		return "repeated"
	default:
		return fmt.Sprintf("PartType(%d)", int(t))
	}
}

// DefinitionType distinguishes the two ways a NodeDefinition's Pattern is
// evaluated.
type DefinitionType int

const (
	Sequence DefinitionType = iota
	Alternation
)

func (t DefinitionType) String() string {
	switch t {
	case Sequence:
		return "sequence"
	case Alternation:
		return "alternation"
	default:
		return fmt.Sprintf("DefinitionType(%d)", int(t))
	}
}

// Part is one element of a NodeDefinition's pattern: a reference to
// another Kind (either a literal name or another definition name), tagged
// required/optional/repeated.
type Part struct {
	Kind string
	Type PartType
}

// NodeDefinition is a named grammar rule: either a sequence of Parts
// evaluated in order, or an alternation of Parts tried in order until one
// matches.
type NodeDefinition struct {
	Name    string
	Type    DefinitionType
	Pattern []Part
}

// Grammar is the full static configuration consumed by the parser: the
// literal list the tokenizer uses, the node definitions the parser
// dispatches on, which definitions may start a top-level parse, and which
// literal kinds are transparent to the parser.
type Grammar struct {
	Literals        []token.Literal
	Definitions     []NodeDefinition
	RootNodes       []string
	IgnoredLiterals []string
}

// Index maps definition and literal names for a Grammar; the parser and
// Validate each build one per Grammar to avoid repeated linear scans.
type Index struct {
	definitions map[string]*NodeDefinition
	literals    map[string]bool
}

// BuildIndex computes a lookup Index over g. Callers that repeatedly query
// "is this a literal?" / "find this definition" (the parser, in
// particular) should build one Index per Grammar rather than scanning the
// slices on every lookup.
func (g *Grammar) BuildIndex() *Index {
	idx := &Index{
		definitions: make(map[string]*NodeDefinition, len(g.Definitions)),
		literals:    make(map[string]bool, len(g.Literals)),
	}
	for i := range g.Definitions {
		idx.definitions[g.Definitions[i].Name] = &g.Definitions[i]
	}
	for _, lit := range g.Literals {
		idx.literals[lit.Name] = true
	}
	return idx
}

func (idx *Index) Definition(name string) (*NodeDefinition, bool) {
	d, ok := idx.definitions[name]
	return d, ok
}

func (idx *Index) IsLiteral(name string) bool {
	return idx.literals[name]
}

// IgnoredSet returns the grammar's ignored literal names as a Set for O(1)
// membership tests during parsing.
func (g *Grammar) IgnoredSet() collections.Set[string] {
	return collections.SetOf(g.IgnoredLiterals...)
}

// Validate checks the grammar-level invariants from spec §3: every Kind
// referenced by a definition's pattern resolves to a literal or another
// definition, and ignored_literals is a subset of the literal names. It
// does not check RootNodes non-emptiness, which is a Warning rather than a
// hard error (see ValidateRootNodes).
func (g *Grammar) Validate() error {
	idx := g.BuildIndex()
	for _, def := range g.Definitions {
		for _, part := range def.Pattern {
			if !idx.IsLiteral(part.Kind) {
				if _, ok := idx.Definition(part.Kind); !ok {
					return fmt.Errorf("definition %q references unknown kind %q", def.Name, part.Kind)
				}
			}
		}
	}
	for _, name := range g.IgnoredLiterals {
		if !idx.IsLiteral(name) {
			return fmt.Errorf("ignored literal %q is not a known literal", name)
		}
	}
	return nil
}

// ValidateRootNodes emits a Warning-level Issue (spec §3: "an empty list
// is a warning at lowering time") if the grammar has no root nodes.
func (g *Grammar) ValidateRootNodes(sink issue.Sink) {
	if len(g.RootNodes) == 0 {
		sink.Emit(issue.Issue{Level: issue.Warning, Message: "No root nodes are defined"})
	}
}
