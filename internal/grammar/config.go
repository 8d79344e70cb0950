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

package grammar

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/xircomp/xircc/internal/token"
)

// Config is the canonical on-disk JSON shape from spec §6: patterns are
// stored as their inner regex body (without the leading "^"), with an
// optional flags string, and are wrapped as "^(?flags:body)" on load to
// enforce anchoring per spec §4.C.
type Config struct {
	Literals        []ConfigLiteral  `json:"literals"`
	Definitions     []ConfigNode     `json:"definitions"`
	RootNodes       []string         `json:"root_nodes"`
	IgnoredLiterals []string         `json:"ignored_literals"`
}

type ConfigLiteral struct {
	Name    string `json:"name"`
	Pattern string `json:"pattern"`
	Flags   string `json:"flags,omitempty"`
}

type ConfigNode struct {
	Name    string      `json:"name"`
	Type    string      `json:"type"`
	Pattern []ConfigPart `json:"pattern"`
}

type ConfigPart struct {
	Kind string `json:"kind"`
	Type string `json:"type"`
}

// Marshal serializes c into its canonical JSON shape. It works on a Config
// only: there is no conversion from a compiled Grammar back to a Config, so
// the JSON of a Grammar is available only through the Config it was
// compiled from.
func (c Config) Marshal() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// ParseConfig decodes a Config from its canonical JSON shape.
func ParseConfig(data []byte) (Config, error) {
	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parsing grammar config: %w", err)
	}
	return c, nil
}

// Load decodes and compiles a Config from its canonical JSON shape in one
// step; the common entry point for bundled/embedded grammars.
func Load(data []byte) (Grammar, error) {
	cfg, err := ParseConfig(data)
	if err != nil {
		return Grammar{}, err
	}
	return cfg.Compile()
}

// anchoredPattern wraps a stored pattern body with the enforced "^(...)"
// prefix, applying flags as an inline (?flags) group when present.
func anchoredPattern(body, flags string) string {
	if flags == "" {
		return "^(" + body + ")"
	}
	return "^(?" + flags + ":" + body + ")"
}

// Compile rehydrates a Config into a runtime Grammar, compiling each
// literal's pattern as a separately-anchored regular expression. Literal
// names are not derived from patterns (spec §4.C: a literal's name may
// contain regex metacharacters like "?" or "*" and must not be treated as
// one), so names and patterns are always looked up independently.
func (c Config) Compile() (Grammar, error) {
	literals := make([]token.Literal, 0, len(c.Literals))
	for _, cl := range c.Literals {
		re, err := regexp.Compile(anchoredPattern(cl.Pattern, cl.Flags))
		if err != nil {
			return Grammar{}, fmt.Errorf("invalid regex for literal %q: %w", cl.Name, err)
		}
		literals = append(literals, token.Literal{Name: cl.Name, Pattern: re})
	}

	definitions := make([]NodeDefinition, 0, len(c.Definitions))
	for _, cd := range c.Definitions {
		defType, err := parseDefinitionType(cd.Type)
		if err != nil {
			return Grammar{}, fmt.Errorf("definition %q: %w", cd.Name, err)
		}
		parts := make([]Part, 0, len(cd.Pattern))
		for _, cp := range cd.Pattern {
			partType, err := parsePartType(cp.Type)
			if err != nil {
				return Grammar{}, fmt.Errorf("definition %q part %q: %w", cd.Name, cp.Kind, err)
			}
			parts = append(parts, Part{Kind: cp.Kind, Type: partType})
		}
		definitions = append(definitions, NodeDefinition{Name: cd.Name, Type: defType, Pattern: parts})
	}

	return Grammar{
		Literals:        literals,
		Definitions:     definitions,
		RootNodes:       append([]string(nil), c.RootNodes...),
		IgnoredLiterals: append([]string(nil), c.IgnoredLiterals...),
	}, nil
}

func parseDefinitionType(s string) (DefinitionType, error) {
	switch s {
	case "sequence":
		return Sequence, nil
	case "alternation":
		return Alternation, nil
	default:
		return 0, fmt.Errorf("unknown definition type %q", s)
	}
}

func parsePartType(s string) (PartType, error) {
	switch s {
	case "required":
		return Required, nil
	case "optional":
		return Optional, nil
	case "repeated":
		return Repeated, nil
	default:
		return 0, fmt.Errorf("unknown part type %q", s)
	}
}
