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

// Package cfrag bundles a minimal C-fragment grammar.Config for cmd/xircc's
// "c" source: just enough literals (identifiers, numbers, strings, char
// constants, and C's punctuators/operators) to tokenize and parse
// preprocessed C text into a flat CST, the way spec.md §1 scopes the core
// engine's use of C — "#include/conditional extraction," not a C
// compiler front-end (spec.md §1 Non-goals). It reuses the same
// literal-list + node-definition shape the bootstrap BNF grammar uses
// (internal/bnf.Bootstrap), grounded on the teacher's own token kinds in
// language/internal/cc/lexer/rules.go.
package cfrag

import (
	_ "embed"

	"github.com/xircomp/xircc/internal/grammar"
)

//go:embed grammar.json
var configJSON []byte

// Config returns the bundled C-fragment grammar's canonical Config.
func Config() (grammar.Config, error) {
	return grammar.ParseConfig(configJSON)
}

// Bootstrap compiles the bundled C-fragment grammar into a runtime Grammar.
func Bootstrap() (grammar.Grammar, error) {
	cfg, err := Config()
	if err != nil {
		return grammar.Grammar{}, err
	}
	return cfg.Compile()
}
