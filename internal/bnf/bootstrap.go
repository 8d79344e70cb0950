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
	_ "embed"

	"github.com/xircomp/xircc/internal/grammar"
)

//go:embed bootstrap.json
var bootstrapConfigJSON []byte

// BootstrapConfig returns the bundled BNF meta-grammar's canonical Config.
func BootstrapConfig() (grammar.Config, error) {
	return grammar.ParseConfig(bootstrapConfigJSON)
}

// Bootstrap compiles the bundled BNF meta-grammar into a runtime Grammar.
// Parsing any BNF-like source begins by running the tokenizer and parser
// over this Grammar.
func Bootstrap() (grammar.Grammar, error) {
	cfg, err := BootstrapConfig()
	if err != nil {
		return grammar.Grammar{}, err
	}
	return cfg.Compile()
}
