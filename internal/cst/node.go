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

// Package cst defines the concrete syntax tree produced by the parser: a
// Node is a Token plus optional children. A leaf (no children) is exactly
// one consumed token; an interior node takes its Kind from the matched
// rule and its Text/Location from the first token of its span.
package cst

import "github.com/xircomp/xircc/internal/issue"

// Node is one element of a concrete syntax tree. Children is nil or empty
// for a leaf node corresponding to a single consumed token.
type Node struct {
	Kind     string          `json:"kind"`
	Text     string          `json:"text"`
	Location issue.Location  `json:"location"`
	Children []*Node         `json:"children,omitempty"`
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// TokenCount returns the number of tokens spanned by n: 1 for a leaf, or
// the sum over children for an interior node. Used by tests checking the
// parser invariant that consumed-token count equals the sum of spanned
// tokens over the output nodes (spec §8).
func (n *Node) TokenCount() int {
	if n.IsLeaf() {
		return 1
	}
	count := 0
	for _, c := range n.Children {
		count += c.TokenCount()
	}
	return count
}

// Walk calls visit for n and, recursively, for every descendant, in
// pre-order.
func (n *Node) Walk(visit func(*Node)) {
	visit(n)
	for _, c := range n.Children {
		c.Walk(visit)
	}
}
