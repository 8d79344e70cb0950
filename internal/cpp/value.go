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

// Package cpp implements the line-oriented C preprocessor: conditional
// compilation, macro definition and expansion, include resolution, and a
// post-pass macro inliner.
package cpp

// ValueKind tags the evaluator's sum-type result per spec §9:
// {integer, undefined, boolean}.
type ValueKind int

const (
	Integer ValueKind = iota
	Boolean
	Undefined
)

// Value is the result of evaluating a `#if` expression node: a tagged union
// of an integer, a boolean, or undefined. Undefined behaves as 0 for
// arithmetic and comparison but stays distinguishable from a genuine false.
type Value struct {
	Kind ValueKind
	Int  int64
}

// IntValue wraps an integer result.
func IntValue(n int64) Value { return Value{Kind: Integer, Int: n} }

// BoolValue wraps a boolean result.
func BoolValue(b bool) Value {
	v := Value{Kind: Boolean}
	if b {
		v.Int = 1
	}
	return v
}

// UndefinedValue is the zero-information result of a lookup or evaluation
// that could not produce a definite answer.
var UndefinedValue = Value{Kind: Undefined}

// Truthy applies C's "nonzero is true" rule uniformly across all three kinds.
func (v Value) Truthy() bool { return v.Int != 0 }
