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

// Package issue provides source coordinates and diagnostic records shared by
// the tokenizer, parser, BNF lowering, and preprocessor.
package issue

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Location identifies a single point in a source string. Position is a byte
// offset; Line and Column are 1-based. Unit names the file or logical origin
// the location belongs to, and may be empty.
type Location struct {
	Line     uint32 `json:"line"`
	Column   uint32 `json:"column"`
	Position uint32 `json:"position"`
	Unit     string `json:"unit,omitempty"`
}

func (l Location) String() string {
	if l.Unit == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.Unit, l.Line, l.Column)
}

// AdvancedBy returns a new Location advanced past lookAhead, assuming the
// current Location points at the beginning of lookAhead. Newlines in
// lookAhead increment Line and reset Column; other runes increment Column.
func (l Location) AdvancedBy(lookAhead string) Location {
	newlines := strings.Count(lookAhead, "\n")
	tailBegin := 1 + strings.LastIndex(lookAhead, "\n")
	tailLength := uint32(utf8.RuneCountInString(lookAhead[tailBegin:]))

	l.Position += uint32(len(lookAhead))
	if newlines == 0 {
		l.Column += tailLength
	} else {
		l.Line += uint32(newlines)
		l.Column = 1 + tailLength
	}
	return l
}

// Init is the location at the beginning of a fresh source.
func Init(unit string) Location {
	return Location{Line: 1, Column: 1, Position: 0, Unit: unit}
}
