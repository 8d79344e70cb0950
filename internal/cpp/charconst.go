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

package cpp

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// charConstFinder locates C character constants, with their optional
// wide/UTF prefix, anywhere in a condition string.
var charConstFinder = regexp.MustCompile(`(?:u8|[LuU])?'(?:[^'\\]|\\.)+'`)

var charConstParts = regexp.MustCompile(`^(u8|[LuU])?'((?:[^'\\]|\\.)+)'$`)

// rewriteCharConstants replaces every character constant in s with the
// decimal text of its integer code point, per spec §9 step 1. Constants
// that fail to parse are left untouched so the expression parser reports
// the resulting syntax error instead of silently miscompiling.
func rewriteCharConstants(s string) string {
	return charConstFinder.ReplaceAllStringFunc(s, func(m string) string {
		v, err := parseCharConstant(m)
		if err != nil {
			return m
		}
		return strconv.FormatInt(v, 10)
	})
}

func parseCharConstant(lit string) (int64, error) {
	sub := charConstParts.FindStringSubmatch(lit)
	if sub == nil {
		return 0, fmt.Errorf("malformed character constant %q", lit)
	}
	prefix, body := sub[1], sub[2]
	value, err := decodeCharBody(body)
	if err != nil {
		return 0, err
	}
	width := charConstWidth(prefix)
	mask := int64(1)<<width - 1
	return value & mask, nil
}

func charConstWidth(prefix string) uint {
	switch prefix {
	case "u":
		return 16
	case "U", "L":
		return 32
	default: // "" or "u8"
		return 8
	}
}

// decodeCharBody decodes the content between the quotes of a character
// constant, handling the escapes spec §9 lists: \a \b \f \n \r \t \v \' \"
// \\ \?, octal, hex, \uXXXX, and \UXXXXXXXX.
func decodeCharBody(body string) (int64, error) {
	if !strings.HasPrefix(body, "\\") {
		runes := []rune(body)
		if len(runes) != 1 {
			return 0, fmt.Errorf("multi-character constant %q is not supported", body)
		}
		return int64(runes[0]), nil
	}
	if len(body) < 2 {
		return 0, fmt.Errorf("malformed escape in character constant %q", body)
	}
	switch body[1] {
	case 'a':
		return 7, nil
	case 'b':
		return 8, nil
	case 'f':
		return 12, nil
	case 'n':
		return 10, nil
	case 'r':
		return 13, nil
	case 't':
		return 9, nil
	case 'v':
		return 11, nil
	case '\'':
		return int64('\''), nil
	case '"':
		return int64('"'), nil
	case '\\':
		return int64('\\'), nil
	case '?':
		return int64('?'), nil
	case 'x':
		return strconv.ParseInt(body[2:], 16, 64)
	case 'u':
		if len(body) < 6 {
			return 0, fmt.Errorf("short \\u escape in character constant %q", body)
		}
		return strconv.ParseInt(body[2:6], 16, 64)
	case 'U':
		if len(body) < 10 {
			return 0, fmt.Errorf("short \\U escape in character constant %q", body)
		}
		return strconv.ParseInt(body[2:10], 16, 64)
	default:
		if body[1] >= '0' && body[1] <= '7' {
			return strconv.ParseInt(body[1:], 8, 64)
		}
		// Unknown escapes fall back to the second character's code unit
		// (spec §9 Design Notes), e.g. '\z' reads as 'z'.
		return int64(body[1]), nil
	}
}
