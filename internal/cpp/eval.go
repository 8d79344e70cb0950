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
	"strconv"
	"strings"

	"github.com/xircomp/xircc/internal/cpp/expr"
	"github.com/xircomp/xircc/internal/issue"
)

// builtins stubs the fixed table of C preprocessor builtins spec §9 calls
// for: integer type widths and an assumed little-endian byte order, enough
// to evaluate a common `__BYTE_ORDER__ == __ORDER_LITTLE_ENDIAN__` guard
// without a real target platform.
var builtins = map[string]int64{
	"__SIZEOF_SHORT__":        2,
	"__SIZEOF_INT__":          4,
	"__SIZEOF_LONG__":         8,
	"__SIZEOF_LONG_LONG__":    8,
	"__SIZEOF_POINTER__":      8,
	"__SIZEOF_FLOAT__":        4,
	"__SIZEOF_DOUBLE__":       8,
	"__ORDER_LITTLE_ENDIAN__": 1234,
	"__ORDER_BIG_ENDIAN__":    4321,
	"__BYTE_ORDER__":          1234,
	"__STDC__":                1,
}

// EvaluateCondition parses and evaluates a `#if`-style condition string
// against env. Per spec §7, trouble of any kind never propagates an error:
// it yields Undefined, a Warning is emitted, and the condition reads false.
func EvaluateCondition(source string, env *Environment, sink issue.Sink) Value {
	tree, err := expr.Parse(rewriteCharConstants(source))
	if err != nil {
		sink.Emit(issue.Issue{Level: issue.Warning, Message: fmt.Sprintf("failed to evaluate condition %q: %v", source, err)})
		return UndefinedValue
	}
	return evalExpr(tree, env, sink)
}

func evalExpr(e expr.Expr, env *Environment, sink issue.Sink) Value {
	switch n := e.(type) {
	case expr.Ident:
		return evalIdent(string(n), env, sink)
	case expr.ConstantInt:
		return IntValue(int64(n))
	case expr.Defined:
		return BoolValue(env.IsDefined(string(n.Name)))
	case expr.Not:
		return BoolValue(!evalExpr(n.X, env, sink).Truthy())
	case expr.And:
		if !evalExpr(n.X, env, sink).Truthy() {
			return BoolValue(false)
		}
		return BoolValue(evalExpr(n.Y, env, sink).Truthy())
	case expr.Or:
		if evalExpr(n.X, env, sink).Truthy() {
			return BoolValue(true)
		}
		return BoolValue(evalExpr(n.Y, env, sink).Truthy())
	case expr.Compare:
		l := evalExpr(n.X, env, sink).Int
		r := evalExpr(n.Y, env, sink).Int
		return BoolValue(compareInts(l, n.Op, r))
	case expr.Ternary:
		if evalExpr(n.Cond, env, sink).Truthy() {
			return evalExpr(n.Then, env, sink)
		}
		return evalExpr(n.Else, env, sink)
	case expr.Call:
		// A function-like macro invoked directly inside a condition (as
		// opposed to pre-expanded by substitution) is not evaluated;
		// assume it is defined and the call succeeds.
		return BoolValue(true)
	default:
		sink.Emit(issue.Issue{Level: issue.Warning, Message: fmt.Sprintf("unsupported condition expression %T", e)})
		return UndefinedValue
	}
}

func compareInts(l int64, op string, r int64) bool {
	switch op {
	case "==":
		return l == r
	case "!=":
		return l != r
	case "<":
		return l < r
	case "<=":
		return l <= r
	case ">":
		return l > r
	case ">=":
		return l >= r
	default:
		return false
	}
}

func evalIdent(name string, env *Environment, sink issue.Sink) Value {
	if d, ok := env.Lookup(name); ok {
		if d.FunctionLike() {
			sink.Emit(issue.Issue{Level: issue.Warning, Message: fmt.Sprintf("function-like macro %q used without arguments in condition", name)})
			return UndefinedValue
		}
		body := strings.TrimSpace(d.Expand(nil))
		if n, err := parseIntLiteral(body); err == nil {
			return IntValue(n)
		}
		sink.Emit(issue.Issue{Level: issue.Warning, Message: fmt.Sprintf("macro %q does not expand to an integer literal in condition", name)})
		return UndefinedValue
	}
	if v, ok := builtins[name]; ok {
		return IntValue(v)
	}
	return IntValue(0)
}

// parseIntLiteral mirrors the teacher's own helper duplicated across
// cc/macros.go and parser/parser.go: parse decimal/octal/hex, ignoring C
// integer suffixes.
func parseIntLiteral(tok string) (int64, error) {
	trimmed := strings.TrimRightFunc(tok, func(r rune) bool {
		return r == 'u' || r == 'U' || r == 'l' || r == 'L'
	})
	return strconv.ParseInt(trimmed, 0, 64)
}
