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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xircomp/xircc/internal/issue"
)

func TestEvaluateConditionArithmeticAndLogic(t *testing.T) {
	env := NewEnvironment()
	sink := &issue.SliceSink{}

	assert.True(t, EvaluateCondition("1 && 1", env, sink).Truthy())
	assert.False(t, EvaluateCondition("1 && 0", env, sink).Truthy())
	assert.True(t, EvaluateCondition("0 || 2", env, sink).Truthy())
	assert.True(t, EvaluateCondition("!0", env, sink).Truthy())
	assert.False(t, EvaluateCondition("!1", env, sink).Truthy())
	assert.True(t, EvaluateCondition("3 > 2", env, sink).Truthy())
	assert.False(t, EvaluateCondition("3 < 2", env, sink).Truthy())
	assert.True(t, EvaluateCondition("1 ? 5 : 0", env, sink).Truthy())
	assert.False(t, EvaluateCondition("0 ? 5 : 0", env, sink).Truthy())
	assert.Empty(t, sink.Issues)
}

func TestEvaluateConditionDefinedAndMacros(t *testing.T) {
	env := NewEnvironment()
	sink := &issue.SliceSink{}

	env.Define("FOO", ObjectDefine{Body: "1"})
	assert.True(t, EvaluateCondition("defined(FOO)", env, sink).Truthy())
	assert.False(t, EvaluateCondition("defined(BAR)", env, sink).Truthy())
	assert.True(t, EvaluateCondition("defined FOO", env, sink).Truthy())
	assert.True(t, EvaluateCondition("FOO == 1", env, sink).Truthy())
}

func TestEvaluateConditionBuiltins(t *testing.T) {
	env := NewEnvironment()
	sink := &issue.SliceSink{}

	assert.True(t, EvaluateCondition("__BYTE_ORDER__ == __ORDER_LITTLE_ENDIAN__", env, sink).Truthy())
	assert.True(t, EvaluateCondition("__SIZEOF_INT__ == 4", env, sink).Truthy())
}

func TestEvaluateConditionInvalidSyntaxIsUndefinedNotError(t *testing.T) {
	env := NewEnvironment()
	sink := &issue.SliceSink{}

	v := EvaluateCondition("1 +", env, sink)
	assert.Equal(t, Undefined, v.Kind)
	assert.False(t, v.Truthy())
	assert.True(t, sink.HasErrors() || len(sink.Issues) > 0)
}

func TestEvaluateConditionUndefinedIdentifierIsZero(t *testing.T) {
	env := NewEnvironment()
	sink := &issue.SliceSink{}

	assert.False(t, EvaluateCondition("UNDEFINED_SYMBOL", env, sink).Truthy())
	assert.True(t, EvaluateCondition("UNDEFINED_SYMBOL == 0", env, sink).Truthy())
}

func TestEvaluateConditionBareFunctionLikeMacroWarns(t *testing.T) {
	env := NewEnvironment()
	sink := &issue.SliceSink{}
	env.Define("FN", FunctionDefine{Params: []string{"x"}, Body: "x"})

	v := EvaluateCondition("FN", env, sink)
	assert.Equal(t, Undefined, v.Kind)
	assert.NotEmpty(t, sink.Issues)
}
