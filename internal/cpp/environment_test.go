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
	"github.com/stretchr/testify/require"
)

func TestFunctionDefineExpandSubstitutesAndPastes(t *testing.T) {
	d := FunctionDefine{Params: []string{"a", "b"}, Body: "a ## b"}
	assert.Equal(t, "12", d.Expand([]string{"1", "2"}))
}

func TestFunctionDefineExpandMissingArgIsEmpty(t *testing.T) {
	d := FunctionDefine{Params: []string{"a", "b"}, Body: "(a, b)"}
	assert.Equal(t, "(1, )", d.Expand([]string{"1"}))
}

func TestEnvironmentDefineUndefineLookup(t *testing.T) {
	env := NewEnvironment()
	assert.False(t, env.IsDefined("X"))

	env.Define("X", ObjectDefine{Body: "1"})
	assert.True(t, env.IsDefined("X"))
	d, ok := env.Lookup("X")
	require.True(t, ok)
	assert.Equal(t, "1", d.Expand(nil))

	env.Undefine("X")
	assert.False(t, env.IsDefined("X"))
}

func TestEnvironmentRefreshLocation(t *testing.T) {
	env := NewEnvironment()
	env.RefreshLocation("a.c", 7)
	d, ok := env.Lookup("__LINE__")
	require.True(t, ok)
	assert.Equal(t, "7", d.Expand(nil))

	fd, ok := env.Lookup("__FILE__")
	require.True(t, ok)
	assert.Equal(t, `"a.c"`, fd.Expand(nil))
}
