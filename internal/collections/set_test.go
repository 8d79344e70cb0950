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

package collections

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetOfDeduplicates(t *testing.T) {
	s := SetOf("ws", "comment", "ws")
	assert.Len(t, s, 2)
	assert.True(t, s.Contains("ws"))
	assert.True(t, s.Contains("comment"))
	assert.False(t, s.Contains("identifier"))
}

func TestSetAddAndAddSlice(t *testing.T) {
	s := make(Set[string])
	s.Add("a").Add("b")
	assert.True(t, s.Contains("a"))
	assert.True(t, s.Contains("b"))

	s.AddSlice([]string{"c", "d"})
	assert.True(t, s.Contains("c"))
	assert.True(t, s.Contains("d"))
	assert.Len(t, s, 4)
}
