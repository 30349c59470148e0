// Copyright 2025 EngFlow Inc. All rights reserved.
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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetBasics(t *testing.T) {
	s := SetOf(1, 2, 2, 3)
	assert.Len(t, s, 3)
	assert.True(t, s.Contains(2))
	assert.False(t, s.Contains(4))

	s.Add(4)
	assert.True(t, s.Contains(4))
}

func TestSetJoinAndIntersect(t *testing.T) {
	a := SetOf("x", "y")
	b := SetOf("y", "z")

	assert.Equal(t, SetOf("y"), a.Intersect(b))
	assert.True(t, a.Intersects(b))
	assert.False(t, SetOf("x").Intersects(SetOf("z")))

	a.Join(b)
	assert.Len(t, a, 3)
}

func TestSetSortedValues(t *testing.T) {
	s := SetOf("c", "a", "b")
	assert.Equal(t, []string{"a", "b", "c"}, s.SortedValues(strings.Compare))
}

func TestNilSetContains(t *testing.T) {
	var s Set[string]
	assert.False(t, s.Contains("x"))
}

func TestMapSlice(t *testing.T) {
	assert.Equal(t, []int{2, 4, 6}, MapSlice([]int{1, 2, 3}, func(x int) int { return 2 * x }))
}

func TestFilterSlice(t *testing.T) {
	assert.Equal(t, []int{2, 4}, FilterSlice([]int{1, 2, 3, 4}, func(x int) bool { return x%2 == 0 }))
}

func TestDedup(t *testing.T) {
	assert.Equal(t, []string{"b", "a", "c"}, Dedup([]string{"b", "a", "b", "c", "a"}))
}
