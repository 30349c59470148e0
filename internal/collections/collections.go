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

// MapSlice applies the provided transformation function `fn` to each element of
// the input slice `s` and returns a new slice of the resulting values.
func MapSlice[TSlice ~[]T, T, V any](s TSlice, fn func(T) V) []V {
	result := make([]V, len(s))
	for i, elem := range s {
		result[i] = fn(elem)
	}
	return result
}

// FilterSlice returns a new slice containing only the elements of `s` for which
// the `predicate` function returns true.
func FilterSlice[TSlice ~[]T, T any](s TSlice, predicate func(T) bool) TSlice {
	result := make(TSlice, 0, len(s))
	for _, elem := range s {
		if predicate(elem) {
			result = append(result, elem)
		}
	}
	return result
}

// Dedup returns a new slice with duplicate elements removed, preserving the
// order of the first occurrence of each element.
func Dedup[TSlice ~[]T, T comparable](s TSlice) TSlice {
	seen := make(Set[T], len(s))
	result := make(TSlice, 0, len(s))
	for _, elem := range s {
		if !seen.Contains(elem) {
			seen.Add(elem)
			result = append(result, elem)
		}
	}
	return result
}
