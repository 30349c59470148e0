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

package preprocessor

import (
	"github.com/bmatcuk/doublestar/v4"
)

// CheckPolicy holds the check-also globs from the command line: file
// patterns, beyond the main compilation unit, whose violations should be
// reported. Globs match with the shell's pathname rule: a wildcard does not
// cross a '/'.
type CheckPolicy struct {
	globs []string
}

func NewCheckPolicy() *CheckPolicy {
	return &CheckPolicy{}
}

// AddGlobToReportIWYUViolationsFor adds a glob of extra files to check.
// Invalid patterns are kept but never match.
func (cp *CheckPolicy) AddGlobToReportIWYUViolationsFor(glob string) {
	cp.globs = append(cp.globs, glob)
}

// Matches reports whether the path matches any check-also glob.
func (cp *CheckPolicy) Matches(path string) bool {
	for _, glob := range cp.globs {
		if doublestar.MatchUnvalidated(glob, path) {
			return true
		}
	}
	return false
}
