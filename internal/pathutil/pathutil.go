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

// Package pathutil implements the path and string conventions used throughout
// the analysis: converting filesystem paths to the quoted form they would take
// after `#include`, canonicalizing file names so a header can be matched to
// its owning implementation file, and classifying system and third-party
// headers.
package pathutil

import (
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// Extensions that identify a C/C++ implementation file. Everything else
// (including extension-less files such as <vector>) is treated as a header.
var sourceExtensions = []string{".c", ".C", ".cc", ".CC", ".cxx", ".CXX", ".cpp", ".CPP"}

// Suffixes stripped by GetCanonicalName, longest-match first.
var canonicalSuffixes = []string{"_unittest", "_regtest", "_test", "-inl"}

// systemIncludeDir matches the part of an absolute path that belongs to a
// compiler or libc installation, e.g. `/usr/include/` or
// `/usr/include/c++/4.3/`. Whatever follows the match is the system include
// name.
var systemIncludeDir = regexp.MustCompile(`^(.*/include/c\+\+/[^/]+/|.*/include/)`)

// IsAbsolutePath reports whether p names a file independent of the working
// directory.
func IsAbsolutePath(p string) bool {
	return filepath.IsAbs(p)
}

// NormalizeFilePath converts p to slash form and collapses `.` segments and
// duplicate separators. Where path.Clean would yield "." the input is
// returned unchanged, so "" stays "".
func NormalizeFilePath(p string) string {
	cleaned := path.Clean(filepath.ToSlash(p))
	if cleaned == "." {
		return p
	}
	return cleaned
}

// IsSystemIncludeFile reports whether the path lives under a system include
// directory.
func IsSystemIncludeFile(p string) bool {
	return systemIncludeDir.MatchString(filepath.ToSlash(p))
}

// ConvertToQuotedInclude converts a filesystem path to the quoted form it
// would have after `#include`: system headers get the `<foo>` form with their
// install prefix stripped, everything else is double-quoted as written.
//
// Special filenames such as `<built-in>` are already quoted-include-shaped and
// are returned unchanged.
func ConvertToQuotedInclude(p string) string {
	if IsQuotedInclude(p) {
		return p
	}
	normalized := NormalizeFilePath(p)
	if loc := systemIncludeDir.FindStringIndex(normalized); loc != nil {
		return "<" + normalized[loc[1]:] + ">"
	}
	return `"` + normalized + `"`
}

// IsQuotedInclude reports whether s begins and ends with matching `<>` or
// `""`, i.e. looks like the operand of an `#include` directive.
func IsQuotedInclude(s string) bool {
	if len(s) < 2 {
		return false
	}
	return (strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">")) ||
		(strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`))
}

// IsQuotedFilepathPattern reports whether s is a valid mapping key: either a
// quoted include or `@` followed by a regular expression matching one.
func IsQuotedFilepathPattern(s string) bool {
	return IsQuotedInclude(s) || strings.HasPrefix(s, "@")
}

// StripQuotes removes the surrounding `<>` or `""` from a quoted include.
// Returns the input unchanged if it is not quoted.
func StripQuotes(s string) string {
	if IsQuotedInclude(s) {
		return s[1 : len(s)-1]
	}
	return s
}

// IsHeaderFile reports whether the path (or quoted include) names a header.
// Extension-less files, like the C++ standard headers, count as headers.
func IsHeaderFile(p string) bool {
	p = StripQuotes(p)
	ext := path.Ext(p)
	for _, sourceExt := range sourceExtensions {
		if ext == sourceExt {
			return false
		}
	}
	return true
}

// IsThirdPartyFile reports whether the quoted include refers to vendored
// third-party code.
func IsThirdPartyFile(quoted string) bool {
	return strings.HasPrefix(quoted, `"third_party/`)
}

// HasInternalPathSegment reports whether the path contains a directory
// component named exactly `internal`, either leading or after a separator.
func HasInternalPathSegment(p string) bool {
	return strings.HasPrefix(p, "internal/") || strings.Contains(p, "/internal/")
}

// GetCanonicalName strips the suffixes that distinguish the files of one
// logical module from each other, so that `foo.h`, `foo-inl.h`, `foo.cc` and
// `foo_test.cc` all canonicalize to `foo`. It also maps an `internal/` path
// segment to its `public/` counterpart, so that a public header can be
// matched to an implementation file kept in an internal directory.
func GetCanonicalName(p string) string {
	p = StripQuotes(p)

	// Only strip recognized C/C++ extensions; leave `foo.pb` or `foo.txt`
	// alone.
	switch ext := path.Ext(p); ext {
	case ".c", ".cc", ".cpp", ".cxx", ".h", ".H", ".hpp", ".hxx", ".hh":
		p = p[:len(p)-len(ext)]
	}
	for {
		stripped := p
		for _, suffix := range canonicalSuffixes {
			stripped = strings.TrimSuffix(stripped, suffix)
		}
		if stripped == p {
			break
		}
		p = stripped
	}
	if idx := strings.Index(p, "/internal/"); idx >= 0 {
		p = p[:idx] + "/public/" + p[idx+len("/internal/"):]
	}
	return p
}
