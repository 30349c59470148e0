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
	"log"
	"strings"

	"github.com/EngFlow/iwyu_cc/internal/collections"
	"github.com/EngFlow/iwyu_cc/internal/lexutil"
	"github.com/EngFlow/iwyu_cc/internal/picker"
	"github.com/EngFlow/iwyu_cc/internal/source"
)

// The pragma constructs recognized in comments:
//
// Full-line constructs:
//
//	// IWYU pragma: private, include "foo/bar/baz.h"
//	// IWYU pragma: private
//	// IWYU pragma: begin_exports
//	// IWYU pragma: end_exports
//	// IWYU pragma: no_include "foo/bar/baz.h"
//	// IWYU pragma: no_forward_declare foo::Baz
//	// IWYU pragma: friend regex
//
// Annotation constructs on an #include line (handled in
// maybeProtectInclude):
//
//	#include "foo/bar/baz.h"  // IWYU pragma: export
//	#include "foo/bar/baz.h"  // IWYU pragma: keep
//
// Doxygen @headername{foo} and @headername{foo, bar} directives are the
// GCC spelling of `private, include <foo>`.

const pragmaMarker = "// IWYU pragma: "

func pragmaWarn(file *source.File, line int, message string) {
	log.Printf("%s:%d: warning: %s", file.Path(), line, message)
}

// matchOneToken reports whether tokens starts with the given token and has
// at least numExpected tokens. Extra tokens draw a warning unless they start
// a new comment.
func matchOneToken(tokens []string, token string, numExpected int, file *source.File, line int) bool {
	if len(tokens) < numExpected || tokens[0] != token {
		return false
	}
	if len(tokens) > numExpected && !strings.HasPrefix(tokens[numExpected], "//") {
		pragmaWarn(file, line, "Extra tokens on pragma line")
	}
	return true
}

// matchTwoTokens is matchOneToken for two leading tokens.
func matchTwoTokens(tokens []string, token1, token2 string, numExpected int, file *source.File, line int) bool {
	if len(tokens) < numExpected || tokens[0] != token1 || tokens[1] != token2 {
		return false
	}
	if len(tokens) > numExpected && !strings.HasPrefix(tokens[numExpected], "//") {
		pragmaWarn(file, line, "Extra tokens on pragma line")
	}
	return true
}

// addExportedRange registers every line from beginLine up to, but not
// including, endLine as exported.
func (o *Observer) addExportedRange(file *source.File, beginLine, endLine int) {
	for line := beginLine; line < endLine; line++ {
		o.exportedLines.Add(fileLine{file: file, line: line})
	}
}

// processPragmasInFile scans the file's comments for IWYU pragmas. Only
// files whose content was registered can be scanned.
func (o *Observer) processPragmasInFile(file *source.File) {
	content, ok := file.Content()
	if !ok {
		return
	}
	quotedThis := file.QuotedInclude()

	beginExportsLine := 0 // 0 means no begin_exports is open
	offset := 0
	for {
		idx := lexutil.OffsetAfter(content, offset, pragmaMarker)
		if idx < 0 {
			break
		}
		offset = idx
		line := lexutil.LineNumber(content, idx)
		pragmaText := lexutil.TextUntilEndOfLine(content, idx)
		tokens := lexutil.SplitOnWhitespacePreservingQuotes(pragmaText)

		if beginExportsLine != 0 {
			if matchOneToken(tokens, "end_exports", 1, file, line) {
				o.addExportedRange(file, beginExportsLine+1, line)
				beginExportsLine = 0
			} else {
				// No pragma allowed within begin_exports/end_exports.
				pragmaWarn(file, line, "Expected end_exports pragma")
			}
			continue
		}

		switch {
		case matchOneToken(tokens, "begin_exports", 1, file, line):
			beginExportsLine = line

		case matchOneToken(tokens, "end_exports", 1, file, line):
			pragmaWarn(file, line, "end_exports without a begin_exports")

		case matchTwoTokens(tokens, "private,", "include", 3, file, line):
			// The third token is the quoted replacement header.
			o.picker.AddMapping(quotedThis, picker.MappedInclude{Quoted: tokens[2]})
			o.picker.MarkIncludeAsPrivate(quotedThis)

		case matchOneToken(tokens, "private", 1, file, line):
			o.picker.MarkIncludeAsPrivate(quotedThis)

		case matchOneToken(tokens, "no_include", 2, file, line):
			inhibited, ok := o.noIncludeMap[file]
			if !ok {
				inhibited = make(collections.Set[string])
				o.noIncludeMap[file] = inhibited
			}
			inhibited.Add(tokens[1])

		case matchOneToken(tokens, "no_forward_declare", 2, file, line):
			inhibited, ok := o.noForwardDeclareMap[file]
			if !ok {
				inhibited = make(collections.Set[string])
				o.noForwardDeclareMap[file] = inhibited
			}
			inhibited.Add(tokens[1])

		case matchOneToken(tokens, "friend", 2, file, line):
			o.picker.AddFriendRegex(file.Path(), tokens[1])

		// "keep" and "export" are annotations on #include lines,
		// handled in maybeProtectInclude; not unknown, not acted on
		// here.
		case matchOneToken(tokens, "keep", 1, file, line),
			matchOneToken(tokens, "export", 1, file, line):

		default:
			pragmaWarn(file, line, "Unknown or malformed pragma ("+pragmaText+")")
		}
	}

	if beginExportsLine != 0 {
		pragmaWarn(file, beginExportsLine, "begin_exports without an end_exports")
	}
}

// processHeadernameDirectivesInFile handles the doxygen spelling of the
// private pragma: `@headername{foo}` or `@headername{foo, bar}` marks this
// file private and maps it to each listed system header. At most one
// @headername directive per file is honored.
func (o *Observer) processHeadernameDirectivesInFile(file *source.File) {
	content, ok := file.Content()
	if !ok {
		return
	}

	idx := lexutil.OffsetAfter(content, 0, "@headername{")
	if idx < 0 {
		return
	}
	line := lexutil.LineNumber(content, idx)
	afterText := lexutil.TextUntilEndOfLine(content, idx)
	closeBrace := strings.IndexByte(afterText, '}')
	if closeBrace < 0 {
		pragmaWarn(file, line, "@headername directive missing a closing brace")
		return
	}

	quotedThis := file.QuotedInclude()
	for _, name := range strings.Split(afterText[:closeBrace], ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		o.picker.AddMapping(quotedThis, picker.MappedInclude{Quoted: "<" + name + ">"})
	}
	o.picker.MarkIncludeAsPrivate(quotedThis)
}
