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

package analyze

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/EngFlow/iwyu_cc/internal/fileinfo"
)

// emitWarningMessages prints one warning per violating use, in source
// order.
func (a *Analyzer) emitWarningMessages(st *fileState, w io.Writer) {
	uses := slices.Clone(st.fi.Uses())
	slices.SortStableFunc(uses, func(l, r *fileinfo.OneUse) int {
		return l.UseLoc.Line - r.UseLoc.Line
	})
	for _, use := range uses {
		if use.Ignored() || !use.IsViolation() {
			continue
		}
		var message string
		if use.IsFullUse() {
			message = fmt.Sprintf("%s is defined in %s, which isn't directly #included",
				use.SymbolName, use.SuggestedHeader())
		} else {
			message = fmt.Sprintf("%s needs a declaration, but does not provide or directly #include one",
				use.SymbolName)
		}
		if use.Comment != "" {
			message += " " + use.Comment
		}
		fmt.Fprintf(w, "%s: warning: %s\n", use.UseLoc, message)
	}
}

// Canonical include order for additions and the full list: the associated
// header first, then C system headers, other system headers, project
// headers, and forward declarations last.
func lineSortGroup(line *fileinfo.Line, associated map[string]bool) int {
	if !line.IsIncludeLine() {
		return 4
	}
	quoted := line.QuotedInclude()
	switch {
	case associated[quoted]:
		return 0
	case strings.HasPrefix(quoted, "<") && strings.HasSuffix(quoted, ".h>"):
		return 1
	case strings.HasPrefix(quoted, "<"):
		return 2
	default:
		return 3
	}
}

func sortLines(lines []*fileinfo.Line, associated map[string]bool) {
	slices.SortStableFunc(lines, func(l, r *fileinfo.Line) int {
		if lg, rg := lineSortGroup(l, associated), lineSortGroup(r, associated); lg != rg {
			return lg - rg
		}
		return strings.Compare(l.Line(), r.Line())
	})
}

// annotated renders a line with its "// for Symbol, ..." annotation, the
// symbols deduped in the order first seen.
func annotated(line *fileinfo.Line) string {
	symbols := line.Symbols()
	if len(symbols) == 0 {
		return line.Line()
	}
	return line.Line() + "  // for " + strings.Join(symbols, ", ")
}

// emitDiffs writes the additions, the removals with their original line
// ranges, and the full desired include list. Returns the number of changes.
func emitDiffs(st *fileState, w io.Writer) int {
	path := st.fi.File().Path()
	associated := make(map[string]bool)
	for quoted := range st.fi.AssociatedQuotedIncludes() {
		associated[quoted] = true
	}

	var additions, removals, full []*fileinfo.Line
	for _, line := range st.fi.Lines() {
		if line.IsDesired() {
			full = append(full, line)
		} else {
			removals = append(removals, line)
		}
	}
	for _, line := range st.addedLines {
		if line.IsDesired() {
			additions = append(additions, line)
			full = append(full, line)
		}
	}
	sortLines(additions, associated)
	sortLines(full, associated)
	slices.SortStableFunc(removals, func(l, r *fileinfo.Line) int {
		return l.StartLine() - r.StartLine()
	})

	if len(additions) == 0 && len(removals) == 0 {
		fmt.Fprintf(w, "\n(%s has correct #includes/fwd-decls)\n", path)
		return 0
	}

	fmt.Fprintf(w, "\n%s should add these lines:\n", path)
	for _, line := range additions {
		fmt.Fprintln(w, line.Line())
	}

	fmt.Fprintf(w, "\n%s should remove these lines:\n", path)
	for _, line := range removals {
		fmt.Fprintf(w, "- %s  // lines %s\n", line.Line(), line.LineNumberString())
	}

	fmt.Fprintf(w, "\nThe full include-list for %s:\n", path)
	for _, line := range full {
		fmt.Fprintln(w, annotated(line))
	}

	return len(additions) + len(removals)
}
