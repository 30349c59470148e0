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

// Package analyze is the meat of the tool: it compares the includes and
// forward declarations a file actually has against the symbol uses reported
// for it, classifies each use as satisfied or violating, selects the desired
// header for every needed symbol, and renders the resulting diff.
package analyze

import (
	"io"

	"github.com/EngFlow/iwyu_cc/internal/collections"
	"github.com/EngFlow/iwyu_cc/internal/fileinfo"
	"github.com/EngFlow/iwyu_cc/internal/picker"
	"github.com/EngFlow/iwyu_cc/internal/preprocessor"
	"github.com/EngFlow/iwyu_cc/internal/source"
)

// Analyzer runs per checked file, after HandlePreprocessingDone and after
// the AST traversal has reported all uses.
type Analyzer struct {
	Picker *picker.IncludePicker
	Prep   *preprocessor.Observer
	Files  *source.FileSet
}

func New(p *picker.IncludePicker, prep *preprocessor.Observer, files *source.FileSet) *Analyzer {
	return &Analyzer{Picker: p, Prep: prep, Files: files}
}

// fileState is the working state for the analysis of one file.
type fileState struct {
	fi *fileinfo.FileInfo

	// Direct includes of the file plus those of its internal headers
	// (foo.cc sees through foo.h and foo-inl.h).
	directIncludes collections.Set[string]
	directFiles    collections.Set[*source.File]

	// Includes the file only sees through its internal headers. They
	// satisfy uses, but the lines belong to the header, not to us.
	inheritedIncludes collections.Set[string]

	// Present include lines by quoted include. Duplicate includes keep
	// only the first line here; the extra copies can only become
	// removals.
	includeLines map[string]*fileinfo.Line

	// Present forward-declare lines by unqualified name.
	fwdDeclLines map[string]*fileinfo.Line

	// Lines synthesized for additions, by quoted include / rendered decl.
	addedLines map[string]*fileinfo.Line

	desired collections.Set[string]
}

func (a *Analyzer) newFileState(fi *fileinfo.FileInfo) *fileState {
	st := &fileState{
		fi:             fi,
		directIncludes: make(collections.Set[string]),
		directFiles:    make(collections.Set[*source.File]),
		includeLines:   make(map[string]*fileinfo.Line),
		fwdDeclLines:   make(map[string]*fileinfo.Line),
		addedLines:     make(map[string]*fileinfo.Line),
		desired:        make(collections.Set[string]),
	}
	st.directIncludes.Join(fi.DirectIncludes())
	st.directFiles.Join(fi.DirectIncludesAsFiles())
	st.inheritedIncludes = make(collections.Set[string])
	for _, hdr := range fi.InternalHeaders() {
		st.directIncludes.Join(hdr.DirectIncludes())
		st.directFiles.Join(hdr.DirectIncludesAsFiles())
		for quoted := range hdr.DirectIncludes() {
			if !fi.DirectIncludes().Contains(quoted) {
				st.inheritedIncludes.Add(quoted)
			}
		}
	}

	for _, line := range fi.Lines() {
		if line.IsIncludeLine() {
			if _, ok := st.includeLines[line.QuotedInclude()]; !ok {
				st.includeLines[line.QuotedInclude()] = line
			}
		} else {
			st.fwdDeclLines[line.FwdDecl().ShortName()] = line
		}
	}

	// Includes protected by pragmas, .cc inclusion or re-exporting are
	// desired no matter what.
	for quoted := range fi.ProtectedIncludes() {
		st.markIncludeDesired(quoted, "")
	}
	// The associated headers themselves always stay: foo.cc keeps its
	// include of foo.h.
	for quoted := range fi.AssociatedQuotedIncludes() {
		if _, present := st.includeLines[quoted]; present {
			st.markIncludeDesired(quoted, "")
		}
	}
	return st
}

// markIncludeDesired marks the line for a quoted include desired, creating
// an addition line if the include is not present, and annotates it with the
// symbol reached through it.
func (st *fileState) markIncludeDesired(quoted, symbolName string) {
	st.desired.Add(quoted)
	line, ok := st.includeLines[quoted]
	if !ok {
		if st.inheritedIncludes.Contains(quoted) {
			return // satisfied through an internal header; no line of our own
		}
		line, ok = st.addedLines[quoted]
		if !ok {
			line = fileinfo.NewIncludeLine(quoted, 0)
			st.addedLines[quoted] = line
		}
	}
	line.SetDesired()
	if symbolName != "" {
		line.AddSymbolUse(symbolName)
	}
}

func (st *fileState) markFwdDeclDesired(decl *source.Decl, symbolName string) {
	name := decl.ShortName()
	line, ok := st.fwdDeclLines[name]
	if !ok {
		key := decl.ForwardDeclareLine()
		line, ok = st.addedLines[key]
		if !ok {
			line = fileinfo.NewForwardDeclareLine(decl)
			st.addedLines[key] = line
		}
	}
	line.SetDesired()
	if symbolName != "" {
		line.AddSymbolUse(symbolName)
	}
}

// CalculateIwyuViolations classifies every use of the file, assigns
// suggested headers, and computes the desired include set. It returns the
// analysis state for the reporter.
func (a *Analyzer) CalculateIwyuViolations(fi *fileinfo.FileInfo) *fileState {
	st := a.newFileState(fi)
	file := fi.File()

	for _, use := range fi.Uses() {
		if use.Ignored() {
			continue
		}
		// Only uses located in a checked file count.
		if !a.Prep.FilesToReport().Contains(use.UseLoc.File) {
			use.Ignore()
			continue
		}
		// A file trivially provides its own symbols.
		if use.DeclFilePath == "" || use.DeclFilePath == file.Path() {
			use.Ignore()
			continue
		}

		if use.IsFullUse() {
			a.classifyFullUse(st, use)
		} else {
			a.classifyForwardDeclareUse(st, use)
		}
	}
	return st
}

// candidateHeaders computes the public headers that could satisfy the use.
// A use with a decl goes through the file map; a symbol-only use (a macro)
// consults the symbol map first and falls back to the file map.
func (a *Analyzer) candidateHeaders(st *fileState, use *fileinfo.OneUse) []string {
	includerPath := st.fi.File().Path()
	if use.Decl == nil {
		if candidates := a.Picker.GetCandidateHeadersForSymbolUsedFrom(use.SymbolName, includerPath); len(candidates) > 0 {
			return candidates
		}
	}
	return a.Picker.GetCandidateHeadersForFilepathIncludedFrom(use.DeclFilePath, includerPath)
}

// satisfyingInclude looks for an include the file already has (or the
// analysis already wants) that provides the use: a candidate that is a
// direct or desired include, or a direct include whose header intends to
// provide the defining file.
func (a *Analyzer) satisfyingInclude(st *fileState, use *fileinfo.OneUse, candidates []string) (string, bool) {
	for _, candidate := range candidates {
		if st.desired.Contains(candidate) || st.directIncludes.Contains(candidate) {
			return candidate, true
		}
	}
	// The intersection through public mappers: a direct include may
	// re-export the defining file without being one of its candidate
	// headers (<vector> provides <memory>'s allocator). Only a public
	// include counts; a private one must not satisfy its own uses.
	if declFile := a.Files.Lookup(use.DeclFilePath); declFile != nil {
		for inc := range st.directFiles {
			if !a.Picker.IsPublic(inc.Path()) {
				continue
			}
			if a.Prep.PublicHeaderIntendsToProvide(inc, declFile) {
				return st.spellingFor(inc), true
			}
		}
	}
	return "", false
}

// spellingFor returns the spelling the file (or one of its internal
// headers) used to include inc, falling back to the canonical quoted form.
func (st *fileState) spellingFor(inc *source.File) string {
	if spelling, ok := st.fi.IncludeSpelling(inc); ok {
		return spelling
	}
	for _, hdr := range st.fi.InternalHeaders() {
		if spelling, ok := hdr.IncludeSpelling(inc); ok {
			return spelling
		}
	}
	return inc.QuotedInclude()
}

func (a *Analyzer) classifyFullUse(st *fileState, use *fileinfo.OneUse) {
	candidates := a.candidateHeaders(st, use)
	if len(candidates) == 0 {
		use.Ignore()
		return
	}
	if quoted, ok := a.satisfyingInclude(st, use, candidates); ok {
		use.SetSuggestedHeader(quoted)
		st.markIncludeDesired(quoted, use.ShortSymbolName())
		return
	}

	// Nothing present provides the symbol: the canonical ordering of the
	// map puts the best header first.
	suggested := candidates[0]
	if a.Prep.IncludeIsInhibited(st.fi.File(), suggested) {
		use.Ignore()
		return
	}
	use.MarkViolation()
	use.SetSuggestedHeader(suggested)
	st.markIncludeDesired(suggested, use.ShortSymbolName())
}

func (a *Analyzer) classifyForwardDeclareUse(st *fileState, use *fileinfo.OneUse) {
	// An existing forward declaration satisfies the use.
	if line, ok := st.fwdDeclLines[use.Decl.ShortName()]; ok {
		line.SetDesired()
		line.AddSymbolUse(use.ShortSymbolName())
		return
	}
	// So does any include that provides the declaring file.
	candidates := a.candidateHeaders(st, use)
	if quoted, ok := a.satisfyingInclude(st, use, candidates); ok {
		use.SetSuggestedHeader(quoted)
		st.markIncludeDesired(quoted, use.ShortSymbolName())
		return
	}

	if a.Prep.ForwardDeclareIsInhibited(st.fi.File(), use.SymbolName) {
		use.Ignore()
		return
	}
	use.MarkViolation()
	st.markFwdDeclDesired(use.Decl, use.ShortSymbolName())
}

// CalculateAndReport analyzes the file and writes the report. It returns
// the number of changes (additions plus removals) suggested.
func (a *Analyzer) CalculateAndReport(fi *fileinfo.FileInfo, w io.Writer) int {
	st := a.CalculateIwyuViolations(fi)
	a.emitWarningMessages(st, w)
	return emitDiffs(st, w)
}
