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

// Package preprocessor implements the observer that consumes preprocessor
// callbacks. It has three jobs:
//
//  1. Record the #include hierarchy: per file, a fileinfo.FileInfo holding
//     its direct includes, plus a directed include graph for the transitive
//     relations.
//  2. Check macro uses: a macro #defined in one file and referenced in
//     another is a full use of the defining file, including macros referenced
//     from inside other macro bodies and from `#if defined(X)`.
//  3. Parse the pragma-like constructs embedded in comments
//     (`// IWYU pragma: ...`) and doxygen `@headername{...}` directives.
//
// The observer finishes its work in HandlePreprocessingDone, after which the
// include picker is finalized and the intends-to-provide and
// transitive-include relations are available to the analyzer.
package preprocessor

import (
	"errors"
	"log"

	"github.com/dominikbraun/graph"

	"github.com/EngFlow/iwyu_cc/internal/collections"
	"github.com/EngFlow/iwyu_cc/internal/fileinfo"
	"github.com/EngFlow/iwyu_cc/internal/lexutil"
	"github.com/EngFlow/iwyu_cc/internal/pathutil"
	"github.com/EngFlow/iwyu_cc/internal/picker"
	"github.com/EngFlow/iwyu_cc/internal/source"
)

type macroReference struct {
	name string
	loc  source.Location
}

// Observer receives the preprocessor callbacks of one translation unit.
type Observer struct {
	picker *picker.IncludePicker
	files  *source.FileSet
	policy *CheckPolicy

	// The source file passed to the compiler, as opposed to files seen
	// via #includes. The first file entered.
	mainFile *source.File

	// All files to report violations for: the main compilation unit
	// (foo.cc plus foo.h and foo-inl.h) and any check-also matches.
	filesToReport collections.Set[*source.File]

	// Macros seen as they are defined, and identifiers referenced from
	// inside macro bodies. Macro bodies can refer to macros defined later,
	// so body references are replayed in HandlePreprocessingDone.
	macrosDefinitionLoc    map[string]source.Location
	macrosCalledFromMacros []macroReference
	macroUses              []MacroUse

	// include-name as written (with <>'s or ""'s) -> file loaded for it.
	// With #include_next one name can map to several files; the first
	// mapping seen wins.
	includeToFile map[string]*source.File

	fileInfoMap map[*source.File]*fileinfo.FileInfo

	// Directed graph over file paths, one edge per distinct
	// includer/includee pair.
	includeGraph graph.Graph[string, string]

	// (file, line) pairs lying between begin_exports and end_exports.
	exportedLines collections.Set[fileLine]

	// Per file: quoted includes whose addition is suppressed
	// (IWYU pragma: no_include).
	noIncludeMap map[*source.File]collections.Set[string]

	// Per file: symbol names whose forward-declare suggestion is
	// suppressed (IWYU pragma: no_forward_declare).
	noForwardDeclareMap map[*source.File]collections.Set[string]

	intendsToProvideMap map[*source.File]collections.Set[*source.File]
	transitiveInclude   map[*source.File]collections.Set[*source.File]

	preprocessingDone bool
}

type fileLine struct {
	file *source.File
	line int
}

func NewObserver(p *picker.IncludePicker, files *source.FileSet, policy *CheckPolicy) *Observer {
	if policy == nil {
		policy = NewCheckPolicy()
	}
	return &Observer{
		picker:              p,
		files:               files,
		policy:              policy,
		filesToReport:       make(collections.Set[*source.File]),
		macrosDefinitionLoc: make(map[string]source.Location),
		includeToFile:       make(map[string]*source.File),
		fileInfoMap:         make(map[*source.File]*fileinfo.FileInfo),
		includeGraph:        graph.New(graph.StringHash, graph.Directed()),
		exportedLines:       make(collections.Set[fileLine]),
		noIncludeMap:        make(map[*source.File]collections.Set[string]),
		noForwardDeclareMap: make(map[*source.File]collections.Set[string]),
		intendsToProvideMap: make(map[*source.File]collections.Set[*source.File]),
		transitiveInclude:   make(map[*source.File]collections.Set[*source.File]),
	}
}

func (o *Observer) MainFile() *source.File { return o.mainFile }

// FilesToReport returns the files violations are reported for.
func (o *Observer) FilesToReport() collections.Set[*source.File] {
	return o.filesToReport
}

// FileInfoFor returns the record for file, creating it on first use.
func (o *Observer) FileInfoFor(file *source.File) *fileinfo.FileInfo {
	fi, ok := o.fileInfoMap[file]
	if !ok {
		fi = fileinfo.New(file)
		o.fileInfoMap[file] = fi
	}
	return fi
}

// IncludeToFile resolves a quoted include to the file loaded for it, or nil.
func (o *Observer) IncludeToFile(quotedInclude string) *source.File {
	return o.includeToFile[quotedInclude]
}

func isBuiltinOrCommandLineFile(file *source.File) bool {
	if file == nil {
		return true
	}
	switch file.Path() {
	case "<built-in>", "<command line>", "<command-line>":
		return true
	}
	return false
}

// BelongsToMainCompilationUnit reports whether file is part of the main
// compilation unit: it canonicalizes to the same name as the main file
// (foo.h and foo-inl.h relative to foo.cc).
func (o *Observer) BelongsToMainCompilationUnit(file *source.File) bool {
	if file == nil || o.mainFile == nil {
		return false
	}
	return pathutil.GetCanonicalName(file.Path()) == pathutil.GetCanonicalName(o.mainFile.Path())
}

// ShouldReportFor reports whether violations in file should be reported:
// it belongs to the main compilation unit or matches a check-also glob.
func (o *Observer) ShouldReportFor(file *source.File) bool {
	if file == nil || isBuiltinOrCommandLineFile(file) {
		return false
	}
	return o.BelongsToMainCompilationUnit(file) || o.policy.Matches(file.Path())
}

// ----- File-change callbacks

// EnterFile is called when the preprocessor starts reading a file, with the
// location of the `#include` that pulled it in (for the main file, a
// location inside <built-in>, or an invalid one) and the include spelling as
// written. A valid location is recorded as an include edge. The first file entered becomes the
// main file of the translation unit.
func (o *Observer) EnterFile(file *source.File, includeLoc source.Location, asWritten string) {
	if includeLoc.IsValid() {
		o.addDirectInclude(includeLoc, file, asWritten)
	}
	if isBuiltinOrCommandLineFile(file) {
		return
	}

	if o.mainFile == nil {
		o.mainFile = file
	}
	o.processPragmasInFile(file)
	o.processHeadernameDirectivesInFile(file)

	if o.ShouldReportFor(file) {
		o.filesToReport.Add(file)
	}
	// Make sure even a file with no includes has a record.
	o.FileInfoFor(file)
}

// ExitFile is called when the preprocessor returns to the file that wrote
// the `#include`.
func (o *Observer) ExitFile(toFile *source.File) {}

// RenameFile is called for `#line` renames. The analysis keys everything on
// real files, so there is nothing to do.
func (o *Observer) RenameFile(file *source.File) {}

// SystemHeaderPragma is called for `#pragma GCC system_header`.
func (o *Observer) SystemHeaderPragma(file *source.File) {}

// FileSkipped is called when an `#include` is not re-read because its header
// guard is already satisfied. The include edge is registered anyway;
// duplicate lines are preserved.
func (o *Observer) FileSkipped(file *source.File, includeLoc source.Location, asWritten string) {
	o.addDirectInclude(includeLoc, file, asWritten)
}

// addDirectInclude records one #include edge: in the includer's file info,
// in the include graph, in the spelled-include table, and with the include
// picker, which may use it for its inference rules.
func (o *Observer) addDirectInclude(includeLoc source.Location, includee *source.File, asWritten string) {
	if isBuiltinOrCommandLineFile(includee) {
		return
	}
	includer := includeLoc.File
	if includer == nil {
		return
	}

	quotedIncludee := asWritten
	if quotedIncludee == "" {
		quotedIncludee = includee.QuotedInclude()
	}

	o.FileInfoFor(includer).AddInclude(includee, quotedIncludee, includeLoc.Line)
	// Make sure the includee has a file-info entry too.
	o.FileInfoFor(includee)

	// If foo.h belongs to foo.cc's compilation unit, foo.h is an internal
	// header of foo.cc: foo.cc gets its includes 'automatically'.
	if includer == o.mainFile && o.BelongsToMainCompilationUnit(includee) {
		o.FileInfoFor(includer).AddInternalHeader(o.FileInfoFor(includee))
	}

	// Track what file we ended up loading for this spelling. With
	// #include_next the same name maps to several files; keep the first,
	// the top of the include_next chain.
	if _, ok := o.includeToFile[quotedIncludee]; !ok {
		o.includeToFile[quotedIncludee] = includee
	}
	if _, ok := o.includeToFile[includee.QuotedInclude()]; !ok {
		o.includeToFile[includee.QuotedInclude()] = includee
	}

	o.addIncludeGraphEdge(includer, includee)
	o.picker.AddDirectInclude(includer.Path(), includee.Path(), asWritten)
	o.maybeProtectInclude(includeLoc, includee, quotedIncludee)
}

func (o *Observer) addIncludeGraphEdge(includer, includee *source.File) {
	for _, vertex := range []string{includer.Path(), includee.Path()} {
		if err := o.includeGraph.AddVertex(vertex); err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
			log.Printf("warning: include graph vertex %s: %v", vertex, err)
		}
	}
	err := o.includeGraph.AddEdge(includer.Path(), includee.Path())
	if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
		log.Printf("warning: include graph edge %s -> %s: %v", includer.Path(), includee.Path(), err)
	}
}

// maybeProtectInclude checks whether the #include line must never be
// suggested for removal: it carries a keep or export pragma, or it includes
// a non-header file.
func (o *Observer) maybeProtectInclude(includeLoc source.Location, includee *source.File, quotedIncludee string) {
	includer := includeLoc.File
	if isBuiltinOrCommandLineFile(includer) {
		return
	}

	protectReason := ""
	lineText := ""
	if content, ok := includer.Content(); ok && includeLoc.Offset >= 0 {
		lineText = lexutil.TextUntilEndOfLine(content, lineStartOffset(content, includeLoc.Offset))
	}

	switch {
	case containsPragma(lineText, "keep"):
		protectReason = "pragma_keep"

	case containsPragma(lineText, "export") ||
		o.exportedLines.Contains(fileLine{file: includer, line: includeLoc.Line}):
		protectReason = "pragma_export"
		quotedIncluder := includer.QuotedInclude()
		o.picker.AddMapping(quotedIncludee,
			picker.MappedInclude{Quoted: quotedIncluder, Path: includer.Path()})

	// #includes of .cc files are never removed.
	case !pathutil.IsHeaderFile(includee.Path()):
		protectReason = ".cc include"
	}

	if protectReason != "" {
		o.FileInfoFor(includer).ReportIncludeFileUse(quotedIncludee)
	}
}

func containsPragma(lineText, pragma string) bool {
	return lineText != "" && containsToken(lineText, "// IWYU pragma: "+pragma)
}

// containsToken reports whether needle occurs in text and is not followed by
// more identifier characters (so "keep" does not match "keeps").
func containsToken(text, needle string) bool {
	idx := lexutil.OffsetAfter(text, 0, needle)
	if idx < 0 {
		return false
	}
	if idx == len(text) {
		return true
	}
	c := text[idx]
	return !(c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9')
}

func lineStartOffset(content string, offset int) int {
	if offset > len(content) {
		offset = len(content)
	}
	for offset > 0 && content[offset-1] != '\n' {
		offset--
	}
	return offset
}

// protectReexportIncludes runs after all includes are known: an includer
// with a mapping to one of its includees re-exports it, and a decision to
// re-export counts as a use.
func (o *Observer) protectReexportIncludes() {
	for file, fi := range o.fileInfoMap {
		for includee := range fi.DirectIncludesAsFiles() {
			if o.picker.HasMapping(includee.Path(), file.Path()) && includee != file {
				quoted := includee.QuotedInclude()
				if spelling, ok := fi.IncludeSpelling(includee); ok {
					quoted = spelling
				}
				fi.ReportIncludeFileUse(quoted)
			}
		}
	}
}

// IncludeIsInhibited reports whether a `no_include` pragma in file suppresses
// suggestions to add the given quoted include.
func (o *Observer) IncludeIsInhibited(file *source.File, quotedInclude string) bool {
	return o.noIncludeMap[file].Contains(quotedInclude)
}

// ForwardDeclareIsInhibited reports whether a `no_forward_declare` pragma in
// file suppresses forward-declare suggestions for the named symbol.
func (o *Observer) ForwardDeclareIsInhibited(file *source.File, symbolName string) bool {
	return o.noForwardDeclareMap[file].Contains(symbolName)
}

// HandlePreprocessingDone must be called exactly once, after the last
// preprocessor callback and before analysis. It replays deferred
// macro-in-macro references, finalizes the include picker, and builds the
// intends-to-provide and transitive-include relations.
func (o *Observer) HandlePreprocessingDone() {
	if o.preprocessingDone {
		panic("HandlePreprocessingDone called twice")
	}

	// Macros can refer to macros defined later in other files, so checks
	// on macro bodies had to wait until every header was read.
	for _, ref := range o.macrosCalledFromMacros {
		o.FindAndReportMacroUse(ref.name, ref.loc)
	}

	o.picker.FinalizeAddedIncludes()
	o.protectReexportIncludes()
	o.populateIntendsToProvideMap()
	o.populateTransitiveIncludeMap()
	o.preprocessingDone = true
}
