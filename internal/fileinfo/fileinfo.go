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

// Package fileinfo holds the per-file record the preprocessor observer
// builds up and the use analyzer consumes: the direct includes and forward
// declarations of a file, every include/forward-declare line with its
// source position, and the symbol uses reported by the AST traversal.
package fileinfo

import (
	"fmt"
	"strconv"

	"github.com/EngFlow/iwyu_cc/internal/collections"
	"github.com/EngFlow/iwyu_cc/internal/source"
)

// UseKind distinguishes uses that need the complete definition from uses a
// declaration alone can satisfy.
type UseKind int

const (
	// FullUse requires the full type definition: value, member access,
	// sizeof, inheritance.
	FullUse UseKind = iota
	// ForwardDeclareUse is satisfied by a declaration: pointer or
	// reference context.
	ForwardDeclareUse
)

// OneUse is a single recorded use of a symbol. Not all fields are filled for
// all uses: a macro use has no decl, only a symbol name and the path of the
// defining file.
type OneUse struct {
	SymbolName   string
	Decl         *source.Decl // nil for symbol-only uses
	DeclFilePath string       // file the symbol lives in
	UseLoc       source.Location
	Kind         UseKind
	InMethodBody bool
	Comment      string // if non-empty, appended to the violation message

	ignoreUse       bool
	isViolation     bool
	suggestedHeader string
	hasSuggestion   bool
}

// NewFullUse records a use requiring the definition of decl.
func NewFullUse(loc source.Location, decl *source.Decl, inMethodBody bool, comment string) *OneUse {
	return &OneUse{
		SymbolName:   decl.Name,
		Decl:         decl,
		DeclFilePath: decl.FilePath(),
		UseLoc:       loc,
		Kind:         FullUse,
		InMethodBody: inMethodBody,
		Comment:      comment,
	}
}

// NewSymbolUse records a full use of a bare symbol, typically a macro, for
// which no decl is available.
func NewSymbolUse(loc source.Location, defnFilePath, symbol string) *OneUse {
	return &OneUse{
		SymbolName:   symbol,
		DeclFilePath: defnFilePath,
		UseLoc:       loc,
		Kind:         FullUse,
	}
}

// NewForwardDeclareUse records a use a declaration alone can satisfy.
func NewForwardDeclareUse(loc source.Location, decl *source.Decl, inMethodBody bool, comment string) *OneUse {
	use := NewFullUse(loc, decl, inMethodBody, comment)
	use.Kind = ForwardDeclareUse
	return use
}

// ShortSymbolName returns the unqualified symbol name, used for line
// annotations.
func (u *OneUse) ShortSymbolName() string {
	if u.Decl != nil {
		return u.Decl.ShortName()
	}
	return u.SymbolName
}

func (u *OneUse) IsFullUse() bool { return u.Kind == FullUse }

// Ignore discards the use; an ignored use never produces a suggestion.
func (u *OneUse) Ignore()       { u.ignoreUse = true }
func (u *OneUse) Ignored() bool { return u.ignoreUse }

// MarkViolation flags the use as an iwyu violation: satisfying it requires
// changing the include list.
func (u *OneUse) MarkViolation()    { u.isViolation = true }
func (u *OneUse) IsViolation() bool { return u.isViolation }

// SetSuggestedHeader records which header was chosen to satisfy this use.
func (u *OneUse) SetSuggestedHeader(quoted string) {
	u.suggestedHeader = quoted
	u.hasSuggestion = true
}

func (u *OneUse) HasSuggestedHeader() bool { return u.hasSuggestion }

func (u *OneUse) SuggestedHeader() string {
	if !u.hasSuggestion {
		panic("must assign a suggested header first")
	}
	if u.ignoreUse {
		panic("ignored uses have no suggested header")
	}
	return u.suggestedHeader
}

func (u *OneUse) String() string {
	return fmt.Sprintf("%s at %s", u.SymbolName, u.UseLoc)
}

// Line is one include or forward-declare line of a file: either present in
// the original source, desired by the analysis, or both.
type Line struct {
	line          string
	startLine     int
	endLine       int
	isDesired     bool
	isPresent     bool
	quotedInclude string       // set for include lines
	fwdDecl       *source.Decl // set for forward-declare lines

	symbolCounts map[string]int
	symbolOrder  []string // annotation order: first seen first
}

// NewIncludeLine returns a Line for `#include <quoted>` at the given source
// line, or at no particular line when suggested by the analysis.
func NewIncludeLine(quotedInclude string, lineNumber int) *Line {
	return &Line{
		line:          "#include " + quotedInclude,
		startLine:     lineNumber,
		endLine:       lineNumber,
		quotedInclude: quotedInclude,
		symbolCounts:  make(map[string]int),
	}
}

// NewForwardDeclareLine returns a Line for a forward declaration. Its range
// is the single line of the decl's location, or 0 when that is invalid.
func NewForwardDeclareLine(decl *source.Decl) *Line {
	lineNumber := 0
	if decl.Loc.IsValid() {
		lineNumber = decl.Loc.Line
	}
	return &Line{
		line:         decl.ForwardDeclareLine(),
		startLine:    lineNumber,
		endLine:      lineNumber,
		fwdDecl:      decl,
		symbolCounts: make(map[string]int),
	}
}

func (l *Line) Line() string        { return l.line }
func (l *Line) IsIncludeLine() bool { return l.quotedInclude != "" }

func (l *Line) QuotedInclude() string {
	if !l.IsIncludeLine() {
		panic("QuotedInclude called on a forward-declare line")
	}
	return l.quotedInclude
}

func (l *Line) FwdDecl() *source.Decl {
	if l.IsIncludeLine() {
		panic("FwdDecl called on an include line")
	}
	return l.fwdDecl
}

// StartLine returns the first source line of the original position, 0 for
// suggested lines.
func (l *Line) StartLine() int { return l.startLine }

// LineNumberString renders the original position as "N-M" for removal
// messages.
func (l *Line) LineNumberString() string {
	return strconv.Itoa(l.startLine) + "-" + strconv.Itoa(l.endLine)
}

func (l *Line) IsDesired() bool { return l.isDesired }
func (l *Line) IsPresent() bool { return l.isPresent }

func (l *Line) SetDesired()   { l.isDesired = true }
func (l *Line) ClearDesired() { l.isDesired = false }
func (l *Line) SetPresent()   { l.isPresent = true }

// AddSymbolUse notes another symbol reached through this line.
func (l *Line) AddSymbolUse(symbolName string) {
	if l.symbolCounts[symbolName] == 0 {
		l.symbolOrder = append(l.symbolOrder, symbolName)
	}
	l.symbolCounts[symbolName]++
}

func (l *Line) HasSymbolUse(symbolName string) bool {
	return l.symbolCounts[symbolName] > 0
}

// Symbols returns the annotated symbols, deduped, in the order first seen.
func (l *Line) Symbols() []string { return l.symbolOrder }

// FileInfo is everything recorded about a single file of the translation
// unit.
type FileInfo struct {
	file       *source.File
	quotedFile string

	// The files 'associated' with this file: for foo.cc, the FileInfos of
	// foo.h and foo-inl.h if present.
	internalHeaders collections.Set[*FileInfo]

	uses  []*OneUse
	lines []*Line

	directIncludes        collections.Set[string]
	directIncludesAsFiles collections.Set[*source.File]
	directForwardDeclares collections.Set[*source.Decl]

	// First spelling used for each included file, '<>'s or '""'s included.
	includeSpellings map[*source.File]string

	// Includes that must be kept as-is, without any public-header
	// mapping: pragma keep/export, .cc includes, re-exports.
	protectedIncludes collections.Set[string]
}

func New(file *source.File) *FileInfo {
	return &FileInfo{
		file:                  file,
		quotedFile:            file.QuotedInclude(),
		internalHeaders:       make(collections.Set[*FileInfo]),
		directIncludes:        make(collections.Set[string]),
		directIncludesAsFiles: make(collections.Set[*source.File]),
		directForwardDeclares: make(collections.Set[*source.Decl]),
		includeSpellings:      make(map[*source.File]string),
		protectedIncludes:     make(collections.Set[string]),
	}
}

func (fi *FileInfo) File() *source.File { return fi.file }
func (fi *FileInfo) QuotedFile() string { return fi.quotedFile }

// AddInternalHeader marks other as logically part of this file: foo.h and
// foo-inl.h are internal headers of foo.cc. The direct includes of internal
// headers count as direct includes of this file during analysis.
func (fi *FileInfo) AddInternalHeader(other *FileInfo) {
	if other != fi {
		fi.internalHeaders.Add(other)
	}
}

// InternalHeaders returns the associated headers of this file.
func (fi *FileInfo) InternalHeaders() []*FileInfo {
	return fi.internalHeaders.Values()
}

// AddInclude records one `#include` line of this file. The same include
// seen twice is stored twice, so the analysis can suggest removing a copy.
func (fi *FileInfo) AddInclude(includee *source.File, quotedIncludee string, lineNumber int) {
	line := NewIncludeLine(quotedIncludee, lineNumber)
	line.SetPresent()
	fi.lines = append(fi.lines, line)
	fi.directIncludes.Add(quotedIncludee)
	fi.directIncludesAsFiles.Add(includee)
	if _, ok := fi.includeSpellings[includee]; !ok {
		fi.includeSpellings[includee] = quotedIncludee
	}
}

// IncludeSpelling returns the include spelling this file used for the given
// file, if it includes it directly.
func (fi *FileInfo) IncludeSpelling(includee *source.File) (string, bool) {
	spelling, ok := fi.includeSpellings[includee]
	return spelling, ok
}

// AddForwardDeclare records a forward declaration written in this file.
// keepFwdDecl protects it from removal even when unused.
func (fi *FileInfo) AddForwardDeclare(decl *source.Decl, keepFwdDecl bool) {
	line := NewForwardDeclareLine(decl)
	line.SetPresent()
	if keepFwdDecl {
		line.SetDesired()
	}
	fi.lines = append(fi.lines, line)
	fi.directForwardDeclares.Add(decl)
}

// ReportFullSymbolUse records a full-type use: the definition is required.
func (fi *FileInfo) ReportFullSymbolUse(loc source.Location, decl *source.Decl, inMethodBody bool, comment string) {
	fi.uses = append(fi.uses, NewFullUse(loc, decl, inMethodBody, comment))
}

// ReportSymbolUse is the decl-less form of ReportFullSymbolUse, used for
// macros and other bare tokens.
func (fi *FileInfo) ReportSymbolUse(loc source.Location, defnFilePath, symbol string) {
	fi.uses = append(fi.uses, NewSymbolUse(loc, defnFilePath, symbol))
}

// ReportForwardDeclareUse records a use satisfied by a declaration alone.
func (fi *FileInfo) ReportForwardDeclareUse(loc source.Location, decl *source.Decl, inMethodBody bool, comment string) {
	fi.uses = append(fi.uses, NewForwardDeclareUse(loc, decl, inMethodBody, comment))
}

// ReportIncludeFileUse says to keep this include line exactly as written,
// bypassing any public-header mapping.
func (fi *FileInfo) ReportIncludeFileUse(quotedInclude string) {
	fi.protectedIncludes.Add(quotedInclude)
}

func (fi *FileInfo) Uses() []*OneUse { return fi.uses }
func (fi *FileInfo) Lines() []*Line  { return fi.lines }

func (fi *FileInfo) DirectIncludes() collections.Set[string] {
	return fi.directIncludes
}

func (fi *FileInfo) DirectIncludesAsFiles() collections.Set[*source.File] {
	return fi.directIncludesAsFiles
}

func (fi *FileInfo) DirectForwardDeclares() collections.Set[*source.Decl] {
	return fi.directForwardDeclares
}

func (fi *FileInfo) ProtectedIncludes() collections.Set[string] {
	return fi.protectedIncludes
}

// AssociatedQuotedIncludes returns the quoted includes of this file's
// internal headers.
func (fi *FileInfo) AssociatedQuotedIncludes() collections.Set[string] {
	associated := make(collections.Set[string])
	for hdr := range fi.internalHeaders {
		associated.Add(hdr.quotedFile)
	}
	return associated
}

// AssociatedFiles returns the files of this file's internal headers.
func (fi *FileInfo) AssociatedFiles() collections.Set[*source.File] {
	associated := make(collections.Set[*source.File])
	for hdr := range fi.internalHeaders {
		associated.Add(hdr.file)
	}
	return associated
}
