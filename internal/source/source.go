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

// Package source models the files of a translation unit. A File is interned
// in a FileSet, so two mentions of the same path yield pointer-identical
// files; that identity is what the include graph, the file-info store and the
// provides relations are keyed on.
package source

import (
	"fmt"
	"strings"

	"github.com/EngFlow/iwyu_cc/internal/pathutil"
)

// File is one interned source file. Comparing two *File values compares
// identity within their FileSet.
type File struct {
	path    string
	quoted  string
	content string
	hasData bool
}

// Path returns the normalized path the file was interned under.
func (f *File) Path() string { return f.path }

// QuotedInclude returns the quoted-include form of the file's path.
func (f *File) QuotedInclude() string { return f.quoted }

// Content returns the raw file text, or "" if none was registered. Content is
// only available for files the front end actually read; pragma scanning is
// skipped for the rest.
func (f *File) Content() (string, bool) { return f.content, f.hasData }

func (f *File) String() string { return f.path }

// FileSet interns files by normalized path.
type FileSet struct {
	files map[string]*File
}

func NewFileSet() *FileSet {
	return &FileSet{files: make(map[string]*File)}
}

// Intern returns the unique File for the given path, creating it on first
// use. Paths are normalized, so "./foo.h" and "foo.h" intern to the same
// file.
func (fs *FileSet) Intern(path string) *File {
	normalized := pathutil.NormalizeFilePath(path)
	if f, ok := fs.files[normalized]; ok {
		return f
	}
	f := &File{path: normalized, quoted: pathutil.ConvertToQuotedInclude(normalized)}
	fs.files[normalized] = f
	return f
}

// Lookup returns the interned File for path, or nil if it was never seen.
func (fs *FileSet) Lookup(path string) *File {
	return fs.files[pathutil.NormalizeFilePath(path)]
}

// SetContent registers the raw text of a file, making it available for
// pragma scanning.
func (fs *FileSet) SetContent(path string, content string) *File {
	f := fs.Intern(path)
	f.content = content
	f.hasData = true
	return f
}

// Location is a position inside an interned file. The zero Location is
// invalid.
type Location struct {
	File   *File
	Line   int
	Offset int // byte offset into the file content, -1 if unknown
}

// IsValid reports whether the location points into a real file.
func (l Location) IsValid() bool { return l.File != nil }

func (l Location) String() string {
	if !l.IsValid() {
		return "<invalid location>"
	}
	if l.Line <= 0 {
		return l.File.Path()
	}
	return fmt.Sprintf("%s:%d", l.File.Path(), l.Line)
}

// Decl describes a forward-declarable declaration as delivered by the AST
// traversal: a class/struct/union/enum plus where it was declared.
type Decl struct {
	Kind      string   // "class", "struct", "union", "enum"
	Name      string   // qualified name, e.g. "ns::Foo"
	Namespace []string // enclosing namespaces, outermost first
	Loc       Location
}

// ShortName returns the unqualified name of the declaration.
func (d *Decl) ShortName() string {
	if idx := strings.LastIndex(d.Name, "::"); idx >= 0 {
		return d.Name[idx+2:]
	}
	return d.Name
}

// ForwardDeclareLine renders the declaration the way it would be written as a
// forward declaration, wrapped in its namespaces.
func (d *Decl) ForwardDeclareLine() string {
	line := d.Kind + " " + d.ShortName() + ";"
	for i := len(d.Namespace) - 1; i >= 0; i-- {
		line = "namespace " + d.Namespace[i] + " { " + line + " }"
	}
	return line
}

// FilePath returns the path of the file the declaration lives in, or "" for
// a declaration with an unknown location.
func (d *Decl) FilePath() string {
	if !d.Loc.IsValid() {
		return ""
	}
	return d.Loc.File.Path()
}
