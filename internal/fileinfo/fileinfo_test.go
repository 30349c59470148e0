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

package fileinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/EngFlow/iwyu_cc/internal/source"
)

func TestAddIncludeKeepsDuplicates(t *testing.T) {
	fs := source.NewFileSet()
	fi := New(fs.Intern("main.cc"))
	hdr := fs.Intern("foo.h")

	fi.AddInclude(hdr, `"foo.h"`, 1)
	fi.AddInclude(hdr, `"foo.h"`, 7)

	// Both copies are stored, so the analysis can suggest removing one.
	assert.Len(t, fi.Lines(), 2)
	assert.Equal(t, "1-1", fi.Lines()[0].LineNumberString())
	assert.Equal(t, "7-7", fi.Lines()[1].LineNumberString())
	// The set views deduplicate.
	assert.Len(t, fi.DirectIncludes(), 1)
	assert.Len(t, fi.DirectIncludesAsFiles(), 1)
}

func TestLineSymbolAnnotationOrder(t *testing.T) {
	line := NewIncludeLine("<vector>", 3)
	line.AddSymbolUse("vector")
	line.AddSymbolUse("allocator")
	line.AddSymbolUse("vector")

	// Deduped, in the order first seen.
	assert.Equal(t, []string{"vector", "allocator"}, line.Symbols())
	assert.True(t, line.HasSymbolUse("vector"))
	assert.False(t, line.HasSymbolUse("string"))
}

func TestForwardDeclareLine(t *testing.T) {
	fs := source.NewFileSet()
	decl := &source.Decl{
		Kind: "class",
		Name: "Foo",
		Loc:  source.Location{File: fs.Intern("foo.h"), Line: 4},
	}
	line := NewForwardDeclareLine(decl)
	assert.False(t, line.IsIncludeLine())
	assert.Equal(t, "class Foo;", line.Line())
	assert.Equal(t, "4-4", line.LineNumberString())
	assert.Panics(t, func() { line.QuotedInclude() })
}

func TestAddForwardDeclareKeepMarksDesired(t *testing.T) {
	fs := source.NewFileSet()
	fi := New(fs.Intern("main.cc"))
	decl := &source.Decl{Kind: "class", Name: "Foo"}

	fi.AddForwardDeclare(decl, true)
	assert.True(t, fi.Lines()[0].IsDesired())
	assert.True(t, fi.DirectForwardDeclares().Contains(decl))
}

func TestUsesAreNotDeduplicated(t *testing.T) {
	fs := source.NewFileSet()
	fi := New(fs.Intern("main.cc"))
	loc := source.Location{File: fi.File(), Line: 2}

	fi.ReportSymbolUse(loc, "foo.h", "FOO")
	fi.ReportSymbolUse(loc, "foo.h", "FOO")
	assert.Len(t, fi.Uses(), 2)
}

func TestSuggestedHeaderAccess(t *testing.T) {
	fs := source.NewFileSet()
	use := NewSymbolUse(source.Location{File: fs.Intern("main.cc"), Line: 1}, "foo.h", "FOO")

	assert.Panics(t, func() { use.SuggestedHeader() })
	use.SetSuggestedHeader(`"foo.h"`)
	assert.Equal(t, `"foo.h"`, use.SuggestedHeader())

	use.Ignore()
	assert.Panics(t, func() { use.SuggestedHeader() })
}

func TestInternalHeaders(t *testing.T) {
	fs := source.NewFileSet()
	cc := New(fs.Intern("foo.cc"))
	hdr := New(fs.Intern("foo.h"))
	inl := New(fs.Intern("foo-inl.h"))

	cc.AddInternalHeader(hdr)
	cc.AddInternalHeader(inl)
	cc.AddInternalHeader(cc) // a file is not its own internal header

	assert.Len(t, cc.InternalHeaders(), 2)
	assert.True(t, cc.AssociatedQuotedIncludes().Contains(`"foo.h"`))
	assert.True(t, cc.AssociatedQuotedIncludes().Contains(`"foo-inl.h"`))
	assert.True(t, cc.AssociatedFiles().Contains(hdr.File()))
}

func TestProtectedIncludes(t *testing.T) {
	fs := source.NewFileSet()
	fi := New(fs.Intern("main.cc"))
	fi.ReportIncludeFileUse(`"keepme.h"`)
	assert.True(t, fi.ProtectedIncludes().Contains(`"keepme.h"`))
}
