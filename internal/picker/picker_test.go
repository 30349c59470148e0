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

package picker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EngFlow/iwyu_cc/internal/collections"
)

func quotedValues(mis []MappedInclude) []string {
	return collections.MapSlice(mis, func(mi MappedInclude) string { return mi.Quoted })
}

func TestDynamicMappingDoesMapping(t *testing.T) {
	p := New()
	p.AddDirectInclude("project/public/foo.h", "project/internal/private.h", "")
	p.FinalizeAddedIncludes()
	assert.Equal(t,
		[]string{`"project/public/foo.h"`},
		quotedValues(p.GetCandidateHeadersForFilepath("project/internal/private.h")))
}

func TestDynamicMappingMultiplePublicFiles(t *testing.T) {
	p := New()
	p.AddDirectInclude("project/public/foo.h", "project/internal/private.h", "")
	p.AddDirectInclude("project/public/bar.h", "project/internal/private.h", "")
	p.AddDirectInclude("project/public/bar.h", "project/internal/other.h", "")
	p.FinalizeAddedIncludes()
	assert.Equal(t,
		[]string{`"project/public/foo.h"`, `"project/public/bar.h"`},
		quotedValues(p.GetCandidateHeadersForFilepath("project/internal/private.h")))
}

func TestDynamicMappingTransitiveMapping(t *testing.T) {
	p := New()
	p.AddDirectInclude("project/public/foo.h", "project/internal/private.h", "")
	p.AddDirectInclude("project/internal/private.h", "project/internal/other.h", "")
	p.FinalizeAddedIncludes()
	assert.Equal(t,
		[]string{`"project/public/foo.h"`},
		quotedValues(p.GetCandidateHeadersForFilepath("project/internal/other.h")))
}

func TestDynamicMappingMultipleTransitiveMapping(t *testing.T) {
	p := New()
	p.AddDirectInclude("project/public/foo.h", "project/internal/private.h", "")
	p.AddDirectInclude("project/public/bar.h", "project/internal/private.h", "")
	p.AddDirectInclude("project/public/baz.h", "project/internal/private2.h", "")
	p.AddDirectInclude("project/internal/private.h", "project/internal/other.h", "")
	p.AddDirectInclude("project/internal/private2.h", "project/internal/other.h", "")
	p.FinalizeAddedIncludes()
	assert.Equal(t,
		[]string{`"project/public/foo.h"`, `"project/public/bar.h"`, `"project/public/baz.h"`},
		quotedValues(p.GetCandidateHeadersForFilepath("project/internal/other.h")))
}

func TestDynamicMappingNormalizesAsm(t *testing.T) {
	p := New()
	p.AddDirectInclude("/usr/include/types.h", "/usr/include/asm-cris/posix_types.h", "")
	p.FinalizeAddedIncludes()
	assert.Equal(t,
		[]string{"<asm/posix_types.h>"},
		quotedValues(p.GetCandidateHeadersForFilepath(
			"/usr/src/linux-headers-2.6.24-gg23/include/asm-cris/posix_types.h")))
}

func TestDynamicMappingPrivateToPublicMapping(t *testing.T) {
	p := New()
	// These names are not the public/internal names that AddDirectInclude
	// has inference rules for.
	p.AddMapping(`"project/private/foo.h"`, MappedInclude{Quoted: `"project/not_private/bar.h"`})
	p.MarkIncludeAsPrivate(`"project/private/foo.h"`)
	p.FinalizeAddedIncludes()
	assert.Equal(t,
		[]string{`"project/not_private/bar.h"`},
		quotedValues(p.GetCandidateHeadersForFilepath("project/private/foo.h")))
}

func TestGetCandidateHeadersForSymbol(t *testing.T) {
	p := New()
	p.FinalizeAddedIncludes()
	assert.Equal(t,
		[]string{"<sys/types.h>", "<sys/stat.h>"},
		quotedValues(p.GetCandidateHeadersForSymbol("dev_t")))
	assert.Equal(t,
		[]string{
			"<stddef.h>", "<cstddef>", "<clocale>", "<cstdio>", "<cstdlib>",
			"<cstring>", "<ctime>", "<cwchar>", "<locale.h>", "<stdio.h>",
			"<stdlib.h>", "<string.h>", "<time.h>", "<wchar.h>",
		},
		quotedValues(p.GetCandidateHeadersForSymbol("NULL")))
	assert.Equal(t,
		[]string{"<memory>", "<string>", "<vector>", "<map>", "<set>"},
		quotedValues(p.GetCandidateHeadersForSymbol("std::allocator")))
	assert.Empty(t, p.GetCandidateHeadersForSymbol("foo"))
}

func TestGetCandidateHeadersForFilepathC(t *testing.T) {
	p := New()
	p.FinalizeAddedIncludes()
	assert.Equal(t, []string{"<dlfcn.h>"},
		quotedValues(p.GetCandidateHeadersForFilepath("/usr/include/bits/dlfcn.h")))
	assert.Equal(t, []string{"<assert.h>", "<cassert>"},
		quotedValues(p.GetCandidateHeadersForFilepath("/usr/grte/v1/include/assert.h")))
	assert.Equal(t, []string{"<stdarg.h>", "<cstdarg>"},
		quotedValues(p.GetCandidateHeadersForFilepath("/usr/grte/v1/include/stdarg.h")))
}

func TestGetCandidateHeadersForFilepathCXX(t *testing.T) {
	p := New()
	p.FinalizeAddedIncludes()
	assert.Equal(t, []string{"<memory>"},
		quotedValues(p.GetCandidateHeadersForFilepath("/usr/include/c++/4.2/bits/allocator.h")))
}

func TestGetCandidateHeadersForFilepathNotInAnyMap(t *testing.T) {
	p := New()
	p.FinalizeAddedIncludes()
	assert.Equal(t, []string{"<poll.h>"},
		quotedValues(p.GetCandidateHeadersForFilepath("/usr/grte/v1/include/poll.h")))
	assert.Equal(t, []string{`"my/dot.h"`},
		quotedValues(p.GetCandidateHeadersForFilepath("././././my/dot.h")))
}

func TestGetCandidateHeadersForFilepathIncludeRecursion(t *testing.T) {
	p := New()
	p.FinalizeAddedIncludes()
	assert.Equal(t,
		[]string{"<istream>", "<fstream>", "<iostream>", "<sstream>"},
		quotedValues(p.GetCandidateHeadersForFilepath("/usr/include/c++/4.2/bits/istream.tcc")))
}

func TestGetCandidateHeadersForFilepathPrivateValueInRecursion(t *testing.T) {
	p := New()
	p.FinalizeAddedIncludes()
	assert.Equal(t, []string{"<errno.h>", "<cerrno>"},
		quotedValues(p.GetCandidateHeadersForFilepath("/usr/include/linux/errno.h")))
}

func TestGetCandidateHeadersForFilepathNoBuiltin(t *testing.T) {
	// "<built-in>" must never appear as an #include suggestion.
	p := New()
	p.AddDirectInclude("<built-in>", "foo/bar/internal/code.cc", "")
	p.AddDirectInclude("foo/bar/internal/code.cc", "foo/qux/internal/lib.h", "")
	p.FinalizeAddedIncludes()
	assert.Equal(t, []string{`"foo/qux/internal/lib.h"`},
		quotedValues(p.GetCandidateHeadersForFilepath("foo/qux/internal/lib.h")))
}

func TestGetCandidateHeadersForRegexKeys(t *testing.T) {
	p := New()
	// The key of a mapping may be a regex that matches the value, which
	// must not produce an identity mapping.
	p.AddMapping(`@"mydir/.*\.h"`, MappedInclude{Quoted: `"mydir/include.h"`})
	p.MarkIncludeAsPrivate(`@"mydir/.*\.h"`) // will *not* apply to include.h
	p.AddDirectInclude("a.h", "mydir/internal.h", "")
	p.AddDirectInclude("b.h", "mydir/include.h", "")
	p.FinalizeAddedIncludes()
	assert.Equal(t, []string{`"mydir/include.h"`},
		quotedValues(p.GetCandidateHeadersForFilepath("mydir/internal.h")))
	assert.Equal(t, []string{`"mydir/include.h"`},
		quotedValues(p.GetCandidateHeadersForFilepath("mydir/include.h")))
}

func TestRegexMatchIsAnchored(t *testing.T) {
	p := New()
	// A substring match must not count: `"some/prefix/x.h"` contains a
	// match of `"prefix/.*"` but does not fully match it.
	p.AddMapping(`@"prefix/.*"`, MappedInclude{Quoted: `"public.h"`})
	p.AddDirectInclude("a.h", "some/prefix/x.h", "")
	p.AddDirectInclude("a.h", "prefix/y.h", "")
	p.FinalizeAddedIncludes()
	// "some/prefix/x.h" only matches as a substring, so no mapping.
	assert.Equal(t, []string{`"some/prefix/x.h"`},
		quotedValues(p.GetCandidateHeadersForFilepath("some/prefix/x.h")))
	// The fully-matching header inherits the mapping. The regex key had no
	// visibility, so the header stays public and self-maps first.
	assert.Equal(t, []string{`"prefix/y.h"`, `"public.h"`},
		quotedValues(p.GetCandidateHeadersForFilepath("prefix/y.h")))
}

func TestGetCandidateHeadersForFilepathIncludedFromNoInternal(t *testing.T) {
	p := New()
	p.FinalizeAddedIncludes()
	assert.Equal(t, []string{"<dlfcn.h>"},
		p.GetCandidateHeadersForFilepathIncludedFrom("/usr/include/bits/dlfcn.h", "mydir/myapp.h"))
}

func TestGetCandidateHeadersForFilepathIncludedFromInternal(t *testing.T) {
	p := New()
	// The compiler always has <built-in> including the file given on the
	// command line.
	p.AddDirectInclude("<built-in>", "foo/bar/internal/code.cc", "")
	p.AddDirectInclude("foo/bar/internal/code.cc", "foo/bar/public/code.h", "")
	p.AddDirectInclude("foo/bar/public/code.h", "foo/bar/internal/hdr.h", "")
	p.FinalizeAddedIncludes()
	assert.Equal(t, []string{`"foo/bar/internal/hdr.h"`},
		p.GetCandidateHeadersForFilepathIncludedFrom("foo/bar/internal/hdr.h", "foo/bar/internal/code.cc"))
}

func TestGetCandidateHeadersForFilepathIncludedFromOtherInternal(t *testing.T) {
	p := New()
	p.AddDirectInclude("foo/bar/public/code.h", "foo/bar/internal/hdr.h", "")
	p.FinalizeAddedIncludes()
	assert.Equal(t, []string{`"foo/bar/public/code.h"`},
		p.GetCandidateHeadersForFilepathIncludedFrom("foo/bar/internal/hdr.h", "baz/internal/code.cc"))
}

func TestGetCandidateHeadersForFilepathIncludedFromFriendRegex(t *testing.T) {
	p := New()
	p.AddDirectInclude("baz.cc", "baz.h", "")
	p.AddDirectInclude("baz.cc", "abcde.h", "")
	p.AddDirectInclude("baz.cc", "random.h", "")
	p.AddDirectInclude("baz.h", "project/private/bar.h", "")
	p.AddDirectInclude("abcde.h", "project/private/bar.h", "")
	p.AddDirectInclude("random.h", "project/private/bar.h", "")
	p.AddMapping(`"project/private/bar.h"`, MappedInclude{Quoted: `"foo.h"`})
	p.MarkIncludeAsPrivate(`"project/private/bar.h"`)
	p.AddFriendRegex("project/private/bar.h", `"baz.*"`)
	p.AddFriendRegex("project/private/bar.h", `"a.c.+\.h"`)
	p.FinalizeAddedIncludes()
	assert.Equal(t, []string{`"foo.h"`},
		p.GetCandidateHeadersForFilepathIncludedFrom("project/private/bar.h", "random.h"))
	assert.Equal(t, []string{`"project/private/bar.h"`},
		p.GetCandidateHeadersForFilepathIncludedFrom("project/private/bar.h", "baz.h"))
	assert.Equal(t, []string{`"project/private/bar.h"`},
		p.GetCandidateHeadersForFilepathIncludedFrom("project/private/bar.h", "abcde.h"))
	// The friend exemption also applies to includers seen only on the
	// including side, like the main source file.
	assert.Equal(t, []string{`"project/private/bar.h"`},
		p.GetCandidateHeadersForFilepathIncludedFrom("project/private/bar.h", "baz.cc"))
}

func TestGetCandidateHeadersPreservesWrittenForm(t *testing.T) {
	p := New()
	p.AddDirectInclude("baz.cc", "baz.h", `"./././baz.h"`)
	p.FinalizeAddedIncludes()
	assert.Equal(t, []string{`"./././baz.h"`},
		p.GetCandidateHeadersForFilepathIncludedFrom("baz.h", "baz.cc"))
}

func TestHasMappingIncludeMatch(t *testing.T) {
	p := New()
	p.FinalizeAddedIncludes()
	assert.True(t, p.HasMapping("/usr/include/stdio.h", "/usr/include/c++/4.2/cstdio"))
	assert.True(t, p.HasMapping("/usr/include/c++/4.2/bits/stl_deque.h", "/usr/include/c++/4.2/deque"))
	assert.True(t, p.HasMapping("/usr/include/bits/stat.h", "/usr/include/sys/stat.h"))
	assert.False(t, p.HasMapping("/usr/include/bits/syscall.h", "/usr/include/sys/stat.h"))
}

func TestHasMappingIncludeMatchIndirectly(t *testing.T) {
	p := New()
	p.FinalizeAddedIncludes()
	assert.True(t, p.HasMapping("/usr/include/c++/4.2/ios", "/usr/include/c++/4.2/iostream"))
	assert.True(t, p.HasMapping("/usr/include/linux/errno.h", "/usr/include/errno.h"))
}

func TestHasMappingIdentity(t *testing.T) {
	p := New()
	p.AddDirectInclude("a.cc", "a.h", "")
	p.FinalizeAddedIncludes()
	assert.True(t, p.HasMapping("a.h", "a.h"))
	assert.True(t, p.HasMapping("never/seen.h", "never/seen.h"))
}

func TestHasMappingIsTransitive(t *testing.T) {
	p := New()
	p.AddMapping(`"a.h"`, MappedInclude{Quoted: `"b.h"`})
	p.AddMapping(`"b.h"`, MappedInclude{Quoted: `"c.h"`})
	p.AddMapping(`"c.h"`, MappedInclude{Quoted: `"d.h"`})
	p.FinalizeAddedIncludes()
	assert.True(t, p.HasMapping("a.h", "b.h"))
	assert.True(t, p.HasMapping("b.h", "c.h"))
	assert.True(t, p.HasMapping("a.h", "c.h"))
	assert.True(t, p.HasMapping("a.h", "d.h"))
	assert.False(t, p.HasMapping("d.h", "a.h"))
}

func TestVisibilityIsImmutableOnceSet(t *testing.T) {
	p := New()
	p.MarkIncludeAsPrivate(`"foo/bar.h"`)
	// Re-marking with the same visibility is fine.
	p.MarkIncludeAsPrivate(`"foo/bar.h"`)
	assert.Panics(t, func() {
		p.AddIncludeMapping(`"foo/bar.h"`, VisibilityPublic,
			MappedInclude{Quoted: `"foo/baz.h"`}, VisibilityPublic)
	})
}

func TestFinalizeTwicePanics(t *testing.T) {
	p := New()
	p.FinalizeAddedIncludes()
	assert.Panics(t, func() { p.FinalizeAddedIncludes() })
}

func TestMutationAfterFinalizePanics(t *testing.T) {
	p := New()
	p.FinalizeAddedIncludes()
	assert.Panics(t, func() { p.AddDirectInclude("a.h", "b.h", "") })
	assert.Panics(t, func() { p.AddMapping(`"a.h"`, MappedInclude{Quoted: `"b.h"`}) })
	assert.Panics(t, func() { p.MarkIncludeAsPrivate(`"a.h"`) })
}

func TestQueryBeforeFinalizePanics(t *testing.T) {
	p := New()
	assert.Panics(t, func() { p.GetCandidateHeadersForSymbol("NULL") })
	assert.Panics(t, func() { p.GetCandidateHeadersForFilepath("a.h") })
	assert.Panics(t, func() { p.HasMapping("a.h", "b.h") })
}

func TestMalformedMappingArgumentsPanic(t *testing.T) {
	p := New()
	assert.Panics(t, func() { p.AddMapping("unquoted.h", MappedInclude{Quoted: `"b.h"`}) })
	assert.Panics(t, func() { p.AddMapping(`"a.h"`, MappedInclude{Quoted: "unquoted.h"}) })
	assert.Panics(t, func() { p.MarkIncludeAsPrivate("unquoted.h") })
}

func TestImplicitThirdPartyMappings(t *testing.T) {
	p := New()
	// b.h is only included from third-party code and has no explicit
	// mapping, so it gains implicit mappings to its includers and becomes
	// private.
	p.AddDirectInclude("third_party/x/a.h", "third_party/x/b.h", "")
	p.AddDirectInclude("third_party/x/a2.h", "third_party/x/b.h", "")
	// c.h is included from project code too, so it stays unmapped.
	p.AddDirectInclude("third_party/x/a.h", "third_party/x/c.h", "")
	p.AddDirectInclude("project/user.cc", "third_party/x/c.h", "")
	p.FinalizeAddedIncludes()

	assert.ElementsMatch(t,
		[]string{`"third_party/x/a.h"`, `"third_party/x/a2.h"`},
		quotedValues(p.GetCandidateHeadersForFilepath("third_party/x/b.h")))
	assert.False(t, p.IsPublic("third_party/x/b.h"))
	assert.Equal(t, []string{`"third_party/x/c.h"`},
		quotedValues(p.GetCandidateHeadersForFilepath("third_party/x/c.h")))
	assert.True(t, p.IsPublic("third_party/x/c.h"))
}

func TestThirdPartyCycleIsToleratedWithWarning(t *testing.T) {
	p := New()
	p.AddMapping(`"third_party/a.h"`, MappedInclude{Quoted: `"third_party/b.h"`})
	p.AddMapping(`"third_party/b.h"`, MappedInclude{Quoted: `"third_party/a.h"`})
	require.NotPanics(t, func() { p.FinalizeAddedIncludes() })
	// The search stops at the edge closing the cycle; each header still
	// maps to the other directly.
	assert.True(t, p.HasMapping("third_party/a.h", "third_party/b.h"))
	assert.True(t, p.HasMapping("third_party/b.h", "third_party/a.h"))
}

func TestNonThirdPartyCycleIsFatal(t *testing.T) {
	p := New()
	p.AddMapping(`"cycle/a.h"`, MappedInclude{Quoted: `"cycle/b.h"`})
	p.AddMapping(`"cycle/b.h"`, MappedInclude{Quoted: `"cycle/a.h"`})
	assert.Panics(t, func() { p.FinalizeAddedIncludes() })
}

func TestDuplicateMappingKeysAppendValues(t *testing.T) {
	p := New()
	p.AddIncludeMapping(`"dup/private.h"`, VisibilityPrivate,
		MappedInclude{Quoted: `"dup/first.h"`}, VisibilityPublic)
	p.AddIncludeMapping(`"dup/private.h"`, VisibilityPrivate,
		MappedInclude{Quoted: `"dup/second.h"`}, VisibilityPublic)
	p.FinalizeAddedIncludes()
	assert.Equal(t, []string{`"dup/first.h"`, `"dup/second.h"`},
		quotedValues(p.GetCandidateHeadersForFilepath("dup/private.h")))
}
