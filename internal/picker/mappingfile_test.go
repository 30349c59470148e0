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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMappingFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// captureDiagnostics redirects mapping-file diagnostics for the duration of
// the test and returns a getter for the captured text.
func captureDiagnostics(t *testing.T) func() string {
	t.Helper()
	var sb strings.Builder
	old := diagnostics
	diagnostics = &sb
	t.Cleanup(func() { diagnostics = old })
	return sb.String
}

func TestAddMappingsFromFile(t *testing.T) {
	dir := t.TempDir()
	path := writeMappingFile(t, dir, "test.imp", `
- include: ['"project/detail/impl.h"', private, '"project/api.h"', public]
- symbol: [SOME_MACRO, private, '"project/api.h"', public]
`)
	diag := captureDiagnostics(t)

	p := New()
	p.AddMappingsFromFile(path)
	p.FinalizeAddedIncludes()

	assert.Empty(t, diag())
	assert.Equal(t, []string{`"project/api.h"`},
		quotedValues(p.GetCandidateHeadersForFilepath("project/detail/impl.h")))
	assert.Equal(t, []string{`"project/api.h"`},
		quotedValues(p.GetCandidateHeadersForSymbol("SOME_MACRO")))
}

func TestAddMappingsFromFileRef(t *testing.T) {
	dir := t.TempDir()
	writeMappingFile(t, dir, "base.imp", `
- include: ['"base/detail.h"', private, '"base/base.h"', public]
`)
	top := writeMappingFile(t, dir, "top.imp", `
- ref: "base.imp"
- include: ['"top/detail.h"', private, '"top/top.h"', public]
`)
	diag := captureDiagnostics(t)

	p := New()
	p.AddMappingsFromFile(top)
	p.FinalizeAddedIncludes()

	assert.Empty(t, diag())
	assert.Equal(t, []string{`"base/base.h"`},
		quotedValues(p.GetCandidateHeadersForFilepath("base/detail.h")))
	assert.Equal(t, []string{`"top/top.h"`},
		quotedValues(p.GetCandidateHeadersForFilepath("top/detail.h")))
}

func TestAddMappingsFromFileSearchPath(t *testing.T) {
	dir := t.TempDir()
	writeMappingFile(t, dir, "onpath.imp", `
- include: ['"detail.h"', private, '"api.h"', public]
`)
	diag := captureDiagnostics(t)

	p := New()
	p.AddMappingFileSearchPath(dir)
	p.AddMappingsFromFile("onpath.imp")
	p.FinalizeAddedIncludes()

	assert.Empty(t, diag())
	assert.Equal(t, []string{`"api.h"`},
		quotedValues(p.GetCandidateHeadersForFilepath("detail.h")))
}

func TestAddMappingsFromFileMissingFile(t *testing.T) {
	diag := captureDiagnostics(t)
	p := New()
	p.AddMappingsFromFile("does-not-exist.imp")
	assert.Contains(t, diag(), "Cannot open mapping file 'does-not-exist.imp'")
}

func TestAddMappingsFromFileRootMustBeSequence(t *testing.T) {
	dir := t.TempDir()
	path := writeMappingFile(t, dir, "bad.imp", `include: ['"a.h"', private, '"b.h"', public]`)
	diag := captureDiagnostics(t)

	p := New()
	p.AddMappingsFromFile(path)
	assert.Contains(t, diag(), "Root element must be an array.")
}

func TestAddMappingsFromFileBadShape(t *testing.T) {
	dir := t.TempDir()
	path := writeMappingFile(t, dir, "bad.imp", `
- include: ['"a.h"', private, '"b.h"']
`)
	diag := captureDiagnostics(t)

	p := New()
	p.AddMappingsFromFile(path)
	assert.Contains(t, diag(),
		"Include mapping expects a value on the form '[from, visibility, to, visibility]'.")
}

func TestAddMappingsFromFileUnknownVisibility(t *testing.T) {
	dir := t.TempDir()
	path := writeMappingFile(t, dir, "bad.imp", `
- include: ['"a.h"', hidden, '"b.h"', public]
`)
	diag := captureDiagnostics(t)

	p := New()
	p.AddMappingsFromFile(path)
	assert.Contains(t, diag(), "Unknown visibility 'hidden'.")
}

func TestAddMappingsFromFileUnknownDirective(t *testing.T) {
	dir := t.TempDir()
	path := writeMappingFile(t, dir, "bad.imp", `
- frobnicate: ['"a.h"', private, '"b.h"', public]
`)
	diag := captureDiagnostics(t)

	p := New()
	p.AddMappingsFromFile(path)
	assert.Contains(t, diag(), "Unknown directive 'frobnicate'.")
}

func TestAddMappingsFromFileDiagnosticHasPosition(t *testing.T) {
	dir := t.TempDir()
	path := writeMappingFile(t, dir, "bad.imp", `
- include: ['"a.h"', private, '"b.h"', public]
- frobnicate: [x]
`)
	diag := captureDiagnostics(t)

	p := New()
	p.AddMappingsFromFile(path)
	// The diagnostic names the file and the position of the bad entry,
	// and the entries before it are kept.
	assert.Contains(t, diag(), path+":3:")
	p.FinalizeAddedIncludes()
	assert.Equal(t, []string{`"b.h"`},
		quotedValues(p.GetCandidateHeadersForFilepath("a.h")))
}

func TestAddMappingsFromFileErrorAbortsOnlyThatFile(t *testing.T) {
	dir := t.TempDir()
	writeMappingFile(t, dir, "broken.imp", `
- frobnicate: [x]
`)
	top := writeMappingFile(t, dir, "top.imp", `
- ref: "broken.imp"
- include: ['"top/detail.h"', private, '"top/top.h"', public]
`)
	diag := captureDiagnostics(t)

	p := New()
	p.AddMappingsFromFile(top)
	p.FinalizeAddedIncludes()

	// The broken ref produces a diagnostic, but the referring file's own
	// entries still load.
	assert.Contains(t, diag(), "Unknown directive 'frobnicate'.")
	assert.Equal(t, []string{`"top/top.h"`},
		quotedValues(p.GetCandidateHeadersForFilepath("top/detail.h")))
}
