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

// Package frontend is a lightweight scanner over C/C++ sources that replays
// a translation unit's preprocessor events into the observer: EnterFile and
// FileSkipped for includes, MacroDefined/MacroExpands for #defines and their
// uses, and the #if family.
//
// It is not a real preprocessor. It does not evaluate conditionals (every
// branch is scanned) and it recognizes only enough of the grammar to drive
// the include analysis: `#include` lines, the conditional directives, macro
// definitions and expansions of macros it has seen defined. The AST-level
// use stream stays the compiler's job.
package frontend

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/EngFlow/iwyu_cc/internal/collections"
	"github.com/EngFlow/iwyu_cc/internal/lexutil"
	"github.com/EngFlow/iwyu_cc/internal/preprocessor"
	"github.com/EngFlow/iwyu_cc/internal/source"
)

// Options configures include resolution for a scan.
type Options struct {
	// IncludeDirs are -I style search directories for quoted and system
	// includes.
	IncludeDirs []string
	// SystemDirs are searched after IncludeDirs for system includes.
	// Defaults to /usr/include.
	SystemDirs []string
}

// Scanner drives one translation unit through the observer.
type Scanner struct {
	obs   *preprocessor.Observer
	files *source.FileSet
	opts  Options

	// Files already entered. A re-include of one is reported as skipped,
	// approximating header guards.
	visited collections.Set[*source.File]

	// Names of macros defined so far; identifiers matching one count as
	// expansions.
	macros collections.Set[string]
}

func NewScanner(obs *preprocessor.Observer, files *source.FileSet, opts Options) *Scanner {
	if len(opts.SystemDirs) == 0 {
		opts.SystemDirs = []string{"/usr/include"}
	}
	return &Scanner{
		obs:     obs,
		files:   files,
		opts:    opts,
		visited: make(collections.Set[*source.File]),
		macros:  make(collections.Set[string]),
	}
}

// ProcessMainFile reads the main source file of a translation unit and
// replays its preprocessor events, recursing into every resolvable include.
// HandlePreprocessingDone is left to the caller, so several scans can feed
// one observer.
func (s *Scanner) ProcessMainFile(mainPath string) error {
	content, err := os.ReadFile(mainPath)
	if err != nil {
		return fmt.Errorf("reading main file: %w", err)
	}
	file := s.files.SetContent(mainPath, string(content))

	// The compiler models the command line as the fake file <built-in>
	// including the main file.
	builtin := s.files.Intern("<built-in>")
	s.obs.EnterFile(file, source.Location{File: builtin, Line: 0, Offset: -1}, "")
	s.visited.Add(file)
	s.scanFile(file)
	return nil
}

var directiveRegexp = regexp.MustCompile(`^\s*#\s*([a-z_]+)\s*(.*)$`)

// scanFile walks the file line by line, dispatching directives and spotting
// expansions of known macros in ordinary text.
func (s *Scanner) scanFile(file *source.File) {
	content, ok := file.Content()
	if !ok {
		return
	}

	offset := 0
	for offset <= len(content) {
		lineStart := offset
		line := lexutil.TextUntilEndOfLine(content, offset)
		offset += len(line) + 1

		// Splice continuation lines, so multi-line #defines scan whole.
		for strings.HasSuffix(strings.TrimRight(line, " \t"), `\`) && offset <= len(content) {
			next := lexutil.TextUntilEndOfLine(content, offset)
			offset += len(next) + 1
			line = strings.TrimRight(strings.TrimRight(line, " \t"), `\`) + " " + next
		}

		loc := source.Location{File: file, Line: lexutil.LineNumber(content, lineStart), Offset: lineStart}
		match := directiveRegexp.FindStringSubmatch(line)
		if match == nil {
			s.reportMacroExpansions(line, loc)
			continue
		}

		directive, rest := match[1], match[2]
		switch directive {
		case "include", "include_next":
			s.handleInclude(rest, loc)
		case "define":
			s.handleDefine(rest, loc)
		case "undef":
			if name := firstIdentifier(rest); name != "" {
				delete(s.macros, name)
			}
		case "ifdef":
			if name := firstIdentifier(rest); name != "" {
				s.obs.Ifdef(name, loc)
			}
		case "ifndef":
			if name := firstIdentifier(rest); name != "" {
				s.obs.Ifndef(name, loc)
			}
		case "if":
			s.obs.If(rest, loc)
			s.reportConditionExpansions(rest, loc)
		case "elif":
			s.obs.Elif(rest, loc)
			s.reportConditionExpansions(rest, loc)
		case "else", "endif", "pragma", "error", "warning", "line":
			// No include information in these.
		}
	}
}

var includeOperandRegexp = regexp.MustCompile(`^(<[^>]+>|"[^"]+")`)

func (s *Scanner) handleInclude(rest string, loc source.Location) {
	match := includeOperandRegexp.FindString(strings.TrimSpace(rest))
	if match == "" {
		return // computed or malformed include
	}
	asWritten := match
	name := asWritten[1 : len(asWritten)-1]
	isSystem := asWritten[0] == '<'

	includee := s.resolveInclude(loc.File, name, isSystem)
	if s.visited.Contains(includee) {
		s.obs.FileSkipped(includee, loc, asWritten)
		return
	}
	s.visited.Add(includee)
	s.obs.EnterFile(includee, loc, asWritten)
	s.scanFile(includee)
	s.obs.ExitFile(loc.File)
}

// resolveInclude finds the file an include names: next to the includer for
// quoted form, then on the include dirs, then the system dirs. An include
// that resolves to nothing still gets an interned placeholder file, under
// the system tree for <>-form names, so its quoted form survives.
func (s *Scanner) resolveInclude(includer *source.File, name string, isSystem bool) *source.File {
	var candidates []string
	if !isSystem {
		candidates = append(candidates, filepath.Join(filepath.Dir(includer.Path()), name))
	}
	for _, dir := range s.opts.IncludeDirs {
		candidates = append(candidates, filepath.Join(dir, name))
	}
	for _, dir := range s.opts.SystemDirs {
		candidates = append(candidates, filepath.Join(dir, name))
	}
	for _, candidate := range candidates {
		if existing := s.files.Lookup(candidate); existing != nil {
			return existing
		}
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			if content, err := os.ReadFile(candidate); err == nil {
				return s.files.SetContent(candidate, string(content))
			}
			return s.files.Intern(candidate)
		}
	}
	if isSystem {
		// Keep the <>-form: a placeholder under /usr/include converts
		// back to the same quoted include.
		return s.files.Intern(path.Join("/usr/include", name))
	}
	return s.files.Intern(name)
}

var defineRegexp = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)(\([^)]*\))?\s*(.*)$`)

func (s *Scanner) handleDefine(rest string, loc source.Location) {
	match := defineRegexp.FindStringSubmatch(rest)
	if match == nil {
		return
	}
	name, params, body := match[1], match[2], match[3]

	// Parameters are not macro references; drop them from the harvested
	// body identifiers.
	paramNames := make(collections.Set[string])
	for _, param := range strings.FieldsFunc(strings.Trim(params, "()"), func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	}) {
		paramNames.Add(param)
	}
	var bodyIdents []string
	for _, ident := range lexutil.Identifiers(body) {
		if !paramNames.Contains(ident) {
			bodyIdents = append(bodyIdents, ident)
		}
	}

	s.obs.MacroDefined(name, loc, bodyIdents)
	s.macros.Add(name)
}

func firstIdentifier(text string) string {
	idents := lexutil.Identifiers(text)
	if len(idents) == 0 {
		return ""
	}
	return idents[0]
}

// reportMacroExpansions reports an expansion for every identifier in an
// ordinary source line that names a known macro.
func (s *Scanner) reportMacroExpansions(line string, loc source.Location) {
	for _, ident := range lexutil.Identifiers(line) {
		if s.macros.Contains(ident) {
			s.obs.MacroExpands(ident, loc)
		}
	}
}

// reportConditionExpansions reports expansions for macros in an #if/#elif
// condition, excluding the operands of `defined`, which the observer
// recovers itself.
func (s *Scanner) reportConditionExpansions(condition string, loc source.Location) {
	definedArgs := make(collections.Set[string]).Add("defined")
	for _, arg := range lexutil.FindArgumentsToDefined(condition) {
		definedArgs.Add(arg.Name)
	}
	for _, ident := range lexutil.Identifiers(condition) {
		if !definedArgs.Contains(ident) && s.macros.Contains(ident) {
			s.obs.MacroExpands(ident, loc)
		}
	}
}
