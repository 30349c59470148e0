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

// Package engine owns the analysis context of one run: the file set, the
// include picker, the check-also policy and the search paths, shared
// read-only with every component once preprocessing is done. It replaces
// what would otherwise be process-global state.
package engine

import (
	"io"
	"slices"
	"strings"

	"github.com/EngFlow/iwyu_cc/internal/analyze"
	"github.com/EngFlow/iwyu_cc/internal/frontend"
	"github.com/EngFlow/iwyu_cc/internal/picker"
	"github.com/EngFlow/iwyu_cc/internal/preprocessor"
	"github.com/EngFlow/iwyu_cc/internal/source"
)

// Options configures one analysis context.
type Options struct {
	// MappingFiles are extra mapping files to load before analysis.
	MappingFiles []string
	// MappingFileSearchPath resolves relative mapping-file names.
	MappingFileSearchPath []string
	// CheckAlsoGlobs name extra files, beyond the main compilation unit,
	// to report violations for.
	CheckAlsoGlobs []string
	// IncludeDirs are -I style include search directories.
	IncludeDirs []string
	// SystemDirs are system include directories, /usr/include by default.
	SystemDirs []string
}

// Context ties the components of one run together. It must not outlive the
// translation units it analyzes.
type Context struct {
	Files    *source.FileSet
	Picker   *picker.IncludePicker
	Policy   *preprocessor.CheckPolicy
	Observer *preprocessor.Observer

	opts Options
}

// NewContext builds a context: a fresh file set, a picker preloaded with
// the default mappings plus the configured mapping files, and the check
// policy.
func NewContext(opts Options) *Context {
	files := source.NewFileSet()
	p := picker.New()
	p.AddMappingFileSearchPath(opts.MappingFileSearchPath...)
	for _, mappingFile := range opts.MappingFiles {
		p.AddMappingsFromFile(mappingFile)
	}

	policy := preprocessor.NewCheckPolicy()
	for _, glob := range opts.CheckAlsoGlobs {
		policy.AddGlobToReportIWYUViolationsFor(glob)
	}

	return &Context{
		Files:    files,
		Picker:   p,
		Policy:   policy,
		Observer: preprocessor.NewObserver(p, files, policy),
		opts:     opts,
	}
}

// Run scans the given translation-unit sources, finishes preprocessing, and
// reports per checked file to w. Returns the total number of suggested
// changes.
func (c *Context) Run(mainFiles []string, w io.Writer) (int, error) {
	scanner := frontend.NewScanner(c.Observer, c.Files, frontend.Options{
		IncludeDirs: c.opts.IncludeDirs,
		SystemDirs:  c.opts.SystemDirs,
	})
	for _, mainFile := range mainFiles {
		if err := scanner.ProcessMainFile(mainFile); err != nil {
			return 0, err
		}
	}
	c.Observer.HandlePreprocessingDone()

	analyzer := analyze.New(c.Picker, c.Observer, c.Files)
	checked := c.Observer.FilesToReport().SortedValues(func(l, r *source.File) int {
		return strings.Compare(l.Path(), r.Path())
	})
	// Report the main file last, the way the compiler's own diagnostics
	// arrive.
	slices.SortStableFunc(checked, func(l, r *source.File) int {
		switch {
		case l == c.Observer.MainFile() && r != c.Observer.MainFile():
			return 1
		case r == c.Observer.MainFile() && l != c.Observer.MainFile():
			return -1
		default:
			return 0
		}
	})

	changes := 0
	for _, file := range checked {
		changes += analyzer.CalculateAndReport(c.Observer.FileInfoFor(file), w)
	}
	return changes, nil
}
