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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/EngFlow/iwyu_cc/internal/pathutil"
)

// Mapping files let projects maintain their mappings externally, where they
// are easier to update and adjust to local circumstances. The format is a
// YAML (or JSON) document whose root is a sequence of single-key mappings:
//
//	- include: ["<private.h>", private, "<public.h>", public]
//	- symbol:  [FOO, private, "<foo.h>", public]
//	- ref:     "more.imp"
//
// A `ref` pulls in another mapping file, resolved against the referrer's
// directory and the search path.

// diagnostics is where mapping-file parse errors go. Overridable in tests.
var diagnostics io.Writer = os.Stderr

// AddMappingFileSearchPath appends directories to the list used to resolve
// relative mapping-file names. Duplicates are ignored.
func (p *IncludePicker) AddMappingFileSearchPath(paths ...string) {
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		if !slices.Contains(p.mappingFileSearchPath, abs) {
			p.mappingFileSearchPath = append(p.mappingFileSearchPath, abs)
		}
	}
}

// resolveMappingFile finds the named mapping file: absolute names are used
// as-is, relative names are looked up against the search path. First hit
// wins.
func (p *IncludePicker) resolveMappingFile(filename string) (string, error) {
	if pathutil.IsAbsolutePath(filename) {
		return filename, nil
	}
	for _, dir := range p.mappingFileSearchPath {
		candidate := filepath.Join(dir, filename)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	// Fall back to the working directory.
	if _, err := os.Stat(filename); err == nil {
		return filename, nil
	}
	return "", fmt.Errorf("not found on mapping file search path")
}

func mappingDiag(filename string, node *yaml.Node, format string, args ...any) {
	prefix := fmt.Sprintf("%s:%d:%d: ", filename, node.Line, node.Column)
	fmt.Fprintf(diagnostics, prefix+format+"\n", args...)
}

// AddMappingsFromFile parses a YAML/JSON file of mapping directives:
//
//	symbol  - symbol name -> quoted include
//	include - private quoted include -> public quoted include
//	ref     - include mechanism for mapping files
//
// A malformed entry emits a diagnostic and aborts parsing of that file; the
// run continues with whatever was added before the error.
func (p *IncludePicker) AddMappingsFromFile(filename string) {
	p.assertMutable("AddMappingsFromFile")

	resolved, err := p.resolveMappingFile(filename)
	if err != nil {
		fmt.Fprintf(diagnostics, "Cannot open mapping file '%s': %v.\n", filename, err)
		return
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		fmt.Fprintf(diagnostics, "Cannot open mapping file '%s': %v.\n", filename, err)
		return
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		fmt.Fprintf(diagnostics, "%s: %v\n", resolved, err)
		return
	}
	if len(doc.Content) == 0 {
		return // empty file
	}
	root := doc.Content[0]
	if root.Kind != yaml.SequenceNode {
		mappingDiag(resolved, root, "Root element must be an array.")
		return
	}

	for _, item := range root.Content {
		if item.Kind != yaml.MappingNode {
			mappingDiag(resolved, item, "Mapping directives must be objects.")
			return
		}
		for i := 0; i+1 < len(item.Content); i += 2 {
			key, value := item.Content[i], item.Content[i+1]
			switch key.Value {
			case "symbol":
				entry, ok := p.parseFourTuple(resolved, item, value, "Symbol")
				if !ok {
					return
				}
				// The from-visibility is ignored: symbol keys are
				// always private.
				p.AddSymbolMapping(entry.from, MappedInclude{Quoted: entry.to}, entry.toVis)
			case "include":
				entry, ok := p.parseFourTuple(resolved, item, value, "Include")
				if !ok {
					return
				}
				p.AddIncludeMapping(entry.from, entry.fromVis, MappedInclude{Quoted: entry.to}, entry.toVis)
			case "ref":
				refFile := ""
				if value.Kind == yaml.ScalarNode {
					refFile = value.Value
				}
				if refFile == "" {
					mappingDiag(resolved, item, "Mapping ref expects a single filename value.")
					return
				}
				// Allow refs to be relative to the referrer.
				p.AddMappingFileSearchPath(filepath.Dir(resolved))
				p.AddMappingsFromFile(refFile)
			default:
				mappingDiag(resolved, item, "Unknown directive '%s'.", key.Value)
				return
			}
		}
	}
}

// parseFourTuple decodes the `[from, from-visibility, to, to-visibility]`
// value shared by the symbol and include directives.
func (p *IncludePicker) parseFourTuple(filename string, item, value *yaml.Node, directive string) (includeMapEntry, bool) {
	var fields []string
	if value.Kind == yaml.SequenceNode {
		for _, elem := range value.Content {
			if elem.Kind != yaml.ScalarNode {
				fields = append(fields, "")
				continue
			}
			fields = append(fields, elem.Value)
		}
	}
	if len(fields) != 4 {
		mappingDiag(filename, item,
			"%s mapping expects a value on the form '[from, visibility, to, visibility]'.", directive)
		return includeMapEntry{}, false
	}
	fromVis := ParseVisibility(fields[1])
	if fromVis == VisibilityUnset {
		mappingDiag(filename, item, "Unknown visibility '%s'.", fields[1])
		return includeMapEntry{}, false
	}
	toVis := ParseVisibility(fields[3])
	if toVis == VisibilityUnset {
		mappingDiag(filename, item, "Unknown visibility '%s'.", fields[3])
		return includeMapEntry{}, false
	}
	return includeMapEntry{from: fields[0], fromVis: fromVis, to: fields[2], toVis: toVis}, true
}
