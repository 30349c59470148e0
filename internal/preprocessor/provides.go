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

package preprocessor

import (
	"github.com/EngFlow/iwyu_cc/internal/collections"
	"github.com/EngFlow/iwyu_cc/internal/pathutil"
	"github.com/EngFlow/iwyu_cc/internal/source"
)

// The intends-to-provide relation: per file, the set of files whose symbols
// it is considered to re-export. <vector> includes <memory> and does not
// expect users to repeat that include whenever they create a vector<Foo>
// (really a vector<Foo, alloc<Foo>>); we say <vector> intends to provide the
// full types from <memory>.
//
// The rule: every file provides itself and its direct includes. A public
// header -- one the include picker can map some other file to -- provides
// *every* file transitively reachable behind it. The scheme isn't perfect
// (it claims <map> provides pair<> when it only uses it internally), but it
// is a reasonable heuristic.

// populateIntendsToProvideMap must be called once, after the include picker
// is finalized.
func (o *Observer) populateIntendsToProvideMap() {
	if len(o.intendsToProvideMap) != 0 {
		panic("populateIntendsToProvideMap should only be called once")
	}
	// Figure out which headers are public, mapping each to the set of
	// private headers behind it.
	privateHeadersBehind := make(map[*source.File]collections.Set[*source.File])
	for file := range o.fileInfoMap {
		for _, pub := range o.picker.GetCandidateHeadersForFilepath(file.Path()) {
			publicFile := o.includeToFile[pub.Quoted]
			if publicFile == nil || publicFile == file { // no credit for mapping to yourself
				continue
			}
			behind, ok := privateHeadersBehind[publicFile]
			if !ok {
				behind = make(collections.Set[*source.File])
				privateHeadersBehind[publicFile] = behind
			}
			behind.Add(file)
		}
	}

	// Everyone provides from their direct includes; public headers
	// provide from *all* their includes. Likewise, a direct include of a
	// public header brings in everything behind it: a public header is an
	// equivalence class of itself and all its direct includes.
	for file, fi := range o.fileInfoMap {
		provides := make(collections.Set[*source.File]).Add(file) // everyone provides itself
		o.intendsToProvideMap[file] = provides
		if _, isPublic := privateHeadersBehind[file]; isPublic {
			o.addTransitiveIncludes(file, provides)
			continue
		}
		for inc := range fi.DirectIncludesAsFiles() {
			provides.Add(inc)
			if _, isPublic := privateHeadersBehind[inc]; isPublic {
				o.addTransitiveIncludes(inc, provides)
			}
		}
	}

	// Two files can share a name via #include_next (/usr/include/c++/vector
	// and a vendored vector). Merge their provides-sets. This isn't enough
	// if more than two files share a name.
	for file := range o.fileInfoMap {
		quoted := pathutil.ConvertToQuotedInclude(file.Path())
		otherFile := o.includeToFile[quoted]
		if otherFile == nil || otherFile == file {
			continue
		}
		if _, ok := o.intendsToProvideMap[otherFile]; !ok {
			continue
		}
		o.intendsToProvideMap[otherFile].Join(o.intendsToProvideMap[file])
		o.intendsToProvideMap[file] = o.intendsToProvideMap[otherFile]
	}

	// Finally, every private header intends to provide exactly what its
	// public headers do, so callers need not map private to public before
	// asking. A private header mapping to several publics gets the union.
	for publicHeader, privateHeaders := range privateHeadersBehind {
		for privateHeader := range privateHeaders {
			if provides, ok := o.intendsToProvideMap[privateHeader]; ok {
				provides.Join(o.intendsToProvideMap[publicHeader])
			}
		}
	}
}

// addTransitiveIncludes adds every file reachable from start through the
// include graph into result.
func (o *Observer) addTransitiveIncludes(start *source.File, result collections.Set[*source.File]) {
	adjacency, err := o.includeGraph.AdjacencyMap()
	if err != nil {
		return
	}
	visited := collections.SetOf(start.Path())
	stack := []string{start.Path()}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for next := range adjacency[current] {
			if visited.Contains(next) {
				continue
			}
			visited.Add(next)
			stack = append(stack, next)
			if file := o.files.Lookup(next); file != nil {
				result.Add(file)
			}
		}
	}
}

// populateTransitiveIncludeMap computes, for every file, the set of files
// reachable through #include, the file itself included.
func (o *Observer) populateTransitiveIncludeMap() {
	if len(o.transitiveInclude) != 0 {
		panic("populateTransitiveIncludeMap should only be called once")
	}
	for file := range o.fileInfoMap {
		includes := make(collections.Set[*source.File]).Add(file) // everyone includes itself
		o.addTransitiveIncludes(file, includes)
		o.transitiveInclude[file] = includes
	}
}

// PublicHeaderIntendsToProvide reports whether publicHeader intends to
// provide all the symbols in otherFile.
func (o *Observer) PublicHeaderIntendsToProvide(publicHeader, otherFile *source.File) bool {
	return o.intendsToProvideMap[publicHeader].Contains(otherFile)
}

// FileTransitivelyIncludes reports whether includee is reachable from
// includer through #includes, the identity case included.
func (o *Observer) FileTransitivelyIncludes(includer, includee *source.File) bool {
	return o.transitiveInclude[includer].Contains(includee)
}

// FileTransitivelyIncludesQuoted is FileTransitivelyIncludes against a
// quoted include rather than a known file.
func (o *Observer) FileTransitivelyIncludesQuoted(includer *source.File, quotedIncludee string) bool {
	for file := range o.transitiveInclude[includer] {
		if file.QuotedInclude() == quotedIncludee {
			return true
		}
	}
	return false
}

// QuotedFileTransitivelyIncludes is FileTransitivelyIncludes with the
// includer named by its quoted include.
func (o *Observer) QuotedFileTransitivelyIncludes(quotedIncluder string, includee *source.File) bool {
	for includer, includes := range o.transitiveInclude {
		if includer.QuotedInclude() == quotedIncluder {
			return includes.Contains(includee)
		}
	}
	return false
}
