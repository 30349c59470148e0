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

// Package picker implements the include picker: the mapping and visibility
// engine that, for any symbol or header file, yields the list of acceptable
// public `#include` lines.
//
// The file case sounds easy ("to include /usr/include/math.h, write
// '#include <math.h>'") but is not, because many headers are private and must
// not be included directly. A private header has one or occasionally several
// public headers it maps to, and the picker keeps track of those mappings.
// A public file may have mappings too: it is fine to include it directly, but
// its contents are also available through another header (<ostream> maps to
// both <ostream> and <iostream>).
//
// Some mappings are hard coded (see defaults.go), some are loaded from
// mapping files (see mappingfile.go), and some are inferred at analysis time
// from the `#include` structure of the translation unit itself.
//
// Symbols map to files the same way. Most symbols live in exactly one header
// and need no entry here; a hard-coded few (NULL is the canonical example)
// can be provided by several.
package picker

import (
	"fmt"
	"hash/fnv"
	"log"
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/EngFlow/iwyu_cc/internal/collections"
	"github.com/EngFlow/iwyu_cc/internal/pathutil"
)

// Visibility says whether a header may appear directly in user code.
// Anything unlisted is treated as public.
type Visibility int

const (
	VisibilityUnset Visibility = iota
	VisibilityPublic
	VisibilityPrivate
)

func (v Visibility) String() string {
	switch v {
	case VisibilityPublic:
		return "public"
	case VisibilityPrivate:
		return "private"
	default:
		return "unset"
	}
}

// ParseVisibility parses the visibility strings used in mapping files.
// Unrecognized values yield VisibilityUnset.
func ParseVisibility(s string) Visibility {
	switch s {
	case "public":
		return VisibilityPublic
	case "private":
		return VisibilityPrivate
	default:
		return VisibilityUnset
	}
}

// MappedInclude is the value side of a mapping: a quoted include, plus the
// filesystem path it came from when known. The path lets the picker recover
// the include spelling the user actually wrote.
type MappedInclude struct {
	Quoted string
	Path   string
}

type includeMap map[string][]MappedInclude

// IncludePicker maintains the symbol->headers and header->headers maps,
// their visibility, and the friend exemptions. It is mutable until
// FinalizeAddedIncludes is called, and read-only afterwards.
type IncludePicker struct {
	// Keys are symbol names; values are candidate headers, best first.
	symbolIncludeMap includeMap

	// Keys are quoted filepath patterns: either a quoted include or `@`
	// followed by a regex matching one. Values are the headers that
	// re-export the key.
	filepathIncludeMap includeMap

	// Visibility keyed by quoted include (or pattern, or symbol name).
	// Takes priority over pathVisibility.
	includeVisibility map[string]Visibility

	// Visibility keyed by filesystem path.
	pathVisibility map[string]Visibility

	// Every #include seen so far: quoted includee -> set of quoted
	// includers. Feeds regex expansion and third-party inference.
	quotedIncluders map[string]collections.Set[string]

	// Hash of (includer path, includee path) -> include as the user wrote
	// it, '<>'s or '""'s included.
	asWritten map[uint64]string

	// Pattern -> set of includee paths whose privateness the matching
	// includers are exempt from.
	friendToHeaders map[string]collections.Set[string]

	mappingFileSearchPath []string

	finalized bool
}

// New returns a picker preloaded with the default C and C++ standard library
// mappings.
func New() *IncludePicker {
	p := newEmpty()
	p.addDefaultMappings()
	return p
}

func newEmpty() *IncludePicker {
	return &IncludePicker{
		symbolIncludeMap:   make(includeMap),
		filepathIncludeMap: make(includeMap),
		includeVisibility:  make(map[string]Visibility),
		pathVisibility:     make(map[string]Visibility),
		quotedIncluders:    make(map[string]collections.Set[string]),
		asWritten:          make(map[uint64]string),
		friendToHeaders:    make(map[string]collections.Set[string]),
	}
}

func (p *IncludePicker) assertMutable(op string) {
	if p.finalized {
		panic(op + " called after FinalizeAddedIncludes")
	}
}

func pairHash(includerPath, includeePath string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(includerPath))
	h.Write([]byte{0})
	h.Write([]byte(includeePath))
	return h.Sum64()
}

// internalSegmentIndex returns the index of an `internal/` path segment in a
// quoted include, or -1. The segment must be at the start of the path (right
// after the quote character) or follow a '/'.
func internalSegmentIndex(quoted string) int {
	idx := strings.Index(quoted, "internal/")
	if idx <= 0 {
		return -1
	}
	if quoted[idx-1] == '"' || quoted[idx-1] == '<' || quoted[idx-1] == '/' {
		return idx
	}
	return -1
}

// AddDirectInclude records one #include seen during preprocessing. Besides
// feeding the seen-includes table, it applies the built-in inference rules:
// the `<built-in>` sentinel is private; a header under an `internal/`
// directory is private, mapped to its includer and befriended to its sibling
// tree; `<asm-ARCH/foo.h>` is private and maps to `<asm/foo.h>`.
func (p *IncludePicker) AddDirectInclude(includerPath, includeePath, asWritten string) {
	p.assertMutable("AddDirectInclude")

	quotedIncluder := pathutil.ConvertToQuotedInclude(includerPath)
	quotedIncludee := pathutil.ConvertToQuotedInclude(includeePath)

	includers, ok := p.quotedIncluders[quotedIncludee]
	if !ok {
		includers = make(collections.Set[string])
		p.quotedIncluders[quotedIncludee] = includers
	}
	includers.Add(quotedIncluder)
	// Ensure the includer is a known include too, so regex expansion can
	// see it even when nothing includes it (the main source file).
	if _, ok := p.quotedIncluders[quotedIncluder]; !ok {
		p.quotedIncluders[quotedIncluder] = make(collections.Set[string])
	}
	if asWritten != "" {
		p.asWritten[pairHash(includerPath, includeePath)] = asWritten
	}

	// The compiler's fake "<built-in>" file must never become a mapping
	// target.
	if includerPath == "<built-in>" {
		p.MarkIncludeAsPrivate(quotedIncluder)
	}

	// Headers in foo/internal/ are private. Map them to their includer and
	// let everything else under foo/ keep including them directly.
	if idx := internalSegmentIndex(quotedIncludee); idx >= 0 {
		p.MarkIncludeAsPrivate(quotedIncludee)
		// The friend regex keeps the opening quote from quotedIncludee
		// and picks up the closing quote via the trailing `.*`.
		p.AddFriendRegex(includeePath, quotedIncludee[:idx]+".*")
		p.AddMapping(quotedIncludee, MappedInclude{Quoted: quotedIncluder, Path: includerPath})
	}

	// <asm-cris/posix_types.h> and friends are private spellings of
	// <asm/posix_types.h>.
	if strings.HasPrefix(quotedIncludee, "<asm-") {
		p.MarkIncludeAsPrivate(quotedIncludee)
		if slash := strings.Index(quotedIncludee, "/"); slash >= 0 {
			public := "<asm/" + quotedIncludee[slash+1:]
			p.AddMapping(quotedIncludee, MappedInclude{Quoted: public})
		}
	}
}

// AddMapping records that mapTo re-exports everything in mapFrom. mapFrom
// must be a quoted filepath pattern; mapTo must be a quoted include.
func (p *IncludePicker) AddMapping(mapFrom string, mapTo MappedInclude) {
	p.assertMutable("AddMapping")
	if !pathutil.IsQuotedFilepathPattern(mapFrom) {
		panic(fmt.Sprintf("map keys must be quoted filepaths or @ followed by a regex, got %q", mapFrom))
	}
	if !pathutil.IsQuotedInclude(mapTo.Quoted) {
		panic(fmt.Sprintf("map values must be quoted includes, got %q", mapTo.Quoted))
	}
	p.filepathIncludeMap[mapFrom] = append(p.filepathIncludeMap[mapFrom], mapTo)
}

// AddIncludeMapping adds a file-to-file mapping along with the visibility of
// both sides.
func (p *IncludePicker) AddIncludeMapping(mapFrom string, fromVis Visibility, mapTo MappedInclude, toVis Visibility) {
	p.AddMapping(mapFrom, mapTo)
	p.markVisibility(p.includeVisibility, mapFrom, fromVis)
	p.markVisibility(p.includeVisibility, mapTo.Quoted, toVis)
}

// AddSymbolMapping records that the header mapTo provides the given symbol.
// Symbol keys are always private, or getPublicValues would self-map them.
func (p *IncludePicker) AddSymbolMapping(symbol string, mapTo MappedInclude, toVis Visibility) {
	p.assertMutable("AddSymbolMapping")
	if !pathutil.IsQuotedInclude(mapTo.Quoted) {
		panic(fmt.Sprintf("map values must be quoted includes, got %q", mapTo.Quoted))
	}
	p.symbolIncludeMap[symbol] = append(p.symbolIncludeMap[symbol], mapTo)
	p.markVisibility(p.includeVisibility, symbol, VisibilityPrivate)
	p.markVisibility(p.includeVisibility, mapTo.Quoted, toVis)
}

// MarkIncludeAsPrivate marks a quoted include (or pattern) private.
func (p *IncludePicker) MarkIncludeAsPrivate(quotedPattern string) {
	p.assertMutable("MarkIncludeAsPrivate")
	if !pathutil.IsQuotedFilepathPattern(quotedPattern) {
		panic(fmt.Sprintf("MarkIncludeAsPrivate takes a quoted filepath pattern, got %q", quotedPattern))
	}
	p.markVisibility(p.includeVisibility, quotedPattern, VisibilityPrivate)
}

// MarkPathAsPrivate marks a filesystem path private. The quoted-include
// visibility table takes priority over this one.
func (p *IncludePicker) MarkPathAsPrivate(path string) {
	p.assertMutable("MarkPathAsPrivate")
	p.markVisibility(p.pathVisibility, path, VisibilityPrivate)
}

// AddFriendRegex allows any file whose quoted include matches friendRegex to
// include includeePath even while it is private. The regex must match the
// whole quoted include, quote characters included.
func (p *IncludePicker) AddFriendRegex(includeePath, friendRegex string) {
	key := "@" + friendRegex
	friends, ok := p.friendToHeaders[key]
	if !ok {
		friends = make(collections.Set[string])
		p.friendToHeaders[key] = friends
	}
	friends.Add(includeePath)
}

// markVisibility sets the visibility for a key, once. Re-setting a key to a
// different visibility is a fatal misconfiguration.
func (p *IncludePicker) markVisibility(m map[string]Visibility, key string, vis Visibility) {
	if vis == VisibilityUnset {
		return
	}
	if existing, ok := m[key]; ok {
		if existing != vis {
			panic(fmt.Sprintf("%s: seen with two different visibilities: %v and %v", key, existing, vis))
		}
		return
	}
	m[key] = vis
}

// getVisibility returns the visibility of a mapped include, consulting the
// quoted-include table first and the path table second.
func (p *IncludePicker) getVisibility(mi MappedInclude, def Visibility) Visibility {
	if vis, ok := p.includeVisibility[mi.Quoted]; ok {
		return vis
	}
	if mi.Path != "" {
		if vis, ok := p.pathVisibility[mi.Path]; ok {
			return vis
		}
	}
	return def
}

// IsPublic reports whether the file at path may be included directly.
func (p *IncludePicker) IsPublic(path string) bool {
	mi := MappedInclude{Quoted: pathutil.ConvertToQuotedInclude(path), Path: path}
	return p.getVisibility(mi, VisibilityPublic) == VisibilityPublic
}

// ----- Finalization

// FinalizeAddedIncludes freezes the picker. It expands regex keys against
// every include seen, infers third-party mappings, and transitively closes
// the file and symbol maps. Must be called exactly once; mutation afterwards
// is an error.
func (p *IncludePicker) FinalizeAddedIncludes() {
	p.assertMutable("FinalizeAddedIncludes")
	p.expandRegexes()
	p.addImplicitThirdPartyMappings()
	p.makeMapTransitive(p.filepathIncludeMap)
	// With the file map transitively closed, a single expansion step
	// closes the symbol values too.
	for symbol, values := range p.symbolIncludeMap {
		p.symbolIncludeMap[symbol] = expandOnce(p.filepathIncludeMap, values)
	}
	p.finalized = true
}

type compiledPattern struct {
	key string
	re  *regexp.Regexp
}

func compileRegexKeys[V any](m map[string]V) []compiledPattern {
	var compiled []compiledPattern
	for key := range m {
		if !strings.HasPrefix(key, "@") {
			continue
		}
		// Enclose in ^(...)$ so the regex must match the whole quoted
		// include, not a substring.
		re, err := regexp.Compile("^(" + key[1:] + ")$")
		if err != nil {
			log.Printf("warning: invalid regex in mapping key %s: %v", key, err)
			continue
		}
		compiled = append(compiled, compiledPattern{key: key, re: re})
	}
	slices.SortFunc(compiled, func(l, r compiledPattern) int { return strings.Compare(l.key, r.key) })
	return compiled
}

func containsQuoted(values []MappedInclude, quoted string) bool {
	return slices.ContainsFunc(values, func(mi MappedInclude) bool { return mi.Quoted == quoted })
}

// expandRegexes matches the regex keys of the file and friend maps against
// every quoted include seen by AddDirectInclude. Each match copies the regex
// entry under the concrete key, skipping matches that would create an
// identity mapping, and inherits the regex key's visibility.
func (p *IncludePicker) expandRegexes() {
	fileRegexKeys := compileRegexKeys(p.filepathIncludeMap)
	friendRegexKeys := compileRegexKeys(p.friendToHeaders)

	for hdr := range p.quotedIncluders {
		for _, pattern := range fileRegexKeys {
			if pattern.re.MatchString(hdr) && !containsQuoted(p.filepathIncludeMap[pattern.key], hdr) {
				p.filepathIncludeMap[hdr] = append(p.filepathIncludeMap[hdr], p.filepathIncludeMap[pattern.key]...)
				p.markVisibility(p.includeVisibility, hdr, p.includeVisibility[pattern.key])
			}
		}
		for _, pattern := range friendRegexKeys {
			if pattern.re.MatchString(hdr) {
				friends, ok := p.friendToHeaders[hdr]
				if !ok {
					friends = make(collections.Set[string])
					p.friendToHeaders[hdr] = friends
				}
				friends.Join(p.friendToHeaders[pattern.key])
			}
		}
	}
}

// addImplicitThirdPartyMappings trusts third-party authors with their own
// include structure: if third_party/x.h includes third_party/y.h, and y.h is
// neither explicitly mapped nor included from any non-third-party file,
// assume y.h is an implementation detail of x.h. y.h gets a mapping to each
// such includer and, unless already marked, becomes private.
func (p *IncludePicker) addImplicitThirdPartyMappings() {
	explicitlyMapped := make(collections.Set[string])
	for key := range p.filepathIncludeMap {
		if pathutil.IsThirdPartyFile(key) {
			explicitlyMapped.Add(key)
		}
	}

	includedFromNonThirdParty := make(collections.Set[string])
	for includee, includers := range p.quotedIncluders {
		for includer := range includers {
			if !pathutil.IsThirdPartyFile(includer) {
				includedFromNonThirdParty.Add(includee)
				break
			}
		}
	}

	for includee, includers := range p.quotedIncluders {
		if len(includers) == 0 ||
			!pathutil.IsThirdPartyFile(includee) ||
			explicitlyMapped.Contains(includee) ||
			includedFromNonThirdParty.Contains(includee) {
			continue
		}
		for _, includer := range includers.SortedValues(strings.Compare) {
			p.AddMapping(includee, MappedInclude{Quoted: includer})
		}
		if p.getVisibility(MappedInclude{Quoted: includee}, VisibilityUnset) == VisibilityUnset {
			p.MarkIncludeAsPrivate(includee)
		}
	}
}

type transitiveStatus int

const (
	statusUnused transitiveStatus = iota
	statusCalculating
	statusDone
)

// makeMapTransitive replaces each key's values with their transitive closure
// through the map, via a depth-first search with a tri-state color map.
// A cycle is fatal, except when the offending key lives under third_party/
// or internal/: external code legitimately has include cycles, and the
// implicit mappings added for it can close one without meaning to. In that
// case a warning is logged and the search does not descend into the key
// again; the direct mapping stays in the values.
func (p *IncludePicker) makeMapTransitive(m includeMap) {
	seen := make(map[string]transitiveStatus)
	var stack []string

	var makeNodeTransitive func(key string)
	makeNodeTransitive = func(key string) {
		switch seen[key] {
		case statusCalculating:
			if strings.HasPrefix(key, `"third_party/`) || strings.Contains(key, "internal/") {
				log.Printf("warning: ignoring a cyclical mapping involving %s", key)
				return
			}
			var sb strings.Builder
			sb.WriteString("cycle in include-mapping:\n")
			for _, node := range stack {
				fmt.Fprintf(&sb, "  %s ->\n", node)
			}
			fmt.Fprintf(&sb, "  %s", key)
			panic(sb.String())
		case statusDone:
			return
		}
		values, ok := m[key]
		if !ok {
			seen[key] = statusDone
			return
		}
		seen[key] = statusCalculating
		for _, child := range values {
			stack = append(stack, child.Quoted)
			makeNodeTransitive(child.Quoted)
			stack = stack[:len(stack)-1]
		}
		seen[key] = statusDone
		// The children are now transitive, so one expansion step makes
		// this node's value list a closure.
		m[key] = expandOnce(m, values)
	}

	for _, key := range slices.Sorted(maps.Keys(m)) {
		makeNodeTransitive(key)
	}
}

// expandOnce augments each node with its children as defined by m,
// preserving order and skipping duplicates.
func expandOnce(m includeMap, nodes []MappedInclude) []MappedInclude {
	var result []MappedInclude
	seen := make(collections.Set[string])
	appendUnique := func(mi MappedInclude) {
		if !seen.Contains(mi.Quoted) {
			seen.Add(mi.Quoted)
			result = append(result, mi)
		}
	}
	for _, node := range nodes {
		appendUnique(node)
		for _, child := range m[node.Quoted] {
			appendUnique(child)
		}
	}
	return result
}

// ----- Queries (legal after FinalizeAddedIncludes only)

func (p *IncludePicker) assertFinalized(op string) {
	if !p.finalized {
		panic(op + " called before FinalizeAddedIncludes")
	}
}

// getPublicValues returns the values for key with private headers filtered
// out. If the key itself is public it is prepended, as an implicit self-map.
// Returns nil if the key has no mapping at all.
func (p *IncludePicker) getPublicValues(m includeMap, key string) []MappedInclude {
	if strings.HasPrefix(key, "@") {
		panic("getPublicValues takes a concrete key, not a regex: " + key)
	}
	values := m[key]
	if len(values) == 0 {
		return nil
	}
	var result []MappedInclude
	if p.getVisibility(MappedInclude{Quoted: key}, VisibilityPublic) == VisibilityPublic {
		result = append(result, MappedInclude{Quoted: key}) // we can map to ourself
	}
	for _, mi := range values {
		if p.getVisibility(mi, VisibilityPublic) == VisibilityPublic {
			result = append(result, mi)
		}
	}
	return result
}

// GetCandidateHeadersForSymbol returns the public headers that provide the
// given symbol, best first. Most symbols have no entry and yield nil.
func (p *IncludePicker) GetCandidateHeadersForSymbol(symbol string) []MappedInclude {
	p.assertFinalized("GetCandidateHeadersForSymbol")
	return p.getPublicValues(p.symbolIncludeMap, symbol)
}

// GetCandidateHeadersForSymbolUsedFrom is GetCandidateHeadersForSymbol with
// the result converted to include spellings appropriate for the given
// including file.
func (p *IncludePicker) GetCandidateHeadersForSymbolUsedFrom(symbol, includerPath string) []string {
	return p.bestQuotedIncludesForIncluder(p.GetCandidateHeadersForSymbol(symbol), includerPath)
}

// GetCandidateHeadersForFilepath returns the public headers a file maps to,
// best first. A file with no mapping yields itself, include-quoted.
func (p *IncludePicker) GetCandidateHeadersForFilepath(path string) []MappedInclude {
	p.assertFinalized("GetCandidateHeadersForFilepath")
	quoted := pathutil.ConvertToQuotedInclude(path)
	result := p.getPublicValues(p.filepathIncludeMap, quoted)
	if len(result) == 0 {
		result = []MappedInclude{{Quoted: quoted, Path: path}}
	}
	return result
}

// GetCandidateHeadersForFilepathIncludedFrom is like
// GetCandidateHeadersForFilepath, but with the including file known, two
// special cases apply: an includer matching a friend regex of the includee
// may keep including it directly, and whatever spelling the includer
// actually wrote for an include replaces the canonical form.
func (p *IncludePicker) GetCandidateHeadersForFilepathIncludedFrom(includeePath, includerPath string) []string {
	p.assertFinalized("GetCandidateHeadersForFilepathIncludedFrom")
	quotedIncluder := pathutil.ConvertToQuotedInclude(includerPath)
	quotedIncludee := pathutil.ConvertToQuotedInclude(includeePath)

	var candidates []MappedInclude
	if p.friendToHeaders[quotedIncluder].Contains(includeePath) {
		candidates = []MappedInclude{{Quoted: quotedIncludee, Path: includeePath}}
	} else {
		candidates = p.GetCandidateHeadersForFilepath(includeePath)
		if len(candidates) == 1 &&
			p.getVisibility(candidates[0], VisibilityUnset) == VisibilityPrivate {
			log.Printf("warning: no public header found to replace the private header %s", candidates[0].Quoted)
		}
	}
	return p.bestQuotedIncludesForIncluder(candidates, includerPath)
}

// bestQuotedIncludesForIncluder picks the best include spelling for each
// candidate: the spelling the includer actually used when we saw one
// (avoiding trouble with symlinks and ./-prefixed spellings), otherwise the
// canonical quoted form.
func (p *IncludePicker) bestQuotedIncludesForIncluder(candidates []MappedInclude, includerPath string) []string {
	return collections.MapSlice(candidates, func(mi MappedInclude) string {
		if mi.Path != "" {
			if asWritten, ok := p.asWritten[pairHash(includerPath, mi.Path)]; ok {
				return asWritten
			}
		}
		return mi.Quoted
	})
}

// HasMapping reports whether mapTo re-exports all the symbols of mapFrom,
// directly or transitively. Both arguments are file paths. Every file maps
// to itself.
func (p *IncludePicker) HasMapping(mapFromPath, mapToPath string) bool {
	p.assertFinalized("HasMapping")
	quotedFrom := pathutil.ConvertToQuotedInclude(mapFromPath)
	quotedTo := pathutil.ConvertToQuotedInclude(mapToPath)
	// getPublicValues would hide private mappers, so consult the map
	// directly.
	if containsQuoted(p.filepathIncludeMap[quotedFrom], quotedTo) {
		return true
	}
	return quotedFrom == quotedTo
}
