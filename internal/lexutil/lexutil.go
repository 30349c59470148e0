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

// Package lexutil provides the small lexical helpers the preprocessor
// observer needs to examine raw source text: extracting single lines,
// splitting pragma text into tokens while keeping quoted and angle-bracketed
// strings intact, and re-lexing `#if` condition text for the arguments of
// `defined`.
package lexutil

import (
	"strings"
	"unicode"
)

// TextUntilEndOfLine returns the text from offset until (not including) the
// next newline, or until the end of data.
func TextUntilEndOfLine(data string, offset int) string {
	if offset < 0 || offset >= len(data) {
		return ""
	}
	if end := strings.IndexByte(data[offset:], '\n'); end >= 0 {
		return data[offset : offset+end]
	}
	return data[offset:]
}

// OffsetAfter returns the offset right after the first occurrence of needle
// at or after offset, or -1 if needle does not occur.
func OffsetAfter(data string, offset int, needle string) int {
	if offset < 0 || offset > len(data) {
		return -1
	}
	idx := strings.Index(data[offset:], needle)
	if idx < 0 {
		return -1
	}
	return offset + idx + len(needle)
}

// LineNumber returns the 1-based line number of the given byte offset.
func LineNumber(data string, offset int) int {
	if offset > len(data) {
		offset = len(data)
	}
	return 1 + strings.Count(data[:offset], "\n")
}

// SplitOnWhitespacePreservingQuotes splits text on runs of whitespace, but
// treats a double-quoted or angle-bracketed string as a single token even
// when it contains spaces. Quote characters are preserved in the tokens.
func SplitOnWhitespacePreservingQuotes(text string) []string {
	var tokens []string
	i := 0
	for i < len(text) {
		for i < len(text) && unicode.IsSpace(rune(text[i])) {
			i++
		}
		if i >= len(text) {
			break
		}
		start := i
		var closer byte
		switch text[i] {
		case '"':
			closer = '"'
		case '<':
			closer = '>'
		}
		if closer != 0 {
			end := strings.IndexByte(text[i+1:], closer)
			if end >= 0 {
				i += end + 2
				tokens = append(tokens, text[start:i])
				continue
			}
			// Unterminated quote: fall through to whitespace splitting.
		}
		for i < len(text) && !unicode.IsSpace(rune(text[i])) {
			i++
		}
		tokens = append(tokens, text[start:i])
	}
	return tokens
}

func isIdentByte(b byte, first bool) bool {
	switch {
	case b == '_', b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z':
		return true
	case b >= '0' && b <= '9':
		return !first
	default:
		return false
	}
}

// lexIdentifiers yields each identifier token in text along with its byte
// offset, skipping string literals and comments.
func lexIdentifiers(text string, yield func(ident string, offset int)) {
	i := 0
	for i < len(text) {
		switch {
		case text[i] == '"':
			end := strings.IndexByte(text[i+1:], '"')
			if end < 0 {
				return
			}
			i += end + 2
		case strings.HasPrefix(text[i:], "//"):
			return
		case strings.HasPrefix(text[i:], "/*"):
			end := strings.Index(text[i+2:], "*/")
			if end < 0 {
				return
			}
			i += end + 4
		case isIdentByte(text[i], true):
			start := i
			for i < len(text) && isIdentByte(text[i], false) {
				i++
			}
			yield(text[start:i], start)
		default:
			i++
		}
	}
}

// DefinedArg is an identifier found as the argument of a `defined` operator,
// together with its byte offset in the lexed text.
type DefinedArg struct {
	Name   string
	Offset int
}

// FindArgumentsToDefined lexes the condition text of an `#if` or `#elif`
// directive and returns the identifiers that appear as arguments to
// `defined`, with or without parentheses. The preprocessor reports macro
// expansions for every other identifier in the condition itself, but never
// for the operand of `defined`, so those have to be recovered here.
func FindArgumentsToDefined(text string) []DefinedArg {
	const (
		lookingForDefined = iota
		expectingParenOrIdent
	)
	var args []DefinedArg
	state := lookingForDefined
	lexIdentifiers(text, func(ident string, offset int) {
		switch state {
		case lookingForDefined:
			if ident == "defined" {
				state = expectingParenOrIdent
			}
		case expectingParenOrIdent:
			args = append(args, DefinedArg{Name: ident, Offset: offset})
			state = lookingForDefined
		}
	})
	return args
}

// Identifiers returns all identifier tokens in text, in order, skipping
// string literals and comments. Used to harvest candidate macro references
// from macro bodies.
func Identifiers(text string) []string {
	var idents []string
	lexIdentifiers(text, func(ident string, _ int) {
		idents = append(idents, ident)
	})
	return idents
}
