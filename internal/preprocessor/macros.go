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
	"github.com/EngFlow/iwyu_cc/internal/lexutil"
	"github.com/EngFlow/iwyu_cc/internal/source"
)

// MacroUse records one cross-file macro reference; MacroUses returns them
// in the order they were attributed.
type MacroUse struct {
	Name     string
	UsageLoc source.Location
	DefnLoc  source.Location
}

// MacroUses returns the macro uses attributed so far.
func (o *Observer) MacroUses() []MacroUse { return o.macroUses }

// MacroDefined is called for every #define. bodyIdentifiers are the
// identifier tokens of the macro body; they cannot be checked as they are
// seen, since macros may refer to macros defined later, so they are queued
// and replayed in HandlePreprocessingDone. (This can make mistakes if the
// code #undefs and re-defines a macro, but works fine in practice.)
func (o *Observer) MacroDefined(name string, loc source.Location, bodyIdentifiers []string) {
	if loc.IsValid() {
		o.macrosDefinitionLoc[name] = loc
	}
	for _, ident := range bodyIdentifiers {
		o.macrosCalledFromMacros = append(o.macrosCalledFromMacros, macroReference{name: ident, loc: loc})
	}
}

// MacroExpands is called when a macro token is seen where its expansion will
// take place. The use is attributed to the file being preprocessed and
// counts as a full use of the defining file.
func (o *Observer) MacroExpands(name string, loc source.Location) {
	o.FindAndReportMacroUse(name, loc)
}

// Ifdef reports the `#ifdef X` test of a macro as a use of it.
func (o *Observer) Ifdef(name string, loc source.Location) {
	o.FindAndReportMacroUse(name, loc)
}

// Ifndef reports the `#ifndef X` test of a macro as a use of it.
func (o *Observer) Ifndef(name string, loc source.Location) {
	o.FindAndReportMacroUse(name, loc)
}

// If is called with the raw condition text of an `#if`. The preprocessor
// expands every macro in the condition except the operands of `defined`,
// so those are recovered by re-lexing the text.
func (o *Observer) If(conditionText string, loc source.Location) {
	o.checkIfOrElif(conditionText, loc)
}

// Elif is the #elif counterpart of If.
func (o *Observer) Elif(conditionText string, loc source.Location) {
	o.checkIfOrElif(conditionText, loc)
}

func (o *Observer) checkIfOrElif(conditionText string, loc source.Location) {
	for _, arg := range lexutil.FindArgumentsToDefined(conditionText) {
		o.FindAndReportMacroUse(arg.Name, loc)
	}
}

// ReportMacroUse checks whether it is OK to use the named macro, defined at
// defnLoc, from usageLoc, and records a full use on the using file's info.
// Uses of compiler-builtin macros and uses outside the reported files are
// ignored.
func (o *Observer) ReportMacroUse(name string, usageLoc, defnLoc source.Location) {
	usedIn := usageLoc.File
	if !o.ShouldReportFor(usedIn) {
		return // ignore symbols used outside the checked files
	}
	// Don't report macro uses that aren't actually in a file somewhere.
	if !defnLoc.IsValid() || isBuiltinOrCommandLineFile(defnLoc.File) {
		return
	}
	o.macroUses = append(o.macroUses, MacroUse{Name: name, UsageLoc: usageLoc, DefnLoc: defnLoc})
	o.FileInfoFor(usedIn).ReportSymbolUse(usageLoc, defnLoc.File.Path(), name)
}

// FindAndReportMacroUse is ReportMacroUse with the definition location taken
// from the macros seen so far. A reference to a macro with no known
// definition is deliberately silent: `#define FOO` elsewhere does not imply
// that everyone testing `#ifdef FOO` uses it.
func (o *Observer) FindAndReportMacroUse(name string, loc source.Location) {
	if defnLoc, ok := o.macrosDefinitionLoc[name]; ok {
		o.ReportMacroUse(name, loc, defnLoc)
	}
}
