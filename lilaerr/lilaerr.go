// Copyright 2022 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package lilaerr implements the error-reporting facility shared by the
// frontend and the LTAC builder: an accumulating manager that records
// syntax, semantic, and internal errors and renders them the way the
// driver prints them to the user.
package lilaerr

import (
	"fmt"
	"io"
)

// Kind distinguishes where in the pipeline an error was raised.
type Kind int

const (
	// Syntax errors occur during AST building: unexpected tokens, missing
	// terminators, malformed declarations. Out of scope for this core, but
	// the manager still carries the kind so a shared frontend can report
	// through it.
	Syntax Kind = iota
	// Semantic errors occur during LTAC building: unknown identifier, type
	// mismatch, literal range overflow, illegal operator for type, missing
	// or extraneous return value, modulo/shift on float, negation of
	// unsigned, duplicate module declaration.
	Semantic
	// Internal errors indicate a broken compiler invariant: mismatched
	// End, empty label stack when closing a block.
	Internal
)

// CompileError is one recorded failure, with enough context to print the
// "-> [line] text" diagnostic line.
type CompileError struct {
	Kind     Kind
	Message  string
	Line     int
	LineText string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (k Kind) String() string {
	switch k {
	case Syntax:
		return "Syntax Error"
	case Semantic:
		return "Syntax Error" // the driver reports all kinds uniformly, per spec §7
	case Internal:
		return "Syntax Error"
	default:
		return "Error"
	}
}

// Manager accumulates errors across one pass. The builder holds one
// instance for the lifetime of a Build call; it is never shared across
// concurrent passes (§5, single-threaded, sequential).
type Manager struct {
	errs []*CompileError
}

// New returns an empty Manager.
func New() *Manager { return &Manager{} }

// Add records a new error with the given kind, message, and source
// position.
func (m *Manager) Add(kind Kind, line int, lineText string, format string, args ...any) {
	m.errs = append(m.errs, &CompileError{
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Line:     line,
		LineText: lineText,
	})
}

// HasErrors reports whether any error was recorded.
func (m *Manager) HasErrors() bool { return len(m.errs) > 0 }

// Errors returns the accumulated errors in recording order.
func (m *Manager) Errors() []*CompileError { return m.errs }

// Report writes every accumulated error to w in the driver's standard
// format:
//
//	Syntax Error: <message>
//	-> [<line_no>] <line_text>
func (m *Manager) Report(w io.Writer) {
	for _, e := range m.errs {
		fmt.Fprintf(w, "%s: %s\n", e.Kind, e.Message)
		fmt.Fprintf(w, "-> [%d] %s\n", e.Line, e.LineText)
	}
}
