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

package ltac

import "strconv"

// DataKind tags the kind of a data-section entry.
type DataKind int

const (
	StringLit DataKind = iota
	FloatLit
	DoubleLit
)

// Data is one labeled entry in the data section: a string literal or the
// decimal representation of a float/double's IEEE-754 bit pattern.
type Data struct {
	Kind  DataKind
	Name  string
	Value string
}

// Instr is one three-address instruction. Name carries call targets and
// label names; Arg1Val/Arg2Val carry integer side-data whose meaning is
// opcode-specific (stack size for Func, argument position for PushArg,
// and so on).
type Instr struct {
	Op       Op
	Name     string
	Arg1     Arg
	Arg2     Arg
	Arg1Val  int
	Arg2Val  int
}

// File is one compilation unit's worth of lowered code: a data section of
// literals, and a flat instruction sequence. Once appended, an Instr is
// never mutated in place — transforms build a new File by copy-and-rewrite.
type File struct {
	Name string
	Data []Data
	Code []Instr
}

// NewFile creates an empty file for the given source name.
func NewFile(name string) *File {
	return &File{Name: name}
}

// Emit appends an instruction and returns its index.
func (f *File) Emit(i Instr) int {
	f.Code = append(f.Code, i)
	return len(f.Code) - 1
}

// EmitOp appends a bare opcode with no operands (e.g. Ret).
func (f *File) EmitOp(op Op) int {
	return f.Emit(Instr{Op: op})
}

// EmitLabel appends a Label definition instruction.
func (f *File) EmitLabel(name string) int {
	return f.Emit(Instr{Op: Label, Name: name})
}

// EmitBranch appends an unconditional or conditional branch to name.
func (f *File) EmitBranch(op Op, name string) int {
	return f.Emit(Instr{Op: op, Name: name})
}

// AddString appends a string-literal data entry and returns its label.
// Every call produces a fresh STRn label; string literals are never
// de-duplicated (see spec invariants, "string-literal uniqueness").
func (f *File) AddString(value string) string {
	n := 0
	for _, d := range f.Data {
		if d.Kind == StringLit {
			n++
		}
	}
	label := "STR" + strconv.Itoa(n)
	f.Data = append(f.Data, Data{Kind: StringLit, Name: label, Value: value})
	return label
}

// AddFloat appends a float/double data entry (value already rendered as
// the decimal IEEE-754 bit pattern by the caller) and returns its label.
// Floats and doubles share one FLTn sequence, so every entry gets a
// distinct label.
func (f *File) AddFloat(bits string, isDouble bool) string {
	kind := FloatLit
	if isDouble {
		kind = DoubleLit
	}
	n := 0
	for _, d := range f.Data {
		if d.Kind == FloatLit || d.Kind == DoubleLit {
			n++
		}
	}
	label := "FLT" + strconv.Itoa(n)
	f.Data = append(f.Data, Data{Kind: kind, Name: label, Value: bits})
	return label
}
