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

// Package builder implements the LTAC builder: the pass that walks an
// ast.Tree and lowers it into an ltac.File, maintaining the symbol table,
// label generation, and dynamic-array free-list bookkeeping described in
// the specification's §4.1.
package builder

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/ida-lang/lilac/ast"
	"github.com/ida-lang/lilac/lilaerr"
	"github.com/ida-lang/lilac/ltac"
)

// symbol is one entry in the per-function variable table.
type symbol struct {
	offset   int
	dataType ast.DataType
	subType  ast.DataType
	isParam  bool
}

// loopLabels is the break/continue target pair registered for one loop
// nesting depth.
type loopLabels struct {
	continueLabel string
	breakLabel    string
}

// Builder converts one ast.Tree into one ltac.File. A Builder is used for
// exactly one Build call; construct a fresh one per translation unit.
type Builder struct {
	fileName string
	errors   *lilaerr.Manager

	file *ltac.File

	strCounter   int
	fltCounter   int
	lblCounter   int

	// signatures maps function name to return type, populated in pass one
	// so forward references resolve.
	signatures map[string]ast.DataType
	externs    map[string]bool

	constants map[string]ast.Const

	// Per-function state, reset at each function boundary.
	curFunc     string
	curRetType  ast.DataType
	symtab      map[string]*symbol
	stackOffset int

	blockDepth int
	loopDepth  int

	// loopLabelsByDepth maps loop nesting depth -> break/continue targets.
	// A layer-indexed map, not a stack, because a loop layer may be
	// re-entered non-contiguously through nested ifs (see DESIGN.md,
	// "label stacks vs. layer maps").
	loopLabelsByDepth map[int]loopLabels

	// deferredTail is a LIFO stack of instruction blocks assembled while a
	// loop body is lowered; appended to the code stream once the loop body
	// has been lowered (see DESIGN.md, "deferred code blocks"). If/Elif/Else chains
	// keep their own top/next label pair local to buildIfChain instead of
	// a builder-wide stack, since a whole chain is handled by one call.
	deferredTail [][]ltac.Instr

	// ptrLocals tracks, in declaration order, the non-parameter ptr locals
	// of the current function, for automatic Free emission on every exit
	// path (function-exit invariant).
	ptrLocals []string

	// MallocSizes records the byte size passed to malloc for each ptr
	// local's stack slot, consulted by transform.Builtin when lowering
	// without libc (mmap/munmap need the saved size).
	MallocSizes map[int]int
}

// New creates a Builder for fileName, recording errors into errors.
func New(fileName string, errors *lilaerr.Manager) *Builder {
	return &Builder{
		fileName:    fileName,
		errors:      errors,
		signatures:  map[string]ast.DataType{},
		externs:     map[string]bool{},
		constants:   map[string]ast.Const{},
		MallocSizes: map[int]int{},
	}
}

// Build lowers tree into an ltac.File. On semantic error it returns
// (nil, err); the caller is expected to consult the attached error
// manager for the full diagnostic list.
func (b *Builder) Build(tree *ast.Tree) (*ltac.File, error) {
	b.file = ltac.NewFile(b.fileName)

	for _, c := range tree.Constants {
		b.constants[c.Name] = c
	}

	// Pass one: collect function signatures so forward references resolve.
	for _, fn := range tree.Functions {
		b.signatures[fn.Name] = fn.ReturnType
		b.externs[fn.Name] = fn.Extern
	}

	// Pass two: lower each function body.
	for _, fn := range tree.Functions {
		if err := b.buildFunc(&fn); err != nil {
			return nil, err
		}
	}

	if b.errors.HasErrors() {
		return nil, fmt.Errorf("build failed for %s: %d error(s)", b.fileName, len(b.errors.Errors()))
	}
	return b.file, nil
}

// buildString records a fresh string-literal data entry and returns its
// label. Every call is fresh; no de-duplication (DESIGN.md,
// "String-literal de-duplication").
func (b *Builder) buildString(value string) string {
	label := b.file.AddString(value)
	b.strCounter++
	return label
}

// buildFloat records a fresh float/double data entry from the IEEE-754
// decimal bit pattern of value and returns its label.
func (b *Builder) buildFloat(value float64, isDouble bool, negate bool) string {
	if negate {
		value = -value
	}
	bits := floatBits(value, isDouble)
	label := b.file.AddFloat(bits, isDouble)
	b.fltCounter++
	return label
}

// newLabel returns a fresh L<n> label.
func (b *Builder) newLabel() string {
	l := fmt.Sprintf("L%d", b.lblCounter)
	b.lblCounter++
	return l
}

// roundUp16 implements the stack-size rule: the running offset rounded up
// to a 16-byte boundary, with a 16-byte minimum for empty frames
// (invariant 1, "a positive multiple of 16").
func roundUp16(n int) int {
	if n <= 0 {
		return 16
	}
	if n%16 == 0 {
		return n
	}
	return ((n / 16) + 1) * 16
}

// allocSlot bumps the running stack offset by width bytes and returns the
// new (end-relative) offset, per the stack discipline: "offsets grow
// monotonically as the builder scans declarations."
func (b *Builder) allocSlot(width int) int {
	b.stackOffset += width
	return b.stackOffset
}

func (b *Builder) declare(name string, dt, subType ast.DataType, isParam bool, offset int) {
	b.symtab[name] = &symbol{offset: offset, dataType: dt, subType: subType, isParam: isParam}
}

func (b *Builder) lookup(name string) (*symbol, bool) {
	s, ok := b.symtab[name]
	return s, ok
}

// semErr records a semantic error at the given statement's source line.
func (b *Builder) semErr(line int, lineText string, format string, args ...any) {
	b.errors.Add(lilaerr.Semantic, line, lineText, format, args...)
}

// internalErr records a structural invariant violation (mismatched End,
// empty label stack when closing a block).
func (b *Builder) internalErr(line int, format string, args ...any) {
	b.errors.Add(lilaerr.Internal, line, "", format, args...)
}

// popDeferredTail pops and returns the most recently pushed deferred tail
// block; the While/For lowerings append it to the code stream after the
// loop body.
func (b *Builder) popDeferredTail(line int) ([]ltac.Instr, bool) {
	if len(b.deferredTail) == 0 {
		b.internalErr(line, "mismatched End: empty deferred-tail stack")
		return nil, false
	}
	tail := b.deferredTail[len(b.deferredTail)-1]
	b.deferredTail = b.deferredTail[:len(b.deferredTail)-1]
	return tail, true
}

func (b *Builder) pushDeferredTail(instrs []ltac.Instr) {
	b.deferredTail = append(b.deferredTail, instrs)
}

// emitFrees appends a Free instruction for every non-parameter ptr local
// currently tracked, in declaration order, via lo.ForEach per the dynamic-
// array lifecycle invariant: "on every function return, every non-
// parameter ptr local has a Free instruction emitted before the
// terminator."
func (b *Builder) emitFrees() {
	lo.ForEach(b.ptrLocals, func(name string, _ int) {
		sym := b.symtab[name]
		if sym == nil || sym.isParam {
			return
		}
		b.file.Emit(ltac.Instr{
			Op:      ltac.PushArg,
			Arg1:    ltac.PtrOf(sym.offset),
			Arg2Val: 1,
		})
		b.file.EmitOp(ltac.Free)
	})
}
