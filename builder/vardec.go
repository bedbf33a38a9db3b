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

package builder

import (
	"strings"

	"github.com/ida-lang/lilac/ast"
	"github.com/ida-lang/lilac/ltac"
)

// buildVarDec assigns a fresh stack slot of the declaration's type width
// (1/2/4/8 for scalars, 12 for ptr arrays, 8 for str) and, for
// non-parameters, transfers control to buildVarAssign. Multi-name
// declarations ("a, b : int") share one comma-joined Name and lower one
// VarDec per name, re-evaluating the initializer expression per name
// (§4.1.3).
func (b *Builder) buildVarDec(s *ast.Stmt) error {
	names := strings.Split(s.Name, ",")
	for i := range names {
		names[i] = strings.TrimSpace(names[i])
	}
	for _, name := range names {
		if err := b.buildOneVarDec(name, s); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) buildOneVarDec(name string, s *ast.Stmt) error {
	width := s.DataType.Width()
	offset := b.allocSlot(width)
	b.declare(name, s.DataType, s.SubType, false, offset)

	if s.DataType == ast.Ptr {
		b.ptrLocals = append(b.ptrLocals, name)
	}

	single := *s
	single.Name = name
	return b.buildVarAssignTo(name, &single)
}

// buildVarAssign lowers a VarAssign statement (assignment to an already-
// declared scalar or to a freshly declared one via buildVarDec).
func (b *Builder) buildVarAssign(s *ast.Stmt) error {
	return b.buildVarAssignTo(s.Name, s)
}

func (b *Builder) buildVarAssignTo(name string, s *ast.Stmt) error {
	sym, ok := b.lookup(name)
	if !ok {
		b.semErr(s.Line, s.LineText, "unknown identifier %q", name)
		return nil
	}
	if len(s.Args) == 0 {
		// Declaration with no initializer: nothing to lower (slot already
		// reserved by buildOneVarDec/buildParam).
		return nil
	}

	// malloc("ptr") pseudo-assignment: x : int[10] = malloc
	if sym.dataType == ast.Ptr && isMallocCall(s.Args) {
		return b.buildArrayAlloc(sym, s)
	}

	reg, err := b.lowerExpr(s.Args, sym.dataType, 1)
	if err != nil {
		return err
	}
	b.emitStore(sym.dataType, ltac.MemOf(sym.offset), reg)
	return nil
}

// isMallocCall reports whether the RHS expression is the single pseudo-
// call malloc(size), represented as an Id atom named "malloc" carrying
// the size expression in SubArgs.
func isMallocCall(args []ast.Arg) bool {
	return len(args) == 1 && args[0].Tag == ast.Id && args[0].Name == "malloc" && len(args[0].SubArgs) == 1
}

// emitStore appends the final Mov<T> of reg into dest, per "Final store"
// in §4.1.2. When the expression folded to a bare literal (foldLiteral in
// expr.go), reg is that literal rather than a register, so this is the
// only instruction the expression emits.
func (b *Builder) emitStore(dt ast.DataType, dest, reg ltac.Arg) {
	op := movOpFor(dt)
	b.file.Emit(ltac.Instr{Op: op, Arg1: dest, Arg2: reg})
}

func movOpFor(dt ast.DataType) ltac.Op {
	switch dt {
	case ast.I8:
		return ltac.MovB
	case ast.U8, ast.Char:
		return ltac.MovUB
	case ast.I16:
		return ltac.MovW
	case ast.U16:
		return ltac.MovUW
	case ast.I32:
		return ltac.Mov
	case ast.U32:
		return ltac.MovU
	case ast.I64:
		return ltac.MovQ
	case ast.U64:
		return ltac.MovUQ
	case ast.F32:
		return ltac.MovF32
	case ast.F64:
		return ltac.MovF64
	case ast.Str, ast.Ptr:
		return ltac.MovQ
	default:
		return ltac.Mov
	}
}

func regOpFor(dt ast.DataType, n int) ltac.Arg {
	switch dt {
	case ast.I8, ast.U8, ast.Char:
		return ltac.RegOf(n)
	case ast.I16, ast.U16:
		return ltac.Reg16Of(n)
	case ast.I64, ast.U64, ast.Str, ast.Ptr:
		return ltac.Reg64Of(n)
	case ast.F32:
		return ltac.FltRegOf(n)
	case ast.F64:
		return ltac.FltReg64Of(n)
	default:
		return ltac.Reg32Of(n)
	}
}
