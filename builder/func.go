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
	"github.com/ida-lang/lilac/ast"
	"github.com/ida-lang/lilac/ltac"
)

// buildFunc lowers one function: extern declarations become a single
// Extern instruction; ordinary functions get a Func placeholder, a fresh
// symbol table and stack offset, parameter loads, body statements, and a
// stack-size patch once the final offset is known (§4.1.1). A body whose
// last emitted instruction is neither Ret nor Exit is missing a
// terminator: an error for a non-void function, an implicit Ret for void.
func (b *Builder) buildFunc(fn *ast.Func) error {
	if fn.Extern {
		b.file.Emit(ltac.Instr{Op: ltac.Extern, Name: fn.Name})
		return nil
	}

	b.curFunc = fn.Name
	b.curRetType = fn.ReturnType
	b.symtab = map[string]*symbol{}
	b.stackOffset = 0
	b.blockDepth = 0
	b.loopDepth = 0
	b.loopLabelsByDepth = map[int]loopLabels{}
	b.deferredTail = nil
	b.ptrLocals = nil

	funcIdx := b.file.Emit(ltac.Instr{Op: ltac.Func, Name: fn.Name})

	intArgPos, fltArgPos := 1, 1
	for _, p := range fn.Params {
		used, err := b.buildParam(p, intArgPos, fltArgPos)
		if err != nil {
			return err
		}
		if p.DataType.IsFloat() {
			fltArgPos++
		} else {
			intArgPos++
			if p.DataType == ast.Ptr {
				// A ptr parameter additionally consumes an extra integer
				// argument position for its accompanying length.
				intArgPos++
			}
		}
		_ = used
	}

	if err := b.buildBody(fn.Body); err != nil {
		return err
	}

	terminated := false
	switch b.file.Code[len(b.file.Code)-1].Op {
	case ltac.Ret, ltac.Exit:
		terminated = true
	}
	if !terminated {
		if fn.ReturnType != ast.Void {
			b.semErr(0, "", "missing return in non-void function %q", fn.Name)
		} else {
			b.emitFrees()
			b.file.EmitOp(ltac.Ret)
		}
	}

	stackSize := roundUp16(b.stackOffset)
	b.file.Code[funcIdx].Arg1Val = stackSize
	b.file.Code[funcIdx].Arg2Val = b.stackOffset
	return nil
}

// buildParam assigns a stack slot to one parameter and emits the matching
// LdArg* instruction(s) (§4.1.1, §4.1.3: a ptr parameter emits a second
// LdArgI32 for its length into the auxiliary 4-byte slot at offset
// slot-8).
func (b *Builder) buildParam(p ast.Param, intArgPos, fltArgPos int) (ltac.Arg, error) {
	width := p.DataType.Width()
	offset := b.allocSlot(width)
	b.declare(p.Name, p.DataType, p.SubType, true, offset)

	pos := intArgPos
	if p.DataType.IsFloat() {
		pos = fltArgPos
	}

	op, ok := ldArgOpFor(p.DataType)
	if !ok {
		b.semErr(0, "", "unsupported parameter type for %q", p.Name)
		return ltac.Arg{}, nil
	}
	b.file.Emit(ltac.Instr{Op: op, Arg1: ltac.MemOf(offset), Arg2Val: pos})

	if p.DataType == ast.Ptr {
		b.file.Emit(ltac.Instr{Op: ltac.LdArgI32, Arg1: ltac.MemOf(offset - 8), Arg2Val: intArgPos + 1})
	}
	return ltac.MemOf(offset), nil
}

func ldArgOpFor(dt ast.DataType) (ltac.Op, bool) {
	switch dt {
	case ast.I8:
		return ltac.LdArgI8, true
	case ast.U8, ast.Char:
		return ltac.LdArgU8, true
	case ast.I16:
		return ltac.LdArgI16, true
	case ast.U16:
		return ltac.LdArgU16, true
	case ast.I32:
		return ltac.LdArgI32, true
	case ast.U32:
		return ltac.LdArgU32, true
	case ast.I64:
		return ltac.LdArgI64, true
	case ast.U64:
		return ltac.LdArgU64, true
	case ast.F32:
		return ltac.LdArgF32, true
	case ast.F64:
		return ltac.LdArgF64, true
	case ast.Str, ast.Ptr:
		return ltac.LdArgPtr, true
	default:
		return ltac.OpNone, false
	}
}
