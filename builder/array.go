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

// buildArrayAlloc lowers "x : T[n] = malloc(n)" into the fixed three-
// instruction sequence of §4.1.4: PushArg I32(n*size); Malloc;
// Mov Mem(slot), RetRegI64. If n is a variable, a multiplication is
// inserted before the push; only integer sizes are accepted.
func (b *Builder) buildArrayAlloc(sym *symbol, s *ast.Stmt) error {
	sizeArg := s.Args[0].SubArgs[0]
	elemSize := sym.subType.Width()
	if elemSize == 0 {
		elemSize = 1
	}

	var sizeOperand ltac.Arg
	switch sizeArg.Tag {
	case ast.IntL, ast.ByteL, ast.U8L, ast.I16L, ast.U16L:
		sizeOperand = ltac.I32Lt(int64(sizeArg.U64Val) * int64(elemSize))
	case ast.Id:
		idxSym, ok := b.lookup(sizeArg.Name)
		if !ok {
			b.semErr(s.Line, s.LineText, "unknown identifier %q", sizeArg.Name)
			return nil
		}
		reg := ltac.Reg32Of(1)
		b.file.Emit(ltac.Instr{Op: ltac.Mov, Arg1: reg, Arg2: ltac.MemOf(idxSym.offset)})
		b.file.Emit(ltac.Instr{Op: ltac.I32Mul, Arg1: reg, Arg2: ltac.I32Lt(int64(elemSize))})
		sizeOperand = reg
	default:
		b.semErr(s.Line, s.LineText, "array allocation size must be an integer literal or variable")
		return nil
	}

	b.file.Emit(ltac.Instr{Op: ltac.PushArg, Arg1: sizeOperand, Arg2Val: 1})
	mallocIdx := b.file.EmitOp(ltac.Malloc)
	b.file.Emit(ltac.Instr{Op: ltac.MovQ, Arg1: ltac.MemOf(sym.offset), Arg2: ltac.RetReg(ltac.RetRegI64)})

	if sizeOperand.Kind == ltac.I32Lit {
		b.MallocSizes[sym.offset] = int(sizeOperand.IVal)
	}
	_ = mallocIdx
	return nil
}

// elementOperand resolves arr[index] to the appropriate MemOffset* operand
// shape: a constant index uses MemOffsetImm; a variable index uses
// MemOffsetMem (§4.1.4).
func (b *Builder) elementOperand(arrName string, indexArgs []ast.Arg, line int, lineText string) (ltac.Arg, ast.DataType, error) {
	sym, ok := b.lookup(arrName)
	if !ok {
		b.semErr(line, lineText, "unknown identifier %q", arrName)
		return ltac.Arg{}, ast.Void, nil
	}
	elemSize := sym.subType.Width()
	if elemSize == 0 {
		elemSize = 1
	}
	if len(indexArgs) == 1 && isIntLiteral(indexArgs[0].Tag) {
		k := int(indexArgs[0].U64Val)
		return ltac.MemOffsetImmOf(sym.offset, k*elemSize), sym.subType, nil
	}
	if len(indexArgs) == 1 && indexArgs[0].Tag == ast.Id {
		idxSym, ok := b.lookup(indexArgs[0].Name)
		if !ok {
			b.semErr(line, lineText, "unknown identifier %q", indexArgs[0].Name)
			return ltac.Arg{}, ast.Void, nil
		}
		return ltac.MemOffsetMemOf(sym.offset, idxSym.offset, elemSize), sym.subType, nil
	}
	b.semErr(line, lineText, "unsupported array index expression for %q", arrName)
	return ltac.Arg{}, ast.Void, nil
}

func isIntLiteral(tag ast.ArgTag) bool {
	switch tag {
	case ast.ByteL, ast.U8L, ast.I16L, ast.U16L, ast.IntL:
		return true
	default:
		return false
	}
}

// buildArrayAssign lowers "arr[idx] = expr".
func (b *Builder) buildArrayAssign(s *ast.Stmt) error {
	dest, elemType, err := b.elementOperand(s.Name, s.SubArgs, s.Line, s.LineText)
	if err != nil {
		return err
	}
	if dest.Kind == ltac.Empty && elemType == ast.Void {
		return nil
	}
	reg, err := b.lowerExpr(s.Args, elemType, 1)
	if err != nil {
		return err
	}
	b.emitStore(elemType, dest, reg)
	return nil
}
