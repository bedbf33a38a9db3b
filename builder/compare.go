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
	"fmt"

	"github.com/ida-lang/lilac/ast"
	"github.com/ida-lang/lilac/ltac"
)

// splitCondition finds the single top-level relational operator in a
// condition's argument list and splits it into (lhs, relTag, rhs).
func splitCondition(args []ast.Arg) ([]ast.Arg, ast.ArgTag, []ast.Arg, error) {
	depth := 0
	for i, a := range args {
		switch a.Tag {
		case ast.LParen:
			depth++
		case ast.RParen:
			depth--
		default:
			if depth == 0 && a.Tag.IsRelational() {
				return args[:i], a.Tag, args[i+1:], nil
			}
		}
	}
	return nil, 0, nil, fmt.Errorf("condition has no relational operator")
}

// compareDataType infers the static type used to choose the *Cmp opcode
// family, per "the compare opcode is chosen by the static type of the
// first operand" (§4.1.6).
func (b *Builder) compareDataType(lhs []ast.Arg) ast.DataType {
	if len(lhs) == 0 {
		return ast.I32
	}
	a := lhs[0]
	switch a.Tag {
	case ast.Id:
		if sym, ok := b.lookup(a.Name); ok {
			return sym.dataType
		}
		if c, ok := b.constants[a.Name]; ok {
			return c.DataType
		}
	case ast.FloatL:
		return ast.F64
	case ast.StringL:
		return ast.Str
	case ast.CharL:
		return ast.Char
	}
	return ast.I32
}

func cmpOpFor(dt ast.DataType) ltac.Op {
	switch dt {
	case ast.I8, ast.Char:
		return ltac.I8Cmp
	case ast.U8:
		return ltac.U8Cmp
	case ast.I16:
		return ltac.I16Cmp
	case ast.U16:
		return ltac.U16Cmp
	case ast.I64:
		return ltac.I64Cmp
	case ast.U64:
		return ltac.U64Cmp
	case ast.U32:
		return ltac.U32Cmp
	case ast.F32:
		return ltac.F32Cmp
	case ast.F64:
		return ltac.F64Cmp
	case ast.Str:
		return ltac.StrCmp
	default:
		return ltac.I32Cmp
	}
}

// negatedBranchOp maps a relational operator to the branch that skips the
// guarded block, used for If/Elif conditions (the branch fires when the
// condition is false): == -> Bne, != -> Be, < -> Bge, <= -> Bg, > -> Ble,
// >= -> Bl.
func negatedBranchOp(rel ast.ArgTag, isFloat bool) ltac.Op {
	switch rel {
	case ast.OpEq:
		return ltac.Bne
	case ast.OpNeq:
		return ltac.Be
	case ast.OpLt:
		if isFloat {
			return ltac.Bfge
		}
		return ltac.Bge
	case ast.OpLe:
		return ltac.Bg
	case ast.OpGt:
		return ltac.Ble
	case ast.OpGe:
		return ltac.Bl
	default:
		return ltac.Bne
	}
}

// directBranchOp maps a relational operator to the branch that continues
// looping when the condition holds, used by While/For tails: the sense of
// the predicate is not inverted because the branch itself continues the
// loop rather than skipping a block.
func directBranchOp(rel ast.ArgTag, isFloat bool) ltac.Op {
	switch rel {
	case ast.OpEq:
		return ltac.Be
	case ast.OpNeq:
		return ltac.Bne
	case ast.OpLt:
		if isFloat {
			return ltac.Bfl
		}
		return ltac.Bl
	case ast.OpLe:
		if isFloat {
			return ltac.Bfle
		}
		return ltac.Ble
	case ast.OpGt:
		if isFloat {
			return ltac.Bfg
		}
		return ltac.Bg
	case ast.OpGe:
		if isFloat {
			return ltac.Bfge
		}
		return ltac.Bge
	default:
		return ltac.Be
	}
}

// lowerCondition lowers a condition's comparison (loading the left-hand
// side into a fixed register 0 of the matching type, as scenario (d)
// shows, and the right-hand side as a literal or memory operand) and
// emits the *Cmp instruction. It returns the relational operator and
// whether the comparison type is floating point, so the caller can pick
// the branch sense appropriate to its context (If vs. loop tail).
func (b *Builder) lowerCondition(args []ast.Arg, line int, lineText string) (ast.ArgTag, bool, error) {
	lhs, rel, rhs, err := splitCondition(args)
	if err != nil {
		b.semErr(line, lineText, "%v", err)
		return 0, false, nil
	}
	dt := b.compareDataType(lhs)
	reg := regOpFor(dt, 0)

	lhsVal, err := b.lowerOperandAtom(lhs, dt)
	if err != nil {
		return 0, false, err
	}
	b.emitStore(dt, reg, lhsVal)

	rhsVal, err := b.lowerOperandAtom(rhs, dt)
	if err != nil {
		return 0, false, err
	}

	b.file.Emit(ltac.Instr{Op: cmpOpFor(dt), Arg1: reg, Arg2: rhsVal})
	return rel, dt.IsFloat(), nil
}

// lowerOperandAtom resolves an operand whose first atom is a literal or
// identifier (including an array element) directly from that first atom,
// without going through the general multi-term lowerExpr machinery; any
// other leading atom is lowered through lowerExpr at register level 9.
func (b *Builder) lowerOperandAtom(args []ast.Arg, dt ast.DataType) (ltac.Arg, error) {
	if len(args) == 0 {
		return ltac.Arg{}, fmt.Errorf("empty comparison operand")
	}
	a := args[0]
	switch a.Tag {
	case ast.Id:
		return b.lowerIdOperand(a, dt)
	case ast.IntL, ast.ByteL, ast.U8L, ast.I16L, ast.U16L, ast.FloatL, ast.CharL, ast.StringL:
		return b.litArg(a, dt, false)
	default:
		return b.lowerExpr(args, dt, 9)
	}
}
