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

// typedOpFor resolves a binary operator atom to its type-specific LTAC
// opcode (§4.1.2 step 3: "change the current opcode template to the typed
// variant"). Signed/unsigned are separate opcodes, not operand flags (see
// DESIGN.md's carried-over design note).
func typedOpFor(tag ast.ArgTag, dt ast.DataType) (ltac.Op, error) {
	if dt.IsFloat() {
		switch tag {
		case ast.OpAdd:
			return floatOp(dt, ltac.F32Add, ltac.F64Add), nil
		case ast.OpSub:
			return floatOp(dt, ltac.F32Sub, ltac.F64Sub), nil
		case ast.OpMul:
			return floatOp(dt, ltac.F32Mul, ltac.F64Mul), nil
		case ast.OpDiv:
			return floatOp(dt, ltac.F32Div, ltac.F64Div), nil
		case ast.OpMod:
			return ltac.OpNone, fmt.Errorf("modulo is not allowed on floating-point types")
		case ast.OpAnd, ast.OpOr, ast.OpXor, ast.OpShl, ast.OpShr:
			return ltac.OpNone, fmt.Errorf("bitwise/shift operators are not allowed on floating-point types")
		}
	}

	switch tag {
	case ast.OpAdd:
		return arithOp(dt, addTable), nil
	case ast.OpSub:
		return arithOp(dt, subTable), nil
	case ast.OpMul:
		return arithOp(dt, mulTable), nil
	case ast.OpDiv:
		return arithOp(dt, divTable), nil
	case ast.OpMod:
		return arithOp(dt, modTable), nil
	case ast.OpAnd:
		return bitwiseOp(dt, ltac.AndB, ltac.AndW, ltac.And, ltac.AndQ), nil
	case ast.OpOr:
		return bitwiseOp(dt, ltac.OrB, ltac.OrW, ltac.Or, ltac.OrQ), nil
	case ast.OpXor:
		return bitwiseOp(dt, ltac.XorB, ltac.XorW, ltac.Xor, ltac.XorQ), nil
	case ast.OpShl:
		return bitwiseOp(dt, ltac.LshB, ltac.LshW, ltac.Lsh, ltac.LshQ), nil
	case ast.OpShr:
		return bitwiseOp(dt, ltac.RshB, ltac.RshW, ltac.Rsh, ltac.RshQ), nil
	}
	return ltac.OpNone, fmt.Errorf("unsupported operator for type")
}

func floatOp(dt ast.DataType, f32, f64 ltac.Op) ltac.Op {
	if dt == ast.F64 {
		return f64
	}
	return f32
}

type opRow struct{ i8, u8, i16, u16, i32, u32, i64, u64 ltac.Op }

var addTable = opRow{ltac.I8Add, ltac.U8Add, ltac.I16Add, ltac.U16Add, ltac.I32Add, ltac.U32Add, ltac.I64Add, ltac.U64Add}

// subTable has no unsigned variant in the opcode set (spec design note:
// "Sub and float ops have no U variant"); unsigned subtraction reuses the
// signed opcode family.
var subTable = opRow{ltac.I8Sub, ltac.I8Sub, ltac.I16Sub, ltac.I16Sub, ltac.I32Sub, ltac.I32Sub, ltac.I64Sub, ltac.I64Sub}
var mulTable = opRow{ltac.I8Mul, ltac.U8Mul, ltac.I16Mul, ltac.U16Mul, ltac.I32Mul, ltac.U32Mul, ltac.I64Mul, ltac.U64Mul}
var divTable = opRow{ltac.I8Div, ltac.U8Div, ltac.I16Div, ltac.U16Div, ltac.I32Div, ltac.U32Div, ltac.I64Div, ltac.U64Div}
var modTable = opRow{ltac.I8Mod, ltac.U8Mod, ltac.I16Mod, ltac.U16Mod, ltac.I32Mod, ltac.U32Mod, ltac.I64Mod, ltac.U64Mod}

func arithOp(dt ast.DataType, row opRow) ltac.Op {
	switch dt {
	case ast.I8, ast.Char:
		return row.i8
	case ast.U8:
		return row.u8
	case ast.I16:
		return row.i16
	case ast.U16:
		return row.u16
	case ast.I64:
		return row.i64
	case ast.U64:
		return row.u64
	case ast.U32:
		return row.u32
	default:
		return row.i32
	}
}

func bitwiseOp(dt ast.DataType, b, w, dw, q ltac.Op) ltac.Op {
	switch dt {
	case ast.I8, ast.U8, ast.Char:
		return b
	case ast.I16, ast.U16:
		return w
	case ast.I64, ast.U64:
		return q
	default:
		return dw
	}
}

// subOpFor resolves the Sub opcode used by unary negation's identifier
// path ("Mov 0 → R; Sub R, mem").
func subOpFor(dt ast.DataType) (ltac.Op, error) {
	if dt.IsFloat() {
		return floatOp(dt, ltac.F32Sub, ltac.F64Sub), nil
	}
	return arithOp(dt, subTable), nil
}

// zeroLitFor returns the zero operand used by unary negation's
// identifier path ("Mov 0 → R; Sub R, mem"). Float destinations still get
// a real data-section zero entry, like any other float literal.
func (b *Builder) zeroLitFor(dt ast.DataType) ltac.Arg {
	if dt.IsFloat() {
		label := b.buildFloat(0, dt == ast.F64, false)
		if dt == ast.F64 {
			return ltac.F64Ref(label)
		}
		return ltac.F32Ref(label)
	}
	return litIntFor(dt, 0)
}

func litIntFor(dt ast.DataType, v int64) ltac.Arg {
	switch dt {
	case ast.I8, ast.Char:
		return ltac.ByteLit(v)
	case ast.U8:
		return ltac.UByteLit(v)
	case ast.I16:
		return ltac.I16Lt(v)
	case ast.U16:
		return ltac.U16Lt(v)
	case ast.I64:
		return ltac.I64Lt(v)
	case ast.U64:
		return ltac.U64Lt(v)
	case ast.U32:
		return ltac.U32Lt(v)
	default:
		return ltac.I32Lt(v)
	}
}

// litArg converts a literal Arg (or resolved constant value) into its
// typed LTAC literal operand, enforcing range checks for byte/word
// widths (§4.1.2 edge cases: "integer literals that don't fit their
// destination's byte/word width raise a range error").
func (b *Builder) litArg(a ast.Arg, dt ast.DataType, negate bool) (ltac.Arg, error) {
	switch a.Tag {
	case ast.FloatL:
		isDouble := dt == ast.F64
		label := b.buildFloat(a.F64Val, isDouble, negate)
		if isDouble {
			return ltac.F64Ref(label), nil
		}
		return ltac.F32Ref(label), nil
	case ast.StringL:
		label := b.buildString(a.StrVal)
		return ltac.PtrLclOf(label), nil
	case ast.CharL:
		return ltac.UByteLit(int64(a.CharVal)), nil
	default:
		v := int64(a.U64Val)
		if negate {
			v = -v
		}
		if err := checkRange(dt, v); err != nil {
			return ltac.Arg{}, err
		}
		return litIntFor(dt, v), nil
	}
}

func checkRange(dt ast.DataType, v int64) error {
	switch dt {
	case ast.I8:
		if v < -128 || v > 127 {
			return fmt.Errorf("literal %d out of range for i8", v)
		}
	case ast.U8, ast.Char:
		if v < 0 || v > 255 {
			return fmt.Errorf("literal %d out of range for u8", v)
		}
	case ast.I16:
		if v < -32768 || v > 32767 {
			return fmt.Errorf("literal %d out of range for i16", v)
		}
	case ast.U16:
		if v < 0 || v > 65535 {
			return fmt.Errorf("literal %d out of range for u16", v)
		}
	}
	return nil
}

func retRegFor(dt ast.DataType) ltac.Arg {
	switch dt {
	case ast.I8:
		return ltac.RetReg(ltac.RetRegI8)
	case ast.U8, ast.Char:
		return ltac.RetReg(ltac.RetRegU8)
	case ast.I16:
		return ltac.RetReg(ltac.RetRegI16)
	case ast.U16:
		return ltac.RetReg(ltac.RetRegU16)
	case ast.I32:
		return ltac.RetReg(ltac.RetRegI32)
	case ast.U32:
		return ltac.RetReg(ltac.RetRegU32)
	case ast.I64, ast.Str, ast.Ptr:
		return ltac.RetReg(ltac.RetRegI64)
	case ast.U64:
		return ltac.RetReg(ltac.RetRegU64)
	case ast.F32:
		return ltac.RetReg(ltac.RetRegF32)
	case ast.F64:
		return ltac.RetReg(ltac.RetRegF64)
	default:
		return ltac.RetReg(ltac.RetRegI32)
	}
}
