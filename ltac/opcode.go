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

// Package ltac defines the "Lila Three-Address Code" intermediate
// representation: a flat instruction sequence plus a data section of
// labeled literals. Builder and transform packages produce and rewrite
// values of this shape; per-target emitters (out of scope here) consume
// them.
package ltac

// Op is the LTAC opcode. Families are grouped by comment below to mirror
// the taxonomy in the specification.
type Op int

const (
	OpNone Op = iota

	// Moves
	MovB
	MovUB
	MovW
	MovUW
	Mov
	MovU
	MovQ
	MovUQ
	MovF32
	MovF64
	MovI32Vec
	LdAddr

	// RISC load family
	LdB
	LdUB
	LdW
	LdUW
	Ld
	LdU
	LdQ
	LdUQ
	LdF32
	LdF64

	// RISC store family
	StrB
	StrUB
	StrW
	StrUW
	Str
	StrU
	StrQ
	StrUQ
	StrF32
	StrF64
	StrPtr

	// Argument-load family (function parameter loading)
	LdArgI8
	LdArgU8
	LdArgI16
	LdArgU16
	LdArgI32
	LdArgU32
	LdArgI64
	LdArgU64
	LdArgF32
	LdArgF64
	LdArgPtr

	// Function framing
	Extern
	Label
	Func
	Ret

	// Calls
	PushArg
	KPushArg
	Call
	Syscall

	// Arithmetic: I8/U8/I16/U16/I32/U32/I64/U64/F32/F64 x Add/Sub/Mul/Div/Mod
	I8Add
	I8Sub
	I8Mul
	I8Div
	I8Mod
	U8Add
	U8Mul
	U8Div
	U8Mod
	I16Add
	I16Sub
	I16Mul
	I16Div
	I16Mod
	U16Add
	U16Mul
	U16Div
	U16Mod
	I32Add
	I32Sub
	I32Mul
	I32Div
	I32Mod
	U32Add
	U32Mul
	U32Div
	U32Mod
	I64Add
	I64Sub
	I64Mul
	I64Div
	I64Mod
	U64Add
	U64Mul
	U64Div
	U64Mod
	F32Add
	F32Sub
	F32Mul
	F32Div
	F64Add
	F64Sub
	F64Mul
	F64Div

	// Bitwise (type-agnostic family, byte/word/dword/qword specializations)
	AndB
	AndW
	And
	AndQ
	OrB
	OrW
	Or
	OrQ
	XorB
	XorW
	Xor
	XorQ
	LshB
	LshW
	Lsh
	LshQ
	RshB
	RshW
	Rsh
	RshQ

	// Compare
	I8Cmp
	U8Cmp
	I16Cmp
	U16Cmp
	I32Cmp
	U32Cmp
	I64Cmp
	U64Cmp
	F32Cmp
	F64Cmp
	StrCmp

	// Branch
	Br
	Be
	Bne
	Bl
	Ble
	Bg
	Bge
	Bfl
	Bfle
	Bfg
	Bfge

	// Builtins, lowered away by transform.Builtin
	Exit
	Malloc
	Free

	// Vector
	I32VAdd

	// Conversions
	CvtF32F64
	MovF64Int
)

var mnemonics = map[Op]string{
	MovB: "mov.b", MovUB: "mov.ub", MovW: "mov.w", MovUW: "mov.uw",
	Mov: "mov", MovU: "mov.u", MovQ: "mov.q", MovUQ: "mov.uq",
	MovF32: "mov.f32", MovF64: "mov.f64", MovI32Vec: "mov.i32vec", LdAddr: "ld.addr",

	LdB: "i8.ld", LdUB: "u8.ld", LdW: "i16.ld", LdUW: "u16.ld",
	Ld: "i32.ld", LdU: "u32.ld", LdQ: "i64.ld", LdUQ: "u64.ld",
	LdF32: "f32.ld", LdF64: "f64.ld",

	StrB: "i8.str", StrUB: "u8.str", StrW: "i16.str", StrUW: "u16.str",
	Str: "i32.str", StrU: "u32.str", StrQ: "i64.str", StrUQ: "u64.str",
	StrF32: "f32.str", StrF64: "f64.str", StrPtr: "ptr.str",

	LdArgI8: "ldarg.i8", LdArgU8: "ldarg.u8", LdArgI16: "ldarg.i16", LdArgU16: "ldarg.u16",
	LdArgI32: "ldarg.i32", LdArgU32: "ldarg.u32", LdArgI64: "ldarg.i64", LdArgU64: "ldarg.u64",
	LdArgF32: "ldarg.f32", LdArgF64: "ldarg.f64", LdArgPtr: "ldarg.ptr",

	Extern: "extern", Label: "lbl", Func: "func", Ret: "ret",
	PushArg: "pusharg", KPushArg: "kpusharg", Call: "call", Syscall: "syscall",

	I8Add: "i8.add", I8Sub: "i8.sub", I8Mul: "i8.mul", I8Div: "i8.div", I8Mod: "i8.mod",
	U8Add: "u8.add", U8Mul: "u8.mul", U8Div: "u8.div", U8Mod: "u8.mod",
	I16Add: "i16.add", I16Sub: "i16.sub", I16Mul: "i16.mul", I16Div: "i16.div", I16Mod: "i16.mod",
	U16Add: "u16.add", U16Mul: "u16.mul", U16Div: "u16.div", U16Mod: "u16.mod",
	I32Add: "i32.add", I32Sub: "i32.sub", I32Mul: "i32.mul", I32Div: "i32.div", I32Mod: "i32.mod",
	U32Add: "u32.add", U32Mul: "u32.mul", U32Div: "u32.div", U32Mod: "u32.mod",
	I64Add: "i64.add", I64Sub: "i64.sub", I64Mul: "i64.mul", I64Div: "i64.div", I64Mod: "i64.mod",
	U64Add: "u64.add", U64Mul: "u64.mul", U64Div: "u64.div", U64Mod: "u64.mod",
	F32Add: "f32.add", F32Sub: "f32.sub", F32Mul: "f32.mul", F32Div: "f32.div",
	F64Add: "f64.add", F64Sub: "f64.sub", F64Mul: "f64.mul", F64Div: "f64.div",

	AndB: "and.b", AndW: "and.w", And: "and", AndQ: "and.q",
	OrB: "or.b", OrW: "or.w", Or: "or", OrQ: "or.q",
	XorB: "xor.b", XorW: "xor.w", Xor: "xor", XorQ: "xor.q",
	LshB: "lsh.b", LshW: "lsh.w", Lsh: "lsh", LshQ: "lsh.q",
	RshB: "rsh.b", RshW: "rsh.w", Rsh: "rsh", RshQ: "rsh.q",

	I8Cmp: "i8.cmp", U8Cmp: "u8.cmp", I16Cmp: "i16.cmp", U16Cmp: "u16.cmp",
	I32Cmp: "i32.cmp", U32Cmp: "u32.cmp", I64Cmp: "i64.cmp", U64Cmp: "u64.cmp",
	F32Cmp: "f32.cmp", F64Cmp: "f64.cmp", StrCmp: "str.cmp",

	Br: "br", Be: "be", Bne: "bne", Bl: "bl", Ble: "ble", Bg: "bg", Bge: "bge",
	Bfl: "bfl", Bfle: "bfle", Bfg: "bfg", Bfge: "bfge",

	Exit: "exit", Malloc: "malloc", Free: "free",

	I32VAdd: "i32.vadd",

	CvtF32F64: "cvt.f32f64", MovF64Int: "mov.f64int",
}

// String renders the opcode's dump mnemonic (§6 of the specification).
func (o Op) String() string {
	if s, ok := mnemonics[o]; ok {
		return s
	}
	return "???"
}

// IsBranch reports whether o is one of the conditional branch opcodes that
// must be immediately preceded by a matching compare (invariant 5 of §8).
func (o Op) IsBranch() bool {
	switch o {
	case Be, Bne, Bl, Ble, Bg, Bge, Bfl, Bfle, Bfg, Bfge:
		return true
	default:
		return false
	}
}

// IsCompare reports whether o is one of the *Cmp family opcodes.
func (o Op) IsCompare() bool {
	switch o {
	case I8Cmp, U8Cmp, I16Cmp, U16Cmp, I32Cmp, U32Cmp, I64Cmp, U64Cmp, F32Cmp, F64Cmp, StrCmp:
		return true
	default:
		return false
	}
}

// IsMove reports whether o belongs to the plain move family (as opposed to
// the explicit RISC load/store family); used by the RISC-normalization
// transform to decide which rewrite rule applies.
func (o Op) IsMove() bool {
	switch o {
	case MovB, MovUB, MovW, MovUW, Mov, MovU, MovQ, MovUQ, MovF32, MovF64:
		return true
	default:
		return false
	}
}

// loadStoreForMove returns the explicit RISC load and store opcodes that
// correspond to a move opcode, used by transform.RiscNormalize.
func (o Op) loadStoreForMove() (load, store Op, ok bool) {
	switch o {
	case MovB:
		return LdB, StrB, true
	case MovUB:
		return LdUB, StrUB, true
	case MovW:
		return LdW, StrW, true
	case MovUW:
		return LdUW, StrUW, true
	case Mov:
		return Ld, Str, true
	case MovU:
		return LdU, StrU, true
	case MovQ:
		return LdQ, StrQ, true
	case MovUQ:
		return LdUQ, StrUQ, true
	case MovF32:
		return LdF32, StrF32, true
	case MovF64:
		return LdF64, StrF64, true
	default:
		return OpNone, OpNone, false
	}
}

// LoadStoreForMove exposes loadStoreForMove to other packages (transform).
func LoadStoreForMove(o Op) (load, store Op, ok bool) { return o.loadStoreForMove() }
