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

package transform

import (
	"strings"

	"github.com/ida-lang/lilac/ltac"
	"github.com/samber/lo"
)

// scratchIndex is the fixed, reserved register index the RISC-normalization
// pass uses whenever an instruction needs a second memory operand moved
// through a register (§4.3). It is never allocated to ordinary expression
// results by the builder.
const scratchIndex = 3

// typeClass groups opcodes by the width/signedness a scratch register and
// its matching load/store pair must share.
type typeClass int

const (
	tcI32 typeClass = iota
	tcU32
	tcI8
	tcU8
	tcI16
	tcU16
	tcI64
	tcU64
	tcF32
	tcF64
	tcPtr
)

// bitwiseFamily classes the four width-suffixed variants of each bitwise
// opcode; these don't follow the "prefix.op" mnemonic shape arithmetic and
// compare opcodes do, so they're matched explicitly.
var bitwiseFamily = map[ltac.Op]typeClass{
	ltac.AndB: tcI8, ltac.OrB: tcI8, ltac.XorB: tcI8, ltac.LshB: tcI8, ltac.RshB: tcI8,
	ltac.AndW: tcI16, ltac.OrW: tcI16, ltac.XorW: tcI16, ltac.LshW: tcI16, ltac.RshW: tcI16,
	ltac.And: tcI32, ltac.Or: tcI32, ltac.Xor: tcI32, ltac.Lsh: tcI32, ltac.Rsh: tcI32,
	ltac.AndQ: tcI64, ltac.OrQ: tcI64, ltac.XorQ: tcI64, ltac.LshQ: tcI64, ltac.RshQ: tcI64,
}

// typeClassFor classifies a non-move opcode that can carry a memory
// operand, deriving width/signedness from its "prefix.op" dump mnemonic
// (e.g. "i8.add", "f64.cmp") for the arithmetic and compare families, and
// from the explicit bitwiseFamily table for the bitwise family.
func typeClassFor(op ltac.Op) (typeClass, bool) {
	if tc, ok := bitwiseFamily[op]; ok {
		return tc, true
	}
	if op == ltac.StrCmp {
		return tcPtr, true
	}
	prefix, _, ok := strings.Cut(op.String(), ".")
	if !ok {
		return 0, false
	}
	switch prefix {
	case "i8":
		return tcI8, true
	case "u8":
		return tcU8, true
	case "i16":
		return tcI16, true
	case "u16":
		return tcU16, true
	case "i32":
		return tcI32, true
	case "u32":
		return tcU32, true
	case "i64":
		return tcI64, true
	case "u64":
		return tcU64, true
	case "f32":
		return tcF32, true
	case "f64":
		return tcF64, true
	default:
		return 0, false
	}
}

// moveTypeClassFor classifies a move opcode for scratch-register width
// selection; kept separate from typeClassFor since move mnemonics don't
// share the "prefix.op" shape ("mov.b", not "i8.mov").
func moveTypeClassFor(op ltac.Op) typeClass {
	switch op {
	case ltac.MovB:
		return tcI8
	case ltac.MovUB:
		return tcU8
	case ltac.MovW:
		return tcI16
	case ltac.MovUW:
		return tcU16
	case ltac.MovU:
		return tcU32
	case ltac.MovQ:
		return tcI64
	case ltac.MovUQ:
		return tcU64
	case ltac.MovF32:
		return tcF32
	case ltac.MovF64:
		return tcF64
	default:
		return tcI32
	}
}

func loadStoreForTypeClass(tc typeClass) (load, store ltac.Op) {
	switch tc {
	case tcI8:
		return ltac.LdB, ltac.StrB
	case tcU8:
		return ltac.LdUB, ltac.StrUB
	case tcI16:
		return ltac.LdW, ltac.StrW
	case tcU16:
		return ltac.LdUW, ltac.StrUW
	case tcU32:
		return ltac.LdU, ltac.StrU
	case tcI64:
		return ltac.LdQ, ltac.StrQ
	case tcU64:
		return ltac.LdUQ, ltac.StrUQ
	case tcF32:
		return ltac.LdF32, ltac.StrF32
	case tcF64:
		return ltac.LdF64, ltac.StrF64
	case tcPtr:
		return ltac.LdQ, ltac.StrQ
	default:
		return ltac.Ld, ltac.Str
	}
}

func scratchReg(tc typeClass) ltac.Arg {
	switch tc {
	case tcF32:
		return ltac.FltRegOf(scratchIndex)
	case tcF64:
		return ltac.FltReg64Of(scratchIndex)
	case tcI64, tcU64, tcPtr:
		return ltac.Reg64Of(scratchIndex)
	case tcI16, tcU16:
		return ltac.Reg16Of(scratchIndex)
	case tcI8, tcU8:
		return ltac.RegOf(scratchIndex)
	default:
		return ltac.Reg32Of(scratchIndex)
	}
}

// RiscNormalize rewrites every instruction so it carries at most one memory
// operand (§4.3, invariant 6). A move whose destination is memory keeps its
// opcode but targets a scratch register, followed by a store of that
// register into the original destination; a move whose source is memory is
// preceded by a load into scratch and its source rewritten to the scratch
// register; any other instruction (other than PushArg, whose operand
// convention is untouched) with a memory second operand is preceded by a
// load into scratch and its second operand rewritten the same way.
func RiscNormalize(file *ltac.File) *ltac.File {
	out := &ltac.File{Name: file.Name, Data: file.Data}

	for _, ins := range file.Code {
		if ins.Op.IsMove() {
			tc := moveTypeClassFor(ins.Op)
			load, store, _ := ltac.LoadStoreForMove(ins.Op)

			if ins.Arg1.IsMem() {
				scratch := scratchReg(tc)
				rewritten := ins
				rewritten.Arg1 = scratch
				pair := lo.Tuple2[ltac.Instr, ltac.Instr]{A: rewritten, B: ltac.Instr{Op: store, Arg1: ins.Arg1, Arg2: scratch}}
				out.Code = append(out.Code, pair.A, pair.B)
				continue
			}
			if ins.Arg2.IsMem() {
				scratch := scratchReg(tc)
				loadIns := ltac.Instr{Op: load, Arg1: scratch, Arg2: ins.Arg2}
				rewritten := ins
				rewritten.Arg2 = scratch
				pair := lo.Tuple2[ltac.Instr, ltac.Instr]{A: loadIns, B: rewritten}
				out.Code = append(out.Code, pair.A, pair.B)
				continue
			}
			out.Code = append(out.Code, ins)
			continue
		}

		if ins.Op != ltac.PushArg && ins.Op != ltac.KPushArg && ins.Arg2.IsMem() {
			if tc, ok := typeClassFor(ins.Op); ok {
				load, _ := loadStoreForTypeClass(tc)
				scratch := scratchReg(tc)
				loadIns := ltac.Instr{Op: load, Arg1: scratch, Arg2: ins.Arg2}
				rewritten := ins
				rewritten.Arg2 = scratch
				pair := lo.Tuple2[ltac.Instr, ltac.Instr]{A: loadIns, B: rewritten}
				out.Code = append(out.Code, pair.A, pair.B)
				continue
			}
		}
		out.Code = append(out.Code, ins)
	}
	return out
}
