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

import "github.com/ida-lang/lilac/ltac"

// isFloatReg reports whether a is one of the two float register kinds.
func isFloatReg(a ltac.Arg) bool {
	return a.Kind == ltac.FltReg || a.Kind == ltac.FltReg64
}

// RiscVQuirks applies the two RISC-V-specific rewrites (§4.4): a varargs
// call to printf gets its float-register arguments routed through the
// integer calling convention, and an F32-to-F32 register move immediately
// followed by a float store or another float move is fused away.
func RiscVQuirks(file *ltac.File) *ltac.File {
	out := &ltac.File{Name: file.Name, Data: file.Data}

	var pending []ltac.Instr
	flush := func(callName string) {
		if callName == "printf" {
			pending = convertPrintfFloatArgs(pending)
		}
		out.Code = append(out.Code, pending...)
		pending = nil
	}

	for _, ins := range file.Code {
		switch ins.Op {
		case ltac.PushArg, ltac.KPushArg:
			pending = append(pending, ins)
		case ltac.Call:
			flush(ins.Name)
			out.Code = append(out.Code, ins)
		default:
			if len(pending) > 0 {
				flush("")
			}
			out.Code = append(out.Code, ins)
		}
	}
	if len(pending) > 0 {
		flush("")
	}

	out.Code = collapseFloatMoves(out.Code)
	return out
}

// convertPrintfFloatArgs rewrites every float-register PushArg in one
// call's pending argument run into the three-instruction int-register
// sequence printf's varargs convention requires on RISC-V: widen to
// double, reinterpret the bits into an integer register, then push that
// register at the next integer argument position (§4.4).
func convertPrintfFloatArgs(pushes []ltac.Instr) []ltac.Instr {
	intPos := 0
	for _, p := range pushes {
		if p.Op == ltac.PushArg && !isFloatReg(p.Arg1) {
			intPos++
		}
	}

	out := make([]ltac.Instr, 0, len(pushes))
	for _, p := range pushes {
		if p.Op != ltac.PushArg || !isFloatReg(p.Arg1) {
			out = append(out, p)
			continue
		}
		n := p.Arg1.N
		intPos++
		out = append(out,
			ltac.Instr{Op: ltac.CvtF32F64, Arg1: ltac.FltReg64Of(n), Arg2: p.Arg1},
			ltac.Instr{Op: ltac.MovF64Int, Arg1: ltac.Reg32Of(n), Arg2: ltac.FltReg64Of(n)},
			ltac.Instr{Op: ltac.PushArg, Arg1: ltac.Reg32Of(n), Arg2Val: intPos},
		)
	}
	return out
}

// collapseFloatMoves fuses a MovF32 between two float registers into an
// immediately following float store or another MovF32 by propagating the
// source register forward and dropping the MovF32 (§4.4).
func collapseFloatMoves(code []ltac.Instr) []ltac.Instr {
	out := make([]ltac.Instr, 0, len(code))
	for i := 0; i < len(code); i++ {
		cur := code[i]
		if cur.Op == ltac.MovF32 && isFloatReg(cur.Arg1) && isFloatReg(cur.Arg2) && i+1 < len(code) {
			next := code[i+1]
			if next.Op == ltac.StrF32 || next.Op == ltac.StrF64 || next.Op == ltac.MovF32 {
				fused := next
				if fused.Arg2 == cur.Arg1 {
					fused.Arg2 = cur.Arg2
				}
				out = append(out, fused)
				i++
				continue
			}
		}
		out = append(out, cur)
	}
	return out
}
