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
	"testing"

	"github.com/ida-lang/lilac/ltac"
)

func TestRiscVQuirks_PrintfFloatArg(t *testing.T) {
	in := &ltac.File{Code: []ltac.Instr{
		{Op: ltac.PushArg, Arg1: ltac.PtrLclOf("STR0"), Arg2Val: 1},
		{Op: ltac.PushArg, Arg1: ltac.FltRegOf(0), Arg2Val: 2},
		{Op: ltac.Call, Name: "printf"},
	}}
	out := RiscVQuirks(in)

	want := []ltac.Instr{
		{Op: ltac.PushArg, Arg1: ltac.PtrLclOf("STR0"), Arg2Val: 1},
		{Op: ltac.CvtF32F64, Arg1: ltac.FltReg64Of(0), Arg2: ltac.FltRegOf(0)},
		{Op: ltac.MovF64Int, Arg1: ltac.Reg32Of(0), Arg2: ltac.FltReg64Of(0)},
		{Op: ltac.PushArg, Arg1: ltac.Reg32Of(0), Arg2Val: 2},
		{Op: ltac.Call, Name: "printf"},
	}
	assertInstrs(t, out.Code, want)
}

func TestRiscVQuirks_NonPrintfCallUntouched(t *testing.T) {
	in := &ltac.File{Code: []ltac.Instr{
		{Op: ltac.PushArg, Arg1: ltac.FltRegOf(0), Arg2Val: 1},
		{Op: ltac.Call, Name: "compute"},
	}}
	out := RiscVQuirks(in)
	assertInstrs(t, out.Code, in.Code)
}

func TestRiscVQuirks_CollapseMovF32IntoStore(t *testing.T) {
	in := &ltac.File{Code: []ltac.Instr{
		{Op: ltac.MovF32, Arg1: ltac.FltRegOf(1), Arg2: ltac.FltRegOf(0)},
		{Op: ltac.StrF32, Arg1: ltac.MemOf(8), Arg2: ltac.FltRegOf(1)},
	}}
	out := RiscVQuirks(in)

	want := []ltac.Instr{
		{Op: ltac.StrF32, Arg1: ltac.MemOf(8), Arg2: ltac.FltRegOf(0)},
	}
	assertInstrs(t, out.Code, want)
}

func TestRiscVQuirks_CollapseMovF32IntoMovF32(t *testing.T) {
	in := &ltac.File{Code: []ltac.Instr{
		{Op: ltac.MovF32, Arg1: ltac.FltRegOf(1), Arg2: ltac.FltRegOf(0)},
		{Op: ltac.MovF32, Arg1: ltac.FltRegOf(2), Arg2: ltac.FltRegOf(1)},
	}}
	out := RiscVQuirks(in)

	want := []ltac.Instr{
		{Op: ltac.MovF32, Arg1: ltac.FltRegOf(2), Arg2: ltac.FltRegOf(0)},
	}
	assertInstrs(t, out.Code, want)
}

func TestRiscVQuirks_NoFusionWhenNotImmediatelyFollowedByStore(t *testing.T) {
	in := &ltac.File{Code: []ltac.Instr{
		{Op: ltac.MovF32, Arg1: ltac.FltRegOf(1), Arg2: ltac.FltRegOf(0)},
		{Op: ltac.F32Add, Arg1: ltac.FltRegOf(1), Arg2: ltac.FltRegOf(2)},
	}}
	out := RiscVQuirks(in)
	assertInstrs(t, out.Code, in.Code)
}
