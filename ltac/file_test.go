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

package ltac

import "testing"

func TestFile_AddString_NeverDeduplicates(t *testing.T) {
	f := NewFile("t.ida")
	l1 := f.AddString("hi")
	l2 := f.AddString("hi")
	if l1 == l2 {
		t.Errorf("AddString should never deduplicate, got same label %q twice", l1)
	}
	if l1 != "STR0" || l2 != "STR1" {
		t.Errorf("AddString labels = %q, %q, want STR0, STR1", l1, l2)
	}
}

func TestFile_AddFloat_SeparatesFloatAndDouble(t *testing.T) {
	f := NewFile("t.ida")
	fl := f.AddFloat("1078530011", false)
	db := f.AddFloat("4614256656552045848", true)
	fl2 := f.AddFloat("1066192077", false)
	if fl != "FLT0" || fl2 != "FLT2" {
		t.Errorf("float labels = %q, %q, want FLT0, FLT2", fl, fl2)
	}
	if db != "FLT1" {
		t.Errorf("double label = %q, want FLT1 (counter shared with float)", db)
	}
}

func TestFile_Dump(t *testing.T) {
	f := NewFile("t.ida")
	f.AddString("hi")
	funcIdx := f.Emit(Instr{Op: Func, Name: "main", Arg1Val: 16})
	f.Emit(Instr{Op: Mov, Arg1: MemOf(4), Arg2: I32Lt(3)})
	f.EmitLabel("L0")
	f.EmitBranch(Br, "L0")
	f.EmitOp(Ret)
	_ = funcIdx

	got := f.Dump()
	want := ".data\n" +
		"STR0: .string \"hi\"\n" +
		"\n" +
		"func main\n" +
		"setup 16\n" +
		"mov [bp-4], 3\n" +
		"lbl L0\n" +
		"br L0\n" +
		"ret\n"
	if got != want {
		t.Errorf("Dump() =\n%q\nwant\n%q", got, want)
	}
}

func TestFile_Emit_ReturnsIndex(t *testing.T) {
	f := NewFile("t.ida")
	i0 := f.Emit(Instr{Op: Ret})
	i1 := f.Emit(Instr{Op: Ret})
	if i0 != 0 || i1 != 1 {
		t.Errorf("Emit indices = %d, %d, want 0, 1", i0, i1)
	}
}
