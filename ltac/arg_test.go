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

func TestArg_IsMem(t *testing.T) {
	tests := []struct {
		name string
		arg  Arg
		want bool
	}{
		{"mem", MemOf(8), true},
		{"ptr", PtrOf(16), true},
		{"mem offset imm", MemOffsetImmOf(8, 4), true},
		{"mem offset mem", MemOffsetMemOf(8, 16, 4), true},
		{"mem offset reg", MemOffsetRegOf(8, 0, 4), true},
		{"reg32", RegOf(0), false},
		{"reg64", Reg64Of(0), false},
		{"flt reg", FltRegOf(0), false},
		{"lit", I32Lt(3), false},
		{"empty", Arg{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.arg.IsMem(); got != tt.want {
				t.Errorf("IsMem() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestArg_String(t *testing.T) {
	tests := []struct {
		name string
		arg  Arg
		want string
	}{
		{"reg32", Reg32Of(2), "i32.r2"},
		{"flt reg64", FltReg64Of(1), "f64.r1"},
		{"mem", MemOf(8), "[bp-8]"},
		{"mem offset imm", MemOffsetImmOf(8, 4), "[bp-8+4]"},
		{"mem offset mem", MemOffsetMemOf(16, 24, 4), "[bp-16+([bp-24]*4)]"},
		{"i32 lit", I32Lt(42), "42"},
		{"ret i64", RetReg(RetRegI64), "i64.ret"},
		{"f32 ref", F32Ref("FLT0"), "FLT0"},
		{"empty", Arg{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.arg.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestArg_IsEmpty(t *testing.T) {
	if !(Arg{}).IsEmpty() {
		t.Error("zero Arg should be empty")
	}
	if MemOf(0).IsEmpty() {
		t.Error("MemOf(0) should not be empty despite a zero offset")
	}
}
