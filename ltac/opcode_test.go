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

func TestOp_String(t *testing.T) {
	tests := []struct {
		op   Op
		want string
	}{
		{I32Add, "i32.add"},
		{Br, "br"},
		{PushArg, "pusharg"},
		{Exit, "exit"},
		{StrCmp, "str.cmp"},
		{Op(-1), "???"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("Op(%v).String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestOp_IsBranch(t *testing.T) {
	tests := []struct {
		op   Op
		want bool
	}{
		{Bl, true}, {Bfge, true}, {Br, false}, {I32Cmp, false}, {Mov, false},
	}
	for _, tt := range tests {
		if got := tt.op.IsBranch(); got != tt.want {
			t.Errorf("%s.IsBranch() = %v, want %v", tt.op, got, tt.want)
		}
	}
}

func TestOp_IsCompare(t *testing.T) {
	tests := []struct {
		op   Op
		want bool
	}{
		{I32Cmp, true}, {F64Cmp, true}, {StrCmp, true}, {Bl, false}, {I32Add, false},
	}
	for _, tt := range tests {
		if got := tt.op.IsCompare(); got != tt.want {
			t.Errorf("%s.IsCompare() = %v, want %v", tt.op, got, tt.want)
		}
	}
}

func TestOp_IsMove(t *testing.T) {
	tests := []struct {
		op   Op
		want bool
	}{
		{Mov, true}, {MovQ, true}, {MovF32, true}, {LdB, false}, {StrQ, false}, {I32Add, false},
	}
	for _, tt := range tests {
		if got := tt.op.IsMove(); got != tt.want {
			t.Errorf("%s.IsMove() = %v, want %v", tt.op, got, tt.want)
		}
	}
}

func TestLoadStoreForMove(t *testing.T) {
	tests := []struct {
		op        Op
		wantLoad  Op
		wantStore Op
		wantOk    bool
	}{
		{Mov, Ld, Str, true},
		{MovQ, LdQ, StrQ, true},
		{MovF32, LdF32, StrF32, true},
		{MovUB, LdUB, StrUB, true},
		{I32Add, OpNone, OpNone, false},
	}
	for _, tt := range tests {
		load, store, ok := LoadStoreForMove(tt.op)
		if load != tt.wantLoad || store != tt.wantStore || ok != tt.wantOk {
			t.Errorf("LoadStoreForMove(%s) = (%s, %s, %v), want (%s, %s, %v)",
				tt.op, load, store, ok, tt.wantLoad, tt.wantStore, tt.wantOk)
		}
	}
}
