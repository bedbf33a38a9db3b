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
	"testing"

	"github.com/ida-lang/lilac/ast"
	"github.com/ida-lang/lilac/lilaerr"
)

func TestRoundUp16(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{0, 16},
		{-4, 16},
		{1, 16},
		{16, 16},
		{17, 32},
		{32, 32},
		{33, 48},
	}
	for _, tt := range tests {
		if got := roundUp16(tt.n); got != tt.want {
			t.Errorf("roundUp16(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestBuilder_NewLabel_Sequential(t *testing.T) {
	b := New("t.ida", lilaerr.New())
	l0 := b.newLabel()
	l1 := b.newLabel()
	l2 := b.newLabel()
	if l0 != "L0" || l1 != "L1" || l2 != "L2" {
		t.Errorf("labels = %q, %q, %q, want L0, L1, L2", l0, l1, l2)
	}
}

func TestBuilder_AllocSlot_GrowsMonotonically(t *testing.T) {
	b := New("t.ida", lilaerr.New())
	o1 := b.allocSlot(4)
	o2 := b.allocSlot(8)
	if o1 != 4 {
		t.Errorf("first slot offset = %d, want 4", o1)
	}
	if o2 != 12 {
		t.Errorf("second slot offset = %d, want 12", o2)
	}
}

func TestBuilder_DeclareAndLookup(t *testing.T) {
	b := New("t.ida", lilaerr.New())
	b.symtab = map[string]*symbol{}
	b.declare("x", ast.I32, ast.Void, false, 4)

	sym, ok := b.lookup("x")
	if !ok {
		t.Fatal("lookup(x) not found after declare")
	}
	if sym.offset != 4 || sym.dataType != ast.I32 {
		t.Errorf("symbol = %+v, want offset=4 dataType=I32", sym)
	}

	if _, ok := b.lookup("y"); ok {
		t.Error("lookup(y) found an undeclared identifier")
	}
}
