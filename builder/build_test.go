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
	"github.com/ida-lang/lilac/ltac"
)

// buildOK builds tree and fails the test on any builder or semantic error.
func buildOK(t *testing.T, tree *ast.Tree) *ltac.File {
	t.Helper()
	errs := lilaerr.New()
	file, err := New(tree.FileName, errs).Build(tree)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if errs.HasErrors() {
		t.Fatalf("Build() recorded errors: %v", errs.Errors())
	}
	return file
}

// everyLabelIsReferenced checks invariant 2: every Label definition also
// appears at least once as a branch or call target elsewhere in the file.
func everyLabelIsReferenced(file *ltac.File) []string {
	defined := map[string]bool{}
	referenced := map[string]bool{}
	for _, ins := range file.Code {
		switch ins.Op {
		case ltac.Label:
			defined[ins.Name] = true
		default:
			if ins.Op.IsBranch() || ins.Op == ltac.Br {
				referenced[ins.Name] = true
			}
		}
	}
	var unreferenced []string
	for name := range defined {
		if !referenced[name] {
			unreferenced = append(unreferenced, name)
		}
	}
	return unreferenced
}

func TestBuild_SimpleAddFunction(t *testing.T) {
	tree := &ast.Tree{
		FileName: "add.ida",
		Target:   ast.X86_64,
		Functions: []ast.Func{
			{
				Name:       "add",
				ReturnType: ast.I32,
				Params: []ast.Param{
					{Name: "a", DataType: ast.I32},
					{Name: "b", DataType: ast.I32},
				},
				Body: []ast.Stmt{
					{
						Tag: ast.Return,
						Args: []ast.Arg{
							{Tag: ast.Id, Name: "a"},
							{Tag: ast.OpAdd},
							{Tag: ast.Id, Name: "b"},
						},
					},
				},
			},
		},
	}
	file := buildOK(t, tree)

	if len(file.Code) == 0 {
		t.Fatal("expected non-empty lowered code")
	}
	if file.Code[0].Op != ltac.Func || file.Code[0].Name != "add" {
		t.Errorf("first instruction = %+v, want Func \"add\"", file.Code[0])
	}
	if file.Code[0].Arg1Val%16 != 0 {
		t.Errorf("stack size %d is not a multiple of 16", file.Code[0].Arg1Val)
	}
	last := file.Code[len(file.Code)-1]
	if last.Op != ltac.Ret {
		t.Errorf("last instruction = %+v, want Ret", last)
	}
}

func TestBuild_IfElseChain_EveryLabelReferenced(t *testing.T) {
	tree := &ast.Tree{
		FileName: "cmp.ida",
		Target:   ast.X86_64,
		Functions: []ast.Func{
			{
				Name:       "sign",
				ReturnType: ast.I32,
				Params:     []ast.Param{{Name: "x", DataType: ast.I32}},
				Body: []ast.Stmt{
					{
						Tag:  ast.If,
						Args: []ast.Arg{{Tag: ast.Id, Name: "x"}, {Tag: ast.OpLt}, {Tag: ast.IntL, U64Val: 0}},
						Body: []ast.Stmt{
							{Tag: ast.Return, Args: []ast.Arg{{Tag: ast.OpNeg}, {Tag: ast.IntL, U64Val: 1}}},
						},
					},
					{
						Tag:  ast.Else,
						Body: []ast.Stmt{
							{Tag: ast.Return, Args: []ast.Arg{{Tag: ast.IntL, U64Val: 1}}},
						},
					},
				},
			},
		},
	}
	file := buildOK(t, tree)

	if got := everyLabelIsReferenced(file); len(got) > 0 {
		t.Errorf("labels defined but never referenced: %v", got)
	}
}

func TestBuild_WhileLoop_EveryLabelReferenced(t *testing.T) {
	tree := &ast.Tree{
		FileName: "loop.ida",
		Target:   ast.X86_64,
		Functions: []ast.Func{
			{
				Name:       "countdown",
				ReturnType: ast.Void,
				Params:     []ast.Param{{Name: "n", DataType: ast.I32}},
				Body: []ast.Stmt{
					{
						Tag:  ast.While,
						Args: []ast.Arg{{Tag: ast.Id, Name: "n"}, {Tag: ast.OpGt}, {Tag: ast.IntL, U64Val: 0}},
						Body: []ast.Stmt{
							{Tag: ast.VarAssign, Name: "n", DataType: ast.I32, Args: []ast.Arg{
								{Tag: ast.Id, Name: "n"}, {Tag: ast.OpSub}, {Tag: ast.IntL, U64Val: 1},
							}},
						},
					},
					{Tag: ast.Return},
				},
			},
		},
	}
	file := buildOK(t, tree)

	if got := everyLabelIsReferenced(file); len(got) > 0 {
		t.Errorf("labels defined but never referenced: %v", got)
	}
}

func TestBuild_ReturnLiteral_FoldsToSingleMov(t *testing.T) {
	tree := &ast.Tree{
		FileName: "ret_lit.ida",
		Target:   ast.X86_64,
		Functions: []ast.Func{
			{
				Name:       "zero",
				ReturnType: ast.I32,
				Body: []ast.Stmt{
					{Tag: ast.Return, Args: []ast.Arg{{Tag: ast.IntL, U64Val: 0}}},
				},
			},
		},
	}
	file := buildOK(t, tree)

	tail := file.Code[len(file.Code)-2:]
	want := []ltac.Instr{
		{Op: ltac.Mov, Arg1: ltac.RetReg(ltac.RetRegI32), Arg2: ltac.I32Lt(0)},
		{Op: ltac.Ret},
	}
	for i := range want {
		if tail[i] != want[i] {
			t.Errorf("instr[%d] = %+v, want %+v", i, tail[i], want[i])
		}
	}
}

func TestBuild_Sizeof_UsesDeclaredTypeWidth(t *testing.T) {
	tree := &ast.Tree{
		FileName: "sizeof.ida",
		Target:   ast.X86_64,
		Functions: []ast.Func{
			{
				Name:       "width",
				ReturnType: ast.I32,
				Body: []ast.Stmt{
					{Tag: ast.VarDec, Name: "x", DataType: ast.I8},
					{Tag: ast.Return, Args: []ast.Arg{
						{Tag: ast.Sizeof, SubArgs: []ast.Arg{{Tag: ast.Id, Name: "x"}}},
					}},
				},
			},
		},
	}
	file := buildOK(t, tree)

	found := false
	for _, ins := range file.Code {
		if ins.Arg2 == ltac.I32Lt(1) {
			found = true
		}
		if ins.Arg2 == ltac.I32Lt(8) {
			t.Fatalf("sizeof(x) used the pointer-sized default instead of i8's width: %+v", ins)
		}
	}
	if !found {
		t.Fatal("expected sizeof(x) to lower to I32Lt(1), the byte width of i8")
	}
}

func TestBuild_ExitTerminatedFunction_NoMissingReturnError(t *testing.T) {
	tree := &ast.Tree{
		FileName: "exit.ida",
		Target:   ast.X86_64,
		Functions: []ast.Func{
			{
				Name:       "bail",
				ReturnType: ast.I32,
				Body: []ast.Stmt{
					{Tag: ast.Exit, Args: []ast.Arg{{Tag: ast.IntL, U64Val: 1}}},
				},
			},
		},
	}
	errs := lilaerr.New()
	file, err := New(tree.FileName, errs).Build(tree)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if errs.HasErrors() {
		t.Fatalf("Build() recorded errors: %v", errs.Errors())
	}
	last := file.Code[len(file.Code)-1]
	if last.Op != ltac.Exit {
		t.Errorf("last instruction = %+v, want Exit", last)
	}
}

func TestBuild_VoidFunctionEndingInExit_NoSpuriousRet(t *testing.T) {
	tree := &ast.Tree{
		FileName: "exit_void.ida",
		Target:   ast.X86_64,
		Functions: []ast.Func{
			{
				Name:       "die",
				ReturnType: ast.Void,
				Body: []ast.Stmt{
					{Tag: ast.Exit},
				},
			},
		},
	}
	file := buildOK(t, tree)
	last := file.Code[len(file.Code)-1]
	if last.Op != ltac.Exit {
		t.Errorf("last instruction = %+v, want Exit (no trailing Ret)", last)
	}
}

func TestBuild_MissingReturn_IsSemanticError(t *testing.T) {
	tree := &ast.Tree{
		FileName: "bad.ida",
		Target:   ast.X86_64,
		Functions: []ast.Func{
			{
				Name:       "f",
				ReturnType: ast.I32,
				Body:       []ast.Stmt{},
			},
		},
	}
	errs := lilaerr.New()
	_, err := New(tree.FileName, errs).Build(tree)
	if err == nil {
		t.Fatal("expected an error for a non-void function with no return")
	}
	if !errs.HasErrors() {
		t.Error("expected the error manager to record the missing-return error")
	}
}
