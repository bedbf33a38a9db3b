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
	"github.com/ida-lang/lilac/ast"
	"github.com/ida-lang/lilac/ltac"
)

// buildCallStmt lowers a call used as a standalone statement (its result,
// if any, discarded) and returns the RetReg* the call leaves its result
// in, for callers (currently none at statement level) that want it.
func (b *Builder) buildCallStmt(s *ast.Stmt) (ltac.Arg, error) {
	if err := b.lowerCall(s); err != nil {
		return ltac.Arg{}, err
	}
	retType := b.signatures[s.Name]
	return retRegFor(retType), nil
}

// lowerCall lowers one call's arguments to PushArg instructions, each
// carrying an independent int/float argument position (mirroring
// buildParam's LdArg counters), and emits the Call terminator (§4.1.7). A
// ptr-typed argument additionally pushes its length from offset-8, just
// as a ptr parameter loads an extra length argument.
func (b *Builder) lowerCall(call *ast.Stmt) error {
	intPos, fltPos := 1, 1
	for _, a := range call.Args {
		dt := b.compareDataType([]ast.Arg{a})
		val, err := b.lowerOperandAtom([]ast.Arg{a}, dt)
		if err != nil {
			return err
		}

		if dt.IsFloat() {
			b.file.Emit(ltac.Instr{Op: ltac.PushArg, Arg1: val, Arg2Val: fltPos})
			fltPos++
			continue
		}

		b.file.Emit(ltac.Instr{Op: ltac.PushArg, Arg1: val, Arg2Val: intPos})
		intPos++
		if dt == ast.Ptr && a.Tag == ast.Id {
			if sym, ok := b.lookup(a.Name); ok {
				b.file.Emit(ltac.Instr{Op: ltac.PushArg, Arg1: ltac.MemOf(sym.offset - 8), Arg2Val: intPos})
				intPos++
			}
		}
	}
	b.file.Emit(ltac.Instr{Op: ltac.Call, Name: call.Name})
	return nil
}

// buildReturn lowers a Return statement: a non-void function's expression
// is stored into the matching RetReg*, every exit path gets its pending
// ptr Frees emitted, and a Ret terminates the function (§4.1.7). Mismatch
// between a present/absent return expression and the function's declared
// return type is a semantic error.
func (b *Builder) buildReturn(s *ast.Stmt) error {
	if b.curRetType == ast.Void {
		if len(s.Args) > 0 {
			b.semErr(s.Line, s.LineText, "function %q returns void but a value was returned", b.curFunc)
		}
		b.emitFrees()
		b.file.EmitOp(ltac.Ret)
		return nil
	}

	if len(s.Args) == 0 {
		b.semErr(s.Line, s.LineText, "function %q must return a value of type", b.curFunc)
		return nil
	}

	value, err := b.lowerExpr(s.Args, b.curRetType, 1)
	if err != nil {
		return err
	}
	b.emitStore(b.curRetType, retRegFor(b.curRetType), value)
	b.emitFrees()
	b.file.EmitOp(ltac.Ret)
	return nil
}

// buildExit lowers the Exit pseudo-instruction: its argument (or 0, if
// omitted) is pushed as the sole call argument, after the pending ptr
// Frees, and the Exit opcode
// terminates the instruction stream for this path. transform.Builtin
// later rewrites Exit into a libc call or a raw exit syscall (§4.1.7,
// §4.2).
func (b *Builder) buildExit(s *ast.Stmt) error {
	code := ltac.I32Lt(0)
	if len(s.Args) > 0 {
		v, err := b.lowerOperandAtom(s.Args, ast.I32)
		if err != nil {
			return err
		}
		code = v
	}
	b.emitFrees()
	b.file.Emit(ltac.Instr{Op: ltac.PushArg, Arg1: code, Arg2Val: 1})
	b.file.EmitOp(ltac.Exit)
	return nil
}
