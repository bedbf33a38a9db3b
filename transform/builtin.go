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

// Package transform implements the three target-independent LTAC-to-LTAC
// passes: builtin lowering, RISC shape normalization, and RISC-V quirks.
// Each pass is a pure function from one ltac.File to a freshly built one;
// none mutate their input (§5 of the specification).
package transform

import (
	"github.com/ida-lang/lilac/ast"
	"github.com/ida-lang/lilac/ltac"
)

// syscallNumbers returns the target-dependent Linux syscall numbers for
// exit, mmap, and munmap (§4.2).
func syscallNumbers(target ast.Target) (exit, mmap, munmap int) {
	switch target {
	case ast.X86_64:
		return 60, 9, 11
	case ast.AArch64, ast.RISCV64:
		return 93, 222, 215
	default:
		return 60, 9, 11
	}
}

// Builtin rewrites Exit/Malloc/Free pseudo-instructions according to
// useLibc. The builder always emits the matching PushArg(s) immediately
// before each of these three opcodes, so the rewrite pops the tail of the
// already-built output rather than re-deriving the operand from scratch.
// mallocSizes is consulted (and, for a no-libc Free, only read — it is
// populated by the builder at Malloc-build time) to recover the byte size
// saved for a dynamic-array slot so munmap can be synthesized (§4.2).
func Builtin(file *ltac.File, target ast.Target, useLibc bool, mallocSizes map[int]int) *ltac.File {
	out := &ltac.File{Name: file.Name, Data: file.Data}
	exitNum, mmapNum, munmapNum := syscallNumbers(target)

	for _, ins := range file.Code {
		switch ins.Op {
		case ltac.Exit:
			push := popLast(out)
			if useLibc {
				out.Code = append(out.Code, push, ltac.Instr{Op: ltac.Call, Name: "exit"})
			} else {
				out.Code = append(out.Code,
					ltac.Instr{Op: ltac.KPushArg, Arg1: ltac.I32Lt(int64(exitNum)), Arg2Val: 1},
					ltac.Instr{Op: ltac.KPushArg, Arg1: push.Arg1, Arg2Val: 2},
					ltac.Instr{Op: ltac.Syscall},
				)
			}

		case ltac.Malloc:
			if useLibc {
				out.Code = append(out.Code, ltac.Instr{Op: ltac.Call, Name: "malloc"})
				continue
			}
			push := popLast(out)
			out.Code = append(out.Code,
				ltac.Instr{Op: ltac.KPushArg, Arg1: ltac.I32Lt(int64(mmapNum)), Arg2Val: 1},
				ltac.Instr{Op: ltac.KPushArg, Arg1: ltac.I64Lt(0), Arg2Val: 2},
				ltac.Instr{Op: ltac.KPushArg, Arg1: push.Arg1, Arg2Val: 3},
				ltac.Instr{Op: ltac.KPushArg, Arg1: ltac.I32Lt(3), Arg2Val: 4},
				ltac.Instr{Op: ltac.KPushArg, Arg1: ltac.I32Lt(34), Arg2Val: 5},
				ltac.Instr{Op: ltac.KPushArg, Arg1: ltac.I32Lt(-1), Arg2Val: 6},
				ltac.Instr{Op: ltac.KPushArg, Arg1: ltac.I64Lt(0), Arg2Val: 7},
				ltac.Instr{Op: ltac.Syscall},
			)

		case ltac.Free:
			if useLibc {
				out.Code = append(out.Code, ltac.Instr{Op: ltac.Call, Name: "free"})
				continue
			}
			push := popLast(out)
			size := mallocSizes[push.Arg1.N]
			out.Code = append(out.Code,
				ltac.Instr{Op: ltac.KPushArg, Arg1: ltac.I32Lt(int64(munmapNum)), Arg2Val: 1},
				ltac.Instr{Op: ltac.KPushArg, Arg1: push.Arg1, Arg2Val: 2},
				ltac.Instr{Op: ltac.KPushArg, Arg1: ltac.I64Lt(int64(size)), Arg2Val: 3},
				ltac.Instr{Op: ltac.Syscall},
			)

		default:
			out.Code = append(out.Code, ins)
		}
	}
	return out
}

// popLast removes and returns the most recently appended instruction; used
// to recover the PushArg the builder always places immediately before an
// Exit/Malloc/Free pseudo-instruction.
func popLast(out *ltac.File) ltac.Instr {
	last := out.Code[len(out.Code)-1]
	out.Code = out.Code[:len(out.Code)-1]
	return last
}
