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

// buildIfChain lowers one If possibly followed by sibling Elif/Else
// statements as a single chain (§4.1.5): a fresh "top" end-of-chain label
// and a fresh "next-branch" label per open condition; each conditional
// branches with the negated predicate to its next-branch label, and every
// branch's body that does not end in Ret or Exit closes with an
// unconditional jump to top. The top label is placed only when some branch
// jumps to it, so a chain ending in Else whose every branch returns leaves
// the Ret (or Exit) as the last emitted instruction.
func (b *Builder) buildIfChain(chain []ast.Stmt) error {
	top := b.newLabel()
	next := b.newLabel()
	jumpsToTop := false

	for i, s := range chain {
		if i > 0 {
			b.file.EmitLabel(next)
			if s.Tag != ast.Else {
				next = b.newLabel()
			}
		}
		if s.Tag == ast.If || s.Tag == ast.Elif {
			rel, isFloat, err := b.lowerCondition(s.Args, s.Line, s.LineText)
			if err != nil {
				return err
			}
			b.file.EmitBranch(negatedBranchOp(rel, isFloat), next)
		}
		if err := b.buildBody(s.Body); err != nil {
			return err
		}
		if last := b.file.Code[len(b.file.Code)-1].Op; last != ltac.Ret && last != ltac.Exit {
			b.file.EmitBranch(ltac.Br, top)
			jumpsToTop = true
		}
	}

	if chain[len(chain)-1].Tag != ast.Else {
		b.file.EmitLabel(next)
	}
	if jumpsToTop {
		b.file.EmitLabel(top)
	}
	return nil
}

// buildWhile lowers a While loop: three labels (comparison, body, end);
// Br cmp; Label body; <body>; Label cmp; <comparison>; Bcc body;
// Label end. The comparison and end labels become the continue/break
// targets registered for the current loop depth (§4.1.5).
func (b *Builder) buildWhile(s *ast.Stmt) error {
	cmpLabel := b.newLabel()
	bodyLabel := b.newLabel()
	endLabel := b.newLabel()

	b.file.EmitBranch(ltac.Br, cmpLabel)
	b.file.EmitLabel(bodyLabel)

	tail, err := b.deferWhileTail(s, cmpLabel, bodyLabel)
	if err != nil {
		return err
	}
	b.pushDeferredTail(tail)

	b.loopDepth++
	b.loopLabelsByDepth[b.loopDepth] = loopLabels{continueLabel: cmpLabel, breakLabel: endLabel}
	bodyErr := b.buildBody(s.Body)
	delete(b.loopLabelsByDepth, b.loopDepth)
	b.loopDepth--
	if bodyErr != nil {
		return bodyErr
	}

	if tailInstrs, ok := b.popDeferredTail(s.Line); ok {
		b.file.Code = append(b.file.Code, tailInstrs...)
	}
	b.file.EmitLabel(endLabel)
	return nil
}

// deferWhileTail lowers the comparison tail into a standalone instruction
// slice (without leaving it in the main code stream yet), the way the
// builder pushes a "deferred tail block" when a loop opens and appends it
// back on the matching block close (DESIGN.md "deferred code blocks").
func (b *Builder) deferWhileTail(s *ast.Stmt, cmpLabel, bodyLabel string) ([]ltac.Instr, error) {
	start := len(b.file.Code)
	b.file.EmitLabel(cmpLabel)
	rel, isFloat, err := b.lowerCondition(s.Args, s.Line, s.LineText)
	if err != nil {
		return nil, err
	}
	b.file.EmitBranch(directBranchOp(rel, isFloat), bodyLabel)
	tail := append([]ltac.Instr(nil), b.file.Code[start:]...)
	b.file.Code = b.file.Code[:start]
	return tail, nil
}

// buildFor dispatches to the range or foreach lowering depending on
// whether the loop's single argument is a Range atom.
func (b *Builder) buildFor(s *ast.Stmt) error {
	if len(s.Args) == 1 && s.Args[0].Tag == ast.Range {
		return b.buildForRange(s)
	}
	return b.buildForEach(s)
}

// buildForRange lowers "for i in a..b": an integer index slot initialized
// to a, a body label with no leading test (the loop always runs its
// first iteration), and a deferred tail that increments the index,
// compares it against b, and branches back (§4.1.5).
func (b *Builder) buildForRange(s *ast.Stmt) error {
	if len(s.Args[0].SubArgs) != 2 {
		b.semErr(s.Line, s.LineText, "range expression requires two bounds")
		return nil
	}
	idxOffset := b.allocSlot(ast.I32.Width())
	b.declare(s.Name, ast.I32, ast.Void, false, idxOffset)

	lowVal, err := b.lowerOperandAtom(s.Args[0].SubArgs[0:1], ast.I32)
	if err != nil {
		return err
	}
	b.emitStore(ast.I32, ltac.MemOf(idxOffset), lowVal)

	bodyLabel := b.newLabel()
	endLabel := b.newLabel()
	tailLabel := b.newLabel()
	b.file.EmitLabel(bodyLabel)

	highVal, err := b.lowerOperandAtom(s.Args[0].SubArgs[1:2], ast.I32)
	if err != nil {
		return err
	}

	start := len(b.file.Code)
	b.file.EmitLabel(tailLabel)
	b.file.Emit(ltac.Instr{Op: ltac.I32Add, Arg1: ltac.MemOf(idxOffset), Arg2: ltac.I32Lt(1)})
	b.file.Emit(ltac.Instr{Op: ltac.I32Cmp, Arg1: ltac.MemOf(idxOffset), Arg2: highVal})
	b.file.EmitBranch(ltac.Bl, bodyLabel)
	tail := append([]ltac.Instr(nil), b.file.Code[start:]...)
	b.file.Code = b.file.Code[:start]
	b.pushDeferredTail(tail)

	b.loopDepth++
	b.loopLabelsByDepth[b.loopDepth] = loopLabels{continueLabel: tailLabel, breakLabel: endLabel}
	bodyErr := b.buildBody(s.Body)
	delete(b.loopLabelsByDepth, b.loopDepth)
	b.loopDepth--
	if bodyErr != nil {
		return bodyErr
	}

	if tailInstrs, ok := b.popDeferredTail(s.Line); ok {
		b.file.Code = append(b.file.Code, tailInstrs...)
	}
	b.file.EmitLabel(endLabel)
	return nil
}

// buildForEach lowers "for x in arr": a user-visible element slot and a
// hidden counter slot; the body prologue loads arr[counter] into the
// element slot, and the deferred tail increments the counter and compares
// it against the array's length, stored at arr.slot-8 (§4.1.5).
func (b *Builder) buildForEach(s *ast.Stmt) error {
	arrName := s.Args[0].Name
	arrSym, ok := b.lookup(arrName)
	if !ok {
		b.semErr(s.Line, s.LineText, "unknown identifier %q", arrName)
		return nil
	}
	elemType := arrSym.subType
	elemWidth := elemType.Width()
	if elemWidth == 0 {
		elemWidth = 1
	}

	elemOffset := b.allocSlot(elemWidth)
	b.declare(s.Name, elemType, ast.Void, false, elemOffset)

	counterName := "$counter$" + s.Name
	counterOffset := b.allocSlot(ast.I32.Width())
	b.declare(counterName, ast.I32, ast.Void, false, counterOffset)
	b.file.Emit(ltac.Instr{Op: ltac.Mov, Arg1: ltac.MemOf(counterOffset), Arg2: ltac.I32Lt(0)})

	bodyLabel := b.newLabel()
	endLabel := b.newLabel()
	tailLabel := b.newLabel()
	b.file.EmitLabel(bodyLabel)
	b.emitStore(elemType, ltac.MemOf(elemOffset), ltac.MemOffsetMemOf(arrSym.offset, counterOffset, elemWidth))

	start := len(b.file.Code)
	b.file.EmitLabel(tailLabel)
	b.file.Emit(ltac.Instr{Op: ltac.I32Add, Arg1: ltac.MemOf(counterOffset), Arg2: ltac.I32Lt(1)})
	b.file.Emit(ltac.Instr{Op: ltac.I32Cmp, Arg1: ltac.MemOf(counterOffset), Arg2: ltac.MemOf(arrSym.offset - 8)})
	b.file.EmitBranch(ltac.Bl, bodyLabel)
	tail := append([]ltac.Instr(nil), b.file.Code[start:]...)
	b.file.Code = b.file.Code[:start]
	b.pushDeferredTail(tail)

	b.loopDepth++
	b.loopLabelsByDepth[b.loopDepth] = loopLabels{continueLabel: tailLabel, breakLabel: endLabel}
	bodyErr := b.buildBody(s.Body)
	delete(b.loopLabelsByDepth, b.loopDepth)
	b.loopDepth--
	if bodyErr != nil {
		return bodyErr
	}

	if tailInstrs, ok := b.popDeferredTail(s.Line); ok {
		b.file.Code = append(b.file.Code, tailInstrs...)
	}
	b.file.EmitLabel(endLabel)
	return nil
}

// buildBreak emits Br to the break target of the current loop depth.
func (b *Builder) buildBreak(s *ast.Stmt) error {
	labels, ok := b.loopLabelsByDepth[b.loopDepth]
	if !ok {
		b.semErr(s.Line, s.LineText, "break outside of a loop")
		return nil
	}
	b.file.EmitBranch(ltac.Br, labels.breakLabel)
	return nil
}

// buildContinue emits Br to the continue target of the current loop depth.
func (b *Builder) buildContinue(s *ast.Stmt) error {
	labels, ok := b.loopLabelsByDepth[b.loopDepth]
	if !ok {
		b.semErr(s.Line, s.LineText, "continue outside of a loop")
		return nil
	}
	b.file.EmitBranch(ltac.Br, labels.continueLabel)
	return nil
}
