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

// lowerExpr lowers one infix expression (§4.1.2) assigned to a typed
// destination of type destType, at recursion level level (the top-level
// call uses level 1; parenthesized sub-expressions recurse at level+1, a
// fresh working register so the fold-back move can't clobber the
// enclosing expression's accumulator).
func (b *Builder) lowerExpr(args []ast.Arg, destType ast.DataType, level int) (ltac.Arg, error) {
	if lit, ok, err := b.foldLiteral(args, destType); ok {
		return lit, err
	}

	reg := regOpFor(destType, level)
	pendingOp := ltac.OpNone
	haveValue := false

	emitFirst := func(value ltac.Arg) {
		b.emitStore(destType, reg, value)
		haveValue = true
	}
	emitCombine := func(op ltac.Op, value ltac.Arg) {
		b.file.Emit(ltac.Instr{Op: op, Arg1: reg, Arg2: value})
		haveValue = true
	}
	apply := func(value ltac.Arg) {
		if pendingOp == ltac.OpNone {
			emitFirst(value)
		} else {
			emitCombine(pendingOp, value)
			pendingOp = ltac.OpNone
		}
	}

	i := 0
	for i < len(args) {
		a := args[i]
		switch a.Tag {
		case ast.LParen:
			j, err := matchParen(args, i)
			if err != nil {
				b.semErr(a.Line, a.LineText, "%v", err)
				return reg, nil
			}
			sub, err := b.lowerExpr(args[i+1:j], destType, level+1)
			if err != nil {
				return reg, err
			}
			apply(sub)
			i = j + 1
			continue

		case ast.RParen:
			b.semErr(a.Line, a.LineText, "unmatched closing parenthesis")
			i++
			continue

		case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod,
			ast.OpAnd, ast.OpOr, ast.OpXor, ast.OpShl, ast.OpShr,
			ast.OpEq, ast.OpNeq, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
			op, err := typedOpFor(a.Tag, destType)
			if err != nil {
				b.semErr(a.Line, a.LineText, "%v", err)
				i++
				continue
			}
			pendingOp = op
			i++
			continue

		case ast.OpNeg:
			if i+1 >= len(args) {
				b.semErr(a.Line, a.LineText, "unary negation missing operand")
				i++
				continue
			}
			if destType.IsUnsigned() {
				b.semErr(a.Line, a.LineText, "negation of unsigned type is not allowed")
				i += 2
				continue
			}
			next := args[i+1]
			switch next.Tag {
			case ast.IntL, ast.FloatL, ast.ByteL, ast.U8L, ast.I16L, ast.U16L:
				lit, err := b.litArg(next, destType, true)
				if err != nil {
					b.semErr(next.Line, next.LineText, "%v", err)
				} else {
					apply(lit)
				}
				i += 2
				continue
			case ast.Id:
				sym, ok := b.lookup(next.Name)
				if !ok {
					b.semErr(next.Line, next.LineText, "unknown identifier %q", next.Name)
					i += 2
					continue
				}
				zero := b.zeroLitFor(destType)
				emitFirst(zero)
				subOp, err := subOpFor(destType)
				if err != nil {
					b.semErr(next.Line, next.LineText, "%v", err)
				} else {
					b.file.Emit(ltac.Instr{Op: subOp, Arg1: reg, Arg2: ltac.MemOf(sym.offset)})
					haveValue = true
				}
				i += 2
				continue
			default:
				b.semErr(next.Line, next.LineText, "unsupported negation operand")
				i += 2
				continue
			}

		case ast.IntL, ast.FloatL, ast.ByteL, ast.U8L, ast.I16L, ast.U16L, ast.CharL, ast.StringL:
			lit, err := b.litArg(a, destType, false)
			if err != nil {
				b.semErr(a.Line, a.LineText, "%v", err)
				i++
				continue
			}
			apply(lit)
			i++

		case ast.Id, ast.LdArg:
			value, err := b.lowerIdOperand(a, destType)
			if err != nil {
				return reg, err
			}
			apply(value)
			i++

		case ast.Sizeof:
			apply(ltac.I32Lt(int64(b.sizeofOperand(a))))
			i++

		case ast.AddrOf:
			sym, ok := b.lookup(a.Name)
			if !ok {
				b.semErr(a.Line, a.LineText, "unknown identifier %q", a.Name)
				i++
				continue
			}
			b.file.Emit(ltac.Instr{Op: ltac.LdAddr, Arg1: reg, Arg2: ltac.MemOf(sym.offset)})
			haveValue = true
			i++

		default:
			b.semErr(a.Line, a.LineText, "unsupported expression atom")
			i++
		}
	}

	if !haveValue {
		b.semErr(0, "", "empty expression")
	}
	return reg, nil
}

// foldLiteral implements the post-compaction optimization of §4.1.2: an
// expression that reduces to a single literal atom, optionally negated, is
// returned as that literal directly instead of through an intermediate
// register, so the caller's own store ends up the only instruction
// emitted (e.g. "return 0" lowers to one Mov, not a Mov-then-Mov). Any
// error from resolving the literal (e.g. a range check) falls through to
// the general path so it gets reported the same way the slow path does.
func (b *Builder) foldLiteral(args []ast.Arg, destType ast.DataType) (ltac.Arg, bool, error) {
	switch {
	case len(args) == 1 && isLiteralTag(args[0].Tag):
		lit, err := b.litArg(args[0], destType, false)
		if err != nil {
			return ltac.Arg{}, false, nil
		}
		return lit, true, nil
	case len(args) == 2 && args[0].Tag == ast.OpNeg && isLiteralTag(args[1].Tag) && !destType.IsUnsigned():
		lit, err := b.litArg(args[1], destType, true)
		if err != nil {
			return ltac.Arg{}, false, nil
		}
		return lit, true, nil
	default:
		return ltac.Arg{}, false, nil
	}
}

func isLiteralTag(tag ast.ArgTag) bool {
	switch tag {
	case ast.IntL, ast.FloatL, ast.ByteL, ast.U8L, ast.I16L, ast.U16L, ast.CharL, ast.StringL:
		return true
	default:
		return false
	}
}

// lowerIdOperand resolves an Id/LdArg atom to its operand form: a plain
// scalar load from Mem, an array-element load via MemOffset*, a constant
// reference, or the RetReg* of a synthesized call (§4.1.2 step 2).
func (b *Builder) lowerIdOperand(a ast.Arg, destType ast.DataType) (ltac.Arg, error) {
	if sym, ok := b.lookup(a.Name); ok {
		if len(a.SubArgs) > 0 {
			operand, _, err := b.elementOperand(a.Name, a.SubArgs, a.Line, a.LineText)
			return operand, err
		}
		return ltac.MemOf(sym.offset), nil
	}
	if c, ok := b.constants[a.Name]; ok {
		lit, err := b.litArg(c.Value, c.DataType, false)
		return lit, err
	}
	if retType, ok := b.signatures[a.Name]; ok {
		// Synthesize an orphan FuncCall statement and recurse, then take
		// the result from the matching RetReg* pseudo-register.
		call := ast.Stmt{Tag: ast.FuncCall, Name: a.Name, Args: a.SubArgs, Line: a.Line, LineText: a.LineText}
		if err := b.lowerCall(&call); err != nil {
			return ltac.Arg{}, err
		}
		return retRegFor(retType), nil
	}
	b.semErr(a.Line, a.LineText, "unknown identifier %q", a.Name)
	return ltac.Arg{}, nil
}

// sizeofOperand resolves sizeof(x) to the byte width of x's declared type
// (§3's Types section), looking the identifier up in the current symbol
// table rather than assuming a fixed width.
func (b *Builder) sizeofOperand(a ast.Arg) int {
	if len(a.SubArgs) != 1 || a.SubArgs[0].Tag != ast.Id {
		return 0
	}
	sym, ok := b.lookup(a.SubArgs[0].Name)
	if !ok {
		b.semErr(a.Line, a.LineText, "unknown identifier %q", a.SubArgs[0].Name)
		return 0
	}
	return sym.dataType.Width()
}

// matchParen returns the index of the RParen matching the LParen at
// args[open].
func matchParen(args []ast.Arg, open int) (int, error) {
	depth := 0
	for i := open; i < len(args); i++ {
		switch args[i].Tag {
		case ast.LParen:
			depth++
		case ast.RParen:
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, errUnmatchedParen
}

var errUnmatchedParen = parenError{}

type parenError struct{}

func (parenError) Error() string { return "unmatched opening parenthesis" }
