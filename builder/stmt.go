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
)

// buildStmt dispatches one statement to its lowering routine. Frontend
// block structure is consumed as nested Stmt.Body slices (rather than a
// flat stream with explicit Begin/End tokens); ast.End is therefore never
// seen in a Body slice the builder walks here — block closing is driven
// structurally by recursion returning, not by an End tag (see DESIGN.md,
// "block representation" open question).
func (b *Builder) buildStmt(s *ast.Stmt) error {
	switch s.Tag {
	case ast.VarDec:
		return b.buildVarDec(s)
	case ast.VarAssign:
		return b.buildVarAssign(s)
	case ast.ArrayAssign:
		return b.buildArrayAssign(s)
	case ast.If:
		return b.buildIfChain([]ast.Stmt{*s})
	case ast.Elif, ast.Else:
		// Only reached if an Elif/Else appears without a preceding If in
		// the same block, which buildBody's run-grouping never produces;
		// treat defensively as a standalone chain of one.
		return b.buildIfChain([]ast.Stmt{*s})
	case ast.While:
		return b.buildWhile(s)
	case ast.For:
		return b.buildFor(s)
	case ast.Break:
		return b.buildBreak(s)
	case ast.Continue:
		return b.buildContinue(s)
	case ast.FuncCall:
		_, err := b.buildCallStmt(s)
		return err
	case ast.Return:
		return b.buildReturn(s)
	case ast.Exit:
		return b.buildExit(s)
	case ast.End:
		// Vestigial: accepted for AST fidelity, never emitted by the
		// nested-Body walk; treat as a no-op rather than an error.
		return nil
	default:
		b.semErr(s.Line, s.LineText, "unknown statement tag %v", s.Tag)
		return nil
	}
}

// buildBody lowers every statement in a nested block in order, grouping
// a leading If together with any immediately following sibling Elif/Else
// statements into a single chain (§4.1.5).
func (b *Builder) buildBody(body []ast.Stmt) error {
	i := 0
	for i < len(body) {
		if body[i].Tag == ast.If {
			j := i + 1
			for j < len(body) && (body[j].Tag == ast.Elif || body[j].Tag == ast.Else) {
				j++
			}
			if err := b.buildIfChain(body[i:j]); err != nil {
				return err
			}
			i = j
			continue
		}
		if err := b.buildStmt(&body[i]); err != nil {
			return err
		}
		i++
	}
	return nil
}
