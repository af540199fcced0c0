// Copyright 2024 The Lode Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package compile

import (
	"lodelang.org/go/internal/core/term"
	"lodelang.org/go/lode/ast"
)

// The predeclared operator identifiers. They are ordinary names, not
// keywords: a binding of the same name shadows the operator. seal and
// unseal are deliberately absent; they exist only inside derived
// contracts, where user code cannot forge sealing keys.
var (
	builtin1 = map[string]term.UnaryOp{
		"isnum":    term.IsNumOp,
		"isbool":   term.IsBoolOp,
		"isstr":    term.IsStrOp,
		"isfun":    term.IsFunOp,
		"isrecord": term.IsRecordOp,
		"islist":   term.IsListOp,
		"blame":    term.BlameOp,
		"head":     term.HeadOp,
		"tail":     term.TailOp,
		"length":   term.LengthOp,
		"fieldsof": term.FieldsOfOp,
		"embed":    term.EmbedOp,
	}

	builtin2 = map[string]term.BinaryOp{
		"seq":      term.SeqOp,
		"deepseq":  term.DeepSeqOp,
		"elemat":   term.ElemAtOp,
		"map":      term.MapOp,
		"hasfield": term.HasFieldOp,
		"merge":    term.MergeOp,
	}
)

// eta1 wraps a unary operator as a function so it can be passed around
// unapplied.
func eta1(src ast.Node, op term.UnaryOp) term.Term {
	return &term.Fun{Src: src, Param: "%x", Body: &term.Op1{Src: src, Op: op, X: &term.Var{Name: "%x"}}}
}

// eta2 wraps a binary operator as a curried function.
func eta2(src ast.Node, op term.BinaryOp) term.Term {
	return &term.Fun{Src: src, Param: "%x", Body: &term.Fun{Src: src, Param: "%y", Body: &term.Op2{Src: src, Op: op, X: &term.Var{Name: "%x"}, Y: &term.Var{Name: "%y"}}}}
}
