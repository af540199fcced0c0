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

package parser

import (
	"fmt"

	"lodelang.org/go/lode/ast"
)

// debugStr formats a node as a compact single-line string for tests.
// Binary, unary, and application nodes are fully parenthesized to make the
// parsed structure visible; parenthesized expressions print transparently.
// Metadata clauses print in canonical order: default, doc, then types.
func debugStr(x interface{}) string {
	switch v := x.(type) {
	case nil:
		return ""

	case *ast.Input:
		if v.IsLet() {
			return "let " + v.Ident.Name + metaStr(v.Meta) + "=" + debugStr(v.X)
		}
		return debugStr(v.X)

	case *ast.Ident:
		return v.Name

	case *ast.BasicLit:
		return v.Value

	case *ast.FunExpr:
		out := "fun"
		for _, q := range v.Params {
			out += " " + q.Name
		}
		return out + " => " + debugStr(v.Body)

	case *ast.LetExpr:
		return "let " + v.Ident.Name + metaStr(v.Meta) +
			"=" + debugStr(v.Value) + " in " + debugStr(v.Body)

	case *ast.IfExpr:
		return "if " + debugStr(v.Cond) +
			" then " + debugStr(v.Then) +
			" else " + debugStr(v.Else)

	case *ast.Apply:
		return "(" + debugStr(v.Fn) + " " + debugStr(v.Arg) + ")"

	case *ast.UnaryExpr:
		return "(" + v.Op.String() + debugStr(v.X) + ")"

	case *ast.BinaryExpr:
		return "(" + debugStr(v.X) + v.Op.String() + debugStr(v.Y) + ")"

	case *ast.AnnotExpr:
		return debugStr(v.X) + metaStr(v.Meta)

	case *ast.RecordLit:
		out := "{"
		for i, f := range v.Fields {
			if i > 0 {
				out += ", "
			}
			out += debugStr(f)
		}
		return out + "}"

	case *ast.Field:
		out := labelStr(v.Label) + metaStr(v.Meta)
		if v.Value != nil {
			out += "=" + debugStr(v.Value)
		}
		return out

	case *ast.ListLit:
		out := "["
		for i, e := range v.Elts {
			if i > 0 {
				out += ", "
			}
			out += debugStr(e)
		}
		return out + "]"

	case *ast.SelectorExpr:
		return debugStr(v.X) + "." + labelStr(v.Sel)

	case *ast.ParenExpr:
		return debugStr(v.X)

	case *ast.BadExpr:
		return "<bad>"

	case *ast.NamedType:
		return v.Ident.Name

	case *ast.ArrowType:
		return "(" + debugStr(v.Dom) + "->" + debugStr(v.Cod) + ")"

	case *ast.ListType:
		if v.Elem == nil {
			return "List"
		}
		return "(List " + debugStr(v.Elem) + ")"

	case *ast.ForallType:
		return "(forall " + v.Var.Name + ". " + debugStr(v.Body) + ")"

	case *ast.ContractType:
		return debugStr(v.X)

	case *ast.BadType:
		return "<bad>"

	default:
		return fmt.Sprintf("<%T>", x)
	}
}

func labelStr(l ast.Label) string {
	switch v := l.(type) {
	case *ast.Ident:
		return v.Name
	case *ast.BasicLit:
		return v.Value
	}
	return fmt.Sprintf("<%T>", l)
}

func metaStr(m *ast.Metadata) string {
	if m == nil {
		return ""
	}
	out := ""
	if m.HasDefault() {
		out += "|default"
	}
	if m.Doc != nil {
		out += "|doc(" + m.Doc.Value + ")"
	}
	for _, t := range m.Types {
		if t.Static {
			out += ":"
		} else {
			out += "|"
		}
		out += debugStr(t.Type)
	}
	return out
}
