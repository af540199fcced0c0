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

package types

import (
	"fmt"
	"strings"

	"lodelang.org/go/lode/ast"
)

// exprString renders a contract expression roughly as written, for
// error messages and metadata queries. It is best effort: shapes that
// rarely appear in annotations render as an ellipsis.
func exprString(e ast.Expr) string {
	switch x := e.(type) {
	case *ast.Ident:
		return x.Name
	case *ast.BasicLit:
		return x.Value
	case *ast.SelectorExpr:
		name, ok := ast.LabelName(x.Sel)
		if !ok {
			name = "…"
		}
		return exprString(x.X) + "." + name
	case *ast.Apply:
		return exprString(x.Fn) + " " + argString(x.Arg)
	case *ast.ParenExpr:
		return "(" + exprString(x.X) + ")"
	case *ast.UnaryExpr:
		return x.Op.String() + argString(x.X)
	case *ast.BinaryExpr:
		return fmt.Sprintf("%s %s %s", exprString(x.X), x.Op, exprString(x.Y))
	case *ast.FunExpr:
		params := make([]string, len(x.Params))
		for i, p := range x.Params {
			params[i] = p.Name
		}
		return fmt.Sprintf("fun %s => %s", strings.Join(params, " "), exprString(x.Body))
	case *ast.ListLit:
		elems := make([]string, len(x.Elts))
		for i, e := range x.Elts {
			elems[i] = exprString(e)
		}
		return "[" + strings.Join(elems, ", ") + "]"
	case *ast.IfExpr:
		return fmt.Sprintf("if %s then %s else %s",
			exprString(x.Cond), exprString(x.Then), exprString(x.Else))
	case *ast.LetExpr:
		return fmt.Sprintf("let %s = %s in %s",
			x.Ident.Name, exprString(x.Value), exprString(x.Body))
	case *ast.AnnotExpr:
		return exprString(x.X)
	case *ast.RecordLit:
		return "{…}"
	}
	return "…"
}

// argString parenthesizes expressions that would not parse back as a
// juxtaposition argument.
func argString(e ast.Expr) string {
	switch e.(type) {
	case *ast.Ident, *ast.BasicLit, *ast.SelectorExpr, *ast.ParenExpr,
		*ast.ListLit, *ast.RecordLit:
		return exprString(e)
	}
	return "(" + exprString(e) + ")"
}
