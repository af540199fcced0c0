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

package ast

import "fmt"

// Walk traverses an AST in depth-first order: it starts by calling before;
// if before returns true, Walk invokes itself recursively for each of the
// non-nil children of node, followed by a call of after, if not nil.
func Walk(node Node, before func(Node) bool, after func(Node)) {
	if before != nil && !before(node) {
		return
	}

	switch n := node.(type) {
	case *BadExpr, *Ident, *BasicLit, *BadType:
		// nothing to do

	case *FunExpr:
		for _, p := range n.Params {
			Walk(p, before, after)
		}
		Walk(n.Body, before, after)

	case *LetExpr:
		Walk(n.Ident, before, after)
		if n.Meta != nil {
			walkMeta(n.Meta, before, after)
		}
		Walk(n.Value, before, after)
		Walk(n.Body, before, after)

	case *IfExpr:
		Walk(n.Cond, before, after)
		Walk(n.Then, before, after)
		Walk(n.Else, before, after)

	case *Apply:
		Walk(n.Fn, before, after)
		Walk(n.Arg, before, after)

	case *UnaryExpr:
		Walk(n.X, before, after)

	case *BinaryExpr:
		Walk(n.X, before, after)
		Walk(n.Y, before, after)

	case *AnnotExpr:
		Walk(n.X, before, after)
		walkMeta(n.Meta, before, after)

	case *RecordLit:
		for _, f := range n.Fields {
			Walk(f, before, after)
		}

	case *Field:
		Walk(n.Label, before, after)
		if n.Meta != nil {
			walkMeta(n.Meta, before, after)
		}
		Walk(n.Value, before, after)

	case *ListLit:
		for _, e := range n.Elts {
			Walk(e, before, after)
		}

	case *SelectorExpr:
		Walk(n.X, before, after)
		Walk(n.Sel, before, after)

	case *ParenExpr:
		Walk(n.X, before, after)

	case *NamedType:
		Walk(n.Ident, before, after)

	case *ArrowType:
		Walk(n.Dom, before, after)
		Walk(n.Cod, before, after)

	case *ListType:
		if n.Elem != nil {
			Walk(n.Elem, before, after)
		}

	case *ForallType:
		Walk(n.Var, before, after)
		Walk(n.Body, before, after)

	case *ContractType:
		Walk(n.X, before, after)

	case *Input:
		if n.Ident != nil {
			Walk(n.Ident, before, after)
		}
		if n.Meta != nil {
			walkMeta(n.Meta, before, after)
		}
		Walk(n.X, before, after)

	default:
		panic(fmt.Sprintf("ast.Walk: unexpected node type %T", n))
	}

	if after != nil {
		after(node)
	}
}

func walkMeta(m *Metadata, before func(Node) bool, after func(Node)) {
	if m.Doc != nil {
		Walk(m.Doc, before, after)
	}
	for _, a := range m.Types {
		Walk(a.Type, before, after)
	}
}
