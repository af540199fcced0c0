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

package types_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"lodelang.org/go/internal/core/term"
	"lodelang.org/go/internal/core/types"
	"lodelang.org/go/lode/ast"
)

func TestTypeString(t *testing.T) {
	arrow := func(dom, cod types.Type) types.Type { return &types.Arrow{Dom: dom, Cod: cod} }

	testCases := []struct {
		typ  types.Type
		want string
	}{
		{types.Dyn, "Dyn"},
		{types.Number, "Number"},
		{&types.List{Elem: types.Number}, "List Number"},
		{&types.List{Elem: &types.List{Elem: types.Number}}, "List (List Number)"},
		{&types.List{Elem: arrow(types.Number, types.Bool)}, "List (Number -> Bool)"},
		{arrow(types.Number, arrow(types.Number, types.Bool)), "Number -> Number -> Bool"},
		{arrow(arrow(types.Number, types.Number), types.Bool), "(Number -> Number) -> Bool"},
		{&types.Forall{Var: "a", Body: arrow(&types.Var{Name: "a"}, &types.Var{Name: "a"})}, "forall a. a -> a"},
		{arrow(&types.Forall{Var: "a", Body: &types.Var{Name: "a"}}, types.Bool), "(forall a. a) -> Bool"},
		{&types.Flat{Src: &ast.Apply{
			Fn:  &ast.Apply{Fn: ast.NewIdent("between"), Arg: &ast.BasicLit{Value: "1"}},
			Arg: &ast.BasicLit{Value: "10"},
		}}, "between 1 10"},
		{&types.Flat{Src: &ast.SelectorExpr{X: ast.NewIdent("num"), Sel: ast.NewIdent("nat")}}, "num.nat"},
		{&types.Flat{}, "<contract>"},
	}
	for _, tc := range testCases {
		qt.Assert(t, qt.Equals(tc.typ.String(), tc.want))
	}
}

func TestPredeclared(t *testing.T) {
	qt.Assert(t, qt.Equals(types.Predeclared["Number"], types.Number))
	qt.Assert(t, qt.Equals(types.Predeclared["Dyn"], types.Dyn))
	_, ok := types.Predeclared["List"]
	qt.Assert(t, qt.IsFalse(ok))
}

// subterms returns t and every reachable subterm in preorder. Derived
// contracts contain only functions, applications, and operators.
func subterms(t term.Term) []term.Term {
	var out []term.Term
	var walk func(term.Term)
	walk = func(x term.Term) {
		if x == nil {
			return
		}
		out = append(out, x)
		switch x := x.(type) {
		case *term.Fun:
			walk(x.Body)
		case *term.App:
			walk(x.Fn)
			walk(x.Arg)
		case *term.Op1:
			walk(x.X)
		case *term.Op2:
			walk(x.X)
			walk(x.Y)
		}
	}
	walk(t)
	return out
}

func labels(t term.Term) []term.Label {
	var out []term.Label
	for _, x := range subterms(t) {
		if lbl, ok := x.(*term.Lbl); ok {
			out = append(out, lbl.L)
		}
	}
	return out
}

func TestContractDyn(t *testing.T) {
	c := types.Contract(types.Dyn, term.NewLabel("Dyn", nil))
	fn, ok := c.(*term.Fun)
	qt.Assert(t, qt.IsTrue(ok))
	v, ok := fn.Body.(*term.Var)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(v.Name, fn.Param))
	qt.Assert(t, qt.HasLen(labels(c), 0))
}

func TestContractShape(t *testing.T) {
	l := term.NewLabel("Number", nil)
	c := types.Contract(types.Number, l)

	_, ok := c.(*term.Fun)
	qt.Assert(t, qt.IsTrue(ok))

	var tests, blames int
	for _, x := range subterms(c) {
		if op, ok := x.(*term.Op1); ok {
			switch op.Op {
			case term.IsNumOp:
				tests++
			case term.BlameOp:
				blames++
			}
		}
	}
	qt.Assert(t, qt.Equals(tests, 1))
	qt.Assert(t, qt.Equals(blames, 1))

	ls := labels(c)
	qt.Assert(t, qt.HasLen(ls, 1))
	qt.Assert(t, qt.Equals(ls[0].Tag, "Number"))
	qt.Assert(t, qt.IsTrue(ls[0].Polarity))
}

func TestContractArrowLabels(t *testing.T) {
	l := term.NewLabel("Number -> Bool", nil)
	c := types.Contract(&types.Arrow{Dom: types.Number, Cod: types.Bool}, l)

	byPath := map[string]term.Label{}
	for _, lbl := range labels(c) {
		byPath[lbl.PathString()] = lbl
	}
	qt.Assert(t, qt.HasLen(byPath, 3))

	// The top-level check blames the value for not being a function.
	qt.Assert(t, qt.IsTrue(byPath[""].Polarity))
	// A domain failure blames the caller.
	qt.Assert(t, qt.IsFalse(byPath["domain"].Polarity))
	// A codomain failure blames the function.
	qt.Assert(t, qt.IsTrue(byPath["codomain"].Polarity))
}

func TestContractForall(t *testing.T) {
	id := &types.Forall{Var: "a", Body: &types.Arrow{
		Dom: &types.Var{Name: "a"},
		Cod: &types.Var{Name: "a"},
	}}
	c := types.Contract(id, term.NewLabel("forall a. a -> a", nil))

	var seal, unseal *term.Sym
	for _, x := range subterms(c) {
		op, ok := x.(*term.Op2)
		if !ok {
			continue
		}
		switch op.Op {
		case term.SealOp:
			seal = op.X.(*term.Sym)
		case term.UnsealOp:
			unseal = op.X.(*term.Sym)
		}
	}
	qt.Assert(t, qt.IsNotNil(seal))
	qt.Assert(t, qt.IsNotNil(unseal))
	qt.Assert(t, qt.Equals(seal.Key, unseal.Key))

	// A second derivation mints a fresh key, keeping unrelated uses of
	// the same annotation from unsealing each other's values.
	c2 := types.Contract(id, term.NewLabel("forall a. a -> a", nil))
	var seal2 *term.Sym
	for _, x := range subterms(c2) {
		if op, ok := x.(*term.Op2); ok && op.Op == term.SealOp {
			seal2 = op.X.(*term.Sym)
		}
	}
	qt.Assert(t, qt.IsNotNil(seal2))
	qt.Assert(t, qt.Not(qt.Equals(seal2.Key, seal.Key)))
}

func TestContractFlat(t *testing.T) {
	pred := &term.Var{Name: "nat"}
	l := term.NewLabel("nat", nil)
	c := types.Contract(&types.Flat{Term: pred, Src: ast.NewIdent("nat")}, l)

	app, ok := c.(*term.App)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(app.Fn, term.Term(pred)))
	lbl, ok := app.Arg.(*term.Lbl)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(lbl.L.Tag, "nat"))
}

func TestContractList(t *testing.T) {
	l := term.NewLabel("List Number", nil)
	c := types.Contract(&types.List{Elem: types.Number}, l)

	var maps int
	for _, x := range subterms(c) {
		if op, ok := x.(*term.Op2); ok && op.Op == term.MapOp {
			maps++
			// The element check is the mapped function.
			_, ok := op.X.(*term.Fun)
			qt.Assert(t, qt.IsTrue(ok))
		}
	}
	qt.Assert(t, qt.Equals(maps, 1))
}
