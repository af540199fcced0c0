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

import "lodelang.org/go/internal/core/term"

// Contract derives the checking term for a type annotated with label l.
// The result is a one-argument function term: applied to a value, it
// either returns the (possibly wrapped) value or blames.
//
// All labels are baked into the derived term, pre-stepped for the
// positions they guard: the domain side of an arrow carries a flipped
// label, so a bad argument blames the caller of the annotated function
// rather than the function. A forall mints one sealing key per type
// variable; occurrences seal in negative position and unseal in
// positive position, which is what makes polymorphic contracts
// parametric.
func Contract(t Type, l term.Label) term.Term {
	return contract(t, l, true, nil)
}

func contract(t Type, l term.Label, pos bool, syms map[string]*term.Sym) term.Term {
	switch x := t.(type) {
	case *Prim:
		switch x {
		case Number:
			return shapeCheck(term.IsNumOp, l)
		case Bool:
			return shapeCheck(term.IsBoolOp, l)
		case String:
			return shapeCheck(term.IsStrOp, l)
		}
		// Dyn accepts everything.
		return identity()

	case *List:
		elem := contract(x.Elem, l, pos, syms)
		v := &term.Var{Name: "%v"}
		return fun("%v", ite(
			&term.Op1{Op: term.IsListOp, X: v},
			&term.Op2{Op: term.MapOp, X: elem, Y: v},
			blame(l),
		))

	case *Arrow:
		dom := contract(x.Dom, l.GoDom(), !pos, syms)
		cod := contract(x.Cod, l.GoCodom(), pos, syms)
		f := &term.Var{Name: "%f"}
		arg := &term.Var{Name: "%x"}
		wrapped := fun("%x",
			app(cod, app(f, app(dom, arg))))
		return fun("%f", ite(
			&term.Op1{Op: term.IsFunOp, X: f},
			wrapped,
			blame(l),
		))

	case *Var:
		sym, ok := syms[x.Name]
		if !ok {
			// A free type variable cannot occur in compiled code;
			// accept rather than mint an unusable key.
			return identity()
		}
		op := term.UnsealOp
		if !pos {
			op = term.SealOp
		}
		v := &term.Var{Name: "%v"}
		return fun("%v", &term.Op2{Op: op, X: sym, Y: v})

	case *Forall:
		inner := make(map[string]*term.Sym, len(syms)+1)
		for name, sym := range syms {
			inner[name] = sym
		}
		inner[x.Var] = &term.Sym{Key: term.NewSymKey(), L: l}
		return contract(x.Body, l, pos, inner)

	case *Flat:
		// A user contract is a function of the label and the value;
		// partially applying the label yields the one-argument shape.
		return &term.App{Fn: x.Term, Arg: &term.Lbl{L: l}}
	}
	return identity()
}

// shapeCheck accepts values passing the given shape test and blames l
// otherwise.
func shapeCheck(op term.UnaryOp, l term.Label) term.Term {
	v := &term.Var{Name: "%v"}
	return fun("%v", ite(&term.Op1{Op: op, X: v}, v, blame(l)))
}

func identity() term.Term {
	return fun("%v", &term.Var{Name: "%v"})
}

func fun(param string, body term.Term) term.Term {
	return &term.Fun{Param: param, Body: body}
}

func app(fn, arg term.Term) term.Term {
	return &term.App{Fn: fn, Arg: arg}
}

// ite builds the conditional primitive: the selector returned by IteOp
// is applied to both branches, and call-by-need keeps the untaken
// branch unevaluated.
func ite(cond, then, els term.Term) term.Term {
	return app(app(&term.Op1{Op: term.IteOp, X: cond}, then), els)
}

func blame(l term.Label) term.Term {
	return &term.Op1{Op: term.BlameOp, X: &term.Lbl{L: l}}
}
