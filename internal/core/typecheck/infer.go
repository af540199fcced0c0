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

package typecheck

import (
	"slices"

	"lodelang.org/go/internal/core/term"
	"lodelang.org/go/internal/core/types"
	"lodelang.org/go/lode/ast"
	"lodelang.org/go/lode/errors"
	"lodelang.org/go/lode/token"
)

// A wrapper is a type as inference manipulates it: a concrete head
// whose components may still be open, a unification variable to be
// solved, a rigid constant standing for a universally quantified
// variable, or a suspended quantified type. Wrappers live only for the
// duration of one Check.
type wrapper interface{ wrap() }

type (
	// prim wraps a primitive type. Flat types import as prim{Dyn}.
	prim struct{ t *types.Prim }

	// arrow and list are concrete heads with open components.
	arrow struct{ dom, cod wrapper }
	list  struct{ elem wrapper }

	// unif is a unification variable: an index into checker.table.
	unif struct{ id int }

	// rigid stands for a universally quantified variable while a value
	// is checked against its quantifier. It unifies only with itself
	// and Dyn.
	rigid struct {
		id   int
		name string
	}

	// poly suspends a quantified annotation type together with the
	// wrappers its free type variables had at import. A use
	// instantiates it with fresh variables; a value checked against it
	// sees rigid constants instead.
	poly struct {
		t     *types.Forall
		tvars map[string]wrapper
	}
)

func (*prim) wrap()  {}
func (*arrow) wrap() {}
func (*list) wrap()  {}
func (*unif) wrap()  {}
func (*rigid) wrap() {}
func (*poly) wrap()  {}

var (
	dyn     = &prim{types.Dyn}
	num     = &prim{types.Number}
	str     = &prim{types.String}
	boolean = &prim{types.Bool}
)

func isDyn(w wrapper) bool {
	p, ok := w.(*prim)
	return ok && p.t == types.Dyn
}

type checker struct {
	outer *Env

	// table holds one slot per unification variable; nil is unsolved.
	table  []wrapper
	rigids int

	errs errors.Error
}

func (c *checker) errf(src ast.Node, format string, args ...interface{}) {
	p := token.NoPos
	if src != nil {
		p = src.Pos()
	}
	c.errs = errors.Append(c.errs, errors.WithCode(errors.TypeError, errors.Newf(p, format, args...)))
}

func (c *checker) fresh() *unif {
	c.table = append(c.table, nil)
	return &unif{id: len(c.table) - 1}
}

func (c *checker) skolem(name string) *rigid {
	c.rigids++
	return &rigid{id: c.rigids, name: name}
}

// resolve chases solved unification variables to their representative,
// compressing the path it walks.
func (c *checker) resolve(w wrapper) wrapper {
	u, ok := w.(*unif)
	if !ok || c.table[u.id] == nil {
		return w
	}
	r := c.resolve(c.table[u.id])
	c.table[u.id] = r
	return r
}

// unify makes a and b equal, solving unification variables as needed.
// Dyn unifies with everything: it is the static face of the dynamic
// half of the language.
func (c *checker) unify(src ast.Node, a, b wrapper) bool {
	a, b = c.resolve(a), c.resolve(b)
	if a == b {
		return true
	}
	if u, ok := a.(*unif); ok {
		return c.solve(src, u, b)
	}
	if u, ok := b.(*unif); ok {
		return c.solve(src, u, a)
	}
	if p, ok := a.(*poly); ok {
		return c.unify(src, c.instantiate(p), b)
	}
	if p, ok := b.(*poly); ok {
		return c.unify(src, a, c.instantiate(p))
	}
	if isDyn(a) || isDyn(b) {
		return true
	}
	switch x := a.(type) {
	case *prim:
		if y, ok := b.(*prim); ok && x.t == y.t {
			return true
		}
	case *rigid:
		if y, ok := b.(*rigid); ok && x.id == y.id {
			return true
		}
	case *arrow:
		if y, ok := b.(*arrow); ok {
			return c.unify(src, x.dom, y.dom) && c.unify(src, x.cod, y.cod)
		}
	case *list:
		if y, ok := b.(*list); ok {
			return c.unify(src, x.elem, y.elem)
		}
	}
	c.errf(src, "incompatible types %s and %s", c.render(a), c.render(b))
	return false
}

func (c *checker) solve(src ast.Node, u *unif, w wrapper) bool {
	if x, ok := w.(*unif); ok && x.id == u.id {
		return true
	}
	if c.occurs(u.id, w) {
		c.errf(src, "recursive type: %s occurs in %s", c.render(u), c.render(w))
		return false
	}
	c.table[u.id] = w
	return true
}

func (c *checker) occurs(id int, w wrapper) bool {
	switch x := c.resolve(w).(type) {
	case *unif:
		return x.id == id
	case *arrow:
		return c.occurs(id, x.dom) || c.occurs(id, x.cod)
	case *list:
		return c.occurs(id, x.elem)
	}
	return false
}

// imp imports an annotation type. tvars carries the wrappers of the
// type variables bound by enclosing foralls.
func (c *checker) imp(t types.Type, tvars map[string]wrapper) wrapper {
	switch x := t.(type) {
	case *types.Prim:
		return &prim{x}
	case *types.Arrow:
		return &arrow{dom: c.imp(x.Dom, tvars), cod: c.imp(x.Cod, tvars)}
	case *types.List:
		return &list{elem: c.imp(x.Elem, tvars)}
	case *types.Var:
		if w, ok := tvars[x.Name]; ok {
			return w
		}
		// A variable no forall binds; the compiler does not produce
		// this shape.
		return dyn
	case *types.Forall:
		inner := make(map[string]wrapper, len(tvars))
		for name, w := range tvars {
			inner[name] = w
		}
		return &poly{t: x, tvars: inner}
	case *types.Flat:
		// Contracts are opaque to the static side.
		return dyn
	}
	return dyn
}

// instantiate replaces the outermost quantifiers with fresh unification
// variables: each use of a polymorphic value picks the types that use
// needs.
func (c *checker) instantiate(w wrapper) wrapper {
	for {
		p, ok := c.resolve(w).(*poly)
		if !ok {
			return w
		}
		w = c.imp(p.t.Body, bindTvar(p.tvars, p.t.Var, c.fresh()))
	}
}

// skolemize replaces the outermost quantifiers with rigid constants: a
// value checked against a quantified type must be parametric in them.
func (c *checker) skolemize(w wrapper) wrapper {
	for {
		p, ok := c.resolve(w).(*poly)
		if !ok {
			return w
		}
		w = c.imp(p.t.Body, bindTvar(p.tvars, p.t.Var, c.skolem(p.t.Var)))
	}
}

func bindTvar(tvars map[string]wrapper, name string, w wrapper) map[string]wrapper {
	m := make(map[string]wrapper, len(tvars)+1)
	for k, v := range tvars {
		m[k] = v
	}
	m[name] = w
	return m
}

// typeOf exports a wrapper as a source type for reporting. Unsolved
// variables render as "_".
func (c *checker) typeOf(w wrapper) types.Type {
	switch x := c.resolve(w).(type) {
	case *prim:
		return x.t
	case *arrow:
		return &types.Arrow{Dom: c.typeOf(x.dom), Cod: c.typeOf(x.cod)}
	case *list:
		return &types.List{Elem: c.typeOf(x.elem)}
	case *rigid:
		return &types.Var{Name: x.name}
	case *unif:
		return &types.Var{Name: "_"}
	case *poly:
		return x.t
	}
	return types.Dyn
}

func (c *checker) render(w wrapper) string { return c.typeOf(w).String() }

// A scope is the chain of bindings in flight during one Check: names
// bound by functions, lets, and record literals, with the wrappers
// inference gave them. Misses fall back to the resolved outer Env.
type scope struct {
	up   *scope
	name string
	w    wrapper
}

func (s *scope) with(name string, w wrapper) *scope {
	return &scope{up: s, name: name, w: w}
}

func (c *checker) lookup(s *scope, name string) (wrapper, bool) {
	for ; s != nil; s = s.up {
		if s.name == name {
			return s.w, true
		}
	}
	if ty, ok := c.outer.Lookup(name); ok {
		return c.imp(ty, nil), true
	}
	return nil, false
}

// walkTerm visits untyped code. It resolves names, reports unbound
// identifiers, and dives into annotations; all other static checking
// waits for a typed block. Bound names carry their apparent types so a
// typed block referencing them has something to work with.
func (c *checker) walkTerm(s *scope, t term.Term) {
	switch x := t.(type) {
	case *term.Var:
		if _, ok := c.lookup(s, x.Name); !ok {
			c.errf(x.Src, "unbound identifier %q", x.Name)
		}
	case *term.Fun:
		c.walkTerm(s.with(x.Param, dyn), x.Body)
	case *term.Let:
		c.walkTerm(s, x.Value)
		c.walkTerm(s.with(x.Name, c.imp(Apparent(x.Value), nil)), x.Body)
	case *term.App:
		c.walkTerm(s, x.Fn)
		c.walkTerm(s, x.Arg)
	case *term.Op1:
		c.walkTerm(s, x.X)
	case *term.Op2:
		c.walkTerm(s, x.X)
		c.walkTerm(s, x.Y)
	case *term.List:
		for _, e := range x.Elems {
			c.walkTerm(s, e)
		}
	case *term.RecRecord:
		names := sortedFields(x)
		inner := s
		for _, name := range names {
			inner = inner.with(name, c.imp(Apparent(x.Fields[name]), nil))
		}
		for _, name := range names {
			c.walkTerm(inner, x.Fields[name])
		}
	case *term.MetaValue:
		c.walkMeta(s, x)
	}
}

// walkMeta handles a meta-value in untyped code. A static annotation
// opens a typed block over the underlying value; contract annotations
// only have their contract expressions resolved.
func (c *checker) walkMeta(s *scope, x *term.MetaValue) {
	typed := false
	for _, a := range x.Annots {
		ty, ok := a.Type.(types.Type)
		if !ok {
			continue
		}
		c.walkFlats(s, ty)
		if a.Static && x.Value != nil {
			c.check(s, x.Value, c.imp(ty, nil))
			typed = true
		}
	}
	if !typed && x.Value != nil {
		c.walkTerm(s, x.Value)
	}
}

// walkFlats resolves the contract expressions embedded in a type.
func (c *checker) walkFlats(s *scope, ty types.Type) {
	switch x := ty.(type) {
	case *types.Arrow:
		c.walkFlats(s, x.Dom)
		c.walkFlats(s, x.Cod)
	case *types.List:
		c.walkFlats(s, x.Elem)
	case *types.Forall:
		c.walkFlats(s, x.Body)
	case *types.Flat:
		c.walkTerm(s, x.Term)
	}
}

// infer synthesizes a type inside a typed block.
func (c *checker) infer(s *scope, t term.Term) wrapper {
	switch x := t.(type) {
	case *term.Var:
		w, ok := c.lookup(s, x.Name)
		if !ok {
			c.errf(x.Src, "unbound identifier %q", x.Name)
			return dyn
		}
		return c.instantiate(w)
	case *term.Bool:
		return boolean
	case *term.Num:
		return num
	case *term.Str:
		return str
	case *term.Fun:
		d := c.fresh()
		return &arrow{dom: d, cod: c.infer(s.with(x.Param, d), x.Body)}
	case *term.Let:
		vw := c.infer(s, x.Value)
		return c.infer(s.with(x.Name, vw), x.Body)
	case *term.App:
		return c.apply(s, x)
	case *term.Op1:
		return c.inferOp1(s, x)
	case *term.Op2:
		return c.inferOp2(s, x)
	case *term.List:
		e := c.fresh()
		for _, el := range x.Elems {
			c.check(s, el, e)
		}
		return &list{elem: e}
	case *term.RecRecord:
		// There is no record type in the static fragment: a record
		// literal is Dyn. Its fields still infer against each other.
		names := sortedFields(x)
		inner := s
		vars := make(map[string]*unif, len(names))
		for _, name := range names {
			u := c.fresh()
			vars[name] = u
			inner = inner.with(name, u)
		}
		for _, name := range names {
			c.check(inner, x.Fields[name], vars[name])
		}
		return dyn
	case *term.MetaValue:
		return c.inferMeta(s, x)
	}
	return dyn
}

// check verifies t against want inside a typed block. Checking against
// Dyn leaves the typed world: the term is walked instead.
func (c *checker) check(s *scope, t term.Term, want wrapper) {
	want = c.resolve(want)
	if p, ok := want.(*poly); ok {
		c.check(s, t, c.skolemize(p))
		return
	}
	if isDyn(want) {
		c.walkTerm(s, t)
		return
	}
	switch x := t.(type) {
	case *term.Fun:
		if ar, ok := want.(*arrow); ok {
			c.check(s.with(x.Param, ar.dom), x.Body, ar.cod)
			return
		}
	case *term.List:
		if lw, ok := want.(*list); ok {
			for _, e := range x.Elems {
				c.check(s, e, lw.elem)
			}
			return
		}
	case *term.Let:
		vw := c.infer(s, x.Value)
		c.check(s.with(x.Name, vw), x.Body, want)
		return
	}
	c.unify(t.Source(), c.infer(s, t), want)
}

// inferMeta types an annotated value inside a typed block. The first
// static annotation decides the type. A contract-only meta-value is the
// gradual boundary: Dyn outside, dynamic inside. Plain metadata (doc,
// priority) is transparent.
func (c *checker) inferMeta(s *scope, x *term.MetaValue) wrapper {
	var result wrapper
	contract := false
	for _, a := range x.Annots {
		ty, ok := a.Type.(types.Type)
		if !ok {
			continue
		}
		c.walkFlats(s, ty)
		if !a.Static {
			contract = true
			continue
		}
		w := c.imp(ty, nil)
		if x.Value != nil {
			c.check(s, x.Value, w)
		}
		if result == nil {
			result = w
		}
	}
	switch {
	case result != nil:
		return result
	case contract:
		if x.Value != nil {
			c.walkTerm(s, x.Value)
		}
		return dyn
	case x.Value != nil:
		return c.infer(s, x.Value)
	}
	return dyn
}

// apply types one application node.
func (c *checker) apply(s *scope, x *term.App) wrapper {
	fn := c.instantiate(c.infer(s, x.Fn))
	switch fw := c.resolve(fn).(type) {
	case *arrow:
		c.check(s, x.Arg, fw.dom)
		return fw.cod
	case *unif:
		d, r := c.fresh(), c.fresh()
		c.solve(x.Src, fw, &arrow{dom: d, cod: r})
		c.check(s, x.Arg, d)
		return r
	case *prim:
		if fw.t == types.Dyn {
			c.check(s, x.Arg, dyn)
			return dyn
		}
	}
	c.errf(x.Src, "cannot apply a value of type %s", c.render(fn))
	c.check(s, x.Arg, dyn)
	return dyn
}

// inferOp1 applies the typing rule of a unary operator.
func (c *checker) inferOp1(s *scope, x *term.Op1) wrapper {
	switch x.Op {
	case term.IteOp:
		// ite reduces to a branch selector; both branches must agree.
		c.check(s, x.X, boolean)
		a := c.fresh()
		return &arrow{dom: a, cod: &arrow{dom: a, cod: a}}
	case term.NotOp:
		c.check(s, x.X, boolean)
		return boolean
	case term.NegOp:
		c.check(s, x.X, num)
		return num
	case term.BlameOp:
		// blame aborts: its result takes any type.
		c.infer(s, x.X)
		return c.fresh()
	case term.IsNumOp, term.IsBoolOp, term.IsStrOp, term.IsFunOp, term.IsRecordOp, term.IsListOp:
		c.infer(s, x.X)
		return boolean
	case term.HeadOp:
		e := c.fresh()
		c.check(s, x.X, &list{elem: e})
		return e
	case term.TailOp:
		e := c.fresh()
		lw := &list{elem: e}
		c.check(s, x.X, lw)
		return lw
	case term.LengthOp:
		c.check(s, x.X, &list{elem: c.fresh()})
		return num
	case term.FieldsOfOp:
		c.infer(s, x.X)
		return &list{elem: str}
	case term.EmbedOp:
		return c.infer(s, x.X)
	}
	c.infer(s, x.X)
	return dyn
}

// inferOp2 applies the typing rule of a binary operator.
func (c *checker) inferOp2(s *scope, x *term.Op2) wrapper {
	switch x.Op {
	case term.AddOp, term.SubOp, term.MulOp, term.DivOp:
		c.check(s, x.X, num)
		c.check(s, x.Y, num)
		return num
	case term.LssOp, term.LeqOp, term.GtrOp, term.GeqOp:
		c.check(s, x.X, num)
		c.check(s, x.Y, num)
		return boolean
	case term.EqOp, term.NeqOp:
		// Equality is homogeneous.
		c.check(s, x.Y, c.infer(s, x.X))
		return boolean
	case term.ConcatOp:
		w := c.infer(s, x.X)
		c.check(s, x.Y, w)
		return c.concatResult(x, w)
	case term.MergeOp:
		// Merged values live on the dynamic side, like records.
		c.infer(s, x.X)
		c.infer(s, x.Y)
		return dyn
	case term.SeqOp, term.DeepSeqOp:
		c.infer(s, x.X)
		return c.infer(s, x.Y)
	case term.ElemAtOp:
		e := c.fresh()
		c.check(s, x.X, &list{elem: e})
		c.check(s, x.Y, num)
		return e
	case term.MapOp:
		a, b := c.fresh(), c.fresh()
		c.check(s, x.X, &arrow{dom: a, cod: b})
		c.check(s, x.Y, &list{elem: a})
		return &list{elem: b}
	case term.HasFieldOp:
		c.check(s, x.X, str)
		c.infer(s, x.Y)
		return boolean
	case term.SelectOp:
		c.infer(s, x.X)
		c.check(s, x.Y, str)
		return dyn
	case term.SealOp, term.UnsealOp:
		// Only derived contracts contain these.
		c.infer(s, x.X)
		c.infer(s, x.Y)
		return dyn
	}
	c.infer(s, x.X)
	c.infer(s, x.Y)
	return dyn
}

// concatResult resolves the ++ overload on strings and lists from the
// operand type where it is known.
func (c *checker) concatResult(x *term.Op2, w wrapper) wrapper {
	switch r := c.resolve(c.instantiate(w)).(type) {
	case *prim:
		if r.t == types.String || r.t == types.Dyn {
			return r
		}
	case *list, *unif, *rigid:
		return r
	}
	c.errf(x.Src, "++ expects two Strings or two Lists, found %s", c.render(w))
	return dyn
}

func sortedFields(x *term.RecRecord) []string {
	names := make([]string, 0, len(x.Fields))
	for name := range x.Fields {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
