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

// Package compile translates syntax trees into runtime terms: it
// desugars multi-parameter functions, conditionals, and the boolean
// connectives, folds field and expression metadata into meta-values,
// converts annotation syntax into types, and resolves the predeclared
// operator identifiers.
//
// Names are resolved lexically only as far as shadowing requires:
// identifiers that are not bound in the source and are not predeclared
// compile to plain variables, which lets toplevel and stdlib bindings
// supplied at evaluation time resolve them. A reference that nothing
// ever binds fails safely at evaluation.
package compile

import (
	"github.com/cockroachdb/apd/v3"

	"lodelang.org/go/internal/core/term"
	"lodelang.org/go/internal/core/types"
	"lodelang.org/go/lode/ast"
	"lodelang.org/go/lode/errors"
	"lodelang.org/go/lode/literal"
	"lodelang.org/go/lode/token"
)

// Expr compiles a parsed expression into a term. The result is
// untransformed: contract materialization and sharing run afterwards.
func Expr(x ast.Expr) (term.Term, errors.Error) {
	c := &compiler{}
	v := c.expr(x)
	if c.errs != nil {
		return nil, c.errs
	}
	return v, nil
}

// Input compiles one unit of interactive input. For a toplevel let the
// returned name is the bound identifier and the term is the binding's
// value with any annotations folded in; for a bare expression the name
// is empty.
func Input(x *ast.Input) (name string, t term.Term, err errors.Error) {
	c := &compiler{}
	v := c.expr(x.X)
	if x.IsLet() {
		name = x.Ident.Name
		if x.Meta != nil {
			v = c.wrapMeta(x.Meta, v)
		}
	}
	if c.errs != nil {
		return "", nil, c.errs
	}
	return name, v, nil
}

type compiler struct {
	// scope holds one name set per enclosing binder (function, let,
	// record literal). It only needs to answer whether a name is bound,
	// which decides if an identifier can mean a predeclared operator.
	scope []map[string]bool

	errs errors.Error
}

func (c *compiler) errf(n ast.Node, format string, args ...interface{}) term.Term {
	c.errs = errors.Append(c.errs, errors.Newf(pos(n), format, args...))
	return &term.Var{Name: "%error"}
}

// internalf reports a compiler invariant violation. These are bugs, not
// user errors, and carry the internal error code.
func (c *compiler) internalf(n ast.Node, format string, args ...interface{}) term.Term {
	err := errors.Newf(pos(n), format, args...)
	c.errs = errors.Append(c.errs, errors.WithCode(errors.InternalError, err))
	return &term.Var{Name: "%error"}
}

func pos(n ast.Node) token.Pos {
	if n == nil {
		return token.NoPos
	}
	return n.Pos()
}

func (c *compiler) pushScope(names ...string) {
	m := make(map[string]bool, len(names))
	for _, name := range names {
		m[name] = true
	}
	c.scope = append(c.scope, m)
}

func (c *compiler) popScope() {
	c.scope = c.scope[:len(c.scope)-1]
}

func (c *compiler) bound(name string) bool {
	for i := len(c.scope) - 1; i >= 0; i-- {
		if c.scope[i][name] {
			return true
		}
	}
	return false
}

func (c *compiler) expr(x ast.Expr) term.Term {
	switch x := x.(type) {
	case *ast.Ident:
		return c.resolve(x)

	case *ast.BasicLit:
		return c.lit(x)

	case *ast.ParenExpr:
		return c.expr(x.X)

	case *ast.FunExpr:
		names := make([]string, len(x.Params))
		for i, p := range x.Params {
			names[i] = p.Name
		}
		c.pushScope(names...)
		body := c.expr(x.Body)
		c.popScope()
		for i := len(x.Params) - 1; i >= 0; i-- {
			body = &term.Fun{Src: x, Param: x.Params[i].Name, Body: body}
		}
		return body

	case *ast.LetExpr:
		// The bound value is compiled outside the binding's scope: a
		// let is not recursive.
		value := c.expr(x.Value)
		if x.Meta != nil {
			value = c.wrapMeta(x.Meta, value)
		}
		c.pushScope(x.Ident.Name)
		body := c.expr(x.Body)
		c.popScope()
		return &term.Let{Src: x, Name: x.Ident.Name, Value: value, Body: body}

	case *ast.IfExpr:
		return c.ite(x, c.expr(x.Cond), c.expr(x.Then), c.expr(x.Else))

	case *ast.UnaryExpr:
		switch x.Op {
		case token.NOT:
			return &term.Op1{Src: x, Op: term.NotOp, X: c.expr(x.X)}
		case token.SUB:
			return &term.Op1{Src: x, Op: term.NegOp, X: c.expr(x.X)}
		}
		return c.internalf(x, "unsupported unary operator %s", x.Op)

	case *ast.BinaryExpr:
		return c.binop(x)

	case *ast.Apply:
		return c.apply(x)

	case *ast.SelectorExpr:
		name, ok := ast.LabelName(x.Sel)
		if !ok {
			return c.errf(x, "invalid field selector")
		}
		return &term.Op2{Src: x, Op: term.SelectOp, X: c.expr(x.X), Y: &term.Str{Src: x.Sel, S: name}}

	case *ast.AnnotExpr:
		return c.wrapMeta(x.Meta, c.expr(x.X))

	case *ast.RecordLit:
		return c.record(x)

	case *ast.ListLit:
		elems := make([]term.Term, len(x.Elts))
		for i, e := range x.Elts {
			elems[i] = c.expr(e)
		}
		return &term.List{Src: x, Elems: elems}

	case *ast.BadExpr:
		// The parser reported this; compiling it is not an extra error.
		return &term.Var{Name: "%error"}

	case nil:
		return c.internalf(nil, "nil expression")
	}
	return c.internalf(x, "unsupported expression type %T", x)
}

// resolve compiles an identifier. Bound names are variables; unbound
// names that match a predeclared operator become the operator,
// eta-expanded so it can be passed around unapplied.
func (c *compiler) resolve(x *ast.Ident) term.Term {
	if c.bound(x.Name) {
		return &term.Var{Src: x, Name: x.Name}
	}
	if op, ok := builtin1[x.Name]; ok {
		return eta1(x, op)
	}
	if op, ok := builtin2[x.Name]; ok {
		return eta2(x, op)
	}
	return &term.Var{Src: x, Name: x.Name}
}

func (c *compiler) lit(x *ast.BasicLit) term.Term {
	switch x.Kind {
	case token.TRUE:
		return &term.Bool{Src: x, B: true}
	case token.FALSE:
		return &term.Bool{Src: x, B: false}
	case token.NUMBER:
		var d apd.Decimal
		if err := literal.ParseNum(x.Value, &d); err != nil {
			return c.errf(x, "invalid number %q: %v", x.Value, err)
		}
		return &term.Num{Src: x, X: d}
	case token.STRING:
		s, err := literal.Unquote(x.Value)
		if err != nil {
			return c.errf(x, "invalid string literal: %v", err)
		}
		return &term.Str{Src: x, S: s}
	}
	return c.internalf(x, "unsupported literal kind %s", x.Kind)
}

// ite compiles a conditional: the primitive reduces to a selector
// function and call-by-need keeps the untaken branch unevaluated.
func (c *compiler) ite(src ast.Node, cond, then, els term.Term) term.Term {
	sel := &term.Op1{Src: src, Op: term.IteOp, X: cond}
	return &term.App{Src: src, Fn: &term.App{Src: src, Fn: sel, Arg: then}, Arg: els}
}

var binaryOps = map[token.Token]term.BinaryOp{
	token.ADD:    term.AddOp,
	token.SUB:    term.SubOp,
	token.MUL:    term.MulOp,
	token.QUO:    term.DivOp,
	token.CONCAT: term.ConcatOp,
	token.AND:    term.MergeOp,
	token.EQL:    term.EqOp,
	token.NEQ:    term.NeqOp,
	token.LSS:    term.LssOp,
	token.LEQ:    term.LeqOp,
	token.GTR:    term.GtrOp,
	token.GEQ:    term.GeqOp,
}

func (c *compiler) binop(x *ast.BinaryExpr) term.Term {
	switch x.Op {
	case token.LAND:
		// a && b  ==>  if a then b else false
		return c.ite(x, c.expr(x.X), c.expr(x.Y), &term.Bool{Src: x, B: false})
	case token.LOR:
		// a || b  ==>  if a then true else b
		return c.ite(x, c.expr(x.X), &term.Bool{Src: x, B: true}, c.expr(x.Y))
	}
	op, ok := binaryOps[x.Op]
	if !ok {
		return c.internalf(x, "unsupported binary operator %s", x.Op)
	}
	return &term.Op2{Src: x, Op: op, X: c.expr(x.X), Y: c.expr(x.Y)}
}

// apply compiles an application. The spine is collected first so that a
// saturated application of a predeclared operator compiles straight to
// an operator node instead of an eta-expanded closure.
func (c *compiler) apply(x *ast.Apply) term.Term {
	var args []ast.Expr
	fn := ast.Expr(x)
	for {
		app, ok := fn.(*ast.Apply)
		if !ok {
			break
		}
		args = append([]ast.Expr{app.Arg}, args...)
		fn = app.Fn
	}

	if id, ok := fn.(*ast.Ident); ok && !c.bound(id.Name) {
		if op, ok := builtin1[id.Name]; ok {
			t := term.Term(&term.Op1{Src: x, Op: op, X: c.expr(args[0])})
			return c.applyRest(x, t, args[1:])
		}
		if op, ok := builtin2[id.Name]; ok && len(args) >= 2 {
			t := term.Term(&term.Op2{Src: x, Op: op, X: c.expr(args[0]), Y: c.expr(args[1])})
			return c.applyRest(x, t, args[2:])
		}
	}

	return c.applyRest(x, c.expr(fn), args)
}

func (c *compiler) applyRest(src ast.Node, fn term.Term, args []ast.Expr) term.Term {
	for _, a := range args {
		fn = &term.App{Src: src, Fn: fn, Arg: c.expr(a)}
	}
	return fn
}

func (c *compiler) record(x *ast.RecordLit) term.Term {
	names := make([]string, 0, len(x.Fields))
	seen := make(map[string]*ast.Field, len(x.Fields))
	for _, f := range x.Fields {
		name, ok := ast.LabelName(f.Label)
		if !ok {
			c.errf(f, "invalid field label")
			continue
		}
		if prev, dup := seen[name]; dup {
			c.errf(f, "field %q repeated; previous definition at %v", name, prev.Pos())
			continue
		}
		seen[name] = f
		names = append(names, name)
	}

	// Fields see each other regardless of order.
	c.pushScope(names...)
	defer c.popScope()

	fields := make(map[string]term.Term, len(names))
	for name, f := range seen {
		var value term.Term
		if f.Value != nil {
			value = c.expr(f.Value)
		}
		if f.Meta != nil {
			value = c.wrapMeta(f.Meta, value)
		} else if value == nil {
			// The parser requires a value or metadata; reaching here
			// means a syntax tree built by hand broke that.
			c.internalf(f, "field %q has no value and no metadata", name)
			continue
		}
		fields[name] = value
	}
	return &term.RecRecord{Src: x, Fields: fields}
}

// wrapMeta folds annotation clauses around a value. Stacked annotations
// collapse into a single meta-value: the innermost doc wins, a default
// anywhere makes the priority Default, and annotation lists concatenate
// innermost first.
func (c *compiler) wrapMeta(m *ast.Metadata, value term.Term) term.Term {
	doc := ""
	if m.Doc != nil {
		s, err := literal.Unquote(m.Doc.Value)
		if err != nil {
			return c.errf(m.Doc, "invalid doc string: %v", err)
		}
		doc = s
	}
	prio := term.Normal
	if m.HasDefault() {
		prio = term.Default
	}
	var annots []term.Annot
	for _, at := range m.Types {
		ty := c.typ(at.Type, nil)
		annots = append(annots, term.Annot{
			Static: at.Static,
			Type:   ty,
			L:      term.NewLabel(ty.String(), at.Type),
		})
	}

	if mv, ok := value.(*term.MetaValue); ok {
		if mv.Doc != "" {
			doc = mv.Doc
		}
		if mv.Priority == term.Default {
			prio = term.Default
		}
		annots = append(append([]term.Annot{}, mv.Annots...), annots...)
		value = mv.Value
	}

	if value == nil && doc == "" && prio == term.Normal && len(annots) == 0 {
		return c.internalf(m, "annotation carries no metadata")
	}
	return term.NewMetaValue(m, value, doc, prio, annots)
}

// typ converts annotation syntax into a type. tvars holds the type
// variables bound by enclosing foralls.
func (c *compiler) typ(x ast.TypeExpr, tvars map[string]bool) types.Type {
	switch x := x.(type) {
	case *ast.NamedType:
		name := x.Ident.Name
		if tvars[name] {
			return &types.Var{Name: name}
		}
		if p, ok := types.Predeclared[name]; ok {
			return p
		}
		// Any other name refers to a contract value in scope.
		return c.flat(x.Ident)

	case *ast.ArrowType:
		return &types.Arrow{Dom: c.typ(x.Dom, tvars), Cod: c.typ(x.Cod, tvars)}

	case *ast.ListType:
		if x.Elem == nil {
			return &types.List{Elem: types.Dyn}
		}
		return &types.List{Elem: c.typ(x.Elem, tvars)}

	case *ast.ForallType:
		inner := make(map[string]bool, len(tvars)+1)
		for name := range tvars {
			inner[name] = true
		}
		inner[x.Var.Name] = true
		return &types.Forall{Var: x.Var.Name, Body: c.typ(x.Body, inner)}

	case *ast.ContractType:
		return c.flat(x.X)

	case *ast.BadType:
		// The parser reported this.
		return types.Dyn

	case nil:
		c.internalf(nil, "nil type expression")
		return types.Dyn
	}
	c.internalf(x, "unsupported type expression %T", x)
	return types.Dyn
}

func (c *compiler) flat(e ast.Expr) types.Type {
	return &types.Flat{Term: c.expr(e), Src: e}
}
