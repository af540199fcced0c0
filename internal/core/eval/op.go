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

package eval

import (
	"slices"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"lodelang.org/go/internal/core/merge"
	"lodelang.org/go/internal/core/term"
	"lodelang.org/go/lode/errors"
)

// Branch selectors returned by a reduced conditional. The two
// applications that follow a conditional bind the branches lazily, so
// only the selected branch is ever evaluated.
var (
	selThen = &term.Fun{Param: "%t", Body: &term.Fun{Param: "%e", Body: &term.Var{Name: "%t"}}}
	selElse = &term.Fun{Param: "%t", Body: &term.Fun{Param: "%e", Body: &term.Var{Name: "%e"}}}
)

func (c *Context) op1(x *term.Op1, env *term.Environment) (term.Term, *term.Environment, errors.Error) {
	// embed wraps its operand without forcing it.
	if x.Op == term.EmbedOp {
		mv := &term.MetaValue{Src: x.Src, Value: capture(x.X, env), Priority: term.Default}
		return mv, nil, nil
	}

	v, venv, err := c.strict(x.X, env)
	if err != nil {
		return nil, nil, err
	}

	switch x.Op {
	case term.IteOp:
		b, ok := v.(*term.Bool)
		if !ok {
			return nil, nil, errors.Newf(term.Pos(x),
				"conditional guard is not a Bool: %s", term.Shallow(v))
		}
		if b.B {
			return selThen, nil, nil
		}
		return selElse, nil, nil

	case term.NotOp:
		b, ok := v.(*term.Bool)
		if !ok {
			return nil, nil, badOperand(x, "!", "a Bool", v)
		}
		return &term.Bool{Src: x.Src, B: !b.B}, nil, nil

	case term.NegOp:
		n, ok := v.(*term.Num)
		if !ok {
			return nil, nil, badOperand(x, "-", "a Number", v)
		}
		var r apd.Decimal
		r.Neg(&n.X)
		return &term.Num{Src: x.Src, X: r}, nil, nil

	case term.BlameOp:
		l, ok := v.(*term.Lbl)
		if !ok {
			return nil, nil, badOperand(x, "blame", "a contract label", v)
		}
		return nil, nil, blame(l.L)

	case term.IsNumOp, term.IsBoolOp, term.IsStrOp, term.IsFunOp,
		term.IsRecordOp, term.IsListOp:
		var ok bool
		switch x.Op {
		case term.IsNumOp:
			_, ok = v.(*term.Num)
		case term.IsBoolOp:
			_, ok = v.(*term.Bool)
		case term.IsStrOp:
			_, ok = v.(*term.Str)
		case term.IsFunOp:
			_, ok = v.(*term.Fun)
		case term.IsRecordOp:
			_, ok = v.(*term.Record)
		case term.IsListOp:
			_, ok = v.(*term.List)
		}
		return &term.Bool{Src: x.Src, B: ok}, nil, nil

	case term.HeadOp:
		l, ok := v.(*term.List)
		if !ok {
			return nil, nil, badOperand(x, "head", "a List", v)
		}
		if len(l.Elems) == 0 {
			return nil, nil, errors.Newf(term.Pos(x), "head of empty list")
		}
		return c.whnf(l.Elems[0], venv)

	case term.TailOp:
		l, ok := v.(*term.List)
		if !ok {
			return nil, nil, badOperand(x, "tail", "a List", v)
		}
		if len(l.Elems) == 0 {
			return nil, nil, errors.Newf(term.Pos(x), "tail of empty list")
		}
		return &term.List{Src: x.Src, Elems: l.Elems[1:]}, venv, nil

	case term.LengthOp:
		l, ok := v.(*term.List)
		if !ok {
			return nil, nil, badOperand(x, "length", "a List", v)
		}
		return &term.Num{Src: x.Src, X: *apd.New(int64(len(l.Elems)), 0)}, nil, nil

	case term.FieldsOfOp:
		rec, ok := v.(*term.Record)
		if !ok {
			return nil, nil, badOperand(x, "fieldsof", "a Record", v)
		}
		names := rec.FieldNames()
		elems := make([]term.Term, len(names))
		for i, name := range names {
			elems[i] = &term.Str{Src: x.Src, S: name}
		}
		return &term.List{Src: x.Src, Elems: elems}, nil, nil
	}

	return nil, nil, errors.WithCode(errors.InternalError,
		errors.Newf(term.Pos(x), "unknown unary operator %d", x.Op))
}

func (c *Context) op2(x *term.Op2, env *term.Environment) (term.Term, *term.Environment, errors.Error) {
	// Operators with bespoke evaluation order come first.
	switch x.Op {
	case term.MergeOp:
		ox, err := c.makeOperand(x.X, env)
		if err != nil {
			return nil, nil, err
		}
		oy, err := c.makeOperand(x.Y, env)
		if err != nil {
			return nil, nil, err
		}
		path := ""
		if fs, ok := x.Src.(*merge.FieldSrc); ok {
			path = fs.Path
		}
		return merge.Values(x.Src, path, ox, oy)

	case term.SeqOp:
		if _, _, err := c.strict(x.X, env); err != nil {
			return nil, nil, err
		}
		return c.whnf(x.Y, env)

	case term.DeepSeqOp:
		if _, _, err := c.Deep(x.X, env); err != nil {
			return nil, nil, err
		}
		return c.whnf(x.Y, env)

	case term.SealOp:
		v, _, err := c.strict(x.X, env)
		if err != nil {
			return nil, nil, err
		}
		sym, ok := v.(*term.Sym)
		if !ok {
			return nil, nil, badOperand(x, "seal", "a sealing key", v)
		}
		return &term.Sealed{Src: x.Src, Key: sym.Key, Value: capture(x.Y, env)}, nil, nil
	}

	v1, e1, err := c.strict(x.X, env)
	if err != nil {
		return nil, nil, err
	}
	v2, e2, err := c.strict(x.Y, env)
	if err != nil {
		return nil, nil, err
	}

	switch x.Op {
	case term.AddOp, term.SubOp, term.MulOp, term.DivOp:
		return c.arith(x, v1, v2)

	case term.LssOp, term.LeqOp, term.GtrOp, term.GeqOp:
		return c.compare(x, v1, v2)

	case term.EqOp, term.NeqOp:
		eq, err := c.equal(v1, e1, v2, e2)
		if err != nil {
			return nil, nil, err
		}
		if x.Op == term.NeqOp {
			eq = !eq
		}
		return &term.Bool{Src: x.Src, B: eq}, nil, nil

	case term.ConcatOp:
		switch a := v1.(type) {
		case *term.Str:
			if b, ok := v2.(*term.Str); ok {
				return &term.Str{Src: x.Src, S: a.S + b.S}, nil, nil
			}
		case *term.List:
			if b, ok := v2.(*term.List); ok {
				elems := make([]term.Term, 0, len(a.Elems)+len(b.Elems))
				for _, e := range a.Elems {
					elems = append(elems, capture(e, e1))
				}
				for _, e := range b.Elems {
					elems = append(elems, capture(e, e2))
				}
				return &term.List{Src: x.Src, Elems: elems}, nil, nil
			}
		}
		return nil, nil, errors.Newf(term.Pos(x),
			"++ expects two Strings or two Lists, found %s and %s",
			term.Shallow(v1), term.Shallow(v2))

	case term.ElemAtOp:
		l, ok := v1.(*term.List)
		if !ok {
			return nil, nil, badOperand(x, "elemat", "a List", v1)
		}
		n, ok := v2.(*term.Num)
		if !ok {
			return nil, nil, badOperand(x, "elemat", "an integer index", v2)
		}
		i, convErr := n.X.Int64()
		if convErr != nil {
			return nil, nil, errors.Newf(term.Pos(x),
				"list index must be an integer, found %s", term.Shallow(v2))
		}
		if i < 0 || i >= int64(len(l.Elems)) {
			return nil, nil, errors.Newf(term.Pos(x),
				"index %d out of bounds (list length %d)", i, len(l.Elems))
		}
		return c.whnf(l.Elems[i], e1)

	case term.MapOp:
		if _, ok := v1.(*term.Fun); !ok {
			return nil, nil, badOperand(x, "map", "a function", v1)
		}
		l, ok := v2.(*term.List)
		if !ok {
			return nil, nil, badOperand(x, "map", "a List", v2)
		}
		fn := capture(v1, e1)
		elems := make([]term.Term, len(l.Elems))
		for i, e := range l.Elems {
			elems[i] = &term.App{Src: x.Src, Fn: fn, Arg: capture(e, e2)}
		}
		return &term.List{Src: x.Src, Elems: elems}, nil, nil

	case term.HasFieldOp:
		rec, ok := v1.(*term.Record)
		if !ok {
			return nil, nil, badOperand(x, "hasfield", "a Record", v1)
		}
		name, ok := v2.(*term.Str)
		if !ok {
			return nil, nil, badOperand(x, "hasfield", "a String field name", v2)
		}
		_, has := rec.Fields[name.S]
		return &term.Bool{Src: x.Src, B: has}, nil, nil

	case term.SelectOp:
		name, ok := v2.(*term.Str)
		if !ok {
			return nil, nil, badOperand(x, ".", "a String field name", v2)
		}
		rec, ok := v1.(*term.Record)
		if !ok {
			return nil, nil, errors.Newf(term.Pos(x),
				"cannot select field %q from %s", name.S, term.Shallow(v1))
		}
		f, ok := rec.Fields[name.S]
		if !ok {
			return nil, nil, errors.Newf(term.Pos(x), "record has no field %q", name.S)
		}
		return c.Force(f.Value)

	case term.UnsealOp:
		sym, ok := v1.(*term.Sym)
		if !ok {
			return nil, nil, badOperand(x, "unseal", "a sealing key", v1)
		}
		sealed, ok := v2.(*term.Sealed)
		if !ok || sealed.Key != sym.Key {
			return nil, nil, blame(sym.L)
		}
		return c.whnf(sealed.Value, e2)
	}

	return nil, nil, errors.WithCode(errors.InternalError,
		errors.Newf(term.Pos(x), "unknown binary operator %d", x.Op))
}

func (c *Context) arith(x *term.Op2, v1, v2 term.Term) (term.Term, *term.Environment, errors.Error) {
	a, ok := v1.(*term.Num)
	if !ok {
		return nil, nil, badOperand(x, x.Op.String(), "a Number", v1)
	}
	b, ok := v2.(*term.Num)
	if !ok {
		return nil, nil, badOperand(x, x.Op.String(), "a Number", v2)
	}
	var r apd.Decimal
	var err error
	switch x.Op {
	case term.AddOp:
		_, err = c.num.Add(&r, &a.X, &b.X)
	case term.SubOp:
		_, err = c.num.Sub(&r, &a.X, &b.X)
	case term.MulOp:
		_, err = c.num.Mul(&r, &a.X, &b.X)
	case term.DivOp:
		if b.X.IsZero() {
			return nil, nil, errors.Newf(term.Pos(x), "division by zero")
		}
		_, err = c.num.Quo(&r, &a.X, &b.X)
	}
	if err != nil {
		return nil, nil, errors.Newf(term.Pos(x), "arithmetic error: %v", err)
	}
	return &term.Num{Src: x.Src, X: r}, nil, nil
}

func (c *Context) compare(x *term.Op2, v1, v2 term.Term) (term.Term, *term.Environment, errors.Error) {
	var cmp int
	switch a := v1.(type) {
	case *term.Num:
		b, ok := v2.(*term.Num)
		if !ok {
			return nil, nil, incomparable(x, v1, v2)
		}
		cmp = a.X.Cmp(&b.X)
	case *term.Str:
		b, ok := v2.(*term.Str)
		if !ok {
			return nil, nil, incomparable(x, v1, v2)
		}
		cmp = strings.Compare(a.S, b.S)
	default:
		return nil, nil, incomparable(x, v1, v2)
	}
	var b bool
	switch x.Op {
	case term.LssOp:
		b = cmp < 0
	case term.LeqOp:
		b = cmp <= 0
	case term.GtrOp:
		b = cmp > 0
	case term.GeqOp:
		b = cmp >= 0
	}
	return &term.Bool{Src: x.Src, B: b}, nil, nil
}

// equal implements deep structural equality. Values of different kinds
// are unequal; functions and sealed values cannot be compared at all.
func (c *Context) equal(t1 term.Term, e1 *term.Environment, t2 term.Term, e2 *term.Environment) (bool, errors.Error) {
	v1, e1, err := c.strict(t1, e1)
	if err != nil {
		return false, err
	}
	v2, e2, err := c.strict(t2, e2)
	if err != nil {
		return false, err
	}
	for _, v := range []term.Term{v1, v2} {
		switch v.(type) {
		case *term.Fun:
			return false, errors.Newf(term.Pos(v), "cannot test equality of functions")
		case *term.Sealed, *term.Lbl, *term.Sym:
			return false, errors.Newf(term.Pos(v),
				"cannot test equality of %s values", term.KindOf(v))
		}
	}
	switch a := v1.(type) {
	case *term.Bool:
		b, ok := v2.(*term.Bool)
		return ok && a.B == b.B, nil
	case *term.Num:
		b, ok := v2.(*term.Num)
		return ok && a.X.Cmp(&b.X) == 0, nil
	case *term.Str:
		b, ok := v2.(*term.Str)
		return ok && a.S == b.S, nil
	case *term.List:
		b, ok := v2.(*term.List)
		if !ok || len(a.Elems) != len(b.Elems) {
			return false, nil
		}
		for i := range a.Elems {
			eq, err := c.equal(a.Elems[i], e1, b.Elems[i], e2)
			if err != nil {
				return false, err
			}
			if !eq {
				return false, nil
			}
		}
		return true, nil
	case *term.Record:
		b, ok := v2.(*term.Record)
		if !ok {
			return false, nil
		}
		names := a.FieldNames()
		if !slices.Equal(names, b.FieldNames()) {
			return false, nil
		}
		for _, name := range names {
			va, ea, err := c.Force(a.Fields[name].Value)
			if err != nil {
				return false, err
			}
			vb, eb, err := c.Force(b.Fields[name].Value)
			if err != nil {
				return false, err
			}
			eq, err := c.equal(va, ea, vb, eb)
			if err != nil {
				return false, err
			}
			if !eq {
				return false, nil
			}
		}
		return true, nil
	}
	return false, nil
}

func badOperand(at term.Term, op, want string, got term.Term) errors.Error {
	return errors.Newf(term.Pos(at), "%s expects %s, found %s", op, want, term.Shallow(got))
}

func incomparable(at term.Term, v1, v2 term.Term) errors.Error {
	return errors.Newf(term.Pos(at), "cannot compare %s and %s",
		term.Shallow(v1), term.Shallow(v2))
}
