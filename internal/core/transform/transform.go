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

// Package transform prepares compiled terms for evaluation.
//
// Two passes run in order. materialize derives a checking term for
// every annotation on every meta-value, static and contract alike, so
// the evaluator only ever deals in ready-made checks. share lifts
// record field and list element computations into generated let
// bindings where scoping permits, so that a value demanded through
// several routes, or re-demanded after a merge rebinds its record, is
// computed once.
//
// The input is whatever the compiler produced; a term the passes cannot
// handle is a broken invariant between the two packages and reports an
// internal error, never a user error.
package transform

import (
	"fmt"
	"slices"

	"lodelang.org/go/internal/core/term"
	"lodelang.org/go/internal/core/types"
	"lodelang.org/go/lode/errors"
)

// Term applies all transformation passes to a compiled term.
func Term(t term.Term) (term.Term, errors.Error) {
	tr := &transformer{}
	t = tr.materialize(t)
	t = tr.share(t)
	if tr.errs != nil {
		return nil, tr.errs
	}
	return t, nil
}

type transformer struct {
	lifted int
	errs   errors.Error
}

func (tr *transformer) errf(t term.Term, format string, args ...interface{}) {
	err := errors.Newf(term.Pos(t), format, args...)
	tr.errs = errors.Append(tr.errs, errors.WithCode(errors.InternalError, err))
}

// materialize attaches to every meta-value the checks derived from its
// annotations. The derivation bakes blame labels in, so the result is a
// list of plain one-argument terms the evaluator applies by ordinary
// application.
func (tr *transformer) materialize(t term.Term) term.Term {
	switch x := t.(type) {
	case *term.Fun:
		return &term.Fun{Src: x.Src, Param: x.Param, Body: tr.materialize(x.Body)}
	case *term.Let:
		return &term.Let{Src: x.Src, Name: x.Name, Value: tr.materialize(x.Value), Body: tr.materialize(x.Body)}
	case *term.App:
		return &term.App{Src: x.Src, Fn: tr.materialize(x.Fn), Arg: tr.materialize(x.Arg)}
	case *term.Op1:
		return &term.Op1{Src: x.Src, Op: x.Op, X: tr.materialize(x.X)}
	case *term.Op2:
		return &term.Op2{Src: x.Src, Op: x.Op, X: tr.materialize(x.X), Y: tr.materialize(x.Y)}
	case *term.List:
		elems := make([]term.Term, len(x.Elems))
		for i, e := range x.Elems {
			elems[i] = tr.materialize(e)
		}
		return &term.List{Src: x.Src, Elems: elems}
	case *term.RecRecord:
		fields := make(map[string]term.Term, len(x.Fields))
		for name, f := range x.Fields {
			fields[name] = tr.materialize(f)
		}
		return &term.RecRecord{Src: x.Src, Fields: fields}
	case *term.MetaValue:
		mv := *x
		if x.Value != nil {
			mv.Value = tr.materialize(x.Value)
		}
		if len(x.Annots) > 0 && len(x.Contracts) == 0 {
			mv.Contracts = make([]term.Contract, 0, len(x.Annots))
			for _, a := range x.Annots {
				ty, ok := a.Type.(types.Type)
				if !ok {
					tr.errf(x, "annotation carries a foreign type %T", a.Type)
					continue
				}
				mv.Contracts = append(mv.Contracts, term.Contract{
					Fn: types.Contract(ty, a.L),
					L:  a.L,
				})
			}
		}
		return &mv
	}
	return t
}

// share rewrites composite literals so that element and field
// computations live in generated let bindings outside the literal.
// For lists this deduplicates the work behind repeated element access.
// For records it additionally survives merging: a merged record rebinds
// every field against the union scope, and a rebound body that is just
// a variable re-resolves to the one shared thunk instead of redoing the
// computation.
//
// A record field moves only when its value is closed. Any free
// identifier in a field body can be captured by the field set of a
// later merge, so an open value has to stay inside the field, where
// rebinding can reach it.
func (tr *transformer) share(t term.Term) term.Term {
	switch x := t.(type) {
	case *term.Fun:
		return &term.Fun{Src: x.Src, Param: x.Param, Body: tr.share(x.Body)}
	case *term.Let:
		return &term.Let{Src: x.Src, Name: x.Name, Value: tr.share(x.Value), Body: tr.share(x.Body)}
	case *term.App:
		return &term.App{Src: x.Src, Fn: tr.share(x.Fn), Arg: tr.share(x.Arg)}
	case *term.Op1:
		return &term.Op1{Src: x.Src, Op: x.Op, X: tr.share(x.X)}
	case *term.Op2:
		return &term.Op2{Src: x.Src, Op: x.Op, X: tr.share(x.X), Y: tr.share(x.Y)}
	case *term.MetaValue:
		mv := *x
		if x.Value != nil {
			mv.Value = tr.share(x.Value)
		}
		return &mv

	case *term.List:
		elems := make([]term.Term, len(x.Elems))
		var binds []bind
		for i, e := range x.Elems {
			e = tr.share(e)
			if liftable(e) {
				name := tr.fresh()
				binds = append(binds, bind{name, e})
				e = &term.Var{Src: e.Source(), Name: name}
			}
			elems[i] = e
		}
		return wrapLets(binds, &term.List{Src: x.Src, Elems: elems})

	case *term.RecRecord:
		names := make([]string, 0, len(x.Fields))
		for name := range x.Fields {
			names = append(names, name)
		}
		slices.Sort(names)

		fields := make(map[string]term.Term, len(x.Fields))
		var binds []bind
		for _, name := range names {
			v := tr.share(x.Fields[name])
			switch f := v.(type) {
			case *term.MetaValue:
				// Lift the underlying value; the metadata stays on the
				// field, where merging needs it.
				if f.Value != nil && liftable(f.Value) && closed(f.Value, nil) {
					gen := tr.fresh()
					binds = append(binds, bind{gen, f.Value})
					mv := *f
					mv.Value = &term.Var{Src: f.Value.Source(), Name: gen}
					v = &mv
				}
			default:
				if liftable(v) && closed(v, nil) {
					gen := tr.fresh()
					binds = append(binds, bind{gen, v})
					v = &term.Var{Src: v.Source(), Name: gen}
				}
			}
			fields[name] = v
		}
		return wrapLets(binds, &term.RecRecord{Src: x.Src, Fields: fields})
	}
	return t
}

type bind struct {
	name  string
	value term.Term
}

func wrapLets(binds []bind, body term.Term) term.Term {
	for i := len(binds) - 1; i >= 0; i-- {
		body = &term.Let{Src: body.Source(), Name: binds[i].name, Value: binds[i].value, Body: body}
	}
	return body
}

func (tr *transformer) fresh() string {
	tr.lifted++
	return fmt.Sprintf("%%l%d", tr.lifted)
}

// liftable reports whether sharing a term through a generated binding
// gains anything: anything but a constant, a variable, or a function
// literal does.
func liftable(t term.Term) bool {
	switch t.(type) {
	case *term.Var, *term.Bool, *term.Num, *term.Str, *term.Fun, *term.Lbl, *term.Sym:
		return false
	}
	return true
}

// closed reports whether t mentions no identifier beyond those bound
// within t itself. bound carries the names already introduced by
// enclosing binders of t; callers start with nil.
//
// Only closed values may move out of a record field. A merged record
// rebinds field bodies against the union field set, so any free
// identifier in a body can still be captured by a field a later merge
// contributes; a lifted binding would freeze it to the enclosing scope
// instead.
func closed(t term.Term, bound map[string]bool) bool {
	switch x := t.(type) {
	case *term.Var:
		return bound[x.Name]
	case *term.Fun:
		return closed(x.Body, with(bound, x.Param))
	case *term.Let:
		return closed(x.Value, bound) && closed(x.Body, with(bound, x.Name))
	case *term.App:
		return closed(x.Fn, bound) && closed(x.Arg, bound)
	case *term.Op1:
		return closed(x.X, bound)
	case *term.Op2:
		return closed(x.X, bound) && closed(x.Y, bound)
	case *term.List:
		for _, e := range x.Elems {
			if !closed(e, bound) {
				return false
			}
		}
	case *term.RecRecord:
		// Fields of a record literal are in scope for each other.
		inner := with(bound)
		for name := range x.Fields {
			inner[name] = true
		}
		for _, f := range x.Fields {
			if !closed(f, inner) {
				return false
			}
		}
	case *term.MetaValue:
		if x.Value != nil && !closed(x.Value, bound) {
			return false
		}
		for _, ct := range x.Contracts {
			if !closed(ct.Fn, bound) {
				return false
			}
		}
	}
	return true
}

func with(bound map[string]bool, names ...string) map[string]bool {
	m := make(map[string]bool, len(bound)+len(names))
	for name := range bound {
		m[name] = true
	}
	for _, name := range names {
		m[name] = true
	}
	return m
}
