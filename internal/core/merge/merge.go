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

// Package merge implements the merge semantics: priority dominance,
// metadata accumulation, and field-wise recursive record merging.
//
// The engine is purely structural. It consumes operands the evaluator
// has already normalized and never forces a thunk itself: two-sided
// record fields become deferred merge terms that the evaluator reduces
// if and when the field is demanded. Merging is commutative and
// associative for operands that merge at all; priorities only decide
// outcomes when they differ.
package merge

import (
	"lodelang.org/go/internal/core/term"
	"lodelang.org/go/lode/ast"
	"lodelang.org/go/lode/errors"
	"lodelang.org/go/lode/token"
)

// An Operand is one side of a merge in the form the engine consumes:
// metadata unwrapped, and the underlying value, if any, in weak head
// normal form under Env. The evaluator builds operands; forcing to this
// form is its job, not the engine's.
type Operand struct {
	Value term.Term // weak head normal form, or nil for a meta-only operand
	Env   *term.Environment

	Doc       string
	Priority  term.MergePriority
	Annots    []term.Annot
	Contracts []term.Contract
}

// A FieldSrc locates a deferred field merge: the span of the merge
// expression that created it and the path of the field it resolves.
// The evaluator threads Path back into Values when the deferred term is
// forced, so a conflict names the field it belongs to.
type FieldSrc struct {
	From, To token.Pos
	Path     string
}

func (s *FieldSrc) Pos() token.Pos { return s.From }
func (s *FieldSrc) End() token.Pos { return s.To }

// Values merges two operands. src spans the merge expression and path
// names the record field being merged, or "" at the top level.
//
// The result is a term with the environment interpreting it, which is
// nil when the term is self-contained. When the merged metadata is
// empty the underlying value is returned bare; otherwise the value is
// wrapped in a meta-value carrying the union of both sides' contracts
// and annotations, the first non-empty doc, and the dominant priority.
func Values(src ast.Node, path string, x, y Operand) (term.Term, *term.Environment, errors.Error) {
	var (
		value term.Term
		env   *term.Environment
	)
	switch {
	case x.Priority > y.Priority:
		value, env = x.Value, x.Env
	case y.Priority > x.Priority:
		value, env = y.Value, y.Env

	// Equal priority: a missing value defers to the present one.
	case x.Value == nil:
		value, env = y.Value, y.Env
	case y.Value == nil:
		value, env = x.Value, x.Env

	default:
		rx, okx := x.Value.(*term.Record)
		ry, oky := y.Value.(*term.Record)
		switch {
		case okx && oky:
			value, env = mergeRecords(src, path, rx, ry), nil
		case sameScalar(x.Value, y.Value):
			value, env = x.Value, x.Env
		default:
			return nil, nil, conflict(src, path, x.Value, y.Value)
		}
	}

	prio := x.Priority
	if y.Priority > prio {
		prio = y.Priority
	}
	doc := x.Doc
	if doc == "" {
		doc = y.Doc
	}
	contracts := unionContracts(x, y)
	annots := unionAnnots(x, y)

	if doc == "" && prio == term.Normal && len(contracts) == 0 && len(annots) == 0 {
		return value, env, nil
	}
	mv := &term.MetaValue{
		Src:       src,
		Value:     capture(value, env),
		Doc:       doc,
		Priority:  prio,
		Annots:    annots,
		Contracts: contracts,
	}
	return mv, nil, nil
}

// mergeRecords merges two records field-wise. One-sided fields pass
// through; two-sided fields defer to a merge term forced on demand.
// Every field of the result is rebound against the union field set:
// each conjunct's body closes over its own base scope with the merged
// record's fields layered on top, so sibling references written in one
// fragment resolve to the merged result.
func mergeRecords(src ast.Node, path string, rx, ry *term.Record) *term.Record {
	res := &term.Record{Src: src, Fields: map[string]*term.Field{}}
	for name, f := range rx.Fields {
		res.Fields[name] = &term.Field{
			Value:     &term.Thunk{},
			Conjuncts: append([]term.Conjunct{}, f.Conjuncts...),
		}
	}
	for name, f := range ry.Fields {
		rf, ok := res.Fields[name]
		if !ok {
			res.Fields[name] = &term.Field{
				Value:     &term.Thunk{},
				Conjuncts: append([]term.Conjunct{}, f.Conjuncts...),
			}
			continue
		}
		rf.Conjuncts = append(rf.Conjuncts, f.Conjuncts...)
	}

	// One scope layer per distinct base, each binding the full field
	// set of the result.
	layers := map[*term.Environment]*term.Environment{}
	layer := func(base *term.Environment) *term.Environment {
		if e, ok := layers[base]; ok {
			return e
		}
		e := term.NewEnvironment(base)
		for name, f := range res.Fields {
			e.Bind(name, f.Value)
		}
		layers[base] = e
		return e
	}

	for name, f := range res.Fields {
		if len(f.Conjuncts) == 1 {
			c := f.Conjuncts[0]
			f.Value.Body = c.Body
			f.Value.Env = layer(c.Base)
			continue
		}
		fsrc := &FieldSrc{Path: joinPath(path, name)}
		if src != nil {
			fsrc.From, fsrc.To = src.Pos(), src.End()
		}
		acc := closureTerm(f.Conjuncts[0], layer)
		for _, c := range f.Conjuncts[1:] {
			acc = &term.Op2{Src: fsrc, Op: term.MergeOp, X: acc, Y: closureTerm(c, layer)}
		}
		f.Value.Body = acc
	}
	return res
}

func closureTerm(c term.Conjunct, layer func(*term.Environment) *term.Environment) term.Term {
	return &term.Closure{Th: &term.Thunk{Body: c.Body, Env: layer(c.Base)}}
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

// sameScalar reports whether two values are equal scalars. Equal
// scalars merge to themselves; everything else at equal priority is a
// conflict.
func sameScalar(x, y term.Term) bool {
	switch x := x.(type) {
	case *term.Bool:
		y, ok := y.(*term.Bool)
		return ok && x.B == y.B
	case *term.Num:
		y, ok := y.(*term.Num)
		return ok && x.X.Cmp(&y.X) == 0
	case *term.Str:
		y, ok := y.(*term.Str)
		return ok && x.S == y.S
	}
	return false
}

func conflict(src ast.Node, path string, x, y term.Term) errors.Error {
	pos := token.NoPos
	if src != nil {
		pos = src.Pos()
	}
	if p := term.Pos(x); p != token.NoPos {
		pos = p
	}
	if path == "" {
		return errors.Newf(pos, "merge conflict: cannot merge %s and %s",
			term.Shallow(x), term.Shallow(y))
	}
	return errors.Newf(pos, "merge conflict for field %q: cannot merge %s and %s",
		path, term.Shallow(x), term.Shallow(y))
}

// capture binds a value to the environment interpreting it so it can
// be carried inside a meta-value without losing its scope.
// Self-contained values pass through.
func capture(value term.Term, env *term.Environment) term.Term {
	if value == nil || env == nil {
		return value
	}
	switch value.(type) {
	case *term.Bool, *term.Num, *term.Str, *term.Record, *term.Lbl, *term.Sym, *term.Closure:
		return value
	}
	return &term.Closure{Th: &term.Thunk{Body: value, Env: env}}
}

type annotKey struct {
	tag      string
	pos, end token.Pos
}

// unionContracts concatenates both sides' checks, closing each over its
// side's environment and dropping exact duplicates (same rendering and
// same annotation span). Semantic deduplication is not attempted; a
// contract repeated from distinct annotations checks twice.
func unionContracts(x, y Operand) []term.Contract {
	var out []term.Contract
	seen := map[annotKey]bool{}
	add := func(cs []term.Contract, env *term.Environment) {
		for _, c := range cs {
			k := annotKey{c.L.Tag, c.L.Pos, c.L.End}
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, term.Contract{Fn: capture(c.Fn, env), L: c.L})
		}
	}
	add(x.Contracts, x.Env)
	add(y.Contracts, y.Env)
	return out
}

func unionAnnots(x, y Operand) []term.Annot {
	var out []term.Annot
	seen := map[annotKey]bool{}
	add := func(as []term.Annot) {
		for _, a := range as {
			k := annotKey{a.L.Tag, a.L.Pos, a.L.End}
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, a)
		}
	}
	add(x.Annots)
	add(y.Annots)
	return out
}
