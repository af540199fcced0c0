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

package lode

import (
	"fmt"

	"lodelang.org/go/internal/core/compile"
	"lodelang.org/go/internal/core/term"
	"lodelang.org/go/internal/core/transform"
	"lodelang.org/go/internal/core/typecheck"
	"lodelang.org/go/internal/core/types"
	"lodelang.org/go/lode/parser"
)

// A Session is an incremental evaluation context: the backend of a
// read-eval-print loop. Toplevel bindings accumulate in an evaluation
// environment and a typing environment that move in lockstep: a name
// enters both or neither. Session environments extend the runtime's and
// never modify it, so many sessions can share one Runtime.
type Session struct {
	rt      *Runtime
	evalEnv *term.Environment
	typeEnv *typecheck.Env
	n       int // names the inputs in diagnostics
}

// NewSession creates a session on top of the runtime's environments.
func (rt *Runtime) NewSession() *Session {
	return &Session{rt: rt, evalEnv: rt.evalEnv, typeEnv: rt.typeEnv}
}

// A Result is the outcome of one unit of session input.
type Result struct {
	// Name is the identifier a toplevel let bound; empty for a plain
	// expression.
	Name string

	// Value is the evaluated input. It is the zero Value for a
	// toplevel let, which binds lazily and evaluates nothing.
	Value Value

	// Type is the input's apparent static type.
	Type types.Type
}

// Eval processes one unit of input. A toplevel let, "let x = e" with no
// in, extends both session environments without evaluating e; any other
// input is evaluated to weak head normal form. Incomplete input is
// reported with an error for which errors.IsIncomplete holds, so an
// interactive caller can ask for more lines instead of failing.
func (s *Session) Eval(src string) (*Result, error) {
	s.n++
	inp, err := parser.ParseInput(fmt.Sprintf("repl-%d", s.n), src)
	if err != nil {
		return nil, err
	}
	name, t, cerr := compile.Input(inp)
	if cerr != nil {
		return nil, cerr
	}
	ty, terr := typecheck.Check(t, s.typeEnv)
	if terr != nil {
		return nil, terr
	}
	tt, xerr := transform.Term(t)
	if xerr != nil {
		return nil, xerr
	}

	if name != "" {
		// The thunk closes over the environment before the binding, so
		// a let is not recursive and rebinding a name shadows the old
		// thunk without disturbing values that captured it.
		th := &term.Thunk{Body: tt, Env: s.evalEnv}
		s.evalEnv = s.evalEnv.With(name, th)
		s.typeEnv = s.typeEnv.With(name, ty)
		return &Result{Name: name, Type: ty}, nil
	}

	v, venv, eerr := s.rt.ev.Eval(tt, s.evalEnv)
	if eerr != nil {
		return nil, eerr
	}
	return &Result{Value: Value{rt: s.rt, t: v, env: venv}, Type: ty}, nil
}

// Load evaluates a source, which must produce a record, and binds every
// field of the result into the session environments. It returns the
// bound names in sorted order.
func (s *Session) Load(filename, src string) ([]string, error) {
	tt, _, err := s.rt.pipeline(filename, src, s.typeEnv)
	if err != nil {
		return nil, err
	}
	eenv, tenv, names, err := s.rt.loadRecord(tt, s.evalEnv, s.typeEnv)
	if err != nil {
		return nil, err
	}
	s.evalEnv, s.typeEnv = eenv, tenv
	return names, nil
}

// Names returns the names visible in the session, the runtime's and
// the session's own, in sorted order.
func (s *Session) Names() []string { return envNames(s.evalEnv) }

// Typecheck checks src against the session's typing environment and
// reports its apparent type. Nothing is evaluated and nothing is bound.
func (s *Session) Typecheck(src string) (types.Type, error) {
	s.n++
	x, err := parser.ParseExpr(fmt.Sprintf("repl-%d", s.n), src)
	if err != nil {
		return nil, err
	}
	t, cerr := compile.Expr(x)
	if cerr != nil {
		return nil, cerr
	}
	ty, terr := typecheck.Check(t, s.typeEnv)
	if terr != nil {
		return nil, terr
	}
	return ty, nil
}

// Query evaluates src only as far as its outermost metadata and reports
// it. The underlying value is reduced to its head but no further, so a
// record's fields are named without being evaluated.
func (s *Session) Query(src string) (*QueryResult, error) {
	s.n++
	tt, _, err := s.rt.pipeline(fmt.Sprintf("repl-%d", s.n), src, s.typeEnv)
	if err != nil {
		return nil, err
	}
	m, menv, eerr := s.rt.ev.Meta(tt, s.evalEnv)
	if eerr != nil {
		return nil, eerr
	}

	q := &QueryResult{}
	v := m
	if mv, ok := m.(*term.MetaValue); ok {
		q.Doc = mv.Doc
		for _, a := range mv.Annots {
			if a.Static {
				q.Types = append(q.Types, a.Type.String())
			} else {
				q.Contracts = append(q.Contracts, a.Type.String())
			}
		}
		if mv.Value == nil {
			return q, nil
		}
		q.Default = mv.Priority == term.Default
		v, _, eerr = s.rt.ev.Meta(mv.Value, menv)
		if eerr != nil {
			return nil, eerr
		}
	}
	q.Value = term.Shallow(v)
	if rec, ok := v.(*term.Record); ok {
		q.Fields = rec.FieldNames()
	}
	return q, nil
}
