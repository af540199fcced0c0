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

// Package eval reduces terms to weak head normal form.
//
// Evaluation is call-by-need: variables resolve to thunks that are
// forced at most once and memoize their result. A weak head normal
// form is a constant, a function, a record, a list, or a meta-value;
// records and lists keep their parts unevaluated until demanded.
//
// The evaluator distinguishes two degrees of strictness. Meta stops at
// the outermost meta-value so callers can inspect documentation,
// priorities, and annotations without triggering checks. Eval looks
// through meta-values, running any pending contracts on the way; this
// is the form the rest of a computation consumes.
package eval

import (
	"github.com/cockroachdb/apd/v3"

	"lodelang.org/go/internal/core/merge"
	"lodelang.org/go/internal/core/term"
	"lodelang.org/go/lode/errors"
)

// DefaultMaxDepth bounds evaluator recursion when a Config does not say
// otherwise. Exceeding the bound is an evaluation error, not a crash.
const DefaultMaxDepth = 1 << 16

// A Config parameterizes a Context. The zero value is a usable
// default.
type Config struct {
	// MaxDepth bounds the depth of the reduction stack. Zero means
	// DefaultMaxDepth.
	MaxDepth int

	// Logf, when set, receives an indented trace of every reduction
	// step. Tracing is expensive and meant for debugging.
	Logf func(format string, args ...interface{})
}

// A Context carries the state of an evaluation: the recursion guard and
// the numeric context shared by all arithmetic.
type Context struct {
	maxDepth int
	depth    int
	logf     func(format string, args ...interface{})
	num      *apd.Context
}

// New creates an evaluation Context. cfg may be nil.
func New(cfg *Config) *Context {
	if cfg == nil {
		cfg = &Config{}
	}
	maxDepth := cfg.MaxDepth
	if maxDepth == 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Context{
		maxDepth: maxDepth,
		logf:     cfg.Logf,
		num:      apd.BaseContext.WithPrecision(34),
	}
}

// Eval reduces t to weak head normal form, looking through meta-values
// and running their pending contracts. The returned environment
// interprets the free variables of the returned term and may be nil for
// self-contained values.
func (c *Context) Eval(t term.Term, env *term.Environment) (term.Term, *term.Environment, errors.Error) {
	return c.strict(t, env)
}

// Meta reduces t to weak head normal form but stops at the outermost
// meta-value, leaving its contracts unapplied. This is the entry point
// for metadata queries.
func (c *Context) Meta(t term.Term, env *term.Environment) (term.Term, *term.Environment, errors.Error) {
	return c.whnf(t, env)
}

// Deep recursively forces t: every record field and list element is
// evaluated, transitively. The root value is returned in weak head
// normal form.
func (c *Context) Deep(t term.Term, env *term.Environment) (term.Term, *term.Environment, errors.Error) {
	v, venv, err := c.strict(t, env)
	if err != nil {
		return nil, nil, err
	}
	switch x := v.(type) {
	case *term.List:
		for _, e := range x.Elems {
			if _, _, err := c.Deep(e, venv); err != nil {
				return nil, nil, err
			}
		}
	case *term.Record:
		for _, name := range x.FieldNames() {
			fv, fenv, err := c.Force(x.Fields[name].Value)
			if err != nil {
				return nil, nil, err
			}
			if _, _, err := c.Deep(fv, fenv); err != nil {
				return nil, nil, err
			}
		}
	}
	return v, venv, nil
}

// Force evaluates a thunk, memoizing the result. A thunk whose body
// reduces to a meta-value with pending contracts memoizes the checked
// form, so the checks run at most once no matter how often the thunk is
// consumed. Forcing a thunk that is already being forced reports a
// cyclic reference.
func (c *Context) Force(th *term.Thunk) (term.Term, *term.Environment, errors.Error) {
	switch th.State {
	case term.Evaluated:
		return th.Val, th.VEnv, nil
	case term.Forcing:
		return nil, nil, errors.Newf(term.Pos(th.Body),
			"cyclic reference: value depends on itself")
	}
	th.State = term.Forcing
	v, venv, err := c.whnf(th.Body, th.Env)
	if err == nil {
		// A value-less meta-value memoizes as is: it can still be
		// queried for its metadata, and consuming it strictly errors at
		// the consumer.
		if mv, ok := v.(*term.MetaValue); ok && mv.Value != nil && len(mv.Contracts) > 0 && !mv.Checked {
			var cv term.Term
			var cenv *term.Environment
			cv, cenv, err = c.applyChecks(mv, venv)
			if err == nil {
				v = &term.MetaValue{
					Src:       mv.Src,
					Value:     capture(cv, cenv),
					Doc:       mv.Doc,
					Priority:  mv.Priority,
					Annots:    mv.Annots,
					Contracts: mv.Contracts,
					Checked:   true,
				}
				venv = nil
			}
		}
	}
	if err != nil {
		th.State = term.Suspended
		return nil, nil, err
	}
	th.Val, th.VEnv = v, venv
	th.State = term.Evaluated
	th.Evals++
	return v, venv, nil
}

// strict reduces t to weak head normal form and then looks through
// meta-values: pending contracts are applied and the underlying value
// continues to reduce. A meta-value without a value cannot be consumed
// strictly.
func (c *Context) strict(t term.Term, env *term.Environment) (term.Term, *term.Environment, errors.Error) {
	v, venv, err := c.whnf(t, env)
	for err == nil {
		mv, ok := v.(*term.MetaValue)
		if !ok {
			break
		}
		if len(mv.Contracts) > 0 && !mv.Checked {
			v, venv, err = c.applyChecks(mv, venv)
			continue
		}
		if mv.Value == nil {
			return nil, nil, errors.Newf(term.Pos(mv),
				"no value: the field declares only metadata")
		}
		v, venv, err = c.whnf(mv.Value, venv)
	}
	return v, venv, err
}

// applyChecks runs the pending contracts of mv against its value, in
// annotation order, and returns the checked value.
func (c *Context) applyChecks(mv *term.MetaValue, env *term.Environment) (term.Term, *term.Environment, errors.Error) {
	if mv.Value == nil {
		return nil, nil, errors.Newf(term.Pos(mv),
			"no value: the field declares only metadata")
	}
	t := capture(mv.Value, env)
	for _, ct := range mv.Contracts {
		t = &term.App{Src: mv.Src, Fn: ct.Fn, Arg: t}
	}
	return c.whnf(t, env)
}

// whnf is the reduction loop proper. It stops at any value, including
// meta-values.
func (c *Context) whnf(t term.Term, env *term.Environment) (_ term.Term, _ *term.Environment, err errors.Error) {
	c.depth++
	defer func() { c.depth-- }()
	if c.depth > c.maxDepth {
		return nil, nil, errors.Newf(term.Pos(t),
			"evaluation depth limit exceeded (%d)", c.maxDepth)
	}
	if c.logf != nil {
		c.logf("%*seval %s", 2*c.depth, "", term.Debug(t))
	}

	switch x := t.(type) {
	case *term.Var:
		th, ok := env.Lookup(x.Name)
		if !ok {
			return nil, nil, errors.Newf(term.Pos(t), "unbound identifier %q", x.Name)
		}
		return c.Force(th)

	case *term.Closure:
		return c.Force(x.Th)

	case *term.Let:
		th := &term.Thunk{Body: x.Value, Env: env}
		return c.whnf(x.Body, env.With(x.Name, th))

	case *term.App:
		fn, fenv, err := c.strict(x.Fn, env)
		if err != nil {
			return nil, nil, err
		}
		f, ok := fn.(*term.Fun)
		if !ok {
			return nil, nil, errors.Newf(term.Pos(t),
				"cannot apply %s: not a function", term.Shallow(fn))
		}
		th := &term.Thunk{Body: x.Arg, Env: env}
		if cl, ok := x.Arg.(*term.Closure); ok {
			// Keep the existing thunk so its memo is shared.
			th = cl.Th
		}
		return c.whnf(f.Body, fenv.With(f.Param, th))

	case *term.RecRecord:
		return term.NewRecord(x.Src, x.Fields, env), nil, nil

	case *term.Op1:
		return c.op1(x, env)

	case *term.Op2:
		return c.op2(x, env)

	case *term.Bool, *term.Num, *term.Str, *term.Fun, *term.Record,
		*term.List, *term.MetaValue, *term.Lbl, *term.Sym, *term.Sealed:
		return t, env, nil
	}
	return nil, nil, errors.WithCode(errors.InternalError,
		errors.Newf(term.Pos(t), "unexpected term %T in evaluation", t))
}

// makeOperand normalizes one side of a merge: the term is reduced to
// weak head normal form and any stack of meta-values is flattened into
// a single layer of metadata over the underlying value. Inner
// documentation wins, a default priority anywhere sticks, and contracts
// accumulate in annotation order, each closed over the scope it was
// found in.
func (c *Context) makeOperand(t term.Term, env *term.Environment) (merge.Operand, errors.Error) {
	var op merge.Operand
	v, venv, err := c.whnf(t, env)
	for err == nil {
		mv, ok := v.(*term.MetaValue)
		if !ok {
			break
		}
		if mv.Doc != "" {
			op.Doc = mv.Doc
		}
		if mv.Priority < op.Priority {
			op.Priority = mv.Priority
		}
		op.Annots = append(op.Annots, mv.Annots...)
		for _, ct := range mv.Contracts {
			op.Contracts = append(op.Contracts, term.Contract{Fn: capture(ct.Fn, venv), L: ct.L})
		}
		if mv.Value == nil {
			v = nil
			break
		}
		v, venv, err = c.whnf(mv.Value, venv)
	}
	if err != nil {
		return merge.Operand{}, err
	}
	op.Value, op.Env = v, venv
	return op, nil
}

// capture closes a term over the environment interpreting it. Terms
// with no free variables pass through.
func capture(t term.Term, env *term.Environment) term.Term {
	if t == nil || env == nil {
		return t
	}
	switch t.(type) {
	case *term.Bool, *term.Num, *term.Str, *term.Record, *term.Lbl, *term.Sym, *term.Closure:
		return t
	}
	return &term.Closure{Th: &term.Thunk{Body: t, Env: env}}
}

// blame reports a broken contract, pointing at the annotation that
// introduced it and naming the party at fault.
func blame(l term.Label) errors.Error {
	if len(l.Path) > 0 {
		return errors.Newf(l.Pos, "contract %s broken by %s (%s)",
			l.Tag, l.Fault(), l.PathString())
	}
	return errors.Newf(l.Pos, "contract %s broken by %s", l.Tag, l.Fault())
}
