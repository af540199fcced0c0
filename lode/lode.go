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

// Package lode is the programmatic interface to the Lode configuration
// language. It strings the core pipeline together: parse, typecheck,
// transform, evaluate. A Runtime carries the evaluator and the
// preloaded standard library; a Program is one compiled source; a
// Session accumulates toplevel bindings the way an interactive frontend
// needs them.
package lode

import (
	"slices"

	"lodelang.org/go/internal/core/compile"
	"lodelang.org/go/internal/core/eval"
	"lodelang.org/go/internal/core/term"
	"lodelang.org/go/internal/core/transform"
	"lodelang.org/go/internal/core/typecheck"
	"lodelang.org/go/internal/core/types"
	"lodelang.org/go/lode/errors"
	"lodelang.org/go/lode/parser"
	"lodelang.org/go/stdlib"
)

// A Config parameterizes a Runtime. The zero value is a usable default.
type Config struct {
	// MaxDepth bounds evaluator recursion. Zero means the evaluator's
	// default.
	MaxDepth int

	// Logf, when set, receives the evaluator's reduction trace.
	Logf func(format string, args ...interface{})

	// SkipStdlib leaves the standard library out of the preloaded
	// environment.
	SkipStdlib bool
}

// A Runtime owns an evaluator and the environment pair every program
// and session starts from: the evaluation environment and the typing
// environment, holding the same names. The standard library is loaded
// once, at construction, through the same pipeline as user code.
//
// The core is single-threaded; a Runtime and the values derived from it
// must not be used concurrently.
type Runtime struct {
	ev      *eval.Context
	evalEnv *term.Environment
	typeEnv *typecheck.Env
}

// New creates a Runtime. cfg may be nil.
func New(cfg *Config) (*Runtime, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	rt := &Runtime{
		ev: eval.New(&eval.Config{MaxDepth: cfg.MaxDepth, Logf: cfg.Logf}),
	}
	if !cfg.SkipStdlib {
		for _, f := range stdlib.Files() {
			tt, _, err := rt.pipeline(f.Name, f.Source, rt.typeEnv)
			if err != nil {
				return nil, errors.Promote(err, "loading standard library")
			}
			eenv, tenv, _, err := rt.loadRecord(tt, rt.evalEnv, rt.typeEnv)
			if err != nil {
				return nil, errors.Promote(err, "loading standard library")
			}
			rt.evalEnv, rt.typeEnv = eenv, tenv
		}
	}
	return rt, nil
}

// pipeline runs one source through the front half of the system: parse,
// compile, typecheck against tenv, transform. The result is ready to
// evaluate.
func (rt *Runtime) pipeline(filename, src string, tenv *typecheck.Env) (term.Term, types.Type, error) {
	x, err := parser.ParseExpr(filename, src)
	if err != nil {
		return nil, nil, err
	}
	t, cerr := compile.Expr(x)
	if cerr != nil {
		return nil, nil, cerr
	}
	ty, terr := typecheck.Check(t, tenv)
	if terr != nil {
		return nil, nil, terr
	}
	tt, xerr := transform.Term(t)
	if xerr != nil {
		return nil, nil, xerr
	}
	return tt, ty, nil
}

// loadRecord evaluates tt, which must reduce to a record, and binds
// each of its fields into the given environment pair. The extended pair
// and the bound names are returned; the inputs are not modified.
func (rt *Runtime) loadRecord(tt term.Term, eenv *term.Environment, tenv *typecheck.Env) (*term.Environment, *typecheck.Env, []string, error) {
	v, _, err := rt.ev.Eval(tt, eenv)
	if err != nil {
		return nil, nil, nil, err
	}
	rec, ok := v.(*term.Record)
	if !ok {
		return nil, nil, nil, errors.Newf(term.Pos(tt),
			"cannot load %s: not a record", term.Shallow(v))
	}
	names := rec.FieldNames()
	for _, name := range names {
		f := rec.Fields[name]
		eenv = eenv.With(name, f.Value)
		tenv = tenv.With(name, typecheck.Apparent(f.Value.Body))
	}
	return eenv, tenv, names, nil
}

// Names returns the names bound in the runtime's base environment, in
// sorted order.
func (rt *Runtime) Names() []string { return envNames(rt.evalEnv) }

func envNames(env *term.Environment) []string {
	seen := make(map[string]bool)
	var names []string
	for e := env; e != nil; e = e.Up {
		for name := range e.Bindings {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	slices.Sort(names)
	return names
}

// A Value is an evaluation result: a term in weak head normal form
// together with the environment interpreting its unevaluated parts.
// The zero Value is invalid.
type Value struct {
	rt  *Runtime
	t   term.Term
	env *term.Environment
}

// Kind reports the value's head constructor.
func (v Value) Kind() term.Kind { return term.KindOf(v.t) }

// String renders the value's head without forcing anything beneath it.
func (v Value) String() string { return term.Shallow(v.t) }
