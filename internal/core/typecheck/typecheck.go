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

// Package typecheck implements the static side of the gradual type
// system: a bidirectional checker that walks untyped code permissively
// and switches to unification-based inference inside static type
// annotations.
//
// Outside an annotation the only static errors are unbound identifiers;
// shape mismatches in untyped code surface at evaluation instead. A ':'
// annotation opens a typed block. Within it, types are synthesized
// bottom-up, checked top-down where the context prescribes a type, and
// joined through unification variables. Contract annotations stay
// opaque: a contract-only value has type Dyn, the type that unifies
// with everything, and its inside is dynamic again. That asymmetry is
// the boundary between the static and the dynamic halves of the
// language.
package typecheck

import (
	"lodelang.org/go/internal/core/term"
	"lodelang.org/go/internal/core/types"
	"lodelang.org/go/lode/errors"
)

// An Env maps identifiers to their types. It parallels the evaluation
// environment chain shape for shape, shadowing rule for shadowing rule,
// so a session can keep the two in lockstep binding for binding. Only
// fully resolved types are stored; unification variables never escape a
// Check into an Env.
type Env struct {
	Up       *Env
	Bindings map[string]types.Type
}

// NewEnv returns an empty environment extending up, which may be nil.
func NewEnv(up *Env) *Env {
	return &Env{Up: up, Bindings: map[string]types.Type{}}
}

// Bind adds or replaces a binding in the innermost scope.
func (e *Env) Bind(name string, ty types.Type) {
	e.Bindings[name] = ty
}

// With returns a child environment holding one additional binding.
func (e *Env) With(name string, ty types.Type) *Env {
	child := NewEnv(e)
	child.Bind(name, ty)
	return child
}

// Lookup resolves name against the innermost scope that binds it.
func (e *Env) Lookup(name string) (types.Type, bool) {
	for env := e; env != nil; env = env.Up {
		if ty, ok := env.Bindings[name]; ok {
			return ty, true
		}
	}
	return nil, false
}

// Check typechecks t under env and returns its apparent type. A nil env
// declares nothing. The returned error, if any, carries code TypeError
// and one entry per problem found.
func Check(t term.Term, env *Env) (types.Type, errors.Error) {
	c := &checker{outer: env}
	c.walkTerm(nil, t)
	if c.errs != nil {
		return nil, c.errs
	}
	// A bare identifier reports the type it was bound at rather than
	// the Dyn its term shape suggests.
	if v, ok := t.(*term.Var); ok {
		if ty, ok := env.Lookup(v.Name); ok {
			return ty, nil
		}
	}
	return Apparent(t), nil
}

// Apparent reports the type evident from a term's surface without
// checking it: its first static annotation, the primitive type of a
// literal, or Dyn. It is the type a session records for a toplevel
// binding and the one the query surface reports.
func Apparent(t term.Term) types.Type {
	switch x := t.(type) {
	case *term.MetaValue:
		for _, a := range x.Annots {
			if !a.Static {
				continue
			}
			if ty, ok := a.Type.(types.Type); ok {
				return ty
			}
		}
		if x.Value != nil {
			return Apparent(x.Value)
		}
	case *term.Bool:
		return types.Bool
	case *term.Num:
		return types.Number
	case *term.Str:
		return types.String
	case *term.List:
		return &types.List{Elem: types.Dyn}
	}
	return types.Dyn
}
