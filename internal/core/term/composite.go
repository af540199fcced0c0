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

package term

import (
	"slices"

	"lodelang.org/go/lode/ast"
)

// An Environment maps identifiers to the thunks holding their values.
// Environments form a chain; lookup walks towards the root. Extending an
// environment never mutates a parent, so tails are shared freely between
// closures.
type Environment struct {
	Up       *Environment
	Bindings map[string]*Thunk
}

// NewEnvironment returns an empty environment extending up, which may be
// nil.
func NewEnvironment(up *Environment) *Environment {
	return &Environment{Up: up, Bindings: map[string]*Thunk{}}
}

// Bind adds or replaces a binding in the innermost scope.
func (e *Environment) Bind(name string, th *Thunk) {
	e.Bindings[name] = th
}

// With returns a child environment holding one additional binding.
func (e *Environment) With(name string, th *Thunk) *Environment {
	child := NewEnvironment(e)
	child.Bind(name, th)
	return child
}

// Lookup resolves name against the innermost scope that binds it.
func (e *Environment) Lookup(name string) (*Thunk, bool) {
	for env := e; env != nil; env = env.Up {
		if th, ok := env.Bindings[name]; ok {
			return th, true
		}
	}
	return nil, false
}

// A ThunkState tracks the life cycle of a thunk's one evaluation.
type ThunkState uint8

const (
	// Suspended thunks have not been forced yet.
	Suspended ThunkState = iota
	// Forcing marks a thunk the evaluator has entered and not yet left.
	// Forcing a thunk in this state is a value cycle, such as
	// "let x = x in x", and is reported as an error rather than looping.
	Forcing
	// Evaluated thunks hold their weak head normal form in Val and VEnv.
	Evaluated
)

// A Thunk is the memoization cell behind every lazy binding: a term
// paired with its defining environment. The evaluator reduces Body at
// most once; later forces read the cached result.
//
// Body and Env are retained after evaluation so that merging can rebind
// a record field against a wider field set.
type Thunk struct {
	Body Term
	Env  *Environment

	State ThunkState
	Val   Term         // weak head normal form of Body
	VEnv  *Environment // environment interpreting Val

	// Evals counts how many times the evaluator actually reduced Body.
	// Memoization keeps it at most 1.
	Evals int
}

// A Conjunct is one contribution to a record field: the field body as
// written, together with Base, the scope surrounding the record literal
// that contributed it. Merging records concatenates the conjuncts of
// like-named fields; the merged record layers its complete field set on
// top of each Base, which is how sibling references resolve against the
// result of a merge rather than the fragment they were written in.
type Conjunct struct {
	Body Term
	Base *Environment
}

// A Field is one field of an evaluated record: the memoized thunk forced
// on access, plus the conjuncts needed to rebuild the binding when the
// record is merged.
type Field struct {
	Value     *Thunk
	Conjuncts []Conjunct
}

// A Record is a record in weak head normal form. Field values are lazy;
// selecting a field forces only that field's thunk.
type Record struct {
	Src    ast.Node
	Fields map[string]*Field
}

func (x *Record) Source() ast.Node { return x.Src }
func (x *Record) Kind() Kind       { return RecordKind }

// FieldNames returns the record's field names in sorted order.
func (x *Record) FieldNames() []string {
	names := make([]string, 0, len(x.Fields))
	for name := range x.Fields {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// NewRecord closes the fields of a record literal over base. All fields
// share one child scope binding every field name, so a field can
// reference its siblings regardless of declaration order.
func NewRecord(src ast.Node, fields map[string]Term, base *Environment) *Record {
	self := NewEnvironment(base)
	rec := &Record{Src: src, Fields: make(map[string]*Field, len(fields))}
	for name, body := range fields {
		th := &Thunk{Body: body, Env: self}
		rec.Fields[name] = &Field{
			Value:     th,
			Conjuncts: []Conjunct{{Body: body, Base: base}},
		}
		self.Bind(name, th)
	}
	return rec
}

// A Closure injects an existing thunk into the term tree. Merging
// introduces closures when a deferred field merge must reference the
// operand bindings it has already constructed; evaluating a closure
// forces its thunk.
type Closure struct {
	Th *Thunk
}

func (x *Closure) Source() ast.Node {
	if x.Th == nil || x.Th.Body == nil {
		return nil
	}
	return x.Th.Body.Source()
}
