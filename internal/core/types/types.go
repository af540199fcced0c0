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

// Package types defines the type syntax shared by the typechecker and
// contract derivation: the closed set of types that annotations denote,
// their rendering for error messages, and the derivation of checking
// terms from types.
package types

import (
	"fmt"

	"lodelang.org/go/internal/core/term"
	"lodelang.org/go/lode/ast"
)

// A Type is a type from the annotation syntax. The set of
// implementations is closed; the typechecker switches exhaustively over
// it. Every Type satisfies term.TypeRef.
type Type interface {
	String() string
	typ()
}

// A Prim is one of the primitive types. Primitives are singletons:
// compare them by identity.
type Prim struct {
	name string
}

func (t *Prim) String() string { return t.name }

var (
	// Dyn is the dynamic type. It is the type of unannotated code and
	// of contract-only annotations, and unifies with everything.
	Dyn = &Prim{"Dyn"}

	Number = &Prim{"Number"}
	Bool   = &Prim{"Bool"}
	String = &Prim{"String"}
)

// Predeclared maps the primitive type names usable in annotations.
var Predeclared = map[string]*Prim{
	"Dyn":    Dyn,
	"Number": Number,
	"Bool":   Bool,
	"String": String,
}

// A List is the type of lists with elements of type Elem.
//
//	List Number
type List struct {
	Elem Type
}

func (t *List) String() string {
	return "List " + parens(t.Elem)
}

// An Arrow is a function type.
//
//	Number -> Bool
type Arrow struct {
	Dom, Cod Type
}

func (t *Arrow) String() string {
	// The arrow is right-associative; only a domain arrow needs
	// parentheses.
	dom := t.Dom.String()
	if _, ok := t.Dom.(*Arrow); ok {
		dom = "(" + dom + ")"
	}
	if _, ok := t.Dom.(*Forall); ok {
		dom = "(" + dom + ")"
	}
	return dom + " -> " + t.Cod.String()
}

// A Var is a type variable bound by an enclosing forall.
type Var struct {
	Name string
}

func (t *Var) String() string { return t.Name }

// A Forall quantifies a type variable.
//
//	forall a. a -> a
type Forall struct {
	Var  string
	Body Type
}

func (t *Forall) String() string {
	return fmt.Sprintf("forall %s. %s", t.Var, t.Body)
}

// A Flat is a user-written contract: an expression that must evaluate
// to a function taking a blame label and the checked value. Flat types
// are opaque to the typechecker, which treats them as Dyn.
//
//	between 1 10
type Flat struct {
	Term term.Term // compiled contract expression
	Src  ast.Expr  // the annotation as written, for rendering
}

func (t *Flat) String() string {
	if t.Src == nil {
		return "<contract>"
	}
	return exprString(t.Src)
}

// parens renders a type, parenthesized when it would not bind as a
// juxtaposition argument.
func parens(t Type) string {
	switch t.(type) {
	case *Prim, *Var:
		return t.String()
	}
	return "(" + t.String() + ")"
}

func (t *Prim) typ()   {}
func (t *List) typ()   {}
func (t *Arrow) typ()  {}
func (t *Var) typ()    {}
func (t *Forall) typ() {}
func (t *Flat) typ()   {}
