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

// Package term defines the runtime term model of the Lode evaluator: the
// closed set of term variants produced by compilation, the environments
// and thunks that make evaluation lazy, and the blame labels carried by
// contract annotations.
//
// The set of variants is closed. Packages that consume terms switch
// exhaustively over it and treat an unknown variant as an internal error
// rather than recovering; extending the language means extending this
// package first.
package term

import (
	"strings"

	"lodelang.org/go/lode/ast"
	"lodelang.org/go/lode/token"
)

// A Term is a node in the runtime term tree.
//
// Implementations are pointers to the variant structs declared in this
// package. The Source method reports the syntax the term was compiled
// from; terms synthesized by contract derivation or merging have no
// source and return nil.
type Term interface {
	Source() ast.Node
	term()
}

// A Value is a term in weak head normal form. The evaluator returns
// values; every other variant is reducible.
type Value interface {
	Term
	Kind() Kind
}

// A TypeRef names a type from the annotation syntax without this package
// depending on the type representation. The dynamic type is always a
// types.Type; the typechecker recovers it by assertion. Keeping the
// reference abstract here is what lets types build contract terms while
// term stays at the bottom of the import graph.
type TypeRef interface {
	String() string
}

// Pos reports the position of the syntax a term was compiled from, or
// token.NoPos for synthesized terms.
func Pos(t Term) token.Pos {
	if t == nil {
		return token.NoPos
	}
	if src := t.Source(); src != nil {
		return src.Pos()
	}
	return token.NoPos
}

// A Kind reports the shape of a value. Kinds form a bitmask so that
// operator errors can name the set of shapes they accept.
type Kind uint16

const (
	BoolKind Kind = 1 << iota
	NumKind
	StringKind
	FunKind
	RecordKind
	ListKind
	LabelKind
	SymKind
	SealedKind
	MetaKind

	// ComparableKind covers the operands accepted by the ordering
	// operators.
	ComparableKind = NumKind | StringKind
)

var kindStrings = []struct {
	k Kind
	s string
}{
	{BoolKind, "Bool"},
	{NumKind, "Number"},
	{StringKind, "String"},
	{FunKind, "Function"},
	{RecordKind, "Record"},
	{ListKind, "List"},
	{LabelKind, "Label"},
	{SymKind, "SealingKey"},
	{SealedKind, "Sealed"},
	{MetaKind, "Annotated"},
}

func (k Kind) String() string {
	if k == 0 {
		return "(not a value)"
	}
	var parts []string
	for _, e := range kindStrings {
		if k&e.k != 0 {
			parts = append(parts, e.s)
		}
	}
	return strings.Join(parts, "|")
}

// KindOf reports the kind of a term in weak head normal form, or 0 for a
// term that is not a value.
func KindOf(t Term) Kind {
	if v, ok := t.(Value); ok {
		return v.Kind()
	}
	return 0
}

// Terms.

func (x *Var) term()       {}
func (x *Bool) term()      {}
func (x *Num) term()       {}
func (x *Str) term()       {}
func (x *Fun) term()       {}
func (x *Let) term()       {}
func (x *App) term()       {}
func (x *Op1) term()       {}
func (x *Op2) term()       {}
func (x *RecRecord) term() {}
func (x *Record) term()    {}
func (x *List) term()      {}
func (x *Lbl) term()       {}
func (x *Sym) term()       {}
func (x *Sealed) term()    {}
func (x *MetaValue) term() {}
func (x *Closure) term()   {}
