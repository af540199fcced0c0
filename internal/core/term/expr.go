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
	"sync/atomic"

	"github.com/cockroachdb/apd/v3"

	"lodelang.org/go/lode/ast"
)

// A Var is a reference to a let binding, a function parameter, or a
// sibling record field.
//
//	x
type Var struct {
	Src  ast.Node
	Name string
}

func (x *Var) Source() ast.Node { return x.Src }

// A Bool is a boolean literal.
//
//	true
type Bool struct {
	Src ast.Node
	B   bool
}

func (x *Bool) Source() ast.Node { return x.Src }
func (x *Bool) Kind() Kind       { return BoolKind }

// A Num is a decimal number of arbitrary precision.
//
//	42
//	0.125
type Num struct {
	Src ast.Node
	X   apd.Decimal
}

func (x *Num) Source() ast.Node { return x.Src }
func (x *Num) Kind() Kind       { return NumKind }

// A Str is a string literal.
//
//	"hello"
type Str struct {
	Src ast.Node
	S   string
}

func (x *Str) Source() ast.Node { return x.Src }
func (x *Str) Kind() Kind       { return StringKind }

// A Fun is a function of exactly one parameter. The compiler desugars
// multi-parameter functions into nested Funs.
//
//	fun x => x + 1
type Fun struct {
	Src   ast.Node
	Param string
	Body  Term
}

func (x *Fun) Source() ast.Node { return x.Src }
func (x *Fun) Kind() Kind       { return FunKind }

// A Let binds Name to Value in Body. The binding is lazy: Value is not
// evaluated until Body demands it.
//
//	let x = f 1 in x + x
type Let struct {
	Src   ast.Node
	Name  string
	Value Term
	Body  Term
}

func (x *Let) Source() ast.Node { return x.Src }

// An App applies Fn to Arg. Evaluation is call-by-need: Arg becomes an
// unevaluated thunk bound to Fn's parameter.
//
//	f x
type App struct {
	Src ast.Node
	Fn  Term
	Arg Term
}

func (x *App) Source() ast.Node { return x.Src }

// An Op1 applies a primitive unary operator.
//
//	!x
//	head xs
type Op1 struct {
	Src ast.Node
	Op  UnaryOp
	X   Term
}

func (x *Op1) Source() ast.Node { return x.Src }

// An Op2 applies a primitive binary operator.
//
//	a + b
//	elemat xs 2
type Op2 struct {
	Src  ast.Node
	Op   BinaryOp
	X, Y Term
}

func (x *Op2) Source() ast.Node { return x.Src }

// A RecRecord is an unevaluated record literal. Every record literal is
// recursive: fields may reference siblings by name regardless of order.
// Field terms may be MetaValues carrying the field's metadata.
// Evaluation closes all fields over one shared scope, producing a
// Record.
//
//	{a = 1, b = a + 1}
type RecRecord struct {
	Src    ast.Node
	Fields map[string]Term
}

func (x *RecRecord) Source() ast.Node { return x.Src }

// A List is a list of lazy elements. A list is already in weak head
// normal form; its elements are evaluated only when accessed.
//
//	[1, x, f y]
type List struct {
	Src   ast.Node
	Elems []Term
}

func (x *List) Source() ast.Node { return x.Src }
func (x *List) Kind() Kind       { return ListKind }

// A Lbl is a first-class blame label. Contract derivation embeds labels
// in checking terms so that a failing check can report the annotation it
// came from; user contracts receive one as their first argument and pass
// it to blame.
type Lbl struct {
	Src ast.Node
	L   Label
}

func (x *Lbl) Source() ast.Node { return x.Src }
func (x *Lbl) Kind() Kind       { return LabelKind }

// A Sym is a sealing key minted for one type variable of a forall
// contract. The key carries the label of its annotation so that a
// failed unseal can assign blame.
type Sym struct {
	Src ast.Node
	Key int64
	L   Label
}

func (x *Sym) Source() ast.Node { return x.Src }
func (x *Sym) Kind() Kind       { return SymKind }

// A Sealed is a value boxed under a sealing key. Only an unseal with the
// matching key can open it; every other operation on a sealed value is a
// contract violation. This is what makes forall contracts parametric.
type Sealed struct {
	Src   ast.Node
	Key   int64
	Value Term
}

func (x *Sealed) Source() ast.Node { return x.Src }
func (x *Sealed) Kind() Kind       { return SealedKind }

var symKeys atomic.Int64

// NewSymKey returns a fresh sealing key. Keys are distinct for the life
// of the process.
func NewSymKey() int64 {
	return symKeys.Add(1)
}
