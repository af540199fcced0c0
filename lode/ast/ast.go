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

// Package ast declares the types used to represent syntax trees for Lode
// sources.
package ast // import "lodelang.org/go/lode/ast"

import (
	"strconv"

	"lodelang.org/go/lode/token"
)

// ----------------------------------------------------------------------------
// Interfaces
//
// All nodes contain position information marking the beginning of the
// corresponding source text segment; it is accessible via the Pos accessor
// method. The End position is the position of the first character
// immediately after the node.

// A Node represents any node in the abstract syntax tree.
type Node interface {
	Pos() token.Pos // position of first character belonging to the node
	End() token.Pos // position of first character immediately after the node
}

// An Expr is implemented by all expression nodes.
type Expr interface {
	Node
	exprNode()
}

func (*BadExpr) exprNode()      {}
func (*Ident) exprNode()        {}
func (*BasicLit) exprNode()     {}
func (*FunExpr) exprNode()      {}
func (*LetExpr) exprNode()      {}
func (*IfExpr) exprNode()       {}
func (*Apply) exprNode()        {}
func (*UnaryExpr) exprNode()    {}
func (*BinaryExpr) exprNode()   {}
func (*AnnotExpr) exprNode()    {}
func (*RecordLit) exprNode()    {}
func (*ListLit) exprNode()      {}
func (*SelectorExpr) exprNode() {}
func (*ParenExpr) exprNode()    {}

// A TypeExpr is implemented by all nodes that may appear where a type or
// contract is expected, after ":" or "|" annotations and inside other type
// expressions.
type TypeExpr interface {
	Node
	typeExprNode()
}

func (*BadType) typeExprNode()      {}
func (*NamedType) typeExprNode()    {}
func (*ArrowType) typeExprNode()    {}
func (*ListType) typeExprNode()     {}
func (*ForallType) typeExprNode()   {}
func (*ContractType) typeExprNode() {}

// A Label is a production that can be used as a record field name: an
// identifier or a quoted string.
type Label interface {
	Node
	labelName() (name string, ok bool)
}

func (n *Ident) labelName() (string, bool) {
	return n.Name, true
}

func (n *BasicLit) labelName() (string, bool) {
	if n.Kind == token.STRING {
		if str, err := strconv.Unquote(n.Value); err == nil {
			return str, true
		}
	}
	return "", false
}

// LabelName reports the name of a label and whether it is valid.
func LabelName(x Label) (name string, ok bool) {
	return x.labelName()
}

// ----------------------------------------------------------------------------
// Expressions

// A BadExpr node is a placeholder for expressions containing syntax errors
// for which no correct expression nodes can be created.
type BadExpr struct {
	From, To token.Pos // position range of bad expression
}

// An Ident node represents an identifier.
type Ident struct {
	NamePos token.Pos // identifier position
	Name    string
}

// NewIdent creates a new Ident without position.
func NewIdent(name string) *Ident {
	return &Ident{token.NoPos, name}
}

func (x *Ident) String() string {
	if x != nil {
		return x.Name
	}
	return "<nil>"
}

// A BasicLit node represents a literal of basic type.
type BasicLit struct {
	ValuePos token.Pos   // literal position
	Kind     token.Token // token.NUMBER, token.STRING, token.TRUE, or token.FALSE
	Value    string      // literal string; e.g. 42, 1.5e3, "foo", true
}

// A FunExpr node represents a function literal:
//
//	fun x y => x + y
type FunExpr struct {
	Fun    token.Pos // position of "fun"
	Params []*Ident  // parameters in source order; len(Params) > 0
	Body   Expr
}

// A LetExpr node represents a let binding:
//
//	let x = 1 in x + x
type LetExpr struct {
	Let   token.Pos // position of "let"
	Ident *Ident
	Meta  *Metadata // optional annotations on the binding; or nil
	Value Expr
	Body  Expr
}

// An IfExpr node represents a conditional:
//
//	if ok then 1 else 2
type IfExpr struct {
	If   token.Pos // position of "if"
	Cond Expr
	Then Expr
	Else Expr
}

// An Apply node represents function application by juxtaposition:
//
//	f x
//
// Multi-argument application nests to the left: f x y is (f x) y.
type Apply struct {
	Fn  Expr
	Arg Expr
}

// A UnaryExpr node represents a unary expression.
type UnaryExpr struct {
	OpPos token.Pos   // position of Op
	Op    token.Token // operator: token.NOT or token.SUB
	X     Expr        // operand
}

// A BinaryExpr node represents a binary expression.
type BinaryExpr struct {
	X     Expr        // left operand
	OpPos token.Pos   // position of Op
	Op    token.Token // operator
	Y     Expr        // right operand
}

// An AnnotExpr node represents an expression with attached metadata:
//
//	x | Number
//	x : Number
//	{ port = 80 } | doc "default ports"
type AnnotExpr struct {
	X    Expr
	Meta *Metadata
}

// A RecordLit node represents a record literal:
//
//	{ host = "lode.dev", port | default = 80 }
//
// Fields may reference sibling fields; all record literals are recursive.
type RecordLit struct {
	Lbrace token.Pos // position of "{"
	Fields []*Field
	Rbrace token.Pos // position of "}"
}

// A Field represents one field of a record literal.
type Field struct {
	Label Label
	Meta  *Metadata // optional annotations; or nil
	Value Expr
}

func (f *Field) Pos() token.Pos { return f.Label.Pos() }

func (f *Field) End() token.Pos {
	if f.Value != nil {
		return f.Value.End()
	}
	if f.Meta != nil {
		return f.Meta.End()
	}
	return f.Label.End()
}

// A ListLit node represents a list literal:
//
//	[1, 2, 3]
type ListLit struct {
	Lbrack token.Pos // position of "["
	Elts   []Expr
	Rbrack token.Pos // position of "]"
}

// A SelectorExpr node represents a static field access:
//
//	server.port
type SelectorExpr struct {
	X   Expr  // record expression
	Sel Label // field name
}

// A ParenExpr node represents a parenthesized expression.
type ParenExpr struct {
	Lparen token.Pos // position of "("
	X      Expr      // parenthesized expression
	Rparen token.Pos // position of ")"
}

// ----------------------------------------------------------------------------
// Metadata

// Metadata collects the annotation clauses attached to an expression, a
// record field, or a let binding. The grammar allows clauses in any order;
// the parser rejects duplicate doc and default clauses.
type Metadata struct {
	From token.Pos // position of the first ":" or "|"

	Doc     *BasicLit // string following a doc clause; or nil
	Default token.Pos // position of the "default" keyword; NoPos if absent

	// Types lists the type and contract annotations in source order.
	Types []AnnotType

	To token.Pos // end of the last clause
}

// An AnnotType is a single type or contract annotation.
type AnnotType struct {
	// Static reports whether the annotation was introduced with ":" and is
	// checked by the typechecker, rather than with "|", which is checked
	// only by a contract at run time.
	Static bool

	Type TypeExpr
}

// HasDefault reports whether m marks its value as a default for merging.
func (m *Metadata) HasDefault() bool {
	return m != nil && m.Default != token.NoPos
}

func (m *Metadata) Pos() token.Pos { return m.From }
func (m *Metadata) End() token.Pos { return m.To }

// ----------------------------------------------------------------------------
// Types

// A BadType node is a placeholder for type expressions containing syntax
// errors.
type BadType struct {
	From, To token.Pos
}

// A NamedType node references a type by name: one of the predeclared type
// names (Number, Bool, String, Dyn), or a type variable bound by an
// enclosing forall.
type NamedType struct {
	Ident *Ident
}

// An ArrowType node represents a function type:
//
//	Number -> Number
type ArrowType struct {
	Dom   TypeExpr
	Arrow token.Pos // position of "->"
	Cod   TypeExpr
}

// A ListType node represents a list type:
//
//	List Number
//
// A bare List without element type means List Dyn.
type ListType struct {
	List token.Pos // position of the List identifier
	Elem TypeExpr  // or nil
	To   token.Pos // end of the List identifier, for a bare List
}

// A ForallType node represents a polymorphic type:
//
//	forall a. a -> a
type ForallType struct {
	Forall token.Pos // position of "forall"
	Var    *Ident
	Body   TypeExpr
}

// A ContractType node embeds an arbitrary expression as a contract:
//
//	port | nat
//	x | (fun l t => if isnum t then t else blame l)
type ContractType struct {
	X Expr
}

// ----------------------------------------------------------------------------
// Interactive input

// An Input is one unit of interactive input: a bare expression, or a
// toplevel let that binds the expression to a name for the remainder of
// the session.
type Input struct {
	Let   token.Pos // position of "let"; NoPos for a bare expression
	Ident *Ident    // name being bound; nil for a bare expression
	Meta  *Metadata // optional annotations on the binding; or nil
	X     Expr
}

// IsLet reports whether the input is a toplevel let binding.
func (x *Input) IsLet() bool { return x.Ident != nil }

func (x *Input) Pos() token.Pos {
	if x.Let != token.NoPos {
		return x.Let
	}
	return x.X.Pos()
}

func (x *Input) End() token.Pos { return x.X.End() }

// ----------------------------------------------------------------------------
// Position implementations

func (x *BadExpr) Pos() token.Pos  { return x.From }
func (x *BadExpr) End() token.Pos  { return x.To }
func (x *Ident) Pos() token.Pos    { return x.NamePos }
func (x *Ident) End() token.Pos    { return x.NamePos.Add(len(x.Name)) }
func (x *BasicLit) Pos() token.Pos { return x.ValuePos }
func (x *BasicLit) End() token.Pos { return x.ValuePos.Add(len(x.Value)) }
func (x *FunExpr) Pos() token.Pos  { return x.Fun }
func (x *FunExpr) End() token.Pos  { return x.Body.End() }
func (x *LetExpr) Pos() token.Pos  { return x.Let }
func (x *LetExpr) End() token.Pos  { return x.Body.End() }
func (x *IfExpr) Pos() token.Pos   { return x.If }
func (x *IfExpr) End() token.Pos   { return x.Else.End() }
func (x *Apply) Pos() token.Pos    { return x.Fn.Pos() }
func (x *Apply) End() token.Pos    { return x.Arg.End() }

func (x *UnaryExpr) Pos() token.Pos    { return x.OpPos }
func (x *UnaryExpr) End() token.Pos    { return x.X.End() }
func (x *BinaryExpr) Pos() token.Pos   { return x.X.Pos() }
func (x *BinaryExpr) End() token.Pos   { return x.Y.End() }
func (x *AnnotExpr) Pos() token.Pos    { return x.X.Pos() }
func (x *AnnotExpr) End() token.Pos    { return x.Meta.End() }
func (x *RecordLit) Pos() token.Pos    { return x.Lbrace }
func (x *RecordLit) End() token.Pos    { return x.Rbrace.Add(1) }
func (x *ListLit) Pos() token.Pos      { return x.Lbrack }
func (x *ListLit) End() token.Pos      { return x.Rbrack.Add(1) }
func (x *SelectorExpr) Pos() token.Pos { return x.X.Pos() }
func (x *SelectorExpr) End() token.Pos { return x.Sel.End() }
func (x *ParenExpr) Pos() token.Pos    { return x.Lparen }
func (x *ParenExpr) End() token.Pos    { return x.Rparen.Add(1) }

func (x *BadType) Pos() token.Pos   { return x.From }
func (x *BadType) End() token.Pos   { return x.To }
func (x *NamedType) Pos() token.Pos { return x.Ident.Pos() }
func (x *NamedType) End() token.Pos { return x.Ident.End() }
func (x *ArrowType) Pos() token.Pos { return x.Dom.Pos() }
func (x *ArrowType) End() token.Pos { return x.Cod.End() }
func (x *ListType) Pos() token.Pos  { return x.List }
func (x *ListType) End() token.Pos {
	if x.Elem != nil {
		return x.Elem.End()
	}
	return x.To
}
func (x *ForallType) Pos() token.Pos   { return x.Forall }
func (x *ForallType) End() token.Pos   { return x.Body.End() }
func (x *ContractType) Pos() token.Pos { return x.X.Pos() }
func (x *ContractType) End() token.Pos { return x.X.End() }
