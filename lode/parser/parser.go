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

package parser

import (
	"fmt"

	"lodelang.org/go/lode/ast"
	"lodelang.org/go/lode/errors"
	"lodelang.org/go/lode/scanner"
	"lodelang.org/go/lode/token"
)

type mode uint

const (
	traceMode mode = 1 << iota
	allErrorsMode
)

// The parser structure holds the parser's internal state.
type parser struct {
	file    *token.File
	errors  errors.Error
	scanner scanner.Scanner

	// Tracing/debugging
	mode      mode // parsing mode
	trace     bool // == (mode&traceMode != 0)
	panicking bool // set if the parser exceeded the error limit
	indent    int  // indentation used for tracing output

	// Next token
	pos token.Pos   // token position
	tok token.Token // one token look-ahead
	lit string      // token literal
}

func (p *parser) init(filename string, src []byte, options []Option) {
	p.file = token.NewFile(filename, len(src))
	p.file.SetContent(src)
	for _, f := range options {
		f(p)
	}
	p.trace = p.mode&traceMode != 0

	eh := func(pos token.Position, msg string) {
		p.errors = errors.Append(p.errors,
			errors.Newf(p.file.Pos(pos.Offset), "%s", msg))
	}
	p.scanner.Init(p.file, src, eh, 0)

	p.next()
}

// ----------------------------------------------------------------------------
// Parsing support

func (p *parser) printTrace(a ...interface{}) {
	const dots = ". . . . . . . . . . . . . . . . . . . . . . . . . . . . . . . . "
	const n = len(dots)
	pos := p.file.Position(p.pos)
	fmt.Printf("%5d:%3d: ", pos.Line, pos.Column)
	i := 2 * p.indent
	for i > n {
		fmt.Print(dots)
		i -= n
	}
	// i <= n
	fmt.Print(dots[0:i])
	fmt.Println(a...)
}

func trace(p *parser, msg string) *parser {
	p.printTrace(msg, "(")
	p.indent++
	return p
}

// Usage pattern: defer un(trace(p, "..."))
func un(p *parser) {
	p.indent--
	p.printTrace(")")
}

// Advance to the next token.
func (p *parser) next() {
	// Because of one-token look-ahead, print the previous token when
	// tracing as it provides a more readable output.
	if p.trace && p.pos.IsValid() {
		s := p.tok.String()
		switch {
		case p.tok.IsLiteral():
			p.printTrace(s, p.lit)
		case p.tok.IsOperator(), p.tok.IsKeyword():
			p.printTrace(fmt.Sprintf("%q", s))
		default:
			p.printTrace(s)
		}
	}

	p.pos, p.tok, p.lit = p.scanner.Scan()
}

// consumeEOL consumes a comma the scanner inserted at a line break.
// Constructs that continue with a keyword, such as the in of a let
// binding or the then of a conditional, may wrap onto a new line.
func (p *parser) consumeEOL() {
	if p.tok == token.COMMA && p.lit == "\n" {
		p.next()
	}
}

func (p *parser) errf(pos token.Pos, format string, args ...interface{}) {
	ePos := pos.Position()

	// If AllErrors is not set, discard errors reported on the same line as
	// the last recorded error and stop parsing if there are more than 10
	// errors.
	if p.mode&allErrorsMode == 0 {
		errs := errors.Errors(p.errors)
		n := len(errs)
		if n > 0 && errs[n-1].Position().Line() == ePos.Line {
			return // discard - likely a spurious error
		}
		if n > 10 {
			p.panicking = true
			panic("too many errors")
		}
	}

	err := errors.Newf(pos, format, args...)
	if p.tok == token.EOF {
		// The source ended before the construct being parsed was closed.
		// Interactive callers test for this case with errors.IsIncomplete
		// and request more input instead of reporting failure.
		err = errors.WithCode(errors.IncompleteError, err)
	}
	p.errors = errors.Append(p.errors, err)
}

func (p *parser) errorExpected(pos token.Pos, obj string) {
	if pos != p.pos {
		p.errf(pos, "expected %s", obj)
		return
	}
	// The error happened at the current position; make the error message
	// more specific.
	msg := "expected " + obj
	if p.tok == token.COMMA && p.lit == "\n" {
		msg += ", found newline"
	} else {
		msg += ", found '" + p.tok.String() + "'"
		if p.tok.IsLiteral() {
			msg += " " + p.lit
		}
	}
	p.errf(pos, "%s", msg)
}

func (p *parser) expect(tok token.Token) token.Pos {
	pos := p.pos
	if p.tok != tok {
		p.errorExpected(pos, "'"+tok.String()+"'")
	}
	p.next() // make progress
	return pos
}

// expectClosing is like expect but provides a better error message for the
// common case of a missing comma before a newline.
func (p *parser) expectClosing(tok token.Token, context string) token.Pos {
	if p.tok != tok && p.tok == token.COMMA && p.lit == "\n" {
		p.errf(p.pos, "missing ',' before newline in %s", context)
		p.next()
	}
	return p.expect(tok)
}

// atComma reports whether the parser sits at a comma separating two
// elements of context. If a separator is missing and the next token cannot
// close the construct either, an error is reported and a comma is assumed
// so that parsing can continue.
func (p *parser) atComma(context string, follow token.Token) bool {
	if p.tok == token.COMMA {
		return true
	}
	if p.tok != follow {
		p.errf(p.pos, "missing ',' in %s", context)
		return true // "insert" comma and continue
	}
	return false
}

// advance discards tokens until one that can plausibly start or follow an
// expression, so that parsing can resume after an error.
func (p *parser) advance() {
	for ; p.tok != token.EOF; p.next() {
		switch p.tok {
		case token.COMMA, token.RPAREN, token.RBRACK, token.RBRACE,
			token.IN, token.THEN, token.ELSE:
			return
		}
		if isOperandStart(p.tok) {
			return
		}
	}
}

// isOperandStart reports whether tok can start an operand, and hence an
// argument in an application chain. Function, let, and if expressions must
// be parenthesized to appear as arguments.
func isOperandStart(tok token.Token) bool {
	switch tok {
	case token.IDENT, token.NUMBER, token.STRING, token.TRUE, token.FALSE,
		token.LPAREN, token.LBRACE, token.LBRACK:
		return true
	}
	return false
}

// ----------------------------------------------------------------------------
// Identifiers

func (p *parser) parseIdent() *ast.Ident {
	pos := p.pos
	name := "_"
	if p.tok == token.IDENT {
		name = p.lit
		p.next()
	} else {
		p.expect(token.IDENT) // use expect() error handling
	}
	return &ast.Ident{NamePos: pos, Name: name}
}

// ----------------------------------------------------------------------------
// Expressions

// parseExpr parses a full expression, including any trailing metadata
// annotations.
func (p *parser) parseExpr() ast.Expr {
	if p.trace {
		defer un(trace(p, "Expr"))
	}

	x := p.parseBinaryExpr(token.LowestPrec + 1)
	if p.tok == token.COLON || p.tok == token.PIPE {
		x = &ast.AnnotExpr{X: x, Meta: p.parseMetadata()}
	}
	return x
}

// parseBinaryExpr parses a binary expression with precedence climbing. All
// binary operators associate to the left.
func (p *parser) parseBinaryExpr(prec1 int) ast.Expr {
	if p.trace {
		defer un(trace(p, "BinaryExpr"))
	}

	x := p.parseUnaryExpr()
	for {
		op := p.tok
		prec := op.Precedence()
		if prec < prec1 {
			return x
		}
		pos := p.expect(op)
		y := p.parseBinaryExpr(prec + 1)
		x = &ast.BinaryExpr{X: x, OpPos: pos, Op: op, Y: y}
	}
}

func (p *parser) parseUnaryExpr() ast.Expr {
	if p.trace {
		defer un(trace(p, "UnaryExpr"))
	}

	switch p.tok {
	case token.NOT, token.SUB:
		pos, op := p.pos, p.tok
		p.next()
		return &ast.UnaryExpr{OpPos: pos, Op: op, X: p.parseUnaryExpr()}
	}
	return p.parseApplyExpr()
}

// parseApplyExpr parses a juxtaposed application chain. Application nests
// to the left, f x y is (f x) y, and binds tighter than any operator, so
// f x + 1 is (f x) + 1.
func (p *parser) parseApplyExpr() ast.Expr {
	if p.trace {
		defer un(trace(p, "ApplyExpr"))
	}

	x := p.parsePrimaryExpr()
	for isOperandStart(p.tok) {
		x = &ast.Apply{Fn: x, Arg: p.parsePrimaryExpr()}
	}
	return x
}

func (p *parser) parsePrimaryExpr() ast.Expr {
	if p.trace {
		defer un(trace(p, "PrimaryExpr"))
	}

	return p.parseSelectors(p.parseOperand())
}

// parseSelectors continues an already parsed operand into a chain of
// static field accesses.
func (p *parser) parseSelectors(x ast.Expr) ast.Expr {
	for p.tok == token.PERIOD {
		p.next()
		switch p.tok {
		case token.IDENT:
			x = &ast.SelectorExpr{X: x, Sel: p.parseIdent()}
		case token.STRING:
			sel := &ast.BasicLit{ValuePos: p.pos, Kind: token.STRING, Value: p.lit}
			p.next()
			x = &ast.SelectorExpr{X: x, Sel: sel}
		default:
			pos := p.pos
			p.errorExpected(pos, "selector")
			x = &ast.SelectorExpr{X: x, Sel: &ast.Ident{NamePos: pos, Name: "_"}}
		}
	}
	return x
}

func (p *parser) parseOperand() ast.Expr {
	if p.trace {
		defer un(trace(p, "Operand"))
	}

	switch p.tok {
	case token.IDENT:
		return p.parseIdent()

	case token.NUMBER, token.STRING, token.TRUE, token.FALSE:
		x := &ast.BasicLit{ValuePos: p.pos, Kind: p.tok, Value: p.lit}
		p.next()
		return x

	case token.LPAREN:
		lparen := p.pos
		p.next()
		x := p.parseExpr()
		p.consumeEOL()
		rparen := p.expectClosing(token.RPAREN, "parenthesized expression")
		return &ast.ParenExpr{Lparen: lparen, X: x, Rparen: rparen}

	case token.LBRACE:
		return p.parseRecordLit()

	case token.LBRACK:
		return p.parseListLit()

	case token.FUN:
		return p.parseFunExpr()

	case token.LET:
		return p.parseLetExpr()

	case token.IF:
		return p.parseIfExpr()
	}

	// We have an error.
	pos := p.pos
	p.errorExpected(pos, "operand")
	p.advance()
	return &ast.BadExpr{From: pos, To: p.pos}
}

func (p *parser) parseRecordLit() ast.Expr {
	if p.trace {
		defer un(trace(p, "RecordLit"))
	}

	lbrace := p.expect(token.LBRACE)
	var fields []*ast.Field
	for p.tok != token.RBRACE && p.tok != token.EOF {
		fields = append(fields, p.parseField())
		if !p.atComma("record literal", token.RBRACE) {
			break
		}
		p.next()
	}
	rbrace := p.expectClosing(token.RBRACE, "record literal")
	return &ast.RecordLit{Lbrace: lbrace, Fields: fields, Rbrace: rbrace}
}

// parseField parses one field of a record literal. The value may be
// omitted if the field carries at least one annotation, as in
//
//	{ port | Number }
func (p *parser) parseField() *ast.Field {
	if p.trace {
		defer un(trace(p, "Field"))
	}

	f := &ast.Field{}

	switch p.tok {
	case token.IDENT:
		f.Label = p.parseIdent()
	case token.STRING:
		f.Label = &ast.BasicLit{ValuePos: p.pos, Kind: token.STRING, Value: p.lit}
		p.next()
	default:
		pos := p.pos
		p.errorExpected(pos, "field name")
		p.advance()
		f.Label = &ast.Ident{NamePos: pos, Name: "_"}
		return f
	}

	if p.tok == token.COLON || p.tok == token.PIPE {
		f.Meta = p.parseMetadata()
	}

	if p.tok == token.BIND {
		p.next()
		f.Value = p.parseExpr()
	} else if f.Meta == nil {
		p.errorExpected(p.pos, "'=' or field annotation")
	}
	return f
}

func (p *parser) parseListLit() ast.Expr {
	if p.trace {
		defer un(trace(p, "ListLit"))
	}

	lbrack := p.expect(token.LBRACK)
	var elts []ast.Expr
	for p.tok != token.RBRACK && p.tok != token.EOF {
		elts = append(elts, p.parseExpr())
		if !p.atComma("list literal", token.RBRACK) {
			break
		}
		p.next()
	}
	rbrack := p.expectClosing(token.RBRACK, "list literal")
	return &ast.ListLit{Lbrack: lbrack, Elts: elts, Rbrack: rbrack}
}

func (p *parser) parseFunExpr() ast.Expr {
	if p.trace {
		defer un(trace(p, "FunExpr"))
	}

	pos := p.expect(token.FUN)
	var params []*ast.Ident
	for p.tok == token.IDENT {
		params = append(params, p.parseIdent())
	}
	if len(params) == 0 {
		p.errorExpected(p.pos, "parameter name")
	}
	p.expect(token.FUNARROW)
	body := p.parseExpr()
	return &ast.FunExpr{Fun: pos, Params: params, Body: body}
}

func (p *parser) parseLetExpr() ast.Expr {
	if p.trace {
		defer un(trace(p, "LetExpr"))
	}

	pos := p.expect(token.LET)
	ident := p.parseIdent()
	var meta *ast.Metadata
	if p.tok == token.COLON || p.tok == token.PIPE {
		meta = p.parseMetadata()
	}
	p.expect(token.BIND)
	value := p.parseExpr()
	p.consumeEOL()
	p.expect(token.IN)
	body := p.parseExpr()
	return &ast.LetExpr{Let: pos, Ident: ident, Meta: meta, Value: value, Body: body}
}

func (p *parser) parseIfExpr() ast.Expr {
	if p.trace {
		defer un(trace(p, "IfExpr"))
	}

	pos := p.expect(token.IF)
	cond := p.parseExpr()
	p.consumeEOL()
	p.expect(token.THEN)
	x := p.parseExpr()
	p.consumeEOL()
	p.expect(token.ELSE)
	y := p.parseExpr()
	return &ast.IfExpr{If: pos, Cond: cond, Then: x, Else: y}
}

// ----------------------------------------------------------------------------
// Metadata

// parseMetadata parses a sequence of annotation clauses. The current token
// is ":" or "|".
func (p *parser) parseMetadata() *ast.Metadata {
	if p.trace {
		defer un(trace(p, "Metadata"))
	}

	m := &ast.Metadata{From: p.pos}
	for {
		switch p.tok {
		case token.COLON:
			p.next()
			t := p.parseType()
			m.Types = append(m.Types, ast.AnnotType{Static: true, Type: t})
			m.To = t.End()

		case token.PIPE:
			p.next()
			switch p.tok {
			case token.DEFAULT:
				if m.Default != token.NoPos {
					p.errf(p.pos, "duplicate default annotation")
				}
				m.Default = p.pos
				m.To = p.pos.Add(len("default"))
				p.next()

			case token.DOC:
				docPos := p.pos
				p.next()
				if p.tok != token.STRING {
					p.errorExpected(p.pos, "doc string")
					m.To = docPos.Add(len("doc"))
					break
				}
				if m.Doc != nil {
					p.errf(p.pos, "duplicate doc annotation")
				}
				m.Doc = &ast.BasicLit{ValuePos: p.pos, Kind: token.STRING, Value: p.lit}
				m.To = p.pos.Add(len(p.lit))
				p.next()

			default:
				t := p.parseType()
				m.Types = append(m.Types, ast.AnnotType{Static: false, Type: t})
				m.To = t.End()
			}

		default:
			return m
		}
	}
}

// ----------------------------------------------------------------------------
// Types

// parseType parses a type or contract annotation. Function types associate
// to the right: a -> b -> c is a -> (b -> c).
func (p *parser) parseType() ast.TypeExpr {
	if p.trace {
		defer un(trace(p, "Type"))
	}

	dom := p.parseTypeAtom()
	if p.tok != token.ARROW {
		return dom
	}
	arrow := p.pos
	p.next()
	cod := p.parseType()
	return &ast.ArrowType{Dom: dom, Arrow: arrow, Cod: cod}
}

func (p *parser) parseTypeAtom() ast.TypeExpr {
	if p.trace {
		defer un(trace(p, "TypeAtom"))
	}

	switch p.tok {
	case token.FORALL:
		pos := p.pos
		p.next()
		v := p.parseIdent()
		p.expect(token.PERIOD)
		body := p.parseType()
		return &ast.ForallType{Forall: pos, Var: v, Body: body}

	case token.LPAREN:
		p.next()
		// After a parenthesis the annotation may continue as a type, as in
		// (Number -> Number), or as an arbitrary contract expression, as
		// in (fun label value => ...). An identifier, a nested
		// parenthesis, or forall commits to the type grammar.
		if p.tok == token.IDENT || p.tok == token.LPAREN || p.tok == token.FORALL {
			t := p.parseType()
			p.consumeEOL()
			p.expectClosing(token.RPAREN, "type annotation")
			return t
		}
		x := p.parseExpr()
		p.consumeEOL()
		p.expectClosing(token.RPAREN, "contract expression")
		return &ast.ContractType{X: x}

	case token.IDENT:
		ident := p.parseIdent()
		if ident.Name == "List" {
			if p.tok == token.IDENT || p.tok == token.LPAREN {
				return &ast.ListType{List: ident.NamePos, Elem: p.parseTypeAtom()}
			}
			return &ast.ListType{List: ident.NamePos, To: ident.End()}
		}
		if p.tok == token.PERIOD || isOperandStart(p.tok) {
			return &ast.ContractType{X: p.contractChain(ident)}
		}
		return &ast.NamedType{Ident: ident}
	}

	if isOperandStart(p.tok) {
		return &ast.ContractType{X: p.parseApplyExpr()}
	}

	pos := p.pos
	p.errorExpected(pos, "type")
	p.advance()
	return &ast.BadType{From: pos, To: p.pos}
}

// contractChain continues a parsed identifier into a selector and
// application chain, as in rec.allof c1 c2, for use as a contract.
func (p *parser) contractChain(head ast.Expr) ast.Expr {
	x := p.parseSelectors(head)
	for isOperandStart(p.tok) {
		x = &ast.Apply{Fn: x, Arg: p.parsePrimaryExpr()}
	}
	return x
}

// ----------------------------------------------------------------------------
// Interactive input

// parseInput parses a unit of interactive input. A let binding that is not
// followed by in binds its value for the remainder of the session.
func (p *parser) parseInput() *ast.Input {
	if p.trace {
		defer un(trace(p, "Input"))
	}

	if p.tok != token.LET {
		return &ast.Input{X: p.parseExpr()}
	}

	letPos := p.expect(token.LET)
	ident := p.parseIdent()
	var meta *ast.Metadata
	if p.tok == token.COLON || p.tok == token.PIPE {
		meta = p.parseMetadata()
	}
	p.expect(token.BIND)
	value := p.parseExpr()

	p.consumeEOL()
	if p.tok != token.IN {
		return &ast.Input{Let: letPos, Ident: ident, Meta: meta, X: value}
	}

	// Not a toplevel binding after all, but an ordinary let expression.
	p.next()
	body := p.parseExpr()
	return &ast.Input{X: &ast.LetExpr{
		Let:   letPos,
		Ident: ident,
		Meta:  meta,
		Value: value,
		Body:  body,
	}}
}
