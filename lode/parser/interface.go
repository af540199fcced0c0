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

// Package parser implements a parser for Lode source text. Input may be
// provided in a variety of forms; the output is an abstract syntax tree
// representing the source. The parser is invoked through one of the Parse*
// functions.
package parser // import "lodelang.org/go/lode/parser"

import (
	"lodelang.org/go/internal/source"
	"lodelang.org/go/lode/ast"
	"lodelang.org/go/lode/errors"
	"lodelang.org/go/lode/token"
)

// An Option modifies the behavior of the parser.
type Option func(p *parser)

var (
	// Trace causes parsing to print a trace of parsed productions.
	Trace    Option = traceOpt
	traceOpt        = func(p *parser) { p.mode |= traceMode }

	// AllErrors causes all errors to be reported (not just the first 10 on
	// different lines).
	AllErrors Option = allErrors
	allErrors        = func(p *parser) { p.mode |= allErrorsMode }
)

// ParseExpr parses a single Lode expression, which is also the form of a
// complete Lode source file.
//
// If src != nil, ParseExpr parses the source from src and the filename is
// only used when recording position information. The type of the argument
// for the src parameter must be string, []byte, or io.Reader. If src ==
// nil, ParseExpr parses the file specified by filename.
//
// If syntax errors were found, the result is a partial AST (with ast.Bad*
// nodes representing the fragments of erroneous source code) and the error
// describes the failures. If the source ended in the middle of an unclosed
// construct, the error satisfies errors.IsIncomplete.
func ParseExpr(filename string, src interface{}, options ...Option) (expr ast.Expr, err error) {
	text, err := source.ReadAll(filename, src)
	if err != nil {
		return nil, err
	}

	var p parser
	defer func() {
		if p.panicking {
			_ = recover()
		}
		err = errors.Sanitize(p.errors)
	}()

	p.init(filename, text, options)
	expr = p.parseExpr()

	// If a comma was inserted at the end of the source, consume it; report
	// an error if there are more tokens.
	p.consumeEOL()
	p.expect(token.EOF)

	return expr, p.errors
}

// ParseInput parses one unit of interactive input: either a Lode
// expression, or a toplevel let binding without an in clause that names
// the expression for the remainder of a session.
func ParseInput(filename string, src interface{}, options ...Option) (inp *ast.Input, err error) {
	text, err := source.ReadAll(filename, src)
	if err != nil {
		return nil, err
	}

	var p parser
	defer func() {
		if p.panicking {
			_ = recover()
		}
		err = errors.Sanitize(p.errors)
	}()

	p.init(filename, text, options)
	inp = p.parseInput()
	p.consumeEOL()
	p.expect(token.EOF)

	return inp, p.errors
}
