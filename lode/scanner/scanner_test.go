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

package scanner

import (
	"strings"
	"testing"

	"lodelang.org/go/lode/token"
)

const /* class */ (
	special = iota
	literal
	operator
	keyword
)

func tokenclass(tok token.Token) int {
	switch {
	case tok.IsLiteral():
		return literal
	case tok.IsOperator():
		return operator
	case tok.IsKeyword():
		return keyword
	}
	return special
}

type elt struct {
	tok   token.Token
	lit   string
	class int
}

var testTokens = [...]elt{
	// Identifiers and basic type literals
	{token.IDENT, "foobar", literal},
	{token.IDENT, "a۰۱۸", literal},
	{token.IDENT, "foo६४", literal},
	{token.IDENT, "_private", literal},
	{token.IDENT, "x5", literal},
	{token.NUMBER, "0", literal},
	{token.NUMBER, "1", literal},
	{token.NUMBER, "123456789012345678890", literal},
	{token.NUMBER, "3.14159265", literal},
	{token.NUMBER, "1e0", literal},
	{token.NUMBER, "1e+100", literal},
	{token.NUMBER, "1e-100", literal},
	{token.NUMBER, "2.71828e-1000", literal},
	{token.STRING, `"foobar"`, literal},
	{token.STRING, `"foo\nbar"`, literal},
	{token.STRING, `"\u65e5本\U00008a9e"`, literal},
	{token.STRING, `""`, literal},

	// Operators and delimiters
	{token.ADD, "+", operator},
	{token.SUB, "-", operator},
	{token.MUL, "*", operator},
	{token.QUO, "/", operator},
	{token.CONCAT, "++", operator},

	{token.AND, "&", operator},
	{token.PIPE, "|", operator},

	{token.LAND, "&&", operator},
	{token.LOR, "||", operator},

	{token.EQL, "==", operator},
	{token.LSS, "<", operator},
	{token.GTR, ">", operator},
	{token.BIND, "=", operator},
	{token.NOT, "!", operator},

	{token.NEQ, "!=", operator},
	{token.LEQ, "<=", operator},
	{token.GEQ, ">=", operator},

	{token.ARROW, "->", operator},
	{token.FUNARROW, "=>", operator},

	{token.LPAREN, "(", operator},
	{token.LBRACK, "[", operator},
	{token.LBRACE, "{", operator},
	{token.COMMA, ",", operator},
	{token.PERIOD, ".", operator},

	{token.RPAREN, ")", operator},
	{token.RBRACK, "]", operator},
	{token.RBRACE, "}", operator},
	{token.COLON, ":", operator},

	// Keywords
	{token.FUN, "fun", keyword},
	{token.LET, "let", keyword},
	{token.IN, "in", keyword},
	{token.IF, "if", keyword},
	{token.THEN, "then", keyword},
	{token.ELSE, "else", keyword},
	{token.FORALL, "forall", keyword},
	{token.TRUE, "true", keyword},
	{token.FALSE, "false", keyword},
	{token.DEFAULT, "default", keyword},
	{token.DOC, "doc", keyword},
}

const whitespace = "  \t  \n\n\n" // to separate tokens

var source = func() []byte {
	var src []byte
	for _, t := range testTokens {
		src = append(src, t.lit...)
		src = append(src, whitespace...)
	}
	return src
}()

func newlineCount(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			n++
		}
	}
	return n
}

func checkPosScan(t *testing.T, lit string, p token.Pos, expected token.Position) {
	pos := p.Position()
	if pos.Filename != expected.Filename {
		t.Errorf("bad filename for %q: got %s, expected %s", lit, pos.Filename, expected.Filename)
	}
	if pos.Offset != expected.Offset {
		t.Errorf("bad position for %q: got %d, expected %d", lit, pos.Offset, expected.Offset)
	}
	if pos.Line != expected.Line {
		t.Errorf("bad line for %q: got %d, expected %d", lit, pos.Line, expected.Line)
	}
	if pos.Column != expected.Column {
		t.Errorf("bad column for %q: got %d, expected %d", lit, pos.Column, expected.Column)
	}
}

// Verify that calling Scan() provides the correct results.
func TestScan(t *testing.T) {
	whitespaceLinecount := newlineCount(whitespace)

	// error handler
	eh := func(_ token.Position, msg string) {
		t.Errorf("error handler called (msg = %s)", msg)
	}

	// verify scan
	var s Scanner
	s.Init(token.NewFile("", len(source)), source, eh, ScanComments|DontInsertCommas)

	// set up expected position
	epos := token.Position{
		Filename: "",
		Offset:   0,
		Line:     1,
		Column:   1,
	}

	index := 0
	for {
		pos, tok, lit := s.Scan()

		// check position
		if tok == token.EOF {
			// correction for EOF
			epos.Line = newlineCount(string(source))
			epos.Column = 2
		}
		checkPosScan(t, lit, pos, epos)

		// check token
		e := elt{token.EOF, "", special}
		if index < len(testTokens) {
			e = testTokens[index]
			index++
		}
		if tok != e.tok {
			t.Errorf("bad token for %q: got %s, expected %s", lit, tok, e.tok)
		}

		// check token class
		if tokenclass(tok) != e.class {
			t.Errorf("bad class for %q: got %d, expected %d", lit, tokenclass(tok), e.class)
		}

		// check literal
		elit := ""
		switch e.tok {
		case token.COMMENT:
			elit = e.lit
		case token.IDENT, token.NUMBER, token.STRING:
			elit = e.lit
		case token.COMMA:
			elit = ","
		default:
			if e.tok.IsKeyword() {
				elit = e.lit
			}
		}
		if lit != elit {
			t.Errorf("bad literal for %q: got %q, expected %q", lit, lit, elit)
		}

		if tok == token.EOF {
			break
		}

		// update position
		epos.Offset += len(e.lit) + len(whitespace)
		epos.Line += newlineCount(e.lit) + whitespaceLinecount
	}

	if s.ErrorCount != 0 {
		t.Errorf("found %d errors", s.ErrorCount)
	}
}

func TestComments(t *testing.T) {
	src := "a = 1 // trailing comment\n// full line\nb = 2"

	var s Scanner
	s.Init(token.NewFile("", len(src)), []byte(src), nil, ScanComments|DontInsertCommas)

	var comments []string
	for {
		_, tok, lit := s.Scan()
		if tok == token.EOF {
			break
		}
		if tok == token.COMMENT {
			comments = append(comments, lit)
		}
	}
	if len(comments) != 2 {
		t.Fatalf("got %d comments; want 2", len(comments))
	}
	if comments[0] != "// trailing comment" {
		t.Errorf("comment[0] = %q", comments[0])
	}
	if comments[1] != "// full line" {
		t.Errorf("comment[1] = %q", comments[1])
	}
}

type commaTest struct {
	src  string
	want string // expected token sequence, space separated
}

var commaTests = []commaTest{
	// Commas are inserted at newlines after tokens that may end an
	// expression.
	{"a = 1\nb = 2", "IDENT = NUMBER , IDENT = NUMBER , EOF"},
	{"a = 1,b = 2", "IDENT = NUMBER , IDENT = NUMBER , EOF"},
	{"{ a = 1\n}", "{ IDENT = NUMBER , } , EOF"},
	{"[1\n2]", "[ NUMBER , NUMBER ] , EOF"},
	// No comma after an operator: the expression continues.
	{"a = 1 +\n2", "IDENT = NUMBER + NUMBER , EOF"},
	{"fun x =>\nx", "fun IDENT => IDENT , EOF"},
	// A comma is inserted before a line starting with a keyword that
	// continues a construct; the parser skips it.
	{"let x = 1\nin x", "let IDENT = NUMBER , in IDENT , EOF"},
	// Comments do not produce commas by themselves.
	{"// nothing\n", "EOF"},
}

func TestCommaInsertion(t *testing.T) {
	for _, tc := range commaTests {
		var s Scanner
		s.Init(token.NewFile("", len(tc.src)), []byte(tc.src), nil, 0)

		var got []string
		for {
			_, tok, lit := s.Scan()
			switch {
			case tok == token.COMMA:
				got = append(got, ",")
				_ = lit
			default:
				got = append(got, tok.String())
			}
			if tok == token.EOF {
				break
			}
		}
		if gotStr := strings.Join(got, " "); gotStr != tc.want {
			t.Errorf("%q:\ngot  %s\nwant %s", tc.src, gotStr, tc.want)
		}
	}
}

type errorTest struct {
	src string
	pos int
	err string
}

var errorTests = []errorTest{
	{"\a", 0, "illegal character U+0007"},
	{`"abc`, 0, "string literal not terminated"},
	{`"abc` + "\n", 0, "string literal not terminated"},
	{`"ab\q"`, 4, "unknown escape sequence"},
	{"1e", 2, "exponent has no digits"},
	{"\xff", 0, "illegal UTF-8 encoding"},
	{"\ufeff\ufeff", 3, "illegal byte order mark"}, // only first BOM is ignored
}

func TestScanErrors(t *testing.T) {
	for _, tc := range errorTests {
		var gotMsg string
		var gotPos token.Position
		eh := func(pos token.Position, msg string) {
			if gotMsg == "" {
				gotMsg = msg
				gotPos = pos
			}
		}

		var s Scanner
		s.Init(token.NewFile("", len(tc.src)), []byte(tc.src), eh, DontInsertCommas)
		for {
			_, tok, _ := s.Scan()
			if tok == token.EOF {
				break
			}
		}

		if gotMsg != tc.err {
			t.Errorf("%q: got error %q; want %q", tc.src, gotMsg, tc.err)
		}
		if gotMsg != "" && gotPos.Offset != tc.pos {
			t.Errorf("%q: got offset %d; want %d", tc.src, gotPos.Offset, tc.pos)
		}
		if s.ErrorCount == 0 {
			t.Errorf("%q: no error reported", tc.src)
		}
	}
}
