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

package token

import (
	"fmt"
	"testing"
)

func checkPos(t *testing.T, msg string, got, want Position) {
	if got.Filename != want.Filename {
		t.Errorf("%s: got filename = %q; want %q", msg, got.Filename, want.Filename)
	}
	if got.Offset != want.Offset {
		t.Errorf("%s: got offset = %d; want %d", msg, got.Offset, want.Offset)
	}
	if got.Line != want.Line {
		t.Errorf("%s: got line = %d; want %d", msg, got.Line, want.Line)
	}
	if got.Column != want.Column {
		t.Errorf("%s: got column = %d; want %d", msg, got.Column, want.Column)
	}
}

func TestNoPos(t *testing.T) {
	if NoPos.IsValid() {
		t.Errorf("NoPos should not be valid")
	}
	checkPos(t, "nil NoPos", NoPos.Position(), Position{})
}

var tests = []struct {
	filename string
	source   []byte // may be nil
	size     int
	lines    []int
}{
	{"a", []byte{}, 0, []int{}},
	{"b", []byte("01234"), 5, []int{0}},
	{"c", []byte("\n\n\n\n\n\n\n\n\n"), 9, []int{0, 1, 2, 3, 4, 5, 6, 7, 8}},
	{"d", nil, 100, []int{0, 5, 10, 20, 30, 70, 71, 72, 80, 85, 90, 99}},
	{"e", []byte("let x = 1\n\nin x + 2"), 19, []int{0, 10, 11}},
	{"f", []byte("let x = 1\n\nin x + 2\n"), 20, []int{0, 10, 11}},
}

func linecol(lines []int, offs int) (int, int) {
	prevLineOffs := 0
	for line, lineOffs := range lines {
		if offs < lineOffs {
			return line, offs - prevLineOffs + 1
		}
		prevLineOffs = lineOffs
	}
	return len(lines), offs - prevLineOffs + 1
}

func verifyPositions(t *testing.T, f *File, lines []int) {
	for offs := 0; offs < f.Size(); offs++ {
		p := f.Pos(offs)
		offs2 := f.Offset(p)
		if offs2 != offs {
			t.Errorf("%s, Offset: got offset %d; want %d", f.Name(), offs2, offs)
		}
		line, col := linecol(lines, offs)
		msg := fmt.Sprintf("%s (offs = %d, p = %d)", f.Name(), offs, p.offset)
		checkPos(t, msg, p.Position(), Position{f.Name(), offs, line, col})
	}
}

func TestPositions(t *testing.T) {
	for _, test := range tests {
		// verify consistency of test case
		if test.source != nil && len(test.source) != test.size {
			t.Errorf("%s: inconsistent test case: got file size %d; want %d", test.filename, len(test.source), test.size)
		}

		f := NewFile(test.filename, test.size)
		if f.Name() != test.filename {
			t.Errorf("got filename %q; want %q", f.Name(), test.filename)
		}
		if f.Size() != test.size {
			t.Errorf("%s: got file size %d; want %d", f.Name(), f.Size(), test.size)
		}
		if f.Pos(0).file != f {
			t.Errorf("%s: f.Pos(0) was not found in f", f.Name())
		}

		// add lines individually and verify all positions
		for i, offset := range test.lines {
			f.AddLine(offset)
			if f.LineCount() != i+1 {
				t.Errorf("%s, AddLine: got line count %d; want %d", f.Name(), f.LineCount(), i+1)
			}
			verifyPositions(t, f, test.lines[0:i+1])
		}

		// verify the SetLinesForContent variant on real sources
		if test.source != nil {
			f2 := NewFile(test.filename, test.size)
			f2.SetLinesForContent(test.source)
			verifyPositions(t, f2, test.lines)
		}
	}
}

func TestLookup(t *testing.T) {
	for _, kw := range []string{"fun", "let", "in", "if", "then", "else", "forall", "true", "false", "default", "doc"} {
		if tok := Lookup(kw); !tok.IsKeyword() {
			t.Errorf("Lookup(%q) = %s; want keyword", kw, tok)
		}
	}
	for _, id := range []string{"x", "contracts", "lists", "default1", "Number"} {
		if tok := Lookup(id); tok != IDENT {
			t.Errorf("Lookup(%q) = %s; want IDENT", id, tok)
		}
	}
}

func TestCompare(t *testing.T) {
	f := NewFile("a", 10)
	g := NewFile("b", 10)
	p1 := f.Pos(2)
	p2 := f.Pos(5)
	if got := p1.Compare(p2); got != -1 {
		t.Errorf("Compare(p1, p2) = %d; want -1", got)
	}
	if got := p2.Compare(p1); got != 1 {
		t.Errorf("Compare(p2, p1) = %d; want 1", got)
	}
	if got := p1.Compare(f.Pos(2)); got != 0 {
		t.Errorf("Compare(p1, p1') = %d; want 0", got)
	}
	if got := p1.Compare(g.Pos(0)); got != -1 {
		t.Errorf("Compare across files = %d; want -1 (name order)", got)
	}
	if got := NoPos.Compare(p1); got != 1 {
		t.Errorf("Compare(NoPos, p1) = %d; want 1", got)
	}
}
