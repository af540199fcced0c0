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

package errors

import (
	"strings"
	"testing"

	"lodelang.org/go/lode/token"
)

func TestNewfAndWrapf(t *testing.T) {
	f := token.NewFile("test.lode", 20)
	f.SetLinesForContent([]byte("a = 1\nb = 2\nc = 3\n"))
	pos := f.Pos(6) // start of "b"

	err := Newf(pos, "unexpected %s", "token")
	if got, want := err.Error(), "unexpected token"; got != want {
		t.Errorf("Error() = %q; want %q", got, want)
	}
	if got := err.Position(); got != pos {
		t.Errorf("Position() = %v; want %v", got, pos)
	}

	wrapped := Wrapf(err, token.NoPos, "while scanning")
	if got, want := wrapped.Error(), "while scanning: unexpected token"; got != want {
		t.Errorf("wrapped Error() = %q; want %q", got, want)
	}
	// The wrapper has no position of its own; the wrapped position shows
	// through.
	if got := wrapped.Position(); got != pos {
		t.Errorf("wrapped Position() = %v; want %v", got, pos)
	}
}

func TestAppendFlattens(t *testing.T) {
	f := token.NewFile("test.lode", 30)
	var err Error
	err = Append(err, Newf(f.Pos(0), "first"))
	err = Append(err, Newf(f.Pos(5), "second"))
	err = Append(err, Append(nil, Newf(f.Pos(9), "third")))

	all := Errors(err)
	if len(all) != 3 {
		t.Fatalf("got %d errors; want 3", len(all))
	}
	if got, want := err.Error(), "first (and 2 more errors)"; got != want {
		t.Errorf("list Error() = %q; want %q", got, want)
	}
}

func TestCodes(t *testing.T) {
	base := Newf(token.NoPos, "closing brace missing")
	err := WithCode(IncompleteError, base)

	if !IsIncomplete(err) {
		t.Errorf("IsIncomplete = false; want true")
	}
	if got := CodeOf(err); got != IncompleteError {
		t.Errorf("CodeOf = %v; want %v", got, IncompleteError)
	}

	// Codes survive list aggregation.
	agg := Append(Newf(token.NoPos, "other"), err)
	if !IsIncomplete(agg) {
		t.Errorf("IsIncomplete(list) = false; want true")
	}

	if IsIncomplete(Newf(token.NoPos, "plain")) {
		t.Errorf("IsIncomplete(plain) = true; want false")
	}
	if !IsInternal(WithCode(InternalError, base)) {
		t.Errorf("IsInternal = false; want true")
	}
}

func TestPositionsSorted(t *testing.T) {
	f := token.NewFile("test.lode", 40)
	f.SetLinesForContent([]byte("aaaa\nbbbb\ncccc\ndddd\n"))

	err := Wrapf(Newf(f.Pos(10), "inner"), f.Pos(0), "outer")
	poss := Positions(err)
	if len(poss) != 2 {
		t.Fatalf("got %d positions; want 2", len(poss))
	}
	if poss[0].Offset() != 0 || poss[1].Offset() != 10 {
		t.Errorf("positions not sorted by offset: %v, %v", poss[0], poss[1])
	}
}

func TestPrint(t *testing.T) {
	f := token.NewFile("test.lode", 20)
	f.SetLinesForContent([]byte("a = 1\nb = 2\nc = 3\n"))

	var err Error
	err = Append(err, Newf(f.Pos(6), "cannot use value"))
	err = Append(err, Newf(f.Pos(12), "field conflict"))

	got := Details(err, &Config{ToSlash: true})
	want := "cannot use value:\n" +
		"    test.lode:2:1\n" +
		"field conflict:\n" +
		"    test.lode:3:1\n"
	if got != want {
		t.Errorf("Details:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestSanitizeRemovesDuplicates(t *testing.T) {
	f := token.NewFile("test.lode", 20)
	f.SetLinesForContent([]byte("a = 1\nb = 2\n"))

	var err Error
	err = Append(err, Newf(f.Pos(0), "same message"))
	err = Append(err, Newf(f.Pos(0), "same message"))
	err = Append(err, Newf(f.Pos(6), "other message"))

	got := Errors(Sanitize(err))
	if len(got) != 2 {
		t.Fatalf("got %d errors after Sanitize; want 2", len(got))
	}
	if !strings.Contains(got[0].Error(), "same message") {
		t.Errorf("first error = %q; want it to contain %q", got[0].Error(), "same message")
	}
}
