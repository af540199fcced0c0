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

package transform_test

import (
	"testing"

	"github.com/cockroachdb/apd/v3"

	"lodelang.org/go/internal/core/compile"
	"lodelang.org/go/internal/core/term"
	"lodelang.org/go/internal/core/transform"
	"lodelang.org/go/lode/errors"
	"lodelang.org/go/lode/parser"
)

func TestTransform(t *testing.T) {
	testCases := []struct {
		in  string
		out string
	}{
		// materialize: every annotation gains a check.
		{"5 : Number", "(5 : Number | !Number)"},
		{"{port | default | Number = 80}", "{port = (80 | default | Number | !Number)}"},
		{"{a | Number}", "{a = (_ | Number | !Number)}"},
		{"x : forall a. a -> a", "(x : forall a. a -> a | !forall a. a -> a)"},
		{"{n = 5, x | between 0 n = 3}", "{n = 5, x = (3 | between 0 n | !between 0 n)}"},

		// share: closed field values move into generated lets.
		{"{a = 1 + 2}", "(let %l1 = (1 + 2) in {a = %l1})"},
		{"{a = 1 + 2, b = a}", "(let %l1 = (1 + 2) in {a = %l1, b = a})"},
		{"[f x, 2]", "(let %l1 = (f x) in [%l1, 2])"},
		{"{l = [1 + 2]}", "(let %l2 = (let %l1 = (1 + 2) in [%l1]) in {l = %l2})"},
		// A bound identifier does not pin a value down.
		{"{a = 1, b = (fun a => a) 2}", "(let %l1 = ((fun a => a) 2) in {a = 1, b = %l1})"},

		// A field with a free identifier stays put: merging rebinds
		// field bodies against the union field set, and a lifted
		// binding would escape that.
		{"{a = 1, b = a + 1}", "{a = 1, b = (a + 1)}"},
		{"{m = n + 1}", "{m = (n + 1)}"},
		{"fun x => {a = x + 1}", "(fun x => {a = (x + 1)})"},

		// Constants and functions are never lifted.
		{"{a = 1, f = fun x => x}", "{a = 1, f = (fun x => x)}"},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			expr, err := parser.ParseExpr("test", tc.in)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			v, cerr := compile.Expr(expr)
			if cerr != nil {
				t.Fatalf("compile: %v", cerr)
			}
			v, cerr = transform.Term(v)
			if cerr != nil {
				t.Fatalf("transform: %v", cerr)
			}
			if got := term.Debug(v); got != tc.out {
				t.Errorf("got %s; want %s", got, tc.out)
			}
		})
	}
}

type bogusType struct{}

func (bogusType) String() string { return "bogus" }

func TestForeignAnnotation(t *testing.T) {
	mv := &term.MetaValue{
		Value:  &term.Num{X: *apd.New(1, 0)},
		Annots: []term.Annot{{Type: bogusType{}, L: term.NewLabel("bogus", nil)}},
	}
	_, err := transform.Term(mv)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.IsInternal(err) {
		t.Errorf("got %v; want an internal error", err)
	}
}
