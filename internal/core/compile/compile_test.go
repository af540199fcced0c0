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

package compile_test

import (
	"strings"
	"testing"

	"lodelang.org/go/internal/core/compile"
	"lodelang.org/go/internal/core/term"
	"lodelang.org/go/lode/parser"
)

func TestCompile(t *testing.T) {
	testCases := []struct {
		in  string
		out string
	}{
		// Literals and operators.
		{"42", "42"},
		{`"hi\n"`, `"hi\n"`},
		{"true", "true"},
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{`"a" ++ "b"`, `("a" ++ "b")`},
		{"!a", "(! a)"},
		{"-x", "(- x)"},
		{"a == b", "(a == b)"},

		// Conditionals and connectives reduce to the selector form.
		{"if a then 1 else 2", "(((ite a) 1) 2)"},
		{"a && b", "(((ite a) b) false)"},
		{"a || b", "(((ite a) true) b)"},

		// Functions, lets, application.
		{"fun x y => x", "(fun x => (fun y => x))"},
		{"let x = 1 in x + x", "(let x = 1 in (x + x))"},
		{"f x y", "((f x) y)"},
		{"f x + 1", "((f x) + 1)"},

		// Predeclared operators: saturated, partial, bare, shadowed.
		{"head xs", "(head xs)"},
		{"elemat xs 0", "(elemat xs 0)"},
		{"merge a b", "(a & b)"},
		{"head", "(fun %x => (head %x))"},
		{"map f", "((fun %x => (fun %y => (map %x %y))) f)"},
		{"let head = 1 in head", "(let head = 1 in head)"},
		{"{length = 1, x = length}", "{length = 1, x = length}"},

		// Selection.
		{"x.a", `(x . "a")`},
		{"x.a.b", `((x . "a") . "b")`},
		{`x."a b"`, `(x . "a b")`},

		// Records and lists.
		{"{a = 1, b = a + 1}", "{a = 1, b = (a + 1)}"},
		{"[1, f x]", "[1, (f x)]"},
		{"{a = 1} & {a = 2}", "({a = 1} & {a = 2})"},

		// Metadata.
		{"{port | default | Number = 80}", "{port = (80 | default | Number)}"},
		{`{a | doc "the a" = 1}`, `{a = (1 | doc "the a")}`},
		{"{a | Number}", "{a = (_ | Number)}"},
		{"80 | default", "(80 | default)"},
		{"x : Number -> Number", "(x : Number -> Number)"},
		{"x : forall a. a -> a", "(x : forall a. a -> a)"},
		{"x : List Number", "(x : List Number)"},
		{"x | between 1 10", "(x | between 1 10)"},
		{"x | num.nat", "(x | num.nat)"},
		{"(x | default) : Number", "(x | default : Number)"},
		{"let x : Number = 1 in x", "(let x = (1 : Number) in x)"},

		// Contract expressions resolve against the record scope.
		{"{n = 5, x | between 0 n = 3}", "{n = 5, x = (3 | between 0 n)}"},
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
			if got := term.Debug(v); got != tc.out {
				t.Errorf("got %s; want %s", got, tc.out)
			}
		})
	}
}

func TestCompileErrors(t *testing.T) {
	testCases := []struct {
		in  string
		err string
	}{
		{"{a = 1, a = 2}", "repeated"},
		{`{a = 1, "a" = 2}`, "repeated"},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			expr, err := parser.ParseExpr("test", tc.in)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			_, cerr := compile.Expr(expr)
			if cerr == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(cerr.Error(), tc.err) {
				t.Errorf("got error %q; want it to contain %q", cerr, tc.err)
			}
		})
	}
}
