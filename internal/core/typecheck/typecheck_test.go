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

package typecheck_test

import (
	"strings"
	"testing"

	"lodelang.org/go/internal/core/compile"
	"lodelang.org/go/internal/core/term"
	"lodelang.org/go/internal/core/typecheck"
	"lodelang.org/go/internal/core/types"
	"lodelang.org/go/lode/errors"
	"lodelang.org/go/lode/parser"
)

func mustCompile(t *testing.T, src string) term.Term {
	t.Helper()
	expr, err := parser.ParseExpr("test", src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	v, cerr := compile.Expr(expr)
	if cerr != nil {
		t.Fatalf("compile: %v", cerr)
	}
	return v
}

func TestCheck(t *testing.T) {
	testCases := []struct {
		in  string
		typ string // apparent type when err is empty
		err string // expected substring of the error
	}{
		// Untyped code is walked, not checked: shape mismatches are
		// the evaluator's business.
		{in: `1 + "a"`, typ: "Dyn"},
		{in: `[1, "a", true]`, typ: "List Dyn"},
		{in: `if true then 1 else "a"`, typ: "Dyn"},
		{in: `let x = 1 in x + x`, typ: "Dyn"},
		{in: `{a = 1, b = a + 1}`, typ: "Dyn"},

		// Unbound identifiers are static errors everywhere, contract
		// expressions included.
		{in: `x + 1`, err: `unbound identifier "x"`},
		{in: `fun x => y`, err: `unbound identifier "y"`},
		{in: `{a = b + 1}`, err: `unbound identifier "b"`},
		{in: `5 | foo`, err: `unbound identifier "foo"`},
		{in: `(y + 1) : Number`, err: `unbound identifier "y"`},

		// A ':' annotation opens a typed block.
		{in: `5 : Number`, typ: "Number"},
		{in: `5 : String`, err: "incompatible types Number and String"},
		{in: `(1 + "a") : Number`, err: "incompatible types String and Number"},
		{in: `(fun x => x + 1) : Number -> Number`, typ: "Number -> Number"},
		{in: `(fun x => x + 1) : String -> Number`, err: "incompatible types String and Number"},
		{in: `(fun f => f 1) : (Number -> Number) -> Number`, typ: "(Number -> Number) -> Number"},
		{in: `[1, 2] : List Number`, typ: "List Number"},
		{in: `[1, "a"] : List Number`, err: "incompatible types String and Number"},
		{in: `[1, "a"] : List Dyn`, typ: "List Dyn"},
		{in: `head [1] : Number`, typ: "Number"},
		{in: `(map (fun x => x + 1) [1, 2]) : List Number`, typ: "List Number"},
		{in: `(map (fun x => x + 1) [true]) : List Number`, err: "incompatible types Bool and Number"},
		{in: `(1 == "a") : Bool`, err: "incompatible types String and Number"},
		{in: `"a" ++ 1 : String`, err: "incompatible types Number and String"},
		{in: `(1 ++ 2) : Number`, err: "++ expects two Strings or two Lists, found Number"},
		{in: `(1 2) : Number`, err: "cannot apply a value of type Number"},
		{in: `((fun g => 1) (fun x => x x)) : Number`, err: "recursive type"},
		{in: `{a = (true : Number)}`, err: "incompatible types Bool and Number"},
		{in: `(fieldsof {a = 1 + "x"}) : List String`, err: "incompatible types String and Number"},

		// Checking against Dyn re-enters the dynamic world.
		{in: `5 : Dyn`, typ: "Dyn"},
		{in: `(fun x => x x) : Dyn`, typ: "Dyn"},

		// Records have no static type; selection is dynamic.
		{in: `{a = 1 + 1}.a : Number`, typ: "Number"},

		// The contract boundary: opaque outside, dynamic inside.
		// Plain metadata is transparent.
		{in: `((5 | Number) + 1) : Number`, typ: "Number"},
		{in: `((5 | default) + 1) : Number`, typ: "Number"},
		{in: `(("a" | Number) + 1) : Number`, typ: "Number"},

		// Quantified annotations: values must be parametric, uses
		// instantiate.
		{in: `(fun x => x) : forall a. a -> a`, typ: "forall a. a -> a"},
		{in: `(fun x => x + 1) : forall a. a -> a`, err: "incompatible types a and Number"},
		{in: `(fun x => 1) : forall a. a -> a`, err: "incompatible types Number and a"},
		{in: `(fun x => fun y => x) : forall a. forall b. a -> b -> a`, typ: "forall a. forall b. a -> b -> a"},
		{in: `(fun x => fun y => y) : forall a. forall b. a -> b -> a`, err: "incompatible types b and a"},
		{in: `let id : forall a. a -> a = fun x => x in id 5 : Number`, typ: "Dyn"},
		{in: `let id : forall a. a -> a = fun x => x in id 5 : String`, err: "incompatible types Number and String"},
		{in: `let id : forall a. a -> a = fun x => x in id true : Bool`, typ: "Dyn"},

		// Apparent types flow from untyped bindings into typed blocks.
		{in: `let n = 5 in (n + 1) : Number`, typ: "Dyn"},
		{in: `let s = "x" in s : Number`, err: "incompatible types String and Number"},
		{in: `let f = fun x => x in f 1 : Number`, typ: "Dyn"},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			ty, err := typecheck.Check(mustCompile(t, tc.in), nil)
			if tc.err != "" {
				if err == nil {
					t.Fatalf("Check(%q): unexpected success with type %s", tc.in, ty)
				}
				if !strings.Contains(err.Error(), tc.err) {
					t.Fatalf("Check(%q): error %q does not contain %q", tc.in, err.Error(), tc.err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Check(%q): %v", tc.in, err)
			}
			if got := ty.String(); got != tc.typ {
				t.Fatalf("Check(%q): apparent type %s, want %s", tc.in, got, tc.typ)
			}
		})
	}
}

func TestCheckEnv(t *testing.T) {
	env := typecheck.NewEnv(nil)
	env.Bind("lim", types.Number)
	env.Bind("greet", &types.Arrow{Dom: types.String, Cod: types.String})

	if _, err := typecheck.Check(mustCompile(t, "lim + 1"), env); err != nil {
		t.Fatalf("lim + 1: %v", err)
	}
	if _, err := typecheck.Check(mustCompile(t, `greet "hi" : String`), env); err != nil {
		t.Fatalf("greet: %v", err)
	}
	_, err := typecheck.Check(mustCompile(t, "greet lim : String"), env)
	if err == nil || !strings.Contains(err.Error(), "incompatible types Number and String") {
		t.Fatalf("greet lim: got %v", err)
	}

	// A bare identifier reports its bound type.
	if ty, err := typecheck.Check(mustCompile(t, "lim"), env); err != nil || ty.String() != "Number" {
		t.Fatalf("bare lim: %v %v", ty, err)
	}

	// Inner scopes shadow the environment.
	inner := env.With("lim", types.String)
	if _, err := typecheck.Check(mustCompile(t, `lim ++ "!" : String`), inner); err != nil {
		t.Fatalf("shadowed lim: %v", err)
	}
	if ty, ok := inner.Lookup("greet"); !ok || ty.String() != "String -> String" {
		t.Fatalf("greet through chain: %v %v", ty, ok)
	}
}

func TestTypeErrorCode(t *testing.T) {
	_, err := typecheck.Check(mustCompile(t, "5 : String"), nil)
	if err == nil {
		t.Fatal("expected a type error")
	}
	if c := errors.CodeOf(err); c != errors.TypeError {
		t.Fatalf("code = %v, want TypeError", c)
	}
}

func TestApparent(t *testing.T) {
	testCases := []struct {
		in  string
		typ string
	}{
		{"42", "Number"},
		{`"hi"`, "String"},
		{"true", "Bool"},
		{"[1, 2]", "List Dyn"},
		{"fun x => x", "Dyn"},
		{"5 : Number", "Number"},
		{"5 | Number", "Number"}, // descends through contract metadata
		{"x : forall a. a -> a", "forall a. a -> a"},
		{"x | between 1 10", "Dyn"}, // contracts alone say nothing static
	}
	for _, tc := range testCases {
		if got := typecheck.Apparent(mustCompile(t, tc.in)).String(); got != tc.typ {
			t.Errorf("Apparent(%q) = %s, want %s", tc.in, got, tc.typ)
		}
	}
}
