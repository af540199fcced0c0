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

package term_test

import (
	"testing"

	"github.com/cockroachdb/apd/v3"
	"github.com/go-quicktest/qt"

	"lodelang.org/go/internal/core/term"
	"lodelang.org/go/lode/ast"
	"lodelang.org/go/lode/token"
)

func num(v int64) *term.Num {
	return &term.Num{X: *apd.New(v, 0)}
}

func TestEnvironmentLookup(t *testing.T) {
	root := term.NewEnvironment(nil)
	outer := &term.Thunk{Body: num(1)}
	inherited := &term.Thunk{Body: num(2)}
	root.Bind("x", outer)
	root.Bind("y", inherited)

	child := term.NewEnvironment(root)
	inner := &term.Thunk{Body: num(3)}
	child.Bind("x", inner)

	got, ok := child.Lookup("x")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(got, inner))

	got, ok = child.Lookup("y")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(got, inherited))

	_, ok = child.Lookup("z")
	qt.Assert(t, qt.IsFalse(ok))

	// The parent does not see the shadowing binding.
	got, ok = root.Lookup("x")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(got, outer))
}

func TestEnvironmentWith(t *testing.T) {
	root := term.NewEnvironment(nil)
	child := root.With("x", &term.Thunk{Body: num(1)})

	qt.Assert(t, qt.Equals(child.Up, root))
	_, ok := root.Lookup("x")
	qt.Assert(t, qt.IsFalse(ok))
	_, ok = child.Lookup("x")
	qt.Assert(t, qt.IsTrue(ok))
}

func TestNewRecord(t *testing.T) {
	base := term.NewEnvironment(nil)
	rec := term.NewRecord(nil, map[string]term.Term{
		"a": num(1),
		"b": &term.Var{Name: "a"},
	}, base)

	qt.Assert(t, qt.DeepEquals(rec.FieldNames(), []string{"a", "b"}))

	// Fields close over a shared scope in which both siblings are
	// bound, so b's body can resolve a.
	b := rec.Fields["b"]
	th, ok := b.Value.Env.Lookup("a")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(th, rec.Fields["a"].Value))

	// The conjunct retains the scope outside the record.
	qt.Assert(t, qt.HasLen(b.Conjuncts, 1))
	qt.Assert(t, qt.Equals(b.Conjuncts[0].Base, base))
	qt.Assert(t, qt.Equals(b.Conjuncts[0].Body, b.Value.Body))

	// A fresh record has not evaluated anything.
	qt.Assert(t, qt.Equals(b.Value.State, term.Suspended))
	qt.Assert(t, qt.Equals(b.Value.Evals, 0))
}

func TestNewMetaValue(t *testing.T) {
	qt.Assert(t, qt.PanicMatches(func() {
		term.NewMetaValue(nil, nil, "", term.Normal, nil)
	}, `term: meta-value carries no value and no metadata`))

	// Each kind of metadata is on its own enough to make the value
	// meaningful.
	for _, mv := range []*term.MetaValue{
		term.NewMetaValue(nil, num(1), "", term.Normal, nil),
		term.NewMetaValue(nil, nil, "a port", term.Normal, nil),
		term.NewMetaValue(nil, nil, "", term.Default, nil),
		term.NewMetaValue(nil, nil, "", term.Normal, []term.Annot{{L: term.NewLabel("Number", nil)}}),
	} {
		qt.Assert(t, qt.IsNotNil(mv))
	}
}

func TestMergePriority(t *testing.T) {
	var zero term.MergePriority
	qt.Assert(t, qt.Equals(zero, term.Normal))
	qt.Assert(t, qt.IsTrue(term.Default < term.Normal))
	qt.Assert(t, qt.Equals(term.Default.String(), "default"))
	qt.Assert(t, qt.Equals(term.Normal.String(), "normal"))

	qt.Assert(t, qt.Equals(term.PriorityOf(num(1)), term.Normal))
	mv := term.NewMetaValue(nil, num(1), "", term.Default, nil)
	qt.Assert(t, qt.Equals(term.PriorityOf(mv), term.Default))
}

func TestLabel(t *testing.T) {
	f := token.NewFile("t.lode", 20)
	src := &ast.Ident{NamePos: f.Pos(3), Name: "Number"}
	l := term.NewLabel("Number -> Number", src)

	qt.Assert(t, qt.IsTrue(l.Polarity))
	qt.Assert(t, qt.Equals(l.Pos, src.Pos()))
	qt.Assert(t, qt.Equals(l.Fault(), "the value"))
	qt.Assert(t, qt.Equals(l.PathString(), ""))

	dom := l.GoDom()
	qt.Assert(t, qt.IsFalse(dom.Polarity))
	qt.Assert(t, qt.Equals(dom.Fault(), "the caller"))
	qt.Assert(t, qt.Equals(dom.PathString(), "domain"))

	cod := l.GoCodom()
	qt.Assert(t, qt.IsTrue(cod.Polarity))
	qt.Assert(t, qt.Equals(cod.PathString(), "codomain"))

	// Descents do not share path storage with each other or with their
	// parent.
	deep := dom.GoCodom()
	qt.Assert(t, qt.Equals(deep.PathString(), "domain/codomain"))
	qt.Assert(t, qt.Equals(dom.PathString(), "domain"))
	qt.Assert(t, qt.Equals(l.PathString(), ""))

	// A double flip restores the original fault assignment.
	qt.Assert(t, qt.IsTrue(dom.Flip().Polarity))
}

func TestShallow(t *testing.T) {
	emptyRec := term.NewRecord(nil, nil, term.NewEnvironment(nil))
	rec := term.NewRecord(nil, map[string]term.Term{
		"b": num(2),
		"a": num(1),
	}, term.NewEnvironment(nil))

	testCases := []struct {
		x    term.Term
		want string
	}{
		{nil, "<nil>"},
		{&term.Bool{B: true}, "true"},
		{num(42), "42"},
		{&term.Str{S: "hi"}, `"hi"`},
		{&term.Var{Name: "x"}, "x"},
		{&term.Fun{Param: "x", Body: num(1)}, "fun x => …"},
		{emptyRec, "{}"},
		{rec, "{a = …, b = …}"},
		{&term.RecRecord{Fields: map[string]term.Term{"b": num(2), "a": num(1)}}, "{a = …, b = …}"},
		{&term.List{}, "[]"},
		{&term.List{Elems: []term.Term{num(1), num(2)}}, "[…, …]"},
		{term.NewMetaValue(nil, num(8), "", term.Default, nil), "8"},
		{term.NewMetaValue(nil, nil, "doc", term.Normal, nil), "<no value>"},
		{&term.Lbl{}, "<label>"},
		{&term.Sym{Key: 1}, "<sealing key>"},
		{&term.Sealed{Key: 1, Value: num(1)}, "<sealed>"},
		{&term.App{Fn: &term.Var{Name: "f"}, Arg: num(1)}, "…"},
		{&term.Closure{Th: &term.Thunk{Body: num(1)}}, "…"},
		{&term.Closure{Th: &term.Thunk{State: term.Evaluated, Val: num(7)}}, "7"},
	}
	for _, tc := range testCases {
		qt.Assert(t, qt.Equals(term.Shallow(tc.x), tc.want))
	}
}

func TestKindString(t *testing.T) {
	testCases := []struct {
		k    term.Kind
		want string
	}{
		{term.BoolKind, "Bool"},
		{term.NumKind, "Number"},
		{term.StringKind, "String"},
		{term.FunKind, "Function"},
		{term.RecordKind, "Record"},
		{term.ListKind, "List"},
		{term.ComparableKind, "Number|String"},
		{term.Kind(0), "(not a value)"},
	}
	for _, tc := range testCases {
		qt.Assert(t, qt.Equals(tc.k.String(), tc.want))
	}

	qt.Assert(t, qt.Equals(term.KindOf(num(1)), term.NumKind))
	qt.Assert(t, qt.Equals(term.KindOf(&term.Var{Name: "x"}), term.Kind(0)))
}

func TestNewSymKey(t *testing.T) {
	a, b := term.NewSymKey(), term.NewSymKey()
	qt.Assert(t, qt.Not(qt.Equals(a, b)))
}

func TestPos(t *testing.T) {
	qt.Assert(t, qt.Equals(term.Pos(nil), token.NoPos))
	qt.Assert(t, qt.Equals(term.Pos(&term.Var{Name: "x"}), token.NoPos))

	f := token.NewFile("t.lode", 20)
	src := &ast.Ident{NamePos: f.Pos(5), Name: "x"}
	qt.Assert(t, qt.Equals(term.Pos(&term.Var{Src: src, Name: "x"}), f.Pos(5)))
}
