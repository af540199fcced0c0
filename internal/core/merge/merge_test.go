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

package merge_test

import (
	"testing"

	"github.com/cockroachdb/apd/v3"
	"github.com/go-quicktest/qt"

	"lodelang.org/go/internal/core/merge"
	"lodelang.org/go/internal/core/term"
)

func num(v int64) *term.Num {
	return &term.Num{X: *apd.New(v, 0)}
}

func val(t term.Term) merge.Operand {
	return merge.Operand{Value: t}
}

func TestPriorityDominance(t *testing.T) {
	x := val(num(1))
	y := merge.Operand{Value: num(2), Priority: term.Default}

	for _, pair := range [][2]merge.Operand{{x, y}, {y, x}} {
		res, env, err := merge.Values(nil, "", pair[0], pair[1])
		qt.Assert(t, qt.IsNil(err))
		qt.Assert(t, qt.IsNil(env))
		n, ok := res.(*term.Num)
		qt.Assert(t, qt.IsTrue(ok))
		qt.Assert(t, qt.IsTrue(n.X.Cmp(&num(1).X) == 0))
	}
}

func TestDominantKeepsLoserContracts(t *testing.T) {
	check := term.Contract{
		Fn: &term.Fun{Param: "v", Body: &term.Var{Name: "v"}},
		L:  term.NewLabel("Number", nil),
	}
	loserEnv := term.NewEnvironment(nil)
	x := val(num(1))
	y := merge.Operand{
		Value:     num(2),
		Env:       loserEnv,
		Priority:  term.Default,
		Contracts: []term.Contract{check},
	}

	res, _, err := merge.Values(nil, "", x, y)
	qt.Assert(t, qt.IsNil(err))
	mv, ok := res.(*term.MetaValue)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.HasLen(mv.Contracts, 1))
	qt.Assert(t, qt.Equals(mv.Contracts[0].L.Tag, "Number"))

	// The check crossed from the loser's scope, so it is closed over it.
	cl, ok := mv.Contracts[0].Fn.(*term.Closure)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(cl.Th.Env, loserEnv))

	// The winning value itself stays bare.
	_, ok = mv.Value.(*term.Num)
	qt.Assert(t, qt.IsTrue(ok))
}

func TestMetaOnlyOperand(t *testing.T) {
	check := term.Contract{
		Fn: &term.Fun{Param: "v", Body: &term.Var{Name: "v"}},
		L:  term.NewLabel("Port", nil),
	}
	x := merge.Operand{Contracts: []term.Contract{check}}
	y := val(num(80))

	for _, pair := range [][2]merge.Operand{{x, y}, {y, x}} {
		res, _, err := merge.Values(nil, "", pair[0], pair[1])
		qt.Assert(t, qt.IsNil(err))
		mv, ok := res.(*term.MetaValue)
		qt.Assert(t, qt.IsTrue(ok))
		qt.Assert(t, qt.HasLen(mv.Contracts, 1))
		n, ok := mv.Value.(*term.Num)
		qt.Assert(t, qt.IsTrue(ok))
		qt.Assert(t, qt.IsTrue(n.X.Cmp(&num(80).X) == 0))
	}
}

func TestEqualScalars(t *testing.T) {
	res, _, err := merge.Values(nil, "", val(num(1)), val(num(1)))
	qt.Assert(t, qt.IsNil(err))
	_, ok := res.(*term.Num)
	qt.Assert(t, qt.IsTrue(ok))

	res, _, err = merge.Values(nil, "", val(&term.Str{S: "a"}), val(&term.Str{S: "a"}))
	qt.Assert(t, qt.IsNil(err))
	_, ok = res.(*term.Str)
	qt.Assert(t, qt.IsTrue(ok))

	res, _, err = merge.Values(nil, "", val(&term.Bool{B: true}), val(&term.Bool{B: true}))
	qt.Assert(t, qt.IsNil(err))
	_, ok = res.(*term.Bool)
	qt.Assert(t, qt.IsTrue(ok))
}

func TestConflicts(t *testing.T) {
	_, _, err := merge.Values(nil, "", val(num(1)), val(num(2)))
	qt.Assert(t, qt.IsNotNil(err))
	qt.Assert(t, qt.Matches(err.Error(), "merge conflict: cannot merge 1 and 2"))

	_, _, err = merge.Values(nil, "port", val(num(1)), val(&term.Str{S: "www"}))
	qt.Assert(t, qt.IsNotNil(err))
	qt.Assert(t, qt.Matches(err.Error(), `merge conflict for field "port":.*`))

	// Distinct defaults conflict like any other pair of values.
	x := merge.Operand{Value: num(1), Priority: term.Default}
	y := merge.Operand{Value: num(2), Priority: term.Default}
	_, _, err = merge.Values(nil, "", x, y)
	qt.Assert(t, qt.IsNotNil(err))

	// Functions never merge with each other.
	f := &term.Fun{Param: "x", Body: &term.Var{Name: "x"}}
	_, _, err = merge.Values(nil, "", val(f), val(f))
	qt.Assert(t, qt.IsNotNil(err))
}

func TestRecordUnion(t *testing.T) {
	rx := term.NewRecord(nil, map[string]term.Term{"a": num(1)}, nil)
	// b references a sibling that only the other operand defines.
	ry := term.NewRecord(nil, map[string]term.Term{"b": &term.Var{Name: "a"}}, nil)

	res, env, err := merge.Values(nil, "", val(rx), val(ry))
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsNil(env))
	rec, ok := res.(*term.Record)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.DeepEquals(rec.FieldNames(), []string{"a", "b"}))

	// One-sided fields keep their body and a single conjunct.
	qt.Assert(t, qt.HasLen(rec.Fields["a"].Conjuncts, 1))
	qt.Assert(t, qt.HasLen(rec.Fields["b"].Conjuncts, 1))

	// b was rebound against the union scope: looking up a from b's
	// environment must find the merged field's thunk.
	th, ok := rec.Fields["b"].Value.Env.Lookup("a")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(th, rec.Fields["a"].Value))
}

func TestRecordTwoSidedField(t *testing.T) {
	rx := term.NewRecord(nil, map[string]term.Term{"a": num(1)}, nil)
	ry := term.NewRecord(nil, map[string]term.Term{"a": num(2)}, nil)

	res, _, err := merge.Values(nil, "cfg", val(rx), val(ry))
	qt.Assert(t, qt.IsNil(err))
	rec := res.(*term.Record)
	qt.Assert(t, qt.HasLen(rec.Fields["a"].Conjuncts, 2))

	// The field body is a deferred merge of closures over the two
	// original bodies, tagged with the field's path.
	op, ok := rec.Fields["a"].Value.Body.(*term.Op2)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(op.Op, term.MergeOp))
	fsrc, ok := op.Src.(*merge.FieldSrc)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(fsrc.Path, "cfg.a"))

	cx, ok := op.X.(*term.Closure)
	qt.Assert(t, qt.IsTrue(ok))
	cy, ok := op.Y.(*term.Closure)
	qt.Assert(t, qt.IsTrue(ok))

	// Both deferred sides see the union scope.
	tx, _ := cx.Th.Env.Lookup("a")
	ty, _ := cy.Th.Env.Lookup("a")
	qt.Assert(t, qt.Equals(tx, rec.Fields["a"].Value))
	qt.Assert(t, qt.Equals(ty, rec.Fields["a"].Value))
}

func TestRecordKeepsMetadata(t *testing.T) {
	rx := term.NewRecord(nil, map[string]term.Term{"a": num(1)}, nil)
	ry := term.NewRecord(nil, map[string]term.Term{"b": num(2)}, nil)
	x := merge.Operand{Value: rx, Doc: "left doc"}
	y := merge.Operand{Value: ry, Priority: term.Default}

	res, _, err := merge.Values(nil, "", x, y)
	qt.Assert(t, qt.IsNil(err))
	mv, ok := res.(*term.MetaValue)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(mv.Doc, "left doc"))
	// Records pass through capture unwrapped.
	_, ok = mv.Value.(*term.Record)
	qt.Assert(t, qt.IsTrue(ok))
}

func TestDocFirstNonEmptyWins(t *testing.T) {
	x := merge.Operand{Doc: "left"}
	y := merge.Operand{Doc: "right"}
	res, _, err := merge.Values(nil, "", x, y)
	qt.Assert(t, qt.IsNil(err))
	mv := res.(*term.MetaValue)
	qt.Assert(t, qt.Equals(mv.Doc, "left"))
	qt.Assert(t, qt.IsNil(mv.Value))

	res, _, err = merge.Values(nil, "", merge.Operand{}, y)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(res.(*term.MetaValue).Doc, "right"))
}

func TestContractDedup(t *testing.T) {
	mk := func(tag string) term.Contract {
		return term.Contract{
			Fn: &term.Fun{Param: "v", Body: &term.Var{Name: "v"}},
			L:  term.NewLabel(tag, nil),
		}
	}
	shared := mk("Number")
	x := merge.Operand{Value: num(1), Contracts: []term.Contract{shared, mk("Port")}}
	y := merge.Operand{Value: num(1), Contracts: []term.Contract{shared}}

	res, _, err := merge.Values(nil, "", x, y)
	qt.Assert(t, qt.IsNil(err))
	mv := res.(*term.MetaValue)
	qt.Assert(t, qt.HasLen(mv.Contracts, 2))
	qt.Assert(t, qt.Equals(mv.Contracts[0].L.Tag, "Number"))
	qt.Assert(t, qt.Equals(mv.Contracts[1].L.Tag, "Port"))
}

func TestDefaultRecordsRecurse(t *testing.T) {
	rx := term.NewRecord(nil, map[string]term.Term{"a": num(1)}, nil)
	ry := term.NewRecord(nil, map[string]term.Term{"b": num(2)}, nil)
	x := merge.Operand{Value: rx, Priority: term.Default}
	y := merge.Operand{Value: ry, Priority: term.Default}

	res, _, err := merge.Values(nil, "", x, y)
	qt.Assert(t, qt.IsNil(err))
	mv, ok := res.(*term.MetaValue)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(mv.Priority, term.Default))
	rec, ok := mv.Value.(*term.Record)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.DeepEquals(rec.FieldNames(), []string{"a", "b"}))
}
