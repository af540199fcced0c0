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

package term

import (
	"slices"
	"strconv"
	"strings"
)

// Shallow renders the head of a term without forcing anything beneath
// it: record fields and list elements print as ellipses. It is the
// rendering used for REPL-style output and inside error messages.
func Shallow(t Term) string {
	var b strings.Builder
	shallow(&b, t)
	return b.String()
}

func shallow(b *strings.Builder, t Term) {
	switch x := t.(type) {
	case nil:
		b.WriteString("<nil>")
	case *Bool:
		b.WriteString(strconv.FormatBool(x.B))
	case *Num:
		b.WriteString(x.X.String())
	case *Str:
		b.WriteString(strconv.Quote(x.S))
	case *Var:
		b.WriteString(x.Name)
	case *Fun:
		b.WriteString("fun ")
		b.WriteString(x.Param)
		b.WriteString(" => …")
	case *Record:
		shallowFields(b, x.FieldNames())
	case *RecRecord:
		names := make([]string, 0, len(x.Fields))
		for name := range x.Fields {
			names = append(names, name)
		}
		shallowFields(b, names)
	case *List:
		if len(x.Elems) == 0 {
			b.WriteString("[]")
			return
		}
		b.WriteByte('[')
		for i := range x.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString("…")
		}
		b.WriteByte(']')
	case *MetaValue:
		if x.Value == nil {
			b.WriteString("<no value>")
			return
		}
		shallow(b, x.Value)
	case *Lbl:
		b.WriteString("<label>")
	case *Sym:
		b.WriteString("<sealing key>")
	case *Sealed:
		b.WriteString("<sealed>")
	case *Closure:
		if x.Th != nil && x.Th.State == Evaluated {
			shallow(b, x.Th.Val)
			return
		}
		b.WriteString("…")
	default:
		b.WriteString("…")
	}
}

// Debug renders a full term tree for tests and debug traces. Like
// Shallow it never forces a thunk, but evaluated thunks print their
// cached value and suspended ones print as "~". Operator applications
// are fully parenthesized; meta-values render their clauses in
// annotation syntax with "_" standing in for a missing value and "!tag"
// for a materialized contract.
func Debug(t Term) string {
	var b strings.Builder
	debug(&b, t)
	return b.String()
}

func debug(b *strings.Builder, t Term) {
	switch x := t.(type) {
	case nil:
		b.WriteString("<nil>")
	case *Bool:
		b.WriteString(strconv.FormatBool(x.B))
	case *Num:
		b.WriteString(x.X.String())
	case *Str:
		b.WriteString(strconv.Quote(x.S))
	case *Var:
		b.WriteString(x.Name)
	case *Fun:
		b.WriteString("(fun ")
		b.WriteString(x.Param)
		b.WriteString(" => ")
		debug(b, x.Body)
		b.WriteByte(')')
	case *Let:
		b.WriteString("(let ")
		b.WriteString(x.Name)
		b.WriteString(" = ")
		debug(b, x.Value)
		b.WriteString(" in ")
		debug(b, x.Body)
		b.WriteByte(')')
	case *App:
		b.WriteByte('(')
		debug(b, x.Fn)
		b.WriteByte(' ')
		debug(b, x.Arg)
		b.WriteByte(')')
	case *Op1:
		b.WriteByte('(')
		b.WriteString(x.Op.String())
		b.WriteByte(' ')
		debug(b, x.X)
		b.WriteByte(')')
	case *Op2:
		b.WriteByte('(')
		if infixOp(x.Op) {
			debug(b, x.X)
			b.WriteByte(' ')
			b.WriteString(x.Op.String())
			b.WriteByte(' ')
			debug(b, x.Y)
		} else {
			b.WriteString(x.Op.String())
			b.WriteByte(' ')
			debug(b, x.X)
			b.WriteByte(' ')
			debug(b, x.Y)
		}
		b.WriteByte(')')
	case *RecRecord:
		names := make([]string, 0, len(x.Fields))
		for name := range x.Fields {
			names = append(names, name)
		}
		slices.Sort(names)
		b.WriteByte('{')
		for i, name := range names {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(name)
			b.WriteString(" = ")
			debug(b, x.Fields[name])
		}
		b.WriteByte('}')
	case *Record:
		b.WriteByte('{')
		for i, name := range x.FieldNames() {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(name)
			b.WriteString(" = ")
			debugThunk(b, x.Fields[name].Value)
		}
		b.WriteByte('}')
	case *List:
		b.WriteByte('[')
		for i, e := range x.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			debug(b, e)
		}
		b.WriteByte(']')
	case *MetaValue:
		b.WriteByte('(')
		if x.Value == nil {
			b.WriteByte('_')
		} else {
			debug(b, x.Value)
		}
		if x.Priority == Default {
			b.WriteString(" | default")
		}
		if x.Doc != "" {
			b.WriteString(" | doc ")
			b.WriteString(strconv.Quote(x.Doc))
		}
		for _, a := range x.Annots {
			if a.Static {
				b.WriteString(" : ")
			} else {
				b.WriteString(" | ")
			}
			b.WriteString(a.Type.String())
		}
		for _, ct := range x.Contracts {
			b.WriteString(" | !")
			b.WriteString(ct.L.Tag)
		}
		b.WriteByte(')')
	case *Lbl:
		b.WriteString("lbl(")
		b.WriteString(x.L.Tag)
		b.WriteByte(')')
	case *Sym:
		b.WriteString("sym(")
		b.WriteString(strconv.FormatInt(x.Key, 10))
		b.WriteByte(')')
	case *Sealed:
		b.WriteString("sealed(")
		debug(b, x.Value)
		b.WriteByte(')')
	case *Closure:
		debugThunk(b, x.Th)
	default:
		b.WriteString("…")
	}
}

func debugThunk(b *strings.Builder, th *Thunk) {
	if th != nil && th.State == Evaluated {
		debug(b, th.Val)
		return
	}
	b.WriteByte('~')
}

func infixOp(op BinaryOp) bool {
	switch op {
	case AddOp, SubOp, MulOp, DivOp, ConcatOp,
		EqOp, NeqOp, LssOp, LeqOp, GtrOp, GeqOp,
		MergeOp, SelectOp:
		return true
	}
	return false
}

// shallowFields prints a field-name skeleton. It owns the names slice
// and sorts it in place.
func shallowFields(b *strings.Builder, names []string) {
	if len(names) == 0 {
		b.WriteString("{}")
		return
	}
	slices.Sort(names)
	b.WriteByte('{')
	for i, name := range names {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(name)
		b.WriteString(" = …")
	}
	b.WriteByte('}')
}
