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

import "lodelang.org/go/lode/ast"

// A MergePriority orders merge operands: a lower priority gives way to a
// higher one. The zero value is Normal.
type MergePriority int8

const (
	// Default is the priority introduced by a "| default" annotation.
	Default MergePriority = iota - 1
	// Normal is the priority of every plain value.
	Normal
)

func (p MergePriority) String() string {
	switch p {
	case Default:
		return "default"
	case Normal:
		return "normal"
	}
	return "unknown"
}

// An Annot is one type or contract annotation attached to a meta-value.
// Static annotations are written with ':' and participate in
// typechecking; contract annotations are written with '|' and are opaque
// to it. Both are enforced at run time.
type Annot struct {
	Static bool
	Type   TypeRef
	L      Label
}

// A Contract is a materialized check: a one-argument checking term with
// its blame label baked in. Applying Fn to a value either returns the
// (possibly wrapped) value or blames L.
type Contract struct {
	Fn Term
	L  Label
}

// A MetaValue attaches metadata to an underlying value: documentation,
// merge priority, and annotations. A meta-value is in weak head normal
// form; strict consumers look through it, while merge and query inspect
// it.
//
//	{port | default | Number = 80}
//
// Value is nil for a field that declares metadata only and relies on a
// merge to supply its definition. Contracts is empty until the transform
// pipeline materializes the checks derived from Annots.
type MetaValue struct {
	Src       ast.Node
	Value     Term
	Doc       string
	Priority  MergePriority
	Annots    []Annot
	Contracts []Contract

	// Checked records that Contracts have already been verified against
	// Value. The evaluator sets it when a forced thunk memoizes the
	// checked result; strict consumers of a checked meta-value skip the
	// contracts instead of running them again.
	Checked bool
}

func (x *MetaValue) Source() ast.Node { return x.Src }
func (x *MetaValue) Kind() Kind       { return MetaKind }

// NewMetaValue builds a meta-value carrying the given metadata. It
// panics when the result would carry no value and no metadata at all:
// such a meta-value means nothing, and the compiler never constructs
// one.
func NewMetaValue(src ast.Node, value Term, doc string, prio MergePriority, annots []Annot) *MetaValue {
	if value == nil && doc == "" && prio == Normal && len(annots) == 0 {
		panic("term: meta-value carries no value and no metadata")
	}
	return &MetaValue{
		Src:      src,
		Value:    value,
		Doc:      doc,
		Priority: prio,
		Annots:   annots,
	}
}

// PriorityOf reports the merge priority of a term in weak head normal
// form. Terms other than meta-values have Normal priority.
func PriorityOf(t Term) MergePriority {
	if mv, ok := t.(*MetaValue); ok {
		return mv.Priority
	}
	return Normal
}
