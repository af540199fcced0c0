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
	"strings"

	"lodelang.org/go/lode/ast"
	"lodelang.org/go/lode/token"
)

// A PathStep records one descent through an arrow contract.
type PathStep uint8

const (
	Domain PathStep = iota
	Codomain
)

func (s PathStep) String() string {
	if s == Domain {
		return "domain"
	}
	return "codomain"
}

// A Label identifies one contract annotation for blame: where the
// annotation was written, which party is at fault when the check fails,
// and the path taken through arrow contracts to reach the failing check.
//
// A fresh label has positive polarity: the annotated value itself is at
// fault when the check fails. Descending into the domain of an arrow
// contract flips polarity, because a bad argument is supplied by the
// caller of the annotated function, not by the function.
type Label struct {
	Tag      string // rendering of the annotated type or contract
	Pos, End token.Pos
	Polarity bool
	Path     []PathStep
}

// NewLabel returns the label for an annotation. Tag renders the
// annotated type or contract; src spans the annotation syntax and may be
// nil for synthesized contracts.
func NewLabel(tag string, src ast.Node) Label {
	l := Label{Tag: tag, Polarity: true}
	if src != nil {
		l.Pos, l.End = src.Pos(), src.End()
	}
	return l
}

// Flip inverts which party the label blames.
func (l Label) Flip() Label {
	l.Polarity = !l.Polarity
	return l
}

func (l Label) step(s PathStep) Label {
	path := make([]PathStep, len(l.Path)+1)
	copy(path, l.Path)
	path[len(l.Path)] = s
	l.Path = path
	return l
}

// GoDom descends into the domain side of an arrow contract: polarity
// flips and the path records the step.
func (l Label) GoDom() Label {
	return l.Flip().step(Domain)
}

// GoCodom descends into the codomain side of an arrow contract: polarity
// is preserved.
func (l Label) GoCodom() Label {
	return l.step(Codomain)
}

// Fault names the party at fault when this label is blamed.
func (l Label) Fault() string {
	if l.Polarity {
		return "the value"
	}
	return "the caller"
}

// PathString renders the domain/codomain path, or "" for a top-level
// check.
func (l Label) PathString() string {
	if len(l.Path) == 0 {
		return ""
	}
	parts := make([]string, len(l.Path))
	for i, s := range l.Path {
		parts[i] = s.String()
	}
	return strings.Join(parts, "/")
}
