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

// Package yaml encodes fully evaluated terms as YAML.
package yaml

import (
	"strconv"

	"gopkg.in/yaml.v3"

	"lodelang.org/go/internal/core/eval"
	"lodelang.org/go/internal/core/term"
	"lodelang.org/go/lode/errors"
)

// Encode evaluates t deeply and renders the result as a YAML document.
// Strings are tagged explicitly so a string that looks like a number or
// a boolean survives a round trip.
func Encode(c *eval.Context, t term.Term, env *term.Environment) ([]byte, error) {
	n, err := encode(c, t, env)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(n)
}

func encode(c *eval.Context, t term.Term, env *term.Environment) (*yaml.Node, error) {
	v, venv, err := c.Eval(t, env)
	if err != nil {
		return nil, err
	}
	switch x := v.(type) {
	case *term.Bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: strconv.FormatBool(x.B)}, nil
	case *term.Num:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: x.X.String()}, nil
	case *term.Str:
		n := &yaml.Node{Kind: yaml.ScalarNode}
		n.SetString(x.S)
		return n, nil
	case *term.List:
		n := &yaml.Node{Kind: yaml.SequenceNode}
		for _, e := range x.Elems {
			en, err := encode(c, e, venv)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, en)
		}
		return n, nil
	case *term.Record:
		n := &yaml.Node{Kind: yaml.MappingNode}
		for _, name := range x.FieldNames() {
			k := &yaml.Node{Kind: yaml.ScalarNode}
			k.SetString(name)
			fv, err := encode(c, &term.Closure{Th: x.Fields[name].Value}, nil)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, k, fv)
		}
		return n, nil
	}
	return nil, errors.Newf(term.Pos(v), "cannot encode %s as YAML", term.Shallow(v))
}
