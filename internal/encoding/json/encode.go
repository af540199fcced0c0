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

// Package json encodes fully evaluated terms as JSON.
package json

import (
	"encoding/json"

	"lodelang.org/go/internal/core/eval"
	"lodelang.org/go/internal/core/term"
	"lodelang.org/go/lode/errors"
)

// Encode evaluates t deeply and renders the result: records become
// objects with sorted keys, lists arrays, numbers bare literals.
// Functions and the contract machinery's internal values have no JSON
// form and are errors.
func Encode(c *eval.Context, t term.Term, env *term.Environment) ([]byte, error) {
	v, err := convert(c, t, env)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(v, "", "    ")
}

func convert(c *eval.Context, t term.Term, env *term.Environment) (interface{}, error) {
	v, venv, err := c.Eval(t, env)
	if err != nil {
		return nil, err
	}
	switch x := v.(type) {
	case *term.Bool:
		return x.B, nil
	case *term.Num:
		return json.Number(x.X.String()), nil
	case *term.Str:
		return x.S, nil
	case *term.List:
		out := make([]interface{}, len(x.Elems))
		for i, e := range x.Elems {
			ev, err := convert(c, e, venv)
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil
	case *term.Record:
		out := make(map[string]interface{}, len(x.Fields))
		for _, name := range x.FieldNames() {
			fv, err := convert(c, &term.Closure{Th: x.Fields[name].Value}, nil)
			if err != nil {
				return nil, err
			}
			out[name] = fv
		}
		return out, nil
	}
	return nil, errors.Newf(term.Pos(v), "cannot encode %s as JSON", term.Shallow(v))
}
