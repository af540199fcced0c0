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

package lode

import (
	"fmt"

	"lodelang.org/go/internal/core/term"
	"lodelang.org/go/internal/core/types"
	encjson "lodelang.org/go/internal/encoding/json"
	encyaml "lodelang.org/go/internal/encoding/yaml"
)

// A Program is one source run through parse, typecheck, and transform,
// ready to evaluate against its runtime's environment.
type Program struct {
	rt *Runtime
	t  term.Term
	ty types.Type
}

// Compile runs src through the front half of the pipeline. filename
// only names the input in diagnostics.
func (rt *Runtime) Compile(filename, src string) (*Program, error) {
	tt, ty, err := rt.pipeline(filename, src, rt.typeEnv)
	if err != nil {
		return nil, err
	}
	return &Program{rt: rt, t: tt, ty: ty}, nil
}

// Type reports the program's apparent static type.
func (p *Program) Type() types.Type { return p.ty }

// Eval reduces the program to weak head normal form.
func (p *Program) Eval() (Value, error) {
	v, venv, err := p.rt.ev.Eval(p.t, p.rt.evalEnv)
	if err != nil {
		return Value{}, err
	}
	return Value{rt: p.rt, t: v, env: venv}, nil
}

// Export fully evaluates the program and encodes the result. format is
// "json" or "yaml".
func (p *Program) Export(format string) ([]byte, error) {
	switch format {
	case "json":
		return encjson.Encode(p.rt.ev, p.t, p.rt.evalEnv)
	case "yaml":
		return encyaml.Encode(p.rt.ev, p.t, p.rt.evalEnv)
	}
	return nil, fmt.Errorf("unknown export format %q", format)
}
