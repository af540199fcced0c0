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

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newEvalCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval [file]",
		Short: "evaluate a file and print its value",
		Long: `eval evaluates a single Lode file to weak head normal form and
prints the result. Fields beneath the head of a record are named but
not forced; use export to evaluate a document in full.

A file of "-", or no file at all, reads standard input.

Expressions given with -e are evaluated after the file, which must be
a record, with its fields in scope:

	$ lode eval -e port -e 'port + 1' config.lode

With -e and no file the expressions are evaluated on their own; pass
"-" to evaluate them against standard input.`,
		RunE: mkRunE(c, runEval),
	}

	cmd.Flags().StringArrayP(string(flagExpression), "e", nil,
		"evaluate this expression in the file's scope")

	return cmd
}

func runEval(cmd *Command, args []string) error {
	rt := newRuntime(cmd)
	w := cmd.OutOrStdout()

	exprs := flagExpression.StringArray(cmd)
	if len(exprs) == 0 {
		name, src, err := readSource(args)
		exitOnErr(cmd, err, true)
		p, err := rt.Compile(name, string(src))
		exitOnErr(cmd, err, true)
		v, err := p.Eval()
		exitOnErr(cmd, err, true)
		fmt.Fprintln(w, v)
		return nil
	}

	s := rt.NewSession()
	if len(args) > 0 {
		name, src, err := readSource(args)
		exitOnErr(cmd, err, true)
		_, err = s.Load(name, string(src))
		exitOnErr(cmd, err, true)
	}
	for _, expr := range exprs {
		res, err := s.Eval(expr)
		if err != nil {
			exitOnErr(cmd, err, false)
			continue
		}
		if res.Name != "" {
			// A toplevel let binds a name for the expressions after
			// it and prints nothing itself.
			continue
		}
		fmt.Fprintln(w, res.Value)
	}
	return nil
}
