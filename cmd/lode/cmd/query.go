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
	"github.com/spf13/cobra"

	"lodelang.org/go/lode"
	"lodelang.org/go/lode/errors"
	"lodelang.org/go/lode/token"
)

func newQueryCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <expr> [file]",
		Short: "show the metadata of a value",
		Long: `query loads a single Lode record file, evaluates the given
expression with its fields in scope, and prints the expression's
metadata: documentation, annotations, the default if there is one, and
for records the field names. Only the head of the value is computed;
fields are named without being evaluated.

A file of "-", or no file at all, reads standard input.

Example:

	$ lode query port config.lode
	doc: Port to listen on.
	contract: between 1 65535
	default: 80`,
		RunE: mkRunE(c, runQuery),
	}
	return cmd
}

func runQuery(cmd *Command, args []string) error {
	if len(args) == 0 {
		exitOnErr(cmd, errors.Newf(token.NoPos,
			"query needs an expression to ask about"), true)
	}
	name, src, err := readSource(args[1:])
	exitOnErr(cmd, err, true)
	rt := newRuntime(cmd)

	s := rt.NewSession()
	_, err = s.Load(name, string(src))
	exitOnErr(cmd, err, true)
	q, err := s.Query(args[0])
	exitOnErr(cmd, err, true)
	lode.WriteQuery(cmd.OutOrStdout(), q)
	return nil
}
