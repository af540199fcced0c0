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
)

func newVetCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vet [file]",
		Short: "check a file for type and contract errors",
		Long: `vet parses and typechecks a single Lode file and evaluates its
result to weak head normal form, printing nothing on success.

Evaluation is lazy, so by default a broken contract on a field nobody
reads goes unnoticed. With -c every field is forced: all contracts are
checked and every field must have a value.

A file of "-", or no file at all, reads standard input.`,
		RunE: mkRunE(c, runVet),
	}

	cmd.Flags().BoolP(string(flagConcrete), "c", false,
		"force every field and require concrete values")

	return cmd
}

func runVet(cmd *Command, args []string) error {
	name, src, err := readSource(args)
	exitOnErr(cmd, err, true)
	rt := newRuntime(cmd)
	p, err := rt.Compile(name, string(src))
	exitOnErr(cmd, err, true)

	if flagConcrete.Bool(cmd) {
		// Encoding visits every field, so it forces every pending
		// contract and rejects metadata-only fields.
		_, err = p.Export("json")
	} else {
		_, err = p.Eval()
	}
	exitOnErr(cmd, err, true)
	return nil
}
