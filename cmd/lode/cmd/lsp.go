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
	"os"

	"github.com/spf13/cobra"

	"lodelang.org/go/internal/lsp"
	"lodelang.org/go/lode/errors"
	"lodelang.org/go/lode/token"
)

func newLSPCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "start the language server",
		Long: `lsp speaks the Language Server Protocol over standard input and
standard output. Editors start it themselves; there is rarely a reason
to run it by hand.`,
		RunE: mkRunE(c, runLSP),
	}
	return cmd
}

func runLSP(cmd *Command, args []string) error {
	if len(args) != 0 {
		exitOnErr(cmd, errors.Newf(token.NoPos, "lsp takes no arguments"), true)
	}
	return lsp.Run(cmd.Context(), os.Stdin, os.Stdout)
}
