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

	"lodelang.org/go/lode/errors"
	"lodelang.org/go/lode/token"
)

func newExportCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "evaluate a file in full and write it out",
		Long: `export evaluates every field of a single Lode file and writes the
result as JSON, or as YAML with --out yaml. Exporting forces the whole
document, so it fails on any broken contract and on fields that
declare metadata without a value.

A file of "-", or no file at all, reads standard input.

Examples:

	$ lode export config.lode
	$ lode export --out yaml -o config.yaml config.lode`,
		RunE: mkRunE(c, runExport),
	}

	addOutFlags(cmd.Flags())

	return cmd
}

func runExport(cmd *Command, args []string) error {
	name, src, err := readSource(args)
	exitOnErr(cmd, err, true)
	rt := newRuntime(cmd)
	p, err := rt.Compile(name, string(src))
	exitOnErr(cmd, err, true)

	format := flagOut.String(cmd)
	data, err := p.Export(format)
	exitOnErr(cmd, err, true)
	if format == "json" {
		// The JSON encoder leaves no trailing newline.
		data = append(data, '\n')
	}
	exitOnErr(cmd, writeOutput(cmd, data), true)
	return nil
}

// writeOutput writes data to the file named by --outfile, or to stdout
// when the flag is empty or "-". An existing file is only overwritten
// under --force.
func writeOutput(cmd *Command, data []byte) error {
	file := flagOutFile.String(cmd)
	if file == "" || file == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if !flagForce.Bool(cmd) {
		if _, err := os.Stat(file); err == nil {
			return errors.Newf(token.NoPos,
				"error writing %q: file already exists", file)
		}
	}
	return os.WriteFile(file, data, 0o644)
}
