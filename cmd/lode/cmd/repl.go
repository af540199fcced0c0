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
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"lodelang.org/go/lode"
	"lodelang.org/go/lode/errors"
	"lodelang.org/go/lode/token"
)

func newReplCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "start an interactive session",
		Long: `repl reads expressions and toplevel lets from standard input and
evaluates them one at a time in a shared scope:

	lode> let base = {port | default = 80}
	lode> (base & {port = 8080}).port
	8080

Input that stops mid-construct continues on the next line. Lines
starting with a colon are session commands:

	:type <expr>    show an expression's type without evaluating it
	:query <expr>   show an expression's metadata
	:load <file>    bind every field of a record file into scope
	:names          list the names in scope
	:quit           leave the session

When standard input is not a terminal no prompts are written, so a
session can be scripted by piping in one input per line.`,
		RunE: mkRunE(c, runRepl),
	}
	return cmd
}

func runRepl(cmd *Command, args []string) error {
	if len(args) != 0 {
		exitOnErr(cmd, errors.Newf(token.NoPos, "repl takes no arguments"), true)
	}
	rt := newRuntime(cmd)
	s := rt.NewSession()

	interactive := false
	if f, ok := stdin.(*os.File); ok {
		fd := f.Fd()
		interactive = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}

	out := cmd.OutOrStdout()
	// Errors are part of the dialogue: they go to stderr directly,
	// without deciding the exit status.
	errw := cmd.OutOrStderr()

	if interactive {
		fmt.Fprintln(out, `Lode session. Type :help for help, :quit to leave.`)
	}

	var pending strings.Builder
	var incomplete error
	sc := bufio.NewScanner(stdin)
	for {
		if interactive {
			if pending.Len() == 0 {
				fmt.Fprint(out, "lode> ")
			} else {
				fmt.Fprint(out, "  ... ")
			}
		}
		if !sc.Scan() {
			break
		}
		line := sc.Text()
		if pending.Len() == 0 {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			if strings.HasPrefix(trimmed, ":") {
				if replCommand(s, out, errw, trimmed) {
					return nil
				}
				continue
			}
		}
		pending.WriteString(line)
		pending.WriteByte('\n')

		res, err := s.Eval(pending.String())
		if err != nil && errors.IsIncomplete(err) {
			incomplete = err
			continue
		}
		pending.Reset()
		incomplete = nil
		switch {
		case err != nil:
			printSessionErr(errw, err)
		case res.Name == "":
			fmt.Fprintln(out, res.Value)
		}
	}
	if incomplete != nil {
		printSessionErr(errw, incomplete)
	}
	if interactive {
		fmt.Fprintln(out)
	}
	return sc.Err()
}

// replCommand runs one colon command and reports whether the session
// should end.
func replCommand(s *lode.Session, out, errw io.Writer, line string) bool {
	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	switch name {
	case ":quit", ":exit", ":q":
		return true
	case ":help", ":h":
		fmt.Fprint(out, replHelp)
	case ":type", ":t":
		if rest == "" {
			fmt.Fprintln(errw, "usage: :type <expr>")
			break
		}
		ty, err := s.Typecheck(rest)
		if err != nil {
			printSessionErr(errw, err)
			break
		}
		fmt.Fprintln(out, ty)
	case ":query":
		if rest == "" {
			fmt.Fprintln(errw, "usage: :query <expr>")
			break
		}
		q, err := s.Query(rest)
		if err != nil {
			printSessionErr(errw, err)
			break
		}
		lode.WriteQuery(out, q)
	case ":load":
		if rest == "" {
			fmt.Fprintln(errw, "usage: :load <file>")
			break
		}
		src, err := os.ReadFile(rest)
		if err != nil {
			fmt.Fprintln(errw, err)
			break
		}
		names, err := s.Load(rest, string(src))
		if err != nil {
			printSessionErr(errw, err)
			break
		}
		fmt.Fprintf(out, "loaded %s\n", strings.Join(names, ", "))
	case ":names":
		fmt.Fprintln(out, strings.Join(s.Names(), " "))
	default:
		fmt.Fprintf(errw, "unknown command %s; try :help\n", name)
	}
	return false
}

const replHelp = `:type <expr>    show an expression's type without evaluating it
:query <expr>   show an expression's metadata
:load <file>    bind every field of a record file into scope
:names          list the names in scope
:quit           leave the session
`

func printSessionErr(w io.Writer, err error) {
	cwd, _ := os.Getwd()
	errors.Print(w, err, &errors.Config{Cwd: cwd, ToSlash: inTest})
}
