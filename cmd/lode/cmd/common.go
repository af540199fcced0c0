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
	"bytes"
	"io"
	"os"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"lodelang.org/go/lode"
	"lodelang.org/go/lode/errors"
	"lodelang.org/go/lode/token"
)

var inTest = false

var stdin io.Reader = os.Stdin

func getLang() language.Tag {
	loc := os.Getenv("LC_ALL")
	if loc == "" {
		loc = os.Getenv("LANG")
	}
	loc = strings.Split(loc, ".")[0]
	return language.Make(loc)
}

func exitOnErr(cmd *Command, err error, fatal bool) {
	if err == nil {
		return
	}

	// Link x/text as our localizer.
	p := message.NewPrinter(getLang())
	format := func(w io.Writer, format string, args ...interface{}) {
		p.Fprintf(w, format, args...)
	}

	cwd, _ := os.Getwd()

	w := &bytes.Buffer{}
	errors.Print(w, err, &errors.Config{
		Format:  format,
		Cwd:     cwd,
		ToSlash: inTest,
	})

	b := w.Bytes()
	_, _ = cmd.Stderr().Write(b)
	if fatal {
		exit()
	}
}

func newRuntime(cmd *Command) *lode.Runtime {
	rt, err := lode.New(nil)
	exitOnErr(cmd, err, true)
	return rt
}

// readSource returns the name and contents of a command's single input
// file. No argument, or "-", reads standard input.
func readSource(args []string) (name string, src []byte, err error) {
	switch {
	case len(args) > 1:
		return "", nil, errors.Newf(token.NoPos,
			"too many arguments; commands take a single file")
	case len(args) == 0 || args[0] == "-":
		src, err = io.ReadAll(stdin)
		return "-", src, err
	}
	src, err = os.ReadFile(args[0])
	return args[0], src, err
}
