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

// Package stdlib carries the embedded standard library sources. Each
// source evaluates to a record; the runtime binds the fields of every
// record as toplevel identifiers, so user code calls fold or between
// without qualification.
package stdlib

import "embed"

//go:embed *.lode
var files embed.FS

// A File is one standard library source.
type File struct {
	Name   string
	Source string
}

// order fixes the load sequence. A file may reference bindings from the
// files before it and nothing from the files after it.
var order = []string{
	"lists.lode",
	"contracts.lode",
	"records.lode",
}

// Files returns the standard library sources in load order.
func Files() []File {
	out := make([]File, 0, len(order))
	for _, name := range order {
		src, err := files.ReadFile(name)
		if err != nil {
			// The sources are compiled into the binary; a missing one
			// is a build defect.
			panic("stdlib: " + err.Error())
		}
		out = append(out, File{Name: name, Source: string(src)})
	}
	return out
}
