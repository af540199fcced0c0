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
	"io"
	"strings"
)

// A QueryResult is the metadata of one value: what a configuration
// reader wants to know without evaluating the configuration.
type QueryResult struct {
	// Doc is the value's documentation string, or empty.
	Doc string

	// Types and Contracts render the value's annotations as written:
	// static ':' annotations and '|' contract annotations.
	Types     []string
	Contracts []string

	// Default reports that Value below is a default, overridable by a
	// merge.
	Default bool

	// Value is a shallow rendering of the value's head; empty when the
	// field declares metadata only.
	Value string

	// Fields names the fields when the value is a record. They are not
	// evaluated.
	Fields []string
}

// WriteQuery renders a query result as plain text, one attribute per
// line.
func WriteQuery(w io.Writer, q *QueryResult) {
	if q.Doc != "" {
		fmt.Fprintf(w, "doc: %s\n", q.Doc)
	}
	for _, t := range q.Types {
		fmt.Fprintf(w, "type: %s\n", t)
	}
	for _, c := range q.Contracts {
		fmt.Fprintf(w, "contract: %s\n", c)
	}
	switch {
	case q.Value == "":
		fmt.Fprintln(w, "value: none (metadata only)")
	case q.Default:
		fmt.Fprintf(w, "default: %s\n", q.Value)
	default:
		fmt.Fprintf(w, "value: %s\n", q.Value)
	}
	if len(q.Fields) > 0 {
		fmt.Fprintf(w, "fields: %s\n", strings.Join(q.Fields, ", "))
	}
}
