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

package lsp

import (
	"encoding/json"
	"strings"
	"testing"

	lsp "github.com/sourcegraph/go-lsp"
)

func newTestServer(t *testing.T) *server {
	t.Helper()
	s, err := newServer()
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestDiagnostics(t *testing.T) {
	s := newTestServer(t)

	if diags := s.diagnostics("f.lode", "{a = 1}"); len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	diags := s.diagnostics("f.lode", "nope + 1")
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(diags))
	}
	d := diags[0]
	if d.Source != "type" || !strings.Contains(d.Message, `unbound identifier "nope"`) {
		t.Fatalf("diagnostic %+v", d)
	}
	if d.Range.Start != (lsp.Position{Line: 0, Character: 0}) ||
		d.Range.End != (lsp.Position{Line: 0, Character: 4}) {
		t.Fatalf("range %+v", d.Range)
	}

	diags = s.diagnostics("f.lode", "{a = ")
	if len(diags) == 0 || diags[0].Source != "parse" {
		t.Fatalf("diagnostics %+v", diags)
	}
}

func TestHover(t *testing.T) {
	s := newTestServer(t)
	uri := lsp.DocumentURI("file:///cfg.lode")
	s.content[uri] = `{port | doc "Server port." | default = 80}`

	params, err := json.Marshal(lsp.TextDocumentPositionParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: uri},
		Position:     lsp.Position{Line: 0, Character: 2},
	})
	if err != nil {
		t.Fatal(err)
	}
	res, err := s.hover(nil, nil, params)
	if err != nil {
		t.Fatal(err)
	}
	h := res.(lsp.Hover)
	if len(h.Contents) != 1 {
		t.Fatalf("hover %+v", h)
	}
	text := h.Contents[0].Value
	if !strings.Contains(text, "doc: Server port.") || !strings.Contains(text, "default: 80") {
		t.Fatalf("hover text %q", text)
	}

	// Hovering whitespace reports nothing.
	params, err = json.Marshal(lsp.TextDocumentPositionParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: uri},
		Position:     lsp.Position{Line: 0, Character: 7},
	})
	if err != nil {
		t.Fatal(err)
	}
	res, err = s.hover(nil, nil, params)
	if err != nil {
		t.Fatal(err)
	}
	if h := res.(lsp.Hover); len(h.Contents) != 0 {
		t.Fatalf("hover %+v", h)
	}
}

func TestCompletion(t *testing.T) {
	s := newTestServer(t)
	uri := lsp.DocumentURI("file:///cfg.lode")
	s.content[uri] = "{retries = 3}"

	params, err := json.Marshal(lsp.CompletionParams{
		TextDocumentPositionParams: lsp.TextDocumentPositionParams{
			TextDocument: lsp.TextDocumentIdentifier{URI: uri},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	res, err := s.completion(nil, nil, params)
	if err != nil {
		t.Fatal(err)
	}
	items := res.([]lsp.CompletionItem)
	labels := make(map[string]bool, len(items))
	for _, it := range items {
		labels[it.Label] = true
	}
	for _, want := range []string{"retries", "fold", "between", "let"} {
		if !labels[want] {
			t.Errorf("missing completion %q", want)
		}
	}
}

func TestIdentAt(t *testing.T) {
	const src = "let lim = 10"
	for _, tc := range []struct {
		idx  int
		want string
	}{
		{0, "let"},
		{3, "let"}, // just past the name
		{4, "lim"},
		{7, "lim"},
		{8, ""},  // on the =
		{12, ""}, // numbers are not identifiers
	} {
		if got := identAt(src, tc.idx); got != tc.want {
			t.Errorf("identAt(%d) = %q, want %q", tc.idx, got, tc.want)
		}
	}
}

func TestPositionConversion(t *testing.T) {
	const src = "a\nbc\n"
	if got := positionToIdx(src, lsp.Position{Line: 1, Character: 1}); got != 3 {
		t.Errorf("positionToIdx = %d, want 3", got)
	}
	if got := positionFromIdx(src, 3); got != (lsp.Position{Line: 1, Character: 1}) {
		t.Errorf("positionFromIdx = %+v", got)
	}
}
