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
	"context"
	"encoding/json"
	"strings"
	"unicode/utf8"

	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"

	"lodelang.org/go/lode"
	"lodelang.org/go/lode/errors"
)

var (
	errMethodNotFound = &jsonrpc2.Error{
		Code: jsonrpc2.CodeMethodNotFound, Message: "method not found"}
	errInvalidParams = &jsonrpc2.Error{
		Code: jsonrpc2.CodeInvalidParams, Message: "invalid params"}
)

// keywords are offered as completions alongside the names in scope.
var keywords = []string{
	"let", "in", "fun", "if", "then", "else", "forall",
	"default", "doc", "true", "false",
}

type server struct {
	rt      *lode.Runtime
	content map[lsp.DocumentURI]string
}

func newServer() (*server, error) {
	rt, err := lode.New(nil)
	if err != nil {
		return nil, err
	}
	return &server{rt, make(map[lsp.DocumentURI]string)}, nil
}

func handler(s *server) jsonrpc2.Handler {
	return routingHandler(map[string]method{
		"initialize":              s.initialize,
		"textDocument/didOpen":    s.didOpen,
		"textDocument/didChange":  s.didChange,
		"textDocument/hover":      s.hover,
		"textDocument/completion": s.completion,

		"textDocument/didClose": noop,
		"shutdown":              noop,
		// Required by spec.
		"initialized": noop,
		// Called by clients even when the server doesn't advertise
		// support for it.
		"workspace/didChangeWatchedFiles": noop,
	})
}

type method func(context.Context, jsonrpc2.JSONRPC2, json.RawMessage) (any, error)

func noop(_ context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return nil, nil
}

func routingHandler(methods map[string]method) jsonrpc2.Handler {
	return jsonrpc2.HandlerWithError(func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
		fn, ok := methods[req.Method]
		if !ok {
			return nil, errMethodNotFound
		}
		return fn(ctx, conn, *req.Params)
	})
}

// Handler implementations. These are all called synchronously.

func (s *server) initialize(_ context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return &lsp.InitializeResult{
		Capabilities: lsp.ServerCapabilities{
			TextDocumentSync: &lsp.TextDocumentSyncOptionsOrKind{
				Options: &lsp.TextDocumentSyncOptions{
					OpenClose: true,
					Change:    lsp.TDSKFull,
				},
			},
			HoverProvider:      true,
			CompletionProvider: &lsp.CompletionOptions{},
		},
	}, nil
}

func (s *server) didOpen(ctx context.Context, conn jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidOpenTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}

	uri, content := params.TextDocument.URI, params.TextDocument.Text
	s.content[uri] = content
	go s.publishDiagnostics(ctx, conn, uri, content)
	return nil, nil
}

func (s *server) didChange(ctx context.Context, conn jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidChangeTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}

	// ContentChanges holds the full text since the server only
	// advertises full sync; see the initialize method.
	uri, content := params.TextDocument.URI, params.ContentChanges[0].Text
	s.content[uri] = content
	go s.publishDiagnostics(ctx, conn, uri, content)
	return nil, nil
}

// hover reports the metadata of the toplevel binding under the cursor,
// in the same form the query surface prints: doc string, annotations,
// default status, and the value's head.
func (s *server) hover(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.TextDocumentPositionParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}

	content, ok := s.content[params.TextDocument.URI]
	if !ok {
		return lsp.Hover{}, nil
	}
	name := identAt(content, positionToIdx(content, params.Position))
	if name == "" {
		return lsp.Hover{}, nil
	}

	sess := s.rt.NewSession()
	if _, err := sess.Load(string(params.TextDocument.URI), content); err != nil {
		return lsp.Hover{}, nil
	}
	q, err := sess.Query(name)
	if err != nil {
		return lsp.Hover{}, nil
	}

	var b strings.Builder
	lode.WriteQuery(&b, q)
	return lsp.Hover{
		Contents: []lsp.MarkedString{{
			Language: "plaintext",
			Value:    strings.TrimSuffix(b.String(), "\n"),
		}},
	}, nil
}

func (s *server) completion(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.CompletionParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}

	names := s.rt.Names()
	if content, ok := s.content[params.TextDocument.URI]; ok {
		sess := s.rt.NewSession()
		if _, err := sess.Load(string(params.TextDocument.URI), content); err == nil {
			names = sess.Names()
		}
	}

	items := make([]lsp.CompletionItem, 0, len(names)+len(keywords))
	for _, name := range names {
		items = append(items, lsp.CompletionItem{Label: name, Kind: lsp.CIKVariable})
	}
	for _, kw := range keywords {
		items = append(items, lsp.CompletionItem{Label: kw, Kind: lsp.CIKKeyword})
	}
	return items, nil
}

func (s *server) publishDiagnostics(ctx context.Context, conn jsonrpc2.JSONRPC2, uri lsp.DocumentURI, content string) {
	conn.Notify(ctx, "textDocument/publishDiagnostics",
		lsp.PublishDiagnosticsParams{URI: uri, Diagnostics: s.diagnostics(uri, content)})
}

// diagnostics runs the front half of the pipeline over the document.
// Nothing is evaluated, so publishing on every keystroke is cheap.
func (s *server) diagnostics(uri lsp.DocumentURI, content string) []lsp.Diagnostic {
	_, err := s.rt.Compile(string(uri), content)
	if err == nil {
		return []lsp.Diagnostic{}
	}

	list := errors.Errors(err)
	diags := make([]lsp.Diagnostic, len(list))
	for i, e := range list {
		diags[i] = lsp.Diagnostic{
			Range:    diagRange(content, e),
			Severity: lsp.Error,
			Source:   diagSource(e),
			Message:  errors.String(e),
		}
	}
	return diags
}

func diagSource(e errors.Error) string {
	switch errors.CodeOf(e) {
	case errors.ParseError, errors.IncompleteError:
		return "parse"
	case errors.TypeError:
		return "type"
	case errors.InternalError:
		return "internal"
	}
	return "eval"
}

// diagRange spans the identifier-shaped token at the error's position,
// or is empty when the position carries no token.
func diagRange(content string, e errors.Error) lsp.Range {
	pos := e.Position().Position()
	if !pos.IsValid() {
		return lsp.Range{}
	}
	start := positionFromIdx(content, pos.Offset)
	end := start
	if n := identLen(content, pos.Offset); n > 0 {
		end = positionFromIdx(content, pos.Offset+n)
	}
	return lsp.Range{Start: start, End: end}
}

// Identifier scanning, matching the scanner's notion of a name.

func isIdentByte(b byte, first bool) bool {
	switch {
	case 'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z' || b == '_':
		return true
	case '0' <= b && b <= '9':
		return !first
	}
	return b >= utf8.RuneSelf
}

// identLen returns the byte length of the identifier starting at idx,
// or 0 if idx does not start one.
func identLen(s string, idx int) int {
	if idx < 0 || idx >= len(s) || !isIdentByte(s[idx], true) {
		return 0
	}
	end := idx + 1
	for end < len(s) && isIdentByte(s[end], false) {
		end++
	}
	return end - idx
}

// identAt returns the identifier the index falls inside, or "".
func identAt(s string, idx int) string {
	if idx > len(s) {
		idx = len(s)
	}
	if idx == len(s) || !isIdentByte(s[idx], false) {
		// The cursor may sit just past the name.
		if idx == 0 || !isIdentByte(s[idx-1], false) {
			return ""
		}
		idx--
	}
	start := idx
	for start > 0 && isIdentByte(s[start-1], false) {
		start--
	}
	if !isIdentByte(s[start], true) {
		return ""
	}
	return s[start : start+identLen(s, start)]
}

// UTF-16 position conversion, as the protocol requires.

func positionToIdx(s string, pos lsp.Position) int {
	var idx int
	walkString(s, func(i int, p lsp.Position) bool {
		idx = i
		return p.Line < pos.Line || (p.Line == pos.Line && p.Character < pos.Character)
	})
	return idx
}

func positionFromIdx(s string, idx int) lsp.Position {
	var pos lsp.Position
	walkString(s, func(i int, p lsp.Position) bool {
		pos = p
		return i < idx
	})
	return pos
}

// walkString generates (index, position) pairs in s, stopping if f
// returns false.
func walkString(s string, f func(i int, p lsp.Position) bool) {
	var p lsp.Position
	lastCR := false

	for i, r := range s {
		if !f(i, p) {
			return
		}
		switch {
		case r == '\r':
			p.Line++
			p.Character = 0
		case r == '\n':
			if lastCR {
				// Part of a \r\n sequence; the line was already counted.
			} else {
				p.Line++
				p.Character = 0
			}
		case r <= 0xFFFF:
			// Encoded in UTF-16 with one unit.
			p.Character++
		default:
			// Encoded in UTF-16 with two units.
			p.Character += 2
		}
		lastCR = r == '\r'
	}
	f(len(s), p)
}
