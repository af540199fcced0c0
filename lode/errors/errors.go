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

// Package errors defines shared types for handling Lode errors.
//
// All errors reported by the scanner, parser, typechecker, and evaluator
// implement the Error interface defined here, carrying a position and a
// printf-style message. Errors accumulate into lists that sort and
// deduplicate by position.
package errors

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"lodelang.org/go/lode/token"
)

// New is a convenience wrapper for errors.New in the core library.
// It does not carry position information and is not of type Error.
func New(msg string) error {
	return errors.New(msg)
}

// Unwrap returns the result of calling the Unwrap method on err, if err
// implements Unwrap. Otherwise, Unwrap returns nil.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target, and if so,
// sets target to that error value and returns true.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// A Handler is a generic error handler used throughout Lode packages.
//
// The position points to the beginning of the offending value.
type Handler func(pos token.Position, msg string)

// A Message implements the error interface as well as Message to allow
// internationalized messages.
type Message struct {
	format string
	args   []interface{}
}

// NewMessagef creates an error message for human consumption. The arguments
// are for later consumption, allowing the message to be localized at a
// later time. The passed argument list should not be modified.
func NewMessagef(format string, args ...interface{}) Message {
	return Message{format: format, args: args}
}

// Msg returns a printf-style format string and its arguments for human
// consumption.
func (m *Message) Msg() (format string, args []interface{}) {
	return m.format, m.args
}

func (m *Message) Error() string {
	return fmt.Sprintf(m.format, m.args...)
}

// Error is the common error interface shared by all Lode phases.
type Error interface {
	// Position returns the position at which the error occurred.
	Position() token.Pos

	// InputPositions reports positions that contributed to an error.
	InputPositions() []token.Pos

	// Error reports the error message without position information.
	Error() string

	// Path returns the path into the configuration at which the error
	// occurred, if any. It is used by merge conflicts to name the
	// offending field.
	Path() []string

	// Msg returns the unformatted error message and its arguments for
	// human consumption.
	Msg() (format string, args []interface{})
}

// A Code classifies an error by the phase and failure mode that produced
// it. Callers use codes to react to errors programmatically; the message
// remains the primary diagnostic.
type Code int8

const (
	// ParseError indicates malformed input that no amount of further text
	// can repair.
	ParseError Code = iota

	// IncompleteError indicates input that failed to parse only because it
	// ended too early. Interactive callers should request more input.
	IncompleteError

	// TypeError indicates a static typing failure: unification of two
	// incompatible types, or an unbound identifier.
	TypeError

	// EvalError indicates a runtime failure: a primitive applied to the
	// wrong kind of value, a merge conflict, a blamed contract, or
	// resource exhaustion.
	EvalError

	// InternalError indicates a broken invariant in the implementation.
	// It is a bug in Lode, never a user error.
	InternalError
)

func (c Code) String() string {
	switch c {
	case ParseError:
		return "parse"
	case IncompleteError:
		return "incomplete"
	case TypeError:
		return "type"
	case EvalError:
		return "eval"
	case InternalError:
		return "internal"
	}
	return "unknown"
}

// A coder is an error that reports its own Code. Error types defined
// outside this package participate in the taxonomy by implementing it.
type coder interface {
	Code() Code
}

// CodeOf returns the code of the first error in err that reports one, or
// EvalError if none does. CodeOf(nil) is not meaningful.
func CodeOf(err error) Code {
	for _, e := range Errors(err) {
		if c, ok := e.(coder); ok {
			return c.Code()
		}
	}
	var c coder
	if As(err, &c) {
		return c.Code()
	}
	return EvalError
}

// WithCode returns an error equal to err that reports code c.
func WithCode(c Code, err Error) Error {
	return &codedError{c, err}
}

type codedError struct {
	code Code
	err  Error
}

func (e *codedError) Code() Code    { return e.code }
func (e *codedError) Unwrap() error { return e.err }

func (e *codedError) Error() string               { return e.err.Error() }
func (e *codedError) Position() token.Pos         { return e.err.Position() }
func (e *codedError) InputPositions() []token.Pos { return e.err.InputPositions() }
func (e *codedError) Path() []string              { return e.err.Path() }

func (e *codedError) Msg() (format string, args []interface{}) { return e.err.Msg() }

// IsIncomplete reports whether err contains an error indicating that the
// input ended before a syntactic construct was closed, so that an
// interactive caller should request more input rather than report failure.
func IsIncomplete(err error) bool {
	if err == nil {
		return false
	}
	for _, e := range Errors(err) {
		if c, ok := e.(coder); ok && c.Code() == IncompleteError {
			return true
		}
	}
	return false
}

// IsInternal reports whether err indicates a broken invariant in the
// implementation rather than a problem with user input.
func IsInternal(err error) bool {
	if err == nil {
		return false
	}
	for _, e := range Errors(err) {
		if c, ok := e.(coder); ok && c.Code() == InternalError {
			return true
		}
	}
	var c coder
	return As(err, &c) && c.Code() == InternalError
}

// Newf creates an Error with the associated position and message.
func Newf(p token.Pos, format string, args ...interface{}) Error {
	return &posError{
		pos:     p,
		Message: NewMessagef(format, args...),
	}
}

// Wrapf creates an Error with the associated position and message. The
// provided error is added for inspection with Unwrap.
func Wrapf(err error, p token.Pos, format string, args ...interface{}) Error {
	pErr := toErr(err)
	return &wrapped{
		main: &posError{
			pos:     p,
			Message: NewMessagef(format, args...),
		},
		wrap: pErr,
	}
}

// Promote converts a regular Go error to an Error if it isn't already one.
func Promote(err error, msg string) Error {
	switch x := err.(type) {
	case Error:
		return x
	default:
		return Wrapf(err, token.NoPos, "%s", msg)
	}
}

var _ Error = &posError{}

// In a list, an error is represented by a *posError. The position, if
// valid, points to the beginning of the offending token, and the error
// condition is described by the message.
type posError struct {
	pos token.Pos
	Message
}

func (e *posError) Path() []string              { return nil }
func (e *posError) InputPositions() []token.Pos { return nil }
func (e *posError) Position() token.Pos         { return e.pos }

type wrapped struct {
	main Error
	wrap Error
}

// Error implements the error interface.
func (e *wrapped) Error() string {
	switch msg := e.main.Error(); {
	case e.wrap == nil:
		return msg
	case msg == "":
		return e.wrap.Error()
	default:
		return fmt.Sprintf("%s: %s", msg, e.wrap)
	}
}

func (e *wrapped) Msg() (format string, args []interface{}) {
	return e.main.Msg()
}

func (e *wrapped) Path() []string {
	if p := Path(e.main); p != nil {
		return p
	}
	return Path(e.wrap)
}

func (e *wrapped) InputPositions() []token.Pos {
	return append(e.main.InputPositions(), e.wrap.InputPositions()...)
}

func (e *wrapped) Position() token.Pos {
	if p := e.main.Position(); p != token.NoPos {
		return p
	}
	if e.wrap != nil {
		return e.wrap.Position()
	}
	return token.NoPos
}

func (e *wrapped) Unwrap() error { return e.wrap }

func toErr(err error) Error {
	if e, ok := err.(Error); ok {
		return e
	}
	return &posError{Message: NewMessagef("%s", err.Error())}
}

// Path returns the path of an Error if err is of that type, or nil
// otherwise.
func Path(err error) []string {
	if e, ok := err.(Error); ok {
		return e.Path()
	}
	return nil
}

// Positions returns all positions reported by an error, sorted by
// position and deduplicated.
func Positions(err error) []token.Pos {
	e, ok := err.(Error)
	if !ok {
		return nil
	}

	a := make([]token.Pos, 0, 3)

	pos := e.Position()
	if pos.IsValid() {
		a = append(a, pos)
	}
	for _, p := range e.InputPositions() {
		if p.IsValid() && p != pos {
			a = append(a, p)
		}
	}
	slices.SortFunc(a, token.Pos.Compare)
	return slices.Compact(a)
}

// Append combines two errors, flattening lists as necessary.
func Append(a, b Error) Error {
	switch x := a.(type) {
	case nil:
		return b
	case list:
		return appendToList(x, b)
	}
	return appendToList(list{a}, b)
}

// Errors reports the individual errors associated with an error, which is
// the error itself if there is only one or, if the underlying type is
// list, its individual elements. If the given error is not an Error, it
// will be promoted to one.
func Errors(err error) []Error {
	if err == nil {
		return nil
	}
	var listErr list
	var errorErr Error
	switch {
	case As(err, &listErr):
		return listErr
	case As(err, &errorErr):
		return []Error{errorErr}
	default:
		return []Error{Promote(err, "")}
	}
}

func appendToList(a list, err Error) list {
	switch x := err.(type) {
	case nil:
		return a
	case list:
		if a == nil {
			return x
		}
		return append(a, x...)
	default:
		return append(a, err)
	}
}

// list is a list of Errors.
// The zero value for a list is an empty list ready to use.
type list []Error

// AddNewf adds an Error with given position and error message to a list.
func (p *list) AddNewf(pos token.Pos, msg string, args ...interface{}) {
	err := &posError{pos: pos, Message: NewMessagef(msg, args...)}
	*p = append(*p, err)
}

// Add adds an Error to a list.
func (p *list) Add(err Error) {
	*p = appendToList(*p, err)
}

// Reset resets a list to no errors.
func (p *list) Reset() { *p = (*p)[:0] }

func comparePos(a, b token.Pos) int {
	if c := cmp.Compare(a.Filename(), b.Filename()); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Line(), b.Line()); c != 0 {
		return c
	}
	return cmp.Compare(a.Column(), b.Column())
}

// lessOrMore reports whether a is probably a more relevant error than b.
func lessOrMore(a, b Error) int {
	if c := comparePos(a.Position(), b.Position()); c != 0 {
		return c
	}
	if c := slices.Compare(a.Path(), b.Path()); c != 0 {
		return c
	}
	return cmp.Compare(a.Error(), b.Error())
}

// Sanitize sorts multiple errors and removes duplicates on a best effort
// basis. If err represents a single or no error, it returns the error as
// is.
func Sanitize(err Error) Error {
	if l, ok := err.(list); ok && err != nil {
		a := l.sanitize()
		if len(a) == 1 {
			return a[0]
		}
		return a
	}
	return err
}

func (p list) sanitize() list {
	if p == nil {
		return p
	}
	a := slices.Clone(p)
	a.RemoveMultiples()
	return a
}

// Sort sorts a list. *posError entries are sorted by position, other
// errors are sorted by error message, and before any *posError entry.
func (p list) Sort() {
	slices.SortFunc(p, lessOrMore)
}

// RemoveMultiples sorts a list and removes all but the first error per
// line.
func (p *list) RemoveMultiples() {
	p.Sort()
	var last Error
	i := 0
	for _, e := range *p {
		if last == nil || !approximateEqual(last, e) {
			last = e
			(*p)[i] = e
			i++
		}
	}
	*p = (*p)[0:i]
}

func approximateEqual(a, b Error) bool {
	aPos := a.Position()
	bPos := b.Position()
	if aPos == token.NoPos || bPos == token.NoPos {
		return a.Error() == b.Error()
	}
	return aPos.Filename() == bPos.Filename() &&
		aPos.Line() == bPos.Line() &&
		aPos.Column() == bPos.Column() &&
		slices.Equal(a.Path(), b.Path())
}

// A list implements the error interface.
func (p list) Error() string {
	format, args := p.Msg()
	return fmt.Sprintf(format, args...)
}

// Msg reports the unformatted error message for the first error, if any.
func (p list) Msg() (format string, args []interface{}) {
	switch len(p) {
	case 0:
		return "no errors", nil
	case 1:
		return p[0].Msg()
	}
	return "%s (and %d more errors)", []interface{}{p[0], len(p) - 1}
}

// Position reports the primary position for the first error, if any.
func (p list) Position() token.Pos {
	if len(p) == 0 {
		return token.NoPos
	}
	return p[0].Position()
}

// InputPositions reports the input positions for the first error, if any.
func (p list) InputPositions() []token.Pos {
	if len(p) == 0 {
		return nil
	}
	return p[0].InputPositions()
}

// Path reports the path location of the first error, if any.
func (p list) Path() []string {
	if len(p) == 0 {
		return nil
	}
	return p[0].Path()
}

// Err returns an error equivalent to this error list. If the list is
// empty, Err returns nil.
func (p list) Err() error {
	if len(p) == 0 {
		return nil
	}
	return p
}

// A Config defines parameters for printing.
type Config struct {
	// Format formats the given string and arguments and writes it to w.
	// It is used for all printing.
	Format func(w io.Writer, format string, args ...interface{})

	// Cwd is the current working directory. Filename positions are taken
	// relative to this path.
	Cwd string

	// ToSlash sets whether to use Unix paths. Mostly used for testing.
	ToSlash bool
}

// Print is a utility function that prints a list of errors to w, one error
// per line, if the err parameter is a list. Otherwise it prints the err
// string.
func Print(w io.Writer, err error, cfg *Config) {
	if cfg == nil {
		cfg = &Config{}
	}
	for _, e := range Errors(Sanitize(toErr(err))) {
		printError(w, e, cfg)
	}
}

// Details is a convenience wrapper for Print to return the error text as a
// string.
func Details(err error, cfg *Config) string {
	w := &strings.Builder{}
	Print(w, err, cfg)
	return w.String()
}

// String generates a short message from a given Error.
func String(err Error) string {
	w := &strings.Builder{}
	writeErr(w, err)
	return w.String()
}

func writeErr(w io.Writer, err Error) {
	if path := strings.Join(err.Path(), "."); path != "" {
		_, _ = io.WriteString(w, path)
		_, _ = io.WriteString(w, ": ")
	}

	for {
		u := errors.Unwrap(err)

		printed := false
		msg, args := err.Msg()
		if msg != "" || u == nil { // print at least something
			fmt.Fprintf(w, msg, args...)
			printed = true
		}

		if u == nil {
			break
		}

		if printed {
			_, _ = io.WriteString(w, ": ")
		}
		e, ok := u.(Error)
		if !ok {
			fmt.Fprint(w, u)
			break
		}
		err = e
	}
}

func defaultFprintf(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, format, args...)
}

func printError(w io.Writer, err error, cfg *Config) {
	if err == nil {
		return
	}
	fprintf := cfg.Format
	if fprintf == nil {
		fprintf = defaultFprintf
	}

	positions := []string{}
	for _, p := range Positions(err) {
		pos := p.Position()
		s := pos.Filename
		if cfg.Cwd != "" {
			if p, err := filepath.Rel(cfg.Cwd, s); err == nil {
				s = p
				// Some IDEs (e.g. VS Code) only recognize a path if it
				// starts with a dot. This also helps to distinguish
				// between local files and builtin packages.
				if !strings.HasPrefix(s, ".") {
					s = "." + string(filepath.Separator) + s
				}
			}
		}
		if cfg.ToSlash {
			s = filepath.ToSlash(s)
		}
		if pos.IsValid() {
			if s != "" {
				s += ":"
			}
			s += fmt.Sprintf("%d:%d", pos.Line, pos.Column)
		}
		if s == "" {
			s = "-"
		}
		positions = append(positions, s)
	}

	if e, ok := err.(Error); ok {
		writeErr(w, e)
	} else {
		fprintf(w, "%v", err)
	}

	if len(positions) == 0 {
		fprintf(w, "\n")
		return
	}

	fprintf(w, ":\n")
	for _, pos := range positions {
		fprintf(w, "    %s\n", pos)
	}
}
