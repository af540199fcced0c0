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

package literal

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ErrSyntax is returned by Unquote for strings with invalid syntax.
var ErrSyntax = errors.New("invalid syntax")

// Unquote interprets s as a double-quoted Lode string literal, returning
// the string value that s represents.
func Unquote(s string) (string, error) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", ErrSyntax
	}
	s = s[1 : len(s)-1]

	if !strings.ContainsAny(s, `\"`+"\n") {
		if utf8.ValidString(s) {
			return s, nil
		}
	}

	var b strings.Builder
	b.Grow(len(s))
	for len(s) > 0 {
		c, multibyte, rest, err := strconv.UnquoteChar(s, '"')
		if err != nil {
			return "", ErrSyntax
		}
		s = rest
		if c < utf8.RuneSelf || !multibyte {
			b.WriteByte(byte(c))
		} else {
			b.WriteRune(c)
		}
	}
	return b.String(), nil
}

// Quote returns a double-quoted Lode string literal representing s.
func Quote(s string) string {
	return strconv.Quote(s)
}
