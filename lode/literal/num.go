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

// Package literal implements conversions of Lode literal strings to and
// from their value representations.
package literal // import "lodelang.org/go/lode/literal"

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

// ParseNum parses a Lode number literal into d. Numbers are arbitrary
// precision decimals: an integer part, an optional fraction, and an
// optional exponent.
func ParseNum(s string, d *apd.Decimal) error {
	if err := checkNumSyntax(s); err != nil {
		return err
	}
	if _, _, err := d.SetString(s); err != nil {
		return fmt.Errorf("invalid number %q", s)
	}
	return nil
}

// checkNumSyntax rejects the extensions apd accepts beyond the Lode
// grammar: infinities, NaN, signs, and hexadecimal exponents.
func checkNumSyntax(s string) error {
	if s == "" {
		return fmt.Errorf("invalid number %q", s)
	}
	sawDigit := false
	sawDot := false
	sawExp := false
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case '0' <= c && c <= '9':
			sawDigit = true
		case c == '.' && !sawDot && !sawExp:
			sawDot = true
		case (c == 'e' || c == 'E') && sawDigit && !sawExp:
			sawExp = true
			if i+1 < len(s) && (s[i+1] == '+' || s[i+1] == '-') {
				i++
			}
			if i+1 >= len(s) {
				return fmt.Errorf("invalid number %q: exponent has no digits", s)
			}
		default:
			return fmt.Errorf("invalid number %q", s)
		}
	}
	if !sawDigit {
		return fmt.Errorf("invalid number %q", s)
	}
	return nil
}
