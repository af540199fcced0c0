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
	"fmt"
	"testing"

	"github.com/cockroachdb/apd/v3"
)

func TestParseNum(t *testing.T) {
	testCases := []struct {
		lit  string
		norm string // apd string form; "" means an error is expected
	}{
		{"0", "0"},
		{"1", "1"},
		{"123456789012345678890", "123456789012345678890"},
		{"12.34", "12.34"},
		{"1.5e3", "1.5E+3"},
		{"1.3e+20", "1.3E+20"},
		{"1.3e-5", "0.000013"},
		{"2.71828e-1000", "2.71828E-1000"},
		{"0.5", "0.5"},

		{"", ""},
		{"-1", ""}, // negation is an operator, not part of the literal
		{"1.2.3", ""},
		{"0x10", ""},
		{"inf", ""},
		{"NaN", ""},
		{"1e", ""},
	}
	for i, tc := range testCases {
		t.Run(fmt.Sprintf("%d/%+q", i, tc.lit), func(t *testing.T) {
			var d apd.Decimal
			err := ParseNum(tc.lit, &d)
			if tc.norm == "" {
				if err == nil {
					t.Fatalf("ParseNum(%q) = %s; want error", tc.lit, d.String())
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got := d.String(); got != tc.norm {
				t.Errorf("ParseNum(%q) = %s; want %s", tc.lit, got, tc.norm)
			}
		})
	}
}

func TestUnquote(t *testing.T) {
	testCases := []struct {
		in  string
		out string
		err error
	}{
		{`"Hello, World!"`, "Hello, World!", nil},
		{`""`, "", nil},
		{`"a\nb"`, "a\nb", nil},
		{`"a\tb"`, "a\tb", nil},
		{`"\""`, `"`, nil},
		{`"\\"`, `\`, nil},
		{`"日本\U00008a9e"`, "日本語", nil},
		{`"no quotes`, "", ErrSyntax},
		{`'single'`, "", ErrSyntax},
		{`"`, "", ErrSyntax},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Unquote(tc.in)
			if err != tc.err {
				t.Fatalf("Unquote(%s): err = %v; want %v", tc.in, err, tc.err)
			}
			if got != tc.out {
				t.Errorf("Unquote(%s) = %q; want %q", tc.in, got, tc.out)
			}
		})
	}
}

func TestQuoteRoundTrip(t *testing.T) {
	for _, s := range []string{"", "plain", "with \"quotes\"", "new\nline", "日本語"} {
		got, err := Unquote(Quote(s))
		if err != nil {
			t.Fatalf("Unquote(Quote(%q)): %v", s, err)
		}
		if got != s {
			t.Errorf("round trip %q = %q", s, got)
		}
	}
}
