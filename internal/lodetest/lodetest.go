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

// Package lodetest holds shared switches for test packages in the Lode
// project. As such it should only be imported in _test.go files.
package lodetest

import (
	"fmt"
	"os"
)

// UpdateGoldenFiles determines whether golden-file tests rewrite their
// expected output instead of failing on a mismatch. It is set by the
// LODE_UPDATE environment variable and corresponds to
// testscript.Params.UpdateScripts for script-based tests.
var UpdateGoldenFiles = os.Getenv("LODE_UPDATE") != ""

// Long determines whether long-running tests are enabled, set by the
// LODE_LONG environment variable.
var Long = os.Getenv("LODE_LONG") != ""

// Condition adds support for Lode-specific testscript conditions. The
// canonical case is [long], which is true when LODE_LONG is set.
func Condition(cond string) (bool, error) {
	switch cond {
	case "long":
		return Long, nil
	}
	return false, fmt.Errorf("unknown condition %v", cond)
}
