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

// lode is a command-line tool for working with Lode configuration
// files: evaluating and exporting them, checking them for type and
// contract errors, inspecting field metadata, and running an
// interactive session. Run 'lode help' for an overview.
package main

import (
	"os"

	"lodelang.org/go/cmd/lode/cmd"
)

func main() {
	os.Exit(cmd.Main())
}
