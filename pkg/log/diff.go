// Copyright 2025 walteh LLC
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

package log

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// 🔍 FormatDiff renders a line diff between the original and rewritten
// contents of file. Unchanged lines are omitted.
func FormatDiff(file, original, rewritten string) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(original, rewritten)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out strings.Builder
	fmt.Fprintf(&out, "%s\n%s\n", color.RedString("--- %s", file), color.GreenString("+++ %s", file))
	for _, d := range diffs {
		var prefix string
		var paint func(string, ...interface{}) string
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix, paint = "-", color.RedString
		case diffmatchpatch.DiffInsert:
			prefix, paint = "+", color.GreenString
		default:
			continue
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out.WriteString(paint("%s", prefix+strings.TrimRight(line, "\r\n")))
			out.WriteString("\n")
		}
	}
	return out.String()
}

// 📝 Diff prints the diff of a file that is about to be rewritten
func (l *Logger) Diff(file, original, rewritten string) {
	if original == rewritten {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprint(l.console, FormatDiff(file, original, rewritten))
}
