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

package text

import "fmt"

// 📌 Occurrence records where a match was found.
type Occurrence struct {
	File        string  // file the line came from
	Line        int     // 1-based line number
	Column      int     // 1-based column of the first matched character
	Length      int     // matched characters
	Context     string  // original line, terminator included
	Replacement *string // text substituted for this match, nil when not replacing
}

// Split returns the line body around the match: the text before it, the
// matched text and the text after it.
func (o Occurrence) Split() (string, string, string) {
	body, _ := splitEOL(o.Context)
	runes := []rune(body)
	start := min(max(o.Column-1, 0), len(runes))
	end := min(start+o.Length, len(runes))
	return string(runes[:start]), string(runes[start:end]), string(runes[end:])
}

// Replaced returns the line body with only this match substituted. It returns
// the unchanged body when the occurrence carries no replacement.
func (o Occurrence) Replaced() string {
	before, m, after := o.Split()
	if o.Replacement == nil {
		return before + m + after
	}
	return before + *o.Replacement + after
}

func (o Occurrence) String() string {
	return fmt.Sprintf("%s:%d:%d", o.File, o.Line, o.Column)
}
