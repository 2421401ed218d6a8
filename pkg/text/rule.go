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

import (
	"strings"

	"github.com/dlclark/regexp2"
	"gitlab.com/tozd/go/errors"
)

// ignoreMarker matches a comment that opts a line out of scanning.
var ignoreMarker = regexp2.MustCompile(`(?:#|//|/\*|<!--)\s*no-search-replace`, regexp2.None)

// cursorStep is how far the search cursor moves past the start of a match.
// Matches starting inside a previous match are still found when they begin at
// least two characters after it.
const cursorStep = 2

// 🔄 Rule is one search, with an optional replacement, applied to every line
// of every file in a run.
type Rule struct {
	Pattern     *Pattern
	Replacement *string
	Description string
}

// 🏭 NewRule compiles spec and builds a Rule from it.
func NewRule(spec Spec, replacement *string, description string) (*Rule, error) {
	p, err := Compile(spec)
	if err != nil {
		return nil, err
	}
	return &Rule{Pattern: p, Replacement: replacement, Description: description}, nil
}

// Label is the text used to name the rule in reports.
func (r *Rule) Label() string {
	if r.Description != "" {
		return r.Description
	}
	return r.Pattern.String()
}

// HasReplacement reports whether the rule rewrites files.
func (r *Rule) HasReplacement() bool {
	return r.Replacement != nil
}

// 📍 ScanLine finds every occurrence of the rule's pattern in line and returns
// them together with the line as it should be written back. line may carry its
// terminator; it is preserved in the rewritten result.
func (r *Rule) ScanLine(file string, lineno int, line string) ([]Occurrence, string, error) {
	ignored, err := ignoreMarker.MatchString(line)
	if err != nil {
		return nil, line, errors.Errorf("checking ignore marker: %w", err)
	}
	if ignored {
		return nil, line, nil
	}

	body, eol := splitEOL(line)
	runes := []rune(body)
	var lowered []rune
	if !r.Pattern.IsRegex() && r.Pattern.spec.Insensitive {
		lowered = lowerRunes(runes)
	}

	rewritten := body
	if r.Replacement != nil {
		rewritten, err = r.Pattern.replaceAll(runes, lowered, *r.Replacement)
		if err != nil {
			return nil, line, err
		}
	}
	// a regex that matches but rewrites to the same text is not worth reporting
	noop := r.Replacement != nil && r.Pattern.IsRegex() && rewritten == body

	var occurrences []Occurrence
	for cursor := 0; ; {
		mt, ok, err := r.Pattern.find(runes, lowered, cursor)
		if err != nil {
			return nil, line, err
		}
		if !ok {
			break
		}
		cursor = mt.start + cursorStep

		if noop || mt.length == 0 {
			continue
		}

		occ := Occurrence{
			File:    file,
			Line:    lineno,
			Column:  mt.start + 1,
			Length:  mt.length,
			Context: line,
		}
		if r.Replacement != nil {
			repl := r.Pattern.replacementFor(runes, mt, *r.Replacement)
			occ.Replacement = &repl
		}
		occurrences = append(occurrences, occ)
	}

	if len(occurrences) == 0 || r.Replacement == nil {
		return occurrences, line, nil
	}
	return occurrences, rewritten + eol, nil
}

// splitEOL separates a trailing "\n" or "\r\n" from line.
func splitEOL(line string) (string, string) {
	if strings.HasSuffix(line, "\r\n") {
		return line[:len(line)-2], "\r\n"
	}
	if strings.HasSuffix(line, "\n") {
		return line[:len(line)-1], "\n"
	}
	return line, ""
}
