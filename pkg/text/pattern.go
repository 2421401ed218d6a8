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
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/dlclark/regexp2"
	"gitlab.com/tozd/go/errors"
)

// ErrInvalidPattern is returned when a search string cannot be compiled.
var ErrInvalidPattern = errors.Base("invalid pattern")

// wholeGroup names the group wrapping the entire user expression, so the
// matched span can be recovered no matter what else the expression captures.
const wholeGroup = "sr_match"

// 🔍 Spec is a raw search specification as it appears on the command line or
// in a config entry.
type Spec struct {
	Raw         string        // search string, regex when wrapped in slashes
	Insensitive bool          // case-insensitive matching
	Extended    bool          // whitespace-insensitive regex with # comments
	Timeout     time.Duration // per-match regex timeout, zero for none
}

// IsRegex reports whether Raw uses the /.../ delimiter form.
func (s Spec) IsRegex() bool {
	return len(s.Raw) >= 2 && strings.HasPrefix(s.Raw, "/") && strings.HasSuffix(s.Raw, "/")
}

// 🎯 Pattern is a compiled Spec: either a literal string or a regular
// expression. It is never mutated after Compile and may be shared freely.
type Pattern struct {
	spec    Spec
	literal []rune
	lowered []rune
	re      *regexp2.Regexp
}

// 🏭 Compile turns a Spec into a Pattern.
func Compile(spec Spec) (*Pattern, error) {
	if spec.Raw == "" {
		return nil, errors.Errorf("%w: empty search string", ErrInvalidPattern)
	}

	p := &Pattern{spec: spec}

	if !spec.IsRegex() {
		p.literal = []rune(spec.Raw)
		p.lowered = lowerRunes(p.literal)
		return p, nil
	}

	inner := spec.Raw[1 : len(spec.Raw)-1]
	opts := regexp2.None
	if spec.Insensitive {
		opts |= regexp2.IgnoreCase
	}
	expr := "(?<" + wholeGroup + ">" + inner + ")"
	if spec.Extended {
		opts |= regexp2.IgnorePatternWhitespace
		// a trailing "# comment" in the inner text would otherwise eat the ")"
		expr = "(?<" + wholeGroup + ">" + inner + "\n)"
	}

	re, err := regexp2.Compile(expr, opts)
	if err != nil {
		return nil, errors.Errorf("%w: %s: %s", ErrInvalidPattern, spec.Raw, err.Error())
	}
	if spec.Timeout > 0 {
		re.MatchTimeout = spec.Timeout
	}
	p.re = re

	return p, nil
}

// IsRegex reports whether the pattern is a regular expression.
func (p *Pattern) IsRegex() bool {
	return p.re != nil
}

// String returns the raw search string.
func (p *Pattern) String() string {
	return p.spec.Raw
}

// Expr returns the compiled expression source for regex patterns and the
// literal text otherwise.
func (p *Pattern) Expr() string {
	if p.re != nil {
		return p.re.String()
	}
	return string(p.literal)
}

// match is one located span, in runes.
type match struct {
	start  int
	length int
	m      *regexp2.Match
}

// find locates the next match at or after from. lowered must be the
// lower-cased line when the pattern is a case-insensitive literal.
func (p *Pattern) find(line, lowered []rune, from int) (match, bool, error) {
	if from > len(line) {
		return match{}, false, nil
	}

	if p.re == nil {
		var idx int
		if p.spec.Insensitive {
			idx = indexRunes(lowered, p.lowered, from)
		} else {
			idx = indexRunes(line, p.literal, from)
		}
		if idx < 0 {
			return match{}, false, nil
		}
		return match{start: idx, length: len(p.literal)}, true, nil
	}

	m, err := p.re.FindRunesMatchStartingAt(line, from)
	if err != nil {
		return match{}, false, errors.Errorf("matching %s: %w", p.spec.Raw, err)
	}
	if m == nil {
		return match{}, false, nil
	}
	g := m.GroupByName(wholeGroup)
	if g == nil {
		return match{start: m.Index, length: m.Length, m: m}, true, nil
	}
	return match{start: g.Index, length: g.Length, m: m}, true, nil
}

// replaceAll substitutes every match in line with repl.
func (p *Pattern) replaceAll(line, lowered []rune, repl string) (string, error) {
	var b strings.Builder
	last := 0

	if p.re == nil {
		haystack, needle := line, p.literal
		if p.spec.Insensitive {
			haystack, needle = lowered, p.lowered
		}
		for i := indexRunes(haystack, needle, 0); i >= 0; i = indexRunes(haystack, needle, last) {
			b.WriteString(string(line[last:i]))
			b.WriteString(expand(repl, literalGroups(string(line[i:i+len(needle)]))))
			last = i + len(needle)
		}
		b.WriteString(string(line[last:]))
		return b.String(), nil
	}

	m, err := p.re.FindRunesMatch(line)
	for ; m != nil && err == nil; m, err = p.re.FindNextMatch(m) {
		b.WriteString(string(line[last:m.Index]))
		b.WriteString(expand(repl, regexGroups(m)))
		last = m.Index + m.Length
	}
	if err != nil {
		return "", errors.Errorf("replacing %s: %w", p.spec.Raw, err)
	}
	b.WriteString(string(line[last:]))
	return b.String(), nil
}

// replacementFor returns the text that replaces a single match in line.
func (p *Pattern) replacementFor(line []rune, mt match, repl string) string {
	if mt.m == nil {
		return expand(repl, literalGroups(string(line[mt.start:mt.start+mt.length])))
	}
	return expand(repl, regexGroups(mt.m))
}

func indexRunes(s, sub []rune, from int) int {
	for i := from; i+len(sub) <= len(s); i++ {
		if slices.Equal(s[i:i+len(sub)], sub) {
			return i
		}
	}
	return -1
}

// lowerRunes lower-cases rune by rune so offsets line up with the input.
func lowerRunes(in []rune) []rune {
	out := make([]rune, len(in))
	for i, r := range in {
		out[i] = unicode.ToLower(r)
	}
	return out
}
