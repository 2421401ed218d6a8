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
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"
)

// expand renders a replacement template against one match. group returns
// the text of a group addressed by number or name.
//
// Supported references:
//
//	\0 \&         whole match
//	\1..\9        numbered groups
//	\k<name>      named groups
//	\\            literal backslash
//
// Anything else, "$" included, is copied through untouched.
func expand(tmpl string, group func(ref string) string) string {
	if !strings.Contains(tmpl, `\`) {
		return tmpl
	}

	var b strings.Builder
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		if c != '\\' || i+1 == len(tmpl) {
			b.WriteByte(c)
			continue
		}

		next := tmpl[i+1]
		switch {
		case next == '\\':
			b.WriteByte(c)
			i++
		case next == '&':
			b.WriteString(group("0"))
			i++
		case isDigit(next):
			b.WriteString(group(tmpl[i+1 : i+2]))
			i++
		case next == 'k' && i+2 < len(tmpl) && tmpl[i+2] == '<':
			end := strings.IndexByte(tmpl[i+3:], '>')
			if end < 0 {
				b.WriteByte(c)
				continue
			}
			b.WriteString(group(tmpl[i+3 : i+3+end]))
			i += 3 + end
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// regexGroups resolves references against a regex match. Missing or
// non-participating groups render as "".
func regexGroups(m *regexp2.Match) func(string) string {
	return func(ref string) string {
		var g *regexp2.Group
		if n, err := strconv.Atoi(ref); err == nil {
			g = m.GroupByNumber(n)
		} else {
			g = m.GroupByName(ref)
		}
		if g == nil || len(g.Captures) == 0 {
			return ""
		}
		return g.String()
	}
}

// literalGroups resolves references for a literal match: only the whole
// match exists.
func literalGroups(matched string) func(string) string {
	return func(ref string) string {
		if ref == "0" {
			return matched
		}
		return ""
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
