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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

type span struct {
	col, length int
}

func spans(occs []Occurrence) []span {
	out := make([]span, 0, len(occs))
	for _, o := range occs {
		out = append(out, span{o.Column, o.Length})
	}
	return out
}

func TestRule_ScanLine(t *testing.T) {
	tests := []struct {
		name          string
		spec          Spec
		replacement   *string
		line          string
		wantSpans     []span
		wantRewritten string
	}{
		{
			name:          "literal_with_replacement",
			spec:          Spec{Raw: "foobar"},
			replacement:   ptr("fooBAZ"),
			line:          "Here's one: foobar\n",
			wantSpans:     []span{{13, 6}},
			wantRewritten: "Here's one: fooBAZ\n",
		},
		{
			name:          "literal_no_match",
			spec:          Spec{Raw: "foobar"},
			replacement:   ptr("fooBAZ"),
			line:          "nothing here\n",
			wantSpans:     []span{},
			wantRewritten: "nothing here\n",
		},
		{
			name:          "regex_without_replacement",
			spec:          Spec{Raw: `/Bad\s*Regexp/`},
			line:          "a Bad  Regexp\n",
			wantSpans:     []span{{3, 11}},
			wantRewritten: "a Bad  Regexp\n",
		},
		{
			name:          "regex_metacharacters_in_plain_string",
			spec:          Spec{Raw: "a.c"},
			line:          "abc a.c",
			wantSpans:     []span{{5, 3}},
			wantRewritten: "abc a.c",
		},
		{
			name:          "cursor_advances_two_past_match_start",
			spec:          Spec{Raw: "aa"},
			line:          "aaaa",
			wantSpans:     []span{{1, 2}, {3, 2}},
			wantRewritten: "aaaa",
		},
		{
			name:          "overlap_inside_match_is_skipped",
			spec:          Spec{Raw: "aa"},
			line:          "aaa",
			wantSpans:     []span{{1, 2}},
			wantRewritten: "aaa",
		},
		{
			name:          "single_character_skips_adjacent",
			spec:          Spec{Raw: "a"},
			line:          "aaa",
			wantSpans:     []span{{1, 1}, {3, 1}},
			wantRewritten: "aaa",
		},
		{
			name:          "match_starting_two_after_previous",
			spec:          Spec{Raw: "foo"},
			line:          "foofoo",
			wantSpans:     []span{{1, 3}, {4, 3}},
			wantRewritten: "foofoo",
		},
		{
			name:          "regex_cursor_policy",
			spec:          Spec{Raw: "/a+/"},
			line:          "aaaa",
			wantSpans:     []span{{1, 4}, {3, 2}},
			wantRewritten: "aaaa",
		},
		{
			name:          "insensitive_literal",
			spec:          Spec{Raw: "There are SO many", Insensitive: true},
			line:          "There are so many things\n",
			wantSpans:     []span{{1, 17}},
			wantRewritten: "There are so many things\n",
		},
		{
			name:          "insensitive_literal_replacement",
			spec:          Spec{Raw: "FOO", Insensitive: true},
			replacement:   ptr("bar"),
			line:          "Foo and foo\n",
			wantSpans:     []span{{1, 3}, {9, 3}},
			wantRewritten: "bar and bar\n",
		},
		{
			name:          "sensitive_literal_ignores_case_variants",
			spec:          Spec{Raw: "FOO"},
			line:          "Foo and foo\n",
			wantSpans:     []span{},
			wantRewritten: "Foo and foo\n",
		},
		{
			name:          "insensitive_regex",
			spec:          Spec{Raw: "/InsensitiveREGEXP/", Insensitive: true},
			line:          "look: insensitiveregexp\n",
			wantSpans:     []span{{7, 17}},
			wantRewritten: "look: insensitiveregexp\n",
		},
		{
			name:          "regex_noop_replacement_suppressed",
			spec:          Spec{Raw: "/foo(bar)/"},
			replacement:   ptr(`foo\1`),
			line:          "Here's one: foobar\n",
			wantSpans:     []span{},
			wantRewritten: "Here's one: foobar\n",
		},
		{
			name:          "literal_identity_replacement_still_reported",
			spec:          Spec{Raw: "foobar"},
			replacement:   ptr("foobar"),
			line:          "foobar\n",
			wantSpans:     []span{{1, 6}},
			wantRewritten: "foobar\n",
		},
		{
			name:          "regex_replacement_with_groups",
			spec:          Spec{Raw: `/(\w+)@(\w+)/`},
			replacement:   ptr(`\2 at \1`),
			line:          "mail bob@example now\n",
			wantSpans:     []span{{6, 11}},
			wantRewritten: "mail example at bob now\n",
		},
		{
			name:          "regex_replacement_dollar_is_literal",
			spec:          Spec{Raw: "/price/"},
			replacement:   ptr("$5 off"),
			line:          "a price b\n",
			wantSpans:     []span{{3, 5}},
			wantRewritten: "a $5 off b\n",
		},
		{
			name:          "literal_replacement_whole_match_reference",
			spec:          Spec{Raw: "foo"},
			replacement:   ptr(`[\0]`),
			line:          "a foo b\n",
			wantSpans:     []span{{3, 3}},
			wantRewritten: "a [foo] b\n",
		},
		{
			name:          "regex_global_rewrite",
			spec:          Spec{Raw: "/o/"},
			replacement:   ptr("0"),
			line:          "foo boo\n",
			wantSpans:     []span{{2, 1}, {6, 1}},
			wantRewritten: "f00 b00\n",
		},
		{
			name:          "zero_length_regex_not_reported",
			spec:          Spec{Raw: "/x*/"},
			line:          "abc",
			wantSpans:     []span{},
			wantRewritten: "abc",
		},
		{
			name:          "crlf_preserved",
			spec:          Spec{Raw: "foo"},
			replacement:   ptr("bar"),
			line:          "foo\r\n",
			wantSpans:     []span{{1, 3}},
			wantRewritten: "bar\r\n",
		},
		{
			name:          "trailing_whitespace_regex_keeps_newline",
			spec:          Spec{Raw: `/\s+$/`},
			replacement:   ptr(""),
			line:          "code   \n",
			wantSpans:     []span{{5, 3}},
			wantRewritten: "code\n",
		},
		{
			name:          "columns_count_characters",
			spec:          Spec{Raw: "bar"},
			line:          "héllo bar",
			wantSpans:     []span{{7, 3}},
			wantRewritten: "héllo bar",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, err := NewRule(tt.spec, tt.replacement, "")
			require.NoError(t, err)

			occs, rewritten, err := rule.ScanLine("file.txt", 7, tt.line)
			require.NoError(t, err)

			assert.Equal(t, tt.wantSpans, spans(occs), "occurrence spans should match")
			assert.Equal(t, tt.wantRewritten, rewritten, "rewritten line should match")
			for _, o := range occs {
				assert.Equal(t, "file.txt", o.File)
				assert.Equal(t, 7, o.Line)
				assert.Equal(t, tt.line, o.Context, "context is always the original line")
				assert.Equal(t, tt.replacement != nil, o.Replacement != nil)
			}
		})
	}
}

func TestRule_ScanLine_IgnoreMarkers(t *testing.T) {
	lines := []string{
		"# no-search-replace foobar\n",
		"x = foobar #no-search-replace\n",
		"// no-search-replace foobar\n",
		"foobar /*   no-search-replace */\n",
		"<!-- no-search-replace --> foobar\n",
		"foobar\t//\tno-search-replace\n",
	}

	rule, err := NewRule(Spec{Raw: "foobar"}, ptr("changed"), "")
	require.NoError(t, err)

	for _, line := range lines {
		t.Run(strings.TrimSpace(line), func(t *testing.T) {
			occs, rewritten, err := rule.ScanLine("ignore.txt", 1, line)
			require.NoError(t, err)
			assert.Empty(t, occs)
			assert.Equal(t, line, rewritten)
		})
	}

	t.Run("marker_needs_comment_introducer", func(t *testing.T) {
		occs, rewritten, err := rule.ScanLine("ignore.txt", 1, "foobar no-search-replace\n")
		require.NoError(t, err)
		assert.Len(t, occs, 1)
		assert.Equal(t, "changed no-search-replace\n", rewritten)
	})
}

func TestRule_ScanLine_LiteralCountProperty(t *testing.T) {
	// occurrences equal repeated forward searches advancing the cursor by two
	lines := []string{"", "ab", "abababab", "aaaaaaa", "xabxxabxab", "ba ab ba ab"}
	rule, err := NewRule(Spec{Raw: "ab"}, nil, "")
	require.NoError(t, err)

	for _, line := range lines {
		want := 0
		for cursor := 0; cursor <= len(line); {
			idx := strings.Index(line[cursor:], "ab")
			if idx < 0 {
				break
			}
			want++
			cursor += idx + 2
		}

		occs, _, err := rule.ScanLine("f", 1, line)
		require.NoError(t, err)
		assert.Len(t, occs, want, "line %q", line)
	}
}

func TestRule_ScanLine_LiteralIdempotent(t *testing.T) {
	rule, err := NewRule(Spec{Raw: "foobar"}, ptr("fooBAZ"), "")
	require.NoError(t, err)

	line := "foobar and foobar again, foobarfoobar\n"
	occs, rewritten, err := rule.ScanLine("f", 1, line)
	require.NoError(t, err)
	require.Len(t, occs, 4)

	occs, again, err := rule.ScanLine("f", 1, rewritten)
	require.NoError(t, err)
	assert.Empty(t, occs)
	assert.Equal(t, rewritten, again)
}

func TestOccurrence_Replaced(t *testing.T) {
	rule, err := NewRule(Spec{Raw: `/(\d+)px/`}, ptr(`\1rem`), "")
	require.NoError(t, err)

	occs, _, err := rule.ScanLine("f.css", 3, "a: 10px; b: 20px;\n")
	require.NoError(t, err)
	require.Len(t, occs, 2)

	_, matched, _ := occs[0].Split()
	assert.Equal(t, "10px", matched)
	assert.Equal(t, "10rem", *occs[0].Replacement)
	assert.Equal(t, "a: 10rem; b: 20px;", occs[0].Replaced())
	assert.Equal(t, "a: 10px; b: 20rem;", occs[1].Replaced())
	assert.Equal(t, "f.css:3:13", occs[1].String())
}

func TestRule_Label(t *testing.T) {
	rule, err := NewRule(Spec{Raw: "foo"}, nil, "")
	require.NoError(t, err)
	assert.Equal(t, "foo", rule.Label())
	assert.False(t, rule.HasReplacement())

	rule.Description = "no foo allowed"
	assert.Equal(t, "no foo allowed", rule.Label())
}

func TestOccurrence_ReplacementReferences(t *testing.T) {
	literal, err := NewRule(Spec{Raw: "foo", Insensitive: true}, ptr(`<\0>`), "")
	require.NoError(t, err)

	occs, rewritten, err := literal.ScanLine("f", 1, "Foo and FOO\n")
	require.NoError(t, err)
	require.Len(t, occs, 2)
	assert.Equal(t, "<Foo>", *occs[0].Replacement)
	assert.Equal(t, "<FOO>", *occs[1].Replacement)
	assert.Equal(t, "<Foo> and <FOO>\n", rewritten)

	regex, err := NewRule(Spec{Raw: "/price/"}, ptr("$5 off"), "")
	require.NoError(t, err)

	occs, _, err = regex.ScanLine("f", 1, "a price b\n")
	require.NoError(t, err)
	require.Len(t, occs, 1)
	assert.Equal(t, "$5 off", *occs[0].Replacement)
	assert.Equal(t, "a $5 off b", occs[0].Replaced())
}
