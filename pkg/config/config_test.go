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

package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func strPtr(s string) *string { return &s }

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    []Rule
		wantErr error
	}{
		{
			name: "yaml_rules_in_order",
			file: ".pre-commit-search-and-replace.yaml",
			content: `
- search: typo
  replacement: fixed
- search: /\s+$/
  replacement: ""
  description: trailing whitespace
  files: ["**/*.go"]
- search: /FOO/
  insensitive: true
  extended: true
`,
			want: []Rule{
				{Search: "typo", Replacement: strPtr("fixed")},
				{Search: `/\s+$/`, Replacement: strPtr(""), Description: "trailing whitespace", Files: []string{"**/*.go"}},
				{Search: "/FOO/", Insensitive: true, Extended: true},
			},
		},
		{
			name:    "json_rules",
			file:    "rules.json",
			content: `[{"search": "foo", "replacement": "bar", "exclude": ["vendor/**"]}]`,
			want: []Rule{
				{Search: "foo", Replacement: strPtr("bar"), Exclude: []string{"vendor/**"}},
			},
		},
		{
			name: "hcl_rules",
			file: "rules.hcl",
			content: `
rule {
  search      = "foo"
  replacement = "bar"
  description = "foo to bar"
}

rule {
  search      = "/baz/"
  insensitive = true
}
`,
			want: []Rule{
				{Search: "foo", Replacement: strPtr("bar"), Description: "foo to bar"},
				{Search: "/baz/", Insensitive: true},
			},
		},
		{
			name:    "unknown_extension_reads_yaml",
			file:    "rules.conf",
			content: "- search: abc\n",
			want:    []Rule{{Search: "abc"}},
		},
		{
			name:    "missing_search",
			file:    "rules.yaml",
			content: "- search: ok\n- description: no search here\n",
			wantErr: ErrConfig,
		},
		{
			name:    "empty_document",
			file:    "rules.yaml",
			content: "",
			wantErr: ErrConfig,
		},
		{
			name:    "unknown_field_ignored",
			file:    "rules.yaml",
			content: "- search: ok\n  replace: typo\n",
			want:    []Rule{{Search: "ok"}},
		},
		{
			name:    "json_unknown_field_ignored",
			file:    "rules.json",
			content: `[{"search": "ok", "name": "note"}]`,
			want:    []Rule{{Search: "ok"}},
		},
		{
			name:    "not_a_sequence",
			file:    "rules.yaml",
			content: "search: ok\n",
			wantErr: ErrConfig,
		},
		{
			name:    "invalid_glob",
			file:    "rules.yaml",
			content: "- search: ok\n  files: [\"[\"]\n",
			wantErr: ErrConfig,
		},
		{
			name:    "invalid_json",
			file:    "rules.json",
			content: `{"search": "foo"`,
			wantErr: ErrConfig,
		},
		{
			name:    "invalid_hcl",
			file:    "rules.hcl",
			content: `rule {`,
			wantErr: ErrConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := zerolog.New(os.Stderr).WithContext(context.Background())
			path := writeConfig(t, tt.file, tt.content)

			cfg, err := Load(ctx, path)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "expected %v, got %v", tt.wantErr, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Rules)
			assert.Equal(t, path, cfg.Location())
		})
	}
}

func TestLoad_MissingSearchMessage(t *testing.T) {
	ctx := context.Background()
	path := writeConfig(t, "rules.yaml", "- search: a\n- search: b\n- replacement: c\n")

	_, err := Load(ctx, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config entry 3 is missing required search string")
}

func TestLoad_UnknownKeysWarn(t *testing.T) {
	var buf bytes.Buffer
	ctx := zerolog.New(&buf).WithContext(context.Background())
	path := writeConfig(t, "rules.yaml", "- search: a\n  name: first\n- search: b\n  replace: typo\n  files: [\"*.go\"]\n")

	cfg, err := Load(ctx, path)
	require.NoError(t, err)
	require.Len(t, cfg.Rules, 2)

	out := buf.String()
	assert.Contains(t, out, `"entry":1,"key":"name"`)
	assert.Contains(t, out, `"entry":2,"key":"replace"`)
	assert.Contains(t, out, "ignoring unknown rule key")
	assert.NotContains(t, out, `"key":"files"`)
}

func TestLoad_NotFound(t *testing.T) {
	ctx := context.Background()

	_, err := Load(ctx, filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConfig))
}

func TestHCLParser_Env(t *testing.T) {
	t.Setenv("SEARCHREPLACE_TEST_YEAR", "2031")
	ctx := context.Background()
	path := writeConfig(t, "rules.hcl", `
rule {
  search      = "Copyright 2024"
  replacement = "Copyright ${env.SEARCHREPLACE_TEST_YEAR}"
}
`)

	cfg, err := Load(ctx, path)
	require.NoError(t, err)
	require.Len(t, cfg.Rules, 1)
	require.NotNil(t, cfg.Rules[0].Replacement)
	assert.Equal(t, "Copyright 2031", *cfg.Rules[0].Replacement)
}

func TestGetParser(t *testing.T) {
	tests := []struct {
		file string
		want Parser
	}{
		{"a.yaml", &YAMLParser{}},
		{"a.yml", &YAMLParser{}},
		{"a.json", &JSONParser{}},
		{"A.JSON", &JSONParser{}},
		{"a.hcl", &HCLParser{}},
		{"a", &YAMLParser{}},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			assert.IsType(t, tt.want, GetParser(tt.file))
		})
	}
}

func TestFromRule(t *testing.T) {
	cfg, err := FromRule(Rule{Search: "x"})
	require.NoError(t, err)
	assert.Len(t, cfg.Rules, 1)
	assert.Empty(t, cfg.Location())

	_, err = FromRule(Rule{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfig))
}

func TestRule_Compile(t *testing.T) {
	rule := Rule{Search: "/(a+)/", Replacement: strPtr(`<\1>`), Description: "as", Insensitive: true}

	compiled, err := rule.Compile(time.Second)
	require.NoError(t, err)
	assert.True(t, compiled.Pattern.IsRegex())
	assert.Equal(t, "as", compiled.Label())

	occs, rewritten, err := compiled.ScanLine("f", 1, "bAAb\n")
	require.NoError(t, err)
	require.Len(t, occs, 1)
	assert.Equal(t, "b<AA>b\n", rewritten)

	_, err = Rule{Search: "/(/"}.Compile(0)
	require.Error(t, err)
}

func TestRule_String(t *testing.T) {
	assert.Equal(t, `search "a"`, Rule{Search: "a"}.String())
	assert.Equal(t, `search "a" -> "b"`, Rule{Search: "a", Replacement: strPtr("b")}.String())
}
