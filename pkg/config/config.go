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
	"context"
	"fmt"
	"maps"
	"os"
	"slices"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/searchreplace/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// DefaultPath is where the rule document is looked up when no search is
// given on the command line.
const DefaultPath = ".pre-commit-search-and-replace.yaml"

var (
	// ErrConfig marks a malformed rule document or rule.
	ErrConfig = errors.Base("invalid configuration")

	// ErrNotFound is returned when the rule document does not exist.
	ErrNotFound = errors.Base("configuration not found")
)

// 🔌 Parser is the interface for rule document parsers
type Parser interface {
	// 📝 Parse parses the rules from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file. Files with
// an unknown extension are read as YAML.
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return &YAMLParser{}
}

// 🔄 Rule is one entry of a rule document
type Rule struct {
	Search      string   `json:"search" yaml:"search" hcl:"search,optional"`
	Replacement *string  `json:"replacement,omitempty" yaml:"replacement,omitempty" hcl:"replacement,optional"`
	Insensitive bool     `json:"insensitive,omitempty" yaml:"insensitive,omitempty" hcl:"insensitive,optional"`
	Extended    bool     `json:"extended,omitempty" yaml:"extended,omitempty" hcl:"extended,optional"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty" hcl:"description,optional"`
	Files       []string `json:"files,omitempty" yaml:"files,omitempty" hcl:"files,optional"`     // only files matching one of these globs
	Exclude     []string `json:"exclude,omitempty" yaml:"exclude,omitempty" hcl:"exclude,optional"` // skip files matching any of these globs
}

// ruleKeys are the keys a rule entry understands.
var ruleKeys = []string{"search", "replacement", "insensitive", "extended", "description", "files", "exclude"}

// warnUnknownKeys logs every key of a decoded rule entry that Rule does not
// read. Such keys are ignored, so notes like `name:` stay harmless.
func warnUnknownKeys(ctx context.Context, entries []map[string]any) {
	logger := zerolog.Ctx(ctx)
	for i, entry := range entries {
		for _, key := range slices.Sorted(maps.Keys(entry)) {
			if !slices.Contains(ruleKeys, key) {
				logger.Warn().Int("entry", i+1).Str("key", key).Msg("ignoring unknown rule key")
			}
		}
	}
}

// 📚 Config is an ordered list of rules
type Config struct {
	Rules []Rule

	location string
}

// Location returns the file the config was loaded from, empty when it was
// built from flags.
func (cfg *Config) Location() string {
	return cfg.location
}

// 🎯 Load loads rules from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, errors.Errorf("%w: reading %s: %s", ErrConfig, path, err.Error())
	}

	cfg, err := GetParser(path).Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing %s: %w", path, err)
	}
	cfg.location = path

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating %s: %w", path, err)
	}

	logger.Debug().Int("rules", len(cfg.Rules)).Msg("loaded configuration")
	return cfg, nil
}

// 🏭 FromRule builds a single-rule config, as used for command line searches
func FromRule(rule Rule) (*Config, error) {
	cfg := &Config{Rules: []Rule{rule}}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// 🔍 Validate checks if the configuration is valid
func (cfg *Config) Validate() error {
	if len(cfg.Rules) == 0 {
		return errors.Errorf("%w: no rules defined", ErrConfig)
	}

	for i, rule := range cfg.Rules {
		if rule.Search == "" {
			return errors.Errorf("%w: config entry %d is missing required search string", ErrConfig, i+1)
		}
		for _, pattern := range append(append([]string{}, rule.Files...), rule.Exclude...) {
			if !doublestar.ValidatePattern(pattern) {
				return errors.Errorf("%w: config entry %d has invalid glob %q", ErrConfig, i+1, pattern)
			}
		}
	}

	return nil
}

// Spec returns the search specification of the rule.
func (r Rule) Spec(timeout time.Duration) text.Spec {
	return text.Spec{
		Raw:         r.Search,
		Insensitive: r.Insensitive,
		Extended:    r.Extended,
		Timeout:     timeout,
	}
}

// Compile builds the matching rule.
func (r Rule) Compile(timeout time.Duration) (*text.Rule, error) {
	return text.NewRule(r.Spec(timeout), r.Replacement, r.Description)
}

// 📝 String returns a string representation of the rule
func (r Rule) String() string {
	if r.Replacement == nil {
		return fmt.Sprintf("search %q", r.Search)
	}
	return fmt.Sprintf("search %q -> %q", r.Search, *r.Replacement)
}
