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
	"encoding/json"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🔧 JSONParser reads a JSON array of rules
type JSONParser struct{}

func init() {
	Register(&JSONParser{})
}

// 🔍 CanParse checks if this parser can handle the given file
func (p *JSONParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(filename)), ".json")
}

// 📝 Parse parses the rules from JSON bytes. Unknown keys are ignored with a
// warning.
func (p *JSONParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	var rules []Rule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, errors.Errorf("%w: parsing JSON: %s", ErrConfig, err.Error())
	}

	var entries []map[string]any
	if err := json.Unmarshal(data, &entries); err == nil {
		warnUnknownKeys(ctx, entries)
	}

	return &Config{Rules: rules}, nil
}
