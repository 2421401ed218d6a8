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

package operation

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/walteh/searchreplace/pkg/config"
	"github.com/walteh/searchreplace/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// 🎯 Job is a compiled rule together with the globs narrowing its file set
type Job struct {
	Rule    *text.Rule
	Files   []string
	Exclude []string
}

// 🏭 Compile builds a job for every rule of cfg. It fails on the first
// invalid pattern so nothing is scanned with a partial rule set.
func Compile(cfg *config.Config, timeout time.Duration) ([]Job, error) {
	jobs := make([]Job, 0, len(cfg.Rules))
	for i, rule := range cfg.Rules {
		compiled, err := rule.Compile(timeout)
		if err != nil {
			return nil, errors.Errorf("config entry %d: %w", i+1, err)
		}
		jobs = append(jobs, Job{
			Rule:    compiled,
			Files:   rule.Files,
			Exclude: rule.Exclude,
		})
	}
	return jobs, nil
}

// Applies reports whether file is in the job's file set.
func (j Job) Applies(file string) bool {
	if len(j.Files) > 0 && !matchAny(j.Files, file) {
		return false
	}
	return !matchAny(j.Exclude, file)
}

// matchAny matches file against doublestar globs. Globs without a slash
// also match the base name, so "*.go" covers files in any directory.
func matchAny(patterns []string, file string) bool {
	path := filepath.ToSlash(filepath.Clean(file))
	base := filepath.Base(path)
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
		if !strings.Contains(pattern, "/") {
			if ok, _ := doublestar.Match(pattern, base); ok {
				return true
			}
		}
	}
	return false
}
