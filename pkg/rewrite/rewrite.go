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

// Package rewrite runs a rule over a whole file, collecting occurrences and
// writing a rewritten copy when the rule has a replacement.
package rewrite

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/walteh/searchreplace/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// ErrFileAccess is returned when a target file cannot be opened or read.
var ErrFileAccess = errors.Base("file access failed")

// tempPattern names rewritten copies while they wait to be installed.
const tempPattern = ".searchreplace-*"

// 🔧 Options configures a Rewriter.
type Options struct {
	// TempDir holds rewritten copies. Empty means next to the original file,
	// which keeps the final rename on one filesystem.
	TempDir string
}

// 🔄 Rewriter applies rules to files.
type Rewriter struct {
	tempDir string
}

// 🏭 New creates a Rewriter.
func New(opts Options) *Rewriter {
	return &Rewriter{tempDir: opts.TempDir}
}

// 📄 Process scans file line by line with rule. When the rule has a
// replacement a full rewritten copy is written, even if nothing matched.
func (w *Rewriter) Process(ctx context.Context, rule *text.Rule, file string) (res *FileResult, err error) {
	logger := zerolog.Ctx(ctx).With().Str("file", file).Str("rule", rule.Label()).Logger()

	src, err := os.Open(file)
	if err != nil {
		return nil, errors.Errorf("%w: %s", ErrFileAccess, err.Error())
	}
	defer src.Close()

	result := &FileResult{File: file}

	var out *bufio.Writer
	if rule.HasReplacement() {
		tmp, cerr := os.CreateTemp(w.dir(file), tempPattern)
		if cerr != nil {
			return nil, errors.Errorf("creating rewritten copy of %s: %w", file, cerr)
		}
		result.tempPath = tmp.Name()
		defer func() {
			if cerr := tmp.Close(); cerr != nil && err == nil {
				res, err = nil, errors.Errorf("closing rewritten copy of %s: %w", file, cerr)
			}
			if err != nil {
				_ = result.Discard()
			}
		}()
		out = bufio.NewWriter(tmp)
	}

	reader := bufio.NewReader(src)
	for lineno := 1; ; lineno++ {
		line, readErr := reader.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return nil, errors.Errorf("%w: reading %s: %s", ErrFileAccess, file, readErr.Error())
		}
		if line == "" && readErr == io.EOF {
			break
		}

		occurrences, rewritten, scanErr := rule.ScanLine(file, lineno, line)
		if scanErr != nil {
			return nil, errors.Errorf("scanning %s line %d: %w", file, lineno, scanErr)
		}
		result.occurrences = append(result.occurrences, occurrences...)

		if out != nil {
			if _, werr := out.WriteString(rewritten); werr != nil {
				return nil, errors.Errorf("writing rewritten copy of %s: %w", file, werr)
			}
		}

		if readErr == io.EOF {
			break
		}
	}

	if out != nil {
		if err := out.Flush(); err != nil {
			return nil, errors.Errorf("writing rewritten copy of %s: %w", file, err)
		}
	}

	logger.Debug().Int("occurrences", result.Len()).Bool("rewritten", out != nil).Msg("processed file")
	return result, nil
}

func (w *Rewriter) dir(file string) string {
	if w.tempDir != "" {
		return w.tempDir
	}
	return filepath.Dir(file)
}
