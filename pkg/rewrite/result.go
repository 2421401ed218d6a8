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

package rewrite

import (
	"context"
	"iter"
	"os"
	"slices"

	"github.com/walteh/searchreplace/pkg/install"
	"github.com/walteh/searchreplace/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// 📄 FileResult holds every occurrence one rule found in one file and, when
// the rule replaces, the rewritten copy waiting to be installed. The result
// owns that copy: call Install to put it in place or Discard to drop it.
type FileResult struct {
	File string

	occurrences []text.Occurrence
	tempPath    string
}

// Len returns the number of occurrences.
func (r *FileResult) Len() int {
	return len(r.occurrences)
}

// Empty reports whether nothing was found.
func (r *FileResult) Empty() bool {
	return len(r.occurrences) == 0
}

// First returns the first occurrence in file order.
func (r *FileResult) First() (text.Occurrence, bool) {
	if len(r.occurrences) == 0 {
		return text.Occurrence{}, false
	}
	return r.occurrences[0], true
}

// All iterates occurrences in line order, then match order within a line.
func (r *FileResult) All() iter.Seq[text.Occurrence] {
	return slices.Values(r.occurrences)
}

// Occurrences returns a copy of the occurrence list.
func (r *FileResult) Occurrences() []text.Occurrence {
	return slices.Clone(r.occurrences)
}

// RewrittenPath returns the path of the rewritten copy, if one is pending.
func (r *FileResult) RewrittenPath() (string, bool) {
	return r.tempPath, r.tempPath != ""
}

// 📦 Install moves the rewritten copy over the original file.
func (r *FileResult) Install(ctx context.Context) error {
	if r.tempPath == "" {
		return errors.Errorf("%w: no rewritten copy of %s", install.ErrInstall, r.File)
	}
	if err := install.Install(ctx, r.tempPath, r.File); err != nil {
		return err
	}
	r.tempPath = ""
	return nil
}

// 🗑️ Discard removes a pending rewritten copy. It is safe to call more than
// once and after Install.
func (r *FileResult) Discard() error {
	if r.tempPath == "" {
		return nil
	}
	path := r.tempPath
	r.tempPath = ""
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Errorf("removing %s: %w", path, err)
	}
	return nil
}
