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

// Package install moves rewritten files into place.
package install

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ErrInstall is returned when a rewritten file cannot be put in place.
var ErrInstall = errors.Base("install failed")

// 📦 Install replaces dest with src. On platforms with POSIX ownership the
// owner, group and mode of dest are copied onto src first. The final step is
// a single rename, so readers of dest see either the old or the new content.
func Install(ctx context.Context, src, dest string) error {
	logger := zerolog.Ctx(ctx)

	if err := copyOwnership(src, dest); err != nil {
		return errors.Errorf("%w: %s: %s", ErrInstall, dest, err.Error())
	}

	if err := os.Rename(src, dest); err != nil {
		return errors.Errorf("%w: renaming %s to %s: %s", ErrInstall, src, dest, err.Error())
	}

	logger.Debug().Str("src", src).Str("dest", dest).Msg("installed rewritten file")
	return nil
}
