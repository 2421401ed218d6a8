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

//go:build unix

package install

import (
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sys/unix"
)

// copyOwnership gives src the owner, group and permission bits of dest.
func copyOwnership(src, dest string) error {
	var want unix.Stat_t
	if err := unix.Stat(dest, &want); err != nil {
		return errors.Errorf("reading permissions: %w", err)
	}

	var have unix.Stat_t
	if err := unix.Stat(src, &have); err != nil {
		return errors.Errorf("reading permissions: %w", err)
	}

	// chown to ourselves is allowed, to anyone else usually needs root
	if have.Uid != want.Uid || have.Gid != want.Gid {
		if err := unix.Chown(src, int(want.Uid), int(want.Gid)); err != nil {
			return errors.Errorf("changing owner: %w", err)
		}
	}

	if err := unix.Chmod(src, uint32(want.Mode&0o7777)); err != nil {
		return errors.Errorf("changing mode: %w", err)
	}

	return nil
}
