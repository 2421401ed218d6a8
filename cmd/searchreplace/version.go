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

package main

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

const (
	modulePath = "github.com/walteh/searchreplace"
	enginePath = "github.com/dlclark/regexp2"
)

// buildInfo describes the running binary
type buildInfo struct {
	Module   string
	Version  string
	Commit   string
	Modified bool
	Engine   string // regexp2 version the binary was built with
	Go       string
	Platform string
}

func readBuildInfo() buildInfo {
	bi, _ := debug.ReadBuildInfo()
	return newBuildInfo(bi)
}

// newBuildInfo fills in what bi knows; bi may be nil.
func newBuildInfo(bi *debug.BuildInfo) buildInfo {
	info := buildInfo{
		Module:   modulePath,
		Version:  "dev",
		Engine:   "unknown",
		Go:       runtime.Version(),
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi == nil {
		return info
	}

	if bi.Main.Path != "" {
		info.Module = bi.Main.Path
	}
	if v := bi.Main.Version; v != "" && v != "(devel)" {
		info.Version = v
	}
	if bi.GoVersion != "" {
		info.Go = bi.GoVersion
	}
	for _, dep := range bi.Deps {
		if dep.Path == enginePath {
			info.Engine = dep.Version
			if dep.Replace != nil {
				info.Engine = dep.Replace.Version
			}
		}
	}
	for _, setting := range bi.Settings {
		switch setting.Key {
		case "vcs.revision":
			info.Commit = setting.Value
		case "vcs.modified":
			info.Modified = setting.Value == "true"
		}
	}

	return info
}

// commit is the short revision, or "unknown" outside a VCS build.
func (b buildInfo) commit() string {
	if b.Commit == "" {
		return "unknown"
	}
	short := b.Commit
	if len(short) > 12 {
		short = short[:12]
	}
	if b.Modified {
		short += ", modified"
	}
	return short
}

// String renders the --version output.
func (b buildInfo) String() string {
	var s strings.Builder
	fmt.Fprintf(&s, "searchreplace %s (commit %s)\n", b.Version, b.commit())
	fmt.Fprintf(&s, "  module  %s\n", b.Module)
	fmt.Fprintf(&s, "  regexp  %s %s\n", enginePath, b.Engine)
	fmt.Fprintf(&s, "  go      %s %s\n", b.Go, b.Platform)
	return s.String()
}
