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
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	envPrefix = "SEARCH_REPLACE"

	configKey       = "config"
	writeKey        = "write"
	colorKey        = "color"
	jobsKey         = "jobs"
	tempDirKey      = "temp-dir"
	regexTimeoutKey = "regex-timeout"
	diffKey         = "diff"
	summaryKey      = "summary"
	debugKey        = "debug"
	excludeKey      = "exclude"

	logFileKey       = "log-file"
	logMaxSizeKey    = "log-max-size"
	logMaxBackupsKey = "log-max-backups"
	logMaxAgeKey     = "log-max-age"
	logCompressKey   = "log-compress"

	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
)

// newSettings returns a viper instance reading SEARCH_REPLACE_* variables,
// e.g. SEARCH_REPLACE_WRITE=false or SEARCH_REPLACE_TEMP_DIR=/tmp.
func newSettings() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	v.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	v.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	v.SetDefault(logCompressKey, true)

	return v
}

// bindFlags wires every named flag to the viper key of the same name so
// environment values feed the flag.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, names ...string) error {
	for _, name := range names {
		flag := flags.Lookup(name)
		if flag == nil {
			return errors.Errorf("flag for setting %q not found", name)
		}
		if err := v.BindPFlag(name, flag); err != nil {
			return errors.Errorf("binding flag %s: %w", name, err)
		}
	}
	return nil
}

// enabled resolves a --flag / --no-flag pair. An explicit --no-flag wins.
func enabled(v *viper.Viper, cmd *cobra.Command, key string) bool {
	if cmd.Flags().Changed("no-" + key) {
		off, _ := cmd.Flags().GetBool("no-" + key)
		return !off
	}
	return v.GetBool(key)
}

// setupLogging builds the diagnostic logger: a console writer on stderr,
// plus a rotating JSON file when log-file is set.
func setupLogging(v *viper.Viper, stderr io.Writer, color bool) (zerolog.Logger, func()) {
	level := zerolog.WarnLevel
	if v.GetBool(debugKey) {
		level = zerolog.DebugLevel
	}

	var w io.Writer = zerolog.ConsoleWriter{Out: stderr, NoColor: !color}
	closer := func() {}

	if path := v.GetString(logFileKey); strings.TrimSpace(path) != "" {
		file := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    v.GetInt(logMaxSizeKey),
			MaxBackups: v.GetInt(logMaxBackupsKey),
			MaxAge:     v.GetInt(logMaxAgeKey),
			Compress:   v.GetBool(logCompressKey),
		}
		w = zerolog.MultiLevelWriter(w, file)
		closer = func() { _ = file.Close() }
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger(), closer
}
