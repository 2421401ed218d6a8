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
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/walteh/searchreplace/pkg/config"
	"github.com/walteh/searchreplace/pkg/log"
	"github.com/walteh/searchreplace/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

const longDescription = `Search files for a string or /regular expression/ and optionally replace
every occurrence in place.

Rules come from -s/--search (with -r/--replacement, -i and -e) or from a
rule document (YAML, JSON or HCL). Lines containing a "no-search-replace"
comment are skipped. Exits 1 when anything is found or anything fails.`

// rootOpts holds the rule flags that never come from the environment
type rootOpts struct {
	search      string
	replacement string
	insensitive bool
	extended    bool
}

// runState carries the exit code out of cobra
type runState struct {
	code int
}

// usageError is printed to stderr followed by the help text on stdout.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func newRootCmd(stdout, stderr io.Writer, reporter *log.Logger) (*cobra.Command, *runState, error) {
	opts := &rootOpts{}
	state := &runState{}
	info := readBuildInfo()
	v := newSettings()

	cmd := &cobra.Command{
		Use:           "searchreplace [flags] <files>",
		Short:         "Search, and optionally replace, strings and regular expressions in files",
		Long:          longDescription,
		Version:       info.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := run(cmd, v, opts, args, stderr, reporter)
			state.code = code
			return err
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetVersionTemplate(info.String())

	flags := cmd.Flags()
	flags.StringP(configKey, "c", config.DefaultPath, "rule document (YAML, JSON or HCL) used when no search is given")
	flags.StringVarP(&opts.search, "search", "s", "", "search string or /regexp/ (required if not using a rule document)")
	flags.StringVarP(&opts.replacement, "replacement", "r", "", "replacement string, may reference regexp groups")
	flags.BoolVarP(&opts.insensitive, "insensitive", "i", false, "case-insensitive search")
	flags.BoolVarP(&opts.extended, "extended", "e", false, "extended regexp: whitespace ignored, # comments allowed")
	flags.BoolP(colorKey, "C", true, "colored output")
	flags.Bool("no-"+colorKey, false, "disable colored output")
	flags.BoolP(writeKey, "w", true, "write replacements to files")
	flags.Bool("no-"+writeKey, false, "report replacements without writing them")
	flags.IntP(jobsKey, "j", 1, "files scanned concurrently per rule")
	flags.String(tempDirKey, "", "directory for rewritten copies (default: next to each file)")
	flags.Duration(regexTimeoutKey, 0, "timeout for a single regexp match, 0 for none")
	flags.Bool(diffKey, false, "print a diff of every file that would be rewritten")
	flags.Bool(summaryKey, false, "print a per-rule summary table")
	flags.BoolP(debugKey, "d", false, "enable debug logging")
	flags.String(logFileKey, "", "also write JSON logs to this file, rotated")
	flags.StringArrayP(excludeKey, "x", nil, "skip files matching this glob (can be repeated)")

	if err := bindFlags(v, flags,
		configKey, colorKey, writeKey, jobsKey, tempDirKey, regexTimeoutKey,
		diffKey, summaryKey, debugKey, logFileKey, excludeKey,
	); err != nil {
		return nil, nil, err
	}

	return cmd, state, nil
}

// Execute runs the command line and returns the process exit code. The report
// goes to stdout; warnings and errors go to stderr.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	reporter := log.New(stdout, zerolog.Nop())
	reporter.SetErrorOutput(stderr)

	cmd, state, err := newRootCmd(stdout, stderr, reporter)
	if err != nil {
		reporter.Error(err.Error())
		return 1
	}
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(ctx); err != nil {
		var uerr *usageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(stderr, uerr.msg)
			fmt.Fprintf(stdout, "\n%s", cmd.UsageString())
			return 1
		}
		reporter.Error(err.Error())
		return 1
	}

	return state.code
}

func run(cmd *cobra.Command, v *viper.Viper, opts *rootOpts, args []string, stderr io.Writer, reporter *log.Logger) (int, error) {
	color := enabled(v, cmd, colorKey)
	log.SetColor(color)

	zlog, closeLog := setupLogging(v, stderr, color)
	defer closeLog()
	reporter.SetZerolog(zlog)
	defer reporter.SetZerolog(zerolog.Nop())
	ctx := log.NewContext(zlog.WithContext(cmd.Context()), reporter)

	if len(args) == 0 {
		return 1, &usageError{msg: "No files to search supplied as arguments!"}
	}

	configPath := v.GetString(configKey)
	files := withoutPath(args, configPath)

	cfg, err := loadRules(ctx, cmd, opts, configPath)
	if err != nil {
		return 1, err
	}

	for i, rule := range cfg.Rules {
		zlog.Debug().Int("entry", i+1).Str("rule", rule.String()).Msg("loaded rule")
	}

	jobs, err := operation.Compile(cfg, v.GetDuration(regexTimeoutKey))
	if err != nil {
		return 1, err
	}

	jobCount := v.GetInt(jobsKey)
	zlog.Debug().
		Int("rules", len(jobs)).
		Int("files", len(files)).
		Int("jobs", jobCount).
		Msg("starting run")

	runner := operation.NewRunner(operation.Options{
		Write:   enabled(v, cmd, writeKey),
		Jobs:    jobCount,
		TempDir: v.GetString(tempDirKey),
		Diff:    v.GetBool(diffKey),
		Summary: v.GetBool(summaryKey),
		Exclude: v.GetStringSlice(excludeKey),
	})

	outcome, err := runner.Run(ctx, jobs, files)
	if err != nil {
		return 1, err
	}

	return outcome.ExitCode(), nil
}

// loadRules builds the rule set from the search flags, or from the rule
// document when no search was given.
func loadRules(ctx context.Context, cmd *cobra.Command, opts *rootOpts, path string) (*config.Config, error) {
	if opts.search != "" {
		rule := config.Rule{
			Search:      opts.search,
			Insensitive: opts.insensitive,
			Extended:    opts.extended,
		}
		if cmd.Flags().Changed("replacement") {
			rule.Replacement = &opts.replacement
		}
		return config.FromRule(rule)
	}

	cfg, err := config.Load(ctx, path)
	if errors.Is(err, config.ErrNotFound) {
		return nil, &usageError{msg: fmt.Sprintf("Unable to open %s and no search argument specified.", path)}
	}
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().Str("config", cfg.Location()).Int("rules", len(cfg.Rules)).Msg("using rule document")
	return cfg, nil
}

// withoutPath drops every argument that names the same file as path.
func withoutPath(args []string, path string) []string {
	target, err := filepath.Abs(path)
	if err != nil {
		return args
	}

	files := make([]string, 0, len(args))
	for _, arg := range args {
		if abs, err := filepath.Abs(arg); err == nil && abs == target {
			continue
		}
		files = append(files, arg)
	}
	return files
}
