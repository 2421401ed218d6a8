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
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/walteh/searchreplace/pkg/log"
	"github.com/walteh/searchreplace/pkg/rewrite"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// 🔧 Options controls a run
type Options struct {
	Write   bool     // install rewritten files over the originals
	Jobs    int      // files of one rule scanned at once, 1 or less is sequential
	TempDir string   // where rewritten copies are staged, empty for the file's own directory
	Diff    bool     // print a diff for every file that would be rewritten
	Summary bool     // print a per-rule totals table at the end
	Exclude []string // globs removed from the file set of every rule
}

// 📊 Outcome is what a run found and did
type Outcome struct {
	Found    int      // occurrences reported across all rules
	Fixed    []string // files rewritten, each listed once
	Failures int      // files that could not be scanned or installed
	Rows     []log.SummaryRow
}

// ExitCode is 1 when anything was found or anything failed.
func (o *Outcome) ExitCode() int {
	if o.Found > 0 || o.Failures > 0 {
		return 1
	}
	return 0
}

// 🏃 Runner applies jobs to a file set
type Runner struct {
	opts     Options
	rewriter *rewrite.Rewriter
}

// 🏗️ NewRunner creates a new runner
func NewRunner(opts Options) *Runner {
	return &Runner{
		opts:     opts,
		rewriter: rewrite.New(rewrite.Options{TempDir: opts.TempDir}),
	}
}

// scanned is one file's scan result, or the error that stopped it
type scanned struct {
	file   string
	result *rewrite.FileResult
	err    error
}

// 🏃 Run applies every job to files in order, reporting through the
// log.Logger carried by ctx. Per-file failures are reported and counted; the
// returned error is only set when ctx is cancelled.
func (r *Runner) Run(ctx context.Context, jobs []Job, files []string) (*Outcome, error) {
	reporter := log.FromContext(ctx)
	outcome := &Outcome{}

	for _, job := range jobs {
		row, err := r.runJob(ctx, reporter, job, files, outcome)
		outcome.Rows = append(outcome.Rows, row)
		if err != nil {
			return outcome, err
		}
	}

	reporter.Flush()
	outcome.Fixed = reporter.FixedFiles()

	if r.opts.Summary {
		reporter.Summary(outcome.Rows)
	}

	return outcome, nil
}

func (r *Runner) runJob(ctx context.Context, reporter *log.Logger, job Job, files []string, outcome *Outcome) (log.SummaryRow, error) {
	label := job.Rule.Label()
	logger := zerolog.Ctx(ctx).With().Str("rule", label).Str("expr", job.Rule.Pattern.Expr()).Logger()
	row := log.SummaryRow{Rule: label}

	var selected []string
	for _, file := range files {
		if matchAny(r.opts.Exclude, file) || !job.Applies(file) {
			logger.Debug().Str("file", file).Msg("skipping file")
			continue
		}
		selected = append(selected, file)
	}

	results, err := r.scan(logger.WithContext(ctx), job, selected)
	defer func() {
		for _, s := range results {
			if s.result == nil {
				continue
			}
			if derr := s.result.Discard(); derr != nil {
				reporter.Warningf("%s: removing rewritten copy: %s", s.file, derr.Error())
			}
		}
	}()
	if err != nil {
		return row, err
	}

	for _, s := range results {
		row.Scanned++

		if s.err != nil {
			reporter.FileError(s.file, s.err)
			row.Failed++
			outcome.Failures++
			continue
		}
		if s.result.Empty() {
			continue
		}

		row.Matched++
		row.Occurrences += s.result.Len()
		outcome.Found += s.result.Len()
		reporter.LogFileResult(ctx, label, s.file, s.result.Occurrences())

		if !job.Rule.HasReplacement() {
			continue
		}

		if r.opts.Diff {
			r.showDiff(reporter, s.result)
		}

		if !r.opts.Write {
			continue
		}

		if err := s.result.Install(ctx); err != nil {
			reporter.FileError(s.file, err)
			row.Failed++
			outcome.Failures++
			continue
		}
		row.Fixed++
		reporter.Fixed(s.file)
	}

	return row, nil
}

// scan processes files with the job's rule, concurrently when Jobs > 1.
// Results keep the order of files.
func (r *Runner) scan(ctx context.Context, job Job, files []string) ([]scanned, error) {
	results := make([]scanned, len(files))
	for i, file := range files {
		results[i].file = file
	}

	if r.opts.Jobs <= 1 {
		for i, file := range files {
			if err := ctx.Err(); err != nil {
				return results, errors.Errorf("run cancelled: %w", err)
			}
			results[i].result, results[i].err = r.rewriter.Process(ctx, job.Rule, file)
		}
		return results, nil
	}

	var g errgroup.Group
	g.SetLimit(r.opts.Jobs)
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return errors.Errorf("run cancelled: %w", err)
			}
			results[i].result, results[i].err = r.rewriter.Process(ctx, job.Rule, file)
			return nil
		})
	}

	return results, g.Wait()
}

func (r *Runner) showDiff(reporter *log.Logger, result *rewrite.FileResult) {
	path, ok := result.RewrittenPath()
	if !ok {
		return
	}

	original, err := os.ReadFile(result.File)
	if err != nil {
		reporter.FileError(result.File, err)
		return
	}
	rewritten, err := os.ReadFile(path)
	if err != nil {
		reporter.FileError(result.File, err)
		return
	}

	reporter.Diff(result.File, string(original), string(rewritten))
}
