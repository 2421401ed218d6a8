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

package log

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/walteh/searchreplace/pkg/text"
)

// 🎨 Display configuration
const (
	contextIndent = 4 // spaces before context and caret lines
)

// 🎯 Logger prints the human readable report and mirrors it to zerolog
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	errOut  io.Writer
	mu      sync.Mutex
	fixed   []string
	seen    map[string]bool
}

// 🏭 New creates a new logger writing the report to console
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
		errOut:  console,
		seen:    map[string]bool{},
	}
}

// SetErrorOutput sends Warning and Error messages to w instead of the console.
func (l *Logger) SetErrorOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errOut = w
}

// SetZerolog replaces the structured logger the report is mirrored to. The
// CLI builds the Logger before flags are parsed and attaches zerolog after.
func (l *Logger) SetZerolog(zlog zerolog.Logger) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.zlog = zlog
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// SetColor turns colored output on or off for both color libraries.
func SetColor(enabled bool) {
	color.NoColor = !enabled
	if enabled {
		pterm.EnableStyling()
	} else {
		pterm.DisableStyling()
	}
}

func clean(s string) string {
	s = strings.TrimRight(s, "\r\n")
	return strings.ReplaceAll(s, "\t", " ")
}

// 📝 FormatOccurrence renders one occurrence: location, context line, caret
// line and, when replacing, the line with only this match substituted.
func FormatOccurrence(o text.Occurrence) string {
	indent := strings.Repeat(" ", contextIndent)

	var b strings.Builder
	fmt.Fprintf(&b, "%s, line %d, col %d:\n", color.CyanString(o.File), o.Line, o.Column)
	fmt.Fprintf(&b, "%s%s\n", indent, clean(o.Context))
	fmt.Fprintf(&b, "%s%s%s\n", indent, strings.Repeat(" ", o.Column-1), color.RedString(strings.Repeat("^", o.Length)))

	if o.Replacement != nil {
		before, _, after := o.Split()
		fmt.Fprintf(&b, "After replacement:\n%s%s\n", indent, clean(before)+color.GreenString(clean(*o.Replacement))+clean(after))
	}

	return b.String()
}

// 📝 FormatHeader renders the line that opens a file's report
func FormatHeader(count int, label, file string) string {
	return fmt.Sprintf("==== Found %s occurrences of \"%s\" in %s:\n",
		color.RedString("%d", count),
		color.YellowString(label),
		color.CyanString(file))
}

// 📝 LogFileResult prints every occurrence found in one file
func (l *Logger) LogFileResult(ctx context.Context, label, file string, occurrences []text.Occurrence) {
	if len(occurrences) == 0 {
		return
	}

	parts := make([]string, 0, len(occurrences))
	for _, o := range occurrences {
		parts = append(parts, FormatOccurrence(o))
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.console, "%s\n%s", FormatHeader(len(occurrences), label, file), strings.Join(parts, "\n"))

	l.zlog.Info().
		Str("file", file).
		Str("rule", label).
		Int("occurrences", len(occurrences)).
		Msg("occurrences found")
}

// 📝 Fixed records a rewritten file; each file is announced once by Flush
func (l *Logger) Fixed(file string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.seen[file] {
		return
	}
	l.seen[file] = true
	l.fixed = append(l.fixed, file)
}

// 📝 FixedFiles returns the rewritten files in the order they were fixed
func (l *Logger) FixedFiles() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.fixed...)
}

// 📝 Flush prints a "Fixed" line for every rewritten file
func (l *Logger) Flush() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, file := range l.fixed {
		fmt.Fprintln(l.console, color.GreenString("Fixed %s", file))
		l.zlog.Info().Str("file", file).Msg("fixed")
	}
}

// 📝 FileError reports a failure scoped to one file
func (l *Logger) FileError(file string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pterm.Error.WithWriter(l.console).Println(fmt.Sprintf("%s: %s", file, err.Error()))
	l.zlog.Error().Err(err).Str("file", file).Msg("file failed")
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pterm.Warning.WithWriter(l.errOut).Println(msg)
	l.zlog.Warn().Msg(msg)
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pterm.Error.WithWriter(l.errOut).Println(msg)
	l.zlog.Error().Msg(msg)
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}
