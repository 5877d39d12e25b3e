// Package cli implements the flowcanvas command-line interface.
//
// The commands drive one in-memory editing session each: edit opens the
// terminal editor, serve exposes the session over HTTP, and render,
// inspect and types work on flow documents and block-type templates in
// batch. The CLI is built using cobra and logs through charmbracelet/log.
//
// # Commands
//
//   - edit: Mouse-driven terminal editor for a flow document
//   - serve: HTTP API and Prometheus metrics for one editing session
//   - render: DOT or SVG drawing of a flow document
//   - inspect: Block and connection summary, dangling references
//   - types: Available block types and their fields
//   - cache: Manage the remote template cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates the command logger. Timestamps look like "14:32:01.45".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs how long an operation took.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Imported 12 blocks (4ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger attaches l to ctx.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
