// Package logging builds the charmbracelet/log loggers used by tex2png and
// carries them through context.Context.
//
// Console output is human-readable text on stderr. With a log file, lines are
// written as JSON to a size-rotated file instead.
package logging

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/rs/xid"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation limits for --log-file.
const (
	maxLogSizeMB   = 10
	maxLogBackups  = 3
	maxLogAgeDays  = 28
	timestampShort = "15:04:05.00"
)

// New creates a text logger writing to w at the given level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func New(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      timestampShort,
		Level:           level,
	})
}

// NewJSON creates a logger emitting one JSON object per line.
func NewJSON(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           level,
		Formatter:       log.JSONFormatter,
	})
}

// NewFileWriter returns a rotating writer for path. Close it when done.
func NewFileWriter(path string) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxLogSizeMB,
		MaxBackups: maxLogBackups,
		MaxAge:     maxLogAgeDays,
	}
}

// Level picks the console level from the CLI verbosity flags.
// quiet wins over verbose.
func Level(verbose, quiet bool) log.Level {
	switch {
	case quiet:
		return log.ErrorLevel
	case verbose:
		return log.DebugLevel
	default:
		return log.WarnLevel
	}
}

// WithRunID returns a child logger tagged with a fresh run identifier, so
// lines from one invocation can be grouped in a shared log file.
func WithRunID(l *log.Logger) (*log.Logger, string) {
	id := xid.New().String()
	return l.With("run", id), id
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

type ctxKey int

const loggerKey ctxKey = 0

// WithLogger returns a new context carrying l.
func WithLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger attached to ctx, or a discarding logger.
// Library code logs through this so it stays silent unless the caller opts in.
func FromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return Discard()
}

// Progress logs the elapsed time of a stage when it completes.
// Not safe for concurrent use.
type Progress struct {
	logger *log.Logger
	start  time.Time
}

// NewProgress starts timing a stage.
func NewProgress(l *log.Logger) *Progress {
	return &Progress{logger: l, start: time.Now()}
}

// Done logs msg at debug level with the elapsed duration rounded to the
// millisecond, e.g. "latex finished (412ms)".
func (p *Progress) Done(msg string) {
	p.logger.Debugf("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
