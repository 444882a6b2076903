// Package applog is the structured logging seam every component takes
// instead of calling a global printer directly, so components stay
// testable (tests pass a no-op Logger). The production implementation
// wraps github.com/charmbracelet/log, replacing the teacher's
// text_color_set/dw_printf cgo pairing with leveled, colored, structured
// log lines.
package applog

import (
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"
)

// Logger is the small leveled-logger-with-fields surface components need.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
	With(kv ...any) Logger
}

type charmLogger struct {
	l *charmlog.Logger
}

// New builds a colored, leveled logger writing to w.
func New(w io.Writer) Logger {
	l := charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		ReportCaller:    false,
	})
	return &charmLogger{l: l}
}

// Default builds a Logger writing to stderr.
func Default() Logger { return New(os.Stderr) }

func (c *charmLogger) Debug(msg string, kv ...any) { c.l.Debug(msg, kv...) }
func (c *charmLogger) Info(msg string, kv ...any)  { c.l.Info(msg, kv...) }
func (c *charmLogger) Warn(msg string, kv ...any)  { c.l.Warn(msg, kv...) }
func (c *charmLogger) Error(msg string, kv ...any) { c.l.Error(msg, kv...) }
func (c *charmLogger) With(kv ...any) Logger {
	return &charmLogger{l: c.l.With(kv...)}
}

// Noop is a Logger that discards everything, for tests and libraries that
// don't want to force a logging dependency on their callers.
type noopLogger struct{}

// Noop returns a Logger that discards every call.
func Noop() Logger { return noopLogger{} }

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) With(...any) Logger   { return noopLogger{} }
