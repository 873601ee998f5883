// Package log builds the slog.Logger used by ps2cursor commands.
//
// Without a log file, records below error go to stdout and errors go to
// stderr, so a frame printout on stdout can be separated from failures.
// With a log file every record goes to stderr and the file, and stdout
// carries frames only.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LevelTrace is below Debug and enables raw report dumps.
const LevelTrace slog.Level = -8

var levels = map[string]slog.Level{
	"trace":   LevelTrace,
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// ParseLevel maps a case-insensitive level name to its slog.Level. Unknown
// names yield Info.
func ParseLevel(s string) slog.Level {
	if l, ok := levels[strings.ToLower(s)]; ok {
		return l
	}
	return slog.LevelInfo
}

// traceName prints LevelTrace as TRACE rather than DEBUG-4.
func traceName(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if l, ok := a.Value.Any().(slog.Level); ok && l <= LevelTrace {
		a.Value = slog.StringValue("TRACE")
	}
	return a
}

func textHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level, ReplaceAttr: traceName})
}

// consoleHandler routes records below error to out and the rest to errs.
type consoleHandler struct {
	out, errs slog.Handler
}

func (c consoleHandler) pick(l slog.Level) slog.Handler {
	if l >= slog.LevelError {
		return c.errs
	}
	return c.out
}

func (c consoleHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return c.pick(l).Enabled(ctx, l)
}

func (c consoleHandler) Handle(ctx context.Context, r slog.Record) error {
	return c.pick(r.Level).Handle(ctx, r)
}

func (c consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return consoleHandler{out: c.out.WithAttrs(attrs), errs: c.errs.WithAttrs(attrs)}
}

func (c consoleHandler) WithGroup(name string) slog.Handler {
	return consoleHandler{out: c.out.WithGroup(name), errs: c.errs.WithGroup(name)}
}

// teeHandler hands every record to each handler that accepts its level.
type teeHandler []slog.Handler

func (t teeHandler) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (t teeHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range t {
		if h.Enabled(ctx, r.Level) {
			_ = h.Handle(ctx, r.Clone())
		}
	}
	return nil
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithGroup(name)
	}
	return out
}

// SetupLogger builds a logger writing to the process stdout/stderr and,
// when logFile is set, to that file as well.
func SetupLogger(logLevel, logFile string) (*slog.Logger, []io.Closer, error) {
	return NewLogger(os.Stdout, os.Stderr, logLevel, logFile)
}

// NewLogger is SetupLogger with explicit console writers.
func NewLogger(stdout, stderr io.Writer, logLevel, logFile string) (*slog.Logger, []io.Closer, error) {
	level := ParseLevel(logLevel)
	if logFile == "" {
		return slog.New(consoleHandler{
			out:  textHandler(stdout, level),
			errs: textHandler(stderr, max(level, slog.LevelError)),
		}), nil, nil
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return slog.New(teeHandler{textHandler(stderr, level), textHandler(f, level)}), []io.Closer{f}, nil
}
