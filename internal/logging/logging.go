// Package logging configures the process-wide slog logger.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// levelRouter is a slog.Handler that routes records below ERROR to one
// handler and ERROR+ to another.
type levelRouter struct {
	stdout slog.Handler
	stderr slog.Handler
	level  slog.Leveler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= lr.level.Level()
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
		level:  lr.level,
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
		level:  lr.level,
	}
}

// Options selects the log format, level and optional log file.
type Options struct {
	Format string // text, json or pretty
	Level  string // debug, info, warn or error
	File   string
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(name))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", name)
	}
	return level, nil
}

// NewHandler builds a handler writing records below ERROR to stdout and
// ERROR+ to stderr.
func NewHandler(format string, level slog.Level, stdout, stderr io.Writer) (slog.Handler, error) {
	opts := &slog.HandlerOptions{Level: level}

	var build func(w io.Writer) slog.Handler
	switch format {
	case "", "text":
		build = func(w io.Writer) slog.Handler { return slog.NewTextHandler(w, opts) }
	case "json":
		build = func(w io.Writer) slog.Handler { return slog.NewJSONHandler(w, opts) }
	case "pretty":
		build = func(w io.Writer) slog.Handler { return NewPrettyHandler(w, opts) }
	default:
		return nil, fmt.Errorf("unsupported log format %q", format)
	}

	return &levelRouter{
		stdout: build(stdout),
		stderr: build(stderr),
		level:  level,
	}, nil
}

// Setup configures structured logging and makes it the slog default. If
// opts.File is set, all levels are also appended to that file. Returns a
// cleanup function that closes the log file, or nil.
func Setup(opts Options) (func(), error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	var cleanup func()

	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(os.Stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	handler, err := NewHandler(opts.Format, level, stdoutW, stderrW)
	if err != nil {
		if cleanup != nil {
			cleanup()
		}
		return nil, err
	}

	slog.SetDefault(slog.New(handler))
	return cleanup, nil
}
