// Package log provides categorized structured logging for gitguru.
//
// Records go to a JSON log file under the user's state directory and, in
// verbose mode, to stderr as text. Until Init is called everything is
// discarded, so packages can log freely from tests.
package log

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Category tags a record with the subsystem that produced it.
type Category string

const (
	CatGit    Category = "git"
	CatTree   Category = "tree"
	CatFlow   Category = "flow"
	CatConfig Category = "config"
	CatCLI    Category = "cli"
)

// Config controls where records go.
type Config struct {
	Enabled bool      // Write the JSON log file
	Level   string    // debug, info, warn or error
	Path    string    // Log file path; DefaultPath() when empty
	Verbose bool      // Mirror records to Stderr
	Stderr  io.Writer // Defaults to os.Stderr
}

var (
	mu     sync.RWMutex
	global = slog.New(slog.DiscardHandler)
	file   *os.File
)

// DefaultPath returns $XDG_STATE_HOME/gitguru/gitguru.log, falling back to
// ~/.local/state when XDG_STATE_HOME is unset.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("finding home directory: %w", err)
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, "gitguru", "gitguru.log"), nil
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(strings.TrimSpace(s)))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return l, nil
}

// Init installs the global logger and returns a cleanup function that
// closes the log file and restores the discard logger.
func Init(cfg Config) (func() error, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	var (
		handlers []slog.Handler
		f        *os.File
	)
	if cfg.Enabled {
		path := cfg.Path
		if path == "" {
			if path, err = DefaultPath(); err != nil {
				return nil, err
			}
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
		f, err = os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		handlers = append(handlers, slog.NewJSONHandler(f, opts))
	}
	if cfg.Verbose {
		w := cfg.Stderr
		if w == nil {
			w = os.Stderr
		}
		handlers = append(handlers, slog.NewTextHandler(w, opts))
	}

	l := slog.New(slog.DiscardHandler)
	if len(handlers) > 0 {
		l = slog.New(fanout(handlers))
	}

	mu.Lock()
	global = l
	file = f
	mu.Unlock()

	return func() error {
		mu.Lock()
		defer mu.Unlock()
		global = slog.New(slog.DiscardHandler)
		if file == nil {
			return nil
		}
		cerr := file.Close()
		file = nil
		return cerr
	}, nil
}

// With adds attributes to every subsequent record, e.g. an invocation id.
func With(kv ...any) {
	mu.Lock()
	defer mu.Unlock()
	global = global.With(kv...)
}

// Logger returns the current global logger.
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

func Debug(cat Category, msg string, kv ...any) { emit(slog.LevelDebug, cat, msg, kv) }
func Info(cat Category, msg string, kv ...any)  { emit(slog.LevelInfo, cat, msg, kv) }
func Warn(cat Category, msg string, kv ...any)  { emit(slog.LevelWarn, cat, msg, kv) }
func Error(cat Category, msg string, kv ...any) { emit(slog.LevelError, cat, msg, kv) }

func emit(level slog.Level, cat Category, msg string, kv []any) {
	l := Logger()
	ctx := context.Background()
	if !l.Enabled(ctx, level) {
		return
	}
	l.Log(ctx, level, msg, append([]any{"cat", string(cat)}, kv...)...)
}

// fanout sends every record to each handler that accepts its level.
type fanout []slog.Handler

func (h fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, x := range h {
		if x.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, x := range h {
		if x.Enabled(ctx, r.Level) {
			errs = append(errs, x.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (h fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(h))
	for i, x := range h {
		out[i] = x.WithAttrs(attrs)
	}
	return out
}

func (h fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(h))
	for i, x := range h {
		out[i] = x.WithGroup(name)
	}
	return out
}
