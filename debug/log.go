package debug

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	file    *os.File
	mu      sync.Mutex
	enabled bool
	logger  = slog.New(slog.NewTextHandler(io.Discard, nil))
)

// ParseLevel converts error|warn|info|debug into a slog level
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "error":
		return slog.LevelError, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s (must be error, warn, info, or debug)", level)
	}
}

// DefaultPath returns ~/.config/go-surface/debug.log
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "go-surface", "debug.log")
}

// Enable starts logging to path (truncated). An empty path logs to stderr.
func Enable(path string, level slog.Level) error {
	mu.Lock()
	defer mu.Unlock()

	if enabled {
		return nil
	}

	var w io.Writer = os.Stderr
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		file = f
		w = f
	}

	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	enabled = true
	logger.Info("=== Debug logging started ===", "category", "debug")
	return nil
}

// EnableWriter logs to an arbitrary writer (tests, TUI panes)
func EnableWriter(w io.Writer, level slog.Level) {
	mu.Lock()
	defer mu.Unlock()
	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	enabled = true
}

// Disable stops debug logging
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		file.Close()
		file = nil
	}
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	enabled = false
}

// Logger returns the current structured logger
func Logger() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// Log writes a debug-level message under a category
func Log(category, format string, args ...any) {
	emit(slog.LevelDebug, category, nil, format, args...)
}

// Info writes an info-level message under a category
func Info(category, format string, args ...any) {
	emit(slog.LevelInfo, category, nil, format, args...)
}

// Warn writes a warn-level message under a category
func Warn(category, format string, args ...any) {
	emit(slog.LevelWarn, category, nil, format, args...)
}

// Error writes an error-level message carrying err
func Error(category string, err error, format string, args ...any) {
	emit(slog.LevelError, category, err, format, args...)
}

func emit(level slog.Level, category string, err error, format string, args ...any) {
	mu.Lock()
	l := logger
	on := enabled
	mu.Unlock()

	if !on {
		return
	}

	attrs := []any{slog.String("category", category)}
	if err != nil {
		attrs = append(attrs, slog.String("err", err.Error()))
	}
	l.Log(context.Background(), level, fmt.Sprintf(format, args...), attrs...)
}

// LogEvery logs only every N calls (use for high-frequency events)
var counters = make(map[string]int)

func LogEvery(n int, category, format string, args ...any) {
	mu.Lock()
	key := category + format
	counters[key]++
	count := counters[key]
	mu.Unlock()

	if count%n == 0 {
		Log(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}
