// Package logger configures the process-wide slog logger from LOG_LEVEL and
// LOG_FORMAT and provides the HTTP access log middleware.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

var (
	defaultLogger atomic.Pointer[slog.Logger]
	initOnce      sync.Once
)

func fromEnv() *slog.Logger {
	return New(os.Stderr, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
}

// Setup builds the default logger. Output always goes to stderr.
func Setup() *slog.Logger {
	l := fromEnv()
	defaultLogger.Store(l)
	return l
}

// New builds a logger writing to w. level is debug|info|warn|error, format is
// text|json; unknown values fall back to info and text.
func New(w io.Writer, level, format string) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}
	var h slog.Handler
	if strings.ToLower(format) == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

// L returns the default logger, building it from the environment on first
// use. Safe for concurrent use.
func L() *slog.Logger {
	if l := defaultLogger.Load(); l != nil {
		return l
	}
	initOnce.Do(func() {
		defaultLogger.CompareAndSwap(nil, fromEnv())
	})
	return defaultLogger.Load()
}

// Nop discards everything.
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
