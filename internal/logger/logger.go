// Package logger provides the process-wide structured logger.
// It wraps zerolog with opinionated defaults: console output for
// interactive use, JSON for unattended operation, and a single root
// logger initialised once at process start.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Options configures the root logger.
type Options struct {
	// Level is the minimum level: trace, debug, info, warn, error.
	Level string

	// Format is "console" or "json".
	Format string

	// Writer overrides the output; defaults to stderr.
	Writer io.Writer
}

var (
	once sync.Once
	root atomic.Pointer[zerolog.Logger]
)

// Init configures zerolog and builds the root logger. Safe to call once;
// later calls are no-ops.
func Init(opt Options) {
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339

		var w io.Writer = os.Stderr
		if opt.Writer != nil {
			w = opt.Writer
		}
		if opt.Format != "json" {
			w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
		}

		log := zerolog.New(w).Level(parseLevel(opt.Level)).With().Timestamp().Logger()
		root.Store(&log)
	})
}

// Get returns the root logger, initialising with defaults if needed.
func Get() *zerolog.Logger {
	if root.Load() == nil {
		Init(Options{Level: "info"})
	}
	return root.Load()
}

// With returns a child logger carrying a component field.
func With(component string) zerolog.Logger {
	return Get().With().Str("component", component).Logger()
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "", "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
