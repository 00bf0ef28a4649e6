// Package log provides the JSON-lines structured logger shared by the
// vellum-shell binaries.
//
// Hook-path invocations must stay silent unless VELLUM_DEBUG=1 is set, since
// anything written to the terminal during a key press corrupts the prompt.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config configures the structured logger.
type Config struct {
	// Output is the writer for log output (default: os.Stderr)
	Output io.Writer

	// Level is the minimum log level (default: LevelWarn)
	Level slog.Level

	// Debug enables debug level logging (overrides Level)
	Debug bool
}

// DefaultConfig returns the default logging configuration.
func DefaultConfig() *Config {
	return &Config{
		Output: os.Stderr,
		Level:  slog.LevelWarn,
		Debug:  false,
	}
}

// New creates a new JSON-lines structured logger. Log format is one object
// per line:
//
//	{"ts":"2026-01-15T10:30:00Z","level":"DEBUG","msg":"move","direction":-1}
func New(cfg *Config) *slog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	level := cfg.Level
	if cfg.Debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Key = "ts"
			}
			return a
		},
	}

	return slog.New(slog.NewJSONHandler(output, opts))
}

// NewFromEnv creates a logger configured from environment variables.
// VELLUM_DEBUG=1 enables debug logging; otherwise level names the minimum
// level ("debug", "info", "warn", "error"; unknown values mean warn).
func NewFromEnv(level string) *slog.Logger {
	cfg := DefaultConfig()
	cfg.Level = ParseLevel(level)
	if os.Getenv("VELLUM_DEBUG") == "1" {
		cfg.Debug = true
	}
	return New(cfg)
}

// ParseLevel maps a level name to a slog level, defaulting to warn.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// Discard returns a logger that drops everything. Used on hook paths when
// debug logging is off and in tests that do not assert on log output.
func Discard() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
