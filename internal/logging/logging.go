// Package logging builds the *slog.Logger handed to every winstack component.
// Records are rendered by charmbracelet/log.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// EnvLevel overrides the configured level when set.
const EnvLevel = "WINSTACK_LOG_LEVEL"

// Options selects level and output format.
type Options struct {
	// Level is debug, info, warn or error.
	Level string
	// Format is text, json or logfmt.
	Format string
	// Prefix is prepended to every line, e.g. "winstack".
	Prefix string
}

// New returns a logger writing to w. An empty level or format falls back to
// info and text.
func New(w io.Writer, opts Options) (*slog.Logger, error) {
	handler, err := NewHandler(w, opts)
	if err != nil {
		return nil, err
	}
	return slog.New(handler), nil
}

// NewHandler returns the charmbracelet handler behind New.
func NewHandler(w io.Writer, opts Options) (*log.Logger, error) {
	levelName := opts.Level
	if env := strings.TrimSpace(os.Getenv(EnvLevel)); env != "" {
		levelName = env
	}
	level, err := ParseLevel(levelName)
	if err != nil {
		return nil, err
	}
	formatter, err := ParseFormat(opts.Format)
	if err != nil {
		return nil, err
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
		Formatter:       formatter,
		Prefix:          opts.Prefix,
	}), nil
}

// ParseLevel accepts debug, info, warn (or warning) and error.
func ParseLevel(s string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return log.InfoLevel, nil
	case "debug":
		return log.DebugLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	default:
		return log.InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
}

// ParseFormat accepts text, json and logfmt.
func ParseFormat(s string) (log.Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return log.TextFormatter, nil
	case "json":
		return log.JSONFormatter, nil
	case "logfmt":
		return log.LogfmtFormatter, nil
	default:
		return log.TextFormatter, fmt.Errorf("unknown log format %q", s)
	}
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
