// Package logger builds the application's structured logger.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// New returns a logger writing to w (stderr when nil) with timestamps and
// caller reporting. Production uses the JSON formatter.
func New(w io.Writer, level string, production bool) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := log.Options{
		ReportTimestamp: true,
		ReportCaller:    true,
		Level:           ParseLevel(level),
	}
	if production {
		opts.Formatter = log.JSONFormatter
	}
	return log.NewWithOptions(w, opts)
}

// ParseLevel maps a config string to a level, defaulting to info.
func ParseLevel(s string) log.Level {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// Discard is a logger for tests.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
