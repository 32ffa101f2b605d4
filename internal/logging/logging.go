// Package logging builds the process logger. The TUI owns the terminal,
// so logs go to a file unless explicitly sent to stderr.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Stderr as a file name sends human-readable logs to stderr.
const Stderr = "-"

// Options selects the output and level.
type Options struct {
	File  string // "" disables logging
	Level string // zerolog level name; empty means info
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New returns a logger and the closer for its output.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	switch opts.File {
	case "":
		return zerolog.Nop(), nopCloser{}, nil
	case Stderr:
		w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
		return zerolog.New(w).Level(level).With().Timestamp().Logger(), nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("creating log dir: %w", err)
	}
	f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("opening log file: %w", err)
	}
	return zerolog.New(f).Level(level).With().Timestamp().Logger(), f, nil
}
