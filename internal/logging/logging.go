// Package logging builds the zerolog logger used by the CLI.
//
// The terminal UI owns stdout and stderr while it runs, so logs only ever go
// to a file. With no file configured the logger discards everything.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const app = "vcfview"

// New returns a logger writing to path at the given level, and the closer
// for the underlying file. An empty path yields a no-op logger.
func New(path, level string) (zerolog.Logger, io.Closer, error) {
	if path == "" {
		return zerolog.Nop(), io.NopCloser(nil), nil
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("logging: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("logging: opening %s: %w", path, err)
	}

	return NewWriter(f, lvl), f, nil
}

// NewWriter returns a logger writing human-readable lines to w.
func NewWriter(w io.Writer, lvl zerolog.Level) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    true,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).Level(lvl).With().Timestamp().Str("app", app).Logger()
}
