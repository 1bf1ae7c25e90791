// Package logging constructs the zerolog logger used for the core's
// warn-and-continue paths (orientation duplicate-angle, degenerate
// facet in soup mode) and for CLI-level error reporting.
package logging

import (
	"os"

	"github.com/rs/zerolog"
)

// Logger is the package-level logger, writing console-formatted output
// to stderr at info level by default.
var Logger zerolog.Logger

func init() {
	Logger = New("info")
}

// New builds a zerolog.Logger writing to stderr at the given level
// ("debug", "info", "warn", "error"); an unrecognized level falls back
// to info.
func New(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()
}
