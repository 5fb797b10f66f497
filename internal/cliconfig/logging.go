package cliconfig

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

var logger zerolog.Logger

func init() {
	logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

// Logger returns the package logger. Diagnostics go to stderr so report
// output on stdout stays clean for piping.
func Logger() zerolog.Logger {
	return logger
}
