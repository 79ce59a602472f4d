package logger

import (
	"os"

	"github.com/rs/zerolog"
)

// New builds the process-wide root logger. Components derive their own
// sub-loggers via log.With().Str("component", ...).
func New(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
		Level(lvl).
		With().Timestamp().Logger()
}
