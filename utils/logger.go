package utils

import (
	"os"

	"github.com/rs/zerolog"
)

// Logger provides leveled, printf-style logging throughout the
// application, backed by zerolog's console writer.
type Logger struct {
	zl zerolog.Logger
}

// NewLogger creates a Logger writing human-readable output to stdout.
// The level comes from LOG_LEVEL (default debug).
func NewLogger() *Logger {
	level := zerolog.DebugLevel
	if s := os.Getenv("LOG_LEVEL"); s != "" {
		if parsed, err := zerolog.ParseLevel(s); err == nil {
			level = parsed
		}
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "2006-01-02 15:04:05",
	}

	return &Logger{
		zl: zerolog.New(output).Level(level).With().Timestamp().Logger(),
	}
}

// NewTestLogger returns a silenced logger for use in tests.
func NewTestLogger() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func (l *Logger) Info(format string, args ...any) {
	l.zl.Info().Msgf(format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.zl.Warn().Msgf(format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.zl.Error().Msgf(format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.zl.Debug().Msgf(format, args...)
}
