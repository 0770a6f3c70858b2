// Package logger provides leveled structured logging for the whole service.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var log = zerolog.New(os.Stderr).With().Timestamp().Logger()

// Init configures the default logger. Level is one of debug, info, warn,
// error; format is "json" or "text" (console writer).
func Init(level string, format string) {
	var l zerolog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = zerolog.DebugLevel
	case "info":
		l = zerolog.InfoLevel
	case "warn":
		l = zerolog.WarnLevel
	case "error":
		l = zerolog.ErrorLevel
	default:
		l = zerolog.InfoLevel
	}

	var w io.Writer = os.Stderr
	if strings.ToLower(format) == "text" {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	log = zerolog.New(w).Level(l).With().Timestamp().Logger()
}

func Debug(format string, args ...any) {
	log.Debug().Msgf(format, args...)
}

func Info(format string, args ...any) {
	log.Info().Msgf(format, args...)
}

func Warn(format string, args ...any) {
	log.Warn().Msgf(format, args...)
}

func Error(format string, args ...any) {
	log.Error().Msgf(format, args...)
}

// Fatal logs the message and exits the process.
func Fatal(format string, args ...any) {
	log.Fatal().Msgf(format, args...)
}
