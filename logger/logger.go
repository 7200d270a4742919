package logger

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New returns the service-wide structured logger. LOG_LEVEL selects the
// level (default info); LOG_FORMAT=console switches from JSON to a
// human-readable writer for local development.
func New(service string) zerolog.Logger {
	var out = zerolog.New(os.Stdout)
	if os.Getenv("LOG_FORMAT") == "console" {
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"})
	}

	return out.With().
		Timestamp().
		Str("service", service).
		Logger().
		Level(ParseLevel(os.Getenv("LOG_LEVEL")))
}

// ParseLevel maps a level string to a zerolog level, defaulting to info.
func ParseLevel(value string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(value)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
