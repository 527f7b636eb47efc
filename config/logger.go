package config

import (
	"os"

	"github.com/rs/zerolog"
)

// NewLogger returns a zerolog logger writing to stderr at the configured
// level. Unknown levels fall back to info.
func NewLogger(cfg LogConfig) zerolog.Logger {
	var logger zerolog.Logger
	if cfg.Pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	return logger.Level(level)
}
