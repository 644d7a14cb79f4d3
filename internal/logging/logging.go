package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"tradeboard/internal/config"
)

// New builds a logger writing to w, or stderr when w is nil. Unknown levels
// fall back to info.
func New(cfg config.LoggingConfig, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	zerolog.TimeFieldFormat = time.RFC3339

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	out := w
	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: true}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Str("app", "tradeboard").Logger()
}
