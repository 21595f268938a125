package cli

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// newLogger builds a console logger whose level is controlled by the
// WEBDEX_LOG_LEVEL environment variable (debug, info, warn, error),
// defaulting to info.
func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if v := strings.TrimSpace(os.Getenv("WEBDEX_LOG_LEVEL")); v != "" {
		if l, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = l
		}
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}
