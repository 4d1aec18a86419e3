package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Setup builds the root logger and installs its level globally. Format
// "pretty" renders a human console writer for development; anything else
// emits JSON lines. Unknown level strings fall back to info.
func Setup(level, format string) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(level))

	return zerolog.New(pickWriter(format)).
		With().
		Timestamp().
		Caller().
		Logger()
}

func pickWriter(format string) io.Writer {
	if strings.EqualFold(format, "pretty") {
		return zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}
	return os.Stdout
}

func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}
