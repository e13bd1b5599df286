// Package logging builds the process-wide zerolog logger: JSON to stdout in
// deployed environments, a console writer for local work.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

func New(environment, level string) (zerolog.Logger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return zerolog.Logger{}, err
	}

	logger := zerolog.New(writerFor(environment)).
		Level(lvl).
		With().
		Timestamp().
		Str("service", "guia").
		Logger()

	return logger, nil
}

// parseLevel maps the LOG_LEVEL knob to a zerolog level, defaulting to info
// when unset.
func parseLevel(level string) (zerolog.Level, error) {
	raw := strings.ToLower(strings.TrimSpace(level))
	if raw == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(raw)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("parse LOG_LEVEL=%q: %w", level, err)
	}
	return lvl, nil
}

func writerFor(environment string) io.Writer {
	if strings.EqualFold(strings.TrimSpace(environment), "local") {
		return zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}
	return os.Stdout
}
