package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const serviceName = "logist-service"

// New builds the process logger: human readable output in development, JSON otherwise.
func New(environment, level string) zerolog.Logger {
	var output io.Writer = os.Stdout
	if environment == "" || environment == "development" {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano

	return zerolog.New(output).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger().
		Level(ParseLevel(level))
}

func ParseLevel(value string) zerolog.Level {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return zerolog.InfoLevel
	}
	if lvl, err := zerolog.ParseLevel(value); err == nil {
		return lvl
	}
	return zerolog.InfoLevel
}
