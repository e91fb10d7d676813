package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures zerolog for the process: human-readable console output
// outside production, JSON lines in production.
func Setup(environment, level string) zerolog.Logger {
	var writer io.Writer = os.Stdout
	if environment != "prod" && environment != "production" {
		writer = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	}
	return SetupWithWriter(writer, environment, level)
}

// SetupWithWriter is Setup with an explicit destination.
func SetupWithWriter(writer io.Writer, environment, level string) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		parsed = zerolog.InfoLevel
		if environment == "development" {
			parsed = zerolog.DebugLevel
		}
	}

	logger := zerolog.New(writer).With().Timestamp().Logger().Level(parsed)
	log.Logger = logger
	return logger
}
