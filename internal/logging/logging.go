package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Log levels.
const (
	LogLevelError = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

type Config struct {
	Level  int
	Output io.Writer
}

// Logger is a thin wrapper around zerolog so that callers do not need to
// depend on the logging backend directly.
type Logger struct {
	logger zerolog.Logger
}

func NewLogger(config Config) *Logger {
	output := config.Output
	if output == nil {
		output = os.Stderr
	}

	writer := zerolog.ConsoleWriter{Out: output, TimeFormat: "15:04:05"}
	logger := zerolog.New(writer).Level(level(config.Level)).With().Timestamp().Logger()

	return &Logger{logger: logger}
}

// WithName returns a child logger annotated with a component name.
func (l *Logger) WithName(name string) *Logger {
	return &Logger{logger: l.logger.With().Str("component", name).Logger()}
}

func (l *Logger) Debugf(format string, args ...any) {
	l.logger.Debug().Msgf(format, args...)
}

func (l *Logger) Infof(format string, args ...any) {
	l.logger.Info().Msgf(format, args...)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.logger.Warn().Msgf(format, args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.logger.Error().Msgf(format, args...)
}

func level(l int) zerolog.Level {
	switch l {
	case LogLevelDebug:
		return zerolog.DebugLevel
	case LogLevelInfo:
		return zerolog.InfoLevel
	case LogLevelWarn:
		return zerolog.WarnLevel
	}
	return zerolog.ErrorLevel
}
