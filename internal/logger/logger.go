// Package logger provides JSON structured logging using zerolog
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Level      string `json:"level"`
	Debug      bool   `json:"debug"`
	Output     string `json:"output"`
	TimeFormat string `json:"time_format"`
}

// Logger is the logging surface handed to services and controllers.
type Logger interface {
	Debug() *zerolog.Event
	Info() *zerolog.Event
	Warn() *zerolog.Event
	Error() *zerolog.Event
	Fatal() *zerolog.Event
	With() zerolog.Context
	WithComponent(component string) Logger
	// Close releases the log file when one was opened by New. Loggers
	// derived through WithComponent share the file and close nothing.
	Close() error
}

type zeroLogger struct {
	zl     zerolog.Logger
	closer io.Closer
}

// New builds a Logger from config. Output is "stdout" (the default),
// "stderr", or a file path that is appended to.
func New(config Config) (Logger, error) {
	level := zerolog.InfoLevel

	if config.Debug {
		level = zerolog.DebugLevel
	} else if config.Level != "" {
		var err error

		level, err = zerolog.ParseLevel(config.Level)
		if err != nil {
			return nil, err
		}
	}

	var (
		output io.Writer = os.Stdout
		closer io.Closer
	)

	switch config.Output {
	case "", "stdout":
	case "stderr":
		output = os.Stderr
	default:
		f, err := os.OpenFile(config.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}

		output, closer = f, f
	}

	if config.TimeFormat != "" {
		zerolog.TimeFieldFormat = config.TimeFormat
	} else {
		zerolog.TimeFieldFormat = time.RFC3339
	}

	zl := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	log.Logger = zl

	return &zeroLogger{zl: zl, closer: closer}, nil
}

// Wrap adapts an existing zerolog.Logger.
func Wrap(zl zerolog.Logger) Logger {
	return &zeroLogger{zl: zl}
}

func (l *zeroLogger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *zeroLogger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *zeroLogger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *zeroLogger) Error() *zerolog.Event { return l.zl.Error() }
func (l *zeroLogger) Fatal() *zerolog.Event { return l.zl.Fatal() }
func (l *zeroLogger) With() zerolog.Context { return l.zl.With() }

func (l *zeroLogger) WithComponent(component string) Logger {
	return &zeroLogger{zl: l.zl.With().Str("component", component).Logger()}
}

func (l *zeroLogger) Close() error {
	if l.closer == nil {
		return nil
	}

	return l.closer.Close()
}

// NewTestLogger creates a no-op logger for testing that discards all output
func NewTestLogger() Logger {
	return &zeroLogger{zl: zerolog.New(io.Discard).Level(zerolog.Disabled)}
}
