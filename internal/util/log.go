package util

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LoggerConfig controls the global zerolog logger
type LoggerConfig struct {
	Level              zerolog.Level
	PrettyPrintConsole bool
	Output             io.Writer
}

// ConfigureLogger sets up the global logger. Logs always go to stderr by default
// so stdout stays reserved for command results.
func ConfigureLogger(cfg LoggerConfig) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.SetGlobalLevel(cfg.Level)

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	if cfg.PrettyPrintConsole {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: "15:04:05",
		})
		return
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

// ParseLogLevel parses a zerolog level name, empty means info
func ParseLogLevel(level string) (zerolog.Level, error) {
	if level == "" {
		return zerolog.InfoLevel, nil
	}

	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.NoLevel, errors.Wrapf(err, "invalid log level %q", level)
	}

	return l, nil
}

// LogFromContext returns the logger attached to ctx, falling back to the global logger
func LogFromContext(ctx context.Context) *zerolog.Logger {
	l := log.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		l = &log.Logger
	}

	return l
}

// WithLogger attaches a component logger to ctx
func WithLogger(ctx context.Context, component string) context.Context {
	l := LogFromContext(ctx).With().Str("component", component).Logger()
	return l.WithContext(ctx)
}
