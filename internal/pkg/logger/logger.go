package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config represents logger configuration
type Config struct {
	Level       string // debug, info, warn, error
	Environment string // development, production, test
	Output      io.Writer
}

// Init configures the global zerolog logger. Development gets the console
// writer, everything else JSON lines.
func Init(cfg Config) {
	zerolog.TimeFieldFormat = time.RFC3339

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	if cfg.Environment == "development" || cfg.Environment == "dev" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"})
		return
	}
	log.Logger = zerolog.New(out).With().Timestamp().Caller().Logger()
}

type contextKey struct{}

// FromContext returns the request logger or the global logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if l, ok := ctx.Value(contextKey{}).(*zerolog.Logger); ok && l != nil {
		return l
	}
	return &log.Logger
}

// WithContext returns a context carrying l.
func WithContext(ctx context.Context, l *zerolog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// With derives a child of the context logger with one more string field and
// stores it back into the context.
func With(ctx context.Context, key, value string) context.Context {
	child := FromContext(ctx).With().Str(key, value).Logger()
	return WithContext(ctx, &child)
}
