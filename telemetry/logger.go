package telemetry

import (
	"context"
	"os"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog with service context.
type Logger struct {
	zerolog.Logger
}

// NewLogger creates a new structured logger for the given component.
func NewLogger(component string) *Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	logger := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("component", component).
		Logger()

	return &Logger{Logger: logger}
}

// WithContext returns a logger bound to ctx.
func (l *Logger) WithContext(ctx context.Context) *zerolog.Logger {
	logger := l.Logger.With().Ctx(ctx).Logger()
	return &logger
}

// Convenience methods for collection events. Credentials are never logged.

func (l *Logger) LogAccountSkipped(ctx context.Context, accountID string, err error) {
	l.WithContext(ctx).Error().
		Err(err).
		Str("account_id", accountID).
		Msg("credential delegation failed, skipping account")
}

func (l *Logger) LogCollection(ctx context.Context, accountID, kind, region string, rows int) {
	l.WithContext(ctx).Info().
		Str("account_id", accountID).
		Str("kind", kind).
		Str("region", region).
		Int("rows", rows).
		Msg("collected resources")
}

func (l *Logger) LogCollectionError(ctx context.Context, accountID, kind, region string, err error) {
	l.WithContext(ctx).Error().
		Err(err).
		Str("account_id", accountID).
		Str("kind", kind).
		Str("region", region).
		Msg("collection failed")
}
