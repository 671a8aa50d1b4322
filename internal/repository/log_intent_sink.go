package repository

import (
	"context"

	"ApexCore/internal/domain/models"
	"ApexCore/internal/domain/repository"
	applogger "ApexCore/pkg/logger"
)

// LogIntentSink implements IntentSink by writing intents to the structured
// log. Used for dry runs and local development where no broker is running.
type LogIntentSink struct {
	l *applogger.Logger
}

// NewLogIntentSink creates a log-backed intent sink.
func NewLogIntentSink(l *applogger.Logger) repository.IntentSink {
	return &LogIntentSink{l: l}
}

func (s *LogIntentSink) Publish(_ context.Context, intent *models.TradeIntent) error {
	s.l.Info("trade intent",
		applogger.String("kind", string(intent.Kind)),
		applogger.String("symbol", intent.Symbol),
		applogger.Int("quantity", intent.Quantity),
		applogger.Float64("price", intent.Price),
		applogger.String("tag", intent.Tag),
		applogger.String("reason", intent.Reason),
		applogger.Time("time", intent.Time),
	)
	return nil
}

func (s *LogIntentSink) Close() error { return nil }
