package repository

import (
	"context"
	"time"

	"ApexCore/internal/domain/models"
)

// BarStream is an inbound feed of closed bars for all configured series.
type BarStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.BarEvent, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// IntentSink receives trade intents, fire-and-forget.
type IntentSink interface {
	Publish(ctx context.Context, intent *models.TradeIntent) error
	Close() error
}

// AccountState is the read-only view of position and realized trades that
// the host platform exposes to the engine.
type AccountState interface {
	Position() models.Position
	ClosedTrades(since time.Time) []models.ClosedTrade
}

// BarArchive provides historical bars for deterministic replay.
type BarArchive interface {
	Bars(ctx context.Context, symbol string, series models.Series, from, to time.Time) ([]models.Bar, error)
	Health(ctx context.Context) error
	Close() error
}

// StatusPublisher records the latest engine snapshot for dashboards.
type StatusPublisher interface {
	Publish(ctx context.Context, status *models.EngineStatus) error
	Close() error
}

// Metrics abstracts the Prometheus recorder.
type Metrics interface {
	RecordBar(series, symbol string)
	RecordIntent(kind, reason string)
	RecordGuardTrip(reason string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
