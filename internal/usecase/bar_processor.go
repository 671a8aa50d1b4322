package usecase

import (
	"context"
	"fmt"
	"time"

	"ApexCore/internal/domain/models"
	drepo "ApexCore/internal/domain/repository"
	"ApexCore/internal/engine"
)

// BarProcessor drives the decision engine with closed bars and routes the
// resulting intents to the configured sink. One instance per instrument;
// calls arrive serialized through the pipeline.
type BarProcessor struct {
	eng     *engine.Engine
	sink    drepo.IntentSink
	status  drepo.StatusPublisher
	tracker *SimAccount
	metrics drepo.Metrics

	guardWasTripped bool
}

// NewBarProcessor creates a new BarProcessor instance. status may be nil.
// tracker is the account the engine reads; it shadows fills so the guard
// has position and realized-trade state to evaluate.
func NewBarProcessor(eng *engine.Engine, sink drepo.IntentSink, status drepo.StatusPublisher, tracker *SimAccount, metrics drepo.Metrics) *BarProcessor {
	return &BarProcessor{eng: eng, sink: sink, status: status, tracker: tracker, metrics: metrics}
}

// Process feeds one bar to the engine and publishes whatever comes back.
func (p *BarProcessor) Process(ctx context.Context, ev *models.BarEvent) error {
	start := time.Now()

	// stops and targets from earlier bars resolve against this bar first
	if p.tracker != nil && ev.Series == models.SeriesPrimary {
		p.tracker.MarkBar(ev.Bar)
	}

	intents := p.eng.OnBar(ev)
	p.metrics.RecordBar(string(ev.Series), ev.Symbol)
	if ev.Series == models.SeriesPrimary {
		p.metrics.RecordLastPrice(ev.Symbol, ev.Bar.Close)
	}

	for i := range intents {
		intent := &intents[i]
		if err := p.sink.Publish(ctx, intent); err != nil {
			p.metrics.RecordError("intent_publish")
			return fmt.Errorf("publish intent %s: %w", intent.Kind, err)
		}
		p.metrics.RecordIntent(string(intent.Kind), intent.Reason)
		if p.tracker != nil {
			_ = p.tracker.Publish(ctx, intent)
		}
	}

	g := p.eng.Guard()
	if g.Tripped() && !p.guardWasTripped {
		p.metrics.RecordGuardTrip(g.Reason())
	}
	p.guardWasTripped = g.Tripped()

	if p.status != nil && ev.Series == models.SeriesPrimary {
		if err := p.status.Publish(ctx, p.eng.Status()); err != nil {
			// advisory path; never fail the bar over it
			p.metrics.RecordError("status_publish")
		}
	}

	p.metrics.RecordLatency("on_bar", time.Since(start).Seconds())
	return nil
}

// Engine exposes the underlying engine for status reads.
func (p *BarProcessor) Engine() *engine.Engine { return p.eng }

// Close closes the intent sink.
func (p *BarProcessor) Close() {
	if p.sink != nil {
		_ = p.sink.Close()
	}
	if p.status != nil {
		_ = p.status.Close()
	}
}
