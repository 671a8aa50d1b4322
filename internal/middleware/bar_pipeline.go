package middleware

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"ApexCore/internal/domain/models"
	domrepo "ApexCore/internal/domain/repository"
)

// Proc is the minimal processor interface the pipeline needs.
type Proc interface {
	Process(ctx context.Context, ev *models.BarEvent) error
}

// BarPipeline sits between the feed and the engine. It validates bars,
// drops events for foreign symbols, and rejects anything that would break
// the one-ordered-stream contract: a bar older than the last one seen on
// its series is a feed fault, never something to hand the engine.
type BarPipeline struct {
	proc    Proc
	metrics domrepo.Metrics
	symbol  string

	mu       sync.Mutex
	lastSeen map[models.Series]time.Time
}

type PipelineOption func(*BarPipeline)

// WithSymbol restricts the pipeline to a single instrument.
func WithSymbol(symbol string) PipelineOption {
	return func(p *BarPipeline) { p.symbol = symbol }
}

// NewBarPipeline creates a new pipeline.
func NewBarPipeline(proc Proc, metrics domrepo.Metrics, opts ...PipelineOption) *BarPipeline {
	p := &BarPipeline{
		proc:     proc,
		metrics:  metrics,
		lastSeen: make(map[models.Series]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process validates and forwards one bar event to the engine. Calls are
// serialized: the engine is single-threaded and must see bars in order.
func (p *BarPipeline) Process(ctx context.Context, ev *models.BarEvent) error {
	start := time.Now()
	if err := validateBarEvent(ev); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}
	if p.symbol != "" && ev.Symbol != p.symbol {
		// another instrument on the shared feed; not ours
		return nil
	}

	p.mu.Lock()
	last := p.lastSeen[ev.Series]
	if ev.Bar.Time.Before(last) {
		p.mu.Unlock()
		p.metrics.RecordError("pipeline_out_of_order")
		return fmt.Errorf("bar out of order: series=%s bar=%s last=%s",
			ev.Series, ev.Bar.Time.Format(time.RFC3339), last.Format(time.RFC3339))
	}
	if ev.Bar.Time.Equal(last) && !last.IsZero() {
		// duplicate delivery after a reconnect; already processed
		p.mu.Unlock()
		p.metrics.RecordError("pipeline_duplicate")
		return nil
	}
	p.lastSeen[ev.Series] = ev.Bar.Time

	err := p.proc.Process(ctx, ev)
	p.mu.Unlock()
	if err != nil {
		p.metrics.RecordError("pipeline_process")
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("pipeline_process", time.Since(start).Seconds())
	return nil
}

func validateBarEvent(ev *models.BarEvent) error {
	if ev == nil {
		return fmt.Errorf("bar event nil")
	}
	if ev.Symbol == "" {
		return fmt.Errorf("symbol empty")
	}
	if !models.IsValidSeries(ev.Series) {
		return fmt.Errorf("unknown series: %s", ev.Series)
	}
	b := ev.Bar
	if b.Time.IsZero() {
		return fmt.Errorf("bar time zero")
	}
	for _, v := range []float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("bar has non-finite field")
		}
	}
	if b.High < b.Low {
		return fmt.Errorf("bar high below low")
	}
	if b.Volume < 0 {
		return fmt.Errorf("negative volume")
	}
	return nil
}
