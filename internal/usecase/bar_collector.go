package usecase

import (
	"context"
	"time"

	"ApexCore/internal/domain/models"
	drepo "ApexCore/internal/domain/repository"
	mid "ApexCore/internal/middleware"
)

// BarCollector collects bars from the feed and pushes them through the
// pipeline into the engine.
type BarCollector struct {
	stream  drepo.BarStream
	proc    *BarProcessor
	metrics drepo.Metrics
	pipe    *mid.BarPipeline
}

// NewBarCollector creates a new BarCollector instance.
func NewBarCollector(stream drepo.BarStream, proc *BarProcessor, metrics drepo.Metrics, pipe *mid.BarPipeline) *BarCollector {
	return &BarCollector{stream: stream, proc: proc, metrics: metrics, pipe: pipe}
}

// IsConnected returns true if the bar stream is connected.
func (c *BarCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *BarCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	barCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, barCh, errCh)
	return nil
}

func (c *BarCollector) consume(ctx context.Context, barCh <-chan *models.BarEvent, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				c.metrics.RecordError("stream")
				var reopened bool
				if barCh, errCh, reopened = c.reopen(ctx); !reopened {
					return
				}
			}
		case ev, ok := <-barCh:
			if !ok {
				// the feed's read loop exited; bring the stream back up
				var reopened bool
				if barCh, errCh, reopened = c.reopen(ctx); !reopened {
					return
				}
				continue
			}
			if ev == nil {
				continue
			}
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, ev)
			} else {
				_ = c.proc.Process(ctx, ev)
			}
		}
	}
}

// reopen reconnects the stream and re-establishes its channels. The old
// channels are dead once the feed's read loop exits, so consuming again
// requires a fresh Read. Retries until the context is cancelled.
func (c *BarCollector) reopen(ctx context.Context) (<-chan *models.BarEvent, <-chan error, bool) {
	for {
		if ctx.Err() != nil {
			return nil, nil, false
		}
		if err := c.stream.Reconnect(ctx); err != nil {
			c.metrics.RecordError("reconnect")
			select {
			case <-ctx.Done():
				return nil, nil, false
			case <-time.After(time.Second):
			}
			continue
		}
		barCh, errCh := c.stream.Read(ctx)
		return barCh, errCh, true
	}
}

func (c *BarCollector) Stop() error { return c.stream.Close() }

// Processor returns the underlying BarProcessor for lifecycle management.
func (c *BarCollector) Processor() *BarProcessor { return c.proc }

// Shutdown closes the stream and the processor's sinks.
func (c *BarCollector) Shutdown(ctx context.Context) error {
	err := c.stream.Close()
	c.proc.Close()
	return err
}
