package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ApexCore/internal/domain/models"
	mid "ApexCore/internal/middleware"
)

// fakeStream hands out a fresh channel pair per Read call, the way the
// feed client does after a reconnect.
type fakeStream struct {
	mu         sync.Mutex
	pairs      []streamPair
	reads      int
	reconnects int
	connected  bool
}

type streamPair struct {
	bars chan *models.BarEvent
	errs chan error
}

func (s *fakeStream) Connect(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = true
	return nil
}

func (s *fakeStream) Subscribe(context.Context) error { return nil }

func (s *fakeStream) Read(context.Context) (<-chan *models.BarEvent, <-chan error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.reads
	if i >= len(s.pairs) {
		i = len(s.pairs) - 1
	}
	s.reads++
	return s.pairs[i].bars, s.pairs[i].errs
}

func (s *fakeStream) Reconnect(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconnects++
	return nil
}

func (s *fakeStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	return nil
}

func (s *fakeStream) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *fakeStream) stats() (reads, reconnects int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads, s.reconnects
}

type chanProc struct {
	ch chan *models.BarEvent
}

func (p *chanProc) Process(_ context.Context, ev *models.BarEvent) error {
	p.ch <- ev
	return nil
}

type noopMetrics struct{}

func (noopMetrics) RecordBar(series, symbol string)              {}
func (noopMetrics) RecordIntent(kind, reason string)             {}
func (noopMetrics) RecordGuardTrip(reason string)                {}
func (noopMetrics) RecordError(kind string)                      {}
func (noopMetrics) RecordLastPrice(symbol string, price float64) {}
func (noopMetrics) RecordLatency(op string, seconds float64)     {}

func TestCollectorResumesAfterStreamError(t *testing.T) {
	first := streamPair{bars: make(chan *models.BarEvent), errs: make(chan error, 1)}
	second := streamPair{bars: make(chan *models.BarEvent, 1), errs: make(chan error, 1)}

	// the feed's read loop reports the error, then closes both channels
	first.errs <- errors.New("connection reset")
	close(first.bars)
	close(first.errs)

	at := time.Date(2024, 1, 2, 9, 31, 0, 0, time.UTC)
	second.bars <- &models.BarEvent{
		Series: models.SeriesPrimary,
		Symbol: "NQ",
		Bar:    models.Bar{Time: at, Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 10},
	}

	stream := &fakeStream{pairs: []streamPair{first, second}}
	proc := &chanProc{ch: make(chan *models.BarEvent, 1)}
	pipe := mid.NewBarPipeline(proc, noopMetrics{}, mid.WithSymbol("NQ"))
	collector := NewBarCollector(stream, nil, noopMetrics{}, pipe)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := collector.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	select {
	case ev := <-proc.ch:
		if !ev.Bar.Time.Equal(at) {
			t.Fatalf("wrong bar delivered: %v", ev.Bar.Time)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no bar delivered after reconnect")
	}

	reads, reconnects := stream.stats()
	if reconnects < 1 {
		t.Fatalf("reconnects: %d", reconnects)
	}
	if reads < 2 {
		t.Fatalf("stream was not re-read after reconnect: reads=%d", reads)
	}
}
