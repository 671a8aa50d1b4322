package middleware

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"ApexCore/internal/domain/models"
)

type fakeProc struct {
	events []*models.BarEvent
	err    error
}

func (p *fakeProc) Process(_ context.Context, ev *models.BarEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

type fakeMetrics struct {
	errs map[string]int
}

func newFakeMetrics() *fakeMetrics { return &fakeMetrics{errs: make(map[string]int)} }

func (m *fakeMetrics) RecordBar(series, symbol string)             {}
func (m *fakeMetrics) RecordIntent(kind, reason string)            {}
func (m *fakeMetrics) RecordGuardTrip(reason string)               {}
func (m *fakeMetrics) RecordError(kind string)                     { m.errs[kind]++ }
func (m *fakeMetrics) RecordLastPrice(symbol string, price float64) {}
func (m *fakeMetrics) RecordLatency(op string, seconds float64)    {}

func barEvent(series models.Series, at time.Time) *models.BarEvent {
	return &models.BarEvent{
		Series: series,
		Symbol: "NQ",
		Bar: models.Bar{
			Time: at, Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 10,
		},
	}
}

func TestPipelineForwardsInOrder(t *testing.T) {
	proc := &fakeProc{}
	p := NewBarPipeline(proc, newFakeMetrics(), WithSymbol("NQ"))

	at := time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if err := p.Process(context.Background(), barEvent(models.SeriesPrimary, at.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("bar %d: %v", i, err)
		}
	}
	if len(proc.events) != 3 {
		t.Fatalf("forwarded %d bars, want 3", len(proc.events))
	}
}

func TestPipelineRejectsOutOfOrder(t *testing.T) {
	proc := &fakeProc{}
	m := newFakeMetrics()
	p := NewBarPipeline(proc, m)

	at := time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)
	if err := p.Process(context.Background(), barEvent(models.SeriesPrimary, at)); err != nil {
		t.Fatalf("first bar: %v", err)
	}
	if err := p.Process(context.Background(), barEvent(models.SeriesPrimary, at.Add(-time.Minute))); err == nil {
		t.Fatal("older bar accepted")
	}
	if m.errs["pipeline_out_of_order"] != 1 {
		t.Fatalf("out_of_order errors: %d", m.errs["pipeline_out_of_order"])
	}
	if len(proc.events) != 1 {
		t.Fatalf("forwarded %d bars, want 1", len(proc.events))
	}
}

func TestPipelineSkipsDuplicate(t *testing.T) {
	proc := &fakeProc{}
	m := newFakeMetrics()
	p := NewBarPipeline(proc, m)

	at := time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)
	if err := p.Process(context.Background(), barEvent(models.SeriesPrimary, at)); err != nil {
		t.Fatalf("first bar: %v", err)
	}
	// redelivery of the same bar is silent
	if err := p.Process(context.Background(), barEvent(models.SeriesPrimary, at)); err != nil {
		t.Fatalf("duplicate bar errored: %v", err)
	}
	if m.errs["pipeline_duplicate"] != 1 {
		t.Fatalf("duplicate counter: %d", m.errs["pipeline_duplicate"])
	}
	if len(proc.events) != 1 {
		t.Fatalf("forwarded %d bars, want 1", len(proc.events))
	}
}

func TestPipelineSeriesAreIndependent(t *testing.T) {
	proc := &fakeProc{}
	p := NewBarPipeline(proc, newFakeMetrics())

	at := time.Date(2024, 1, 2, 9, 45, 0, 0, time.UTC)
	if err := p.Process(context.Background(), barEvent(models.SeriesPrimary, at)); err != nil {
		t.Fatalf("primary: %v", err)
	}
	// trend bar carrying an earlier timestamp than the last primary bar is fine
	if err := p.Process(context.Background(), barEvent(models.SeriesTrend, at.Add(-15*time.Minute))); err != nil {
		t.Fatalf("trend: %v", err)
	}
	if len(proc.events) != 2 {
		t.Fatalf("forwarded %d bars, want 2", len(proc.events))
	}
}

func TestPipelineDropsForeignSymbol(t *testing.T) {
	proc := &fakeProc{}
	p := NewBarPipeline(proc, newFakeMetrics(), WithSymbol("NQ"))

	ev := barEvent(models.SeriesPrimary, time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC))
	ev.Symbol = "ES"
	if err := p.Process(context.Background(), ev); err != nil {
		t.Fatalf("foreign symbol errored: %v", err)
	}
	if len(proc.events) != 0 {
		t.Fatalf("foreign symbol forwarded")
	}
}

func TestPipelineValidation(t *testing.T) {
	at := time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)
	cases := []struct {
		name string
		ev   *models.BarEvent
	}{
		{"nil event", nil},
		{"empty symbol", &models.BarEvent{Series: models.SeriesPrimary, Bar: models.Bar{Time: at, High: 1, Low: 0}}},
		{"unknown series", &models.BarEvent{Series: "weekly", Symbol: "NQ", Bar: models.Bar{Time: at, High: 1, Low: 0}}},
		{"zero time", barEventWith(func(ev *models.BarEvent) { ev.Bar.Time = time.Time{} })},
		{"nan close", barEventWith(func(ev *models.BarEvent) { ev.Bar.Close = math.NaN() })},
		{"inf high", barEventWith(func(ev *models.BarEvent) { ev.Bar.High = math.Inf(1) })},
		{"high below low", barEventWith(func(ev *models.BarEvent) { ev.Bar.High = 98 })},
		{"negative volume", barEventWith(func(ev *models.BarEvent) { ev.Bar.Volume = -1 })},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			proc := &fakeProc{}
			m := newFakeMetrics()
			p := NewBarPipeline(proc, m)
			if err := p.Process(context.Background(), tc.ev); err == nil {
				t.Fatal("invalid bar accepted")
			}
			if m.errs["pipeline_validate"] != 1 {
				t.Fatalf("validate counter: %d", m.errs["pipeline_validate"])
			}
			if len(proc.events) != 0 {
				t.Fatal("invalid bar forwarded")
			}
		})
	}
}

func TestPipelineWrapsDownstreamError(t *testing.T) {
	sentinel := errors.New("engine busy")
	proc := &fakeProc{err: sentinel}
	m := newFakeMetrics()
	p := NewBarPipeline(proc, m)

	err := p.Process(context.Background(), barEvent(models.SeriesPrimary, time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)))
	if !errors.Is(err, sentinel) {
		t.Fatalf("downstream error not wrapped: %v", err)
	}
	if m.errs["pipeline_process"] != 1 {
		t.Fatalf("process counter: %d", m.errs["pipeline_process"])
	}
}

func barEventWith(mut func(*models.BarEvent)) *models.BarEvent {
	ev := barEvent(models.SeriesPrimary, time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC))
	mut(ev)
	return ev
}
