package repository

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"ApexCore/internal/domain/models"
	pkgcache "ApexCore/pkg/cache"
)

func TestStatusRoundTrip(t *testing.T) {
	p := NewCacheStatusPublisher(pkgcache.NewMemoryCache(), time.Minute)

	st := &models.EngineStatus{
		Symbol:       "NQ",
		BarTime:      time.Date(2024, 1, 2, 9, 31, 0, 0, time.UTC),
		Session:      "ny",
		VWAP:         17001.25,
		TrendRegime:  true,
		ADX:          24.5,
		PendingSide:  "long",
		GuardTripped: false,
		DailyPnl:     -125,
	}
	if err := p.Publish(context.Background(), st); err != nil {
		t.Fatalf("publish: %v", err)
	}

	got, err := p.Latest(context.Background(), "NQ")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if got.Symbol != st.Symbol || !got.BarTime.Equal(st.BarTime) {
		t.Fatalf("identity mismatch: %+v", got)
	}
	if got.VWAP != st.VWAP || got.ADX != st.ADX || got.DailyPnl != st.DailyPnl {
		t.Fatalf("numeric fields mismatch: %+v", got)
	}
	if !got.TrendRegime || got.PendingSide != "long" {
		t.Fatalf("state fields mismatch: %+v", got)
	}
}

func TestStatusPublishWithNotReadyValues(t *testing.T) {
	p := NewCacheStatusPublisher(pkgcache.NewMemoryCache(), time.Minute)

	// Between sessions and during warmup the engine reports NaN.
	st := &models.EngineStatus{
		Symbol:      "NQ",
		BarTime:     time.Date(2024, 1, 2, 8, 45, 0, 0, time.UTC),
		Session:     "none",
		VWAP:        math.NaN(),
		VWAPSlope:   math.NaN(),
		ORRatio:     math.NaN(),
		ADX:         math.NaN(),
		ATR:         math.Inf(1),
		RSI:         math.NaN(),
		DailyPnl:    -50,
		GuardReason: "",
	}
	if err := p.Publish(context.Background(), st); err != nil {
		t.Fatalf("publish with not-ready values: %v", err)
	}

	got, err := p.Latest(context.Background(), "NQ")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	for name, v := range map[string]float64{
		"vwap": got.VWAP, "vwap_slope": got.VWAPSlope, "or_ratio": got.ORRatio,
		"adx": got.ADX, "atr": got.ATR, "rsi": got.RSI,
	} {
		if v != 0 {
			t.Fatalf("%s: got %v, want 0", name, v)
		}
	}
	if got.DailyPnl != -50 || got.Symbol != "NQ" {
		t.Fatalf("finite fields altered: %+v", got)
	}
	// the caller's snapshot is untouched
	if !math.IsNaN(st.VWAP) {
		t.Fatal("publish mutated the input snapshot")
	}
}

func TestStatusMissIsErrNoStatus(t *testing.T) {
	p := NewCacheStatusPublisher(pkgcache.NewMemoryCache(), time.Minute)

	if _, err := p.Latest(context.Background(), "ES"); !errors.Is(err, ErrNoStatus) {
		t.Fatalf("want ErrNoStatus, got %v", err)
	}
}

func TestStatusOverwriteKeepsLatest(t *testing.T) {
	p := NewCacheStatusPublisher(pkgcache.NewMemoryCache(), time.Minute)

	first := &models.EngineStatus{Symbol: "NQ", BarsProcessed: 1}
	second := &models.EngineStatus{Symbol: "NQ", BarsProcessed: 2, GuardTripped: true, GuardReason: "daily_loss_cap"}
	if err := p.Publish(context.Background(), first); err != nil {
		t.Fatalf("publish first: %v", err)
	}
	if err := p.Publish(context.Background(), second); err != nil {
		t.Fatalf("publish second: %v", err)
	}

	got, err := p.Latest(context.Background(), "NQ")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if got.BarsProcessed != 2 || !got.GuardTripped || got.GuardReason != "daily_loss_cap" {
		t.Fatalf("stale snapshot returned: %+v", got)
	}
}
