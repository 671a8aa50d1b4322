package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"ApexCore/internal/domain/models"
	pkgcache "ApexCore/pkg/cache"
)

// ErrNoStatus is returned when no snapshot has been published yet.
var ErrNoStatus = errors.New("status: no snapshot")

// CacheStatusPublisher implements StatusPublisher on top of the cache
// service. Snapshots expire on their own, so a stalled engine surfaces as
// a missing key rather than a stale one.
type CacheStatusPublisher struct {
	c   pkgcache.Service
	ttl time.Duration
}

// NewCacheStatusPublisher creates a cache-backed status publisher.
func NewCacheStatusPublisher(c pkgcache.Service, ttl time.Duration) *CacheStatusPublisher {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CacheStatusPublisher{c: c, ttl: ttl}
}

func (p *CacheStatusPublisher) Publish(ctx context.Context, status *models.EngineStatus) error {
	b, err := json.Marshal(sanitizeStatus(status))
	if err != nil {
		return fmt.Errorf("marshal status: %w", err)
	}
	key := pkgcache.GenerateKey("status", status.Symbol)
	return p.c.Set(ctx, key, string(b), p.ttl)
}

// sanitizeStatus replaces non-finite floats with zero. The engine reports
// NaN while warming up or between sessions, and JSON cannot carry NaN.
func sanitizeStatus(status *models.EngineStatus) *models.EngineStatus {
	st := *status
	for _, f := range []*float64{
		&st.VWAP, &st.VWAPSlope, &st.ORRatio, &st.ADX, &st.ATR, &st.RSI,
		&st.PendingLevel, &st.DailyPnl, &st.PeakEquity,
	} {
		if math.IsNaN(*f) || math.IsInf(*f, 0) {
			*f = 0
		}
	}
	return &st
}

// Latest returns the most recent snapshot for a symbol.
func (p *CacheStatusPublisher) Latest(ctx context.Context, symbol string) (*models.EngineStatus, error) {
	key := pkgcache.GenerateKey("status", symbol)
	var raw string
	if err := p.c.Get(ctx, key, &raw); err != nil {
		if errors.Is(err, pkgcache.ErrCacheMiss) {
			return nil, ErrNoStatus
		}
		return nil, err
	}
	var st models.EngineStatus
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return nil, fmt.Errorf("unmarshal status: %w", err)
	}
	return &st, nil
}

func (p *CacheStatusPublisher) Close() error { return nil }
