package models

import "time"

// Bar is one OHLCV sample for a single instrument-timeframe.
// Bars are immutable once produced; the engine only ever appends.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Range returns the high-low span of the bar.
func (b Bar) Range() float64 { return b.High - b.Low }

// TypicalPrice returns (H+L+C)/3, the price used by VWAP and WaveTrend.
func (b Bar) TypicalPrice() float64 { return (b.High + b.Low + b.Close) / 3.0 }

// IsBullish reports whether the bar closed above its open.
func (b Bar) IsBullish() bool { return b.Close > b.Open }

// IsBearish reports whether the bar closed below its open.
func (b Bar) IsBearish() bool { return b.Close < b.Open }

// BarEvent tags a closed bar with the series it belongs to. The engine
// consumes a single ordered stream of these; which series fired is always
// explicit, never inferred.
type BarEvent struct {
	Series Series
	Symbol string
	Bar    Bar
}
