package engine

import (
	"math"

	"ApexCore/internal/domain/models"
)

// vwapSlopeLookback is the bar distance the slope is measured over.
const vwapSlopeLookback = 5

// SessionVWAP is a session-anchored volume-weighted average price with a
// short history for slope measurement. NaN until the first in-session bar.
type SessionVWAP struct {
	cumPV   float64
	cumV    float64
	value   float64
	history []float64
}

func NewSessionVWAP() *SessionVWAP {
	return &SessionVWAP{
		value:   math.NaN(),
		history: make([]float64, 0, vwapSlopeLookback+1),
	}
}

// Update folds one bar into the session accumulators. Out-of-session bars
// blank the value without touching the accumulators; the next session start
// resets them anyway.
func (v *SessionVWAP) Update(bar models.Bar, inSession bool) {
	if !inSession {
		v.value = math.NaN()
		return
	}

	vol := bar.Volume
	if vol <= 0 {
		vol = 1
	}
	v.cumPV += bar.TypicalPrice() * vol
	v.cumV += vol

	if v.cumV > 0 {
		v.value = v.cumPV / v.cumV
	} else {
		v.value = bar.TypicalPrice()
	}

	v.history = append(v.history, v.value)
	if len(v.history) > vwapSlopeLookback+1 {
		v.history = v.history[1:]
	}
}

// Value returns the current session VWAP, NaN before the first in-session bar.
func (v *SessionVWAP) Value() float64 { return v.value }

// Slope returns the ATR-normalized change over the lookback window, 0 while
// the history is short or the ATR is degenerate.
func (v *SessionVWAP) Slope(atr float64) float64 {
	if len(v.history) <= vwapSlopeLookback {
		return 0
	}
	if atr <= 0 || math.IsNaN(atr) {
		return 0
	}
	cur := v.history[len(v.history)-1]
	prev := v.history[len(v.history)-1-vwapSlopeLookback]
	return (cur - prev) / atr
}

// Reset clears the accumulators at a session boundary.
func (v *SessionVWAP) Reset() {
	v.cumPV = 0
	v.cumV = 0
	v.value = math.NaN()
	v.history = v.history[:0]
}
