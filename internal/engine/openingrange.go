package engine

import (
	"math"
	"time"

	"ApexCore/internal/domain/models"
)

// atrDailyFallbackMult scales intraday ATR into a daily ATR stand-in while
// the daily series is still warming up.
const atrDailyFallbackMult = 2.0

// OpeningRange captures the high-low range of the first minutes of a
// session, then freezes and reports the range as a fraction of daily ATR.
type OpeningRange struct {
	minutes int

	high  float64
	low   float64
	done  bool
	start time.Time
	rng   float64
	ratio float64
}

func NewOpeningRange(minutes int) *OpeningRange {
	return &OpeningRange{
		minutes: minutes,
		high:    math.NaN(),
		low:     math.NaN(),
	}
}

// Update extends the range while inside the capture window and freezes it on
// the first bar beyond it. dailyATR of 0 or less leaves the ratio at 0.
func (o *OpeningRange) Update(bar models.Bar, inSession bool, dailyATR float64) {
	if !inSession || o.done {
		return
	}

	if bar.Time.Sub(o.start) < time.Duration(o.minutes)*time.Minute {
		if math.IsNaN(o.high) || bar.High > o.high {
			o.high = bar.High
		}
		if math.IsNaN(o.low) || bar.Low < o.low {
			o.low = bar.Low
		}
		return
	}

	o.done = true
	o.rng = o.high - o.low
	if dailyATR > 0 {
		o.ratio = o.rng / dailyATR
	} else {
		o.ratio = 0
	}
}

// Done reports whether the capture window has closed.
func (o *OpeningRange) Done() bool { return o.done }

// Range returns the frozen high-low range, 0 until done.
func (o *OpeningRange) Range() float64 { return o.rng }

// Ratio returns range divided by daily ATR, 0 until done.
func (o *OpeningRange) Ratio() float64 { return o.ratio }

// High returns the captured high, NaN before the first in-window bar.
func (o *OpeningRange) High() float64 { return o.high }

// Low returns the captured low, NaN before the first in-window bar.
func (o *OpeningRange) Low() float64 { return o.low }

// Reset re-anchors the window at a new session start.
func (o *OpeningRange) Reset(start time.Time) {
	o.high = math.NaN()
	o.low = math.NaN()
	o.done = false
	o.start = start
	o.rng = 0
	o.ratio = 0
}
