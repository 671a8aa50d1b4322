package indicator

import "math"

// ATR is Wilder's average true range. The first value is a simple average of
// the first length true ranges; afterwards each bar folds in as
// atr = atr - atr/length + tr/length.
type ATR struct {
	length    int
	value     float64
	seedSum   float64
	count     int
	prevClose float64
}

// NewATR creates an ATR of the given length.
func NewATR(length int) *ATR {
	return &ATR{length: length, value: math.NaN(), prevClose: math.NaN()}
}

// Update folds one bar into the range and returns the current value,
// NaN until length bars have been seen.
func (a *ATR) Update(high, low, close float64) float64 {
	tr := high - low
	if !math.IsNaN(a.prevClose) {
		tr = math.Max(tr, math.Max(math.Abs(high-a.prevClose), math.Abs(low-a.prevClose)))
	}
	a.prevClose = close
	a.count++

	switch {
	case a.count < a.length:
		a.seedSum += tr
	case a.count == a.length:
		a.seedSum += tr
		a.value = a.seedSum / float64(a.length)
	default:
		a.value = a.value - a.value/float64(a.length) + tr/float64(a.length)
	}
	return a.value
}

// Value returns the current range, NaN until ready.
func (a *ATR) Value() float64 { return a.value }

// Ready reports whether a full seed window has been seen.
func (a *ATR) Ready() bool { return a.count >= a.length }

// Reset clears all state including the previous close.
func (a *ATR) Reset() {
	a.value = math.NaN()
	a.prevClose = math.NaN()
	a.seedSum = 0
	a.count = 0
}
