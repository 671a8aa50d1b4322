package indicator

import "math"

// ADX is a running directional index. Directional movement and true range
// accumulate as raw sums over the first length bars, then fold in as
// smoothed = smoothed - smoothed/length + new; the DX line is smoothed the
// same way. The scale therefore runs above the textbook 0..100 band, and the
// trend threshold is calibrated against this variant.
type ADX struct {
	length   int
	smDMPlus float64
	smDMMin  float64
	smTR     float64
	smDX     float64
	count    int
	prevHigh float64
	prevLow  float64
	prevClos float64
	seeded   bool
}

// NewADX creates a directional index of the given length.
func NewADX(length int) *ADX {
	return &ADX{
		length:   length,
		smDX:     math.NaN(),
		prevHigh: math.NaN(),
		prevLow:  math.NaN(),
		prevClos: math.NaN(),
	}
}

// Update folds one bar into the index and returns the current value,
// NaN until length movement samples have been seen.
func (a *ADX) Update(high, low, close float64) float64 {
	if math.IsNaN(a.prevClos) {
		a.prevHigh, a.prevLow, a.prevClos = high, low, close
		return math.NaN()
	}

	upMove := high - a.prevHigh
	downMove := a.prevLow - low
	dmPlus, dmMinus := 0.0, 0.0
	if upMove > downMove && upMove > 0 {
		dmPlus = upMove
	}
	if downMove > upMove && downMove > 0 {
		dmMinus = downMove
	}
	tr := math.Max(high-low, math.Max(math.Abs(high-a.prevClos), math.Abs(low-a.prevClos)))
	a.prevHigh, a.prevLow, a.prevClos = high, low, close
	a.count++

	n := float64(a.length)
	if a.count <= a.length {
		a.smDMPlus += dmPlus
		a.smDMMin += dmMinus
		a.smTR += tr
		if a.count < a.length {
			return math.NaN()
		}
	} else {
		a.smDMPlus = a.smDMPlus - a.smDMPlus/n + dmPlus
		a.smDMMin = a.smDMMin - a.smDMMin/n + dmMinus
		a.smTR = a.smTR - a.smTR/n + tr
	}

	dx := 0.0
	if a.smTR > 0 {
		diPlus := 100 * a.smDMPlus / a.smTR
		diMinus := 100 * a.smDMMin / a.smTR
		if sum := diPlus + diMinus; sum > 0 {
			dx = 100 * math.Abs(diPlus-diMinus) / sum
		}
	}
	if !a.seeded {
		a.smDX = dx
		a.seeded = true
	} else {
		a.smDX = a.smDX - a.smDX/n + dx
	}
	return a.smDX
}

// Value returns the current index, NaN until ready.
func (a *ADX) Value() float64 { return a.smDX }

// Ready reports whether enough movement samples have been seen.
func (a *ADX) Ready() bool { return a.count >= a.length }

// Reset clears all state.
func (a *ADX) Reset() {
	a.smDMPlus, a.smDMMin, a.smTR = 0, 0, 0
	a.smDX = math.NaN()
	a.count = 0
	a.prevHigh, a.prevLow, a.prevClos = math.NaN(), math.NaN(), math.NaN()
	a.seeded = false
}
