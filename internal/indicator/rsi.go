package indicator

import "math"

// RSI is Wilder's relative strength index: up and down moves are averaged
// with Wilder smoothing seeded by a simple average, and the index line itself
// carries no extra smoothing pass.
type RSI struct {
	length    int
	avgUp     float64
	avgDown   float64
	upSum     float64
	downSum   float64
	count     int
	prevClose float64
}

// NewRSI creates an RSI of the given length.
func NewRSI(length int) *RSI {
	return &RSI{length: length, prevClose: math.NaN()}
}

// Update folds one close into the index and returns the current value,
// NaN until length+1 closes have been seen.
func (r *RSI) Update(close float64) float64 {
	if math.IsNaN(r.prevClose) {
		r.prevClose = close
		return math.NaN()
	}
	up, down := 0.0, 0.0
	if d := close - r.prevClose; d > 0 {
		up = d
	} else {
		down = -d
	}
	r.prevClose = close
	r.count++

	n := float64(r.length)
	switch {
	case r.count < r.length:
		r.upSum += up
		r.downSum += down
		return math.NaN()
	case r.count == r.length:
		r.upSum += up
		r.downSum += down
		r.avgUp = r.upSum / n
		r.avgDown = r.downSum / n
	default:
		r.avgUp = (r.avgUp*(n-1) + up) / n
		r.avgDown = (r.avgDown*(n-1) + down) / n
	}
	return r.Value()
}

// Value returns the current index in [0,100], NaN until ready.
func (r *RSI) Value() float64 {
	if r.count < r.length {
		return math.NaN()
	}
	if r.avgDown == 0 {
		if r.avgUp == 0 {
			return 50
		}
		return 100
	}
	rs := r.avgUp / r.avgDown
	return 100 - 100/(1+rs)
}

// Ready reports whether the index has a defined value.
func (r *RSI) Ready() bool { return r.count >= r.length }

// Reset clears all state.
func (r *RSI) Reset() {
	r.avgUp, r.avgDown = 0, 0
	r.upSum, r.downSum = 0, 0
	r.count = 0
	r.prevClose = math.NaN()
}
