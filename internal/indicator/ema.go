package indicator

import "math"

// EMA is a standard exponential moving average with alpha = 2/(length+1),
// seeded with the first sample.
type EMA struct {
	length int
	alpha  float64
	value  float64
	count  int
}

// NewEMA creates an EMA of the given length.
func NewEMA(length int) *EMA {
	return &EMA{
		length: length,
		alpha:  2.0 / (float64(length) + 1.0),
		value:  math.NaN(),
	}
}

// Update folds one sample into the average and returns the new value.
func (e *EMA) Update(sample float64) float64 {
	if e.count == 0 {
		e.value = sample
	} else {
		e.value = e.alpha*sample + (1.0-e.alpha)*e.value
	}
	e.count++
	return e.value
}

// Value returns the current average, NaN until the first sample.
func (e *EMA) Value() float64 { return e.value }

// Ready reports whether at least length samples have been folded in.
func (e *EMA) Ready() bool { return e.count >= e.length }

// Reset clears all recurrence state.
func (e *EMA) Reset() {
	e.value = math.NaN()
	e.count = 0
}
