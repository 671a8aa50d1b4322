package indicator

import "math"

// SMA is a simple moving average over a fixed window.
type SMA struct {
	window []float64
	next   int
	count  int
	sum    float64
}

// NewSMA creates an SMA over the given window length.
func NewSMA(length int) *SMA {
	return &SMA{window: make([]float64, length)}
}

// Update folds one sample into the window and returns the current value.
// Until the window is full the value averages the samples seen so far.
func (s *SMA) Update(sample float64) float64 {
	if s.count == len(s.window) {
		s.sum -= s.window[s.next]
	} else {
		s.count++
	}
	s.window[s.next] = sample
	s.sum += sample
	s.next = (s.next + 1) % len(s.window)
	return s.Value()
}

// Value returns the current average, NaN before the first sample.
func (s *SMA) Value() float64 {
	if s.count == 0 {
		return math.NaN()
	}
	return s.sum / float64(s.count)
}

// Ready reports whether the window is full.
func (s *SMA) Ready() bool { return s.count == len(s.window) }

// Count returns the number of samples folded in, capped at the window length.
func (s *SMA) Count() int { return s.count }

// StdDev returns the population standard deviation of the samples currently
// in the window. Recomputed from the ring; windows are short.
func (s *SMA) StdDev() float64 {
	if s.count == 0 {
		return math.NaN()
	}
	mean := s.sum / float64(s.count)
	var acc float64
	for i := 0; i < s.count; i++ {
		d := s.window[i] - mean
		acc += d * d
	}
	return math.Sqrt(acc / float64(s.count))
}

// Reset clears the window.
func (s *SMA) Reset() {
	s.next = 0
	s.count = 0
	s.sum = 0
}
