package indicator

import (
	"math"
	"testing"
)

func TestSMAWindow(t *testing.T) {
	s := NewSMA(3)

	if !math.IsNaN(s.Value()) {
		t.Fatalf("expected NaN before first sample, got %v", s.Value())
	}
	s.Update(3)
	s.Update(6)
	if got := s.Value(); !almostEqual(got, 4.5) {
		t.Fatalf("partial window: got %v, want 4.5", got)
	}
	if s.Ready() {
		t.Fatal("ready before window filled")
	}
	s.Update(9)
	if got := s.Value(); !almostEqual(got, 6) {
		t.Fatalf("full window: got %v, want 6", got)
	}
	s.Update(12) // evicts 3
	if got := s.Value(); !almostEqual(got, 9) {
		t.Fatalf("rolled window: got %v, want 9", got)
	}
}

func TestSMAStdDevPopulation(t *testing.T) {
	s := NewSMA(8)
	for _, v := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		s.Update(v)
	}
	if got := s.StdDev(); !almostEqual(got, 2) {
		t.Fatalf("stddev: got %v, want 2", got)
	}
}
