package indicator

import (
	"math"
	"testing"
)

func TestATRConstantRange(t *testing.T) {
	a := NewATR(5)

	for i := 0; i < 4; i++ {
		if got := a.Update(110, 100, 105); !math.IsNaN(got) {
			t.Fatalf("bar %d: expected NaN before seed window, got %v", i, got)
		}
	}
	if a.Ready() {
		t.Fatal("ready before seed window filled")
	}
	if got := a.Update(110, 100, 105); !almostEqual(got, 10) {
		t.Fatalf("seed value: got %v, want 10", got)
	}
	if !a.Ready() {
		t.Fatal("not ready after seed window")
	}
	// Identical bars keep the smoothed value fixed.
	for i := 0; i < 20; i++ {
		if got := a.Update(110, 100, 105); !almostEqual(got, 10) {
			t.Fatalf("steady state bar %d: got %v, want 10", i, got)
		}
	}
}

func TestATRGapUsesPreviousClose(t *testing.T) {
	a := NewATR(2)
	a.Update(110, 100, 105)
	a.Update(110, 100, 105) // seed = 10
	// Gap up: range 5 but distance from prior close is 25.
	got := a.Update(130, 125, 128)
	want := 10 - 10.0/2 + 25.0/2
	if !almostEqual(got, want) {
		t.Fatalf("gap bar: got %v, want %v", got, want)
	}
}

func TestATRReplayDeterminism(t *testing.T) {
	bars := [][3]float64{
		{101, 99, 100}, {103, 100, 102}, {104, 101, 103},
		{102, 98, 99}, {100, 97, 98}, {105, 99, 104},
	}
	a, b := NewATR(3), NewATR(3)
	for _, bar := range bars {
		a.Update(bar[0], bar[1], bar[2])
	}
	b.Reset()
	for _, bar := range bars {
		b.Update(bar[0], bar[1], bar[2])
	}
	if !almostEqual(a.Value(), b.Value()) {
		t.Fatalf("replay diverged: %v vs %v", a.Value(), b.Value())
	}
}
