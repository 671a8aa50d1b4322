package indicator

import (
	"math"
	"testing"
)

func trendBar(i int) (high, low, close float64) {
	f := float64(i)
	return f + 2, f, f + 1
}

func TestADXNotReadyUntilWindow(t *testing.T) {
	a := NewADX(3)
	// First bar only primes prev values, the next length-1 accumulate.
	for i := 0; i < 3; i++ {
		h, l, c := trendBar(i)
		if got := a.Update(h, l, c); !math.IsNaN(got) {
			t.Fatalf("bar %d: expected NaN, got %v", i, got)
		}
	}
	if a.Ready() {
		t.Fatal("ready before movement window filled")
	}
	h, l, c := trendBar(3)
	if got := a.Update(h, l, c); math.IsNaN(got) {
		t.Fatal("still NaN after movement window")
	}
	if !a.Ready() {
		t.Fatal("not ready after movement window")
	}
}

func TestADXRisesInOneWayTrend(t *testing.T) {
	a := NewADX(3)
	var seed float64
	for i := 0; i < 4; i++ {
		h, l, c := trendBar(i)
		seed = a.Update(h, l, c)
	}
	// Pure up-moves pin DX at 100 so the smoothed line keeps climbing.
	if !almostEqual(seed, 100) {
		t.Fatalf("seed DX: got %v, want 100", seed)
	}
	prev := seed
	for i := 4; i < 12; i++ {
		h, l, c := trendBar(i)
		got := a.Update(h, l, c)
		if got <= prev {
			t.Fatalf("bar %d: smoothed line fell, %v after %v", i, got, prev)
		}
		prev = got
	}
}

func TestADXResetReprimes(t *testing.T) {
	a := NewADX(3)
	for i := 0; i < 6; i++ {
		h, l, c := trendBar(i)
		a.Update(h, l, c)
	}
	a.Reset()
	if a.Ready() || !math.IsNaN(a.Value()) {
		t.Fatal("state survived reset")
	}
	h, l, c := trendBar(0)
	if got := a.Update(h, l, c); !math.IsNaN(got) {
		t.Fatalf("first bar after reset should prime only, got %v", got)
	}
}
