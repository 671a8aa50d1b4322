package indicator

import (
	"testing"
)

func TestWaveTrendFlatMarketIsSilent(t *testing.T) {
	w := NewWaveTrend(10, 21, 4, -60, 60)
	for i := 0; i < 60; i++ {
		w.Update(101, 99, 100)
	}
	// Zero deviation collapses the oscillator to zero on both lines.
	if !almostEqual(w.WT1(), 0) || !almostEqual(w.WT2(), 0) {
		t.Fatalf("flat market lines: wt1=%v wt2=%v, want 0", w.WT1(), w.WT2())
	}
	if w.Bullish() || w.Bearish() {
		t.Fatal("flat market produced a signal")
	}
}

func TestWaveTrendReadyGate(t *testing.T) {
	w := NewWaveTrend(10, 21, 4, -60, 60)
	for i := 0; i <= 21; i++ {
		if w.Ready() {
			t.Fatalf("ready after %d bars, want >21", i)
		}
		w.Update(float64(100+i), float64(98+i), float64(99+i))
	}
	if !w.Ready() {
		t.Fatal("not ready after 22 bars")
	}
}

func TestWaveTrendCrossUpOnReversal(t *testing.T) {
	w := NewWaveTrend(10, 21, 4, -60, 60)
	price := 200.0
	for i := 0; i < 60; i++ {
		w.Update(price+1, price-1, price)
		price -= 2
	}
	if w.WT1() >= 0 {
		t.Fatalf("downtrend should push wt1 negative, got %v", w.WT1())
	}
	// The fast line recovers through its own signal line somewhere on the
	// rising leg.
	sawBullish := false
	for i := 0; i < 60; i++ {
		price += 2
		w.Update(price+1, price-1, price)
		if w.Bullish() {
			sawBullish = true
			break
		}
	}
	if !sawBullish {
		t.Fatal("no bullish cross on the rising leg")
	}
}
