package indicator

import (
	"math"
	"testing"
)

func TestBollingerFlatCloses(t *testing.T) {
	b := NewBollinger(3, 2.0, 2.5, 0.02)
	for i := 0; i < 5; i++ {
		b.Update(100)
	}
	if !almostEqual(b.Upper(), 100) || !almostEqual(b.Lower(), 100) {
		t.Fatalf("zero dispersion bands: upper=%v lower=%v, want 100", b.Upper(), b.Lower())
	}
	if !almostEqual(b.Bandwidth(), 0) {
		t.Fatalf("bandwidth: got %v, want 0", b.Bandwidth())
	}
	if !b.InSqueeze() {
		t.Fatal("zero bandwidth should count as squeezed")
	}
	if b.IsExpanding() {
		t.Fatal("flat closes reported as expanding")
	}
}

func TestBollingerBandsAndExpansion(t *testing.T) {
	b := NewBollinger(3, 2.0, 2.5, 0.02)
	for _, c := range []float64{10, 10, 16, 12, 20} {
		b.Update(c)
	}
	// window [16,12,20]: mean 16, population std sqrt(32/3)
	std := math.Sqrt(32.0 / 3.0)
	if got := b.Middle(); !almostEqual(got, 16) {
		t.Fatalf("middle: got %v, want 16", got)
	}
	if got := b.Upper(); !almostEqual(got, 16+2*std) {
		t.Fatalf("upper: got %v, want %v", got, 16+2*std)
	}
	if got := b.ExpansionLower(); !almostEqual(got, 16-2.5*std) {
		t.Fatalf("expansion lower: got %v, want %v", got, 16-2.5*std)
	}
	// bandwidth contracted on the 4th close and re-opened on the 5th
	if !b.IsExpanding() {
		t.Fatal("contract-then-open pattern not detected")
	}
}

func TestBollingerNotReadyBeforeWindow(t *testing.T) {
	b := NewBollinger(5, 2.0, 2.5, 0.02)
	b.Update(10)
	b.Update(11)
	if b.Ready() || b.InSqueeze() || b.IsExpanding() {
		t.Fatal("predicates fired before window filled")
	}
}
