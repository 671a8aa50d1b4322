package engine

import (
	"testing"

	"ApexCore/internal/domain/models"
)

func zoneBar(h, l, v float64) models.Bar {
	return models.Bar{High: h, Low: l, Close: (h + l) / 2, Open: (h + l) / 2, Volume: v}
}

func TestLiquidityZoneDetection(t *testing.T) {
	lz := NewLiquidityZones()

	// Prime the range lookback with wide, normal-volume bars.
	for i := 0; i < zoneRangeLookback; i++ {
		lz.Update(zoneBar(105, 95, 100), 100, 2)
	}
	if lz.Count() != 0 {
		t.Fatalf("zones during priming: %d", lz.Count())
	}

	// Narrow bar on heavy volume: a zone at the midpoint.
	lz.Update(zoneBar(101, 99, 200), 100, 2)
	if lz.Count() != 1 {
		t.Fatalf("zones after squeeze bar: got %d, want 1", lz.Count())
	}
	if !lz.Near(100, 2) {
		t.Fatal("midpoint not near its own zone")
	}
	if lz.Near(110, 2) {
		t.Fatal("price 8 ATRs away reported near")
	}
}

func TestLiquidityZoneRequiresVolumeAndContraction(t *testing.T) {
	lz := NewLiquidityZones()
	for i := 0; i < zoneRangeLookback; i++ {
		lz.Update(zoneBar(105, 95, 100), 100, 2)
	}

	// Heavy volume but no contraction.
	lz.Update(zoneBar(106, 94, 200), 100, 2)
	if lz.Count() != 0 {
		t.Fatal("wide bar produced a zone")
	}
	// Contraction but ordinary volume.
	lz.Update(zoneBar(101, 99, 100), 100, 2)
	if lz.Count() != 0 {
		t.Fatal("quiet bar produced a zone")
	}
}

func TestLiquidityZoneDedupe(t *testing.T) {
	lz := NewLiquidityZones()
	for i := 0; i < zoneRangeLookback; i++ {
		lz.Update(zoneBar(105, 95, 100), 100, 2)
	}
	lz.Update(zoneBar(101, 99, 200), 100, 2)
	// Same midpoint again, within half an ATR of the existing zone.
	lz.Update(zoneBar(101.2, 99.2, 200), 100, 2)
	if lz.Count() != 1 {
		t.Fatalf("duplicate zone recorded: %d", lz.Count())
	}
}

func TestLiquidityZoneEmptyMeansNear(t *testing.T) {
	lz := NewLiquidityZones()
	if !lz.Near(12345, 2) {
		t.Fatal("no zones known: every price should qualify")
	}
}

func TestLiquidityZoneReset(t *testing.T) {
	lz := NewLiquidityZones()
	for i := 0; i < zoneRangeLookback; i++ {
		lz.Update(zoneBar(105, 95, 100), 100, 2)
	}
	lz.Update(zoneBar(101, 99, 200), 100, 2)
	lz.Reset()
	if lz.Count() != 0 {
		t.Fatal("zones survived reset")
	}
}
