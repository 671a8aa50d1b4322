package engine

import (
	"math"

	"ApexCore/internal/domain/models"
)

const (
	zoneVolumeMult    = 1.5
	zoneRangeContract = 0.8
	zoneDedupATR      = 0.5
	zoneNearATR       = 1.0
	zoneRangeLookback = 5
	maxZones          = 20
)

// LiquidityZones tracks price levels where heavy volume met a contracting
// range: likely resting liquidity. Zones are deduped within half an ATR and
// capped to the most recent twenty.
type LiquidityZones struct {
	zones  []float64
	ranges []float64 // last zoneRangeLookback completed bar ranges
}

func NewLiquidityZones() *LiquidityZones {
	return &LiquidityZones{
		zones:  make([]float64, 0, maxZones),
		ranges: make([]float64, 0, zoneRangeLookback),
	}
}

// Update inspects one bar for a new zone. volumeSMA is the smoothed volume
// including the current bar; atr the current intraday ATR. The bar's own
// range joins the lookback only after the check, so contraction is always
// measured against prior bars.
func (lz *LiquidityZones) Update(bar models.Bar, volumeSMA, atr float64) {
	defer lz.pushRange(bar.Range())

	if len(lz.ranges) < zoneRangeLookback {
		return
	}
	if math.IsNaN(volumeSMA) || bar.Volume < volumeSMA*zoneVolumeMult {
		return
	}

	var avgRange float64
	for _, r := range lz.ranges {
		avgRange += r
	}
	avgRange /= float64(len(lz.ranges))

	if bar.Range() >= avgRange*zoneRangeContract {
		return
	}

	zone := (bar.High + bar.Low) / 2.0
	for _, z := range lz.zones {
		if math.Abs(zone-z) < atr*zoneDedupATR {
			return
		}
	}

	lz.zones = append(lz.zones, zone)
	if len(lz.zones) > maxZones {
		lz.zones = lz.zones[1:]
	}
}

func (lz *LiquidityZones) pushRange(r float64) {
	lz.ranges = append(lz.ranges, r)
	if len(lz.ranges) > zoneRangeLookback {
		lz.ranges = lz.ranges[1:]
	}
}

// Near reports whether price sits within one ATR of a known zone. With no
// zones identified yet every price qualifies.
func (lz *LiquidityZones) Near(price, atr float64) bool {
	if len(lz.zones) == 0 {
		return true
	}
	for _, z := range lz.zones {
		if math.Abs(price-z) <= atr*zoneNearATR {
			return true
		}
	}
	return false
}

// Count returns the number of tracked zones.
func (lz *LiquidityZones) Count() int { return len(lz.zones) }

// Reset drops all zones at the start of a new session.
func (lz *LiquidityZones) Reset() {
	lz.zones = lz.zones[:0]
}
