package engine

import (
	"math"

	"ApexCore/pkg/config"
)

// chopVwapSlopeFactor tightens the flat-VWAP requirement for chop days to
// 80% of the trend slope minimum.
const chopVwapSlopeFactor = 0.80

// Regime is the per-bar market classification. Trend and chop are computed
// independently; neither implies the other and both can be false.
type Regime struct {
	Trend bool
	Chop  bool

	ADX       float64
	EmaSpread float64
	VwapSlope float64
}

// classifyRegime evaluates the trend/chop booleans for the current bar.
// Both stay false until the opening range has completed. NaN inputs from
// still-warming indicators fail their comparisons and count as no strength.
func classifyRegime(cfg *config.Strategy, orDone bool, orRatio, atr, adx, emaFastHTF, emaSlowHTF, vwapSlope float64, session Session) Regime {
	r := Regime{ADX: adx, VwapSlope: vwapSlope}
	if !orDone {
		return r
	}

	if atr <= 0 || math.IsNaN(atr) {
		atr = 1
	}
	r.EmaSpread = math.Abs(emaFastHTF-emaSlowHTF) / atr

	trendStrength := adx >= cfg.AdxMinTrend ||
		r.EmaSpread >= cfg.EmaSpreadMin ||
		math.Abs(vwapSlope) >= cfg.VwapSlopeMin

	r.Trend = orRatio >= cfg.OrAtrFracTrend && trendStrength

	chopAllowed := session != SessionNY || cfg.AllowChopInNY
	r.Chop = !trendStrength &&
		math.Abs(vwapSlope) < cfg.VwapSlopeMin*chopVwapSlopeFactor &&
		chopAllowed

	return r
}
