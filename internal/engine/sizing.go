package engine

import (
	"math"

	"ApexCore/internal/domain/models"
	"ApexCore/pkg/config"
)

// Sizer converts an ATR-based stop distance and the configured risk budget
// into a contract quantity.
type Sizer struct {
	cfg  config.Strategy
	inst models.Instrument
}

func NewSizer(cfg config.Strategy, inst models.Instrument) *Sizer {
	return &Sizer{cfg: cfg, inst: inst}
}

// StopTicks returns the stop distance in ticks, floored at one tick.
func (s *Sizer) StopTicks(atr float64) int {
	ticks := int(math.Ceil(atr * s.cfg.Sizing.AtrStopMultiplier / s.inst.TickSize))
	if ticks < 1 {
		ticks = 1
	}
	return ticks
}

// Quantity returns the number of contracts to trade for the given ATR, or 0
// when the risk budget cannot fund even a single contract.
func (s *Sizer) Quantity(atr float64) int {
	if math.IsNaN(atr) || atr <= 0 {
		return 0
	}

	riskPerContract := float64(s.StopTicks(atr)) * s.inst.TickValue
	maxRisk := math.Min(s.cfg.Sizing.RiskPerTrade, s.cfg.Plan.TrailingThreshold*s.cfg.Sizing.RiskPercentOfThreshold)

	qty := int(math.Floor(maxRisk / math.Max(1, riskPerContract)))
	if qty > s.cfg.Sizing.MaxContracts {
		qty = s.cfg.Sizing.MaxContracts
	}
	if qty < 1 {
		qty = 1
	}

	// The floor above can push worst-case risk over budget; size back down
	// and suppress the trade when even one contract is too rich.
	if float64(qty)*riskPerContract > maxRisk {
		qty = int(math.Floor(maxRisk / riskPerContract))
		if qty < 1 {
			return 0
		}
	}
	return qty
}
