package engine

import (
	"time"

	"ApexCore/internal/domain/models"
	"ApexCore/internal/domain/repository"
	"ApexCore/pkg/config"
	"ApexCore/pkg/logger"
)

// Guard is the funded-account compliance tripwire. Once tripped it halts
// all entry generation for the remainder of the trading day; the trip flag
// and daily counters reset on the first bar of the next calendar day, peak
// equity never does.
type Guard struct {
	cfg  config.Strategy
	acct repository.AccountState
	log  *logger.Logger

	tripped     bool
	reason      string
	dailyPnl    float64
	consecutive int
	peakEquity  float64
}

func NewGuard(cfg config.Strategy, acct repository.AccountState, log *logger.Logger) *Guard {
	return &Guard{cfg: cfg, acct: acct, log: log}
}

// ResetDaily clears the daily-scoped state at the first bar of a new day.
func (g *Guard) ResetDaily() {
	g.dailyPnl = 0
	g.consecutive = 0
	g.tripped = false
	g.reason = ""
}

// Evaluate runs the tripwires for the current bar. It returns true when the
// rest of the bar must be skipped, plus flatten intents for any open
// position on a fresh trip.
func (g *Guard) Evaluate(barTime time.Time, pos models.Position, symbol string) (bool, []models.TradeIntent) {
	if g.tripped {
		return true, nil
	}

	g.refreshDaily(barTime)

	if lossCap := g.cfg.Plan.DailyLossCap; lossCap > 0 && g.dailyPnl <= -lossCap {
		return true, g.trip(models.ReasonDailyLossCap, barTime, pos, symbol)
	}
	if lock := g.cfg.Plan.DailyProfitLock; lock > 0 && g.dailyPnl >= lock {
		return true, g.trip(models.ReasonDailyProfit, barTime, pos, symbol)
	}
	if n := g.cfg.MaxConsecutiveLosses; n > 0 && g.consecutive >= n {
		return true, g.trip(models.ReasonLossStreak, barTime, pos, symbol)
	}

	if dd := g.cfg.MaxTrailingDrawdown; dd > 0 {
		equity := g.cfg.Plan.StartBalance + g.totalRealized()
		if equity > g.peakEquity {
			g.peakEquity = equity
		}
		if g.peakEquity-equity >= dd {
			return true, g.trip(models.ReasonTrailingDD, barTime, pos, symbol)
		}
	}

	return false, nil
}

// refreshDaily recomputes realized P&L and the loss streak from the closed
// trades of the bar's calendar day.
func (g *Guard) refreshDaily(barTime time.Time) {
	midnight := time.Date(barTime.Year(), barTime.Month(), barTime.Day(), 0, 0, 0, 0, barTime.Location())
	trades := g.acct.ClosedTrades(midnight)

	var pnl float64
	streak := 0
	for _, t := range trades {
		pnl += t.Profit
		if t.Profit < 0 {
			streak++
		} else {
			streak = 0
		}
	}
	g.dailyPnl = pnl
	g.consecutive = streak
}

func (g *Guard) totalRealized() float64 {
	var sum float64
	for _, t := range g.acct.ClosedTrades(time.Time{}) {
		sum += t.Profit
	}
	return sum
}

func (g *Guard) trip(reason string, barTime time.Time, pos models.Position, symbol string) []models.TradeIntent {
	g.tripped = true
	g.reason = reason
	g.log.Warn("risk guard tripped",
		logger.String("reason", reason),
		logger.Float64("daily_pnl", g.dailyPnl),
		logger.Int("consecutive_losses", g.consecutive),
		logger.Float64("peak_equity", g.peakEquity),
	)

	if pos.IsFlat() {
		return nil
	}
	kind := models.IntentExitLong
	if pos.Side == models.Short {
		kind = models.IntentExitShort
	}
	return []models.TradeIntent{{
		Kind:     kind,
		Symbol:   symbol,
		Quantity: pos.Quantity,
		Tag:      "guard_flatten",
		Reason:   reason,
		Time:     barTime,
	}}
}

// Tripped reports whether the guard is holding the day closed.
func (g *Guard) Tripped() bool { return g.tripped }

// Reason returns the trip reason, empty when not tripped.
func (g *Guard) Reason() string { return g.reason }

// DailyPnl returns the last computed daily realized P&L.
func (g *Guard) DailyPnl() float64 { return g.dailyPnl }

// PeakEquity returns the monotonic equity high-water mark.
func (g *Guard) PeakEquity() float64 { return g.peakEquity }
