package usecase

import (
	"context"
	"time"

	"ApexCore/internal/domain/models"
)

// SimAccount is the broker stand-in for replay. It fills entries at the
// close of the bar that produced them, honors stops and targets against
// the following bars' extremes, and books realized trades the way the
// compliance guard expects to read them.
//
// It doubles as the intent sink during replay: the engine publishes, the
// account fills.
type SimAccount struct {
	inst models.Instrument

	pos        models.Position
	entryPrice float64
	stop       float64
	target     float64

	lastClose float64
	lastTime  time.Time

	trades []models.ClosedTrade
}

// NewSimAccount creates a flat simulated account.
func NewSimAccount(inst models.Instrument) *SimAccount {
	return &SimAccount{inst: inst}
}

// Position implements AccountState.
func (a *SimAccount) Position() models.Position { return a.pos }

// ClosedTrades implements AccountState.
func (a *SimAccount) ClosedTrades(since time.Time) []models.ClosedTrade {
	out := make([]models.ClosedTrade, 0, len(a.trades))
	for _, t := range a.trades {
		if !t.ExitTime.Before(since) {
			out = append(out, t)
		}
	}
	return out
}

// MarkBar advances the simulation by one primary bar. Stops and targets
// set on earlier bars fill against this bar's range; the stop wins when
// both are inside the same bar.
func (a *SimAccount) MarkBar(bar models.Bar) {
	a.lastClose = bar.Close
	a.lastTime = bar.Time
	if a.pos.IsFlat() {
		return
	}

	switch a.pos.Side {
	case models.Long:
		if a.stop > 0 && bar.Low <= a.stop {
			a.closeAt(a.stop, bar.Time)
		} else if a.target > 0 && bar.High >= a.target {
			a.closeAt(a.target, bar.Time)
		}
	case models.Short:
		if a.stop > 0 && bar.High >= a.stop {
			a.closeAt(a.stop, bar.Time)
		} else if a.target > 0 && bar.Low <= a.target {
			a.closeAt(a.target, bar.Time)
		}
	}
}

// Publish implements IntentSink. Fills are immediate and slippage-free.
func (a *SimAccount) Publish(_ context.Context, intent *models.TradeIntent) error {
	switch intent.Kind {
	case models.IntentEnterLong:
		a.pos = models.Position{Side: models.Long, Quantity: intent.Quantity}
		a.entryPrice = a.lastClose
		a.stop, a.target = 0, 0
	case models.IntentEnterShort:
		a.pos = models.Position{Side: models.Short, Quantity: intent.Quantity}
		a.entryPrice = a.lastClose
		a.stop, a.target = 0, 0
	case models.IntentSetStopLoss:
		a.stop = intent.Price
	case models.IntentSetTakeProfit:
		a.target = intent.Price
	case models.IntentExitLong, models.IntentExitShort:
		if !a.pos.IsFlat() {
			a.closeAt(a.lastClose, intent.Time)
		}
	}
	return nil
}

func (a *SimAccount) Close() error { return nil }

// Realized returns the total realized profit.
func (a *SimAccount) Realized() float64 {
	var sum float64
	for _, t := range a.trades {
		sum += t.Profit
	}
	return sum
}

// TradeCount returns the number of closed round trips.
func (a *SimAccount) TradeCount() int { return len(a.trades) }

func (a *SimAccount) closeAt(price float64, at time.Time) {
	ticks := (price - a.entryPrice) / a.inst.TickSize
	if a.pos.Side == models.Short {
		ticks = -ticks
	}
	profit := ticks * a.inst.TickValue * float64(a.pos.Quantity)
	a.trades = append(a.trades, models.ClosedTrade{ExitTime: at, Profit: profit})
	a.pos = models.Position{}
	a.entryPrice, a.stop, a.target = 0, 0, 0
}
