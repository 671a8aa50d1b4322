package models

import "time"

// IntentKind enumerates the instructions the engine can hand to the host
// platform. Stops and targets always refer to the most recent entry.
type IntentKind string

const (
	IntentEnterLong     IntentKind = "enter_long"
	IntentEnterShort    IntentKind = "enter_short"
	IntentExitLong      IntentKind = "exit_long"
	IntentExitShort     IntentKind = "exit_short"
	IntentSetStopLoss   IntentKind = "set_stop_loss"
	IntentSetTakeProfit IntentKind = "set_take_profit"
)

// Reason codes attached to intents for the host's audit trail.
const (
	ReasonTrendBreakout  = "trend_breakout"
	ReasonChopReversion  = "chop_reversion"
	ReasonFlattenClose   = "flatten_before_close"
	ReasonDailyLossCap   = "daily_loss_cap"
	ReasonDailyProfit    = "daily_profit_lock"
	ReasonTrailingDD     = "trailing_drawdown"
	ReasonLossStreak     = "consecutive_losses"
)

// TradeIntent is an instruction emitted to the execution host. Intents are
// value objects: the engine never retains them after emission.
type TradeIntent struct {
	Kind     IntentKind `json:"kind"`
	Symbol   string     `json:"symbol"`
	Quantity int        `json:"quantity,omitempty"`
	Price    float64    `json:"price,omitempty"` // absolute stop/target price
	Tag      string     `json:"tag"`
	Reason   string     `json:"reason,omitempty"`
	Time     time.Time  `json:"time"`
}

// IsEntry reports whether the intent opens a position.
func (t *TradeIntent) IsEntry() bool {
	return t.Kind == IntentEnterLong || t.Kind == IntentEnterShort
}

// IsExit reports whether the intent flattens a position.
func (t *TradeIntent) IsExit() bool {
	return t.Kind == IntentExitLong || t.Kind == IntentExitShort
}
