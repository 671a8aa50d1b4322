package models

import "time"

// EngineStatus is the diagnostic snapshot published after each primary bar.
// Advisory only: nothing in the decision path reads it back.
type EngineStatus struct {
	Symbol        string    `json:"symbol"`
	BarTime       time.Time `json:"bar_time"`
	Session       string    `json:"session"`
	VWAP          float64   `json:"vwap"`
	VWAPSlope     float64   `json:"vwap_slope"`
	ORComplete    bool      `json:"or_complete"`
	ORRatio       float64   `json:"or_ratio"`
	TrendRegime   bool      `json:"trend_regime"`
	ChopRegime    bool      `json:"chop_regime"`
	ADX           float64   `json:"adx"`
	ATR           float64   `json:"atr"`
	RSI           float64   `json:"rsi"`
	PendingSide   string    `json:"pending_side"`
	PendingLevel  float64   `json:"pending_level,omitempty"`
	PendingAge    int       `json:"pending_age,omitempty"`
	SessionCount  int       `json:"session_signals"`
	GuardTripped  bool      `json:"guard_tripped"`
	GuardReason   string    `json:"guard_reason,omitempty"`
	DailyPnl      float64   `json:"daily_pnl"`
	PeakEquity    float64   `json:"peak_equity"`
	BarsProcessed int64     `json:"bars_processed"`
}
