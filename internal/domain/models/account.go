package models

import "time"

// PositionSide is the current market position as reported by the host.
type PositionSide int

const (
	Flat PositionSide = iota
	Long
	Short
)

func (s PositionSide) String() string {
	switch s {
	case Long:
		return "long"
	case Short:
		return "short"
	default:
		return "flat"
	}
}

// Position is the host's view of the open position for the traded
// instrument. The engine only reads it; bookkeeping stays with the host.
type Position struct {
	Side     PositionSide
	Quantity int
}

// IsFlat reports whether no position is open.
func (p Position) IsFlat() bool { return p.Side == Flat || p.Quantity == 0 }

// ClosedTrade is one realized round trip reported by the host. Only the
// exit time and realized profit matter to the compliance guard.
type ClosedTrade struct {
	ExitTime time.Time
	Profit   float64
}

// Instrument carries the contract arithmetic the sizer needs.
type Instrument struct {
	Symbol    string
	TickSize  float64
	TickValue float64
}
