package engine

// PendingDirection is the side a breakout setup is armed for.
type PendingDirection int

const (
	PendingLong PendingDirection = iota + 1
	PendingShort
)

func (d PendingDirection) String() string {
	if d == PendingShort {
		return "short"
	}
	return "long"
}

// PendingSetup is a conditional breakout order awaiting its trigger level.
// At most one exists at a time; it leaves only through trigger, expiry,
// session reset, or a position opening.
type PendingSetup struct {
	Dir   PendingDirection
	Level float64
	Age   int
	Kind  string
}
