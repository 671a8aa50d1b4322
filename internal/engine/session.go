package engine

import (
	"time"

	"ApexCore/pkg/config"
)

// Session identifies the trading window a bar falls into. Boundaries are
// fixed exchange-local clock times; Asia wraps midnight.
type Session int

const (
	SessionNone Session = iota
	SessionAsia
	SessionEurope
	SessionNY
)

const (
	timeAsiaStart   = 180000 // 18:00:00
	timeAsiaEnd     = 20000  // 02:00:00 next day
	timeEuropeStart = 20000
	timeEuropeEnd   = 83000
	timeNYStart     = 93000
	timeNYEnd       = 160000

	// Funded-account flatten deadline, 15:59 CT.
	sessionCloseHourCT   = 15
	sessionCloseMinuteCT = 59
)

func (s Session) String() string {
	switch s {
	case SessionAsia:
		return "asia"
	case SessionEurope:
		return "europe"
	case SessionNY:
		return "ny"
	default:
		return "none"
	}
}

// clockTime collapses a timestamp to an HHMMSS integer for boundary checks.
func clockTime(t time.Time) int {
	return t.Hour()*10000 + t.Minute()*100 + t.Second()
}

// SessionTracker classifies bars into sessions and reports boundary
// crossings so downstream state can reset.
type SessionTracker struct {
	cfg     config.Strategy
	current Session
	last    Session
}

func NewSessionTracker(cfg config.Strategy) *SessionTracker {
	return &SessionTracker{cfg: cfg, current: SessionNone, last: SessionNone}
}

// Classify returns the session the given timestamp belongs to. With sessions
// disabled everything counts as NY.
func (st *SessionTracker) Classify(t time.Time) Session {
	if !st.cfg.Sessions.Use {
		return SessionNY
	}
	now := clockTime(t)

	if st.cfg.Sessions.Asia {
		if now >= timeAsiaStart || now < timeAsiaEnd {
			return SessionAsia
		}
	}
	if st.cfg.Sessions.Europe {
		if now >= timeEuropeStart && now < timeEuropeEnd {
			return SessionEurope
		}
	}
	if st.cfg.Sessions.NY {
		if now >= timeNYStart && now < timeNYEnd {
			return SessionNY
		}
	}
	return SessionNone
}

// Update advances the tracker to the bar's session. It returns the session
// and whether this bar starts a new one (entering None is not a start).
func (st *SessionTracker) Update(t time.Time) (Session, bool) {
	s := st.Classify(t)
	started := false
	if s != st.last {
		if s != SessionNone {
			started = true
		}
		st.last = s
	}
	st.current = s
	return s, started
}

// Current returns the session of the last processed bar.
func (st *SessionTracker) Current() Session { return st.current }

// InSession reports whether the last processed bar fell inside a window.
func (st *SessionTracker) InSession() bool { return st.current != SessionNone }

// InFlattenWindow reports whether the timestamp is inside the forced-flat
// window before the session close cutoff.
func InFlattenWindow(t time.Time, flattenMinutes int) bool {
	if flattenMinutes <= 0 {
		return false
	}
	closeMin := sessionCloseHourCT*60 + sessionCloseMinuteCT
	now := t.Hour()*60 + t.Minute()
	return now >= closeMin-flattenMinutes && now < closeMin
}
