package engine

import (
	"testing"
	"time"

	"ApexCore/pkg/config"
)

func sessionsEnabled() config.Strategy {
	var cfg config.Strategy
	cfg.Sessions.Use = true
	cfg.Sessions.Asia = true
	cfg.Sessions.Europe = true
	cfg.Sessions.NY = true
	return cfg
}

func at(hour, minute int) time.Time {
	return time.Date(2024, 1, 2, hour, minute, 0, 0, time.UTC)
}

func TestSessionClassification(t *testing.T) {
	st := NewSessionTracker(sessionsEnabled())

	cases := []struct {
		hour, minute int
		want         Session
	}{
		{18, 0, SessionAsia},
		{23, 30, SessionAsia}, // wraps midnight
		{1, 59, SessionAsia},
		{2, 0, SessionEurope},
		{8, 29, SessionEurope},
		{8, 30, SessionNone},
		{9, 29, SessionNone},
		{9, 30, SessionNY},
		{15, 59, SessionNY},
		{16, 0, SessionNone},
		{17, 0, SessionNone},
	}
	for _, tc := range cases {
		if got := st.Classify(at(tc.hour, tc.minute)); got != tc.want {
			t.Errorf("%02d:%02d: got %v, want %v", tc.hour, tc.minute, got, tc.want)
		}
	}
}

func TestSessionDisabledMeansAlwaysNY(t *testing.T) {
	cfg := sessionsEnabled()
	cfg.Sessions.Use = false
	st := NewSessionTracker(cfg)

	for _, h := range []int{0, 5, 12, 20} {
		if got := st.Classify(at(h, 0)); got != SessionNY {
			t.Fatalf("%02d:00 with sessions off: got %v, want NY", h, got)
		}
	}
}

func TestSessionDisabledWindowsSkipped(t *testing.T) {
	cfg := sessionsEnabled()
	cfg.Sessions.Europe = false
	st := NewSessionTracker(cfg)

	if got := st.Classify(at(3, 0)); got != SessionNone {
		t.Fatalf("europe disabled at 03:00: got %v, want None", got)
	}
}

func TestSessionUpdateReportsStarts(t *testing.T) {
	st := NewSessionTracker(sessionsEnabled())

	if _, started := st.Update(at(9, 0)); started {
		t.Fatal("no session at 09:00, start reported")
	}
	if s, started := st.Update(at(9, 30)); !started || s != SessionNY {
		t.Fatalf("09:30: got %v started=%v, want NY start", s, started)
	}
	if _, started := st.Update(at(9, 31)); started {
		t.Fatal("second NY bar reported as a start")
	}
	// Leaving into None is not a start.
	if s, started := st.Update(at(16, 30)); started || s != SessionNone {
		t.Fatalf("16:30: got %v started=%v", s, started)
	}
	// Re-entering is.
	if _, started := st.Update(at(18, 0)); !started {
		t.Fatal("asia open not reported as a start")
	}
}

func TestFlattenWindow(t *testing.T) {
	if InFlattenWindow(at(15, 57), 1) {
		t.Fatal("15:57 inside a 1-minute window")
	}
	if !InFlattenWindow(at(15, 58), 1) {
		t.Fatal("15:58 outside a 1-minute window")
	}
	if InFlattenWindow(at(15, 59), 1) {
		t.Fatal("15:59 is past the cutoff")
	}
	if InFlattenWindow(at(15, 58), 0) {
		t.Fatal("disabled window still active")
	}
}

func TestFlattenWindowCrossesHourBoundary(t *testing.T) {
	// 75 minutes before 15:59 is 14:44.
	if InFlattenWindow(at(14, 43), 75) {
		t.Fatal("14:43 inside a 75-minute window")
	}
	if !InFlattenWindow(at(14, 44), 75) {
		t.Fatal("14:44 outside a 75-minute window")
	}
	if !InFlattenWindow(at(15, 30), 75) {
		t.Fatal("15:30 outside a 75-minute window")
	}
	if InFlattenWindow(at(15, 59), 75) {
		t.Fatal("15:59 is past the cutoff")
	}
	// 120 minutes reaches back to 13:59.
	if !InFlattenWindow(at(13, 59), 120) {
		t.Fatal("13:59 outside a 120-minute window")
	}
	if InFlattenWindow(at(13, 58), 120) {
		t.Fatal("13:58 inside a 120-minute window")
	}
}
