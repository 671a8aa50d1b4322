package engine

import (
	"testing"
	"time"

	"ApexCore/internal/domain/models"
)

func guardAt() time.Time {
	return time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
}

func newTestGuard(t *testing.T, acct *fakeAccount) *Guard {
	t.Helper()
	return NewGuard(testStrategy(), acct, testLogger(t))
}

func TestGuardLossCapFlattensOpenPosition(t *testing.T) {
	acct := &fakeAccount{pos: models.Position{Side: models.Short, Quantity: 3}}
	g := newTestGuard(t, acct)

	acct.trades = []models.ClosedTrade{{ExitTime: guardAt(), Profit: -600}}
	halt, intents := g.Evaluate(guardAt(), acct.pos, "NQ")
	if !halt || !g.Tripped() {
		t.Fatal("loss cap did not trip")
	}
	if g.Reason() != models.ReasonDailyLossCap {
		t.Fatalf("reason: got %q", g.Reason())
	}
	if len(intents) != 1 || intents[0].Kind != models.IntentExitShort || intents[0].Quantity != 3 {
		t.Fatalf("flatten intent: %+v", intents)
	}

	// Sticky, and no second flatten.
	halt, intents = g.Evaluate(guardAt().Add(time.Minute), acct.pos, "NQ")
	if !halt || len(intents) != 0 {
		t.Fatalf("sticky trip: halt=%v intents=%+v", halt, intents)
	}
}

func TestGuardIgnoresYesterdaysTrades(t *testing.T) {
	acct := &fakeAccount{}
	g := newTestGuard(t, acct)

	acct.trades = []models.ClosedTrade{{ExitTime: guardAt().Add(-24 * time.Hour), Profit: -5000}}
	if halt, _ := g.Evaluate(guardAt(), acct.pos, "NQ"); halt {
		t.Fatal("yesterday's loss tripped today's cap")
	}
}

func TestGuardProfitLock(t *testing.T) {
	acct := &fakeAccount{}
	g := newTestGuard(t, acct)

	acct.trades = []models.ClosedTrade{{ExitTime: guardAt(), Profit: 800}}
	halt, intents := g.Evaluate(guardAt(), acct.pos, "NQ")
	if !halt || g.Reason() != models.ReasonDailyProfit {
		t.Fatalf("profit lock: halt=%v reason=%q", halt, g.Reason())
	}
	// Flat position, nothing to flatten.
	if len(intents) != 0 {
		t.Fatalf("unexpected intents: %+v", intents)
	}
}

func TestGuardConsecutiveLosses(t *testing.T) {
	acct := &fakeAccount{}
	cfg := testStrategy()
	cfg.Plan.DailyLossCap = 0
	cfg.MaxConsecutiveLosses = 2
	g := NewGuard(cfg, acct, testLogger(t))

	acct.trades = []models.ClosedTrade{
		{ExitTime: guardAt(), Profit: -50},
		{ExitTime: guardAt().Add(time.Minute), Profit: -50},
	}
	if halt, _ := g.Evaluate(guardAt().Add(2*time.Minute), acct.pos, "NQ"); !halt {
		t.Fatal("two straight losses did not trip")
	}
	if g.Reason() != models.ReasonLossStreak {
		t.Fatalf("reason: got %q", g.Reason())
	}
}

func TestGuardWinResetsStreak(t *testing.T) {
	acct := &fakeAccount{}
	cfg := testStrategy()
	cfg.Plan.DailyLossCap = 0
	cfg.MaxConsecutiveLosses = 2
	g := NewGuard(cfg, acct, testLogger(t))

	acct.trades = []models.ClosedTrade{
		{ExitTime: guardAt(), Profit: -50},
		{ExitTime: guardAt().Add(time.Minute), Profit: -50},
		{ExitTime: guardAt().Add(2 * time.Minute), Profit: 0}, // break-even resets
	}
	if halt, _ := g.Evaluate(guardAt().Add(3*time.Minute), acct.pos, "NQ"); halt {
		t.Fatal("streak not reset by a non-negative close")
	}
}

func TestGuardTrailingDrawdownAndPersistentPeak(t *testing.T) {
	acct := &fakeAccount{}
	cfg := testStrategy()
	cfg.Plan.DailyLossCap = 0
	cfg.Plan.DailyProfitLock = 0
	cfg.MaxTrailingDrawdown = 1000
	g := NewGuard(cfg, acct, testLogger(t))

	acct.trades = []models.ClosedTrade{{ExitTime: guardAt(), Profit: 2000}}
	if halt, _ := g.Evaluate(guardAt(), acct.pos, "NQ"); halt {
		t.Fatal("profit alone tripped the drawdown guard")
	}
	if g.PeakEquity() != 52000 {
		t.Fatalf("peak equity: got %v, want 52000", g.PeakEquity())
	}

	acct.trades = append(acct.trades, models.ClosedTrade{ExitTime: guardAt().Add(time.Hour), Profit: -1500})
	halt, _ := g.Evaluate(guardAt().Add(time.Hour), acct.pos, "NQ")
	if !halt || g.Reason() != models.ReasonTrailingDD {
		t.Fatalf("drawdown trip: halt=%v reason=%q", halt, g.Reason())
	}

	// Daily reset clears the trip flag but never the peak; the drawdown is
	// still there next day and trips again.
	g.ResetDaily()
	if g.Tripped() {
		t.Fatal("trip flag survived the daily reset")
	}
	if g.PeakEquity() != 52000 {
		t.Fatalf("peak equity reset: got %v", g.PeakEquity())
	}
	nextDay := guardAt().Add(24 * time.Hour)
	if halt, _ := g.Evaluate(nextDay, acct.pos, "NQ"); !halt {
		t.Fatal("persistent drawdown did not re-trip")
	}
}
