package engine

import (
	"testing"
	"time"

	"ApexCore/internal/domain/models"
	"ApexCore/pkg/config"
	"ApexCore/pkg/logger"
)

// fakeAccount is a scriptable host-platform account view.
type fakeAccount struct {
	pos    models.Position
	trades []models.ClosedTrade
}

func (f *fakeAccount) Position() models.Position { return f.pos }

func (f *fakeAccount) ClosedTrades(since time.Time) []models.ClosedTrade {
	var out []models.ClosedTrade
	for _, tr := range f.trades {
		if !tr.ExitTime.Before(since) {
			out = append(out, tr)
		}
	}
	return out
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

// testStrategy keeps indicator windows tiny so scenarios warm up fast.
// Confirmations are off unless a test opts in.
func testStrategy() config.Strategy {
	var cfg config.Strategy
	cfg.Sessions.Use = true
	cfg.Sessions.Asia = true
	cfg.Sessions.Europe = true
	cfg.Sessions.NY = true

	cfg.TrendTFMinutes = 15
	cfg.EmaFastLen = 2
	cfg.EmaSlowLen = 3
	cfg.AtrLen = 2
	cfg.AtrDailyLen = 2

	cfg.OrMinutes = 15
	cfg.OrAtrFracTrend = 0.1

	cfg.AdxLen = 2
	cfg.AdxMinTrend = 18
	cfg.EmaSpreadMin = 0.35
	cfg.VwapSlopeMin = 0.10

	cfg.BreakBufferTicks = 2
	cfg.SetupExpiryBars = 6
	cfg.UsePullbackVWAP = true
	cfg.UsePullbackEMA = true
	cfg.PullBandATR = 0.30

	cfg.DevMultATR = 1.10
	cfg.RsiLen = 2
	cfg.RsiLow = 35
	cfg.RsiHigh = 65
	cfg.ChopTPATR = 0.80

	cfg.StopMultATR = 0.85
	cfg.TpMultATR = 1.20

	cfg.MaxSignalsPerSession = 4
	cfg.CooldownBars = 2

	cfg.Plan.StartBalance = 50000
	cfg.Plan.ProfitTarget = 3000
	cfg.Plan.TrailingThreshold = 2500
	cfg.Plan.DailyLossCap = 600
	cfg.Plan.DailyProfitLock = 800

	cfg.FlattenMinutesBeforeClose = 1

	cfg.Sizing.MaxContracts = 2
	cfg.Sizing.RiskPerTrade = 750
	cfg.Sizing.RiskPercentOfThreshold = 0.30
	cfg.Sizing.AtrStopMultiplier = 2.5

	cfg.Confirm.VolumeMAPeriod = 3
	cfg.Confirm.MinVolumeMultiplier = 1.2

	cfg.WaveTrend.ChannelLength = 3
	cfg.WaveTrend.AverageLength = 3
	cfg.WaveTrend.SignalLength = 2
	cfg.WaveTrend.Overbought = 60
	cfg.WaveTrend.Oversold = -60

	cfg.Bollinger.Period = 3
	cfg.Bollinger.StdDev = 2.0
	cfg.Bollinger.Expansion = 2.5
	cfg.Bollinger.SqueezeThreshold = 0.02

	return cfg
}

func nqInstrument() models.Instrument {
	return models.Instrument{Symbol: "NQ", TickSize: 0.25, TickValue: 5}
}

func newTestEngine(t *testing.T, acct *fakeAccount) *Engine {
	t.Helper()
	return New(testStrategy(), nqInstrument(), acct, testLogger(t))
}

func primaryBar(ts time.Time, o, h, l, c, v float64) *models.BarEvent {
	return &models.BarEvent{
		Series: models.SeriesPrimary,
		Symbol: "NQ",
		Bar:    models.Bar{Time: ts, Open: o, High: h, Low: l, Close: c, Volume: v},
	}
}

func trendBarEvent(ts time.Time, h, l, c float64) *models.BarEvent {
	return &models.BarEvent{
		Series: models.SeriesTrend,
		Symbol: "NQ",
		Bar:    models.Bar{Time: ts, Open: c, High: h, Low: l, Close: c, Volume: 100},
	}
}

func dailyBarEvent(ts time.Time, h, l, c float64) *models.BarEvent {
	return &models.BarEvent{
		Series: models.SeriesDaily,
		Symbol: "NQ",
		Bar:    models.Bar{Time: ts, Open: c, High: h, Low: l, Close: c, Volume: 1000},
	}
}

// warmUp feeds flat pre-session bars until every decision-path indicator is
// ready. Times sit in the 08:35-09:00 dead zone so no session starts.
func warmUp(e *Engine) {
	day := time.Date(2024, 1, 2, 8, 35, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		e.OnBar(trendBarEvent(day.Add(time.Duration(i)*time.Minute), 100.5, 99.5, 100))
	}
	for i := 0; i < 6; i++ {
		e.OnBar(primaryBar(day.Add(time.Duration(i+5)*time.Minute), 100, 100.5, 99.5, 100, 100))
	}
}

func countEntries(intents []models.TradeIntent) int {
	n := 0
	for i := range intents {
		if intents[i].IsEntry() {
			n++
		}
	}
	return n
}

func TestEngineConstantBarsProduceNoEntries(t *testing.T) {
	acct := &fakeAccount{}
	cfg := testStrategy()
	cfg.Confirm.VolatilityExpansion = true
	e := New(cfg, nqInstrument(), acct, testLogger(t))
	warmUp(e)

	open := time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)
	total := 0
	for i := 0; i < 40; i++ {
		intents := e.OnBar(primaryBar(open.Add(time.Duration(i)*time.Minute), 100, 100.5, 99.5, 100, 100))
		total += countEntries(intents)
	}

	if total != 0 {
		t.Fatalf("constant tape produced %d entries", total)
	}
	st := e.Status()
	if st.ATR != 1 {
		t.Fatalf("constant-range ATR: got %v, want 1", st.ATR)
	}
	if !st.ORComplete {
		t.Fatal("opening range never froze")
	}
}

func TestEngineOpeningRangeScenario(t *testing.T) {
	acct := &fakeAccount{}
	e := newTestEngine(t, acct)

	// Daily ATR of 100 from two daily bars.
	d1 := time.Date(2024, 1, 1, 17, 0, 0, 0, time.UTC)
	e.OnBar(dailyBarEvent(d1, 5100, 5000, 5050))
	e.OnBar(dailyBarEvent(d1.Add(24*time.Hour), 5100, 5000, 5050))

	warmUp(e)

	open := time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		e.OnBar(primaryBar(open.Add(time.Duration(i)*time.Minute), 100, 105, 95, 100, 100))
	}
	if e.Status().ORComplete {
		t.Fatal("opening range froze inside its window")
	}

	e.OnBar(primaryBar(open.Add(15*time.Minute), 100, 105, 95, 100, 100))
	st := e.Status()
	if !st.ORComplete {
		t.Fatal("opening range not frozen on bar 16")
	}
	if st.ORRatio != 0.1 {
		t.Fatalf("OR ratio: got %v, want 10/100", st.ORRatio)
	}
}

func TestEngineDailyLossCapTripsAndStays(t *testing.T) {
	acct := &fakeAccount{
		pos: models.Position{Side: models.Long, Quantity: 1},
	}
	e := newTestEngine(t, acct)
	warmUp(e)

	open := time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)
	e.OnBar(primaryBar(open, 100, 100.5, 99.5, 100, 100))

	// Closed trades for the day sum to exactly -600.
	acct.trades = []models.ClosedTrade{
		{ExitTime: open.Add(5 * time.Minute), Profit: -250},
		{ExitTime: open.Add(20 * time.Minute), Profit: -350},
	}

	intents := e.OnBar(primaryBar(open.Add(30*time.Minute), 100, 100.5, 99.5, 100, 100))
	if len(intents) != 1 || intents[0].Kind != models.IntentExitLong {
		t.Fatalf("expected a single flatten intent, got %+v", intents)
	}
	if intents[0].Reason != models.ReasonDailyLossCap {
		t.Fatalf("flatten reason: got %q", intents[0].Reason)
	}
	if !e.Guard().Tripped() {
		t.Fatal("guard not tripped")
	}

	// The trip is sticky: no further intents for the rest of the day.
	acct.pos = models.Position{}
	for i := 31; i < 45; i++ {
		if got := e.OnBar(primaryBar(open.Add(time.Duration(i)*time.Minute), 100, 100.5, 99.5, 100, 100)); len(got) != 0 {
			t.Fatalf("bar %d: intents emitted while tripped: %+v", i, got)
		}
	}

	// Next calendar day clears the trip.
	acct.trades = nil
	nextOpen := open.Add(24 * time.Hour)
	e.OnBar(primaryBar(nextOpen, 100, 100.5, 99.5, 100, 100))
	if e.Guard().Tripped() {
		t.Fatal("trip survived the daily reset")
	}
}

func TestEnginePendingExpiresNotTriggers(t *testing.T) {
	acct := &fakeAccount{}
	e := newTestEngine(t, acct)
	warmUp(e)

	open := time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)
	e.OnBar(primaryBar(open, 100, 100.5, 99.5, 100, 100))

	e.pending = &PendingSetup{Dir: PendingLong, Level: 100.50, Kind: "trend_break"}

	for i := 1; i <= 7; i++ {
		intents := e.OnBar(primaryBar(open.Add(time.Duration(i)*time.Minute), 100, 100.25, 99.75, 100, 100))
		if countEntries(intents) != 0 {
			t.Fatalf("bar %d: pending triggered below its level", i)
		}
		if i < 7 && e.Pending() == nil {
			t.Fatalf("bar %d: pending cancelled early", i)
		}
	}
	if e.Pending() != nil {
		t.Fatal("pending still armed after expiry bar")
	}
}

func TestEnginePendingTriggerEmitsSizedEntry(t *testing.T) {
	acct := &fakeAccount{}
	e := newTestEngine(t, acct)
	warmUp(e)

	open := time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)
	e.OnBar(primaryBar(open, 100, 100.5, 99.5, 100, 100))

	e.pending = &PendingSetup{Dir: PendingLong, Level: 100.50, Kind: "trend_break"}

	intents := e.OnBar(primaryBar(open.Add(time.Minute), 100, 101, 99.8, 100.8, 100))
	if len(intents) != 3 {
		t.Fatalf("expected entry+stop+target, got %+v", intents)
	}
	entry := intents[0]
	if entry.Kind != models.IntentEnterLong || entry.Reason != models.ReasonTrendBreakout {
		t.Fatalf("entry intent: %+v", entry)
	}
	if entry.Quantity < 1 || entry.Quantity > 2 {
		t.Fatalf("quantity %d outside [1,2]", entry.Quantity)
	}
	if intents[1].Kind != models.IntentSetStopLoss || intents[2].Kind != models.IntentSetTakeProfit {
		t.Fatalf("protective intents out of order: %+v", intents[1:])
	}
	if !(intents[1].Price < 100.8 && intents[2].Price > 100.8) {
		t.Fatalf("long stop %v / target %v not bracketing entry 100.8", intents[1].Price, intents[2].Price)
	}
	if e.Pending() != nil {
		t.Fatal("pending survived its trigger")
	}
}

func TestEngineFlattenBeforeClose(t *testing.T) {
	acct := &fakeAccount{pos: models.Position{Side: models.Short, Quantity: 2}}
	e := newTestEngine(t, acct)
	warmUp(e)

	// 15:58 with a 1-minute flatten window.
	ts := time.Date(2024, 1, 2, 15, 58, 0, 0, time.UTC)
	e.pending = &PendingSetup{Dir: PendingShort, Level: 99, Kind: "trend_break"}
	intents := e.OnBar(primaryBar(ts, 100, 100.5, 99.5, 100, 100))

	if len(intents) != 1 || intents[0].Kind != models.IntentExitShort {
		t.Fatalf("expected exit_short, got %+v", intents)
	}
	if intents[0].Reason != models.ReasonFlattenClose {
		t.Fatalf("reason: got %q", intents[0].Reason)
	}
	if e.Pending() != nil {
		t.Fatal("pending survived the flatten window")
	}
}

func TestEngineSessionResetClearsPendingAndBudget(t *testing.T) {
	acct := &fakeAccount{}
	e := newTestEngine(t, acct)
	warmUp(e)

	open := time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)
	e.OnBar(primaryBar(open, 100, 100.5, 99.5, 100, 100))
	e.pending = &PendingSetup{Dir: PendingLong, Level: 101, Kind: "trend_break"}
	e.signalsThisSession = 3

	// Leave NY, then open Asia: session start resets the state.
	e.OnBar(primaryBar(time.Date(2024, 1, 2, 17, 0, 0, 0, time.UTC), 100, 100.5, 99.5, 100, 100))
	if e.Pending() == nil {
		t.Fatal("pending should survive the dead zone")
	}
	e.OnBar(primaryBar(time.Date(2024, 1, 2, 18, 0, 0, 0, time.UTC), 100, 100.5, 99.5, 100, 100))
	if e.Pending() != nil {
		t.Fatal("pending survived the session reset")
	}
	if e.signalsThisSession != 0 {
		t.Fatalf("session budget not reset: %d", e.signalsThisSession)
	}
}
