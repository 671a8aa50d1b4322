package engine

import (
	"math"
	"time"

	"ApexCore/internal/domain/models"
	"ApexCore/internal/domain/repository"
	"ApexCore/internal/indicator"
	"ApexCore/pkg/config"
	"ApexCore/pkg/logger"
)

// Engine is the bar-driven decision core. It owns every piece of mutable
// strategy state and is mutated only from OnBar; callers feeding it from an
// asynchronous source must serialize the calls.
type Engine struct {
	cfg  config.Strategy
	inst models.Instrument
	log  *logger.Logger
	acct repository.AccountState

	// primary-timeframe indicators
	atr     *indicator.ATR
	rsi     *indicator.RSI
	emaFast *indicator.EMA
	volSMA  *indicator.SMA
	wt      *indicator.WaveTrend
	bb      *indicator.Bollinger

	// higher-timeframe indicators, read by the primary path only through
	// their last closed values
	htfEmaFast *indicator.EMA
	htfEmaSlow *indicator.EMA
	adx        *indicator.ADX

	dailyATR *indicator.ATR

	sessions  *SessionTracker
	vwap      *SessionVWAP
	openRange *OpeningRange
	zones     *LiquidityZones
	guard     *Guard
	sizer     *Sizer
	regime    Regime

	pending *PendingSetup

	prev    models.Bar
	hasPrev bool

	barIndex           int
	lastSignalBar      int
	signalsThisSession int
	curDay             time.Time

	barsProcessed int64
}

func New(cfg config.Strategy, inst models.Instrument, acct repository.AccountState, log *logger.Logger) *Engine {
	return &Engine{
		cfg:  cfg,
		inst: inst,
		log:  log,
		acct: acct,

		atr:     indicator.NewATR(cfg.AtrLen),
		rsi:     indicator.NewRSI(cfg.RsiLen),
		emaFast: indicator.NewEMA(cfg.EmaFastLen),
		volSMA:  indicator.NewSMA(cfg.Confirm.VolumeMAPeriod),
		wt: indicator.NewWaveTrend(cfg.WaveTrend.ChannelLength, cfg.WaveTrend.AverageLength,
			cfg.WaveTrend.SignalLength, cfg.WaveTrend.Oversold, cfg.WaveTrend.Overbought),
		bb: indicator.NewBollinger(cfg.Bollinger.Period, cfg.Bollinger.StdDev,
			cfg.Bollinger.Expansion, cfg.Bollinger.SqueezeThreshold),

		htfEmaFast: indicator.NewEMA(cfg.EmaFastLen),
		htfEmaSlow: indicator.NewEMA(cfg.EmaSlowLen),
		adx:        indicator.NewADX(cfg.AdxLen),

		dailyATR: indicator.NewATR(cfg.AtrDailyLen),

		sessions:  NewSessionTracker(cfg),
		vwap:      NewSessionVWAP(),
		openRange: NewOpeningRange(cfg.OrMinutes),
		zones:     NewLiquidityZones(),
		guard:     NewGuard(cfg, acct, log),
		sizer:     NewSizer(cfg, inst),
	}
}

// OnBar processes one closed bar and returns the intents it produced.
// Auxiliary-timeframe bars only advance their own indicator state.
func (e *Engine) OnBar(ev *models.BarEvent) []models.TradeIntent {
	e.barsProcessed++

	switch ev.Series {
	case models.SeriesTrend:
		e.htfEmaFast.Update(ev.Bar.Close)
		e.htfEmaSlow.Update(ev.Bar.Close)
		e.adx.Update(ev.Bar.High, ev.Bar.Low, ev.Bar.Close)
		return nil
	case models.SeriesDaily:
		e.dailyATR.Update(ev.Bar.High, ev.Bar.Low, ev.Bar.Close)
		return nil
	default:
		return e.onPrimaryBar(ev.Bar)
	}
}

func (e *Engine) onPrimaryBar(bar models.Bar) []models.TradeIntent {
	e.barIndex++
	defer func() {
		e.prev = bar
		e.hasPrev = true
	}()

	// Recurrences advance on every bar, decisions wait for warm state.
	atr := e.atr.Update(bar.High, bar.Low, bar.Close)
	rsi := e.rsi.Update(bar.Close)
	e.emaFast.Update(bar.Close)
	volSMA := e.volSMA.Update(bar.Volume)
	e.wt.Update(bar.High, bar.Low, bar.Close)
	e.bb.Update(bar.Close)

	if !e.warm() {
		return nil
	}

	sess, started := e.sessions.Update(bar.Time)
	if started {
		e.resetSessionState(bar)
	}

	y, m, d := bar.Time.Date()
	if day := time.Date(y, m, d, 0, 0, 0, 0, bar.Time.Location()); !day.Equal(e.curDay) {
		e.curDay = day
		e.guard.ResetDaily()
		e.zones.Reset()
	}

	if InFlattenWindow(bar.Time, e.cfg.FlattenMinutesBeforeClose) {
		intents := e.flatten(bar, models.ReasonFlattenClose)
		e.cancelPending("flatten window")
		return intents
	}

	if halt, intents := e.guard.Evaluate(bar.Time, e.acct.Position(), e.inst.Symbol); halt {
		return intents
	}

	inSess := e.sessions.InSession()
	e.vwap.Update(bar, inSess)
	e.openRange.Update(bar, inSess, e.dailyATRValue())
	e.regime = classifyRegime(&e.cfg, e.openRange.Done(), e.openRange.Ratio(),
		atr, e.adx.Value(), e.htfEmaFast.Value(), e.htfEmaSlow.Value(), e.vwap.Slope(atr), sess)
	e.zones.Update(bar, volSMA, atr)

	var intents []models.TradeIntent
	intents = append(intents, e.checkPending(bar, atr)...)

	if e.regime.Trend && e.canSignal() {
		e.maybeArmBreakout(bar, atr, volSMA)
	}
	if e.regime.Chop && e.canSignal() {
		intents = append(intents, e.chopEntry(bar, atr, rsi)...)
	}
	return intents
}

// warm reports whether every indicator the decision path reads has a full
// window. Daily ATR is exempt: it falls back to scaled intraday ATR.
func (e *Engine) warm() bool {
	return e.atr.Ready() && e.rsi.Ready() && e.emaFast.Ready() && e.htfEmaSlow.Ready()
}

func (e *Engine) dailyATRValue() float64 {
	if e.dailyATR.Ready() {
		return e.dailyATR.Value()
	}
	return e.atr.Value() * atrDailyFallbackMult
}

func (e *Engine) resetSessionState(bar models.Bar) {
	e.signalsThisSession = 0
	e.lastSignalBar = e.barIndex - e.cfg.CooldownBars - 1 // allow an immediate signal
	e.vwap.Reset()
	e.openRange.Reset(bar.Time)
	e.cancelPending("session reset")

	e.log.Info("session start",
		logger.String("session", e.sessions.Current().String()),
		logger.Time("bar_time", bar.Time),
	)
}

// canSignal gates new setups: in session, opening range complete, session
// budget left, cooldown elapsed, and flat.
func (e *Engine) canSignal() bool {
	if !e.sessions.InSession() || !e.openRange.Done() {
		return false
	}
	if e.signalsThisSession >= e.cfg.MaxSignalsPerSession {
		return false
	}
	if e.barIndex-e.lastSignalBar < e.cfg.CooldownBars {
		return false
	}
	return e.acct.Position().IsFlat()
}

// checkPending ages the armed setup, expires it, cancels it if a position
// appeared, and fires the breakout entry when the trigger level trades.
func (e *Engine) checkPending(bar models.Bar, atr float64) []models.TradeIntent {
	if e.pending == nil {
		return nil
	}

	e.pending.Age++
	if e.pending.Age > e.cfg.SetupExpiryBars {
		e.cancelPending("expired")
		return nil
	}
	if !e.acct.Position().IsFlat() {
		e.cancelPending("position open")
		return nil
	}

	switch e.pending.Dir {
	case PendingLong:
		if bar.High >= e.pending.Level {
			intents := e.trendEntry(bar, atr, true)
			e.cancelPending("triggered")
			return intents
		}
	case PendingShort:
		if bar.Low <= e.pending.Level {
			intents := e.trendEntry(bar, atr, false)
			e.cancelPending("triggered")
			return intents
		}
	}
	return nil
}

// maybeArmBreakout looks for a pullback-reversal setup in the trend regime
// and arms a pending breakout above/below the signal bar.
func (e *Engine) maybeArmBreakout(bar models.Bar, atr, volSMA float64) {
	if e.pending != nil || !e.hasPrev {
		return
	}
	vwap := e.vwap.Value()
	if math.IsNaN(vwap) || atr <= 0 || math.IsNaN(atr) {
		return
	}

	fastHTF, slowHTF := e.htfEmaFast.Value(), e.htfEmaSlow.Value()
	biasLong := fastHTF > slowHTF && bar.Close > vwap
	biasShort := fastHTF < slowHTF && bar.Close < vwap

	band := e.cfg.PullBandATR * atr
	emaFast := e.emaFast.Value()

	touchLong := (e.cfg.UsePullbackVWAP && bar.Low <= vwap-band && bar.Close > vwap) ||
		(e.cfg.UsePullbackEMA && bar.Low <= emaFast && bar.Close > emaFast)
	touchShort := (e.cfg.UsePullbackVWAP && bar.High >= vwap+band && bar.Close < vwap) ||
		(e.cfg.UsePullbackEMA && bar.High >= emaFast && bar.Close < emaFast)

	reversalLong := bar.IsBullish() && bar.Close > e.prev.High
	reversalShort := bar.IsBearish() && bar.Close < e.prev.Low

	setupLong := biasLong && touchLong && reversalLong && e.confirmed(bar, atr, volSMA, true)
	setupShort := biasShort && touchShort && reversalShort && e.confirmed(bar, atr, volSMA, false)

	buf := float64(e.cfg.BreakBufferTicks) * e.inst.TickSize
	switch {
	case setupLong:
		e.pending = &PendingSetup{Dir: PendingLong, Level: bar.High + buf, Kind: "trend_break"}
	case setupShort:
		e.pending = &PendingSetup{Dir: PendingShort, Level: bar.Low - buf, Kind: "trend_break"}
	default:
		return
	}

	e.log.Debug("breakout armed",
		logger.String("side", e.pending.Dir.String()),
		logger.Float64("level", e.pending.Level),
		logger.Int("bar", e.barIndex),
	)
}

// confirmed applies the optional entry confirmations. A disabled check is
// vacuously satisfied.
func (e *Engine) confirmed(bar models.Bar, atr, volSMA float64, long bool) bool {
	c := &e.cfg.Confirm
	if c.WaveTrend {
		if long && !e.wt.Bullish() {
			return false
		}
		if !long && !e.wt.Bearish() {
			return false
		}
	}
	if c.VolatilityExpansion && !e.bb.IsExpanding() {
		return false
	}
	if c.Volume && !(bar.Volume >= volSMA*c.MinVolumeMultiplier) {
		return false
	}
	if c.LiquidityZones && !e.zones.Near(bar.Close, atr) {
		return false
	}
	return true
}

func (e *Engine) trendEntry(bar models.Bar, atr float64, long bool) []models.TradeIntent {
	qty := e.sizer.Quantity(atr)
	if qty == 0 {
		return nil
	}

	entry := bar.Close
	var sl, tp float64
	kind, tag := models.IntentEnterLong, "trend_long"
	if long {
		sl = entry - e.cfg.StopMultATR*atr
		tp = entry + e.cfg.TpMultATR*atr
	} else {
		kind, tag = models.IntentEnterShort, "trend_short"
		sl = entry + e.cfg.StopMultATR*atr
		tp = entry - e.cfg.TpMultATR*atr
	}

	e.signalsThisSession++
	e.lastSignalBar = e.barIndex
	e.log.Info("trend entry",
		logger.String("tag", tag),
		logger.Float64("entry", entry),
		logger.Float64("stop", sl),
		logger.Float64("target", tp),
		logger.Int("qty", qty),
	)
	return e.entryIntents(bar, kind, tag, models.ReasonTrendBreakout, qty, sl, tp)
}

// chopEntry fires immediate mean-reversion entries when price is stretched
// from VWAP with RSI agreement and a reversal bar.
func (e *Engine) chopEntry(bar models.Bar, atr, rsi float64) []models.TradeIntent {
	if !e.hasPrev {
		return nil
	}
	vwap := e.vwap.Value()
	if math.IsNaN(vwap) || atr <= 0 || math.IsNaN(atr) || math.IsNaN(rsi) {
		return nil
	}

	dev := e.cfg.DevMultATR * atr
	reversalLong := bar.IsBullish() && bar.Close > e.prev.High
	reversalShort := bar.IsBearish() && bar.Close < e.prev.Low

	long := bar.Close <= vwap-dev && rsi <= e.cfg.RsiLow && reversalLong
	short := bar.Close >= vwap+dev && rsi >= e.cfg.RsiHigh && reversalShort
	if !long && !short {
		return nil
	}

	qty := e.sizer.Quantity(atr)
	if qty == 0 {
		return nil
	}

	entry := bar.Close
	tpChop := e.cfg.ChopTPATR * atr
	var sl, tp float64
	kind, tag := models.IntentEnterLong, "chop_long"
	if long {
		sl = entry - e.cfg.StopMultATR*atr
		tp = entry + tpChop
		// Mean reversion targets VWAP; never reach past it.
		if vwap > entry {
			tp = math.Min(tp, vwap)
		}
	} else {
		kind, tag = models.IntentEnterShort, "chop_short"
		sl = entry + e.cfg.StopMultATR*atr
		tp = entry - tpChop
		if vwap < entry {
			tp = math.Max(tp, vwap)
		}
	}

	e.signalsThisSession++
	e.lastSignalBar = e.barIndex
	e.log.Info("chop entry",
		logger.String("tag", tag),
		logger.Float64("entry", entry),
		logger.Float64("stop", sl),
		logger.Float64("target", tp),
		logger.Int("qty", qty),
	)
	return e.entryIntents(bar, kind, tag, models.ReasonChopReversion, qty, sl, tp)
}

func (e *Engine) entryIntents(bar models.Bar, kind models.IntentKind, tag, reason string, qty int, sl, tp float64) []models.TradeIntent {
	return []models.TradeIntent{
		{Kind: kind, Symbol: e.inst.Symbol, Quantity: qty, Tag: tag, Reason: reason, Time: bar.Time},
		{Kind: models.IntentSetStopLoss, Symbol: e.inst.Symbol, Price: sl, Tag: tag, Time: bar.Time},
		{Kind: models.IntentSetTakeProfit, Symbol: e.inst.Symbol, Price: tp, Tag: tag, Time: bar.Time},
	}
}

// flatten emits exit intents for whatever position is open.
func (e *Engine) flatten(bar models.Bar, reason string) []models.TradeIntent {
	pos := e.acct.Position()
	if pos.IsFlat() {
		return nil
	}
	kind := models.IntentExitLong
	if pos.Side == models.Short {
		kind = models.IntentExitShort
	}
	e.log.Info("flattening position", logger.String("reason", reason))
	return []models.TradeIntent{{
		Kind:     kind,
		Symbol:   e.inst.Symbol,
		Quantity: pos.Quantity,
		Tag:      "flatten",
		Reason:   reason,
		Time:     bar.Time,
	}}
}

func (e *Engine) cancelPending(why string) {
	if e.pending == nil {
		return
	}
	e.log.Debug("pending cancelled",
		logger.String("side", e.pending.Dir.String()),
		logger.String("why", why),
	)
	e.pending = nil
}

// Pending returns the armed setup, nil when none.
func (e *Engine) Pending() *PendingSetup { return e.pending }

// Guard exposes the compliance guard for status reporting.
func (e *Engine) Guard() *Guard { return e.guard }

// Status snapshots the engine for diagnostics.
func (e *Engine) Status() *models.EngineStatus {
	s := &models.EngineStatus{
		Symbol:        e.inst.Symbol,
		Session:       e.sessions.Current().String(),
		VWAP:          e.vwap.Value(),
		VWAPSlope:     e.regime.VwapSlope,
		ORComplete:    e.openRange.Done(),
		ORRatio:       e.openRange.Ratio(),
		TrendRegime:   e.regime.Trend,
		ChopRegime:    e.regime.Chop,
		ADX:           e.adx.Value(),
		ATR:           e.atr.Value(),
		RSI:           e.rsi.Value(),
		SessionCount:  e.signalsThisSession,
		GuardTripped:  e.guard.Tripped(),
		GuardReason:   e.guard.Reason(),
		DailyPnl:      e.guard.DailyPnl(),
		PeakEquity:    e.guard.PeakEquity(),
		BarsProcessed: e.barsProcessed,
	}
	if e.hasPrev {
		s.BarTime = e.prev.Time
	}
	if e.pending != nil {
		s.PendingSide = e.pending.Dir.String()
		s.PendingLevel = e.pending.Level
		s.PendingAge = e.pending.Age
	}
	return s
}
