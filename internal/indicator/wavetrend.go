package indicator

import "math"

// WaveTrend is the LazyBear oscillator: the typical price is centered on its
// EMA, scaled by the mean absolute deviation, then smoothed into a fast line
// (wt1) and a signal line (wt2).
type WaveTrend struct {
	esa *EMA
	dev *EMA
	wt1 *EMA
	wt2 *SMA

	oversold   float64
	overbought float64
	avgLen     int
	count      int

	prevWT1 float64
	prevWT2 float64
	curWT1  float64
	curWT2  float64
}

// NewWaveTrend creates a WaveTrend with the given channel, average and signal
// lengths and the oversold/overbought levels used by the predicates.
func NewWaveTrend(channelLen, averageLen, signalLen int, oversold, overbought float64) *WaveTrend {
	return &WaveTrend{
		esa:        NewEMA(channelLen),
		dev:        NewEMA(channelLen),
		wt1:        NewEMA(averageLen),
		wt2:        NewSMA(signalLen),
		oversold:   oversold,
		overbought: overbought,
		avgLen:     averageLen,
		prevWT1:    math.NaN(),
		prevWT2:    math.NaN(),
		curWT1:     math.NaN(),
		curWT2:     math.NaN(),
	}
}

// Update folds one bar into the oscillator.
func (w *WaveTrend) Update(high, low, close float64) {
	hlc3 := (high + low + close) / 3.0
	esa := w.esa.Update(hlc3)
	d := w.dev.Update(math.Abs(hlc3 - esa))

	ci := 0.0
	if d != 0 {
		ci = (hlc3 - esa) / (0.015 * d)
	}
	wt1 := w.wt1.Update(ci)
	wt2 := w.wt2.Update(wt1)
	// Signal line tracks the fast line until its own window fills.
	if !w.wt2.Ready() {
		wt2 = wt1
	}

	w.prevWT1, w.prevWT2 = w.curWT1, w.curWT2
	w.curWT1, w.curWT2 = wt1, wt2
	w.count++
}

// WT1 returns the fast line.
func (w *WaveTrend) WT1() float64 { return w.curWT1 }

// WT2 returns the signal line.
func (w *WaveTrend) WT2() float64 { return w.curWT2 }

// Ready reports whether the fast line has a full smoothing window behind it.
func (w *WaveTrend) Ready() bool { return w.count > w.avgLen }

// Bullish reports a long confirmation: the fast line crossing above the
// signal line, or rising out of the oversold zone.
func (w *WaveTrend) Bullish() bool {
	if !w.Ready() || math.IsNaN(w.prevWT1) {
		return false
	}
	crossUp := w.prevWT1 <= w.prevWT2 && w.curWT1 > w.curWT2
	risingFromOversold := w.curWT1 < w.oversold && w.curWT1 > w.prevWT1
	return crossUp || risingFromOversold
}

// Bearish reports the mirror short confirmation.
func (w *WaveTrend) Bearish() bool {
	if !w.Ready() || math.IsNaN(w.prevWT1) {
		return false
	}
	crossDown := w.prevWT1 >= w.prevWT2 && w.curWT1 < w.curWT2
	fallingFromOverbought := w.curWT1 > w.overbought && w.curWT1 < w.prevWT1
	return crossDown || fallingFromOverbought
}

// Reset clears all state.
func (w *WaveTrend) Reset() {
	w.esa.Reset()
	w.dev.Reset()
	w.wt1.Reset()
	w.wt2.Reset()
	w.count = 0
	w.prevWT1, w.prevWT2 = math.NaN(), math.NaN()
	w.curWT1, w.curWT2 = math.NaN(), math.NaN()
}
