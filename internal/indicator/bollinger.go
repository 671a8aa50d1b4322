package indicator

import "math"

// Bollinger is a Bollinger band set with a second, wider expansion band and a
// bandwidth history used to detect squeezes breaking open.
type Bollinger struct {
	sma     *SMA
	stdMult float64
	expMult float64
	squeeze float64

	// bandwidth for the current bar and the two before it
	bw [3]float64
}

// NewBollinger creates bands over the given period. stdMult scales the inner
// band, expMult the expansion band, and squeezeThreshold is the bandwidth
// below which the market counts as compressed.
func NewBollinger(period int, stdMult, expMult, squeezeThreshold float64) *Bollinger {
	b := &Bollinger{
		sma:     NewSMA(period),
		stdMult: stdMult,
		expMult: expMult,
		squeeze: squeezeThreshold,
	}
	b.bw = [3]float64{math.NaN(), math.NaN(), math.NaN()}
	return b
}

// Update folds one close into the bands.
func (b *Bollinger) Update(close float64) {
	b.sma.Update(close)
	b.bw[2], b.bw[1] = b.bw[1], b.bw[0]
	b.bw[0] = b.bandwidth()
}

// Middle returns the center line.
func (b *Bollinger) Middle() float64 { return b.sma.Value() }

// Upper returns the inner upper band.
func (b *Bollinger) Upper() float64 { return b.sma.Value() + b.stdMult*b.sma.StdDev() }

// Lower returns the inner lower band.
func (b *Bollinger) Lower() float64 { return b.sma.Value() - b.stdMult*b.sma.StdDev() }

// ExpansionUpper returns the wider upper band.
func (b *Bollinger) ExpansionUpper() float64 { return b.sma.Value() + b.expMult*b.sma.StdDev() }

// ExpansionLower returns the wider lower band.
func (b *Bollinger) ExpansionLower() float64 { return b.sma.Value() - b.expMult*b.sma.StdDev() }

// Bandwidth returns (upper-lower)/middle for the current bar, 0 when the
// middle line is 0.
func (b *Bollinger) Bandwidth() float64 { return b.bw[0] }

func (b *Bollinger) bandwidth() float64 {
	mid := b.sma.Value()
	if math.IsNaN(mid) || mid == 0 {
		return 0
	}
	return (b.Upper() - b.Lower()) / mid
}

// InSqueeze reports whether bandwidth sits below the squeeze threshold.
func (b *Bollinger) InSqueeze() bool {
	return b.Ready() && b.bw[0] < b.squeeze
}

// IsExpanding reports a squeeze breaking open: bandwidth rising this bar
// after contracting into the previous one.
func (b *Bollinger) IsExpanding() bool {
	if !b.Ready() || math.IsNaN(b.bw[2]) {
		return false
	}
	return b.bw[0] > b.bw[1] && b.bw[1] < b.bw[2]
}

// Ready reports whether the averaging window is full.
func (b *Bollinger) Ready() bool { return b.sma.Ready() }

// Reset clears the window and bandwidth history.
func (b *Bollinger) Reset() {
	b.sma.Reset()
	b.bw = [3]float64{math.NaN(), math.NaN(), math.NaN()}
}
