// Package indicator computes technical indicators over a Renko brick tail
// (component C3). Every indicator treats a Brick as an OHLC
// bar via Brick.High/Low. Indicator math runs in float64 — these values are
// derived signals, never persisted balances, so the precision shopspring's
// decimal buys elsewhere (money, position sizing) isn't needed here and
// would make the stddev/sqrt work in Bollinger and SuperTrend's ATR ratio
// considerably more awkward.
package indicator

import "renkoconfluence/internal/model"

// Series is the common interface for the single-valued running indicators
// (SMA, EMA, RSI). Each is updated one brick at a time and reports Ready()
// only once it has accumulated enough bricks for a meaningful value.
type Series interface {
	Name() string
	Update(b model.Brick)
	Value() float64
	Ready() bool
}

// brickClose returns a brick's close price as float64.
func brickClose(b model.Brick) float64 {
	f, _ := b.Close.Float64()
	return f
}

// trueRange computes the True Range of brick b against the previous brick's
// close, using b's high/low as an OHLC bar.
func trueRange(b model.Brick, prevClose float64) float64 {
	high, _ := b.High().Float64()
	low, _ := b.Low().Float64()
	hl := high - low
	hc := abs(high - prevClose)
	lc := abs(low - prevClose)
	tr := hl
	if hc > tr {
		tr = hc
	}
	if lc > tr {
		tr = lc
	}
	return tr
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
