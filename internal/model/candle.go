package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Candle is a 1-minute OHLCV bucket aggregated from ticks.
// Invariant: Low <= Open,Close <= High; Volume >= 0. Once Closed is true
// the candle must not be mutated further.
type Candle struct {
	BucketStart time.Time       `json:"bucket_start"`
	Open        decimal.Decimal `json:"open"`
	High        decimal.Decimal `json:"high"`
	Low         decimal.Decimal `json:"low"`
	Close       decimal.Decimal `json:"close"`
	Volume      decimal.Decimal `json:"volume"`
	Closed      bool            `json:"closed"`
}

// PriceSource names the candle field Renko construction reads from.
type PriceSource string

const (
	PriceSourceClose PriceSource = "close"
	PriceSourceHL2   PriceSource = "hl2"
	PriceSourceHLC3  PriceSource = "hlc3"
	PriceSourceOHLC4 PriceSource = "ohlc4"
)

// SourcePrice returns the candle price selected by src.
func (c Candle) SourcePrice(src PriceSource) decimal.Decimal {
	two := decimal.NewFromInt(2)
	three := decimal.NewFromInt(3)
	four := decimal.NewFromInt(4)
	switch src {
	case PriceSourceHL2:
		return c.High.Add(c.Low).Div(two)
	case PriceSourceHLC3:
		return c.High.Add(c.Low).Add(c.Close).Div(three)
	case PriceSourceOHLC4:
		return c.Open.Add(c.High).Add(c.Low).Add(c.Close).Div(four)
	default:
		return c.Close
	}
}

// TrueRange computes the True Range of this candle against prevClose.
// TR = max(high-low, |high-prevClose|, |low-prevClose|).
func (c Candle) TrueRange(prevClose decimal.Decimal) decimal.Decimal {
	hl := c.High.Sub(c.Low)
	hc := c.High.Sub(prevClose).Abs()
	lc := c.Low.Sub(prevClose).Abs()
	tr := hl
	if hc.GreaterThan(tr) {
		tr = hc
	}
	if lc.GreaterThan(tr) {
		tr = lc
	}
	return tr
}
