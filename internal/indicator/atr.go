package indicator

import "renkoconfluence/internal/model"

// ATR calculates the Average True Range over brick true ranges using
// Wilder's smoothing: the first value is a plain SMA of the first `period`
// true ranges, then atr_i = (atr_{i-1}*(period-1) + tr_i) / period.
//
// This is distinct from the Renko engine's own brick-sizing ATR, which
// intentionally uses a simple SMA throughout rather than Wilder's method
// — the two must not be unified.
type ATR struct {
	period    int
	count     int
	prevClose float64
	sum       float64
	current   float64
	seeded    bool
}

// NewATR creates an ATR indicator with the given period.
func NewATR(period int) *ATR {
	return &ATR{period: period}
}

func (a *ATR) Name() string { return "ATR" }

func (a *ATR) Update(b model.Brick) {
	a.count++
	if a.count == 1 {
		a.prevClose, _ = b.Close.Float64()
		return
	}

	tr := trueRange(b, a.prevClose)
	a.prevClose, _ = b.Close.Float64()

	idx := a.count - 1 // number of true ranges observed so far
	if idx <= a.period {
		a.sum += tr
		if idx == a.period {
			a.current = a.sum / float64(a.period)
			a.seeded = true
		}
		return
	}

	p := float64(a.period)
	a.current = (a.current*(p-1) + tr) / p
}

func (a *ATR) Value() float64 { return a.current }
func (a *ATR) Ready() bool    { return a.seeded }
