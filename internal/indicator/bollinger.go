package indicator

import (
	"math"

	"renkoconfluence/internal/model"
)

// BollingerValue is one reading of the Bollinger Bands indicator.
type BollingerValue struct {
	Upper  float64
	Middle float64
	Lower  float64
}

// Bollinger computes a period-p SMA middle band with upper/lower bands at
// +/- sigma standard deviations.
type Bollinger struct {
	period int
	sigma  float64
	buf    []float64
	idx    int
	count  int

	current BollingerValue
}

// NewBollinger creates a Bollinger Bands indicator.
func NewBollinger(period int, sigma float64) *Bollinger {
	return &Bollinger{
		period: period,
		sigma:  sigma,
		buf:    make([]float64, period),
	}
}

func (bb *Bollinger) Name() string { return "BOLLINGER" }

func (bb *Bollinger) Update(b model.Brick) {
	price := brickClose(b)

	bb.buf[bb.idx] = price
	bb.idx = (bb.idx + 1) % bb.period
	if bb.count < bb.period {
		bb.count++
	}
	if bb.count < bb.period {
		return
	}

	mean := 0.0
	for _, v := range bb.buf {
		mean += v
	}
	mean /= float64(bb.period)

	variance := 0.0
	for _, v := range bb.buf {
		d := v - mean
		variance += d * d
	}
	variance /= float64(bb.period)
	stddev := math.Sqrt(variance)

	bb.current = BollingerValue{
		Upper:  mean + bb.sigma*stddev,
		Middle: mean,
		Lower:  mean - bb.sigma*stddev,
	}
}

func (bb *Bollinger) Value() BollingerValue { return bb.current }
func (bb *Bollinger) Ready() bool           { return bb.count >= bb.period }
