package indicator

import "renkoconfluence/internal/model"

// StochasticValue is one reading of the Stochastic Oscillator.
type StochasticValue struct {
	K float64
	D float64
}

// Stochastic computes %K over a kPeriod window of brick highs/lows/closes,
// and %D as a dPeriod SMA of %K.
type Stochastic struct {
	kPeriod int
	dPeriod int

	highs []float64
	lows  []float64
	idx   int
	count int

	kBuf   []float64
	kIdx   int
	kCount int

	current StochasticValue
}

// NewStochastic creates a Stochastic(kPeriod, dPeriod) indicator.
func NewStochastic(kPeriod, dPeriod int) *Stochastic {
	return &Stochastic{
		kPeriod: kPeriod,
		dPeriod: dPeriod,
		highs:   make([]float64, kPeriod),
		lows:    make([]float64, kPeriod),
		kBuf:    make([]float64, dPeriod),
	}
}

func (s *Stochastic) Name() string { return "STOCHASTIC" }

func (s *Stochastic) Update(b model.Brick) {
	high, _ := b.High().Float64()
	low, _ := b.Low().Float64()
	close := brickClose(b)

	s.highs[s.idx] = high
	s.lows[s.idx] = low
	s.idx = (s.idx + 1) % s.kPeriod
	if s.count < s.kPeriod {
		s.count++
	}
	if s.count < s.kPeriod {
		return
	}

	highest, lowest := s.highs[0], s.lows[0]
	for i := 1; i < s.kPeriod; i++ {
		if s.highs[i] > highest {
			highest = s.highs[i]
		}
		if s.lows[i] < lowest {
			lowest = s.lows[i]
		}
	}

	k := 50.0
	if highest != lowest {
		k = 100 * (close - lowest) / (highest - lowest)
	}

	s.kBuf[s.kIdx] = k
	s.kIdx = (s.kIdx + 1) % s.dPeriod
	if s.kCount < s.dPeriod {
		s.kCount++
	}

	d := k
	if s.kCount >= s.dPeriod {
		sum := 0.0
		for _, v := range s.kBuf {
			sum += v
		}
		d = sum / float64(s.dPeriod)
	}

	s.current = StochasticValue{K: k, D: d}
}

func (s *Stochastic) Value() StochasticValue { return s.current }
func (s *Stochastic) Ready() bool            { return s.count >= s.kPeriod && s.kCount >= s.dPeriod }
