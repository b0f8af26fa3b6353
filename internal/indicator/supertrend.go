package indicator

import "renkoconfluence/internal/model"

// SuperTrendValue is one reading of the SuperTrend indicator.
type SuperTrendValue struct {
	Direction model.Direction
	Value     float64
	ATR       float64
	Upper     float64
	Lower     float64
}

// SuperTrend is the critical stateful indicator: a
// persistent upper/lower band pair that flips direction only when the
// brick close crosses the currently active band. Its internal ATR uses the
// same simple-SMA method as the Renko engine's brick sizing, not Wilder's
// smoothing — that divergence from the indicator-layer ATR is intentional.
type SuperTrend struct {
	period     int
	multiplier float64

	trBuf   []float64
	trIdx   int
	trCount int

	prevClose  float64
	finalUpper float64
	finalLower float64
	direction  model.Direction
	haveState  bool

	current SuperTrendValue
}

// NewSuperTrend creates a SuperTrend(period, multiplier) indicator.
func NewSuperTrend(period int, multiplier float64) *SuperTrend {
	return &SuperTrend{
		period:     period,
		multiplier: multiplier,
		trBuf:      make([]float64, period),
		direction:  model.DirInit,
	}
}

func (s *SuperTrend) Name() string { return "SUPERTREND" }

func (s *SuperTrend) Update(b model.Brick) {
	high, _ := b.High().Float64()
	low, _ := b.Low().Float64()
	currentClose := brickClose(b)

	if s.trCount == 0 {
		// First brick only seeds prevClose for the next true range.
		s.trBuf[s.trIdx] = high - low
		s.trIdx = (s.trIdx + 1) % s.period
		s.trCount++
		s.prevClose = currentClose
		return
	}

	tr := trueRange(b, s.prevClose)
	prevClose := s.prevClose // the previous brick's close, needed by the
	// persistence rule below before we overwrite it for the next call.
	s.prevClose = currentClose
	s.trBuf[s.trIdx] = tr
	s.trIdx = (s.trIdx + 1) % s.period
	if s.trCount < s.period {
		s.trCount++
	}
	if s.trCount < s.period {
		return
	}

	atr := 0.0
	for _, v := range s.trBuf {
		atr += v
	}
	atr /= float64(s.period)

	hl2 := (high + low) / 2
	basicUpper := hl2 + s.multiplier*atr
	basicLower := hl2 - s.multiplier*atr

	var finalUpper, finalLower float64
	if !s.haveState {
		finalUpper = basicUpper
		finalLower = basicLower
	} else {
		if basicUpper < s.finalUpper && prevClose > s.finalUpper {
			finalUpper = basicUpper
		} else {
			finalUpper = s.finalUpper
		}
		if basicLower > s.finalLower && prevClose < s.finalLower {
			finalLower = basicLower
		} else {
			finalLower = s.finalLower
		}
	}

	var direction model.Direction
	var value float64
	switch {
	case !s.haveState:
		if currentClose > hl2 {
			direction = model.DirUp
			value = finalLower
		} else {
			direction = model.DirDown
			value = finalUpper
		}
	case s.direction == model.DirUp && currentClose <= finalLower:
		direction = model.DirDown
		value = finalUpper
	case s.direction == model.DirDown && currentClose >= finalUpper:
		direction = model.DirUp
		value = finalLower
	default:
		direction = s.direction
		if direction == model.DirUp {
			value = finalLower
		} else {
			value = finalUpper
		}
	}

	s.finalUpper = finalUpper
	s.finalLower = finalLower
	s.direction = direction
	s.haveState = true

	s.current = SuperTrendValue{
		Direction: direction,
		Value:     value,
		ATR:       atr,
		Upper:     finalUpper,
		Lower:     finalLower,
	}
}

func (s *SuperTrend) Value() SuperTrendValue { return s.current }
func (s *SuperTrend) Ready() bool            { return s.haveState }
