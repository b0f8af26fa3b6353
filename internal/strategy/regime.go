package strategy

import (
	"time"

	"renkoconfluence/internal/model"
)

// RegimeArbiter picks at most one signal per candle out of Strategy A and
// Strategy B's outputs. It tracks trend-change frequency across both Renko
// engines to classify the regime as trending or ranging.
type RegimeArbiter struct {
	sessionStart     time.Time
	trendChangeCount int
}

// NewRegimeArbiter creates an arbiter whose session clock starts now.
func NewRegimeArbiter(sessionStart time.Time) *RegimeArbiter {
	return &RegimeArbiter{sessionStart: sessionStart}
}

// ObserveEvents scans Renko events from either engine for TREND_CHANGE
// occurrences, feeding the regime classification.
func (r *RegimeArbiter) ObserveEvents(events []model.RenkoEvent) {
	for _, ev := range events {
		if ev.Kind == model.EventTrendChange {
			r.trendChangeCount++
		}
	}
}

// Regime returns the current market regime classification.
func (r *RegimeArbiter) Regime(now time.Time) model.MarketRegime {
	hours := now.Sub(r.sessionStart).Hours()
	if hours <= 0 {
		return model.RegimeTrending
	}
	rate := float64(r.trendChangeCount) / hours
	if rate > 3 {
		return model.RegimeRanging
	}
	return model.RegimeTrending
}

// Arbitrate picks at most one of sigA/sigB per the regime rule. Either
// argument may be nil.
func (r *RegimeArbiter) Arbitrate(now time.Time, sigA, sigB *model.Signal) *model.Signal {
	regime := r.Regime(now)

	switch regime {
	case model.RegimeTrending:
		if sigA != nil && sigA.ConfluenceScore >= 8 {
			return sigA
		}
		if sigA == nil && sigB != nil {
			return sigB
		}
		if sigA != nil {
			return sigA
		}
		return sigB
	default: // RegimeRanging
		if sigB != nil && sigB.Confidence >= 0.7 {
			return sigB
		}
		if sigB == nil && sigA != nil {
			return sigA
		}
		if sigA == nil {
			return sigB
		}
		if sigB == nil {
			return sigA
		}
		if sigA.Confidence >= sigB.Confidence {
			return sigA
		}
		return sigB
	}
}
