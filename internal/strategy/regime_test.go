package strategy

import (
	"testing"
	"time"

	"renkoconfluence/internal/model"

	"github.com/shopspring/decimal"
)

func sig(origin model.StrategyOrigin, confluence int, confidence float64) *model.Signal {
	return &model.Signal{
		Kind:            model.SignalLongEntry,
		OriginStrategy:  origin,
		ConfluenceScore: confluence,
		Confidence:      confidence,
		PositionSize:    decimal.NewFromInt(1),
	}
}

func TestRegimeArbiter_TrendingByDefault(t *testing.T) {
	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	a := NewRegimeArbiter(start)
	if got := a.Regime(start.Add(time.Hour)); got != model.RegimeTrending {
		t.Fatalf("expected trending with no trend changes, got %v", got)
	}
}

func TestRegimeArbiter_RangingWhenChurnHigh(t *testing.T) {
	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	a := NewRegimeArbiter(start)
	for i := 0; i < 10; i++ {
		a.ObserveEvents([]model.RenkoEvent{{Kind: model.EventTrendChange}})
	}
	// 10 trend changes in 1 hour => rate 10 > 3 => Ranging.
	if got := a.Regime(start.Add(time.Hour)); got != model.RegimeRanging {
		t.Fatalf("expected ranging under high trend-change rate, got %v", got)
	}
}

func TestRegimeArbiter_TrendingPrefersHighConfluenceA(t *testing.T) {
	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	a := NewRegimeArbiter(start)
	now := start.Add(time.Minute)

	sigA := sig(model.OriginA, 8, 0.6)
	sigB := sig(model.OriginB, 0, 0.9)

	got := a.Arbitrate(now, sigA, sigB)
	if got != sigA {
		t.Fatalf("expected A preferred at confluence>=8 in trending regime")
	}
}

func TestRegimeArbiter_TrendingFallsBackToBWhenAAbsent(t *testing.T) {
	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	a := NewRegimeArbiter(start)
	now := start.Add(time.Minute)

	sigB := sig(model.OriginB, 0, 0.5)
	got := a.Arbitrate(now, nil, sigB)
	if got != sigB {
		t.Fatalf("expected B when A absent in trending regime")
	}
}

func TestRegimeArbiter_TrendingPrefersAEvenBelowThreshold(t *testing.T) {
	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	a := NewRegimeArbiter(start)
	now := start.Add(time.Minute)

	sigA := sig(model.OriginA, 5, 0.4)
	sigB := sig(model.OriginB, 0, 0.9)
	got := a.Arbitrate(now, sigA, sigB)
	if got != sigA {
		t.Fatalf("expected A to win whenever both present in trending regime, even below 8")
	}
}

func TestRegimeArbiter_RangingPrefersHighConfidenceB(t *testing.T) {
	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	a := NewRegimeArbiter(start)
	for i := 0; i < 10; i++ {
		a.ObserveEvents([]model.RenkoEvent{{Kind: model.EventTrendChange}})
	}
	now := start.Add(time.Hour)

	sigA := sig(model.OriginA, 9, 0.3)
	sigB := sig(model.OriginB, 0, 0.75)
	got := a.Arbitrate(now, sigA, sigB)
	if got != sigB {
		t.Fatalf("expected B preferred at confidence>=0.7 in ranging regime")
	}
}

func TestRegimeArbiter_RangingHighestConfidenceWinsBelowThreshold(t *testing.T) {
	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	a := NewRegimeArbiter(start)
	for i := 0; i < 10; i++ {
		a.ObserveEvents([]model.RenkoEvent{{Kind: model.EventTrendChange}})
	}
	now := start.Add(time.Hour)

	sigA := sig(model.OriginA, 9, 0.6)
	sigB := sig(model.OriginB, 0, 0.5)
	got := a.Arbitrate(now, sigA, sigB)
	if got != sigA {
		t.Fatalf("expected higher-confidence A to win when B below 0.7 threshold")
	}
}

func TestRegimeArbiter_NoSignalsReturnsNil(t *testing.T) {
	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	a := NewRegimeArbiter(start)
	got := a.Arbitrate(start.Add(time.Minute), nil, nil)
	if got != nil {
		t.Fatalf("expected nil when neither strategy signals, got %+v", got)
	}
}
