package portfolio

import (
	"testing"
	"time"

	"renkoconfluence/internal/model"
)

func TestRiskManager_DisabledByDefault(t *testing.T) {
	p := newTestPortfolio()
	rm := NewRiskManager(DefaultRiskLimits(), p)
	ok, reason := rm.CanOpenPosition()
	if !ok || reason != "" {
		t.Fatalf("expected default limits to allow trading, got ok=%v reason=%q", ok, reason)
	}
}

func TestRiskManager_TripsOnDailyLoss(t *testing.T) {
	p := newTestPortfolio()
	now := time.Now()
	p.Apply(longEntrySignal(100, 120, 90, 10), d(100), now)
	p.Apply(&model.Signal{Kind: model.SignalExit}, d(40), now.Add(time.Minute))

	rm := NewRiskManager(RiskLimits{MaxDailyLoss: d(50)}, p)
	ok, reason := rm.CanOpenPosition()
	if ok {
		t.Fatalf("expected circuit breaker to trip after a 600-unit loss, got ok=%v reason=%q", ok, reason)
	}
}
