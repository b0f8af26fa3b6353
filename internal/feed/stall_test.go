package feed

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestStallDetector_FrozenPriceTriggersStall(t *testing.T) {
	d := New()
	d.MaxFrozen = 3 * time.Second

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	price := decimal.NewFromFloat(50000)

	if d.Observe(price, base) {
		t.Error("first tick should never be a stall")
	}
	if d.Observe(price, base.Add(1*time.Second)) {
		t.Error("should not stall, only 1s stable")
	}
	if !d.Observe(price, base.Add(4*time.Second)) {
		t.Error("should stall — price frozen past MaxFrozen")
	}
}

func TestStallDetector_PriceChangeResetsStability(t *testing.T) {
	d := New()
	d.MaxFrozen = 2 * time.Second

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	d.Observe(decimal.NewFromFloat(100), base)
	d.Observe(decimal.NewFromFloat(100), base.Add(1500*time.Millisecond))
	if d.Observe(decimal.NewFromFloat(101), base.Add(1900*time.Millisecond)) {
		t.Error("price change should reset stability timer, not stall")
	}
}

func TestStallDetector_CheckSilence(t *testing.T) {
	d := New()
	d.MaxSilence = 5 * time.Second

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if d.CheckSilence(base) {
		t.Error("no tick observed yet — silence check is meaningless, should not fire")
	}
	d.Observe(decimal.NewFromFloat(100), base)
	if d.CheckSilence(base.Add(1 * time.Second)) {
		t.Error("should not be silent after only 1s")
	}
	if !d.CheckSilence(base.Add(6 * time.Second)) {
		t.Error("should be silent after 6s with MaxSilence=5s")
	}
}
