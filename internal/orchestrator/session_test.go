package orchestrator

import (
	"testing"
	"time"

	"renkoconfluence/internal/model"

	"github.com/shopspring/decimal"
)

func tick(price float64, at time.Time) model.Inbound {
	return model.Inbound{
		Kind: model.InboundTick,
		Tick: model.Tick{
			Price:       decimal.NewFromFloat(price),
			Volume:      decimal.NewFromFloat(10),
			ArrivalTime: at,
		},
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestSession_TickStreamProducesNoErrors(t *testing.T) {
	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	cfg := DefaultConfig("BTCUSDT", 10000)
	cfg.Clock = fixedClock(start)
	s := New(cfg, start)

	price := 100.0
	now := start
	for minute := 0; minute < 60; minute++ {
		now = start.Add(time.Duration(minute) * time.Minute)
		price += 1.5 // steady uptrend, one tick per minute bucket
		ev := tick(price, now)
		if err := s.HandleInbound(ev); err != nil {
			t.Fatalf("unexpected error at minute %d: %v", minute, err)
		}
	}

	snap := s.buildSnapshot(now)
	if snap.Symbol != "BTCUSDT" {
		t.Fatalf("expected symbol BTCUSDT, got %q", snap.Symbol)
	}
	if snap.LastPrice.Cmp(decimal.NewFromFloat(price)) != 0 {
		t.Fatalf("expected last price %v, got %v", price, snap.LastPrice)
	}
}

func TestSession_ShutdownClosesOpenPositionAndDrains(t *testing.T) {
	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	cfg := DefaultConfig("BTCUSDT", 10000)
	cfg.Clock = fixedClock(start)
	s := New(cfg, start)

	price := 100.0
	now := start
	for minute := 0; minute < 120; minute++ {
		now = start.Add(time.Duration(minute) * time.Minute)
		price += 2.0
		_ = s.HandleInbound(tick(price, now))
	}

	shutdownEv := model.Inbound{Kind: model.InboundShutdown}
	err := s.HandleInbound(shutdownEv)
	if err != model.ErrShutdownRequested {
		t.Fatalf("expected ErrShutdownRequested, got %v", err)
	}
	if !s.book.Flat() {
		t.Fatal("expected portfolio flat after shutdown drain")
	}
}

func TestSession_InvalidTickRejected(t *testing.T) {
	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	cfg := DefaultConfig("BTCUSDT", 10000)
	s := New(cfg, start)

	ev := model.Inbound{Kind: model.InboundTick, Tick: model.Tick{Price: decimal.Zero, ArrivalTime: start}}
	if err := s.HandleInbound(ev); err != model.ErrInvalidTick {
		t.Fatalf("expected ErrInvalidTick, got %v", err)
	}
}
