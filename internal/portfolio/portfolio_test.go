package portfolio

import (
	"testing"
	"time"

	"renkoconfluence/internal/model"

	"github.com/shopspring/decimal"
)

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func newTestPortfolio() *Portfolio {
	cfg := DefaultConfig("BTCUSDT", d(10000))
	return New(cfg)
}

func longEntrySignal(price, tp, sl, size float64) *model.Signal {
	return &model.Signal{
		Kind:           model.SignalLongEntry,
		Side:           model.SideLong,
		Price:          d(price),
		TakeProfit:     d(tp),
		StopLoss:       d(sl),
		PositionSize:   d(size),
		OriginStrategy: model.OriginA,
	}
}

func TestPortfolio_FlatToLong(t *testing.T) {
	p := newTestPortfolio()
	now := time.Now()

	sig := longEntrySignal(100, 120, 90, 10)
	ev := p.Apply(sig, d(100), now)
	if ev.Kind != EventOpened {
		t.Fatalf("expected opened, got %+v", ev)
	}
	if p.Flat() {
		t.Fatal("expected position open")
	}
	snap := p.Snapshot()
	if snap.Cash.Cmp(d(9000)) != 0 {
		t.Fatalf("expected cash reserved to 9000, got %v", snap.Cash)
	}
}

func TestPortfolio_RejectsSecondEntry(t *testing.T) {
	p := newTestPortfolio()
	now := time.Now()
	p.Apply(longEntrySignal(100, 120, 90, 10), d(100), now)

	ev := p.Apply(longEntrySignal(101, 121, 91, 5), d(101), now)
	if ev.Kind != EventRejected {
		t.Fatalf("expected rejection of second entry, got %+v", ev)
	}
}

func TestPortfolio_ExitClosesAndBooksPnL(t *testing.T) {
	p := newTestPortfolio()
	now := time.Now()
	p.Apply(longEntrySignal(100, 120, 90, 10), d(100), now)

	exitSig := &model.Signal{Kind: model.SignalExit, OriginStrategy: model.OriginA}
	ev := p.Apply(exitSig, d(110), now.Add(time.Minute))
	if ev.Kind != EventClosed {
		t.Fatalf("expected closed, got %+v", ev)
	}
	if ev.ClosedTrade.PnL.Cmp(d(100)) != 0 {
		t.Fatalf("expected pnl=100 (10 qty * 10 gain), got %v", ev.ClosedTrade.PnL)
	}
	if !p.Flat() {
		t.Fatal("expected flat after exit")
	}
}

func TestPortfolio_CandleTPSL_PessimisticOnAmbiguity(t *testing.T) {
	p := newTestPortfolio()
	now := time.Now()
	p.Apply(longEntrySignal(100, 120, 90, 10), d(100), now)

	// Candle spans both TP (120) and SL (90).
	ev := p.EvaluateCandleTPSL(d(125), d(85), now.Add(time.Minute))
	if ev.Kind != EventClosed {
		t.Fatalf("expected closed, got %+v", ev)
	}
	if ev.ClosedTrade.ExitReason != model.ExitStopLoss {
		t.Fatalf("expected stop-loss to win on ambiguous candle, got %v", ev.ClosedTrade.ExitReason)
	}
	if ev.ClosedTrade.ExitPrice.Cmp(d(90)) != 0 {
		t.Fatalf("expected exit at stop price 90, got %v", ev.ClosedTrade.ExitPrice)
	}
}

func TestPortfolio_CandleTPSL_TakeProfitOnly(t *testing.T) {
	p := newTestPortfolio()
	now := time.Now()
	p.Apply(longEntrySignal(100, 120, 90, 10), d(100), now)

	ev := p.EvaluateCandleTPSL(d(125), d(118), now.Add(time.Minute))
	if ev.Kind != EventClosed || ev.ClosedTrade.ExitReason != model.ExitTakeProfit {
		t.Fatalf("expected take-profit close, got %+v", ev)
	}
}

func TestPortfolio_CandleTPSL_NoHitIsNoop(t *testing.T) {
	p := newTestPortfolio()
	now := time.Now()
	p.Apply(longEntrySignal(100, 120, 90, 10), d(100), now)

	ev := p.EvaluateCandleTPSL(d(105), d(95), now.Add(time.Minute))
	if ev.Kind != EventNoop {
		t.Fatalf("expected noop inside band, got %+v", ev)
	}
	if p.Flat() {
		t.Fatal("expected the position to stay open after a candle inside the band")
	}
}

func TestPortfolio_TickTPSL_StopLoss(t *testing.T) {
	p := newTestPortfolio()
	now := time.Now()
	p.Apply(longEntrySignal(100, 120, 90, 10), d(100), now)

	ev := p.EvaluateTickTPSL(d(89), now.Add(time.Second))
	if ev.Kind != EventClosed || ev.ClosedTrade.ExitReason != model.ExitStopLoss {
		t.Fatalf("expected stop-loss close on tick, got %+v", ev)
	}
}

func TestPortfolio_SizeClampedToAvailableCash(t *testing.T) {
	p := newTestPortfolio()
	now := time.Now()
	// Requesting 10000 units at price 100 would need 1,000,000 cash; only 10000 available.
	ev := p.Apply(longEntrySignal(100, 120, 90, 10000), d(100), now)
	if ev.Kind != EventOpened {
		t.Fatalf("expected opened with clamped size, got %+v", ev)
	}
	if ev.Position.Quantity.GreaterThan(d(100)) {
		t.Fatalf("expected quantity clamped to cash/price=100, got %v", ev.Position.Quantity)
	}
}

func TestPortfolio_CloseAtMarket(t *testing.T) {
	p := newTestPortfolio()
	now := time.Now()
	p.Apply(longEntrySignal(100, 120, 90, 10), d(100), now)

	ev := p.CloseAtMarket(d(95), now.Add(time.Hour))
	if ev.Kind != EventClosed || ev.ClosedTrade.ExitReason != model.ExitSessionEnded {
		t.Fatalf("expected session-ended close, got %+v", ev)
	}
}

func TestPortfolio_ComputeMetrics(t *testing.T) {
	p := newTestPortfolio()
	now := time.Now()
	p.Apply(longEntrySignal(100, 120, 90, 10), d(100), now)
	p.Apply(&model.Signal{Kind: model.SignalExit}, d(110), now.Add(time.Minute))

	p.Apply(longEntrySignal(110, 130, 100, 10), d(110), now.Add(2*time.Minute))
	p.Apply(&model.Signal{Kind: model.SignalExit}, d(105), now.Add(3*time.Minute))

	m := p.ComputeMetrics(now.Add(4 * time.Minute))
	if m.TotalTrades != 2 {
		t.Fatalf("expected 2 trades, got %d", m.TotalTrades)
	}
	if m.WinningTrades != 1 || m.LosingTrades != 1 {
		t.Fatalf("expected 1 win 1 loss, got %d/%d", m.WinningTrades, m.LosingTrades)
	}
	if m.WinRatePct.Cmp(d(50)) != 0 {
		t.Fatalf("expected 50%% win rate, got %v", m.WinRatePct)
	}
}
