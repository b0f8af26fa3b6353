package strategy

import (
	"testing"
	"time"

	"renkoconfluence/internal/model"

	"github.com/shopspring/decimal"
)

func candleA(close, high, low float64) model.Candle {
	return model.Candle{
		Open:   decimal.NewFromFloat(close),
		High:   decimal.NewFromFloat(high),
		Low:    decimal.NewFromFloat(low),
		Close:  decimal.NewFromFloat(close),
		Volume: decimal.NewFromInt(10),
		Closed: true,
	}
}

// smallConfigA shrinks Strategy A's indicator periods so readiness is
// reached in a handful of bricks instead of the documented defaults, and
// disables the confluence floor so entry economics can be tested in
// isolation from the scoring threshold.
func smallConfigA() ConfigA {
	cfg := DefaultConfigA()
	cfg.Renko.ATRMultiplier = 1.0
	cfg.SuperTrendPeriod = 2
	cfg.MACDFast = 2
	cfg.MACDSlow = 3
	cfg.MACDSignal = 2
	cfg.VolumeSurgeWindow = 2
	cfg.MinConfluenceScore = 0
	return cfg
}

// driveReady feeds the ATR init window (flat candles, 100-unit TR) and then
// n up bricks of the resulting frozen 100-unit brick size, enough to bring
// the Renko engine, SuperTrend and MACD to Ready() under smallConfigA.
func driveReady(t *testing.T, s *StrategyA, n int) {
	t.Helper()
	for i := 0; i <= s.cfg.Renko.ATRPeriod; i++ {
		if _, err := s.OnCandle(candleA(100000, 100050, 99950)); err != nil {
			t.Fatalf("flat candle %d: %v", i, err)
		}
	}
	price := 100000.0
	for i := 0; i < n; i++ {
		price += 100
		if _, err := s.OnCandle(candleA(price, price+50, price-50)); err != nil {
			t.Fatalf("rising candle %d: %v", i, err)
		}
	}
}

func TestStrategyA_Entry_RejectsWhenPortfolioNotFlat(t *testing.T) {
	s := NewStrategyA(DefaultConfigA(), nil)
	sig, reason := s.Entry(Evaluation{Now: time.Now(), PortfolioFlat: false})
	if sig != nil {
		t.Fatalf("expected nil signal, got %+v", sig)
	}
	if reason != model.RejectPortfolioNotFlat {
		t.Fatalf("expected RejectPortfolioNotFlat, got %q", reason)
	}
}

func TestStrategyA_Entry_NotReadyReturnsNoReason(t *testing.T) {
	s := NewStrategyA(DefaultConfigA(), nil)
	sig, reason := s.Entry(Evaluation{Now: time.Now(), PortfolioFlat: true, Equity: decimal.NewFromInt(100000)})
	if sig != nil {
		t.Fatalf("expected nil signal before the engine is ready, got %+v", sig)
	}
	if reason != "" {
		t.Fatalf("expected no reject reason while simply not-ready, got %q", reason)
	}
}

func TestStrategyA_Entry_SucceedsThenRejectsInCooldown(t *testing.T) {
	cfg := smallConfigA()
	s := NewStrategyA(cfg, nil)
	driveReady(t, s, 6)

	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	eval := Evaluation{Now: now, PortfolioFlat: true, Equity: decimal.NewFromInt(100000)}

	sig, reason := s.Entry(eval)
	if sig == nil {
		t.Fatalf("expected an entry signal once ready, reject reason was %q", reason)
	}
	if reason != "" {
		t.Fatalf("expected no reject reason on a successful entry, got %q", reason)
	}
	if sig.ConfluenceScore < 0 || sig.ConfluenceScore > 10 {
		t.Fatalf("confluence score %d out of [0,10] bounds", sig.ConfluenceScore)
	}
	if sig.RiskReward != cfg.MinRiskReward {
		t.Fatalf("expected risk:reward %.2f, got %v", cfg.MinRiskReward, sig.RiskReward)
	}
	if !sig.TakeProfit.GreaterThan(sig.Price) || !sig.StopLoss.LessThan(sig.Price) {
		t.Fatalf("expected TP above and SL below entry price, got tp=%s sl=%s price=%s",
			sig.TakeProfit, sig.StopLoss, sig.Price)
	}

	again, reason := s.Entry(Evaluation{Now: now.Add(time.Second), PortfolioFlat: true, Equity: decimal.NewFromInt(100000)})
	if again != nil {
		t.Fatalf("expected nil signal during cooldown, got %+v", again)
	}
	if reason != model.RejectCooldownActive {
		t.Fatalf("expected RejectCooldownActive, got %q", reason)
	}
}

func TestStrategyA_Entry_RejectsConfluenceTooLow(t *testing.T) {
	cfg := smallConfigA()
	cfg.MinConfluenceScore = 11 // unreachable: the scoring scheme caps at 10
	s := NewStrategyA(cfg, nil)
	driveReady(t, s, 6)

	sig, reason := s.Entry(Evaluation{Now: time.Now(), PortfolioFlat: true, Equity: decimal.NewFromInt(100000)})
	if sig != nil {
		t.Fatalf("expected nil signal below the confluence floor, got %+v", sig)
	}
	if reason != model.RejectConfluenceTooLow {
		t.Fatalf("expected RejectConfluenceTooLow, got %q", reason)
	}
}

func TestStrategyA_Entry_RejectsRiskRewardTooLow(t *testing.T) {
	cfg := smallConfigA()
	cfg.StopLossATRMultiplier = 2000 // forces the ATR-scaled stop distance to swallow the entry price
	s := NewStrategyA(cfg, nil)
	driveReady(t, s, 6)

	sig, reason := s.Entry(Evaluation{Now: time.Now(), PortfolioFlat: true, Equity: decimal.NewFromInt(100000)})
	if sig != nil {
		t.Fatalf("expected nil signal when the computed stop is non-positive, got %+v", sig)
	}
	if reason != model.RejectRiskRewardTooLow {
		t.Fatalf("expected RejectRiskRewardTooLow, got %q", reason)
	}
}

func TestStrategyA_ConfluenceScore_StaysWithinBounds(t *testing.T) {
	cfg := smallConfigA()
	s := NewStrategyA(cfg, nil)
	driveReady(t, s, 6)

	bricks := s.engine.Bricks()
	if len(bricks) == 0 {
		t.Fatal("expected bricks to have formed")
	}
	score := s.confluenceScore(bricks[len(bricks)-1])
	if score < 0 || score > 10 {
		t.Fatalf("confluence score %d out of [0,10] bounds", score)
	}
}

func TestStrategyA_Exit_NoPositionReturnsNil(t *testing.T) {
	s := NewStrategyA(DefaultConfigA(), nil)
	if sig := s.Exit(Evaluation{HasOwnPosition: false}); sig != nil {
		t.Fatalf("expected nil exit signal with no open position, got %+v", sig)
	}
}

func TestStrategyA_Exit_TrendExhaustion(t *testing.T) {
	cfg := smallConfigA()
	s := NewStrategyA(cfg, nil)
	// One brick is enough to give Exit a non-empty brick history; the
	// exhaustion counter is driven directly rather than through dozens of
	// same-direction candles.
	driveReady(t, s, 1)
	s.consecutiveSinceEntry = cfg.ExhaustionBricks

	sig := s.Exit(Evaluation{Now: time.Now(), HasOwnPosition: true})
	if sig == nil {
		t.Fatal("expected an exit signal once the exhaustion counter is reached")
	}
	if sig.Reason != "trend exhaustion" {
		t.Fatalf("expected trend exhaustion reason, got %q", sig.Reason)
	}
	if sig.Kind != model.SignalExit || sig.Action != model.ActionSell {
		t.Fatalf("expected a sell exit signal, got %+v", sig)
	}
}
