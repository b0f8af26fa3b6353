package strategy

import (
	"testing"
	"time"

	"renkoconfluence/internal/model"

	"github.com/shopspring/decimal"
)

// smallConfigB keeps Bollinger/Stochastic at their documented (and much
// longer) default periods so a handful of bricks leaves them deliberately
// not-ready, and only shrinks the EMA filter so it alone reaches Ready().
func smallConfigB() ConfigB {
	cfg := DefaultConfigB()
	cfg.Renko.ATRMultiplier = 1.0
	cfg.EMAPeriod = 3
	return cfg
}

// driveTrendThenReverse feeds the ATR init window and then four up bricks
// followed by two down bricks, all of the frozen 100-unit brick size.
func driveTrendThenReverse(t *testing.T, s *StrategyB) {
	t.Helper()
	for i := 0; i <= s.cfg.Renko.ATRPeriod; i++ {
		if _, err := s.OnCandle(candleA(100000, 100050, 99950)); err != nil {
			t.Fatalf("flat candle %d: %v", i, err)
		}
	}
	for _, price := range []float64{100100, 100200, 100300, 100400, 100300, 100200} {
		if _, err := s.OnCandle(candleA(price, price+50, price-50)); err != nil {
			t.Fatalf("trend candle at %v: %v", price, err)
		}
	}
}

func TestStrategyB_Entry_RejectsWhenPortfolioNotFlat(t *testing.T) {
	s := NewStrategyB(DefaultConfigB(), nil)
	sig, reason := s.Entry(Evaluation{Now: time.Now(), PortfolioFlat: false})
	if sig != nil {
		t.Fatalf("expected nil signal, got %+v", sig)
	}
	if reason != model.RejectPortfolioNotFlat {
		t.Fatalf("expected RejectPortfolioNotFlat, got %q", reason)
	}
}

func TestStrategyB_Entry_NotReadyReturnsNoReason(t *testing.T) {
	s := NewStrategyB(DefaultConfigB(), nil)
	sig, reason := s.Entry(Evaluation{Now: time.Now(), PortfolioFlat: true, Equity: decimal.NewFromInt(100000)})
	if sig != nil {
		t.Fatalf("expected nil signal before the engine is ready, got %+v", sig)
	}
	if reason != "" {
		t.Fatalf("expected no reject reason while simply not-ready, got %q", reason)
	}
}

func TestStrategyB_Exit_NoPositionReturnsNil(t *testing.T) {
	s := NewStrategyB(DefaultConfigB(), nil)
	if sig := s.Exit(Evaluation{HasOwnPosition: false}); sig != nil {
		t.Fatalf("expected nil exit signal with no open position, got %+v", sig)
	}
}

func TestStrategyB_Exit_CloseBelowEMAFilter(t *testing.T) {
	cfg := smallConfigB()
	s := NewStrategyB(cfg, nil)
	driveTrendThenReverse(t, s)

	if !s.ema.Ready() {
		t.Fatal("expected the EMA filter to be ready after the driven sequence")
	}
	if s.bollinger.Ready() || s.stochastic.Ready() {
		t.Fatal("expected bollinger/stochastic to still be warming up at their default periods")
	}

	sig := s.Exit(Evaluation{Now: time.Now(), HasOwnPosition: true})
	if sig == nil {
		t.Fatal("expected an exit signal once the close drops below the EMA filter")
	}
	if sig.Reason != "close dropped below ema filter" {
		t.Fatalf("expected the ema filter reason, got %q", sig.Reason)
	}
	if sig.Kind != model.SignalExit || sig.Action != model.ActionSell {
		t.Fatalf("expected a sell exit signal, got %+v", sig)
	}
}

func TestStrategyB_SwingLow_TracksLookbackWindow(t *testing.T) {
	cfg := smallConfigB()
	cfg.SwingLookback = 5
	s := NewStrategyB(cfg, nil)
	driveTrendThenReverse(t, s)

	got := s.swingLow()
	want := decimal.NewFromInt(100100)
	if !got.Equal(want) {
		t.Fatalf("expected swing low %s over the last 5 bricks, got %s", want, got)
	}
}
