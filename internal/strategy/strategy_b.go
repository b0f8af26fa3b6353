package strategy

import (
	"time"

	"renkoconfluence/internal/indicator"
	"renkoconfluence/internal/model"
	"renkoconfluence/internal/renko"

	"github.com/shopspring/decimal"
)

// ConfigB holds Strategy B's tunables.
type ConfigB struct {
	Renko renko.Config

	BollingerPeriod int
	BollingerSigma  float64

	StochasticK int
	StochasticD int

	EMAPeriod int

	RiskRewardRatio float64 // default 2.0
	SwingLookback   int     // bricks scanned for the recent swing low, default 5

	// Sizing mirrors Strategy A's risk-budget shape since this strategy
	// doesn't get its own formula, just its own fractions.
	MaxRiskPerTrade     float64
	MaxPositionFraction float64

	CooldownSeconds int
}

// DefaultConfigB returns the documented defaults.
func DefaultConfigB() ConfigB {
	renkoCfg := renko.DefaultConfig()
	renkoCfg.ATRMultiplier = 0.217
	return ConfigB{
		Renko:               renkoCfg,
		BollingerPeriod:     20,
		BollingerSigma:      2.0,
		StochasticK:         14,
		StochasticD:         3,
		EMAPeriod:           21,
		RiskRewardRatio:     2.0,
		SwingLookback:       5,
		MaxRiskPerTrade:     0.01,
		MaxPositionFraction: 0.2,
		CooldownSeconds:     45,
	}
}

// StrategyB is the Bollinger-Stochastic-Renko strategy (C5).
type StrategyB struct {
	cfg   ConfigB
	clock Clock

	engine     *renko.Engine
	bollinger  *indicator.Bollinger
	stochastic *indicator.Stochastic
	ema        *indicator.EMA

	lastStoch indicator.StochasticValue

	lastActionAt   time.Time
	haveLastAction bool

	lastBandsTouch bool
	lastStochCross bool
	lastEMAAbove   bool

	signalCount              int
	bollingerBounceCount     int
	stochasticCrossoverCount int
	emaTrendFilterCount      int
}

// NewStrategyB creates Strategy B with the given configuration.
func NewStrategyB(cfg ConfigB, clock Clock) *StrategyB {
	if clock == nil {
		clock = time.Now
	}
	return &StrategyB{
		cfg:        cfg,
		clock:      clock,
		engine:     renko.New(cfg.Renko),
		bollinger:  indicator.NewBollinger(cfg.BollingerPeriod, cfg.BollingerSigma),
		stochastic: indicator.NewStochastic(cfg.StochasticK, cfg.StochasticD),
		ema:        indicator.NewEMA(cfg.EMAPeriod),
	}
}

func (s *StrategyB) Name() string { return "BOLLINGER_STOCHASTIC_RENKO" }

// OnCandle feeds one closed candle into Strategy B's own Renko engine and
// indicator set, returning the Renko events raised while forming bricks.
func (s *StrategyB) OnCandle(c model.Candle) ([]model.RenkoEvent, error) {
	bricks, events, err := s.engine.OnCandle(c)
	if err != nil {
		return nil, err
	}
	for _, b := range bricks {
		s.bollinger.Update(b)

		prev := s.stochastic.Value()
		s.stochastic.Update(b)
		cur := s.stochastic.Value()
		crossUp := prev.K < prev.D && cur.K >= cur.D

		s.ema.Update(b)

		if s.bollinger.Ready() {
			s.lastBandsTouch = b.Close.LessThanOrEqual(decimal.NewFromFloat(s.bollinger.Value().Lower))
			if s.lastBandsTouch {
				s.bollingerBounceCount++
			}
		}
		if crossUp {
			s.stochasticCrossoverCount++
		}
		s.lastStochCross = crossUp
		s.lastStoch = cur
		if s.ema.Ready() {
			emaVal := decimal.NewFromFloat(s.ema.Value())
			s.lastEMAAbove = b.Close.GreaterThan(emaVal)
			if s.lastEMAAbove {
				s.emaTrendFilterCount++
			}
		}
	}
	return events, nil
}

func (s *StrategyB) inCooldown(now time.Time) bool {
	if !s.haveLastAction {
		return false
	}
	return now.Sub(s.lastActionAt) < time.Duration(s.cfg.CooldownSeconds)*time.Second
}

func (s *StrategyB) swingLow() decimal.Decimal {
	bricks := s.engine.Bricks()
	n := s.cfg.SwingLookback
	if n > len(bricks) {
		n = len(bricks)
	}
	if n == 0 {
		return decimal.Zero
	}
	tail := bricks[len(bricks)-n:]
	low := tail[0].Low()
	for _, b := range tail[1:] {
		if b.Low().LessThan(low) {
			low = b.Low()
		}
	}
	return low
}

// Entry evaluates Strategy B's long-entry rule. Returns a nil signal when no
// entry is warranted; reason is non-empty only when the withholding is one
// worth counting (cooldown, confluence floor, risk:reward).
func (s *StrategyB) Entry(eval Evaluation) (*model.Signal, model.RejectReason) {
	if !eval.PortfolioFlat {
		return nil, model.RejectPortfolioNotFlat
	}
	if !s.engine.Ready() || !s.bollinger.Ready() || !s.stochastic.Ready() || !s.ema.Ready() {
		return nil, ""
	}
	if s.inCooldown(eval.Now) {
		return nil, model.RejectCooldownActive
	}

	stochOversold := s.lastStoch.K < 20
	if !(s.lastBandsTouch && stochOversold && s.lastStochCross && s.lastEMAAbove) {
		return nil, model.RejectConfluenceTooLow
	}

	bricks := s.engine.Bricks()
	if len(bricks) == 0 {
		return nil, ""
	}
	entry := bricks[len(bricks)-1].Close

	confidence := 0.4
	if s.lastBandsTouch {
		confidence += 0.2
	}
	if s.lastStochCross {
		confidence += 0.2
	}
	if s.lastEMAAbove {
		confidence += 0.2
	}
	if confidence > 1 {
		confidence = 1
	}

	stop := s.swingLow().Sub(s.engine.BrickSize().Mul(decimal.NewFromFloat(0.5)))
	if !stop.IsPositive() || !entry.GreaterThan(stop) {
		return nil, model.RejectRiskRewardTooLow
	}
	riskReward := s.cfg.RiskRewardRatio
	riskDistance := entry.Sub(stop)
	takeProfit := entry.Add(riskDistance.Mul(decimal.NewFromFloat(riskReward)))

	maxRisk := eval.Equity.Mul(decimal.NewFromFloat(s.cfg.MaxRiskPerTrade)).Div(riskDistance)
	maxFraction := eval.Equity.Mul(decimal.NewFromFloat(s.cfg.MaxPositionFraction)).Div(entry)
	size := maxRisk
	if maxFraction.LessThan(size) {
		size = maxFraction
	}
	if !size.IsPositive() {
		return nil, ""
	}

	s.lastActionAt = eval.Now
	s.haveLastAction = true
	s.signalCount++

	return &model.Signal{
		Action:          model.ActionBuy,
		Kind:            model.SignalLongEntry,
		Side:            model.SideLong,
		Price:           entry,
		Confidence:      confidence,
		Reason:          "bollinger/stochastic/ema confluence met",
		TakeProfit:      takeProfit,
		StopLoss:        stop,
		RiskReward:      riskReward,
		ConfluenceScore: 0,
		PositionSize:    size,
		OriginStrategy:  model.OriginB,
	}, ""
}

// Exit evaluates Strategy B's exit rule for a position this strategy opened.
func (s *StrategyB) Exit(eval Evaluation) *model.Signal {
	if !eval.HasOwnPosition {
		return nil
	}
	bricks := s.engine.Bricks()
	if len(bricks) == 0 {
		return nil
	}
	last := bricks[len(bricks)-1]

	reason := ""
	switch {
	case s.bollinger.Ready() && last.Close.GreaterThanOrEqual(decimal.NewFromFloat(s.bollinger.Value().Upper)):
		reason = "price crossed upper band"
	case s.stochastic.Ready() && s.lastStoch.K > 80 && s.lastStoch.K < s.lastStoch.D:
		reason = "stochastic overbought and crossed down"
	case s.ema.Ready() && last.Close.LessThan(decimal.NewFromFloat(s.ema.Value())):
		reason = "close dropped below ema filter"
	default:
		return nil
	}

	s.lastActionAt = eval.Now
	s.haveLastAction = true

	return &model.Signal{
		Action:         model.ActionSell,
		Kind:           model.SignalExit,
		Side:           model.SideLong,
		Price:          last.Close,
		Confidence:     1,
		Reason:         reason,
		OriginStrategy: model.OriginB,
	}
}

// Stats returns the snapshot counters for the secondary strategy section.
func (s *StrategyB) Stats() model.StrategyBView {
	return model.StrategyBView{
		Name:                  s.Name(),
		Signals:               s.signalCount,
		BollingerBounces:      s.bollingerBounceCount,
		StochasticCrossovers:  s.stochasticCrossoverCount,
		EMATrendFilters:       s.emaTrendFilterCount,
	}
}
