package strategy

import (
	"time"

	"renkoconfluence/internal/indicator"
	"renkoconfluence/internal/model"
	"renkoconfluence/internal/renko"

	"github.com/shopspring/decimal"
)

// ConfigA holds Strategy A's tunables.
type ConfigA struct {
	Renko renko.Config

	SuperTrendPeriod     int
	SuperTrendMultiplier float64

	MACDFast   int
	MACDSlow   int
	MACDSignal int

	VolumeSurgeWindow    int
	VolumeSurgeThreshold float64

	MinConfluenceScore int

	StopLossATRMultiplier float64 // k, default 1.5
	MinRiskReward         float64 // default 3.0

	MaxRiskPerTrade     float64 // fraction of equity risked per trade
	MaxPositionFraction float64 // fraction of equity a position may consume

	CooldownSeconds  int
	ExhaustionBricks uint32 // consecutive same-direction bricks since entry
}

// DefaultConfigA returns the documented defaults.
func DefaultConfigA() ConfigA {
	renkoCfg := renko.DefaultConfig()
	renkoCfg.ATRMultiplier = 0.326
	return ConfigA{
		Renko:                 renkoCfg,
		SuperTrendPeriod:      10,
		SuperTrendMultiplier:  3.0,
		MACDFast:              12,
		MACDSlow:              26,
		MACDSignal:            9,
		VolumeSurgeWindow:     20,
		VolumeSurgeThreshold:  1.5,
		MinConfluenceScore:    7,
		StopLossATRMultiplier: 1.5,
		MinRiskReward:         3.0,
		MaxRiskPerTrade:       0.01,
		MaxPositionFraction:   0.25,
		CooldownSeconds:       30,
		ExhaustionBricks:      15,
	}
}

// StrategyA is the SuperTrend-Renko Confluence strategy (C4).
type StrategyA struct {
	cfg   ConfigA
	clock Clock

	engine      *renko.Engine
	superTrend  *indicator.SuperTrend
	macd        *indicator.MACD
	volumeSurge *indicator.VolumeSurge

	lastActionAt          time.Time
	haveLastAction        bool
	entryDirection        model.Direction
	consecutiveSinceEntry uint32

	signalCount            int
	confluenceSum          int
	superTrendBullishCount int
	macdConfirmCount       int
	volumeSurgeCount       int
}

// NewStrategyA creates Strategy A with the given configuration.
func NewStrategyA(cfg ConfigA, clock Clock) *StrategyA {
	if clock == nil {
		clock = time.Now
	}
	return &StrategyA{
		cfg:         cfg,
		clock:       clock,
		engine:      renko.New(cfg.Renko),
		superTrend:  indicator.NewSuperTrend(cfg.SuperTrendPeriod, cfg.SuperTrendMultiplier),
		macd:        indicator.NewMACD(cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal),
		volumeSurge: indicator.NewVolumeSurge(cfg.VolumeSurgeWindow, cfg.VolumeSurgeThreshold),
	}
}

func (s *StrategyA) Name() string { return "SUPERTREND_RENKO_CONFLUENCE" }

// OnCandle feeds one closed candle into Strategy A's own Renko engine and
// indicator set, returning the Renko events raised while forming bricks.
func (s *StrategyA) OnCandle(c model.Candle) ([]model.RenkoEvent, error) {
	bricks, events, err := s.engine.OnCandle(c)
	if err != nil {
		return nil, err
	}
	for _, b := range bricks {
		s.superTrend.Update(b)
		s.macd.Update(b)
		s.volumeSurge.Update(b)

		if s.superTrend.Ready() && s.superTrend.Value().Direction == model.DirUp {
			s.superTrendBullishCount++
		}
		if s.macd.Ready() && s.macd.Value().Crossover == indicator.CrossoverBullish {
			s.macdConfirmCount++
		}
		if s.volumeSurge.Ready() && s.volumeSurge.Value().Surge {
			s.volumeSurgeCount++
		}

		if s.entryDirection != "" && b.Direction == s.entryDirection {
			s.consecutiveSinceEntry++
		} else if s.entryDirection != "" {
			s.consecutiveSinceEntry = 0
		}
	}
	return events, nil
}

func (s *StrategyA) inCooldown(now time.Time) bool {
	if !s.haveLastAction {
		return false
	}
	return now.Sub(s.lastActionAt) < time.Duration(s.cfg.CooldownSeconds)*time.Second
}

// confluenceScore computes the 0-10 score for a prospective long entry.
func (s *StrategyA) confluenceScore(lastBrick model.Brick) int {
	score := 0
	if s.superTrend.Value().Direction == model.DirUp {
		score += 3
	}
	macdVal := s.macd.Value()
	if macdVal.Direction == indicator.MACDBullish {
		score += 2
		if macdVal.Crossover == indicator.CrossoverBullish {
			score++
		}
	}
	if lastBrick.Direction == model.DirUp && lastBrick.ConsecutiveCount >= 3 {
		score += 2
	}
	if s.volumeSurge.Value().Surge {
		score++
	}
	if s.engine.TrendStrength() >= 0.3 {
		score++
	}
	return score
}

// Entry evaluates Strategy A's long-entry rule against the current state.
// Returns a nil signal when no entry is warranted; reason is non-empty only
// when the withholding is one worth counting (cooldown, confluence floor,
// risk:reward), not plain "not enough history yet".
func (s *StrategyA) Entry(eval Evaluation) (*model.Signal, model.RejectReason) {
	if !eval.PortfolioFlat {
		return nil, model.RejectPortfolioNotFlat
	}
	if !s.engine.Ready() || !s.superTrend.Ready() || !s.macd.Ready() {
		return nil, ""
	}
	if s.inCooldown(eval.Now) {
		return nil, model.RejectCooldownActive
	}
	bricks := s.engine.Bricks()
	if len(bricks) == 0 {
		return nil, ""
	}
	last := bricks[len(bricks)-1]
	if s.engine.Direction() != model.DirUp {
		return nil, ""
	}

	score := s.confluenceScore(last)
	if score < s.cfg.MinConfluenceScore {
		return nil, model.RejectConfluenceTooLow
	}

	entry := last.Close
	brickSize := s.engine.BrickSize()
	atrBrick := decimal.NewFromFloat(s.superTrend.Value().ATR)

	twiceBrick := brickSize.Mul(decimal.NewFromInt(2))
	kATR := atrBrick.Mul(decimal.NewFromFloat(s.cfg.StopLossATRMultiplier))
	stopDistance := twiceBrick
	if kATR.GreaterThan(stopDistance) {
		stopDistance = kATR
	}
	if !stopDistance.IsPositive() {
		return nil, model.RejectRiskRewardTooLow
	}
	stop := entry.Sub(stopDistance)
	if !stop.IsPositive() {
		return nil, model.RejectRiskRewardTooLow
	}

	// Take profit is set directly off the minimum acceptable risk:reward,
	// so the R:R floor is satisfied by construction.
	riskReward := s.cfg.MinRiskReward
	takeProfit := entry.Add(stopDistance.Mul(decimal.NewFromFloat(riskReward)))

	maxRisk := eval.Equity.Mul(decimal.NewFromFloat(s.cfg.MaxRiskPerTrade)).Div(stopDistance)
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
	s.entryDirection = model.DirUp
	s.consecutiveSinceEntry = 0
	s.signalCount++
	s.confluenceSum += score

	return &model.Signal{
		Action:          model.ActionBuy,
		Kind:            model.SignalLongEntry,
		Side:            model.SideLong,
		Price:           entry,
		Confidence:      float64(score) / 10,
		Reason:          "supertrend-renko confluence score met",
		TakeProfit:      takeProfit,
		StopLoss:        stop,
		RiskReward:      riskReward,
		ConfluenceScore: score,
		PositionSize:    size,
		OriginStrategy:  model.OriginA,
	}, ""
}

// Exit evaluates Strategy A's exit rule for a position this strategy opened.
func (s *StrategyA) Exit(eval Evaluation) *model.Signal {
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
	case s.superTrend.Ready() && s.superTrend.Value().Direction == model.DirDown:
		reason = "supertrend flipped against position"
	case last.Direction == model.DirDown && last.ConsecutiveCount >= 2:
		reason = "two consecutive opposite bricks"
	case s.consecutiveSinceEntry >= s.cfg.ExhaustionBricks:
		reason = "trend exhaustion"
	default:
		return nil
	}

	s.lastActionAt = eval.Now
	s.haveLastAction = true
	s.entryDirection = ""

	return &model.Signal{
		Action:         model.ActionSell,
		Kind:           model.SignalExit,
		Side:           model.SideLong,
		Price:          last.Close,
		Confidence:     1,
		Reason:         reason,
		OriginStrategy: model.OriginA,
	}
}

// Stats returns the snapshot counters for the primary strategy section.
func (s *StrategyA) Stats() model.StrategyAView {
	avgConfluence := 0.0
	if s.signalCount > 0 {
		avgConfluence = float64(s.confluenceSum) / float64(s.signalCount)
	}
	return model.StrategyAView{
		Name:              s.Name(),
		Signals:           s.signalCount,
		AvgConfluence:     avgConfluence,
		SuperTrendSignals: s.superTrendBullishCount,
		MACDConfirmations: s.macdConfirmCount,
		VolumeSurges:      s.volumeSurgeCount,
	}
}
