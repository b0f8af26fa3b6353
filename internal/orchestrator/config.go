package orchestrator

import (
	"time"

	"renkoconfluence/internal/portfolio"
	"renkoconfluence/internal/strategy"

	"github.com/shopspring/decimal"
)

// Config bundles everything the Session Orchestrator needs to wire up the
// full pipeline: candle aggregation -> both strategies -> regime arbiter ->
// portfolio -> snapshot emission.
type Config struct {
	Symbol string

	StrategyA strategy.ConfigA
	StrategyB strategy.ConfigB
	Portfolio portfolio.Config
	Risk      portfolio.RiskLimits

	SnapshotInterval time.Duration // default 20s
	Clock            strategy.Clock
}

// DefaultConfig returns the documented defaults for a single-instrument
// session starting now.
func DefaultConfig(symbol string, initialCapital float64) Config {
	capital := decimal.NewFromFloat(initialCapital)
	return Config{
		Symbol:           symbol,
		StrategyA:        strategy.DefaultConfigA(),
		StrategyB:        strategy.DefaultConfigB(),
		Portfolio:        portfolio.DefaultConfig(symbol, capital),
		Risk:             portfolio.DefaultRiskLimits(),
		SnapshotInterval: 20 * time.Second,
		Clock:            time.Now,
	}
}
