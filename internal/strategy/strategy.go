// Package strategy implements the two confluence-based signal generators
// (components C4/C5). Each strategy owns an independent
// Renko engine and indicator set — the orchestrator drives both with every
// closed candle and lets the Regime Arbiter (regime.go) pick at most
// one resulting signal.
package strategy

import (
	"time"

	"github.com/shopspring/decimal"
)

// Clock lets tests control wall-clock cooldown evaluation without sleeping.
type Clock func() time.Time

// Evaluation bundles the inputs a strategy needs beyond the candle stream
// itself, since neither strategy owns the portfolio.
type Evaluation struct {
	Now            time.Time
	PortfolioFlat  bool
	Equity         decimal.Decimal
	HasOwnPosition bool // true if the open position (if any) originated from this strategy
}
