package portfolio

import (
	"time"

	"github.com/shopspring/decimal"
)

// RiskLimits bounds session-level risk beyond the per-trade sizing already
// enforced in Apply.
type RiskLimits struct {
	MaxDailyLoss decimal.Decimal // circuit breaker; zero disables the check
}

// DefaultRiskLimits returns a disabled circuit breaker — the per-trade
// max_risk_per_trade and max_position_fraction limits already bound each
// individual trade.
func DefaultRiskLimits() RiskLimits {
	return RiskLimits{MaxDailyLoss: decimal.Zero}
}

// RiskManager is a session-level circuit breaker layered on top of the
// Portfolio's own per-trade sizing checks.
type RiskManager struct {
	limits    RiskLimits
	portfolio *Portfolio
}

// NewRiskManager creates a RiskManager guarding pf under limits.
func NewRiskManager(limits RiskLimits, pf *Portfolio) *RiskManager {
	return &RiskManager{limits: limits, portfolio: pf}
}

// CanOpenPosition reports whether a new long entry is allowed under the
// daily-loss circuit breaker.
func (rm *RiskManager) CanOpenPosition() (bool, string) {
	if !rm.limits.MaxDailyLoss.IsPositive() {
		return true, ""
	}
	if rm.portfolio.DailyPnL().LessThan(rm.limits.MaxDailyLoss.Neg()) {
		return false, "max daily loss reached"
	}
	return true, ""
}

// DailyPnL returns realized P&L booked since the session start, used for
// the snapshot's daily_pnl field and the circuit breaker above.
func (p *Portfolio) DailyPnL() decimal.Decimal {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state.RealizedPnL
}

// TotalReturnPct returns the portfolio's return since inception at the
// given mark price.
func (p *Portfolio) TotalReturnPct(lastPrice decimal.Decimal, _ time.Time) decimal.Decimal {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.state.InitialCapital.IsPositive() {
		return decimal.Zero
	}
	equity := p.state.Equity(lastPrice)
	return equity.Sub(p.state.InitialCapital).Div(p.state.InitialCapital).Mul(decimal.NewFromInt(100))
}
