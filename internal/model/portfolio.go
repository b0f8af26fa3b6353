package model

import "github.com/shopspring/decimal"

// ExitReason names why a position was closed.
type ExitReason string

const (
	ExitTakeProfit   ExitReason = "TakeProfit"
	ExitStopLoss     ExitReason = "StopLoss"
	ExitStrategy     ExitReason = "StrategyExit"
	ExitSessionEnded ExitReason = "SessionEnded"
)

// Portfolio is the simulated, single-position, long-only account state.
// Invariants: cash >= 0; realized_pnl == sum of closed trade
// pnl; peak_equity >= trough_equity.
type Portfolio struct {
	InitialCapital decimal.Decimal `json:"initial_capital"`
	Cash           decimal.Decimal `json:"cash"`
	Position       *Position       `json:"position,omitempty"`
	RealizedPnL    decimal.Decimal `json:"realized_pnl"`
	PeakEquity     decimal.Decimal `json:"peak_equity"`
	TroughEquity   decimal.Decimal `json:"trough_equity"`
}

// Equity returns cash + position.qty*lastPrice (0 position value when flat).
func (p Portfolio) Equity(lastPrice decimal.Decimal) decimal.Decimal {
	if p.Position == nil {
		return p.Cash
	}
	return p.Cash.Add(p.Position.Quantity.Mul(lastPrice))
}

// MaxDrawdownPct returns (peak-trough)/peak as a percentage, 0 if peak<=0.
func (p Portfolio) MaxDrawdownPct() decimal.Decimal {
	if !p.PeakEquity.IsPositive() {
		return decimal.Zero
	}
	return p.PeakEquity.Sub(p.TroughEquity).Div(p.PeakEquity).Mul(decimal.NewFromInt(100))
}
