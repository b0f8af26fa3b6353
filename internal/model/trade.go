package model

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/google/uuid"
)

// ClosedTrade is a completed round-trip trade, the unit persisted to the
// journal and reported outward.
type ClosedTrade struct {
	ID              uuid.UUID       `json:"id"`
	Symbol          string          `json:"symbol"`
	EntryPrice      decimal.Decimal `json:"entry_price"`
	EntryTime       time.Time       `json:"entry_time"`
	ExitPrice       decimal.Decimal `json:"exit_price"`
	ExitTime        time.Time       `json:"exit_time"`
	Quantity        decimal.Decimal `json:"quantity"`
	PnL             decimal.Decimal `json:"pnl"`
	PnLPct          decimal.Decimal `json:"pnl_pct"`
	HoldingMinutes  float64         `json:"holding_minutes"`
	ExitReason      ExitReason      `json:"exit_reason"`
	OriginStrategy  StrategyOrigin  `json:"origin_strategy"`
}

// NewClosedTrade computes derived fields (pnl, pnl_pct, holding_minutes)
// from entry/exit prices and times.
func NewClosedTrade(symbol string, qty, entryPrice, exitPrice decimal.Decimal, entryTime, exitTime time.Time, reason ExitReason, origin StrategyOrigin) ClosedTrade {
	pnl := exitPrice.Sub(entryPrice).Mul(qty)
	pnlPct := decimal.Zero
	if entryPrice.IsPositive() {
		pnlPct = exitPrice.Sub(entryPrice).Div(entryPrice).Mul(decimal.NewFromInt(100))
	}
	return ClosedTrade{
		ID:             uuid.New(),
		Symbol:         symbol,
		EntryPrice:     entryPrice,
		EntryTime:      entryTime,
		ExitPrice:      exitPrice,
		ExitTime:       exitTime,
		Quantity:       qty,
		PnL:            pnl,
		PnLPct:         pnlPct,
		HoldingMinutes: exitTime.Sub(entryTime).Minutes(),
		ExitReason:     reason,
		OriginStrategy: origin,
	}
}
