package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is the single open long position the Portfolio may hold at once.
type Position struct {
	Symbol         string          `json:"symbol"`
	Quantity       decimal.Decimal `json:"quantity"`
	EntryPrice     decimal.Decimal `json:"entry_price"`
	EntryTime      time.Time       `json:"entry_time"`
	TakeProfit     decimal.Decimal `json:"take_profit"`
	StopLoss       decimal.Decimal `json:"stop_loss"`
	OriginStrategy StrategyOrigin  `json:"origin_strategy"`
}

// Cost returns Quantity * EntryPrice — the cash reserved at entry.
func (p Position) Cost() decimal.Decimal {
	return p.Quantity.Mul(p.EntryPrice)
}

// UnrealizedPnL returns (lastPrice - EntryPrice) * Quantity.
func (p Position) UnrealizedPnL(lastPrice decimal.Decimal) decimal.Decimal {
	return lastPrice.Sub(p.EntryPrice).Mul(p.Quantity)
}
