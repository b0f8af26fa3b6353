package model

import "github.com/shopspring/decimal"

// Action is the trading action a Signal carries.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
)

// SignalKind distinguishes an entry from an exit signal.
type SignalKind string

const (
	SignalLongEntry SignalKind = "LONG_ENTRY"
	SignalExit      SignalKind = "EXIT"
)

// Side is the position side a signal would open. The live core only ever
// enforces Long — Short exists as a locked extension point.
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// StrategyOrigin identifies which strategy produced a Signal.
type StrategyOrigin string

const (
	OriginA StrategyOrigin = "A" // SuperTrend-Renko Confluence
	OriginB StrategyOrigin = "B" // Bollinger-Stochastic-Renko
)

// Signal is a candidate trade action emitted by a strategy.
type Signal struct {
	Action           Action          `json:"action"`
	Kind             SignalKind      `json:"kind"`
	Side             Side            `json:"side"`
	Price            decimal.Decimal `json:"price"`
	Confidence       float64         `json:"confidence"` // [0,1]
	Reason           string          `json:"reason"`
	TakeProfit       decimal.Decimal `json:"take_profit,omitempty"`
	StopLoss         decimal.Decimal `json:"stop_loss,omitempty"`
	RiskReward       float64         `json:"risk_reward,omitempty"`
	ConfluenceScore  int             `json:"confluence_score,omitempty"` // [0,10]
	PositionSize     decimal.Decimal `json:"position_size"`
	OriginStrategy   StrategyOrigin  `json:"origin_strategy"`
}
