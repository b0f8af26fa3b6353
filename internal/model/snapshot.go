package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketRegime is the coarse trend/range classification from the arbiter.
type MarketRegime string

const (
	RegimeTrending MarketRegime = "TRENDING"
	RegimeRanging  MarketRegime = "RANGING"
)

// ActiveStrategyTag labels which strategy's signal is currently driving
// the portfolio for dashboard display.
type ActiveStrategyTag string

const (
	ActivePrimary   ActiveStrategyTag = "PRIMARY"
	ActiveSecondary ActiveStrategyTag = "SECONDARY"
	ActiveNone      ActiveStrategyTag = ""
)

// PortfolioView is the snapshot's portfolio section.
type PortfolioView struct {
	Cash            decimal.Decimal  `json:"cash"`
	Equity          decimal.Decimal  `json:"equity"`
	Positions       []PositionView   `json:"positions"`
	TotalReturnPct  decimal.Decimal  `json:"total_return_pct"`
	DailyPnL        decimal.Decimal  `json:"daily_pnl"`
}

// PositionView is one entry of PortfolioView.Positions.
type PositionView struct {
	Symbol   string          `json:"symbol"`
	Quantity decimal.Decimal `json:"quantity"`
	AvgPrice decimal.Decimal `json:"avg_price"`
}

// MetricsView is the snapshot's aggregate performance section.
type MetricsView struct {
	TotalTrades     int             `json:"total_trades"`
	WinningTrades   int             `json:"winning_trades"`
	LosingTrades    int             `json:"losing_trades"`
	TotalPnL        decimal.Decimal `json:"total_pnl"`
	MaxDrawdownPct  decimal.Decimal `json:"max_drawdown_pct"`
	WinRatePct      decimal.Decimal `json:"win_rate_pct"`
	LastUpdate      time.Time       `json:"last_update"`
}

// StrategyAView is Strategy A's counters in the snapshot.
type StrategyAView struct {
	Name                string  `json:"name"`
	Signals             int     `json:"signals"`
	AvgConfluence       float64 `json:"avg_confluence"`
	SuperTrendSignals   int     `json:"super_trend_signals"`
	MACDConfirmations   int     `json:"macd_confirmations"`
	VolumeSurges        int     `json:"volume_surges"`
}

// StrategyBView is Strategy B's counters in the snapshot.
type StrategyBView struct {
	Name                 string `json:"name"`
	Signals              int    `json:"signals"`
	BollingerBounces     int    `json:"bollinger_bounces"`
	StochasticCrossovers int    `json:"stochastic_crossovers"`
	EMATrendFilters      int    `json:"ema_trend_filters"`
}

// StrategiesView groups both strategies' counters.
type StrategiesView struct {
	Primary   StrategyAView `json:"primary"`
	Secondary StrategyBView `json:"secondary"`
}

// SessionSnapshot is the immutable, deep-copied value object emitted
// outward at the session's configurable snapshot interval and once more at
// shutdown. Opening or closing a trade does not by itself emit a snapshot.
type SessionSnapshot struct {
	Symbol          string            `json:"symbol"`
	Strategy        string            `json:"strategy"`
	MarketRegime    MarketRegime      `json:"market_regime"`
	ActiveStrategy  ActiveStrategyTag `json:"active_strategy"`
	InitialCapital  decimal.Decimal   `json:"initial_capital"`
	StartTime       time.Time         `json:"start_time"`
	Portfolio       PortfolioView     `json:"portfolio"`
	Metrics         MetricsView       `json:"metrics"`
	Strategies      StrategiesView    `json:"strategies"`
	LastPrice       decimal.Decimal   `json:"last_price"`
	LastCandleTime  time.Time         `json:"last_candle_time"`
	OpenPositions   int               `json:"open_positions"`
}
