package portfolio

import (
	"time"

	"renkoconfluence/internal/model"

	"github.com/shopspring/decimal"
)

// Metrics is the snapshot's aggregate performance section, derived from the
// portfolio's closed-trade history plus its current drawdown state.
type Metrics struct {
	TotalTrades    int
	WinningTrades  int
	LosingTrades   int
	TotalPnL       decimal.Decimal
	MaxDrawdownPct decimal.Decimal
	WinRatePct     decimal.Decimal
	LastUpdate     time.Time
}

// ComputeMetrics derives the aggregate performance view from the closed
// trade history and the portfolio's peak/trough equity.
func (p *Portfolio) ComputeMetrics(now time.Time) Metrics {
	trades := p.ClosedTrades()

	m := Metrics{
		TotalPnL:   decimal.Zero,
		LastUpdate: now,
	}
	for _, t := range trades {
		m.TotalTrades++
		m.TotalPnL = m.TotalPnL.Add(t.PnL)
		if t.PnL.IsPositive() {
			m.WinningTrades++
		} else if t.PnL.IsNegative() {
			m.LosingTrades++
		}
	}
	if m.TotalTrades > 0 {
		m.WinRatePct = decimal.NewFromInt(int64(m.WinningTrades)).
			Div(decimal.NewFromInt(int64(m.TotalTrades))).
			Mul(decimal.NewFromInt(100))
	}

	snap := p.Snapshot()
	m.MaxDrawdownPct = snap.MaxDrawdownPct()
	return m
}

// View converts Metrics to the outward MetricsView shape.
func (m Metrics) View() model.MetricsView {
	return model.MetricsView{
		TotalTrades:    m.TotalTrades,
		WinningTrades:  m.WinningTrades,
		LosingTrades:   m.LosingTrades,
		TotalPnL:       m.TotalPnL,
		MaxDrawdownPct: m.MaxDrawdownPct,
		WinRatePct:     m.WinRatePct,
		LastUpdate:     m.LastUpdate,
	}
}
