// Package portfolio implements the simulated, single-position, long-only
// account (component C7): the Flat/Long state machine, pessimistic TP/SL
// evaluation against candle or tick prices, and P&L/drawdown accounting.
package portfolio

import (
	"sync"
	"time"

	"renkoconfluence/internal/model"

	"github.com/shopspring/decimal"
)

// Portfolio tracks the single open position and realized/unrealized P&L.
// Exactly one position may be open at a time; a second LongEntry while one
// is open is rejected, never queued.
type Portfolio struct {
	mu  sync.RWMutex
	cfg Config

	state model.Portfolio

	closedTrades []model.ClosedTrade
	maxTrades    int
}

// New creates a flat Portfolio seeded with cfg.InitialCapital cash.
func New(cfg Config) *Portfolio {
	return &Portfolio{
		cfg: cfg,
		state: model.Portfolio{
			InitialCapital: cfg.InitialCapital,
			Cash:           cfg.InitialCapital,
			RealizedPnL:    decimal.Zero,
			PeakEquity:     cfg.InitialCapital,
			TroughEquity:   cfg.InitialCapital,
		},
		maxTrades: 1000,
	}
}

// Flat reports whether no position is currently open.
func (p *Portfolio) Flat() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state.Position == nil
}

// OwnedBy reports whether the open position (if any) originated from the
// given strategy.
func (p *Portfolio) OwnedBy(origin model.StrategyOrigin) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state.Position != nil && p.state.Position.OriginStrategy == origin
}

// Equity returns cash plus the open position's mark-to-market value.
func (p *Portfolio) Equity(lastPrice decimal.Decimal) decimal.Decimal {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state.Equity(lastPrice)
}

// Snapshot returns a deep copy of the internal state, safe for outward use.
func (p *Portfolio) Snapshot() model.Portfolio {
	p.mu.RLock()
	defer p.mu.RUnlock()
	cp := p.state
	if p.state.Position != nil {
		pos := *p.state.Position
		cp.Position = &pos
	}
	return cp
}

// ClosedTrades returns a copy of the closed-trade history.
func (p *Portfolio) ClosedTrades() []model.ClosedTrade {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]model.ClosedTrade, len(p.closedTrades))
	copy(out, p.closedTrades)
	return out
}

// Apply applies a strategy signal to the portfolio (Flat->Long on
// LongEntry, Long->Flat on Exit). Signals that would violate the
// exactly-one-position invariant, or request a short, are rejected rather
// than erroring the caller out.
func (p *Portfolio) Apply(signal *model.Signal, price decimal.Decimal, now time.Time) TradeEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch signal.Kind {
	case model.SignalLongEntry:
		if p.state.Position != nil {
			return TradeEvent{Kind: EventRejected, Reason: model.ErrPositionAlreadyOpen.Error()}
		}
		if signal.Side != model.SideLong {
			return TradeEvent{Kind: EventRejected, Reason: model.ErrShortNotSupported.Error()}
		}
		qty := p.clampQuantity(signal.PositionSize, price)
		if !qty.IsPositive() {
			return TradeEvent{Kind: EventRejected, Reason: "position size rounds to zero after cash/fraction clamp"}
		}
		cost := qty.Mul(price)
		p.state.Cash = p.state.Cash.Sub(cost)
		pos := model.Position{
			Symbol:         p.cfg.Symbol,
			Quantity:       qty,
			EntryPrice:     price,
			EntryTime:      now,
			TakeProfit:     signal.TakeProfit,
			StopLoss:       signal.StopLoss,
			OriginStrategy: signal.OriginStrategy,
		}
		p.state.Position = &pos
		p.markEquity(price)
		return TradeEvent{Kind: EventOpened, Position: &pos, Reason: signal.Reason}

	case model.SignalExit:
		if p.state.Position == nil {
			return TradeEvent{Kind: EventNoop}
		}
		trade := p.closePosition(price, now, model.ExitStrategy)
		return TradeEvent{Kind: EventClosed, ClosedTrade: &trade, Reason: signal.Reason}
	}

	return TradeEvent{Kind: EventNoop}
}

// clampQuantity bounds a requested quantity to both the configured
// max-position-fraction of equity and the cash actually on hand.
func (p *Portfolio) clampQuantity(requested, price decimal.Decimal) decimal.Decimal {
	if !price.IsPositive() {
		return decimal.Zero
	}
	equity := p.state.Equity(price)
	maxByFraction := equity.Mul(decimal.NewFromFloat(p.cfg.MaxPositionFraction)).Div(price)
	maxByCash := p.state.Cash.Div(price)

	qty := requested
	if maxByFraction.LessThan(qty) {
		qty = maxByFraction
	}
	if maxByCash.LessThan(qty) {
		qty = maxByCash
	}
	return qty
}

// EvaluateCandleTPSL re-checks TP/SL against a closed candle's high/low,
// per candle regardless of what signal (if any) the candle produced. When
// pessimistic evaluation is enabled and the candle's range spans both the
// take-profit and stop-loss levels, the stop-loss is assumed hit first.
func (p *Portfolio) EvaluateCandleTPSL(high, low decimal.Decimal, now time.Time) TradeEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	pos := p.state.Position
	if pos == nil {
		return TradeEvent{Kind: EventNoop}
	}

	slHit := pos.StopLoss.IsPositive() && low.LessThanOrEqual(pos.StopLoss)
	tpHit := pos.TakeProfit.IsPositive() && high.GreaterThanOrEqual(pos.TakeProfit)

	switch {
	case slHit && tpHit:
		if p.cfg.PessimisticTPSL {
			trade := p.closePosition(pos.StopLoss, now, model.ExitStopLoss)
			return TradeEvent{Kind: EventClosed, ClosedTrade: &trade, Reason: "stop-loss assumed hit first (ambiguous candle)"}
		}
		trade := p.closePosition(pos.TakeProfit, now, model.ExitTakeProfit)
		return TradeEvent{Kind: EventClosed, ClosedTrade: &trade, Reason: "take-profit reached"}
	case slHit:
		trade := p.closePosition(pos.StopLoss, now, model.ExitStopLoss)
		return TradeEvent{Kind: EventClosed, ClosedTrade: &trade, Reason: "stop-loss reached"}
	case tpHit:
		trade := p.closePosition(pos.TakeProfit, now, model.ExitTakeProfit)
		return TradeEvent{Kind: EventClosed, ClosedTrade: &trade, Reason: "take-profit reached"}
	default:
		p.markEquity(low)
		return TradeEvent{Kind: EventNoop}
	}
}

// EvaluateTickTPSL re-checks TP/SL against a single live tick price. A
// single price can't straddle both levels unless the levels themselves are
// inverted, but the stop-loss check still runs first to match the
// pessimistic policy used for candles.
func (p *Portfolio) EvaluateTickTPSL(price decimal.Decimal, now time.Time) TradeEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	pos := p.state.Position
	if pos == nil {
		p.markEquity(price)
		return TradeEvent{Kind: EventNoop}
	}

	switch {
	case pos.StopLoss.IsPositive() && price.LessThanOrEqual(pos.StopLoss):
		trade := p.closePosition(pos.StopLoss, now, model.ExitStopLoss)
		return TradeEvent{Kind: EventClosed, ClosedTrade: &trade, Reason: "stop-loss reached"}
	case pos.TakeProfit.IsPositive() && price.GreaterThanOrEqual(pos.TakeProfit):
		trade := p.closePosition(pos.TakeProfit, now, model.ExitTakeProfit)
		return TradeEvent{Kind: EventClosed, ClosedTrade: &trade, Reason: "take-profit reached"}
	default:
		p.markEquity(price)
		return TradeEvent{Kind: EventNoop}
	}
}

// CloseAtMarket force-closes any open position, used to drain the session
// on shutdown.
func (p *Portfolio) CloseAtMarket(price decimal.Decimal, now time.Time) TradeEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state.Position == nil {
		return TradeEvent{Kind: EventNoop}
	}
	trade := p.closePosition(price, now, model.ExitSessionEnded)
	return TradeEvent{Kind: EventClosed, ClosedTrade: &trade}
}

// closePosition releases the reserved cash, books realized P&L, and
// appends to the closed-trade history. Caller must hold p.mu.
func (p *Portfolio) closePosition(exitPrice decimal.Decimal, now time.Time, reason model.ExitReason) model.ClosedTrade {
	pos := p.state.Position
	proceeds := pos.Quantity.Mul(exitPrice)
	p.state.Cash = p.state.Cash.Add(proceeds)

	trade := model.NewClosedTrade(p.cfg.Symbol, pos.Quantity, pos.EntryPrice, exitPrice, pos.EntryTime, now, reason, pos.OriginStrategy)
	p.state.RealizedPnL = p.state.RealizedPnL.Add(trade.PnL)
	p.state.Position = nil

	p.closedTrades = append(p.closedTrades, trade)
	if len(p.closedTrades) > p.maxTrades {
		p.closedTrades = p.closedTrades[len(p.closedTrades)-p.maxTrades:]
	}

	p.markEquity(exitPrice)
	return trade
}

// markEquity updates peak/trough equity for drawdown tracking. Caller must
// hold p.mu.
func (p *Portfolio) markEquity(lastPrice decimal.Decimal) {
	equity := p.state.Equity(lastPrice)
	if equity.GreaterThan(p.state.PeakEquity) {
		p.state.PeakEquity = equity
	}
	if equity.LessThan(p.state.TroughEquity) {
		p.state.TroughEquity = equity
	}
}
