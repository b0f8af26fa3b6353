package portfolio

import "renkoconfluence/internal/model"

// TradeEventKind names the outcome of applying a signal or price update to
// the portfolio.
type TradeEventKind string

const (
	EventOpened   TradeEventKind = "OPENED"
	EventClosed   TradeEventKind = "CLOSED"
	EventRejected TradeEventKind = "REJECTED"
	EventNoop     TradeEventKind = "NOOP"
)

// TradeEvent is the return value of Portfolio.Apply, EvaluateCandleTPSL,
// EvaluateTickTPSL and CloseAtMarket — the
// contract's `TradeEvent` output.
type TradeEvent struct {
	Kind        TradeEventKind
	Position    *model.Position
	ClosedTrade *model.ClosedTrade
	Reason      string
}
