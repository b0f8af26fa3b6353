package notification

import (
	"context"
	"fmt"
	"time"

	"renkoconfluence/internal/model"
)

// TradeSink adapts a Notifier into a model.TradeSink, turning every closed
// trade into an Alert. Losing trades are flagged as warnings so they stand
// out in a chat feed; winners stay informational.
type TradeSink struct {
	notifier Notifier
	timeout  time.Duration
}

// NewTradeSink wraps notifier. timeout bounds each Send call so a slow
// endpoint never blocks the orchestrator's single-threaded loop for long.
func NewTradeSink(notifier Notifier, timeout time.Duration) *TradeSink {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &TradeSink{notifier: notifier, timeout: timeout}
}

// PublishTrade implements model.TradeSink.
func (t *TradeSink) PublishTrade(trade model.ClosedTrade) error {
	level := AlertInfo
	if trade.PnL.IsNegative() {
		level = AlertWarning
	}

	alert := Alert{
		Level: level,
		Title: fmt.Sprintf("%s closed: %s", trade.Symbol, trade.ExitReason),
		Message: fmt.Sprintf("entry %s -> exit %s, qty %s, pnl %s (%s%%), held %.1fm, strategy %s",
			trade.EntryPrice.String(), trade.ExitPrice.String(), trade.Quantity.String(),
			trade.PnL.String(), trade.PnLPct.StringFixed(2), trade.HoldingMinutes, trade.OriginStrategy),
	}

	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()
	return t.notifier.Send(ctx, alert)
}

var _ model.TradeSink = (*TradeSink)(nil)
