// Package execution simulates fills for the signals the orchestrator's
// portfolio applies, and journals every closed trade to SQLite for
// after-the-fact analysis. There is no live broker path — this engine
// only ever trades against its own simulated portfolio.
package execution

import (
	"log"
	"sync"
	"time"

	"renkoconfluence/internal/model"

	"github.com/shopspring/decimal"
)

// Fill is a simulated order fill, recording the signal that caused it and
// the (possibly slipped) price it executed at.
type Fill struct {
	Signal    model.Signal
	FillPrice decimal.Decimal
	FilledAt  time.Time
	Slippage  decimal.Decimal
}

// PaperExecutor simulates execution of a signal with a fixed slippage
// model. It does not place real orders and never influences the
// portfolio's own fill price — the session calls it alongside Portfolio.Apply
// to record a parallel, slippage-adjusted fill for every signal, for audit
// and for later slippage-modeling work.
type PaperExecutor struct {
	mu          sync.RWMutex
	fills       []Fill
	slippageBps int64 // basis points of slippage applied against Price
}

// NewPaperExecutor creates a paper executor. slippageBps is basis points of
// simulated slippage (5 = 0.05%).
func NewPaperExecutor(slippageBps int64) *PaperExecutor {
	return &PaperExecutor{
		fills:       make([]Fill, 0, 256),
		slippageBps: slippageBps,
	}
}

// Execute simulates a fill for sig and records it.
func (p *PaperExecutor) Execute(sig model.Signal, now time.Time) Fill {
	fillPrice := sig.Price
	slippage := decimal.Zero

	if p.slippageBps > 0 && fillPrice.IsPositive() {
		bps := decimal.NewFromInt(p.slippageBps).Div(decimal.NewFromInt(10000))
		slippage = fillPrice.Mul(bps)
		if sig.Action == model.ActionBuy {
			fillPrice = fillPrice.Add(slippage)
		} else {
			fillPrice = fillPrice.Sub(slippage)
		}
	}

	fill := Fill{Signal: sig, FillPrice: fillPrice, FilledAt: now, Slippage: slippage}

	p.mu.Lock()
	p.fills = append(p.fills, fill)
	p.mu.Unlock()

	log.Printf("[paper] %s %s qty=%s price=%s (slip=%s) reason=%s",
		sig.Action, sig.OriginStrategy, sig.PositionSize.String(), fillPrice.String(), slippage.String(), sig.Reason)

	return fill
}

// Fills returns a snapshot of all recorded fills.
func (p *PaperExecutor) Fills() []Fill {
	p.mu.RLock()
	defer p.mu.RUnlock()
	cp := make([]Fill, len(p.fills))
	copy(cp, p.fills)
	return cp
}
