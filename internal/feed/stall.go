// Package feed carries the orchestrator's tick transport concerns: a
// watchdog for a stalled or gapped upstream connection, and (in the replay
// subpackage) a historical NDJSON tick player. There is no live exchange
// WS/REST adapter here — see the replay subpackage for the one transport
// this engine ships.
package feed

import (
	"log"
	"time"

	"github.com/shopspring/decimal"
)

// StallDetector watches the inbound tick stream for silence or a frozen
// price and reports when the feed should be considered stalled. Unlike a
// market-hours close detector, a crypto feed has no scheduled close: the
// only two signals worth watching are "no ticks arrived at all" and "the
// same price keeps repeating for implausibly long", which usually means an
// upstream reconnect glitch rather than genuine quiet trading.
type StallDetector struct {
	lastPrice    decimal.Decimal
	lastTickAt   time.Time
	stableSince  time.Time
	haveTick     bool

	// MaxSilence is how long the feed may go without any tick before it's
	// considered stalled. Default: 60 seconds.
	MaxSilence time.Duration

	// MaxFrozen is how long the same price may repeat before it's
	// considered a stuck feed rather than genuine price stability.
	// Default: 10 minutes.
	MaxFrozen time.Duration
}

// New creates a StallDetector with the documented defaults.
func New() *StallDetector {
	return &StallDetector{
		MaxSilence: 60 * time.Second,
		MaxFrozen:  10 * time.Minute,
	}
}

// Observe records a tick arrival and returns true if the feed should be
// considered stalled as of now.
func (d *StallDetector) Observe(price decimal.Decimal, now time.Time) bool {
	d.lastTickAt = now
	if !d.haveTick || !price.Equal(d.lastPrice) {
		d.lastPrice = price
		d.stableSince = now
		d.haveTick = true
		return false
	}
	if now.Sub(d.stableSince) >= d.MaxFrozen {
		log.Printf("[feed] price %s frozen for %v — feed likely stuck", price.String(), d.MaxFrozen)
		return true
	}
	return false
}

// CheckSilence returns true if now is MaxSilence or more past the last
// observed tick. Call this from a timer independent of tick arrival, since
// a truly dead feed never calls Observe again.
func (d *StallDetector) CheckSilence(now time.Time) bool {
	if !d.haveTick {
		return false
	}
	if now.Sub(d.lastTickAt) >= d.MaxSilence {
		log.Printf("[feed] no ticks for %v — feed silent", d.MaxSilence)
		return true
	}
	return false
}

// LastPrice returns the most recently observed price.
func (d *StallDetector) LastPrice() decimal.Decimal { return d.lastPrice }
