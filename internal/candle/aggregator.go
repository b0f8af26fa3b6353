// Package candle aggregates a single instrument's tick stream into
// 1-minute OHLCV candles (component C1).
//
// This engine drives exactly one instrument and is fed synchronously by
// the Session Orchestrator — there is no internal goroutine, ticker, or
// watermark. Ticks are assumed already in arrival order; the caller
// (orchestrator) owns ordering.
package candle

import (
	"time"

	"renkoconfluence/internal/model"
)

// Aggregator buckets ticks into closed-minute candles.
type Aggregator struct {
	open    bool
	current model.Candle
}

// New creates an empty Aggregator.
func New() *Aggregator {
	return &Aggregator{}
}

// Ingest folds one tick into the in-progress bucket. It returns the
// previous bucket's closed candle exactly when crossing a minute boundary;
// otherwise it returns (Candle{}, false).
//
// Gaps do not synthesize intermediate candles: if no ticks arrive for N
// minutes, the next tick simply starts its own bucket.
func (a *Aggregator) Ingest(t model.Tick) (model.Candle, bool, error) {
	if !t.Valid() {
		return model.Candle{}, false, model.ErrInvalidTick
	}

	bucket := t.BucketStart()

	if !a.open {
		a.start(t, bucket)
		return model.Candle{}, false, nil
	}

	if bucket.Equal(a.current.BucketStart) {
		a.update(t)
		return model.Candle{}, false, nil
	}

	// Crossed into a new bucket: close the previous one, start a fresh
	// bucket from this tick (the new tick is the new bucket's open, not a
	// reopen of the old one).
	closed := a.current
	closed.Closed = true
	a.start(t, bucket)
	return closed, true, nil
}

// FlushSession closes and returns the in-progress candle, if any. Used on
// Shutdown to finalize the last partial bucket.
func (a *Aggregator) FlushSession() (model.Candle, bool) {
	if !a.open {
		return model.Candle{}, false
	}
	closed := a.current
	closed.Closed = true
	a.open = false
	return closed, true
}

func (a *Aggregator) start(t model.Tick, bucket time.Time) {
	a.open = true
	a.current = model.Candle{
		BucketStart: bucket,
		Open:        t.Price,
		High:        t.Price,
		Low:         t.Price,
		Close:       t.Price,
		Volume:      t.Volume,
	}
}

func (a *Aggregator) update(t model.Tick) {
	c := &a.current
	if t.Price.GreaterThan(c.High) {
		c.High = t.Price
	}
	if t.Price.LessThan(c.Low) {
		c.Low = t.Price
	}
	c.Close = t.Price
	c.Volume = c.Volume.Add(t.Volume)
}
