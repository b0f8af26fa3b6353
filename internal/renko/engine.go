// Package renko constructs ATR-sized Renko bricks from a stream of closed
// candles (component C2). Strategy A and Strategy B each run
// an independent Engine instance with their own multiplier and price
// source — the engine never mixes two parameter sets.
package renko

import (
	"renkoconfluence/internal/model"
	"renkoconfluence/internal/ringbuf"

	"github.com/shopspring/decimal"
)

const minMultiplierFraction = "0.0001"

// Engine turns closed candles into fixed-increment Renko bricks.
//
// Brick size is derived once from ATR over the first ATRPeriod+1 candles
// and then frozen — it is never recomputed for the life of the engine, even
// as volatility changes. The ATR used here is a simple SMA
// of true ranges, not Wilder's smoothing; that is intentional and must be
// preserved, since it differs from the ATR used in the indicator layer.
type Engine struct {
	cfg Config

	candles *ringbuf.History[model.Candle]
	bricks  *ringbuf.History[model.Brick]

	brickSize      *decimal.Decimal
	lastBrickClose decimal.Decimal
	direction      model.Direction
	consecutive    uint32
	trendStrength  float64

	nextSeq     uint64
	candleCount uint64
}

// New creates an Engine. cfg.ATRPeriod must be positive; cfg.ATRMultiplier
// must be positive.
func New(cfg Config) *Engine {
	histCap := cfg.ATRPeriod + 1
	if histCap < 200 {
		histCap = 200
	}
	return &Engine{
		cfg:       cfg,
		candles:   ringbuf.NewHistory[model.Candle](histCap, histCap),
		bricks:    ringbuf.NewHistory[model.Brick](cfg.MaxBrickHistory, cfg.TrimBrickHistory),
		direction: model.DirInit,
	}
}

// Ready reports whether the brick size has been computed.
func (e *Engine) Ready() bool {
	return e.brickSize != nil
}

// BrickSize returns the frozen brick size, or the zero value if not yet
// computed.
func (e *Engine) BrickSize() decimal.Decimal {
	if e.brickSize == nil {
		return decimal.Zero
	}
	return *e.brickSize
}

// Direction returns the current trend direction (DirInit before the first
// brick forms).
func (e *Engine) Direction() model.Direction {
	return e.direction
}

// TrendStrength returns the current decayed trend-strength value in [-1,1].
func (e *Engine) TrendStrength() float64 {
	return e.trendStrength
}

// Bricks returns the retained brick history, oldest first.
func (e *Engine) Bricks() []model.Brick {
	return e.bricks.Items()
}

// OnCandle folds one closed candle into the engine. It returns the bricks
// formed by this candle (zero, one, or many) and the events raised while
// forming them. An invalid (non-positive) source price is rejected without
// mutating engine state.
func (e *Engine) OnCandle(c model.Candle) ([]model.Brick, []model.RenkoEvent, error) {
	price := c.SourcePrice(e.cfg.PriceSource)
	if !price.IsPositive() {
		return nil, nil, model.ErrInvalidPrice
	}

	e.candleCount++
	e.candles.Append(c)

	if e.brickSize == nil {
		return nil, e.tryInit(price), nil
	}

	return e.form(price, c.Volume)
}

// tryInit attempts to compute and freeze the brick size once enough candle
// history has accumulated. Returns a BrickSizeCalculated event on success,
// or nil while still pre-init.
func (e *Engine) tryInit(price decimal.Decimal) []model.RenkoEvent {
	items := e.candles.Items()
	if len(items) < e.cfg.ATRPeriod+1 {
		return nil
	}

	window := items[len(items)-(e.cfg.ATRPeriod+1):]
	atr := simpleATR(window)
	avgClose := averageClose(window[1:])

	floor := avgClose.Mul(decimal.RequireFromString(minMultiplierFraction))
	scaled := atr.Mul(decimal.NewFromFloat(e.cfg.ATRMultiplier))
	size := scaled
	if floor.GreaterThan(size) {
		size = floor
	}
	size = roundToPrecision(size, e.cfg.PricePrecision)
	if !size.IsPositive() {
		// Degenerate market data (all candles flat at the same price).
		// Refuse to freeze a zero brick size; wait for more history.
		return nil
	}

	e.brickSize = &size
	e.lastBrickClose = roundToPrecision(price, e.cfg.PricePrecision)

	return []model.RenkoEvent{{
		Kind:      model.EventBrickSizeCalculated,
		BrickSize: size.String(),
	}}
}

// form applies the multi-brick formation rule: n = floor(|price-L|/size),
// then emits n bricks sequentially, each opening where the previous closed.
func (e *Engine) form(price, candleVolume decimal.Decimal) ([]model.Brick, []model.RenkoEvent, error) {
	size := *e.brickSize
	price = roundToPrecision(price, e.cfg.PricePrecision)

	diff := price.Sub(e.lastBrickClose)
	absDiff := diff.Abs()
	if absDiff.LessThan(size) {
		return nil, nil, nil
	}

	n := absDiff.Div(size).IntPart()
	if n < 1 {
		return nil, nil, nil
	}
	brickVolume := candleVolume.Div(decimal.NewFromInt(n))

	dir := model.DirUp
	if diff.IsNegative() {
		dir = model.DirDown
	}

	formed := make([]model.Brick, 0, n)
	events := make([]model.RenkoEvent, 0, n+2)

	flipped := e.direction != model.DirInit && e.direction != dir
	if flipped {
		events = append(events, model.RenkoEvent{Kind: model.EventTrendChange, Direction: dir})
		e.consecutive = 0
	}

	for i := int64(0); i < n; i++ {
		open := e.lastBrickClose
		var brickClose decimal.Decimal
		if dir == model.DirUp {
			brickClose = open.Add(size)
		} else {
			brickClose = open.Sub(size)
		}

		e.consecutive++
		e.nextSeq++

		b := model.Brick{
			Seq:              e.nextSeq,
			Direction:        dir,
			Open:             open,
			Close:            brickClose,
			Size:             size,
			FormedAtCandle:   e.candleCount,
			ConsecutiveCount: e.consecutive,
			Volume:           brickVolume,
		}

		e.updateTrendStrength(dir)
		e.lastBrickClose = brickClose
		e.direction = dir

		e.bricks.Append(b)
		formed = append(formed, b)
		events = append(events, model.RenkoEvent{Kind: model.EventNewBrick, Brick: &formed[len(formed)-1], Direction: dir})
	}

	if n > 1 {
		events = append(events, model.RenkoEvent{Kind: model.EventMultipleBricks, Count: int(n), Direction: dir})
	}

	return formed, events, nil
}

// updateTrendStrength applies the per-brick update/decay rule:
// strength += 0.1*sign(dir), clamped to [-1,1], then decayed by 0.98.
func (e *Engine) updateTrendStrength(dir model.Direction) {
	sign := 1.0
	if dir == model.DirDown {
		sign = -1.0
	}
	s := e.trendStrength + 0.1*sign
	if s > 1 {
		s = 1
	} else if s < -1 {
		s = -1
	}
	e.trendStrength = s * 0.98
}

// simpleATR computes a plain SMA of true ranges over window, where window
// has one more candle than the period (the first candle only supplies the
// previous close for the first true-range calculation).
func simpleATR(window []model.Candle) decimal.Decimal {
	sum := decimal.Zero
	n := 0
	prevClose := window[0].Close
	for _, c := range window[1:] {
		sum = sum.Add(c.TrueRange(prevClose))
		prevClose = c.Close
		n++
	}
	if n == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(int64(n)))
}

func averageClose(candles []model.Candle) decimal.Decimal {
	if len(candles) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, c := range candles {
		sum = sum.Add(c.Close)
	}
	return sum.Div(decimal.NewFromInt(int64(len(candles))))
}

func roundToPrecision(d decimal.Decimal, precision int32) decimal.Decimal {
	return d.Round(precision)
}
