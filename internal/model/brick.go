package model

import "github.com/shopspring/decimal"

// Direction is the direction of a Renko brick or indicator trend.
type Direction string

const (
	DirInit Direction = "INIT"
	DirUp   Direction = "UP"
	DirDown Direction = "DOWN"
)

// Brick is a single fixed-increment Renko bar.
// Invariants: for non-Init bricks |close-open| == size, and Direction == Up
// iff close > open. Every non-Init brick's Open equals the previous brick's
// Close (enforced by the Renko engine, not by this type).
type Brick struct {
	Seq              uint64          `json:"seq"`
	Direction        Direction       `json:"direction"`
	Open             decimal.Decimal `json:"open"`
	Close            decimal.Decimal `json:"close"`
	Size             decimal.Decimal `json:"size"`
	FormedAtCandle   uint64          `json:"formed_at_candle"`
	ConsecutiveCount uint32          `json:"consecutive_count"`

	// Volume attributes the forming candle's volume across the bricks that
	// candle produced (split evenly when a candle forms more than one
	// brick). Bricks themselves have no native trade volume.
	Volume decimal.Decimal `json:"volume"`
}

// High returns max(open, close), treating the brick as an OHLC bar.
func (b Brick) High() decimal.Decimal {
	if b.Close.GreaterThan(b.Open) {
		return b.Close
	}
	return b.Open
}

// Low returns min(open, close), treating the brick as an OHLC bar.
func (b Brick) Low() decimal.Decimal {
	if b.Close.LessThan(b.Open) {
		return b.Close
	}
	return b.Open
}
