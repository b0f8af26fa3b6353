package renko

import "renkoconfluence/internal/model"

// Config holds the tunables for one Renko engine instance. Strategy A and
// Strategy B each own their own engine with different values,
// §6) — the engine itself never fuses two parameter sets.
type Config struct {
	// ATRMultiplier scales the ATR into a brick size (e.g. 0.326 for
	// Strategy A, 0.217 for Strategy B).
	ATRMultiplier float64

	// ATRPeriod is the number of candles the ATR/brick-size calculation
	// uses. Default 14.
	ATRPeriod int

	// PriceSource selects which candle field feeds brick formation.
	PriceSource model.PriceSource

	// MaxBrickHistory / TrimBrickHistory bound the retained brick tail
	// default 1000, trimmed to 500.
	MaxBrickHistory  int
	TrimBrickHistory int

	// PricePrecision is the number of decimal places brick sizes are
	// rounded to. Default 2 for USD-quoted crypto; auto
	// detection from recent decimals is convenience, not contract, and is
	// not implemented here.
	PricePrecision int32
}

// DefaultConfig returns the documented Renko defaults. Callers
// must still set ATRMultiplier.
func DefaultConfig() Config {
	return Config{
		ATRPeriod:        14,
		PriceSource:      model.PriceSourceClose,
		MaxBrickHistory:  1000,
		TrimBrickHistory: 500,
		PricePrecision:   2,
	}
}
