package portfolio

import "github.com/shopspring/decimal"

// Config holds the portfolio's tunables.
type Config struct {
	Symbol              string
	InitialCapital      decimal.Decimal
	MaxPositionFraction float64 // default 1.0
	PessimisticTPSL     bool    // default true
}

// DefaultConfig returns the stated defaults.
func DefaultConfig(symbol string, initialCapital decimal.Decimal) Config {
	return Config{
		Symbol:              symbol,
		InitialCapital:      initialCapital,
		MaxPositionFraction: 1.0,
		PessimisticTPSL:     true,
	}
}
