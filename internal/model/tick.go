package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tick represents a single price update from the inbound transport.
// Volume may be absent (treated as zero by the caller).
type Tick struct {
	Price       decimal.Decimal `json:"price"`
	Volume      decimal.Decimal `json:"volume"`
	ArrivalTime time.Time       `json:"arrival_time"`
}

// Valid reports whether the tick's price is positive and finite.
// decimal.Decimal has no NaN/Inf representation, so "finite" reduces to
// "constructed from a valid literal", which the caller enforces at the
// transport boundary; here we only check sign.
func (t Tick) Valid() bool {
	return t.Price.IsPositive()
}

// BucketStart returns the UTC minute this tick belongs to.
func (t Tick) BucketStart() time.Time {
	return t.ArrivalTime.UTC().Truncate(time.Minute)
}
