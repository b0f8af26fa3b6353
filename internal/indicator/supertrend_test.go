package indicator

import (
	"testing"

	"renkoconfluence/internal/model"

	"github.com/shopspring/decimal"
)

func brick(open, close float64) model.Brick {
	return model.Brick{
		Open:   decimal.NewFromFloat(open),
		Close:  decimal.NewFromFloat(close),
		Volume: decimal.NewFromInt(1),
	}
}

// upTrendBricks produces a monotonically rising Renko brick series, which
// should keep SuperTrend in an Up state throughout.
func upTrendBricks(n int, start, step float64) []model.Brick {
	bricks := make([]model.Brick, 0, n)
	price := start
	for i := 0; i < n; i++ {
		bricks = append(bricks, brick(price, price+step))
		price += step
	}
	return bricks
}

func TestSuperTrend_IncrementalMatchesBatch(t *testing.T) {
	bricks := upTrendBricks(30, 100000, 100)
	bricks = append(bricks, brick(102900, 102700)) // one down brick near the end

	// SuperTrend has no separate batch entry point: "incremental" reads the
	// value after every brick, "batch" is a fresh instance fed the whole
	// sequence and read once at the end.
	incremental := NewSuperTrend(10, 3.0)
	var incResult SuperTrendValue
	for _, b := range bricks {
		incremental.Update(b)
		incResult = incremental.Value()
	}

	batch := NewSuperTrend(10, 3.0)
	for _, b := range bricks {
		batch.Update(b)
	}
	batchResult := batch.Value()

	if incResult.Direction != batchResult.Direction {
		t.Fatalf("direction mismatch: incremental=%s batch=%s", incResult.Direction, batchResult.Direction)
	}
	if incResult.Value != batchResult.Value {
		t.Fatalf("value mismatch: incremental=%v batch=%v", incResult.Value, batchResult.Value)
	}
}

func TestSuperTrend_NotReadyBeforeWindow(t *testing.T) {
	st := NewSuperTrend(10, 3.0)
	for _, b := range upTrendBricks(5, 100000, 100) {
		st.Update(b)
	}
	if st.Ready() {
		t.Fatal("expected not ready before period true ranges accumulate")
	}
}

func TestSuperTrend_UpTrendStaysUp(t *testing.T) {
	st := NewSuperTrend(10, 3.0)
	for _, b := range upTrendBricks(20, 100000, 200) {
		st.Update(b)
	}
	if !st.Ready() {
		t.Fatal("expected ready after enough bricks")
	}
	if st.Value().Direction != model.DirUp {
		t.Fatalf("expected Up direction in a sustained uptrend, got %s", st.Value().Direction)
	}
}

func TestSuperTrend_FlipsOnSharpReversal(t *testing.T) {
	st := NewSuperTrend(10, 3.0)
	for _, b := range upTrendBricks(20, 100000, 200) {
		st.Update(b)
	}
	before := st.Value().Direction

	// A sharp multi-step reversal well past the active band should flip it.
	price := 104000.0
	var lastDir model.Direction
	for i := 0; i < 15; i++ {
		st.Update(brick(price, price-300))
		price -= 300
		lastDir = st.Value().Direction
	}

	if before != model.DirUp {
		t.Fatalf("setup invariant broken: expected Up before reversal, got %s", before)
	}
	if lastDir != model.DirDown {
		t.Fatalf("expected SuperTrend to flip to Down after sustained reversal, got %s", lastDir)
	}
}
