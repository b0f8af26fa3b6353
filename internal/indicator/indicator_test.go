package indicator

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestSMA_ReadyAfterPeriod(t *testing.T) {
	s := NewSMA(3)
	for _, p := range []float64{10, 20, 30} {
		s.Update(brick(p, p))
	}
	if !s.Ready() {
		t.Fatal("expected ready after 3 updates with period 3")
	}
	if s.Value() != 20 {
		t.Fatalf("expected SMA=20, got %v", s.Value())
	}
}

func TestEMA_SeedsWithSMA(t *testing.T) {
	e := NewEMA(3)
	for _, p := range []float64{10, 20, 30} {
		e.Update(brick(p, p))
	}
	if !e.Ready() {
		t.Fatal("expected ready after seed window")
	}
	if e.Value() != 20 {
		t.Fatalf("expected EMA seed = SMA = 20, got %v", e.Value())
	}
	e.Update(brick(40, 40))
	if e.Value() <= 20 {
		t.Fatalf("expected EMA to move toward new price, got %v", e.Value())
	}
}

func TestRSI_AllGainsIsHundred(t *testing.T) {
	r := NewRSI(5)
	price := 100.0
	for i := 0; i < 7; i++ {
		r.Update(brick(price, price))
		price += 10
	}
	if !r.Ready() {
		t.Fatal("expected ready")
	}
	if math.Abs(r.Value()-100) > 1e-9 {
		t.Fatalf("expected RSI=100 for all-gains series, got %v", r.Value())
	}
}

func TestBollinger_BandsStraddleMiddle(t *testing.T) {
	bb := NewBollinger(5, 2.0)
	for _, p := range []float64{10, 12, 11, 13, 12} {
		bb.Update(brick(p, p))
	}
	if !bb.Ready() {
		t.Fatal("expected ready after period bricks")
	}
	v := bb.Value()
	if !(v.Lower < v.Middle && v.Middle < v.Upper) {
		t.Fatalf("expected lower < middle < upper, got %+v", v)
	}
}

func TestVolumeSurge_DetectsSpike(t *testing.T) {
	vs := NewVolumeSurge(5, 1.5)
	normal := []float64{10, 10, 10, 10, 10}
	for _, v := range normal {
		b := brick(100, 100)
		b.Volume = decimal.NewFromFloat(v)
		vs.Update(b)
	}
	spike := brick(100, 100)
	spike.Volume = decimal.NewFromFloat(30)
	vs.Update(spike)

	if !vs.Value().Surge {
		t.Fatalf("expected surge flagged for 3x volume spike, got %+v", vs.Value())
	}
}
