package replay

import (
	"context"
	"strings"
	"testing"

	"renkoconfluence/internal/model"
)

func TestPlayer_EmitsAllTicksInOrder(t *testing.T) {
	data := strings.Join([]string{
		`{"price":"100.0","volume":"1","arrival_time":"2026-01-01T00:00:00Z"}`,
		`{"price":"100.5","volume":"2","arrival_time":"2026-01-01T00:00:01Z"}`,
		`{"price":"101.0","volume":"1","arrival_time":"2026-01-01T00:00:02Z"}`,
	}, "\n")

	p := New(strings.NewReader(data))
	out := make(chan model.Tick, 10)
	if err := p.Run(context.Background(), out, 0); err != nil {
		t.Fatalf("run: %v", err)
	}
	close(out)

	var got []model.Tick
	for tk := range out {
		got = append(got, tk)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 ticks, got %d", len(got))
	}
	if got[0].Price.String() != "100" {
		t.Errorf("expected first tick price 100, got %s", got[0].Price.String())
	}
	if got[2].Price.String() != "101" {
		t.Errorf("expected last tick price 101, got %s", got[2].Price.String())
	}
}

func TestPlayer_SkipsMalformedLines(t *testing.T) {
	data := strings.Join([]string{
		`not json`,
		`{"price":"100.0","volume":"1","arrival_time":"2026-01-01T00:00:00Z"}`,
		``,
	}, "\n")

	p := New(strings.NewReader(data))
	out := make(chan model.Tick, 10)
	if err := p.Run(context.Background(), out, 0); err != nil {
		t.Fatalf("run: %v", err)
	}
	close(out)

	count := 0
	for range out {
		count++
	}
	if count != 1 {
		t.Fatalf("expected 1 valid tick, got %d", count)
	}
}

func TestPlayer_ContextCancellation(t *testing.T) {
	data := strings.Join([]string{
		`{"price":"100.0","volume":"1","arrival_time":"2026-01-01T00:00:00Z"}`,
		`{"price":"101.0","volume":"1","arrival_time":"2026-01-01T01:00:00Z"}`,
	}, "\n")

	p := New(strings.NewReader(data))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := make(chan model.Tick)
	err := p.Run(ctx, out, 1.0)
	if err == nil {
		t.Error("expected context cancellation error")
	}
}
