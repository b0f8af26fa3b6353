// Package replay reads a historical tick feed (NDJSON, one tick object per
// line) and emits it at a configurable speed multiplier, the one transport
// this engine ships for driving the orchestrator outside of a live feed.
package replay

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"

	"renkoconfluence/internal/model"

	"github.com/shopspring/decimal"
)

// tickLine is the NDJSON wire shape for one replayed tick.
type tickLine struct {
	Price       decimal.Decimal `json:"price"`
	Volume      decimal.Decimal `json:"volume"`
	ArrivalTime time.Time       `json:"arrival_time"`
}

// Player reads ticks from an NDJSON stream and emits them into outCh.
type Player struct {
	r io.Reader
}

// New creates a Player reading NDJSON ticks from r (a replay file or stdin).
func New(r io.Reader) *Player {
	return &Player{r: r}
}

// Run replays every tick in the stream, emitting into outCh. speed controls
// playback rate against each tick's own arrival_time gap: 1.0 = real-time,
// 10.0 = 10x, 0 = as fast as possible. The gap between consecutive ticks is
// capped at 5 seconds of wall-clock sleep regardless of speed, so a large
// recorded gap (e.g. an overnight pause) doesn't stall replay for hours.
func (p *Player) Run(ctx context.Context, outCh chan<- model.Tick, speed float64) error {
	scanner := bufio.NewScanner(p.r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var prevTS time.Time
	emitted := 0

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			log.Printf("[replay] cancelled after %d ticks", emitted)
			return ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var tl tickLine
		if err := json.Unmarshal(line, &tl); err != nil {
			log.Printf("[replay] skipping malformed line: %v", err)
			continue
		}

		if speed > 0 && !prevTS.IsZero() {
			gap := tl.ArrivalTime.Sub(prevTS)
			if gap > 0 {
				scaledGap := time.Duration(float64(gap) / speed)
				if scaledGap > 5*time.Second {
					scaledGap = 5 * time.Second
				}
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(scaledGap):
				}
			}
		}
		prevTS = tl.ArrivalTime

		t := model.Tick{Price: tl.Price, Volume: tl.Volume, ArrivalTime: tl.ArrivalTime}
		select {
		case outCh <- t:
			emitted++
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("replay scan: %w", err)
	}

	log.Printf("[replay] completed: %d ticks replayed", emitted)
	return nil
}
