// Package redis persists the outward session snapshot and closed-trade
// stream to Redis, so a dashboard or analytics job can read them without
// holding a reference to the running session.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"renkoconfluence/internal/model"

	goredis "github.com/go-redis/redis/v8"
)

const (
	snapshotKey      = "renko:snapshot:latest"
	snapshotTTL      = 30 * time.Minute
	tradeStream      = "renko:trades"
	tradeStreamMaxLn = 5000
	pubSnapshotChan  = "pub:renko:snapshot"
	pubTradeChan     = "pub:renko:trade"
)

// Config configures the Redis connection.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// Store persists snapshots and trades to Redis and implements
// model.SnapshotSink, model.TradeSink, and model.SnapshotStore.
type Store struct {
	client *goredis.Client
	ctx    context.Context
}

// New connects to Redis and verifies reachability with a ping.
func New(cfg Config) (*Store, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Printf("[redis] connected to %s", cfg.Addr)
	return &Store{client: client, ctx: context.Background()}, nil
}

// PublishSnapshot implements model.SnapshotSink: it stores the latest
// snapshot under a TTL key and publishes it for live subscribers.
func (s *Store) PublishSnapshot(snap model.SessionSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := s.SaveSnapshotJSON(data); err != nil {
		return err
	}
	return s.client.Publish(s.ctx, pubSnapshotChan, data).Err()
}

// PublishTrade implements model.TradeSink: it appends the closed trade to a
// capped Redis Stream and publishes it for live subscribers.
func (s *Store) PublishTrade(trade model.ClosedTrade) error {
	data, err := json.Marshal(trade)
	if err != nil {
		return fmt.Errorf("marshal trade: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.XAdd(s.ctx, &goredis.XAddArgs{
		Stream: tradeStream,
		MaxLen: tradeStreamMaxLn,
		Approx: true,
		Values: map[string]interface{}{"data": string(data)},
	})
	pipe.Publish(s.ctx, pubTradeChan, data)
	_, err = pipe.Exec(s.ctx)
	return err
}

// SaveSnapshotJSON implements model.SnapshotStore.
func (s *Store) SaveSnapshotJSON(data []byte) error {
	return s.client.Set(s.ctx, snapshotKey, data, snapshotTTL).Err()
}

// ReadLatestSnapshotJSON implements model.SnapshotStore.
func (s *Store) ReadLatestSnapshotJSON() ([]byte, error) {
	data, err := s.client.Get(s.ctx, snapshotKey).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get snapshot: %w", err)
	}
	return data, nil
}

// RecentTrades reads the last n closed trades from the capped stream,
// newest first.
func (s *Store) RecentTrades(n int64) ([]model.ClosedTrade, error) {
	msgs, err := s.client.XRevRangeN(s.ctx, tradeStream, "+", "-", n).Result()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("xrevrange %s: %w", tradeStream, err)
	}

	trades := make([]model.ClosedTrade, 0, len(msgs))
	for _, m := range msgs {
		raw, ok := m.Values["data"].(string)
		if !ok {
			continue
		}
		var t model.ClosedTrade
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			continue
		}
		trades = append(trades, t)
	}
	return trades, nil
}

// Close closes the underlying Redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

var (
	_ model.SnapshotSink  = (*Store)(nil)
	_ model.TradeSink     = (*Store)(nil)
	_ model.SnapshotStore = (*Store)(nil)
)
