// Command engine runs the full single-instrument Renko confluence trading
// session: it wires the orchestrator core to its outward sinks (Redis,
// SQLite journal, webhook notifications, the dashboard websocket hub) and
// drives it from a replay NDJSON tick feed, matching the scope this repo
// ships (no live exchange WS/REST adapter).
package main

import (
	"bufio"
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"renkoconfluence/config"
	"renkoconfluence/internal/dashboard"
	"renkoconfluence/internal/execution"
	"renkoconfluence/internal/feed"
	"renkoconfluence/internal/feed/replay"
	"renkoconfluence/internal/logger"
	"renkoconfluence/internal/metrics"
	"renkoconfluence/internal/model"
	"renkoconfluence/internal/notification"
	"renkoconfluence/internal/orchestrator"
	redisstore "renkoconfluence/internal/store/redis"
)

func main() {
	replayPath := flag.String("replay", "", "path to an NDJSON tick replay file (defaults to stdin)")
	speed := flag.Float64("speed", 0, "replay speed multiplier (0 = as fast as possible, 1 = real-time)")
	flag.Parse()

	logger.Init("renkoconfluence-engine", slog.LevelInfo)

	cfg := config.Load()

	health := metrics.NewHealthStatus()
	m := metrics.NewMetrics()
	metricsSrv := metrics.NewServer(cfg.Infra.MetricsAddr, health)
	metricsSrv.Start()

	session := orchestrator.New(cfg.Orchestrator, time.Now())
	session.SetMetrics(m)

	hub := dashboard.NewHub()
	session.AddSnapshotSink(hub)
	session.AddTradeSink(hub)

	admin := dashboard.NewAdminControl(cfg.Infra.AdminTOTPSecret, session)
	dashSrv := dashboard.NewServer(cfg.Infra.DashboardAddr, hub, admin)
	dashSrv.Start()

	journal, err := execution.NewJournal(cfg.Infra.SQLitePath)
	if err != nil {
		log.Fatalf("journal: %v", err)
	}
	defer journal.Close()
	session.AddTradeSink(journal)

	session.SetExecutor(execution.NewPaperExecutor(5))

	if store, err := redisstore.New(redisstore.Config{
		Addr:     cfg.Infra.RedisAddr,
		Password: cfg.Infra.RedisPassword,
		DB:       cfg.Infra.RedisDB,
	}); err != nil {
		log.Printf("[engine] redis unavailable, running without it: %v", err)
		health.SetRedisConnected(false)
	} else {
		defer store.Close()
		cb := redisstore.NewCircuitBreaker(5, 30*time.Second)
		cb.OnStateChange = func(from, to redisstore.State) {
			log.Printf("[engine] redis circuit breaker %s -> %s", from, to)
			var v float64
			switch to {
			case redisstore.StateOpen:
				v = 1
			case redisstore.StateHalfOpen:
				v = 2
			}
			m.RedisCircuitBreakerState.Set(v)
		}
		buffered := redisstore.NewBufferedStore(store, cb, 2000)
		buffered.OnBuffer = func() { m.RedisBufferedWrites.Inc() }
		session.AddSnapshotSink(buffered)
		session.AddTradeSink(buffered)
		health.SetRedisConnected(true)
	}

	if cfg.Infra.NotifyWebhookURL != "" {
		webhook := notification.NewWebhookNotifier(cfg.Infra.NotifyWebhookURL)
		session.AddTradeSink(notification.NewTradeSink(webhook, 5*time.Second))
	}
	if cfg.Infra.NotifyTelegramToken != "" && cfg.Infra.NotifyTelegramChatID != "" {
		telegram := notification.NewTelegramNotifier(cfg.Infra.NotifyTelegramToken, cfg.Infra.NotifyTelegramChatID)
		session.AddTradeSink(notification.NewTradeSink(telegram, 5*time.Second))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("[engine] signal received, requesting shutdown")
		session.RequestShutdown()
	}()

	var src = os.Stdin
	if *replayPath != "" {
		f, err := os.Open(*replayPath)
		if err != nil {
			log.Fatalf("open replay file: %v", err)
		}
		defer f.Close()
		src = f
	}

	tickCh := make(chan model.Tick, 256)
	player := replay.New(bufio.NewReader(src))
	go func() {
		defer close(tickCh)
		if err := player.Run(ctx, tickCh, *speed); err != nil && err != context.Canceled {
			log.Printf("[engine] replay ended: %v", err)
		}
	}()

	stall := feed.New()
	run(session, tickCh, stall, health)

	log.Println("[engine] session ended, flushing")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = dashSrv.Stop(shutdownCtx)
	_ = metricsSrv.Stop(shutdownCtx)
}

// run drives the orchestrator from tickCh until the tick source closes or
// a shutdown is requested, whichever comes first.
func run(session *orchestrator.Session, tickCh <-chan model.Tick, stall *feed.StallDetector, health *metrics.HealthStatus) {
	for {
		select {
		case t, ok := <-tickCh:
			if !ok {
				_ = session.HandleInbound(model.Inbound{Kind: model.InboundShutdown})
				return
			}
			health.SetLastTickTime(t.ArrivalTime)
			stall.Observe(t.Price, t.ArrivalTime)
			if err := session.HandleInbound(model.Inbound{Kind: model.InboundTick, Tick: t}); err != nil {
				if err == model.ErrShutdownRequested {
					return
				}
				log.Printf("[engine] tick handling error: %v", err)
			}
		case <-session.ShutdownRequested():
			_ = session.HandleInbound(model.Inbound{Kind: model.InboundShutdown})
			return
		}
	}
}
