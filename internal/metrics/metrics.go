// Package metrics exposes Prometheus counters and gauges for the running
// session and a /healthz liveness endpoint, in the style of the engine's
// original OHLC-pipeline metrics surface, scaled down to one instrument and
// one portfolio instead of a multi-token fleet.
package metrics

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus instruments for one running session.
type Metrics struct {
	TicksTotal       prometheus.Counter
	CandlesTotal     prometheus.Counter
	BricksTotal      *prometheus.CounterVec // labels: strategy
	TrendChangeTotal *prometheus.CounterVec // labels: strategy

	SignalsTotal    *prometheus.CounterVec // labels: strategy, kind
	SignalsRejected *prometheus.CounterVec // labels: strategy, reason
	TradesOpened    *prometheus.CounterVec // labels: strategy
	TradesClosed    *prometheus.CounterVec // labels: strategy, reason

	Equity         prometheus.Gauge
	Cash           prometheus.Gauge
	RealizedPnL    prometheus.Gauge
	DrawdownPct    prometheus.Gauge
	OpenPositions  prometheus.Gauge
	MarketRegime   prometheus.Gauge // 0=Trending, 1=Ranging

	RedisCircuitBreakerState prometheus.Gauge
	RedisBufferedWrites      prometheus.Counter

	DashboardClients prometheus.Gauge
}

// NewMetrics registers and returns the Prometheus instruments.
func NewMetrics() *Metrics {
	m := &Metrics{
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "renko_ticks_total",
			Help: "Total ticks ingested by the session.",
		}),
		CandlesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "renko_candles_total",
			Help: "Total candles closed by the aggregator.",
		}),
		BricksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "renko_bricks_total",
			Help: "Renko bricks formed, per strategy's own engine.",
		}, []string{"strategy"}),
		TrendChangeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "renko_trend_change_total",
			Help: "Renko trend-change events observed, per strategy.",
		}, []string{"strategy"}),
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "renko_signals_total",
			Help: "Signals produced by a strategy, per kind (entry/exit).",
		}, []string{"strategy", "kind"}),
		SignalsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "renko_signals_rejected_total",
			Help: "Entry signals withheld by a strategy, per reason.",
		}, []string{"strategy", "reason"}),
		TradesOpened: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "renko_trades_opened_total",
			Help: "Positions opened, per owning strategy.",
		}, []string{"strategy"}),
		TradesClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "renko_trades_closed_total",
			Help: "Positions closed, per owning strategy and exit reason.",
		}, []string{"strategy", "reason"}),
		Equity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "renko_equity",
			Help: "Current portfolio equity (cash + mark-to-market position).",
		}),
		Cash: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "renko_cash",
			Help: "Current uninvested cash.",
		}),
		RealizedPnL: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "renko_realized_pnl",
			Help: "Cumulative realized P&L across closed trades.",
		}),
		DrawdownPct: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "renko_max_drawdown_pct",
			Help: "Max drawdown, (peak equity - trough equity) / peak equity, as a percentage.",
		}),
		OpenPositions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "renko_open_positions",
			Help: "1 if a position is currently open, else 0.",
		}),
		MarketRegime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "renko_market_regime",
			Help: "Current regime arbiter classification (0=Trending, 1=Ranging).",
		}),
		RedisCircuitBreakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "renko_redis_circuit_breaker_state",
			Help: "Redis circuit breaker state (0=closed, 1=open, 2=half-open).",
		}),
		RedisBufferedWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "renko_redis_buffered_writes_total",
			Help: "Writes buffered locally while the Redis circuit breaker was open.",
		}),
		DashboardClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "renko_dashboard_clients",
			Help: "Currently connected dashboard WebSocket clients.",
		}),
	}

	prometheus.MustRegister(
		m.TicksTotal, m.CandlesTotal, m.BricksTotal, m.TrendChangeTotal,
		m.SignalsTotal, m.SignalsRejected, m.TradesOpened, m.TradesClosed,
		m.Equity, m.Cash, m.RealizedPnL, m.DrawdownPct, m.OpenPositions, m.MarketRegime,
		m.RedisCircuitBreakerState, m.RedisBufferedWrites, m.DashboardClients,
	)
	return m
}

// HealthStatus tracks liveness of the session's external dependencies.
type HealthStatus struct {
	mu sync.RWMutex

	LastTickTime   time.Time
	RedisConnected bool
	StartedAt      time.Time
}

// NewHealthStatus returns a fresh HealthStatus stamped with the current time.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{StartedAt: time.Now()}
}

func (h *HealthStatus) SetLastTickTime(t time.Time) {
	h.mu.Lock()
	h.LastTickTime = t
	h.mu.Unlock()
}

func (h *HealthStatus) SetRedisConnected(v bool) {
	h.mu.Lock()
	h.RedisConnected = v
	h.mu.Unlock()
}

// ServeHTTP handles the /healthz endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "healthy"
	code := http.StatusOK
	if !h.RedisConnected {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	tickAge := ""
	if !h.LastTickTime.IsZero() {
		tickAge = time.Since(h.LastTickTime).Round(time.Millisecond).String()
	}

	body := struct {
		Status         string `json:"status"`
		Uptime         string `json:"uptime"`
		LastTickTime   string `json:"last_tick_time"`
		TickAge        string `json:"tick_age"`
		RedisConnected bool   `json:"redis_connected"`
	}{
		Status:         status,
		Uptime:         time.Since(h.StartedAt).Round(time.Second).String(),
		LastTickTime:   h.LastTickTime.Format(time.RFC3339),
		TickAge:        tickAge,
		RedisConnected: h.RedisConnected,
	}

	w.Header().Set("Content-Type", "application/json")
	if code != http.StatusOK {
		w.WriteHeader(code)
	}
	json.NewEncoder(w).Encode(body)
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	addr string
	srv  *http.Server
}

// NewServer creates a metrics and health server.
func NewServer(addr string, health *HealthStatus) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", health.ServeHTTP)

	return &Server{addr: addr, srv: &http.Server{Addr: addr, Handler: mux}}
}

// Start launches the HTTP server in the background.
func (s *Server) Start() {
	go func() {
		log.Printf("[metrics] listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("[metrics] server error: %v", err)
		}
	}()
}

// Stop gracefully shuts the metrics server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
