// Package orchestrator implements the single-threaded cooperative session
// loop (component C8): it owns the candle aggregator, both strategies'
// independent Renko engines and indicator sets, the regime arbiter, and the
// portfolio, and drives them all synchronously from one inbound event at a
// time. There is no goroutine fan-out inside the core — only the external
// transport feeding Inbound events runs concurrently with it.
package orchestrator

import (
	"sync"
	"time"

	"renkoconfluence/internal/candle"
	"renkoconfluence/internal/execution"
	"renkoconfluence/internal/metrics"
	"renkoconfluence/internal/model"
	"renkoconfluence/internal/portfolio"
	"renkoconfluence/internal/strategy"

	"github.com/shopspring/decimal"
)

// Session is the Session Orchestrator. It is not safe for concurrent use —
// callers must feed it one Inbound event at a time from a single goroutine.
type Session struct {
	cfg Config

	aggregator *candle.Aggregator
	strategyA  *strategy.StrategyA
	strategyB  *strategy.StrategyB
	arbiter    *strategy.RegimeArbiter
	book       *portfolio.Portfolio
	risk       *portfolio.RiskManager

	startTime      time.Time
	lastPrice      decimal.Decimal
	lastCandleTime time.Time
	activeStrategy model.ActiveStrategyTag

	lastSnapshotAt time.Time
	sinks          []model.SnapshotSink
	tradeSinks     []model.TradeSink

	metrics  *metrics.Metrics
	executor *execution.PaperExecutor

	shutdownOnce sync.Once
	shutdownCh   chan struct{}
}

// New creates a Session starting at now.
func New(cfg Config, now time.Time) *Session {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	book := portfolio.New(cfg.Portfolio)
	return &Session{
		cfg:        cfg,
		aggregator: candle.New(),
		strategyA:  strategy.NewStrategyA(cfg.StrategyA, cfg.Clock),
		strategyB:  strategy.NewStrategyB(cfg.StrategyB, cfg.Clock),
		arbiter:    strategy.NewRegimeArbiter(now),
		book:       book,
		risk:       portfolio.NewRiskManager(cfg.Risk, book),
		startTime:  now,
		lastPrice:  cfg.Portfolio.InitialCapital, // placeholder until the first tick arrives
		shutdownCh: make(chan struct{}),
	}
}

// RequestShutdown asks the session to drain and stop. Safe to call from any
// goroutine (e.g. an admin HTTP handler); the transport loop feeding
// HandleInbound is expected to select on ShutdownRequested() alongside its
// tick source and translate a fired signal into one InboundShutdown event.
func (s *Session) RequestShutdown() {
	s.shutdownOnce.Do(func() { close(s.shutdownCh) })
}

// ShutdownRequested returns the channel that closes when RequestShutdown
// has been called.
func (s *Session) ShutdownRequested() <-chan struct{} { return s.shutdownCh }

// AddSnapshotSink registers an outward snapshot destination. Sinks are
// called synchronously; a slow or failing sink must not block the core, so
// implementations are expected to be non-blocking themselves.
func (s *Session) AddSnapshotSink(sink model.SnapshotSink) { s.sinks = append(s.sinks, sink) }

// AddTradeSink registers an outward closed-trade destination.
func (s *Session) AddTradeSink(sink model.TradeSink) { s.tradeSinks = append(s.tradeSinks, sink) }

// SetMetrics wires a Prometheus instrument set into the session. Optional —
// a nil or never-set metrics field leaves the core loop untouched.
func (s *Session) SetMetrics(m *metrics.Metrics) { s.metrics = m }

// SetExecutor wires a paper executor that records a parallel,
// slippage-adjusted fill alongside every signal the portfolio applies.
// Optional — a nil or never-set executor leaves the core loop untouched.
func (s *Session) SetExecutor(e *execution.PaperExecutor) { s.executor = e }

// recordEvents increments per-strategy brick and trend-change counters for
// one strategy's batch of Renko events from a single candle.
func (s *Session) recordEvents(strategyLabel string, events []model.RenkoEvent) {
	if s.metrics == nil {
		return
	}
	for _, ev := range events {
		switch ev.Kind {
		case model.EventNewBrick:
			s.metrics.BricksTotal.WithLabelValues(strategyLabel).Inc()
		case model.EventMultipleBricks:
			s.metrics.BricksTotal.WithLabelValues(strategyLabel).Add(float64(ev.Count))
		case model.EventTrendChange:
			s.metrics.TrendChangeTotal.WithLabelValues(strategyLabel).Inc()
		}
	}
}

// recordReject tallies a withheld entry signal by cause. A blank reason
// means "not enough history yet" and isn't counted — that's a steady
// state, not a rejection.
func (s *Session) recordReject(strategyLabel string, reason model.RejectReason) {
	if s.metrics == nil || reason == "" {
		return
	}
	s.metrics.SignalsRejected.WithLabelValues(strategyLabel, string(reason)).Inc()
}

// HandleInbound processes exactly one Inbound event to completion, per the
// single-suspension-point scheduling model.
func (s *Session) HandleInbound(ev model.Inbound) error {
	switch ev.Kind {
	case model.InboundTick:
		return s.handleTick(ev.Tick)
	case model.InboundCandle:
		return s.handleExternalCandle(ev.Candle)
	case model.InboundShutdown:
		return s.handleShutdown()
	}
	return nil
}

func (s *Session) handleTick(t model.Tick) error {
	if !t.Valid() {
		return model.ErrInvalidTick
	}
	s.lastPrice = t.Price
	if s.metrics != nil {
		s.metrics.TicksTotal.Inc()
	}

	closed, ok, err := s.aggregator.Ingest(t)
	if err != nil {
		return err
	}

	tickEvent := s.book.EvaluateTickTPSL(t.Price, t.ArrivalTime)
	s.publishIfClosed(tickEvent)

	if ok {
		if err := s.processClosedCandle(closed); err != nil {
			return err
		}
	}
	s.maybeEmitSnapshot(t.ArrivalTime)
	return nil
}

// handleExternalCandle lets a transport that already aggregates candles
// (e.g. an exchange's own 1-minute bars) skip the tick-level aggregator.
func (s *Session) handleExternalCandle(c model.Candle) error {
	s.lastPrice = c.Close
	if err := s.processClosedCandle(c); err != nil {
		return err
	}
	s.maybeEmitSnapshot(c.BucketStart)
	return nil
}

// processClosedCandle is the per-candle pipeline: feed both
// strategies' Renko engines, let each produce an optional signal, arbitrate,
// let the position-owning strategy's exit rule always fire, apply the
// result, and re-evaluate TP/SL against the candle's high/low.
func (s *Session) processClosedCandle(c model.Candle) error {
	s.lastCandleTime = c.BucketStart
	if s.metrics != nil {
		s.metrics.CandlesTotal.Inc()
	}

	eventsA, err := s.strategyA.OnCandle(c)
	if err != nil {
		return err
	}
	eventsB, err := s.strategyB.OnCandle(c)
	if err != nil {
		return err
	}
	s.recordEvents(string(model.OriginA), eventsA)
	s.recordEvents(string(model.OriginB), eventsB)
	s.arbiter.ObserveEvents(eventsA)
	s.arbiter.ObserveEvents(eventsB)

	now := s.cfg.Clock()
	equity := s.book.Equity(c.Close)
	flat := s.book.Flat()

	var exitSig *model.Signal
	if !flat {
		if s.book.OwnedBy(model.OriginA) {
			exitSig = s.strategyA.Exit(strategy.Evaluation{Now: now, PortfolioFlat: flat, Equity: equity, HasOwnPosition: true})
		} else if s.book.OwnedBy(model.OriginB) {
			exitSig = s.strategyB.Exit(strategy.Evaluation{Now: now, PortfolioFlat: flat, Equity: equity, HasOwnPosition: true})
		}
	}

	var chosen *model.Signal
	if exitSig != nil {
		// Exit signals bypass the arbiter entirely.
		chosen = exitSig
	} else if flat {
		canOpen, _ := s.risk.CanOpenPosition()
		if canOpen {
			eval := strategy.Evaluation{Now: now, PortfolioFlat: true, Equity: equity}
			sigA, rejectA := s.strategyA.Entry(eval)
			sigB, rejectB := s.strategyB.Entry(eval)
			s.recordReject(string(model.OriginA), rejectA)
			s.recordReject(string(model.OriginB), rejectB)
			chosen = s.arbiter.Arbitrate(now, sigA, sigB)
		}
	}

	if chosen != nil {
		if s.metrics != nil {
			kind := "entry"
			if exitSig != nil {
				kind = "exit"
			}
			s.metrics.SignalsTotal.WithLabelValues(string(chosen.OriginStrategy), kind).Inc()
		}
		if s.executor != nil {
			s.executor.Execute(*chosen, now)
		}
		result := s.book.Apply(chosen, chosen.Price, now)
		if s.metrics != nil && result.Kind == portfolio.EventOpened {
			s.metrics.TradesOpened.WithLabelValues(string(chosen.OriginStrategy)).Inc()
		}
		s.onTradeEvent(result)
		if chosen.OriginStrategy == model.OriginA {
			s.activeStrategy = model.ActivePrimary
		} else if chosen.OriginStrategy == model.OriginB {
			s.activeStrategy = model.ActiveSecondary
		}
		if result.Kind == portfolio.EventClosed {
			s.activeStrategy = model.ActiveNone
		}
	}

	tpslEvent := s.book.EvaluateCandleTPSL(c.High, c.Low, now)
	s.publishIfClosed(tpslEvent)
	if tpslEvent.Kind == portfolio.EventClosed {
		s.activeStrategy = model.ActiveNone
	}

	return nil
}

func (s *Session) onTradeEvent(ev portfolio.TradeEvent) {
	s.publishIfClosed(ev)
}

func (s *Session) publishIfClosed(ev portfolio.TradeEvent) {
	if ev.Kind != portfolio.EventClosed || ev.ClosedTrade == nil {
		return
	}
	if s.metrics != nil {
		s.metrics.TradesClosed.WithLabelValues(
			string(ev.ClosedTrade.OriginStrategy), string(ev.ClosedTrade.ExitReason),
		).Inc()
	}
	for _, sink := range s.tradeSinks {
		_ = sink.PublishTrade(*ev.ClosedTrade)
	}
}

// handleShutdown drains in-flight work: close any open position at the
// last known price (reason SessionEnded), emit a final snapshot, stop.
func (s *Session) handleShutdown() error {
	now := s.cfg.Clock()
	if closedCandle, ok := s.aggregator.FlushSession(); ok {
		_ = s.processClosedCandle(closedCandle)
	}
	ev := s.book.CloseAtMarket(s.lastPrice, now)
	s.publishIfClosed(ev)
	s.emitSnapshot(now)
	return model.ErrShutdownRequested
}

func (s *Session) maybeEmitSnapshot(now time.Time) {
	if s.lastSnapshotAt.IsZero() || now.Sub(s.lastSnapshotAt) >= s.cfg.SnapshotInterval {
		s.emitSnapshot(now)
	}
}

func (s *Session) emitSnapshot(now time.Time) {
	s.lastSnapshotAt = now
	snap := s.buildSnapshot(now)
	s.recordGauges(snap)
	for _, sink := range s.sinks {
		_ = sink.PublishSnapshot(snap)
	}
}

// recordGauges mirrors the outward snapshot onto the Prometheus gauges.
func (s *Session) recordGauges(snap model.SessionSnapshot) {
	if s.metrics == nil {
		return
	}
	s.metrics.Equity.Set(snap.Portfolio.Equity.InexactFloat64())
	s.metrics.Cash.Set(snap.Portfolio.Cash.InexactFloat64())
	s.metrics.RealizedPnL.Set(snap.Metrics.TotalPnL.InexactFloat64())
	s.metrics.DrawdownPct.Set(snap.Metrics.MaxDrawdownPct.InexactFloat64())
	s.metrics.OpenPositions.Set(float64(snap.OpenPositions))
	if snap.MarketRegime == model.RegimeRanging {
		s.metrics.MarketRegime.Set(1)
	} else {
		s.metrics.MarketRegime.Set(0)
	}
}

// buildSnapshot assembles the outward SessionSnapshot as an
// immutable deep copy of core state.
func (s *Session) buildSnapshot(now time.Time) model.SessionSnapshot {
	port := s.book.Snapshot()
	metrics := s.book.ComputeMetrics(now)

	positions := []model.PositionView{}
	openPositions := 0
	if port.Position != nil {
		openPositions = 1
		positions = append(positions, model.PositionView{
			Symbol:   port.Position.Symbol,
			Quantity: port.Position.Quantity,
			AvgPrice: port.Position.EntryPrice,
		})
	}

	return model.SessionSnapshot{
		Symbol:         s.cfg.Symbol,
		Strategy:       "Dual SuperTrend Renko System",
		MarketRegime:   s.arbiter.Regime(now),
		ActiveStrategy: s.activeStrategy,
		InitialCapital: s.cfg.Portfolio.InitialCapital,
		StartTime:      s.startTime,
		Portfolio: model.PortfolioView{
			Cash:           port.Cash,
			Equity:         s.book.Equity(s.lastPrice),
			Positions:      positions,
			TotalReturnPct: s.book.TotalReturnPct(s.lastPrice, now),
			DailyPnL:       s.book.DailyPnL(),
		},
		Metrics: metrics.View(),
		Strategies: model.StrategiesView{
			Primary:   s.strategyA.Stats(),
			Secondary: s.strategyB.Stats(),
		},
		LastPrice:      s.lastPrice,
		LastCandleTime: s.lastCandleTime,
		OpenPositions:  openPositions,
	}
}
