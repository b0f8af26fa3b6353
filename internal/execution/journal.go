package execution

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"renkoconfluence/internal/model"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// Journal persists closed trades to SQLite for after-the-fact analysis and
// audit. It implements model.TradeSink so the orchestrator can register it
// directly as a sink.
type Journal struct {
	mu sync.Mutex
	db *sql.DB
}

// NewJournal opens (or creates) a SQLite trade journal.
func NewJournal(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal=WAL&_sync=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS closed_trades (
		id              TEXT PRIMARY KEY,
		symbol          TEXT NOT NULL,
		entry_price     TEXT NOT NULL,
		entry_time      DATETIME NOT NULL,
		exit_price      TEXT NOT NULL,
		exit_time       DATETIME NOT NULL,
		quantity        TEXT NOT NULL,
		pnl             TEXT NOT NULL,
		pnl_pct         TEXT NOT NULL,
		holding_minutes REAL NOT NULL,
		exit_reason     TEXT NOT NULL,
		origin_strategy TEXT NOT NULL,
		created_at      DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_closed_trades_exit_time ON closed_trades(exit_time);
	CREATE INDEX IF NOT EXISTS idx_closed_trades_origin ON closed_trades(origin_strategy);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	log.Printf("[journal] opened trade journal at %s", dbPath)
	return &Journal{db: db}, nil
}

// PublishTrade implements model.TradeSink.
func (j *Journal) PublishTrade(trade model.ClosedTrade) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.Exec(
		`INSERT OR REPLACE INTO closed_trades
			(id, symbol, entry_price, entry_time, exit_price, exit_time, quantity,
			 pnl, pnl_pct, holding_minutes, exit_reason, origin_strategy)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		trade.ID.String(),
		trade.Symbol,
		trade.EntryPrice.String(),
		trade.EntryTime.Format(time.RFC3339Nano),
		trade.ExitPrice.String(),
		trade.ExitTime.Format(time.RFC3339Nano),
		trade.Quantity.String(),
		trade.PnL.String(),
		trade.PnLPct.String(),
		trade.HoldingMinutes,
		string(trade.ExitReason),
		string(trade.OriginStrategy),
	)
	return err
}

// Recent returns the last n closed trades, newest first.
func (j *Journal) Recent(n int) ([]model.ClosedTrade, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.Query(
		`SELECT id, symbol, entry_price, entry_time, exit_price, exit_time, quantity,
			pnl, pnl_pct, holding_minutes, exit_reason, origin_strategy
		 FROM closed_trades ORDER BY exit_time DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []model.ClosedTrade
	for rows.Next() {
		var (
			id, symbol, entryPriceStr, exitPriceStr, qtyStr, pnlStr, pnlPctStr string
			entryTimeStr, exitTimeStr                                          string
			reason, origin                                                    string
			holdingMinutes                                                    float64
		)
		if err := rows.Scan(&id, &symbol, &entryPriceStr, &entryTimeStr,
			&exitPriceStr, &exitTimeStr, &qtyStr, &pnlStr, &pnlPctStr,
			&holdingMinutes, &reason, &origin); err != nil {
			continue
		}

		tradeID, err := uuid.Parse(id)
		if err != nil {
			continue
		}
		entryTime, err := time.Parse(time.RFC3339Nano, entryTimeStr)
		if err != nil {
			continue
		}
		exitTime, err := time.Parse(time.RFC3339Nano, exitTimeStr)
		if err != nil {
			continue
		}

		trades = append(trades, model.ClosedTrade{
			ID:             tradeID,
			Symbol:         symbol,
			EntryPrice:     decimal.RequireFromString(entryPriceStr),
			EntryTime:      entryTime,
			ExitPrice:      decimal.RequireFromString(exitPriceStr),
			ExitTime:       exitTime,
			Quantity:       decimal.RequireFromString(qtyStr),
			PnL:            decimal.RequireFromString(pnlStr),
			PnLPct:         decimal.RequireFromString(pnlPctStr),
			HoldingMinutes: holdingMinutes,
			ExitReason:     model.ExitReason(reason),
			OriginStrategy: model.StrategyOrigin(origin),
		})
	}
	return trades, rows.Err()
}

// Close closes the underlying database handle.
func (j *Journal) Close() error {
	return j.db.Close()
}

var _ model.TradeSink = (*Journal)(nil)
