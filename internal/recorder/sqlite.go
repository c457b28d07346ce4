package recorder

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"MarketConfluence/internal/model"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode lets dashboards read while the scheduler writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

// DB exposes the handle for health checks.
func (r *SQLiteRecorder) DB() *sql.DB { return r.db }

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS mtf_snapshots (
			id                 INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp          INTEGER NOT NULL,
			symbol             TEXT NOT NULL,
			price              REAL,
			overall_signal     TEXT,
			overall_confidence REAL,
			weighted_score     REAL,
			alignment_score    REAL,
			bullish_count      INTEGER,
			bearish_count      INTEGER,
			neutral_count      INTEGER,
			strongest_tf       TEXT,
			weakest_tf         TEXT,
			risk_level         TEXT,
			regime             TEXT,
			regime_direction   TEXT,
			adx                REAL,
			di_spread          REAL,
			structure          TEXT,
			structure_quality  TEXT,
			consolidating      INTEGER,
			poc                REAL,
			risk_pct           REAL,
			stop_loss          REAL,
			take_profit        REAL,
			reasons            TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_symbol_ts ON mtf_snapshots(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS timeframe_signals (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			snapshot_id  INTEGER NOT NULL REFERENCES mtf_snapshots(id),
			timeframe    TEXT NOT NULL,
			signal       TEXT,
			confidence   REAL,
			score        REAL,
			trend        TEXT,
			rsi          REAL,
			atr          REAL,
			volatility   TEXT,
			data_quality REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tf_snapshot ON timeframe_signals(snapshot_id)`,

		`CREATE TABLE IF NOT EXISTS position_events (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			symbol      TEXT NOT NULL,
			action      TEXT,
			direction   TEXT,
			entry       REAL,
			stop_loss   REAL,
			take_profit REAL,
			risk_pct    REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_position_ts ON position_events(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordSnapshot stores the confluence summary and one row per timeframe in a single transaction.
func (r *SQLiteRecorder) RecordSnapshot(snap *Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := snap.Confluence
	pa := c.PriceAction
	ps := c.PositionSizing

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO mtf_snapshots
		(timestamp, symbol, price, overall_signal, overall_confidence, weighted_score,
		 alignment_score, bullish_count, bearish_count, neutral_count,
		 strongest_tf, weakest_tf, risk_level,
		 regime, regime_direction, adx, di_spread,
		 structure, structure_quality, consolidating, poc,
		 risk_pct, stop_loss, take_profit, reasons)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		snap.At.Unix(), snap.Symbol, snap.Price, c.OverallSignal, c.OverallConfidence, c.WeightedScore,
		c.AlignmentScore, c.BullishCount, c.BearishCount, c.NeutralCount,
		c.StrongestTimeframe, c.WeakestTimeframe, c.RiskLevel,
		c.MarketRegime.Regime, c.MarketRegime.Direction, c.MarketRegime.ADX, c.MarketRegime.DISpread,
		pa.Structure, pa.StructureQuality, pa.Consolidation.IsConsolidating, c.VolumeProfile.POC,
		ps.RiskPct, ps.StopLoss, ps.TakeProfit, strings.Join(c.Reasons, "; "),
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("snapshot id: %w", err)
	}

	for _, a := range snap.Timeframes {
		if _, err := tx.Exec(`INSERT INTO timeframe_signals
			(snapshot_id, timeframe, signal, confidence, score, trend, rsi, atr, volatility, data_quality)
			VALUES (?,?,?,?,?,?,?,?,?,?)`,
			id, a.Timeframe, a.Signal, a.Confidence, a.Score, a.Trend,
			a.RSI, a.ATR.Value, a.ATR.Volatility, a.DataQuality,
		); err != nil {
			return fmt.Errorf("insert %s signal: %w", a.Timeframe, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) RecordPositionEvent(evt *PositionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := evt.Position
	_, err := r.db.Exec(`INSERT INTO position_events
		(timestamp, symbol, action, direction, entry, stop_loss, take_profit, risk_pct)
		VALUES (?,?,?,?,?,?,?,?)`,
		evt.At.Unix(), p.Symbol, evt.Action, p.Direction,
		p.Entry, p.StopLoss, p.TakeProfit, p.RiskPct,
	)
	return err
}

func (r *SQLiteRecorder) LastSignal(symbol string) (model.Signal, bool, error) {
	var s string
	err := r.db.QueryRow(`SELECT overall_signal FROM mtf_snapshots
		WHERE symbol = ? ORDER BY timestamp DESC, id DESC LIMIT 1`, symbol).Scan(&s)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("last signal %s: %w", symbol, err)
	}
	return model.Signal(s), true, nil
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
