// Package results persists completed backtest runs to SQLite.
package results

import (
	"database/sql"
	"sync"

	"github.com/indexalgo/weeklyshort/internal/domain"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// Recorder writes runs, trades and missing-strike rows.
type Recorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewRecorder opens (or creates) the results database and runs migrations.
func NewRecorder(dbPath string) (*Recorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "set WAL mode")
	}

	r := &Recorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "migrate")
	}
	return r, nil
}

func (r *Recorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id      TEXT PRIMARY KEY,
			from_date   TEXT NOT NULL,
			to_date     TEXT NOT NULL,
			trades      INTEGER,
			profits     INTEGER,
			losses      INTEGER,
			breakevens  INTEGER,
			data_missing INTEGER,
			total_pnl   REAL
		)`,
		`CREATE TABLE IF NOT EXISTS trades (
			trade_id    TEXT PRIMARY KEY,
			run_id      TEXT NOT NULL,
			week_start  TEXT NOT NULL,
			signal_type TEXT NOT NULL,
			option_type TEXT NOT NULL,
			main_strike REAL,
			entry_time  INTEGER,
			exit_time   INTEGER,
			exit_reason TEXT,
			outcome     TEXT,
			net_pnl     REAL,
			hedge_pnl   REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_run ON trades(run_id)`,
		`CREATE TABLE IF NOT EXISTS missing_strikes (
			run_id      TEXT NOT NULL,
			strike      REAL NOT NULL,
			option_type TEXT NOT NULL,
			expiry      TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_missing_run ON missing_strikes(run_id)`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveRun persists a finished backtest result.
func (r *Recorder) SaveRun(res domain.BacktestResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	totalPnL, _ := res.Overall.TotalPnL.Float64()
	if _, err := tx.Exec(
		`INSERT INTO runs (run_id, from_date, to_date, trades, profits, losses, breakevens, data_missing, total_pnl)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.RunID, res.From.Format("2006-01-02"), res.To.Format("2006-01-02"),
		res.Overall.Trades, res.Overall.Profits, res.Overall.Losses,
		res.Overall.Breakevens, res.Overall.DataMissing, totalPnL); err != nil {
		return errors.Wrap(err, "insert run")
	}

	for _, t := range res.Trades {
		strike, _ := t.MainStrike.Float64()
		netPnL, _ := t.NetPnL.Float64()
		hedgePnL, _ := t.HedgePnL.Float64()
		if _, err := tx.Exec(
			`INSERT INTO trades (trade_id, run_id, week_start, signal_type, option_type, main_strike,
			 entry_time, exit_time, exit_reason, outcome, net_pnl, hedge_pnl)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, res.RunID, t.Signal.WeekStart.Format("2006-01-02"),
			t.Signal.Type.String(), string(t.MainOptionType), strike,
			t.EntryTime.Unix(), t.ExitTime.Unix(),
			string(t.ExitReason), string(t.Outcome), netPnL, hedgePnL); err != nil {
			return errors.Wrap(err, "insert trade")
		}
	}

	for _, m := range res.MissingStrikes {
		strike, _ := m.Strike.Float64()
		if _, err := tx.Exec(
			`INSERT INTO missing_strikes (run_id, strike, option_type, expiry) VALUES (?, ?, ?, ?)`,
			res.RunID, strike, string(m.OptionType), m.Expiry.Format("2006-01-02")); err != nil {
			return errors.Wrap(err, "insert missing strike")
		}
	}

	return errors.Wrap(tx.Commit(), "commit")
}

// Close closes the database.
func (r *Recorder) Close() error {
	return r.db.Close()
}
