// Package optionprices implements the option price store over SQLite.
package optionprices

import (
	"context"
	"database/sql"
	"time"

	"github.com/indexalgo/weeklyshort/internal/domain"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// Store answers point-in-time option price lookups. Absent data is not an
// error; the store returns present=false and simulation continues.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite option price database.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}

	// WAL mode: the backtest reads concurrently from multiple workers.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "set WAL mode")
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "migrate")
	}
	return s, nil
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS option_prices (
			strike      REAL    NOT NULL,
			option_type TEXT    NOT NULL,
			expiry      TEXT    NOT NULL,
			ts          INTEGER NOT NULL,
			price       REAL    NOT NULL,
			PRIMARY KEY (strike, option_type, expiry, ts)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_option_prices_ts ON option_prices(ts)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// PriceAt returns the price of the contract at the given timestamp.
func (s *Store) PriceAt(ctx context.Context, strike decimal.Decimal, optionType domain.OptionType,
	expiry time.Time, ts time.Time) (decimal.Decimal, bool, error) {

	strikeF, _ := strike.Float64()
	row := s.db.QueryRowContext(ctx,
		`SELECT price FROM option_prices WHERE strike = ? AND option_type = ? AND expiry = ? AND ts = ?`,
		strikeF, string(optionType), expiry.Format("2006-01-02"), ts.Unix())

	var price float64
	switch err := row.Scan(&price); err {
	case nil:
		return decimal.NewFromFloat(price), true, nil
	case sql.ErrNoRows:
		return decimal.Zero, false, nil
	default:
		return decimal.Zero, false, errors.Wrap(err, "query option price")
	}
}

// Insert stores one price point; used by ingestion tooling and tests.
func (s *Store) Insert(ctx context.Context, strike decimal.Decimal, optionType domain.OptionType,
	expiry time.Time, ts time.Time, price decimal.Decimal) error {

	strikeF, _ := strike.Float64()
	priceF, _ := price.Float64()
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO option_prices (strike, option_type, expiry, ts, price) VALUES (?, ?, ?, ?, ?)`,
		strikeF, string(optionType), expiry.Format("2006-01-02"), ts.Unix(), priceF)
	return errors.Wrap(err, "insert option price")
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
