// Package bars implements the hourly bar feed backed by ClickHouse.
package bars

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/indexalgo/weeklyshort/config"
	"github.com/indexalgo/weeklyshort/internal/domain"
	"github.com/indexalgo/weeklyshort/pkg/retrier"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Feed reads index bars from a ClickHouse table of the shape
// (symbol String, ts DateTime, open/high/low/close Float64).
type Feed struct {
	conn  driver.Conn
	table string
	retry *retrier.Retrier
}

// NewFeed opens a ClickHouse connection for the configured bar table.
func NewFeed(cfg config.ClickHouse) (*Feed, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		DialTimeout: 10 * time.Second,
	})
	if err != nil {
		return nil, errors.Wrap(err, "open clickhouse")
	}

	table := cfg.Table
	if table == "" {
		table = "bars"
	}

	return &Feed{
		conn:  conn,
		table: table,
		retry: retrier.New(retrier.WithMaxRetries(3)),
	}, nil
}

// Bars returns ordered, deduplicated hourly bars for the symbol and range.
func (f *Feed) Bars(ctx context.Context, symbol string, from, to time.Time) ([]domain.Bar, error) {
	query := fmt.Sprintf(
		`SELECT ts, open, high, low, close FROM %s WHERE symbol = ? AND ts >= ? AND ts < ? ORDER BY ts`,
		f.table)

	return retrier.DoWithData(f.retry, ctx, func(ctx context.Context) ([]domain.Bar, error) {
		rows, err := f.conn.Query(ctx, query, symbol, from, to)
		if err != nil {
			return nil, errors.Wrap(err, "query bars")
		}
		defer rows.Close()

		var out []domain.Bar
		for rows.Next() {
			var (
				ts                     time.Time
				open, high, low, close float64
			)
			if err := rows.Scan(&ts, &open, &high, &low, &close); err != nil {
				return nil, errors.Wrap(err, "scan bar")
			}
			// duplicate timestamps collapse to the first occurrence
			if len(out) > 0 && out[len(out)-1].Timestamp.Equal(ts) {
				continue
			}
			out = append(out, domain.Bar{
				Timestamp: ts,
				Open:      decimal.NewFromFloat(open),
				High:      decimal.NewFromFloat(high),
				Low:       decimal.NewFromFloat(low),
				Close:     decimal.NewFromFloat(close),
			})
		}
		return out, rows.Err()
	})
}

// Close releases the connection.
func (f *Feed) Close() error {
	return f.conn.Close()
}
