package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SignalStats aggregates trade results for one signal type.
type SignalStats struct {
	Type        SignalType
	Trades      int
	Profits     int
	Losses      int
	Breakevens  int
	DataMissing int
	TotalPnL    decimal.Decimal
}

// WinRate returns profits over classified trades as a percentage.
// Trades without price data do not participate.
func (s SignalStats) WinRate() decimal.Decimal {
	classified := s.Trades - s.DataMissing
	if classified <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(s.Profits)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(classified)))
}

// BacktestResult is the batch output of a full run.
type BacktestResult struct {
	RunID string
	From  time.Time
	To    time.Time

	Trades         []Trade
	PerSignal      map[SignalType]SignalStats
	Overall        SignalStats
	MissingStrikes []MissingStrike
}
