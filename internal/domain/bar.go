// Package domain defines the core data structures of the weekly options engine.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bar is a single hourly OHLC bar of the underlying index.
type Bar struct {
	Timestamp time.Time
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
}

// Body returns the higher of open and close.
func (b Bar) Body() decimal.Decimal {
	if b.Open.GreaterThan(b.Close) {
		return b.Open
	}
	return b.Close
}

// BodyMin returns the lower of open and close.
func (b Bar) BodyMin() decimal.Decimal {
	if b.Open.LessThan(b.Close) {
		return b.Open
	}
	return b.Close
}

// IsGreen reports whether the bar closed above its open.
func (b Bar) IsGreen() bool {
	return b.Close.GreaterThan(b.Open)
}

// IsRed reports whether the bar closed below its open.
func (b Bar) IsRed() bool {
	return b.Close.LessThan(b.Open)
}
