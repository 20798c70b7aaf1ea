package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ExitReason classifies how a trade was closed.
type ExitReason string

const (
	ExitStopLoss     ExitReason = "stop_loss"
	ExitHeldToExpiry ExitReason = "held_to_expiry"
)

// Outcome classifies a closed trade.
type Outcome string

const (
	OutcomeProfit      Outcome = "profit"
	OutcomeLoss        Outcome = "loss"
	OutcomeBreakeven   Outcome = "breakeven"
	OutcomeDataMissing Outcome = "data_missing"
)

// HedgeLeg is an optional bought option at a fixed offset from the main
// strike. Availability is a fact about the price store, never an error.
type HedgeLeg struct {
	Offset     int64
	Strike     decimal.Decimal
	EntryPrice decimal.Decimal
	ExitPrice  decimal.Decimal
	Available  bool
}

// PnL returns the hedge leg profit for the given lot parameters, or zero
// when the leg prices are unavailable. Hedges are bought, so profit is
// exit minus entry.
func (h HedgeLeg) PnL(lotSize, lots int64) decimal.Decimal {
	if !h.Available {
		return decimal.Zero
	}
	qty := decimal.NewFromInt(lotSize * lots)
	return h.ExitPrice.Sub(h.EntryPrice).Mul(qty)
}

// MissingStrike identifies an option contract the price store had no data for.
type MissingStrike struct {
	Strike     decimal.Decimal
	OptionType OptionType
	Expiry     time.Time
}

// Key returns a stable deduplication key.
func (m MissingStrike) Key() string {
	return fmt.Sprintf("%s|%s|%s", m.Strike.String(), m.OptionType, m.Expiry.Format("2006-01-02"))
}

// Trade is the simulated lifecycle of a short-options position opened on a
// signal. Terminal once ExitTime and Outcome are set.
type Trade struct {
	ID             string
	Signal         Signal
	MainStrike     decimal.Decimal
	MainOptionType OptionType
	Expiry         ExpiryInfo

	EntryTime time.Time
	ExitTime  time.Time

	MainEntryPrice decimal.Decimal
	MainExitPrice  decimal.Decimal
	PricesPresent  bool

	ExitReason ExitReason
	Outcome    Outcome

	HedgeLegs []HedgeLeg
	// HedgePnL is the summed hedge-leg result of available legs; reported
	// alongside the main leg, folded into NetPnL only when configured.
	HedgePnL decimal.Decimal

	// NetPnL is the classified result. The outcome is derived from the main
	// leg alone: (entry - exit) * lotSize * lots - commission * lots.
	NetPnL decimal.Decimal
}

// IsWin reports whether the trade closed in profit.
func (t *Trade) IsWin() bool {
	return t.Outcome == OutcomeProfit
}
