package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OptionType distinguishes calls from puts.
type OptionType string

const (
	OptionCE OptionType = "CE"
	OptionPE OptionType = "PE"
)

// SignalType enumerates the eight mutually exclusive weekly signals.
// Numeric order is priority order: lower wins when two predicates match
// at the same bar.
type SignalType int

const (
	SignalBearTrap SignalType = iota + 1
	SignalSupportHold
	SignalResistanceHold
	SignalBiasFailureBull
	SignalBiasFailureBear
	SignalWeaknessConfirmed
	SignalBreakoutConfirmed
	SignalBreakdownConfirmed
)

var signalNames = map[SignalType]string{
	SignalBearTrap:           "S1_BEAR_TRAP",
	SignalSupportHold:        "S2_SUPPORT_HOLD",
	SignalResistanceHold:     "S3_RESISTANCE_HOLD",
	SignalBiasFailureBull:    "S4_BIAS_FAILURE_BULL",
	SignalBiasFailureBear:    "S5_BIAS_FAILURE_BEAR",
	SignalWeaknessConfirmed:  "S6_WEAKNESS_CONFIRMED",
	SignalBreakoutConfirmed:  "S7_BREAKOUT_CONFIRMED",
	SignalBreakdownConfirmed: "S8_BREAKDOWN_CONFIRMED",
}

// String returns the stable wire name of the signal type.
func (s SignalType) String() string {
	if name, ok := signalNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// OptionType returns the option side sold for this signal type.
func (s SignalType) OptionType() OptionType {
	switch s {
	case SignalBearTrap, SignalSupportHold, SignalBiasFailureBull, SignalBreakoutConfirmed:
		return OptionPE
	default:
		return OptionCE
	}
}

// Signal is the single trading signal detected for a week.
// Immutable once created.
type Signal struct {
	WeekStart     time.Time
	Type          SignalType
	EntryTime     time.Time
	EntryPrice    decimal.Decimal
	OptionType    OptionType
	StopLossPrice decimal.Decimal
	// FirstBar is a snapshot of the week's first bar at detection time.
	FirstBar WeekBar
}
