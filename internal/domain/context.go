package domain

import "github.com/shopspring/decimal"

// Bias is the weekly directional classification derived from the previous
// week's close proximity to the 4-hour body extremes.
type Bias int

const (
	BiasNeutral Bias = iota
	BiasBullish
	BiasBearish
)

// String returns a human-readable representation.
func (b Bias) String() string {
	switch b {
	case BiasBullish:
		return "bullish"
	case BiasBearish:
		return "bearish"
	default:
		return "neutral"
	}
}

// WeeklyContext carries the prior-week aggregates a week is evaluated against.
// It is computed once per week from the immediately preceding week's bars.
type WeeklyContext struct {
	PrevWeekHigh      decimal.Decimal
	PrevWeekLow       decimal.Decimal
	PrevWeekClose     decimal.Decimal
	PrevWeek4hMaxBody decimal.Decimal
	PrevWeek4hMinBody decimal.Decimal

	ResistanceZoneTop    decimal.Decimal
	ResistanceZoneBottom decimal.Decimal
	SupportZoneTop       decimal.Decimal
	SupportZoneBottom    decimal.Decimal

	MarginHigh decimal.Decimal
	MarginLow  decimal.Decimal

	Bias Bias
}
