// Package strikes maps a signal's stop-loss price to the tradable main strike.
package strikes

import (
	"github.com/indexalgo/weeklyshort/internal/domain"
	"github.com/shopspring/decimal"
)

// MainStrike rounds the stop-loss price to the nearest multiple of the
// exchange strike step.
func MainStrike(stopLoss decimal.Decimal, strikeStep decimal.Decimal) decimal.Decimal {
	return stopLoss.Div(strikeStep).Round(0).Mul(strikeStep)
}

// HedgeStrike offsets the main strike away from the money: below for sold
// puts, above for sold calls.
func HedgeStrike(mainStrike decimal.Decimal, optionType domain.OptionType, offset int64) decimal.Decimal {
	o := decimal.NewFromInt(offset)
	if optionType == domain.OptionPE {
		return mainStrike.Sub(o)
	}
	return mainStrike.Add(o)
}
