package signals

import (
	"github.com/indexalgo/weeklyshort/internal/domain"
	"github.com/shopspring/decimal"
)

// breakoutProximityPct is the band below the previous week's high in which a
// breakout close is considered too weak for S7 (0.40%).
var breakoutProximityPct = decimal.NewFromFloat(0.004)

// predicate is one pure signal rule. It reports a match for the current bar
// and, on match, the stop-loss price of the resulting signal.
type predicate func(b domain.WeekBar, c domain.WeeklyContext, st *weekState) (decimal.Decimal, bool)

// orderedPredicates lists all signal rules in strict priority order; at each
// bar the first matching rule wins.
var orderedPredicates = []struct {
	Type domain.SignalType
	Fn   predicate
}{
	{domain.SignalBearTrap, bearTrap},
	{domain.SignalSupportHold, supportHold},
	{domain.SignalResistanceHold, resistanceHold},
	{domain.SignalBiasFailureBull, biasFailureBull},
	{domain.SignalBiasFailureBear, biasFailureBear},
	{domain.SignalWeaknessConfirmed, weaknessConfirmed},
	{domain.SignalBreakoutConfirmed, breakoutConfirmed},
	{domain.SignalBreakdownConfirmed, breakdownConfirmed},
}

// bearTrap (S1): the first hour dips and closes below the support zone, and
// the second bar recovers above the first bar's low.
func bearTrap(b domain.WeekBar, c domain.WeeklyContext, st *weekState) (decimal.Decimal, bool) {
	f := st.firstBar
	if b.Index != 2 {
		return decimal.Zero, false
	}
	if f.Open.LessThan(c.SupportZoneBottom) {
		return decimal.Zero, false
	}
	if f.Close.GreaterThanOrEqual(c.SupportZoneBottom) {
		return decimal.Zero, false
	}
	if !b.Close.GreaterThan(f.Low) {
		return decimal.Zero, false
	}
	return f.Low.Sub(f.Open.Sub(f.Close).Abs()), true
}

// supportHold (S2): bullish bias with both the previous close and the first
// open hugging the support zone, first hour holding it, and the second bar
// confirming above close and zone.
func supportHold(b domain.WeekBar, c domain.WeeklyContext, st *weekState) (decimal.Decimal, bool) {
	f := st.firstBar
	if b.Index != 2 || c.Bias != domain.BiasBullish {
		return decimal.Zero, false
	}
	if !f.Open.GreaterThan(c.PrevWeekLow) {
		return decimal.Zero, false
	}
	if c.PrevWeekClose.Sub(c.SupportZoneBottom).Abs().GreaterThan(c.MarginLow) {
		return decimal.Zero, false
	}
	if f.Open.Sub(c.SupportZoneBottom).Abs().GreaterThan(c.MarginLow) {
		return decimal.Zero, false
	}
	if f.Close.LessThan(c.SupportZoneBottom) || f.Close.LessThan(c.PrevWeekClose) {
		return decimal.Zero, false
	}
	if b.Close.LessThan(f.Low) ||
		!b.Close.GreaterThan(c.PrevWeekClose) ||
		!b.Close.GreaterThan(c.SupportZoneBottom) {
		return decimal.Zero, false
	}
	return c.SupportZoneBottom, true
}

// resistanceHold (S3): bearish bias with price opening near the resistance
// zone and the week failing below it. Scenario A is the immediate rejection
// at bar two; scenario B a later break under the first bar and the running
// weekly lows.
func resistanceHold(b domain.WeekBar, c domain.WeeklyContext, st *weekState) (decimal.Decimal, bool) {
	f := st.firstBar
	if c.Bias != domain.BiasBearish {
		return decimal.Zero, false
	}
	nearResistance := f.Open.Sub(c.ResistanceZoneBottom).Abs().LessThanOrEqual(c.MarginHigh) ||
		c.PrevWeekClose.Sub(c.ResistanceZoneBottom).Abs().LessThanOrEqual(c.MarginHigh)
	if !nearResistance {
		return decimal.Zero, false
	}
	if f.Close.GreaterThan(c.PrevWeekHigh) {
		return decimal.Zero, false
	}

	scenarioA := b.Index == 2 && b.Close.LessThan(f.High)
	scenarioB := b.Close.LessThan(f.Low) &&
		b.Close.LessThan(st.prevMinLow) &&
		b.Close.LessThan(st.prevMinClose)
	if !scenarioA && !scenarioB {
		return decimal.Zero, false
	}
	return c.PrevWeekHigh, true
}

// biasFailureBull (S4): a bearish-bias week that opens above the resistance
// zone and confirms a remembered breakout candle.
func biasFailureBull(b domain.WeekBar, c domain.WeeklyContext, st *weekState) (decimal.Decimal, bool) {
	f := st.firstBar
	if c.Bias != domain.BiasBearish {
		return decimal.Zero, false
	}
	if !f.Open.GreaterThan(c.ResistanceZoneTop) {
		return decimal.Zero, false
	}
	if !st.breakoutTriggered(b) {
		return decimal.Zero, false
	}
	return f.Low, true
}

// biasFailureBear (S5): a bullish-bias week that opens and holds below the
// support zone and then loses the first-hour low.
func biasFailureBear(b domain.WeekBar, c domain.WeeklyContext, st *weekState) (decimal.Decimal, bool) {
	f := st.firstBar
	if c.Bias != domain.BiasBullish {
		return decimal.Zero, false
	}
	if !f.Open.LessThan(c.SupportZoneBottom) {
		return decimal.Zero, false
	}
	if !f.Close.LessThan(c.SupportZoneBottom) || !f.Close.LessThan(c.PrevWeekLow) {
		return decimal.Zero, false
	}
	if !b.Close.LessThan(f.Low) {
		return decimal.Zero, false
	}
	return f.High, true
}

// weaknessConfirmed (S6): mirrors S3 for weeks whose first hour trades into
// the resistance zone without escaping it.
func weaknessConfirmed(b domain.WeekBar, c domain.WeeklyContext, st *weekState) (decimal.Decimal, bool) {
	f := st.firstBar
	if c.Bias != domain.BiasBearish {
		return decimal.Zero, false
	}
	if f.High.LessThan(c.ResistanceZoneBottom) {
		return decimal.Zero, false
	}
	if f.Close.GreaterThan(c.ResistanceZoneTop) || f.Close.GreaterThan(c.PrevWeekHigh) {
		return decimal.Zero, false
	}

	scenarioA := b.Index == 2 && b.Close.LessThan(f.High)
	scenarioB := b.Close.LessThan(f.Low) &&
		b.Close.LessThan(st.prevMinLow) &&
		b.Close.LessThan(st.prevMinClose)
	if !scenarioA && !scenarioB {
		return decimal.Zero, false
	}
	return c.PrevWeekHigh, true
}

// breakoutConfirmed (S7): the S4 breakout trigger without the bias gate, but
// only when the close clears the running weekly extrema and is not parked
// just under the previous week's high.
func breakoutConfirmed(b domain.WeekBar, c domain.WeeklyContext, st *weekState) (decimal.Decimal, bool) {
	if !st.breakoutTriggered(b) {
		return decimal.Zero, false
	}
	if closeParkedBelowHigh(b.Close, c.PrevWeekHigh) {
		return decimal.Zero, false
	}
	if !b.Close.GreaterThan(st.prevMaxHigh) || !b.Close.GreaterThan(st.prevMaxClose) {
		return decimal.Zero, false
	}
	return st.firstBar.Low, true
}

// breakdownConfirmed (S8): the downside mirror of S7; requires that the
// resistance zone was touched during the week before the breakdown.
func breakdownConfirmed(b domain.WeekBar, c domain.WeeklyContext, st *weekState) (decimal.Decimal, bool) {
	if !st.breakdownTriggered(b) {
		return decimal.Zero, false
	}
	if !st.resistanceTouched {
		return decimal.Zero, false
	}
	if !b.Close.LessThan(c.ResistanceZoneBottom) {
		return decimal.Zero, false
	}
	if !b.Close.LessThan(st.prevMinLow) || !b.Close.LessThan(st.prevMinClose) {
		return decimal.Zero, false
	}
	return st.firstBar.High, true
}

// closeParkedBelowHigh reports whether close sits within the proximity band
// directly below the previous week's high.
func closeParkedBelowHigh(close, prevWeekHigh decimal.Decimal) bool {
	if !close.LessThan(prevWeekHigh) {
		return false
	}
	floor := prevWeekHigh.Mul(decimal.NewFromInt(1).Sub(breakoutProximityPct))
	return close.GreaterThanOrEqual(floor)
}
