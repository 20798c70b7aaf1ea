package signals

import (
	"github.com/indexalgo/weeklyshort/internal/domain"
	"github.com/shopspring/decimal"
)

// weekState is the explicit fold carried bar-by-bar through a week: running
// extrema over all prior bars, the first-hour snapshot, and the remembered
// breakout/breakdown candidate candles shared by S4/S7 and S5/S8.
type weekState struct {
	firstBar domain.WeekBar

	prevMaxHigh  decimal.Decimal
	prevMinLow   decimal.Decimal
	prevMaxClose decimal.Decimal
	prevMinClose decimal.Decimal

	breakoutCandidate  *domain.WeekBar
	breakdownCandidate *domain.WeekBar
	breakoutConsumed   bool
	breakdownConsumed  bool

	resistanceTouched bool
}

func newWeekState(first domain.WeekBar, c domain.WeeklyContext) *weekState {
	st := &weekState{
		firstBar:     first,
		prevMaxHigh:  first.High,
		prevMinLow:   first.Low,
		prevMaxClose: first.Close,
		prevMinClose: first.Close,
	}
	if first.High.GreaterThanOrEqual(c.ResistanceZoneBottom) {
		st.resistanceTouched = true
	}
	return st
}

// breakoutTriggered reports whether the current bar closes back above the
// remembered breakout candle's high. On the candle's own day the first-hour
// high is the reference instead. A trigger fires at most once per week.
func (s *weekState) breakoutTriggered(b domain.WeekBar) bool {
	if s.breakoutCandidate == nil || s.breakoutConsumed {
		return false
	}
	if domain.SameDate(b.Timestamp, s.breakoutCandidate.Timestamp) {
		return b.Close.GreaterThan(s.firstBar.High)
	}
	return b.Close.GreaterThan(s.breakoutCandidate.High)
}

// breakdownTriggered mirrors breakoutTriggered below the first-hour low.
func (s *weekState) breakdownTriggered(b domain.WeekBar) bool {
	if s.breakdownCandidate == nil || s.breakdownConsumed {
		return false
	}
	if domain.SameDate(b.Timestamp, s.breakdownCandidate.Timestamp) {
		return b.Close.LessThan(s.firstBar.Low)
	}
	return b.Close.LessThan(s.breakdownCandidate.Low)
}

// observe folds the current bar into the state after it has been evaluated,
// so that extrema and candidates always describe strictly prior bars.
func (s *weekState) observe(b domain.WeekBar, c domain.WeeklyContext) {
	if s.breakoutTriggered(b) {
		s.breakoutConsumed = true
	}
	if s.breakdownTriggered(b) {
		s.breakdownConsumed = true
	}

	// A green candle closing above the first-hour high while printing a new
	// weekly high becomes the breakout candidate; only the first qualifier
	// is remembered. The breakdown candidate is the red/low mirror.
	if s.breakoutCandidate == nil &&
		b.IsGreen() &&
		b.Close.GreaterThan(s.firstBar.High) &&
		b.High.GreaterThan(s.prevMaxHigh) {
		bar := b
		s.breakoutCandidate = &bar
	}
	if s.breakdownCandidate == nil &&
		b.IsRed() &&
		b.Close.LessThan(s.firstBar.Low) &&
		b.Low.LessThan(s.prevMinLow) {
		bar := b
		s.breakdownCandidate = &bar
	}

	if b.High.GreaterThanOrEqual(c.ResistanceZoneBottom) {
		s.resistanceTouched = true
	}

	if b.High.GreaterThan(s.prevMaxHigh) {
		s.prevMaxHigh = b.High
	}
	if b.Low.LessThan(s.prevMinLow) {
		s.prevMinLow = b.Low
	}
	if b.Close.GreaterThan(s.prevMaxClose) {
		s.prevMaxClose = b.Close
	}
	if b.Close.LessThan(s.prevMinClose) {
		s.prevMinClose = b.Close
	}
}
