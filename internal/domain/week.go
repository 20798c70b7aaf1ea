package domain

import "time"

// WeekBar is a bar tagged with its position inside a trading week.
type WeekBar struct {
	Bar
	// Index is the 1-based position of the bar within its week.
	Index int
	// Day is the weekday the bar belongs to.
	Day time.Weekday
}

// Week is an ordered sequence of bars sharing the same Monday-aligned start.
// A week exists only if it has at least one bar.
type Week struct {
	// Start is the Monday-aligned date the week begins on.
	Start time.Time
	Bars  []WeekBar
}

// FirstBar returns the bar at index 1.
func (w *Week) FirstBar() WeekBar {
	return w.Bars[0]
}

// LastBar returns the final bar of the week.
func (w *Week) LastBar() WeekBar {
	return w.Bars[len(w.Bars)-1]
}

// WeekStart returns the Monday-aligned date for ts in its location.
func WeekStart(ts time.Time) time.Time {
	day := ts.Weekday()
	offset := int(day - time.Monday)
	if day == time.Sunday {
		offset = 6
	}
	d := ts.AddDate(0, 0, -offset)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, ts.Location())
}

// SameDate reports whether a and b fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
