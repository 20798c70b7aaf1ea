package domain

import "time"

// ExpiryInfo is the holiday-adjusted contract expiry for a week.
// Computed independently of signals, once per week.
type ExpiryInfo struct {
	WeekStart time.Time
	// NominalExpiry is the structural Thursday of the week.
	NominalExpiry time.Time
	// ActualExpiry is the nominal expiry walked back over holidays
	// (Thursday, then Wednesday, then Tuesday).
	ActualExpiry    time.Time
	ExpiryDayOfWeek time.Weekday
}
