// Package expiry computes holiday-adjusted weekly contract expiries.
package expiry

import (
	"time"

	"github.com/indexalgo/weeklyshort/internal/calendar"
	"github.com/indexalgo/weeklyshort/internal/domain"
	"github.com/pkg/errors"
)

// ErrNoExpiryDay is returned when Thursday, Wednesday and Tuesday of a week
// are all trading holidays. The resolver never walks back past Tuesday.
var ErrNoExpiryDay = errors.New("expiry: thursday, wednesday and tuesday are all holidays")

// Resolve computes the expiry for the week starting at weekStart (a
// Monday-aligned date). Nominal expiry is the week's Thursday; holidays fall
// back to Wednesday, then Tuesday.
func Resolve(weekStart time.Time, cal calendar.Calendar) (domain.ExpiryInfo, error) {
	nominal := weekStart.AddDate(0, 0, 3)

	actual := nominal
	for cal != nil && cal.IsTradingHoliday(actual) {
		if actual.Weekday() == time.Tuesday {
			return domain.ExpiryInfo{}, errors.Wrapf(ErrNoExpiryDay, "week of %s", weekStart.Format("2006-01-02"))
		}
		actual = actual.AddDate(0, 0, -1)
	}

	return domain.ExpiryInfo{
		WeekStart:       weekStart,
		NominalExpiry:   nominal,
		ActualExpiry:    actual,
		ExpiryDayOfWeek: actual.Weekday(),
	}, nil
}
