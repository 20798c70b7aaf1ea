// Package weekly groups hourly bars into trading weeks and derives the
// prior-week context each week is evaluated against.
package weekly

import (
	"time"

	"github.com/indexalgo/weeklyshort/internal/calendar"
	"github.com/indexalgo/weeklyshort/internal/domain"
)

// BuildWeeks groups an ordered bar sequence into Monday-aligned weeks.
// Weekend bars and bars falling on trading holidays are excluded before
// indexing, so holiday bars are invisible to all downstream logic.
func BuildWeeks(bars []domain.Bar, cal calendar.Calendar) []domain.Week {
	var weeks []domain.Week

	for _, bar := range bars {
		day := bar.Timestamp.Weekday()
		if day == time.Saturday || day == time.Sunday {
			continue
		}
		if cal != nil && cal.IsTradingHoliday(bar.Timestamp) {
			continue
		}

		ws := domain.WeekStart(bar.Timestamp)
		if len(weeks) == 0 || !weeks[len(weeks)-1].Start.Equal(ws) {
			weeks = append(weeks, domain.Week{Start: ws})
		}

		w := &weeks[len(weeks)-1]
		w.Bars = append(w.Bars, domain.WeekBar{
			Bar:   bar,
			Index: len(w.Bars) + 1,
			Day:   day,
		})
	}

	return weeks
}
