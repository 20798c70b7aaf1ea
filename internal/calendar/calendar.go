// Package calendar provides the exchange trading-holiday calendar.
package calendar

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

// Calendar answers whether a date is a trading holiday. Implementations must
// be safe for concurrent reads.
type Calendar interface {
	IsTradingHoliday(date time.Time) bool
}

// HolidayCalendar is an immutable date-set calendar. The zero value treats
// every day as a trading day.
type HolidayCalendar struct {
	holidays map[string]struct{}
}

// New builds a calendar from a list of holiday dates.
func New(dates []time.Time) *HolidayCalendar {
	m := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		m[d.Format(dateLayout)] = struct{}{}
	}
	return &HolidayCalendar{holidays: m}
}

type holidayFile struct {
	Exchange string   `yaml:"exchange"`
	Holidays []string `yaml:"holidays"`
}

// Load reads a YAML holiday file of the form:
//
//	exchange: NSE
//	holidays:
//	  - 2024-01-26
//	  - 2024-03-25
func Load(path string) (*HolidayCalendar, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read holiday file %s", path)
	}

	var f holidayFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, errors.Wrap(err, "parse holiday file")
	}

	m := make(map[string]struct{}, len(f.Holidays))
	for _, s := range f.Holidays {
		if _, err := time.Parse(dateLayout, s); err != nil {
			return nil, errors.Wrapf(err, "invalid holiday date %q", s)
		}
		m[s] = struct{}{}
	}

	return &HolidayCalendar{holidays: m}, nil
}

// IsTradingHoliday reports whether the date is a listed exchange holiday.
// Weekends are not holidays; the week aggregator excludes them separately.
func (c *HolidayCalendar) IsTradingHoliday(date time.Time) bool {
	if c == nil || c.holidays == nil {
		return false
	}
	_, ok := c.holidays[date.Format(dateLayout)]
	return ok
}
