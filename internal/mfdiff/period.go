package mfdiff

import (
	"fmt"
	"strings"
	"time"
)

// Period is a calendar date identifying one dated snapshot.
// Monthly workflows always use Day = 1.
type Period struct {
	Year  int
	Month int
	Day   int
}

// NewPeriod returns the period for the given date and reports whether the
// triple forms a valid calendar date (month 13 or Feb 30 are rejected).
func NewPeriod(year, month, day int) (Period, bool) {
	if month < 1 || month > 12 || day < 1 {
		return Period{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return Period{}, false
	}
	return Period{Year: year, Month: month, Day: day}, true
}

// Label returns the period as "YYYY-MM".
func (p Period) Label() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// String returns the period as "YYYY-MM-DD".
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", p.Year, p.Month, p.Day)
}

// Compare returns -1, 0 or +1 depending on whether p is before, equal to or
// after q.
func (p Period) Compare(q Period) int {
	switch {
	case p.Year != q.Year:
		return cmpInt(p.Year, q.Year)
	case p.Month != q.Month:
		return cmpInt(p.Month, q.Month)
	default:
		return cmpInt(p.Day, q.Day)
	}
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// ParsePeriodList parses a comma-separated list of ISO dates
// ("2024-12-01,2025-01-01"). Malformed entries are dropped silently.
// The returned periods keep the order in which they were given.
func ParsePeriodList(s string) []Period {
	var periods []Period
	for _, raw := range strings.Split(s, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			continue
		}
		periods = append(periods, Period{Year: t.Year(), Month: int(t.Month()), Day: t.Day()})
	}
	return periods
}
