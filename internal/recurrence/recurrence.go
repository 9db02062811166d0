// Package recurrence answers whether a reminder has an occurrence on a given
// calendar date. It is a pure predicate over the reminder's frequency and
// date range: no state, no clock, no side effects. Callers supply every date
// explicitly, so results are fully deterministic.
package recurrence

import (
	"time"

	"github.com/pawhaven/pawhaven/internal/model"
)

// DateOnly strips the time-of-day and location from t, returning midnight UTC
// of the same calendar date. All recurrence math runs on normalized dates so
// that two "2024-01-05"s compare equal regardless of how they were built.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole-day difference b - a. Both inputs are
// normalized first, so the result is exact (no DST drift).
func DaysBetween(a, b time.Time) int {
	return int(DateOnly(b).Sub(DateOnly(a)) / (24 * time.Hour))
}

// IsDue reports whether the reminder has an occurrence on the given calendar
// date. The reminder's time-of-day plays no part here; it only orders
// reminders within a day.
//
// Monthly reminders anchored on a day of month that the candidate month does
// not have (start on the 31st, checking February) have no occurrence that
// month. The date is never clamped to the end of the month.
func IsDue(r model.Reminder, date time.Time) bool {
	d := DateOnly(date)
	start := DateOnly(r.StartDate)

	if d.Before(start) {
		return false
	}
	if r.EndDate != nil && d.After(DateOnly(*r.EndDate)) {
		return false
	}

	switch r.Frequency {
	case model.FreqDaily:
		return true
	case model.FreqWeekly:
		return DaysBetween(start, d)%7 == 0
	case model.FreqMonthly:
		return d.Day() == start.Day()
	case model.FreqYearly:
		return d.Month() == start.Month() && d.Day() == start.Day()
	}
	return false
}
