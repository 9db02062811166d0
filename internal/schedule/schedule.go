// Package schedule builds day-grouped views of due reminders and tracks
// per-occurrence completion. Like the recurrence engine it never reads the
// clock: the anchor date always comes from the caller.
package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/pawhaven/pawhaven/internal/model"
	"github.com/pawhaven/pawhaven/internal/recurrence"
)

// Window is the number of days a schedule view covers, starting at the
// anchor date and looking forward only.
type Window int

const (
	WindowDay   Window = 1
	WindowWeek  Window = 7
	WindowMonth Window = 30
)

// ParseWindow maps a view name from the API to a window size.
func ParseWindow(s string) (Window, error) {
	switch s {
	case "", "day":
		return WindowDay, nil
	case "week":
		return WindowWeek, nil
	case "month":
		return WindowMonth, nil
	}
	return 0, fmt.Errorf("unknown schedule view: %q", s)
}

// Day is one bucket of a generated schedule: a calendar date and the
// reminders due that date, ordered by time of day.
type Day struct {
	Date      time.Time        `json:"date"`
	Reminders []model.Reminder `json:"reminders"`
}

// Generate builds the schedule for the window anchored at anchor. Disabled
// reminders and reminders failing the type filter (empty = all) never
// appear. Days with nothing due are omitted, so the result is sparse. The
// input collection is not mutated.
func Generate(reminders []model.Reminder, anchor time.Time, window Window, typeFilter model.ReminderType) []Day {
	var days []Day

	start := recurrence.DateOnly(anchor)
	for i := 0; i < int(window); i++ {
		d := start.AddDate(0, 0, i)

		var due []model.Reminder
		for _, r := range reminders {
			if !r.Enabled {
				continue
			}
			if typeFilter != "" && r.Type != typeFilter {
				continue
			}
			if recurrence.IsDue(r, d) {
				due = append(due, r)
			}
		}
		if len(due) == 0 {
			continue
		}

		// Zero-padded HH:MM compares correctly as a string; ties keep
		// input order.
		sort.SliceStable(due, func(i, j int) bool {
			return due[i].TimeOfDay < due[j].TimeOfDay
		})

		days = append(days, Day{Date: d, Reminders: due})
	}

	return days
}

// Stats summarizes completion progress for one day of a schedule. A day
// with Total == 0 means nothing was due; callers render that as "no
// progress", not as an error.
type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
}

// StatsForDate counts due and completed reminders for the given date within
// a generated schedule.
func StatsForDate(days []Day, date time.Time) Stats {
	d := recurrence.DateOnly(date)

	var s Stats
	for _, day := range days {
		if !day.Date.Equal(d) {
			continue
		}
		s.Total = len(day.Reminders)
		for _, r := range day.Reminders {
			if r.IsCompletedOn(d) {
				s.Completed++
			}
		}
		break
	}
	return s
}
