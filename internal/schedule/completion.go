package schedule

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/pawhaven/pawhaven/internal/model"
	"github.com/pawhaven/pawhaven/internal/recurrence"
)

// ErrNotDue is returned when a completion is toggled for a date that is not
// an occurrence of the reminder. Recording it anyway would corrupt the day's
// stats, so the call fails instead.
var ErrNotDue = errors.New("reminder has no occurrence on that date")

var timeOfDayRegexp = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ToggleCompletion flips the completion state of the reminder's occurrence
// on the given date and returns the updated reminder. The second return is
// true when the occurrence is now complete. The input reminder is left
// untouched; callers persist the returned value.
func ToggleCompletion(r model.Reminder, date time.Time) (model.Reminder, bool, error) {
	if !recurrence.IsDue(r, date) {
		return r, false, ErrNotDue
	}

	key := recurrence.DateOnly(date).Format(model.DateFormat)

	updated := r
	updated.CompletedDates = make([]string, 0, len(r.CompletedDates)+1)
	removed := false
	for _, d := range r.CompletedDates {
		if d == key {
			removed = true
			continue
		}
		updated.CompletedDates = append(updated.CompletedDates, d)
	}
	if removed {
		return updated, false, nil
	}
	updated.CompletedDates = append(updated.CompletedDates, key)
	return updated, true, nil
}

// SetEnabled returns a copy of the reminder with the enabled flag set.
// Completion history is preserved either way.
func SetEnabled(r model.Reminder, enabled bool) model.Reminder {
	r.Enabled = enabled
	return r
}

// Validate rejects malformed reminders at the boundary rather than repairing
// them: a silently "fixed" reminder would hide a caller bug.
func Validate(r model.Reminder) error {
	if strings.TrimSpace(r.Title) == "" {
		return errors.New("title is required")
	}
	if r.StartDate.IsZero() {
		return errors.New("start date is required")
	}
	if !timeOfDayRegexp.MatchString(r.TimeOfDay) {
		return fmt.Errorf("time of day must be HH:MM, got %q", r.TimeOfDay)
	}
	start := recurrence.DateOnly(r.StartDate)
	if r.EndDate != nil && recurrence.DateOnly(*r.EndDate).Before(start) {
		return fmt.Errorf("end date %s is before start date %s",
			r.EndDate.Format(model.DateFormat), start.Format(model.DateFormat))
	}
	seen := make(map[string]struct{}, len(r.CompletedDates))
	for _, s := range r.CompletedDates {
		d, err := model.ParseDate(s)
		if err != nil {
			return fmt.Errorf("completed dates: %w", err)
		}
		if _, dup := seen[s]; dup {
			return fmt.Errorf("completed date %s appears more than once", s)
		}
		seen[s] = struct{}{}
		if !recurrence.IsDue(r, d) {
			return fmt.Errorf("completed date %s is not an occurrence of this reminder", s)
		}
	}
	return nil
}
