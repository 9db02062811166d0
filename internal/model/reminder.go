package model

import (
	"fmt"
	"time"
)

// DateFormat is the calendar-date form used for start/end dates and
// completion entries. Reminders never carry a timezone; a date is a date.
const DateFormat = "2006-01-02"

// ParseDate parses an ISO calendar date (YYYY-MM-DD) in UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// ReminderType categorizes a care task.
type ReminderType string

const (
	TypeMedication  ReminderType = "medication"
	TypeFeeding     ReminderType = "feeding"
	TypeGrooming    ReminderType = "grooming"
	TypeVet         ReminderType = "vet"
	TypeExercise    ReminderType = "exercise"
	TypeVaccination ReminderType = "vaccination"
	TypeOther       ReminderType = "other"
)

// ParseReminderType validates a caller-supplied type string.
func ParseReminderType(s string) (ReminderType, error) {
	switch t := ReminderType(s); t {
	case TypeMedication, TypeFeeding, TypeGrooming, TypeVet, TypeExercise, TypeVaccination, TypeOther:
		return t, nil
	}
	return "", fmt.Errorf("unknown reminder type: %q", s)
}

// Frequency is the recurrence rule of a reminder.
type Frequency string

const (
	FreqDaily   Frequency = "daily"
	FreqWeekly  Frequency = "weekly"
	FreqMonthly Frequency = "monthly"
	FreqYearly  Frequency = "yearly"
)

// ParseFrequency validates a caller-supplied frequency string.
func ParseFrequency(s string) (Frequency, error) {
	switch f := Frequency(s); f {
	case FreqDaily, FreqWeekly, FreqMonthly, FreqYearly:
		return f, nil
	}
	return "", fmt.Errorf("unknown frequency: %q", s)
}

// Priority controls display emphasis only, never recurrence.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority validates a caller-supplied priority string.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(s); p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	}
	return "", fmt.Errorf("unknown priority: %q", s)
}

// Reminder is a recurring care task for a pet. StartDate and EndDate are
// calendar dates (midnight UTC); TimeOfDay ("HH:MM") orders reminders within
// a day and is ignored by the recurrence rule. CompletedDates holds the ISO
// dates of occurrences the owner marked done, one entry per occurrence.
type Reminder struct {
	ID             int64        `json:"id"`
	UserID         int64        `json:"user_id"`
	PetID          int64        `json:"pet_id"`
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	Type           ReminderType `json:"type"`
	Frequency      Frequency    `json:"frequency"`
	StartDate      time.Time    `json:"start_date"`
	EndDate        *time.Time   `json:"end_date,omitempty"`
	TimeOfDay      string       `json:"time_of_day"`
	Enabled        bool         `json:"is_enabled"`
	Priority       Priority     `json:"priority"`
	CompletedDates []string     `json:"completed_dates"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// IsCompletedOn reports whether the occurrence on the given date was marked
// complete. Membership lookup only; whether the date is an occurrence at all
// is the recurrence engine's question.
func (r Reminder) IsCompletedOn(date time.Time) bool {
	key := date.Format(DateFormat)
	for _, d := range r.CompletedDates {
		if d == key {
			return true
		}
	}
	return false
}
