package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/pawhaven/pawhaven/internal/model"
)

// ReminderStore owns persistence of reminders and their per-occurrence
// completions. Reads
// return reminders with CompletedDates populated from the completions table
// so the scheduler core can work on a plain value.
type ReminderStore struct {
	db *sql.DB
}

func NewReminderStore(db *sql.DB) *ReminderStore {
	return &ReminderStore{db: db}
}

func scanReminder(scanner interface{ Scan(...any) error }) (*model.Reminder, error) {
	var r model.Reminder
	var start string
	var end sql.NullString
	var enabled int

	err := scanner.Scan(
		&r.ID, &r.UserID, &r.PetID, &r.Title, &r.Description, &r.Type,
		&r.Frequency, &start, &end, &r.TimeOfDay, &enabled, &r.Priority,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.StartDate, err = model.ParseDate(start)
	if err != nil {
		return nil, fmt.Errorf("start date: %w", err)
	}
	if end.Valid {
		d, err := model.ParseDate(end.String)
		if err != nil {
			return nil, fmt.Errorf("end date: %w", err)
		}
		r.EndDate = &d
	}
	r.Enabled = enabled != 0
	return &r, nil
}

const reminderCols = `id, user_id, pet_id, title, description, type, frequency, start_date, end_date, time_of_day, is_enabled, priority, created_at, updated_at`

func (s *ReminderStore) Create(r model.Reminder) (*model.Reminder, error) {
	var end sql.NullString
	if r.EndDate != nil {
		end = sql.NullString{String: r.EndDate.Format(model.DateFormat), Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO reminders (user_id, pet_id, title, description, type, frequency, start_date, end_date, time_of_day, is_enabled, priority)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.UserID, r.PetID, r.Title, r.Description, r.Type, r.Frequency,
		r.StartDate.Format(model.DateFormat), end, r.TimeOfDay, r.Enabled, r.Priority,
	)
	if err != nil {
		return nil, fmt.Errorf("insert reminder: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ReminderStore) GetByID(id int64) (*model.Reminder, error) {
	row := s.db.QueryRow(`SELECT `+reminderCols+` FROM reminders WHERE id = ?`, id)
	r, err := scanReminder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reminder: %w", err)
	}
	if err := s.attachCompletions([]*model.Reminder{r}); err != nil {
		return nil, err
	}
	return r, nil
}

// ListByUser returns a user's reminders with completions attached, in
// time-of-day order so list views read top to bottom through the day.
func (s *ReminderStore) ListByUser(userID int64) ([]model.Reminder, error) {
	rows, err := s.db.Query(
		`SELECT `+reminderCols+` FROM reminders WHERE user_id = ? ORDER BY time_of_day ASC, title ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	defer rows.Close()

	var ptrs []*model.Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		ptrs = append(ptrs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := s.attachCompletions(ptrs); err != nil {
		return nil, err
	}

	reminders := make([]model.Reminder, len(ptrs))
	for i, r := range ptrs {
		reminders[i] = *r
	}
	return reminders, nil
}

// ListEnabledUserIDs returns the ids of users owning at least one enabled
// reminder. The push runner iterates these instead of the whole user table.
func (s *ReminderStore) ListEnabledUserIDs() ([]int64, error) {
	rows, err := s.db.Query(`SELECT DISTINCT user_id FROM reminders WHERE is_enabled = 1`)
	if err != nil {
		return nil, fmt.Errorf("list reminder users: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *ReminderStore) Update(r model.Reminder) (*model.Reminder, error) {
	var end sql.NullString
	if r.EndDate != nil {
		end = sql.NullString{String: r.EndDate.Format(model.DateFormat), Valid: true}
	}

	_, err := s.db.Exec(
		`UPDATE reminders SET pet_id = ?, title = ?, description = ?, type = ?, frequency = ?, start_date = ?, end_date = ?, time_of_day = ?, is_enabled = ?, priority = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		r.PetID, r.Title, r.Description, r.Type, r.Frequency,
		r.StartDate.Format(model.DateFormat), end, r.TimeOfDay, r.Enabled, r.Priority, r.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update reminder: %w", err)
	}
	return s.GetByID(r.ID)
}

func (s *ReminderStore) SetEnabled(id int64, enabled bool) error {
	_, err := s.db.Exec(
		`UPDATE reminders SET is_enabled = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		enabled, id,
	)
	if err != nil {
		return fmt.Errorf("set reminder enabled: %w", err)
	}
	return nil
}

func (s *ReminderStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM reminders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}
	return nil
}

// MarkCompleted records the occurrence on date as done.
func (s *ReminderStore) MarkCompleted(id int64, date time.Time) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO reminder_completions (reminder_id, completed_on) VALUES (?, ?)`,
		id, date.Format(model.DateFormat),
	)
	if err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	return nil
}

// UnmarkCompleted removes the completion record for the occurrence on date.
func (s *ReminderStore) UnmarkCompleted(id int64, date time.Time) error {
	_, err := s.db.Exec(
		`DELETE FROM reminder_completions WHERE reminder_id = ? AND completed_on = ?`,
		id, date.Format(model.DateFormat),
	)
	if err != nil {
		return fmt.Errorf("unmark completed: %w", err)
	}
	return nil
}

func (s *ReminderStore) attachCompletions(reminders []*model.Reminder) error {
	for _, r := range reminders {
		rows, err := s.db.Query(
			`SELECT completed_on FROM reminder_completions WHERE reminder_id = ? ORDER BY completed_on ASC`,
			r.ID,
		)
		if err != nil {
			return fmt.Errorf("list completions: %w", err)
		}

		r.CompletedDates = []string{}
		for rows.Next() {
			var d string
			if err := rows.Scan(&d); err != nil {
				rows.Close()
				return fmt.Errorf("scan completion: %w", err)
			}
			r.CompletedDates = append(r.CompletedDates, d)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()
	}
	return nil
}
