package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/pawhaven/pawhaven/internal/model"
)

type ApplicationStore struct {
	db *sql.DB
}

func NewApplicationStore(db *sql.DB) *ApplicationStore {
	return &ApplicationStore{db: db}
}

func scanApplication(scanner interface{ Scan(...any) error }) (*model.AdoptionApplication, error) {
	var a model.AdoptionApplication
	err := scanner.Scan(
		&a.ID, &a.Reference, &a.PetID, &a.UserID, &a.Message, &a.Status,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

const applicationCols = `id, reference, pet_id, user_id, message, status, created_at, updated_at`

func (s *ApplicationStore) Create(petID, userID int64, message string) (*model.AdoptionApplication, error) {
	result, err := s.db.Exec(
		`INSERT INTO adoption_applications (reference, pet_id, user_id, message) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), petID, userID, message,
	)
	if err != nil {
		return nil, fmt.Errorf("insert application: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ApplicationStore) GetByID(id int64) (*model.AdoptionApplication, error) {
	row := s.db.QueryRow(`SELECT `+applicationCols+` FROM adoption_applications WHERE id = ?`, id)
	a, err := scanApplication(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	return a, nil
}

func (s *ApplicationStore) ListByUser(userID int64) ([]model.AdoptionApplication, error) {
	return s.list(`SELECT `+applicationCols+` FROM adoption_applications WHERE user_id = ? ORDER BY created_at DESC`, userID)
}

func (s *ApplicationStore) ListByPet(petID int64) ([]model.AdoptionApplication, error) {
	return s.list(`SELECT `+applicationCols+` FROM adoption_applications WHERE pet_id = ? ORDER BY created_at DESC`, petID)
}

func (s *ApplicationStore) ListPending() ([]model.AdoptionApplication, error) {
	return s.list(`SELECT ` + applicationCols + ` FROM adoption_applications WHERE status = 'pending' ORDER BY created_at ASC`)
}

func (s *ApplicationStore) list(query string, args ...any) ([]model.AdoptionApplication, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var apps []model.AdoptionApplication
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		apps = append(apps, *a)
	}
	return apps, rows.Err()
}

// HasPendingForPet reports whether the user already has an open application
// for the pet.
func (s *ApplicationStore) HasPendingForPet(petID, userID int64) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM adoption_applications WHERE pet_id = ? AND user_id = ? AND status = 'pending'`,
		petID, userID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count pending applications: %w", err)
	}
	return count > 0, nil
}

func (s *ApplicationStore) SetStatus(id int64, status model.ApplicationStatus) (*model.AdoptionApplication, error) {
	_, err := s.db.Exec(
		`UPDATE adoption_applications SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return nil, fmt.Errorf("set application status: %w", err)
	}
	return s.GetByID(id)
}
