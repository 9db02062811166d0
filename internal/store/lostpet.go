package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/pawhaven/pawhaven/internal/model"
)

type LostPetStore struct {
	db *sql.DB
}

func NewLostPetStore(db *sql.DB) *LostPetStore {
	return &LostPetStore{db: db}
}

func scanLostPet(scanner interface{ Scan(...any) error }) (*model.LostPetReport, error) {
	var r model.LostPetReport
	var resolved sql.NullTime
	err := scanner.Scan(
		&r.ID, &r.UserID, &r.PetName, &r.Species, &r.Description,
		&r.LastSeenLocation, &r.LastSeenAt, &r.PhotoURL, &resolved,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if resolved.Valid {
		r.ResolvedAt = &resolved.Time
	}
	return &r, nil
}

const lostPetCols = `id, user_id, pet_name, species, description, last_seen_location, last_seen_at, photo_url, resolved_at, created_at, updated_at`

func (s *LostPetStore) Create(r model.LostPetReport) (*model.LostPetReport, error) {
	result, err := s.db.Exec(
		`INSERT INTO lost_pet_reports (user_id, pet_name, species, description, last_seen_location, last_seen_at, photo_url) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.UserID, r.PetName, r.Species, r.Description, r.LastSeenLocation, r.LastSeenAt.UTC(), r.PhotoURL,
	)
	if err != nil {
		return nil, fmt.Errorf("insert lost pet report: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *LostPetStore) GetByID(id int64) (*model.LostPetReport, error) {
	row := s.db.QueryRow(`SELECT `+lostPetCols+` FROM lost_pet_reports WHERE id = ?`, id)
	r, err := scanLostPet(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get lost pet report: %w", err)
	}
	return r, nil
}

// List returns reports, open ones first, newest sighting first within each
// group. Resolved reports stay listed so reunions remain visible.
func (s *LostPetStore) List() ([]model.LostPetReport, error) {
	rows, err := s.db.Query(
		`SELECT ` + lostPetCols + ` FROM lost_pet_reports ORDER BY resolved_at IS NOT NULL ASC, last_seen_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list lost pet reports: %w", err)
	}
	defer rows.Close()

	var reports []model.LostPetReport
	for rows.Next() {
		r, err := scanLostPet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lost pet report: %w", err)
		}
		reports = append(reports, *r)
	}
	return reports, rows.Err()
}

func (s *LostPetStore) Update(r model.LostPetReport) (*model.LostPetReport, error) {
	_, err := s.db.Exec(
		`UPDATE lost_pet_reports SET pet_name = ?, species = ?, description = ?, last_seen_location = ?, last_seen_at = ?, photo_url = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		r.PetName, r.Species, r.Description, r.LastSeenLocation, r.LastSeenAt.UTC(), r.PhotoURL, r.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update lost pet report: %w", err)
	}
	return s.GetByID(r.ID)
}

func (s *LostPetStore) Resolve(id int64, at time.Time) (*model.LostPetReport, error) {
	_, err := s.db.Exec(
		`UPDATE lost_pet_reports SET resolved_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		at.UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("resolve lost pet report: %w", err)
	}
	return s.GetByID(id)
}

func (s *LostPetStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM lost_pet_reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete lost pet report: %w", err)
	}
	return nil
}
