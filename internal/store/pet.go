package store

import (
	"database/sql"
	"fmt"

	"github.com/pawhaven/pawhaven/internal/model"
)

type PetStore struct {
	db *sql.DB
}

func NewPetStore(db *sql.DB) *PetStore {
	return &PetStore{db: db}
}

func scanPet(scanner interface{ Scan(...any) error }) (*model.Pet, error) {
	var p model.Pet
	err := scanner.Scan(
		&p.ID, &p.Name, &p.Species, &p.Breed, &p.Sex, &p.AgeMonths,
		&p.Description, &p.PhotoURL, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

const petCols = `id, name, species, breed, sex, age_months, description, photo_url, status, created_at, updated_at`

func (s *PetStore) Create(p model.Pet) (*model.Pet, error) {
	result, err := s.db.Exec(
		`INSERT INTO pets (name, species, breed, sex, age_months, description, photo_url, status) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Species, p.Breed, p.Sex, p.AgeMonths, p.Description, p.PhotoURL, p.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("insert pet: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *PetStore) GetByID(id int64) (*model.Pet, error) {
	row := s.db.QueryRow(`SELECT `+petCols+` FROM pets WHERE id = ?`, id)
	p, err := scanPet(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pet: %w", err)
	}
	return p, nil
}

// List returns pets, optionally restricted to one status ("" = all).
func (s *PetStore) List(status model.PetStatus) ([]model.Pet, error) {
	query := `SELECT ` + petCols + ` FROM pets ORDER BY created_at DESC, name ASC`
	args := []any{}
	if status != "" {
		query = `SELECT ` + petCols + ` FROM pets WHERE status = ? ORDER BY created_at DESC, name ASC`
		args = append(args, status)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pets: %w", err)
	}
	defer rows.Close()

	var pets []model.Pet
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pet: %w", err)
		}
		pets = append(pets, *p)
	}
	return pets, rows.Err()
}

func (s *PetStore) Update(p model.Pet) (*model.Pet, error) {
	_, err := s.db.Exec(
		`UPDATE pets SET name = ?, species = ?, breed = ?, sex = ?, age_months = ?, description = ?, photo_url = ?, status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		p.Name, p.Species, p.Breed, p.Sex, p.AgeMonths, p.Description, p.PhotoURL, p.Status, p.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update pet: %w", err)
	}
	return s.GetByID(p.ID)
}

func (s *PetStore) SetStatus(id int64, status model.PetStatus) error {
	_, err := s.db.Exec(
		`UPDATE pets SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("set pet status: %w", err)
	}
	return nil
}

func (s *PetStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM pets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete pet: %w", err)
	}
	return nil
}
