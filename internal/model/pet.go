package model

import (
	"fmt"
	"time"
)

// PetStatus tracks a pet through the adoption pipeline.
type PetStatus string

const (
	PetAvailable PetStatus = "available"
	PetPending   PetStatus = "pending"
	PetAdopted   PetStatus = "adopted"
)

// ParsePetStatus validates a caller-supplied status string.
func ParsePetStatus(s string) (PetStatus, error) {
	switch st := PetStatus(s); st {
	case PetAvailable, PetPending, PetAdopted:
		return st, nil
	}
	return "", fmt.Errorf("unknown pet status: %q", s)
}

type Pet struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Species     string    `json:"species"`
	Breed       string    `json:"breed"`
	Sex         string    `json:"sex"`
	AgeMonths   int       `json:"age_months"`
	Description string    `json:"description"`
	PhotoURL    string    `json:"photo_url"`
	Status      PetStatus `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
