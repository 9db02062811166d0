package model

import "time"

// LostPetReport is a community report of a missing pet.
type LostPetReport struct {
	ID               int64      `json:"id"`
	UserID           int64      `json:"user_id"`
	PetName          string     `json:"pet_name"`
	Species          string     `json:"species"`
	Description      string     `json:"description"`
	LastSeenLocation string     `json:"last_seen_location"`
	LastSeenAt       time.Time  `json:"last_seen_at"`
	PhotoURL         string     `json:"photo_url"`
	ResolvedAt       *time.Time `json:"resolved_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Resolved reports whether the pet has been found.
func (r LostPetReport) Resolved() bool {
	return r.ResolvedAt != nil
}
