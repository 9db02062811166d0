package model

import (
	"fmt"
	"time"
)

// ApplicationStatus tracks an adoption application through review.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// ParseApplicationStatus validates a caller-supplied status string.
func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	switch st := ApplicationStatus(s); st {
	case ApplicationPending, ApplicationApproved, ApplicationRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown application status: %q", s)
}

// AdoptionApplication is a user's request to adopt a pet. Reference is a
// public UUID handed to the applicant so they can quote it without exposing
// row ids.
type AdoptionApplication struct {
	ID        int64             `json:"id"`
	Reference string            `json:"reference"`
	PetID     int64             `json:"pet_id"`
	UserID    int64             `json:"user_id"`
	Message   string            `json:"message"`
	Status    ApplicationStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
