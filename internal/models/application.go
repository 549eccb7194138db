package models

import (
	"time"

	"github.com/google/uuid"
)

// ApplicationStatus is set by the owning organization.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "PENDING"
	ApplicationApproved ApplicationStatus = "APPROVED"
	ApplicationRejected ApplicationStatus = "REJECTED"
)

// Valid reports whether s is a known status.
func (s ApplicationStatus) Valid() bool {
	return s == ApplicationPending || s == ApplicationApproved || s == ApplicationRejected
}

// Application links one volunteer to one opportunity (unique per pair).
type Application struct {
	ID            uuid.UUID         `json:"id"`
	VolunteerID   uuid.UUID         `json:"volunteer_id"`
	OpportunityID uuid.UUID         `json:"opportunity_id"`
	Status        ApplicationStatus `json:"status"`
	Message       string            `json:"message,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}
