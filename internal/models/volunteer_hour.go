package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// VolunteerHour is a logged block of volunteering against an opportunity.
type VolunteerHour struct {
	ID               uuid.UUID  `json:"id"`
	VolunteerID      uuid.UUID  `json:"volunteer_id"`
	OpportunityID    uuid.UUID  `json:"opportunity_id"`
	StartTime        time.Time  `json:"start_time"`
	EndTime          time.Time  `json:"end_time"`
	HoursVolunteered float64    `json:"hours_volunteered"`
	Verified         bool       `json:"verified"`
	VerifiedBy       *uuid.UUID `json:"verified_by,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// HoursBetween returns the window length in hours rounded to two decimal places.
func HoursBetween(start, end time.Time) float64 {
	return math.Round(end.Sub(start).Hours()*100) / 100
}
