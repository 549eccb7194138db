package models

import (
	"time"

	"github.com/google/uuid"
)

// Default event capacity settings.
const (
	DefaultMaxAttendees    = 50
	DefaultWaitlistEnabled = true
)

// Event is a scheduled gathering with a capacity and optional waitlist.
type Event struct {
	ID              uuid.UUID  `json:"id"`
	CreatedBy       uuid.UUID  `json:"created_by"`
	OpportunityID   *uuid.UUID `json:"opportunity_id,omitempty"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Location        string     `json:"location"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         time.Time  `json:"end_time"`
	MaxAttendees    int        `json:"max_attendees"`
	WaitlistEnabled bool       `json:"waitlist_enabled"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// RSVPStatus is the admission state of an RSVP.
type RSVPStatus string

const (
	// RSVPRegistered is a valid stored value; admission never produces it.
	RSVPRegistered RSVPStatus = "REGISTERED"
	RSVPAttending  RSVPStatus = "ATTENDING"
	RSVPWaitlisted RSVPStatus = "WAITLISTED"
	RSVPCancelled  RSVPStatus = "CANCELLED"
)

// RSVP is a user's attendance record for an event (unique per user and event).
type RSVP struct {
	ID        uuid.UUID  `json:"id"`
	EventID   uuid.UUID  `json:"event_id"`
	UserID    uuid.UUID  `json:"user_id"`
	Status    RSVPStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
