package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification types.
const (
	NotificationMatch             = "match"
	NotificationRSVP              = "rsvp"
	NotificationRSVPPromoted      = "rsvp_promoted"
	NotificationApplication       = "application"
	NotificationApplicationStatus = "application_status"
	NotificationHoursVerified     = "hours_verified"
)

// Notification is a message addressed to one user.
type Notification struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	Type            string     `json:"notification_type"`
	Message         string     `json:"message"`
	RelatedObjectID *uuid.UUID `json:"related_object_id,omitempty"`
	IsRead          bool       `json:"is_read"`
	DeliveredAt     *time.Time `json:"delivered_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}
