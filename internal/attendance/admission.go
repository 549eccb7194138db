// Package attendance admits users to events under a capacity limit with an optional waitlist.
//
// Every state change for an event runs inside Store.WithEventLock, which serializes admissions,
// cancellations and promotions for that event. The ATTENDING count therefore never exceeds
// the event's max_attendees, even under concurrent requests.
package attendance

import (
	"context"

	"github.com/google/uuid"

	"github.com/volunteer-bridge/backend/internal/apperr"
	"github.com/volunteer-bridge/backend/internal/models"
)

// Decide returns the status a new RSVP gets given the event's current ATTENDING count.
func Decide(ev *models.Event, attending int) (models.RSVPStatus, error) {
	if attending < ev.MaxAttendees {
		return models.RSVPAttending, nil
	}
	if ev.WaitlistEnabled {
		return models.RSVPWaitlisted, nil
	}
	return "", apperr.ErrEventFull
}

// EventTx is a view of one event's RSVPs valid only inside WithEventLock.
type EventTx interface {
	Event() *models.Event
	// GetRSVP returns the user's RSVP in any status, or nil if there is none.
	GetRSVP(ctx context.Context, userID uuid.UUID) (*models.RSVP, error)
	CountAttending(ctx context.Context) (int, error)
	InsertRSVP(ctx context.Context, userID uuid.UUID, status models.RSVPStatus) (*models.RSVP, error)
	SetStatus(ctx context.Context, rsvp *models.RSVP, status models.RSVPStatus) error
	// OldestWaitlisted returns the earliest WAITLISTED RSVP, or nil if the waitlist is empty.
	OldestWaitlisted(ctx context.Context) (*models.RSVP, error)
	// UpdateEvent writes the event's editable fields and refreshes Event().
	UpdateEvent(ctx context.Context, ev *models.Event) error
}

// Store persists RSVPs.
type Store interface {
	// WithEventLock runs fn with exclusive access to the event's RSVPs. Changes are discarded if fn
	// returns an error. A missing event yields a NotFoundError.
	WithEventLock(ctx context.Context, eventID uuid.UUID, fn func(tx EventTx) error) error
	GetEvent(ctx context.Context, eventID uuid.UUID) (*models.Event, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.RSVP, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.RSVP, error)
}
