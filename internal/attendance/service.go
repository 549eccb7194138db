package attendance

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/volunteer-bridge/backend/internal/apperr"
	"github.com/volunteer-bridge/backend/internal/models"
)

// Notifier delivers a notification to one user.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, notificationType, message string, relatedID *uuid.UUID) error
}

// Service is the event attendance manager.
type Service struct {
	store    Store
	notifier Notifier
	logger   *zap.Logger
}

// NewService creates an attendance service.
func NewService(store Store, notifier Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, notifier: notifier, logger: logger}
}

// RequestAttendance admits userID to the event as ATTENDING or WAITLISTED. It fails with
// apperr.ErrDuplicateRSVP if the user already has an RSVP and apperr.ErrEventFull if the event is
// at capacity without a waitlist.
func (s *Service) RequestAttendance(ctx context.Context, eventID, userID uuid.UUID) (*models.RSVP, error) {
	var (
		rsvp *models.RSVP
		ev   models.Event
	)
	err := s.store.WithEventLock(ctx, eventID, func(tx EventTx) error {
		ev = *tx.Event()
		existing, err := tx.GetRSVP(ctx, userID)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperr.ErrDuplicateRSVP
		}
		attending, err := tx.CountAttending(ctx)
		if err != nil {
			return err
		}
		status, err := Decide(&ev, attending)
		if err != nil {
			return err
		}
		rsvp, err = tx.InsertRSVP(ctx, userID, status)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("rsvp admitted",
		zap.String("event_id", eventID.String()),
		zap.String("user_id", userID.String()),
		zap.String("status", string(rsvp.Status)),
	)
	s.notify(ctx, userID, models.NotificationRSVP, confirmationMessage(&ev, rsvp.Status), ev.ID)
	s.notify(ctx, ev.CreatedBy, models.NotificationRSVP, fmt.Sprintf("New RSVP for %q: %s", ev.Title, rsvp.Status), ev.ID)
	return rsvp, nil
}

// Cancel moves the user's RSVP to CANCELLED. A freed ATTENDING seat goes to the oldest waitlisted RSVP.
func (s *Service) Cancel(ctx context.Context, eventID, userID uuid.UUID) (*models.RSVP, error) {
	var (
		cancelled *models.RSVP
		promoted  []models.RSVP
		ev        models.Event
	)
	err := s.store.WithEventLock(ctx, eventID, func(tx EventTx) error {
		ev = *tx.Event()
		r, err := tx.GetRSVP(ctx, userID)
		if err != nil {
			return err
		}
		if r == nil || r.Status == models.RSVPCancelled {
			return apperr.NotFound("rsvp")
		}
		wasAttending := r.Status == models.RSVPAttending
		if err := tx.SetStatus(ctx, r, models.RSVPCancelled); err != nil {
			return err
		}
		cancelled = r
		if wasAttending {
			promoted, err = fillFromWaitlist(ctx, tx)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notifyPromoted(ctx, &ev, promoted)
	return cancelled, nil
}

// PromoteWaitlisted fills any free seats from the waitlist, e.g. after capacity was raised.
func (s *Service) PromoteWaitlisted(ctx context.Context, eventID uuid.UUID) ([]models.RSVP, error) {
	var (
		promoted []models.RSVP
		ev       models.Event
	)
	err := s.store.WithEventLock(ctx, eventID, func(tx EventTx) error {
		ev = *tx.Event()
		var err error
		promoted, err = fillFromWaitlist(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notifyPromoted(ctx, &ev, promoted)
	return promoted, nil
}

// UpdateEvent applies edit to the event under its lock. Only the creator may edit. Capacity may not drop
// below the current ATTENDING count; seats added by a capacity increase go to the waitlist.
func (s *Service) UpdateEvent(ctx context.Context, eventID, callerID uuid.UUID, edit func(ev *models.Event) error) (*models.Event, error) {
	var (
		updated  models.Event
		promoted []models.RSVP
	)
	err := s.store.WithEventLock(ctx, eventID, func(tx EventTx) error {
		ev := *tx.Event()
		if ev.CreatedBy != callerID {
			return apperr.Permission("only the event creator can edit this event")
		}
		if err := edit(&ev); err != nil {
			return err
		}
		attending, err := tx.CountAttending(ctx)
		if err != nil {
			return err
		}
		if ev.MaxAttendees < attending {
			return apperr.Validation("max_attendees cannot be below the current attending count (%d)", attending)
		}
		if err := tx.UpdateEvent(ctx, &ev); err != nil {
			return err
		}
		updated = ev
		promoted, err = fillFromWaitlist(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notifyPromoted(ctx, &updated, promoted)
	return &updated, nil
}

// GetEvent returns the event or a NotFoundError.
func (s *Service) GetEvent(ctx context.Context, eventID uuid.UUID) (*models.Event, error) {
	return s.store.GetEvent(ctx, eventID)
}

// ListForEvent returns the event's RSVPs. Only the event creator may list them.
func (s *Service) ListForEvent(ctx context.Context, eventID, callerID uuid.UUID) ([]models.RSVP, error) {
	ev, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if ev.CreatedBy != callerID {
		return nil, apperr.Permission("only the event creator can list RSVPs")
	}
	return s.store.ListByEvent(ctx, eventID)
}

// ListForUser returns the user's RSVPs across events.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.RSVP, error) {
	return s.store.ListByUser(ctx, userID)
}

func fillFromWaitlist(ctx context.Context, tx EventTx) ([]models.RSVP, error) {
	var promoted []models.RSVP
	for {
		attending, err := tx.CountAttending(ctx)
		if err != nil {
			return nil, err
		}
		if attending >= tx.Event().MaxAttendees {
			return promoted, nil
		}
		next, err := tx.OldestWaitlisted(ctx)
		if err != nil {
			return nil, err
		}
		if next == nil {
			return promoted, nil
		}
		if err := tx.SetStatus(ctx, next, models.RSVPAttending); err != nil {
			return nil, err
		}
		promoted = append(promoted, *next)
	}
}

func (s *Service) notifyPromoted(ctx context.Context, ev *models.Event, promoted []models.RSVP) {
	for _, p := range promoted {
		s.logger.Info("rsvp promoted from waitlist", zap.String("event_id", ev.ID.String()), zap.String("user_id", p.UserID.String()))
		s.notify(ctx, p.UserID, models.NotificationRSVPPromoted, fmt.Sprintf("A seat opened up: you are now attending %q", ev.Title), ev.ID)
	}
}

func (s *Service) notify(ctx context.Context, userID uuid.UUID, kind, msg string, eventID uuid.UUID) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, kind, msg, &eventID); err != nil {
		s.logger.Warn("notification failed", zap.Error(err), zap.String("user_id", userID.String()), zap.String("type", kind))
	}
}

func confirmationMessage(ev *models.Event, status models.RSVPStatus) string {
	if status == models.RSVPWaitlisted {
		return fmt.Sprintf("%q is full; you have been added to the waitlist", ev.Title)
	}
	return fmt.Sprintf("You are attending %q", ev.Title)
}
