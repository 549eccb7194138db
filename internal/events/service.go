// Package events manages scheduled events. Admission to an event lives in package attendance.
package events

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/volunteer-bridge/backend/internal/apperr"
	"github.com/volunteer-bridge/backend/internal/attendance"
	"github.com/volunteer-bridge/backend/internal/models"
)

// Store persists events.
type Store interface {
	Create(ctx context.Context, ev *models.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	List(ctx context.Context) ([]models.Event, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// OpportunityLookup loads an opportunity by ID.
type OpportunityLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Opportunity, error)
}

// Input is the writable part of an event. Nil pointers keep defaults on create and current values
// on update.
type Input struct {
	Title           string     `json:"title" binding:"required,max=200"`
	Description     string     `json:"description"`
	Location        string     `json:"location" binding:"max=255"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         time.Time  `json:"end_time"`
	OpportunityID   *uuid.UUID `json:"opportunity_id"`
	MaxAttendees    *int       `json:"max_attendees"`
	WaitlistEnabled *bool      `json:"waitlist_enabled"`
}

// Service applies event rules.
type Service struct {
	store      Store
	opps       OpportunityLookup
	attendance *attendance.Service
	logger     *zap.Logger
}

// NewService creates an event service. Edits run through att so capacity changes are serialized
// with admissions.
func NewService(store Store, opps OpportunityLookup, att *attendance.Service, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, opps: opps, attendance: att, logger: logger}
}

func (s *Service) apply(ctx context.Context, in Input, ev *models.Event) error {
	if strings.TrimSpace(in.Title) == "" {
		return apperr.Validation("title is required")
	}
	if err := models.ValidateWindow("start_time", in.StartTime, "end_time", in.EndTime); err != nil {
		return err
	}
	if in.MaxAttendees != nil {
		if *in.MaxAttendees < 1 {
			return apperr.Validation("max_attendees must be at least 1")
		}
		ev.MaxAttendees = *in.MaxAttendees
	}
	if in.WaitlistEnabled != nil {
		ev.WaitlistEnabled = *in.WaitlistEnabled
	}
	if in.OpportunityID != nil {
		if _, err := s.opps.GetByID(ctx, *in.OpportunityID); err != nil {
			if apperr.IsNotFound(err) {
				return apperr.Validation("opportunity_id does not reference an existing opportunity")
			}
			return err
		}
	}
	ev.OpportunityID = in.OpportunityID
	ev.Title = in.Title
	ev.Description = in.Description
	ev.Location = in.Location
	ev.StartTime = in.StartTime
	ev.EndTime = in.EndTime
	return nil
}

// Create schedules an event owned by creatorID.
func (s *Service) Create(ctx context.Context, creatorID uuid.UUID, in Input) (*models.Event, error) {
	ev := &models.Event{
		CreatedBy:       creatorID,
		MaxAttendees:    models.DefaultMaxAttendees,
		WaitlistEnabled: models.DefaultWaitlistEnabled,
	}
	if err := s.apply(ctx, in, ev); err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, ev); err != nil {
		return nil, err
	}
	s.logger.Info("event created",
		zap.String("event_id", ev.ID.String()),
		zap.Int("max_attendees", ev.MaxAttendees),
		zap.Bool("waitlist_enabled", ev.WaitlistEnabled),
	)
	return ev, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return s.store.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]models.Event, error) {
	return s.store.List(ctx)
}

// Update edits an event the caller created. Capacity cannot drop below the ATTENDING count; a raised
// capacity promotes waitlisted RSVPs.
func (s *Service) Update(ctx context.Context, callerID, id uuid.UUID, in Input) (*models.Event, error) {
	return s.attendance.UpdateEvent(ctx, id, callerID, func(ev *models.Event) error {
		return s.apply(ctx, in, ev)
	})
}

// Delete removes an event the caller created, along with its RSVPs.
func (s *Service) Delete(ctx context.Context, callerID, id uuid.UUID) error {
	ev, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if ev.CreatedBy != callerID {
		return apperr.Permission("only the event creator can delete this event")
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("event deleted", zap.String("event_id", id.String()))
	return nil
}
