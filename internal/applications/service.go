// Package applications records volunteers applying to opportunities and the organization's decision.
package applications

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/volunteer-bridge/backend/internal/apperr"
	"github.com/volunteer-bridge/backend/internal/models"
)

// Store persists applications.
type Store interface {
	Create(ctx context.Context, a *models.Application) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error)
	ListByOpportunity(ctx context.Context, opportunityID uuid.UUID) ([]models.Application, error)
	ListByVolunteer(ctx context.Context, volunteerID uuid.UUID) ([]models.Application, error)
	ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]models.Application, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ApplicationStatus) (*models.Application, error)
}

// OpportunityLookup loads an opportunity by ID.
type OpportunityLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Opportunity, error)
}

// Notifier delivers a notification to one user.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, notificationType, message string, relatedID *uuid.UUID) error
}

// Service applies the application rules.
type Service struct {
	store    Store
	opps     OpportunityLookup
	notifier Notifier
	logger   *zap.Logger
}

// NewService creates an application service.
func NewService(store Store, opps OpportunityLookup, notifier Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, opps: opps, notifier: notifier, logger: logger}
}

// Apply files a PENDING application for an OPEN opportunity and tells the organization.
func (s *Service) Apply(ctx context.Context, volunteerID, opportunityID uuid.UUID, message string) (*models.Application, error) {
	o, err := s.opps.GetByID(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	if o.Status != models.OpportunityOpen {
		return nil, apperr.Validation("opportunity is not open for applications")
	}
	a := &models.Application{
		VolunteerID:   volunteerID,
		OpportunityID: opportunityID,
		Status:        models.ApplicationPending,
		Message:       strings.TrimSpace(message),
	}
	if err := s.store.Create(ctx, a); err != nil {
		return nil, err
	}
	s.logger.Info("application created",
		zap.String("application_id", a.ID.String()),
		zap.String("opportunity_id", opportunityID.String()),
		zap.String("volunteer_id", volunteerID.String()),
	)
	s.notify(ctx, o.OrganizationID, models.NotificationApplication,
		fmt.Sprintf("New application for %q", o.Title), a.ID)
	return a, nil
}

// ListForOpportunity returns the applications to an opportunity the caller owns.
func (s *Service) ListForOpportunity(ctx context.Context, callerID, opportunityID uuid.UUID) ([]models.Application, error) {
	o, err := s.opps.GetByID(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	if o.OrganizationID != callerID {
		return nil, apperr.Permission("only the owning organization can view applications")
	}
	return s.store.ListByOpportunity(ctx, opportunityID)
}

// ListForVolunteer returns the volunteer's own applications.
func (s *Service) ListForVolunteer(ctx context.Context, volunteerID uuid.UUID) ([]models.Application, error) {
	return s.store.ListByVolunteer(ctx, volunteerID)
}

// ListForOrganization returns applications across the organization's opportunities.
func (s *Service) ListForOrganization(ctx context.Context, orgID uuid.UUID) ([]models.Application, error) {
	return s.store.ListByOrganization(ctx, orgID)
}

// UpdateStatus records the organization's decision and tells the volunteer.
func (s *Service) UpdateStatus(ctx context.Context, callerID, id uuid.UUID, status string) (*models.Application, error) {
	st := models.ApplicationStatus(strings.ToUpper(status))
	if !st.Valid() {
		return nil, apperr.Validation("status must be one of PENDING, APPROVED, REJECTED")
	}
	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	o, err := s.opps.GetByID(ctx, a.OpportunityID)
	if err != nil {
		return nil, err
	}
	if o.OrganizationID != callerID {
		return nil, apperr.Permission("only the owning organization can update applications")
	}
	updated, err := s.store.UpdateStatus(ctx, id, st)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, updated.VolunteerID, models.NotificationApplicationStatus,
		fmt.Sprintf("Your application for %q is now %s", o.Title, st), updated.ID)
	return updated, nil
}

func (s *Service) notify(ctx context.Context, userID uuid.UUID, kind, msg string, related uuid.UUID) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, kind, msg, &related); err != nil {
		s.logger.Warn("application notification failed", zap.Error(err), zap.String("user_id", userID.String()))
	}
}
