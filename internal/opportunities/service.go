// Package opportunities manages organization-posted opportunities and exposes the matcher over them.
package opportunities

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/volunteer-bridge/backend/internal/apperr"
	"github.com/volunteer-bridge/backend/internal/matching"
	"github.com/volunteer-bridge/backend/internal/models"
)

// Store persists opportunities.
type Store interface {
	Create(ctx context.Context, o *models.Opportunity) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Opportunity, error)
	List(ctx context.Context, status models.OpportunityStatus) ([]models.Opportunity, error)
	ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]models.Opportunity, error)
	Update(ctx context.Context, o *models.Opportunity) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserLookup loads a user by ID.
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Input is the writable part of an opportunity.
type Input struct {
	Title          string    `json:"title" binding:"required,max=200"`
	Description    string    `json:"description"`
	RequiredSkills []string  `json:"required_skills" binding:"omitempty,dive,max=100"`
	Category       string    `json:"category"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	Location       string    `json:"location" binding:"max=255"`
	MaxVolunteers  int       `json:"max_volunteers"`
}

// MatchResult is the matcher output for one opportunity.
type MatchResult struct {
	Matches  []matching.Match `json:"matches"`
	Notified int              `json:"notified"`
}

// Service applies ownership and validation rules to opportunity operations.
type Service struct {
	store   Store
	users   UserLookup
	matcher *matching.Service
	logger  *zap.Logger
}

// NewService creates an opportunity service.
func NewService(store Store, users UserLookup, matcher *matching.Service, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, users: users, matcher: matcher, logger: logger}
}

func (in *Input) apply(o *models.Opportunity) error {
	if strings.TrimSpace(in.Title) == "" {
		return apperr.Validation("title is required")
	}
	if err := models.ValidateWindow("start_date", in.StartDate, "end_date", in.EndDate); err != nil {
		return err
	}
	category := models.Category(in.Category)
	if category == "" {
		category = models.CategoryOther
	}
	if !category.Valid() {
		return apperr.Validation("unknown category %q", in.Category)
	}
	capacity := in.MaxVolunteers
	if capacity == 0 {
		capacity = 1
	}
	if capacity < 1 {
		return apperr.Validation("max_volunteers must be at least 1")
	}
	o.Title = in.Title
	o.Description = in.Description
	o.RequiredSkills = models.NormalizeTags(in.RequiredSkills)
	o.Category = category
	o.StartDate = in.StartDate
	o.EndDate = in.EndDate
	o.Location = in.Location
	o.MaxVolunteers = capacity
	return nil
}

// Create posts a new OPEN opportunity owned by orgID.
func (s *Service) Create(ctx context.Context, orgID uuid.UUID, in Input) (*models.Opportunity, error) {
	o := &models.Opportunity{OrganizationID: orgID, Status: models.OpportunityOpen}
	if err := in.apply(o); err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, o); err != nil {
		return nil, err
	}
	s.logger.Info("opportunity created", zap.String("opportunity_id", o.ID.String()), zap.String("organization_id", orgID.String()))
	return o, nil
}

// Get returns one opportunity.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Opportunity, error) {
	return s.store.GetByID(ctx, id)
}

// List returns all opportunities or those in one status.
func (s *Service) List(ctx context.Context, status string) ([]models.Opportunity, error) {
	st := models.OpportunityStatus(strings.ToUpper(status))
	if st != "" && !st.Valid() {
		return nil, apperr.Validation("unknown status %q", status)
	}
	return s.store.List(ctx, st)
}

// ListForOrganization returns the organization's own opportunities.
func (s *Service) ListForOrganization(ctx context.Context, orgID uuid.UUID) ([]models.Opportunity, error) {
	return s.store.ListByOrganization(ctx, orgID)
}

// owned loads the opportunity and checks callerID owns it.
func (s *Service) owned(ctx context.Context, id, callerID uuid.UUID) (*models.Opportunity, error) {
	o, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.OrganizationID != callerID {
		return nil, apperr.Permission("only the owning organization can manage this opportunity")
	}
	return o, nil
}

// Update replaces the writable fields. Status is left as is.
func (s *Service) Update(ctx context.Context, callerID, id uuid.UUID, in Input) (*models.Opportunity, error) {
	o, err := s.owned(ctx, id, callerID)
	if err != nil {
		return nil, err
	}
	if err := in.apply(o); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// SetStatus moves the opportunity to status. Any transition between the four statuses is allowed.
func (s *Service) SetStatus(ctx context.Context, callerID, id uuid.UUID, status string) (*models.Opportunity, error) {
	st := models.OpportunityStatus(strings.ToUpper(status))
	if !st.Valid() {
		return nil, apperr.Validation("status must be one of OPEN, FILLED, COMPLETED, CANCELLED")
	}
	o, err := s.owned(ctx, id, callerID)
	if err != nil {
		return nil, err
	}
	o.Status = st
	if err := s.store.Update(ctx, o); err != nil {
		return nil, err
	}
	s.logger.Info("opportunity status changed", zap.String("opportunity_id", id.String()), zap.String("status", string(st)))
	return o, nil
}

// Delete removes an opportunity the caller owns.
func (s *Service) Delete(ctx context.Context, callerID, id uuid.UUID) error {
	if _, err := s.owned(ctx, id, callerID); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

// Recommended ranks OPEN opportunities for the volunteer.
func (s *Service) Recommended(ctx context.Context, volunteerID uuid.UUID) ([]matching.Recommendation, error) {
	u, err := s.users.GetByID(ctx, volunteerID)
	if err != nil {
		return nil, err
	}
	if !u.Role.IsVolunteer() {
		return nil, apperr.Permission("recommendations are only available to volunteers")
	}
	open, err := s.store.List(ctx, models.OpportunityOpen)
	if err != nil {
		return nil, err
	}
	return matching.Recommend(u, open), nil
}

// Matches runs the matcher for an opportunity the caller owns, optionally notifying the matches.
func (s *Service) Matches(ctx context.Context, callerID, id uuid.UUID, notify bool) (*MatchResult, error) {
	o, err := s.owned(ctx, id, callerID)
	if err != nil {
		return nil, err
	}
	return s.RunMatch(ctx, o, notify)
}

// RunMatch runs the matcher without an ownership check.
func (s *Service) RunMatch(ctx context.Context, o *models.Opportunity, notify bool) (*MatchResult, error) {
	matches, err := s.matcher.Match(ctx, o)
	if err != nil {
		return nil, err
	}
	res := &MatchResult{Matches: matches}
	if notify {
		res.Notified = s.matcher.NotifyMatches(ctx, o, matches)
	}
	return res, nil
}
