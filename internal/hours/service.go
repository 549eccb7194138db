// Package hours records volunteered time and lets the owning organization verify and export it.
package hours

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/volunteer-bridge/backend/internal/apperr"
	"github.com/volunteer-bridge/backend/internal/models"
	"github.com/volunteer-bridge/backend/pkg/storage"
)

// ErrExportUnavailable is returned by Export when no export storage is configured.
var ErrExportUnavailable = errors.New("hours export storage is not configured")

// Store persists volunteer hours.
type Store interface {
	Create(ctx context.Context, h *models.VolunteerHour) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.VolunteerHour, error)
	ListByVolunteer(ctx context.Context, volunteerID uuid.UUID) ([]models.VolunteerHour, error)
	ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]models.VolunteerHour, error)
	ListByOpportunity(ctx context.Context, opportunityID uuid.UUID) ([]models.VolunteerHour, error)
	SetVerified(ctx context.Context, id uuid.UUID, verified bool, verifiedBy *uuid.UUID) (*models.VolunteerHour, error)
}

// OpportunityLookup loads an opportunity by ID.
type OpportunityLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Opportunity, error)
}

// Notifier delivers a notification to one user.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, notificationType, message string, relatedID *uuid.UUID) error
}

// Exporter stores export files and issues download links.
type Exporter interface {
	PutExport(ctx context.Context, key, contentType string, body io.Reader) error
	PresignExport(ctx context.Context, key string) (string, time.Time, error)
}

// LogInput is the body for logging hours. HoursVolunteered is derived from the window when omitted.
type LogInput struct {
	OpportunityID    uuid.UUID `json:"opportunity_id" binding:"required"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	HoursVolunteered *float64  `json:"hours_volunteered"`
	Notes            string    `json:"notes" binding:"max=2000"`
}

// ExportResult points at an uploaded CSV export.
type ExportResult struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
	Rows      int       `json:"rows"`
}

// Service applies the volunteer-hours rules.
type Service struct {
	store    Store
	opps     OpportunityLookup
	notifier Notifier
	exporter Exporter
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a volunteer-hours service. exporter may be nil, which disables Export.
func NewService(store Store, opps OpportunityLookup, notifier Notifier, exporter Exporter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, opps: opps, notifier: notifier, exporter: exporter, logger: logger, now: time.Now}
}

// Log records hours for the volunteer against an existing opportunity.
func (s *Service) Log(ctx context.Context, volunteerID uuid.UUID, in LogInput) (*models.VolunteerHour, error) {
	if err := models.ValidateWindow("start_time", in.StartTime, "end_time", in.EndTime); err != nil {
		return nil, err
	}
	window := models.HoursBetween(in.StartTime, in.EndTime)
	hours := window
	if in.HoursVolunteered != nil {
		hours = *in.HoursVolunteered
		if hours <= 0 {
			return nil, apperr.Validation("hours_volunteered must be positive")
		}
		if hours > window {
			return nil, apperr.Validation("hours_volunteered cannot exceed the logged window (%.2f)", window)
		}
	}
	if hours <= 0 {
		return nil, apperr.Validation("logged window is shorter than 0.01 hours")
	}
	if _, err := s.opps.GetByID(ctx, in.OpportunityID); err != nil {
		return nil, err
	}
	h := &models.VolunteerHour{
		VolunteerID:      volunteerID,
		OpportunityID:    in.OpportunityID,
		StartTime:        in.StartTime,
		EndTime:          in.EndTime,
		HoursVolunteered: hours,
		Notes:            in.Notes,
	}
	if err := s.store.Create(ctx, h); err != nil {
		return nil, err
	}
	s.logger.Info("hours logged",
		zap.String("volunteer_id", volunteerID.String()),
		zap.String("opportunity_id", in.OpportunityID.String()),
		zap.Float64("hours", hours),
	)
	return h, nil
}

// List returns the organization's incoming hours or the volunteer's own.
func (s *Service) List(ctx context.Context, userID uuid.UUID, role models.Role) ([]models.VolunteerHour, error) {
	if role.IsOrganization() {
		return s.store.ListByOrganization(ctx, userID)
	}
	return s.store.ListByVolunteer(ctx, userID)
}

// Verify marks the hours verified by the owning organization and tells the volunteer.
func (s *Service) Verify(ctx context.Context, callerID, id uuid.UUID) (*models.VolunteerHour, error) {
	o, err := s.owned(ctx, callerID, id)
	if err != nil {
		return nil, err
	}
	h, err := s.store.SetVerified(ctx, id, true, &callerID)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		msg := fmt.Sprintf("%.2f hours for %q were verified", h.HoursVolunteered, o.Title)
		if err := s.notifier.Notify(ctx, h.VolunteerID, models.NotificationHoursVerified, msg, &h.ID); err != nil {
			s.logger.Warn("hours notification failed", zap.Error(err), zap.String("user_id", h.VolunteerID.String()))
		}
	}
	return h, nil
}

// Unverify clears verification.
func (s *Service) Unverify(ctx context.Context, callerID, id uuid.UUID) (*models.VolunteerHour, error) {
	if _, err := s.owned(ctx, callerID, id); err != nil {
		return nil, err
	}
	return s.store.SetVerified(ctx, id, false, nil)
}

func (s *Service) owned(ctx context.Context, callerID, id uuid.UUID) (*models.Opportunity, error) {
	h, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	o, err := s.opps.GetByID(ctx, h.OpportunityID)
	if err != nil {
		return nil, err
	}
	if o.OrganizationID != callerID {
		return nil, apperr.Permission("only the owning organization can verify these hours")
	}
	return o, nil
}

// ExportEnabled reports whether Export has somewhere to upload to.
func (s *Service) ExportEnabled() bool { return s.exporter != nil }

// Export writes the opportunity's hours as CSV to export storage and returns a download link.
func (s *Service) Export(ctx context.Context, callerID, opportunityID uuid.UUID) (*ExportResult, error) {
	if s.exporter == nil {
		return nil, ErrExportUnavailable
	}
	o, err := s.opps.GetByID(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	if o.OrganizationID != callerID {
		return nil, apperr.Permission("only the owning organization can export hours")
	}
	list, err := s.store.ListByOpportunity(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, list); err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}
	key := storage.HoursExportKey(opportunityID, s.now())
	if err := s.exporter.PutExport(ctx, key, "text/csv", &buf); err != nil {
		return nil, fmt.Errorf("upload export: %w", err)
	}
	url, expires, err := s.exporter.PresignExport(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("presign export: %w", err)
	}
	s.logger.Info("hours exported", zap.String("opportunity_id", opportunityID.String()), zap.String("key", key), zap.Int("rows", len(list)))
	return &ExportResult{Key: key, URL: url, ExpiresAt: expires, Rows: len(list)}, nil
}

var csvHeader = []string{"id", "volunteer_id", "start_time", "end_time", "hours_volunteered", "verified", "verified_by", "notes"}

// WriteCSV writes one header row and one row per entry.
func WriteCSV(w io.Writer, list []models.VolunteerHour) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, h := range list {
		verifiedBy := ""
		if h.VerifiedBy != nil {
			verifiedBy = h.VerifiedBy.String()
		}
		row := []string{
			h.ID.String(),
			h.VolunteerID.String(),
			h.StartTime.UTC().Format(time.RFC3339),
			h.EndTime.UTC().Format(time.RFC3339),
			strconv.FormatFloat(h.HoursVolunteered, 'f', 2, 64),
			strconv.FormatBool(h.Verified),
			verifiedBy,
			h.Notes,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
