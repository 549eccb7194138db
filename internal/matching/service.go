package matching

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/volunteer-bridge/backend/internal/models"
)

// VolunteerSource lists the candidate pool.
type VolunteerSource interface {
	ListVolunteers(ctx context.Context) ([]models.User, error)
}

// Notifier delivers a notification to one user.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, notificationType, message string, relatedID *uuid.UUID) error
}

// NotificationHistory answers whether a user already holds a notification of a type for an object.
type NotificationHistory interface {
	Exists(ctx context.Context, userID uuid.UUID, notificationType string, relatedID uuid.UUID) (bool, error)
}

// Service runs the matcher against the stored volunteer pool and notifies matched volunteers.
type Service struct {
	volunteers VolunteerSource
	notifier   Notifier
	history    NotificationHistory
	dedup      bool
	logger     *zap.Logger
}

// NewService creates a matching service. With dedup set, NotifyMatches skips volunteers that were
// already told about the opportunity; without it every call re-notifies.
func NewService(volunteers VolunteerSource, notifier Notifier, history NotificationHistory, dedup bool, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{volunteers: volunteers, notifier: notifier, history: history, dedup: dedup, logger: logger}
}

// Match rescans the full volunteer pool and ranks it against opp.
func (s *Service) Match(ctx context.Context, opp *models.Opportunity) ([]Match, error) {
	pool, err := s.volunteers.ListVolunteers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list volunteers: %w", err)
	}
	return Rank(opp, pool), nil
}

// NotifyMatches sends a match notification to each matched volunteer and returns how many were sent.
// Delivery failures are logged and skipped.
func (s *Service) NotifyMatches(ctx context.Context, opp *models.Opportunity, matches []Match) int {
	sent := 0
	for _, m := range matches {
		userID := m.Volunteer.ID
		if s.dedup && s.history != nil {
			seen, err := s.history.Exists(ctx, userID, models.NotificationMatch, opp.ID)
			if err != nil {
				s.logger.Warn("match notification lookup failed", zap.Error(err), zap.String("user_id", userID.String()))
				continue
			}
			if seen {
				continue
			}
		}
		msg := fmt.Sprintf("You have been matched with the opportunity %q (%d matching skills)", opp.Title, m.Score)
		oppID := opp.ID
		if err := s.notifier.Notify(ctx, userID, models.NotificationMatch, msg, &oppID); err != nil {
			s.logger.Warn("match notification failed", zap.Error(err), zap.String("user_id", userID.String()))
			continue
		}
		sent++
	}
	s.logger.Info("match notifications sent",
		zap.String("opportunity_id", opp.ID.String()),
		zap.Int("matches", len(matches)),
		zap.Int("sent", sent),
		zap.Bool("dedup", s.dedup),
	)
	return sent
}
