// Package notifications stores per-user notifications and hands them to the delivery queue.
package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/volunteer-bridge/backend/internal/models"
	"github.com/volunteer-bridge/backend/pkg/queue"
)

// Store persists notifications.
type Store interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	Exists(ctx context.Context, userID uuid.UUID, notificationType string, relatedID uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) (*models.Notification, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkDelivered(ctx context.Context, id uuid.UUID, at time.Time) error
}

// Enqueuer schedules live delivery of a stored notification.
type Enqueuer interface {
	EnqueueNotificationDelivery(ctx context.Context, payload queue.NotificationDeliveryPayload) error
}

// Service records notifications. It satisfies the Notifier interfaces of matching, attendance,
// applications and hours, and the NotificationHistory interface of matching.
type Service struct {
	store  Store
	queue  Enqueuer
	logger *zap.Logger
}

// NewService creates a notification service. q may be nil, in which case notifications are only stored.
func NewService(store Store, q Enqueuer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, queue: q, logger: logger}
}

// Notify stores a notification for userID and enqueues its live delivery. A queue failure is logged,
// not returned; the stored record stays visible through the list endpoint.
func (s *Service) Notify(ctx context.Context, userID uuid.UUID, notificationType, message string, relatedID *uuid.UUID) error {
	n := &models.Notification{
		UserID:          userID,
		Type:            notificationType,
		Message:         message,
		RelatedObjectID: relatedID,
	}
	if err := s.store.Create(ctx, n); err != nil {
		return err
	}
	if s.queue == nil {
		return nil
	}
	if err := s.queue.EnqueueNotificationDelivery(ctx, queue.NotificationDeliveryPayload{NotificationID: n.ID, UserID: userID}); err != nil {
		s.logger.Warn("enqueue notification delivery failed", zap.Error(err), zap.String("notification_id", n.ID.String()))
	}
	return nil
}

// Exists reports whether userID already holds a notification of the given type about relatedID.
func (s *Service) Exists(ctx context.Context, userID uuid.UUID, notificationType string, relatedID uuid.UUID) (bool, error) {
	return s.store.Exists(ctx, userID, notificationType, relatedID)
}

// List returns the user's notifications, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]models.Notification, error) {
	return s.store.ListByUser(ctx, userID, unreadOnly)
}

// MarkRead marks one of the user's notifications read.
func (s *Service) MarkRead(ctx context.Context, id, userID uuid.UUID) (*models.Notification, error) {
	return s.store.MarkRead(ctx, id, userID)
}

// MarkAllRead marks all of the user's notifications read and returns how many changed.
func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.store.MarkAllRead(ctx, userID)
}
