package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/volunteer-bridge/backend/internal/models"
	"github.com/volunteer-bridge/backend/pkg/queue"
)

// NotificationStore is the part of the notification store the dispatcher uses.
type NotificationStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	MarkDelivered(ctx context.Context, id uuid.UUID, at time.Time) error
}

// Publisher pushes a notification to its recipient's live connections.
type Publisher interface {
	PublishNotification(ctx context.Context, n *models.Notification) error
}

// JobSource is the queue the dispatcher drains.
type JobSource interface {
	Dequeue(ctx context.Context) (*queue.Job, error)
	Retry(ctx context.Context, job *queue.Job) error
}

// NotificationDispatcher processes notification delivery jobs: load the record, publish it to the
// user's channel, stamp delivered_at.
type NotificationDispatcher struct {
	store   NotificationStore
	pub     Publisher
	jobs    JobSource
	backoff time.Duration
	logger  *zap.Logger
}

// NewNotificationDispatcher creates a notification delivery processor.
func NewNotificationDispatcher(store NotificationStore, pub Publisher, jobs JobSource, logger *zap.Logger) *NotificationDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationDispatcher{store: store, pub: pub, jobs: jobs, backoff: queue.RetryBackoff, logger: logger}
}

// Process executes one delivery job. Already-delivered notifications are skipped.
func (d *NotificationDispatcher) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeNotificationDelivery {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.NotificationDeliveryPayload
	if err := job.Decode(&payload); err != nil {
		return err
	}

	n, err := d.store.GetByID(ctx, payload.NotificationID)
	if err != nil {
		return fmt.Errorf("load notification %s: %w", payload.NotificationID, err)
	}
	if n.DeliveredAt != nil {
		d.logger.Debug("notification already delivered", zap.String("notification_id", n.ID.String()))
		return nil
	}

	if err := d.pub.PublishNotification(ctx, n); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	if err := d.store.MarkDelivered(ctx, n.ID, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark delivered: %w", err)
	}

	d.logger.Debug("notification delivered", zap.String("notification_id", n.ID.String()), zap.String("user_id", n.UserID.String()))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error. It returns when ctx is done.
func (d *NotificationDispatcher) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			d.logger.Info("notification worker stopping")
			return
		}

		job, err := d.jobs.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			d.logger.Warn("dequeue error", zap.Error(err))
			d.sleep(ctx)
			continue
		}
		if job == nil {
			continue
		}

		if err := d.Process(ctx, job); err != nil {
			d.logger.Error("job failed", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt), zap.Error(err))
			if reErr := d.jobs.Retry(ctx, job); reErr != nil {
				d.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			d.sleep(ctx)
		}
	}
}

func (d *NotificationDispatcher) sleep(ctx context.Context) {
	t := time.NewTimer(d.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
