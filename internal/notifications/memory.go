package notifications

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/volunteer-bridge/backend/internal/apperr"
	"github.com/volunteer-bridge/backend/internal/models"
)

// InMemoryStore keeps notifications in process memory.
type InMemoryStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]*models.Notification
	now   func() time.Time
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{items: make(map[uuid.UUID]*models.Notification), now: time.Now}
}

func (s *InMemoryStore) Create(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n.ID = uuid.New()
	n.IsRead = false
	n.CreatedAt = s.now()
	cp := *n
	s.items[n.ID] = &cp
	return nil
}

func (s *InMemoryStore) GetByID(_ context.Context, id uuid.UUID) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.items[id]
	if !ok {
		return nil, apperr.NotFound("notification")
	}
	cp := *n
	return &cp, nil
}

func (s *InMemoryStore) Exists(_ context.Context, userID uuid.UUID, notificationType string, relatedID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.items {
		if n.UserID == userID && n.Type == notificationType && n.RelatedObjectID != nil && *n.RelatedObjectID == relatedID {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryStore) ListByUser(_ context.Context, userID uuid.UUID, unreadOnly bool) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]models.Notification, 0)
	for _, n := range s.items {
		if n.UserID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		list = append(list, *n)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (s *InMemoryStore) MarkRead(_ context.Context, id, userID uuid.UUID) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.items[id]
	if !ok || n.UserID != userID {
		return nil, apperr.NotFound("notification")
	}
	n.IsRead = true
	cp := *n
	return &cp, nil
}

func (s *InMemoryStore) MarkAllRead(_ context.Context, userID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var changed int64
	for _, n := range s.items {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			changed++
		}
	}
	return changed, nil
}

func (s *InMemoryStore) MarkDelivered(_ context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.items[id]; ok && n.DeliveredAt == nil {
		t := at
		n.DeliveredAt = &t
	}
	return nil
}

var _ Store = (*InMemoryStore)(nil)
