package attendance

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/volunteer-bridge/backend/internal/apperr"
	"github.com/volunteer-bridge/backend/internal/models"
)

type memEvent struct {
	mu    sync.Mutex
	event models.Event
	rsvps []models.RSVP
}

// InMemoryStore keeps events and RSVPs in process memory. Each event has its own lock.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[uuid.UUID]*memEvent
	now    func() time.Time
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[uuid.UUID]*memEvent), now: time.Now}
}

// PutEvent inserts or replaces an event, keeping its RSVPs.
func (s *InMemoryStore) PutEvent(ev models.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.events[ev.ID]; ok {
		e.mu.Lock()
		e.event = ev
		e.mu.Unlock()
		return
	}
	s.events[ev.ID] = &memEvent{event: ev}
}

// DeleteEvent removes an event and its RSVPs.
func (s *InMemoryStore) DeleteEvent(eventID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[eventID]; !ok {
		return false
	}
	delete(s.events, eventID)
	return true
}

// Events returns every event ordered by start time.
func (s *InMemoryStore) Events() []models.Event {
	s.mu.RLock()
	list := make([]models.Event, 0, len(s.events))
	for _, e := range s.events {
		e.mu.Lock()
		list = append(list, e.event)
		e.mu.Unlock()
	}
	s.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].StartTime.Before(list[j].StartTime) })
	return list
}

func (s *InMemoryStore) get(eventID uuid.UUID) (*memEvent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[eventID]
	return e, ok
}

func (s *InMemoryStore) WithEventLock(ctx context.Context, eventID uuid.UUID, fn func(tx EventTx) error) error {
	e, ok := s.get(eventID)
	if !ok {
		return apperr.NotFound("event")
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	tx := &memTx{event: e.event, rsvps: append([]models.RSVP(nil), e.rsvps...), now: s.now}
	if err := fn(tx); err != nil {
		return err
	}
	e.event = tx.event
	e.rsvps = tx.rsvps
	return nil
}

func (s *InMemoryStore) GetEvent(ctx context.Context, eventID uuid.UUID) (*models.Event, error) {
	e, ok := s.get(eventID)
	if !ok {
		return nil, apperr.NotFound("event")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	ev := e.event
	return &ev, nil
}

func (s *InMemoryStore) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.RSVP, error) {
	e, ok := s.get(eventID)
	if !ok {
		return nil, apperr.NotFound("event")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]models.RSVP(nil), e.rsvps...), nil
}

func (s *InMemoryStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.RSVP, error) {
	s.mu.RLock()
	events := make([]*memEvent, 0, len(s.events))
	for _, e := range s.events {
		events = append(events, e)
	}
	s.mu.RUnlock()

	var out []models.RSVP
	for _, e := range events {
		e.mu.Lock()
		for _, r := range e.rsvps {
			if r.UserID == userID {
				out = append(out, r)
			}
		}
		e.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// memTx works on a copy of the event's RSVPs; WithEventLock commits it when fn succeeds.
type memTx struct {
	event models.Event
	rsvps []models.RSVP
	now   func() time.Time
}

func (t *memTx) Event() *models.Event { return &t.event }

func (t *memTx) GetRSVP(_ context.Context, userID uuid.UUID) (*models.RSVP, error) {
	for _, r := range t.rsvps {
		if r.UserID == userID {
			rc := r
			return &rc, nil
		}
	}
	return nil, nil
}

func (t *memTx) CountAttending(context.Context) (int, error) {
	n := 0
	for _, r := range t.rsvps {
		if r.Status == models.RSVPAttending {
			n++
		}
	}
	return n, nil
}

func (t *memTx) InsertRSVP(_ context.Context, userID uuid.UUID, status models.RSVPStatus) (*models.RSVP, error) {
	for _, r := range t.rsvps {
		if r.UserID == userID {
			return nil, apperr.ErrDuplicateRSVP
		}
	}
	now := t.now()
	r := models.RSVP{ID: uuid.New(), EventID: t.event.ID, UserID: userID, Status: status, CreatedAt: now, UpdatedAt: now}
	t.rsvps = append(t.rsvps, r)
	return &r, nil
}

func (t *memTx) SetStatus(_ context.Context, rsvp *models.RSVP, status models.RSVPStatus) error {
	for i := range t.rsvps {
		if t.rsvps[i].ID == rsvp.ID {
			t.rsvps[i].Status = status
			t.rsvps[i].UpdatedAt = t.now()
			*rsvp = t.rsvps[i]
			return nil
		}
	}
	return apperr.NotFound("rsvp")
}

// OldestWaitlisted relies on insertion order, which matches created_at order.
func (t *memTx) OldestWaitlisted(context.Context) (*models.RSVP, error) {
	for _, r := range t.rsvps {
		if r.Status == models.RSVPWaitlisted {
			rc := r
			return &rc, nil
		}
	}
	return nil, nil
}

func (t *memTx) UpdateEvent(_ context.Context, ev *models.Event) error {
	ev.ID = t.event.ID
	ev.CreatedBy = t.event.CreatedBy
	ev.CreatedAt = t.event.CreatedAt
	ev.UpdatedAt = t.now()
	t.event = *ev
	return nil
}

var _ Store = (*InMemoryStore)(nil)
