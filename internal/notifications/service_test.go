package notifications

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/volunteer-bridge/backend/internal/matching"
	"github.com/volunteer-bridge/backend/internal/middleware"
	"github.com/volunteer-bridge/backend/internal/models"
	"github.com/volunteer-bridge/backend/pkg/queue"
)

type fakeQueue struct {
	mu   sync.Mutex
	jobs []queue.NotificationDeliveryPayload
	err  error
}

func (f *fakeQueue) EnqueueNotificationDelivery(_ context.Context, p queue.NotificationDeliveryPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, p)
	return nil
}

func TestNotify_StoresAndEnqueues(t *testing.T) {
	store := NewInMemoryStore()
	q := &fakeQueue{}
	svc := NewService(store, q, nil)
	ctx := context.Background()
	user, related := uuid.New(), uuid.New()

	require.NoError(t, svc.Notify(ctx, user, models.NotificationRSVP, "You are attending", &related))

	list, err := svc.List(ctx, user, false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "You are attending", list[0].Message)
	assert.Equal(t, &related, list[0].RelatedObjectID)
	assert.False(t, list[0].IsRead)

	require.Len(t, q.jobs, 1)
	assert.Equal(t, list[0].ID, q.jobs[0].NotificationID)
	assert.Equal(t, user, q.jobs[0].UserID)
}

func TestNotify_QueueFailureKeepsRecord(t *testing.T) {
	store := NewInMemoryStore()
	svc := NewService(store, &fakeQueue{err: errors.New("redis down")}, nil)
	user := uuid.New()

	require.NoError(t, svc.Notify(context.Background(), user, models.NotificationMatch, "hi", nil))
	list, err := svc.List(context.Background(), user, false)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestMarkRead(t *testing.T) {
	store := NewInMemoryStore()
	svc := NewService(store, nil, nil)
	ctx := context.Background()
	user, other := uuid.New(), uuid.New()
	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Notify(ctx, user, models.NotificationRSVP, "m", nil))
	}
	list, err := svc.List(ctx, user, false)
	require.NoError(t, err)

	_, err = svc.MarkRead(ctx, list[0].ID, other)
	assert.Error(t, err, "another user's notification reads as not found")

	n, err := svc.MarkRead(ctx, list[0].ID, user)
	require.NoError(t, err)
	assert.True(t, n.IsRead)

	unread, err := svc.List(ctx, user, true)
	require.NoError(t, err)
	assert.Len(t, unread, 2)

	changed, err := svc.MarkAllRead(ctx, user)
	require.NoError(t, err)
	assert.EqualValues(t, 2, changed)
	unread, err = svc.List(ctx, user, true)
	require.NoError(t, err)
	assert.Empty(t, unread)
}

type volunteers []models.User

func (v volunteers) ListVolunteers(context.Context) ([]models.User, error) { return v, nil }

func TestMatchNotificationsDedupAgainstStore(t *testing.T) {
	store := NewInMemoryStore()
	notes := NewService(store, nil, nil)
	pool := volunteers{
		{ID: uuid.New(), Role: models.RoleVolunteer, Skills: []string{"A"}},
		{ID: uuid.New(), Role: models.RoleVolunteer, Skills: []string{"A", "B"}},
	}
	opp := &models.Opportunity{ID: uuid.New(), Title: "Tutoring", RequiredSkills: []string{"A", "B"}}
	ctx := context.Background()

	matcher := matching.NewService(pool, notes, notes, true, nil)
	matches, err := matcher.Match(ctx, opp)
	require.NoError(t, err)
	assert.Equal(t, 2, matcher.NotifyMatches(ctx, opp, matches))
	assert.Equal(t, 0, matcher.NotifyMatches(ctx, opp, matches))

	for _, v := range pool {
		list, err := notes.List(ctx, v.ID, false)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, models.NotificationMatch, list[0].Type)
	}
}

func TestHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := NewService(NewInMemoryStore(), nil, nil)
	user := uuid.New()
	require.NoError(t, svc.Notify(context.Background(), user, models.NotificationRSVP, "m", nil))

	h := NewHandler(svc)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(middleware.ContextUserID, user) })
	r.GET("/notifications", h.List)
	r.POST("/notifications/:id/read", h.MarkRead)
	r.POST("/notifications/read-all", h.MarkAllRead)

	do := func(method, path string) int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
		return w.Code
	}
	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/notifications?unread=1"))
	assert.Equal(t, http.StatusBadRequest, do(http.MethodPost, "/notifications/nope/read"))
	assert.Equal(t, http.StatusNotFound, do(http.MethodPost, "/notifications/"+uuid.NewString()+"/read"))
	assert.Equal(t, http.StatusOK, do(http.MethodPost, "/notifications/read-all"))
}
