package opportunities

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/volunteer-bridge/backend/internal/apperr"
	"github.com/volunteer-bridge/backend/internal/matching"
	"github.com/volunteer-bridge/backend/internal/middleware"
	"github.com/volunteer-bridge/backend/internal/models"
)

type memStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]models.Opportunity
}

func newMemStore() *memStore { return &memStore{items: map[uuid.UUID]models.Opportunity{}} }

func (m *memStore) Create(_ context.Context, o *models.Opportunity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.ID = uuid.New()
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	m.items[o.ID] = *o
	return nil
}

func (m *memStore) GetByID(_ context.Context, id uuid.UUID) (*models.Opportunity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("opportunity")
	}
	return &o, nil
}

func (m *memStore) List(_ context.Context, status models.OpportunityStatus) ([]models.Opportunity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Opportunity, 0)
	for _, o := range m.items {
		if status == "" || o.Status == status {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (m *memStore) ListByOrganization(_ context.Context, orgID uuid.UUID) ([]models.Opportunity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Opportunity, 0)
	for _, o := range m.items {
		if o.OrganizationID == orgID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memStore) Update(_ context.Context, o *models.Opportunity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[o.ID]; !ok {
		return apperr.NotFound("opportunity")
	}
	m.items[o.ID] = *o
	return nil
}

func (m *memStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return apperr.NotFound("opportunity")
	}
	delete(m.items, id)
	return nil
}

type userDir map[uuid.UUID]models.User

func (d userDir) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := d[id]
	if !ok {
		return nil, apperr.NotFound("user")
	}
	return &u, nil
}

func (d userDir) ListVolunteers(context.Context) ([]models.User, error) {
	out := make([]models.User, 0)
	for _, u := range d {
		if u.Role.IsVolunteer() {
			out = append(out, u)
		}
	}
	return out, nil
}

type countingNotifier struct {
	mu   sync.Mutex
	sent map[uuid.UUID]int
}

func (n *countingNotifier) Notify(_ context.Context, userID uuid.UUID, _, _ string, _ *uuid.UUID) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent[userID]++
	return nil
}

type fixture struct {
	svc      *Service
	store    *memStore
	notifier *countingNotifier
	org      models.User
	alice    models.User
	bob      models.User
}

func newFixture() *fixture {
	f := &fixture{
		store:    newMemStore(),
		notifier: &countingNotifier{sent: map[uuid.UUID]int{}},
		org:      models.User{ID: uuid.New(), Role: models.RoleOrganization},
		alice:    models.User{ID: uuid.New(), Role: models.RoleVolunteer, Skills: []string{"A", "B"}},
		bob:      models.User{ID: uuid.New(), Role: models.RoleVolunteer, Skills: []string{"A"}},
	}
	dir := userDir{f.org.ID: f.org, f.alice.ID: f.alice, f.bob.ID: f.bob}
	matcher := matching.NewService(dir, f.notifier, nil, false, nil)
	f.svc = NewService(f.store, dir, matcher, nil)
	return f
}

func validInput() Input {
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	return Input{
		Title:          "Tutoring",
		RequiredSkills: []string{"A", "B", "A"},
		Category:       "EDUCATION",
		StartDate:      start,
		EndDate:        start.Add(3 * time.Hour),
	}
}

func TestCreate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	o, err := f.svc.Create(ctx, f.org.ID, validInput())
	require.NoError(t, err)
	assert.Equal(t, models.OpportunityOpen, o.Status)
	assert.Equal(t, []string{"A", "B"}, o.RequiredSkills)
	assert.Equal(t, 1, o.MaxVolunteers)

	tests := []struct {
		name string
		edit func(*Input)
	}{
		{"blank title", func(in *Input) { in.Title = "  " }},
		{"end before start", func(in *Input) { in.EndDate = in.StartDate.Add(-time.Hour) }},
		{"end equals start", func(in *Input) { in.EndDate = in.StartDate }},
		{"missing start", func(in *Input) { in.StartDate = time.Time{} }},
		{"bad category", func(in *Input) { in.Category = "SPORTS" }},
		{"negative capacity", func(in *Input) { in.MaxVolunteers = -2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.edit(&in)
			_, err := f.svc.Create(ctx, f.org.ID, in)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
}

func TestOwnership(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	o, err := f.svc.Create(ctx, f.org.ID, validInput())
	require.NoError(t, err)
	other := uuid.New()

	_, err = f.svc.Update(ctx, other, o.ID, validInput())
	assert.Equal(t, apperr.KindPermission, apperr.KindOf(err))
	_, err = f.svc.SetStatus(ctx, other, o.ID, "FILLED")
	assert.Equal(t, apperr.KindPermission, apperr.KindOf(err))
	assert.Equal(t, apperr.KindPermission, apperr.KindOf(f.svc.Delete(ctx, other, o.ID)))
	_, err = f.svc.Matches(ctx, other, o.ID, false)
	assert.Equal(t, apperr.KindPermission, apperr.KindOf(err))

	_, err = f.svc.SetStatus(ctx, f.org.ID, o.ID, "DONE")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	updated, err := f.svc.SetStatus(ctx, f.org.ID, o.ID, "filled")
	require.NoError(t, err)
	assert.Equal(t, models.OpportunityFilled, updated.Status)

	in := validInput()
	in.Title = "Evening tutoring"
	updated, err = f.svc.Update(ctx, f.org.ID, o.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Evening tutoring", updated.Title)
	assert.Equal(t, models.OpportunityFilled, updated.Status, "update keeps status")

	require.NoError(t, f.svc.Delete(ctx, f.org.ID, o.ID))
	_, err = f.svc.Get(ctx, o.ID)
	assert.True(t, apperr.IsNotFound(err))
}

func TestMatchesAndRecommended(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	o, err := f.svc.Create(ctx, f.org.ID, validInput())
	require.NoError(t, err)

	res, err := f.svc.Matches(ctx, f.org.ID, o.ID, false)
	require.NoError(t, err)
	require.Len(t, res.Matches, 2)
	assert.Equal(t, f.alice.ID, res.Matches[0].Volunteer.ID)
	assert.Equal(t, 2, res.Matches[0].Score)
	assert.Equal(t, f.bob.ID, res.Matches[1].Volunteer.ID)
	assert.Zero(t, res.Notified)
	assert.Empty(t, f.notifier.sent)

	res, err = f.svc.Matches(ctx, f.org.ID, o.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Notified)

	recs, err := f.svc.Recommended(ctx, f.bob.ID)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 1, recs[0].Score)

	_, err = f.svc.SetStatus(ctx, f.org.ID, o.ID, "CANCELLED")
	require.NoError(t, err)
	recs, err = f.svc.Recommended(ctx, f.bob.ID)
	require.NoError(t, err)
	assert.Empty(t, recs)

	_, err = f.svc.Recommended(ctx, f.org.ID)
	assert.Equal(t, apperr.KindPermission, apperr.KindOf(err))
}

func TestList_StatusFilter(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.svc.Create(ctx, f.org.ID, validInput())
	require.NoError(t, err)

	open, err := f.svc.List(ctx, "open")
	require.NoError(t, err)
	assert.Len(t, open, 1)
	_, err = f.svc.List(ctx, "bogus")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestHandler_CreateAndMatches(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newFixture()
	h := NewHandler(f.svc, nil)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(middleware.ContextUserID, f.org.ID) })
	r.POST("/opportunities", h.Create)
	r.GET("/opportunities/:id/matches", h.Matches)

	body, _ := json.Marshal(validInput())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/opportunities", bytes.NewReader(body)))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data models.Opportunity `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/opportunities/"+created.Data.ID.String()+"/matches?notify=1", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var matched struct {
		Data struct {
			Matches []struct {
				Volunteer map[string]any `json:"volunteer"`
				Score     int            `json:"score"`
			} `json:"matches"`
			Notified int `json:"notified"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &matched))
	require.Len(t, matched.Data.Matches, 2)
	assert.Equal(t, 2, matched.Data.Matches[0].Score)
	assert.Equal(t, true, matched.Data.Matches[0].Volunteer["is_volunteer"])
	assert.Equal(t, 2, matched.Data.Notified)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/opportunities", bytes.NewReader([]byte(`{"title":""}`))))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
