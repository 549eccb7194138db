package users

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/volunteer-bridge/backend/internal/apperr"
	"github.com/volunteer-bridge/backend/internal/middleware"
	"github.com/volunteer-bridge/backend/internal/models"
)

// memStore applies ProfileUpdate the way the SQL COALESCE does.
type memStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
	last  ProfileUpdate
}

func (m *memStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperr.NotFound("user")
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) UpdateProfile(_ context.Context, id uuid.UUID, p ProfileUpdate) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = p
	u, ok := m.users[id]
	if !ok {
		return nil, apperr.NotFound("user")
	}
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.Skills != nil {
		u.Skills = p.Skills
	}
	if p.Interests != nil {
		u.Interests = p.Interests
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Address != nil {
		u.Address = *p.Address
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	cp := *u
	return &cp, nil
}

func newProfileRouter(t *testing.T) (*gin.Engine, *memStore, uuid.UUID) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	id := uuid.New()
	store := &memStore{users: map[uuid.UUID]*models.User{
		id: {
			ID: id, Email: "vol@example.com", FullName: "Val Volunteer", Role: models.RoleVolunteer,
			Skills: []string{"first aid", "driving"}, Interests: []string{"health"}, Phone: "555-0100", Bio: "hello",
		},
	}}
	h := NewHandler(store, nil)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(middleware.ContextUserID, id) })
	r.GET("/profile", h.GetProfile)
	r.PUT("/profile", h.UpdateProfile)
	return r, store, id
}

func putProfile(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPut, "/profile", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeUser(t *testing.T, w *httptest.ResponseRecorder) models.UserPublic {
	t.Helper()
	var body struct {
		Data models.UserPublic `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Data
}

func TestGetProfile(t *testing.T) {
	r, _, id := newProfileRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/profile", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
	u := decodeUser(t, w)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, "Val Volunteer", u.FullName)
}

func TestUpdateProfile_PartialKeepsOtherFields(t *testing.T) {
	r, store, _ := newProfileRouter(t)

	w := putProfile(r, `{"bio":"weekends only"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Nil(t, store.last.FullName)
	assert.Nil(t, store.last.Skills)
	assert.Nil(t, store.last.Interests)
	assert.Nil(t, store.last.Phone)

	u := decodeUser(t, w)
	assert.Equal(t, "weekends only", u.Bio)
	assert.Equal(t, "Val Volunteer", u.FullName)
	assert.Equal(t, []string{"first aid", "driving"}, u.Skills)
	assert.Equal(t, []string{"health"}, u.Interests)
	assert.Equal(t, "555-0100", u.Phone)
}

func TestUpdateProfile_NormalizesTags(t *testing.T) {
	r, store, id := newProfileRouter(t)

	w := putProfile(r, `{"skills":["cooking","cooking","","first aid"]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{"cooking", "first aid"}, store.users[id].Skills)

	w = putProfile(r, `{"interests":[]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, store.users[id].Interests)
	assert.Equal(t, []string{"cooking", "first aid"}, store.users[id].Skills)
}

func TestUpdateProfile_RoleIsNotEditable(t *testing.T) {
	r, store, id := newProfileRouter(t)

	w := putProfile(r, `{"role":"organization","is_organization":true,"full_name":"Val V."}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.RoleVolunteer, store.users[id].Role)
	assert.Equal(t, "Val V.", store.users[id].FullName)
	assert.Equal(t, models.RoleVolunteer, decodeUser(t, w).Role)
}

func TestUpdateProfile_Rejects(t *testing.T) {
	r, store, id := newProfileRouter(t)
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"bio":`},
		{"empty full name", `{"full_name":"  "}`},
		{"long full name", `{"full_name":"` + strings.Repeat("x", 256) + `"}`},
		{"long phone", `{"phone":"012345678901234567890"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, putProfile(r, tt.body).Code)
		})
	}
	assert.Equal(t, "Val Volunteer", store.users[id].FullName)
	assert.Equal(t, "555-0100", store.users[id].Phone)
}
