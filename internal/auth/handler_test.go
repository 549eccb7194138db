package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/volunteer-bridge/backend/internal/apperr"
	"github.com/volunteer-bridge/backend/internal/models"
	"github.com/volunteer-bridge/backend/pkg/utils"
)

type memUsers struct {
	mu      sync.Mutex
	byEmail map[string]*models.User
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byEmail[strings.ToLower(email)]; ok {
		return u, nil
	}
	return nil, apperr.NotFound("user")
}

func (m *memUsers) Create(_ context.Context, p models.CreateUserParams) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(p.Email)
	if _, ok := m.byEmail[key]; ok {
		return nil, apperr.Conflict("email already registered")
	}
	u := &models.User{ID: uuid.New(), Email: p.Email, Password: p.PasswordHash, FullName: p.FullName,
		Role: p.Role, Skills: p.Skills, Interests: p.Interests, CreatedAt: time.Now()}
	m.byEmail[key] = u
	return u, nil
}

func newAuthRouter() (*gin.Engine, *memUsers) {
	gin.SetMode(gin.TestMode)
	utils.BcryptCost = bcrypt.MinCost
	store := &memUsers{byEmail: map[string]*models.User{}}
	h := NewHandler(store, NewJWTService("secret", 1), nil)
	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/refresh", h.Refresh)
	return r, store
}

func post(r http.Handler, path string, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegister(t *testing.T) {
	r, store := newAuthRouter()

	w := post(r, "/auth/register", map[string]any{
		"email": "vol@example.com", "password": "longenough", "full_name": "Val",
		"is_volunteer": true, "skills": []string{"A", "B", "A", ""},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var body struct {
		Data struct {
			Token string          `json:"token"`
			User  json.RawMessage `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Data.Token)
	assert.Contains(t, string(body.Data.User), `"is_volunteer":true`)
	assert.Contains(t, string(body.Data.User), `"is_organization":false`)
	assert.NotContains(t, string(body.Data.User), "password")
	assert.Equal(t, []string{"A", "B"}, store.byEmail["vol@example.com"].Skills)

	w = post(r, "/auth/register", map[string]any{
		"email": "org@example.com", "password": "longenough", "full_name": "Org", "role": "organization",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, models.RoleOrganization, store.byEmail["org@example.com"].Role)
}

func TestRegister_Rejects(t *testing.T) {
	r, _ := newAuthRouter()
	base := func(extra map[string]any) map[string]any {
		m := map[string]any{"email": "x@example.com", "password": "longenough", "full_name": "X"}
		for k, v := range extra {
			m[k] = v
		}
		return m
	}

	tests := []struct {
		name string
		body map[string]any
		code int
	}{
		{"no role", base(nil), http.StatusBadRequest},
		{"both flags", base(map[string]any{"is_volunteer": true, "is_organization": true}), http.StatusBadRequest},
		{"unknown role", base(map[string]any{"role": "admin"}), http.StatusBadRequest},
		{"role contradicts flag", base(map[string]any{"role": "volunteer", "is_organization": true}), http.StatusBadRequest},
		{"short password", base(map[string]any{"role": "volunteer", "password": "short"}), http.StatusBadRequest},
		{"bad email", base(map[string]any{"role": "volunteer", "email": "nope"}), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(r, "/auth/register", tt.body)
			assert.Equal(t, tt.code, w.Code, w.Body.String())
		})
	}

	require.Equal(t, http.StatusCreated, post(r, "/auth/register", base(map[string]any{"role": "volunteer"})).Code)
	w := post(r, "/auth/register", base(map[string]any{"role": "volunteer"}))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLogin(t *testing.T) {
	r, _ := newAuthRouter()
	require.Equal(t, http.StatusCreated, post(r, "/auth/register", map[string]any{
		"email": "vol@example.com", "password": "longenough", "full_name": "Val", "role": "volunteer",
	}).Code)

	assert.Equal(t, http.StatusOK, post(r, "/auth/login", map[string]any{"email": "vol@example.com", "password": "longenough"}).Code)
	assert.Equal(t, http.StatusUnauthorized, post(r, "/auth/login", map[string]any{"email": "vol@example.com", "password": "wrongpass"}).Code)
	assert.Equal(t, http.StatusUnauthorized, post(r, "/auth/login", map[string]any{"email": "nobody@example.com", "password": "longenough"}).Code)
}

func TestRefresh(t *testing.T) {
	r, _ := newAuthRouter()
	w := post(r, "/auth/register", map[string]any{
		"email": "vol@example.com", "password": "longenough", "full_name": "Val", "role": "volunteer",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var reg struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reg))

	w = post(r, "/auth/refresh", map[string]any{"token": reg.Data.Token})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var ref struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ref))
	assert.NotEmpty(t, ref.Data.Token)
	assert.NotEqual(t, reg.Data.Token, ref.Data.Token)

	claims, err := NewJWTService("secret", 1).Validate(ref.Data.Token)
	require.NoError(t, err)
	assert.Equal(t, "vol@example.com", claims.Email)
	assert.Equal(t, string(models.RoleVolunteer), claims.Role)

	assert.Equal(t, http.StatusUnauthorized, post(r, "/auth/refresh", map[string]any{"token": "garbage"}).Code)
	assert.Equal(t, http.StatusBadRequest, post(r, "/auth/refresh", map[string]any{}).Code)
}
