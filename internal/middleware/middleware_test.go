package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/volunteer-bridge/backend/internal/auth"
	"github.com/volunteer-bridge/backend/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func do(r http.Handler, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAndRequireRole(t *testing.T) {
	jwtSvc := auth.NewJWTService("secret", 1)
	org := &models.User{ID: uuid.New(), Email: "org@example.com", Role: models.RoleOrganization}
	vol := &models.User{ID: uuid.New(), Email: "vol@example.com", Role: models.RoleVolunteer}
	orgToken, err := jwtSvc.Generate(org)
	require.NoError(t, err)
	volToken, err := jwtSvc.Generate(vol)
	require.NoError(t, err)

	r := gin.New()
	r.POST("/opportunities", JWT(jwtSvc), RequireRole(models.RoleOrganization), func(c *gin.Context) {
		c.String(http.StatusOK, c.MustGet(ContextUserID).(uuid.UUID).String())
	})

	tests := []struct {
		name   string
		header map[string]string
		code   int
	}{
		{"missing header", nil, http.StatusUnauthorized},
		{"not bearer", map[string]string{"Authorization": "Basic abc"}, http.StatusUnauthorized},
		{"bad token", map[string]string{"Authorization": "Bearer nope"}, http.StatusUnauthorized},
		{"volunteer", map[string]string{"Authorization": "Bearer " + volToken}, http.StatusForbidden},
		{"organization", map[string]string{"Authorization": "Bearer " + orgToken}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/opportunities", tt.header)
			assert.Equal(t, tt.code, w.Code)
			if tt.code == http.StatusOK {
				assert.Equal(t, org.ID.String(), w.Body.String())
			}
		})
	}
}

func TestRequireRole_WithoutJWT(t *testing.T) {
	r := gin.New()
	r.GET("/x", RequireRole(models.RoleVolunteer), func(c *gin.Context) { c.Status(http.StatusOK) })
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/x", nil).Code)
}

func TestRateLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rl := NewRateLimiter(ctx, 0.001, 3, zap.NewNop())

	r := gin.New()
	r.Use(rl.Limit())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/x", nil).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodGet, "/x", nil).Code)
}

func TestRateLimiter_KeyedPerUser(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rl := NewRateLimiter(ctx, 0.001, 1, nil)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if id := c.GetHeader("X-User"); id != "" {
			c.Set(ContextUserID, uuid.MustParse(id))
		}
	}, rl.Limit())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	a, b := uuid.NewString(), uuid.NewString()
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/x", map[string]string{"X-User": a}).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodGet, "/x", map[string]string{"X-User": a}).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/x", map[string]string{"X-User": b}).Code)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS("http://localhost:3000, http://app.example.com"))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := do(r, http.MethodGet, "/x", map[string]string{"Origin": "http://app.example.com"})
	assert.Equal(t, "http://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(r, http.MethodGet, "/x", map[string]string{"Origin": "http://evil.example.com"})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = do(r, http.MethodOptions, "/x", map[string]string{"Origin": "http://localhost:3000"})
	assert.Equal(t, http.StatusNoContent, w.Code)
}
