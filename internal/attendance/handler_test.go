package attendance

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/volunteer-bridge/backend/internal/apperr"
	"github.com/volunteer-bridge/backend/internal/middleware"
	"github.com/volunteer-bridge/backend/internal/models"
	"github.com/volunteer-bridge/backend/pkg/response"
)

func newTestRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(svc, nil)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, uuid.MustParse(c.GetHeader("X-User")))
	})
	r.POST("/events/:id/rsvp", h.RSVP)
	r.POST("/events/:id/attend", h.RSVP)
	r.DELETE("/events/:id/rsvp", h.Cancel)
	r.GET("/events/:id/rsvps", h.ListByEvent)
	r.GET("/rsvps/mine", h.ListMine)
	return r
}

func call(r http.Handler, method, path string, user uuid.UUID) (*httptest.ResponseRecorder, response.Body) {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("X-User", user.String())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var body response.Body
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestHandler_RSVPFlow(t *testing.T) {
	store := NewInMemoryStore()
	r := newTestRouter(NewService(store, &fakeNotifier{}, nil))
	ev := newEvent(store, 1, false)
	path := "/events/" + ev.ID.String()
	user1, user2 := uuid.New(), uuid.New()

	w, body := call(r, http.MethodPost, path+"/rsvp", user1)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, body.Success)
	assert.Equal(t, string(models.RSVPAttending), body.Data.(map[string]any)["status"])

	w, body = call(r, http.MethodPost, path+"/attend", user1)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperr.KindDuplicateRSVP, body.Kind)

	w, body = call(r, http.MethodPost, path+"/rsvp", user2)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperr.KindEventFull, body.Kind)

	w, _ = call(r, http.MethodGet, path+"/rsvps", user1)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, body = call(r, http.MethodGet, path+"/rsvps", ev.CreatedBy)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body.Data, 1)

	w, body = call(r, http.MethodDelete, path+"/rsvp", user1)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(models.RSVPCancelled), body.Data.(map[string]any)["status"])

	w, body = call(r, http.MethodGet, "/rsvps/mine", user1)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body.Data, 1)
}

func TestHandler_BadInput(t *testing.T) {
	r := newTestRouter(NewService(NewInMemoryStore(), &fakeNotifier{}, nil))

	w, body := call(r, http.MethodPost, "/events/not-a-uuid/rsvp", uuid.New())
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperr.KindValidation, body.Kind)

	w, body = call(r, http.MethodPost, "/events/"+uuid.NewString()+"/rsvp", uuid.New())
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperr.KindNotFound, body.Kind)
}
