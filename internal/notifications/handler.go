package notifications

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/volunteer-bridge/backend/internal/middleware"
	"github.com/volunteer-bridge/backend/pkg/response"
)

// Handler handles notification HTTP endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a notification handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// List handles GET /notifications[?unread=1].
func (h *Handler) List(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	unread := c.Query("unread") == "1" || c.Query("unread") == "true"
	list, err := h.svc.List(c.Request.Context(), userID, unread)
	if err != nil {
		response.Error(c, err, "failed to list notifications")
		return
	}
	response.OK(c, list)
}

// MarkRead handles POST /notifications/:id/read.
func (h *Handler) MarkRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid notification id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	n, err := h.svc.MarkRead(c.Request.Context(), id, userID)
	if err != nil {
		response.Error(c, err, "failed to mark notification read")
		return
	}
	response.OK(c, n)
}

// MarkAllRead handles POST /notifications/read-all.
func (h *Handler) MarkAllRead(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	n, err := h.svc.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err, "failed to mark notifications read")
		return
	}
	response.OK(c, gin.H{"updated": n})
}
