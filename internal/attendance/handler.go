package attendance

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/volunteer-bridge/backend/internal/apperr"
	"github.com/volunteer-bridge/backend/internal/middleware"
	"github.com/volunteer-bridge/backend/pkg/response"
)

// Handler handles RSVP HTTP endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates an attendance handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// RSVP handles POST /events/:id/rsvp and POST /events/:id/attend. Both run capacity-checked admission.
func (h *Handler) RSVP(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	rsvp, err := h.svc.RequestAttendance(c.Request.Context(), eventID, userID)
	if err != nil {
		if apperr.KindOf(err) == "" {
			h.logger.Error("rsvp failed", zap.Error(err), zap.String("event_id", eventID.String()))
		}
		response.Error(c, err, "failed to rsvp")
		return
	}
	response.Created(c, rsvp)
}

// Cancel handles DELETE /events/:id/rsvp.
func (h *Handler) Cancel(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	rsvp, err := h.svc.Cancel(c.Request.Context(), eventID, userID)
	if err != nil {
		if apperr.KindOf(err) == "" {
			h.logger.Error("cancel rsvp failed", zap.Error(err), zap.String("event_id", eventID.String()))
		}
		response.Error(c, err, "failed to cancel rsvp")
		return
	}
	response.OK(c, rsvp)
}

// ListByEvent handles GET /events/:id/rsvps (event creator only).
func (h *Handler) ListByEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	list, err := h.svc.ListForEvent(c.Request.Context(), eventID, userID)
	if err != nil {
		response.Error(c, err, "failed to list rsvps")
		return
	}
	response.OK(c, list)
}

// ListMine handles GET /rsvps/mine.
func (h *Handler) ListMine(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	list, err := h.svc.ListForUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err, "failed to list rsvps")
		return
	}
	response.OK(c, list)
}
