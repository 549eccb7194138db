package hours

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/volunteer-bridge/backend/internal/apperr"
	"github.com/volunteer-bridge/backend/internal/middleware"
	"github.com/volunteer-bridge/backend/internal/models"
	"github.com/volunteer-bridge/backend/pkg/response"
)

// Handler handles volunteer-hour HTTP endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a volunteer-hour handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) fail(c *gin.Context, err error, msg string) {
	if apperr.KindOf(err) == "" {
		h.logger.Error(msg, zap.Error(err))
	}
	response.Error(c, err, msg)
}

// Log handles POST /volunteer-hours (volunteer only).
func (h *Handler) Log(c *gin.Context) {
	var in LogInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	entry, err := h.svc.Log(c.Request.Context(), userID, in)
	if err != nil {
		h.fail(c, err, "failed to log hours")
		return
	}
	response.Created(c, entry)
}

// List handles GET /volunteer-hours.
func (h *Handler) List(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	role := models.Role(c.GetString(middleware.ContextUserRole))
	list, err := h.svc.List(c.Request.Context(), userID, role)
	if err != nil {
		h.fail(c, err, "failed to list hours")
		return
	}
	response.OK(c, list)
}

// Verify handles POST /volunteer-hours/:id/verify.
func (h *Handler) Verify(c *gin.Context) {
	h.setVerified(c, true)
}

// Unverify handles POST /volunteer-hours/:id/unverify.
func (h *Handler) Unverify(c *gin.Context) {
	h.setVerified(c, false)
}

func (h *Handler) setVerified(c *gin.Context, verified bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid volunteer hours id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	var entry *models.VolunteerHour
	if verified {
		entry, err = h.svc.Verify(c.Request.Context(), userID, id)
	} else {
		entry, err = h.svc.Unverify(c.Request.Context(), userID, id)
	}
	if err != nil {
		h.fail(c, err, "failed to update verification")
		return
	}
	response.OK(c, entry)
}

// Export handles POST /opportunities/:id/hours/export (owner only).
func (h *Handler) Export(c *gin.Context) {
	oppID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid opportunity id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	res, err := h.svc.Export(c.Request.Context(), userID, oppID)
	if err != nil {
		if errors.Is(err, ErrExportUnavailable) {
			response.ServiceUnavailable(c, err.Error())
			return
		}
		h.fail(c, err, "failed to export hours")
		return
	}
	response.OK(c, res)
}
