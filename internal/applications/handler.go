package applications

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/volunteer-bridge/backend/internal/apperr"
	"github.com/volunteer-bridge/backend/internal/middleware"
	"github.com/volunteer-bridge/backend/pkg/response"
)

// ApplyRequest is the body for POST /opportunities/:id/apply.
type ApplyRequest struct {
	Message string `json:"message" binding:"max=2000"`
}

// StatusRequest is the body for PATCH /applications/:id.
type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// Handler handles application HTTP endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates an application handler.
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

// Apply handles POST /opportunities/:id/apply (volunteer only).
func (h *Handler) Apply(c *gin.Context) {
	oppID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid opportunity id")
		return
	}
	var req ApplyRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid request: "+err.Error())
			return
		}
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	a, err := h.svc.Apply(c.Request.Context(), userID, oppID, req.Message)
	if err != nil {
		h.fail(c, err, "failed to apply")
		return
	}
	response.Created(c, a)
}

// ListByOpportunity handles GET /opportunities/:id/applications (owner only).
func (h *Handler) ListByOpportunity(c *gin.Context) {
	oppID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid opportunity id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	list, err := h.svc.ListForOpportunity(c.Request.Context(), userID, oppID)
	if err != nil {
		h.fail(c, err, "failed to list applications")
		return
	}
	response.OK(c, list)
}

// ListMine handles GET /applications/volunteer.
func (h *Handler) ListMine(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	list, err := h.svc.ListForVolunteer(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err, "failed to list applications")
		return
	}
	response.OK(c, list)
}

// ListOrganization handles GET /applications/organization.
func (h *Handler) ListOrganization(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	list, err := h.svc.ListForOrganization(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err, "failed to list applications")
		return
	}
	response.OK(c, list)
}

// UpdateStatus handles PATCH /applications/:id (opportunity owner only).
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid application id")
		return
	}
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	a, err := h.svc.UpdateStatus(c.Request.Context(), userID, id, req.Status)
	if err != nil {
		h.fail(c, err, "failed to update application")
		return
	}
	response.OK(c, a)
}
