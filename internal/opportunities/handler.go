package opportunities

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/volunteer-bridge/backend/internal/apperr"
	"github.com/volunteer-bridge/backend/internal/middleware"
	"github.com/volunteer-bridge/backend/pkg/response"
)

// StatusRequest is the body for PATCH /opportunities/:id/status.
type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// Handler handles opportunity HTTP endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates an opportunity handler.
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

// List handles GET /opportunities[?status=OPEN].
func (h *Handler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		h.fail(c, err, "failed to list opportunities")
		return
	}
	response.OK(c, list)
}

// Get handles GET /opportunities/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid opportunity id")
		return
	}
	o, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "failed to get opportunity")
		return
	}
	response.OK(c, o)
}

// Create handles POST /opportunities (organization only).
func (h *Handler) Create(c *gin.Context) {
	var in Input
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	orgID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	o, err := h.svc.Create(c.Request.Context(), orgID, in)
	if err != nil {
		h.fail(c, err, "failed to create opportunity")
		return
	}
	response.Created(c, o)
}

// Update handles PUT /opportunities/:id (owner only).
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid opportunity id")
		return
	}
	var in Input
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	callerID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	o, err := h.svc.Update(c.Request.Context(), callerID, id, in)
	if err != nil {
		h.fail(c, err, "failed to update opportunity")
		return
	}
	response.OK(c, o)
}

// SetStatus handles PATCH /opportunities/:id/status (owner only).
func (h *Handler) SetStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid opportunity id")
		return
	}
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	callerID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	o, err := h.svc.SetStatus(c.Request.Context(), callerID, id, req.Status)
	if err != nil {
		h.fail(c, err, "failed to update status")
		return
	}
	response.OK(c, o)
}

// Delete handles DELETE /opportunities/:id (owner only).
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid opportunity id")
		return
	}
	callerID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	if err := h.svc.Delete(c.Request.Context(), callerID, id); err != nil {
		h.fail(c, err, "failed to delete opportunity")
		return
	}
	response.NoContent(c)
}

// ListMine handles GET /opportunities/organization.
func (h *Handler) ListMine(c *gin.Context) {
	orgID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	list, err := h.svc.ListForOrganization(c.Request.Context(), orgID)
	if err != nil {
		h.fail(c, err, "failed to list opportunities")
		return
	}
	response.OK(c, list)
}

// Recommended handles GET /opportunities/recommended (volunteer only).
func (h *Handler) Recommended(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	recs, err := h.svc.Recommended(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err, "failed to load recommendations")
		return
	}
	response.OK(c, recs)
}

// Matches handles GET /opportunities/:id/matches[?notify=1] (owner only).
func (h *Handler) Matches(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid opportunity id")
		return
	}
	callerID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	notify := c.Query("notify") == "1" || c.Query("notify") == "true"
	res, err := h.svc.Matches(c.Request.Context(), callerID, id, notify)
	if err != nil {
		h.fail(c, err, "failed to match volunteers")
		return
	}
	response.OK(c, res)
}
