package users

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/volunteer-bridge/backend/internal/middleware"
	"github.com/volunteer-bridge/backend/internal/models"
	"github.com/volunteer-bridge/backend/pkg/response"
)

// Store is the subset of Repository the profile handler needs.
type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, p ProfileUpdate) (*models.User, error)
}

// UpdateProfileRequest is the body for PUT /profile.
type UpdateProfileRequest struct {
	FullName  *string  `json:"full_name" binding:"omitempty,min=1,max=255"`
	Skills    []string `json:"skills" binding:"omitempty,dive,max=100"`
	Interests []string `json:"interests" binding:"omitempty,dive,max=100"`
	Phone     *string  `json:"phone" binding:"omitempty,max=20"`
	Address   *string  `json:"address"`
	Bio       *string  `json:"bio"`
}

// Handler serves the caller's profile.
type Handler struct {
	store  Store
	logger *zap.Logger
}

// NewHandler creates a profile handler.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, logger: logger}
}

// GetProfile handles GET /profile.
func (h *Handler) GetProfile(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	u, err := h.store.GetByID(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err, "failed to load profile")
		return
	}
	response.OK(c, u.ToPublic())
}

// UpdateProfile handles PUT /profile. Role is not editable.
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.FullName != nil && strings.TrimSpace(*req.FullName) == "" {
		response.BadRequest(c, "full_name cannot be empty")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	upd := ProfileUpdate{
		FullName: req.FullName,
		Phone:    req.Phone,
		Address:  req.Address,
		Bio:      req.Bio,
	}
	if req.Skills != nil {
		upd.Skills = models.NormalizeTags(req.Skills)
	}
	if req.Interests != nil {
		upd.Interests = models.NormalizeTags(req.Interests)
	}
	u, err := h.store.UpdateProfile(c.Request.Context(), userID, upd)
	if err != nil {
		h.logger.Error("update profile failed", zap.Error(err), zap.String("user_id", userID.String()))
		response.Error(c, err, "failed to update profile")
		return
	}
	response.OK(c, u.ToPublic())
}
