package auth

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/volunteer-bridge/backend/internal/apperr"
	"github.com/volunteer-bridge/backend/internal/models"
	"github.com/volunteer-bridge/backend/pkg/response"
	"github.com/volunteer-bridge/backend/pkg/utils"
)

// UserStore is what registration and login need from the user repository.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, p models.CreateUserParams) (*models.User, error)
}

// RegisterRequest is the body for POST /auth/register. Either role or one of the
// is_volunteer / is_organization flags selects the account role.
type RegisterRequest struct {
	Email          string   `json:"email" binding:"required,email"`
	Password       string   `json:"password" binding:"required,min=6"`
	FullName       string   `json:"full_name" binding:"required,max=255"`
	Role           string   `json:"role"`
	IsVolunteer    bool     `json:"is_volunteer"`
	IsOrganization bool     `json:"is_organization"`
	Skills         []string `json:"skills" binding:"omitempty,dive,max=100"`
	Interests      []string `json:"interests" binding:"omitempty,dive,max=100"`
	Phone          string   `json:"phone" binding:"max=20"`
	Address        string   `json:"address"`
	Bio            string   `json:"bio"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest is the body for POST /auth/refresh.
type RefreshRequest struct {
	Token string `json:"token" binding:"required"`
}

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	Token string            `json:"token"`
	User  models.UserPublic `json:"user"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	users  UserStore
	jwt    *JWTService
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(store UserStore, jwt *JWTService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{users: store, jwt: jwt, logger: logger}
}

func (r *RegisterRequest) role() (models.Role, error) {
	if r.Role != "" {
		if r.IsVolunteer || r.IsOrganization {
			flagRole, err := models.RoleFromFlags(r.IsVolunteer, r.IsOrganization)
			if err != nil {
				return "", err
			}
			if string(flagRole) != r.Role {
				return "", models.ErrConflictRole
			}
		}
		return models.ParseRole(r.Role)
	}
	return models.RoleFromFlags(r.IsVolunteer, r.IsOrganization)
}

// Register handles POST /auth/register.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	role, err := req.role()
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("hash password failed", zap.Error(err))
		response.Internal(c, "failed to hash password")
		return
	}

	user, err := h.users.Create(c.Request.Context(), models.CreateUserParams{
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		Role:         role,
		Skills:       models.NormalizeTags(req.Skills),
		Interests:    models.NormalizeTags(req.Interests),
		Phone:        req.Phone,
		Address:      req.Address,
		Bio:          req.Bio,
	})
	if err != nil {
		if apperr.KindOf(err) == "" {
			h.logger.Error("create user failed", zap.Error(err))
		}
		response.Error(c, err, "failed to create user")
		return
	}

	token, err := h.jwt.Generate(user)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}
	h.logger.Info("user registered", zap.String("user_id", user.ID.String()), zap.String("role", string(user.Role)))
	response.Created(c, TokenResponse{Token: token, User: user.ToPublic()})
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, apperr.NotFound("user")) {
			h.logger.Error("lookup user failed", zap.Error(err))
		}
		response.Unauthorized(c, "invalid email or password")
		return
	}
	if !utils.CheckPassword(req.Password, user.Password) {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	token, err := h.jwt.Generate(user)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}
	response.OK(c, TokenResponse{Token: token, User: user.ToPublic()})
}

// Refresh handles POST /auth/refresh.
func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	token, err := h.jwt.Refresh(req.Token)
	if err != nil {
		response.Unauthorized(c, "invalid or expired token")
		return
	}
	response.OK(c, gin.H{"token": token})
}
