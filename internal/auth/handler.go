package auth

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gestaodobem/backend/internal/middleware"
	"github.com/gestaodobem/backend/pkg/response"
)

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest is the body for PATCH /auth/profile.
type UpdateProfileRequest struct {
	FullName        *string `json:"fullName" binding:"omitempty,max=255"`
	Email           *string `json:"email" binding:"omitempty,email"`
	Phone           *string `json:"phone" binding:"omitempty,max=32"`
	CurrentPassword string  `json:"currentPassword"`
	NewPassword     string  `json:"newPassword" binding:"omitempty,min=6"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	res, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// Profile handles GET /auth/profile.
func (h *Handler) Profile(c *gin.Context) {
	sess := middleware.MustSession(c)
	u, err := h.svc.Profile(c.Request.Context(), sess.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, u)
}

// UpdateProfile handles PATCH /auth/profile.
func (h *Handler) UpdateProfile(c *gin.Context) {
	sess := middleware.MustSession(c)
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	u, err := h.svc.UpdateProfile(c.Request.Context(), sess.UserID, ProfileUpdate{
		FullName:        req.FullName,
		Email:           req.Email,
		Phone:           req.Phone,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, u)
}
