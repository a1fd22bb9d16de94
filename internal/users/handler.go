package users

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gestaodobem/backend/internal/middleware"
	"github.com/gestaodobem/backend/internal/models"
	"github.com/gestaodobem/backend/pkg/response"
)

// Handler handles user management HTTP endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a users handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// CreateUserRequest is the body for POST /users.
type CreateUserRequest struct {
	FullName string            `json:"fullName" binding:"required,max=255"`
	Email    string            `json:"email" binding:"required,email"`
	Password string            `json:"password" binding:"required,min=6"`
	Phone    *string           `json:"phone" binding:"omitempty,max=32"`
	Role     models.Role       `json:"role" binding:"omitempty,oneof=admin coordinator volunteer organization"`
	Status   models.UserStatus `json:"status" binding:"omitempty,oneof=active inactive"`
	Skills   models.SkillList  `json:"skills"`
}

// UpdateUserRequest is the body for PATCH /users/:id.
type UpdateUserRequest struct {
	FullName *string           `json:"fullName" binding:"omitempty,max=255"`
	Email    *string           `json:"email" binding:"omitempty,email"`
	Phone    *string           `json:"phone" binding:"omitempty,max=32"`
	Role     *models.Role      `json:"role" binding:"omitempty,oneof=admin coordinator volunteer organization"`
	Skills   *models.SkillList `json:"skills"`
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return uuid.Nil, false
	}
	return id, true
}

// Create handles POST /users.
func (h *Handler) Create(c *gin.Context) {
	sess := middleware.MustSession(c)
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	u, err := h.svc.Create(c.Request.Context(), sess, CreateInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Role:     req.Role,
		Status:   req.Status,
		Skills:   req.Skills,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, u)
}

// List handles GET /users.
func (h *Handler) List(c *gin.Context) {
	sess := middleware.MustSession(c)
	list, err := h.svc.List(c.Request.Context(), sess.OrganizationID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// Get handles GET /users/:id.
func (h *Handler) Get(c *gin.Context) {
	sess := middleware.MustSession(c)
	id, ok := parseID(c)
	if !ok {
		return
	}
	u, err := h.svc.Get(c.Request.Context(), sess.OrganizationID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, u)
}

// Update handles PATCH /users/:id.
func (h *Handler) Update(c *gin.Context) {
	sess := middleware.MustSession(c)
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	in := UpdateInput{FullName: req.FullName, Email: req.Email, Phone: req.Phone, Role: req.Role}
	if req.Skills != nil {
		skills := []models.SkillInput(*req.Skills)
		in.Skills = &skills
	}
	u, err := h.svc.Update(c.Request.Context(), sess, id, in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, u)
}

// Remove handles DELETE /users/:id.
func (h *Handler) Remove(c *gin.Context) {
	sess := middleware.MustSession(c)
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Remove(c.Request.Context(), sess, id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"message": "user deleted"})
}

// ToggleStatus handles PATCH /users/:id/status.
func (h *Handler) ToggleStatus(c *gin.Context) {
	sess := middleware.MustSession(c)
	id, ok := parseID(c)
	if !ok {
		return
	}
	u, err := h.svc.ToggleStatus(c.Request.Context(), sess, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, u)
}

// Skills handles GET /skills.
func (h *Handler) Skills(c *gin.Context) {
	list, err := h.svc.Skills(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}
