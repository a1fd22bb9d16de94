package tasks

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gestaodobem/backend/internal/middleware"
	"github.com/gestaodobem/backend/internal/models"
	"github.com/gestaodobem/backend/pkg/response"
	"github.com/gestaodobem/backend/pkg/utils"
)

// Handler handles task HTTP endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a tasks handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// CreateTaskRequest is the body for POST /tasks.
type CreateTaskRequest struct {
	Title       string              `json:"title" binding:"required,max=255"`
	Description string              `json:"description" binding:"required"`
	DueDate     string              `json:"dueDate" binding:"required"`
	Priority    models.TaskPriority `json:"priority" binding:"omitempty,oneof=baixa média alta urgente"`
	Status      models.TaskStatus   `json:"status" binding:"omitempty,oneof=todo in-progress done"`
	AssigneeID  *uuid.UUID          `json:"assigneeId"`
}

// UpdateTaskRequest is the body for PATCH /tasks/:id. An explicit null
// assigneeId unassigns the task.
type UpdateTaskRequest struct {
	Title       *string              `json:"title" binding:"omitempty,max=255"`
	Description *string              `json:"description"`
	DueDate     *string              `json:"dueDate"`
	Priority    *models.TaskPriority `json:"priority" binding:"omitempty,oneof=baixa média alta urgente"`
	Status      *models.TaskStatus   `json:"status" binding:"omitempty,oneof=todo in-progress done"`
	AssigneeID  models.OptionalUUID  `json:"assigneeId"`
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return uuid.Nil, false
	}
	return id, true
}

// Create handles POST /tasks.
func (h *Handler) Create(c *gin.Context) {
	sess := middleware.MustSession(c)
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	due, err := utils.ParseDate(req.DueDate)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	t, err := h.svc.Create(c.Request.Context(), sess, CreateInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     due,
		Priority:    req.Priority,
		Status:      req.Status,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, t)
}

// List handles GET /tasks.
func (h *Handler) List(c *gin.Context) {
	sess := middleware.MustSession(c)
	list, err := h.svc.List(c.Request.Context(), sess.OrganizationID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// Get handles GET /tasks/:id.
func (h *Handler) Get(c *gin.Context) {
	sess := middleware.MustSession(c)
	id, ok := parseID(c)
	if !ok {
		return
	}
	t, err := h.svc.Get(c.Request.Context(), sess.OrganizationID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, t)
}

// Update handles PATCH /tasks/:id.
func (h *Handler) Update(c *gin.Context) {
	sess := middleware.MustSession(c)
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	in := UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		AssigneeID:  req.AssigneeID,
	}
	if req.DueDate != nil {
		due, err := utils.ParseDate(*req.DueDate)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		in.DueDate = &due
	}
	t, err := h.svc.Update(c.Request.Context(), sess.OrganizationID, id, in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, t)
}

// Remove handles DELETE /tasks/:id.
func (h *Handler) Remove(c *gin.Context) {
	sess := middleware.MustSession(c)
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Remove(c.Request.Context(), sess.OrganizationID, id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"message": "task deleted"})
}

