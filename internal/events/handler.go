package events

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gestaodobem/backend/internal/middleware"
	"github.com/gestaodobem/backend/internal/models"
	"github.com/gestaodobem/backend/pkg/response"
	"github.com/gestaodobem/backend/pkg/utils"
)

// Handler handles event HTTP endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates an events handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// CreateEventRequest is the body for POST /events.
type CreateEventRequest struct {
	Title           string             `json:"title" binding:"required,max=255"`
	Description     string             `json:"description"`
	EventDate       string             `json:"eventDate" binding:"required"`
	EventTime       string             `json:"eventTime" binding:"required,hhmm"`
	Location        string             `json:"location" binding:"required,max=255"`
	MaxParticipants int                `json:"maxParticipants" binding:"omitempty,min=1"`
	Status          models.EventStatus `json:"status" binding:"omitempty,oneof=planned confirmed cancelled completed"`
}

// UpdateEventRequest is the body for PATCH /events/:id.
type UpdateEventRequest struct {
	Title           *string             `json:"title" binding:"omitempty,max=255"`
	Description     *string             `json:"description"`
	EventDate       *string             `json:"eventDate"`
	EventTime       *string             `json:"eventTime" binding:"omitempty,hhmm"`
	Location        *string             `json:"location" binding:"omitempty,max=255"`
	MaxParticipants *int                `json:"maxParticipants" binding:"omitempty,min=1"`
	Status          *models.EventStatus `json:"status" binding:"omitempty,oneof=planned confirmed cancelled completed"`
}

// ParseID reads the :id path parameter, answering 400 when it is not a UUID.
func ParseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return uuid.Nil, false
	}
	return id, true
}

// Create handles POST /events.
func (h *Handler) Create(c *gin.Context) {
	sess := middleware.MustSession(c)
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	date, err := utils.ParseDate(req.EventDate)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	e, err := h.svc.Create(c.Request.Context(), sess, CreateInput{
		Title:           req.Title,
		Description:     req.Description,
		EventDate:       date,
		EventTime:       req.EventTime,
		Location:        req.Location,
		MaxParticipants: req.MaxParticipants,
		Status:          req.Status,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, e)
}

// List handles GET /events.
func (h *Handler) List(c *gin.Context) {
	sess := middleware.MustSession(c)
	list, err := h.svc.List(c.Request.Context(), sess.OrganizationID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// Get handles GET /events/:id.
func (h *Handler) Get(c *gin.Context) {
	sess := middleware.MustSession(c)
	id, ok := ParseID(c)
	if !ok {
		return
	}
	e, err := h.svc.Get(c.Request.Context(), sess.OrganizationID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, e)
}

// Update handles PATCH /events/:id.
func (h *Handler) Update(c *gin.Context) {
	sess := middleware.MustSession(c)
	id, ok := ParseID(c)
	if !ok {
		return
	}
	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	in := UpdateInput{
		Title:           req.Title,
		Description:     req.Description,
		EventTime:       req.EventTime,
		Location:        req.Location,
		MaxParticipants: req.MaxParticipants,
		Status:          req.Status,
	}
	if req.EventDate != nil {
		date, err := utils.ParseDate(*req.EventDate)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		in.EventDate = &date
	}
	e, err := h.svc.Update(c.Request.Context(), sess.OrganizationID, id, in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, e)
}

// Remove handles DELETE /events/:id.
func (h *Handler) Remove(c *gin.Context) {
	sess := middleware.MustSession(c)
	id, ok := ParseID(c)
	if !ok {
		return
	}
	if err := h.svc.Remove(c.Request.Context(), sess.OrganizationID, id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"message": "event deleted"})
}

// Register handles POST /events/:id/register for the caller.
func (h *Handler) Register(c *gin.Context) {
	sess := middleware.MustSession(c)
	id, ok := ParseID(c)
	if !ok {
		return
	}
	res, err := h.svc.RegisterVolunteer(c.Request.Context(), sess.OrganizationID, id, sess.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// Unregister handles DELETE /events/:id/unregister for the caller.
func (h *Handler) Unregister(c *gin.Context) {
	sess := middleware.MustSession(c)
	id, ok := ParseID(c)
	if !ok {
		return
	}
	res, err := h.svc.UnregisterVolunteer(c.Request.Context(), sess.OrganizationID, id, sess.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}
