package exports

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gestaodobem/backend/internal/events"
	"github.com/gestaodobem/backend/internal/middleware"
	"github.com/gestaodobem/backend/pkg/response"
)

// Handler handles roster export HTTP endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a roster exports handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Request handles POST /events/:id/roster-exports.
func (h *Handler) Request(c *gin.Context) {
	sess := middleware.MustSession(c)
	eventID, ok := events.ParseID(c)
	if !ok {
		return
	}
	x, err := h.svc.Request(c.Request.Context(), sess, eventID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, x)
}

// Get handles GET /roster-exports/:id.
func (h *Handler) Get(c *gin.Context) {
	sess := middleware.MustSession(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid export id")
		return
	}
	x, err := h.svc.Get(c.Request.Context(), sess.OrganizationID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, x)
}
