package dashboard

import (
	"github.com/gin-gonic/gin"

	"github.com/gestaodobem/backend/internal/middleware"
	"github.com/gestaodobem/backend/pkg/response"
)

// Handler handles dashboard HTTP endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a dashboard handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Summary handles GET /dashboard/summary.
func (h *Handler) Summary(c *gin.Context) {
	sess := middleware.MustSession(c)
	out, err := h.svc.Summary(c.Request.Context(), sess.OrganizationID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, out)
}
