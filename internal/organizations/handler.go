package organizations

import (
	"github.com/gin-gonic/gin"

	"github.com/gestaodobem/backend/pkg/response"
)

// Handler handles organization HTTP endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates an organizations handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterAdminRequest is the admin part of POST /organizations/register.
type RegisterAdminRequest struct {
	FullName string `json:"fullName" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// RegisterAddressRequest is the optional address of POST /organizations/register.
type RegisterAddressRequest struct {
	ZipCode      string `json:"zipCode" binding:"required,max=9"`
	Street       string `json:"street" binding:"required"`
	Number       string `json:"number"`
	Complement   string `json:"complement"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city" binding:"required"`
	State        string `json:"state" binding:"required,uf"`
}

// RegisterRequest is the body for POST /organizations/register.
type RegisterRequest struct {
	OrganizationName string                  `json:"organizationName" binding:"required,max=255"`
	ActivityField    string                  `json:"activityField" binding:"required"`
	Admin            RegisterAdminRequest    `json:"admin" binding:"required"`
	Address          *RegisterAddressRequest `json:"address"`
}

// Register handles POST /organizations/register.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	in := RegisterInput{
		OrganizationName: req.OrganizationName,
		ActivityField:    req.ActivityField,
		Admin: AdminInput{
			FullName: req.Admin.FullName,
			Email:    req.Admin.Email,
			Password: req.Admin.Password,
		},
	}
	if a := req.Address; a != nil {
		in.Address = &AddressInput{
			ZipCode:      a.ZipCode,
			Street:       a.Street,
			Number:       a.Number,
			Complement:   a.Complement,
			Neighborhood: a.Neighborhood,
			City:         a.City,
			State:        a.State,
		}
	}
	org, err := h.svc.Register(c.Request.Context(), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, org)
}
