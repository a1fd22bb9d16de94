package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/gestaodobem/backend/internal/models"
	"github.com/gestaodobem/backend/pkg/response"
)

// RequireCapability returns a middleware that allows only roles granting c.
func RequireCapability(capability models.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := SessionFrom(c)
		if !ok {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		if !sess.Role.Can(capability) {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}
