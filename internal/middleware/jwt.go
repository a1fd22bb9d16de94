package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gestaodobem/backend/internal/models"
	"github.com/gestaodobem/backend/pkg/response"
)

// ContextSession is the key for the caller's models.Session in gin context.
const ContextSession = "session"

// TokenValidator turns a bearer token into a session.
type TokenValidator interface {
	Validate(token string) (models.Session, error)
}

// JWT returns a middleware that validates the bearer token and sets the session in context.
func JWT(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		sess, err := tokens.Validate(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		c.Set(ContextSession, sess)
		c.Next()
	}
}

// SessionFrom returns the session set by JWT.
func SessionFrom(c *gin.Context) (models.Session, bool) {
	v, ok := c.Get(ContextSession)
	if !ok {
		return models.Session{}, false
	}
	sess, ok := v.(models.Session)
	return sess, ok
}

// MustSession returns the session set by JWT. It panics when called on a
// route that is not behind JWT.
func MustSession(c *gin.Context) models.Session {
	sess, ok := SessionFrom(c)
	if !ok {
		panic("middleware: no session in context")
	}
	return sess
}
