package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/gestaodobem/backend/internal/models"
)

func init() { gin.SetMode(gin.TestMode) }

type stubValidator struct {
	sess models.Session
	err  error
}

func (s stubValidator) Validate(string) (models.Session, error) { return s.sess, s.err }

type stubCounter struct {
	counts map[string]int64
	err    error
}

func (s *stubCounter) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.counts[key]++
	return s.counts[key], nil
}

func serve(r *gin.Engine, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWT(t *testing.T) {
	sess := models.Session{UserID: uuid.New(), Role: models.RoleVolunteer, OrganizationID: uuid.New()}

	r := gin.New()
	r.GET("/ok", JWT(stubValidator{sess: sess}), func(c *gin.Context) {
		got := MustSession(c)
		c.String(http.StatusOK, got.UserID.String())
	})
	r.GET("/bad", JWT(stubValidator{err: errors.New("expired")}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := serve(r, http.MethodGet, "/ok", "Bearer abc")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, sess.UserID.String(), w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/ok", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/ok", "Token abc").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/bad", "Bearer abc").Code)
}

func TestRequireCapability(t *testing.T) {
	newRouter := func(role models.Role) *gin.Engine {
		r := gin.New()
		r.POST("/events", JWT(stubValidator{sess: models.Session{Role: role}}),
			RequireCapability(models.CapManageEvents),
			func(c *gin.Context) { c.Status(http.StatusCreated) })
		return r
	}

	assert.Equal(t, http.StatusCreated, serve(newRouter(models.RoleCoordinator), http.MethodPost, "/events", "Bearer t").Code)
	assert.Equal(t, http.StatusForbidden, serve(newRouter(models.RoleVolunteer), http.MethodPost, "/events", "Bearer t").Code)
}

func TestRequireCapability_NoSession(t *testing.T) {
	r := gin.New()
	r.GET("/x", RequireCapability(models.CapManageUsers), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/x", "").Code)
}

func TestRateLimit(t *testing.T) {
	counter := &stubCounter{counts: map[string]int64{}}
	r := gin.New()
	r.POST("/auth/login", RateLimit(counter, "login", 2, time.Minute, nil), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/auth/login", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/auth/login", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, http.MethodPost, "/auth/login", "").Code)
}

func TestRateLimit_FailsOpen(t *testing.T) {
	counter := &stubCounter{err: errors.New("connection refused")}
	r := gin.New()
	r.POST("/auth/login", RateLimit(counter, "login", 1, time.Minute, nil), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/auth/login", "").Code)
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS("http://app.local"))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://app.local")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://app.local", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.local")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
