package tasks

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestaodobem/backend/internal/middleware"
	"github.com/gestaodobem/backend/internal/models"
)

func newRouter(store *fakeStore, sess models.Session) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(newTestService(store))
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(middleware.ContextSession, sess); c.Next() })
	r.POST("/tasks", h.Create)
	r.PATCH("/tasks/:id", h.Update)
	r.GET("/tasks/:id", h.Get)
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_CreateAndPatch(t *testing.T) {
	store := newFakeStore()
	sess := session(uuid.New())
	r := newRouter(store, sess)

	w := do(r, http.MethodPost, "/tasks", `{"title":"Mutirão","description":"limpeza","dueDate":"2026-06-01","priority":"alta"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, store.tasks, 1)

	var id uuid.UUID
	for k := range store.tasks {
		id = k
	}
	w = do(r, http.MethodPatch, "/tasks/"+id.String(), `{"status":"done"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotNil(t, store.tasks[id].CompletedAt)
	assert.Contains(t, w.Body.String(), `"status":"done"`)
}

func TestHandler_BadInput(t *testing.T) {
	r := newRouter(newFakeStore(), session(uuid.New()))

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/tasks", `{"title":"x","description":"y","dueDate":"amanhã"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/tasks", `{"title":"x","description":"y","dueDate":"2026-06-01","priority":"máxima"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/tasks/not-a-uuid", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/tasks/"+uuid.NewString(), "").Code)
}
