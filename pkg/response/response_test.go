package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestaodobem/backend/pkg/apperr"
)

func init() { gin.SetMode(gin.TestMode) }

func TestError_MapsKinds(t *testing.T) {
	tests := []struct {
		err     error
		status  int
		message string
	}{
		{apperr.NotFound("task not found"), http.StatusNotFound, "task not found"},
		{apperr.Conflict("email in use"), http.StatusConflict, "email in use"},
		{apperr.Domain("event is full"), http.StatusBadRequest, "event is full"},
		{apperr.Forbidden("nope"), http.StatusForbidden, "nope"},
		{errors.New("pq: connection reset"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		Error(c, tt.err)

		assert.Equal(t, tt.status, w.Code)
		var body Body
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.False(t, body.Success)
		assert.Equal(t, tt.message, body.Error)
	}
}

func TestError_AttachesInternalCause(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, errors.New("db down"))

	require.Len(t, c.Errors, 1)
	assert.Contains(t, c.Errors.String(), "db down")
}
