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

	"news-cms/pkg/apperr"
)

func serve(t *testing.T, h gin.HandlerFunc) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", h)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestFail_StatusMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{apperr.Validation("bad"), http.StatusBadRequest},
		{apperr.NotFound("comment"), http.StatusNotFound},
		{apperr.Forbidden("nope"), http.StatusForbidden},
		{apperr.Unauthenticated("login"), http.StatusUnauthorized},
		{apperr.Expired("late"), http.StatusGone},
		{apperr.AlreadyUsed("again"), http.StatusConflict},
		{apperr.Conflict("dup"), http.StatusConflict},
		{apperr.Unavailable(errors.New("db down")), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		w, body := serve(t, func(c *gin.Context) { Fail(c, tt.err) })
		assert.Equal(t, tt.status, w.Code, "%v", tt.err)
		assert.Equal(t, tt.status, body.Code)
	}
}

func TestFail_ValidationFields(t *testing.T) {
	_, body := serve(t, func(c *gin.Context) {
		Fail(c, apperr.Validation("invalid comment").WithField("content", "must not be empty"))
	})

	assert.Equal(t, "invalid comment", body.Message)
	assert.Equal(t, apperr.KindValidation, body.Kind)
	assert.Equal(t, "must not be empty", body.Fields["content"])
}

func TestFail_HidesInternalDetails(t *testing.T) {
	_, body := serve(t, func(c *gin.Context) { Fail(c, apperr.Unavailable(errors.New("dial tcp 10.0.0.1"))) })

	assert.Equal(t, http.StatusText(http.StatusServiceUnavailable), body.Message)
	assert.Empty(t, body.Error)
}

func TestSuccess(t *testing.T) {
	w, body := serve(t, func(c *gin.Context) { Success(c, gin.H{"id": 1}) })

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, body.Code)
	assert.Equal(t, "success", body.Message)
}
