package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runSessionMiddleware(t *testing.T, mw gin.HandlerFunc, header string) (int, string, bool) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var gotID string
	var gotOK bool
	router := gin.New()
	router.Use(mw)
	router.GET("/ping", func(c *gin.Context) {
		gotID, gotOK = GetSessionID(c)
		c.Status(http.StatusOK)
	})

	req, err := http.NewRequest("GET", "/ping", nil)
	require.NoError(t, err)
	if header != "" {
		req.Header.Set("X-Session-ID", header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code, gotID, gotOK
}

func TestSessionHeaderRequired(t *testing.T) {
	code, _, ok := runSessionMiddleware(t, SessionHeader(), "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, ok, "handler must not run without a session")

	code, id, ok := runSessionMiddleware(t, SessionHeader(), "s1")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, ok)
	assert.Equal(t, "s1", id)
}

func TestOptionalSessionHeader(t *testing.T) {
	code, _, ok := runSessionMiddleware(t, OptionalSessionHeader(), "")
	assert.Equal(t, http.StatusOK, code, "missing header must not block")
	assert.False(t, ok)

	code, id, ok := runSessionMiddleware(t, OptionalSessionHeader(), "s1")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, ok)
	assert.Equal(t, "s1", id)
}
