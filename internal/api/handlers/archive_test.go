package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/api/middleware"
	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/store"
)

type stubArchive struct {
	clips     []store.Clip
	err       error
	gotLimit  int
	gotSessID string
}

func (s *stubArchive) SessionClips(ctx context.Context, sessionID string, limit int) ([]store.Clip, error) {
	s.gotSessID = sessionID
	s.gotLimit = limit
	return s.clips, s.err
}

func setupArchiveRouter(t *testing.T, archive ClipArchive) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	v1 := router.Group("/api/v1")
	v1.Use(middleware.SessionHeader())
	v1.GET("/clips/archive", NewArchiveHandler(archive).Clips)
	return router
}

func getArchive(t *testing.T, router *gin.Engine, path, sessionID string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest("GET", path, nil)
	require.NoError(t, err)
	if sessionID != "" {
		req.Header.Set("X-Session-ID", sessionID)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestArchiveClips(t *testing.T) {
	archive := &stubArchive{clips: []store.Clip{
		{SessionID: "s1", ClipID: "clip-b", StyleID: "swing_basic", Status: "ok"},
		{SessionID: "s1", ClipID: "clip-a", StyleID: "bossa_light", Status: "ok"},
	}}
	router := setupArchiveRouter(t, archive)

	w := getArchive(t, router, "/api/v1/clips/archive", "s1")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		SessionID string       `json:"session_id"`
		Clips     []store.Clip `json:"clips"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "s1", resp.SessionID)
	require.Len(t, resp.Clips, 2)
	assert.Equal(t, "clip-b", resp.Clips[0].ClipID)

	assert.Equal(t, "s1", archive.gotSessID)
	assert.Equal(t, 50, archive.gotLimit, "default limit")
}

func TestArchiveClipsLimit(t *testing.T) {
	archive := &stubArchive{}
	router := setupArchiveRouter(t, archive)

	w := getArchive(t, router, "/api/v1/clips/archive?limit=5", "s1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, archive.gotLimit)

	w = getArchive(t, router, "/api/v1/clips/archive?limit=bogus", "s1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestArchiveClipsRequiresSession(t *testing.T) {
	router := setupArchiveRouter(t, &stubArchive{})

	w := getArchive(t, router, "/api/v1/clips/archive", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestArchiveClipsStoreError(t *testing.T) {
	archive := &stubArchive{err: errors.New("connection reset")}
	router := setupArchiveRouter(t, archive)

	w := getArchive(t, router, "/api/v1/clips/archive", "s1")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
