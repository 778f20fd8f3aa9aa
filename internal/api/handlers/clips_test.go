package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/api/middleware"
	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/engine"
	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/metrics"
	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/session"
	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/style"
)

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	manager := session.NewManager(engine.New(style.Builtin()), session.Config{
		Root:          t.TempDir(),
		EngineVersion: "test",
	})
	cloudwatch, err := metrics.NewClient(context.Background(), "test")
	require.NoError(t, err)

	router := gin.New()
	v1 := router.Group("/api/v1")
	v1.Use(middleware.SessionHeader())
	clipHandler := NewClipHandler(manager, cloudwatch)
	v1.POST("/clips", clipHandler.Generate)
	v1.POST("/clips/:id/feedback", clipHandler.Feedback)
	v1.GET("/clips/history", clipHandler.History)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path, sessionID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	jsonBody, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest("POST", path, bytes.NewBuffer(jsonBody))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set("X-Session-ID", sessionID)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGenerateClip(t *testing.T) {
	router := setupTestRouter(t)

	w := postJSON(t, router, "/api/v1/clips", "s1", GenerateClipRequest{
		AttemptID: "a1",
		Chords:    []string{"Dm7", "G7", "Cmaj7"},
		Style:     "swing_basic",
		TempoBPM:  120,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp GenerateClipResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.ClipID)
	assert.Equal(t, "a1", resp.AttemptID)
	assert.NotEmpty(t, resp.Dir)
	assert.NotEmpty(t, resp.CoachHint)
}

func TestGenerateClipRequiresSession(t *testing.T) {
	router := setupTestRouter(t)

	w := postJSON(t, router, "/api/v1/clips", "", GenerateClipRequest{
		AttemptID: "a1",
		Chords:    []string{"Dm7"},
		Style:     "swing_basic",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateClipIdempotent(t *testing.T) {
	router := setupTestRouter(t)

	body := GenerateClipRequest{
		AttemptID: "a1",
		Chords:    []string{"Dm7", "G7"},
		Style:     "swing_basic",
	}
	first := postJSON(t, router, "/api/v1/clips", "s1", body)
	require.Equal(t, http.StatusOK, first.Code)
	second := postJSON(t, router, "/api/v1/clips", "s1", body)
	require.Equal(t, http.StatusOK, second.Code)

	assert.JSONEq(t, first.Body.String(), second.Body.String())
}

func TestGenerateClipUnknownStyle(t *testing.T) {
	router := setupTestRouter(t)

	w := postJSON(t, router, "/api/v1/clips", "s1", GenerateClipRequest{
		AttemptID: "a1",
		Chords:    []string{"Dm7"},
		Style:     "free_jazz",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp GenerateClipResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, session.CodeUnknownStyle, resp.ErrorCode)
	assert.Equal(t, "failed", resp.Status)
}

func TestFeedbackFlow(t *testing.T) {
	router := setupTestRouter(t)

	w := postJSON(t, router, "/api/v1/clips", "s1", GenerateClipRequest{
		AttemptID: "a1",
		Chords:    []string{"Dm7", "G7", "Cmaj7"},
		Style:     "swing_basic",
		TempoBPM:  120,
	})
	require.Equal(t, http.StatusOK, w.Code)
	var clip GenerateClipResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &clip))

	fb := postJSON(t, router, "/api/v1/clips/"+clip.ClipID+"/feedback", "s1", FeedbackRequest{
		Verdict: "pass",
		Score:   90,
	})
	require.Equal(t, http.StatusOK, fb.Code)

	var resp FeedbackResponse
	require.NoError(t, json.Unmarshal(fb.Body.Bytes(), &resp))
	assert.Equal(t, clip.ClipID, resp.ClipID)
	assert.Equal(t, 4, resp.Adjustment.TempoDelta)
	assert.Equal(t, 124, resp.Difficulty.TempoBPM)
	assert.NotEmpty(t, resp.CoachHint)
	assert.Equal(t, "challenge", resp.NextPreset)
}

func TestFeedbackUnknownClip(t *testing.T) {
	router := setupTestRouter(t)

	w := postJSON(t, router, "/api/v1/clips/no-such-clip/feedback", "s1", FeedbackRequest{
		Verdict: "pass",
		Score:   80,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHistory(t *testing.T) {
	router := setupTestRouter(t)

	w := postJSON(t, router, "/api/v1/clips", "s1", GenerateClipRequest{
		AttemptID: "a1",
		Chords:    []string{"Cmaj7"},
		Style:     "ballad",
	})
	require.Equal(t, http.StatusOK, w.Code)

	req, err := http.NewRequest("GET", "/api/v1/clips/history", nil)
	require.NoError(t, err)
	req.Header.Set("X-Session-ID", "s1")
	hw := httptest.NewRecorder()
	router.ServeHTTP(hw, req)
	require.Equal(t, http.StatusOK, hw.Code)

	var resp struct {
		SessionID string               `json:"session_id"`
		Entries   []session.IndexEntry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(hw.Body.Bytes(), &resp))
	assert.Equal(t, "s1", resp.SessionID)
	assert.Len(t, resp.Entries, 1)
}
