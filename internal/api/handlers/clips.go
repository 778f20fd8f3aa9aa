package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/api/middleware"
	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/engine"
	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/logger"
	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/metrics"
	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/note"
	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/session"
)

type ClipHandler struct {
	manager       *session.Manager
	sentryMetrics *metrics.SentryMetrics
	cloudwatch    *metrics.Client
}

func NewClipHandler(manager *session.Manager, cloudwatch *metrics.Client) *ClipHandler {
	return &ClipHandler{
		manager:       manager,
		sentryMetrics: metrics.NewSentryMetrics(),
		cloudwatch:    cloudwatch,
	}
}

type GenerateClipRequest struct {
	AttemptID    string            `json:"attempt_id" binding:"required"`
	Chords       []string          `json:"chords" binding:"required"`
	Style        string            `json:"style" binding:"required"`
	TempoBPM     int               `json:"tempo_bpm"`
	Meter        *note.Meter       `json:"meter"`
	BarsPerChord int               `json:"bars_per_chord"`
	Reharm       engine.ReharmSpec `json:"reharm"`
}

type GenerateClipResponse struct {
	ClipID    string `json:"clip_id"`
	AttemptID string `json:"attempt_id"`
	Status    string `json:"status"`
	Dir       string `json:"dir,omitempty"`
	CoachHint string `json:"coach_hint,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
}

const (
	defaultTempoBPM     = 100
	defaultBarsPerChord = 1
)

// Generate runs one generation attempt for the caller's session.
// Re-submitting the same attempt id returns the original clip unchanged.
func (h *ClipHandler) Generate(c *gin.Context) {
	var req GenerateClipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sessionID, ok := middleware.GetSessionID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session required"})
		return
	}

	tempo := req.TempoBPM
	if tempo == 0 {
		tempo = defaultTempoBPM
	}
	meter := note.Meter{Numerator: 4, Denominator: 4}
	if req.Meter != nil {
		meter = *req.Meter
	}
	bars := req.BarsPerChord
	if bars == 0 {
		bars = defaultBarsPerChord
	}

	start := time.Now()
	bundle, err := h.manager.Submit(c.Request.Context(), sessionID, engine.Request{
		Chords:       req.Chords,
		StyleID:      req.Style,
		TempoBPM:     tempo,
		Meter:        meter,
		BarsPerChord: bars,
		Reharm:       req.Reharm,
		AttemptID:    req.AttemptID,
	})
	h.sentryMetrics.RecordGenerationDuration(c.Request.Context(), time.Since(start), err == nil)
	h.cloudwatch.RecordGenerationDuration(time.Since(start), err == nil)
	if err != nil {
		logger.Warn("Clip generation failed", logger.Fields{
			"session_id": sessionID,
			"attempt_id": req.AttemptID,
			"error_code": bundle.ErrorCode,
			"error":      err.Error(),
		})
		c.JSON(statusForCode(bundle.ErrorCode), GenerateClipResponse{
			ClipID:    bundle.ClipID,
			AttemptID: bundle.AttemptID,
			Status:    bundle.Status,
			ErrorCode: bundle.ErrorCode,
		})
		return
	}

	logger.LogGenerationRequest(c.Request.Context(), req.Style, time.Since(start), bundle.EventCount, logger.Fields{
		"session_id": sessionID,
		"clip_id":    bundle.ClipID,
	})
	h.sentryMetrics.RecordClipGeneration(c.Request.Context(), req.Style, bundle.EventCount, len(req.Chords))
	h.cloudwatch.RecordClipGeneration(req.Style, bundle.EventCount, len(req.Chords))

	c.JSON(http.StatusOK, GenerateClipResponse{
		ClipID:    bundle.ClipID,
		AttemptID: bundle.AttemptID,
		Status:    bundle.Status,
		Dir:       bundle.Dir,
		CoachHint: bundle.CoachHint,
	})
}

type FeedbackRequest struct {
	Verdict string `json:"verdict" binding:"required"` // "pass" or "struggle"
	Score   int    `json:"score"`
}

type FeedbackResponse struct {
	ClipID     string             `json:"clip_id"`
	CoachHint  string             `json:"coach_hint"`
	Adjustment session.Adjustment `json:"adjustment"`
	Difficulty session.Difficulty `json:"difficulty"`
	NextPreset string             `json:"next_preset"`
}

// Feedback records a practice verdict against a clip and returns the
// resulting difficulty adjustment and coach hint.
func (h *ClipHandler) Feedback(c *gin.Context) {
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sessionID, ok := middleware.GetSessionID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session required"})
		return
	}

	clipID := c.Param("id")
	adj, hint, err := h.manager.RecordVerdict(c.Request.Context(), sessionID, clipID, session.Verdict(req.Verdict), req.Score)
	if err != nil {
		if errors.Is(err, session.ErrUnknownClip) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "error_code": session.CodeUnknownClip})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, FeedbackResponse{
		ClipID:     clipID,
		CoachHint:  hint,
		Adjustment: adj,
		Difficulty: h.manager.CurrentDifficulty(sessionID),
		NextPreset: h.manager.SuggestedPreset(sessionID),
	})
}

// History returns the session index, oldest first.
func (h *ClipHandler) History(c *gin.Context) {
	sessionID, ok := middleware.GetSessionID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session required"})
		return
	}

	entries, err := h.manager.Entries(sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"entries":    entries,
	})
}

// statusForCode maps stable error codes onto HTTP statuses.
func statusForCode(code string) int {
	switch code {
	case session.CodeEmptyProgression, session.CodeUnknownStyle, session.CodeChordParse,
		session.CodeClaveViolation, session.CodePatternRange, session.CodeUnknownReharm:
		return http.StatusBadRequest
	case session.CodeBundleExists:
		return http.StatusConflict
	case session.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
