package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/api/middleware"
	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/store"
)

// ClipArchive is the read side of the history mirror.
type ClipArchive interface {
	SessionClips(ctx context.Context, sessionID string, limit int) ([]store.Clip, error)
}

// ArchiveHandler serves archived clips from the database mirror. Only
// registered when a DATABASE_URL is configured.
type ArchiveHandler struct {
	archive ClipArchive
}

func NewArchiveHandler(archive ClipArchive) *ArchiveHandler {
	return &ArchiveHandler{archive: archive}
}

// Clips returns the session's archived clips, newest first.
func (h *ArchiveHandler) Clips(c *gin.Context) {
	sessionID, ok := middleware.GetSessionID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session required"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
		return
	}

	clips, err := h.archive.SessionClips(c.Request.Context(), sessionID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"clips":      clips,
	})
}
