package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/player"
	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/style"
)

type StyleHandler struct {
	styles *style.Table
}

func NewStyleHandler(styles *style.Table) *StyleHandler {
	return &StyleHandler{styles: styles}
}

// ListStyles returns the available style names
func (h *StyleHandler) ListStyles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"styles": h.styles.Names(),
	})
}

// ListPresets returns the available playback preset names
func (h *StyleHandler) ListPresets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"presets": player.PresetNames(),
	})
}
