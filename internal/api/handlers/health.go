package handlers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/config"
)

// HealthCheck returns the health status of the API
func HealthCheck(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		bundleStatus := "ok"
		if _, err := os.Stat(cfg.BundleRoot); err != nil {
			bundleStatus = "missing"
		}

		archiveStatus := "disabled"
		if cfg.HasArchive() {
			archiveStatus = "enabled"
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"bundle_root": gin.H{
				"status": bundleStatus,
				"path":   cfg.BundleRoot,
			},
			"archive": gin.H{
				"status": archiveStatus,
			},
		})
	}
}
