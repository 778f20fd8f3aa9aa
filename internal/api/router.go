package api

import (
	"github.com/gin-gonic/gin"

	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/api/handlers"
	apimiddleware "github.com/HanzoRazer/string-master-v.4.0-sub000/internal/api/middleware"
	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/config"
	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/metrics"
	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/session"
	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/store"
	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/style"
)

func SetupRouter(manager *session.Manager, styles *style.Table, cloudwatch *metrics.Client, archive *store.Store, cfg *config.Config, version string) *gin.Engine {
	router := gin.New()

	apimiddleware.SetCloudWatch(cloudwatch)

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Session extraction (best effort here; the clip group enforces it)
	router.Use(apimiddleware.OptionalSessionHeader())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking())

	// CORS middleware
	router.Use(apimiddleware.CORS())

	// Health check
	router.GET("/health", handlers.HealthCheck(cfg))

	// Metrics endpoint
	metricsHandler := handlers.NewMetricsHandler(version)
	router.GET("/api/metrics", metricsHandler.GetMetrics)

	// Read-only catalog endpoints
	styleHandler := handlers.NewStyleHandler(styles)
	router.GET("/api/v1/styles", styleHandler.ListStyles)
	router.GET("/api/v1/presets", styleHandler.ListPresets)

	// Clip routes (require a session)
	v1 := router.Group("/api/v1")
	v1.Use(apimiddleware.SessionHeader())
	{
		clipHandler := handlers.NewClipHandler(manager, cloudwatch)
		v1.POST("/clips", clipHandler.Generate)
		v1.POST("/clips/:id/feedback", clipHandler.Feedback)
		v1.GET("/clips/history", clipHandler.History)

		if archive != nil {
			archiveHandler := handlers.NewArchiveHandler(archive)
			v1.GET("/clips/archive", archiveHandler.Clips)
		}
	}

	return router
}
