package cmd

import (
	"context"
	"log"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/api"
	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/config"
	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/engine"
	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/metrics"
	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/session"
	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/store"
	"github.com/HanzoRazer/string-master-v.4.0-sub000/internal/style"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long:  `Run the HTTP API for clip generation, feedback, and session history.`,
	Run: func(cmd *cobra.Command, args []string) {
		serve()
	},
}

func serve() {
	cfg := config.Load()

	collision, err := session.ParseCollisionPolicy(cfg.CollisionPolicy)
	if err != nil {
		log.Fatal("Invalid BUNDLE_COLLISION_POLICY:", err)
	}

	styles := style.Builtin()
	manager := session.NewManager(engine.New(styles), session.Config{
		Root:          cfg.BundleRoot,
		Collision:     collision,
		Timeout:       cfg.GenerationTimeout,
		EngineVersion: cfg.EngineVersion,
	})

	// Optional Postgres history mirror
	var archive *store.Store
	if cfg.HasArchive() {
		a, err := store.Connect(cfg.DatabaseURL)
		if err != nil {
			sentry.CaptureException(err)
			log.Fatal("Failed to connect to database:", err)
		}
		archive = a
		manager.SetArchive(archive)
		log.Println("✅ Archive enabled")
	} else {
		log.Println("⚠️  Archive disabled (DATABASE_URL not set)")
	}

	// CloudWatch metrics (no-op outside production)
	cloudwatch, err := metrics.NewClient(context.Background(), cfg.Environment)
	if err != nil {
		log.Fatal("Failed to initialize CloudWatch metrics:", err)
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	router := api.SetupRouter(manager, styles, cloudwatch, archive, cfg, Version)

	// Start server
	log.Printf("🚀 Starting server on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to start server:", err)
	}
}
