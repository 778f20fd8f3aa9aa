package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration
// Note: generation itself is deterministic and takes no configuration;
// everything here tunes the surfaces around it (HTTP, bundles, scheduler,
// optional archive).
type Config struct {
	// Environment
	Environment string
	Port        string

	// Clip bundles
	BundleRoot      string // directory holding per-session clip bundles
	CollisionPolicy string // error | skip | overwrite
	EngineVersion   string

	// Generation
	GenerationTimeout time.Duration

	// Live scheduler
	SchedLookahead time.Duration
	SchedGrace     time.Duration

	// Optional Postgres archive (history mirror, best-effort)
	DatabaseURL string

	// Observability
	SentryDSN string // Sentry DSN for error tracking
}

func Load() *Config {
	return &Config{
		Environment:       getEnv("ENVIRONMENT", "development"),
		Port:              getEnv("PORT", "8080"),
		BundleRoot:        getEnv("BUNDLE_ROOT", "./clips"),
		CollisionPolicy:   getEnv("BUNDLE_COLLISION_POLICY", "error"),
		EngineVersion:     getEnv("ENGINE_VERSION", "dev"),
		GenerationTimeout: getDurationMS("GENERATION_TIMEOUT_MS", 10*time.Second),
		SchedLookahead:    getDurationMS("SCHED_LOOKAHEAD_MS", 30*time.Millisecond),
		SchedGrace:        getDurationMS("SCHED_GRACE_MS", 15*time.Millisecond),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		SentryDSN:         getEnv("SENTRY_DSN", ""),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getDurationMS(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	ms, err := strconv.Atoi(value)
	if err != nil || ms <= 0 {
		return defaultValue
	}
	return time.Duration(ms) * time.Millisecond
}

// HasArchive returns true if a Postgres history mirror is configured
func (c *Config) HasArchive() bool {
	return c.DatabaseURL != ""
}
