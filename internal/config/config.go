// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// the server, the advisor core and the knowledge-base locations.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Knowledge Base Configuration
	KBDir   string // Directory holding aliases.yaml, rules.yaml and course_catalog.json
	DataDir string // Data directory for the SQLite catalog database

	// Advisor Core Configuration
	HistoryCap         int     // Max turns retained per session (oldest evicted first)
	DetectionThreshold float64 // Min confidence to persist a detected programme into the session
	RetrievalTopN      int     // Passages requested per store

	// Rate Limits (token bucket, per user)
	UserRateLimitBurst        float64
	UserRateLimitRefillPerSec float64

	// Metrics Authentication
	MetricsUsername string // Username for /metrics Basic Auth (default: "prometheus")
	MetricsPassword string // Password for /metrics Basic Auth (empty = no auth)

	// Sentry / Better Stack error tracking
	SentryToken       string
	SentryHost        string
	SentryEnvironment string
	SentryRelease     string
	SentrySampleRate  float64
}

// Load reads configuration from environment variables.
// It attempts to load a .env file first, then reads from env vars.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv(EnvPort, "8080"),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, 30*time.Second),

		KBDir:   getEnv(EnvKBDir, "configs"),
		DataDir: getEnv(EnvDataDir, defaultDataDir()),

		HistoryCap:         getIntEnv(EnvHistoryCap, 50),
		DetectionThreshold: getFloatEnv(EnvDetectionThreshold, 0.7),
		RetrievalTopN:      getIntEnv(EnvRetrievalTopN, 5),

		UserRateLimitBurst:        getFloatEnv(EnvUserRateBurst, 15),
		UserRateLimitRefillPerSec: getFloatEnv(EnvUserRateRefill, 0.1),

		MetricsUsername: getEnv(EnvMetricsUsername, "prometheus"),
		MetricsPassword: getEnv(EnvMetricsPassword, ""),

		SentryToken:       getEnv(EnvSentryToken, ""),
		SentryHost:        getEnv(EnvSentryHost, "errors.betterstack.com"),
		SentryEnvironment: getEnv(EnvSentryEnvironment, "production"),
		SentryRelease:     getEnv(EnvSentryRelease, ""),
		SentrySampleRate:  getFloatEnv(EnvSentrySampleRate, 1.0),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants that would otherwise surface
// as confusing behavior deep inside the advisor core.
func (c *Config) validate() error {
	if c.HistoryCap < 1 {
		return fmt.Errorf("%s must be >= 1, got %d", EnvHistoryCap, c.HistoryCap)
	}
	if c.DetectionThreshold < 0 || c.DetectionThreshold > 1 {
		return fmt.Errorf("%s must be within [0,1], got %v", EnvDetectionThreshold, c.DetectionThreshold)
	}
	if c.RetrievalTopN < 1 {
		return fmt.Errorf("%s must be >= 1, got %d", EnvRetrievalTopN, c.RetrievalTopN)
	}
	if c.UserRateLimitBurst <= 0 || c.UserRateLimitRefillPerSec <= 0 {
		return fmt.Errorf("user rate limit burst and refill must be positive")
	}
	return nil
}

// SQLitePath returns the path to the SQLite catalog database file.
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "advisor.db")
}

// AliasTablePath returns the path to the alias mapping table.
func (c *Config) AliasTablePath() string {
	return filepath.Join(c.KBDir, "aliases.yaml")
}

// RuleTablePath returns the path to the routing rule table.
func (c *Config) RuleTablePath() string {
	return filepath.Join(c.KBDir, "rules.yaml")
}

// CatalogPath returns the path to the course catalog JSON file.
func (c *Config) CatalogPath() string {
	return filepath.Join(c.KBDir, "course_catalog.json")
}

// PlanPath returns the path to the programme plan JSON file.
func (c *Config) PlanPath() string {
	return filepath.Join(c.KBDir, "programme_plan.json")
}

func defaultDataDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "hive-advisor")
	}
	return "data"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getFloatEnv(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
