// Package config defines environment variable keys for configuration.
package config

const (
	// Server
	EnvPort            = "HIVE_PORT"
	EnvLogLevel        = "HIVE_LOG_LEVEL"
	EnvShutdownTimeout = "HIVE_SHUTDOWN_TIMEOUT"

	// Knowledge base and data
	EnvKBDir   = "HIVE_KB_DIR"
	EnvDataDir = "HIVE_DATA_DIR"

	// Advisor core
	EnvHistoryCap         = "HIVE_HISTORY_CAP"
	EnvDetectionThreshold = "HIVE_DETECTION_THRESHOLD"
	EnvRetrievalTopN      = "HIVE_RETRIEVAL_TOP_N"

	// Rate limits
	EnvUserRateBurst  = "HIVE_USER_RATE_BURST"
	EnvUserRateRefill = "HIVE_USER_RATE_REFILL"

	// Metrics
	EnvMetricsUsername = "HIVE_METRICS_USERNAME"
	EnvMetricsPassword = "HIVE_METRICS_PASSWORD"

	// Sentry / Better Stack error tracking
	EnvSentryToken       = "HIVE_SENTRY_TOKEN"
	EnvSentryHost        = "HIVE_SENTRY_HOST"
	EnvSentryEnvironment = "HIVE_SENTRY_ENVIRONMENT"
	EnvSentryRelease     = "HIVE_SENTRY_RELEASE"
	EnvSentrySampleRate  = "HIVE_SENTRY_SAMPLE_RATE"
)
