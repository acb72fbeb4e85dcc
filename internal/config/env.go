// Package config defines environment variable keys for configuration.
package config

//nolint:gosec,revive // Environment variable keys are not credentials and do not need per-const comments.
const (
	// Server
	EnvPort            = "PORT"
	EnvLogLevel        = "LOG_LEVEL"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
	EnvEnvironment     = "APP_ENV"

	// Data
	EnvDataDir    = "DATA_DIR"
	EnvSQLiteFile = "SQLITE_FILE"

	// Rendering
	EnvPublicBaseURL    = "PUBLIC_BASE_URL"
	EnvFallbackImageURL = "FALLBACK_IMAGE_URL"
	EnvImageProbeDetail = "IMAGE_PROBE_DETAIL"
	EnvImageProbeLists  = "IMAGE_PROBE_LISTS"
	EnvImageProbeTime   = "IMAGE_PROBE_TIMEOUT"

	// Geocoding
	EnvGeocoderURL    = "GEOCODER_URL"
	EnvGeocodeTimeout = "GEOCODE_TIMEOUT"
	EnvContactEmail   = "CONTACT_EMAIL"

	// Thai text
	EnvThaiDictPath = "THAI_DICT_PATH"

	// Interaction logging
	EnvInteractionQueueSize = "INTERACTION_QUEUE_SIZE"

	// LINE channel (optional, enables /callback)
	EnvLineChannelAccessToken = "LINE_CHANNEL_ACCESS_TOKEN"
	EnvLineChannelSecret      = "LINE_CHANNEL_SECRET"

	// R2 catalogue snapshot
	EnvR2Endpoint        = "R2_ENDPOINT"
	EnvR2AccessKeyID     = "R2_ACCESS_KEY_ID"
	EnvR2SecretAccessKey = "R2_SECRET_ACCESS_KEY"
	EnvR2BucketName      = "R2_BUCKET_NAME"
	EnvR2SnapshotKey     = "R2_SNAPSHOT_KEY"

	// Sentry
	EnvSentryToken      = "SENTRY_TOKEN"
	EnvSentryHost       = "SENTRY_HOST"
	EnvSentrySampleRate = "SENTRY_SAMPLE_RATE"

	// Better Stack
	EnvBetterStackToken    = "BETTERSTACK_TOKEN"
	EnvBetterStackEndpoint = "BETTERSTACK_ENDPOINT"

	// Metrics auth
	EnvMetricsUsername = "METRICS_USERNAME"
	EnvMetricsPassword = "METRICS_PASSWORD"
)
