// Package config provides application configuration management.
// It loads settings from environment variables (optionally seeded from a
// .env file) and validates them before the server starts.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultPublicBaseURL hosts the catalogue images under /uploads.
const DefaultPublicBaseURL = "https://trainroute-lagoon.com"

// DefaultFallbackImageURL is shown when an image reference is empty, malformed or unreachable.
const DefaultFallbackImageURL = "https://scdn.line-apps.com/n/channel_devcenter/img/fx/01_1_cafe.png"

// DefaultGeocoderURL is the Nominatim-compatible reverse geocoding endpoint.
const DefaultGeocoderURL = "https://nominatim.openstreetmap.org/reverse"

// Config holds all application configuration
type Config struct {
	// Server Configuration
	Port            string
	LogLevel        string
	Environment     string
	ShutdownTimeout time.Duration

	// Data Configuration
	DataDir    string
	SQLiteFile string

	// Rendering
	PublicBaseURL     string
	FallbackImageURL  string
	ImageProbeDetail  bool // HEAD-probe hero images on attraction detail cards
	ImageProbeLists   bool // HEAD-probe images on list carousels
	ImageProbeTimeout time.Duration

	// Geocoding
	GeocoderURL    string
	GeocodeTimeout time.Duration
	ContactEmail   string

	// Thai dictionary for word segmentation (empty = bundled default)
	ThaiDictPath string

	// Interaction logging
	InteractionQueueSize int

	// LINE channel (both empty = /callback disabled)
	LineChannelToken  string
	LineChannelSecret string

	// R2 catalogue snapshot (all empty = disabled)
	R2Endpoint        string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2SnapshotKey     string

	// Observability
	SentryToken         string
	SentryHost          string
	SentrySampleRate    float64
	BetterStackToken    string
	BetterStackEndpoint string
	MetricsUsername     string
	MetricsPassword     string
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv(EnvPort, "3001"),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		Environment:     getEnv(EnvEnvironment, "production"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, DefaultShutdownTimeout),

		DataDir:    getEnv(EnvDataDir, "./data"),
		SQLiteFile: getEnv(EnvSQLiteFile, "lumnambot.db"),

		PublicBaseURL:     strings.TrimRight(getEnv(EnvPublicBaseURL, DefaultPublicBaseURL), "/"),
		FallbackImageURL:  getEnv(EnvFallbackImageURL, DefaultFallbackImageURL),
		ImageProbeDetail:  getBoolEnv(EnvImageProbeDetail, true),
		ImageProbeLists:   getBoolEnv(EnvImageProbeLists, false),
		ImageProbeTimeout: getDurationEnv(EnvImageProbeTime, ImageProbeRequest),

		GeocoderURL:    getEnv(EnvGeocoderURL, DefaultGeocoderURL),
		GeocodeTimeout: getDurationEnv(EnvGeocodeTimeout, GeocodeRequest),
		ContactEmail:   getEnv(EnvContactEmail, ""),

		ThaiDictPath: getEnv(EnvThaiDictPath, ""),

		InteractionQueueSize: getIntEnv(EnvInteractionQueueSize, 256),

		LineChannelToken:  getEnv(EnvLineChannelAccessToken, ""),
		LineChannelSecret: getEnv(EnvLineChannelSecret, ""),

		R2Endpoint:        getEnv(EnvR2Endpoint, ""),
		R2AccessKeyID:     getEnv(EnvR2AccessKeyID, ""),
		R2SecretAccessKey: getEnv(EnvR2SecretAccessKey, ""),
		R2BucketName:      getEnv(EnvR2BucketName, ""),
		R2SnapshotKey:     getEnv(EnvR2SnapshotKey, "snapshots/lumnambot.db.zst"),

		SentryToken:         getEnv(EnvSentryToken, ""),
		SentryHost:          getEnv(EnvSentryHost, ""),
		SentrySampleRate:    getFloatEnv(EnvSentrySampleRate, 1.0),
		BetterStackToken:    getEnv(EnvBetterStackToken, ""),
		BetterStackEndpoint: getEnv(EnvBetterStackEndpoint, ""),
		MetricsUsername:     getEnv(EnvMetricsUsername, "prometheus"),
		MetricsPassword:     getEnv(EnvMetricsPassword, ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("DATA_DIR is required"))
	}
	if _, err := url.ParseRequestURI(c.PublicBaseURL); err != nil {
		errs = append(errs, fmt.Errorf("PUBLIC_BASE_URL is invalid: %w", err))
	}
	if _, err := url.ParseRequestURI(c.GeocoderURL); err != nil {
		errs = append(errs, fmt.Errorf("GEOCODER_URL is invalid: %w", err))
	}
	if c.GeocodeTimeout <= 0 {
		errs = append(errs, fmt.Errorf("GEOCODE_TIMEOUT must be positive, got %v", c.GeocodeTimeout))
	}
	if c.ImageProbeTimeout <= 0 {
		errs = append(errs, fmt.Errorf("IMAGE_PROBE_TIMEOUT must be positive, got %v", c.ImageProbeTimeout))
	}
	if c.InteractionQueueSize <= 0 {
		errs = append(errs, fmt.Errorf("INTERACTION_QUEUE_SIZE must be positive, got %d", c.InteractionQueueSize))
	}
	if (c.LineChannelToken == "") != (c.LineChannelSecret == "") {
		errs = append(errs, errors.New("LINE_CHANNEL_ACCESS_TOKEN and LINE_CHANNEL_SECRET must be set together"))
	}
	if c.SentryToken != "" && c.SentryHost == "" {
		errs = append(errs, errors.New("SENTRY_HOST is required when SENTRY_TOKEN is set"))
	}
	if c.BetterStackToken != "" && c.BetterStackEndpoint == "" {
		errs = append(errs, errors.New("BETTERSTACK_ENDPOINT is required when BETTERSTACK_TOKEN is set"))
	}
	if c.HasR2() && c.R2SnapshotKey == "" {
		errs = append(errs, errors.New("R2_SNAPSHOT_KEY is required when R2 is configured"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// SQLitePath returns the full path to the SQLite database file
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, c.SQLiteFile)
}

// HasLineChannel reports whether the direct LINE /callback route is enabled.
func (c *Config) HasLineChannel() bool {
	return c.LineChannelToken != "" && c.LineChannelSecret != ""
}

// HasR2 reports whether the catalogue snapshot should be pulled from R2.
func (c *Config) HasR2() bool {
	return c.R2Endpoint != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" && c.R2BucketName != ""
}

// GeocoderUserAgent is the descriptive client identifier sent to the geocoder.
func (c *Config) GeocoderUserAgent() string {
	return fmt.Sprintf("LumNamBot/1.0 (contact: %s)", c.ContactEmail)
}
