// Package config provides centralized timeout constants for the application.
//
// The fulfillment caller (the NLU webhook) gives up after roughly five seconds,
// so every outbound dependency on the request path has a budget well inside it:
//   - reverse geocoding: 3.5s hard deadline, failure degrades to radius search
//   - image probe: 2s, failure degrades to the fallback image
//   - SQLite: busy_timeout only, no per-statement cancellation
package config

import "time"

// HTTP server timeouts
const (
	// HTTPRead is the server read timeout. Webhook payloads are small JSON bodies.
	HTTPRead = 10 * time.Second

	// HTTPWrite is the server write timeout.
	HTTPWrite = 15 * time.Second

	// HTTPIdle is the keep-alive idle timeout.
	HTTPIdle = 120 * time.Second

	// FulfillmentProcessing bounds one /webhook turn end to end.
	FulfillmentProcessing = 10 * time.Second

	// LineEventProcessing bounds one LINE /callback event including the reply call.
	LineEventProcessing = 20 * time.Second
)

// Outbound dependency timeouts
const (
	// GeocodeRequest is the default hard deadline for a reverse-geocoding call.
	GeocodeRequest = 3500 * time.Millisecond

	// ImageProbeRequest is the default deadline for the HEAD probe on detail images.
	ImageProbeRequest = 2 * time.Second

	// SnapshotDownload bounds the catalogue snapshot download at startup.
	SnapshotDownload = 2 * time.Minute
)

// Database timeouts
const (
	// DatabaseBusyTimeout is the SQLite busy_timeout pragma value.
	DatabaseBusyTimeout = 30 * time.Second

	// DatabaseConnMaxLifetime is the maximum lifetime of pooled connections.
	DatabaseConnMaxLifetime = time.Hour

	// SlowQueryThreshold marks repository calls that get a warning log.
	SlowQueryThreshold = 100 * time.Millisecond
)

// Background and lifecycle
const (
	// ReadinessCheckTimeout bounds the /readyz database checks.
	ReadinessCheckTimeout = 3 * time.Second

	// MetricsUpdateInterval is how often catalogue size gauges are refreshed.
	MetricsUpdateInterval = 5 * time.Minute

	// InteractionFlush bounds draining the interaction log queue on shutdown.
	InteractionFlush = 5 * time.Second

	// SentryFlush bounds flushing buffered Sentry events on shutdown.
	SentryFlush = 2 * time.Second

	// DefaultShutdownTimeout is used when SHUTDOWN_TIMEOUT is not set.
	DefaultShutdownTimeout = 30 * time.Second
)

// LINE channel limits
const (
	// UserRateBurst is how many messages one LINE user may send back to back.
	UserRateBurst = 6

	// UserRateRefill is the per-user token refill rate (tokens per second).
	UserRateRefill = 1.0 / 5

	// ReplyRatePerSecond caps reply API calls across all chats.
	ReplyRatePerSecond = 50

	// RateLimiterCleanupInterval is how often idle per-user limiters are evicted.
	RateLimiterCleanupInterval = 5 * time.Minute

	// SessionSweepInterval is how often expired LINE chat contexts are removed.
	SessionSweepInterval = 5 * time.Minute
)
