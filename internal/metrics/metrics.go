// Package metrics defines the Prometheus collectors for the fulfillment service.
// All Record* methods are safe to call on a nil *Metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Fulfillment metrics
	FulfillmentRequestsTotal   *prometheus.CounterVec
	FulfillmentDurationSeconds *prometheus.HistogramVec
	LadderRungTotal            *prometheus.CounterVec

	// Outbound dependency metrics
	GeocodeRequestsTotal   *prometheus.CounterVec
	GeocodeDurationSeconds prometheus.Histogram
	ImageProbeTotal        *prometheus.CounterVec

	// Interaction log metrics
	InteractionLogTotal *prometheus.CounterVec

	// LINE webhook metrics
	WebhookRequestsTotal   *prometheus.CounterVec
	WebhookDurationSeconds *prometheus.HistogramVec

	// Rate limiter metrics
	RateLimiterDropsTotal *prometheus.CounterVec
	RateLimiterActiveKeys *prometheus.GaugeVec

	// Catalogue size
	CatalogueSize *prometheus.GaugeVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)
	return &Metrics{
		FulfillmentRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lumnam_fulfillment_requests_total",
				Help: "Total fulfillment turns by resolved intent and outcome",
			},
			[]string{"intent", "outcome"}, // outcome: answered, clarify, not_found, error
		),

		FulfillmentDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lumnam_fulfillment_duration_seconds",
				Help:    "Fulfillment turn duration in seconds by intent",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 4},
			},
			[]string{"intent"},
		),

		LadderRungTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lumnam_ladder_rung_total",
				Help: "Fallback ladder rung that produced the answer, by intent",
			},
			[]string{"intent", "rung"},
		),

		GeocodeRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lumnam_geocode_requests_total",
				Help: "Reverse geocoding calls by status",
			},
			[]string{"status"}, // status: success, error, timeout
		),

		GeocodeDurationSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "lumnam_geocode_duration_seconds",
				Help:    "Reverse geocoding call duration in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 3.5, 5},
			},
		),

		ImageProbeTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lumnam_image_probe_total",
				Help: "Image reachability probes by status",
			},
			[]string{"status"}, // status: ok, fallback
		),

		InteractionLogTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lumnam_interaction_log_total",
				Help: "Interaction log writes by status",
			},
			[]string{"status"}, // status: ok, error, dropped
		),

		WebhookRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lumnam_webhook_requests_total",
				Help: "LINE webhook events by event type and status",
			},
			[]string{"event_type", "status"},
		),

		WebhookDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lumnam_webhook_duration_seconds",
				Help:    "LINE webhook event processing duration in seconds",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
			},
			[]string{"event_type"},
		),

		RateLimiterDropsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lumnam_rate_limiter_drops_total",
				Help: "Requests rejected by a rate limiter",
			},
			[]string{"limiter"}, // limiter: user, reply
		),

		RateLimiterActiveKeys: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "lumnam_rate_limiter_active_keys",
				Help: "Keys currently tracked by a keyed rate limiter",
			},
			[]string{"limiter"},
		),

		CatalogueSize: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "lumnam_catalogue_rows",
				Help: "Number of rows per catalogue table",
			},
			[]string{"table"},
		),
	}
}

// RecordFulfillment records one fulfillment turn.
func (m *Metrics) RecordFulfillment(intent, outcome string, duration float64) {
	if m == nil {
		return
	}
	m.FulfillmentRequestsTotal.WithLabelValues(intent, outcome).Inc()
	m.FulfillmentDurationSeconds.WithLabelValues(intent).Observe(duration)
}

// RecordLadderRung records which fallback rung produced a result.
func (m *Metrics) RecordLadderRung(intent, rung string) {
	if m == nil {
		return
	}
	m.LadderRungTotal.WithLabelValues(intent, rung).Inc()
}

// RecordGeocode records a reverse geocoding call.
func (m *Metrics) RecordGeocode(status string, duration float64) {
	if m == nil {
		return
	}
	m.GeocodeRequestsTotal.WithLabelValues(status).Inc()
	m.GeocodeDurationSeconds.Observe(duration)
}

// RecordImageProbe records an image probe result.
func (m *Metrics) RecordImageProbe(status string) {
	if m == nil {
		return
	}
	m.ImageProbeTotal.WithLabelValues(status).Inc()
}

// RecordInteractionLog records the fate of an interaction log record.
func (m *Metrics) RecordInteractionLog(status string) {
	if m == nil {
		return
	}
	m.InteractionLogTotal.WithLabelValues(status).Inc()
}

// RecordWebhook records a LINE webhook event.
func (m *Metrics) RecordWebhook(eventType, status string, duration float64) {
	if m == nil {
		return
	}
	m.WebhookRequestsTotal.WithLabelValues(eventType, status).Inc()
	m.WebhookDurationSeconds.WithLabelValues(eventType).Observe(duration)
}

// RecordRateLimiterDrop records a request rejected by the named limiter.
func (m *Metrics) RecordRateLimiterDrop(limiter string) {
	if m == nil {
		return
	}
	m.RateLimiterDropsTotal.WithLabelValues(limiter).Inc()
}

// SetRateLimiterKeys sets the number of keys the named limiter tracks.
func (m *Metrics) SetRateLimiterKeys(limiter string, count int) {
	if m == nil {
		return
	}
	m.RateLimiterActiveKeys.WithLabelValues(limiter).Set(float64(count))
}

// SetCatalogueSize sets the row count gauge for a catalogue table.
func (m *Metrics) SetCatalogueSize(table string, rows int) {
	if m == nil {
		return
	}
	m.CatalogueSize.WithLabelValues(table).Set(float64(rows))
}
