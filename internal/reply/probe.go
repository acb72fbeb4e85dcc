package reply

import (
	"context"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/lumnam/lumnam-linebot-go/internal/metrics"
)

// Prober checks that an image URL answers HEAD with an image content type.
type Prober struct {
	httpClient *http.Client
	timeout    time.Duration
	metrics    *metrics.Metrics
}

// NewProber creates a prober. timeout bounds each probe; m may be nil.
func NewProber(httpClient *http.Client, timeout time.Duration, m *metrics.Metrics) *Prober {
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	return &Prober{httpClient: httpClient, timeout: timeout, metrics: m}
}

// Probe reports whether u is reachable and serves an image. Any failure,
// including the deadline, counts as unusable.
func (p *Prober) Probe(ctx context.Context, u string) bool {
	status := p.probe(ctx, u)
	p.metrics.RecordImageProbe(status)
	if status != "ok" {
		slog.DebugContext(ctx, "image probe failed, using fallback",
			"url", u,
			"status", status)
	}
	return status == "ok"
}

func (p *Prober) probe(ctx context.Context, u string) string {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, u, nil)
	if err != nil {
		return "error"
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "timeout"
		}
		return "error"
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "http_error"
	}
	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return "not_image"
	}
	return "ok"
}
