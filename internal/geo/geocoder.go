package geo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/singleflight"

	domerrors "github.com/lumnam/lumnam-linebot-go/internal/errors"
	"github.com/lumnam/lumnam-linebot-go/internal/metrics"
)

const (
	geocoderService = "reverse_geocoder"
	maxBodyBytes    = 1 << 20
)

// Address field preference for the district; the first non-empty one wins.
var districtKeys = []string{"county", "state_district", "city_district", "town", "city", "suburb"}

// Address field preference for the province.
var provinceKeys = []string{"state", "region"}

// Area is a reverse-geocoded administrative area. Both fields may be empty.
type Area struct {
	District string
	Province string
}

// IsZero reports whether nothing was resolved.
func (a Area) IsZero() bool {
	return a.District == "" && a.Province == ""
}

// Geocoder calls a Nominatim-compatible reverse geocoding endpoint.
type Geocoder struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	timeout    time.Duration
	metrics    *metrics.Metrics
	group      singleflight.Group
}

// GeocoderOption configures a Geocoder.
type GeocoderOption func(*Geocoder)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) GeocoderOption {
	return func(g *Geocoder) { g.httpClient = c }
}

// WithMetrics records request outcomes.
func WithMetrics(m *metrics.Metrics) GeocoderOption {
	return func(g *Geocoder) { g.metrics = m }
}

// NewGeocoder creates a geocoder. timeout is a hard deadline per lookup.
func NewGeocoder(baseURL, userAgent string, timeout time.Duration, opts ...GeocoderOption) *Geocoder {
	g := &Geocoder{
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		timeout:   timeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Reverse looks up the district and province containing p. Identical
// concurrent lookups share one upstream call.
func (g *Geocoder) Reverse(ctx context.Context, p Point) (Area, error) {
	if !p.Valid() {
		return Area{}, domerrors.ErrNoCoordinates
	}

	key := fmt.Sprintf("%.5f,%.5f", p.Lat, p.Lng)
	v, err, _ := g.group.Do(key, func() (any, error) {
		// detached so one caller's cancellation does not fail the others
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.timeout)
		defer cancel()
		return g.reverse(callCtx, p)
	})
	if err != nil {
		return Area{}, err
	}
	return v.(Area), nil
}

// ResolveArea is Reverse with failures degraded to an empty Area.
func (g *Geocoder) ResolveArea(ctx context.Context, p Point) Area {
	area, err := g.Reverse(ctx, p)
	if err != nil {
		slog.WarnContext(ctx, "reverse geocode failed, continuing without area",
			"point", p.String(),
			"error", err)
		return Area{}
	}
	return area
}

func (g *Geocoder) reverse(ctx context.Context, p Point) (area Area, err error) {
	start := time.Now()
	defer func() {
		g.metrics.RecordGeocode(geocodeStatus(err), time.Since(start).Seconds())
	}()

	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", fmt.Sprintf("%f", p.Lat))
	q.Set("lon", fmt.Sprintf("%f", p.Lng))
	q.Set("zoom", "12")
	q.Set("addressdetails", "1")
	q.Set("accept-language", "th")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return Area{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Area{}, domerrors.NewUpstreamError(geocoderService, 0, domerrors.ErrTimeout)
		}
		return Area{}, domerrors.NewUpstreamError(geocoderService, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Area{}, domerrors.NewUpstreamError(geocoderService, resp.StatusCode,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var reader io.Reader = resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return Area{}, domerrors.NewUpstreamError(geocoderService, resp.StatusCode,
				fmt.Errorf("failed to decompress gzip: %w", err))
		}
		defer func() { _ = gz.Close() }()
		reader = gz
	}

	body, err := io.ReadAll(io.LimitReader(reader, maxBodyBytes))
	if err != nil {
		return Area{}, domerrors.NewUpstreamError(geocoderService, resp.StatusCode, err)
	}
	if !gjson.ValidBytes(body) {
		return Area{}, domerrors.NewUpstreamError(geocoderService, resp.StatusCode,
			errors.New("malformed response body"))
	}

	return parseAddress(gjson.GetBytes(body, "address")), nil
}

func parseAddress(addr gjson.Result) Area {
	return Area{
		District: StripDistrictPrefix(firstField(addr, districtKeys)),
		Province: StripProvincePrefix(firstField(addr, provinceKeys)),
	}
}

func firstField(obj gjson.Result, keys []string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(obj.Get(k).String()); v != "" {
			return v
		}
	}
	return ""
}

var districtPrefixes = []string{"อำเภอ", "อ.", "เขต", "เทศบาล"}

// StripDistrictPrefix removes one leading administrative prefix from a district name.
func StripDistrictPrefix(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range districtPrefixes {
		if strings.HasPrefix(s, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(s, prefix))
		}
	}
	return s
}

var provincePrefixes = []string{"จังหวัด", "จ."}

// StripProvincePrefix removes one leading "จังหวัด" or "จ." from a province name.
func StripProvincePrefix(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range provincePrefixes {
		if strings.HasPrefix(s, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(s, prefix))
		}
	}
	return s
}

func geocodeStatus(err error) string {
	var upstream *domerrors.UpstreamError
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domerrors.ErrTimeout):
		return "timeout"
	case errors.As(err, &upstream) && upstream.StatusCode > 0:
		return "http_error"
	default:
		return "error"
	}
}
