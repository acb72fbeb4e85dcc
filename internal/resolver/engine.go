// Package resolver turns one classified fulfillment turn into a response:
// it answers pending clarification questions, handles shared locations and
// dispatches each intent to a handler that queries the catalogue through a
// fallback ladder and renders the result.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lumnam/lumnam-linebot-go/internal/ctxutil"
	"github.com/lumnam/lumnam-linebot-go/internal/dialogflow"
	domerrors "github.com/lumnam/lumnam-linebot-go/internal/errors"
	"github.com/lumnam/lumnam-linebot-go/internal/geo"
	"github.com/lumnam/lumnam-linebot-go/internal/intent"
	"github.com/lumnam/lumnam-linebot-go/internal/metrics"
	"github.com/lumnam/lumnam-linebot-go/internal/reply"
	"github.com/lumnam/lumnam-linebot-go/internal/sentry"
	"github.com/lumnam/lumnam-linebot-go/internal/storage"
	"github.com/lumnam/lumnam-linebot-go/internal/thaitext"
)

// User-facing texts shared by several handlers.
const (
	systemErrorText   = "เกิดข้อผิดพลาดของระบบ"
	unknownIntentText = "ฉันยังไม่เข้าใจคำถามนี้"
)

// Fulfillment outcomes recorded per turn.
const (
	outcomeOK       = "ok"
	outcomeNotFound = "not_found"
	outcomePrompt   = "prompt"
	outcomeError    = "error"
)

// Search bounds.
const (
	nearbyRadiusKm   = 15
	maxNearbyPlaces  = 10
	maxNameMatches   = 10
	maxStationPlaces = 10
)

// AreaResolver reverse-geocodes a point. It never fails; an unknown area
// is empty.
type AreaResolver interface {
	ResolveArea(ctx context.Context, p geo.Point) geo.Area
}

// Engine resolves fulfillment turns. It holds no per-session state and is
// safe for concurrent use.
type Engine struct {
	store     storage.Catalogue
	geocoder  AreaResolver
	renderer  *reply.Renderer
	segmenter *thaitext.Segmenter
	metrics   *metrics.Metrics
	now       func() time.Time
	location  *time.Location
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithMetrics records outcomes and ladder rungs.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithSegmenter broadens name searches by dictionary words.
func WithSegmenter(s *thaitext.Segmenter) Option {
	return func(e *Engine) { e.segmenter = s }
}

// WithLocation sets the time zone "today" is computed in.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.location = loc }
}

// New creates an engine.
func New(store storage.Catalogue, geocoder AreaResolver, renderer *reply.Renderer, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		geocoder: geocoder,
		renderer: renderer,
		now:      time.Now,
		location: bangkok(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func bangkok() *time.Location {
	loc, err := time.LoadLocation("Asia/Bangkok")
	if err != nil {
		return time.FixedZone("ICT", 7*60*60)
	}
	return loc
}

// turn is the working state of one request.
type turn struct {
	kind   intent.Kind
	class  intent.Classification
	params intent.Params
	text   string

	inbound dialogflow.Contexts
	out     *dialogflow.Turn
	// nearStationCleared hides an inbound near_station_ctx for this turn.
	nearStationCleared bool

	outcome string
}

// nearStation returns the live station context unless this turn cleared it.
func (t *turn) nearStation() (dialogflow.Context, bool) {
	if t.nearStationCleared {
		return dialogflow.Context{}, false
	}
	return t.inbound.Get(dialogflow.NearStation)
}

func (t *turn) notFound(lines ...string) []dialogflow.Message {
	t.outcome = outcomeNotFound
	return reply.Text(lines...)
}

// Resolve answers one fulfillment request. Data-store failures become a
// generic reply; Resolve itself never fails.
func (e *Engine) Resolve(ctx context.Context, req *dialogflow.Request) *dialogflow.Response {
	start := time.Now()

	class := intent.Classify(req.IntentName(), req.QueryResult.QueryText)
	params := intent.Normalize(req.QueryResult.Parameters, req.QueryResult.QueryText, req.Payload())
	class.Apply(&params)

	t := &turn{
		kind:    class.Kind,
		class:   class,
		params:  params,
		text:    strings.TrimSpace(req.QueryResult.QueryText),
		inbound: req.Contexts(),
		outcome: outcomeOK,
	}
	t.out = dialogflow.NewTurn(t.inbound)

	ctx = ctxutil.WithIntent(ctx, t.kind.String())
	ctx = ctxutil.WithSessionID(ctx, req.Session)
	if params.UserID != "" {
		ctx = ctxutil.WithUserID(ctx, params.UserID)
	}

	messages, err := e.dispatch(ctx, t)
	if err != nil {
		err = domerrors.NewWrapper("resolver", t.kind.String()).Wrap(err, systemErrorText)
		slog.ErrorContext(ctx, "fulfillment failed",
			"intent", t.kind.String(),
			"display_name", class.DisplayName,
			"query_text", t.text,
			"error", err)
		sentry.CaptureError(ctx, err, map[string]string{"intent": t.kind.String()})
		messages = reply.Text(domerrors.GetUserMessage(err))
		t.outcome = outcomeError
	}

	e.metrics.RecordFulfillment(t.kind.String(), t.outcome, time.Since(start).Seconds())
	return dialogflow.NewResponse(messages, t.out.Output())
}

// dispatch runs the pre-intent steps in order, then the intent handler.
func (e *Engine) dispatch(ctx context.Context, t *turn) ([]dialogflow.Message, error) {
	if t.class.NearMe {
		t.out.Clear(dialogflow.NearStation)
		t.nearStationCleared = true
	}

	state := PendingStateFrom(t.inbound)
	if pendingDistrictApplies(state, t) {
		return e.answerPendingDistrict(ctx, t, state)
	}

	if t.class.QuickNameMatch {
		if messages, ok := e.quickNameMatch(ctx, t); ok {
			return messages, nil
		}
	}

	if pt := e.sharedPoint(t, state); pt != nil {
		return e.nearbyPlaces(ctx, t, *pt, state)
	}

	switch t.kind {
	case intent.ListProvinceAttractions:
		return e.listProvinceAttractions(ctx, t)
	case intent.ListCategoriesHere:
		return e.listCategoriesHere(ctx, t)
	case intent.ListCategoryAttractions:
		return e.listCategoryAttractions(ctx, t)
	case intent.ListRecommendedAttractions:
		return e.listRecommendedAttractions(ctx, t)
	case intent.TourRoute:
		return e.tourRoute(ctx, t)
	case intent.RouteDetail:
		return e.routeDetail(ctx, t)
	case intent.ListFestivals:
		return e.listFestivals(ctx, t)
	case intent.FestivalDetail:
		return e.festivalDetail(ctx, t)
	case intent.AttractionsNearStation:
		return e.attractionsNearStation(ctx, t)
	case intent.FindAttractionByName:
		return e.findAttractionByName(ctx, t)
	case intent.AttractionDetail:
		return e.attractionDetail(ctx, t)
	case intent.UsefulLink:
		return e.usefulLinks(ctx, t)
	case intent.OnLineLocation:
		t.outcome = outcomePrompt
		return reply.Text("ยังไม่ได้รับพิกัด ลองแชร์อีกครั้งนะ"), nil
	}

	slog.InfoContext(ctx, "unhandled intent",
		"display_name", t.class.DisplayName,
		"query_text", t.text,
		"error", unknownIntentError(t.class.DisplayName))
	t.outcome = outcomeNotFound
	return reply.Text(unknownIntentText), nil
}

func unknownIntentError(displayName string) error {
	return fmt.Errorf("%w: %q", domerrors.ErrUnknownIntent, displayName)
}
