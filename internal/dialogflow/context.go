package dialogflow

import "strings"

// Named contexts the engine reads and writes.
const (
	// AwaitingDistrict: category, asked_category, Province, mode.
	AwaitingDistrict = "awaiting_district"
	// AwaitingLocation: category.
	AwaitingLocation = "awaiting_location"
	// NearStation: station_id, station_name, district_id, district_name,
	// province_name, trip_days.
	NearStation = "near_station_ctx"
	// RouteArea: province_name, district_name, Route_Type, trip_days.
	RouteArea = "route_area_ctx"
)

// Lifespans in turns.
const (
	PendingLifespan = 3
	AreaLifespan    = 5
)

// Context is one named, session-scoped state blob. A lifespan of 0 clears it.
type Context struct {
	Name          string     `json:"name"`
	LifespanCount int        `json:"lifespanCount"`
	Parameters    Parameters `json:"parameters,omitempty"`
}

// ShortName returns the part of Name after "/contexts/".
func (c Context) ShortName() string {
	if i := strings.LastIndex(c.Name, "/contexts/"); i >= 0 {
		return c.Name[i+len("/contexts/"):]
	}
	return c.Name
}

// Contexts is a read-only view of the contexts a turn arrived with.
type Contexts struct {
	session string
	items   []Context
}

// NewContexts wraps the inbound context list of session.
func NewContexts(session string, items []Context) Contexts {
	return Contexts{session: session, items: items}
}

// Session returns the session path contexts are scoped to.
func (c Contexts) Session() string {
	return c.session
}

// Get returns the most recent live context named short. Expired contexts
// (lifespan 0) are treated as absent.
func (c Contexts) Get(short string) (Context, bool) {
	suffix := "/contexts/" + short
	for i := len(c.items) - 1; i >= 0; i-- {
		ctx := c.items[i]
		if strings.HasSuffix(ctx.Name, suffix) && ctx.LifespanCount > 0 {
			return ctx, true
		}
	}
	return Context{}, false
}

// Name returns the full context name for short in this session.
func (c Contexts) Name(short string) string {
	return c.session + "/contexts/" + short
}

// Set builds an outbound context descriptor. Lifespan 0 is the clear signal.
func (c Contexts) Set(short string, lifespan int, params Parameters) Context {
	return Context{
		Name:          c.Name(short),
		LifespanCount: lifespan,
		Parameters:    params,
	}
}

// Turn collects the contexts one response persists or clears. Setting the
// same name twice keeps the last value.
type Turn struct {
	inbound Contexts
	out     []Context
}

// NewTurn starts an empty outbound set for the inbound contexts.
func NewTurn(inbound Contexts) *Turn {
	return &Turn{inbound: inbound}
}

// Inbound returns the contexts the turn arrived with.
func (t *Turn) Inbound() Contexts {
	return t.inbound
}

// Set persists short with lifespan and params.
func (t *Turn) Set(short string, lifespan int, params Parameters) {
	t.put(t.inbound.Set(short, lifespan, params))
}

// Clear expires short.
func (t *Turn) Clear(short string) {
	t.put(t.inbound.Set(short, 0, nil))
}

// Keep re-emits an inbound context unchanged.
func (t *Turn) Keep(ctx Context) {
	t.put(ctx)
}

func (t *Turn) put(ctx Context) {
	for i := range t.out {
		if t.out[i].Name == ctx.Name {
			t.out[i] = ctx
			return
		}
	}
	t.out = append(t.out, ctx)
}

// Output returns the contexts to send, in first-set order.
func (t *Turn) Output() []Context {
	if len(t.out) == 0 {
		return nil
	}
	out := make([]Context, len(t.out))
	copy(out, t.out)
	return out
}

// FirstNonEmpty returns the first non-blank value. Pass the current turn's
// value before the stored one so explicit input wins.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
