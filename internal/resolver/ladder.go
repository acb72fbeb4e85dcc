package resolver

import (
	"context"
	"slices"

	"github.com/lumnam/lumnam-linebot-go/internal/metrics"
)

// Filter names a query condition a rung may apply or drop.
type Filter string

const (
	FilterCategory  Filter = "category"
	FilterDistrict  Filter = "district"
	FilterProvince  Filter = "province"
	FilterTripDays  Filter = "trip_days"
	FilterRouteType Filter = "route_type"
	FilterRadius    Filter = "radius"
)

// Rung is one query attempt. Drops lists the filters of the first rung this
// attempt no longer applies.
type Rung[T any] struct {
	Name  string
	Drops []Filter
	Run   func(ctx context.Context) ([]T, error)
}

// Ladder tries rungs in order and stops at the first one returning rows.
// A rung that drops a filter the user stated this turn is skipped, so a
// broadened result never ignores explicit input.
type Ladder[T any] struct {
	intent   string
	explicit map[Filter]bool
	rungs    []Rung[T]
	metrics  *metrics.Metrics
}

// Outcome is the result of climbing a ladder.
type Outcome[T any] struct {
	Rows []T
	// Rung is the name of the rung that produced Rows, or empty.
	Rung string
	// Broadened is set when a rung after the first produced Rows.
	Broadened bool
	// Tried lists the names of the rungs that ran.
	Tried []string
}

// Found reports whether any rung returned rows.
func (o Outcome[T]) Found() bool {
	return len(o.Rows) > 0
}

// NewLadder starts a ladder for intent. explicit holds the filters stated in
// the current turn.
func NewLadder[T any](intent string, m *metrics.Metrics, explicit ...Filter) *Ladder[T] {
	l := &Ladder[T]{
		intent:   intent,
		explicit: make(map[Filter]bool, len(explicit)),
		metrics:  m,
	}
	for _, f := range explicit {
		l.explicit[f] = true
	}
	return l
}

// Add appends a rung.
func (l *Ladder[T]) Add(name string, run func(ctx context.Context) ([]T, error), drops ...Filter) *Ladder[T] {
	l.rungs = append(l.rungs, Rung[T]{Name: name, Drops: drops, Run: run})
	return l
}

// allowed reports whether r keeps every explicit filter.
func (l *Ladder[T]) allowed(r Rung[T]) bool {
	return !slices.ContainsFunc(r.Drops, func(f Filter) bool { return l.explicit[f] })
}

// Climb runs the rungs. A data-store error stops the climb.
func (l *Ladder[T]) Climb(ctx context.Context) (Outcome[T], error) {
	var out Outcome[T]
	for i, r := range l.rungs {
		if !l.allowed(r) {
			continue
		}
		out.Tried = append(out.Tried, r.Name)
		rows, err := r.Run(ctx)
		if err != nil {
			return out, err
		}
		if len(rows) > 0 {
			out.Rows = rows
			out.Rung = r.Name
			out.Broadened = i > 0
			l.metrics.RecordLadderRung(l.intent, r.Name)
			return out, nil
		}
	}
	l.metrics.RecordLadderRung(l.intent, "not_found")
	return out, nil
}

// describeArea renders "อ.<district> จ.<province>" for the non-empty parts.
func describeArea(province, district string) string {
	var d, p string
	if district != "" {
		d = "อ." + district
	}
	if province != "" {
		p = "จ." + province
	}
	return joinNonEmpty(d, p)
}
