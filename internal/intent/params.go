package intent

import (
	"strconv"
	"strings"

	"github.com/lumnam/lumnam-linebot-go/internal/geo"
	"github.com/tidwall/gjson"
)

// Params is the canonical parameter set of one turn. Empty strings and
// zero numbers mean unset.
type Params struct {
	// Category is the category filter; generic words are already cleared.
	Category string
	// RawCategory is the category as received, kept for stashing across turns.
	RawCategory string
	Province    string
	// District has its locative prefix (อำเภอ, อ., เขต, เทศบาล) removed.
	District string

	// TripDays comes from the day parameter or this turn's text.
	TripDays int
	// ExplicitDays is set when the day parameter is present or the text
	// states a day count. Route queries only filter on TripDays when set.
	ExplicitDays bool

	RouteType    string
	Month        int
	MonthLabel   string
	ExplicitDate string

	Coords *geo.Point
	UserID string

	Station        string
	AttractionName string
	FestivalName   string
	FestivalID     int64
	RouteID        int64
}

// HasArea reports whether a province or district was given.
func (p Params) HasArea() bool {
	return p.Province != "" || p.District != ""
}

// userIDPaths are the payload locations a LINE user id may arrive at.
var userIDPaths = []string{
	"data.source.userId",
	"data.events.0.source.userId",
	"events.0.source.userId",
	"source.userId",
}

// Normalize builds Params from the NLU parameter map, the raw query text and
// the original platform payload (JSON, may be nil). It has no side effects.
func Normalize(raw map[string]any, queryText string, payload []byte) Params {
	p := Params{
		RawCategory:    first(raw, "category", "Category"),
		Province:       first(raw, "Province", "province"),
		District:       geo.StripDistrictPrefix(first(raw, "District", "district")),
		Station:        first(raw, "StationName", "station_name", "station"),
		AttractionName: first(raw, "AttractionName", "attraction_name", "attraction"),
		FestivalName:   first(raw, "FestivalName", "festival_name"),
	}
	if p.RawCategory == "" {
		if c := CategoryFromText(queryText); c != p.Province && c != p.District {
			p.RawCategory = c
		}
	}
	if !IsGenericCategory(p.RawCategory) {
		p.Category = p.RawCategory
	}

	dayParam := first(raw, "day", "Day", "trip_days")
	if n, err := strconv.Atoi(dayParam); err == nil && n > 0 {
		p.TripDays = n
	} else if n, ok := ParseTripDays(queryText); ok {
		p.TripDays = n
	}
	p.ExplicitDays = p.TripDays > 0 && (dayParam != "" || HasExplicitDays(queryText))

	if rt := first(raw, "RouteType", "route_type", "Route_Type"); rt != "" {
		p.RouteType = CleanRouteType(rt, p.Province, p.District)
	}

	if date, ok := ParseDate(first(raw, "date", "Date")); ok {
		p.ExplicitDate = date
	}
	monthParam := first(raw, "month")
	switch {
	case MonthFromParam(firstValue(raw["Month"])) != 0:
		p.Month = MonthFromParam(firstValue(raw["Month"]))
	case MonthFromName(monthParam) != 0:
		p.Month = MonthFromName(monthParam)
	default:
		p.Month = MonthFromText(queryText)
	}
	if p.Month != 0 {
		p.MonthLabel = "เดือน" + ThaiMonthName(p.Month)
	}

	p.FestivalID = firstID(raw, "festival_id", "FestivalID")
	p.RouteID = firstID(raw, "route_id", "RouteID")

	if pt, ok := geo.ExtractCoordinates(geo.NewSource(raw, payload, queryText)); ok {
		p.Coords = &pt
	}
	p.UserID = UserIDFromPayload(payload)
	return p
}

// UserIDFromPayload returns the LINE user id carried in the original
// platform payload, or empty.
func UserIDFromPayload(payload []byte) string {
	if len(payload) == 0 || !gjson.ValidBytes(payload) {
		return ""
	}
	for _, path := range userIDPaths {
		if id := gjson.GetBytes(payload, path).String(); id != "" {
			return id
		}
	}
	return ""
}

// first returns the first non-empty parameter among keys, reducing
// list-valued parameters to their first element.
func first(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		if s := strings.TrimSpace(asString(firstValue(raw[key]))); s != "" {
			return s
		}
	}
	return ""
}

func firstID(raw map[string]any, keys ...string) int64 {
	for _, key := range keys {
		if id, err := strconv.ParseInt(first(raw, key), 10, 64); err == nil && id > 0 {
			return id
		}
	}
	return 0
}

func firstValue(v any) any {
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return nil
		}
		return list[0]
	}
	return v
}

func asString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	}
	return ""
}
