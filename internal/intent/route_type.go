package intent

import (
	"regexp"
	"slices"
	"strings"
)

// Canonical route type names used by the catalogue.
const (
	RouteTypeOneDay = "วันเดียวก็เที่ยวได้"
	RouteTypeFamily = "Family Trip แสนอบอุ่น"
	RouteTypeNature = "เส้นทางท่องเที่ยวสายรักธรรมชาติ"
)

// routeTypeAliases maps lowercased user phrasings to a canonical type.
// An empty target means the phrase was only a day count.
var routeTypeAliases = map[string]string{
	"one day trip":   RouteTypeOneDay,
	"1 day trip":     RouteTypeOneDay,
	"วันเดียว":       RouteTypeOneDay,
	"ทริปวันเดียว":   RouteTypeOneDay,
	"ครอบครัว":       RouteTypeFamily,
	"สายธรรมชาติ":    RouteTypeNature,
	"รักธรรมชาติ":    RouteTypeNature,
	"สายรักธรรมชาติ": RouteTypeNature,
	"2วัน":           "",
	"สองวัน":         "",
	"1วัน":           "",
	"หนึ่งวัน":       "",
}

var canonicalRouteTypes = []string{RouteTypeOneDay, RouteTypeFamily, RouteTypeNature}

func isCanonicalRouteType(s string) bool {
	return slices.Contains(canonicalRouteTypes, s)
}

var (
	routePrefix     = regexp.MustCompile(`^เส้นทาง(?:การ)?ท่องเที่ยว\s*(?:ประเภท\s*)?`)
	areaQualifier   = regexp.MustCompile(`\s+(?:จังหวัด|จ\.|อำเภอ|อ\.|ตำบล|ต\.)\s*.*$`)
	whereQualifier  = regexp.MustCompile(`\s+(?:ที่ไหน|ในพื้นที่|ในเขต).*$`)
	tourRouteAsk    = regexp.MustCompile(`^เส้นทางท่องเที่ยว\s*(?:ประเภท)?\s+(.+)$`)
	stationRouteAsk = regexp.MustCompile(`^เส้นทาง(?:การ)?ท่องเที่ยว\s*(?:ประเภท)?\s*(.+?)\s*(?:ใกล้สถานี|แถวสถานี|ใกล้)`)
	routeMention    = regexp.MustCompile(`เส้นทาง(?:การ)?ท่องเที่ยว`)
)

// CleanRouteType reduces a typed or tapped route phrase to the route type
// name: filler prefix, area qualifiers and trailing area names are removed
// and aliases are mapped. An empty result means "no specific type".
func CleanRouteType(raw, province, district string) string {
	t := collapseSpaces(raw)
	if t == "" {
		return ""
	}
	if !isCanonicalRouteType(t) {
		t = routePrefix.ReplaceAllString(t, "")
	}
	t = areaQualifier.ReplaceAllString(t, "")
	t = whereQualifier.ReplaceAllString(t, "")
	if canonical, ok := routeTypeAliases[strings.ToLower(t)]; ok {
		t = canonical
	}
	for _, name := range []string{province, district} {
		if name = strings.TrimSpace(name); name != "" && t != name && strings.HasSuffix(t, name) {
			t = strings.TrimSpace(strings.TrimSuffix(t, name))
		}
	}
	return strings.TrimSpace(t)
}

// RouteTypeFromText returns the phrase after "เส้นทางท่องเที่ยว [ประเภท]".
func RouteTypeFromText(text string) (string, bool) {
	m := tourRouteAsk.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// StationRouteTypeFromText returns X from "เส้นทางท่องเที่ยว [ประเภท] X ใกล้สถานี...".
func StationRouteTypeFromText(text string) string {
	if m := stationRouteAsk.FindStringSubmatch(strings.TrimSpace(text)); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// MentionsRoute reports whether the text asks about tour routes.
func MentionsRoute(text string) bool {
	return routeMention.MatchString(text)
}
