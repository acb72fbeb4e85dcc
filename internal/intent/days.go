package intent

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/lumnam/lumnam-linebot-go/internal/thaitext"
)

var digitDays = regexp.MustCompile(`(\d+)\s*วัน`)

// dayWords is checked in order; the first phrase contained in the text wins.
var dayWords = []struct {
	phrase string
	days   int
}{
	{"หนึ่งวัน", 1},
	{"1วัน", 1},
	{"วันเดียว", 1},
	{"สองวัน", 2},
	{"2วัน", 2},
	{"สอง", 2},
	{"สามวัน", 3},
	{"3วัน", 3},
	{"สาม", 3},
	{"สี่วัน", 4},
	{"4วัน", 4},
	{"สี่", 4},
}

// ParseTripDays extracts a trip length from free text: "<n>วัน" first, then
// the Thai number words. Whitespace is ignored.
func ParseTripDays(text string) (int, bool) {
	t := thaitext.StripSpaces(text)
	if t == "" {
		return 0, false
	}
	if m := digitDays.FindStringSubmatch(t); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n, true
		}
	}
	for _, w := range dayWords {
		if strings.Contains(t, w.phrase) {
			return w.days, true
		}
	}
	return 0, false
}

var explicitDays = regexp.MustCompile(`(\d+)\s*วัน|วันเดียว|หนึ่งวัน|สองวัน|สามวัน|สี่วัน`)

// HasExplicitDays reports whether this turn's text states a day count.
// Only an explicit statement may put a day filter on a route query.
// Whitespace is ignored, as in ParseTripDays.
func HasExplicitDays(text string) bool {
	return explicitDays.MatchString(thaitext.StripSpaces(text))
}

var genericRouteAsk = regexp.MustCompile(`^(แนะนำ)?\s*เส้นทาง(?:การ)?ท่องเที่ยว(หน่อย)?$`)

// IsGenericRouteAsk reports a bare "suggest a route" request, which never
// carries a day filter.
func IsGenericRouteAsk(text string) bool {
	return genericRouteAsk.MatchString(strings.TrimSpace(text))
}

// MoveDaysOutOfPhrase splits a day count out of a route-type phrase such as
// "ธรรมชาติ 2 วัน". When the phrase has no day count, current is kept.
// Canonical route type names are never split.
func MoveDaysOutOfPhrase(phrase string, current int) (days int, routeType string) {
	phrase = strings.TrimSpace(phrase)
	if isCanonicalRouteType(phrase) {
		return current, phrase
	}
	for _, name := range canonicalRouteTypes {
		if rest, ok := strings.CutPrefix(phrase, name); ok {
			if d, ok := ParseTripDays(rest); ok {
				return d, name
			}
			return current, phrase
		}
	}
	d, ok := ParseTripDays(phrase)
	if !ok {
		return current, phrase
	}
	return d, collapseSpaces(explicitDays.ReplaceAllString(phrase, " "))
}
