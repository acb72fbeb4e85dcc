package geo

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Source is everything coordinates may be read from in one inbound turn.
type Source struct {
	// Params are the NLU parameters as received.
	Params map[string]any
	// Payload is the raw platform payload (the "originalDetectIntentRequest.payload" object).
	Payload gjson.Result
	// Text is the user's free text.
	Text string
}

// NewSource parses the raw payload JSON. A nil or malformed payload yields an empty tree.
func NewSource(params map[string]any, payload []byte, text string) Source {
	var tree gjson.Result
	if len(payload) > 0 && gjson.ValidBytes(payload) {
		tree = gjson.ParseBytes(payload)
	}
	return Source{Params: params, Payload: tree, Text: text}
}

// Extractor returns a coordinate pair found in src, if any.
type Extractor func(src Source) (Point, bool)

// locationMessagePaths hold a LINE message object with type "location".
var locationMessagePaths = []string{
	"data.events.0.message",
	"data.message",
}

// nestedLocationPaths hold an object whose "location" field carries the pair.
var nestedLocationPaths = []string{
	"data.message.location",
	"data.events.0.message.location",
	"message.location",
	"events.0.message.location",
}

var textCoordinatePattern = regexp.MustCompile(`(-?\d+(?:\.\d+)?)\s*,\s*(-?\d+(?:\.\d+)?)`)

// DefaultExtractors is the lookup order used by ExtractCoordinates.
var DefaultExtractors = []Extractor{
	fromParams,
	fromLocationMessages,
	fromNestedLocations,
	fromPostbackParams,
	fromPostbackData,
	fromDataRoot,
	fromText,
}

// ExtractCoordinates returns the first valid pair found by DefaultExtractors.
func ExtractCoordinates(src Source) (Point, bool) {
	return ExtractWith(src, DefaultExtractors...)
}

// ExtractWith runs extractors in order; the first success wins.
func ExtractWith(src Source, extractors ...Extractor) (Point, bool) {
	for _, extract := range extractors {
		if p, ok := extract(src); ok {
			return p, true
		}
	}
	return Point{}, false
}

func fromParams(src Source) (Point, bool) {
	if src.Params == nil {
		return Point{}, false
	}
	lat, ok1 := anyNumber(src.Params["latitude"])
	lng, ok2 := anyNumber(src.Params["longitude"])
	return pair(lat, lng, ok1 && ok2)
}

func fromLocationMessages(src Source) (Point, bool) {
	for _, path := range locationMessagePaths {
		msg := src.Payload.Get(path)
		if msg.Get("type").String() != "location" {
			continue
		}
		if p, ok := latLngOf(msg); ok {
			return p, true
		}
	}
	return Point{}, false
}

func fromNestedLocations(src Source) (Point, bool) {
	for _, path := range nestedLocationPaths {
		if p, ok := latLngOf(src.Payload.Get(path)); ok {
			return p, true
		}
	}
	return Point{}, false
}

func fromPostbackParams(src Source) (Point, bool) {
	return latLngOf(src.Payload.Get("data.postback.params"))
}

func fromPostbackData(src Source) (Point, bool) {
	data := src.Payload.Get("data.postback.data")
	if data.Type != gjson.String || !gjson.Valid(data.Str) {
		return Point{}, false
	}
	return latLngOf(gjson.Parse(data.Str))
}

func fromDataRoot(src Source) (Point, bool) {
	return latLngOf(src.Payload.Get("data"))
}

func fromText(src Source) (Point, bool) {
	m := textCoordinatePattern.FindStringSubmatch(src.Text)
	if m == nil {
		return Point{}, false
	}
	lat, err1 := strconv.ParseFloat(m[1], 64)
	lng, err2 := strconv.ParseFloat(m[2], 64)
	return pair(lat, lng, err1 == nil && err2 == nil)
}

func latLngOf(obj gjson.Result) (Point, bool) {
	if !obj.IsObject() {
		return Point{}, false
	}
	lat, ok1 := jsonNumber(obj.Get("latitude"))
	lng, ok2 := jsonNumber(obj.Get("longitude"))
	return pair(lat, lng, ok1 && ok2)
}

func pair(lat, lng float64, ok bool) (Point, bool) {
	p := Point{Lat: lat, Lng: lng}
	if !ok || !p.Valid() {
		return Point{}, false
	}
	return p, true
}

func jsonNumber(r gjson.Result) (float64, bool) {
	switch r.Type {
	case gjson.Number:
		return r.Num, true
	case gjson.String:
		return parseNumber(r.Str)
	default:
		return 0, false
	}
}

func anyNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		return parseNumber(n)
	case []any:
		if len(n) > 0 {
			return anyNumber(n[0])
		}
	}
	return 0, false
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, isFinite(f)
}
