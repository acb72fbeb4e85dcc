package intent

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Classification is the pre-resolution decision for a turn: the Kind the
// resolver dispatches on plus values recovered from button texts the NLU
// did not map.
type Classification struct {
	Kind Kind
	// DisplayName is the intent name exactly as the NLU reported it.
	DisplayName string
	IsFallback  bool

	RouteType      string
	RouteID        int64
	FestivalID     int64
	FestivalName   string
	AttractionName string

	// NearMe means the text asks for something near the user.
	NearMe bool
	// QuickNameMatch marks fallback text short enough to be a place name.
	QuickNameMatch bool
}

var (
	festivalDetailCommand = regexp.MustCompile(`(?i)^FestivalDetail\s+(.+)$`)
	routeDetailCommand    = regexp.MustCompile(`(?i)^RouteDetail\s+(\d+)$`)
	festivalDetailAsk     = regexp.MustCompile(`^รายละเอียด\s*เทศกาล\s+(.+)$`)
	attractionDetailAsk   = regexp.MustCompile(`^รายละเอียด\s+(.+)$`)
	notAPlaceName         = regexp.MustCompile(`ใกล้ฉัน|สถานี|เส้นทาง|หมวด|จังหวัด|อำเภอ|เทศกาล`)
)

const (
	minNameRunes = 2
	maxNameRunes = 40
)

// Classify decides the Kind of a turn before any lookup runs. Button texts
// produced by earlier replies ("เส้นทางท่องเที่ยว ประเภท ...", "FestivalDetail 3",
// "RouteDetail 7", "รายละเอียด ...") win over the NLU's own choice so taps
// behave like typed input.
func Classify(displayName, queryText string) Classification {
	q := strings.TrimSpace(queryText)
	c := Classification{
		Kind:        ParseKind(displayName),
		DisplayName: displayName,
		IsFallback:  displayName == FallbackDisplayName,
		NearMe:      IsNearMe(q),
	}

	if phrase, ok := RouteTypeFromText(q); ok {
		c.Kind = TourRoute
		c.RouteType = phrase
		return c
	}
	if m := festivalDetailCommand.FindStringSubmatch(q); m != nil {
		c.Kind = FestivalDetail
		c.setFestival(m[1])
		return c
	}
	if m := routeDetailCommand.FindStringSubmatch(q); m != nil {
		c.Kind = RouteDetail
		c.RouteID, _ = strconv.ParseInt(m[1], 10, 64)
		return c
	}
	if !c.IsFallback {
		return c
	}

	if m := festivalDetailAsk.FindStringSubmatch(q); m != nil {
		c.Kind = FestivalDetail
		c.setFestival(m[1])
		return c
	}
	if m := attractionDetailAsk.FindStringSubmatch(q); m != nil {
		c.Kind = AttractionDetail
		c.AttractionName = strings.TrimSpace(m[1])
		return c
	}
	n := utf8.RuneCountInString(q)
	c.QuickNameMatch = n >= minNameRunes && n <= maxNameRunes && !notAPlaceName.MatchString(q)
	return c
}

func (c *Classification) setFestival(token string) {
	token = strings.TrimSpace(token)
	if id, err := strconv.ParseInt(token, 10, 64); err == nil {
		c.FestivalID = id
		return
	}
	c.FestivalName = token
}

// Apply copies values recovered from the text over p. Recovered values come
// from this turn, so they take precedence over NLU parameters.
func (c Classification) Apply(p *Params) {
	if c.RouteType != "" {
		p.RouteType = CleanRouteType(c.RouteType, p.Province, p.District)
	}
	if c.RouteID != 0 {
		p.RouteID = c.RouteID
	}
	if c.FestivalID != 0 {
		p.FestivalID = c.FestivalID
		p.FestivalName = ""
	}
	if c.FestivalName != "" {
		p.FestivalName = c.FestivalName
	}
	if c.AttractionName != "" {
		p.AttractionName = c.AttractionName
	}
}
