package intent

import (
	"regexp"
	"strings"
)

var (
	stationInText    = regexp.MustCompile(`(?:ใกล้|แถว)สถานี(?:รถไฟ)?\s*(\S+)`)
	stationNearby    = regexp.MustCompile(`ใกล้สถานี|แถวสถานี`)
	whyAsk           = regexp.MustCompile(`ทำไม|เหตุผล|เพราะอะไร`)
	categoryBeforeSt = regexp.MustCompile(`^(?:ขอ\s*)?(?:ที่เที่ยว|หมวด(?:หมู่)?)\s*(.+?)\s*ใกล้สถานี`)
	anyBeforeStation = regexp.MustCompile(`^(.+?)\s*ใกล้สถานี`)
	askVerbPrefix    = regexp.MustCompile(`^(?:ขอ|หา|มี|อยาก(?:ไป)?|ช่วย(?:แนะนำ)?|แนะนำ)\s*`)
	routeOnly        = regexp.MustCompile(`^เส้นทาง(?:การ)?ท่องเที่ยว$`)
	routeStart       = regexp.MustCompile(`^เส้นทาง(?:การ)?ท่องเที่ยว`)
)

// StationFromText returns the station name typed after "ใกล้สถานี"/"แถวสถานี".
func StationFromText(text string) string {
	if m := stationInText.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// MentionsStationNearby reports whether the text asks about the area around a station.
func MentionsStationNearby(text string) bool {
	return stationNearby.MatchString(text)
}

// IsWhyAsk reports whether the user asks for the reason behind a result.
func IsWhyAsk(text string) bool {
	return whyAsk.MatchString(text)
}

// StationCategoryFromText returns the category typed before "ใกล้สถานี", as
// in "ร้านกาแฟใกล้สถานีหาดใหญ่". Route asks and generic asks yield "".
func StationCategoryFromText(text string) string {
	text = strings.TrimSpace(text)
	var category string
	if m := categoryBeforeSt.FindStringSubmatch(text); m != nil {
		category = m[1]
	} else if !routeStart.MatchString(text) {
		if m := anyBeforeStation.FindStringSubmatch(text); m != nil {
			category = m[1]
		}
	}

	category = collapseSpaces(askVerbPrefix.ReplaceAllString(strings.TrimSpace(category), ""))
	if routeOnly.MatchString(category) || IsGenericAsk(category) {
		return ""
	}
	return category
}
