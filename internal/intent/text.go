package intent

import (
	"regexp"
	"strings"

	"github.com/lumnam/lumnam-linebot-go/internal/thaitext"
)

var genericCategories = map[string]struct{}{
	"ที่เที่ยว":         {},
	"เที่ยว":            {},
	"สถานที่":           {},
	"สถานที่ท่องเที่ยว": {},
	"ที่ท่องเที่ยว":     {},
	"แหล่งท่องเที่ยว":   {},
}

// askPhrases are whole-utterance requests for "somewhere to go" that carry no category.
var askPhrases = []string{
	"ขอที่เที่ยว",
	"หาที่เที่ยว",
	"มีที่เที่ยว",
	"อยากเที่ยว",
	"อยากได้ที่เที่ยว",
	"อยากไปเที่ยว",
}

// IsGenericCategory reports whether s is too broad to filter on. Empty counts as generic.
func IsGenericCategory(s string) bool {
	_, ok := genericCategories[strings.TrimSpace(s)]
	return ok || strings.TrimSpace(s) == ""
}

// IsGenericAsk extends IsGenericCategory with the ask phrases typed before a
// station name ("หาที่เที่ยว ใกล้สถานี...").
func IsGenericAsk(s string) bool {
	if IsGenericCategory(s) {
		return true
	}
	compact := thaitext.StripSpaces(s)
	for _, phrase := range askPhrases {
		if strings.Contains(compact, phrase) {
			return true
		}
	}
	return false
}

var nearMePhrases = []string{"ใกล้ฉัน", "ใกล้ๆ", "แถวนี้", "ใกล้ตัว"}

// IsNearMe reports whether the user asked for something near themselves
// without sharing a location.
func IsNearMe(text string) bool {
	for _, phrase := range nearMePhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}

var (
	provinceInText = regexp.MustCompile(`(?:จ\.|จังหวัด)\s*(\S+)`)
	districtInText = regexp.MustCompile(`(?:อ\.|อำเภอ)\s*(\S+)`)
)

// AreaFromText picks "จ./จังหวัด X" and "อ./อำเภอ Y" out of free text.
func AreaFromText(text string) (province, district string) {
	if m := provinceInText.FindStringSubmatch(text); m != nil {
		province = strings.TrimSpace(m[1])
	}
	if m := districtInText.FindStringSubmatch(text); m != nil {
		district = strings.TrimSpace(m[1])
	}
	return province, district
}

var (
	detailPrefix   = regexp.MustCompile(`^รายละเอียด\s*`)
	detailSubject  = regexp.MustCompile(`รายละเอียด\s+(.+)`)
	railwayMention = regexp.MustCompile(`สถานี|รถไฟ`)
)

// SearchName returns the place name typed for a name search, with a
// leading "รายละเอียด" dropped.
func SearchName(text string) string {
	return strings.TrimSpace(detailPrefix.ReplaceAllString(strings.TrimSpace(text), ""))
}

// DetailSubject returns X from "... รายละเอียด X", or empty.
func DetailSubject(text string) string {
	if m := detailSubject.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

var (
	categoryButton = regexp.MustCompile(`^(?:ที่เที่ยว|สถานที่แนะนำ\s*หมวด|หมวด(?:หมู่)?)\s+(\S+)`)
	areaToken      = regexp.MustCompile(`^(?:จ\.|จังหวัด|อ\.|อำเภอ|ใน)`)
)

// CategoryFromText returns the category of a category button text such as
// "ที่เที่ยว วัด อ.หาดใหญ่" or "สถานที่แนะนำ หมวด วัด ในอำเภอหาดใหญ่".
// Area words and generic words yield "".
func CategoryFromText(text string) string {
	m := categoryButton.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil || areaToken.MatchString(m[1]) || IsGenericCategory(m[1]) {
		return ""
	}
	return m[1]
}

// MentionsRailway reports whether the text is about stations or trains.
func MentionsRailway(text string) bool {
	return railwayMention.MatchString(text)
}

// collapseSpaces trims s and folds every whitespace run into one space.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
