package intent

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

var monthNames = map[string]int{
	"มกราคม": 1, "ม.ค.": 1, "มค": 1, "jan": 1, "january": 1,
	"กุมภาพันธ์": 2, "ก.พ.": 2, "กพ": 2, "feb": 2, "february": 2,
	"มีนาคม": 3, "มี.ค.": 3, "มีค": 3, "mar": 3, "march": 3,
	"เมษายน": 4, "เม.ย.": 4, "เมย": 4, "apr": 4, "april": 4,
	"พฤษภาคม": 5, "พ.ค.": 5, "พค": 5, "may": 5,
	"มิถุนายน": 6, "มิ.ย.": 6, "มิย": 6, "jun": 6, "june": 6,
	"กรกฎาคม": 7, "ก.ค.": 7, "กค": 7, "jul": 7, "july": 7,
	"สิงหาคม": 8, "ส.ค.": 8, "สค": 8, "aug": 8, "august": 8,
	"กันยายน": 9, "ก.ย.": 9, "กย": 9, "sep": 9, "september": 9,
	"ตุลาคม": 10, "ต.ค.": 10, "ตค": 10, "oct": 10, "october": 10,
	"พฤศจิกายน": 11, "พ.ย.": 11, "พย": 11, "nov": 11, "november": 11,
	"ธันวาคม": 12, "ธ.ค.": 12, "ธค": 12, "dec": 12, "december": 12,
}

// monthKeysByLength lets MonthFromText match the longest name first, so
// "ตุลาคมนี้" still resolves and "มีค" never shadows "มีนาคม".
var monthKeysByLength = func() []string {
	keys := make([]string, 0, len(monthNames))
	for k := range monthNames {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

var thaiMonths = [...]string{
	"มกราคม", "กุมภาพันธ์", "มีนาคม", "เมษายน", "พฤษภาคม", "มิถุนายน",
	"กรกฎาคม", "สิงหาคม", "กันยายน", "ตุลาคม", "พฤศจิกายน", "ธันวาคม",
}

// ThaiMonthName returns the full Thai name of month 1-12, or empty.
func ThaiMonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return thaiMonths[month-1]
}

// MonthFromName maps a Thai (full or abbreviated) or English month name to 1-12.
func MonthFromName(s string) int {
	return monthNames[strings.ToLower(strings.TrimSpace(s))]
}

var monthInText = regexp.MustCompile(`(?i)เดือน\s*([ก-๙a-z.]+)`)

// MonthFromText finds "เดือน<name>" in free text and returns its number, or 0.
func MonthFromText(text string) int {
	m := monthInText.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	token := strings.ToLower(m[1])
	if n := monthNames[token]; n != 0 {
		return n
	}
	for _, key := range monthKeysByLength {
		if strings.HasPrefix(token, key) {
			return monthNames[key]
		}
	}
	return 0
}

// MonthFromParam reads the NLU date-period parameter ({startDate, endDate})
// and returns the month of its start, or 0.
func MonthFromParam(v any) int {
	var start string
	switch val := v.(type) {
	case map[string]any:
		start, _ = val["startDate"].(string)
	case string:
		start = val
	}
	if start == "" {
		return 0
	}
	if t, err := time.Parse(time.RFC3339, start); err == nil {
		return int(t.Month())
	}
	if len(start) >= len(DateLayout) {
		if t, err := time.Parse(DateLayout, start[:len(DateLayout)]); err == nil {
			return int(t.Month())
		}
	}
	return 0
}

// DateLayout is the calendar date format used for explicit dates.
const DateLayout = "2006-01-02"

// ParseDate accepts "YYYY-MM-DD" or an RFC 3339 timestamp and returns the
// calendar date it names, in "YYYY-MM-DD" form.
func ParseDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format(DateLayout), true
	}
	if len(s) >= len(DateLayout) {
		if t, err := time.Parse(DateLayout, s[:len(DateLayout)]); err == nil {
			return t.Format(DateLayout), true
		}
	}
	return "", false
}
