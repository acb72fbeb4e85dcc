// Package thaitext implements loose matching for Thai names: both the Go-side
// normalization of user text and the equivalent SQL expression applied to
// stored columns, so that containment can be tested inside the database.
package thaitext

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// markRanges are the combining vowel and tone marks dropped by Normalize:
// MAI HAN-AKAT, the above/below vowels and PHINTHU, and MAITAIKHU through YAMAKKAN.
var markRanges = [][2]rune{
	{0x0E31, 0x0E31},
	{0x0E34, 0x0E3A},
	{0x0E47, 0x0E4E},
}

// IsMark reports whether r is one of the stripped combining marks.
func IsMark(r rune) bool {
	for _, rg := range markRanges {
		if r >= rg[0] && r <= rg[1] {
			return true
		}
	}
	return false
}

// Normalize removes all whitespace and the combining marks. It is idempotent.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || IsMark(r) {
			return -1
		}
		return r
	}, norm.NFC.String(s))
}

// StripSpaces removes whitespace only.
func StripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// SQLExpr wraps column in nested REPLACE calls that drop spaces and each mark,
// mirroring Normalize for values stored without other whitespace.
func SQLExpr(column string) string {
	expr := fmt.Sprintf("REPLACE(%s, ' ', '')", column)
	for _, rg := range markRanges {
		for r := rg[0]; r <= rg[1]; r++ {
			expr = fmt.Sprintf("REPLACE(%s, char(%d), '')", expr, r)
		}
	}
	return expr
}

// ContainsEither reports loose containment in either direction, used when a
// short user text must match a longer stored name or the other way round.
func ContainsEither(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}

// RuneLen counts runes, not bytes.
func RuneLen(s string) int {
	return len([]rune(s))
}
