// Package stringutil provides common string manipulation utilities.
package stringutil

import (
	"strings"
	"unicode"
)

// PhoneDigits keeps only digits and '+' so the result is dialable.
//
// Example:
//
//	PhoneDigits("074-123 456") returns "074123456"
func PhoneDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '+' {
			return r
		}
		return -1
	}, s)
}

// StripControl removes C0 and C1 control characters, including newlines.
func StripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// NormalizeURL trims s and prefixes "https://" when no http(s) scheme is
// present. Empty input stays empty.
func NormalizeURL(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return s
	}
	return "https://" + strings.TrimLeft(s, "/")
}

// Cut returns at most n runes of s without adding an ellipsis.
func Cut(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
