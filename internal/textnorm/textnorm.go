// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textnorm reduces free-form post text to the canonical form every
// other stage compares against: URLs and pictographs removed, whitespace
// collapsed, lower-cased and capped at MaxLen runes.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxLen is the rune cap applied to normalized text.
const MaxLen = 1200

var urlPattern = regexp.MustCompile(`(?i)https?://\S+`)

// Normalize returns the canonical form of s. It is pure and idempotent:
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	t := strings.TrimSpace(s)
	if t == "" {
		return ""
	}
	t = urlPattern.ReplaceAllString(t, " ")
	t = strings.Map(func(r rune) rune {
		if isNoise(r) {
			return ' '
		}
		return r
	}, t)
	t = strings.ToLower(strings.Join(strings.Fields(t), " "))

	if r := []rune(t); len(r) > MaxLen {
		t = strings.TrimSpace(string(r[:MaxLen]))
	}
	return t
}

// isNoise reports whether r is a pictograph, modifier symbol, variation
// selector, or otherwise non-printable rune.
func isNoise(r rune) bool {
	switch {
	case unicode.IsSpace(r):
		return false
	case unicode.In(r, unicode.So, unicode.Sk):
		return true
	case r >= 0xFE00 && r <= 0xFE0F:
		return true
	default:
		return !unicode.IsPrint(r)
	}
}

var stopwords = map[string]bool{
	"은": true, "는": true, "이": true, "가": true, "을": true, "를": true,
	"에": true, "에서": true, "으로": true, "로": true, "와": true, "과": true,
	"도": true, "만": true, "의": true, "하다": true,
	"the": true, "a": true, "an": true, "to": true, "of": true, "and": true,
	"or": true, "is": true, "are": true, "in": true, "on": true, "for": true,
	"with": true, "by": true, "at": true, "as": true, "that": true,
}

// IsStopword reports whether tok belongs to the bilingual stop-word set.
func IsStopword(tok string) bool {
	return stopwords[tok]
}

// Ellipsize cuts s to max runes, appending "..." when it was cut.
func Ellipsize(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
