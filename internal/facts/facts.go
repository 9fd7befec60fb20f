// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package facts parses structured event facts (dates, venue, city, event
// name, hashtags, handles) out of normalized post text.
package facts

import (
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"
)

// datePattern matches, in order of preference: YYYY.MM.DD (also - / or
// space separated), "MM월 DD일", and MM/DD, MM-DD or MM.DD.
var datePattern = regexp.MustCompile(
	`(?:(20\d{2})[.\-\s/]?\s*(1[0-2]|0?[1-9])[.\-\s/]?\s*(3[01]|[12]\d|0?[1-9]))` +
		`|(?:(1[0-2]|0?[1-9])\s*월\s*(3[01]|[12]\d|0?[1-9])\s*일)` +
		`|(?:(1[0-2]|0?[1-9])[./\-](3[01]|[12]\d|0?[1-9]))`)

var (
	hashtagPattern = regexp.MustCompile(`#[A-Za-z0-9_가-힣]+`)
	handlePattern  = regexp.MustCompile(`@[A-Za-z0-9_.]*[A-Za-z0-9_]`)
	eventPattern   = regexp.MustCompile(`‘([^’]+)’|“([^”]+)”|"([^"]+)"|「([^」]+)」|《([^》]+)》`)
)

// VenueHints are arena and stadium name fragments. The first hint found in
// the text, in this order, becomes the venue.
var VenueHints = []string{
	"잠실실내체육관", "잠실 체육관", "잠실실내", "체육관", "올림픽공원", "KSPO DOME", "고척돔", "고척 스카이돔",
	"사직실내체육관", "수원실내체육관", "대구실내체육관", "핸드볼경기장", "올림픽홀", "경기장", "아레나", "돔", "센터",
}

// CityHints are city names recognized as the event location.
var CityHints = []string{
	"서울", "부산", "인천", "대구", "대전", "광주", "울산", "수원", "고양", "제주",
	"seoul", "busan", "incheon", "daegu", "daejeon", "gwangju", "jeju",
}

// Facts is the structured fact set of one request. It is read-only once built.
type Facts struct {
	// Dates holds distinct calendar dates in ascending order, at midnight UTC.
	Dates []time.Time

	Venue     string
	EventName string
	City      string
	Hashtags  []string // with leading '#'
	Handles   []string // with leading '@'

	// Brands holds the quoted or bracketed names after the first one, which
	// is taken as the event name. Brand names are only ever read from the
	// text, never from a fixed list.
	Brands []string
}

// Extract parses facts from normalized text. Dates without an explicit year
// take the year of now.
func Extract(text string, now time.Time) *Facts {
	f := &Facts{
		Dates: ParseDates(text, now),
		Venue: matchHint(text, VenueHints),
		City:  matchHint(text, CityHints),
	}
	for _, m := range eventPattern.FindAllStringSubmatch(text, -1) {
		name := firstGroup(m)
		switch {
		case name == "":
		case f.EventName == "":
			f.EventName = name
		case name != f.EventName && !slices.Contains(f.Brands, name):
			f.Brands = append(f.Brands, name)
		}
	}
	f.Hashtags = uniqueMatches(hashtagPattern, text)
	f.Handles = uniqueMatches(handlePattern, text)
	return f
}

func firstGroup(m []string) string {
	for _, g := range m[1:] {
		if g = strings.TrimSpace(g); g != "" {
			return g
		}
	}
	return ""
}

// ParseDates returns every distinct valid date in text, ascending.
func ParseDates(text string, now time.Time) []time.Time {
	seen := make(map[time.Time]bool)
	var dates []time.Time
	for _, m := range datePattern.FindAllStringSubmatch(text, -1) {
		var y, mo, d int
		switch {
		case m[1] != "":
			y, mo, d = atoi(m[1]), atoi(m[2]), atoi(m[3])
		case m[4] != "":
			y, mo, d = now.Year(), atoi(m[4]), atoi(m[5])
		case m[6] != "":
			y, mo, d = now.Year(), atoi(m[6]), atoi(m[7])
		}
		t, ok := calendarDate(y, mo, d)
		if !ok || seen[t] {
			continue
		}
		seen[t] = true
		dates = append(dates, t)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// calendarDate validates month 1-12 and day 1-31 and rejects dates that do
// not exist in that month, such as February 30.
func calendarDate(y, mo, d int) (time.Time, bool) {
	if mo < 1 || mo > 12 || d < 1 || d > 31 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	if t.Month() != time.Month(mo) || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

// MatchScore scores agreement with another fact set: +0.7 when the date
// sets intersect, +0.3 when venues match case-insensitively, capped at 1.0.
func (f *Facts) MatchScore(other *Facts) float64 {
	if f == nil || other == nil {
		return 0
	}
	score := 0.0
	if f.dateHit(other) {
		score += 0.7
	}
	if f.venueHit(other) {
		score += 0.3
	}
	return min(score, 1.0)
}

// HitExplain describes which facts matched, or "" when none did.
func (f *Facts) HitExplain(other *Facts) string {
	if f == nil || other == nil {
		return ""
	}
	dateHit, venueHit := f.dateHit(other), f.venueHit(other)
	if !dateHit && !venueHit {
		return ""
	}
	return fmt.Sprintf("date match:%s / venue match:%s", yn(dateHit), yn(venueHit))
}

// DateText returns the earliest date as YYYY-MM-DD, or "".
func (f *Facts) DateText() string {
	if f == nil || len(f.Dates) == 0 {
		return ""
	}
	return f.Dates[0].Format("2006-01-02")
}

// Place returns the venue, falling back to the city.
func (f *Facts) Place() string {
	if f == nil {
		return ""
	}
	if f.Venue != "" {
		return f.Venue
	}
	return f.City
}

func (f *Facts) dateHit(other *Facts) bool {
	for _, a := range f.Dates {
		for _, b := range other.Dates {
			if a.Equal(b) {
				return true
			}
		}
	}
	return false
}

func (f *Facts) venueHit(other *Facts) bool {
	return f.Venue != "" && other.Venue != "" && strings.EqualFold(f.Venue, other.Venue)
}

func matchHint(text string, hints []string) string {
	lower := strings.ToLower(text)
	for _, h := range hints {
		if strings.Contains(lower, strings.ToLower(h)) {
			return h
		}
	}
	return ""
}

func uniqueMatches(re *regexp.Regexp, text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range re.FindAllString(text, -1) {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func yn(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}
