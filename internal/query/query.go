// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package query expands extracted facts and keywords into ranked,
// deduplicated search-engine query strings.
//
// Build applies template families (event name alone and with ticketing
// words, anchors around the event name, place and date combinations,
// hashtag and handle probes, site-filtered ticketing lookups, generic
// keyword tails) and post-processes the result. Cascade produces the
// ordered fallback queries tried when the primary query finds nothing.
// Queries are raw strings; adapters URL-encode them.
package query

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/verify-engine/internal/facts"
)

const (
	// MaxQueryLen caps a single query, in runes.
	MaxQueryLen = 120

	// MaxQueries caps the number of queries Build returns.
	MaxQueries = 24

	genericPool = 10
	genericTail = 5
)

var (
	ticketKO = []string{"예매", "티켓", "티켓오픈", "공지", "안내", "라인업", "공식", "콘서트", "공연", "일정", "좌석", "가격"}
	ticketEN = []string{"ticket", "tickets", "ticketing", "on sale", "lineup", "official", "concert", "show", "notice", "announcement", "schedule", "venue", "seating", "price", "booking"}

	// anchorTicketWords pair with anchors when no event name is known.
	anchorTicketWords = []string{"예매", "티켓", "공지", "라인업", "concert", "ticket"}

	// ticketingContext signals a performance/ticketing post.
	ticketingContext = []string{"예매", "티켓", "티켓오픈", "공연", "콘서트", "라인업", "nol", "인터파크", "멜론티켓", "예스24"}

	// siteFilters pairs each allow-listed domain with the keyword used when
	// no event name is known.
	siteFilters = []struct{ site, fallback string }{
		{"tickets.interpark.com", "콘서트"},
		{"ticket.interpark.com", "콘서트"},
		{"interpark.com", "콘서트"},
		{"interpark.com", "concert"},
		{"naver.com", "concert"},
	}
)

var stopKO = toSet(
	"그리고", "그러나", "하지만", "또는", "및", "또", "등", "은", "는", "이", "가", "을", "를", "에", "의",
	"도", "만", "로", "으로", "에서", "에게", "했다", "합니다", "오늘", "이번", "해당", "관련", "제", "좀",
	"더", "수", "있는", "없는", "입니다", "대한", "때문", "중", "동안", "예정", "가능", "공지", "안내",
)

var stopEN = toSet(
	"the", "a", "an", "and", "or", "but", "to", "of", "in", "on", "for", "with", "at", "by", "as", "is", "are",
	"this", "that", "these", "those", "be", "been", "was", "were", "it", "its", "from", "about", "we", "you",
	"they", "i", "he", "she", "them", "our", "your", "their", "will", "can", "may", "more", "most", "over",
)

var splitPattern = regexp.MustCompile(`[^\p{L}\p{N}#@._]+`)

// Build returns up to MaxQueries candidate queries for the normalized title
// and body. f may be nil. When no template applies, a minimal fallback is
// returned: the quoted event name with two ticketing variants, or the top
// generic keywords joined by spaces.
func Build(normTitle, normBody string, f *facts.Facts) []string {
	title, body := sanitize(normTitle), sanitize(normBody)
	text := title + " " + body
	generic := genericKeywords(text, genericPool)
	anchors := collectAnchors(f)

	var event string
	if f != nil {
		event = strings.TrimSpace(f.EventName)
	}

	qs := newOrderedSet()

	if event != "" {
		qe := quote(event)
		qs.add(qe)
		for _, kw := range ticketKO {
			qs.add(qe + " " + kw)
		}
		for _, kw := range ticketEN {
			qs.add(qe + " " + kw)
		}
		for _, a := range anchors {
			qs.add(a + " " + qe)
			qs.add(qe + " " + a)
		}
		if place := f.Place(); place != "" {
			qs.add(qe + " " + place)
			qs.add(qe + " " + place + " 일정")
			qs.add(qe + " " + place + " schedule")
		}
		if date := f.DateText(); date != "" {
			qs.add(qe + " " + date)
			qs.add(qe + " " + date + " 예매")
		}
	}

	if f != nil {
		for _, h := range f.Hashtags {
			if strings.HasPrefix(h, "#") {
				qs.add(h + " 콘서트")
			}
		}
		for _, h := range f.Handles {
			if bare, ok := strings.CutPrefix(h, "@"); ok {
				qs.add(bare + " 공식 공지")
				qs.add("site:instagram.com " + bare)
			}
		}
	}

	if event != "" || containsAny(text, ticketingContext) {
		for _, sf := range siteFilters {
			subject := sf.fallback
			if event != "" {
				subject = quote(event)
			}
			qs.add(subject + " site:" + sf.site)
		}
	}

	if event != "" && len(generic) > 0 {
		qs.add(quote(event) + " " + strings.Join(head(generic, genericTail), " "))
	}

	if event == "" {
		for _, a := range anchors {
			for _, k := range anchorTicketWords {
				qs.add(a + " " + k)
			}
		}
	}

	out := postProcess(qs.items)
	if len(out) == 0 {
		out = postProcess(fallback(event, generic))
	}
	return out
}

func postProcess(raw []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, q := range raw {
		q = stripDoubledQuotes(collapseSpaces(q))
		if r := []rune(q); len(r) > MaxQueryLen {
			q = strings.TrimSpace(string(r[:MaxQueryLen]))
		}
		if !hasAlnum(q) || seen[q] {
			continue
		}
		seen[q] = true
		out = append(out, q)
		if len(out) == MaxQueries {
			break
		}
	}
	return out
}

func fallback(event string, generic []string) []string {
	if event != "" {
		qe := quote(event)
		return []string{qe, qe + " 예매", qe + " ticket"}
	}
	if len(generic) > 0 {
		return []string{strings.Join(head(generic, genericTail), " ")}
	}
	return nil
}

// collectAnchors gathers brands, handles (without '@'), hashtags (with
// '#'), venue and city in that order.
func collectAnchors(f *facts.Facts) []string {
	if f == nil {
		return nil
	}
	set := newOrderedSet()
	for _, b := range f.Brands {
		set.add(b)
	}
	for _, h := range f.Handles {
		set.add(strings.TrimPrefix(h, "@"))
	}
	for _, h := range f.Hashtags {
		if strings.HasPrefix(h, "#") {
			set.add(h)
		}
	}
	set.add(f.Venue)
	set.add(f.City)
	return set.items
}

// genericKeywords ranks tokens by frequency, skipping stop words and
// number-only tokens. Ties keep first-seen order.
func genericKeywords(text string, limit int) []string {
	var order []string
	freq := make(map[string]int)
	for _, tok := range splitPattern.Split(strings.ToLower(text), -1) {
		tok = strings.TrimSpace(tok)
		if utf8.RuneCountInString(tok) <= 1 || stopKO[tok] || stopEN[tok] {
			continue
		}
		if !strings.HasPrefix(tok, "#") && !strings.HasPrefix(tok, "@") && numericOnly(tok) {
			continue
		}
		if freq[tok] == 0 {
			order = append(order, tok)
		}
		freq[tok]++
	}
	sort.SliceStable(order, func(i, j int) bool { return freq[order[i]] > freq[order[j]] })
	return head(order, limit)
}

// sanitize applies NFKC, drops pictographs and other noise runes, and
// straightens typographic quotes.
func sanitize(s string) string {
	s = norm.NFKC.String(s)
	s = strings.Map(func(r rune) rune {
		switch r {
		case '“', '”':
			return '"'
		case '‘', '’':
			return '\''
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		if r < unicode.MaxASCII && unicode.IsPrint(r) {
			return r
		}
		if unicode.In(r, unicode.Ps, unicode.Pe, unicode.Pd) {
			return r
		}
		return ' '
	}, s)
	return collapseSpaces(s)
}

func quote(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, `"`, " "))
	if s == "" {
		return ""
	}
	return `"` + s + `"`
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func stripDoubledQuotes(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "''", "'"), `""`, `"`)
}

func hasAlnum(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }) >= 0
}

func numericOnly(s string) bool {
	hasDigit := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			return false
		}
		if unicode.IsDigit(r) {
			hasDigit = true
		}
	}
	return hasDigit
}

func containsAny(text string, needles []string) bool {
	lower := strings.ToLower(text)
	for _, n := range needles {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}

func head(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func toSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// orderedSet keeps insertion order and ignores blanks and repeats.
type orderedSet struct {
	items []string
	seen  map[string]bool
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]bool)}
}

func (s *orderedSet) add(v string) {
	v = strings.TrimSpace(v)
	if v == "" || s.seen[v] {
		return
	}
	s.seen[v] = true
	s.items = append(s.items, v)
}
