// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package keywords pulls search anchors out of raw post text without any
// hard-coded brand list: handles, hashtags, quoted phrases, source-URL host
// tokens and announcement trigger words, boosted with the most frequent
// generic tokens of the normalized text.
package keywords

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/pdiddy/verify-engine/internal/textnorm"
)

var (
	handlePattern  = regexp.MustCompile(`@[A-Za-z0-9_.]+`)
	hashtagPattern = regexp.MustCompile(`#[A-Za-z0-9_가-힣]+`)
	quotedPattern  = regexp.MustCompile(`‘([^’]+)’|"([^"]+)"|“([^”]+)”|\(([^)]+)\)`)
	tokenPattern   = regexp.MustCompile(`[A-Za-z0-9가-힣]{2,}`)
	nonTokenChars  = regexp.MustCompile(`[^A-Za-z0-9가-힣]`)
	digitsOnly     = regexp.MustCompile(`^\d+$`)
)

// Triggers are action/announcement words used as generic anchors when they
// literally appear in the text. They name kinds of posts, never brands.
var Triggers = []string{
	"이벤트", "프로모션", "공지", "공식", "모집", "무료", "당첨", "체험단",
	"event", "promotion", "notice", "official", "giveaway", "free",
}

// hostStopParts are generic host labels dropped from URL-host tokens.
var hostStopParts = map[string]bool{"com": true, "co": true, "kr": true}

// MinGenericPool is the minimum number of generic tokens Boosted draws from.
const MinGenericPool = 12

// ExtractEntities returns entity-like tokens from raw text and the source URL
// in priority order: handles, hashtags, quoted phrases, host tokens, triggers.
// Tokens are reduced to lower-case alphanumerics and deduplicated.
func ExtractEntities(raw, sourceURL string) []string {
	var cand []string
	for _, m := range handlePattern.FindAllString(raw, -1) {
		cand = append(cand, m[1:])
	}
	for _, m := range hashtagPattern.FindAllString(raw, -1) {
		cand = append(cand, m[1:])
	}
	for _, groups := range quotedPattern.FindAllStringSubmatch(raw, -1) {
		for _, g := range groups[1:] {
			if g = strings.TrimSpace(g); utf8.RuneCountInString(g) >= 2 {
				cand = append(cand, g)
			}
		}
	}
	cand = append(cand, hostTokens(sourceURL)...)

	lower := strings.ToLower(raw)
	for _, t := range Triggers {
		if strings.Contains(lower, t) {
			cand = append(cand, t)
		}
	}
	return dedupeTokens(cand)
}

// TopKeywords returns up to limit frequent tokens of already-normalized text.
// Stop words are removed and tokens within edit distance 1 of an earlier
// token are merged into that earlier token's bucket. Ties keep first-seen order.
func TopKeywords(normalized string, limit int) []string {
	if strings.TrimSpace(normalized) == "" || limit <= 0 {
		return nil
	}

	var order []string
	freq := make(map[string]int)
	for _, tok := range tokenPattern.FindAllString(normalized, -1) {
		tok = strings.ToLower(tok)
		if textnorm.IsStopword(tok) {
			continue
		}
		if _, ok := freq[tok]; !ok {
			order = append(order, tok)
		}
		freq[tok]++
	}

	type bucket struct {
		rep   string
		count int
	}
	var buckets []bucket
	for _, tok := range order {
		merged := false
		for i := range buckets {
			if levenshtein.ComputeDistance(buckets[i].rep, tok) <= 1 {
				buckets[i].count += freq[tok]
				merged = true
				break
			}
		}
		if !merged {
			buckets = append(buckets, bucket{rep: tok, count: freq[tok]})
		}
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].count > buckets[j].count
	})
	if len(buckets) > limit {
		buckets = buckets[:limit]
	}
	out := make([]string, len(buckets))
	for i, b := range buckets {
		out[i] = b.rep
	}
	return out
}

// Boosted unions entity tokens with the top generic tokens of the normalized
// title+text, drops purely numeric tokens and truncates to limit. Entity
// tokens come first.
func Boosted(title, text, sourceURL string, limit int) []string {
	mix := title + " " + text
	cand := ExtractEntities(mix, sourceURL)
	cand = append(cand, TopKeywords(textnorm.Normalize(mix), max(limit, MinGenericPool))...)

	var out []string
	for _, t := range dedupeTokens(cand) {
		if digitsOnly.MatchString(t) {
			continue
		}
		out = append(out, t)
		if len(out) == limit {
			break
		}
	}
	return out
}

// Query joins keywords into a single search string.
func Query(keywords []string) string {
	return strings.Join(keywords, " ")
}

// NormalizeToken keeps only Latin letters, digits and Hangul, lower-cased.
func NormalizeToken(t string) string {
	return strings.ToLower(nonTokenChars.ReplaceAllString(t, ""))
}

func dedupeTokens(cand []string) []string {
	seen := make(map[string]bool, len(cand))
	var out []string
	for _, c := range cand {
		t := NormalizeToken(c)
		if utf8.RuneCountInString(t) < 2 || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// hostTokens splits the source URL host on dots, e.g.
// "https://www.instagram.com/x" -> [www instagram].
func hostTokens(sourceURL string) []string {
	if strings.TrimSpace(sourceURL) == "" {
		return nil
	}
	u, err := url.Parse(strings.TrimSpace(sourceURL))
	if err != nil || u.Hostname() == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(strings.ToLower(u.Hostname()), ".") {
		if hostStopParts[part] || utf8.RuneCountInString(part) < 2 {
			continue
		}
		out = append(out, part)
	}
	return out
}
