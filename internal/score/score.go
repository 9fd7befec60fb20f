// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package score turns search results into ranked evidence.
package score

import (
	"math"
	"net/url"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/verify-engine/internal/trust"
	"github.com/pdiddy/verify-engine/pkg/types"
)

// TopK is the number of evidences kept per request.
const TopK = 6

// Cosine returns the cosine similarity of the raw term-frequency vectors of
// a and b. Terms are whitespace-separated tokens of at least two runes.
// Blank input or a zero vector gives 0.
func Cosine(a, b string) float64 {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return 0
	}
	va, vb := termFreq(a), termFreq(b)

	var dot, na, nb float64
	for term, x := range va {
		na += float64(x * x)
		dot += float64(x * vb[term])
	}
	for _, y := range vb {
		nb += float64(y * y)
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func termFreq(s string) map[string]int {
	m := make(map[string]int)
	for _, tok := range strings.Fields(s) {
		if utf8.RuneCountInString(tok) < 2 {
			continue
		}
		m[tok]++
	}
	return m
}

// Scorer builds evidence against a trust policy.
type Scorer struct {
	Policy *trust.Policy
}

// New returns a Scorer. A nil policy selects trust.Default().
func New(p *trust.Policy) *Scorer {
	if p == nil {
		p = trust.Default()
	}
	return &Scorer{Policy: p}
}

// Evidence scores every result against the normalized claim, sorts by
// similarity descending (stable, so equal scores keep search order) and
// keeps the top TopK.
func (s *Scorer) Evidence(normalized string, results []types.SearchResult) []types.Evidence {
	out := make([]types.Evidence, 0, len(results))
	for _, r := range results {
		cmp := strings.ToLower(r.Title + " " + r.Snippet)
		out = append(out, types.Evidence{
			Source:      r.Source,
			Domain:      Domain(r.URL),
			Title:       r.Title,
			URL:         r.URL,
			Snippet:     r.Snippet,
			PublishedAt: r.PublishedAt,
			Similarity:  Cosine(normalized, cmp),
			TrustPrior:  s.Policy.TrustPrior(r.URL),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Similarity > out[j].Similarity
	})
	if len(out) > TopK {
		out = out[:TopK]
	}
	return out
}

// Domain returns the lower-cased host of rawURL, or "" when it has none.
func Domain(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
