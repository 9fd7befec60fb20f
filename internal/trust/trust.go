// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package trust maps a URL or hostname to a static credibility prior.
//
// A Policy holds an exact-host table and a suffix table built once from a
// catalog. Lookup strips one common mobile/web prefix, prefers the exact
// table, then the longest matching suffix, and finally returns DefaultPrior.
// A Policy is never mutated after construction and is safe for concurrent use.
package trust

import (
	_ "embed"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

// DefaultPrior is returned for hosts that match nothing in the catalog.
const DefaultPrior = 0.50

// commonPrefixes are stripped from a host before lookup, at most one of them.
var commonPrefixes = []string{"www.", "m.", "mobile.", "amp."}

//go:embed catalog.yaml
var builtinCatalog []byte

// Catalog is the serialized form of a Policy.
type Catalog struct {
	Exact  map[string]float64 `yaml:"exact"`
	Suffix map[string]float64 `yaml:"suffix"`
	News   []string           `yaml:"news"`
	Social []string           `yaml:"social"`
}

// ParseCatalog decodes a YAML catalog.
func ParseCatalog(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("parsing trust catalog: %w", err)
	}
	return c, nil
}

type suffixEntry struct {
	bare  string // suffix without its leading dot
	score float64
}

// Policy resolves trust priors. Build with NewPolicy or use Default.
type Policy struct {
	exact  map[string]float64
	suffix []suffixEntry // longest first
	news   []string
	social []string
}

// NewPolicy builds a Policy from c. Scores are clamped to [0,1]; exact keys
// are lower-cased and prefix-stripped; suffixes are stored without their dot.
func NewPolicy(c Catalog) *Policy {
	p := &Policy{exact: make(map[string]float64, len(c.Exact))}
	for host, score := range c.Exact {
		p.exact[stripCommonPrefix(strings.ToLower(host))] = clamp(score)
	}
	for sfx, score := range c.Suffix {
		bare := strings.TrimPrefix(strings.ToLower(sfx), ".")
		if bare == "" {
			continue
		}
		p.suffix = append(p.suffix, suffixEntry{bare: bare, score: clamp(score)})
	}
	// Longest suffix wins; ties broken lexically so lookup is deterministic.
	sort.Slice(p.suffix, func(i, j int) bool {
		if len(p.suffix[i].bare) != len(p.suffix[j].bare) {
			return len(p.suffix[i].bare) > len(p.suffix[j].bare)
		}
		return p.suffix[i].bare < p.suffix[j].bare
	})
	for _, h := range c.News {
		p.news = append(p.news, strings.TrimPrefix(strings.ToLower(h), "."))
	}
	for _, h := range c.Social {
		p.social = append(p.social, strings.TrimPrefix(strings.ToLower(h), "."))
	}
	return p
}

var defaultPolicy = sync.OnceValue(func() *Policy {
	c, err := ParseCatalog(builtinCatalog)
	if err != nil {
		panic(err)
	}
	return NewPolicy(c)
})

// Default returns the process-wide policy built from the embedded catalog.
func Default() *Policy {
	return defaultPolicy()
}

// TrustPrior returns the prior for a URL or bare hostname.
func (p *Policy) TrustPrior(urlOrHost string) float64 {
	host := NormalizeHost(urlOrHost)
	if host == "" {
		return DefaultPrior
	}
	if score, ok := p.exact[host]; ok {
		return score
	}
	if e, ok := p.longestSuffix(host); ok {
		return e.score
	}
	return DefaultPrior
}

func (p *Policy) longestSuffix(host string) (suffixEntry, bool) {
	for _, e := range p.suffix {
		if hasDomainSuffix(host, e.bare) {
			return e, true
		}
	}
	return suffixEntry{}, false
}

// IsNewsDomain reports whether the host is a news or media outlet, by catalog
// suffix or by a "news." / "-news." hostname heuristic.
func (p *Policy) IsNewsDomain(urlOrHost string) bool {
	host := NormalizeHost(urlOrHost)
	if host == "" {
		return false
	}
	for _, sfx := range p.news {
		if hasDomainSuffix(host, sfx) {
			return true
		}
	}
	return strings.Contains(host, "news.") ||
		strings.HasPrefix(host, "news-") ||
		strings.Contains(host, "-news.")
}

// IsSocialDomain reports whether the host belongs to a social platform.
func (p *Policy) IsSocialDomain(urlOrHost string) bool {
	host := NormalizeHost(urlOrHost)
	if host == "" {
		return false
	}
	for _, sfx := range p.social {
		if hasDomainSuffix(host, sfx) {
			return true
		}
	}
	return false
}

// BlendWithSignals mixes a domain prior (60%) with a binary fact-match
// signal (25%) and an external page-authority score in [0,1] (15%).
func BlendWithSignals(prior float64, factMatched bool, pageAuthority float64) float64 {
	fact := 0.0
	if factMatched {
		fact = 1.0
	}
	return clamp(prior*0.60 + fact*0.25 + clamp(pageAuthority)*0.15)
}

// NormalizeHost extracts the lower-cased host from a URL, a "host/path"
// string, or a bare host, and strips one common prefix (www., m., mobile.,
// amp.). It returns "" for blank input.
func NormalizeHost(urlOrHost string) string {
	raw := strings.ToLower(strings.TrimSpace(urlOrHost))
	if raw == "" {
		return ""
	}
	host := raw
	switch {
	case strings.Contains(raw, "://"):
		if u, err := url.Parse(raw); err == nil && u.Hostname() != "" {
			host = u.Hostname()
		}
	case strings.Contains(raw, "/"):
		if u, err := url.Parse("https://" + raw); err == nil && u.Hostname() != "" {
			host = u.Hostname()
		}
	}
	return stripCommonPrefix(host)
}

func stripCommonPrefix(host string) string {
	for _, pref := range commonPrefixes {
		if strings.HasPrefix(host, pref) {
			return host[len(pref):]
		}
	}
	return host
}

func hasDomainSuffix(host, bare string) bool {
	return host == bare || strings.HasSuffix(host, "."+bare)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
