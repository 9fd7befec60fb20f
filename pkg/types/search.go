// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the verification pipeline:
// the inbound request, search results, evidence, the verdict response, and
// the typed configuration consumed by every stage.
package types

import "time"

// SearchResult is a single hit returned by a search provider adapter.
// Identity for deduplication is URL.
type SearchResult struct {
	// Source is the adapter name that produced the hit (e.g. "naver", "bing").
	Source string `json:"source" yaml:"source"`

	Title   string `json:"title" yaml:"title"`
	URL     string `json:"url" yaml:"url"`
	Snippet string `json:"snippet" yaml:"snippet"`

	// PublishedAt is nil when the provider does not report a timestamp.
	PublishedAt *time.Time `json:"publishedAt,omitempty" yaml:"published_at,omitempty"`
}

// Evidence is a search result annotated with its similarity to the claim and
// the trust prior of its domain. Ordering key is Similarity, descending.
type Evidence struct {
	Source      string     `json:"source" yaml:"source"`
	Domain      string     `json:"domain" yaml:"domain"`
	Title       string     `json:"title" yaml:"title"`
	URL         string     `json:"url" yaml:"url"`
	Snippet     string     `json:"snippet" yaml:"snippet"`
	PublishedAt *time.Time `json:"publishedAt,omitempty" yaml:"published_at,omitempty"`

	// Similarity is the term-frequency cosine between claim and hit, 0.0-1.0.
	Similarity float64 `json:"similarity" yaml:"similarity"`

	// TrustPrior is the static credibility of Domain, 0.0-1.0.
	TrustPrior float64 `json:"trustPrior" yaml:"trust_prior"`
}
