// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search fans a query out to the configured news and web search
// adapters and returns one merged, deduplicated, ordered result list.
//
// Adapters run concurrently, each under its own timeout. A failing or slow
// adapter contributes zero results and never fails the whole search. The
// merge is deterministic: results are concatenated in adapter order before
// deduplication, so the same inputs always yield the same output.
package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/verify-engine/pkg/types"
)

// ErrAdapterDisabled is returned by an adapter that lacks the credentials
// it needs. The aggregator treats it as zero results.
var ErrAdapterDisabled = errors.New("adapter disabled: missing credentials")

// Adapter searches a single provider. Each provider (Naver, Google CSE,
// Bing, Google News RSS) implements this interface.
type Adapter interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]types.SearchResult, error)
}

// Aggregator merges results from an ordered adapter list and memoizes them
// in a Cache keyed by the exact query string.
type Aggregator struct {
	adapters []Adapter
	cache    *Cache
	limit    int
	timeout  time.Duration
	logger   *zap.Logger
}

// NewAggregator builds an aggregator. Adapter order is significant: it
// decides which copy of a duplicate URL survives. A nil cache disables
// memoization; a nil logger discards logs.
func NewAggregator(adapters []Adapter, cache *Cache, cfg types.SearchConfig, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := cfg.MaxResults
	if limit <= 0 {
		limit = 8
	}
	timeout := cfg.AdapterTimeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Aggregator{
		adapters: adapters,
		cache:    cache,
		limit:    limit,
		timeout:  timeout,
		logger:   logger.Named("search"),
	}
}

// Adapters returns the adapter names in merge order.
func (a *Aggregator) Adapters() []string {
	names := make([]string, len(a.adapters))
	for i, ad := range a.adapters {
		names[i] = ad.Name()
	}
	return names
}

// Search returns the merged results for query, served from the cache when
// a fresh entry exists. A blank query, or a caller whose context is already
// done, yields no results and no calls.
//
// A cache miss is computed on a context detached from the caller's
// cancellation: other callers may be waiting on the same computation, and
// the per-adapter timeouts still bound it.
func (a *Aggregator) Search(ctx context.Context, query string) []types.SearchResult {
	query = strings.TrimSpace(query)
	if query == "" || ctx.Err() != nil {
		return nil
	}
	if a.cache == nil {
		return a.Fetch(ctx, query, a.limit)
	}
	shared := context.WithoutCancel(ctx)
	res, hit := a.cache.GetOrCompute(query, func() ([]types.SearchResult, bool) {
		return a.fetch(shared, query, a.limit)
	})
	if hit {
		a.logger.Debug("cache hit", zap.String("query", query), zap.Int("results", len(res)))
	}
	return res
}

// Fetch runs query against every adapter without consulting the cache.
func (a *Aggregator) Fetch(ctx context.Context, query string, limit int) []types.SearchResult {
	res, _ := a.fetch(ctx, query, limit)
	return res
}

// fetch is Fetch that also reports whether every adapter ran to completion
// or its own timeout. It returns false when ctx ended first, in which case
// the results reflect the cancellation rather than the providers.
func (a *Aggregator) fetch(ctx context.Context, query string, limit int) ([]types.SearchResult, bool) {
	query = strings.TrimSpace(query)
	if query == "" || len(a.adapters) == 0 {
		return nil, true
	}
	if limit <= 0 {
		limit = a.limit
	}

	perAdapter := make([][]types.SearchResult, len(a.adapters))
	var g errgroup.Group
	for i, ad := range a.adapters {
		g.Go(func() error {
			perAdapter[i] = a.call(ctx, ad, query, limit)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		a.logger.Warn("search aborted", zap.String("query", query), zap.Error(err))
		return nil, false
	}

	var all []types.SearchResult
	for _, rs := range perAdapter {
		all = append(all, rs...)
	}
	merged := Merge(all, limit)
	a.logger.Debug("search complete",
		zap.String("query", query),
		zap.Int("raw", len(all)),
		zap.Int("merged", len(merged)))
	return merged, true
}

type outcome struct {
	results []types.SearchResult
	err     error
}

// call runs one adapter under the per-adapter timeout. It returns once the
// adapter finishes or the deadline passes, whichever is first, so an adapter
// that ignores its context cannot stall the search.
func (a *Aggregator) call(ctx context.Context, ad Adapter, query string, limit int) []types.SearchResult {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	done := make(chan outcome, 1)
	start := time.Now()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("adapter panic: %v", r)}
			}
		}()
		res, err := ad.Search(ctx, query, limit)
		done <- outcome{results: res, err: err}
	}()

	select {
	case o := <-done:
		switch {
		case errors.Is(o.err, ErrAdapterDisabled):
			a.logger.Debug("adapter disabled", zap.String("adapter", ad.Name()))
			return nil
		case o.err != nil:
			a.logger.Warn("adapter failed",
				zap.String("adapter", ad.Name()),
				zap.String("query", query),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(o.err))
			return nil
		}
		if len(o.results) > limit {
			o.results = o.results[:limit]
		}
		return o.results
	case <-ctx.Done():
		a.logger.Warn("adapter timed out",
			zap.String("adapter", ad.Name()),
			zap.String("query", query),
			zap.Duration("timeout", a.timeout))
		return nil
	}
}

// Merge deduplicates by URL (the first occurrence wins), orders results by
// publication time descending with undated results last, breaks ties by
// shorter title, and keeps at most limit entries. Results without a URL are
// dropped.
func Merge(results []types.SearchResult, limit int) []types.SearchResult {
	seen := make(map[string]struct{}, len(results))
	out := make([]types.SearchResult, 0, len(results))
	for _, r := range results {
		if r.URL == "" {
			continue
		}
		if _, dup := seen[r.URL]; dup {
			continue
		}
		seen[r.URL] = struct{}{}
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].PublishedAt, out[j].PublishedAt
		switch {
		case pi != nil && pj != nil && !pi.Equal(*pj):
			return pi.After(*pj)
		case pi != nil && pj == nil:
			return true
		case pi == nil && pj != nil:
			return false
		}
		return utf8.RuneCountInString(out[i].Title) < utf8.RuneCountInString(out[j].Title)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
