// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mmcdole/gofeed"

	"github.com/pdiddy/verify-engine/pkg/types"
)

// GNewsAdapter reads the Google News RSS search feed. It needs no
// credentials and is disabled by default.
type GNewsAdapter struct {
	Transport
	Endpoint string
}

// Name returns the adapter identifier.
func (a *GNewsAdapter) Name() string { return NameGNews }

// Search returns up to limit feed items for the Korean edition.
func (a *GNewsAdapter) Search(ctx context.Context, query string, limit int) ([]types.SearchResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("hl", "ko")
	params.Set("gl", "KR")
	params.Set("ceid", "KR:ko")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	body, err := a.get(ctx, NameGNews, req)
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing %s feed: %w", NameGNews, err)
	}

	results := make([]types.SearchResult, 0, len(feed.Items))
	for _, item := range feed.Items {
		if limit > 0 && len(results) >= limit {
			break
		}
		r := types.SearchResult{
			Source:  NameGNews,
			Title:   stripMarkup(item.Title),
			URL:     item.Link,
			Snippet: stripMarkup(item.Description),
		}
		if item.PublishedParsed != nil {
			t := item.PublishedParsed.UTC()
			r.PublishedAt = &t
		}
		results = append(results, r)
	}
	return results, nil
}
