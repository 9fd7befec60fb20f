// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pdiddy/verify-engine/pkg/types"
)

// BingAdapter queries the Bing News Search v7 API.
type BingAdapter struct {
	Transport
	Endpoint string
	APIKey   string
}

// Name returns the adapter identifier.
func (a *BingAdapter) Name() string { return NameBing }

// Search returns up to min(limit, 10) news articles.
func (a *BingAdapter) Search(ctx context.Context, query string, limit int) ([]types.SearchResult, error) {
	if a.APIKey == "" {
		return nil, ErrAdapterDisabled
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(perCall(limit)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", a.APIKey)

	var resp bingResponse
	if err := a.getJSON(ctx, NameBing, req, &resp); err != nil {
		return nil, err
	}

	results := make([]types.SearchResult, 0, len(resp.Value))
	for _, v := range resp.Value {
		results = append(results, types.SearchResult{
			Source:      NameBing,
			Title:       stripMarkup(v.Name),
			URL:         v.URL,
			Snippet:     stripMarkup(v.Description),
			PublishedAt: parseTime(v.DatePublished, time.RFC3339Nano, "2006-01-02T15:04:05"),
		})
	}
	return results, nil
}

type bingResponse struct {
	Value []struct {
		Name          string `json:"name"`
		URL           string `json:"url"`
		Description   string `json:"description"`
		DatePublished string `json:"datePublished"`
	} `json:"value"`
}
