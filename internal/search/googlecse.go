// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pdiddy/verify-engine/pkg/types"
)

// GoogleCSEAdapter queries a Google Programmable Search engine restricted
// to Korean results. CSE does not report publication times.
type GoogleCSEAdapter struct {
	Transport
	Endpoint string
	APIKey   string
	CX       string
}

// Name returns the adapter identifier.
func (a *GoogleCSEAdapter) Name() string { return NameGoogle }

// Search returns up to min(limit, 10) web results.
func (a *GoogleCSEAdapter) Search(ctx context.Context, query string, limit int) ([]types.SearchResult, error) {
	if a.APIKey == "" || a.CX == "" {
		return nil, ErrAdapterDisabled
	}

	params := url.Values{}
	params.Set("key", a.APIKey)
	params.Set("cx", a.CX)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(perCall(limit)))
	params.Set("gl", "kr")
	params.Set("lr", "lang_ko")
	params.Set("hl", "ko")
	params.Set("safe", "off")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	var resp cseResponse
	if err := a.getJSON(ctx, NameGoogle, req, &resp); err != nil {
		return nil, err
	}

	results := make([]types.SearchResult, 0, len(resp.Items))
	for _, it := range resp.Items {
		results = append(results, types.SearchResult{
			Source:  NameGoogle,
			Title:   stripMarkup(it.Title),
			URL:     it.Link,
			Snippet: stripMarkup(it.Snippet),
		})
	}
	return results, nil
}

type cseResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}
