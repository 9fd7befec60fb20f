// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/verify-engine/pkg/types"
)

// NaverAdapter queries the Naver news search API.
type NaverAdapter struct {
	Transport
	Endpoint     string
	ClientID     string
	ClientSecret string
}

// Name returns the adapter identifier.
func (a *NaverAdapter) Name() string { return NameNaver }

// Search returns up to min(limit, 10) news items sorted by similarity.
// Titles and descriptions arrive with <b> highlighting, which is stripped.
// The Naver-hosted link is kept; the outlet's originallink is used only
// when link is missing.
func (a *NaverAdapter) Search(ctx context.Context, query string, limit int) ([]types.SearchResult, error) {
	if a.ClientID == "" || a.ClientSecret == "" {
		return nil, ErrAdapterDisabled
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("display", strconv.Itoa(perCall(limit)))
	params.Set("sort", "sim")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-Naver-Client-Id", a.ClientID)
	req.Header.Set("X-Naver-Client-Secret", a.ClientSecret)

	var resp naverResponse
	if err := a.getJSON(ctx, NameNaver, req, &resp); err != nil {
		return nil, err
	}

	results := make([]types.SearchResult, 0, len(resp.Items))
	for _, it := range resp.Items {
		link := strings.TrimSpace(it.Link)
		if link == "" {
			link = strings.TrimSpace(it.OriginalLink)
		}
		results = append(results, types.SearchResult{
			Source:      NameNaver,
			Title:       stripMarkup(it.Title),
			URL:         link,
			Snippet:     stripMarkup(it.Description),
			PublishedAt: parseTime(it.PubDate, time.RFC1123Z, time.RFC1123),
		})
	}
	return results, nil
}

type naverResponse struct {
	Items []naverItem `json:"items"`
}

type naverItem struct {
	Title        string `json:"title"`
	OriginalLink string `json:"originallink"`
	Link         string `json:"link"`
	Description  string `json:"description"`
	PubDate      string `json:"pubDate"`
}
