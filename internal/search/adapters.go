// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/pdiddy/verify-engine/internal/httputil"
	"github.com/pdiddy/verify-engine/pkg/types"
)

// Adapter names, in the order NewAdapters returns them.
const (
	NameNaver  = "naver"
	NameGoogle = "google_cse"
	NameBing   = "bing"
	NameGNews  = "gnews"
)

// maxPerCall is the page size ceiling all three JSON providers enforce.
const maxPerCall = 10

// Transport carries the HTTP settings shared by every adapter.
type Transport struct {
	Client     *http.Client
	UserAgent  string
	MaxRetries int
}

// NewTransport builds a Transport from the search HTTP settings.
func NewTransport(cfg types.HTTPConfig) Transport {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return Transport{
		Client:    &http.Client{Timeout: timeout},
		UserAgent: cfg.UserAgent,
	}
}

// NewAdapters returns the enabled adapters in fixed merge order: naver,
// google_cse, bing, gnews. Adapters that are enabled but lack credentials
// are still returned; they report ErrAdapterDisabled on each call.
func NewAdapters(cfg types.AdaptersConfig, tr Transport) []Adapter {
	var out []Adapter
	if cfg.Naver.Enabled {
		out = append(out, &NaverAdapter{Transport: tr, Endpoint: cfg.Naver.Endpoint,
			ClientID: cfg.Naver.ClientID, ClientSecret: cfg.Naver.ClientSecret})
	}
	if cfg.Google.Enabled {
		out = append(out, &GoogleCSEAdapter{Transport: tr, Endpoint: cfg.Google.Endpoint,
			APIKey: cfg.Google.APIKey, CX: cfg.Google.CX})
	}
	if cfg.Bing.Enabled {
		out = append(out, &BingAdapter{Transport: tr, Endpoint: cfg.Bing.Endpoint,
			APIKey: cfg.Bing.APIKey})
	}
	if cfg.GNews.Enabled {
		out = append(out, &GNewsAdapter{Transport: tr, Endpoint: cfg.GNews.Endpoint})
	}
	return out
}

func (t Transport) client() *http.Client {
	if t.Client != nil {
		return t.Client
	}
	return http.DefaultClient
}

// get sends req with retries and returns the body of a 2xx response.
func (t Transport) get(ctx context.Context, provider string, req *http.Request) ([]byte, error) {
	if t.UserAgent != "" {
		req.Header.Set("User-Agent", t.UserAgent)
	}
	resp, err := httputil.DoWithRetry(ctx, t.client(), req, t.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", provider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", provider, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s returned HTTP %d: %s", provider, resp.StatusCode, snippetOf(body))
	}
	return body, nil
}

// getJSON is get followed by a JSON decode into v.
func (t Transport) getJSON(ctx context.Context, provider string, req *http.Request, v any) error {
	body, err := t.get(ctx, provider, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("parsing %s response: %w", provider, err)
	}
	return nil
}

var strictPolicy = sync.OnceValue(bluemonday.StrictPolicy)

// stripMarkup removes HTML tags and decodes entities, leaving plain text.
func stripMarkup(s string) string {
	if s == "" {
		return ""
	}
	clean := html.UnescapeString(strictPolicy().Sanitize(s))
	return strings.Join(strings.Fields(clean), " ")
}

func snippetOf(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

func perCall(limit int) int {
	if limit <= 0 || limit > maxPerCall {
		return maxPerCall
	}
	return limit
}

// parseTime tries each layout in order and returns nil when none matches.
func parseTime(s string, layouts ...string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
