// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package verify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/verify-engine/internal/search"
	"github.com/pdiddy/verify-engine/pkg/types"
)

type fakeSearcher struct {
	mu      sync.Mutex
	answers map[string][]types.SearchResult
	calls   []string
}

func (f *fakeSearcher) Search(_ context.Context, q string) []types.SearchResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, q)
	return f.answers[q]
}

type fakeJudge struct {
	score float64
	err   error
}

func (j fakeJudge) Judge(context.Context, string, string) (float64, error) { return j.score, j.err }

type fakeVerifier struct{ resp types.VerificationResponse }

func (v fakeVerifier) Verify(context.Context, types.VerificationRequest) types.VerificationResponse {
	return v.resp
}

// stubAdapter returns the same results for every query.
type stubAdapter struct{ results []types.SearchResult }

func (stubAdapter) Name() string { return "naver" }

func (s stubAdapter) Search(context.Context, string, int) ([]types.SearchResult, error) {
	return s.results, nil
}

var jazzRequest = types.VerificationRequest{
	Platform:  "instagram",
	SourceURL: "https://www.instagram.com/p/abc123",
	Title:     "서울 재즈 페스티벌 10.18 공식 예매",
}

func TestVerifyScenarioTrustedPortal(t *testing.T) {
	published := time.Now().Add(-time.Hour)
	agg := search.NewAggregator(
		[]search.Adapter{stubAdapter{results: []types.SearchResult{{
			Source:      "naver",
			Title:       "서울 재즈 페스티벌 10.18 공식 예매",
			URL:         "https://news.naver.com/main/read?id=1",
			PublishedAt: &published,
		}}}},
		search.NewCache(types.CacheConfig{}),
		types.SearchConfig{MaxResults: 8, AdapterTimeout: time.Second},
		nil,
	)

	resp := New(Options{Searcher: agg}).Verify(context.Background(), jazzRequest)

	require.Len(t, resp.Evidences, 1)
	assert.InDelta(t, 1.0, resp.Evidences[0].Similarity, 1e-9)
	assert.Equal(t, 0.86, resp.Evidences[0].TrustPrior)
	assert.GreaterOrEqual(t, resp.Confidence, 70)
	assert.Equal(t, types.VerdictLikelyTrue, resp.Verdict)
	assert.Equal(t, "서울 재즈 페스티벌 10.18 공식 예매", resp.NormalizedText)
	assert.Contains(t, resp.Rationale, "LLM 보정 사용: no")
}

func TestVerifyNoEvidenceExhaustsCascade(t *testing.T) {
	s := &fakeSearcher{}
	e := New(Options{Searcher: s})

	resp := e.Verify(context.Background(), jazzRequest)

	assert.Equal(t, types.VerdictUnsure, resp.Verdict)
	assert.Equal(t, 30, resp.Confidence)
	assert.NotNil(t, resp.Evidences)
	assert.Empty(t, resp.Evidences)

	plan := e.Plan(jazzRequest)
	require.NotEmpty(t, plan.Fallback)
	assert.Equal(t, append([]string{plan.Primary}, plan.Fallback...), s.calls)
}

func TestVerifyFallbackShortCircuits(t *testing.T) {
	e := New(Options{})
	plan := e.Plan(jazzRequest)
	require.GreaterOrEqual(t, len(plan.Fallback), 3)
	assert.Equal(t, `"서울 재즈 페스티벌 10.18 공식 예매"`, plan.Fallback[0])

	second := plan.Fallback[1]
	s := &fakeSearcher{answers: map[string][]types.SearchResult{
		second: {{Source: "bing", Title: "재즈 페스티벌", URL: "https://example.com/a"}},
	}}
	e.searcher = s

	resp := e.Verify(context.Background(), jazzRequest)
	assert.Equal(t, []string{plan.Primary, plan.Fallback[0], second}, s.calls)
	require.Len(t, resp.Evidences, 1)
	assert.Equal(t, "https://example.com/a", resp.Evidences[0].URL)
}

func TestVerifyJudge(t *testing.T) {
	hits := map[string][]types.SearchResult{}
	e := New(Options{})
	hits[e.Plan(jazzRequest).Primary] = []types.SearchResult{
		{Source: "naver", Title: "서울 재즈 페스티벌 10.18 공식 예매", URL: "https://news.naver.com/1"},
	}

	t.Run("used", func(t *testing.T) {
		e := New(Options{Searcher: &fakeSearcher{answers: hits}, Judge: fakeJudge{score: -1}})
		resp := e.Verify(context.Background(), jazzRequest)
		assert.Contains(t, resp.Rationale, "LLM 보정 사용: yes")
		// 0.7 + 0.172 + 0 = 0.872
		assert.Equal(t, 87, resp.Confidence)
	})
	t.Run("failure means no judge", func(t *testing.T) {
		e := New(Options{Searcher: &fakeSearcher{answers: hits}, Judge: fakeJudge{err: errors.New("timeout")}})
		resp := e.Verify(context.Background(), jazzRequest)
		assert.Contains(t, resp.Rationale, "LLM 보정 사용: no")
		assert.Equal(t, 87, resp.Confidence)
	})
}

func TestVerifyLLMMode(t *testing.T) {
	want := types.VerificationResponse{Verdict: types.VerdictLikelyFalse, Confidence: 12, Evidences: []types.Evidence{}}
	s := &fakeSearcher{}
	e := New(Options{Mode: types.ModeLLM, Searcher: s, Verifier: fakeVerifier{resp: want}})

	got := e.Verify(context.Background(), jazzRequest)
	assert.Equal(t, want, got)
	assert.Empty(t, s.calls, "llm mode must not search")
	assert.Equal(t, types.ModeLLM, e.Mode())
}

func TestNormalizeInput(t *testing.T) {
	tests := []struct {
		name string
		req  types.VerificationRequest
		want string
	}{
		{"text wins", types.VerificationRequest{Title: "T", Text: "Body TEXT", SourceURL: "https://x.com"}, "body text"},
		{"title and url when text blank", types.VerificationRequest{Title: "Hello World", Text: "  ", SourceURL: "https://x.com/p"}, "hello world"},
		{"nothing", types.VerificationRequest{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeInput(tt.req))
		})
	}
}
