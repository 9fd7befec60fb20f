// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/verify-engine/internal/httputil"
	"github.com/pdiddy/verify-engine/internal/score"
	"github.com/pdiddy/verify-engine/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = 0
}

// chatServer replies with content as the first choice, or with status and
// raw body when status is not 200.
func chatServer(t *testing.T, status int, body string, capture *chatRequest) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		if capture != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(capture))
		}
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func choice(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []any{map[string]any{"message": map[string]string{"role": "assistant", "content": content}}},
	})
	return string(b)
}

func testClient(ts *httptest.Server) *Client {
	return &Client{Endpoint: ts.URL, APIKey: "sk-test", Model: "gpt-4o-mini", MaxRetries: 1, HTTP: ts.Client()}
}

var sampleRequest = types.VerificationRequest{
	Platform:  "instagram",
	SourceURL: "https://www.instagram.com/p/abc",
	Title:     "서울 재즈 페스티벌 10.18 공식 예매",
	Text:      "Seoul Jazz Festival 10.18 티켓 오픈",
	ImageURLs: []string{"https://img/1.jpg", "https://img/2.jpg"},
}

// --- Client ---

func TestCompleteErrors(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		_, err := (&Client{Endpoint: "http://unused"}).Complete(context.Background(), nil, Options{})
		assert.ErrorIs(t, err, ErrMissingAPIKey)
	})
	t.Run("status", func(t *testing.T) {
		ts := chatServer(t, http.StatusUnauthorized, `{"error":"bad key"}`, nil)
		_, err := testClient(ts).Complete(context.Background(), nil, Options{})
		var se *StatusError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, 401, se.Code)
		assert.Contains(t, se.Body, "bad key")
	})
	t.Run("empty choices", func(t *testing.T) {
		ts := chatServer(t, http.StatusOK, `{"choices":[]}`, nil)
		_, err := testClient(ts).Complete(context.Background(), nil, Options{})
		assert.ErrorIs(t, err, ErrEmptyChoices)
	})
	t.Run("empty content", func(t *testing.T) {
		ts := chatServer(t, http.StatusOK, choice("   "), nil)
		_, err := testClient(ts).Complete(context.Background(), nil, Options{})
		assert.ErrorIs(t, err, ErrEmptyContent)
	})
}

// --- Judge ---

func TestJudge(t *testing.T) {
	var got chatRequest
	ts := chatServer(t, http.StatusOK, choice(" 0.8 "), &got)

	score, err := NewJudge(testClient(ts)).Judge(context.Background(), "claim", "- title :: snippet")
	require.NoError(t, err)
	assert.InDelta(t, 0.8, score, 1e-9)
	assert.Equal(t, 0.0, got.Temperature)
	assert.Nil(t, got.ResponseFormat)
	require.Len(t, got.Messages, 2)
	assert.Contains(t, got.Messages[1].Content, "CLAIM:\nclaim")
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"0.5", 0.5, false},
		{"-1.0", -1, false},
		{"3", 1, false},
		{"`-0.25`", -0.25, false},
		{"likely true", 0, true},
		{"NaN", 0, true},
	}
	for _, tt := range tests {
		got, err := parseScore(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

// --- Verifier ---

func TestVerifierSuccess(t *testing.T) {
	content := "```json\n" + `{
		"verdict": "likely_true",
		"confidence": 250,
		"rationale": "공식 예매처와 언론 보도가 일치",
		"consensusSummary": "예매처 2곳, 언론 1곳",
		"normalizedText": "서울 재즈 페스티벌 10.18 공식 예매",
		"evidences": [
			{"source": "ticketing", "domain": "guess.example", "title": "예매", "url": "https://tickets.interpark.com/goods/1", "snippet": "s", "publishedAt": "2025-10-01T09:00:00+09:00"},
			{"domain": "x", "title": "기사", "url": "https://www.news.naver.com/a", "publishedAt": "yesterday"}
		]
	}` + "\n```"

	var got chatRequest
	ts := chatServer(t, http.StatusOK, choice(content), &got)

	resp := NewVerifier(testClient(ts), nil, nil).Verify(context.Background(), sampleRequest)

	assert.Equal(t, types.VerdictLikelyTrue, resp.Verdict)
	assert.Equal(t, 100, resp.Confidence)
	assert.Equal(t, "예매처 2곳, 언론 1곳", resp.ConsensusSummary)
	require.Len(t, resp.Evidences, 2)

	first := resp.Evidences[0]
	assert.Equal(t, "ticketing", first.Source)
	assert.Equal(t, "tickets.interpark.com", first.Domain)
	assert.Equal(t, 0.88, first.TrustPrior)
	require.NotNil(t, first.PublishedAt)

	second := resp.Evidences[1]
	assert.Equal(t, "web", second.Source)
	assert.Equal(t, "news.naver.com", second.Domain)
	assert.Equal(t, 0.86, second.TrustPrior)
	assert.Nil(t, second.PublishedAt)

	assert.InDelta(t, 0.1, got.Temperature, 1e-9)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	assert.Contains(t, got.Messages[1].Content, "소스 URL: https://www.instagram.com/p/abc")
	assert.Contains(t, got.Messages[1].Content, "이미지: https://img/1.jpg, https://img/2.jpg")
}

func TestVerifierDefaults(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		verdict    types.Verdict
		confidence int
	}{
		{"blank verdict and missing confidence", `{"verdict": "  "}`, types.VerdictUnsure, 35},
		{"zero confidence", `{"verdict": "LIKELY_FALSE", "confidence": 0}`, types.VerdictLikelyFalse, 35},
		{"negative confidence", `{"verdict": "UNSURE", "confidence": -4}`, types.VerdictUnsure, 1},
		{"unknown verdict", `{"verdict": "TRUE", "confidence": 55}`, types.VerdictUnsure, 55},
		{"rounds to zero", `{"verdict": "UNSURE", "confidence": 0.4}`, types.VerdictUnsure, 35},
		{"above range", `{"verdict": "LIKELY_TRUE", "confidence": 140}`, types.VerdictLikelyTrue, 100},
		{"beyond int range", `{"verdict": "LIKELY_TRUE", "confidence": 1e20}`, types.VerdictLikelyTrue, 100},
		{"huge float", `{"verdict": "LIKELY_TRUE", "confidence": 1e300}`, types.VerdictLikelyTrue, 100},
		{"huge negative", `{"verdict": "LIKELY_FALSE", "confidence": -1e20}`, types.VerdictLikelyFalse, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := chatServer(t, http.StatusOK, choice(tt.content), nil)
			resp := NewVerifier(testClient(ts), nil, nil).Verify(context.Background(), sampleRequest)
			assert.Equal(t, tt.verdict, resp.Verdict)
			assert.Equal(t, tt.confidence, resp.Confidence)
			assert.NotNil(t, resp.Evidences)
		})
	}
}

func TestVerifierCapsEvidences(t *testing.T) {
	items := make([]string, 9)
	for i := range items {
		items[i] = fmt.Sprintf(`{"title":"t%d","url":"https://news.naver.com/%d"}`, i, i)
	}
	content := `{"verdict":"LIKELY_TRUE","confidence":80,"evidences":[` + strings.Join(items, ",") + `]}`

	ts := chatServer(t, http.StatusOK, choice(content), nil)
	resp := NewVerifier(testClient(ts), nil, nil).Verify(context.Background(), sampleRequest)
	require.Len(t, resp.Evidences, score.TopK)
	assert.Equal(t, "t0", resp.Evidences[0].Title)
	assert.Equal(t, "t5", resp.Evidences[score.TopK-1].Title)
}

func TestVerifierFailures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		contains string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"Incorrect API key"}}`, "401"},
		{"server error", http.StatusInternalServerError, "oops", "500"},
		{"empty choices", http.StatusOK, `{"choices":[]}`, "choices empty"},
		{"empty content", http.StatusOK, choice(""), "content empty"},
		{"not json", http.StatusOK, choice("I think it is true."), "LLM verify exception"},
		{"schema mismatch", http.StatusOK, choice(`{"confidence": "high"}`), "LLM verify exception"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := chatServer(t, tt.status, tt.body, nil)
			resp := NewVerifier(testClient(ts), nil, nil).Verify(context.Background(), sampleRequest)
			assert.Equal(t, types.VerdictUnsure, resp.Verdict)
			assert.Equal(t, 30, resp.Confidence)
			assert.Contains(t, resp.Rationale, "LLM-only 경로 오류")
			assert.Contains(t, resp.Rationale, tt.contains)
			assert.Empty(t, resp.Evidences)
		})
	}
}

func TestVerifierMissingKey(t *testing.T) {
	resp := NewVerifier(&Client{Endpoint: "http://unused"}, nil, nil).Verify(context.Background(), sampleRequest)
	assert.Equal(t, types.VerdictUnsure, resp.Verdict)
	assert.Equal(t, 30, resp.Confidence)
	assert.Contains(t, resp.Rationale, "OPENAI_API_KEY")
}
