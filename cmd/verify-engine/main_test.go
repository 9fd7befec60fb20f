// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/verify-engine/internal/trust"
	"github.com/pdiddy/verify-engine/internal/verify"
	"github.com/pdiddy/verify-engine/pkg/types"
)

func TestLoadConfigDefaults(t *testing.T) {
	v := viper.New()
	configureEnv(v)

	c, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, types.DefaultConfig(), c)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "verify-engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode: llm
cache:
  ttl: 5m
adapters:
  naver:
    client_id: from-file
  gnews:
    enabled: true
`), 0o644))

	t.Setenv("VERIFY_ENGINE_ADAPTERS_BING_API_KEY", "bing-from-env")
	t.Setenv("VERIFY_ENGINE_SEARCH_MAX_RESULTS", "5")

	v := viper.New()
	configureEnv(v)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	c, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "llm", c.Mode)
	assert.Equal(t, 5*time.Minute, c.Cache.TTL)
	assert.Equal(t, 2000, c.Cache.Capacity)
	assert.Equal(t, "from-file", c.Adapters.Naver.ClientID)
	assert.True(t, c.Adapters.GNews.Enabled)
	assert.Equal(t, "bing-from-env", c.Adapters.Bing.APIKey)
	assert.Equal(t, 5, c.Search.MaxResults)
	assert.Equal(t, "https://openapi.naver.com/v1/search/news.json", c.Adapters.Naver.Endpoint)
}

func TestLoadConfigRejectsUnknownMode(t *testing.T) {
	v := viper.New()
	configureEnv(v)
	v.Set("mode", "magic")
	_, err := loadConfig(v)
	assert.Error(t, err)
}

func sampleResponse() types.VerificationResponse {
	ts := time.Date(2025, 10, 13, 0, 0, 0, 0, time.UTC)
	return types.VerificationResponse{
		Verdict:          types.VerdictLikelyTrue,
		Confidence:       87,
		Rationale:        "• 키워드: 서울, 재즈",
		ConsensusSummary: "상위 출처 요약: 서울 재즈 페스티벌",
		NormalizedText:   "서울 재즈 페스티벌",
		Evidences: []types.Evidence{{
			Source: "naver", Domain: "news.naver.com", Title: "서울 재즈 페스티벌",
			URL: "https://news.naver.com/1", PublishedAt: &ts, Similarity: 1, TrustPrior: 0.86,
		}},
	}
}

func TestWriteResponseFormats(t *testing.T) {
	resp := sampleResponse()

	var buf bytes.Buffer
	require.NoError(t, writeResponse(&buf, resp, "json"))
	var decoded types.VerificationResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 87, decoded.Confidence)
	assert.Contains(t, buf.String(), `"consensusSummary"`)

	buf.Reset()
	require.NoError(t, writeResponse(&buf, resp, "yaml"))
	assert.Contains(t, buf.String(), "verdict: LIKELY_TRUE")
	assert.Contains(t, buf.String(), "consensus_summary:")

	buf.Reset()
	require.NoError(t, writeResponse(&buf, resp, "table"))
	out := buf.String()
	assert.Contains(t, out, "Verdict:    LIKELY_TRUE")
	assert.Contains(t, out, "news.naver.com")
	assert.Contains(t, out, "2025-10-13")

	assert.Error(t, writeResponse(&buf, resp, "xml"))
}

func TestWriteTableNoEvidence(t *testing.T) {
	var buf bytes.Buffer
	writeTable(&buf, types.VerificationResponse{Verdict: types.VerdictUnsure, Confidence: 30})
	assert.Contains(t, buf.String(), "No evidence found.")
}

func TestWritePlan(t *testing.T) {
	plan := verify.New(verify.Options{}).Plan(types.VerificationRequest{
		Platform:  "instagram",
		SourceURL: "https://www.instagram.com/p/abc",
		Title:     "서울 재즈 페스티벌 10.18 공식 예매",
	})
	var buf bytes.Buffer
	writePlan(&buf, plan)
	out := buf.String()
	assert.Contains(t, out, "Primary:")
	assert.Contains(t, out, `  1  "서울 재즈 페스티벌 10.18 공식 예매"`)
	assert.Contains(t, out, "Place:      서울")
}

func TestWriteTrust(t *testing.T) {
	var buf bytes.Buffer
	writeTrust(&buf, trust.Default(), []string{"https://tickets.interpark.com/x", "unknown.example"}, true, 1)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "tickets.interpark.com")
	assert.Contains(t, lines[1], "0.88")
	// 0.88*0.6 + 0.25 + 0.15
	assert.Contains(t, lines[1], "0.93")
	assert.Contains(t, lines[2], "0.50")
}
