// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects the verification path.
type Mode string

const (
	// ModeHybrid runs keyword extraction, multi-source search, evidence
	// scoring and the verdict engine.
	ModeHybrid Mode = "hybrid"

	// ModeLLM hands the whole request to a language model.
	ModeLLM Mode = "llm"
)

// ParseMode maps a configuration string to a Mode. Empty selects hybrid.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ModeHybrid):
		return ModeHybrid, nil
	case string(ModeLLM):
		return ModeLLM, nil
	default:
		return "", fmt.Errorf("unknown mode %q: expected hybrid or llm", s)
	}
}

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP client timeout for a single outbound call.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with outbound requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// SearchConfig holds settings for the search aggregator.
type SearchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// MaxResults is the number of merged results kept per query (default 8).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`

	// AdapterTimeout bounds each adapter call; a timeout counts as zero results (default 8s).
	AdapterTimeout time.Duration `json:"adapter_timeout" yaml:"adapter_timeout" mapstructure:"adapter_timeout"`

	// KeywordLimit caps the boosted keyword list that forms the primary query (default 12).
	KeywordLimit int `json:"keyword_limit" yaml:"keyword_limit" mapstructure:"keyword_limit"`
}

// CacheConfig bounds the shared query→results cache.
type CacheConfig struct {
	TTL      time.Duration `json:"ttl" yaml:"ttl" mapstructure:"ttl"`
	Capacity int           `json:"capacity" yaml:"capacity" mapstructure:"capacity"`
}

// AdapterConfig holds the endpoint and credentials for one search provider.
// Which credential fields are meaningful depends on the provider.
type AdapterConfig struct {
	Enabled      bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Endpoint     string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`
	APIKey       string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`
	ClientID     string `json:"client_id,omitempty" yaml:"client_id,omitempty" mapstructure:"client_id"`
	ClientSecret string `json:"client_secret,omitempty" yaml:"client_secret,omitempty" mapstructure:"client_secret"`

	// CX is the Google Custom Search engine identifier.
	CX string `json:"cx,omitempty" yaml:"cx,omitempty" mapstructure:"cx"`
}

// AdaptersConfig groups the per-provider settings.
type AdaptersConfig struct {
	Naver  AdapterConfig `json:"naver" yaml:"naver" mapstructure:"naver"`
	Google AdapterConfig `json:"google_cse" yaml:"google_cse" mapstructure:"google_cse"`
	Bing   AdapterConfig `json:"bing" yaml:"bing" mapstructure:"bing"`
	GNews  AdapterConfig `json:"gnews" yaml:"gnews" mapstructure:"gnews"`
}

// AIConfig holds shared settings for stages that call a language model.
type AIConfig struct {
	// Provider enables the judge when set to "openai"; "none" disables it.
	Provider string `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Model is the chat model identifier (e.g. "gpt-4o-mini").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key for the chat API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Endpoint is the chat-completions URL.
	Endpoint string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`

	// MaxRetries is the number of 429/503 retries for chat calls (default 2).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// JudgeEnabled reports whether the optional judge should be wired.
func (c AIConfig) JudgeEnabled() bool {
	return strings.EqualFold(c.Provider, "openai") && c.APIKey != ""
}

// ServerConfig holds the HTTP transport settings.
type ServerConfig struct {
	Addr         string   `json:"addr" yaml:"addr" mapstructure:"addr"`
	AllowOrigins []string `json:"allow_origins" yaml:"allow_origins" mapstructure:"allow_origins"`
}

// LogConfig selects the logger level and encoding.
type LogConfig struct {
	Level       string `json:"level" yaml:"level" mapstructure:"level"`
	Development bool   `json:"development" yaml:"development" mapstructure:"development"`
}

// Config groups all settings for the verification engine.
type Config struct {
	Mode     string         `json:"mode" yaml:"mode" mapstructure:"mode"`
	Search   SearchConfig   `json:"search" yaml:"search" mapstructure:"search"`
	Cache    CacheConfig    `json:"cache" yaml:"cache" mapstructure:"cache"`
	Adapters AdaptersConfig `json:"adapters" yaml:"adapters" mapstructure:"adapters"`
	AI       AIConfig       `json:"ai" yaml:"ai" mapstructure:"ai"`
	Server   ServerConfig   `json:"server" yaml:"server" mapstructure:"server"`
	Log      LogConfig      `json:"log" yaml:"log" mapstructure:"log"`
}

// DefaultConfig returns the settings used when no config file or flag overrides them.
func DefaultConfig() Config {
	return Config{
		Mode: string(ModeHybrid),
		Search: SearchConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   10 * time.Second,
				UserAgent: "verify-engine/0.1",
			},
			MaxResults:     8,
			AdapterTimeout: 8 * time.Second,
			KeywordLimit:   12,
		},
		Cache: CacheConfig{
			TTL:      15 * time.Minute,
			Capacity: 2000,
		},
		Adapters: AdaptersConfig{
			Naver:  AdapterConfig{Enabled: true, Endpoint: "https://openapi.naver.com/v1/search/news.json"},
			Google: AdapterConfig{Enabled: true, Endpoint: "https://www.googleapis.com/customsearch/v1"},
			Bing:   AdapterConfig{Enabled: true, Endpoint: "https://api.bing.microsoft.com/v7.0/news/search"},
			GNews:  AdapterConfig{Enabled: false, Endpoint: "https://news.google.com/rss/search"},
		},
		AI: AIConfig{
			Provider:   "none",
			Model:      "gpt-4o-mini",
			Endpoint:   "https://api.openai.com/v1/chat/completions",
			MaxRetries: 2,
			Timeout:    60 * time.Second,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			AllowOrigins: []string{"*"},
		},
		Log: LogConfig{Level: "info"},
	}
}
