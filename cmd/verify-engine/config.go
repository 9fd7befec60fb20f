// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/pdiddy/verify-engine/pkg/types"
)

// configureEnv maps nested keys to VERIFY_ENGINE_* variables, e.g.
// adapters.naver.client_id -> VERIFY_ENGINE_ADAPTERS_NAVER_CLIENT_ID.
func configureEnv(v *viper.Viper) {
	v.SetEnvPrefix("VERIFY_ENGINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, types.DefaultConfig())
}

// setDefaults registers every key so environment variables can override
// keys that no config file mentions.
func setDefaults(v *viper.Viper, d types.Config) {
	v.SetDefault("mode", d.Mode)

	v.SetDefault("search.timeout", d.Search.Timeout)
	v.SetDefault("search.user_agent", d.Search.UserAgent)
	v.SetDefault("search.max_results", d.Search.MaxResults)
	v.SetDefault("search.adapter_timeout", d.Search.AdapterTimeout)
	v.SetDefault("search.keyword_limit", d.Search.KeywordLimit)

	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.capacity", d.Cache.Capacity)

	adapters := map[string]types.AdapterConfig{
		"naver":      d.Adapters.Naver,
		"google_cse": d.Adapters.Google,
		"bing":       d.Adapters.Bing,
		"gnews":      d.Adapters.GNews,
	}
	for name, a := range adapters {
		prefix := "adapters." + name + "."
		v.SetDefault(prefix+"enabled", a.Enabled)
		v.SetDefault(prefix+"endpoint", a.Endpoint)
		v.SetDefault(prefix+"api_key", a.APIKey)
		v.SetDefault(prefix+"client_id", a.ClientID)
		v.SetDefault(prefix+"client_secret", a.ClientSecret)
		v.SetDefault(prefix+"cx", a.CX)
	}

	v.SetDefault("ai.provider", d.AI.Provider)
	v.SetDefault("ai.model", d.AI.Model)
	v.SetDefault("ai.api_key", d.AI.APIKey)
	v.SetDefault("ai.endpoint", d.AI.Endpoint)
	v.SetDefault("ai.max_retries", d.AI.MaxRetries)
	v.SetDefault("ai.timeout", d.AI.Timeout)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.allow_origins", d.Server.AllowOrigins)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.development", d.Log.Development)
}

// loadConfig decodes v over the defaults and validates the mode.
func loadConfig(v *viper.Viper) (types.Config, error) {
	c := types.DefaultConfig()
	if err := v.Unmarshal(&c); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	mode, err := types.ParseMode(c.Mode)
	if err != nil {
		return types.Config{}, err
	}
	c.Mode = string(mode)
	return c, nil
}
