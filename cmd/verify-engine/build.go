// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"go.uber.org/zap"

	"github.com/pdiddy/verify-engine/internal/llm"
	"github.com/pdiddy/verify-engine/internal/score"
	"github.com/pdiddy/verify-engine/internal/search"
	"github.com/pdiddy/verify-engine/internal/trust"
	"github.com/pdiddy/verify-engine/internal/verify"
	"github.com/pdiddy/verify-engine/pkg/types"
)

// buildEngine wires adapters, cache, scorer, the optional judge and the
// LLM-only verifier into an engine.
func buildEngine(c types.Config, l *zap.Logger) *verify.Engine {
	mode, _ := types.ParseMode(c.Mode)
	policy := trust.Default()

	tr := search.NewTransport(c.Search.HTTPConfig)
	adapters := search.NewAdapters(c.Adapters, tr)
	agg := search.NewAggregator(adapters, search.NewCache(c.Cache), c.Search, l)

	client := llm.NewClient(c.AI)
	var judge llm.Judge
	if c.AI.JudgeEnabled() {
		judge = llm.NewJudge(client)
	}

	l.Debug("engine configured",
		zap.String("mode", string(mode)),
		zap.Strings("adapters", agg.Adapters()),
		zap.Bool("judge", judge != nil),
		zap.Duration("cache_ttl", c.Cache.TTL),
		zap.Int("cache_capacity", c.Cache.Capacity))

	return verify.New(verify.Options{
		Mode:         mode,
		Searcher:     agg,
		Scorer:       score.New(policy),
		Judge:        judge,
		Verifier:     llm.NewVerifier(client, policy, l),
		KeywordLimit: c.Search.KeywordLimit,
		Logger:       l,
	})
}
