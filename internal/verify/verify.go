// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package verify runs one verification request end to end.
//
// In hybrid mode the request is normalized, boosted keywords form the
// primary query, and when that finds nothing the fallback cascade (followed
// by a few fact-driven queries) is tried in order until one returns results.
// Hits are scored into evidence and handed to the verdict engine, with an
// optional judge score. In llm mode the whole request goes to the
// LLM-only verifier. Verify never fails: every error degrades to a
// low-confidence response.
package verify

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/verify-engine/internal/facts"
	"github.com/pdiddy/verify-engine/internal/keywords"
	"github.com/pdiddy/verify-engine/internal/llm"
	"github.com/pdiddy/verify-engine/internal/logging"
	"github.com/pdiddy/verify-engine/internal/query"
	"github.com/pdiddy/verify-engine/internal/score"
	"github.com/pdiddy/verify-engine/internal/search"
	"github.com/pdiddy/verify-engine/internal/textnorm"
	"github.com/pdiddy/verify-engine/internal/verdict"
	"github.com/pdiddy/verify-engine/pkg/types"
)

const (
	defaultKeywordLimit = 12

	// builderTail is how many query-builder candidates follow the cascade.
	builderTail = 6
)

// Searcher resolves a query into merged results. *search.Aggregator
// satisfies it.
type Searcher interface {
	Search(ctx context.Context, query string) []types.SearchResult
}

// LLMVerifier runs the LLM-only path. *llm.Verifier satisfies it.
type LLMVerifier interface {
	Verify(ctx context.Context, req types.VerificationRequest) types.VerificationResponse
}

// Options wires an Engine. Judge and Verifier may be nil.
type Options struct {
	Mode         types.Mode
	Searcher     Searcher
	Scorer       *score.Scorer
	Judge        llm.Judge
	Verifier     LLMVerifier
	KeywordLimit int
	Logger       *zap.Logger
}

// Engine is safe for concurrent use; it holds no per-request state.
type Engine struct {
	mode         types.Mode
	searcher     Searcher
	scorer       *score.Scorer
	judge        llm.Judge
	verifier     LLMVerifier
	keywordLimit int
	logger       *zap.Logger
	now          func() time.Time
}

// New builds an Engine.
func New(o Options) *Engine {
	if o.Mode == "" {
		o.Mode = types.ModeHybrid
	}
	if o.Scorer == nil {
		o.Scorer = score.New(nil)
	}
	if o.KeywordLimit <= 0 {
		o.KeywordLimit = defaultKeywordLimit
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return &Engine{
		mode:         o.Mode,
		searcher:     o.Searcher,
		scorer:       o.Scorer,
		judge:        o.Judge,
		verifier:     o.Verifier,
		keywordLimit: o.KeywordLimit,
		logger:       o.Logger.Named("verify"),
		now:          time.Now,
	}
}

// Mode reports the configured verification path.
func (e *Engine) Mode() types.Mode { return e.mode }

// Verify checks one request. The request is assumed valid: platform and
// source URL are present.
func (e *Engine) Verify(ctx context.Context, req types.VerificationRequest) types.VerificationResponse {
	log := logging.FromContext(ctx, e.logger)

	if e.mode == types.ModeLLM && e.verifier != nil {
		resp := e.verifier.Verify(ctx, req)
		log.Info("verified",
			zap.String("mode", string(e.mode)),
			zap.String("verdict", string(resp.Verdict)),
			zap.Int("confidence", resp.Confidence))
		return resp
	}

	plan := e.Plan(req)
	hits := e.search(ctx, log, plan)

	evidences := e.scorer.Evidence(plan.Normalized, hits)
	if len(evidences) == 0 {
		log.Info("no evidence found", zap.String("query", plan.Primary))
		return verdict.NoEvidence(plan.Normalized)
	}
	e.logFactMatches(log, plan, evidences)

	resp := verdict.Decide(verdict.Input{
		Keywords:       plan.Keywords,
		NormalizedText: plan.Normalized,
		Evidences:      evidences,
		JudgeScore:     e.runJudge(ctx, log, plan.Normalized, evidences),
	})
	log.Info("verified",
		zap.String("mode", string(types.ModeHybrid)),
		zap.String("verdict", string(resp.Verdict)),
		zap.Int("confidence", resp.Confidence),
		zap.Int("evidences", len(resp.Evidences)))
	return resp
}

// Plan is the query plan for one request: the primary query and the
// ordered fallback candidates.
type Plan struct {
	Normalized string       `json:"normalizedText" yaml:"normalized_text"`
	Keywords   []string     `json:"keywords" yaml:"keywords"`
	Facts      *facts.Facts `json:"-" yaml:"-"`
	Primary    string       `json:"primary" yaml:"primary"`
	Fallback   []string     `json:"fallback" yaml:"fallback"`
}

// Plan derives the normalized text, keywords and queries for req without
// searching.
func (e *Engine) Plan(req types.VerificationRequest) Plan {
	normalized := NormalizeInput(req)
	kws := keywords.Boosted(req.Title, req.Text, req.SourceURL, e.keywordLimit)
	f := facts.Extract(textnorm.Normalize(req.Title+" "+req.Text), e.now())

	fallback := query.Cascade(req.Title, req.Text, req.SourceURL, kws)
	seen := make(map[string]bool, len(fallback))
	for _, q := range fallback {
		seen[q] = true
	}
	added := 0
	for _, q := range query.Build(textnorm.Normalize(req.Title), textnorm.Normalize(req.Text), f) {
		if added == builderTail {
			break
		}
		if seen[q] {
			continue
		}
		seen[q] = true
		fallback = append(fallback, q)
		added++
	}

	return Plan{
		Normalized: normalized,
		Keywords:   kws,
		Facts:      f,
		Primary:    keywords.Query(kws),
		Fallback:   fallback,
	}
}

// NormalizeInput normalizes the post text, or title plus source URL when
// the text is blank.
func NormalizeInput(req types.VerificationRequest) string {
	if n := textnorm.Normalize(req.Text); n != "" {
		return n
	}
	return textnorm.Normalize(strings.TrimSpace(req.Title + " " + req.SourceURL))
}

func (e *Engine) search(ctx context.Context, log *zap.Logger, plan Plan) []types.SearchResult {
	if e.searcher == nil {
		return nil
	}
	hits := e.searcher.Search(ctx, plan.Primary)
	log.Debug("primary search", zap.String("query", plan.Primary), zap.Int("hits", len(hits)))
	if len(hits) > 0 {
		return hits
	}

	for _, q := range plan.Fallback {
		if ctx.Err() != nil {
			return nil
		}
		more := e.searcher.Search(ctx, q)
		log.Debug("fallback search", zap.String("query", q), zap.Int("hits", len(more)))
		if len(more) > 0 {
			return more
		}
	}
	return nil
}

// runJudge returns nil when no judge is configured or the judge fails.
func (e *Engine) runJudge(ctx context.Context, log *zap.Logger, claim string, ev []types.Evidence) *float64 {
	if e.judge == nil {
		return nil
	}
	lines := make([]string, len(ev))
	for i, x := range ev {
		lines[i] = "- " + x.Title + " :: " + x.Snippet
	}
	s, err := e.judge.Judge(ctx, claim, strings.Join(lines, "\n"))
	if err != nil {
		log.Warn("judge unavailable", zap.Error(err))
		return nil
	}
	return &s
}

func (e *Engine) logFactMatches(log *zap.Logger, plan Plan, ev []types.Evidence) {
	if ce := log.Check(zap.DebugLevel, "evidence"); ce == nil {
		return
	}
	for _, x := range ev {
		other := facts.Extract(textnorm.Normalize(x.Title+" "+x.Snippet), e.now())
		log.Debug("evidence",
			zap.String("url", x.URL),
			zap.Float64("similarity", x.Similarity),
			zap.Float64("trust_prior", x.TrustPrior),
			zap.Float64("fact_match", plan.Facts.MatchScore(other)),
			zap.String("hits", plan.Facts.HitExplain(other)))
	}
}
