// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package verdict blends evidence similarity, trust priors and an optional
// judge score into a confidence and a three-way verdict.
package verdict

import (
	"fmt"
	"math"
	"strings"

	"github.com/pdiddy/verify-engine/pkg/types"
)

// Weights of the confidence blend.
const (
	SimilarityWeight = 0.7
	PriorWeight      = 0.2
	JudgeWeight      = 0.3
)

// Thresholds on the final confidence.
const (
	TrueThreshold  = 70
	FalseThreshold = 40
)

// averagedTop is how many leading evidences feed the averages.
const averagedTop = 3

// NoEvidenceConfidence is reported when nothing could be found or scored.
const NoEvidenceConfidence = 30

const (
	noEvidenceRationale = "• 레퍼런스 검색 결과가 부족합니다(검색 엔진/쿼리/설정 확인 필요)."
	noConsensus         = "관련 레퍼런스를 충분히 찾지 못했습니다."
)

// Input is everything Decide needs for one request.
type Input struct {
	Keywords       []string
	NormalizedText string

	// Evidences must already be sorted by similarity descending.
	Evidences []types.Evidence

	// JudgeScore is the judge's opinion in [-1,1]; nil when no judge ran.
	JudgeScore *float64
}

// Decide computes the response for evidence-backed requests. An empty
// evidence list yields NoEvidence.
func Decide(in Input) types.VerificationResponse {
	if len(in.Evidences) == 0 {
		return NoEvidence(in.NormalizedText)
	}

	simAvg, priorAvg := Averages(in.Evidences)
	confidence := Confidence(simAvg, priorAvg, in.JudgeScore)

	return types.VerificationResponse{
		Verdict:          Classify(confidence),
		Confidence:       confidence,
		Rationale:        Rationale(in.Keywords, simAvg, priorAvg, in.JudgeScore != nil),
		ConsensusSummary: Consensus(in.Evidences),
		NormalizedText:   in.NormalizedText,
		Evidences:        in.Evidences,
	}
}

// NoEvidence is the fixed low-confidence answer when the search and the
// fallback cascade found nothing.
func NoEvidence(normalized string) types.VerificationResponse {
	return types.VerificationResponse{
		Verdict:          types.VerdictUnsure,
		Confidence:       NoEvidenceConfidence,
		Rationale:        noEvidenceRationale,
		ConsensusSummary: noConsensus,
		NormalizedText:   normalized,
		Evidences:        []types.Evidence{},
	}
}

// Averages returns the mean similarity and mean trust prior over the first
// three evidences. With no evidence the prior average is the neutral 0.5.
func Averages(ev []types.Evidence) (simAvg, priorAvg float64) {
	n := min(len(ev), averagedTop)
	if n == 0 {
		return 0, 0.5
	}
	for _, e := range ev[:n] {
		simAvg += e.Similarity
		priorAvg += e.TrustPrior
	}
	return simAvg / float64(n), priorAvg / float64(n)
}

// Confidence blends the averages and the optional judge score into an
// integer in [0,100].
func Confidence(simAvg, priorAvg float64, judge *float64) int {
	raw := simAvg*SimilarityWeight + priorAvg*PriorWeight
	if judge != nil {
		j := math.Max(-1, math.Min(1, *judge))
		raw += ((j + 1) / 2) * JudgeWeight
	}
	raw = math.Max(0, math.Min(1, raw))
	return int(math.Round(raw * 100))
}

// Classify maps a confidence to a verdict.
func Classify(confidence int) types.Verdict {
	switch {
	case confidence >= TrueThreshold:
		return types.VerdictLikelyTrue
	case confidence <= FalseThreshold:
		return types.VerdictLikelyFalse
	default:
		return types.VerdictUnsure
	}
}

// Rationale renders the bullet list explaining a decision.
func Rationale(keywords []string, simAvg, priorAvg float64, judgeUsed bool) string {
	used := "no"
	if judgeUsed {
		used = "yes"
	}
	return strings.Join([]string{
		"• 키워드: " + strings.Join(keywords, ", "),
		fmt.Sprintf("• 유사도 평균: %.2f", simAvg),
		fmt.Sprintf("• 출처 신뢰도 평균: %.2f", priorAvg),
		"• LLM 보정 사용: " + used,
	}, "\n")
}

// Consensus renders a one-line summary from the top three evidence titles.
func Consensus(ev []types.Evidence) string {
	if len(ev) == 0 {
		return noConsensus
	}
	n := min(len(ev), averagedTop)
	titles := make([]string, n)
	for i, e := range ev[:n] {
		titles[i] = e.Title
	}
	return "상위 출처 요약: " + strings.Join(titles, " / ")
}
