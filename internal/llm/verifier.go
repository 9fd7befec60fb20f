// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"text/template"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/verify-engine/internal/score"
	"github.com/pdiddy/verify-engine/internal/textnorm"
	"github.com/pdiddy/verify-engine/internal/trust"
	"github.com/pdiddy/verify-engine/pkg/types"
)

// systemPrompt fixes the model's procedure and its single-object output
// contract. It names no brands or domains; facts and source types come from
// the post itself.
const systemPrompt = `당신은 한국어로 답하는 엄격한 팩트체커입니다. 게시물이 주장하는 사실을 교차검증 가능한 출처로 확인하세요.

절차:
1. 게시물에서 이벤트명, 날짜, 장소, 도시, 주최/브랜드, 해시태그, 핸들을 동적으로 추출합니다. 특정 브랜드명을 미리 가정하지 마세요.
2. 추출한 사실로 여러 변형의 검색 질의(정확한 따옴표 검색, 이벤트명+장소, 이벤트명+날짜, 예매/ticket 키워드, site: 필터)를 만들어 검색합니다.
3. 각 출처를 고정된 도메인 목록이 아니라 구조적 신호로 분류합니다: ticketing(예매/결제 페이지), official(주최측·아티스트 공식 채널), media(언론 보도), other.
4. 서로 다른 출처 유형 2가지 이상에서 3개 이상의 증거가 같은 날짜·장소·이벤트명을 확인할 때만 verdict="LIKELY_TRUE"로 판정합니다.
5. 일부만 확인되면 verdict="UNSURE", 공식 출처에서 반박되거나 존재하지 않으면 verdict="LIKELY_FALSE"입니다.

confidence는 1~100 정수입니다: LIKELY_TRUE 70~100, UNSURE 41~69, LIKELY_FALSE 1~40.

다른 텍스트 없이 정확히 하나의 JSON 객체만 출력하세요:
{
  "verdict": "LIKELY_TRUE | LIKELY_FALSE | UNSURE",
  "confidence": <int>,
  "rationale": "...",
  "consensusSummary": "...",
  "normalizedText": "...",
  "evidences": [
    {"source": "ticketing | official | media | other", "domain": "...", "title": "...", "url": "...", "snippet": "...", "publishedAt": "RFC3339"}
  ]
}`

var userPromptTmpl = template.Must(template.New("verify").Parse(`플랫폼: {{.Platform}}
소스 URL: {{.SourceURL}}
언어: {{.Language}}
제목: {{.Title}}
본문: {{.Text}}
이미지: {{range $i, $u := .ImageURLs}}{{if $i}}, {{end}}{{$u}}{{end}}
`))

// defaultConfidence replaces a missing or zero confidence.
const defaultConfidence = 35

const (
	failConfidence = 30
	failPrefix     = "• LLM-only 경로 오류: "
	failConsensus  = "관련 레퍼런스를 충분히 찾지 못했습니다."
)

// Verifier runs the whole verification through the chat model.
type Verifier struct {
	Client *Client
	Policy *trust.Policy
	Logger *zap.Logger
}

// NewVerifier returns a verifier. Nil policy and logger select the default
// trust policy and a no-op logger.
func NewVerifier(c *Client, p *trust.Policy, logger *zap.Logger) *Verifier {
	if p == nil {
		p = trust.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{Client: c, Policy: p, Logger: logger.Named("llm")}
}

// Verify never returns an error: every failure is folded into a fixed
// UNSURE response whose rationale carries the diagnostic.
func (v *Verifier) Verify(ctx context.Context, req types.VerificationRequest) types.VerificationResponse {
	user, err := renderUserPrompt(req)
	if err != nil {
		return v.fail(req, fmt.Errorf("rendering prompt: %w", err))
	}

	content, err := v.Client.Complete(ctx, []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: user},
	}, Options{Temperature: 0.1, JSONObject: true})
	if err != nil {
		return v.fail(req, err)
	}

	ans, err := parseAnswer(content)
	if err != nil {
		return v.fail(req, fmt.Errorf("LLM verify exception: %w", err))
	}
	return ans.toResponse(v.Policy)
}

func renderUserPrompt(req types.VerificationRequest) (string, error) {
	var buf bytes.Buffer
	if err := userPromptTmpl.Execute(&buf, req); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (v *Verifier) fail(req types.VerificationRequest, err error) types.VerificationResponse {
	v.Logger.Warn("llm verification failed", zap.String("source_url", req.SourceURL), zap.Error(err))
	return types.VerificationResponse{
		Verdict:          types.VerdictUnsure,
		Confidence:       failConfidence,
		Rationale:        failPrefix + err.Error(),
		ConsensusSummary: failConsensus,
		NormalizedText:   textnorm.Normalize(req.Text),
		Evidences:        []types.Evidence{},
	}
}

// answer is the model's output schema. Every field is optional; toResponse
// applies the defaults.
type answer struct {
	Verdict          string           `json:"verdict"`
	Confidence       *float64         `json:"confidence"`
	Rationale        string           `json:"rationale"`
	ConsensusSummary string           `json:"consensusSummary"`
	NormalizedText   string           `json:"normalizedText"`
	Evidences        []answerEvidence `json:"evidences"`
}

type answerEvidence struct {
	Source      string `json:"source"`
	Domain      string `json:"domain"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Snippet     string `json:"snippet"`
	PublishedAt string `json:"publishedAt"`
}

// parseAnswer decodes the assistant message. Markdown fences and prose
// around the object are tolerated; anything else is an error.
func parseAnswer(content string) (answer, error) {
	s := strings.TrimSpace(content)
	start, end := strings.Index(s, "{"), strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return answer{}, fmt.Errorf("no JSON object in model output")
	}
	var a answer
	if err := json.Unmarshal([]byte(s[start:end+1]), &a); err != nil {
		return answer{}, fmt.Errorf("decoding model output: %w", err)
	}
	return a, nil
}

func (a answer) toResponse(p *trust.Policy) types.VerificationResponse {
	raw := a.Evidences
	if len(raw) > score.TopK {
		raw = raw[:score.TopK]
	}
	evs := make([]types.Evidence, 0, len(raw))
	for _, e := range raw {
		src := strings.TrimSpace(e.Source)
		if src == "" {
			src = "web"
		}
		evs = append(evs, types.Evidence{
			Source:      src,
			Domain:      strings.TrimPrefix(score.Domain(e.URL), "www."),
			Title:       e.Title,
			URL:         e.URL,
			Snippet:     e.Snippet,
			PublishedAt: parsePublished(e.PublishedAt),
			TrustPrior:  p.TrustPrior(e.URL),
		})
	}
	return types.VerificationResponse{
		Verdict:          parseVerdict(a.Verdict),
		Confidence:       clampConfidence(a.Confidence),
		Rationale:        a.Rationale,
		ConsensusSummary: a.ConsensusSummary,
		NormalizedText:   a.NormalizedText,
		Evidences:        evs,
	}
}

func parseVerdict(s string) types.Verdict {
	switch v := types.Verdict(strings.ToUpper(strings.TrimSpace(s))); v {
	case types.VerdictLikelyTrue, types.VerdictLikelyFalse, types.VerdictUnsure:
		return v
	default:
		return types.VerdictUnsure
	}
}

func clampConfidence(c *float64) int {
	if c == nil || math.IsNaN(*c) {
		return defaultConfidence
	}
	v := math.Round(*c)
	if v == 0 {
		return defaultConfidence
	}
	return int(math.Max(1, math.Min(100, v)))
}

func parsePublished(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
