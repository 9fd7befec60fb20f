// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Verdict is the three-way classification of a claim.
type Verdict string

const (
	VerdictLikelyTrue  Verdict = "LIKELY_TRUE"
	VerdictLikelyFalse Verdict = "LIKELY_FALSE"
	VerdictUnsure      Verdict = "UNSURE"
)

// VerificationRequest is a social-media or news post submitted for checking.
// Platform and SourceURL are required; the transport layer rejects requests
// without them before they reach the pipeline.
type VerificationRequest struct {
	// Platform names the origin, e.g. "instagram", "facebook", "naver_news".
	Platform  string   `json:"platform" yaml:"platform" binding:"required"`
	SourceURL string   `json:"sourceUrl" yaml:"source_url" binding:"required"`
	Language  string   `json:"language,omitempty" yaml:"language,omitempty"`
	Title     string   `json:"title,omitempty" yaml:"title,omitempty"`
	Text      string   `json:"text,omitempty" yaml:"text,omitempty"`
	ImageURLs []string `json:"imageUrls,omitempty" yaml:"image_urls,omitempty"`
}

// VerificationResponse is the sole observable output of the pipeline. It is
// built once per request and never mutated afterwards.
type VerificationResponse struct {
	Verdict Verdict `json:"verdict" yaml:"verdict"`

	// Confidence is an integer score; the LLM-only path clamps it to 1-100.
	Confidence int `json:"confidence" yaml:"confidence"`

	Rationale        string     `json:"rationale" yaml:"rationale"`
	ConsensusSummary string     `json:"consensusSummary" yaml:"consensus_summary"`
	NormalizedText   string     `json:"normalizedText" yaml:"normalized_text"`
	Evidences        []Evidence `json:"evidences" yaml:"evidences"`
}
