// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Judge scores how well the evidence supports a claim, in [-1,1]. An error
// means the judge is unavailable for this request.
type Judge interface {
	Judge(ctx context.Context, claim, evidence string) (float64, error)
}

const judgeSystemPrompt = "You are a cautious fact-checking assistant. Return a single number between -1.0 and 1.0: " +
	"negative means likely false, positive means likely true, near 0 means unsure."

// OpenAIJudge asks a chat model for a single number.
type OpenAIJudge struct {
	Client *Client
}

// NewJudge returns a judge backed by c.
func NewJudge(c *Client) *OpenAIJudge {
	return &OpenAIJudge{Client: c}
}

// Judge sends the claim and the merged evidence snippets and parses the
// reply as a float clamped to [-1,1].
func (j *OpenAIJudge) Judge(ctx context.Context, claim, evidence string) (float64, error) {
	content, err := j.Client.Complete(ctx, []Message{
		{Role: "system", Content: judgeSystemPrompt},
		{Role: "user", Content: "CLAIM:\n" + claim + "\n\nEVIDENCE SNIPPETS:\n" + evidence + "\n\nReturn ONLY the number."},
	}, Options{Temperature: 0})
	if err != nil {
		return 0, err
	}
	return parseScore(content)
}

func parseScore(s string) (float64, error) {
	s = strings.Trim(strings.TrimSpace(s), "`\"'")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) {
		return 0, fmt.Errorf("judge returned a non-numeric answer %q", s)
	}
	return math.Max(-1, math.Min(1, v)), nil
}
