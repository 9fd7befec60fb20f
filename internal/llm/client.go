// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm talks to an OpenAI-compatible chat-completions endpoint. It
// provides the optional evidence judge and the LLM-only verifier.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/verify-engine/internal/httputil"
	"github.com/pdiddy/verify-engine/pkg/types"
)

var (
	// ErrMissingAPIKey is returned before any network call when no key is set.
	ErrMissingAPIKey = errors.New("OPENAI_API_KEY 미설정")

	// ErrEmptyChoices means the provider answered 2xx without any choice.
	ErrEmptyChoices = errors.New("OpenAI 응답 비정상(choices empty)")

	// ErrEmptyContent means the first choice carried no message text.
	ErrEmptyContent = errors.New("OpenAI content empty")
)

// StatusError reports a non-2xx response from the provider.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("OpenAI API error: %d %s", e.Code, e.Body)
}

// maxErrorBody bounds how much of an error body is kept.
const maxErrorBody = 500

// Client sends chat-completion requests.
type Client struct {
	Endpoint   string
	APIKey     string
	Model      string
	MaxRetries int
	HTTP       *http.Client
}

// NewClient builds a client from the AI settings.
func NewClient(cfg types.AIConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		Endpoint:   cfg.Endpoint,
		APIKey:     cfg.APIKey,
		Model:      cfg.Model,
		MaxRetries: cfg.MaxRetries,
		HTTP:       &http.Client{Timeout: timeout},
	}
}

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// Options tune a single completion.
type Options struct {
	Temperature float64
	JSONObject  bool
}

// Complete sends the messages and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return "", ErrMissingAPIKey
	}

	body := chatRequest{
		Model:       c.Model,
		Messages:    messages,
		Temperature: opts.Temperature,
	}
	if opts.JSONObject {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httputil.DoWithRetry(ctx, httpClient, req, c.MaxRetries)
	if err != nil {
		return "", fmt.Errorf("calling chat API: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading chat response: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		b := strings.TrimSpace(string(raw))
		if len(b) > maxErrorBody {
			b = b[:maxErrorBody]
		}
		return "", &StatusError{Code: resp.StatusCode, Body: b}
	}

	var cr chatResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		return "", fmt.Errorf("parsing chat response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", ErrEmptyChoices
	}
	content := strings.TrimSpace(cr.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyContent
	}
	return content, nil
}
