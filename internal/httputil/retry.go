// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the search adapters and
// the language-model client.
package httputil

import (
	"context"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RetryBaseDelay is the first backoff step when the server does not send
// Retry-After. Tests override this to avoid real sleeps.
var RetryBaseDelay = 500 * time.Millisecond

// MaxRetryDelay caps any single wait, including server-provided Retry-After.
var MaxRetryDelay = 10 * time.Second

const defaultMaxRetries = 2

// Retryable reports whether a status code is worth retrying: 429 Too Many
// Requests and 503 Service Unavailable.
func Retryable(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusServiceUnavailable
}

// DoWithRetry executes req and retries on 429 and 503 responses. The wait
// is the server's Retry-After (seconds) when present, otherwise
// RetryBaseDelay doubled per attempt, capped at MaxRetryDelay.
//
// When maxRetries is 0 the default (2) is used. The body of a retried
// response is drained and closed. If ctx ends during a wait the function
// returns ctx.Err(). After exhausting retries the last response is returned
// so the caller can inspect its status.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if client == nil {
		client = http.DefaultClient
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		if !Retryable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		wait := backoff(attempt, resp.Header.Get("Retry-After"))
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func backoff(attempt int, retryAfter string) time.Duration {
	wait := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
	if secs, err := strconv.Atoi(strings.TrimSpace(retryAfter)); err == nil && secs >= 0 {
		wait = time.Duration(secs) * time.Second
	}
	return min(wait, MaxRetryDelay)
}
