// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers for outbound calls such as
// Pushgateway pushes.
package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultMaxRetries = 3
	defaultBaseDelay  = time.Second
)

// Doer performs one HTTP request. *http.Client implements it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RetryDoer is a Doer that retries throttled requests. The zero value
// uses http.DefaultClient, three retries, and a one second base delay.
type RetryDoer struct {
	Client     Doer
	MaxRetries int
	BaseDelay  time.Duration
}

// Do implements Doer using DoWithRetry and the request's context.
func (d *RetryDoer) Do(req *http.Request) (*http.Response, error) {
	var client Doer = http.DefaultClient
	if d.Client != nil {
		client = d.Client
	}
	return DoWithRetry(req.Context(), client, req, d.MaxRetries, d.BaseDelay)
}

// retryable reports whether status is worth retrying.
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable
}

// DoWithRetry executes req and retries on HTTP 429 and 503 with
// exponential backoff starting at baseDelay: 1x, 2x, 4x, ...
//
// Non-positive maxRetries and baseDelay select the defaults. Request
// bodies are rewound with req.GetBody before each retry; a request with a
// body that cannot be rewound is sent once. On each retry the previous
// response body is drained and closed. If ctx is cancelled during a
// backoff wait the function returns ctx.Err(). After exhausting retries
// the last response is returned so the caller can inspect it.
func DoWithRetry(ctx context.Context, client Doer, req *http.Request, maxRetries int, baseDelay time.Duration) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if baseDelay <= 0 {
		baseDelay = defaultBaseDelay
	}
	if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
		maxRetries = 0
	}

	for attempt := 0; ; attempt++ {
		attemptReq := req.Clone(ctx)
		if attempt > 0 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("rewinding request body: %w", err)
			}
			attemptReq.Body = body
		}

		resp, err := client.Do(attemptReq)
		if err != nil {
			return nil, err
		}
		if !retryable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := baseDelay << attempt
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}
