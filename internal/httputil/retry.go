// Package httputil holds HTTP helpers shared by the remote service clients.
package httputil

import (
	"context"
	"io"
	"math"
	"net/http"
	"time"
)

// RetryBaseDelay is the first backoff after an HTTP 429. Tests shrink it.
var RetryBaseDelay = 2 * time.Second

// DefaultMaxRetries applies when callers pass maxRetries <= 0.
const DefaultMaxRetries = 4

// DoWithRetry executes req and retries HTTP 429 (Too Many Requests) with
// exponential backoff starting at RetryBaseDelay. A Retry-After header in
// seconds overrides the computed delay. After the retries are used up the
// last 429 response is returned so the caller can report it. Cancelling ctx
// during a wait returns ctx.Err().
//
// Requests with a body must set GetBody (http.NewRequest does for the common
// reader types) so the body can be replayed.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	if client == nil {
		client = http.DefaultClient
	}

	for attempt := 0; ; attempt++ {
		attemptReq := req.Clone(ctx)
		if req.GetBody != nil && attempt > 0 {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			attemptReq.Body = body
		}
		resp, err := client.Do(attemptReq)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusTooManyRequests || attempt >= maxRetries {
			return resp, nil
		}

		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		if after, ok := retryAfter(resp); ok {
			backoff = after
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

func retryAfter(resp *http.Response) (time.Duration, bool) {
	value := resp.Header.Get("Retry-After")
	if value == "" {
		return 0, false
	}
	seconds, err := time.ParseDuration(value + "s")
	if err != nil || seconds < 0 {
		return 0, false
	}
	return seconds, true
}
