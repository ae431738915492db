// Package httpretry provides an HTTP client with automatic retry logic,
// exponential backoff, and jitter for resilient external API calls.
package httpretry

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/ignite/meta-ads-loader/internal/pkg/logger"
)

// HTTPDoer is the interface for executing HTTP requests.
// Both *http.Client and *RetryClient satisfy this interface.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options tunes the retry behavior. Zero values fall back to defaults.
type Options struct {
	MaxRetries int           // retry attempts after the initial request (default 3)
	BaseDelay  time.Duration // first backoff step (default 1s)
	MaxDelay   time.Duration // backoff cap (default 30s)
}

// RetryClient wraps an HTTPDoer with retry on throttling (429), server
// errors (5xx), and transient network failures. Other client errors and
// context cancellation are never retried.
type RetryClient struct {
	client     HTTPDoer
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// New creates a RetryClient wrapping the given HTTPDoer.
// If client is nil, a default http.Client with a 30s timeout is used.
func New(client HTTPDoer, opts Options) *RetryClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = time.Second
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = 30 * time.Second
	}
	return &RetryClient{
		client:     client,
		maxRetries: opts.MaxRetries,
		baseDelay:  opts.BaseDelay,
		maxDelay:   opts.MaxDelay,
	}
}

// Do executes the HTTP request, retrying retryable failures up to the
// configured budget. On the final attempt a retryable response is returned
// as-is so the caller can inspect status and body; exhausted network errors
// surface as the last error observed.
func (rc *RetryClient) Do(req *http.Request) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= rc.maxRetries; attempt++ {
		if req.Context().Err() != nil {
			if lastErr != nil {
				return nil, lastErr
			}
			return nil, req.Context().Err()
		}

		if attempt > 0 {
			// Replayable body is required for retried POSTs.
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, fmt.Errorf("httpretry: resetting request body: %w", err)
				}
				req.Body = body
			}

			delay := rc.backoff(attempt)
			logger.Warn("retrying request",
				"attempt", fmt.Sprintf("%d/%d", attempt, rc.maxRetries),
				"method", req.Method,
				"host", req.URL.Host,
				"path", req.URL.Path,
				"delay", delay.String(),
			)

			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-req.Context().Done():
				timer.Stop()
				if lastErr != nil {
					return nil, lastErr
				}
				return nil, req.Context().Err()
			}
		}

		resp, err := rc.client.Do(req)
		if err != nil {
			lastErr = err
			if req.Context().Err() != nil {
				return nil, err
			}
			// Network/connection/timeout error, retry.
			continue
		}

		if !RetryableStatus(resp.StatusCode) {
			return resp, nil
		}

		if attempt == rc.maxRetries {
			return resp, nil
		}

		// Drain for connection reuse before retrying.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		lastErr = fmt.Errorf("httpretry: server returned retryable status %d", resp.StatusCode)
	}

	return nil, lastErr
}

// backoff returns the delay before the given retry attempt: exponential
// growth capped at maxDelay, with full jitter and a 100ms floor.
func (rc *RetryClient) backoff(attempt int) time.Duration {
	exp := float64(rc.baseDelay) * math.Pow(2, float64(attempt-1))
	if exp > float64(rc.maxDelay) {
		exp = float64(rc.maxDelay)
	}
	jittered := time.Duration(rand.Float64() * exp)
	if jittered < 100*time.Millisecond {
		jittered = 100 * time.Millisecond
	}
	return jittered
}

// RetryableStatus reports whether the HTTP status code indicates a condition
// worth retrying: 429 (throttling) and the transient 5xx family.
func RetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
