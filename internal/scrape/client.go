package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// ErrPermanent marks a fetch failure that retrying cannot fix, such as a
// 404 for a member page that no longer exists. Callers check it with
// errors.Is; the task still produces a placeholder record.
var ErrPermanent = errors.New("permanent fetch failure")

// StatusError reports a non-success HTTP status.
type StatusError struct {
	// Code is the HTTP status code.
	Code int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// transient reports whether the status is worth retrying.
// Server errors and rate limiting are transient; any other client error
// means the page itself is the problem.
func (e *StatusError) transient() bool {
	return e.Code >= 500 || e.Code == http.StatusTooManyRequests
}

// Backoff returns the delay before retry attempt n (1-based):
// base * 2^(n-1), capped at maxDelay.
func Backoff(base, maxDelay time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= maxDelay {
			return maxDelay
		}
	}
	if d > maxDelay {
		return maxDelay
	}
	return d
}

// Client fetches pages with retries and politeness rate limiting.
// It is safe for concurrent use by the worker pool: the rate limiter is
// shared so the request rate is bounded across all workers, not per worker.
type Client struct {
	// hc is the underlying HTTP client; its Timeout bounds each request.
	hc *http.Client

	// limiter spaces requests across all workers. Nil disables limiting.
	limiter *rate.Limiter

	// userAgent is sent with every request.
	userAgent string

	// maxAttempts is the total tries per URL, including the first.
	maxAttempts int

	// backoffBase and backoffCap parameterize the retry delay.
	backoffBase time.Duration
	backoffCap  time.Duration

	// maxBodySize truncates response bodies to bound memory usage.
	maxBodySize int64

	// logger for structured logging.
	logger *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithMaxAttempts sets the total tries per URL, including the first.
func WithMaxAttempts(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithBackoff sets the retry delay parameters: the delay before retry N is
// base * 2^(N-1), capped at maxDelay.
func WithBackoff(base, maxDelay time.Duration) ClientOption {
	return func(c *Client) {
		c.backoffBase = base
		c.backoffCap = maxDelay
	}
}

// WithRateLimit caps the request rate shared across all workers.
// Zero or negative disables rate limiting.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		} else {
			c.limiter = nil
		}
	}
}

// WithMaxBodySize sets the maximum response body size in bytes.
func WithMaxBodySize(size int64) ClientOption {
	return func(c *Client) {
		if size > 0 {
			c.maxBodySize = size
		}
	}
}

// WithClientLogger sets a custom logger for the client.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Client on top of the given HTTP client.
//
// Design decision: We require an external *http.Client rather than building
// one because the caller owns the timeout, and tests pass the httptest
// server's client.
func NewClient(hc *http.Client, opts ...ClientOption) *Client {
	c := &Client{
		hc:          hc,
		userAgent:   "taanscrape",
		maxAttempts: 3,
		backoffBase: 500 * time.Millisecond,
		backoffCap:  8 * time.Second,
		maxBodySize: 5 * 1024 * 1024, // 5MB
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Get fetches one URL and returns its body.
//
// Transient failures are retried up to the configured attempt count with
// capped exponential backoff. Permanent failures return immediately with
// an error wrapping ErrPermanent. Context cancellation aborts the wait.
func (c *Client) Get(ctx context.Context, pageURL string) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		body, err := c.fetch(ctx, pageURL)
		if err == nil {
			return body, nil
		}
		lastErr = err

		// Cancellation surfaces as the context error, not a retry.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		// Permanent failures short-circuit the retry loop.
		if errors.Is(err, ErrPermanent) {
			c.logger.Debug("permanent failure", "url", pageURL, "error", err)
			return nil, err
		}

		if attempt == c.maxAttempts {
			break
		}

		delay := Backoff(c.backoffBase, c.backoffCap, attempt)
		c.logger.Warn("request failed, retrying",
			"url", pageURL,
			"attempt", attempt,
			"max_attempts", c.maxAttempts,
			"delay", delay,
			"error", err,
		)

		t := time.NewTimer(delay)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		}
	}

	c.logger.Error("request failed after all attempts",
		"url", pageURL,
		"attempts", c.maxAttempts,
		"error", lastErr,
	)
	return nil, fmt.Errorf("after %d attempts: %w", c.maxAttempts, lastErr)
}

// fetch performs a single GET and classifies the outcome.
func (c *Client) fetch(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		// A URL that cannot form a request will never succeed.
		return nil, fmt.Errorf("%w: %v", ErrPermanent, err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := c.hc.Do(req)
	if err != nil {
		// Transport errors (refused connections, timeouts, resets) are
		// transient by definition.
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{Code: resp.StatusCode}
		if statusErr.transient() {
			return nil, statusErr
		}
		return nil, fmt.Errorf("%w: %v", ErrPermanent, statusErr)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return nil, err
	}
	return body, nil
}
