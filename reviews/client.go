package reviews

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"net/url"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"golang.org/x/sync/semaphore"

	"github.com/carrousel-labs/review-proxy/config"
	"github.com/carrousel-labs/review-proxy/metrics"
	"github.com/carrousel-labs/review-proxy/sentry_integration"
	"github.com/carrousel-labs/review-proxy/types"
)

const (
	baseBackoffDelay  = 500 * time.Millisecond
	maxBackoffDelay   = 10 * time.Second
	backoffMultiplier = 2.0
	jitterFactor      = 0.1

	maxErrorBodyLength = 512
)

// Fetcher retrieves one page of reviews from the upstream review API.
type Fetcher interface {
	Fetch(ctx context.Context, p Params) (*UpstreamResponse, error)
}

var _ Fetcher = (*Client)(nil)

// Client calls the review API with a bounded number of concurrent requests,
// retrying throttled and failed calls with exponential backoff.
type Client struct {
	client     *fiber.Client
	baseURL    string
	endpoint   string
	userAgent  string
	timeout    time.Duration
	maxRetries int
	limiter    *semaphore.Weighted
	health     *upstreamHealth
	logger     *slog.Logger

	// backoff returns the wait before retry attempt n (1-based)
	backoff func(attempt int) time.Duration
}

func NewClient(cfg *config.UpstreamConfig, logger *slog.Logger) *Client {
	return &Client{
		client:     fiber.AcquireClient(),
		baseURL:    cfg.BaseURL,
		endpoint:   endpointLabel(cfg.BaseURL),
		userAgent:  cfg.UserAgent,
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		limiter:    semaphore.NewWeighted(int64(cfg.MaxConcurrentRequests)),
		health:     newUpstreamHealth(),
		logger:     logger.With("component", "upstream"),
		backoff:    calculateBackoffDelay,
	}
}

// Healthy reports whether the upstream circuit breaker is closed.
func (c *Client) Healthy() bool {
	return c.health.healthy()
}

// Fetch requests one page of reviews. 404 responses fail immediately with a
// NOT_FOUND error; throttling, server errors and network failures are retried.
func (c *Client) Fetch(ctx context.Context, p Params) (*UpstreamResponse, error) {
	resp, err := c.fetch(ctx, p)
	if err != nil {
		metrics.TrackUpstreamFailure(failureType(err))
	}
	return resp, err
}

func (c *Client) fetch(ctx context.Context, p Params) (*UpstreamResponse, error) {
	if !c.health.healthy() {
		metrics.SetComponentHealth("upstream", false)
		return nil, types.NewUnavailableError(c.endpoint, fmt.Sprintf("circuit open after %d consecutive failures", c.health.failures()))
	}

	span, ctx := sentry_integration.StartSentrySpan(ctx, "upstream.fetch", p.Domain)
	defer span.Finish()

	reqURL, err := c.buildURL(p)
	if err != nil {
		return nil, types.NewInternalError("failed to build upstream url", err)
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		body, err := c.getRaw(ctx, reqURL)
		if err == nil {
			var resp UpstreamResponse
			if err := json.Unmarshal(body, &resp); err != nil {
				return nil, types.NewUpstreamError(c.endpoint, fiber.StatusOK, fmt.Sprintf("invalid json: %v", err))
			}
			c.health.recordSuccess()
			metrics.SetComponentHealth("upstream", true)
			return &resp, nil
		}

		lastErr = err
		if !retryable(err) {
			if types.IsErrorType(err, types.ErrTypeNotFound) {
				c.health.recordSuccess()
			}
			return nil, err
		}
		if attempt >= c.maxRetries {
			break
		}

		metrics.TrackExternalRetry(c.endpoint)
		delay := c.backoff(attempt + 1)
		c.logger.Warn("upstream request failed, retrying",
			slog.String("domain", p.Domain),
			slog.Int("attempt", attempt+1),
			slog.Duration("backoff", delay),
			slog.Any("error", err))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	c.health.recordFailure()
	metrics.TrackError("upstream", "exhausted_retries")
	sentry_integration.CaptureCurrentHubException(lastErr, sentry.LevelError)
	c.logger.Error("upstream request failed after retries",
		slog.String("domain", p.Domain),
		slog.Int("retries", c.maxRetries),
		slog.Any("error", lastErr))

	return nil, lastErr
}

func (c *Client) buildURL(p Params) (string, error) {
	parsed, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	query := parsed.Query()
	for key, value := range p.query() {
		query.Set(key, value)
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func (c *Client) getRaw(ctx context.Context, reqURL string) (body []byte, err error) {
	// Track semaphore wait time
	semaphoreStart := time.Now()
	if err := c.limiter.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("failed to acquire semaphore: %w", err)
	}
	defer c.limiter.Release(1)
	metrics.TrackSemaphoreWait(time.Since(semaphoreStart))

	metrics.AdjustConcurrentRequests(1)
	defer metrics.AdjustConcurrentRequests(-1)

	start := time.Now()
	req := c.client.Get(reqURL).
		Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON).
		Set(fiber.HeaderUserAgent, c.userAgent)

	code, body, errs := req.Timeout(c.timeout).Bytes()
	if err := errors.Join(errs...); err != nil {
		metrics.TrackExternalRequest(c.endpoint, 0, time.Since(start))
		if errors.Is(err, fasthttp.ErrTimeout) {
			return nil, types.NewTimeoutError("upstream request")
		}
		return nil, types.NewNetworkError(c.endpoint, err)
	}
	metrics.TrackExternalRequest(c.endpoint, code, time.Since(start))

	switch {
	case code == fiber.StatusOK:
		return body, nil
	case code == fiber.StatusNotFound:
		return nil, types.NewNotFoundError("reviews for domain")
	default:
		return nil, types.NewUpstreamError(c.endpoint, code, truncateBody(body))
	}
}

// retryable reports whether err is worth another attempt: network failures,
// timeouts, throttling and server errors.
func retryable(err error) bool {
	switch {
	case types.IsErrorType(err, types.ErrTypeNetwork), types.IsErrorType(err, types.ErrTypeTimeout):
		return true
	case types.IsErrorType(err, types.ErrTypeUpstream):
		code := types.StatusCode(err)
		return code == fiber.StatusTooManyRequests || code >= fiber.StatusInternalServerError
	default:
		return false
	}
}

// failureType is the metrics label for a failed fetch.
func failureType(err error) string {
	var se *types.StandardError
	switch {
	case errors.As(err, &se):
		return strings.ToLower(string(se.Type))
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "deadline_exceeded"
	default:
		return "unknown"
	}
}

// calculateBackoffDelay calculates exponential backoff delay with jitter
func calculateBackoffDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return baseBackoffDelay
	}

	baseSeconds := baseBackoffDelay.Seconds()
	maxSeconds := maxBackoffDelay.Seconds()

	delaySeconds := baseSeconds * math.Pow(backoffMultiplier, float64(attempt-1))
	if delaySeconds > maxSeconds {
		delaySeconds = maxSeconds
	}

	// +/- jitterFactor to avoid thundering herd
	delaySeconds += delaySeconds * jitterFactor * (2*rand.Float64() - 1)
	if delaySeconds < baseSeconds {
		delaySeconds = baseSeconds
	}

	return time.Duration(delaySeconds*1000+0.5) * time.Millisecond
}

// endpointLabel is the metrics label for the upstream, host and path only.
func endpointLabel(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return baseURL
	}
	return u.Host + u.Path
}

func truncateBody(body []byte) string {
	if len(body) > maxErrorBodyLength {
		return string(body[:maxErrorBodyLength]) + "..."
	}
	return string(body)
}
