package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/sheetlink/internal/core/domain"
	"github.com/custodia-labs/sheetlink/internal/core/ports/driven"
	"github.com/custodia-labs/sheetlink/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.TableSource = (*Client)(nil)

const (
	// MaxRetries is the maximum number of retries for rate-limited and server errors.
	MaxRetries = 3

	// RetryDelay is the initial delay between retries. It doubles per attempt.
	RetryDelay = 500 * time.Millisecond

	// MaxBodySize bounds the response body read into memory.
	MaxBodySize = 32 << 20

	// HeaderRequestID carries the per-request correlation id.
	HeaderRequestID = "X-Request-ID"

	// HeaderRetryAfter is the retry-after header (seconds).
	HeaderRetryAfter = "Retry-After"
)

// APIError represents a non-success response from the table service.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
	RequestID  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("table service: API error %d: %s (URL: %s, request %s)",
		e.StatusCode, e.Message, e.URL, e.RequestID)
}

// Unwrap maps the status code onto a domain sentinel.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrAuthInvalid
	case http.StatusTooManyRequests:
		return domain.ErrRateLimited
	default:
		return nil
	}
}

// Config configures the client.
type Config struct {
	BaseURL           string
	Token             string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// ConfigFromSettings converts API settings into a client config.
func ConfigFromSettings(s domain.APISettings) Config {
	return Config{
		BaseURL:           s.BaseURL,
		Token:             s.Token,
		Timeout:           s.Timeout,
		RequestsPerSecond: s.RequestsPerSecond,
	}
}

// Client fetches table definitions over HTTP.
type Client struct {
	baseURL    string
	http       *http.Client
	limiter    *rate.Limiter
	retryDelay time.Duration
}

// NewClient creates a client. A token is required.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, domain.ErrAuthRequired
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: base url %q", domain.ErrInvalidInput, cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = domain.DefaultTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = domain.DefaultRequestsPerSecond
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: cfg.Token},
	)
	tc := oauth2.NewClient(context.Background(), ts)
	tc.Timeout = cfg.Timeout

	return &Client{
		baseURL:    base.String(),
		http:       tc,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		retryDelay: RetryDelay,
	}, nil
}

// ListTables fetches the table listing.
func (c *Client) ListTables(ctx context.Context) ([]domain.TableSummary, error) {
	body, err := c.get(ctx, "/tables")
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return decodeSummaries(body)
}

// GetTable fetches one table with its cells.
func (c *Client) GetTable(ctx context.Context, id string) (*domain.TableDefinition, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	body, err := c.get(ctx, "/tables/"+url.PathEscape(id))
	if err != nil {
		return nil, fmt.Errorf("get table %s: %w", id, err)
	}
	return decodeTable(body)
}

// get performs a GET with throttling and bounded retries.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	delay := c.retryDelay
	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		body, wait, err := c.do(ctx, path)
		if err == nil {
			return body, nil
		}
		if !retryable(err) || attempt >= MaxRetries {
			return nil, err
		}

		if wait <= 0 {
			wait = delay
			delay *= 2
		}
		logger.Debug("Retrying %s in %s (attempt %d): %v", path, wait, attempt+1, err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

// do performs one request. wait is the server-requested delay, if any.
func (c *Client) do(ctx context.Context, path string) (body []byte, wait time.Duration, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.New().String()
	req.Header.Set(HeaderRequestID, requestID)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return nil, 0, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, 0, nil
	}

	if s := resp.Header.Get(HeaderRetryAfter); s != "" {
		if seconds, convErr := strconv.Atoi(s); convErr == nil && seconds > 0 {
			wait = time.Duration(seconds) * time.Second
		}
	}
	return nil, wait, &APIError{
		StatusCode: resp.StatusCode,
		Message:    errorMessage(resp.StatusCode, body),
		URL:        req.URL.String(),
		RequestID:  requestID,
	}
}

// retryable reports whether err is a rate limit or server error.
func retryable(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
}

func errorMessage(status int, body []byte) string {
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return http.StatusText(status)
	}
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
