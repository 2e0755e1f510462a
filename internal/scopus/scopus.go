// Package scopus retrieves citation counts from the Elsevier Scopus
// search API.
package scopus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"
)

const (
	// BaseURL is the Scopus search endpoint.
	BaseURL = "https://api.elsevier.com/content/search/scopus"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// RateLimit is the request rate permitted on the standard Scopus
	// API tier.
	RateLimit = 3.0

	// MaxRetries bounds the retry loop on transient server errors.
	MaxRetries = 4

	// QuotaFloor is the remaining-quota level below which every lookup
	// logs a warning.
	QuotaFloor = 100
)

// Common errors returned by the Scopus client.
var (
	// ErrQuotaExhausted indicates the weekly API quota ran out. Once
	// returned, further lookups on the same client fail immediately.
	ErrQuotaExhausted = errors.New("Scopus API quota exhausted")

	// ErrNotFound indicates no Scopus record for the given identifier.
	ErrNotFound = errors.New("no Scopus record found")

	// ErrInvalidResponse indicates an unparseable response body.
	ErrInvalidResponse = errors.New("invalid response from Scopus")

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error communicating with Scopus")
)

// APIError represents an HTTP-level error from the Scopus API.
type APIError struct {
	StatusCode int
	Query      string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Scopus API error (status %d) for query %q", e.StatusCode, e.Query)
}

var transientStatus = map[int]bool{
	500: true,
	502: true,
	503: true,
	504: true,
}

// IsTransient returns true if the error is a server-side condition that
// a retry may resolve.
func IsTransient(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return transientStatus[apiErr.StatusCode]
	}
	return errors.Is(err, ErrNetworkError)
}

type searchResponse struct {
	SearchResults struct {
		Entry []struct {
			Error        string `json:"error"`
			CitedByCount string `json:"citedby-count"`
		} `json:"entry"`
	} `json:"search-results"`
}

// Client is a rate-limited Scopus citation-count client.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	apiKey     string
	logger     *slog.Logger

	exhausted bool
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom endpoint URL (for testing).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a new Scopus client authenticating with the given
// API key.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
		apiKey:     apiKey,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CitedBy returns the citation count recorded for the article with the
// given PubMed ID. Once the API quota is exhausted the client returns
// ErrQuotaExhausted for every subsequent call without touching the
// network.
func (c *Client) CitedBy(ctx context.Context, pmid string) (int, error) {
	if c.exhausted {
		return 0, ErrQuotaExhausted
	}
	if pmid == "" {
		return 0, fmt.Errorf("%w: empty PMID", ErrNotFound)
	}

	query := fmt.Sprintf("PMID(%s)", pmid)
	count, err := backoff.Retry(ctx, func() (int, error) {
		n, err := c.lookup(ctx, query)
		if err != nil && !IsTransient(err) {
			return 0, backoff.Permanent(err)
		}
		return n, err
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(MaxRetries),
	)
	if errors.Is(err, ErrQuotaExhausted) {
		c.exhausted = true
	}
	return count, err
}

// lookup performs a single HTTP round trip.
func (c *Client) lookup(ctx context.Context, query string) (int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limiter: %w", err)
	}

	params := url.Values{
		"query": {query},
		"field": {"citedby-count"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-ELS-APIKey", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	c.checkQuota(resp, query)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return 0, fmt.Errorf("%w: %s", ErrQuotaExhausted, query)
	default:
		return 0, &APIError{StatusCode: resp.StatusCode, Query: query}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("%w: reading body: %v", ErrNetworkError, err)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	entries := parsed.SearchResults.Entry
	if len(entries) == 0 || entries[0].Error != "" {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, query)
	}

	count, err := strconv.Atoi(entries[0].CitedByCount)
	if err != nil {
		return 0, fmt.Errorf("%w: citedby-count %q: %v", ErrInvalidResponse, entries[0].CitedByCount, err)
	}
	return count, nil
}

// checkQuota inspects the rate-limit headers and warns when the
// remaining weekly quota falls below the floor.
func (c *Client) checkQuota(resp *http.Response, query string) {
	remaining := resp.Header.Get("X-RateLimit-Remaining")
	if remaining == "" {
		return
	}
	n, err := strconv.Atoi(remaining)
	if err != nil {
		return
	}
	if n < QuotaFloor {
		c.logger.Warn("Scopus API quota running low", "remaining", n, "query", query)
	}
}
