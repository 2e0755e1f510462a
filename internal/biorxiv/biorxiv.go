// Package biorxiv queries the bioRxiv/medRxiv details API for the
// publication status of preprints.
package biorxiv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	// BaseURL is the bioRxiv details API root.
	BaseURL = "https://api.biorxiv.org/details"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// RateLimit is the polite request rate against the bioRxiv API.
	RateLimit = 5.0
)

// servers are the preprint servers queried, in order, until one knows
// the DOI.
var servers = []string{"biorxiv", "medrxiv"}

// Common errors returned by the client.
var (
	// ErrNotFound indicates neither server has a record for the DOI.
	ErrNotFound = errors.New("preprint not found on bioRxiv or medRxiv")

	// ErrInvalidResponse indicates an unparseable response body.
	ErrInvalidResponse = errors.New("invalid response from bioRxiv")

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error communicating with bioRxiv")
)

type detailsResponse struct {
	Collection []struct {
		Published string `json:"published"`
	} `json:"collection"`
}

// Client queries preprint publication status.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	logger     *slog.Logger
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

// NewClient creates a new bioRxiv client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PublishedDOI resolves the journal DOI a preprint was eventually
// published under. It returns "" with a nil error when the preprint is
// known but not yet published, and ErrNotFound when no server has a
// record of the DOI.
func (c *Client) PublishedDOI(ctx context.Context, preprintDOI string) (string, error) {
	if preprintDOI == "" {
		return "", fmt.Errorf("%w: empty DOI", ErrNotFound)
	}

	for _, server := range servers {
		published, err := c.lookup(ctx, server, preprintDOI)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return "", err
		}
		return published, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, preprintDOI)
}

func (c *Client) lookup(ctx context.Context, server, doi string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	u := fmt.Sprintf("%s/%s/%s", c.baseURL, server, doi)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s status %d for %s", ErrInvalidResponse, server, resp.StatusCode, doi)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading body: %v", ErrNetworkError, err)
	}

	var parsed detailsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if len(parsed.Collection) == 0 {
		return "", fmt.Errorf("%w: %s on %s", ErrNotFound, doi, server)
	}

	// "NA" means the preprint exists but no journal publication is
	// linked yet.
	published := parsed.Collection[0].Published
	if published == "NA" || published == "" {
		return "", nil
	}
	return published, nil
}
