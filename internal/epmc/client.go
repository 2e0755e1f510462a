// Package epmc implements the Europe PMC search backend.
package epmc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"

	"github.com/embo-press/matchpub/internal/search"
	"github.com/embo-press/matchpub/internal/submission"
)

const (
	// BaseURL is the Europe PMC REST search endpoint.
	BaseURL = "https://www.ebi.ac.uk/europepmc/webservices/rest/searchPOST"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// RateLimit is the polite request rate against the EBI servers.
	RateLimit = 5.0

	// DefaultPageSize bounds the candidate pool per query. Matching
	// only ever inspects the top-ranked hits.
	DefaultPageSize = 5

	// MaxRetries bounds the retry loop on transient server errors.
	MaxRetries = 4
)

// Client is a rate-limited Europe PMC search client implementing
// search.Client.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	pageSize   int
	policy     search.PreprintPolicy
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

// WithPageSize sets the number of candidates requested per query.
func WithPageSize(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithPreprintPolicy sets the preprint inclusion policy applied to
// every query.
func WithPreprintPolicy(p search.PreprintPolicy) ClientOption {
	return func(c *Client) {
		c.policy = p
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a new Europe PMC client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
		pageSize:   DefaultPageSize,
		policy:     search.ExcludePreprints,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchByAuthor implements search.Client.
func (c *Client) SearchByAuthor(ctx context.Context, alternatives [][]string, window search.Window) []submission.Article {
	query := BuildAuthorQuery(alternatives, window, c.policy)
	if query == "" {
		return nil
	}
	return c.search(ctx, query)
}

// SearchByTitle implements search.Client.
func (c *Client) SearchByTitle(ctx context.Context, title string, window search.Window) []submission.Article {
	query := BuildTitleQuery(title, window, c.policy)
	if query == "" {
		return nil
	}
	return c.search(ctx, query)
}

// search runs one query with the bounded retry policy. Failures that
// survive the retries are logged and reported as zero candidates so
// that a single bad query never aborts a reconciliation run.
func (c *Client) search(ctx context.Context, query string) []submission.Article {
	articles, err := backoff.Retry(ctx, func() ([]submission.Article, error) {
		arts, err := c.doSearch(ctx, query)
		if err != nil && !IsTransient(err) {
			return nil, backoff.Permanent(err)
		}
		return arts, err
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(MaxRetries),
	)
	if err != nil {
		c.logger.Error("Europe PMC query failed", "query", query, "error", err)
		return nil
	}

	c.logger.Debug("Europe PMC query", "query", query, "results", len(articles))
	return articles
}

// doSearch performs a single HTTP round trip.
func (c *Client) doSearch(ctx context.Context, query string) ([]submission.Article, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	form := url.Values{
		"query":      {query},
		"resultType": {"core"},
		"format":     {"json"},
		"pageSize":   {strconv.Itoa(c.pageSize)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest {
		return nil, fmt.Errorf("%w: %s", ErrBadRequest, query)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Query: query}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrNetworkError, err)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	articles := make([]submission.Article, 0, len(parsed.ResultList.Result))
	for _, r := range parsed.ResultList.Result {
		articles = append(articles, r.toArticle())
	}
	return articles, nil
}
