package epmc

import (
	"errors"
	"fmt"
)

// Common errors returned by the Europe PMC client.
var (
	// ErrBadRequest indicates the query itself was rejected.
	ErrBadRequest = errors.New("Europe PMC rejected the query")

	// ErrInvalidResponse indicates an unparseable response body.
	ErrInvalidResponse = errors.New("invalid response from Europe PMC")

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error communicating with Europe PMC")
)

// APIError represents an HTTP-level error from the Europe PMC REST API.
type APIError struct {
	StatusCode int
	Query      string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Europe PMC API error (status %d) for query %q", e.StatusCode, e.Query)
}

// transientStatus lists the HTTP status codes worth retrying.
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
