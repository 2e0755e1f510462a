// Package search defines the abstraction over external bibliographic
// search backends and the query shapes shared between them.
package search

import (
	"context"
	"time"

	"github.com/embo-press/matchpub/internal/submission"
)

// PreprintPolicy controls how preprints participate in search and in
// the final result set.
type PreprintPolicy string

const (
	// ExcludePreprints drops preprints from search results.
	ExcludePreprints PreprintPolicy = "no_preprint"
	// OnlyPreprints keeps nothing but preprints.
	OnlyPreprints PreprintPolicy = "only_preprint"
	// WithPreprints includes preprints alongside published papers.
	WithPreprints PreprintPolicy = "with_preprint"
)

// Valid reports whether p is one of the known policies.
func (p PreprintPolicy) Valid() bool {
	switch p {
	case ExcludePreprints, OnlyPreprints, WithPreprints:
		return true
	}
	return false
}

// Window is the publication-date window applied to every query,
// derived from the report's time-range metadata.
type Window struct {
	Start time.Time
	End   time.Time
}

// Backends filter on publication year; unset bounds widen to a range
// that matches everything.
const (
	minYear = 1970
	maxYear = 3000
)

// StartYear returns the first publication year of the window.
func (w Window) StartYear() int {
	if w.Start.IsZero() {
		return minYear
	}
	return w.Start.Year()
}

// EndYear returns the last publication year of the window.
func (w Window) EndYear() int {
	if w.End.IsZero() {
		return maxYear
	}
	return w.End.Year()
}

// Client is a bibliographic search backend. Implementations build
// backend-specific boolean queries and return ranked candidate
// articles. Query failures that survive the retry policy are handled
// inside the implementation and reported as zero candidates: a failed
// search must never abort a reconciliation run.
type Client interface {
	// SearchByAuthor ANDs together one OR-group per distinct author
	// (OR over that author's spelling alternatives), bounded by the
	// publication-date window.
	SearchByAuthor(ctx context.Context, alternatives [][]string, window Window) []submission.Article

	// SearchByTitle matches a normalized title bounded by the
	// publication-date window.
	SearchByTitle(ctx context.Context, title string, window Window) []submission.Article
}
