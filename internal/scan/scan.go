// Package scan drives the reconciliation pipeline end-to-end: match
// every submission against the bibliographic record, partition into
// found and not-found sets, and run the optional citation and
// preprint-linkage enrichment stages.
package scan

import (
	"context"
	"errors"
	"log/slog"

	"github.com/embo-press/matchpub/internal/scopus"
	"github.com/embo-press/matchpub/internal/search"
	"github.com/embo-press/matchpub/internal/submission"
)

// Matcher selects at most one validated article for a submission.
type Matcher interface {
	Match(ctx context.Context, sub submission.Submission, window search.Window) *submission.Article
}

// CitationClient retrieves the citation count for an external
// identifier.
type CitationClient interface {
	CitedBy(ctx context.Context, pmid string) (int, error)
}

// PreprintLinker resolves the journal DOI a preprint was eventually
// published under ("" when not yet published).
type PreprintLinker interface {
	PublishedDOI(ctx context.Context, preprintDOI string) (string, error)
}

// Outcome is the full result of one reconciliation run.
type Outcome struct {
	Found    []submission.Result
	NotFound []submission.Result
}

// Orchestrator runs the reconciliation loop. The citation and preprint
// clients are optional; a nil client skips the corresponding
// enrichment stage.
type Orchestrator struct {
	matcher   Matcher
	citations CitationClient
	preprints PreprintLinker
	policy    search.PreprintPolicy
	logger    *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithCitations enables citation-count enrichment.
func WithCitations(c CitationClient) Option {
	return func(o *Orchestrator) {
		o.citations = c
	}
}

// WithPreprintLinker enables preprint-to-journal linkage lookups.
func WithPreprintLinker(p PreprintLinker) Option {
	return func(o *Orchestrator) {
		o.preprints = p
	}
}

// WithPreprintPolicy sets the preprint filter applied to matched
// articles before export.
func WithPreprintPolicy(p search.PreprintPolicy) Option {
	return func(o *Orchestrator) {
		o.policy = p
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// NewOrchestrator creates an orchestrator around the given matcher.
func NewOrchestrator(m Matcher, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		matcher: m,
		policy:  search.ExcludePreprints,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run processes every submission strictly in order and always
// completes: failures in the enrichment stages never discard
// already-accumulated results.
func (o *Orchestrator) Run(ctx context.Context, subs []submission.Submission, window search.Window) Outcome {
	var out Outcome
	for _, sub := range subs {
		article := o.matcher.Match(ctx, sub, window)
		if article != nil && !o.admitted(article) {
			o.logger.Info("match filtered by preprint policy",
				"manuscript", sub.ManuscriptID, "doi", article.DOI, "policy", o.policy)
			article = nil
		}
		if article == nil {
			out.NotFound = append(out.NotFound, submission.Result{Submission: sub})
			continue
		}
		out.Found = append(out.Found, submission.Result{Submission: sub, Article: article})
	}

	o.logger.Info("reconciliation complete",
		"submissions", len(subs), "found", len(out.Found), "not_found", len(out.NotFound))

	o.enrichCitations(ctx, out.Found)
	o.linkPreprints(ctx, out.Found)

	return out
}

// admitted applies the preprint-inclusion policy to a matched article.
func (o *Orchestrator) admitted(article *submission.Article) bool {
	switch o.policy {
	case search.OnlyPreprints:
		return article.IsPreprint
	case search.ExcludePreprints:
		return !article.IsPreprint
	default:
		return true
	}
}

// enrichCitations attaches citation counts to the found articles. An
// explicit quota-exhaustion signal stops further lookups for the run;
// any other per-article failure leaves the count unknown.
func (o *Orchestrator) enrichCitations(ctx context.Context, found []submission.Result) {
	if o.citations == nil {
		return
	}
	for _, r := range found {
		count, err := o.citations.CitedBy(ctx, r.Article.PMID)
		if errors.Is(err, scopus.ErrQuotaExhausted) {
			o.logger.Error("citation quota exhausted, skipping remaining lookups")
			return
		}
		if err != nil {
			o.logger.Info("no citation count", "pmid", r.Article.PMID, "error", err)
			continue
		}
		r.Article.Citations = &count
	}
}

// linkPreprints resolves, for every matched preprint, the DOI it was
// later published under. Skipped entirely when preprints are excluded
// from the run.
func (o *Orchestrator) linkPreprints(ctx context.Context, found []submission.Result) {
	if o.preprints == nil || o.policy == search.ExcludePreprints {
		return
	}
	for _, r := range found {
		if !r.Article.IsPreprint {
			continue
		}
		published, err := o.preprints.PublishedDOI(ctx, r.Article.DOI)
		if err != nil {
			o.logger.Info("preprint linkage unavailable", "doi", r.Article.DOI, "error", err)
			continue
		}
		r.Article.PreprintPublishedDOI = published
	}
}
