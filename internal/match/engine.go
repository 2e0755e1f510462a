// Package match implements the dual-strategy fuzzy matching of
// submissions against search candidates. Either signal alone — title
// similarity or author overlap — produces frequent false positives, so
// a match must win on its primary signal and clear a threshold on the
// other one as well.
package match

import (
	"context"
	"log/slog"

	"github.com/embo-press/matchpub/internal/search"
	"github.com/embo-press/matchpub/internal/submission"
)

// Strategy labels recorded on a matched article.
const (
	StrategyAuthorThenTitle = "search_by_author_match_by_title"
	StrategyTitleThenAuthor = "search_by_title_match_by_author"
)

// Default validation thresholds.
const (
	DefaultTitleThreshold  = 0.85
	DefaultAuthorThreshold = 0.50
)

// Engine selects and validates one candidate article per submission.
// It is state-free across submissions.
type Engine struct {
	client search.Client
	scorer Scorer
	logger *slog.Logger

	// TitleThreshold and AuthorThreshold are the validation floors for
	// the two signals. Both apply to every match regardless of which
	// strategy produced it.
	TitleThreshold  float64
	AuthorThreshold float64
}

// NewEngine creates an Engine with the default thresholds.
func NewEngine(client search.Client, scorer Scorer, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		client:          client,
		scorer:          scorer,
		logger:          logger,
		TitleThreshold:  DefaultTitleThreshold,
		AuthorThreshold: DefaultAuthorThreshold,
	}
}

// Match runs the two-attempt strategy for one submission. It returns
// the validated best candidate, or nil when no candidate clears both
// thresholds. A nil result is the expected negative outcome.
func (e *Engine) Match(ctx context.Context, sub submission.Submission, window search.Window) *submission.Article {
	// Attempt 1: search by author, pick by title similarity.
	candidates := e.client.SearchByAuthor(ctx, sub.Alternatives, window)
	if len(candidates) > 0 {
		best, titleScore := e.maxTitleSimilarity(candidates, sub.Title)
		authorScore := AuthorOverlap(sub.Alternatives, best.Alternatives)
		if titleScore >= e.TitleThreshold && authorScore >= e.AuthorThreshold {
			return e.accept(best, StrategyAuthorThenTitle, titleScore, authorScore)
		}
		e.logger.Debug("author-first match rejected",
			"manuscript", sub.ManuscriptID,
			"candidate", best.Title,
			"title_score", titleScore,
			"author_score", authorScore)
	}

	// Attempt 2: search by title, pick by author overlap.
	candidates = e.client.SearchByTitle(ctx, sub.Title, window)
	if len(candidates) > 0 {
		best, authorScore := e.maxAuthorOverlap(candidates, sub.Alternatives)
		titleScore := e.scorer.Similarity(sub.Title, best.Title)
		if authorScore >= e.AuthorThreshold && titleScore >= e.TitleThreshold {
			return e.accept(best, StrategyTitleThenAuthor, titleScore, authorScore)
		}
		e.logger.Debug("title-first match rejected",
			"manuscript", sub.ManuscriptID,
			"candidate", best.Title,
			"title_score", titleScore,
			"author_score", authorScore)
	}

	return nil
}

// maxTitleSimilarity returns the candidate whose title scores highest
// against the submitted title. Ties break to the first occurrence.
func (e *Engine) maxTitleSimilarity(candidates []submission.Article, title string) (submission.Article, float64) {
	bestIdx, bestScore := 0, -1.0
	for i, candidate := range candidates {
		if score := e.scorer.Similarity(title, candidate.Title); score > bestScore {
			bestIdx, bestScore = i, score
		}
	}
	return candidates[bestIdx], bestScore
}

// maxAuthorOverlap returns the candidate with the highest author
// overlap against the submitting-author alternatives. Ties break to
// the first occurrence.
func (e *Engine) maxAuthorOverlap(candidates []submission.Article, alternatives [][]string) (submission.Article, float64) {
	bestIdx, bestScore := 0, -1.0
	for i, candidate := range candidates {
		if score := AuthorOverlap(alternatives, candidate.Alternatives); score > bestScore {
			bestIdx, bestScore = i, score
		}
	}
	return candidates[bestIdx], bestScore
}

func (e *Engine) accept(art submission.Article, strategy string, titleScore, authorScore float64) *submission.Article {
	art.Strategy = strategy
	art.TitleScore = titleScore
	art.AuthorScore = authorScore
	return &art
}
