package match

import (
	"context"
	"math"
	"testing"

	"github.com/embo-press/matchpub/internal/normalize"
	"github.com/embo-press/matchpub/internal/search"
	"github.com/embo-press/matchpub/internal/submission"
)

func TestTokenScorer(t *testing.T) {
	scorer := NewTokenScorer()

	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{
			name: "identical strings",
			a:    "A novel kinase",
			b:    "A novel kinase",
			want: 1.0,
		},
		{
			name: "identical after normalization",
			a:    "A Novel Kinase!",
			b:    "a novel <i>kinase</i>",
			want: 1.0,
		},
		{
			name: "disjoint",
			a:    "something else entirely",
			b:    "a novel kinase",
			want: 0.0,
		},
		{
			name: "empty",
			a:    "",
			b:    "a novel kinase",
			want: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scorer.Similarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Similarity(%q, %q) = %f, want %f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestTokenScorerSymmetric(t *testing.T) {
	scorer := NewTokenScorer()
	pairs := [][2]string{
		{"a novel kinase regulates mitosis", "a kinase regulates the cell"},
		{"this is my title: or what?", "this is a different title or what!"},
	}
	for _, p := range pairs {
		ab := scorer.Similarity(p[0], p[1])
		ba := scorer.Similarity(p[1], p[0])
		if math.Abs(ab-ba) > 1e-12 {
			t.Errorf("Similarity not symmetric for %q / %q: %f vs %f", p[0], p[1], ab, ba)
		}
		if ab < 0 || ab > 1 {
			t.Errorf("Similarity out of range for %q / %q: %f", p[0], p[1], ab)
		}
	}
}

func TestAuthorOverlap(t *testing.T) {
	smithJones := normalize.ExpandAlternatives([]string{"Smith", "Jones"})

	tests := []struct {
		name       string
		submitting [][]string
		candidate  [][]string
		want       float64
	}{
		{
			name:       "full overlap",
			submitting: smithJones,
			candidate:  normalize.ExpandAlternatives([]string{"Jones", "Smith"}),
			want:       1.0,
		},
		{
			name:       "half overlap",
			submitting: smithJones,
			candidate:  normalize.ExpandAlternatives([]string{"Smith", "Nobody"}),
			want:       0.5,
		},
		{
			name:       "no overlap",
			submitting: smithJones,
			candidate:  normalize.ExpandAlternatives([]string{"Nobody", "Somebody"}),
			want:       0.0,
		},
		{
			name:       "compound surname matches component",
			submitting: normalize.ExpandAlternatives([]string{"Villanueva-Meyer"}),
			candidate:  normalize.ExpandAlternatives([]string{"Meyer"}),
			want:       1.0,
		},
		{
			name:       "alternative inflation stays bounded",
			submitting: normalize.ExpandAlternatives([]string{"Villanueva-Meyer"}),
			candidate:  normalize.ExpandAlternatives([]string{"Villanueva-Meyer", "Villanueva", "Meyer"}),
			want:       1.0,
		},
		{
			name:       "empty submitting list",
			submitting: nil,
			candidate:  smithJones,
			want:       0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AuthorOverlap(tt.submitting, tt.candidate)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("AuthorOverlap = %f, want %f", got, tt.want)
			}
			if got < 0 || got > 1 {
				t.Errorf("AuthorOverlap out of [0,1]: %f", got)
			}
		})
	}
}

func TestAuthorOverlapOrderInvariant(t *testing.T) {
	forward := normalize.ExpandAlternatives([]string{"Smith", "Jones", "van der Putten"})
	reversed := normalize.ExpandAlternatives([]string{"van der Putten", "Jones", "Smith"})
	candidate := normalize.ExpandAlternatives([]string{"Jones", "Putten"})

	if a, b := AuthorOverlap(forward, candidate), AuthorOverlap(reversed, candidate); a != b {
		t.Errorf("AuthorOverlap order dependent: %f vs %f", a, b)
	}
}

// fakeClient returns canned candidate pools per query shape.
type fakeClient struct {
	byAuthor []submission.Article
	byTitle  []submission.Article
}

func (f *fakeClient) SearchByAuthor(_ context.Context, _ [][]string, _ search.Window) []submission.Article {
	return f.byAuthor
}

func (f *fakeClient) SearchByTitle(_ context.Context, _ string, _ search.Window) []submission.Article {
	return f.byTitle
}

func candidate(title string, authors ...string) submission.Article {
	return submission.Article{
		Title:        title,
		Authors:      authors,
		Alternatives: normalize.ExpandAlternatives(authors),
	}
}

func testSubmission(title string, authors ...string) submission.Submission {
	return submission.Submission{
		ManuscriptID: "MS-1",
		Title:        title,
		Authors:      authors,
		Alternatives: normalize.ExpandAlternatives(authors),
	}
}

func TestEngineAuthorFirstMatch(t *testing.T) {
	client := &fakeClient{
		byAuthor: []submission.Article{
			candidate("Something unrelated", "Smith", "Jones"),
			candidate("A novel kinase", "Smith", "Jones"),
		},
	}
	engine := NewEngine(client, NewTokenScorer(), nil)

	got := engine.Match(context.Background(), testSubmission("A novel kinase", "Smith", "Jones"), search.Window{})
	if got == nil {
		t.Fatal("expected a match, got nil")
	}
	if got.Title != "A novel kinase" {
		t.Errorf("matched %q, want %q", got.Title, "A novel kinase")
	}
	if got.Strategy != StrategyAuthorThenTitle {
		t.Errorf("strategy = %q, want %q", got.Strategy, StrategyAuthorThenTitle)
	}
	if got.TitleScore < 0.999 || got.AuthorScore < 0.999 {
		t.Errorf("scores = %f / %f, want both 1.0", got.TitleScore, got.AuthorScore)
	}
}

func TestEngineCrossValidationRejects(t *testing.T) {
	// High title similarity but almost no author overlap: the
	// candidate must be rejected, and with the title-search pool empty
	// the overall outcome is not-found.
	client := &fakeClient{
		byAuthor: []submission.Article{
			candidate("A novel kinase regulates mitosis", "Smith", "Nobody", "Somebody"),
		},
	}
	engine := NewEngine(client, NewTokenScorer(), nil)

	// One shared author out of three: overlap 1/3, below the 0.50 floor.
	sub := testSubmission("A novel kinase regulates mitosis", "Smith", "Jones", "Brown")
	if got := engine.Match(context.Background(), sub, search.Window{}); got != nil {
		t.Errorf("expected rejection by author-overlap cross-check, got match %q", got.Title)
	}
}

func TestEngineFallsBackToTitleSearch(t *testing.T) {
	client := &fakeClient{
		byAuthor: nil, // author search finds nothing
		byTitle: []submission.Article{
			candidate("A novel kinase", "Smith", "Jones"),
		},
	}
	engine := NewEngine(client, NewTokenScorer(), nil)

	got := engine.Match(context.Background(), testSubmission("A novel kinase", "Smith", "Jones"), search.Window{})
	if got == nil {
		t.Fatal("expected a match from the title-search fallback, got nil")
	}
	if got.Strategy != StrategyTitleThenAuthor {
		t.Errorf("strategy = %q, want %q", got.Strategy, StrategyTitleThenAuthor)
	}
}

func TestEngineTitleFallbackValidatesTitle(t *testing.T) {
	// Author overlap is perfect but the titles disagree: the secondary
	// title check must reject.
	client := &fakeClient{
		byTitle: []submission.Article{
			candidate("A completely different subject", "Smith", "Jones"),
		},
	}
	engine := NewEngine(client, NewTokenScorer(), nil)

	sub := testSubmission("A novel kinase", "Smith", "Jones")
	if got := engine.Match(context.Background(), sub, search.Window{}); got != nil {
		t.Errorf("expected rejection by title cross-check, got match %q", got.Title)
	}
}

func TestEngineNoCandidates(t *testing.T) {
	engine := NewEngine(&fakeClient{}, NewTokenScorer(), nil)
	if got := engine.Match(context.Background(), testSubmission("A novel kinase", "Smith"), search.Window{}); got != nil {
		t.Errorf("expected not-found with empty candidate pools, got %v", got)
	}
}

func TestEngineTieBreaksToFirst(t *testing.T) {
	first := candidate("A novel kinase", "Smith", "Jones")
	first.DOI = "10.1/first"
	second := candidate("A novel kinase", "Smith", "Jones")
	second.DOI = "10.1/second"

	engine := NewEngine(&fakeClient{byAuthor: []submission.Article{first, second}}, NewTokenScorer(), nil)
	got := engine.Match(context.Background(), testSubmission("A novel kinase", "Smith", "Jones"), search.Window{})
	if got == nil {
		t.Fatal("expected a match")
	}
	if got.DOI != "10.1/first" {
		t.Errorf("tie broke to %q, want first occurrence", got.DOI)
	}
}
