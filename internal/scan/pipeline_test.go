package scan

import (
	"context"
	"testing"

	"github.com/embo-press/matchpub/internal/decision"
	"github.com/embo-press/matchpub/internal/match"
	"github.com/embo-press/matchpub/internal/normalize"
	"github.com/embo-press/matchpub/internal/report"
	"github.com/embo-press/matchpub/internal/search"
	"github.com/embo-press/matchpub/internal/submission"
)

// fakeSearch serves one fixed candidate pool for both query shapes.
type fakeSearch struct {
	candidates []submission.Article
}

func (s *fakeSearch) SearchByAuthor(_ context.Context, _ [][]string, _ search.Window) []submission.Article {
	return s.candidates
}

func (s *fakeSearch) SearchByTitle(_ context.Context, _ string, _ search.Window) []submission.Article {
	return s.candidates
}

func pipelineSpec() report.Spec {
	return report.Spec{
		Name:         "pipeline",
		MetadataKeys: []string{"report_name", "editors", "time_window", "article_types", "creation_date"},
		HeaderSignature: []string{
			`manu`, `.*ed`, `sub`, `.*decision`, `.*title`, `auth`,
		},
		FeatureIndex: map[string]int{
			report.FieldManuscript: 0,
			report.FieldEditor:     1,
			report.FieldSubDate:    2,
			report.FieldDecision:   3,
			report.FieldTitle:      4,
			report.FieldAuthors:    5,
		},
		DecisionsConsidered: `(accept)|(reject)|(suggest posting of reviews)`,
	}
}

// Full pipeline: parse a report grid, match its one submission against
// a simulated backend serving the exact published version.
func TestPipelineEndToEnd(t *testing.T) {
	grid := [][]string{
		{"Editor Track Report"},
		{"All editors"},
		{"decisions between 1 Jan 2020 and 31 Dec 2020"},
		{"Research Articles"},
		{"created on 5 Jan 2021"},
		{"Manuscript", "Editor", "Submission Date", "Decision Type", "Manuscript Title", "Author(s)"},
		{"MS-1", "Doe", "12 Mar 2020", "Accept", "A novel kinase", "Jane Smith, Tom Jones"},
	}

	parser, err := report.NewParser(pipelineSpec(), nil)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	meta, subs, err := parser.Parse(grid)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("submissions = %d, want 1", len(subs))
	}

	authors := []string{"Smith", "Jones"}
	backend := &fakeSearch{candidates: []submission.Article{{
		Title:        "A novel kinase",
		Authors:      authors,
		Alternatives: normalize.ExpandAlternatives(authors),
		DOI:          "10.1038/xyz",
		PMID:         "12345",
		JournalName:  "Nature",
	}}}
	engine := match.NewEngine(backend, match.NewTokenScorer(), nil)

	out := NewOrchestrator(engine).Run(context.Background(), subs, meta.Window)

	if len(out.Found) != 1 || len(out.NotFound) != 0 {
		t.Fatalf("found=%d notFound=%d, want 1/0", len(out.Found), len(out.NotFound))
	}

	r := out.Found[0]
	if r.Submission.Decision != decision.Accepted {
		t.Errorf("decision = %q, want accepted", r.Submission.Decision)
	}
	if r.Article.Strategy != match.StrategyAuthorThenTitle {
		t.Errorf("strategy = %q, want %q", r.Article.Strategy, match.StrategyAuthorThenTitle)
	}
	if r.Article.TitleScore < 0.99 || r.Article.AuthorScore != 1.0 {
		t.Errorf("scores = %v / %v", r.Article.TitleScore, r.Article.AuthorScore)
	}
	if r.Article.DOI != "10.1038/xyz" {
		t.Errorf("doi = %q", r.Article.DOI)
	}
}

// A candidate with a near-identical title but almost no author overlap
// must be rejected, not reported as a confident match.
func TestPipelineCrossValidation(t *testing.T) {
	sub := submission.Submission{
		ManuscriptID: "MS-1",
		Title:        "A novel kinase regulates the cell cycle",
		Authors:      []string{"Smith", "Jones", "Brown"},
		Alternatives: normalize.ExpandAlternatives([]string{"Smith", "Jones", "Brown"}),
	}

	stranger := []string{"Smith", "Xu", "Lee", "Patel"}
	backend := &fakeSearch{candidates: []submission.Article{{
		Title:        "A novel kinase regulates the cell cycle",
		Authors:      stranger,
		Alternatives: normalize.ExpandAlternatives(stranger),
		DOI:          "10.9999/wrong",
	}}}
	engine := match.NewEngine(backend, match.NewTokenScorer(), nil)

	out := NewOrchestrator(engine).Run(context.Background(), []submission.Submission{sub}, search.Window{})

	if len(out.Found) != 0 {
		t.Fatalf("matched %+v, want rejection by author overlap", out.Found[0].Article)
	}
	if len(out.NotFound) != 1 {
		t.Fatalf("notFound = %d, want 1", len(out.NotFound))
	}
}
