package report

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/embo-press/matchpub/internal/decision"
)

func testSpec() Spec {
	return Spec{
		Name: "editor-track",
		MetadataKeys: []string{
			"report_name", "editors", "time_window", "article_types", "creation_date",
		},
		HeaderSignature: []string{
			`manu`, `manu`, `.*ed`, `.*editor|colleague`, `reviewer|referee`,
			`sub`, `.*decision`, `.*decision`, `.*status`, `.*title`,
			`auth`, `.*decision`,
		},
		FeatureIndex: map[string]int{
			FieldManuscript: 0,
			FieldEditor:     2,
			FieldSubDate:    5,
			FieldDecision:   7,
			FieldTitle:      9,
			FieldAuthors:    10,
		},
		DecisionsConsidered: `(accept)|(reject)|(suggest posting of reviews)`,
	}
}

func header() []string {
	return []string{
		"Manuscript", "Manuscript Type", "Editor", "Monitoring Editor", "Referee",
		"Submission Date", "Final Decision Date", "Final Decision Type", "Current Status",
		"Manuscript Title", "Author(s)", "Decision Type",
	}
}

func dataRow(manuscript, editor, subDate, decisionType, title, authors string) []string {
	return []string{
		manuscript, "Article", editor, "ME", "R1",
		subDate, "", decisionType, "final",
		title, authors, decisionType,
	}
}

func testGrid() [][]string {
	return [][]string{
		{"Editor Track Report"},
		{"All editors"},
		{"For papers with a final decision between 1 Jan 2020 and 31 Dec 2020"},
		{"Research Articles"},
		{"created on 5 Jan 2021"},
		header(),
		dataRow("MS-1", "Doe", "12 Mar 2020", "Accept", "A novel kinase", "Jane Smith, Tom Jones"),
		header(), // verbatim repeat, a known artifact
		dataRow("MS-2", "Roe", "1 Apr 2020", "Reject Before Review", "Some other work", "John van der Putten"),
		dataRow("MS-3", "Roe", "2 Apr 2020", "Withdrawn", "Ignored entirely", "Alice Brown"),
	}
}

func TestParse(t *testing.T) {
	p, err := NewParser(testSpec(), nil)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}

	meta, subs, err := p.Parse(testGrid())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if got := meta.Get("report_name"); got != "Editor Track Report" {
		t.Errorf("report_name = %q", got)
	}
	wantStart := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC)
	if !meta.Window.Start.Equal(wantStart) || !meta.Window.End.Equal(wantEnd) {
		t.Errorf("window = %v .. %v, want %v .. %v", meta.Window.Start, meta.Window.End, wantStart, wantEnd)
	}

	// MS-3 ("Withdrawn") is filtered out, the repeated header deleted.
	if len(subs) != 2 {
		t.Fatalf("got %d submissions, want 2", len(subs))
	}

	first := subs[0]
	if first.ManuscriptID != "MS-1" || first.Editor != "Doe" {
		t.Errorf("first submission = %+v", first)
	}
	if first.Decision != decision.Accepted {
		t.Errorf("decision = %q, want accepted", first.Decision)
	}
	if first.SubmissionDate != "2020-03-12" {
		t.Errorf("sub date = %q, want 2020-03-12", first.SubmissionDate)
	}
	if !reflect.DeepEqual(first.Authors, []string{"Smith", "Jones"}) {
		t.Errorf("authors = %v", first.Authors)
	}
	if len(first.Alternatives) != 2 || first.Alternatives[0][0] != "smith" {
		t.Errorf("alternatives = %v", first.Alternatives)
	}

	second := subs[1]
	if second.Decision != decision.RejectedBeforeReview {
		t.Errorf("second decision = %q", second.Decision)
	}
	if !reflect.DeepEqual(second.Authors, []string{"van der Putten"}) {
		t.Errorf("second authors = %v", second.Authors)
	}
}

func TestParseHeaderNotFound(t *testing.T) {
	p, err := NewParser(testSpec(), nil)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}

	grid := [][]string{
		{"Report"},
		{"editors"},
		{"between 1 Jan 2020 and 31 Dec 2020"},
		{"types"},
		{"created"},
		{"not", "a", "header"},
	}

	_, _, err = p.Parse(grid)
	var headerErr *HeaderNotFoundError
	if !errors.As(err, &headerErr) {
		t.Fatalf("got %v, want HeaderNotFoundError", err)
	}
	if len(headerErr.Signature) != 12 {
		t.Errorf("error does not carry the expected signature: %+v", headerErr)
	}
}

func TestParseScanBound(t *testing.T) {
	spec := testSpec()
	spec.ScanBound = 3
	p, err := NewParser(spec, nil)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}

	grid := [][]string{
		{"Report"}, {"editors"},
		{"between 1 Jan 2020 and 31 Dec 2020"},
		{"types"}, {"created"},
		{"filler"}, {"filler"}, {"filler"},
		header(), // beyond the scan bound
	}

	if _, _, err := p.Parse(grid); err == nil {
		t.Fatal("expected header-not-found beyond scan bound")
	}
}

func TestParseBadTimeWindow(t *testing.T) {
	p, err := NewParser(testSpec(), nil)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}

	tests := []string{
		"no window statement here",
		"between gibberish and more gibberish",
		"between 1 Jan 2020 and nonsense",
	}
	for _, windowText := range tests {
		grid := testGrid()
		grid[2] = []string{windowText}
		if _, _, err := p.Parse(grid); !errors.Is(err, ErrTimeWindow) {
			t.Errorf("time window %q: got %v, want ErrTimeWindow", windowText, err)
		}
	}
}

func TestParseMissingMandatoryColumn(t *testing.T) {
	spec := testSpec()
	spec.HeaderSignature = []string{`manu`, `.*ed`, `.*decision`}
	spec.FeatureIndex = map[string]int{
		FieldManuscript: 0,
		FieldEditor:     1,
		FieldSubDate:    2,
		FieldDecision:   2,
		FieldTitle:      5, // outside the 3-column table
		FieldAuthors:    2,
	}
	p, err := NewParser(spec, nil)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}

	grid := [][]string{
		{"Report"}, {"editors"},
		{"between 1 Jan 2020 and 31 Dec 2020"},
		{"types"}, {"created"},
		{"Manuscript", "Editor", "Decision"},
		{"MS-1", "Doe", "Accept"},
	}

	if _, _, err := p.Parse(grid); !errors.Is(err, ErrMissingColumn) {
		t.Errorf("got %v, want ErrMissingColumn", err)
	}
}

func TestNewParserRejectsIncompleteSpec(t *testing.T) {
	spec := testSpec()
	delete(spec.FeatureIndex, FieldAuthors)
	if _, err := NewParser(spec, nil); !errors.Is(err, ErrSpecIncomplete) {
		t.Errorf("got %v, want ErrSpecIncomplete", err)
	}
}

func TestParseFuzzyDate(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1.12.2019", "2019-12-01"},
		{"1 Dec 2019", "2019-12-01"},
		{"December 1st, 2019", "2019-12-01"},
		{"a final decision between was made 2 Jan 2021", "2021-01-02"},
		{"31 Dec 20  00:00:00", "2020-12-31"},
		{"2020-06-15", "2020-06-15"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFuzzyDate(tt.input)
			if err != nil {
				t.Fatalf("ParseFuzzyDate(%q): %v", tt.input, err)
			}
			if formatted := got.Format("2006-01-02"); formatted != tt.want {
				t.Errorf("ParseFuzzyDate(%q) = %s, want %s", tt.input, formatted, tt.want)
			}
		})
	}

	if _, err := ParseFuzzyDate("not a date at all"); err == nil {
		t.Error("expected error for unparseable fragment")
	}
}

func TestParseTimeWindow(t *testing.T) {
	window, err := ParseTimeWindow("For Papers with a final decision between 1 Jan 20  00:00:00 and 31 Dec 20  00:00:00")
	if err != nil {
		t.Fatalf("ParseTimeWindow: %v", err)
	}
	if window.StartYear() != 2020 || window.EndYear() != 2020 {
		t.Errorf("window years = %d .. %d, want 2020 .. 2020", window.StartYear(), window.EndYear())
	}
}
