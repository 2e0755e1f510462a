// Package export renders reconciled results into column-labeled
// tables. The column set, order and labels are configuration: callers
// reorder or rename columns without touching the underlying data.
package export

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/embo-press/matchpub/internal/submission"
)

// Canonical export field names.
const (
	FieldManuscript        = "manuscript_nm"
	FieldSubDate           = "sub_date"
	FieldEditor            = "editor"
	FieldRawDecision       = "raw_decision"
	FieldDecision          = "decision"
	FieldJournal           = "journal"
	FieldCitations         = "citations"
	FieldOriginalTitle     = "original_title"
	FieldRetrievedTitle    = "retrieved_title"
	FieldOriginalAuthors   = "original_authors"
	FieldRetrievedAuthors  = "retrieved_authors"
	FieldDOI               = "doi"
	FieldPMID              = "pmid"
	FieldPubDate           = "pub_date"
	FieldRetrievedAbstract = "retrieved_abstract"
	FieldStrategy          = "retrieval_strategy"
	FieldTitleScore        = "title_score"
	FieldAuthorScore       = "author_score"
	FieldIsPreprint        = "is_preprint"
	FieldPublishedDOI      = "preprint_published_doi"

	FieldAvgTimeToSecureRev = "avg_time_to_secure_rev"
	FieldMinTimeToSecureRev = "min_time_to_secure_rev"
	FieldRefereeNumber      = "referee_number"
	FieldPingResponse       = "ping_response"
)

// Column maps one canonical field to its output label.
type Column struct {
	Field string `yaml:"field"`
	Label string `yaml:"label"`
}

// DefaultColumns is the standard column layout for both the found and
// not-found tables.
func DefaultColumns() []Column {
	return []Column{
		{FieldManuscript, "Manuscript"},
		{FieldSubDate, "Submission date"},
		{FieldEditor, "Editor"},
		{FieldRawDecision, "Decision (raw)"},
		{FieldDecision, "Decision"},
		{FieldJournal, "Journal"},
		{FieldCitations, "Citations"},
		{FieldOriginalTitle, "Original title"},
		{FieldRetrievedTitle, "Retrieved title"},
		{FieldOriginalAuthors, "Original authors"},
		{FieldRetrievedAuthors, "Retrieved authors"},
		{FieldDOI, "DOI"},
		{FieldPMID, "PMID"},
		{FieldPubDate, "Publication date"},
		{FieldRetrievedAbstract, "Abstract"},
		{FieldStrategy, "Retrieval strategy"},
		{FieldTitleScore, "Title score"},
		{FieldAuthorScore, "Author score"},
	}
}

// PreprintColumns is the default layout extended with the preprint
// flag and linked-publication DOI.
func PreprintColumns() []Column {
	return append(DefaultColumns(),
		Column{FieldIsPreprint, "Preprint"},
		Column{FieldPublishedDOI, "Published as"},
	)
}

// Table is a rendered result set: one labeled header row plus one row
// per result, in the configured column order.
type Table struct {
	Header []string
	Rows   [][]string
}

// Render builds the output table for the given results. Article fields
// of unmatched submissions render as empty cells.
func Render(results []submission.Result, columns []Column) Table {
	t := Table{Header: make([]string, len(columns))}
	for i, col := range columns {
		t.Header[i] = col.Label
	}
	for _, r := range results {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = fieldValue(r, col.Field)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// SortByCitations orders results by citation count descending, results
// with an unknown count last. The sort is stable so equal counts keep
// their reconciliation order.
func SortByCitations(results []submission.Result) {
	sort.SliceStable(results, func(i, j int) bool {
		return citationRank(results[i]) > citationRank(results[j])
	})
}

func citationRank(r submission.Result) int {
	if r.Article == nil || r.Article.Citations == nil {
		return -1
	}
	return *r.Article.Citations
}

// OutputName builds the timestamped output filename for one table,
// e.g. "report-found-20210105-153045.xlsx".
func OutputName(stem, suffix string, t time.Time, ext string) string {
	return fmt.Sprintf("%s-%s-%s.%s", stem, suffix, t.Format("20060102-150405"), ext)
}

func fieldValue(r submission.Result, field string) string {
	sub := r.Submission
	switch field {
	case FieldManuscript:
		return sub.ManuscriptID
	case FieldSubDate:
		return sub.SubmissionDate
	case FieldEditor:
		return sub.Editor
	case FieldRawDecision:
		return sub.RawDecision
	case FieldDecision:
		return string(sub.Decision)
	case FieldOriginalTitle:
		return sub.Title
	case FieldOriginalAuthors:
		return strings.Join(sub.Authors, ", ")
	case FieldAvgTimeToSecureRev:
		return sub.Metrics.AvgTimeToSecureReviewer
	case FieldMinTimeToSecureRev:
		return sub.Metrics.MinTimeToSecureReviewer
	case FieldRefereeNumber:
		return sub.Metrics.RefereeCount
	case FieldPingResponse:
		return sub.Metrics.PingResponse
	}

	if r.Article == nil {
		return ""
	}
	a := r.Article
	switch field {
	case FieldJournal:
		return a.JournalName
	case FieldCitations:
		if a.Citations == nil {
			return ""
		}
		return fmt.Sprintf("%d", *a.Citations)
	case FieldRetrievedTitle:
		return a.Title
	case FieldRetrievedAuthors:
		return strings.Join(a.Authors, ", ")
	case FieldDOI:
		return a.DOI
	case FieldPMID:
		return a.PMID
	case FieldPubDate:
		return a.PubDate.ISO()
	case FieldRetrievedAbstract:
		return a.Abstract
	case FieldStrategy:
		return a.Strategy
	case FieldTitleScore:
		return fmt.Sprintf("%.3f", a.TitleScore)
	case FieldAuthorScore:
		return fmt.Sprintf("%.3f", a.AuthorScore)
	case FieldIsPreprint:
		if a.IsPreprint {
			return "yes"
		}
		return "no"
	case FieldPublishedDOI:
		return a.PreprintPublishedDOI
	}
	return ""
}
