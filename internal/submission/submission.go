// Package submission defines the core domain types of the
// reconciliation pipeline: manuscript submissions, candidate articles
// retrieved from a bibliographic index, and reconciled results.
package submission

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/embo-press/matchpub/internal/decision"
	"github.com/embo-press/matchpub/internal/normalize"
)

// Submission is the canonical record for one manuscript extracted from
// an editorial-tracking report. It is constructed once during report
// parsing and immutable afterwards.
type Submission struct {
	ManuscriptID   string           `json:"manuscript_nm"`
	Editor         string           `json:"editor"`
	RawDecision    string           `json:"raw_decision"`
	Decision       decision.Outcome `json:"decision"`
	SubmissionDate string           `json:"sub_date"` // ISO calendar date, no time component
	Title          string           `json:"title"`
	Abstract       string           `json:"abstract,omitempty"`

	// Authors holds the ordered, deduplicated author last names;
	// Alternatives the expanded spelling variants for each of them.
	Authors      []string   `json:"authors"`
	Alternatives [][]string `json:"-"`

	// Optional editorial-workflow metrics passed through unchanged.
	Metrics WorkflowMetrics `json:"metrics,omitempty"`
}

// WorkflowMetrics are pass-through figures from the query-tool report
// shape. They take no part in matching.
type WorkflowMetrics struct {
	AvgTimeToSecureReviewer string `json:"avg_time_to_secure_rev,omitempty"`
	MinTimeToSecureReviewer string `json:"min_time_to_secure_rev,omitempty"`
	RefereeCount            string `json:"referee_number,omitempty"`
	PingResponse            string `json:"ping_response,omitempty"`
}

// corrSuffixRe strips the "-corr" corresponding-author marker some
// tracking systems append to names.
var corrSuffixRe = regexp.MustCompile(`-corr$`)

// SplitAuthorList turns a raw comma-separated author string into the
// ordered list of unique last names. Duplicate entries (a known export
// artifact) and empty fragments are dropped, internal whitespace is
// collapsed, and the "-corr" suffix removed before last-name
// extraction.
func SplitAuthorList(content string) []string {
	seen := make(map[string]bool)
	var lastNames []string
	for _, fullName := range strings.Split(content, ",") {
		fullName = corrSuffixRe.ReplaceAllString(strings.TrimSpace(fullName), "")
		fullName = strings.Join(strings.Fields(fullName), " ")
		if fullName == "" {
			continue
		}
		lastName := normalize.LastName(fullName)
		if lastName == "" || seen[lastName] {
			continue
		}
		seen[lastName] = true
		lastNames = append(lastNames, lastName)
	}
	return lastNames
}

// PublicationDate is a calendar date with optional month and day.
type PublicationDate struct {
	Year  int `json:"year"`
	Month int `json:"month,omitempty"` // 1-12, 0 if unknown
	Day   int `json:"day,omitempty"`   // 1-31, 0 if unknown
}

// ISO renders the date as YYYY-MM-DD, omitting unknown components.
func (d PublicationDate) ISO() string {
	if d.Year == 0 {
		return ""
	}
	s := fmt.Sprintf("%04d", d.Year)
	if d.Month > 0 {
		s += fmt.Sprintf("-%02d", d.Month)
		if d.Day > 0 {
			s += fmt.Sprintf("-%02d", d.Day)
		}
	}
	return s
}

// Article is a published work or preprint retrieved from a
// bibliographic search backend. The match scores and citation fields
// are assigned after a successful match.
type Article struct {
	Title    string `json:"title"`
	Abstract string `json:"abstract,omitempty"`

	Authors      []string   `json:"authors"`
	Alternatives [][]string `json:"-"`

	DOI        string `json:"doi"`
	PMID       string `json:"pmid"`
	PubType    string `json:"pub_type"`
	IsPreprint bool   `json:"is_preprint"`

	PubDate       PublicationDate `json:"pub_date"`
	JournalName   string          `json:"journal_name"`
	JournalAbbrev string          `json:"journal_abbr"`

	// Assigned post-match.
	Citations            *int    `json:"citations,omitempty"` // nil = unknown
	Strategy             string  `json:"strategy,omitempty"`
	TitleScore           float64 `json:"title_score,omitempty"`
	AuthorScore          float64 `json:"author_score,omitempty"`
	PreprintPublishedDOI string  `json:"preprint_published_doi,omitempty"`
}

// Result pairs one submission with at most one validated article.
// A nil Article is the expected negative outcome, not an error.
type Result struct {
	Submission Submission `json:"submission"`
	Article    *Article   `json:"article,omitempty"`
}

// Found reports whether the submission was matched to an article.
func (r Result) Found() bool {
	return r.Article != nil
}
