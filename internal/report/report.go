// Package report parses loosely-structured editorial-tracking reports
// into canonical submission records. Reports start with a metadata
// block, followed — at a position that must be discovered — by a data
// table whose header matches a configured signature.
package report

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/embo-press/matchpub/internal/decision"
	"github.com/embo-press/matchpub/internal/normalize"
	"github.com/embo-press/matchpub/internal/search"
	"github.com/embo-press/matchpub/internal/submission"
)

// DefaultScanBound is how many rows are scanned for the header
// signature before parsing gives up.
const DefaultScanBound = 100

// Spec fully describes how to read one report shape: the ordered
// metadata keys, the header signature (one case-insensitive
// prefix-anchored pattern per expected column), the mapping of
// canonical field names to column positions, and the pattern selecting
// which decisions to consider.
type Spec struct {
	Name                string         `yaml:"name"`
	MetadataKeys        []string       `yaml:"metadata_keys"`
	HeaderSignature     []string       `yaml:"header_signature"`
	FeatureIndex        map[string]int `yaml:"feature_index"`
	DecisionsConsidered string         `yaml:"decisions_considered"`
	ScanBound           int            `yaml:"scan_bound,omitempty"`
}

// Canonical feature names. The first six are mandatory in every spec.
const (
	FieldManuscript = "manuscript_nm"
	FieldEditor     = "editor"
	FieldSubDate    = "sub_date"
	FieldDecision   = "decision"
	FieldTitle      = "title"
	FieldAuthors    = "authors"
	FieldAbstract   = "abstract"

	FieldAvgTimeToSecureRev = "avg_time_to_secure_rev"
	FieldMinTimeToSecureRev = "min_time_to_secure_rev"
	FieldRefereeNumber      = "referee_number"
	FieldPingResponse       = "ping_response"
)

var mandatoryFields = []string{
	FieldManuscript, FieldEditor, FieldSubDate, FieldDecision, FieldTitle, FieldAuthors,
}

// Metadata is the ordered metadata block read from the first rows of
// the sheet, plus the date window parsed from the time_window field.
type Metadata struct {
	Keys   []string
	Values map[string]string
	Window search.Window
}

// Get returns the value for a metadata key ("" if unfilled).
func (m Metadata) Get(key string) string {
	return m.Values[key]
}

// TimeWindowKey is the one metadata key every report must carry: its
// value holds the "between <date> and <date>" statement.
const TimeWindowKey = "time_window"

// Parser parses cell grids according to a Spec.
type Parser struct {
	spec    Spec
	header  []*regexp.Regexp
	decider *regexp.Regexp
	logger  *slog.Logger
}

// NewParser compiles the spec's patterns. The spec must name the
// mandatory feature columns and carry a valid decision pattern.
func NewParser(spec Spec, logger *slog.Logger) (*Parser, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if spec.ScanBound <= 0 {
		spec.ScanBound = DefaultScanBound
	}

	for _, field := range mandatoryFields {
		if _, ok := spec.FeatureIndex[field]; !ok {
			return nil, fmt.Errorf("report spec %q: %w: %s", spec.Name, ErrSpecIncomplete, field)
		}
	}

	header := make([]*regexp.Regexp, len(spec.HeaderSignature))
	for i, pattern := range spec.HeaderSignature {
		re, err := regexp.Compile(`(?i)^(?:` + pattern + `)`)
		if err != nil {
			return nil, fmt.Errorf("report spec %q: header pattern %q: %w", spec.Name, pattern, err)
		}
		header[i] = re
	}

	decider, err := regexp.Compile(`(?i)` + spec.DecisionsConsidered)
	if err != nil {
		return nil, fmt.Errorf("report spec %q: decision pattern: %w", spec.Name, err)
	}

	return &Parser{spec: spec, header: header, decider: decider, logger: logger}, nil
}

// Parse reads the metadata block and the data table from a cell grid
// and materializes one Submission per surviving row.
func (p *Parser) Parse(grid [][]string) (Metadata, []submission.Submission, error) {
	meta, err := p.readMetadata(grid)
	if err != nil {
		return Metadata{}, nil, err
	}

	start, actualHeader, err := p.findStart(grid)
	if err != nil {
		return Metadata{}, nil, err
	}

	subs, err := p.readData(grid[start:], actualHeader)
	if err != nil {
		return Metadata{}, nil, err
	}

	return meta, subs, nil
}

// readMetadata assigns the first rows, column 0, to the configured
// metadata keys in order. A missing cell is logged and the key left
// unfilled; a missing or unparseable time window is fatal.
func (p *Parser) readMetadata(grid [][]string) (Metadata, error) {
	meta := Metadata{
		Keys:   p.spec.MetadataKeys,
		Values: make(map[string]string, len(p.spec.MetadataKeys)),
	}

	for i, key := range p.spec.MetadataKeys {
		meta.Values[key] = ""
		if i >= len(grid) || len(grid[i]) == 0 || grid[i][0] == "" {
			p.logger.Info("metadata row missing", "row", i, "key", key)
			continue
		}
		meta.Values[key] = grid[i][0]
	}

	if len(p.spec.MetadataKeys) > 0 {
		if _, configured := meta.Values[TimeWindowKey]; !configured {
			return Metadata{}, fmt.Errorf("%w: no %s metadata key configured", ErrTimeWindow, TimeWindowKey)
		}
		window, err := ParseTimeWindow(meta.Values[TimeWindowKey])
		if err != nil {
			return Metadata{}, err
		}
		meta.Window = window
	}

	return meta, nil
}

// findStart scans for the header row: cell count equal to the
// signature length and every string cell matching the corresponding
// pattern, position for position. Returns the index of the first data
// row and the header row as found.
func (p *Parser) findStart(grid [][]string) (int, []string, error) {
	from := len(p.spec.MetadataKeys)
	for i := from; i < len(grid); i++ {
		if i-from >= p.spec.ScanBound {
			break
		}
		row := trimTrailingEmpty(grid[i])
		if p.matchesHeader(row) {
			p.logger.Debug("found data table header", "row", i)
			return i + 1, row, nil
		}
	}
	return 0, nil, &HeaderNotFoundError{Signature: p.spec.HeaderSignature, ScanBound: p.spec.ScanBound}
}

func (p *Parser) matchesHeader(row []string) bool {
	if len(row) != len(p.header) {
		return false
	}
	for i, cell := range row {
		if !p.header[i].MatchString(cell) {
			return false
		}
	}
	return true
}

// readData selects the configured feature columns from every data row,
// drops verbatim repeats of the header (a known artifact of the source
// spreadsheets) and rows whose decision is not considered, and builds
// submissions.
func (p *Parser) readData(rows [][]string, actualHeader []string) ([]submission.Submission, error) {
	maxIdx := 0
	for _, idx := range p.spec.FeatureIndex {
		if idx > maxIdx {
			maxIdx = idx
		}
	}
	if maxIdx >= len(actualHeader) {
		return nil, fmt.Errorf("%w: feature column %d outside table of %d columns", ErrMissingColumn, maxIdx, len(actualHeader))
	}

	var subs []submission.Submission
	for _, raw := range rows {
		row := trimTrailingEmpty(raw)
		if isEmptyRow(row) || equalRows(row, actualHeader) {
			continue
		}
		// every cell up to the header width exists, missing ones as ""
		row = padRow(row, len(actualHeader))

		features := make(map[string]string, len(p.spec.FeatureIndex))
		for field, idx := range p.spec.FeatureIndex {
			features[field] = strings.TrimSpace(row[idx])
		}

		if !p.decider.MatchString(features[FieldDecision]) {
			continue
		}

		subs = append(subs, p.buildSubmission(features))
	}
	return subs, nil
}

func (p *Parser) buildSubmission(features map[string]string) submission.Submission {
	rawDecision := features[FieldDecision]
	authors := submission.SplitAuthorList(features[FieldAuthors])

	subDate := ""
	if raw := features[FieldSubDate]; raw != "" {
		if t, err := ParseFuzzyDate(raw); err == nil {
			subDate = t.Format("2006-01-02")
		} else {
			p.logger.Info("unparseable submission date", "manuscript", features[FieldManuscript], "value", raw)
		}
	}

	return submission.Submission{
		ManuscriptID:   features[FieldManuscript],
		Editor:         features[FieldEditor],
		RawDecision:    rawDecision,
		Decision:       decision.Classify(rawDecision),
		SubmissionDate: subDate,
		Title:          stripControl(features[FieldTitle]),
		Abstract:       features[FieldAbstract],
		Authors:        authors,
		Alternatives:   normalize.ExpandAlternatives(authors),
		Metrics: submission.WorkflowMetrics{
			AvgTimeToSecureReviewer: features[FieldAvgTimeToSecureRev],
			MinTimeToSecureReviewer: features[FieldMinTimeToSecureRev],
			RefereeCount:            features[FieldRefereeNumber],
			PingResponse:            features[FieldPingResponse],
		},
	}
}

func stripControl(s string) string {
	return normalize.Normalize(s, normalize.Options{StripControl: true, Trim: true})
}

func trimTrailingEmpty(row []string) []string {
	end := len(row)
	for end > 0 && strings.TrimSpace(row[end-1]) == "" {
		end--
	}
	return row[:end]
}

func padRow(row []string, width int) []string {
	if len(row) >= width {
		return row
	}
	padded := make([]string, width)
	copy(padded, row)
	return padded
}

func isEmptyRow(row []string) bool {
	return len(row) == 0
}

func equalRows(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
