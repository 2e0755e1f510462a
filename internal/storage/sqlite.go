// Package storage persists reconciliation runs in a SQLite database so
// past runs can be re-exported and compared without re-querying the
// bibliographic backends.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/embo-press/matchpub/internal/decision"
	"github.com/embo-press/matchpub/internal/submission"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		-- One row per reconciliation run
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			report_name TEXT,
			report_path TEXT,
			window_start TEXT,
			window_end TEXT,
			preprint_policy TEXT
		);

		-- One row per submission processed in a run
		CREATE TABLE IF NOT EXISTS submissions (
			run_id TEXT NOT NULL REFERENCES runs(id),
			manuscript_nm TEXT NOT NULL,
			editor TEXT,
			raw_decision TEXT,
			decision TEXT NOT NULL,
			sub_date TEXT,
			title TEXT,
			abstract TEXT,
			authors_json TEXT NOT NULL,
			PRIMARY KEY (run_id, manuscript_nm)
		);

		-- One row per matched article, keyed by the submission it matched
		CREATE TABLE IF NOT EXISTS articles (
			run_id TEXT NOT NULL REFERENCES runs(id),
			manuscript_nm TEXT NOT NULL,
			title TEXT,
			abstract TEXT,
			authors_json TEXT NOT NULL,
			doi TEXT,
			pmid TEXT,
			pub_type TEXT,
			is_preprint INTEGER NOT NULL,
			pub_year INTEGER,
			pub_month INTEGER,
			pub_day INTEGER,
			journal_name TEXT,
			journal_abbrev TEXT,
			citations INTEGER,
			strategy TEXT,
			title_score REAL,
			author_score REAL,
			preprint_published_doi TEXT,
			PRIMARY KEY (run_id, manuscript_nm)
		);

		CREATE INDEX IF NOT EXISTS idx_articles_doi ON articles(doi) WHERE doi IS NOT NULL AND doi != '';
	`

	_, err := db.Exec(schema)
	return err
}

// RunMeta describes one persisted reconciliation run.
type RunMeta struct {
	ID             string
	CreatedAt      time.Time
	ReportName     string
	ReportPath     string
	WindowStart    string
	WindowEnd      string
	PreprintPolicy string
}

// SaveRun persists a full run atomically and returns its generated run
// ID.
func (d *DB) SaveRun(meta RunMeta, results []submission.Result) (string, error) {
	runID := uuid.NewString()
	createdAt := meta.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	tx, err := d.db.Begin()
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (id, created_at, report_name, report_path, window_start, window_end, preprint_policy)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, runID, createdAt.Format(time.RFC3339),
		nullableStringValue(meta.ReportName), nullableStringValue(meta.ReportPath),
		nullableStringValue(meta.WindowStart), nullableStringValue(meta.WindowEnd),
		nullableStringValue(meta.PreprintPolicy))
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	subStmt, err := tx.Prepare(`
		INSERT INTO submissions (run_id, manuscript_nm, editor, raw_decision, decision, sub_date, title, abstract, authors_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("preparing submissions insert: %w", err)
	}
	defer subStmt.Close()

	artStmt, err := tx.Prepare(`
		INSERT INTO articles (
			run_id, manuscript_nm, title, abstract, authors_json,
			doi, pmid, pub_type, is_preprint,
			pub_year, pub_month, pub_day,
			journal_name, journal_abbrev,
			citations, strategy, title_score, author_score, preprint_published_doi
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("preparing articles insert: %w", err)
	}
	defer artStmt.Close()

	for _, r := range results {
		sub := r.Submission
		authorsJSON, err := json.Marshal(sub.Authors)
		if err != nil {
			return "", fmt.Errorf("marshaling authors for %s: %w", sub.ManuscriptID, err)
		}

		_, err = subStmt.Exec(runID, sub.ManuscriptID,
			nullableStringValue(sub.Editor), nullableStringValue(sub.RawDecision),
			string(sub.Decision), nullableStringValue(sub.SubmissionDate),
			nullableStringValue(sub.Title), nullableStringValue(sub.Abstract),
			string(authorsJSON))
		if err != nil {
			return "", fmt.Errorf("inserting submission %s: %w", sub.ManuscriptID, err)
		}

		if r.Article == nil {
			continue
		}
		a := r.Article
		artAuthorsJSON, err := json.Marshal(a.Authors)
		if err != nil {
			return "", fmt.Errorf("marshaling article authors for %s: %w", sub.ManuscriptID, err)
		}

		_, err = artStmt.Exec(runID, sub.ManuscriptID,
			nullableStringValue(a.Title), nullableStringValue(a.Abstract), string(artAuthorsJSON),
			nullableStringValue(a.DOI), nullableStringValue(a.PMID),
			nullableStringValue(a.PubType), boolToInt(a.IsPreprint),
			nullableInt(a.PubDate.Year), nullableInt(a.PubDate.Month), nullableInt(a.PubDate.Day),
			nullableStringValue(a.JournalName), nullableStringValue(a.JournalAbbrev),
			nullableIntPtr(a.Citations), nullableStringValue(a.Strategy),
			a.TitleScore, a.AuthorScore, nullableStringValue(a.PreprintPublishedDOI))
		if err != nil {
			return "", fmt.Errorf("inserting article for %s: %w", sub.ManuscriptID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// GetRun retrieves the metadata of one run.
func (d *DB) GetRun(runID string) (*RunMeta, error) {
	row := d.db.QueryRow(`
		SELECT id, created_at, report_name, report_path, window_start, window_end, preprint_policy
		FROM runs WHERE id = ?
	`, runID)
	return scanRun(row)
}

// ListRuns returns all runs, most recent first.
func (d *DB) ListRuns() ([]RunMeta, error) {
	rows, err := d.db.Query(`
		SELECT id, created_at, report_name, report_path, window_start, window_end, preprint_policy
		FROM runs ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []RunMeta
	for rows.Next() {
		meta, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		if meta != nil {
			runs = append(runs, *meta)
		}
	}
	return runs, rows.Err()
}

// RunResults reloads every result of a run, in manuscript order.
func (d *DB) RunResults(runID string) ([]submission.Result, error) {
	rows, err := d.db.Query(`
		SELECT s.manuscript_nm, s.editor, s.raw_decision, s.decision, s.sub_date, s.title, s.abstract, s.authors_json,
			a.title, a.abstract, a.authors_json, a.doi, a.pmid, a.pub_type, a.is_preprint,
			a.pub_year, a.pub_month, a.pub_day, a.journal_name, a.journal_abbrev,
			a.citations, a.strategy, a.title_score, a.author_score, a.preprint_published_doi
		FROM submissions s
		LEFT JOIN articles a ON a.run_id = s.run_id AND a.manuscript_nm = s.manuscript_nm
		WHERE s.run_id = ?
		ORDER BY s.rowid
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying run results: %w", err)
	}
	defer rows.Close()

	var results []submission.Result
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// CountRuns returns the total number of persisted runs.
func (d *DB) CountRuns() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count)
	return count, err
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(s scanner) (*RunMeta, error) {
	var meta RunMeta
	var createdAt string
	var name, path, start, end, policy sql.NullString

	err := s.Scan(&meta.ID, &createdAt, &name, &path, &start, &end, &policy)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	meta.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
	}
	meta.ReportName = name.String
	meta.ReportPath = path.String
	meta.WindowStart = start.String
	meta.WindowEnd = end.String
	meta.PreprintPolicy = policy.String
	return &meta, nil
}

func scanResult(s scanner) (submission.Result, error) {
	var r submission.Result
	var subEditor, subRawDecision, subDate, subTitle, subAbstract sql.NullString
	var subDecision, subAuthorsJSON string

	var artTitle, artAbstract, artAuthorsJSON sql.NullString
	var artDOI, artPMID, artPubType, artJournal, artAbbrev, artStrategy, artPublishedDOI sql.NullString
	var artPreprint, artYear, artMonth, artDay, artCitations sql.NullInt64
	var artTitleScore, artAuthorScore sql.NullFloat64

	err := s.Scan(
		&r.Submission.ManuscriptID, &subEditor, &subRawDecision, &subDecision,
		&subDate, &subTitle, &subAbstract, &subAuthorsJSON,
		&artTitle, &artAbstract, &artAuthorsJSON, &artDOI, &artPMID, &artPubType, &artPreprint,
		&artYear, &artMonth, &artDay, &artJournal, &artAbbrev,
		&artCitations, &artStrategy, &artTitleScore, &artAuthorScore, &artPublishedDOI,
	)
	if err != nil {
		return submission.Result{}, err
	}

	r.Submission.Editor = subEditor.String
	r.Submission.RawDecision = subRawDecision.String
	r.Submission.Decision = decision.Outcome(subDecision)
	r.Submission.SubmissionDate = subDate.String
	r.Submission.Title = subTitle.String
	r.Submission.Abstract = subAbstract.String
	if err := json.Unmarshal([]byte(subAuthorsJSON), &r.Submission.Authors); err != nil {
		return submission.Result{}, fmt.Errorf("parsing authors JSON for %s: %w", r.Submission.ManuscriptID, err)
	}

	if !artAuthorsJSON.Valid {
		return r, nil // no matched article for this submission
	}

	a := &submission.Article{
		Title:    artTitle.String,
		Abstract: artAbstract.String,
		DOI:      artDOI.String,
		PMID:     artPMID.String,
		PubType:  artPubType.String,
		PubDate: submission.PublicationDate{
			Year:  int(artYear.Int64),
			Month: int(artMonth.Int64),
			Day:   int(artDay.Int64),
		},
		JournalName:          artJournal.String,
		JournalAbbrev:        artAbbrev.String,
		Strategy:             artStrategy.String,
		TitleScore:           artTitleScore.Float64,
		AuthorScore:          artAuthorScore.Float64,
		PreprintPublishedDOI: artPublishedDOI.String,
		IsPreprint:           artPreprint.Int64 != 0,
	}
	if err := json.Unmarshal([]byte(artAuthorsJSON.String), &a.Authors); err != nil {
		return submission.Result{}, fmt.Errorf("parsing article authors JSON for %s: %w", r.Submission.ManuscriptID, err)
	}
	if artCitations.Valid {
		n := int(artCitations.Int64)
		a.Citations = &n
	}
	r.Article = a
	return r, nil
}

// nullableStringValue converts a string to sql.NullString, treating empty as NULL.
func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullableInt(n int) sql.NullInt64 {
	if n == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(n), Valid: true}
}

func nullableIntPtr(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
