package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/embo-press/matchpub/internal/biorxiv"
	"github.com/embo-press/matchpub/internal/config"
	"github.com/embo-press/matchpub/internal/epmc"
	"github.com/embo-press/matchpub/internal/export"
	"github.com/embo-press/matchpub/internal/match"
	"github.com/embo-press/matchpub/internal/report"
	"github.com/embo-press/matchpub/internal/scan"
	"github.com/embo-press/matchpub/internal/scopus"
	"github.com/embo-press/matchpub/internal/search"
	"github.com/embo-press/matchpub/internal/storage"
	"github.com/embo-press/matchpub/internal/submission"
)

var (
	scanPreprints string
	scanCitations bool
	scanOutputDir string
	scanFormat    string
	scanReport    string
	scanNoSave    bool
)

func init() {
	scanCmd.Flags().StringVar(&scanPreprints, "preprints", "", "Preprint policy: no_preprint, only_preprint, or with_preprint")
	scanCmd.Flags().BoolVar(&scanCitations, "citations", false, "Enrich matched articles with Scopus citation counts")
	scanCmd.Flags().StringVarP(&scanOutputDir, "output", "o", "", "Directory for the result tables")
	scanCmd.Flags().StringVar(&scanFormat, "format", "", "Output format: xlsx or csv")
	scanCmd.Flags().StringVar(&scanReport, "report", "", "Report profile name or path to a custom report spec")
	scanCmd.Flags().BoolVar(&scanNoSave, "no-save", false, "Skip persisting the run to the database")
	rootCmd.AddCommand(scanCmd)
}

var scanCmd = &cobra.Command{
	Use:   "scan <report.xlsx>",
	Short: "Reconcile a tracking report against the published literature",
	Long: `Scan parses an editorial-tracking report, matches every submission
against Europe PMC, and writes two timestamped result tables (found and
not-found) sorted by citation count.

Examples:
  matchpub scan report.xlsx
  matchpub scan report.xlsx --preprints with_preprint --citations
  matchpub scan report.xlsx --report ejp-query-tool -o results/ --format csv`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

// ScanResponse summarizes one reconciliation run.
type ScanResponse struct {
	Report        string   `json:"report"`
	Submissions   int      `json:"submissions"`
	Found         int      `json:"found"`
	NotFound      int      `json:"not_found"`
	RunID         string   `json:"run_id,omitempty"`
	OutputFiles   []string `json:"output_files"`
	WindowStart   string   `json:"window_start,omitempty"`
	WindowEnd     string   `json:"window_end,omitempty"`
	PreprintsMode string   `json:"preprint_policy"`
}

func runScan(cmd *cobra.Command, args []string) error {
	reportPath := args[0]

	cfg, err := loadConfig()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	applyScanFlags(&cfg)

	policy := search.PreprintPolicy(cfg.PreprintPolicy)
	if !policy.Valid() {
		exitWithError(ExitConfigError, "invalid preprint policy %q", cfg.PreprintPolicy)
	}

	spec, err := config.ReportSpec(cfg.Report)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	parser, err := report.NewParser(spec, slog.Default())
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	meta, subs, err := parser.ParseFile(reportPath)
	if err != nil {
		exitWithError(ExitDataError, "parsing %s: %v", reportPath, err)
	}
	slog.Info("report parsed", "report", reportPath, "submissions", len(subs))

	searchClient := epmc.NewClient(epmc.WithPreprintPolicy(policy))
	engine := match.NewEngine(searchClient, match.NewTokenScorer(), slog.Default())
	engine.TitleThreshold = cfg.TitleThreshold
	engine.AuthorThreshold = cfg.AuthorThreshold

	opts := []scan.Option{scan.WithPreprintPolicy(policy)}
	if cfg.Citations || scanCitations {
		key := config.ScopusAPIKey()
		if key == "" {
			exitWithError(ExitConfigError, "citation enrichment requires %s", config.EnvScopusAPIKey)
		}
		opts = append(opts, scan.WithCitations(scopus.NewClient(key)))
	}
	if policy != search.ExcludePreprints {
		opts = append(opts, scan.WithPreprintLinker(biorxiv.NewClient()))
	}

	outcome := scan.NewOrchestrator(engine, opts...).Run(cmd.Context(), subs, meta.Window)

	files, err := writeTables(cfg, reportPath, outcome)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	resp := ScanResponse{
		Report:        reportPath,
		Submissions:   len(subs),
		Found:         len(outcome.Found),
		NotFound:      len(outcome.NotFound),
		OutputFiles:   files,
		PreprintsMode: string(policy),
	}
	if !meta.Window.Start.IsZero() {
		resp.WindowStart = meta.Window.Start.Format("2006-01-02")
		resp.WindowEnd = meta.Window.End.Format("2006-01-02")
	}

	if cfg.Database != "" && !scanNoSave {
		runID, err := saveRun(cfg, reportPath, meta, policy, outcome)
		if err != nil {
			exitWithError(ExitError, "persisting run: %v", err)
		}
		resp.RunID = runID
	}

	if humanOutput {
		outputHuman("%d submissions: %d found, %d not found\n", resp.Submissions, resp.Found, resp.NotFound)
		for _, f := range resp.OutputFiles {
			outputHuman("  %s\n", f)
		}
		return nil
	}
	return outputJSON(resp)
}

// applyScanFlags lets command-line flags override the config file.
func applyScanFlags(cfg *config.Config) {
	if scanPreprints != "" {
		cfg.PreprintPolicy = scanPreprints
	}
	if scanCitations {
		cfg.Citations = true
	}
	if scanOutputDir != "" {
		cfg.Output.Dir = scanOutputDir
	}
	if scanFormat != "" {
		cfg.Output.Format = scanFormat
	}
	if scanReport != "" {
		cfg.Report = scanReport
	}
}

// writeTables renders and writes the found and not-found tables, sorted
// by citation count descending, and returns the written paths.
func writeTables(cfg config.Config, reportPath string, outcome scan.Outcome) ([]string, error) {
	columns := cfg.Columns()
	stem := strings.TrimSuffix(filepath.Base(reportPath), filepath.Ext(reportPath))
	now := time.Now()

	format := cfg.Output.Format
	if format == "" {
		format = "xlsx"
	}

	var files []string
	for _, part := range []struct {
		suffix  string
		results []submission.Result
	}{
		{"found", outcome.Found},
		{"not-found", outcome.NotFound},
	} {
		export.SortByCitations(part.results)
		table := export.Render(part.results, columns)
		path := filepath.Join(cfg.Output.Dir, export.OutputName(stem, part.suffix, now, format))

		var err error
		switch format {
		case "csv":
			err = export.WriteCSV(path, table)
		default:
			err = export.WriteXLSX(path, part.suffix, table)
		}
		if err != nil {
			return nil, fmt.Errorf("writing %s table: %w", part.suffix, err)
		}
		files = append(files, path)
	}
	return files, nil
}

// saveRun persists the outcome to the configured SQLite database.
func saveRun(cfg config.Config, reportPath string, meta report.Metadata, policy search.PreprintPolicy, outcome scan.Outcome) (string, error) {
	db, err := storage.OpenDB(cfg.Database)
	if err != nil {
		return "", err
	}
	defer db.Close()

	runMeta := storage.RunMeta{
		ReportName:     meta.Get("report_name"),
		ReportPath:     reportPath,
		PreprintPolicy: string(policy),
	}
	if !meta.Window.Start.IsZero() {
		runMeta.WindowStart = meta.Window.Start.Format("2006-01-02")
		runMeta.WindowEnd = meta.Window.End.Format("2006-01-02")
	}

	results := append(append([]submission.Result{}, outcome.Found...), outcome.NotFound...)
	return db.SaveRun(runMeta, results)
}
