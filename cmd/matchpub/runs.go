package main

import (
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/embo-press/matchpub/internal/export"
	"github.com/embo-press/matchpub/internal/storage"
	"github.com/embo-press/matchpub/internal/submission"
)

var runsExportDir string

func init() {
	runsExportCmd.Flags().StringVarP(&runsExportDir, "output", "o", ".", "Directory for the exported tables")
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsExportCmd)
	rootCmd.AddCommand(runsCmd)
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect and re-export persisted reconciliation runs",
}

// RunSummary is one persisted run in list output.
type RunSummary struct {
	ID             string `json:"id"`
	CreatedAt      string `json:"created_at"`
	ReportName     string `json:"report_name,omitempty"`
	ReportPath     string `json:"report_path,omitempty"`
	WindowStart    string `json:"window_start,omitempty"`
	WindowEnd      string `json:"window_end,omitempty"`
	PreprintPolicy string `json:"preprint_policy,omitempty"`
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List persisted runs, most recent first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db := mustOpenRunStore()
		defer db.Close()

		runs, err := db.ListRuns()
		if err != nil {
			exitWithError(ExitError, "listing runs: %v", err)
		}

		summaries := make([]RunSummary, len(runs))
		for i, r := range runs {
			summaries[i] = RunSummary{
				ID:             r.ID,
				CreatedAt:      r.CreatedAt.Format(time.RFC3339),
				ReportName:     r.ReportName,
				ReportPath:     r.ReportPath,
				WindowStart:    r.WindowStart,
				WindowEnd:      r.WindowEnd,
				PreprintPolicy: r.PreprintPolicy,
			}
		}

		if humanOutput {
			for _, s := range summaries {
				outputHuman("%s  %s  %s\n", s.ID, s.CreatedAt, s.ReportName)
			}
			return nil
		}
		return outputJSON(summaries)
	},
}

var runsExportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Re-export the result tables of a persisted run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runID := args[0]

		db := mustOpenRunStore()
		defer db.Close()

		meta, err := db.GetRun(runID)
		if err != nil {
			exitWithError(ExitError, "loading run: %v", err)
		}
		if meta == nil {
			exitWithError(ExitError, "no run %s", runID)
		}

		results, err := db.RunResults(runID)
		if err != nil {
			exitWithError(ExitError, "loading results: %v", err)
		}

		var found, notFound []submission.Result
		for _, r := range results {
			if r.Found() {
				found = append(found, r)
			} else {
				notFound = append(notFound, r)
			}
		}

		cfg, err := loadConfig()
		if err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		columns := cfg.Columns()
		now := time.Now()

		var files []string
		for _, part := range []struct {
			suffix  string
			results []submission.Result
		}{
			{"found", found},
			{"not-found", notFound},
		} {
			export.SortByCitations(part.results)
			table := export.Render(part.results, columns)
			path := filepath.Join(runsExportDir, export.OutputName(runID, part.suffix, now, "xlsx"))
			if err := export.WriteXLSX(path, part.suffix, table); err != nil {
				exitWithError(ExitError, "writing %s table: %v", part.suffix, err)
			}
			files = append(files, path)
		}

		if humanOutput {
			for _, f := range files {
				outputHuman("%s\n", f)
			}
			return nil
		}
		return outputJSON(map[string]interface{}{"run_id": runID, "output_files": files})
	},
}

// mustOpenRunStore opens the configured run database, exiting when
// persistence is not configured.
func mustOpenRunStore() *storage.DB {
	cfg, err := loadConfig()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	if cfg.Database == "" {
		exitWithError(ExitConfigError, "no database configured (set database in the config file)")
	}
	db, err := storage.OpenDB(cfg.Database)
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}
