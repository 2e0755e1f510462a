package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/embo-press/matchpub/internal/config"
	"github.com/embo-press/matchpub/internal/scopus"
)

func init() {
	rootCmd.AddCommand(citationsCmd)
}

var citationsCmd = &cobra.Command{
	Use:   "citations <pmid>...",
	Short: "Look up Scopus citation counts by PubMed ID",
	Long: `Citations queries the Scopus API for each given PubMed ID.
Requires ` + config.EnvScopusAPIKey + ` to be set (dotenv files are read).

Example:
  matchpub citations 32015508 32015509`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCitations,
}

// CitationResult is the lookup outcome for one identifier.
type CitationResult struct {
	PMID      string `json:"pmid"`
	Citations *int   `json:"citations"` // null when unknown
	Error     string `json:"error,omitempty"`
}

func runCitations(cmd *cobra.Command, args []string) error {
	key := config.ScopusAPIKey()
	if key == "" {
		exitWithError(ExitConfigError, "%s is not set", config.EnvScopusAPIKey)
	}
	client := scopus.NewClient(key)

	results := make([]CitationResult, 0, len(args))
	for _, pmid := range args {
		r := CitationResult{PMID: pmid}
		count, err := client.CitedBy(cmd.Context(), pmid)
		switch {
		case errors.Is(err, scopus.ErrQuotaExhausted):
			r.Error = err.Error()
			results = append(results, r)
			exitWithError(ExitError, "quota exhausted after %d lookups", len(results))
		case err != nil:
			r.Error = err.Error()
		default:
			r.Citations = &count
		}
		results = append(results, r)
	}

	if humanOutput {
		for _, r := range results {
			if r.Citations != nil {
				outputHuman("%s: %d\n", r.PMID, *r.Citations)
			} else {
				outputHuman("%s: %s\n", r.PMID, r.Error)
			}
		}
		return nil
	}
	return outputJSON(results)
}
