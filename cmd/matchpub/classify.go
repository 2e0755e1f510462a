package main

import (
	"github.com/spf13/cobra"

	"github.com/embo-press/matchpub/internal/decision"
)

func init() {
	rootCmd.AddCommand(classifyCmd)
}

var classifyCmd = &cobra.Command{
	Use:   "classify <decision>...",
	Short: "Classify free-text editorial decisions into the taxonomy",
	Long: `Classify maps each decision string onto one of the canonical
outcomes: accepted, rejected before review, rejected after review, or
unknown.

Examples:
  matchpub classify "Reject Before Review with Editorial Board Advice"
  matchpub classify "Accept" "Reject post-review & Refer"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

// Classification pairs a raw decision string with its outcome.
type Classification struct {
	Decision string `json:"decision"`
	Outcome  string `json:"outcome"`
}

func runClassify(cmd *cobra.Command, args []string) error {
	results := make([]Classification, len(args))
	for i, raw := range args {
		results[i] = Classification{
			Decision: raw,
			Outcome:  string(decision.Classify(raw)),
		}
	}

	if humanOutput {
		for _, r := range results {
			outputHuman("%s: %s\n", r.Decision, r.Outcome)
		}
		return nil
	}
	return outputJSON(results)
}
