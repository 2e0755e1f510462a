package main

import (
	"github.com/spf13/cobra"

	"github.com/embo-press/matchpub/internal/biorxiv"
)

func init() {
	rootCmd.AddCommand(linkPreprintsCmd)
}

var linkPreprintsCmd = &cobra.Command{
	Use:   "link-preprints <doi>...",
	Short: "Resolve the journal DOI a preprint was published under",
	Long: `Link-preprints asks bioRxiv and medRxiv whether each preprint DOI
has a linked journal publication.

Example:
  matchpub link-preprints 10.1101/2020.03.02.972935`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLinkPreprints,
}

// LinkResult is the linkage outcome for one preprint DOI.
type LinkResult struct {
	PreprintDOI  string `json:"preprint_doi"`
	PublishedDOI string `json:"published_doi,omitempty"`
	Published    bool   `json:"published"`
	Error        string `json:"error,omitempty"`
}

func runLinkPreprints(cmd *cobra.Command, args []string) error {
	client := biorxiv.NewClient()

	results := make([]LinkResult, 0, len(args))
	for _, doi := range args {
		r := LinkResult{PreprintDOI: doi}
		published, err := client.PublishedDOI(cmd.Context(), doi)
		if err != nil {
			r.Error = err.Error()
		} else {
			r.PublishedDOI = published
			r.Published = published != ""
		}
		results = append(results, r)
	}

	if humanOutput {
		for _, r := range results {
			switch {
			case r.Error != "":
				outputHuman("%s: %s\n", r.PreprintDOI, r.Error)
			case r.Published:
				outputHuman("%s -> %s\n", r.PreprintDOI, r.PublishedDOI)
			default:
				outputHuman("%s: not yet published\n", r.PreprintDOI)
			}
		}
		return nil
	}
	return outputJSON(results)
}
