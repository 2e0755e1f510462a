// Package main provides the matchpub CLI entry point.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/embo-press/matchpub/internal/config"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool

	// verbose turns on debug logging
	verbose bool

	// configPath points at an optional YAML config file
	configPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "matchpub",
	Short: "Reconcile editorial-tracking reports against the published literature",
	Long: `matchpub matches manuscript submissions from an editorial-tracking
report against published articles and preprints.

For every submission it searches Europe PMC, runs a dual-strategy fuzzy
match (title similarity cross-validated against author overlap), and
classifies the editorial decision. Matched results can be enriched with
Scopus citation counts and bioRxiv/medRxiv publication linkage, and are
exported as found/not-found tables in xlsx or csv.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()
		return config.LoadEnv()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML config file")
	rootCmd.Version = Version
}

// setupLogging installs the default slog handler. Logs go to stderr so
// stdout stays clean for command output.
func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// loadConfig resolves the effective configuration: the file named by
// --config, or the defaults.
func loadConfig() (config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}
