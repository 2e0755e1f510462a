package main

import (
	"github.com/spf13/cobra"

	"github.com/embo-press/matchpub/internal/config"
)

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configProfilesCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the effective configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}

		if humanOutput {
			outputHuman("report:           %s\n", cfg.Report)
			outputHuman("preprint policy:  %s\n", cfg.PreprintPolicy)
			outputHuman("title threshold:  %.2f\n", cfg.TitleThreshold)
			outputHuman("author threshold: %.2f\n", cfg.AuthorThreshold)
			outputHuman("citations:        %v\n", cfg.Citations)
			outputHuman("database:         %s\n", cfg.Database)
			outputHuman("output:           %s (%s)\n", cfg.Output.Dir, cfg.Output.Format)
			return nil
		}
		return outputJSON(cfg)
	},
}

var configProfilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the built-in report profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		names := config.Profiles()
		if humanOutput {
			for _, name := range names {
				outputHuman("%s\n", name)
			}
			return nil
		}
		return outputJSON(names)
	},
}
