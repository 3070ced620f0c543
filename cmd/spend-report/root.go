package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"travelspend/internal/cli"
	"travelspend/internal/config"
	applog "travelspend/internal/log"
)

var (
	flagEnvFile string
	flagVerbose bool

	cfg    *config.Config
	logger *applog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "spend-report",
	Short:         "Travel spend report and dataset tooling",
	Long:          "Print the travel spend and onboarding report, import spreadsheets into SQLite and ask running dashboards to refresh.",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := cli.LoadEnvFile(flagEnvFile); err != nil {
			return err
		}
		level := slog.LevelWarn
		if flagVerbose {
			level = slog.LevelDebug
		}
		logger = applog.New(applog.Config{Level: level, Component: applog.ComponentCLI, Output: os.Stderr})

		var err error
		cfg, err = cli.LoadAndValidateConfig()
		if err != nil {
			return fmt.Errorf("%s: %w", cmd.Name(), err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", ".env", "Environment file to load before reading configuration")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log debug output to stderr")
}
