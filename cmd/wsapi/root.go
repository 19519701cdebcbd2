package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spitzerl/workshop-b3-api/internal/config"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	var jsonOutput bool
	var logLevel string

	cmd := &cobra.Command{
		Use:           "wsapi",
		Short:         "wsapi serves versioned file storage with users and resources",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			warning, err := configureLoggerForCLI(logLevel, cfg.LogLevel)
			if err != nil {
				return err
			}
			if warning != "" {
				fmt.Fprintln(os.Stderr, warning)
			}
			return nil
		},
	}

	cmd.Version = version
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newSrvCmd(cfg),
		newMigrateCmd(cfg, &jsonOutput),
		newSeedCmd(cfg, &jsonOutput),
		newConfigCmd(cfg),
		newFileCmd(cfg, &jsonOutput),
		newUserCmd(cfg, &jsonOutput),
		newResourceCmd(cfg, &jsonOutput),
		newVerifyCmd(cfg, &jsonOutput),
	)

	return cmd
}
