package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oshokin/sunrise-deploy/internal/config"
)

// initCmd writes the default settings file so operators can edit it in place.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a settings file with the default deployment parameters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := config.Save(configPath, config.Default()); err != nil {
			return err
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Settings written to %s\n", configPath)

		return nil
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(initCmd)
}
