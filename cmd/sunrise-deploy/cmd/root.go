package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/sunrise-deploy/internal/config"
	"github.com/oshokin/sunrise-deploy/internal/logger"
	"github.com/oshokin/sunrise-deploy/internal/service/deployer"
	"github.com/oshokin/sunrise-deploy/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string

	// logLevel sets the minimum level for log output.
	logLevel string

	// rootCmd represents the base command that deploys the bot service.
	rootCmd = &cobra.Command{
		Use:   "sunrise-deploy",
		Short: "Pull the latest bot code, refresh dependencies and restart the service",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}

			options := &deployer.Options{
				ConfigPath: configPath,
			}

			return deployer.Run(ctx, options)
		},
	}
)

// Execute runs the sunrise-deploy CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "minimum log level (debug, info, warn, error)")
}
