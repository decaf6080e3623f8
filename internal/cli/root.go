// Package cli provides the command-line interface for pvdash.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/pvdash/internal/client"
	"github.com/raphaelgruber/pvdash/internal/config"
	"github.com/raphaelgruber/pvdash/internal/socket"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose   bool
	serverURL string

	// Global config, logger and its cleanup
	cfg        config.Config
	logger     *slog.Logger
	logCleanup func() error
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "pvdash",
	Short: "Terminal dashboard for the proces-verbaal processing backend",
	Long: `Pvdash is a terminal client for the proces-verbaal document pipeline.

Upload interrogation documents, follow their processing live, retry or
cancel jobs, edit extracted report metadata, regenerate PDFs, and inspect
the backend's processing logs with filters and statistics.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		if serverURL != "" {
			cfg.ServerURL = serverURL
		}
		if verbose {
			cfg.LogLevel = slog.LevelDebug
		}

		// The dashboard draws the whole terminal; keep its stderr clean.
		quiet := cmd.Name() == "dashboard"
		logger, logCleanup = config.SetupLogger(cfg.LogFile, cfg.LogLevel, quiet)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCleanup != nil {
			if err := logCleanup(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
}

// dialSession opens a websocket session using the loaded configuration.
// One-shot commands disable the schedulers and drive the protocol
// explicitly; the dashboard keeps them running.
func dialSession(ctx context.Context, scheduled bool) (*socket.Session, error) {
	sessionID, err := client.SessionID()
	if err != nil {
		logger.Warn("could not persist a session id, using a transient one", "error", err)
	}

	sockCfg := socket.Config{
		URL:               cfg.ServerURL,
		ClientID:          sessionID,
		HeartbeatInterval: cfg.HeartbeatInterval,
		RefreshInterval:   cfg.RefreshInterval,
		Logger:            logger,
	}
	if !scheduled {
		sockCfg.HeartbeatInterval = -1
		sockCfg.RefreshInterval = -1
	}

	sess, err := socket.Dial(ctx, sockCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.ServerURL, err)
	}
	return sess, nil
}

// httpClient returns an HTTP client for the upload/download endpoints.
func httpClient() *client.Client {
	return client.New(cfg.ServerURL)
}

// commandContext returns a bounded context for one-shot commands.
func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "", "backend base URL (overrides config)")

	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(retryCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(blocksCmd)
	rootCmd.AddCommand(suggestCmd)
}

// exitWithError prints an error message and exits with code 1.
func exitWithError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
