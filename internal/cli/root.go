// Package cli provides the command-line interface for evg.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/evergreen-mcp-go/internal/client"
	"github.com/raphaelgruber/evergreen-mcp-go/internal/config"
	"github.com/raphaelgruber/evergreen-mcp-go/internal/service"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose     bool
	jsonOutput  bool
	projectFlag string

	// Global config and services
	cfg      config.Config
	services *service.Services

	// newServices builds the services for a command run. Replaced in tests.
	newServices = defaultServices
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "evg",
	Short: "Diagnose Evergreen CI failures",
	Long: `evg walks from your recent patches to failed tasks, failing tests and
error log lines, the same way the evergreen-mcp server does for agents.

Credentials are read from EVERGREEN_USER / EVERGREEN_API_KEY (or
EVERGREEN_TOKEN) and fall back to ~/.evergreen.yml.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip client setup for version, help and completion commands
		switch cmd.Name() {
		case "version", "help", "completion", "__complete":
			return nil
		}
		if cmd.HasParent() && cmd.Parent().Name() == "completion" {
			return nil
		}

		cfg = config.Load()

		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		var err error
		services, err = newServices(cfg, logger)
		if err != nil {
			return fmt.Errorf("create evergreen client: %w", err)
		}
		return nil
	},
}

func defaultServices(cfg config.Config, logger *slog.Logger) (*service.Services, error) {
	evg, err := client.New(client.Config{
		Endpoint:    cfg.Endpoint,
		User:        cfg.User,
		APIKey:      cfg.APIKey,
		BearerToken: cfg.BearerToken,
		Timeout:     cfg.QueryTimeout,
		UserAgent:   "evg/" + Version,
	}, client.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return service.New(evg, service.Options{Concurrency: cfg.MaxConcurrency, Logger: logger}), nil
}

// projectScope returns the --project flag or the project detected for the workspace.
func projectScope() string {
	if projectFlag != "" {
		return projectFlag
	}
	return cfg.ProjectHint()
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
	rootCmd.PersistentFlags().StringVarP(&projectFlag, "project", "p", "", "project identifier (defaults to the workspace project)")

	// Add subcommands
	rootCmd.AddCommand(patchesCmd)
	rootCmd.AddCommand(failuresCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(testsCmd)
	rootCmd.AddCommand(artifactsCmd)
	rootCmd.AddCommand(waterfallCmd)
	rootCmd.AddCommand(projectsCmd)
}
