package cli

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/raphaelgruber/evergreen-mcp-go/internal/models"
	"github.com/raphaelgruber/evergreen-mcp-go/internal/service"
)

var (
	failuresMaxResults int
	failuresNoProgress bool
)

var failuresCmd = &cobra.Command{
	Use:   "failures PATCH_ID",
	Short: "Show the failed tasks of a patch",
	Long: `Resolve a patch to its CI version and list the failed tasks, most
recently finished first, with test failure counts.

A progress bar is shown while test counts are collected when stdout is a
terminal. Tasks whose counts could not be fetched are listed as warnings.

Examples:
  evg failures 65f1c0d2e3a4b5c6d7e8f901
  evg failures 65f1c0d2e3a4b5c6d7e8f901 --max-results 10
  evg failures 65f1c0d2e3a4b5c6d7e8f901 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runFailures,
}

func init() {
	failuresCmd.Flags().IntVarP(&failuresMaxResults, "max-results", "n", service.DefaultMaxResults, "maximum failed tasks to show")
	failuresCmd.Flags().BoolVar(&failuresNoProgress, "no-progress", false, "disable the progress bar")
}

func runFailures(cmd *cobra.Command, args []string) error {
	opts := service.AnalyzeOptions{
		PatchID:    args[0],
		MaxResults: failuresMaxResults,
		ProjectID:  projectFlag,
	}

	var (
		report *models.FailedJobsReport
		err    error
	)
	if showProgress() {
		report, err = RunAnalyzeProgress(cmd.Context(), services.Failures, opts)
	} else {
		report, err = services.Failures.Analyze(cmd.Context(), opts)
	}
	if err != nil {
		return err
	}
	if report == nil {
		// Interrupted from the progress UI.
		return nil
	}

	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), report)
	}
	renderReport(cmd.OutOrStdout(), report)
	return nil
}

func showProgress() bool {
	return !jsonOutput && !failuresNoProgress && term.IsTerminal(int(os.Stdout.Fd()))
}
