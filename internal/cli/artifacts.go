package cli

import (
	"github.com/spf13/cobra"

	"github.com/raphaelgruber/evergreen-mcp-go/internal/service"
)

var (
	artifactsExecution int
	artifactsFilter    string
)

var artifactsCmd = &cobra.Command{
	Use:   "artifacts TASK_ID",
	Short: "List files uploaded by a task",
	Long: `List the artifacts a task execution uploaded, such as core dumps and log
archives, with their download URLs. Nothing is downloaded.

Examples:
  evg artifacts mongodb_linux_jstests_abc123
  evg artifacts mongodb_linux_jstests_abc123 --filter core`,
	Args: cobra.ExactArgs(1),
	RunE: runArtifacts,
}

func init() {
	artifactsCmd.Flags().IntVarP(&artifactsExecution, "execution", "e", 0, "task execution")
	artifactsCmd.Flags().StringVarP(&artifactsFilter, "filter", "f", "", "only artifacts whose name contains this text")
}

func runArtifacts(cmd *cobra.Command, args []string) error {
	artifacts, err := services.Artifacts.List(cmd.Context(), service.ArtifactOptions{
		TaskID:    args[0],
		Execution: artifactsExecution,
		Filter:    artifactsFilter,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), artifacts)
	}
	renderArtifacts(cmd.OutOrStdout(), artifacts)
	return nil
}
