package cli

import (
	"github.com/spf13/cobra"

	"github.com/raphaelgruber/evergreen-mcp-go/internal/service"
)

var (
	logsExecution int
	logsMaxLines  int
	logsErrors    bool
	logsType      string
)

var logsCmd = &cobra.Command{
	Use:   "logs TASK_ID",
	Short: "Show classified log lines of a task",
	Long: `Fetch the logs of one task execution and classify every line by
severity. Use --errors to keep only error lines.

Log types: task (default), agent, system, all.

Examples:
  evg logs mongodb_linux_compile_abc123 --errors
  evg logs mongodb_linux_compile_abc123 --type all --max-lines 200
  evg logs mongodb_linux_compile_abc123 --execution 1`,
	Args: cobra.ExactArgs(1),
	RunE: runLogs,
}

func init() {
	logsCmd.Flags().IntVarP(&logsExecution, "execution", "e", 0, "task execution")
	logsCmd.Flags().IntVarP(&logsMaxLines, "max-lines", "n", service.DefaultMaxLines, "maximum lines to show")
	logsCmd.Flags().BoolVar(&logsErrors, "errors", false, "only show error lines")
	logsCmd.Flags().StringVarP(&logsType, "type", "t", service.LogTypeTask, "log type (task, agent, system, all)")
}

func runLogs(cmd *cobra.Command, args []string) error {
	logs, err := services.Logs.Fetch(cmd.Context(), service.LogOptions{
		TaskID:       args[0],
		Execution:    logsExecution,
		MaxLines:     logsMaxLines,
		FilterErrors: logsErrors,
		LogType:      logsType,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), logs)
	}
	renderLogs(cmd.OutOrStdout(), logs)
	return nil
}
