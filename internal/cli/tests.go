package cli

import (
	"github.com/spf13/cobra"

	"github.com/raphaelgruber/evergreen-mcp-go/internal/service"
)

var (
	testsExecution int
	testsAll       bool
	testsLimit     int
)

var testsCmd = &cobra.Command{
	Use:   "tests TASK_ID",
	Short: "Show test results of a task",
	Long: `List the test results of one task execution. Only failed tests are
shown unless --all is given.

Examples:
  evg tests mongodb_linux_jstests_abc123
  evg tests mongodb_linux_jstests_abc123 --all --limit 500`,
	Args: cobra.ExactArgs(1),
	RunE: runTests,
}

func init() {
	testsCmd.Flags().IntVarP(&testsExecution, "execution", "e", 0, "task execution")
	testsCmd.Flags().BoolVarP(&testsAll, "all", "a", false, "include passing and skipped tests")
	testsCmd.Flags().IntVarP(&testsLimit, "limit", "l", service.DefaultTestLimit, "maximum tests to show")
}

func runTests(cmd *cobra.Command, args []string) error {
	res, err := services.Tests.Fetch(cmd.Context(), service.TestResultsOptions{
		TaskID:     args[0],
		Execution:  testsExecution,
		FailedOnly: !testsAll,
		Limit:      testsLimit,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), res)
	}
	renderTests(cmd.OutOrStdout(), res)
	return nil
}
