package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/evergreen-mcp-go/internal/service"
)

var (
	waterfallVariants []string
	waterfallStatuses []string
	waterfallLimit    int
)

var waterfallCmd = &cobra.Command{
	Use:   "waterfall",
	Short: "Find the latest failing mainline version",
	Long: `Scan the project waterfall for the given build variants and show the
most recent version with failed tasks.

Examples:
  evg waterfall --variant enterprise-rhel-80-64-bit
  evg waterfall -p mongodb-mongo-master --variant linux-64 --variant windows
  evg waterfall --variant linux-64 --status failed --status system-failed`,
	Args: cobra.NoArgs,
	RunE: runWaterfall,
}

func init() {
	waterfallCmd.Flags().StringSliceVar(&waterfallVariants, "variant", nil, "build variant (repeatable)")
	waterfallCmd.Flags().StringSliceVar(&waterfallStatuses, "status", nil, "task statuses to match (default failed statuses)")
	waterfallCmd.Flags().IntVarP(&waterfallLimit, "limit", "l", service.DefaultWaterfallLimit, "versions to scan per variant")
	_ = waterfallCmd.MarkFlagRequired("variant")
}

func runWaterfall(cmd *cobra.Command, args []string) error {
	project := projectScope()
	if project == "" {
		return errors.New("no project: pass --project or set EVERGREEN_PROJECT")
	}

	report, err := services.Waterfall.Scan(cmd.Context(), service.WaterfallOptions{
		ProjectIdentifier: project,
		Variants:          waterfallVariants,
		Statuses:          waterfallStatuses,
		Limit:             waterfallLimit,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), report)
	}
	renderWaterfall(cmd.OutOrStdout(), report)
	return nil
}
