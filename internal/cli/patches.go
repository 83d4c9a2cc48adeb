package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/evergreen-mcp-go/internal/service"
)

var (
	patchesLimit int
	patchesPage  int
	patchesUser  string
)

var patchesCmd = &cobra.Command{
	Use:   "patches",
	Short: "List your recent patches",
	Long: `List the most recent patches for the configured Evergreen user,
newest first. Use --project to keep only patches of one project.

Examples:
  evg patches
  evg patches --limit 5
  evg patches --project mongodb-mongo-master --page 1`,
	Args: cobra.NoArgs,
	RunE: runPatches,
}

func init() {
	patchesCmd.Flags().IntVarP(&patchesLimit, "limit", "l", service.DefaultPatchLimit, "number of patches (1-50)")
	patchesCmd.Flags().IntVar(&patchesPage, "page", 0, "page number, starting at 0")
	patchesCmd.Flags().StringVarP(&patchesUser, "user", "u", "", "Evergreen user (defaults to the configured user)")
}

func runPatches(cmd *cobra.Command, args []string) error {
	user := patchesUser
	if user == "" {
		user = cfg.User
	}
	if user == "" {
		return errors.New("no Evergreen user configured: set EVERGREEN_USER or pass --user")
	}

	list, err := services.Patches.List(cmd.Context(), service.ListPatchesOptions{
		UserID:    user,
		Limit:     patchesLimit,
		Page:      patchesPage,
		ProjectID: projectScope(),
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), list)
	}
	renderPatches(cmd.OutOrStdout(), list)
	return nil
}
