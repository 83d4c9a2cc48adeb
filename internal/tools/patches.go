package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/raphaelgruber/evergreen-mcp-go/internal/service"
)

// ListPatchesInput defines the input schema for list_user_recent_patches_evergreen.
type ListPatchesInput struct {
	Limit     *int   `json:"limit,omitempty" jsonschema:"Number of patches to return, 1-50, default 10"`
	Page      *int   `json:"page,omitempty" jsonschema:"Zero-based page number, default 0"`
	ProjectID string `json:"project_id,omitempty" jsonschema:"Only return patches of this project. Defaults to the project detected from the workspace"`
}

// NewListPatchesHandler creates the list_user_recent_patches_evergreen handler.
func NewListPatchesHandler(deps *Dependencies) mcp.ToolHandlerFor[ListPatchesInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListPatchesInput) (
		*mcp.CallToolResult, any, error,
	) {
		if deps.UserID == "" {
			return ErrorResult("No Evergreen user configured", "Set EVERGREEN_USER or user in ~/.evergreen.yml"), nil, nil
		}

		list, err := deps.Services.Patches.List(ctx, service.ListPatchesOptions{
			UserID:    deps.UserID,
			Limit:     intOr(input.Limit, service.DefaultPatchLimit),
			Page:      intOr(input.Page, 0),
			ProjectID: resolveProject(input.ProjectID, deps),
		})
		if err != nil {
			deps.Logger.Error("list patches failed", "user", deps.UserID, "error", err)
			return FailureResult("Listing patches", err), nil, nil
		}

		deps.Logger.Info("patches listed", "user", deps.UserID, "count", list.TotalPatches)
		return JSONResult(list), nil, nil
	}
}
