package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/raphaelgruber/evergreen-mcp-go/internal/service"
)

// FailedJobsInput defines the input schema for get_patch_failed_jobs_evergreen.
type FailedJobsInput struct {
	PatchID    string `json:"patch_id" jsonschema:"Patch id from list_user_recent_patches_evergreen"`
	MaxResults *int   `json:"max_results,omitempty" jsonschema:"Maximum failed tasks to return, at least 1, default 50"`
	ProjectID  string `json:"project_id,omitempty" jsonschema:"Expected project of the patch; the call fails if the patch belongs elsewhere"`
}

// NewFailedJobsHandler creates the get_patch_failed_jobs_evergreen handler.
// Reports enrichment progress when the client sent a progress token.
func NewFailedJobsHandler(deps *Dependencies) mcp.ToolHandlerFor[FailedJobsInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input FailedJobsInput) (
		*mcp.CallToolResult, any, error,
	) {
		if input.PatchID == "" {
			return ErrorResult("patch_id cannot be empty", "Call list_user_recent_patches_evergreen to find a patch id"), nil, nil
		}

		report, err := deps.Services.Failures.Analyze(ctx, service.AnalyzeOptions{
			PatchID:    input.PatchID,
			MaxResults: intOr(input.MaxResults, service.DefaultMaxResults),
			ProjectID:  input.ProjectID,
			Progress:   progressNotifier(ctx, req),
		})
		if err != nil {
			deps.Logger.Error("analyze patch failed", "patch", input.PatchID, "error", err)
			return FailureResult("Analyzing patch", err), nil, nil
		}

		deps.Logger.Info("patch failures reported",
			"patch", input.PatchID,
			"failed_tasks", report.Summary.TotalFailedTasks,
			"warnings", len(report.Warnings))
		return JSONResult(report), nil, nil
	}
}

// progressNotifier forwards enrichment progress as MCP progress notifications.
func progressNotifier(ctx context.Context, req *mcp.CallToolRequest) service.ProgressFunc {
	if req == nil || req.Session == nil || req.Params == nil {
		return nil
	}
	token := req.Params.GetProgressToken()
	if token == nil {
		return nil
	}
	return func(done, total int) {
		_ = req.Session.NotifyProgress(ctx, &mcp.ProgressNotificationParams{
			ProgressToken: token,
			Progress:      float64(done),
			Total:         float64(total),
			Message:       fmt.Sprintf("enriched %d of %d failed tasks", done, total),
		})
	}
}
