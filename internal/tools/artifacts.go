package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/raphaelgruber/evergreen-mcp-go/internal/service"
)

// TaskArtifactsInput defines the input schema for get_task_artifacts_evergreen.
type TaskArtifactsInput struct {
	TaskID         string `json:"task_id" jsonschema:"Task id from get_patch_failed_jobs_evergreen"`
	Execution      *int   `json:"execution,omitempty" jsonschema:"Task execution number, default 0"`
	ArtifactFilter string `json:"artifact_filter,omitempty" jsonschema:"Only list artifacts whose name contains this text, case-insensitive"`
}

// NewTaskArtifactsHandler creates the get_task_artifacts_evergreen handler.
func NewTaskArtifactsHandler(deps *Dependencies) mcp.ToolHandlerFor[TaskArtifactsInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input TaskArtifactsInput) (
		*mcp.CallToolResult, any, error,
	) {
		if input.TaskID == "" {
			return ErrorResult("task_id cannot be empty", "Call get_patch_failed_jobs_evergreen to find task ids"), nil, nil
		}

		artifacts, err := deps.Services.Artifacts.List(ctx, service.ArtifactOptions{
			TaskID:    input.TaskID,
			Execution: intOr(input.Execution, 0),
			Filter:    input.ArtifactFilter,
		})
		if err != nil {
			deps.Logger.Error("list task artifacts failed", "task", input.TaskID, "error", err)
			return FailureResult("Listing task artifacts", err), nil, nil
		}

		deps.Logger.Info("task artifacts listed", "task", input.TaskID, "count", artifacts.ArtifactCount)
		return JSONResult(artifacts), nil, nil
	}
}
