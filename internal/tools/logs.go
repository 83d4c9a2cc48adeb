package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/raphaelgruber/evergreen-mcp-go/internal/service"
)

// TaskLogsInput defines the input schema for get_task_logs_evergreen.
type TaskLogsInput struct {
	TaskID       string `json:"task_id" jsonschema:"Task id from get_patch_failed_jobs_evergreen"`
	Execution    *int   `json:"execution,omitempty" jsonschema:"Task execution number, default 0"`
	MaxLines     *int   `json:"max_lines,omitempty" jsonschema:"Maximum log lines to return, default 1000"`
	FilterErrors *bool  `json:"filter_errors,omitempty" jsonschema:"Only return error lines, default true"`
	LogType      string `json:"log_type,omitempty" jsonschema:"One of task, agent, system or all, default task"`
}

// NewTaskLogsHandler creates the get_task_logs_evergreen handler.
func NewTaskLogsHandler(deps *Dependencies) mcp.ToolHandlerFor[TaskLogsInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input TaskLogsInput) (
		*mcp.CallToolResult, any, error,
	) {
		if input.TaskID == "" {
			return ErrorResult("task_id cannot be empty", "Call get_patch_failed_jobs_evergreen to find task ids"), nil, nil
		}

		logs, err := deps.Services.Logs.Fetch(ctx, service.LogOptions{
			TaskID:       input.TaskID,
			Execution:    intOr(input.Execution, 0),
			MaxLines:     intOr(input.MaxLines, service.DefaultMaxLines),
			FilterErrors: boolOr(input.FilterErrors, true),
			LogType:      input.LogType,
		})
		if err != nil {
			deps.Logger.Error("fetch task logs failed", "task", input.TaskID, "error", err)
			return FailureResult("Fetching task logs", err), nil, nil
		}

		deps.Logger.Info("task logs fetched", "task", input.TaskID, "lines", logs.TotalLines, "truncated", logs.Truncated)
		return JSONResult(logs), nil, nil
	}
}
