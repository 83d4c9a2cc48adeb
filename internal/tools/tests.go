package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/raphaelgruber/evergreen-mcp-go/internal/service"
)

// TestResultsInput defines the input schema for get_task_test_results_evergreen.
type TestResultsInput struct {
	TaskID     string `json:"task_id" jsonschema:"Task id from get_patch_failed_jobs_evergreen"`
	Execution  *int   `json:"execution,omitempty" jsonschema:"Task execution number, default 0"`
	FailedOnly *bool  `json:"failed_only,omitempty" jsonschema:"Only return failed tests, default true"`
	Limit      *int   `json:"limit,omitempty" jsonschema:"Maximum test results to return, default 100"`
}

// NewTestResultsHandler creates the get_task_test_results_evergreen handler.
func NewTestResultsHandler(deps *Dependencies) mcp.ToolHandlerFor[TestResultsInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input TestResultsInput) (
		*mcp.CallToolResult, any, error,
	) {
		if input.TaskID == "" {
			return ErrorResult("task_id cannot be empty", "Call get_patch_failed_jobs_evergreen to find task ids"), nil, nil
		}

		results, err := deps.Services.Tests.Fetch(ctx, service.TestResultsOptions{
			TaskID:     input.TaskID,
			Execution:  intOr(input.Execution, 0),
			FailedOnly: boolOr(input.FailedOnly, true),
			Limit:      intOr(input.Limit, service.DefaultTestLimit),
		})
		if err != nil {
			deps.Logger.Error("fetch test results failed", "task", input.TaskID, "error", err)
			return FailureResult("Fetching test results", err), nil, nil
		}

		deps.Logger.Info("test results fetched", "task", input.TaskID, "returned", results.Summary.ReturnedTests)
		return JSONResult(results), nil, nil
	}
}
