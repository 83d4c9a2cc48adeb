package tools

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterAll registers all tools and resources with the MCP server.
// This is called from main after server creation but before Run().
func RegisterAll(server *mcp.Server, deps *Dependencies) {
	mcp.AddTool(server, &mcp.Tool{
		Name: "list_user_recent_patches_evergreen",
		Description: "List the configured user's recent Evergreen patches, newest first. " +
			"Use the patch_id of a failed patch with get_patch_failed_jobs_evergreen",
	}, NewListPatchesHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name: "get_patch_failed_jobs_evergreen",
		Description: "Get the failed tasks of a patch, most recently finished first, " +
			"with failure details, test counts and log links",
	}, NewFailedJobsHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_task_logs_evergreen",
		Description: "Get classified log lines of a task execution, by default error lines only",
	}, NewTaskLogsHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_task_test_results_evergreen",
		Description: "Get test results of a task execution, by default failed tests only",
	}, NewTestResultsHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name: "get_task_artifacts_evergreen",
		Description: "List the files a task execution uploaded (core dumps, log archives, reports) " +
			"with their download URLs, optionally filtered by name",
	}, NewTaskArtifactsHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name: "get_waterfall_failed_tasks_evergreen",
		Description: "Find the most recent version with failing tasks on a project's waterfall " +
			"for one or more build variants",
	}, NewWaterfallHandler(deps))

	server.AddResource(&mcp.Resource{
		URI:         ProjectsURI,
		Name:        "projects",
		Description: "Evergreen projects visible to the configured user",
		MIMEType:    "application/json",
	}, NewProjectsResourceHandler(deps))

	if deps.Metrics != nil {
		server.AddResource(&mcp.Resource{
			URI:         StatsURI,
			Name:        "stats",
			Description: "Per-query timing and error statistics since server start",
			MIMEType:    "application/json",
		}, NewStatsResourceHandler(deps))
	}
}
