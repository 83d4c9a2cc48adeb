package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/raphaelgruber/evergreen-mcp-go/internal/service"
)

// WaterfallInput defines the input schema for get_waterfall_failed_tasks_evergreen.
type WaterfallInput struct {
	ProjectIdentifier string   `json:"project_identifier" jsonschema:"Evergreen project identifier, e.g. mongodb-mongo-master"`
	Variant           string   `json:"variant,omitempty" jsonschema:"Single build variant to inspect"`
	Variants          []string `json:"variants,omitempty" jsonschema:"Build variants to inspect"`
	Statuses          []string `json:"statuses,omitempty" jsonschema:"Task statuses to look for, default failed, system-failed and task-timed-out"`
	WaterfallLimit    *int     `json:"waterfall_limit,omitempty" jsonschema:"Versions fetched per variant, default 100"`
}

// NewWaterfallHandler creates the get_waterfall_failed_tasks_evergreen handler.
func NewWaterfallHandler(deps *Dependencies) mcp.ToolHandlerFor[WaterfallInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input WaterfallInput) (
		*mcp.CallToolResult, any, error,
	) {
		project := resolveProject(input.ProjectIdentifier, deps)
		if project == "" {
			return ErrorResult("project_identifier cannot be empty", "Read the evergreen://projects resource for identifiers"), nil, nil
		}
		variants := append([]string{}, input.Variants...)
		if input.Variant != "" {
			variants = append(variants, input.Variant)
		}
		if len(variants) == 0 {
			return ErrorResult("No build variant given", "Provide variant or variants"), nil, nil
		}

		report, err := deps.Services.Waterfall.Scan(ctx, service.WaterfallOptions{
			ProjectIdentifier: project,
			Variants:          variants,
			Statuses:          input.Statuses,
			Limit:             intOr(input.WaterfallLimit, service.DefaultWaterfallLimit),
		})
		if err != nil {
			deps.Logger.Error("waterfall scan failed", "project", project, "error", err)
			return FailureResult("Scanning waterfall", err), nil, nil
		}

		return JSONResult(report), nil, nil
	}
}
