package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Resource URIs.
const (
	ProjectsURI = "evergreen://projects"
	StatsURI    = "evergreen://stats"
)

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{URI: uri, MIMEType: "application/json", Text: string(data)},
		},
	}, nil
}

// NewProjectsResourceHandler serves the flattened project list.
func NewProjectsResourceHandler(deps *Dependencies) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		projects, err := deps.Services.Projects.List(ctx)
		if err != nil {
			deps.Logger.Error("list projects failed", "error", err)
			return nil, fmt.Errorf("list projects: %w", err)
		}
		return jsonResource(ProjectsURI, projects)
	}
}

// NewStatsResourceHandler serves query statistics collected since startup.
func NewStatsResourceHandler(deps *Dependencies) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return jsonResource(StatsURI, deps.Metrics.Snapshot())
	}
}
