package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/raphaelgruber/evergreen-mcp-go/internal/client"
	"github.com/raphaelgruber/evergreen-mcp-go/internal/models"
)

// ArtifactLister lists the files uploaded by a task.
type ArtifactLister struct {
	q      client.Querier
	logger *slog.Logger
}

// NewArtifactLister creates a new artifact lister.
func NewArtifactLister(q client.Querier, logger *slog.Logger) *ArtifactLister {
	return &ArtifactLister{q: q, logger: logger}
}

// ArtifactOptions configures an artifact listing.
type ArtifactOptions struct {
	TaskID    string
	Execution int
	// Filter keeps artifacts whose name contains it, case-insensitively.
	Filter string
}

// List returns a task's artifacts in upload order. Nothing is downloaded.
func (a *ArtifactLister) List(ctx context.Context, opts ArtifactOptions) (*models.TaskArtifacts, error) {
	if opts.TaskID == "" {
		return nil, fmt.Errorf("%w: task id is required", ErrInvalidArgument)
	}
	if opts.Execution < 0 {
		return nil, fmt.Errorf("%w: execution must not be negative", ErrInvalidArgument)
	}

	var data client.TaskFilesData
	vars := map[string]any{"taskId": opts.TaskID, "execution": opts.Execution}
	if err := a.q.Execute(ctx, client.QueryTaskFiles, vars, &data); err != nil {
		return nil, fmt.Errorf("get task files: %w", err)
	}
	if data.Task == nil {
		return nil, client.NotFound(client.QueryTaskFiles, opts.TaskID)
	}
	t := data.Task

	filter := strings.ToLower(strings.TrimSpace(opts.Filter))
	var all []models.Artifact
	matched := make([]models.Artifact, 0)
	for _, group := range t.Files.GroupedFiles {
		for _, f := range group.Files {
			art := models.Artifact{Name: f.Name, URL: f.Link, Group: group.TaskName}
			all = append(all, art)
			if filter == "" || strings.Contains(strings.ToLower(f.Name), filter) {
				matched = append(matched, art)
			}
		}
	}

	result := &models.TaskArtifacts{
		TaskID:         opts.TaskID,
		TaskName:       t.DisplayName,
		BuildVariant:   t.BuildVariant,
		Execution:      opts.Execution,
		Filter:         strings.TrimSpace(opts.Filter),
		Artifacts:      matched,
		ArtifactCount:  len(matched),
		TotalArtifacts: len(all),
	}
	if len(matched) == 0 && filter != "" {
		for _, art := range all {
			result.Available = append(result.Available, art.Name)
		}
	}

	a.logger.Debug("task artifacts listed",
		"task", opts.TaskID,
		"execution", opts.Execution,
		"filter", filter,
		"matched", len(matched),
		"total", len(all))
	return result, nil
}
