package service

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/raphaelgruber/evergreen-mcp-go/internal/client"
	"github.com/raphaelgruber/evergreen-mcp-go/internal/models"
)

// ProjectLister lists the projects visible to the configured user.
type ProjectLister struct {
	q      client.Querier
	logger *slog.Logger
}

// NewProjectLister creates a new project lister.
func NewProjectLister(q client.Querier, logger *slog.Logger) *ProjectLister {
	return &ProjectLister{q: q, logger: logger}
}

// List returns all projects across groups, sorted by identifier.
func (p *ProjectLister) List(ctx context.Context) ([]models.Project, error) {
	var data client.ProjectsData
	if err := p.q.Execute(ctx, client.QueryProjects, nil, &data); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	projects := make([]models.Project, 0)
	for _, group := range data.Projects {
		for _, wp := range group.Projects {
			projects = append(projects, models.Project{
				ID:          wp.ID,
				Identifier:  wp.Identifier,
				DisplayName: wp.DisplayName,
				Enabled:     wp.Enabled,
				Owner:       wp.Owner,
				Repo:        wp.Repo,
				Branch:      wp.Branch,
			})
		}
	}
	slices.SortFunc(projects, func(a, b models.Project) int {
		return cmp.Or(cmp.Compare(a.Identifier, b.Identifier), cmp.Compare(a.ID, b.ID))
	})

	p.logger.Debug("projects listed", "count", len(projects))
	return projects, nil
}
