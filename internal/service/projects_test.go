package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/evergreen-mcp-go/internal/client"
)

func TestListProjectsFlattensGroups(t *testing.T) {
	q := newFakeQuerier().on(client.QueryProjects, func(map[string]any) (any, error) {
		return map[string]any{"projects": []map[string]any{
			{"groupDisplayName": "mongodb/mongo", "projects": []map[string]any{
				{"id": "p2", "identifier": "mongodb-mongo-master", "displayName": "Mongo", "enabled": true},
			}},
			{"groupDisplayName": "mongodb/tools", "projects": []map[string]any{
				{"id": "p1", "identifier": "mongo-tools", "displayName": "Tools", "owner": "mongodb", "repo": "mongo-tools"},
			}},
		}}, nil
	})

	projects, err := NewProjectLister(q, discardLogger()).List(context.Background())
	require.NoError(t, err)

	require.Len(t, projects, 2)
	assert.Equal(t, "mongo-tools", projects[0].Identifier)
	assert.Equal(t, "mongodb", projects[0].Owner)
	assert.Equal(t, "mongodb-mongo-master", projects[1].Identifier)
	assert.True(t, projects[1].Enabled)
}

func TestListProjectsPropagatesErrors(t *testing.T) {
	q := newFakeQuerier().on(client.QueryProjects, func(map[string]any) (any, error) {
		return nil, &client.QueryError{Kind: client.ErrTransport, Query: client.QueryProjects}
	})
	_, err := NewProjectLister(q, discardLogger()).List(context.Background())
	assert.ErrorIs(t, err, client.ErrTransport)
}
