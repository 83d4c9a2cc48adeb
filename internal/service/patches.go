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

// Patch listing limits.
const (
	DefaultPatchLimit = 10
	MaxPatchLimit     = 50
)

// PatchLister lists a user's recent patches.
type PatchLister struct {
	q      client.Querier
	logger *slog.Logger
}

// NewPatchLister creates a new patch lister.
func NewPatchLister(q client.Querier, logger *slog.Logger) *PatchLister {
	return &PatchLister{q: q, logger: logger}
}

// ListPatchesOptions configures a patch listing.
type ListPatchesOptions struct {
	UserID string
	// Limit is clamped to [1, MaxPatchLimit].
	Limit int
	// Page is zero-based; negative values are treated as 0.
	Page int
	// ProjectID keeps only patches of this project when set.
	ProjectID string
}

// ClampPatchLimit clamps a requested patch count to [1, MaxPatchLimit].
func ClampPatchLimit(limit int) int {
	return min(clampMin(limit, 1), MaxPatchLimit)
}

// List returns the user's patches, newest first.
func (p *PatchLister) List(ctx context.Context, opts ListPatchesOptions) (*models.PatchList, error) {
	if opts.UserID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidArgument)
	}
	limit := ClampPatchLimit(opts.Limit)
	page := clampMin(opts.Page, 0)

	p.logger.Debug("listing patches", "user", opts.UserID, "limit", limit, "page", page, "project", opts.ProjectID)

	var data client.UserPatchesData
	vars := map[string]any{"userId": opts.UserID, "limit": limit, "page": page}
	if err := p.q.Execute(ctx, client.QueryUserPatches, vars, &data); err != nil {
		return nil, fmt.Errorf("list patches: %w", err)
	}
	if data.User == nil {
		return nil, client.NotFound(client.QueryUserPatches, opts.UserID)
	}

	upstream := data.User.Patches.Patches
	patches := make([]models.Patch, 0, len(upstream))
	for _, wp := range upstream {
		if opts.ProjectID != "" && wp.ProjectIdentifier != opts.ProjectID {
			continue
		}
		patches = append(patches, toPatch(wp))
	}
	sortPatches(patches)
	if len(patches) > limit {
		patches = patches[:limit]
	}

	result := &models.PatchList{
		UserID:       opts.UserID,
		ProjectID:    opts.ProjectID,
		Patches:      patches,
		TotalPatches: len(patches),
		Page:         page,
		PageSize:     limit,
		HasMore:      len(upstream) >= limit,
	}
	if result.HasMore {
		next := page + 1
		result.NextPage = &next
	}
	return result, nil
}

func toPatch(wp client.Patch) models.Patch {
	patch := models.Patch{
		PatchID:           wp.ID,
		PatchNumber:       wp.PatchNumber,
		Githash:           wp.Githash,
		Description:       wp.Description,
		Author:            wp.Author,
		AuthorDisplayName: wp.AuthorDisplayName,
		Status:            models.NormalizePatchStatus(wp.Status),
		CreateTime:        wp.CreateTime,
		ProjectIdentifier: wp.ProjectIdentifier,
	}
	if wp.VersionFull != nil && wp.VersionFull.ID != "" {
		patch.HasVersion = true
		status := wp.VersionFull.Status
		patch.VersionStatus = &status
	}
	return patch
}

// sortPatches orders by create time descending, then patch number descending.
// Patches without a create time sort last.
func sortPatches(patches []models.Patch) {
	slices.SortStableFunc(patches, func(a, b models.Patch) int {
		if c := compareTimeDesc(a.CreateTime, b.CreateTime); c != 0 {
			return c
		}
		return cmp.Compare(b.PatchNumber, a.PatchNumber)
	})
}
