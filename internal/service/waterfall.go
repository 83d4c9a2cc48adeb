package service

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/raphaelgruber/evergreen-mcp-go/internal/client"
	"github.com/raphaelgruber/evergreen-mcp-go/internal/models"
)

// DefaultWaterfallLimit is the number of versions fetched per variant.
const DefaultWaterfallLimit = 100

// DefaultWaterfallStatuses are the task statuses a waterfall scan looks for.
var DefaultWaterfallStatuses = []string{"failed", "system-failed", "task-timed-out"}

// WaterfallScanner finds the most recent failing version on a project's waterfall.
type WaterfallScanner struct {
	q           client.Querier
	logger      *slog.Logger
	concurrency int
}

// NewWaterfallScanner creates a scanner querying at most concurrency variants at once.
func NewWaterfallScanner(q client.Querier, logger *slog.Logger, concurrency int) *WaterfallScanner {
	return &WaterfallScanner{q: q, logger: logger, concurrency: clampMin(concurrency, 1)}
}

// WaterfallOptions configures a waterfall scan.
type WaterfallOptions struct {
	ProjectIdentifier string
	Variants          []string
	Statuses          []string
	Limit             int
}

type mergedVersion struct {
	version  client.WaterfallVersion
	tasks    []models.WaterfallTask
	taskIDs  map[string]bool
	variants []string
}

// Scan queries every variant and returns the single most recent version with
// failing tasks, merging the tasks seen across variants.
func (w *WaterfallScanner) Scan(ctx context.Context, opts WaterfallOptions) (*models.WaterfallReport, error) {
	if opts.ProjectIdentifier == "" {
		return nil, fmt.Errorf("%w: project_identifier is required", ErrInvalidArgument)
	}
	variants := normalizeVariants(opts.Variants)
	if len(variants) == 0 {
		return nil, fmt.Errorf("%w: at least one variant is required", ErrInvalidArgument)
	}
	statuses := opts.Statuses
	if len(statuses) == 0 {
		statuses = DefaultWaterfallStatuses
	}
	limit := opts.Limit
	if limit < 1 {
		limit = DefaultWaterfallLimit
	}

	w.logger.Info("scanning waterfall",
		"project", opts.ProjectIdentifier, "variants", variants, "limit", limit, "statuses", statuses)

	results := make([][]client.WaterfallVersion, len(variants))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for i, variant := range variants {
		g.Go(func() error {
			var data client.WaterfallData
			vars := map[string]any{
				"options": client.WaterfallOptions{
					ProjectIdentifier: opts.ProjectIdentifier,
					Limit:             limit,
				},
				"tasksOptions": client.TaskFilterOptions{
					Variant:  variant,
					Statuses: statuses,
				},
			}
			if err := w.q.Execute(gctx, client.QueryWaterfall, vars, &data); err != nil {
				return fmt.Errorf("waterfall for variant %s: %w", variant, err)
			}
			results[i] = data.Waterfall.FlattenedVersions
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := mergeVersions(variants, results)
	report := &models.WaterfallReport{
		ProjectIdentifier: opts.ProjectIdentifier,
		VariantsQueried:   variants,
		Statuses:          statuses,
		Versions:          []models.WaterfallVersion{},
	}

	recent := mostRecent(merged)
	if recent == nil {
		report.Summary = models.WaterfallSummary{
			Variants: variants,
			SuggestedNextSteps: []string{
				"Verify variant names and failure statuses",
				"Try increasing waterfall_limit if failures are older",
			},
			Note: "No failing version found",
		}
		return report, nil
	}

	slices.Sort(recent.variants)
	report.Versions = append(report.Versions, models.WaterfallVersion{
		VersionID:            recent.version.ID,
		Revision:             recent.version.Revision,
		Branch:               recent.version.Branch,
		StartTime:            recent.version.StartTime,
		FinishTime:           recent.version.FinishTime,
		FailedTaskCount:      len(recent.tasks),
		FailedTasks:          recent.tasks,
		VariantsWithFailures: recent.variants,
	})
	report.Summary = models.WaterfallSummary{
		TotalVersionsWithFailures: 1,
		TotalFailedTasks:          len(recent.tasks),
		Variants:                  variants,
		SuggestedNextSteps: []string{
			"Invoke get_task_logs_evergreen on a task_id to inspect errors",
			"Invoke get_task_test_results_evergreen on tasks suspected of test failures",
		},
	}

	w.logger.Info("waterfall scanned",
		"project", opts.ProjectIdentifier, "version", recent.version.ID, "tasks", len(recent.tasks))
	return report, nil
}

// mergeVersions folds per-variant results into one entry per version id.
// Versions without a start time or without tasks are skipped.
func mergeVersions(variants []string, results [][]client.WaterfallVersion) map[string]*mergedVersion {
	merged := make(map[string]*mergedVersion)
	for i, versions := range results {
		for _, v := range versions {
			if v.StartTime == nil || v.Tasks == nil || len(v.Tasks.Data) == 0 {
				continue
			}
			id := cmp.Or(v.ID, "unknown")
			entry, ok := merged[id]
			if !ok {
				entry = &mergedVersion{version: v, taskIDs: make(map[string]bool)}
				merged[id] = entry
			}
			for _, t := range v.Tasks.Data {
				if entry.taskIDs[t.ID] {
					continue
				}
				entry.taskIDs[t.ID] = true
				entry.tasks = append(entry.tasks, models.WaterfallTask{
					TaskID:   t.ID,
					TaskName: t.DisplayName,
					Status:   t.Status,
				})
			}
			if !slices.Contains(entry.variants, variants[i]) {
				entry.variants = append(entry.variants, variants[i])
			}
		}
	}
	return merged
}

// mostRecent picks the latest start time; equal start times fall back to the
// version id so the choice does not depend on map order.
func mostRecent(merged map[string]*mergedVersion) *mergedVersion {
	var best *mergedVersion
	for _, m := range merged {
		if best == nil {
			best = m
			continue
		}
		c := m.version.StartTime.Compare(*best.version.StartTime)
		if c > 0 || (c == 0 && m.version.ID < best.version.ID) {
			best = m
		}
	}
	return best
}

func normalizeVariants(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v != "" {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
