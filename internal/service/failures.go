package service

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/raphaelgruber/evergreen-mcp-go/internal/client"
	"github.com/raphaelgruber/evergreen-mcp-go/internal/models"
)

// DefaultMaxResults is the failed task cap used when callers do not set one.
const DefaultMaxResults = 50

// Version task paging.
const (
	versionTasksPageSize = 100
	versionTasksMaxPages = 20
)

// OpTestCounts names the enrichment step in degrade warnings.
const OpTestCounts = "test_counts"

// ProgressFunc receives enrichment progress. Calls are serialized.
type ProgressFunc func(done, total int)

// FailureCorrelator builds failed jobs reports for patches.
type FailureCorrelator struct {
	q           client.Querier
	logger      *slog.Logger
	concurrency int
}

// NewFailureCorrelator creates a correlator running at most concurrency
// enrichment queries at once.
func NewFailureCorrelator(q client.Querier, logger *slog.Logger, concurrency int) *FailureCorrelator {
	return &FailureCorrelator{q: q, logger: logger, concurrency: clampMin(concurrency, 1)}
}

// AnalyzeOptions configures a patch analysis.
type AnalyzeOptions struct {
	PatchID string
	// MaxResults caps the returned failed tasks and must be at least 1.
	MaxResults int
	// ProjectID, when set, must match the patch's project.
	ProjectID string
	Progress  ProgressFunc
}

// Analyze resolves a patch to its version and returns the failed tasks,
// most recently finished first, enriched with test counts.
//
// Failures resolving the patch or listing its tasks are returned as errors.
// Failed enrichments degrade the affected task and are reported in
// the report's warnings.
func (c *FailureCorrelator) Analyze(ctx context.Context, opts AnalyzeOptions) (*models.FailedJobsReport, error) {
	if opts.PatchID == "" {
		return nil, fmt.Errorf("%w: patch id is required", ErrInvalidArgument)
	}
	if opts.MaxResults < 1 {
		return nil, fmt.Errorf("%w: max_results must be at least 1, got %d", ErrInvalidArgument, opts.MaxResults)
	}

	var pv client.PatchVersionData
	if err := c.q.Execute(ctx, client.QueryPatchVersion, map[string]any{"patchId": opts.PatchID}, &pv); err != nil {
		return nil, fmt.Errorf("get patch: %w", err)
	}
	if pv.Patch == nil {
		return nil, client.NotFound(client.QueryPatchVersion, opts.PatchID)
	}
	patch := pv.Patch

	if opts.ProjectID != "" && patch.ProjectIdentifier != "" && patch.ProjectIdentifier != opts.ProjectID {
		return nil, fmt.Errorf("%w: patch %s belongs to project %q, not %q",
			ErrInvalidArgument, opts.PatchID, patch.ProjectIdentifier, opts.ProjectID)
	}

	report := &models.FailedJobsReport{
		PatchInfo: models.PatchInfo{
			PatchID:           patch.ID,
			PatchNumber:       patch.PatchNumber,
			Githash:           patch.Githash,
			Description:       patch.Description,
			Author:            patch.Author,
			AuthorDisplayName: patch.AuthorDisplayName,
			Status:            models.NormalizePatchStatus(patch.Status),
			CreateTime:        patch.CreateTime,
			ProjectIdentifier: patch.ProjectIdentifier,
		},
		FailedTasks: []models.FailedTask{},
		Summary:     models.FailureSummary{FailedBuildVariants: []string{}},
		ProjectID:   cmp.Or(opts.ProjectID, patch.ProjectIdentifier),
	}

	if patch.VersionFull == nil || patch.VersionFull.ID == "" {
		c.logger.Info("patch has no version", "patch", opts.PatchID)
		return report, nil
	}
	v := patch.VersionFull
	report.VersionInfo = &models.VersionInfo{
		VersionID:  v.ID,
		Revision:   v.Revision,
		Author:     v.Author,
		CreateTime: v.CreateTime,
		Status:     v.Status,
	}

	tasks, err := c.failedTasks(ctx, v.ID)
	if err != nil {
		return nil, err
	}
	sortFailedTasks(tasks)

	report.Summary.TotalFailedTasks = len(tasks)
	report.Summary.FailedBuildVariants = distinctVariants(tasks)
	if len(tasks) > opts.MaxResults {
		tasks = tasks[:opts.MaxResults]
	}

	report.FailedTasks, report.Warnings = c.enrich(ctx, tasks, opts.Progress)
	report.Summary.ReturnedTasks = len(report.FailedTasks)
	report.Summary.HasTimeouts = slices.ContainsFunc(report.FailedTasks, isTimeout)

	c.logger.Info("patch analyzed",
		"patch", opts.PatchID,
		"version", v.ID,
		"failed_tasks", report.Summary.TotalFailedTasks,
		"returned", report.Summary.ReturnedTasks,
		"warnings", len(report.Warnings))

	return report, nil
}

// failedTasks pages through the version's tasks and keeps failing ones.
// When a task appears more than once, its highest execution wins.
func (c *FailureCorrelator) failedTasks(ctx context.Context, versionID string) ([]models.FailedTask, error) {
	latest := make(map[string]client.Task)
	var order []string
	seen := 0

	for page := 0; page < versionTasksMaxPages; page++ {
		var data client.VersionTasksData
		vars := map[string]any{
			"versionId": versionID,
			"statuses":  models.FailedTaskStatuses,
			"limit":     versionTasksPageSize,
			"page":      page,
		}
		if err := c.q.Execute(ctx, client.QueryVersionTasks, vars, &data); err != nil {
			return nil, fmt.Errorf("list version tasks: %w", err)
		}
		if data.Version == nil {
			return nil, client.NotFound(client.QueryVersionTasks, versionID)
		}

		batch := data.Version.Tasks.Data
		for _, t := range batch {
			prev, ok := latest[t.ID]
			if !ok {
				order = append(order, t.ID)
			}
			if !ok || t.Execution >= prev.Execution {
				latest[t.ID] = t
			}
		}
		seen += len(batch)
		if len(batch) < versionTasksPageSize || seen >= data.Version.Tasks.Count {
			break
		}
	}

	tasks := make([]models.FailedTask, 0, len(order))
	for _, id := range order {
		t := latest[id]
		if !models.IsFailedTaskStatus(t.Status) {
			continue
		}
		tasks = append(tasks, toFailedTask(t))
	}
	return tasks, nil
}

func toFailedTask(t client.Task) models.FailedTask {
	ft := models.FailedTask{
		TaskID:       t.ID,
		TaskName:     t.DisplayName,
		BuildVariant: t.BuildVariant,
		Status:       t.Status,
		Execution:    max(t.Execution, 0),
		DurationMs:   t.TimeTaken,
		FinishTime:   t.FinishTime,
	}
	if t.Details != nil {
		ft.FailureDetails = &models.FailureDetails{
			Description:    t.Details.Description,
			TimedOut:       t.Details.TimedOut,
			TimeoutType:    t.Details.TimeoutType,
			FailingCommand: t.Details.FailingCommand,
		}
	}
	if t.Logs != nil {
		ft.Logs = &models.TaskLogLinks{
			TaskLog:   t.Logs.TaskLogLink,
			AgentLog:  t.Logs.AgentLogLink,
			SystemLog: t.Logs.SystemLogLink,
			AllLogs:   t.Logs.AllLogLink,
		}
	}
	return ft
}

// enrich fetches test counts for every task with bounded parallelism.
// Results keep the input order regardless of completion order.
func (c *FailureCorrelator) enrich(ctx context.Context, tasks []models.FailedTask, progress ProgressFunc) ([]models.FailedTask, []models.DegradeWarning) {
	out := make([]models.FailedTask, len(tasks))
	failures := make([]*models.DegradeWarning, len(tasks))

	var (
		mu   sync.Mutex
		done int
	)
	report := func() {
		if progress == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		done++
		progress(done, len(tasks))
	}

	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, task := range tasks {
		g.Go(func() error {
			defer report()
			info, err := c.testCounts(ctx, task.TaskID, task.Execution)
			if err != nil {
				c.logger.Warn("test count enrichment failed", "task", task.TaskID, "error", err)
				failures[i] = &models.DegradeWarning{
					TaskID:    task.TaskID,
					Operation: OpTestCounts,
					Kind:      client.KindName(err),
					Message:   err.Error(),
				}
				info = models.TestInfo{}
			}
			task.TestInfo = info
			out[i] = task
			return nil
		})
	}
	_ = g.Wait()

	var warnings []models.DegradeWarning
	for _, w := range failures {
		if w != nil {
			warnings = append(warnings, *w)
		}
	}
	return out, warnings
}

func (c *FailureCorrelator) testCounts(ctx context.Context, taskID string, execution int) (models.TestInfo, error) {
	if err := ctx.Err(); err != nil {
		return models.TestInfo{}, fmt.Errorf("%w: %w", client.ErrTransport, err)
	}
	var data client.TaskTestCountsData
	vars := map[string]any{"taskId": taskID, "execution": execution}
	if err := c.q.Execute(ctx, client.QueryTaskTestCounts, vars, &data); err != nil {
		return models.TestInfo{}, err
	}
	if data.Task == nil {
		return models.TestInfo{}, client.NotFound(client.QueryTaskTestCounts, taskID)
	}
	info := models.TestInfo{
		HasTestResults:  data.Task.HasTestResults,
		FailedTestCount: max(data.Task.FailedTestCount, 0),
		TotalTestCount:  max(data.Task.TotalTestCount, 0),
	}
	if info.FailedTestCount > info.TotalTestCount {
		info.TotalTestCount = info.FailedTestCount
	}
	return info, nil
}

// sortFailedTasks orders by finish time descending (unfinished last), then
// build variant, task name and task id.
func sortFailedTasks(tasks []models.FailedTask) {
	slices.SortFunc(tasks, func(a, b models.FailedTask) int {
		return cmp.Or(
			compareTimeDesc(a.FinishTime, b.FinishTime),
			cmp.Compare(a.BuildVariant, b.BuildVariant),
			cmp.Compare(a.TaskName, b.TaskName),
			cmp.Compare(a.TaskID, b.TaskID),
		)
	})
}

func distinctVariants(tasks []models.FailedTask) []string {
	variants := make([]string, 0, len(tasks))
	for _, t := range tasks {
		if t.BuildVariant != "" {
			variants = append(variants, t.BuildVariant)
		}
	}
	slices.Sort(variants)
	return slices.Compact(variants)
}

func isTimeout(t models.FailedTask) bool {
	return t.FailureDetails != nil && t.FailureDetails.TimedOut
}

// compareTimeDesc sorts later times first and nil times last.
func compareTimeDesc(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return b.Compare(*a)
}
