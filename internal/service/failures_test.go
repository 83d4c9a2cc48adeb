package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/evergreen-mcp-go/internal/client"
	"github.com/raphaelgruber/evergreen-mcp-go/internal/models"
)

func patchVersion(versionID string) handlerFunc {
	return func(vars map[string]any) (any, error) {
		patch := map[string]any{
			"id":                vars["patchId"],
			"patchNumber":       42,
			"githash":           "abc123",
			"description":       "fix flaky test",
			"author":            "ada",
			"status":            "failed",
			"projectIdentifier": "mongo",
		}
		if versionID != "" {
			patch["versionFull"] = map[string]any{"id": versionID, "revision": "abc123", "status": "failed"}
		}
		return map[string]any{"patch": patch}, nil
	}
}

func versionTasks(tasks ...map[string]any) handlerFunc {
	return func(vars map[string]any) (any, error) {
		page := vars["page"].(int)
		limit := vars["limit"].(int)
		start := min(page*limit, len(tasks))
		end := min(start+limit, len(tasks))
		return map[string]any{
			"version": map[string]any{
				"id":     vars["versionId"],
				"status": "failed",
				"tasks":  map[string]any{"count": len(tasks), "data": tasks[start:end]},
			},
		}, nil
	}
}

func task(id, variant, name, status string, finished *time.Time) map[string]any {
	t := map[string]any{
		"id":           id,
		"displayName":  name,
		"buildVariant": variant,
		"status":       status,
		"execution":    0,
		"timeTaken":    1500,
		"details":      map[string]any{"description": "exit code 1", "failingCommand": "subprocess.exec"},
		"logs":         map[string]any{"taskLogLink": "https://ci/task/" + id},
	}
	if finished != nil {
		t["finishTime"] = *finished
	}
	return t
}

func at(minute int) *time.Time {
	t := ts(minute)
	return &t
}

// testCounts answers TaskTestCounts with 2 failed of 10, failing for ids in errs.
func testCounts(errs map[string]error) handlerFunc {
	return func(vars map[string]any) (any, error) {
		id := vars["taskId"].(string)
		if err := errs[id]; err != nil {
			return nil, err
		}
		return map[string]any{"task": map[string]any{
			"id": id, "execution": vars["execution"], "hasTestResults": true,
			"failedTestCount": 2, "totalTestCount": 10,
		}}, nil
	}
}

func newCorrelator(q client.Querier, concurrency int) *FailureCorrelator {
	return NewFailureCorrelator(q, discardLogger(), concurrency)
}

func TestAnalyzeValidatesArguments(t *testing.T) {
	c := newCorrelator(newFakeQuerier(), 2)

	_, err := c.Analyze(context.Background(), AnalyzeOptions{MaxResults: 5})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	for _, maxResults := range []int{0, -1} {
		_, err = c.Analyze(context.Background(), AnalyzeOptions{PatchID: "p", MaxResults: maxResults})
		assert.ErrorIs(t, err, ErrInvalidArgument)
	}
}

func TestAnalyzePatchNotFound(t *testing.T) {
	q := newFakeQuerier().on(client.QueryPatchVersion, func(map[string]any) (any, error) {
		return map[string]any{"patch": nil}, nil
	})

	_, err := newCorrelator(q, 2).Analyze(context.Background(), AnalyzeOptions{PatchID: "nope", MaxResults: 50})
	require.ErrorIs(t, err, client.ErrNotFound)

	var qe *client.QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "nope", qe.Identifier)
}

func TestAnalyzeProjectMismatch(t *testing.T) {
	q := newFakeQuerier().on(client.QueryPatchVersion, patchVersion("v1"))

	_, err := newCorrelator(q, 2).Analyze(context.Background(), AnalyzeOptions{PatchID: "p", MaxResults: 50, ProjectID: "tools"})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Empty(t, q.callsTo(client.QueryVersionTasks))
}

func TestAnalyzePatchWithoutVersion(t *testing.T) {
	q := newFakeQuerier().on(client.QueryPatchVersion, patchVersion(""))

	report, err := newCorrelator(q, 2).Analyze(context.Background(), AnalyzeOptions{PatchID: "p", MaxResults: 50})
	require.NoError(t, err)

	assert.Nil(t, report.VersionInfo)
	assert.Empty(t, report.FailedTasks)
	assert.NotNil(t, report.FailedTasks)
	assert.Equal(t, 0, report.Summary.TotalFailedTasks)
	assert.Equal(t, 0, report.Summary.ReturnedTasks)
	assert.Equal(t, "p", report.PatchInfo.PatchID)
	assert.Equal(t, "mongo", report.ProjectID)
	assert.Empty(t, q.callsTo(client.QueryVersionTasks))
}

func TestAnalyzeVersionTasksFailureIsFatal(t *testing.T) {
	q := newFakeQuerier().
		on(client.QueryPatchVersion, patchVersion("v1")).
		on(client.QueryVersionTasks, func(map[string]any) (any, error) {
			return nil, &client.QueryError{Kind: client.ErrAuth, Query: client.QueryVersionTasks}
		})

	_, err := newCorrelator(q, 2).Analyze(context.Background(), AnalyzeOptions{PatchID: "p", MaxResults: 50})
	assert.ErrorIs(t, err, client.ErrAuth)
}

func TestAnalyzeOrdersFiltersAndTruncates(t *testing.T) {
	q := newFakeQuerier().
		on(client.QueryPatchVersion, patchVersion("v1")).
		on(client.QueryVersionTasks, versionTasks(
			task("old", "linux", "compile", "failed", at(1)),
			task("running", "linux", "lint", "started", nil),
			task("new", "windows", "unit", "task-timed-out", at(9)),
			task("unfinished", "macos", "unit", "system-failed", nil),
			task("ok", "linux", "docs", "success", at(8)),
		)).
		on(client.QueryTaskTestCounts, testCounts(nil))
	c := newCorrelator(q, 2)

	report, err := c.Analyze(context.Background(), AnalyzeOptions{PatchID: "p", MaxResults: 50})
	require.NoError(t, err)

	ids := make([]string, 0, len(report.FailedTasks))
	for _, ft := range report.FailedTasks {
		ids = append(ids, ft.TaskID)
	}
	assert.Equal(t, []string{"new", "old", "unfinished"}, ids)
	assert.Equal(t, 3, report.Summary.TotalFailedTasks)
	assert.Equal(t, 3, report.Summary.ReturnedTasks)
	assert.Equal(t, []string{"linux", "macos", "windows"}, report.Summary.FailedBuildVariants)
	assert.False(t, report.Summary.HasTimeouts, "a timed-out status without timed_out details is not a timeout")
	require.NotNil(t, report.VersionInfo)
	assert.Equal(t, "v1", report.VersionInfo.VersionID)

	first := report.FailedTasks[0]
	require.NotNil(t, first.FailureDetails)
	assert.Equal(t, "subprocess.exec", first.FailureDetails.FailingCommand)
	require.NotNil(t, first.DurationMs)
	assert.Equal(t, int64(1500), *first.DurationMs)
	require.NotNil(t, first.Logs)
	assert.Equal(t, "https://ci/task/new", first.Logs.TaskLog)
	assert.Equal(t, models.TestInfo{HasTestResults: true, FailedTestCount: 2, TotalTestCount: 10}, first.TestInfo)

	truncated, err := c.Analyze(context.Background(), AnalyzeOptions{PatchID: "p", MaxResults: 1})
	require.NoError(t, err)
	require.Len(t, truncated.FailedTasks, 1)
	assert.Equal(t, "new", truncated.FailedTasks[0].TaskID)
	assert.Equal(t, 1, truncated.Summary.ReturnedTasks)
	assert.Equal(t, 3, truncated.Summary.TotalFailedTasks)
	assert.Equal(t, []string{"linux", "macos", "windows"}, truncated.Summary.FailedBuildVariants)
}

func TestAnalyzeTimeoutsComeFromFailureDetails(t *testing.T) {
	timedOut := task("slow", "linux", "unit", "failed", at(3))
	timedOut["details"] = map[string]any{"description": "test timed out", "timedOut": true, "timeoutType": "exec"}

	tests := []struct {
		name  string
		tasks []map[string]any
		want  bool
	}{
		{"details timed out", []map[string]any{task("a", "linux", "compile", "failed", at(1)), timedOut}, true},
		{"timed-out status only", []map[string]any{task("b", "linux", "unit", "task-timed-out", at(2))}, false},
		{"plain failure", []map[string]any{task("c", "linux", "lint", "failed", at(2))}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := newFakeQuerier().
				on(client.QueryPatchVersion, patchVersion("v1")).
				on(client.QueryVersionTasks, versionTasks(tt.tasks...)).
				on(client.QueryTaskTestCounts, testCounts(nil))

			report, err := newCorrelator(q, 2).Analyze(context.Background(), AnalyzeOptions{PatchID: "p", MaxResults: 50})
			require.NoError(t, err)
			assert.Equal(t, tt.want, report.Summary.HasTimeouts)
		})
	}
}

func TestAnalyzeTieBreaksAreStable(t *testing.T) {
	tasks := []map[string]any{
		task("t-b", "linux", "unit", "failed", at(5)),
		task("t-a", "linux", "unit", "failed", at(5)),
		task("t-c", "arm", "unit", "failed", at(5)),
		task("t-d", "linux", "compile", "failed", at(5)),
	}
	q := newFakeQuerier().
		on(client.QueryPatchVersion, patchVersion("v1")).
		on(client.QueryVersionTasks, versionTasks(tasks...)).
		on(client.QueryTaskTestCounts, testCounts(nil))
	c := newCorrelator(q, 4)

	first, err := c.Analyze(context.Background(), AnalyzeOptions{PatchID: "p", MaxResults: 50})
	require.NoError(t, err)
	second, err := c.Analyze(context.Background(), AnalyzeOptions{PatchID: "p", MaxResults: 50})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	ids := make([]string, 0, 4)
	for _, ft := range first.FailedTasks {
		ids = append(ids, ft.TaskID)
	}
	assert.Equal(t, []string{"t-c", "t-d", "t-a", "t-b"}, ids)
}

func TestAnalyzePartialEnrichmentFailure(t *testing.T) {
	var tasks []map[string]any
	for i := 1; i <= 5; i++ {
		tasks = append(tasks, task(fmt.Sprintf("t%d", i), "linux", fmt.Sprintf("task%d", i), "failed", at(10-i)))
	}
	q := newFakeQuerier().
		on(client.QueryPatchVersion, patchVersion("v1")).
		on(client.QueryVersionTasks, versionTasks(tasks...)).
		on(client.QueryTaskTestCounts, testCounts(map[string]error{
			"t3": &client.QueryError{Kind: client.ErrTransport, Query: client.QueryTaskTestCounts, Message: "connection reset"},
		}))

	report, err := newCorrelator(q, 3).Analyze(context.Background(), AnalyzeOptions{PatchID: "p", MaxResults: 50})
	require.NoError(t, err)

	require.Len(t, report.FailedTasks, 5)
	for i, ft := range report.FailedTasks {
		assert.Equal(t, fmt.Sprintf("t%d", i+1), ft.TaskID)
		if ft.TaskID == "t3" {
			assert.False(t, ft.TestInfo.HasTestResults)
			assert.Zero(t, ft.TestInfo.TotalTestCount)
			continue
		}
		assert.True(t, ft.TestInfo.HasTestResults)
		assert.Equal(t, 10, ft.TestInfo.TotalTestCount)
	}

	require.Len(t, report.Warnings, 1)
	w := report.Warnings[0]
	assert.Equal(t, "t3", w.TaskID)
	assert.Equal(t, OpTestCounts, w.Operation)
	assert.Equal(t, "transport", w.Kind)
	assert.Contains(t, w.Message, "connection reset")
}

func TestAnalyzeCancelledContextDegradesEnrichment(t *testing.T) {
	q := newFakeQuerier().
		on(client.QueryPatchVersion, patchVersion("v1")).
		on(client.QueryVersionTasks, versionTasks(task("t1", "linux", "unit", "failed", at(1)))).
		on(client.QueryTaskTestCounts, testCounts(nil))
	c := newCorrelator(q, 2)

	tasks, err := c.failedTasks(context.Background(), "v1")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	enriched, warnings := c.enrich(ctx, tasks, nil)

	require.Len(t, enriched, 1)
	assert.False(t, enriched[0].TestInfo.HasTestResults)
	require.Len(t, warnings, 1)
	assert.Equal(t, "transport", warnings[0].Kind)
}

func TestAnalyzeRepairsInconsistentCounts(t *testing.T) {
	q := newFakeQuerier().
		on(client.QueryPatchVersion, patchVersion("v1")).
		on(client.QueryVersionTasks, versionTasks(task("t1", "linux", "unit", "failed", at(1)))).
		on(client.QueryTaskTestCounts, func(map[string]any) (any, error) {
			return map[string]any{"task": map[string]any{
				"id": "t1", "hasTestResults": true, "failedTestCount": 7, "totalTestCount": 3,
			}}, nil
		})

	report, err := newCorrelator(q, 1).Analyze(context.Background(), AnalyzeOptions{PatchID: "p", MaxResults: 50})
	require.NoError(t, err)
	info := report.FailedTasks[0].TestInfo
	assert.Equal(t, 7, info.FailedTestCount)
	assert.Equal(t, 7, info.TotalTestCount)
}

func TestAnalyzeLatestExecutionGoverns(t *testing.T) {
	retried := task("t1", "linux", "unit", "success", at(5))
	retried["execution"] = 1
	q := newFakeQuerier().
		on(client.QueryPatchVersion, patchVersion("v1")).
		on(client.QueryVersionTasks, versionTasks(
			task("t1", "linux", "unit", "failed", at(2)),
			retried,
			task("t2", "linux", "lint", "failed", at(3)),
		)).
		on(client.QueryTaskTestCounts, testCounts(nil))

	report, err := newCorrelator(q, 2).Analyze(context.Background(), AnalyzeOptions{PatchID: "p", MaxResults: 50})
	require.NoError(t, err)
	require.Len(t, report.FailedTasks, 1)
	assert.Equal(t, "t2", report.FailedTasks[0].TaskID)
}

func TestAnalyzePagesThroughVersionTasks(t *testing.T) {
	var tasks []map[string]any
	for i := range 130 {
		tasks = append(tasks, task(fmt.Sprintf("t%03d", i), "linux", fmt.Sprintf("task%03d", i), "failed", at(1)))
	}
	q := newFakeQuerier().
		on(client.QueryPatchVersion, patchVersion("v1")).
		on(client.QueryVersionTasks, versionTasks(tasks...)).
		on(client.QueryTaskTestCounts, testCounts(nil))

	report, err := newCorrelator(q, 8).Analyze(context.Background(), AnalyzeOptions{PatchID: "p", MaxResults: 10})
	require.NoError(t, err)

	assert.Len(t, q.callsTo(client.QueryVersionTasks), 2)
	assert.Equal(t, 130, report.Summary.TotalFailedTasks)
	assert.Equal(t, 10, report.Summary.ReturnedTasks)
	assert.Len(t, q.callsTo(client.QueryTaskTestCounts), 10)
}

func TestAnalyzeBoundsConcurrencyAndReportsProgress(t *testing.T) {
	var tasks []map[string]any
	for i := range 12 {
		tasks = append(tasks, task(fmt.Sprintf("t%02d", i), "linux", "unit", "failed", at(i)))
	}

	var inFlight, peak atomic.Int32
	counts := testCounts(nil)
	q := newFakeQuerier().
		on(client.QueryPatchVersion, patchVersion("v1")).
		on(client.QueryVersionTasks, versionTasks(tasks...)).
		on(client.QueryTaskTestCounts, func(vars map[string]any) (any, error) {
			n := inFlight.Add(1)
			defer inFlight.Add(-1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			return counts(vars)
		})

	var (
		mu    sync.Mutex
		calls []int
		total int
	)
	progress := func(done, n int) {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, done)
		total = n
	}

	report, err := newCorrelator(q, 3).Analyze(context.Background(), AnalyzeOptions{PatchID: "p", MaxResults: 50, Progress: progress})
	require.NoError(t, err)

	assert.Len(t, report.FailedTasks, 12)
	assert.LessOrEqual(t, peak.Load(), int32(3))
	assert.Equal(t, 12, total)
	require.Len(t, calls, 12)
	for i, done := range calls {
		assert.Equal(t, i+1, done)
	}
}

func TestAnalyzeKeepsOrderWhenEnrichmentsFinishOutOfOrder(t *testing.T) {
	var tasks []map[string]any
	for i := range 6 {
		tasks = append(tasks, task(fmt.Sprintf("t%d", i), "linux", "unit", "failed", at(10-i)))
	}

	counts := testCounts(nil)
	q := newFakeQuerier().
		on(client.QueryPatchVersion, patchVersion("v1")).
		on(client.QueryVersionTasks, versionTasks(tasks...)).
		on(client.QueryTaskTestCounts, func(vars map[string]any) (any, error) {
			// Earlier tasks in the ranking take longest, so they complete last.
			var idx int
			_, _ = fmt.Sscanf(vars["taskId"].(string), "t%d", &idx)
			time.Sleep(time.Duration(6-idx) * 10 * time.Millisecond)
			return counts(vars)
		})

	report, err := newCorrelator(q, 6).Analyze(context.Background(), AnalyzeOptions{PatchID: "p", MaxResults: 50})
	require.NoError(t, err)

	ids := make([]string, 0, len(report.FailedTasks))
	for _, ft := range report.FailedTasks {
		ids = append(ids, ft.TaskID)
		assert.True(t, ft.TestInfo.HasTestResults, "task %s should be enriched", ft.TaskID)
	}
	assert.Equal(t, []string{"t0", "t1", "t2", "t3", "t4", "t5"}, ids)
}
