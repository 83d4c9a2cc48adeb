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

// DefaultTestLimit is the test result cap used when callers do not set one.
const DefaultTestLimit = 100

const (
	testResultsPageSize = 200
	testResultsMaxPages = 25
)

// Filter descriptions reported in test summaries.
const (
	FilterFailedOnly = "failed tests only"
	FilterAll        = "all tests"
)

// TestResultFetcher fetches test results for one task execution.
type TestResultFetcher struct {
	q      client.Querier
	logger *slog.Logger
}

// NewTestResultFetcher creates a new test result fetcher.
func NewTestResultFetcher(q client.Querier, logger *slog.Logger) *TestResultFetcher {
	return &TestResultFetcher{q: q, logger: logger}
}

// TestResultsOptions configures a test result fetch.
type TestResultsOptions struct {
	TaskID     string
	Execution  int
	FailedOnly bool
	// Limit is clamped to at least 1.
	Limit int
}

// Fetch returns the task's test results ordered by test file and id.
func (f *TestResultFetcher) Fetch(ctx context.Context, opts TestResultsOptions) (*models.TestResults, error) {
	if opts.TaskID == "" {
		return nil, fmt.Errorf("%w: task id is required", ErrInvalidArgument)
	}
	if opts.Execution < 0 {
		return nil, fmt.Errorf("%w: execution must not be negative", ErrInvalidArgument)
	}
	limit := clampMin(opts.Limit, 1)

	filter := client.TestFilterOptions{Limit: testResultsPageSize}
	if opts.FailedOnly {
		filter.Statuses = models.FailedTestStatuses
	}

	var (
		info      models.TaskTestInfo
		collected []client.TestResult
		upTotal   int
	)
	for page := 0; page < testResultsMaxPages; page++ {
		filter.Page = page
		var data client.TaskTestResultsData
		vars := map[string]any{
			"taskId":            opts.TaskID,
			"execution":         opts.Execution,
			"testFilterOptions": filter,
		}
		if err := f.q.Execute(ctx, client.QueryTaskTestResults, vars, &data); err != nil {
			return nil, fmt.Errorf("get test results: %w", err)
		}
		if data.Task == nil {
			return nil, client.NotFound(client.QueryTaskTestResults, opts.TaskID)
		}

		t := data.Task
		if page == 0 {
			info = models.TaskTestInfo{
				TaskID:          t.ID,
				TaskName:        t.DisplayName,
				BuildVariant:    t.BuildVariant,
				Status:          t.Status,
				Execution:       max(t.Execution, 0),
				HasTestResults:  t.HasTestResults,
				FailedTestCount: max(t.FailedTestCount, 0),
				TotalTestCount:  max(t.TotalTestCount, 0),
			}
			upTotal = cmp.Or(t.Tests.TotalTestCount, t.TotalTestCount)
		}

		batch := t.Tests.TestResults
		collected = append(collected, batch...)
		if len(batch) < testResultsPageSize || len(collected) >= t.Tests.FilteredTestCount {
			break
		}
	}
	if info.FailedTestCount > info.TotalTestCount {
		info.TotalTestCount = info.FailedTestCount
	}

	slices.SortStableFunc(collected, func(a, b client.TestResult) int {
		return cmp.Or(cmp.Compare(a.TestFile, b.TestFile), cmp.Compare(a.ID, b.ID))
	})

	filtered := make([]models.TestResult, 0, len(collected))
	failedInResults := 0
	for _, tr := range collected {
		res := toTestResult(tr)
		if opts.FailedOnly && res.Status != models.TestFailed {
			continue
		}
		filtered = append(filtered, res)
	}

	summary := models.TestSummary{
		FilteredTestCount: len(filtered),
		TotalTestResults:  max(upTotal, len(collected)),
		FilterApplied:     FilterAll,
	}
	if opts.FailedOnly {
		summary.FilterApplied = FilterFailedOnly
	}
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	for _, res := range filtered {
		if res.Status == models.TestFailed {
			failedInResults++
		}
	}
	summary.ReturnedTests = len(filtered)
	summary.FailedTestsInResults = failedInResults

	f.logger.Debug("test results fetched",
		"task", opts.TaskID,
		"execution", opts.Execution,
		"total", summary.TotalTestResults,
		"filtered", summary.FilteredTestCount,
		"returned", summary.ReturnedTests)

	return &models.TestResults{TaskInfo: info, TestResults: filtered, Summary: summary}, nil
}

func toTestResult(tr client.TestResult) models.TestResult {
	res := models.TestResult{
		TestID:    tr.ID,
		TestFile:  tr.TestFile,
		Status:    models.NormalizeTestStatus(tr.Status),
		Duration:  tr.Duration,
		StartTime: tr.StartTime,
		EndTime:   tr.EndTime,
		ExitCode:  tr.ExitCode,
		GroupID:   tr.GroupID,
	}
	if tr.Logs != nil {
		res.Logs = &models.TestResultLogs{
			URL:           tr.Logs.URL,
			URLParsley:    tr.Logs.URLParsley,
			URLRaw:        tr.Logs.URLRaw,
			LineNum:       tr.Logs.LineNum,
			RenderingType: tr.Logs.RenderingType,
			Version:       tr.Logs.Version,
		}
	}
	return res
}
