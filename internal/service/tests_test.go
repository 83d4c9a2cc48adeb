package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/evergreen-mcp-go/internal/client"
	"github.com/raphaelgruber/evergreen-mcp-go/internal/models"
)

func testResult(id, file, status string) map[string]any {
	return map[string]any{
		"id":       id,
		"testFile": file,
		"status":   status,
		"duration": 1.25,
		"logs":     map[string]any{"url": "https://ci/logs/" + id, "version": 1},
	}
}

// taskTests serves results page by page, ignoring any status filter.
func taskTests(total int, results ...map[string]any) handlerFunc {
	return func(vars map[string]any) (any, error) {
		opts := vars["testFilterOptions"].(client.TestFilterOptions)
		start := min(opts.Page*opts.Limit, len(results))
		end := min(start+opts.Limit, len(results))
		return map[string]any{"task": map[string]any{
			"id":              vars["taskId"],
			"displayName":     "unit",
			"buildVariant":    "linux",
			"status":          "failed",
			"execution":       vars["execution"],
			"hasTestResults":  true,
			"failedTestCount": 2,
			"totalTestCount":  total,
			"tests": map[string]any{
				"totalTestCount":    total,
				"filteredTestCount": len(results),
				"testResults":       results[start:end],
			},
		}}, nil
	}
}

func TestFetchTestResultsFailedOnly(t *testing.T) {
	q := newFakeQuerier().on(client.QueryTaskTestResults, taskTests(5,
		testResult("b", "z_test.go", "fail"),
		testResult("a", "z_test.go", "failed"),
		testResult("c", "a_test.go", "pass"),
		testResult("d", "a_test.go", "fail"),
	))
	f := NewTestResultFetcher(q, discardLogger())

	res, err := f.Fetch(context.Background(), TestResultsOptions{TaskID: "t1", Execution: 1, FailedOnly: true, Limit: 100})
	require.NoError(t, err)

	ids := make([]string, 0, len(res.TestResults))
	for _, tr := range res.TestResults {
		ids = append(ids, tr.TestID)
		assert.Equal(t, models.TestFailed, tr.Status)
	}
	assert.Equal(t, []string{"d", "a", "b"}, ids)
	assert.Equal(t, models.TestSummary{
		TotalTestResults:     5,
		FilteredTestCount:    3,
		ReturnedTests:        3,
		FailedTestsInResults: 3,
		FilterApplied:        FilterFailedOnly,
	}, res.Summary)
	assert.Equal(t, "t1", res.TaskInfo.TaskID)
	assert.Equal(t, 1, res.TaskInfo.Execution)

	calls := q.callsTo(client.QueryTaskTestResults)
	require.Len(t, calls, 1)
	opts := calls[0].vars["testFilterOptions"].(client.TestFilterOptions)
	assert.Equal(t, models.FailedTestStatuses, opts.Statuses)
}

func TestFetchTestResultsAllAndLimit(t *testing.T) {
	q := newFakeQuerier().on(client.QueryTaskTestResults, taskTests(3,
		testResult("b", "x_test.go", "fail"),
		testResult("a", "x_test.go", "pass"),
		testResult("c", "y_test.go", "skip"),
	))
	f := NewTestResultFetcher(q, discardLogger())

	res, err := f.Fetch(context.Background(), TestResultsOptions{TaskID: "t1", Limit: 2})
	require.NoError(t, err)

	require.Len(t, res.TestResults, 2)
	assert.Equal(t, "a", res.TestResults[0].TestID)
	assert.Equal(t, models.TestPassed, res.TestResults[0].Status)
	assert.Equal(t, "b", res.TestResults[1].TestID)
	assert.Equal(t, 3, res.Summary.FilteredTestCount)
	assert.Equal(t, 2, res.Summary.ReturnedTests)
	assert.Equal(t, 1, res.Summary.FailedTestsInResults)
	assert.Equal(t, FilterAll, res.Summary.FilterApplied)

	opts := q.callsTo(client.QueryTaskTestResults)[0].vars["testFilterOptions"].(client.TestFilterOptions)
	assert.Empty(t, opts.Statuses)
}

func TestFetchTestResultsCountInvariant(t *testing.T) {
	var results []map[string]any
	for i := range 450 {
		status := "pass"
		if i%3 == 0 {
			status = "fail"
		}
		results = append(results, testResult(fmt.Sprintf("t%03d", i), "suite_test.go", status))
	}

	for _, limit := range []int{-1, 0, 1, 50, 150, 1000} {
		for _, failedOnly := range []bool{true, false} {
			t.Run(fmt.Sprintf("limit=%d/failed=%v", limit, failedOnly), func(t *testing.T) {
				q := newFakeQuerier().on(client.QueryTaskTestResults, taskTests(len(results), results...))
				res, err := NewTestResultFetcher(q, discardLogger()).Fetch(context.Background(),
					TestResultsOptions{TaskID: "t1", FailedOnly: failedOnly, Limit: limit})
				require.NoError(t, err)

				s := res.Summary
				assert.LessOrEqual(t, s.ReturnedTests, s.FilteredTestCount)
				assert.LessOrEqual(t, s.FilteredTestCount, s.TotalTestResults)
				assert.LessOrEqual(t, s.ReturnedTests, max(limit, 1))
				assert.Len(t, res.TestResults, s.ReturnedTests)
				assert.Len(t, q.callsTo(client.QueryTaskTestResults), 3)
			})
		}
	}
}

func TestFetchTestResultsErrors(t *testing.T) {
	f := NewTestResultFetcher(newFakeQuerier(), discardLogger())
	_, err := f.Fetch(context.Background(), TestResultsOptions{})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = f.Fetch(context.Background(), TestResultsOptions{TaskID: "t1", Execution: -1})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	q := newFakeQuerier().on(client.QueryTaskTestResults, func(map[string]any) (any, error) {
		return map[string]any{"task": nil}, nil
	})
	_, err = NewTestResultFetcher(q, discardLogger()).Fetch(context.Background(), TestResultsOptions{TaskID: "gone"})
	assert.ErrorIs(t, err, client.ErrNotFound)
}
