package models

import "time"

// TestResults is the result of fetching test results for one task execution.
type TestResults struct {
	TaskInfo    TaskTestInfo `json:"task_info"`
	TestResults []TestResult `json:"test_results"`
	Summary     TestSummary  `json:"summary"`
}

// TaskTestInfo identifies the task whose tests were fetched.
type TaskTestInfo struct {
	TaskID          string `json:"task_id"`
	TaskName        string `json:"task_name"`
	BuildVariant    string `json:"build_variant"`
	Status          string `json:"status"`
	Execution       int    `json:"execution"`
	HasTestResults  bool   `json:"has_test_results"`
	FailedTestCount int    `json:"failed_test_count"`
	TotalTestCount  int    `json:"total_test_count"`
}

// TestResult is a single test outcome.
type TestResult struct {
	TestID    string          `json:"test_id"`
	TestFile  string          `json:"test_file"`
	Status    string          `json:"status"`
	Duration  float64         `json:"duration"`
	StartTime *time.Time      `json:"start_time"`
	EndTime   *time.Time      `json:"end_time"`
	ExitCode  *int            `json:"exit_code"`
	GroupID   *string         `json:"group_id"`
	Logs      *TestResultLogs `json:"logs,omitempty"`
}

// TestResultLogs locates a test's logs.
type TestResultLogs struct {
	URL           string  `json:"url,omitempty"`
	URLParsley    string  `json:"url_parsley,omitempty"`
	URLRaw        string  `json:"url_raw,omitempty"`
	LineNum       *int    `json:"line_num,omitempty"`
	RenderingType *string `json:"rendering_type,omitempty"`
	Version       int     `json:"version"`
}

// TestSummary holds the counts for a test result fetch.
// ReturnedTests <= FilteredTestCount <= TotalTestResults always holds.
type TestSummary struct {
	TotalTestResults     int    `json:"total_test_results"`
	FilteredTestCount    int    `json:"filtered_test_count"`
	ReturnedTests        int    `json:"returned_tests"`
	FailedTestsInResults int    `json:"failed_tests_in_results"`
	FilterApplied        string `json:"filter_applied"`
}
