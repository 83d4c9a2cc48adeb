package models

import "time"

// FailedJobsReport is the aggregate returned when analyzing a patch.
type FailedJobsReport struct {
	PatchInfo   PatchInfo        `json:"patch_info"`
	VersionInfo *VersionInfo     `json:"version_info"`
	FailedTasks []FailedTask     `json:"failed_tasks"`
	Summary     FailureSummary   `json:"summary"`
	Warnings    []DegradeWarning `json:"warnings,omitempty"`
	ProjectID   string           `json:"project_id,omitempty"`
}

// FailedTask is a failed task enriched with test counts and log links.
type FailedTask struct {
	TaskID         string          `json:"task_id"`
	TaskName       string          `json:"task_name"`
	BuildVariant   string          `json:"build_variant"`
	Status         string          `json:"status"`
	Execution      int             `json:"execution"`
	FailureDetails *FailureDetails `json:"failure_details,omitempty"`
	DurationMs     *int64          `json:"duration_ms"`
	FinishTime     *time.Time      `json:"finish_time"`
	TestInfo       TestInfo        `json:"test_info"`
	Logs           *TaskLogLinks   `json:"logs,omitempty"`
}

// FailureDetails explains why a task failed.
type FailureDetails struct {
	Description    string `json:"description"`
	TimedOut       bool   `json:"timed_out"`
	TimeoutType    string `json:"timeout_type,omitempty"`
	FailingCommand string `json:"failing_command"`
}

// TestInfo carries aggregate test counts for a task.
type TestInfo struct {
	HasTestResults  bool `json:"has_test_results"`
	FailedTestCount int  `json:"failed_test_count"`
	TotalTestCount  int  `json:"total_test_count"`
}

// TaskLogLinks are UI links to a task's logs.
type TaskLogLinks struct {
	TaskLog   string `json:"task_log"`
	AgentLog  string `json:"agent_log"`
	SystemLog string `json:"system_log"`
	AllLogs   string `json:"all_logs"`
}

// FailureSummary aggregates a report. ReturnedTasks never exceeds TotalFailedTasks.
type FailureSummary struct {
	TotalFailedTasks    int      `json:"total_failed_tasks"`
	ReturnedTasks       int      `json:"returned_tasks"`
	FailedBuildVariants []string `json:"failed_build_variants"`
	HasTimeouts         bool     `json:"has_timeouts"`
}

// DegradeWarning records a sub-fetch that failed without failing the report.
type DegradeWarning struct {
	TaskID    string `json:"task_id"`
	Operation string `json:"operation"`
	Kind      string `json:"kind"`
	Message   string `json:"message"`
}
