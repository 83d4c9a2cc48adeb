package models

import "time"

// WaterfallReport describes the most recent failing version across build variants.
type WaterfallReport struct {
	ProjectIdentifier string             `json:"project_identifier"`
	VariantsQueried   []string           `json:"variants_queried"`
	Statuses          []string           `json:"statuses"`
	Versions          []WaterfallVersion `json:"versions"`
	Summary           WaterfallSummary   `json:"summary"`
}

// WaterfallVersion is a version with its merged failed tasks.
type WaterfallVersion struct {
	VersionID            string          `json:"version_id"`
	Revision             string          `json:"revision"`
	Branch               string          `json:"branch"`
	StartTime            *time.Time      `json:"start_time"`
	FinishTime           *time.Time      `json:"finish_time"`
	FailedTaskCount      int             `json:"failed_task_count"`
	FailedTasks          []WaterfallTask `json:"failed_tasks"`
	VariantsWithFailures []string        `json:"variants_with_failures"`
}

// WaterfallTask is a failed task seen on the waterfall.
type WaterfallTask struct {
	TaskID   string `json:"task_id"`
	TaskName string `json:"task_name"`
	Status   string `json:"status"`
}

// WaterfallSummary aggregates a waterfall scan.
type WaterfallSummary struct {
	TotalVersionsWithFailures int      `json:"total_versions_with_failures"`
	TotalFailedTasks          int      `json:"total_failed_tasks"`
	Variants                  []string `json:"variants"`
	SuggestedNextSteps        []string `json:"suggested_next_steps"`
	Note                      string   `json:"note,omitempty"`
}

// Project is an Evergreen project.
type Project struct {
	ID          string `json:"id"`
	Identifier  string `json:"identifier"`
	DisplayName string `json:"display_name"`
	Enabled     bool   `json:"enabled"`
	Owner       string `json:"owner"`
	Repo        string `json:"repo"`
	Branch      string `json:"branch"`
}
