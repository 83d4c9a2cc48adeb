// Package models defines the report shapes returned to agents and CLI users.
package models

import (
	"slices"
	"strings"
)

// Patch statuses after normalization.
const (
	PatchCreated   = "created"
	PatchStarted   = "started"
	PatchSucceeded = "succeeded"
	PatchFailed    = "failed"
	PatchUnknown   = "unknown"
)

// NormalizePatchStatus maps the many upstream patch/version status strings
// onto the five patch states.
func NormalizePatchStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "created", "undispatched", "inactive", "unscheduled":
		return PatchCreated
	case "started", "running", "dispatched", "will-run", "pending":
		return PatchStarted
	case "succeeded", "success", "successful":
		return PatchSucceeded
	case "failed", "failure", "aborted":
		return PatchFailed
	default:
		return PatchUnknown
	}
}

// FailedTaskStatuses are the task states that count as failures.
// Tasks still running or that succeeded are never included.
var FailedTaskStatuses = []string{
	"failed",
	"setup-failed",
	"system-failed",
	"system-unresponsive",
	"system-timed-out",
	"task-timed-out",
	"test-timed-out",
}

// IsFailedTaskStatus reports whether a task status denotes failure.
func IsFailedTaskStatus(s string) bool {
	return slices.Contains(FailedTaskStatuses, strings.ToLower(s))
}

// Test statuses after normalization.
const (
	TestPassed  = "passed"
	TestFailed  = "failed"
	TestSkipped = "skipped"
)

// FailedTestStatuses are the upstream test statuses treated as failures.
var FailedTestStatuses = []string{"fail", "failed"}

// NormalizeTestStatus maps upstream test statuses to passed/failed/skipped.
// Unrecognized values are passed through lowercased.
func NormalizeTestStatus(s string) string {
	lower := strings.ToLower(strings.TrimSpace(s))
	switch {
	case slices.Contains(FailedTestStatuses, lower):
		return TestFailed
	case lower == "pass" || lower == "passed" || lower == "success":
		return TestPassed
	case lower == "skip" || lower == "skipped":
		return TestSkipped
	default:
		return lower
	}
}
