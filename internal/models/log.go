package models

import "time"

// Log line severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
	SeverityUnknown = "unknown"
)

// Log line types.
const (
	LineTypeTest    = "test"
	LineTypeSystem  = "system"
	LineTypeGeneric = "generic"
)

// LogLine is one classified log line. It is derived per fetch and never stored.
type LogLine struct {
	Severity  string     `json:"severity"`
	Message   string     `json:"message"`
	Timestamp *time.Time `json:"timestamp"`
	Type      string     `json:"type"`
}

// TaskLogs is the result of fetching logs for one task execution.
// Truncated is true exactly when TotalLines exceeds the requested line cap.
type TaskLogs struct {
	TaskID     string    `json:"task_id"`
	Execution  int       `json:"execution"`
	TaskName   string    `json:"task_name"`
	LogType    string    `json:"log_type"`
	TotalLines int       `json:"total_lines"`
	Logs       []LogLine `json:"logs"`
	Truncated  bool      `json:"truncated"`
}
