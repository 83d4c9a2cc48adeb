package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/raphaelgruber/evergreen-mcp-go/internal/client"
	"github.com/raphaelgruber/evergreen-mcp-go/internal/models"
	"github.com/raphaelgruber/evergreen-mcp-go/internal/parser"
)

// DefaultMaxLines is the log line cap used when callers do not set one.
const DefaultMaxLines = 1000

// Log types accepted by LogFetcher.
const (
	LogTypeTask   = "task"
	LogTypeAgent  = "agent"
	LogTypeSystem = "system"
	LogTypeAll    = "all"
)

// LogFetcher fetches and classifies task logs.
type LogFetcher struct {
	q      client.Querier
	logger *slog.Logger
}

// NewLogFetcher creates a new log fetcher.
func NewLogFetcher(q client.Querier, logger *slog.Logger) *LogFetcher {
	return &LogFetcher{q: q, logger: logger}
}

// LogOptions configures a log fetch.
type LogOptions struct {
	TaskID    string
	Execution int
	// MaxLines is clamped to at least 1.
	MaxLines int
	// FilterErrors keeps only error lines.
	FilterErrors bool
	// LogType is one of task, agent, system or all. Empty means task.
	LogType string
}

// Fetch returns classified log lines in source order. TotalLines counts the
// lines that passed the filter before truncation to MaxLines.
func (f *LogFetcher) Fetch(ctx context.Context, opts LogOptions) (*models.TaskLogs, error) {
	if opts.TaskID == "" {
		return nil, fmt.Errorf("%w: task id is required", ErrInvalidArgument)
	}
	if opts.Execution < 0 {
		return nil, fmt.Errorf("%w: execution must not be negative", ErrInvalidArgument)
	}
	logType := strings.ToLower(opts.LogType)
	if logType == "" {
		logType = LogTypeTask
	}
	switch logType {
	case LogTypeTask, LogTypeAgent, LogTypeSystem, LogTypeAll:
	default:
		return nil, fmt.Errorf("%w: unknown log type %q", ErrInvalidArgument, opts.LogType)
	}
	maxLines := clampMin(opts.MaxLines, 1)

	var data client.TaskLogsData
	vars := map[string]any{"taskId": opts.TaskID, "execution": opts.Execution}
	if err := f.q.Execute(ctx, client.QueryTaskLogs, vars, &data); err != nil {
		return nil, fmt.Errorf("get task logs: %w", err)
	}
	if data.Task == nil {
		return nil, client.NotFound(client.QueryTaskLogs, opts.TaskID)
	}
	t := data.Task

	type stream struct {
		source  string
		entries []client.LogEntry
	}
	var streams []stream
	if logType == LogTypeTask || logType == LogTypeAll {
		streams = append(streams, stream{parser.SourceTask, t.TaskLogs.TaskLogs})
	}
	if logType == LogTypeAgent || logType == LogTypeAll {
		streams = append(streams, stream{parser.SourceAgent, t.TaskLogs.AgentLogs})
	}
	if logType == LogTypeSystem || logType == LogTypeAll {
		streams = append(streams, stream{parser.SourceSystem, t.TaskLogs.SystemLogs})
	}

	lines := make([]models.LogLine, 0)
	total := 0
	for _, s := range streams {
		for _, entry := range s.entries {
			lc := parser.LineContext{
				Source:    s.source,
				Severity:  entry.Severity,
				Type:      entry.Type,
				Timestamp: entry.Timestamp,
			}
			for _, text := range parser.SplitLines(entry.Message) {
				line := parser.ClassifyLine(text, lc)
				if opts.FilterErrors && line.Severity != models.SeverityError {
					continue
				}
				total++
				if len(lines) < maxLines {
					lines = append(lines, line)
				}
			}
		}
	}

	f.logger.Debug("task logs fetched",
		"task", opts.TaskID,
		"execution", opts.Execution,
		"log_type", logType,
		"total_lines", total,
		"returned", len(lines))

	return &models.TaskLogs{
		TaskID:     opts.TaskID,
		Execution:  opts.Execution,
		TaskName:   t.DisplayName,
		LogType:    logType,
		TotalLines: total,
		Logs:       lines,
		Truncated:  total > maxLines,
	}, nil
}
