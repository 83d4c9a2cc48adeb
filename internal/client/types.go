package client

import "time"

// =============================================================================
// WIRE TYPES (matching the Evergreen GraphQL schema)
// =============================================================================

// UserPatchesData is the payload of QueryUserPatches.
type UserPatchesData struct {
	User *struct {
		Patches struct {
			Patches []Patch `json:"patches"`
		} `json:"patches"`
	} `json:"user"`
}

// Patch is a patch as returned by the patch queries.
type Patch struct {
	ID                string       `json:"id"`
	Githash           string       `json:"githash"`
	Description       string       `json:"description"`
	Author            string       `json:"author"`
	AuthorDisplayName string       `json:"authorDisplayName"`
	Status            string       `json:"status"`
	CreateTime        *time.Time   `json:"createTime"`
	PatchNumber       int          `json:"patchNumber"`
	ProjectIdentifier string       `json:"projectIdentifier"`
	VersionFull       *VersionInfo `json:"versionFull"`
}

// VersionInfo is the version header linked to a patch.
type VersionInfo struct {
	ID         string     `json:"id"`
	Revision   string     `json:"revision"`
	Author     string     `json:"author"`
	CreateTime *time.Time `json:"createTime"`
	Status     string     `json:"status"`
}

// PatchVersionData is the payload of QueryPatchVersion.
type PatchVersionData struct {
	Patch *Patch `json:"patch"`
}

// VersionTasksData is the payload of QueryVersionTasks.
type VersionTasksData struct {
	Version *struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Tasks  struct {
			Count int    `json:"count"`
			Data  []Task `json:"data"`
		} `json:"tasks"`
	} `json:"version"`
}

// Task is a task within a version.
type Task struct {
	ID           string       `json:"id"`
	DisplayName  string       `json:"displayName"`
	BuildVariant string       `json:"buildVariant"`
	Status       string       `json:"status"`
	Execution    int          `json:"execution"`
	FinishTime   *time.Time   `json:"finishTime"`
	TimeTaken    *int64       `json:"timeTaken"`
	Details      *TaskDetails `json:"details"`
	Logs         *TaskLogURLs `json:"logs"`
}

// TaskDetails is the task's end details.
type TaskDetails struct {
	Description    string `json:"description"`
	Status         string `json:"status"`
	TimedOut       bool   `json:"timedOut"`
	TimeoutType    string `json:"timeoutType"`
	FailingCommand string `json:"failingCommand"`
}

// TaskLogURLs are the UI log links of a task.
type TaskLogURLs struct {
	TaskLogLink   string `json:"taskLogLink"`
	AgentLogLink  string `json:"agentLogLink"`
	SystemLogLink string `json:"systemLogLink"`
	AllLogLink    string `json:"allLogLink"`
}

// TaskTestCountsData is the payload of QueryTaskTestCounts.
type TaskTestCountsData struct {
	Task *struct {
		ID              string `json:"id"`
		Execution       int    `json:"execution"`
		HasTestResults  bool   `json:"hasTestResults"`
		FailedTestCount int    `json:"failedTestCount"`
		TotalTestCount  int    `json:"totalTestCount"`
	} `json:"task"`
}

// TestFilterOptions is the TestFilterOptions GraphQL input.
type TestFilterOptions struct {
	Statuses []string `json:"statuses,omitempty"`
	Limit    int      `json:"limit"`
	Page     int      `json:"page"`
}

// TaskTestResultsData is the payload of QueryTaskTestResults.
type TaskTestResultsData struct {
	Task *struct {
		ID              string `json:"id"`
		DisplayName     string `json:"displayName"`
		BuildVariant    string `json:"buildVariant"`
		Status          string `json:"status"`
		Execution       int    `json:"execution"`
		HasTestResults  bool   `json:"hasTestResults"`
		FailedTestCount int    `json:"failedTestCount"`
		TotalTestCount  int    `json:"totalTestCount"`
		Tests           struct {
			TotalTestCount    int          `json:"totalTestCount"`
			FilteredTestCount int          `json:"filteredTestCount"`
			TestResults       []TestResult `json:"testResults"`
		} `json:"tests"`
	} `json:"task"`
}

// TestResult is a single upstream test result.
type TestResult struct {
	ID        string          `json:"id"`
	Status    string          `json:"status"`
	TestFile  string          `json:"testFile"`
	Duration  float64         `json:"duration"`
	StartTime *time.Time      `json:"startTime"`
	EndTime   *time.Time      `json:"endTime"`
	ExitCode  *int            `json:"exitCode"`
	GroupID   *string         `json:"groupID"`
	Logs      *TestLogLocator `json:"logs"`
}

// TestLogLocator points at a test's logs.
type TestLogLocator struct {
	URL           string  `json:"url"`
	URLParsley    string  `json:"urlParsley"`
	URLRaw        string  `json:"urlRaw"`
	LineNum       *int    `json:"lineNum"`
	RenderingType *string `json:"renderingType"`
	Version       int     `json:"version"`
}

// TaskLogsData is the payload of QueryTaskLogs.
type TaskLogsData struct {
	Task *struct {
		ID          string `json:"id"`
		DisplayName string `json:"displayName"`
		Execution   int    `json:"execution"`
		TaskLogs    struct {
			TaskID     string     `json:"taskId"`
			Execution  int        `json:"execution"`
			TaskLogs   []LogEntry `json:"taskLogs"`
			AgentLogs  []LogEntry `json:"agentLogs"`
			SystemLogs []LogEntry `json:"systemLogs"`
		} `json:"taskLogs"`
	} `json:"task"`
}

// LogEntry is one upstream log message, possibly spanning several lines.
type LogEntry struct {
	Severity  string     `json:"severity"`
	Message   string     `json:"message"`
	Timestamp *time.Time `json:"timestamp"`
	Type      string     `json:"type"`
}

// WaterfallOptions is the WaterfallOptions GraphQL input.
type WaterfallOptions struct {
	ProjectIdentifier string `json:"projectIdentifier"`
	Limit             int    `json:"limit"`
}

// TaskFilterOptions is the TaskFilterOptions GraphQL input.
type TaskFilterOptions struct {
	Variant  string   `json:"variant,omitempty"`
	Statuses []string `json:"statuses,omitempty"`
}

// WaterfallData is the payload of QueryWaterfall.
type WaterfallData struct {
	Waterfall struct {
		FlattenedVersions []WaterfallVersion `json:"flattenedVersions"`
	} `json:"waterfall"`
}

// WaterfallVersion is a flattened waterfall version.
type WaterfallVersion struct {
	ID         string     `json:"id"`
	Branch     string     `json:"branch"`
	StartTime  *time.Time `json:"startTime"`
	Revision   string     `json:"revision"`
	FinishTime *time.Time `json:"finishTime"`
	Tasks      *struct {
		Data []struct {
			ID          string `json:"id"`
			DisplayName string `json:"displayName"`
			Status      string `json:"status"`
		} `json:"data"`
	} `json:"tasks"`
}

// ProjectsData is the payload of QueryProjects.
type ProjectsData struct {
	Projects []struct {
		GroupDisplayName string `json:"groupDisplayName"`
		Projects         []struct {
			ID          string `json:"id"`
			DisplayName string `json:"displayName"`
			Identifier  string `json:"identifier"`
			Enabled     bool   `json:"enabled"`
			Owner       string `json:"owner"`
			Repo        string `json:"repo"`
			Branch      string `json:"branch"`
		} `json:"projects"`
	} `json:"projects"`
}

// TaskFilesData is the payload of QueryTaskFiles.
type TaskFilesData struct {
	Task *struct {
		ID           string `json:"id"`
		DisplayName  string `json:"displayName"`
		BuildVariant string `json:"buildVariant"`
		Execution    int    `json:"execution"`
		Files        struct {
			FileCount    int `json:"fileCount"`
			GroupedFiles []struct {
				TaskName string `json:"taskName"`
				Files    []struct {
					Name string `json:"name"`
					Link string `json:"link"`
				} `json:"files"`
			} `json:"groupedFiles"`
		} `json:"files"`
	} `json:"task"`
}
