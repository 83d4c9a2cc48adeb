package client

import (
	"fmt"
	"slices"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// Query names understood by Execute.
const (
	QueryUserPatches     = "UserPatches"
	QueryPatchVersion    = "PatchVersion"
	QueryVersionTasks    = "VersionTasks"
	QueryTaskTestCounts  = "TaskTestCounts"
	QueryTaskTestResults = "TaskTestResults"
	QueryTaskLogs        = "TaskLogs"
	QueryWaterfall       = "WaterfallFailedTasks"
	QueryProjects        = "Projects"
	QueryTaskFiles       = "TaskFiles"
)

// queryDoc is a parsed named query and the variables it declares.
type queryDoc struct {
	name     string
	text     string
	required []string
	allowed  []string
}

// validate checks a parameter map against the query's variable definitions.
func (q *queryDoc) validate(vars map[string]any) error {
	for _, name := range q.required {
		if v, ok := vars[name]; !ok || v == nil {
			return fmt.Errorf("%w: %s requires $%s", ErrInvalidParams, q.name, name)
		}
	}
	for name := range vars {
		if !slices.Contains(q.allowed, name) {
			return fmt.Errorf("%w: %s does not declare $%s", ErrInvalidParams, q.name, name)
		}
	}
	return nil
}

// registry holds every query, parsed once at package init.
var registry = mustParseQueries(map[string]string{
	QueryUserPatches:     userPatchesQuery,
	QueryPatchVersion:    patchVersionQuery,
	QueryVersionTasks:    versionTasksQuery,
	QueryTaskTestCounts:  taskTestCountsQuery,
	QueryTaskTestResults: taskTestResultsQuery,
	QueryTaskLogs:        taskLogsQuery,
	QueryWaterfall:       waterfallQuery,
	QueryProjects:        projectsQuery,
	QueryTaskFiles:       taskFilesQuery,
})

func mustParseQueries(texts map[string]string) map[string]*queryDoc {
	docs := make(map[string]*queryDoc, len(texts))
	for name, text := range texts {
		doc, err := parseQuery(name, text)
		if err != nil {
			panic(err)
		}
		docs[name] = doc
	}
	return docs
}

// parseQuery parses a single named operation and records its variables.
func parseQuery(name, text string) (*queryDoc, error) {
	doc, err := parser.ParseQuery(&ast.Source{Name: name, Input: text})
	if err != nil {
		return nil, fmt.Errorf("parse query %s: %w", name, err)
	}
	if len(doc.Operations) != 1 {
		return nil, fmt.Errorf("query %s: expected one operation, got %d", name, len(doc.Operations))
	}
	op := doc.Operations[0]
	if op.Name != name {
		return nil, fmt.Errorf("query %s: operation is named %q", name, op.Name)
	}

	q := &queryDoc{name: name, text: strings.TrimSpace(text)}
	for _, v := range op.VariableDefinitions {
		q.allowed = append(q.allowed, v.Variable)
		if v.Type != nil && v.Type.NonNull && v.DefaultValue == nil {
			q.required = append(q.required, v.Variable)
		}
	}
	return q, nil
}

// lookupQuery returns the registered query or an ErrInvalidParams error.
func lookupQuery(name string) (*queryDoc, error) {
	q, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown query %q", ErrInvalidParams, name)
	}
	return q, nil
}

const userPatchesQuery = `
query UserPatches($userId: String!, $limit: Int = 10, $page: Int = 0) {
  user(userId: $userId) {
    patches(patchesInput: {
      limit: $limit
      page: $page
      patchName: ""
      statuses: []
      includeHidden: false
    }) {
      patches {
        id
        githash
        description
        author
        authorDisplayName
        status
        createTime
        patchNumber
        projectIdentifier
        versionFull {
          id
          status
        }
      }
    }
  }
}`

const patchVersionQuery = `
query PatchVersion($patchId: String!) {
  patch(patchId: $patchId) {
    id
    githash
    description
    author
    authorDisplayName
    status
    createTime
    patchNumber
    projectIdentifier
    versionFull {
      id
      revision
      author
      createTime
      status
    }
  }
}`

const versionTasksQuery = `
query VersionTasks($versionId: String!, $statuses: [String!]!, $limit: Int = 100, $page: Int = 0) {
  version(versionId: $versionId) {
    id
    status
    tasks(options: {statuses: $statuses, limit: $limit, page: $page}) {
      count
      data {
        id
        displayName
        buildVariant
        status
        execution
        finishTime
        timeTaken
        details {
          description
          status
          timedOut
          timeoutType
          failingCommand
        }
        logs {
          taskLogLink
          agentLogLink
          systemLogLink
          allLogLink
        }
      }
    }
  }
}`

const taskTestCountsQuery = `
query TaskTestCounts($taskId: String!, $execution: Int!) {
  task(taskId: $taskId, execution: $execution) {
    id
    execution
    hasTestResults
    failedTestCount
    totalTestCount
  }
}`

const taskTestResultsQuery = `
query TaskTestResults($taskId: String!, $execution: Int!, $testFilterOptions: TestFilterOptions) {
  task(taskId: $taskId, execution: $execution) {
    id
    displayName
    buildVariant
    status
    execution
    hasTestResults
    failedTestCount
    totalTestCount
    tests(opts: $testFilterOptions) {
      totalTestCount
      filteredTestCount
      testResults {
        id
        status
        testFile
        duration
        startTime
        endTime
        exitCode
        groupID
        logs {
          url
          urlParsley
          urlRaw
          lineNum
          renderingType
          version
        }
      }
    }
  }
}`

const taskLogsQuery = `
query TaskLogs($taskId: String!, $execution: Int!) {
  task(taskId: $taskId, execution: $execution) {
    id
    displayName
    execution
    taskLogs {
      taskId
      execution
      taskLogs {
        severity
        message
        timestamp
        type
      }
      agentLogs {
        severity
        message
        timestamp
        type
      }
      systemLogs {
        severity
        message
        timestamp
        type
      }
    }
  }
}`

const waterfallQuery = `
query WaterfallFailedTasks($options: WaterfallOptions!, $tasksOptions: TaskFilterOptions!) {
  waterfall(options: $options) {
    flattenedVersions {
      id
      branch
      startTime
      revision
      finishTime
      tasks(options: $tasksOptions) {
        data {
          id
          displayName
          status
        }
      }
    }
  }
}`

const projectsQuery = `
query Projects {
  projects {
    groupDisplayName
    projects {
      id
      displayName
      identifier
      enabled
      owner
      repo
      branch
    }
  }
}`

const taskFilesQuery = `
query TaskFiles($taskId: String!, $execution: Int!) {
  task(taskId: $taskId, execution: $execution) {
    id
    displayName
    buildVariant
    execution
    files {
      fileCount
      groupedFiles {
        taskName
        files {
          name
          link
        }
      }
    }
  }
}`
