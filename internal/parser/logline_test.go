package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/evergreen-mcp-go/internal/models"
)

func TestClassifyLineSeverity(t *testing.T) {
	tests := []struct {
		name string
		line string
		hint string
		want string
	}{
		{"bracket error tag", "[ERROR] connection refused", "", models.SeverityError},
		{"bracket warn tag", "[WARN] retrying request", "", models.SeverityWarning},
		{"level prefix", "Error: the file does not exist", "", models.SeverityError},
		{"key value level", `time=2024-01-02 level=warn msg="slow"`, "", models.SeverityWarning},
		{"json level", `{"level":"error","msg":"boom"}`, "", models.SeverityError},
		{"info tag beats keyword", "[INFO] retrying failed upload", "", models.SeverityInfo},
		{"evergreen error priority", "[P: 70] command failed", "", models.SeverityError},
		{"evergreen info priority", "[P: 40] running command 'shell.exec'", "", models.SeverityInfo},
		{"go test failure", "--- FAIL: TestWidget (0.01s)", "", models.SeverityError},
		{"gtest failure", "[  FAILED  ] WidgetTest.Spins", "", models.SeverityError},
		{"unittest failure header", "FAIL: test_login (tests.test_auth.AuthTests)", "", models.SeverityError},
		{"unittest verbose failure", "test_login (tests.test_auth.AuthTests) ... FAIL", "", models.SeverityError},
		{"unittest verbose error", "test_logout (tests.test_auth.AuthTests) ... ERROR", "", models.SeverityError},
		{"unittest verbose pass", "test_logout (tests.test_auth.AuthTests) ... ok", "", models.SeverityInfo},
		{"test failure beats info tag", "[info] --- FAIL: TestFoo (0.01s)", "", models.SeverityError},
		{"test failure beats debug tag", "[DEBUG] FAIL: test_login (tests.test_auth.AuthTests)", "", models.SeverityError},
		{"warn tag still wins over test failure", "[WARN] --- FAIL: TestFlaky (0.01s)", "", models.SeverityWarning},
		{"tap failure", "not ok 3 - widget spins", "", models.SeverityError},
		{"python traceback", "Traceback (most recent call last):", "", models.SeverityError},
		{"pytest summary", "=== 2 failed, 10 passed in 1.2s ===", "", models.SeverityError},
		{"error keyword", "compilation error in widget.go", "", models.SeverityError},
		{"compound exception name is not a keyword", "java.lang.NullPointerException thrown", "", models.SeverityInfo},
		{"exception word", "uncaught exception in worker", "", models.SeverityError},
		{"warning keyword", "deprecated option --foo", "", models.SeverityWarning},
		{"zero errors", "Build finished with 0 errors", "", models.SeverityInfo},
		{"no errors", "lint passed: no errors found", "", models.SeverityInfo},
		{"errors colon zero", "errors: 0", "", models.SeverityInfo},
		{"zero errors with warnings", "0 errors, 3 warnings", "", models.SeverityWarning},
		{"camel case is not a keyword", "=== RUN   TestErrorHandling", "", models.SeverityInfo},
		{"upstream error hint", "exiting with status 2", "E", models.SeverityError},
		{"upstream warning hint", "disk almost full", "W", models.SeverityWarning},
		{"upstream info hint does not mask keyword", "task failed", "I", models.SeverityError},
		{"plain line", "cloning repository", "", models.SeverityInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyLine(tt.line, LineContext{Source: SourceTask, Severity: tt.hint})
			assert.Equal(t, tt.want, got.Severity)
		})
	}
}

func TestClassifyLineType(t *testing.T) {
	tests := []struct {
		name string
		line string
		lc   LineContext
		want string
	}{
		{"go test run", "=== RUN   TestWidget", LineContext{Source: SourceTask}, models.LineTypeTest},
		{"go test failure", "--- FAIL: TestWidget (0.01s)", LineContext{Source: SourceTask}, models.LineTypeTest},
		{"unittest failure header", "FAIL: test_login (tests.test_auth.AuthTests)", LineContext{Source: SourceTask}, models.LineTypeTest},
		{"unittest verbose failure", "test_login (tests.test_auth.AuthTests) ... FAIL", LineContext{Source: SourceTask}, models.LineTypeTest},
		{"tagged go test failure", "[info] --- FAIL: TestFoo (0.01s)", LineContext{Source: SourceTask}, models.LineTypeTest},
		{"resmoke output", "[js_test:core] assert.eq failed", LineContext{Source: SourceTask}, models.LineTypeTest},
		{"upstream test type", "loading data", LineContext{Source: SourceTask, Type: "test"}, models.LineTypeTest},
		{"agent line", "heartbeat sent", LineContext{Source: SourceAgent}, models.LineTypeSystem},
		{"system line", "cpu 93%", LineContext{Source: SourceSystem}, models.LineTypeSystem},
		{"test marker wins over agent source", "--- PASS: TestWidget", LineContext{Source: SourceAgent}, models.LineTypeTest},
		{"task line", "cloning repository", LineContext{Source: SourceTask}, models.LineTypeGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyLine(tt.line, tt.lc).Type)
		})
	}
}

func TestClassifyLineTimestamp(t *testing.T) {
	fallback := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		line        string
		wantTime    time.Time
		wantMessage string
	}{
		{
			name:        "evergreen slash format",
			line:        "[2024/03/04 10:11:12.500] [ERROR] boom",
			wantTime:    time.Date(2024, 3, 4, 10, 11, 12, 500_000_000, time.UTC),
			wantMessage: "[ERROR] boom",
		},
		{
			name:        "rfc3339",
			line:        "2024-03-04T10:11:12Z starting",
			wantTime:    time.Date(2024, 3, 4, 10, 11, 12, 0, time.UTC),
			wantMessage: "starting",
		},
		{
			name:        "rfc3339 with offset",
			line:        "2024-03-04T12:11:12+02:00 starting",
			wantTime:    time.Date(2024, 3, 4, 10, 11, 12, 0, time.UTC),
			wantMessage: "starting",
		},
		{
			name:        "space separated with comma millis",
			line:        "2024-03-04 10:11:12,250 WARN: low disk",
			wantTime:    time.Date(2024, 3, 4, 10, 11, 12, 250_000_000, time.UTC),
			wantMessage: "WARN: low disk",
		},
		{
			name:        "no timestamp falls back to entry",
			line:        "plain text",
			wantTime:    fallback,
			wantMessage: "plain text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyLine(tt.line, LineContext{Source: SourceTask, Timestamp: &fallback})
			require.NotNil(t, got.Timestamp)
			assert.True(t, tt.wantTime.Equal(*got.Timestamp), "got %s", got.Timestamp)
			assert.Equal(t, tt.wantMessage, got.Message)
		})
	}
}

func TestClassifyLineNoTimestamp(t *testing.T) {
	got := ClassifyLine("hello", LineContext{})
	assert.Nil(t, got.Timestamp)
	assert.Equal(t, "hello", got.Message)
}

func TestClassifyLineIsPure(t *testing.T) {
	lc := LineContext{Source: SourceAgent, Severity: "W"}
	first := ClassifyLine("[2024/03/04 10:11:12] disk warning", lc)
	second := ClassifyLine("[2024/03/04 10:11:12] disk warning", lc)
	assert.Equal(t, first, second)
}

func TestNormalizeSeverity(t *testing.T) {
	assert.Equal(t, models.SeverityError, NormalizeSeverity("E"))
	assert.Equal(t, models.SeverityError, NormalizeSeverity("fatal"))
	assert.Equal(t, models.SeverityWarning, NormalizeSeverity(" warning "))
	assert.Equal(t, models.SeverityInfo, NormalizeSeverity("D"))
	assert.Equal(t, models.SeverityUnknown, NormalizeSeverity(""))
	assert.Equal(t, models.SeverityUnknown, NormalizeSeverity("loud"))
}

func TestSplitLines(t *testing.T) {
	got := SplitLines("first\r\n\n  \nsecond\nthird\n")
	assert.Equal(t, []string{"first", "second", "third"}, got)
	assert.Empty(t, SplitLines("\n\n"))
}
