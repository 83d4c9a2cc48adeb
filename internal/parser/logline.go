// Package parser classifies raw CI log lines into severity-tagged records.
//
// Classification is heuristic. A line that matches no known pattern is
// reported as info rather than dropped, so nothing disappears before callers
// apply their own filters.
package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/raphaelgruber/evergreen-mcp-go/internal/models"
)

// Log sources a line can come from.
const (
	SourceTask   = "task"
	SourceAgent  = "agent"
	SourceSystem = "system"
)

// LineContext is what is known about a line besides its text.
type LineContext struct {
	// Source is the log stream the line was read from (task, agent, system).
	Source string
	// Severity is the upstream severity of the enclosing entry, if any.
	Severity string
	// Type is the upstream entry type, if any.
	Type string
	// Timestamp is the enclosing entry's timestamp, used when the line has none.
	Timestamp *time.Time
}

var (
	// [2024/01/02 15:04:05.123] prefix used by Evergreen task logs.
	slashTimestampRE = regexp.MustCompile(`^\[(\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}(?:\.\d+)?)\]\s*`)
	// RFC3339, optionally bracketed.
	isoTimestampRE = regexp.MustCompile(`^\[?(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+-]\d{2}:?\d{2})?)\]?\s*`)
	// 2024-01-02 15:04:05(.123|,123), optionally bracketed.
	spaceTimestampRE = regexp.MustCompile(`^\[?(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(?:[.,]\d+)?)\]?\s*`)

	levelTagRE    = regexp.MustCompile(`(?i)\[(error|err|fatal|critical|crit|panic|severe|emergency|alert|warn|warning|info|notice|debug|trace)\]`)
	levelPrefixRE = regexp.MustCompile(`(?i)^(error|fatal|critical|panic|warn|warning|info|notice|debug)(?::|\s+-|\s*\|)`)
	levelKVRE     = regexp.MustCompile(`(?i)\blevel"?\s*[=:]\s*"?(error|fatal|critical|panic|warn|warning|info|debug|trace)\b`)
	priorityRE    = regexp.MustCompile(`\[P:\s*(\d{1,3})\]`)

	testFailureRE = regexp.MustCompile(strings.Join([]string{
		`^--- FAIL:`,
		`^FAIL(?:\s|:|$)`,
		`\.\.\. (?:FAIL|ERROR)\b`,
		`\[\s+FAILED\s+\]`,
		`^not ok \d+`,
		`AssertionError`,
		`Traceback \(most recent call last\)`,
		`^panic:`,
		`^FAILED\s`,
		`^E {3}`,
		`^=+ FAILURES =+`,
		`\b[1-9]\d* (?:failed|failing)\b`,
		`[✕✖✗]\s`,
	}, "|"))

	testOutputRE = regexp.MustCompile(strings.Join([]string{
		`^=== (?:RUN|PAUSE|CONT)\s`,
		`^--- (?:PASS|SKIP):`,
		`^(?:PASS|ok)(?:\s|$)`,
		`\[\s+(?:RUN|OK|PASSED|SKIPPED)\s+\]`,
		`\.\.\. (?:ok|skipped)\b`,
		`\[(?:js_test|cpp_unit_test|cpp_integration_test|jstestfuzz)(?::[^\]]*)?\]`,
		`\[executor(?::[^\]]*)?\]`,
		`\b\d+ (?:passed|passing|tests? run)\b`,
	}, "|"))

	// Leading bracketed tags such as "[info] " or "[2024/01/02 ...] ".
	leadingTagsRE = regexp.MustCompile(`^(?:\[[^\]]*\]\s*)+`)

	// Matches phrases that mention errors without reporting one.
	negatedErrorRE = regexp.MustCompile(`(?i)\b(?:0|no|zero|without) (?:errors?|failures?|failed|exceptions?)\b|\b(?:errors?|failures?|failed)\s*[:=]\s*0\b`)
	errorWordRE    = regexp.MustCompile(`(?i)\b(?:error|errors|exception|fatal|failed|failure|failures|panic|segfault|segmentation fault|traceback|timed out|timeout exceeded)\b`)
	warningWordRE  = regexp.MustCompile(`(?i)\b(?:warn|warning|warnings|deprecated|deprecation)\b`)
)

// ClassifyLine classifies a single line of log text.
func ClassifyLine(text string, lc LineContext) models.LogLine {
	message, ts := splitTimestamp(strings.TrimRight(text, "\r\n"))
	if ts == nil {
		ts = lc.Timestamp
	}

	body := leadingTagsRE.ReplaceAllString(message, "")
	isTestFailure := testFailureRE.MatchString(message) || testFailureRE.MatchString(body)
	isTestOutput := isTestFailure || testOutputRE.MatchString(message) || testOutputRE.MatchString(body)

	return models.LogLine{
		Severity:  classifySeverity(message, isTestFailure, NormalizeSeverity(lc.Severity)),
		Message:   message,
		Timestamp: ts,
		Type:      classifyType(lc, isTestOutput),
	}
}

// classifySeverity applies the marker precedence: explicit level tags, then
// priority tags, test-framework failures, upstream error/warning hints and
// finally keyword heuristics. A test failure outranks an info or debug tag.
func classifySeverity(message string, isTestFailure bool, hint string) string {
	if sev, ok := levelFromTags(message); ok && (sev != models.SeverityInfo || !isTestFailure) {
		return sev
	}
	if isTestFailure {
		return models.SeverityError
	}
	if hint == models.SeverityError || hint == models.SeverityWarning {
		return hint
	}

	cleaned := negatedErrorRE.ReplaceAllString(message, "")
	if errorWordRE.MatchString(cleaned) {
		return models.SeverityError
	}
	if warningWordRE.MatchString(cleaned) {
		return models.SeverityWarning
	}
	return models.SeverityInfo
}

// levelFromTags reads structural level markers: [ERROR], "WARN:", level=info, [P: 70].
func levelFromTags(message string) (string, bool) {
	if m := levelTagRE.FindStringSubmatch(message); m != nil {
		return levelWord(m[1]), true
	}
	if m := levelPrefixRE.FindStringSubmatch(message); m != nil {
		return levelWord(m[1]), true
	}
	if m := levelKVRE.FindStringSubmatch(message); m != nil {
		return levelWord(m[1]), true
	}
	if m := priorityRE.FindStringSubmatch(message); m != nil {
		p, err := strconv.Atoi(m[1])
		if err == nil {
			// Evergreen priorities: 70 error, 60 warning, 50 and below informational.
			switch {
			case p >= 70:
				return models.SeverityError, true
			case p >= 60:
				return models.SeverityWarning, true
			default:
				return models.SeverityInfo, true
			}
		}
	}
	return "", false
}

func levelWord(w string) string {
	switch strings.ToLower(w) {
	case "error", "err", "fatal", "critical", "crit", "panic", "severe", "emergency", "alert":
		return models.SeverityError
	case "warn", "warning":
		return models.SeverityWarning
	default:
		return models.SeverityInfo
	}
}

// NormalizeSeverity maps upstream severity strings (E, W, I, "error", ...) onto
// the classifier's severities. Unrecognized or empty values are unknown.
func NormalizeSeverity(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "e", "error", "err", "f", "fatal", "critical", "c", "emergency", "alert", "a":
		return models.SeverityError
	case "w", "warn", "warning":
		return models.SeverityWarning
	case "i", "info", "d", "debug", "n", "notice", "t", "trace":
		return models.SeverityInfo
	default:
		return models.SeverityUnknown
	}
}

func classifyType(lc LineContext, isTestOutput bool) string {
	switch {
	case isTestOutput || strings.Contains(strings.ToLower(lc.Type), "test"):
		return models.LineTypeTest
	case lc.Source == SourceAgent || lc.Source == SourceSystem:
		return models.LineTypeSystem
	default:
		return models.LineTypeGeneric
	}
}

var timestampLayouts = []struct {
	re      *regexp.Regexp
	layouts []string
}{
	{slashTimestampRE, []string{"2006/01/02 15:04:05.999999999", "2006/01/02 15:04:05"}},
	{isoTimestampRE, []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999Z0700", "2006-01-02T15:04:05.999999999"}},
	{spaceTimestampRE, []string{"2006-01-02 15:04:05.999999999", "2006-01-02 15:04:05"}},
}

// splitTimestamp removes a recognized leading timestamp and returns the rest of
// the line together with the parsed time. Unparseable prefixes are left in place.
func splitTimestamp(line string) (string, *time.Time) {
	for _, tl := range timestampLayouts {
		loc := tl.re.FindStringSubmatchIndex(line)
		if loc == nil {
			continue
		}
		raw := strings.Replace(line[loc[2]:loc[3]], ",", ".", 1)
		for _, layout := range tl.layouts {
			if ts, err := time.Parse(layout, raw); err == nil {
				ts = ts.UTC()
				return line[loc[1]:], &ts
			}
		}
	}
	return line, nil
}

// SplitLines splits a multi-line message into lines, dropping blank ones.
func SplitLines(message string) []string {
	raw := strings.Split(strings.ReplaceAll(message, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}
