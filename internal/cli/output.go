package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/raphaelgruber/evergreen-mcp-go/internal/models"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	failStyle    = lipgloss.NewStyle().Foreground(defaultTheme.Error).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAF00"))
	okStyle      = lipgloss.NewStyle().Foreground(defaultTheme.Success)
	dimStyle     = lipgloss.NewStyle().Foreground(defaultTheme.Hint)
	statusStyles = map[string]lipgloss.Style{
		models.PatchFailed:    failStyle,
		models.PatchSucceeded: okStyle,
		models.PatchStarted:   lipgloss.NewStyle().Foreground(defaultTheme.Status),
	}
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func styleStatus(status string) string {
	if s, ok := statusStyles[status]; ok {
		return s.Render(status)
	}
	return status
}

func styleSeverity(severity string) string {
	switch severity {
	case models.SeverityError:
		return failStyle.Render("ERR ")
	case models.SeverityWarning:
		return warnStyle.Render("WARN")
	default:
		return dimStyle.Render("INFO")
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func renderPatches(w io.Writer, list *models.PatchList) {
	if len(list.Patches) == 0 {
		fmt.Fprintln(w, "No patches found.")
		return
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Patches for %s (page %d):", list.UserID, list.Page)))
	fmt.Fprintln(w)
	for _, p := range list.Patches {
		fmt.Fprintf(w, "#%-5d %-10s %-16s %s  %s\n",
			p.PatchNumber, styleStatus(p.Status), formatTime(p.CreateTime), p.PatchID, p.Description)
	}
	if list.NextPage != nil {
		fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("\nMore patches: --page %d", *list.NextPage)))
	}
}

func renderReport(w io.Writer, r *models.FailedJobsReport) {
	p := r.PatchInfo
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Patch #%d %s", p.PatchNumber, p.PatchID)))
	if p.Description != "" {
		fmt.Fprintf(w, "  %s\n", p.Description)
	}
	fmt.Fprintf(w, "  status: %s  project: %s\n", styleStatus(p.Status), p.ProjectIdentifier)

	if r.VersionInfo == nil {
		fmt.Fprintln(w, "\nNo version has been created for this patch yet.")
		return
	}

	s := r.Summary
	fmt.Fprintf(w, "\n%d failed task(s), showing %d", s.TotalFailedTasks, s.ReturnedTasks)
	if len(s.FailedBuildVariants) > 0 {
		fmt.Fprintf(w, " across %d variant(s)", len(s.FailedBuildVariants))
	}
	if s.HasTimeouts {
		fmt.Fprint(w, ", "+warnStyle.Render("timeouts present"))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w)

	for _, t := range r.FailedTasks {
		fmt.Fprintf(w, "%s %s / %s  (%s)\n", failStyle.Render("✗"), t.BuildVariant, t.TaskName, t.Status)
		fmt.Fprintf(w, "    id: %s  execution: %d  finished: %s\n", t.TaskID, t.Execution, formatTime(t.FinishTime))
		if d := t.FailureDetails; d != nil && (d.FailingCommand != "" || d.Description != "") {
			fmt.Fprintf(w, "    failing: %s %s\n", d.FailingCommand, dimStyle.Render(d.Description))
		}
		if t.TestInfo.HasTestResults {
			fmt.Fprintf(w, "    tests: %d of %d failed\n", t.TestInfo.FailedTestCount, t.TestInfo.TotalTestCount)
		}
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("\nWarnings (%d):", len(r.Warnings))))
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  • %s %s: %s\n", warn.TaskID, warn.Operation, warn.Message)
		}
	}
}

func renderLogs(w io.Writer, logs *models.TaskLogs) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%s (%s), execution %d, %s logs",
		logs.TaskName, logs.TaskID, logs.Execution, logs.LogType)))
	if len(logs.Logs) == 0 {
		fmt.Fprintln(w, "No matching log lines.")
		return
	}
	for _, line := range logs.Logs {
		fmt.Fprintf(w, "%s %s\n", styleSeverity(line.Severity), line.Message)
	}
	if logs.Truncated {
		fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("\nShowing %d of %d lines, raise --max-lines for more", len(logs.Logs), logs.TotalLines)))
	}
}

func renderTests(w io.Writer, res *models.TestResults) {
	info := res.TaskInfo
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%s / %s (%s)", info.BuildVariant, info.TaskName, info.TaskID)))
	s := res.Summary
	fmt.Fprintf(w, "%d of %d tests (%s), %d failed\n\n", s.ReturnedTests, s.FilteredTestCount, s.FilterApplied, s.FailedTestsInResults)
	for _, t := range res.TestResults {
		mark := okStyle.Render("✓")
		if t.Status == models.TestFailed {
			mark = failStyle.Render("✗")
		}
		name := t.TestFile
		if name == "" {
			name = t.TestID
		}
		fmt.Fprintf(w, "%s %s  %.2fs\n", mark, name, t.Duration)
		if t.Logs != nil && t.Logs.URLParsley != "" {
			fmt.Fprintf(w, "    %s\n", dimStyle.Render(t.Logs.URLParsley))
		}
	}
}

func renderArtifacts(w io.Writer, a *models.TaskArtifacts) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%s / %s (%s), execution %d",
		a.BuildVariant, a.TaskName, a.TaskID, a.Execution)))
	if len(a.Artifacts) == 0 {
		if a.Filter == "" {
			fmt.Fprintln(w, "No artifacts uploaded.")
			return
		}
		fmt.Fprintf(w, "No artifacts match %q. Available (%d):\n", a.Filter, len(a.Available))
		for _, name := range a.Available {
			fmt.Fprintf(w, "  - %s\n", name)
		}
		return
	}
	for _, art := range a.Artifacts {
		fmt.Fprintf(w, "%-30s %s\n", art.Name, dimStyle.Render(art.URL))
	}
	if a.ArtifactCount < a.TotalArtifacts {
		fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("\n%d of %d artifacts match %q", a.ArtifactCount, a.TotalArtifacts, a.Filter)))
	}
}

func renderWaterfall(w io.Writer, r *models.WaterfallReport) {
	if len(r.Versions) == 0 {
		fmt.Fprintf(w, "%s: %s for %v\n", r.ProjectIdentifier, r.Summary.Note, r.VariantsQueried)
		for _, step := range r.Summary.SuggestedNextSteps {
			fmt.Fprintf(w, "  • %s\n", step)
		}
		return
	}
	v := r.Versions[0]
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%s %s (%s)", r.ProjectIdentifier, v.Revision, v.VersionID)))
	fmt.Fprintf(w, "started %s, %d failed task(s) on %v\n\n", formatTime(v.StartTime), v.FailedTaskCount, v.VariantsWithFailures)
	for _, t := range v.FailedTasks {
		fmt.Fprintf(w, "%s %s  %s  %s\n", failStyle.Render("✗"), t.TaskName, t.Status, dimStyle.Render(t.TaskID))
	}
}

func renderProjects(w io.Writer, projects []models.Project) {
	if len(projects) == 0 {
		fmt.Fprintln(w, "No projects found.")
		return
	}
	fmt.Fprintf(w, "Projects (%d):\n\n", len(projects))
	for _, p := range projects {
		disabled := ""
		if !p.Enabled {
			disabled = dimStyle.Render(" [disabled]")
		}
		fmt.Fprintf(w, "- %s  %s%s\n", p.Identifier, p.DisplayName, disabled)
	}
}
