package cli

import (
	"context"
	"fmt"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"

	"github.com/raphaelgruber/evergreen-mcp-go/internal/models"
	"github.com/raphaelgruber/evergreen-mcp-go/internal/service"
)

// Theme holds the color scheme for the progress display.
type Theme struct {
	Status     lipgloss.Color
	Success    lipgloss.Color
	Error      lipgloss.Color
	Hint       lipgloss.Color
	ProgressBg lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Status:     lipgloss.Color("#5FAFD7"), // light blue
	Success:    lipgloss.Color("#00D787"), // green
	Error:      lipgloss.Color("#FF005F"), // red
	Hint:       lipgloss.Color("#6C6C6C"), // dim gray
	ProgressBg: lipgloss.Color("#3A3A3A"), // dark gray
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// analyzer is the part of the failure correlator the progress UI drives.
type analyzer interface {
	Analyze(ctx context.Context, opts service.AnalyzeOptions) (*models.FailedJobsReport, error)
}

// enrichProgressMsg reports how many failed tasks have been enriched.
type enrichProgressMsg struct {
	done  int
	total int
}

// analyzeDoneMsg carries the finished report.
type analyzeDoneMsg struct {
	report *models.FailedJobsReport
	err    error
}

// progressModel is the bubbletea model for patch analysis progress.
type progressModel struct {
	patchID  string
	done     int
	total    int
	progress progress.Model
	theme    Theme
	report   *models.FailedJobsReport
	err      error
	finished bool
	quitting bool
}

func newProgressModel(patchID string) progressModel {
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)

	return progressModel{
		patchID:  patchID,
		progress: prog,
		theme:    defaultTheme,
	}
}

func (m progressModel) Init() tea.Cmd {
	return m.progress.Init()
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}

	case enrichProgressMsg:
		m.done = msg.done
		m.total = msg.total
		return m, nil

	case analyzeDoneMsg:
		m.report = msg.report
		m.err = msg.err
		m.finished = true
		return m, tea.Quit

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m progressModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m progressModel) renderContent() string {
	if m.finished || m.quitting {
		return m.finalView()
	}

	status := m.theme.statusStyle().Render("[analyzing]")
	if m.total == 0 {
		return fmt.Sprintf("%s resolving patch %s...\n", status, m.patchID)
	}

	pct := float64(m.done) / float64(m.total)
	counts := fmt.Sprintf("%d/%d tasks", m.done, m.total)
	hint := m.theme.hintStyle().Render("Press q to cancel")

	return fmt.Sprintf("%s %s %s\n%s\n", status, m.progress.ViewAs(pct), counts, hint)
}

func (m progressModel) finalView() string {
	switch {
	case m.quitting:
		return m.theme.hintStyle().Render("Analysis cancelled.") + "\n"
	case m.err != nil:
		return m.theme.errorStyle().Render("✗ Analysis failed") + "\n"
	case m.total > 0:
		return m.theme.completedStyle().Render(fmt.Sprintf("✓ Collected test counts for %d tasks", m.total)) + "\n\n"
	default:
		return ""
	}
}

// RunAnalyzeProgress analyzes a patch while rendering enrichment progress.
// It returns a nil report and nil error when the user cancels.
func RunAnalyzeProgress(ctx context.Context, a analyzer, opts service.AnalyzeOptions) (*models.FailedJobsReport, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newProgressModel(opts.PatchID))

	go func() {
		opts.Progress = func(done, total int) {
			p.Send(enrichProgressMsg{done: done, total: total})
		}
		report, err := a.Analyze(ctx, opts)
		p.Send(analyzeDoneMsg{report: report, err: err})
	}()

	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("progress UI error: %w", err)
	}

	m, ok := finalModel.(progressModel)
	if !ok || m.quitting {
		return nil, nil
	}
	return m.report, m.err
}
