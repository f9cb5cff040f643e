package tui

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"tasnim.dev/aws-netdoc/internal/aws/vpc"
	"tasnim.dev/aws-netdoc/internal/pipeline"
	"tasnim.dev/aws-netdoc/internal/report"
	"tasnim.dev/aws-netdoc/internal/tui/theme"
)

// Messages
type stepMsg struct{ res pipeline.StepResult }
type refreshMsg struct{ res pipeline.StepResult }
type savedMsg struct {
	path string
	err  error
}

// Saver persists a finished report and returns where it went.
type Saver func(res *pipeline.Result) (string, error)

// Model drives a pipeline step by step and shows its progress checklist.
type Model struct {
	ctx     context.Context
	pipe    *pipeline.Pipeline
	save    Saver
	text    report.Strings
	region  string
	spinner spinner.Model
	width   int
	height  int

	saving     bool
	refreshing bool
	refresh    pipeline.Step
	savedPath  string
	saveErr    error
}

// NewModel creates a new TUI model. save may be nil.
func NewModel(ctx context.Context, pipe *pipeline.Pipeline, save Saver, lang report.Language, region string) Model {
	return Model{
		ctx:     ctx,
		pipe:    pipe,
		save:    save,
		text:    report.For(lang),
		region:  region,
		spinner: theme.NewSpinner(),
		width:   80,
		height:  24,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchStep())
}

// fetchStep runs the remote half of the current step off the UI goroutine.
func (m Model) fetchStep() tea.Cmd {
	ctx, pipe, step := m.ctx, m.pipe, m.pipe.Cursor()
	return func() tea.Msg {
		return stepMsg{res: pipe.Fetch(ctx, step)}
	}
}

// refreshStep refetches one finished step off the UI goroutine.
func (m Model) refreshStep(step pipeline.Step) tea.Cmd {
	ctx, pipe := m.ctx, m.pipe
	return func() tea.Msg {
		return refreshMsg{res: pipe.Fetch(ctx, step)}
	}
}

// idle reports whether the pipeline has finished and no work is in flight.
func (m Model) idle() bool {
	return m.pipe.Done() && !m.saving && !m.refreshing
}

func (m Model) saveReport() tea.Cmd {
	save, res := m.save, m.pipe.Result()
	if save == nil || res == nil {
		return nil
	}
	return func() tea.Msg {
		path, err := save(res)
		return savedMsg{path: path, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			if !m.idle() {
				return m, nil
			}
			m.pipe.Reset()
			m.savedPath = ""
			m.saveErr = nil
			return m, tea.Batch(m.spinner.Tick, m.fetchStep())
		case "1", "2", "3", "4", "5", "6", "7":
			if !m.idle() {
				return m, nil
			}
			m.refreshing = true
			m.refresh = pipeline.Step(msg.String()[0] - '1')
			return m, tea.Batch(m.spinner.Tick, m.refreshStep(m.refresh))
		}

	case refreshMsg:
		m.refreshing = false
		if !m.pipe.Reapply(msg.res) {
			return m, nil
		}
		m.savedPath = ""
		m.saveErr = nil
		m.saving = m.save != nil
		return m, m.saveReport()

	case stepMsg:
		if !m.pipe.Apply(msg.res) {
			return m, nil
		}
		if m.pipe.Cursor() < pipeline.StepDone {
			return m, m.fetchStep()
		}
		// The terminal step is local work.
		m.pipe.Step(m.ctx)
		m.saving = m.save != nil
		return m, m.saveReport()

	case savedMsg:
		m.saving = false
		m.savedPath = msg.path
		m.saveErr = msg.err
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if m.pipe.Done() && !m.refreshing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) renderHeader() string {
	g := m.pipe.Graph()
	name := m.pipe.VPCID()
	if g.Network != nil {
		name = vpc.DisplayName(g.Network.Name, g.VPCID)
	}
	parts := []string{titleStyle.Render(m.text.Loading), "   ", labelStyle.Render("vpc: ") + name}
	if m.region != "" {
		parts = append(parts, "   ", labelStyle.Render("region: ")+m.region)
	}
	if g.Network != nil && g.Network.State != "" {
		parts = append(parts, "   ", theme.RenderStatus(g.Network.State))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// renderChecklist shows one line per step with its outcome marker.
func (m Model) renderChecklist() string {
	cursor := m.pipe.Cursor()
	progress := m.pipe.Progress()
	var b strings.Builder
	for i := 0; i <= int(pipeline.StepDone); i++ {
		step := pipeline.Step(i)
		name := m.text.StepNames[i]
		var line string
		switch {
		case m.refreshing && step == m.refresh:
			line = m.spinner.View() + " " + currentStyle.Render(name)
		case step == pipeline.StepDone && m.pipe.Done():
			line = doneStyle.Render("✓ " + name)
		case step < cursor && progress.Done(step):
			line = doneStyle.Render("✓ " + name)
		case step < cursor:
			line = failedStyle.Render("✗ "+name) + labelStyle.Render("  ("+m.text.Failed+")")
		case step == cursor:
			line = m.spinner.View() + " " + currentStyle.Render(name)
		default:
			line = pendingStyle.Render("○ " + name)
		}
		b.WriteString(line)
		if i < int(pipeline.StepDone) {
			b.WriteString("\n")
		}
	}
	return checklistStyle.Render(b.String())
}

func (m Model) renderStatus() string {
	res := m.pipe.Result()
	switch {
	case res == nil:
		return labelStyle.Render(fmt.Sprintf("%d/%d", m.pipe.Progress().Count(), pipeline.FetchSteps))
	case m.saveErr != nil:
		return failedStyle.Render(fmt.Sprintf("Error: %v", m.saveErr))
	case res.Unchanged:
		return unchangedStyle.Render(m.text.Unchanged)
	case m.savedPath != "":
		return doneStyle.Render(fmt.Sprintf(m.text.Saved, m.savedPath))
	}
	return ""
}

func (m Model) View() tea.View {
	help := m.text.HelpBusy
	if m.idle() {
		help = m.text.HelpDone
	}
	content := dashboardStyle.Render(
		headerStyle.Render(m.renderHeader()) + "\n\n" +
			m.renderChecklist() + "\n\n" +
			m.renderStatus() + "\n" +
			helpStyle.Render(help),
	)
	return tea.NewView(content)
}
