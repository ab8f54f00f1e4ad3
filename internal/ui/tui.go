package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Guettaf-hossam/SuperDiagnosticTool/internal/diagnose"
	"github.com/Guettaf-hossam/SuperDiagnosticTool/internal/executor"
	"github.com/Guettaf-hossam/SuperDiagnosticTool/internal/report"
	"github.com/Guettaf-hossam/SuperDiagnosticTool/internal/telemetry"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FF9F")).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888")).
			Italic(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7DF9FF")).
			Bold(true)

	scriptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#3fb950"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF4444")).
			Bold(true)

	confirmStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#555"))
)

type uiState int

const (
	stateProblemInput uiState = iota
	stateDepthSelect
	stateScanning
	stateDiagnosing
	stateReview
	stateExecuting
	stateDone
)

// Async messages
type scanDoneMsg struct{ snapshot telemetry.Snapshot }

type diagnoseDoneMsg struct {
	outcome    *diagnose.Outcome
	reportPath string
	reportErr  error
}

type execDoneMsg struct {
	result *executor.Result
	err    error
}

// Deps bundles the run's collaborators; the model owns no pipeline logic.
type Deps struct {
	Collector *telemetry.Collector
	Pipeline  *diagnose.Pipeline
	Exec      *executor.Controller
	ReportDir string
	RunID     string
}

// Model drives one diagnostic run through the Bubble Tea loop.
type Model struct {
	deps Deps

	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model

	state       uiState
	userProblem string
	depth       telemetry.ScanDepth
	snapshot    telemetry.Snapshot
	outcome     *diagnose.Outcome
	reportPath  string
	execResult  *executor.Result
	execErr     error
	status      string
	width       int
	height      int
	ready       bool
}

func NewModel(deps Deps) Model {
	ta := textarea.New()
	ta.Placeholder = "Describe the problem you are facing... (empty = general health check)"
	ta.Focus()
	ta.CharLimit = 500
	ta.SetHeight(2)
	ta.ShowLineNumbers = false

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return Model{
		deps:     deps,
		textarea: ta,
		viewport: vp,
		spinner:  sp,
		state:    stateProblemInput,
		status:   "Ready",
	}
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width - 2
		m.viewport.Height = msg.Height - 8
		m.textarea.SetWidth(msg.Width - 4)
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case scanDoneMsg:
		m.snapshot = msg.snapshot
		m.state = stateDiagnosing
		m.status = "Transmitting telemetry to the model..."
		return m, tea.Batch(m.spinner.Tick, m.diagnoseCmd())

	case diagnoseDoneMsg:
		m.outcome = msg.outcome
		m.reportPath = msg.reportPath
		if msg.reportErr != nil {
			m.status = fmt.Sprintf("Report write failed: %v", msg.reportErr)
		} else {
			m.status = "Diagnosis ready"
		}
		m.state = stateReview
		m.viewport.SetContent(m.reviewContent())
		m.viewport.GotoTop()
		return m, nil

	case execDoneMsg:
		m.execResult = msg.result
		m.execErr = msg.err
		m.state = stateDone
		m.viewport.SetContent(m.resultContent())
		m.viewport.GotoTop()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.updateChildren(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	switch m.state {
	case stateProblemInput:
		if msg.Type == tea.KeyEnter {
			m.userProblem = strings.TrimSpace(m.textarea.Value())
			if m.userProblem == "" {
				m.userProblem = "General Health Check"
			}
			m.state = stateDepthSelect
			return m, nil
		}

	case stateDepthSelect:
		switch msg.String() {
		case "1":
			m.depth = telemetry.QuickScan
		case "2":
			m.depth = telemetry.DeepScan
		case "3":
			m.depth = telemetry.CompleteScan
		default:
			return m, nil
		}
		m.state = stateScanning
		m.status = "Scanning system layers..."
		return m, tea.Batch(m.spinner.Tick, m.scanCmd())

	case stateReview:
		if m.outcome != nil && m.outcome.Remediable() {
			switch msg.String() {
			case "y", "Y":
				m.state = stateExecuting
				m.status = "Creating restore point and executing..."
				return m, tea.Batch(m.spinner.Tick, m.execCmd())
			case "n", "N":
				// Declining is a no-op termination at the confirmation
				// boundary; nothing has started yet.
				m.execResult = nil
				m.state = stateDone
				m.viewport.SetContent(m.resultContent())
				return m, nil
			}
		} else if msg.String() == "q" || msg.Type == tea.KeyEnter {
			m.state = stateDone
			m.viewport.SetContent(m.resultContent())
			return m, nil
		}

	case stateDone:
		if msg.String() == "q" || msg.Type == tea.KeyEnter {
			return m, tea.Quit
		}
	}

	return m.updateChildren(msg)
}

func (m Model) updateChildren(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	if m.state == stateProblemInput {
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}
	if m.state == stateReview || m.state == stateDone {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// scanCmd collects telemetry off the UI goroutine.
func (m Model) scanCmd() tea.Cmd {
	collector := m.deps.Collector
	depth := m.depth
	return func() tea.Msg {
		snapshot := collector.Collect(context.Background(), depth, nil)
		return scanDoneMsg{snapshot: snapshot}
	}
}

// diagnoseCmd runs the model call plus parse/sanitize/validate, then writes
// the HTML report. Everything user- or model-controlled passes through the
// report sanitizers before embedding.
func (m Model) diagnoseCmd() tea.Cmd {
	deps := m.deps
	snapshot := m.snapshot
	problem := m.userProblem
	deps.Pipeline.Builder.Categories = telemetry.CategoriesFor(m.depth)
	return func() tea.Msg {
		outcome := deps.Pipeline.Run(context.Background(), snapshot, problem)

		analysis := report.SanitizeModelText(outcome.Diagnosis.AnalysisText)
		if outcome.Diagnosis.AnalysisText == "" {
			analysis = report.Fragment("<p>No AI analysis available for this run.</p>")
		}

		path, err := report.WriteHTML(deps.ReportDir, deps.RunID, snapshot,
			analysis, report.EscapeUserText(problem))

		return diagnoseDoneMsg{outcome: outcome, reportPath: path, reportErr: err}
	}
}

func (m Model) execCmd() tea.Cmd {
	deps := m.deps
	outcome := m.outcome
	return func() tea.Msg {
		result, err := deps.Exec.Execute(context.Background(), outcome.Script, outcome.Safety)
		return execDoneMsg{result: result, err: err}
	}
}

// reviewContent renders the diagnosis, the sanitized script and the safety
// report for user review before the execution decision.
func (m Model) reviewContent() string {
	var sb strings.Builder

	if m.reportPath != "" {
		sb.WriteString(okStyle.Render("Report written: "+m.reportPath) + "\n\n")
	}

	d := m.outcome.Diagnosis
	if d.AnalysisText == "" {
		sb.WriteString(errorStyle.Render("No AI analysis available.") + "\n")
		sb.WriteString("Telemetry was still collected and saved to the report.\n")
	} else {
		sb.WriteString(titleStyle.Render("AI Analysis") + "\n")
		sb.WriteString(htmlToText(d.AnalysisText) + "\n")
	}

	if m.outcome.Script == "" {
		sb.WriteString("\n" + statusStyle.Render("No remediation script was offered.") + "\n")
		return sb.String()
	}

	sb.WriteString("\n" + titleStyle.Render("Remediation Script (sanitized)") + "\n")
	sb.WriteString(scriptStyle.Render(m.outcome.Script) + "\n")

	if !m.outcome.Safety.Passed {
		sb.WriteString("\n" + errorStyle.Render("SAFETY VIOLATIONS, execution blocked:") + "\n")
		for _, v := range m.outcome.Safety.Violations {
			sb.WriteString(fmt.Sprintf("  [%s] %s\n      %s\n", v.Rule, v.Detail, v.Line))
		}
	} else {
		sb.WriteString("\n" + okStyle.Render("All safety checks passed.") + "\n")
	}

	return sb.String()
}

// resultContent renders the execution result (or its absence) plus the
// verification summary. Results are always shown, success or failure.
func (m Model) resultContent() string {
	var sb strings.Builder

	var analysis report.Fragment
	if m.outcome != nil {
		analysis = report.SanitizeModelText(m.outcome.Diagnosis.AnalysisText)
	}

	switch {
	case m.execErr != nil:
		sb.WriteString(errorStyle.Render("Execution error: "+m.execErr.Error()) + "\n\n")
	case m.execResult != nil:
		if m.execResult.RestorePointID != "" {
			sb.WriteString(okStyle.Render("Restore point: "+m.execResult.RestorePointID) + "\n")
		} else if m.execResult.RestorePointErr != "" {
			sb.WriteString(confirmStyle.Render("Restore point failed: "+m.execResult.RestorePointErr) + "\n")
		}
		if m.execResult.ExitCode == 0 {
			sb.WriteString(okStyle.Render("REMEDIATION SUCCESSFUL") + "\n")
		} else {
			sb.WriteString(errorStyle.Render(fmt.Sprintf("REMEDIATION COMPLETED WITH WARNINGS (code %d)", m.execResult.ExitCode)) + "\n")
		}
		if out := strings.TrimSpace(m.execResult.Stdout); out != "" {
			sb.WriteString("\n" + out + "\n")
		}
		if errOut := strings.TrimSpace(m.execResult.Stderr); errOut != "" {
			sb.WriteString("\n" + errorStyle.Render(errOut) + "\n")
		}
	default:
		sb.WriteString(statusStyle.Render("Script execution skipped.") + "\n")
	}

	sb.WriteString("\n" + report.BuildVerification(analysis, m.execResult).Render() + "\n")
	return sb.String()
}

// htmlToText gives a rough terminal rendering of the HTML analysis.
func htmlToText(s string) string {
	replacer := strings.NewReplacer(
		"<h3>", "\n== ", "</h3>", " ==\n",
		"<ul>", "", "</ul>", "",
		"<li>", "  • ", "</li>", "\n",
		"<p>", "", "</p>", "\n",
		"<br>", "\n",
	)
	return strings.TrimSpace(replacer.Replace(s))
}

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("AI WINDOWS DIAGNOSTIC TOOL") + "\n\n")

	switch m.state {
	case stateProblemInput:
		sb.WriteString(promptStyle.Render("Describe the problem you are facing:") + "\n")
		sb.WriteString(m.textarea.View() + "\n")
		sb.WriteString(helpStyle.Render("enter: continue • ctrl+c: quit"))

	case stateDepthSelect:
		sb.WriteString(promptStyle.Render("Select scan mode:") + "\n")
		sb.WriteString("  [1] Quick Scan (CPU, RAM, basic info)\n")
		sb.WriteString("  [2] Deep Scan (network, logs, security, bluetooth, process audit)\n")
		sb.WriteString("  [3] Complete System Scan (everything + disk, GPU, startup)\n")
		sb.WriteString(helpStyle.Render("press 1/2/3 • ctrl+c: quit"))

	case stateScanning, stateDiagnosing, stateExecuting:
		sb.WriteString(m.spinner.View() + " " + statusStyle.Render(m.status))

	case stateReview:
		sb.WriteString(m.viewport.View() + "\n")
		if m.outcome != nil && m.outcome.Remediable() {
			sb.WriteString(confirmStyle.Render("EXECUTE REMEDIATION SCRIPT? (y/n)"))
		} else {
			sb.WriteString(helpStyle.Render("enter: continue • ↑/↓: scroll"))
		}

	case stateDone:
		sb.WriteString(m.viewport.View() + "\n")
		sb.WriteString(helpStyle.Render("q: quit • ↑/↓: scroll"))
	}

	return sb.String()
}
