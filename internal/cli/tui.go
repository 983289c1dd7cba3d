package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"

	"github.com/kelvinchanwh/distillation-optimizer/pkg/optimizer"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/pipeline"
)

// historyRows is how many recent iterations the live view keeps.
const historyRows = 12

var (
	tuiHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	tuiCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	tuiDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// Messages
// =============================================================================

type progressMsg optimizer.Progress

type doneMsg struct {
	report *optimizer.Report
	err    error
}

type tickMsg time.Time

// =============================================================================
// OptimizeModel - Live optimization view
// =============================================================================

// OptimizeModel is the bubbletea model that follows a running optimization.
type OptimizeModel struct {
	Name    string
	Mode    string
	History []optimizer.Progress
	Best    float64 // lowest successful TAC seen, 0 before the first
	Trials  int
	Failed  int

	Report *optimizer.Report
	Err    error

	start    time.Time
	now      time.Time
	frame    int
	stopping bool
	cancel   context.CancelFunc
	updates  <-chan tea.Msg
}

// NewOptimizeModel creates a model reading updates until a done message
// arrives. cancel is called when the user quits.
func NewOptimizeModel(name, mode string, updates <-chan tea.Msg, cancel context.CancelFunc) OptimizeModel {
	now := time.Now()
	return OptimizeModel{
		Name:    name,
		Mode:    mode,
		start:   now,
		now:     now,
		cancel:  cancel,
		updates: updates,
	}
}

func waitFor(updates <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg { return <-updates }
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m OptimizeModel) Init() tea.Cmd {
	return tea.Batch(waitFor(m.updates), tick())
}

func (m OptimizeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			// The run returns through a done message once it sees the
			// cancelled context.
			if !m.stopping && m.cancel != nil {
				m.cancel()
			}
			m.stopping = true
		}
		return m, nil

	case progressMsg:
		p := optimizer.Progress(msg)
		m.Trials += p.Evaluations
		if p.Err != nil {
			m.Failed++
		} else if m.Best == 0 || p.TAC < m.Best {
			m.Best = p.TAC
		}
		m.History = append(m.History, p)
		if len(m.History) > historyRows {
			m.History = m.History[len(m.History)-historyRows:]
		}
		return m, waitFor(m.updates)

	case doneMsg:
		m.Report, m.Err = msg.report, msg.err
		return m, tea.Quit

	case tickMsg:
		m.now = time.Time(msg)
		m.frame++
		return m, tick()
	}
	return m, nil
}

func (m OptimizeModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("Optimizing %s", m.Name)))
	b.WriteString(tuiDimStyle.Render(fmt.Sprintf("  %s mode", m.Mode)))
	b.WriteString("\n")
	b.WriteString(tuiDimStyle.Render("q: stop"))
	b.WriteString("\n\n")

	if len(m.History) > 0 {
		b.WriteString(m.renderHistory())
		b.WriteString("\n")
	}

	frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	status := styleIconSpinner.Render(frames[m.frame%len(frames)])
	if m.stopping {
		status = StyleWarning.Render("stopping")
	}
	best := "-"
	if m.Best > 0 {
		best = fmt.Sprintf("$%.0f/yr", m.Best)
	}
	fmt.Fprintf(&b, "%s %s  %s  %s  %s\n",
		status,
		StyleValue.Render(fmt.Sprintf("best %s", best)),
		tuiDimStyle.Render(fmt.Sprintf("%d trials", m.Trials)),
		tuiDimStyle.Render(fmt.Sprintf("%d failed", m.Failed)),
		tuiDimStyle.Render(m.now.Sub(m.start).Round(time.Second).String()))

	return b.String()
}

func (m OptimizeModel) renderHistory() string {
	last := m.History[len(m.History)-1]
	headers := append([]string{"iter"}, last.Names...)
	headers = append(headers, "TAC $/yr", "viol")

	rows := make([][]string, 0, len(m.History))
	for _, p := range m.History {
		row := []string{fmt.Sprintf("%d", p.Iteration)}
		for i, v := range p.Values {
			if i < len(p.Names) && (p.Names[i] == "N" || p.Names[i] == "NF") {
				row = append(row, fmt.Sprintf("%d", int(v)))
				continue
			}
			row = append(row, fmt.Sprintf("%.4g", v))
		}
		if p.Err != nil {
			row = append(row, "ERROR", "-")
		} else {
			row = append(row, fmt.Sprintf("%.0f", p.TAC), fmt.Sprintf("%.3g", p.Violation))
		}
		rows = append(rows, row)
	}

	history := m.History
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tuiHeaderStyle.Padding(0, 1)
			}
			if row < len(history) && history[row].Err != nil {
				return tuiCellStyle.Foreground(colorRed)
			}
			if row == len(history)-1 {
				return tuiCellStyle.Foreground(colorWhite)
			}
			return tuiCellStyle.Foreground(colorGray)
		})

	return t.Render()
}

// =============================================================================
// Runner
// =============================================================================

// runOptimizeTUI runs the search behind the live view. Logging below warnings
// is suppressed while the view owns the terminal.
func (c *CLI) runOptimizeTUI(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options, name string) (*optimizer.Report, error) {
	level := c.Logger.GetLevel()
	c.SetLogLevel(log.WarnLevel)
	defer c.SetLogLevel(level)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates := make(chan tea.Msg, 64)
	opts.Progress = func(p optimizer.Progress) {
		select {
		case updates <- progressMsg(p):
		case <-ctx.Done():
		}
	}
	finished := startRun(ctx, func(ctx context.Context) (*optimizer.Report, error) {
		return runner.Optimize(ctx, opts)
	}, updates)

	final, err := tea.NewProgram(NewOptimizeModel(name, opts.Mode, updates, cancel)).Run()
	cancel()
	outcome := <-finished
	if err != nil {
		return nil, fmt.Errorf("run view: %w", err)
	}
	if m := final.(OptimizeModel); m.Report != nil || m.Err != nil {
		return m.Report, m.Err
	}
	return outcome.report, outcome.err
}

// startRun runs the search in the background. The outcome always arrives on
// the returned channel and also on updates unless ctx ends first.
func startRun(ctx context.Context, run func(context.Context) (*optimizer.Report, error), updates chan<- tea.Msg) <-chan doneMsg {
	finished := make(chan doneMsg, 1)
	go func() {
		report, err := run(ctx)
		msg := doneMsg{report: report, err: err}
		finished <- msg
		select {
		case updates <- msg:
		case <-ctx.Done():
		}
	}()
	return finished
}
