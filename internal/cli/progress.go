package cli

import (
	"fmt"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"

	"github.com/nikhilbhat/courtwatch/internal/models"
	"github.com/nikhilbhat/courtwatch/internal/pipeline"
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

// Style functions for dynamic theming
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

// bulkEventMsg carries one finished case from the refresh workers.
type bulkEventMsg pipeline.BulkEvent

// bulkDoneMsg carries the final tally once all workers finished.
type bulkDoneMsg struct {
	summary pipeline.BulkSummary
	err     error
}

// bulkModel is the bubbletea model for a bulk refresh run.
type bulkModel struct {
	events   <-chan pipeline.BulkEvent
	result   <-chan bulkDoneMsg
	progress progress.Model
	theme    Theme

	done     int
	total    int
	lastCNR  string
	lastKind models.OutcomeKind

	summary  pipeline.BulkSummary
	finished bool
	quitting bool
	err      error
}

func newBulkModel(total int, events <-chan pipeline.BulkEvent, result <-chan bulkDoneMsg) bulkModel {
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)

	return bulkModel{
		events:   events,
		result:   result,
		progress: prog,
		theme:    defaultTheme,
		total:    total,
	}
}

// Init returns the initial command (start listening for events).
func (m bulkModel) Init() tea.Cmd {
	return tea.Batch(
		m.waitForEvent(),
		m.progress.Init(),
	)
}

// waitForEvent blocks on the next worker event or the final tally.
// Runs as a command so Update() never blocks.
func (m bulkModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case ev, ok := <-m.events:
			if ok {
				return bulkEventMsg(ev)
			}
			return <-m.result
		case done := <-m.result:
			return done
		}
	}
}

// Update handles messages and returns the updated model.
func (m bulkModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}

	case bulkEventMsg:
		m.done = msg.Done
		m.lastCNR = msg.Case.CNR
		m.lastKind = msg.Outcome.Kind
		return m, m.waitForEvent()

	case bulkDoneMsg:
		m.finished = true
		m.summary = msg.summary
		m.err = msg.err
		return m, tea.Quit

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the progress display.
func (m bulkModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

// renderContent builds the display string.
func (m bulkModel) renderContent() string {
	if m.finished {
		return m.finalView()
	}

	var pct float64
	if m.total > 0 {
		pct = float64(m.done) / float64(m.total)
	}

	status := m.theme.statusStyle().Render("[refreshing]")
	progressBar := m.progress.ViewAs(pct)
	counts := fmt.Sprintf("%d/%d cases", m.done, m.total)

	last := ""
	if m.lastCNR != "" {
		last = fmt.Sprintf("%s: %s", m.lastCNR, m.lastKind)
		if m.lastKind == models.OutcomeFailed {
			last = m.theme.errorStyle().Render(last)
		} else {
			last = m.theme.hintStyle().Render(last)
		}
	}

	hint := m.theme.hintStyle().Render("Press Ctrl+C to abort")

	return fmt.Sprintf("%s %s %s\n%s\n%s\n", status, progressBar, counts, last, hint)
}

// finalView renders the completion message.
func (m bulkModel) finalView() string {
	if m.err != nil {
		return m.theme.errorStyle().Render(fmt.Sprintf("\n✗ Bulk refresh aborted: %s\n", m.err))
	}

	s := m.summary
	var output string
	output += m.theme.completedStyle().Render("✓ Completed") + "\n\n"
	output += fmt.Sprintf("  Cases refreshed: %d\n", s.Total)
	output += fmt.Sprintf("  Created:         %d\n", s.Created)
	output += fmt.Sprintf("  Updated:         %d\n", s.Updated)
	output += fmt.Sprintf("  Unchanged:       %d\n", s.Unchanged)
	if s.Failed > 0 {
		output += m.theme.errorStyle().Render(fmt.Sprintf("  Failed:          %d\n", s.Failed))
		for _, o := range s.Outcomes {
			if o.Failed() {
				output += fmt.Sprintf("  • %s: %s\n", o.CNR, o.Detail)
			}
		}
	}
	return output
}

// RunBulkProgress runs the interactive progress UI while a bulk refresh
// executes in the background, and returns the final tally.
func RunBulkProgress(total int, events <-chan pipeline.BulkEvent, result <-chan bulkDoneMsg) (pipeline.BulkSummary, error) {
	p := tea.NewProgram(newBulkModel(total, events, result))

	finalModel, err := p.Run()
	if err != nil {
		return pipeline.BulkSummary{}, fmt.Errorf("progress UI error: %w", err)
	}

	m, ok := finalModel.(bulkModel)
	if !ok {
		return pipeline.BulkSummary{}, nil
	}
	if m.quitting {
		return m.summary, fmt.Errorf("aborted")
	}
	return m.summary, m.err
}
