package cli

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"

	"github.com/raphaelgruber/mailbrief/internal/client"
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

// snapshotMsg carries a reconciler state change into the UI.
type snapshotMsg client.Snapshot

// reconcileDoneMsg signals that the reconciler run returned.
type reconcileDoneMsg struct {
	err error
}

// researchModel is the bubbletea model for the research pipeline.
type researchModel struct {
	snapshot client.Snapshot
	progress progress.Model
	theme    Theme
	done     bool
	quitting bool
	err      error
}

// newResearchModel creates a new research progress model.
func newResearchModel() researchModel {
	// Create progress bar with color blend
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)

	return researchModel{
		progress: prog,
		theme:    defaultTheme,
	}
}

// Init returns the initial command.
func (m researchModel) Init() tea.Cmd {
	return m.progress.Init()
}

// Update handles messages.
func (m researchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}

	case snapshotMsg:
		m.snapshot = client.Snapshot(msg)
		return m, nil

	case reconcileDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit

	case progress.FrameMsg:
		// Update progress bar animation
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the progress display.
func (m researchModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

// renderContent builds the display string.
func (m researchModel) renderContent() string {
	if m.done || m.quitting {
		return m.finalView()
	}

	var b strings.Builder

	switch m.snapshot.Phase {
	case client.PhaseIdle, client.PhaseIdentifying:
		b.WriteString(m.theme.statusStyle().Render("[identifying]"))
		b.WriteString(" Finding research topics...\n")
	default:
		total := len(m.snapshot.Topics)
		var pct float64
		if total > 0 {
			pct = float64(m.snapshot.Settled) / float64(total)
		}

		status := m.theme.statusStyle().Render("[researching]")
		counts := fmt.Sprintf("%d/%d topics", m.snapshot.Settled, total)
		b.WriteString(fmt.Sprintf("%s %s %s\n", status, m.progress.ViewAs(pct), counts))

		for _, t := range m.snapshot.Topics {
			b.WriteString("  " + m.topicLine(t) + "\n")
		}
	}

	b.WriteString(m.theme.hintStyle().Render("Press Ctrl+C to continue on the server"))
	b.WriteString("\n")
	return b.String()
}

// topicLine renders one topic's status marker and title.
func (m researchModel) topicLine(t client.TopicProgress) string {
	switch t.State {
	case client.TopicCompleted:
		return m.theme.completedStyle().Render("✓") + " " + t.Topic
	case client.TopicFailed:
		return m.theme.errorStyle().Render("✗") + " " + t.Topic
	default:
		return m.theme.statusStyle().Render("…") + " " + t.Topic
	}
}

// finalView renders the completion message.
func (m researchModel) finalView() string {
	if m.quitting {
		msg := "\nResearch continues on the server.\nUse 'mailbrief watch' to follow progress.\n"
		return m.theme.hintStyle().Render(msg)
	}

	if m.err != nil {
		return m.theme.errorStyle().Render(fmt.Sprintf("\n✗ Research failed: %s\n", m.err))
	}

	var b strings.Builder
	b.WriteString(m.theme.completedStyle().Render("✓ Research complete") + "\n\n")
	for _, t := range m.snapshot.Topics {
		b.WriteString(m.topicLine(t) + "\n")
		for _, line := range t.TLDR {
			b.WriteString("    " + line + "\n")
		}
	}
	failed := 0
	for _, t := range m.snapshot.Topics {
		if t.State == client.TopicFailed {
			failed++
		}
	}
	if failed > 0 {
		b.WriteString(m.theme.errorStyle().Render(fmt.Sprintf("\n%d topic(s) failed; rerun the command to retry.\n", failed)))
	}
	return b.String()
}
