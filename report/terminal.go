package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jemygraw/researchgraph/research"
)

var (
	primary = lipgloss.Color("#101F38")
	accent  = lipgloss.Color("#8BC34A")
	muted   = lipgloss.Color("#6B7280")
	danger  = lipgloss.Color("#e53935")
	info    = lipgloss.Color("#2196F3")
)

// Styles holds the lipgloss styles used by Terminal.
type Styles struct {
	Header  lipgloss.Style
	Section lipgloss.Style
	Human   lipgloss.Style
	AI      lipgloss.Style
	Muted   lipgloss.Style
	Error   lipgloss.Style
	Answer  lipgloss.Style
}

// DefaultStyles returns the terminal palette.
func DefaultStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Background(primary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 2).
			Bold(true),
		Section: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true).
			MarginTop(1),
		Human: lipgloss.NewStyle().Foreground(info).Bold(true),
		AI:    lipgloss.NewStyle().Foreground(accent),
		Muted: lipgloss.NewStyle().Foreground(muted),
		Error: lipgloss.NewStyle().Foreground(danger).Bold(true),
		Answer: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1),
	}
}

// Terminal renders the answer and, when trace is set, the message trace.
func Terminal(state research.AgentState, trace bool) string {
	return TerminalWithStyles(state, trace, DefaultStyles())
}

// TerminalWithStyles is Terminal with a custom palette.
func TerminalWithStyles(state research.AgentState, trace bool, st Styles) string {
	var sb strings.Builder

	sb.WriteString(st.Header.Render("Research") + " " + state.Query.Text + "\n")

	if trace {
		sb.WriteString(st.Section.Render("Trace") + "\n")
		for _, msg := range state.Messages {
			label := st.AI.Render(string(msg.Role))
			if msg.Role == research.RoleHuman {
				label = st.Human.Render(string(msg.Role))
			}
			fmt.Fprintf(&sb, "  %s %s\n", label, oneLine(msg.Content))
		}
	}

	sb.WriteString(st.Section.Render("Answer") + "\n")
	answer := strings.TrimSpace(state.FinalAnswer)
	if answer == "" {
		answer = "No answer was produced."
	}
	sb.WriteString(st.Answer.Render(answer) + "\n")

	if state.Error != "" {
		sb.WriteString(st.Error.Render(state.Error) + "\n")
	}
	sb.WriteString(st.Muted.Render(fmt.Sprintf("%d steps, %d documents", state.StepCount, len(state.Documents))) + "\n")

	return sb.String()
}
