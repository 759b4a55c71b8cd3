package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

type Style struct {
	Header     lipgloss.Style
	Disclaimer lipgloss.Style

	UserMessage      lipgloss.Style
	AssistantMessage lipgloss.Style
	SelectedMessage  lipgloss.Style
	PendingMessage   lipgloss.Style
	FailedMessage    lipgloss.Style

	StatusBar lipgloss.Style
}

type palette struct {
	border   string
	selected string
	pending  string
	failed   string
}

func DefaultStyles() *Style {
	p := palette{
		border:   "#CCCCCC",
		selected: "#5F87FF",
		pending:  "#888888",
		failed:   "#CC0000",
	}
	if termenv.HasDarkBackground() {
		p = palette{
			border:   "#444444",
			selected: "#87AFFF",
			pending:  "#777777",
			failed:   "#FF5F5F",
		}
	}

	message := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		Padding(0, 1).
		BorderForeground(lipgloss.Color(p.border))

	return &Style{
		Header: lipgloss.NewStyle().Bold(true).Padding(0, 1),
		Disclaimer: lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color(p.failed)).
			Padding(0, 1),

		UserMessage:      message,
		AssistantMessage: message,
		SelectedMessage: message.
			Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color(p.selected)),
		PendingMessage: message.Foreground(lipgloss.Color(p.pending)),
		FailedMessage:  message.Foreground(lipgloss.Color(p.failed)),

		StatusBar: lipgloss.NewStyle().Faint(true).Padding(0, 1),
	}
}
