package report

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// TitleStyle for section headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// HelpStyle for usage hints.
	HelpStyle = lipgloss.NewStyle().Faint(true)

	// ErrorStyle for failures.
	ErrorStyle = lipgloss.NewStyle().Bold(true)
)

var rule = strings.Repeat("=", 60)

func writeTitle(b *strings.Builder, text string) {
	b.WriteString("\n" + rule + "\n")
	b.WriteString(TitleStyle.Render(text) + "\n")
	b.WriteString(rule + "\n")
}
