package shell

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Styles holds the lipgloss styles used by the session.
type Styles struct {
	Prompt lipgloss.Style
	Accent lipgloss.Style
	Muted  lipgloss.Style
	Error  lipgloss.Style
}

// NewStyles returns the session styles. When stdout is not a terminal all
// styling is disabled so piped output stays plain.
func NewStyles() *Styles {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		plain := lipgloss.NewStyle()
		return &Styles{Prompt: plain, Accent: plain, Muted: plain, Error: plain}
	}
	return &Styles{
		Prompt: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Accent: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		Muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Error:  lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
}
