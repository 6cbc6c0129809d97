package theme

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Color palette, kept to a few terminal-friendly colors.
var (
	ColorPrimary = lipgloss.Color("63")  // Purple
	ColorMuted   = lipgloss.Color("245") // Light gray
	ColorError   = lipgloss.Color("196") // Red
	ColorFlag    = lipgloss.Color("42")  // Green
)

// Styles are the styles used for help and diagnostics on one output.
// Colors are dropped automatically when the output is not a terminal.
type Styles struct {
	Title lipgloss.Style
	Flag  lipgloss.Style
	Muted lipgloss.Style
	Error lipgloss.Style
}

// New creates styles that render for w.
func New(w io.Writer) Styles {
	r := lipgloss.NewRenderer(w)
	return Styles{
		Title: r.NewStyle().Foreground(ColorPrimary).Bold(true),
		Flag:  r.NewStyle().Foreground(ColorFlag),
		Muted: r.NewStyle().Foreground(ColorMuted),
		Error: r.NewStyle().Foreground(ColorError),
	}
}
