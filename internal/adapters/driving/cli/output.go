package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// palette matches the colours used across sceneseek output.
var palette = struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Muted     lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
}{
	Primary:   lipgloss.Color("#7C3AED"),
	Secondary: lipgloss.Color("#06B6D4"),
	Muted:     lipgloss.Color("#6C7086"),
	Success:   lipgloss.Color("#A6E3A1"),
	Warning:   lipgloss.Color("#F9E2AF"),
	Error:     lipgloss.Color("#F38BA8"),
}

// styles renders terminal output. Styling is off when writing to a non-terminal.
type styles struct {
	enabled bool

	title   lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
}

func newStyles(w io.Writer) *styles {
	return &styles{
		enabled: isTerminal(w),
		title:   lipgloss.NewStyle().Bold(true).Foreground(palette.Primary),
		label:   lipgloss.NewStyle().Bold(true).Foreground(palette.Secondary),
		muted:   lipgloss.NewStyle().Foreground(palette.Muted),
		success: lipgloss.NewStyle().Foreground(palette.Success),
		warning: lipgloss.NewStyle().Foreground(palette.Warning),
		failure: lipgloss.NewStyle().Foreground(palette.Error),
	}
}

func (s *styles) render(style lipgloss.Style, text string) string {
	if !s.enabled {
		return text
	}
	return style.Render(text)
}

func (s *styles) Title(text string) string   { return s.render(s.title, text) }
func (s *styles) Label(text string) string   { return s.render(s.label, text) }
func (s *styles) Muted(text string) string   { return s.render(s.muted, text) }
func (s *styles) Success(text string) string { return s.render(s.success, text) }
func (s *styles) Warning(text string) string { return s.render(s.warning, text) }
func (s *styles) Failure(text string) string { return s.render(s.failure, text) }

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
