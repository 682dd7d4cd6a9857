package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// palette follows the TUI theme colours.
var (
	colourPrimary = lipgloss.Color("#7C3AED")
	colourMuted   = lipgloss.Color("#6C7086")
	colourSuccess = lipgloss.Color("#A6E3A1")
	colourError   = lipgloss.Color("#F38BA8")
)

// styles renders plain text unless the output is a terminal.
type styles struct {
	title lipgloss.Style
	label lipgloss.Style
	muted lipgloss.Style
	ok    lipgloss.Style
	bad   lipgloss.Style
}

func stylesFor(w io.Writer) styles {
	if !isTerminal(w) {
		plain := lipgloss.NewStyle()
		return styles{title: plain, label: plain, muted: plain, ok: plain, bad: plain}
	}
	return styles{
		title: lipgloss.NewStyle().Bold(true).Foreground(colourPrimary),
		label: lipgloss.NewStyle().Foreground(colourMuted),
		muted: lipgloss.NewStyle().Foreground(colourMuted).Italic(true),
		ok:    lipgloss.NewStyle().Foreground(colourSuccess),
		bad:   lipgloss.NewStyle().Bold(true).Foreground(colourError),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
