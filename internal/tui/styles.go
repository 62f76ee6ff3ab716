// Package tui renders run progress and the end-of-run summary for terminals
// and for plain writers such as log files and CI output.
package tui

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Shared colour palette (ANSI 256).
const (
	ColorOK      = lipgloss.Color("42")
	ColorFail    = lipgloss.Color("196")
	ColorWaiting = lipgloss.Color("214")
	ColorHeader  = lipgloss.Color("39")
	ColorLabel   = lipgloss.Color("245")
	ColorValue   = lipgloss.Color("255")
	ColorMuted   = lipgloss.Color("241")
	ColorBorder  = lipgloss.Color("63")
)

// IsWriterTerminal reports whether w is an *os.File attached to a terminal.
// Any other writer, such as a bytes.Buffer in tests, is treated as plain output.
func IsWriterTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}
