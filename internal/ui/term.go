package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

const defaultWidth = 80

// IsStdoutTTY returns true when stdout is connected to a terminal.
func IsStdoutTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// SetupColor picks the colour profile from the environment. NO_COLOR and
// non-terminal stdout drop to plain ASCII.
func SetupColor() {
	profile := termenv.EnvColorProfile()
	if !IsStdoutTTY() && os.Getenv("CLICOLOR_FORCE") == "" {
		profile = termenv.Ascii
	}
	lipgloss.SetColorProfile(profile)
}

// Width returns the terminal width, or 80 when stdout is not a terminal.
func Width() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}
