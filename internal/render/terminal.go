package render

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// DefaultWidth is used when the output is not a terminal.
const DefaultWidth = 80

// minWidth keeps wrapping sane on very narrow terminals.
const minWidth = 40

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// TerminalWidth returns the column count of w, or DefaultWidth when w is not
// a terminal.
func TerminalWidth(w io.Writer) int {
	if !isTerminal(w) {
		return DefaultWidth
	}
	width, _, err := term.GetSize(int(w.(*os.File).Fd()))
	if err != nil || width <= 0 {
		return DefaultWidth
	}
	if width < minWidth {
		return minWidth
	}
	return width
}

// ColorEnabled resolves a --color mode (auto, on, off) for output written
// to w. auto enables color only on terminals, and honours NO_COLOR.
func ColorEnabled(mode string, w io.Writer) (bool, error) {
	switch mode {
	case "on", "always":
		return true, nil
	case "off", "never":
		return false, nil
	case "auto", "":
		if _, set := os.LookupEnv("NO_COLOR"); set {
			return false, nil
		}
		return isTerminal(w), nil
	default:
		return false, fmt.Errorf("invalid color mode %q (expected auto, on or off)", mode)
	}
}
