// Package term detects whether output goes to an interactive terminal.
package term

import (
	"io"
	"os"
)

// IsTerminal reports whether f is connected to a terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return isTerminal(f.Fd())
}

// ColorEnabled reports whether coloured output should be written to w. It
// never is when NO_COLOR is set or TERM is "dumb".
func ColorEnabled(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && IsTerminal(f)
}
