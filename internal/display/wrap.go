package display

import (
	"github.com/muesli/reflow/wordwrap"
)

// DefaultWidth suits an unconfigured telnet terminal.
const DefaultWidth = 72

// Wrap word-wraps text to DefaultWidth, preserving ANSI escape sequences.
func Wrap(text string) string {
	return WrapTo(text, DefaultWidth)
}

// WrapTo word-wraps text to width columns.
func WrapTo(text string, width int) string {
	return wordwrap.String(text, width)
}
