// Package style tags terminal output lines with a display kind and renders
// them for a particular front end.
package style

import (
	"html"
	"strings"
)

// Kind classifies a line of output for styling.
type Kind int

const (
	Normal Kind = iota
	Info
	Warning
	Error
	Success
	Value
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Success:
		return "success"
	case Value:
		return "value"
	default:
		return "normal"
	}
}

// Line is a single line of output with its display kind.
type Line struct {
	Kind Kind
	Text string
}

// Styler turns a tagged piece of text into markup for a front end.
type Styler interface {
	Style(text string, kind Kind) string
}

// Render styles every line and joins them with newlines.
func Render(s Styler, lines []Line) string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, s.Style(l.Text, l.Kind))
	}
	return strings.Join(out, "\n")
}

// Plain renders text without any markup.
type Plain struct{}

// Style returns text unchanged.
func (Plain) Style(text string, _ Kind) string {
	return text
}

// HTML renders Telegram-compatible HTML markup.
type HTML struct{}

// Style escapes text and wraps it in the tag for its kind.
// Board rows and other value lines keep their spacing inside <code>.
func (HTML) Style(text string, kind Kind) string {
	escaped := html.EscapeString(text)
	switch kind {
	case Info:
		return "<i>" + escaped + "</i>"
	case Warning:
		return "⚠️ " + escaped
	case Error:
		return "❌ " + escaped
	case Success:
		return "<b>" + escaped + "</b>"
	case Value:
		return "<code>" + escaped + "</code>"
	default:
		return escaped
	}
}

// ANSI colors
const (
	ansiReset  = "\033[0m"
	ansiCyan   = "\033[36m"
	ansiYellow = "\033[33m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiBold   = "\033[1m"
)

// ANSI renders colored output for a real terminal.
type ANSI struct{}

// Style wraps text in the escape sequence for its kind.
func (ANSI) Style(text string, kind Kind) string {
	var code string
	switch kind {
	case Info:
		code = ansiCyan
	case Warning:
		code = ansiYellow
	case Error:
		code = ansiRed
	case Success:
		code = ansiGreen
	case Value:
		code = ansiBold
	default:
		return text
	}
	return code + text + ansiReset
}
