// Package output renders command results and errors as text or JSON.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Format represents the output format.
type Format string

// Output format constants.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatAuto Format = "auto"
)

// Renderer is a result with a text form.
type Renderer interface {
	Render(w io.Writer) error
}

// Formatter renders command results in the selected format.
type Formatter struct {
	format Format
}

// NewFormatter creates a formatter for format. FormatAuto should be resolved
// with DetectFormat first; an unresolved FormatAuto renders text.
func NewFormatter(format Format) *Formatter {
	return &Formatter{format: format}
}

// Format returns the current output format.
func (f *Formatter) Format() Format {
	return f.format
}

// IsJSON returns true if the formatter outputs JSON.
func (f *Formatter) IsJSON() bool {
	return f.format == FormatJSON
}

// Emit writes a command result to w. JSON mode writes v as indented JSON.
// Text mode renders Fields and tables, prints strings and Stringers on one
// line, and falls back to %v for anything else.
func (f *Formatter) Emit(w io.Writer, v any) error {
	if f.IsJSON() {
		return writeIndentedJSON(w, v)
	}

	switch val := v.(type) {
	case Renderer:
		return val.Render(w)
	case string:
		_, err := fmt.Fprintln(w, val)
		return err
	case fmt.Stringer:
		_, err := fmt.Fprintln(w, val.String())
		return err
	default:
		_, err := fmt.Fprintf(w, "%v\n", val)
		return err
	}
}

// EmitWith writes data as JSON in JSON mode and text otherwise. It serves
// results whose JSON form is a plain value but whose text form is a table.
func (f *Formatter) EmitWith(w io.Writer, data any, text Renderer) error {
	if f.IsJSON() {
		return writeIndentedJSON(w, data)
	}
	return text.Render(w)
}

// DetectFormat resolves FormatAuto: text for a terminal, JSON otherwise.
func DetectFormat(w io.Writer, explicit Format) Format {
	if explicit != FormatAuto {
		return explicit
	}

	if IsTerminal(w) {
		return FormatText
	}
	return FormatJSON
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // G115: Fd() fits in int on supported platforms
}

// ParseFormat parses a format string.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	case "text":
		return FormatText
	default:
		return FormatAuto
	}
}
