package output

import (
	"fmt"
	"io"
)

// Warn writes a warning line to w. Commands send these to stderr so JSON on
// stdout stays parseable.
func Warn(w io.Writer, msg string) {
	_, _ = fmt.Fprintln(w, "Warning: "+msg)
}

// Warnf writes a formatted warning line to w.
func Warnf(w io.Writer, format string, args ...any) {
	Warn(w, fmt.Sprintf(format, args...))
}

// Success writes a confirmation line to w.
func Success(w io.Writer, msg string) {
	_, _ = fmt.Fprintln(w, "✓ "+msg)
}

// Successf writes a formatted confirmation line to w.
func Successf(w io.Writer, format string, args ...any) {
	Success(w, fmt.Sprintf(format, args...))
}
