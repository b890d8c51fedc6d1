// Package clog is a minimal trace logger for the CLI and solver boundary,
// kept deliberately tiny in the teacher's own style.
package clog

import (
	"fmt"
	"io"
)

// Logger is a minimal wrapper around an io.Writer.
type Logger struct {
	io.Writer
}

// New returns a Logger writing to w.
func New(w io.Writer) *Logger {
	return &Logger{Writer: w}
}

// Logln logs a line.
func (l *Logger) Logln(args ...interface{}) {
	fmt.Fprintln(l, args...)
}

// Logf logs a formatted string.
func (l *Logger) Logf(f string, args ...interface{}) {
	fmt.Fprintf(l, f, args...)
}

// LogSolvefln logs a formatted line prefixed with "cratesolve: ", used by
// the solve-versions command for its progress and outcome messages.
func (l *Logger) LogSolvefln(format string, args ...interface{}) {
	fmt.Fprintf(l, "cratesolve: "+format+"\n", args...)
}
