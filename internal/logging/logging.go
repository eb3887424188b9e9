// Package logging provides the leveled, colored terminal logger used
// throughout the tool.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

type coloredPrint struct {
	color  *color.Color
	output io.Writer
}

func (c *coloredPrint) log(a string, args ...any) {
	if !strings.HasSuffix(a, "\n") {
		a = a + "\n"
	}
	c.color.Fprintf(c.output, a, args...)
}

// Logger writes leveled messages to stdout/stderr. Quiet suppresses
// everything below Warn; Debug is only emitted when verbose.
type Logger struct {
	info    coloredPrint
	success coloredPrint
	warning coloredPrint
	err     coloredPrint
	debug   coloredPrint
	quiet   bool
	verbose bool
}

func New(quiet, verbose bool) *Logger {
	return &Logger{
		info:    coloredPrint{color.New(), os.Stdout},
		success: coloredPrint{color.New(color.FgGreen), os.Stdout},
		warning: coloredPrint{color.New(color.FgYellow), os.Stderr},
		err:     coloredPrint{color.New(color.FgHiRed), os.Stderr},
		debug:   coloredPrint{color.New(color.FgCyan), os.Stdout},
		quiet:   quiet,
		verbose: verbose,
	}
}

func (l *Logger) Info(a string, args ...any) {
	if l.quiet {
		return
	}
	l.info.log(a, args...)
}

func (l *Logger) Success(a string, args ...any) {
	if l.quiet {
		return
	}
	l.success.log(a, args...)
}

func (l *Logger) Warn(a string, args ...any) {
	l.warning.log(a, args...)
}

func (l *Logger) Error(a string, args ...any) {
	l.err.log(a, args...)
}

func (l *Logger) Debug(a string, args ...any) {
	if !l.verbose {
		return
	}
	l.debug.log(a, args...)
}
