// Package presenter provides consistent CLI output for user-facing
// messages: success, error, warning, and informational output with color
// support and quiet mode.
package presenter

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Presenter writes user-facing messages to a terminal.
type Presenter struct {
	output      io.Writer
	errorOutput io.Writer
	quiet       bool
}

// New creates a presenter over stdout/stderr, honouring NO_COLOR and
// ORGBOARD_COLOR=never.
func New() *Presenter {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("ORGBOARD_COLOR") == "never" {
		color.NoColor = true
	}
	return NewWithWriters(os.Stdout, os.Stderr)
}

// NewWithWriters creates a presenter over custom writers.
func NewWithWriters(output, errorOutput io.Writer) *Presenter {
	return &Presenter{output: output, errorOutput: errorOutput}
}

// SetQuiet suppresses everything except errors.
func (p *Presenter) SetQuiet(quiet bool) {
	p.quiet = quiet
}

// Error displays an error with optional context on stderr. Errors are shown
// even in quiet mode.
func (p *Presenter) Error(err error, context string) {
	if err == nil {
		return
	}
	c := color.New(color.FgRed, color.Bold)
	if context != "" {
		c.Fprintf(p.errorOutput, "[ERROR] %s: %v\n", context, err)
	} else {
		c.Fprintf(p.errorOutput, "[ERROR] %v\n", err)
	}
}

// Success displays a success message.
func (p *Presenter) Success(message string) {
	if p.quiet {
		return
	}
	color.New(color.FgGreen).Fprintf(p.output, "[OK] %s\n", message)
}

// Warning displays a warning message.
func (p *Presenter) Warning(message string) {
	if p.quiet {
		return
	}
	color.New(color.FgYellow).Fprintf(p.output, "[WARN] %s\n", message)
}

// Info displays an informational message.
func (p *Presenter) Info(message string) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.output, message)
}

// Section displays a section header.
func (p *Presenter) Section(title string) {
	if p.quiet {
		return
	}
	c := color.New(color.Bold)
	c.Fprintf(p.output, "\n%s\n%s\n", title, strings.Repeat("-", len(title)))
}

var std = New()

// Default returns the process-wide presenter.
func Default() *Presenter { return std }

// Error writes to the process-wide presenter.
func Error(err error, context string) { std.Error(err, context) }

// Success writes to the process-wide presenter.
func Success(message string) { std.Success(message) }

// Warning writes to the process-wide presenter.
func Warning(message string) { std.Warning(message) }

// Info writes to the process-wide presenter.
func Info(message string) { std.Info(message) }

// Section writes to the process-wide presenter.
func Section(title string) { std.Section(title) }
