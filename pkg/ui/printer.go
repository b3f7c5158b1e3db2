// pkg/ui/printer.go
// Package ui renders operator-facing output for the interactive shell.
package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75"))
)

// Printer writes status-coded messages and tables. Command handlers send
// everything through it, so the shell loop tests against plain buffers.
type Printer struct {
	out    io.Writer
	errOut io.Writer
	color  bool
}

// NewPrinter creates a Printer writing to the given streams. With color
// disabled every line degrades to its plain-text form.
func NewPrinter(out, errOut io.Writer, colorEnabled bool) *Printer {
	return &Printer{out: out, errOut: errOut, color: colorEnabled}
}

// Out returns the stream regular output is written to.
func (p *Printer) Out() io.Writer { return p.out }

// ErrOut returns the stream error output is written to.
func (p *Printer) ErrOut() io.Writer { return p.errOut }

// Successf prints a "[+]" status line.
func (p *Printer) Successf(format string, args ...any) {
	p.statusLine(p.out, "[+]", color.FgGreen, format, args...)
}

// Errorf prints a "[-]" status line on the error stream.
func (p *Printer) Errorf(format string, args ...any) {
	p.statusLine(p.errOut, "[-]", color.FgRed, format, args...)
}

// Infof prints a "[*]" status line.
func (p *Printer) Infof(format string, args ...any) {
	p.statusLine(p.out, "[*]", color.FgCyan, format, args...)
}

// Warnf prints a "[!]" status line.
func (p *Printer) Warnf(format string, args ...any) {
	p.statusLine(p.out, "[!]", color.FgYellow, format, args...)
}

// Printf writes plain output.
func (p *Printer) Printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

// Println writes a plain line.
func (p *Printer) Println(args ...any) {
	fmt.Fprintln(p.out, args...)
}

// Promptf writes the shell prompt without a trailing newline.
func (p *Printer) Promptf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if p.color {
		color.New(color.FgGreen, color.Bold).Fprint(p.out, msg)
		return
	}
	fmt.Fprint(p.out, msg)
}

// Dimf prints a de-emphasized line, used for echoing script commands.
func (p *Printer) Dimf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if p.color {
		color.New(color.Faint).Fprintln(p.out, msg)
		return
	}
	fmt.Fprintln(p.out, msg)
}

// Banner prints the startup header.
func (p *Printer) Banner(version string, moduleCount int) {
	title := fmt.Sprintf("PenKit - Advanced Penetration Testing Toolkit v%s", version)
	detail := fmt.Sprintf("%d modules loaded. Type 'help' for a list of commands.", moduleCount)
	if p.color {
		fmt.Fprintln(p.out, titleStyle.Render(title))
		fmt.Fprintln(p.out, subtleStyle.Render(detail))
	} else {
		fmt.Fprintln(p.out, title)
		fmt.Fprintln(p.out, detail)
	}
	fmt.Fprintln(p.out)
}

func (p *Printer) statusLine(w io.Writer, prefix string, attr color.Attribute, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if p.color {
		prefix = color.New(attr, color.Bold).Sprint(prefix)
	}
	fmt.Fprintf(w, "%s %s\n", prefix, msg)
}
