// Package ui renders gpudrv's terminal output.
//
// Colors come from a lipgloss renderer bound to the output writer, so
// pipes and test buffers receive plain text automatically. Markdown
// (help and about screens) goes through glamour only on a terminal.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// Palette, ANSI 256 codes.
const (
	colorMagenta = lipgloss.Color("170")
	colorCyan    = lipgloss.Color("44")
	colorBlue    = lipgloss.Color("39")
	colorGreen   = lipgloss.Color("42")
	colorAmber   = lipgloss.Color("214")
	colorRed     = lipgloss.Color("196")
	colorMuted   = lipgloss.Color("245")
)

// Printer writes styled lines to one output.
type Printer struct {
	out io.Writer
	tty bool

	title   lipgloss.Style
	info    lipgloss.Style
	item    lipgloss.Style
	success lipgloss.Style
	warn    lipgloss.Style
	err     lipgloss.Style
	muted   lipgloss.Style
	prompt  lipgloss.Style
}

// NewPrinter creates a Printer for out. tty enables markdown rendering;
// color support is detected from out itself.
func NewPrinter(out io.Writer, tty bool) *Printer {
	r := lipgloss.NewRenderer(out)
	return &Printer{
		out:     out,
		tty:     tty,
		title:   r.NewStyle().Foreground(colorMagenta).Bold(true),
		info:    r.NewStyle().Foreground(colorCyan),
		item:    r.NewStyle().Foreground(colorBlue),
		success: r.NewStyle().Foreground(colorGreen),
		warn:    r.NewStyle().Foreground(colorAmber),
		err:     r.NewStyle().Foreground(colorRed).Bold(true),
		muted:   r.NewStyle().Foreground(colorMuted),
		prompt:  r.NewStyle().Foreground(colorGreen).Bold(true),
	}
}

// Writer returns the underlying output.
func (p *Printer) Writer() io.Writer { return p.out }

func (p *Printer) line(style lipgloss.Style, format string, a ...any) {
	fmt.Fprintln(p.out, style.Render(fmt.Sprintf(format, a...)))
}

// Title prints a section header surrounded by blank lines.
func (p *Printer) Title(format string, a ...any) {
	fmt.Fprintln(p.out)
	p.line(p.title, "===== "+format+" =====", a...)
	fmt.Fprintln(p.out)
}

func (p *Printer) Info(format string, a ...any)    { p.line(p.info, format, a...) }
func (p *Printer) Item(format string, a ...any)    { p.line(p.item, "  "+format, a...) }
func (p *Printer) Success(format string, a ...any) { p.line(p.success, "✓ "+format, a...) }
func (p *Printer) Warn(format string, a ...any)    { p.line(p.warn, "! "+format, a...) }
func (p *Printer) Error(format string, a ...any)   { p.line(p.err, "✗ "+format, a...) }
func (p *Printer) Muted(format string, a ...any)   { p.line(p.muted, format, a...) }

// Plain prints text unstyled, without trailing newlines. Empty text
// prints nothing.
func (p *Printer) Plain(text string) {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return
	}
	fmt.Fprintln(p.out, text)
}

// Blank prints an empty line.
func (p *Printer) Blank() { fmt.Fprintln(p.out) }

// Prompt returns the styled prompt text for an input line.
func (p *Printer) Prompt(text string) string {
	return p.prompt.Render(text)
}

// Markdown prints md rendered by glamour on a terminal, or as-is otherwise.
func (p *Printer) Markdown(md string) {
	fmt.Fprint(p.out, p.renderMarkdown(md))
}

func (p *Printer) renderMarkdown(md string) string {
	if !p.tty {
		return md
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}
