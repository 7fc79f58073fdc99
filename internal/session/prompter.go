package session

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"

	"github.com/tsukumogami/gpudrv/internal/ui"
)

// Prompter reads one line of user input per call. It returns io.EOF when
// input ends or the user aborts.
type Prompter interface {
	Prompt(text string) (string, error)
	Close() error
}

// NewPrompter returns a line-editing prompter when in is a terminal and a
// plain buffered reader otherwise.
func NewPrompter(in *os.File, p *ui.Printer) Prompter {
	if term.IsTerminal(int(in.Fd())) {
		return NewLinePrompter()
	}
	return NewReaderPrompter(in, p)
}

// LinePrompter reads input through liner, with history for the session.
type LinePrompter struct {
	line *liner.State
}

// NewLinePrompter takes over the terminal until Close is called.
func NewLinePrompter() *LinePrompter {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	return &LinePrompter{line: line}
}

// Prompt shows text and reads a line. Ctrl+C and Ctrl+D both end input.
func (l *LinePrompter) Prompt(text string) (string, error) {
	input, err := l.line.Prompt(text)
	if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
		return "", io.EOF
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		l.line.AppendHistory(input)
	}
	return input, nil
}

// Close restores the terminal.
func (l *LinePrompter) Close() error {
	return l.line.Close()
}

// ReaderPrompter reads newline-terminated input from any reader, writing
// styled prompts to the printer's output. Used for pipes and tests.
type ReaderPrompter struct {
	in      *bufio.Reader
	printer *ui.Printer
}

// NewReaderPrompter creates a ReaderPrompter over in.
func NewReaderPrompter(in io.Reader, p *ui.Printer) *ReaderPrompter {
	return &ReaderPrompter{in: bufio.NewReader(in), printer: p}
}

// Prompt writes text and reads up to the next newline. A final line
// without a newline is returned before io.EOF.
func (r *ReaderPrompter) Prompt(text string) (string, error) {
	fmt.Fprint(r.printer.Writer(), r.printer.Prompt(text))
	line, err := r.in.ReadString('\n')
	if err == io.EOF && line != "" {
		return strings.TrimRight(line, "\r\n"), nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Close is a no-op; the reader is owned by the caller.
func (r *ReaderPrompter) Close() error { return nil }
