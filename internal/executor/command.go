// Package executor runs external commands for gpudrv.
//
// Commands are built as explicit argument lists and started without a
// shell, so package names taken from command output are never
// interpreted. A nonzero exit status is data, not an error: it is
// returned in Result alongside the captured output.
package executor

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Command is a program invocation.
type Command struct {
	// Name is the program to run, looked up in PATH.
	Name string

	// Args are passed verbatim as argv[1:].
	Args []string

	// Env holds extra KEY=VALUE pairs appended to the inherited environment.
	Env []string
}

// New returns a Command for name with the given arguments.
func New(name string, args ...string) Command {
	return Command{Name: name, Args: args}
}

// WithEnv returns a copy of c with kv appended to its environment.
func (c Command) WithEnv(kv ...string) Command {
	env := make([]string, 0, len(c.Env)+len(kv))
	env = append(env, c.Env...)
	c.Env = append(env, kv...)
	return c
}

// Argv returns the full argument vector including the program name.
func (c Command) Argv() []string {
	return append([]string{c.Name}, c.Args...)
}

// String renders the command as a shell-quoted line for logs and messages.
// The result is never executed.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Env)+1+len(c.Args))
	for _, kv := range c.Env {
		parts = append(parts, quote(kv))
	}
	for _, a := range c.Argv() {
		parts = append(parts, quote(a))
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	q, err := syntax.Quote(s, syntax.LangBash)
	if err != nil {
		// Only fails on strings bash cannot represent (e.g. NUL bytes).
		return s
	}
	return q
}

// Result is the outcome of a finished command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// ExitNotStarted is the exit code reported when the program could not be started.
const ExitNotStarted = -1

// OK reports whether the command exited zero with nothing on stderr.
func (r Result) OK() bool {
	return r.ExitCode == 0 && r.Stderr == ""
}

// Started reports whether the program was found and started.
func (r Result) Started() bool {
	// 127 is what a shell wrapper or env(1) reports for a missing program.
	return r.ExitCode != ExitNotStarted && r.ExitCode != 127
}

// Lines splits Stdout into lines. Blank lines are kept so callers see
// output exactly as produced.
func (r Result) Lines() []string {
	if r.Stdout == "" {
		return nil
	}
	return strings.Split(r.Stdout, "\n")
}
