package executor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"

	"github.com/tsukumogami/gpudrv/internal/log"
)

// Runner executes commands synchronously.
//
// Implementations must not return a Go error for a failing command: every
// failure is reported through Result.Stderr and Result.ExitCode.
type Runner interface {
	Run(ctx context.Context, cmd Command) Result
}

// ExecRunner runs commands as child processes of gpudrv.
type ExecRunner struct {
	logger log.Logger
}

// Option configures an ExecRunner.
type Option func(*ExecRunner)

// WithLogger sets the logger that records each command line and failure.
func WithLogger(l log.Logger) Option {
	return func(r *ExecRunner) {
		r.logger = l
	}
}

// NewExecRunner creates a runner backed by os/exec.
func NewExecRunner(opts ...Option) *ExecRunner {
	r := &ExecRunner{}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = log.OrNoop(r.logger)
	return r
}

// Run starts cmd, waits for it to exit and returns its trimmed output.
// There is no timeout: a hung package manager blocks until ctx is cancelled.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) Result {
	r.logger.Debug("executing command", "cmd", cmd.String())

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	res := Result{
		Stdout: strings.TrimSpace(stdout.String()),
		Stderr: strings.TrimSpace(stderr.String()),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		res.ExitCode = ExitNotStarted
		if res.Stderr == "" {
			res.Stderr = err.Error()
		}
	}

	if !res.OK() {
		r.logger.Error("command failed", "cmd", cmd.String(), "exit_code", res.ExitCode, "stderr", res.Stderr)
	}
	return res
}
