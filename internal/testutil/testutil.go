// Package testutil provides test doubles shared across gpudrv packages.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tsukumogami/gpudrv/internal/executor"
)

// FakeRunner is a scripted executor.Runner. Responses are keyed by the
// command's argv joined with single spaces; unknown commands return
// Default. Every call is recorded in order.
type FakeRunner struct {
	Responses map[string]executor.Result
	Default   executor.Result
	Calls     []executor.Command
}

// NewFakeRunner creates a FakeRunner whose unscripted commands fail as if
// the program were missing.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		Responses: make(map[string]executor.Result),
		Default: executor.Result{
			ExitCode: executor.ExitNotStarted,
			Stderr:   "executable file not found in $PATH",
		},
	}
}

// On scripts the result for the command whose argv matches.
func (f *FakeRunner) On(res executor.Result, argv ...string) *FakeRunner {
	f.Responses[strings.Join(argv, " ")] = res
	return f
}

// Run records cmd and returns its scripted result.
func (f *FakeRunner) Run(_ context.Context, cmd executor.Command) executor.Result {
	f.Calls = append(f.Calls, cmd)
	if res, ok := f.Responses[Key(cmd)]; ok {
		return res
	}
	return f.Default
}

// CallCount returns how many times the command with the given argv ran.
func (f *FakeRunner) CallCount(argv ...string) int {
	want := strings.Join(argv, " ")
	n := 0
	for _, c := range f.Calls {
		if Key(c) == want {
			n++
		}
	}
	return n
}

// Key returns the lookup key FakeRunner uses for cmd.
func Key(cmd executor.Command) string {
	return strings.Join(cmd.Argv(), " ")
}

// FakeRoot builds a directory tree under t.TempDir() containing the given
// files (relative path -> contents) and returns its path. Used to probe
// package-manager binaries and sysfs without touching the real system.
func FakeRoot(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create dir for %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
			t.Fatalf("failed to write %s: %v", rel, err)
		}
	}
	return root
}
