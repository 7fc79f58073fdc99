package functional

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/cucumber/godog"

	"github.com/tsukumogami/gpudrv/internal/drivers"
	"github.com/tsukumogami/gpudrv/internal/executor"
	"github.com/tsukumogami/gpudrv/internal/platform"
	"github.com/tsukumogami/gpudrv/internal/session"
	"github.com/tsukumogami/gpudrv/internal/ui"
)

var errNoState = errors.New("no test state; is the Before hook running?")

// writeRootFile creates rel under the scenario's fake root.
func writeRootFile(state *testState, rel, content string) error {
	path := filepath.Join(state.root, strings.TrimPrefix(rel, "/"))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o755)
}

func aSystemWith(ctx context.Context, path string) error {
	state := getState(ctx)
	if state == nil {
		return errNoState
	}
	return writeRootFile(state, path, "")
}

func aSystemWithBoth(ctx context.Context, first, second string) error {
	if err := aSystemWith(ctx, first); err != nil {
		return err
	}
	return aSystemWith(ctx, second)
}

func theFileContains(ctx context.Context, path, content string) error {
	state := getState(ctx)
	if state == nil {
		return errNoState
	}
	return writeRootFile(state, path, strings.ReplaceAll(content, `\n`, "\n")+"\n")
}

func thePCIDeviceHas(ctx context.Context, slot, vendor, class string) error {
	state := getState(ctx)
	if state == nil {
		return errNoState
	}
	dir := filepath.Join("sys", "bus", "pci", "devices", slot)
	if err := writeRootFile(state, filepath.Join(dir, "vendor"), vendor+"\n"); err != nil {
		return err
	}
	return writeRootFile(state, filepath.Join(dir, "class"), class+"\n")
}

func aGPUManagedBy(ctx context.Context, vendor, manager string) error {
	state := getState(ctx)
	if state == nil {
		return errNoState
	}
	state.vendor = platform.ParseVendor(vendor)
	switch manager {
	case "apt":
		state.manager = platform.Apt
	case "yum":
		state.manager = platform.Yum
	case "pacman":
		state.manager = platform.Pacman
	}
	return nil
}

func scriptCommand(ctx context.Context, command string, res executor.Result) error {
	state := getState(ctx)
	if state == nil {
		return errNoState
	}
	state.runner.On(res, strings.Fields(command)...)
	return nil
}

func theCommandOutputs(ctx context.Context, command string, doc *godog.DocString) error {
	return scriptCommand(ctx, command, executor.Result{Stdout: doc.Content})
}

func theCommandOutputsLine(ctx context.Context, command, stdout string) error {
	return scriptCommand(ctx, command, executor.Result{Stdout: stdout})
}

func theCommandFailsWith(ctx context.Context, command, stderr string) error {
	return scriptCommand(ctx, command, executor.Result{ExitCode: 100, Stderr: stderr})
}

// theCommandWarns scripts a zero exit status with diagnostics on stderr.
func theCommandWarns(ctx context.Context, command, stderr string) error {
	return scriptCommand(ctx, command, executor.Result{Stderr: stderr})
}

func theTestsAreNotRunningAsRoot(ctx context.Context) error {
	if os.Geteuid() == 0 {
		return godog.ErrSkip
	}
	return nil
}

func iDetectThePackageManager(ctx context.Context) error {
	state := getState(ctx)
	if state == nil {
		return errNoState
	}
	state.manager, state.managerErr = platform.DetectPackageManager(state.root)
	return nil
}

func iDetectTheGPUVendor(ctx context.Context) error {
	state := getState(ctx)
	if state == nil {
		return errNoState
	}
	state.vendor = platform.DetectVendor(ctx, state.runner, state.root)
	return nil
}

func thePackageManagerPrints(ctx context.Context, doc *godog.DocString) error {
	state := getState(ctx)
	if state == nil {
		return errNoState
	}
	state.listing = drivers.ParseListing(doc.Content)
	return nil
}

func catalogFor(state *testState) *drivers.Catalog {
	if state.catalog == nil {
		state.catalog = drivers.NewCatalog(state.runner, state.manager, nil)
	}
	return state.catalog
}

func iQueryTheDriverCatalog(ctx context.Context) error {
	state := getState(ctx)
	if state == nil {
		return errNoState
	}
	state.listing, state.queryErr = catalogFor(state).Query(ctx, state.vendor)
	return nil
}

func iRefreshTheDriverCatalog(ctx context.Context) error {
	state := getState(ctx)
	if state == nil {
		return errNoState
	}
	state.listing, state.queryErr = catalogFor(state).Refresh(ctx, state.vendor)
	return nil
}

// iUseTheMenuWithInput runs a full menu session reading the doc string as
// the user's keystrokes.
func iUseTheMenuWithInput(ctx context.Context, doc *godog.DocString) error {
	state := getState(ctx)
	if state == nil {
		return errNoState
	}

	var out bytes.Buffer
	printer := ui.NewPrinter(&out, false)
	s := session.New(session.Options{
		Runner:   state.runner,
		Vendor:   state.vendor,
		Manager:  state.manager,
		Printer:  printer,
		Prompter: session.NewReaderPrompter(strings.NewReader(doc.Content+"\n"), printer),
		Confirm:  true,
		Version:  "v0.0.0-test",
	})
	err := s.Run(ctx)
	state.stdout = out.String()
	if err != nil {
		return fmt.Errorf("session returned an error: %w", err)
	}
	return nil
}

// iRun executes a command string, replacing "gpudrv" with the test binary path.
func iRun(ctx context.Context, command string) error {
	state := getState(ctx)
	if state == nil {
		return errNoState
	}

	args := strings.Fields(command)
	if len(args) > 0 && args[0] == "gpudrv" {
		args[0] = state.binPath
	}

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Dir = state.workDir
	cmd.Env = append(os.Environ(),
		"GPUDRV_CONFIG="+filepath.Join(state.workDir, "config.toml"),
		"GPUDRV_LOG_FILE="+filepath.Join(state.workDir, "gpudrv.log"),
	)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	state.stdout = stdout.String()
	state.stderr = stderr.String()

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			state.exitCode = exitErr.ExitCode()
		} else {
			return fmt.Errorf("command execution failed: %w", err)
		}
	} else {
		state.exitCode = 0
	}
	return nil
}

func thePackageManagerIs(ctx context.Context, expected string) error {
	state := getState(ctx)
	if state.managerErr != nil {
		return fmt.Errorf("detection failed: %v", state.managerErr)
	}
	if state.manager.String() != expected {
		return fmt.Errorf("expected package manager %q, got %q", expected, state.manager)
	}
	return nil
}

func packageManagerDetectionFailsWith(ctx context.Context, expected string) error {
	state := getState(ctx)
	if state.managerErr == nil {
		return fmt.Errorf("expected detection to fail, got %q", state.manager)
	}
	if !strings.Contains(state.managerErr.Error(), expected) {
		return fmt.Errorf("expected error containing %q, got %q", expected, state.managerErr)
	}
	return nil
}

func theGPUVendorIs(ctx context.Context, expected string) error {
	state := getState(ctx)
	if state.vendor.String() != expected {
		return fmt.Errorf("expected vendor %q, got %q", expected, state.vendor)
	}
	return nil
}

func theListingIs(ctx context.Context, expected string) error {
	state := getState(ctx)
	if state.queryErr != nil {
		return fmt.Errorf("query failed: %v", state.queryErr)
	}
	got := strings.Join(state.listing, ", ")
	if got != expected {
		return fmt.Errorf("expected listing %q, got %q", expected, got)
	}
	return nil
}

func theListingIsEmpty(ctx context.Context) error {
	state := getState(ctx)
	if len(state.listing) != 0 {
		return fmt.Errorf("expected empty listing, got %q", state.listing)
	}
	return nil
}

func theNewestDriverIs(ctx context.Context, expected string) error {
	state := getState(ctx)
	newest, ok := drivers.Newest(state.listing)
	if !ok || newest != expected {
		return fmt.Errorf("expected newest %q, got %q (found=%v)", expected, newest, ok)
	}
	return nil
}

func theCommandRanTimes(ctx context.Context, command string, expected int) error {
	state := getState(ctx)
	got := state.runner.CallCount(strings.Fields(command)...)
	if got != expected {
		return fmt.Errorf("expected %q to run %d times, ran %d", command, expected, got)
	}
	return nil
}

func theExitCodeIs(ctx context.Context, expected int) error {
	state := getState(ctx)
	if state.exitCode != expected {
		return fmt.Errorf("expected exit code %d, got %d\nstdout: %s\nstderr: %s",
			expected, state.exitCode, state.stdout, state.stderr)
	}
	return nil
}

func theOutputContains(ctx context.Context, text string) error {
	state := getState(ctx)
	if !strings.Contains(state.stdout, text) {
		return fmt.Errorf("expected stdout to contain %q\nstdout: %s", text, state.stdout)
	}
	return nil
}

func theOutputDoesNotContain(ctx context.Context, text string) error {
	state := getState(ctx)
	if strings.Contains(state.stdout, text) {
		return fmt.Errorf("expected stdout to NOT contain %q\nstdout: %s", text, state.stdout)
	}
	return nil
}

func theErrorOutputContains(ctx context.Context, text string) error {
	state := getState(ctx)
	if !strings.Contains(state.stderr, text) {
		return fmt.Errorf("expected stderr to contain %q\nstderr: %s", text, state.stderr)
	}
	return nil
}
