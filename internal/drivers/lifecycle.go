package drivers

import (
	"context"
	"strings"

	"github.com/tsukumogami/gpudrv/internal/executor"
	"github.com/tsukumogami/gpudrv/internal/log"
	"github.com/tsukumogami/gpudrv/internal/platform"
)

// Outcome is the terminal state of a single lifecycle operation.
type Outcome int

const (
	// Succeeded means the command exited zero with an empty stderr.
	Succeeded Outcome = iota
	// Failed means stderr was non-empty or the exit status nonzero.
	Failed
	// PartiallySucceeded means stderr matched a benign phrase such as
	// "already the newest version".
	PartiallySucceeded
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case PartiallySucceeded:
		return "partially succeeded"
	default:
		return "failed"
	}
}

// OK reports whether the operation counts as a success for the user.
func (o Outcome) OK() bool {
	return o == Succeeded || o == PartiallySucceeded
}

// BenignPhrases are stderr fragments that do not fail an install. Matching
// is a heuristic: a real failure whose message contains one of these is
// reported as a success.
var BenignPhrases = []string{
	"already the newest version",
	"is already installed",
	"is up to date",
}

// Report describes one executed lifecycle command.
type Report struct {
	Operation string
	Driver    string
	Command   string
	Outcome   Outcome
	Stdout    string
	Stderr    string
	ExitCode  int
}

// Err returns a *CommandError for failed reports and nil otherwise.
func (r Report) Err() error {
	if r.Outcome != Failed {
		return nil
	}
	return &CommandError{Command: r.Command, ExitCode: r.ExitCode, Stderr: r.Stderr}
}

// UpgradeReport holds the independent results of an upgrade's two stages.
// Upgrade is nil when the refresh stage failed.
type UpgradeReport struct {
	Refresh Report
	Upgrade *Report
}

// OK reports whether both stages succeeded.
func (u UpgradeReport) OK() bool {
	return u.Refresh.Outcome.OK() && u.Upgrade != nil && u.Upgrade.Outcome.OK()
}

// Lifecycle installs, removes and upgrades driver packages. Every call runs
// its command exactly once: there are no retries, no rollback and no
// guard against repeating an operation.
type Lifecycle struct {
	runner  executor.Runner
	manager platform.PackageManager
	logger  log.Logger
}

// NewLifecycle creates a Lifecycle for the given package manager.
func NewLifecycle(r executor.Runner, m platform.PackageManager, l log.Logger) *Lifecycle {
	return &Lifecycle{runner: r, manager: m, logger: log.OrNoop(l)}
}

// Install installs driver. Stderr matching BenignPhrases yields
// PartiallySucceeded.
func (l *Lifecycle) Install(ctx context.Context, driver string) Report {
	cmd, err := InstallCommand(l.manager, driver)
	if err != nil {
		return notRun("install", driver, err)
	}
	res := l.runner.Run(ctx, cmd)
	if l.manager == platform.Apt {
		res.Stderr = dropWarnings(res.Stderr)
	}
	return l.finish(report("install", driver, cmd, res, true))
}

// Uninstall purges driver. Unlike Install there is no benign-phrase
// allowance: any stderr output fails the operation.
func (l *Lifecycle) Uninstall(ctx context.Context, driver string) Report {
	cmd, err := UninstallCommand(l.manager, driver)
	if err != nil {
		return notRun("uninstall", driver, err)
	}
	return l.finish(report("uninstall", driver, cmd, l.runner.Run(ctx, cmd), false))
}

// Upgrade refreshes the package index and then upgrades the vendor's
// installed driver packages. A failed refresh skips the upgrade stage.
func (l *Lifecycle) Upgrade(ctx context.Context, v platform.Vendor) UpgradeReport {
	var out UpgradeReport

	refresh, err := RefreshCommand(l.manager)
	if err != nil {
		out.Refresh = notRun("refresh", "", err)
		return out
	}
	out.Refresh = l.finish(report("refresh", "", refresh, l.runner.Run(ctx, refresh), false))
	if !out.Refresh.Outcome.OK() {
		return out
	}

	var installed Listing
	if l.manager == platform.Pacman {
		installed, err = l.Installed(ctx, v)
		if err != nil {
			up := notRun("upgrade", "", err)
			out.Upgrade = &up
			return out
		}
	}

	cmd, err := UpgradeCommand(l.manager, v, installed)
	if err != nil {
		up := notRun("upgrade", "", err)
		out.Upgrade = &up
		return out
	}
	up := l.finish(report("upgrade", "", cmd, l.runner.Run(ctx, cmd), false))
	out.Upgrade = &up
	return out
}

// Installed lists the vendor's driver packages currently installed.
func (l *Lifecycle) Installed(ctx context.Context, v platform.Vendor) (Listing, error) {
	if !v.Supported() {
		return nil, unsupportedVendor(v)
	}
	cmd, err := InstalledCommand(l.manager)
	if err != nil {
		return nil, err
	}
	res := l.runner.Run(ctx, cmd)
	if !res.OK() {
		return nil, commandError(cmd, res)
	}
	return parseInstalled(l.manager, v, res.Stdout), nil
}

// ActiveStatus asks the vendor tool which driver is loaded.
func (l *Lifecycle) ActiveStatus(ctx context.Context, v platform.Vendor) (string, error) {
	cmd, err := StatusCommand(v)
	if err != nil {
		return "", err
	}
	res := l.runner.Run(ctx, cmd)
	if !res.OK() {
		return "", commandError(cmd, res)
	}
	return res.Stdout, nil
}

func (l *Lifecycle) finish(r Report) Report {
	attrs := []any{"operation", r.Operation, "outcome", r.Outcome, "manager", l.manager}
	if r.Driver != "" {
		attrs = append(attrs, "driver", r.Driver)
	}
	if r.Outcome == Failed {
		l.logger.Warn("driver operation failed", append(attrs, "stderr", r.Stderr)...)
	} else {
		l.logger.Info("driver operation finished", attrs...)
	}
	return r
}

func report(op, driver string, cmd executor.Command, res executor.Result, allowBenign bool) Report {
	return Report{
		Operation: op,
		Driver:    driver,
		Command:   cmd.String(),
		Outcome:   classify(res, allowBenign),
		Stdout:    res.Stdout,
		Stderr:    res.Stderr,
		ExitCode:  res.ExitCode,
	}
}

func notRun(op, driver string, err error) Report {
	return Report{
		Operation: op,
		Driver:    driver,
		Outcome:   Failed,
		Stderr:    err.Error(),
		ExitCode:  executor.ExitNotStarted,
	}
}

// classify maps a command result to an Outcome.
func classify(res executor.Result, allowBenign bool) Outcome {
	if allowBenign && res.Stderr != "" && isBenign(res.Stderr) {
		return PartiallySucceeded
	}
	if res.Stderr != "" || res.ExitCode != 0 {
		return Failed
	}
	return Succeeded
}

func isBenign(stderr string) bool {
	for _, p := range BenignPhrases {
		if strings.Contains(stderr, p) {
			return true
		}
	}
	return false
}

// dropWarnings removes apt's "WARNING:" lines, which it prints for
// reasons unrelated to the package being installed.
func dropWarnings(stderr string) string {
	var kept []string
	for _, line := range strings.Split(stderr, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "WARNING:") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// parseInstalled picks the vendor's driver packages out of the manager's
// installed-package listing.
func parseInstalled(m platform.PackageManager, v platform.Vendor, output string) Listing {
	var out Listing
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		switch m {
		case platform.Apt:
			// dpkg -l rows: "ii  nvidia-driver-550  550.54.15-0ubuntu1  amd64  ..."
			if len(fields) < 2 || fields[0] != "ii" {
				continue
			}
			if strings.HasPrefix(fields[1], aptDriverPrefix(v)) {
				out = append(out, fields[1])
			}
		case platform.Yum, platform.Pacman:
			if len(fields) == 0 {
				continue
			}
			if strings.Contains(strings.ToLower(fields[0]), driverToken(v)) {
				out = append(out, fields[0])
			}
		}
	}
	return out
}

func aptDriverPrefix(v platform.Vendor) string {
	if v == platform.VendorNVIDIA {
		return "nvidia-driver-"
	}
	return "amdgpu"
}

func driverToken(v platform.Vendor) string {
	if v == platform.VendorNVIDIA {
		return "nvidia"
	}
	return "amdgpu"
}
