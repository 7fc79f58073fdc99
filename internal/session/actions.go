package session

import (
	"context"
	"strconv"
	"strings"

	"github.com/tsukumogami/gpudrv/internal/drivers"
	"github.com/tsukumogami/gpudrv/internal/errmsg"
)

const (
	rebootAfterInstall   = "A reboot is recommended for changes to take effect."
	rebootAfterUninstall = "A reboot is recommended to complete uninstallation."
)

func (s *Session) showActive(ctx context.Context) {
	status, err := s.life.ActiveStatus(ctx, s.vendor)
	if err != nil {
		s.warn(err)
	} else {
		s.out.Success("Active %s driver: %s", s.vendor, status)
	}

	installed, err := s.life.Installed(ctx, s.vendor)
	switch {
	case err != nil:
		s.warn(err)
	case len(installed) == 0:
		s.out.Warn("No %s driver package is currently installed.", s.vendor)
	default:
		s.out.Info("Installed %s driver packages:", s.vendor)
		for _, pkg := range installed {
			s.out.Item("- %s", pkg)
		}
	}
}

// listDrivers always re-queries so the listing reflects the package index.
func (s *Session) listDrivers(ctx context.Context) {
	s.out.Info("Searching for available %s drivers...", s.vendor)
	listing, err := s.catalog.Refresh(ctx, s.vendor)
	if err != nil {
		s.warn(err)
		return
	}
	if len(listing) == 0 {
		s.out.Warn("No %s drivers found.", s.vendor)
		return
	}

	s.out.Success("Available %s drivers found:", s.vendor)
	newest, _ := drivers.Newest(listing)
	for _, d := range listing {
		if d == newest {
			s.out.Item("- %s (newest)", d)
			continue
		}
		s.out.Item("- %s", d)
	}
}

// driverListing returns the cached listing, querying only on a miss.
func (s *Session) driverListing(ctx context.Context) drivers.Listing {
	if listing, ok := s.catalog.Cached(s.vendor); ok {
		return listing
	}

	s.out.Info("Searching for available %s drivers...", s.vendor)
	listing, err := s.catalog.Query(ctx, s.vendor)
	if err != nil {
		s.warn(err)
		return nil
	}
	if len(listing) == 0 {
		s.out.Warn("No %s drivers found.", s.vendor)
	}
	return listing
}

func (s *Session) install(ctx context.Context) error {
	listing := s.driverListing(ctx)
	if len(listing) == 0 {
		return nil
	}

	driver, err := s.selectDriver(listing)
	if err != nil {
		return err
	}
	s.out.Info("You selected: %s", driver)

	ok, err := s.confirmAction("Do you want to proceed with the installation?")
	if err != nil || !ok {
		return err
	}

	s.out.Info("Installing and activating %s...", driver)
	s.printReport(s.life.Install(ctx, driver), "installed", rebootAfterInstall)
	return nil
}

func (s *Session) uninstall(ctx context.Context) error {
	listing := s.driverListing(ctx)
	if len(listing) == 0 {
		return nil
	}

	driver, err := s.selectDriver(listing)
	if err != nil {
		return err
	}

	ok, err := s.confirmAction("Are you sure you want to uninstall " + driver + "?")
	if err != nil || !ok {
		return err
	}

	s.out.Info("Uninstalling %s...", driver)
	s.printReport(s.life.Uninstall(ctx, driver), "uninstalled", rebootAfterUninstall)
	return nil
}

func (s *Session) update(ctx context.Context) {
	s.out.Info("Updating package lists and upgrading %s drivers...", s.vendor)
	rep := s.life.Upgrade(ctx, s.vendor)

	if rep.Refresh.Outcome.OK() {
		s.out.Plain(rep.Refresh.Stdout)
		s.out.Success("Package lists updated.")
	} else {
		s.out.Error("Error during update:")
		s.out.Plain(errmsg.Format(rep.Refresh.Err(), s.errContext("")))
		return
	}

	if rep.Upgrade == nil {
		return
	}
	if !rep.Upgrade.Outcome.OK() {
		s.out.Error("Error during upgrade:")
		s.out.Plain(errmsg.Format(rep.Upgrade.Err(), s.errContext("")))
		return
	}
	s.out.Plain(rep.Upgrade.Stdout)
	s.out.Success("%s drivers upgraded successfully.", s.vendor)
	s.out.Info("%s", rebootAfterInstall)
}

// selectDriver prints listing numbered from 1 and reads a choice until it
// is a number within bounds.
func (s *Session) selectDriver(listing drivers.Listing) (string, error) {
	s.out.Blank()
	s.out.Info("Available %s drivers:", s.vendor)
	s.out.Blank()
	for i, d := range listing {
		s.out.Item("[%d] %s", i+1, d)
	}
	s.out.Blank()
	s.out.Muted("(Enter the corresponding number to select a driver)")

	for {
		input, err := s.in.Prompt("Select a driver: ")
		if err != nil {
			return "", err
		}
		idx, ok := parseIndex(input, len(listing))
		if ok {
			return listing[idx], nil
		}
		if _, err := strconv.Atoi(strings.TrimSpace(input)); err != nil {
			s.out.Error("Please enter a valid number.")
		} else {
			s.out.Error("Invalid choice. Please select a number between 1 and %d.", len(listing))
		}
	}
}

// parseIndex converts 1-based user input into a 0-based index into a
// listing of length n.
func parseIndex(input string, n int) (int, bool) {
	i, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || i < 1 || i > n {
		return 0, false
	}
	return i - 1, true
}

// confirmAction asks a y/n question unless confirmations are disabled.
func (s *Session) confirmAction(question string) (bool, error) {
	if !s.confirm {
		return true, nil
	}
	for {
		answer, err := s.in.Prompt(question + " [y/n]: ")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			s.out.Muted("Cancelled.")
			return false, nil
		default:
			s.out.Error("Please enter 'y' or 'n'.")
		}
	}
}

func (s *Session) printReport(r drivers.Report, verb, reboot string) {
	if !r.Outcome.OK() {
		s.out.Error("Error during %s of %s:", r.Operation, r.Driver)
		s.out.Plain(errmsg.Format(r.Err(), s.errContext(r.Driver)))
		return
	}

	s.out.Plain(r.Stdout)
	if r.Outcome == drivers.PartiallySucceeded {
		s.out.Warn("%s", r.Stderr)
	}
	s.out.Success("%s %s successfully.", r.Driver, verb)
	s.out.Info("%s", reboot)
}

// warn reports a non-fatal command failure and keeps the session going.
func (s *Session) warn(err error) {
	s.logger.Warn("command reported an error", "error", err)
	s.out.Warn("%s", errmsg.Format(err, s.errContext("")))
}

func (s *Session) errContext(driver string) *errmsg.ErrorContext {
	return &errmsg.ErrorContext{OS: s.os, Driver: driver}
}
