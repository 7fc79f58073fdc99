// Package session runs gpudrv's interactive driver menu.
//
// A Session owns everything that lives for one run: the detected vendor
// and package manager, the driver catalog with its per-vendor cache, and
// the prompter reading user input. Nothing here is package-level state.
package session

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/tsukumogami/gpudrv/internal/drivers"
	"github.com/tsukumogami/gpudrv/internal/executor"
	"github.com/tsukumogami/gpudrv/internal/log"
	"github.com/tsukumogami/gpudrv/internal/platform"
	"github.com/tsukumogami/gpudrv/internal/ui"
)

// Menu choices. The numbers are part of the user interface.
const (
	choiceActive    = "1"
	choiceList      = "2"
	choiceInstall   = "3"
	choiceUninstall = "4"
	choiceUpdate    = "5"
	choiceHelp      = "6"
	choiceAbout     = "7"
	choiceExit      = "8"
)

var menuItems = []string{
	"Show Active Driver",
	"List Available Drivers",
	"Install a Driver",
	"Uninstall a Driver",
	"Update Drivers",
	"Help",
	"About",
	"Exit",
}

// Options configures a Session.
type Options struct {
	Runner   executor.Runner
	Vendor   platform.Vendor
	Manager  platform.PackageManager
	OS       *platform.OSRelease // optional, shown in headers and error hints
	Printer  *ui.Printer
	Prompter Prompter

	// Confirm gates install and uninstall behind a y/n question.
	Confirm bool

	// Version is shown on the About screen.
	Version string

	Logger log.Logger
}

// Session is one interactive run of the driver menu.
type Session struct {
	vendor  platform.Vendor
	manager platform.PackageManager
	os      *platform.OSRelease
	catalog *drivers.Catalog
	life    *drivers.Lifecycle
	out     *ui.Printer
	in      Prompter
	confirm bool
	version string
	logger  log.Logger
}

// New creates a Session. Vendor and manager must already be detected.
func New(opts Options) *Session {
	logger := log.OrNoop(opts.Logger).With("vendor", opts.Vendor.String(), "manager", opts.Manager.String())
	return &Session{
		vendor:  opts.Vendor,
		manager: opts.Manager,
		os:      opts.OS,
		catalog: drivers.NewCatalog(opts.Runner, opts.Manager, logger),
		life:    drivers.NewLifecycle(opts.Runner, opts.Manager, logger),
		out:     opts.Printer,
		in:      opts.Prompter,
		confirm: opts.Confirm,
		version: opts.Version,
		logger:  logger,
	}
}

// Catalog exposes the session's driver catalog.
func (s *Session) Catalog() *drivers.Catalog { return s.catalog }

// Run shows the menu until the user exits or input ends. Both return nil;
// only a failing prompter produces an error.
func (s *Session) Run(ctx context.Context) error {
	s.logger.Info("session started")
	for {
		s.showMenu()

		choice, err := s.in.Prompt("Select an option [1-8]: ")
		if errors.Is(err, io.EOF) {
			s.out.Blank()
			s.logger.Info("input closed, leaving session")
			return nil
		}
		if err != nil {
			return err
		}

		done, err := s.dispatch(ctx, strings.TrimSpace(choice))
		if errors.Is(err, io.EOF) {
			s.out.Blank()
			s.logger.Info("input closed, leaving session")
			return nil
		}
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

func (s *Session) showMenu() {
	s.out.Title("%s Driver Manager", s.vendor)
	if s.os != nil {
		s.out.Muted("%s, %s", s.os.Describe(), s.manager)
		s.out.Blank()
	}
	for i, item := range menuItems {
		s.out.Info("%d. %s", i+1, item)
	}
	s.out.Blank()
}

// dispatch runs one menu action. It reports true when the session should end.
func (s *Session) dispatch(ctx context.Context, choice string) (bool, error) {
	s.logger.Debug("menu choice", "choice", choice)

	switch choice {
	case choiceActive:
		s.showActive(ctx)
	case choiceList:
		s.listDrivers(ctx)
	case choiceInstall:
		return false, s.install(ctx)
	case choiceUninstall:
		return false, s.uninstall(ctx)
	case choiceUpdate:
		s.update(ctx)
	case choiceHelp:
		s.out.Markdown(helpText(s.vendor, s.manager))
	case choiceAbout:
		s.out.Markdown(aboutText(s.version, s.vendor, s.manager, s.os))
	case choiceExit:
		s.out.Success("Exiting %s Driver Manager. Goodbye!", s.vendor)
		return true, nil
	default:
		s.out.Error("Invalid option. Please select a number between 1 and %d.", len(menuItems))
	}
	return false, nil
}
