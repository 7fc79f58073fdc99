package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tsukumogami/gpudrv/internal/buildinfo"
	"github.com/tsukumogami/gpudrv/internal/config"
	"github.com/tsukumogami/gpudrv/internal/errmsg"
	"github.com/tsukumogami/gpudrv/internal/executor"
	"github.com/tsukumogami/gpudrv/internal/log"
	"github.com/tsukumogami/gpudrv/internal/platform"
	"github.com/tsukumogami/gpudrv/internal/session"
	"github.com/tsukumogami/gpudrv/internal/ui"
	"github.com/tsukumogami/gpudrv/internal/userconfig"
)

var (
	quietFlag   bool
	verboseFlag bool
	debugFlag   bool
	yesFlag     bool
	logFileFlag string
)

var rootCmd = &cobra.Command{
	Use:   "gpudrv",
	Short: "Manage NVIDIA and AMD GPU drivers with the system package manager",
	Long: `gpudrv detects the machine's GPU vendor and package manager, then offers
an interactive menu to list, install, uninstall and upgrade GPU drivers.

It must run as root. Supported package managers are apt, yum and pacman.

Exit codes:
  0  success or user exit
  1  general error
  2  unsupported package manager
  3  no supported GPU detected
  4  not running as root
  5  usage error`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		exitWithCode(runRoot(cmd.Context()))
	},
}

func init() {
	info := buildinfo.Read()
	rootCmd.Version = info.Version
	rootCmd.SetVersionTemplate(info.Summary() + "\n")

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&quietFlag, "quiet", "q", false, "Log errors only (GPUDRV_QUIET)")
	flags.BoolVarP(&verboseFlag, "verbose", "v", false, "Log informational messages to stderr (GPUDRV_VERBOSE)")
	flags.BoolVar(&debugFlag, "debug", false, "Log every command to stderr (GPUDRV_DEBUG)")

	rootCmd.Flags().BoolVarP(&yesFlag, "yes", "y", false, "Skip confirmation before install and uninstall")
	rootCmd.Flags().StringVar(&logFileFlag, "log-file", "", "Log file path (overrides GPUDRV_LOG_FILE and log_file)")

	rootCmd.AddCommand(configCmd)
}

// app holds everything one interactive run needs. Tests build it directly
// with a fake runner, a fake root and scripted input.
type app struct {
	runner          executor.Runner
	root            string
	in              io.Reader
	out             io.Writer
	errOut          io.Writer
	tty             bool
	confirm         bool
	logger          log.Logger
	checkPrivileges func() error
}

// run performs startup detection and then hands over to the menu. Fatal
// conditions are checked in a fixed order: privileges, package manager,
// GPU vendor. Nothing is shown before all three pass.
func (a *app) run(ctx context.Context) int {
	logger := log.OrNoop(a.logger)

	if err := a.checkPrivileges(); err != nil {
		logger.Error("privilege check failed", "error", err)
		printError(a.errOut, err, nil)
		return exitCodeFor(err)
	}

	rel, err := platform.DetectOSRelease(a.root)
	if err != nil {
		logger.Debug("os-release not readable", "error", err)
	}

	manager, err := platform.DetectPackageManager(a.root)
	if err != nil {
		logger.Error("package manager detection failed", "error", err)
		printError(a.errOut, err, &errmsg.ErrorContext{OS: rel})
		return exitCodeFor(err)
	}

	vendor := platform.DetectVendor(ctx, a.runner, a.root)
	if !vendor.Supported() {
		err := platform.ErrNoSupportedGPU
		logger.Error("GPU detection failed", "error", err)
		printError(a.errOut, err, nil)
		return exitCodeFor(err)
	}
	logger.Info("environment detected", "vendor", vendor.String(), "manager", manager.String(), "system", rel.Describe())

	printer := ui.NewPrinter(a.out, a.tty)
	prompter := a.prompter(printer)
	defer prompter.Close()

	s := session.New(session.Options{
		Runner:   a.runner,
		Vendor:   vendor,
		Manager:  manager,
		OS:       rel,
		Printer:  printer,
		Prompter: prompter,
		Confirm:  a.confirm,
		Version:  buildinfo.Version(),
		Logger:   logger,
	})
	if err := s.Run(ctx); err != nil {
		logger.Error("session ended with an error", "error", err)
		printError(a.errOut, err, nil)
		return ExitGeneral
	}
	return ExitSuccess
}

func (a *app) prompter(p *ui.Printer) session.Prompter {
	if f, ok := a.in.(*os.File); ok {
		return session.NewPrompter(f, p)
	}
	return session.NewReaderPrompter(a.in, p)
}

func runRoot(ctx context.Context) int {
	cfg, err := config.DefaultConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneral
	}

	settings, err := userconfig.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return ExitGeneral
	}

	logPath := cfg.ResolveLogFile(settings.LogFile)
	if logFileFlag != "" {
		logPath = logFileFlag
	}
	logger, closer := newLogger(determineLogLevel(), log.FileOptions{
		Path:       logPath,
		MaxSizeMB:  settings.LogMaxSizeMB,
		MaxBackups: settings.LogMaxBackups,
	}, os.Stderr)
	defer closer.Close()

	runner := executor.NewExecRunner(executor.WithLogger(logger))
	a := &app{
		runner:          runner,
		root:            cfg.Root,
		in:              os.Stdin,
		out:             os.Stdout,
		errOut:          os.Stderr,
		tty:             term.IsTerminal(int(os.Stdout.Fd())),
		confirm:         settings.ConfirmActions && !yesFlag,
		logger:          logger,
		checkPrivileges: platform.CheckPrivileges,
	}
	return a.run(ctx)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		exitWithCode(ExitUsage)
	}
}
