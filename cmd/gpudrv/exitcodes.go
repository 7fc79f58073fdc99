package main

import (
	"errors"
	"os"

	"github.com/tsukumogami/gpudrv/internal/platform"
)

// Exit codes for different error types.
// These enable scripts to distinguish between failure modes.
const (
	// ExitSuccess indicates successful execution, including leaving the menu
	ExitSuccess = 0

	// ExitGeneral indicates a general error
	ExitGeneral = 1

	// ExitUnsupportedManager indicates none of apt, yum or pacman was found
	ExitUnsupportedManager = 2

	// ExitNoGPU indicates no NVIDIA or AMD GPU was detected
	ExitNoGPU = 3

	// ExitNotPrivileged indicates gpudrv was not run as root
	ExitNotPrivileged = 4

	// ExitUsage indicates invalid arguments or usage error
	ExitUsage = 5
)

// exitCodeFor maps a fatal startup error to its exit code.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, platform.ErrNotPrivileged):
		return ExitNotPrivileged
	case errors.Is(err, platform.ErrUnsupportedPackageManager):
		return ExitUnsupportedManager
	case errors.Is(err, platform.ErrNoSupportedGPU):
		return ExitNoGPU
	default:
		return ExitGeneral
	}
}

// exitWithCode exits with the specified exit code
func exitWithCode(code int) {
	os.Exit(code)
}
