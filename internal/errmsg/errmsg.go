// Package errmsg provides enhanced error message formatting with actionable suggestions.
package errmsg

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tsukumogami/gpudrv/internal/drivers"
	"github.com/tsukumogami/gpudrv/internal/platform"
)

// ErrorContext provides additional context for error formatting
type ErrorContext struct {
	OS     *platform.OSRelease // Detected distribution, if any
	Driver string              // The driver being operated on
}

// Format returns a formatted error message with possible causes and suggestions.
// The context parameter is optional - pass nil for generic formatting.
func Format(err error, ctx *ErrorContext) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, platform.ErrNotPrivileged):
		return formatPrivilegeError(err)
	case errors.Is(err, platform.ErrUnsupportedPackageManager):
		return formatManagerError(err, ctx)
	case errors.Is(err, platform.ErrNoSupportedGPU):
		return formatGPUError(err)
	}

	var cmdErr *drivers.CommandError
	if errors.As(err, &cmdErr) {
		return formatCommandError(cmdErr, ctx)
	}

	// Return original error for unrecognized types
	return err.Error()
}

// Fprint writes the formatted error to w, ending with a newline.
func Fprint(w io.Writer, err error, ctx *ErrorContext) {
	msg := Format(err, ctx)
	if msg == "" {
		return
	}
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	fmt.Fprint(w, "Error: "+msg)
}

func formatPrivilegeError(err error) string {
	var sb strings.Builder
	sb.WriteString(err.Error())
	sb.WriteString("\n")

	sb.WriteString("\nPossible causes:\n")
	sb.WriteString("  - gpudrv was started as a regular user\n")
	sb.WriteString("  - Package managers need root to change installed packages\n")

	sb.WriteString("\nSuggestions:\n")
	sb.WriteString("  - Run it again with sudo: sudo gpudrv\n")

	return sb.String()
}

func formatManagerError(err error, ctx *ErrorContext) string {
	var sb strings.Builder
	sb.WriteString(err.Error())
	sb.WriteString("\n")

	sb.WriteString("\nPossible causes:\n")
	sb.WriteString("  - None of /usr/bin/apt, /usr/bin/yum or /usr/bin/pacman exists\n")
	if ctx != nil && ctx.OS != nil {
		switch native := ctx.OS.NativeManager(); native {
		case "":
		case "apt", "yum", "pacman":
			sb.WriteString(fmt.Sprintf("  - %s normally ships %s, but /usr/bin/%s is missing\n", ctx.OS.Describe(), native, native))
		default:
			sb.WriteString(fmt.Sprintf("  - %s uses %s, which gpudrv does not drive\n", ctx.OS.Describe(), native))
		}
	}

	sb.WriteString("\nSuggestions:\n")
	sb.WriteString("  - Install drivers with your distribution's own tools\n")
	sb.WriteString("  - Supported package managers: apt, yum, pacman\n")

	return sb.String()
}

func formatGPUError(err error) string {
	var sb strings.Builder
	sb.WriteString(err.Error())
	sb.WriteString("\n")

	sb.WriteString("\nPossible causes:\n")
	sb.WriteString("  - No NVIDIA or AMD display controller is installed\n")
	sb.WriteString("  - lspci is missing and /sys/bus/pci is not readable\n")
	sb.WriteString("  - The GPU is not passed through to this virtual machine\n")

	sb.WriteString("\nSuggestions:\n")
	sb.WriteString("  - Check the output of: lspci | grep -i vga\n")
	sb.WriteString("  - Install pciutils to provide lspci\n")

	return sb.String()
}

func formatCommandError(err *drivers.CommandError, ctx *ErrorContext) string {
	var sb strings.Builder
	sb.WriteString(err.Error())
	sb.WriteString("\n")

	switch {
	case isLockError(err.Stderr):
		sb.WriteString("\nPossible causes:\n")
		sb.WriteString("  - Another package manager process is running\n")
		sb.WriteString("\nSuggestions:\n")
		sb.WriteString("  - Wait for the other update to finish, then try again\n")

	case isMissingPackageError(err.Stderr):
		sb.WriteString("\nPossible causes:\n")
		sb.WriteString("  - The package index is out of date\n")
		sb.WriteString("  - The driver is not available for this release\n")
		sb.WriteString("\nSuggestions:\n")
		sb.WriteString("  - Choose \"Update drivers\" to refresh the package index\n")
		if ctx != nil && ctx.Driver != "" {
			sb.WriteString(fmt.Sprintf("  - Check the spelling of %s\n", ctx.Driver))
		}

	case isNetworkError(err.Stderr):
		sb.WriteString("\nPossible causes:\n")
		sb.WriteString("  - The package mirrors could not be reached\n")
		sb.WriteString("\nSuggestions:\n")
		sb.WriteString("  - Check your internet connection\n")
		sb.WriteString("  - Try again in a few minutes\n")

	case err.ExitCode == -1 && err.Command != "":
		sb.WriteString("\nPossible causes:\n")
		sb.WriteString("  - The program is not installed\n")
		sb.WriteString("\nSuggestions:\n")
		sb.WriteString("  - Install the package that provides it and try again\n")
	}

	return sb.String()
}

// isLockError checks if the output says the package database is locked
func isLockError(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "could not get lock") ||
		strings.Contains(lower, "unable to lock database") ||
		strings.Contains(lower, "another app is currently holding the yum lock")
}

// isMissingPackageError checks if the output says the package is unknown
func isMissingPackageError(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "unable to locate package") ||
		strings.Contains(lower, "no package") ||
		strings.Contains(lower, "target not found") ||
		strings.Contains(lower, "no match for argument")
}

// isNetworkError checks if the output indicates unreachable mirrors
func isNetworkError(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "temporary failure resolving") ||
		strings.Contains(lower, "could not resolve") ||
		strings.Contains(lower, "failed to fetch") ||
		strings.Contains(lower, "failed retrieving file") ||
		strings.Contains(lower, "cannot download")
}
