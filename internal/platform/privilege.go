package platform

import (
	"errors"

	"golang.org/x/sys/unix"
)

// Fatal startup conditions. The CLI maps each to its own exit code.
var (
	ErrNotPrivileged             = errors.New("superuser privileges are required")
	ErrUnsupportedPackageManager = errors.New("unsupported package manager")
	ErrNoSupportedGPU            = errors.New("no supported GPU detected")
)

// geteuid is overridden in tests.
var geteuid = unix.Geteuid

// CheckPrivileges returns ErrNotPrivileged unless the effective user is root.
func CheckPrivileges() error {
	if geteuid() != 0 {
		return ErrNotPrivileged
	}
	return nil
}
