// Package drivers builds package-manager commands for GPU driver packages,
// parses their listing output and classifies their outcomes.
package drivers

import (
	"fmt"

	"github.com/tsukumogami/gpudrv/internal/executor"
	"github.com/tsukumogami/gpudrv/internal/platform"
)

// searchSpec is a package index query. When filter is set, only output
// lines containing it (case-insensitively) are parsed.
type searchSpec struct {
	cmd    executor.Command
	filter string
}

func unsupportedManager(m platform.PackageManager) error {
	return fmt.Errorf("%w: %s", platform.ErrUnsupportedPackageManager, m)
}

func unsupportedVendor(v platform.Vendor) error {
	return fmt.Errorf("%w: %s", platform.ErrNoSupportedGPU, v)
}

// SearchCommand returns the query listing candidate driver packages.
func SearchCommand(m platform.PackageManager, v platform.Vendor) (executor.Command, error) {
	s, err := searchFor(m, v)
	return s.cmd, err
}

func searchFor(m platform.PackageManager, v platform.Vendor) (searchSpec, error) {
	if !v.Supported() {
		return searchSpec{}, unsupportedVendor(v)
	}

	switch m {
	case platform.Apt:
		pattern := "^amdgpu-*"
		if v == platform.VendorNVIDIA {
			pattern = "^nvidia-driver-[0-9]+"
		}
		return searchSpec{cmd: executor.New("apt-cache", "search", pattern)}, nil
	case platform.Yum:
		return searchSpec{cmd: executor.New("yum", "list", "available"), filter: v.Token()}, nil
	case platform.Pacman:
		return searchSpec{cmd: executor.New("pacman", "-Ssq", v.Token())}, nil
	default:
		return searchSpec{}, unsupportedManager(m)
	}
}

// InstallCommand returns the non-interactive install command for driver.
func InstallCommand(m platform.PackageManager, driver string) (executor.Command, error) {
	switch m {
	case platform.Apt:
		return executor.New("apt-get", "install", "-y", driver).
			WithEnv("DEBIAN_FRONTEND=noninteractive"), nil
	case platform.Yum:
		return executor.New("yum", "install", "-y", driver), nil
	case platform.Pacman:
		return executor.New("pacman", "-S", "--noconfirm", driver), nil
	default:
		return executor.Command{}, unsupportedManager(m)
	}
}

// UninstallCommand returns the purge/remove command for driver.
func UninstallCommand(m platform.PackageManager, driver string) (executor.Command, error) {
	switch m {
	case platform.Apt:
		return executor.New("apt-get", "purge", "-y", driver), nil
	case platform.Yum:
		return executor.New("yum", "remove", "-y", driver), nil
	case platform.Pacman:
		return executor.New("pacman", "-R", "--noconfirm", driver), nil
	default:
		return executor.Command{}, unsupportedManager(m)
	}
}

// RefreshCommand returns the command that refreshes the package index.
func RefreshCommand(m platform.PackageManager) (executor.Command, error) {
	switch m {
	case platform.Apt:
		return executor.New("apt-get", "update"), nil
	case platform.Yum:
		return executor.New("yum", "makecache"), nil
	case platform.Pacman:
		return executor.New("pacman", "-Sy"), nil
	default:
		return executor.Command{}, unsupportedManager(m)
	}
}

// UpgradeCommand returns the command upgrading the vendor's driver
// packages. apt and yum take a name glob expanded by the package manager
// itself; pacman has no globs and upgrades the installed packages named.
func UpgradeCommand(m platform.PackageManager, v platform.Vendor, installed Listing) (executor.Command, error) {
	if !v.Supported() {
		return executor.Command{}, unsupportedVendor(v)
	}

	switch m {
	case platform.Apt:
		glob := "amdgpu*"
		if v == platform.VendorNVIDIA {
			glob = "nvidia-driver-*"
		}
		return executor.New("apt-get", "upgrade", "-y", glob).
			WithEnv("DEBIAN_FRONTEND=noninteractive"), nil
	case platform.Yum:
		glob := "*amdgpu*"
		if v == platform.VendorNVIDIA {
			glob = "nvidia*"
		}
		return executor.New("yum", "upgrade", "-y", glob), nil
	case platform.Pacman:
		if len(installed) == 0 {
			return executor.Command{}, fmt.Errorf("no installed %s driver packages to upgrade", v)
		}
		args := append([]string{"-S", "--noconfirm", "--needed"}, installed...)
		return executor.New("pacman", args...), nil
	default:
		return executor.Command{}, unsupportedManager(m)
	}
}

// InstalledCommand returns the query listing installed packages.
func InstalledCommand(m platform.PackageManager) (executor.Command, error) {
	switch m {
	case platform.Apt:
		return executor.New("dpkg", "-l"), nil
	case platform.Yum:
		return executor.New("rpm", "-qa", "--qf", `%{NAME}\n`), nil
	case platform.Pacman:
		return executor.New("pacman", "-Q"), nil
	default:
		return executor.Command{}, unsupportedManager(m)
	}
}

// StatusCommand returns the vendor tool reporting the driver in use.
func StatusCommand(v platform.Vendor) (executor.Command, error) {
	switch v {
	case platform.VendorNVIDIA:
		return executor.New("nvidia-smi", "--query-gpu=name,driver_version", "--format=csv,noheader"), nil
	case platform.VendorAMD:
		return executor.New("modinfo", "-F", "version", "amdgpu"), nil
	default:
		return executor.Command{}, unsupportedVendor(v)
	}
}
